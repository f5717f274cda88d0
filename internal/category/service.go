package category

import (
	"context"
	"errors"
	"log/slog"

	"github.com/frahmantamala/expense-tracker/internal"
	categoryDatamodel "github.com/frahmantamala/expense-tracker/internal/core/datamodel/category"
	"github.com/frahmantamala/expense-tracker/internal/core/events"
)

const entityName = "Category"

type RepositoryAPI interface {
	GetAll(ctx context.Context) ([]*categoryDatamodel.Category, error)
	GetAllWithExpenseCounts(ctx context.Context) ([]*categoryDatamodel.WithExpenseCount, error)
	GetByID(ctx context.Context, id int64) (*categoryDatamodel.Category, error)
	GetByName(ctx context.Context, name string) (*categoryDatamodel.Category, error)
	Create(ctx context.Context, category *categoryDatamodel.Category) error
	Update(ctx context.Context, category *categoryDatamodel.Category) error
	Delete(ctx context.Context, id int64) (removedExpenses int64, err error)
	Count(ctx context.Context) (int64, error)
	CountExpenses(ctx context.Context, id int64) (int64, error)
}

type Service struct {
	repo      RepositoryAPI
	publisher events.Publisher
	logger    *slog.Logger
}

func NewService(repo RepositoryAPI, publisher events.Publisher, logger *slog.Logger) *Service {
	if publisher == nil {
		publisher = events.NopPublisher{}
	}
	return &Service{
		repo:      repo,
		publisher: publisher,
		logger:    logger,
	}
}

// ListAll returns every category ordered by name.
func (s *Service) ListAll(ctx context.Context) ([]*Category, error) {
	dataCategories, err := s.repo.GetAll(ctx)
	if err != nil {
		s.logger.Error("failed to get categories from repository", "error", err)
		return nil, err
	}

	categories := FromDataModelSlice(dataCategories)
	s.logger.Debug("retrieved categories", "count", len(categories))
	return categories, nil
}

func (s *Service) GetByID(ctx context.Context, id int64) (*Category, error) {
	dataCategory, err := s.repo.GetByID(ctx, id)
	if err != nil {
		s.logger.Error("failed to get category", "error", err, "category_id", id)
		return nil, err
	}
	if dataCategory == nil {
		return nil, internal.EntityNotFound(entityName, id, internal.ErrCodeCategoryNotFound)
	}
	return FromDataModel(dataCategory), nil
}

// FindByName looks a category up by name ignoring case. A nil category with a nil
// error means there is no match.
func (s *Service) FindByName(ctx context.Context, name string) (*Category, error) {
	dataCategory, err := s.repo.GetByName(ctx, name)
	if err != nil {
		s.logger.Error("failed to find category by name", "error", err, "name", name)
		return nil, err
	}
	if dataCategory == nil {
		return nil, nil
	}
	return FromDataModel(dataCategory), nil
}

// Exists is the membership check the expense ledger runs before writing.
func (s *Service) Exists(ctx context.Context, id int64) (bool, error) {
	dataCategory, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return false, err
	}
	return dataCategory != nil, nil
}

func (s *Service) Create(ctx context.Context, dto CreateCategoryDTO) (*Category, error) {
	if appErr := dto.Validate(); appErr != nil {
		s.logger.Warn("category validation failed", "error", appErr)
		return nil, appErr
	}

	existing, err := s.FindByName(ctx, dto.Name)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		s.logger.Warn("category name already exists", "name", dto.Name, "existing_id", existing.ID)
		return nil, duplicateName(dto.Name)
	}

	dataCategory := ToDataModel(NewCategory(dto))
	if err := s.repo.Create(ctx, dataCategory); err != nil {
		if errors.Is(err, ErrNameTaken) {
			s.logger.Warn("category name taken by concurrent write", "name", dto.Name)
			return nil, duplicateName(dto.Name)
		}
		s.logger.Error("failed to create category", "error", err, "name", dto.Name)
		return nil, err
	}

	created := FromDataModel(dataCategory)
	s.publish(ctx, events.NewCategoryCreatedEvent(ctx, created.ID, created.Name))
	s.logger.Info("category created", "category_id", created.ID, "name", created.Name)
	return created, nil
}

func (s *Service) Update(ctx context.Context, id int64, dto UpdateCategoryDTO) (*Category, error) {
	if appErr := dto.Validate(); appErr != nil {
		s.logger.Warn("category validation failed", "error", appErr, "category_id", id)
		return nil, appErr
	}

	current, err := s.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if dto.Name != nil && !current.SameName(*dto.Name) {
		existing, err := s.FindByName(ctx, *dto.Name)
		if err != nil {
			return nil, err
		}
		if existing != nil && existing.ID != id {
			s.logger.Warn("category name already exists", "name", *dto.Name, "existing_id", existing.ID)
			return nil, duplicateName(*dto.Name)
		}
	}

	current.Apply(dto)
	dataCategory := ToDataModel(current)
	if err := s.repo.Update(ctx, dataCategory); err != nil {
		if errors.Is(err, ErrNameTaken) {
			return nil, duplicateName(current.Name)
		}
		if errors.Is(err, ErrNotFound) {
			return nil, internal.EntityNotFound(entityName, id, internal.ErrCodeCategoryNotFound)
		}
		s.logger.Error("failed to update category", "error", err, "category_id", id)
		return nil, err
	}

	updated := FromDataModel(dataCategory)
	s.publish(ctx, events.NewCategoryUpdatedEvent(ctx, updated.ID, updated.Name))
	s.logger.Info("category updated", "category_id", id)
	return updated, nil
}

// Delete removes the category and every expense filed under it.
func (s *Service) Delete(ctx context.Context, id int64) error {
	current, err := s.GetByID(ctx, id)
	if err != nil {
		return err
	}

	removed, err := s.repo.Delete(ctx, id)
	if errors.Is(err, ErrNotFound) {
		return internal.EntityNotFound(entityName, id, internal.ErrCodeCategoryNotFound)
	}
	if err != nil {
		s.logger.Error("failed to delete category", "error", err, "category_id", id)
		return err
	}

	s.publish(ctx, events.NewCategoryDeletedEvent(ctx, id, current.Name, removed))
	s.logger.Info("category deleted", "category_id", id, "removed_expenses", removed)
	return nil
}

func (s *Service) Count(ctx context.Context) (int64, error) {
	count, err := s.repo.Count(ctx)
	if err != nil {
		s.logger.Error("failed to count categories", "error", err)
		return 0, err
	}
	return count, nil
}

// ExpenseCount returns how many expenses reference the category.
func (s *Service) ExpenseCount(ctx context.Context, id int64) (int64, error) {
	count, err := s.repo.CountExpenses(ctx, id)
	if err != nil {
		s.logger.Error("failed to count category expenses", "error", err, "category_id", id)
		return 0, err
	}
	return count, nil
}

// ListWithExpenseCounts returns every category, including those without expenses,
// with its expense count.
func (s *Service) ListWithExpenseCounts(ctx context.Context) ([]CategoryWithCount, error) {
	rows, err := s.repo.GetAllWithExpenseCounts(ctx)
	if err != nil {
		s.logger.Error("failed to get categories with expense counts", "error", err)
		return nil, err
	}

	result := make([]CategoryWithCount, len(rows))
	for i, row := range rows {
		result[i] = CategoryWithCount{
			Category:     *FromDataModel(&row.Category),
			ExpenseCount: row.ExpenseCount,
		}
	}
	return result, nil
}

func (s *Service) publish(ctx context.Context, event events.Event) {
	if err := s.publisher.Publish(ctx, event); err != nil {
		s.logger.Warn("failed to publish event", "event_type", event.EventType(), "error", err)
	}
}

func duplicateName(name string) *internal.AppError {
	return internal.DuplicateEntity(entityName, "name", name, internal.ErrCodeCategoryDuplicate)
}
