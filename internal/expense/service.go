package expense

import (
	"context"
	"errors"
	"log/slog"
	"sort"
	"strings"
	"time"

	"github.com/frahmantamala/expense-tracker/internal"
	"github.com/frahmantamala/expense-tracker/internal/core/common/validation"
	expenseDatamodel "github.com/frahmantamala/expense-tracker/internal/core/datamodel/expense"
	"github.com/frahmantamala/expense-tracker/internal/core/events"
	"github.com/shopspring/decimal"
)

const entityName = "Expense"

// ErrNotFound is returned by repositories when the row to change is gone.
var ErrNotFound = errors.New("expense not found")

// Repository defines the data access methods for expenses. Reads preload the
// owning category and order by expense date, newest first.
type Repository interface {
	Create(ctx context.Context, expense *expenseDatamodel.Expense) error
	GetByID(ctx context.Context, id int64) (*expenseDatamodel.Expense, error)
	List(ctx context.Context, offset, limit int) ([]*expenseDatamodel.Expense, error)
	ListAll(ctx context.Context) ([]*expenseDatamodel.Expense, error)
	ListByCategory(ctx context.Context, categoryID int64) ([]*expenseDatamodel.Expense, error)
	ListByDateRange(ctx context.Context, start, end time.Time) ([]*expenseDatamodel.Expense, error)
	Search(ctx context.Context, keyword string, limit int) ([]*expenseDatamodel.Expense, error)
	Update(ctx context.Context, expense *expenseDatamodel.Expense) error
	Delete(ctx context.Context, id int64) error
	Count(ctx context.Context) (int64, error)
}

// ReportRepository runs the aggregate queries.
type ReportRepository interface {
	TotalCents(ctx context.Context) (int64, error)
	SpendingByCategory(ctx context.Context) ([]expenseDatamodel.CategorySpending, error)
	AmountsSince(ctx context.Context, since time.Time) ([]expenseDatamodel.DatedAmount, error)
}

// CategoryDirectory answers whether a category id is known.
type CategoryDirectory interface {
	Exists(ctx context.Context, id int64) (bool, error)
}

type Service struct {
	repo       Repository
	reports    ReportRepository
	categories CategoryDirectory
	publisher  events.Publisher
	logger     *slog.Logger
	now        func() time.Time
}

func NewService(repo Repository, reports ReportRepository, categories CategoryDirectory, publisher events.Publisher, logger *slog.Logger) *Service {
	if publisher == nil {
		publisher = events.NopPublisher{}
	}
	return &Service{
		repo:       repo,
		reports:    reports,
		categories: categories,
		publisher:  publisher,
		logger:     logger,
		now:        time.Now,
	}
}

// WithClock replaces the clock used to decide what "today" is.
func (s *Service) WithClock(now func() time.Time) *Service {
	s.now = now
	return s
}

func (s *Service) today() time.Time {
	return validation.DateOnly(s.now())
}

// ListAll pages through every expense. A negative offset is treated as zero and a
// non-positive limit as DefaultPageLimit.
func (s *Service) ListAll(ctx context.Context, offset, limit int) ([]*Expense, error) {
	if offset < 0 {
		offset = 0
	}
	if limit <= 0 {
		limit = DefaultPageLimit
	}

	rows, err := s.repo.List(ctx, offset, limit)
	if err != nil {
		s.logger.Error("failed to list expenses", "error", err, "offset", offset, "limit", limit)
		return nil, err
	}
	return FromDataModelSlice(rows), nil
}

// Export returns every expense, or those dated within [start, end] when both are set.
func (s *Service) Export(ctx context.Context, start, end *time.Time) ([]*Expense, error) {
	if start != nil && end != nil {
		return s.ListByDateRange(ctx, *start, *end)
	}
	rows, err := s.repo.ListAll(ctx)
	if err != nil {
		s.logger.Error("failed to load expenses for export", "error", err)
		return nil, err
	}
	return FromDataModelSlice(rows), nil
}

func (s *Service) GetByID(ctx context.Context, id int64) (*Expense, error) {
	row, err := s.repo.GetByID(ctx, id)
	if err != nil {
		s.logger.Error("failed to get expense", "error", err, "expense_id", id)
		return nil, err
	}
	if row == nil {
		return nil, internal.EntityNotFound(entityName, id, internal.ErrCodeExpenseNotFound)
	}
	return FromDataModel(row), nil
}

func (s *Service) Create(ctx context.Context, dto CreateExpenseDTO) (*Expense, error) {
	if appErr := dto.Validate(); appErr != nil {
		s.logger.Warn("expense validation failed", "error", appErr)
		return nil, appErr
	}
	if err := s.checkCategory(ctx, dto.CategoryID); err != nil {
		return nil, err
	}
	if appErr := validation.ValidateExpenseAmount(dto.Amount); appErr != nil {
		return nil, appErr
	}
	if appErr := validation.ValidateExpenseDate(dto.ExpenseDate.Time, s.today()); appErr != nil {
		return nil, appErr
	}

	row := &expenseDatamodel.Expense{
		AmountCents: ToCents(dto.Amount),
		Description: dto.Description,
		ExpenseDate: validation.DateOnly(dto.ExpenseDate.Time),
		CategoryID:  dto.CategoryID,
		Notes:       dto.Notes,
	}
	if err := s.repo.Create(ctx, row); err != nil {
		s.logger.Error("failed to create expense", "error", err, "category_id", dto.CategoryID)
		return nil, err
	}

	created, err := s.GetByID(ctx, row.ID)
	if err != nil {
		return nil, err
	}
	s.publish(ctx, events.NewExpenseCreatedEvent(ctx, created.ID, created.CategoryID, created.Amount.StringFixed(2)))
	s.logger.Info("expense created",
		"expense_id", created.ID,
		"category_id", created.CategoryID,
		"amount", created.Amount.StringFixed(2))
	return created, nil
}

// Update changes the supplied fields. Supplied fields go through the same checks,
// in the same order, as Create.
func (s *Service) Update(ctx context.Context, id int64, dto UpdateExpenseDTO) (*Expense, error) {
	if appErr := dto.Validate(); appErr != nil {
		s.logger.Warn("expense validation failed", "error", appErr, "expense_id", id)
		return nil, appErr
	}

	row, err := s.repo.GetByID(ctx, id)
	if err != nil {
		s.logger.Error("failed to get expense", "error", err, "expense_id", id)
		return nil, err
	}
	if row == nil {
		return nil, internal.EntityNotFound(entityName, id, internal.ErrCodeExpenseNotFound)
	}

	if dto.CategoryID != nil {
		if err := s.checkCategory(ctx, *dto.CategoryID); err != nil {
			return nil, err
		}
		row.CategoryID = *dto.CategoryID
		row.Category = nil
	}
	if dto.Amount != nil {
		if appErr := validation.ValidateExpenseAmount(*dto.Amount); appErr != nil {
			return nil, appErr
		}
		row.AmountCents = ToCents(*dto.Amount)
	}
	if dto.ExpenseDate != nil {
		if appErr := validation.ValidateExpenseDate(dto.ExpenseDate.Time, s.today()); appErr != nil {
			return nil, appErr
		}
		row.ExpenseDate = validation.DateOnly(dto.ExpenseDate.Time)
	}
	if dto.Description != nil {
		row.Description = *dto.Description
	}
	if dto.Notes != nil {
		row.Notes = dto.Notes
	}

	if err := s.repo.Update(ctx, row); err != nil {
		if errors.Is(err, ErrNotFound) {
			return nil, internal.EntityNotFound(entityName, id, internal.ErrCodeExpenseNotFound)
		}
		s.logger.Error("failed to update expense", "error", err, "expense_id", id)
		return nil, err
	}

	updated, err := s.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	s.publish(ctx, events.NewExpenseUpdatedEvent(ctx, updated.ID, updated.CategoryID, updated.Amount.StringFixed(2)))
	s.logger.Info("expense updated", "expense_id", id)
	return updated, nil
}

func (s *Service) Delete(ctx context.Context, id int64) error {
	current, err := s.GetByID(ctx, id)
	if err != nil {
		return err
	}

	if err := s.repo.Delete(ctx, id); err != nil {
		if errors.Is(err, ErrNotFound) {
			return internal.EntityNotFound(entityName, id, internal.ErrCodeExpenseNotFound)
		}
		s.logger.Error("failed to delete expense", "error", err, "expense_id", id)
		return err
	}

	s.publish(ctx, events.NewExpenseDeletedEvent(ctx, id, current.CategoryID, current.Amount.StringFixed(2)))
	s.logger.Info("expense deleted", "expense_id", id)
	return nil
}

// ListByCategory returns the category's expenses. An unknown category yields an
// empty list.
func (s *Service) ListByCategory(ctx context.Context, categoryID int64) ([]*Expense, error) {
	rows, err := s.repo.ListByCategory(ctx, categoryID)
	if err != nil {
		s.logger.Error("failed to list expenses by category", "error", err, "category_id", categoryID)
		return nil, err
	}
	return FromDataModelSlice(rows), nil
}

// ListByDateRange returns expenses dated within [start, end]. An inverted range
// yields an empty list.
func (s *Service) ListByDateRange(ctx context.Context, start, end time.Time) ([]*Expense, error) {
	start, end = validation.DateOnly(start), validation.DateOnly(end)
	if start.After(end) {
		return []*Expense{}, nil
	}

	rows, err := s.repo.ListByDateRange(ctx, start, end)
	if err != nil {
		s.logger.Error("failed to list expenses by date range", "error", err, "start", start, "end", end)
		return nil, err
	}
	return FromDataModelSlice(rows), nil
}

// Search matches keyword case-insensitively against descriptions. A non-positive
// limit returns every match.
func (s *Service) Search(ctx context.Context, keyword string, limit int) ([]*Expense, error) {
	rows, err := s.repo.Search(ctx, keyword, limit)
	if err != nil {
		s.logger.Error("failed to search expenses", "error", err, "keyword", keyword)
		return nil, err
	}
	return FromDataModelSlice(rows), nil
}

// SearchFilter combines the optional filters of the search endpoint.
type SearchFilter struct {
	Keyword   string
	StartDate *time.Time
	EndDate   *time.Time
}

// SearchRecentLimit bounds the result when no filter is given.
const SearchRecentLimit = 50

// Find applies the first filter that is set: keyword, then date range. A start
// date without an end runs to today. With no filters the newest expenses are
// returned.
func (s *Service) Find(ctx context.Context, filter SearchFilter) ([]*Expense, error) {
	if keyword := strings.TrimSpace(filter.Keyword); keyword != "" {
		return s.Search(ctx, keyword, 0)
	}
	if filter.StartDate != nil {
		end := s.today()
		if filter.EndDate != nil {
			end = *filter.EndDate
		}
		return s.ListByDateRange(ctx, *filter.StartDate, end)
	}
	return s.ListAll(ctx, 0, SearchRecentLimit)
}

// Recent returns the newest expenses, limit clamped to [1, MaxRecentLimit].
func (s *Service) Recent(ctx context.Context, limit int) ([]*Expense, error) {
	if limit <= 0 {
		limit = DefaultRecentLimit
	}
	if limit > MaxRecentLimit {
		limit = MaxRecentLimit
	}
	return s.ListAll(ctx, 0, limit)
}

// TotalAmount is the exact sum of every amount; zero when the ledger is empty.
func (s *Service) TotalAmount(ctx context.Context) (decimal.Decimal, error) {
	cents, err := s.reports.TotalCents(ctx)
	if err != nil {
		s.logger.Error("failed to total expenses", "error", err)
		return decimal.Zero, err
	}
	return FromCents(cents), nil
}

func (s *Service) Count(ctx context.Context) (int64, error) {
	count, err := s.repo.Count(ctx)
	if err != nil {
		s.logger.Error("failed to count expenses", "error", err)
		return 0, err
	}
	return count, nil
}

func (s *Service) Summary(ctx context.Context) (Summary, error) {
	count, err := s.Count(ctx)
	if err != nil {
		return Summary{}, err
	}
	total, err := s.TotalAmount(ctx)
	if err != nil {
		return Summary{}, err
	}
	return Summary{TotalExpenses: count, TotalAmount: total}, nil
}

// SpendingByCategory totals every category, including those without expenses,
// largest total first.
func (s *Service) SpendingByCategory(ctx context.Context) ([]CategorySpending, error) {
	rows, err := s.reports.SpendingByCategory(ctx)
	if err != nil {
		s.logger.Error("failed to aggregate spending by category", "error", err)
		return nil, err
	}
	return spendingFromDataModel(rows), nil
}

// MonthlyTrend totals the last TrendWindowDays days per calendar month, oldest first.
func (s *Service) MonthlyTrend(ctx context.Context) ([]MonthlyTotal, error) {
	since := s.today().AddDate(0, 0, -TrendWindowDays)
	rows, err := s.reports.AmountsSince(ctx, since)
	if err != nil {
		s.logger.Error("failed to load monthly trend", "error", err, "since", since)
		return nil, err
	}

	type monthKey struct{ year, month int }
	totals := make(map[monthKey]*MonthlyTotal)
	for _, row := range rows {
		d := row.ExpenseDate.UTC()
		key := monthKey{d.Year(), int(d.Month())}
		bucket, ok := totals[key]
		if !ok {
			bucket = &MonthlyTotal{Year: key.year, Month: key.month, Total: decimal.Zero}
			totals[key] = bucket
		}
		bucket.Total = bucket.Total.Add(FromCents(row.AmountCents))
		bucket.ExpenseCount++
	}

	result := make([]MonthlyTotal, 0, len(totals))
	for _, bucket := range totals {
		result = append(result, *bucket)
	}
	sort.Slice(result, func(i, j int) bool {
		if result[i].Year != result[j].Year {
			return result[i].Year < result[j].Year
		}
		return result[i].Month < result[j].Month
	})
	return result, nil
}

func (s *Service) checkCategory(ctx context.Context, categoryID int64) error {
	exists, err := s.categories.Exists(ctx, categoryID)
	if err != nil {
		s.logger.Error("failed to check category", "error", err, "category_id", categoryID)
		return err
	}
	if !exists {
		s.logger.Warn("expense references unknown category", "category_id", categoryID)
		return internal.NewValidationFieldError("category_id", "category_id does not exist", internal.ErrCodeInvalidCategory)
	}
	return nil
}

func (s *Service) publish(ctx context.Context, event events.Event) {
	if err := s.publisher.Publish(ctx, event); err != nil {
		s.logger.Warn("failed to publish event", "event_type", event.EventType(), "error", err)
	}
}
