package category_test

import (
	"context"
	"errors"
	"sort"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/frahmantamala/expense-tracker/internal"
	"github.com/frahmantamala/expense-tracker/internal/category"
	categoryDatamodel "github.com/frahmantamala/expense-tracker/internal/core/datamodel/category"
	"github.com/frahmantamala/expense-tracker/internal/core/events"
	"github.com/frahmantamala/expense-tracker/pkg/logger"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

func TestCategory(t *testing.T) {
	RegisterFailHandler(Fail)
	RunSpecs(t, "Category Suite")
}

// MockRepository implements category.RepositoryAPI for testing
type MockRepository struct {
	categories    map[int64]*categoryDatamodel.Category
	expenseCounts map[int64]int64
	nextID        int64
	shouldFail    bool
	failError     error
	createError   error
}

func NewMockRepository() *MockRepository {
	return &MockRepository{
		categories:    make(map[int64]*categoryDatamodel.Category),
		expenseCounts: make(map[int64]int64),
	}
}

func (m *MockRepository) sorted() []*categoryDatamodel.Category {
	var result []*categoryDatamodel.Category
	for _, cat := range m.categories {
		copied := *cat
		result = append(result, &copied)
	}
	sort.Slice(result, func(i, j int) bool {
		return categoryDatamodel.NormalizeName(result[i].Name) < categoryDatamodel.NormalizeName(result[j].Name)
	})
	return result
}

func (m *MockRepository) GetAll(ctx context.Context) ([]*categoryDatamodel.Category, error) {
	if m.shouldFail {
		return nil, m.failError
	}
	return m.sorted(), nil
}

func (m *MockRepository) GetAllWithExpenseCounts(ctx context.Context) ([]*categoryDatamodel.WithExpenseCount, error) {
	if m.shouldFail {
		return nil, m.failError
	}
	var rows []*categoryDatamodel.WithExpenseCount
	for _, cat := range m.sorted() {
		rows = append(rows, &categoryDatamodel.WithExpenseCount{Category: *cat, ExpenseCount: m.expenseCounts[cat.ID]})
	}
	return rows, nil
}

func (m *MockRepository) GetByName(ctx context.Context, name string) (*categoryDatamodel.Category, error) {
	if m.shouldFail {
		return nil, m.failError
	}
	for _, cat := range m.categories {
		if categoryDatamodel.NormalizeName(cat.Name) == categoryDatamodel.NormalizeName(name) {
			copied := *cat
			return &copied, nil
		}
	}
	return nil, nil
}

func (m *MockRepository) GetByID(ctx context.Context, id int64) (*categoryDatamodel.Category, error) {
	if m.shouldFail {
		return nil, m.failError
	}
	cat, exists := m.categories[id]
	if !exists {
		return nil, nil
	}
	copied := *cat
	return &copied, nil
}

func (m *MockRepository) Create(ctx context.Context, cat *categoryDatamodel.Category) error {
	if m.shouldFail {
		return m.failError
	}
	if m.createError != nil {
		return m.createError
	}
	m.nextID++
	cat.ID = m.nextID
	cat.CreatedAt = time.Now().UTC()
	cat.UpdatedAt = cat.CreatedAt
	stored := *cat
	m.categories[cat.ID] = &stored
	return nil
}

func (m *MockRepository) Update(ctx context.Context, cat *categoryDatamodel.Category) error {
	if m.shouldFail {
		return m.failError
	}
	if _, exists := m.categories[cat.ID]; !exists {
		return category.ErrNotFound
	}
	cat.UpdatedAt = time.Now().UTC()
	stored := *cat
	m.categories[cat.ID] = &stored
	return nil
}

func (m *MockRepository) Delete(ctx context.Context, id int64) (int64, error) {
	if m.shouldFail {
		return 0, m.failError
	}
	if _, exists := m.categories[id]; !exists {
		return 0, category.ErrNotFound
	}
	removed := m.expenseCounts[id]
	delete(m.categories, id)
	delete(m.expenseCounts, id)
	return removed, nil
}

func (m *MockRepository) Count(ctx context.Context) (int64, error) {
	if m.shouldFail {
		return 0, m.failError
	}
	return int64(len(m.categories)), nil
}

func (m *MockRepository) CountExpenses(ctx context.Context, id int64) (int64, error) {
	if m.shouldFail {
		return 0, m.failError
	}
	return m.expenseCounts[id], nil
}

// Helper methods for testing
func (m *MockRepository) SetShouldFail(shouldFail bool, err error) {
	m.shouldFail = shouldFail
	m.failError = err
}

func (m *MockRepository) AddCategory(name string) int64 {
	m.nextID++
	m.categories[m.nextID] = &categoryDatamodel.Category{
		ID:    m.nextID,
		Name:  name,
		Icon:  category.DefaultIcon,
		Color: category.DefaultColor,
	}
	return m.nextID
}

// RecordingPublisher keeps every published event.
type RecordingPublisher struct {
	mu     sync.Mutex
	events []events.Event
}

func (p *RecordingPublisher) Publish(ctx context.Context, event events.Event) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, event)
	return nil
}

func (p *RecordingPublisher) Types() []string {
	p.mu.Lock()
	defer p.mu.Unlock()
	types := make([]string, len(p.events))
	for i, e := range p.events {
		types[i] = e.EventType()
	}
	return types
}

func strPtr(s string) *string { return &s }

var _ = Describe("Category Service", func() {
	var (
		ctx       context.Context
		mockRepo  *MockRepository
		publisher *RecordingPublisher
		service   *category.Service
	)

	BeforeEach(func() {
		ctx = context.Background()
		mockRepo = NewMockRepository()
		publisher = &RecordingPublisher{}
		service = category.NewService(mockRepo, publisher, logger.Discard())
	})

	Describe("ListAll", func() {
		It("should return categories ordered by name ignoring case", func() {
			mockRepo.AddCategory("transport")
			mockRepo.AddCategory("Food")
			mockRepo.AddCategory("bills")

			categories, err := service.ListAll(ctx)
			Expect(err).NotTo(HaveOccurred())

			names := make([]string, len(categories))
			for i, c := range categories {
				names[i] = c.Name
			}
			Expect(names).To(Equal([]string{"bills", "Food", "transport"}))
		})

		It("should return an empty slice for an empty directory", func() {
			categories, err := service.ListAll(ctx)
			Expect(err).NotTo(HaveOccurred())
			Expect(categories).To(BeEmpty())
		})

		It("should propagate repository errors", func() {
			mockRepo.SetShouldFail(true, errors.New("database error"))
			categories, err := service.ListAll(ctx)
			Expect(err).To(MatchError("database error"))
			Expect(categories).To(BeNil())
		})
	})

	Describe("GetByID", func() {
		It("should return the category", func() {
			id := mockRepo.AddCategory("Food")
			found, err := service.GetByID(ctx, id)
			Expect(err).NotTo(HaveOccurred())
			Expect(found.Name).To(Equal("Food"))
		})

		It("should report NotFound with entity details", func() {
			_, err := service.GetByID(ctx, 42)
			Expect(internal.IsNotFound(err)).To(BeTrue())
			Expect(err.Error()).To(Equal("Category with id 42 not found."))

			appErr, ok := internal.AsAppError(err)
			Expect(ok).To(BeTrue())
			Expect(appErr.Details).To(Equal(internal.EntityDetails{Entity: "Category", ID: 42}))
		})
	})

	Describe("FindByName", func() {
		It("should match ignoring case", func() {
			mockRepo.AddCategory("Food")
			found, err := service.FindByName(ctx, "FOOD")
			Expect(err).NotTo(HaveOccurred())
			Expect(found).NotTo(BeNil())
			Expect(found.Name).To(Equal("Food"))
		})

		It("should return nil without error when absent", func() {
			found, err := service.FindByName(ctx, "nothing")
			Expect(err).NotTo(HaveOccurred())
			Expect(found).To(BeNil())
		})
	})

	Describe("Create", func() {
		It("should apply default icon and color", func() {
			created, err := service.Create(ctx, category.CreateCategoryDTO{Name: "Food"})
			Expect(err).NotTo(HaveOccurred())
			Expect(created.ID).To(BeNumerically(">", 0))
			Expect(created.Icon).To(Equal(category.DefaultIcon))
			Expect(created.Color).To(Equal(category.DefaultColor))
			Expect(created.Description).To(BeNil())
			Expect(publisher.Types()).To(Equal([]string{events.EventTypeCategoryCreated}))
		})

		It("should keep provided attributes", func() {
			created, err := service.Create(ctx, category.CreateCategoryDTO{
				Name:        "Food",
				Description: strPtr("Groceries and restaurants"),
				Icon:        strPtr("fas fa-utensils"),
				Color:       strPtr("#FF5733"),
			})
			Expect(err).NotTo(HaveOccurred())
			Expect(*created.Description).To(Equal("Groceries and restaurants"))
			Expect(created.Icon).To(Equal("fas fa-utensils"))
			Expect(created.Color).To(Equal("#FF5733"))
		})

		It("should reject a name that differs only in case", func() {
			mockRepo.AddCategory("Food")
			_, err := service.Create(ctx, category.CreateCategoryDTO{Name: "food"})
			Expect(internal.IsConflict(err)).To(BeTrue())

			appErr, _ := internal.AsAppError(err)
			Expect(appErr.Details).To(Equal(internal.DuplicateDetails{Entity: "Category", Field: "name", Value: "food"}))
			Expect(publisher.Types()).To(BeEmpty())
		})

		It("should report a conflict when the store rejects the name", func() {
			mockRepo.createError = category.ErrNameTaken
			_, err := service.Create(ctx, category.CreateCategoryDTO{Name: "Food"})
			Expect(internal.IsConflict(err)).To(BeTrue())
		})

		DescribeTable("field validation",
			func(dto category.CreateCategoryDTO, field string) {
				_, err := service.Create(ctx, dto)
				Expect(internal.IsValidation(err)).To(BeTrue())

				appErr, _ := internal.AsAppError(err)
				details := appErr.Details.(internal.ValidationErrors)
				Expect(details.Errors[0].Field).To(Equal(field))
			},
			Entry("empty name", category.CreateCategoryDTO{Name: ""}, "name"),
			Entry("long name", category.CreateCategoryDTO{Name: strings.Repeat("a", 101)}, "name"),
			Entry("bad color", category.CreateCategoryDTO{Name: "Food", Color: strPtr("blue")}, "color"),
		)
	})

	Describe("Update", func() {
		var id int64

		BeforeEach(func() {
			id = mockRepo.AddCategory("Food")
		})

		It("should change only the supplied fields", func() {
			updated, err := service.Update(ctx, id, category.UpdateCategoryDTO{Color: strPtr("#000000")})
			Expect(err).NotTo(HaveOccurred())
			Expect(updated.Name).To(Equal("Food"))
			Expect(updated.Color).To(Equal("#000000"))
			Expect(updated.Icon).To(Equal(category.DefaultIcon))
			Expect(publisher.Types()).To(Equal([]string{events.EventTypeCategoryUpdated}))
		})

		It("should allow renaming to a different case of its own name", func() {
			updated, err := service.Update(ctx, id, category.UpdateCategoryDTO{Name: strPtr("FOOD")})
			Expect(err).NotTo(HaveOccurred())
			Expect(updated.Name).To(Equal("FOOD"))
		})

		It("should reject a name owned by another category", func() {
			mockRepo.AddCategory("Transport")
			_, err := service.Update(ctx, id, category.UpdateCategoryDTO{Name: strPtr("transport")})
			Expect(internal.IsConflict(err)).To(BeTrue())
		})

		It("should report NotFound for unknown ids", func() {
			_, err := service.Update(ctx, 999, category.UpdateCategoryDTO{Name: strPtr("x")})
			Expect(internal.IsNotFound(err)).To(BeTrue())
		})
	})

	Describe("Delete", func() {
		It("should delete and announce the removed expense count", func() {
			id := mockRepo.AddCategory("Food")
			mockRepo.expenseCounts[id] = 3

			Expect(service.Delete(ctx, id)).To(Succeed())

			count, err := service.Count(ctx)
			Expect(err).NotTo(HaveOccurred())
			Expect(count).To(BeZero())

			Expect(publisher.events).To(HaveLen(1))
			Expect(publisher.events[0].Payload()).To(HaveKeyWithValue("removed_expenses", int64(3)))
		})

		It("should report NotFound for unknown ids", func() {
			err := service.Delete(ctx, 7)
			Expect(internal.IsNotFound(err)).To(BeTrue())
		})
	})

	Describe("ListWithExpenseCounts", func() {
		It("should include categories without expenses", func() {
			food := mockRepo.AddCategory("Food")
			mockRepo.AddCategory("Bills")
			mockRepo.expenseCounts[food] = 2

			rows, err := service.ListWithExpenseCounts(ctx)
			Expect(err).NotTo(HaveOccurred())
			Expect(rows).To(HaveLen(2))
			Expect(rows[0].Name).To(Equal("Bills"))
			Expect(rows[0].ExpenseCount).To(BeZero())
			Expect(rows[1].ExpenseCount).To(Equal(int64(2)))
		})
	})
})
