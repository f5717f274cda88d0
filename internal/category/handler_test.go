package category_test

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"

	"github.com/frahmantamala/expense-tracker/internal"
	"github.com/frahmantamala/expense-tracker/internal/category"
	categoryPostgres "github.com/frahmantamala/expense-tracker/internal/category/postgres"
	"github.com/frahmantamala/expense-tracker/internal/database"
	"github.com/frahmantamala/expense-tracker/internal/transport"
	"github.com/frahmantamala/expense-tracker/pkg/logger"
	"github.com/go-chi/chi"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"gorm.io/gorm"
)

func openTestDB() *gorm.DB {
	database.SetQuiet(true)
	db, err := database.Open(internal.DatabaseConfig{Driver: internal.DriverSQLite, Source: ":memory:"}, nil)
	Expect(err).NotTo(HaveOccurred())

	sqlDB, err := db.DB()
	Expect(err).NotTo(HaveOccurred())
	Expect(database.Migrate(context.Background(), sqlDB, internal.DriverSQLite, false)).To(Succeed())
	DeferCleanup(sqlDB.Close)
	return db
}

var _ = Describe("Category Handler", func() {
	var (
		db     *gorm.DB
		router *chi.Mux
	)

	do := func(method, path string, body interface{}) *httptest.ResponseRecorder {
		var buf bytes.Buffer
		if body != nil {
			Expect(json.NewEncoder(&buf).Encode(body)).To(Succeed())
		}
		req := httptest.NewRequest(method, path, &buf)
		req.Header.Set("Content-Type", "application/json")
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, req)
		return rec
	}

	decode := func(rec *httptest.ResponseRecorder) map[string]interface{} {
		var body map[string]interface{}
		Expect(json.Unmarshal(rec.Body.Bytes(), &body)).To(Succeed())
		return body
	}

	BeforeEach(func() {
		db = openTestDB()
		service := category.NewService(categoryPostgres.NewCategoryRepository(db), nil, logger.Discard())
		handler := category.NewHandler(transport.NewBaseHandler(logger.Discard()), service)

		router = chi.NewRouter()
		router.Get("/categories", handler.ListCategories)
		router.Get("/categories/stats", handler.GetCategoryStats)
		router.Get("/categories/search", handler.SearchCategory)
		router.Get("/categories/{id}", handler.GetCategory)
		router.Post("/categories", handler.CreateCategory)
		router.Put("/categories/{id}", handler.UpdateCategory)
		router.Delete("/categories/{id}", handler.DeleteCategory)
	})

	It("should create and fetch a category", func() {
		rec := do(http.MethodPost, "/categories", map[string]string{"name": "Food", "color": "#FF5733"})
		Expect(rec.Code).To(Equal(http.StatusCreated))
		created := decode(rec)
		Expect(created).To(HaveKeyWithValue("name", "Food"))
		Expect(created).To(HaveKeyWithValue("icon", category.DefaultIcon))

		rec = do(http.MethodGet, "/categories/1", nil)
		Expect(rec.Code).To(Equal(http.StatusOK))
		Expect(decode(rec)).To(HaveKeyWithValue("expense_count", float64(0)))
	})

	It("should answer 409 for a duplicate name", func() {
		Expect(do(http.MethodPost, "/categories", map[string]string{"name": "Food"}).Code).To(Equal(http.StatusCreated))

		rec := do(http.MethodPost, "/categories", map[string]string{"name": "FOOD"})
		Expect(rec.Code).To(Equal(http.StatusConflict))
		errBody := decode(rec)["error"].(map[string]interface{})
		Expect(errBody).To(HaveKeyWithValue("type", "CONFLICT"))
		Expect(errBody["details"]).To(HaveKeyWithValue("field", "name"))
	})

	It("should answer 400 for invalid fields and malformed bodies", func() {
		Expect(do(http.MethodPost, "/categories", map[string]string{"name": ""}).Code).To(Equal(http.StatusBadRequest))
		Expect(do(http.MethodPost, "/categories", map[string]string{"name": "x", "color": "red"}).Code).To(Equal(http.StatusBadRequest))

		req := httptest.NewRequest(http.MethodPost, "/categories", bytes.NewBufferString("{"))
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, req)
		Expect(rec.Code).To(Equal(http.StatusBadRequest))
	})

	It("should answer 404 for unknown ids", func() {
		Expect(do(http.MethodGet, "/categories/99", nil).Code).To(Equal(http.StatusNotFound))
		Expect(do(http.MethodPut, "/categories/99", map[string]string{"name": "x"}).Code).To(Equal(http.StatusNotFound))
		Expect(do(http.MethodDelete, "/categories/99", nil).Code).To(Equal(http.StatusNotFound))
		Expect(do(http.MethodGet, "/categories/abc", nil).Code).To(Equal(http.StatusBadRequest))
	})

	It("should update, search, count and delete", func() {
		Expect(do(http.MethodPost, "/categories", map[string]string{"name": "Food"}).Code).To(Equal(http.StatusCreated))
		Expect(do(http.MethodPost, "/categories", map[string]string{"name": "Bills"}).Code).To(Equal(http.StatusCreated))

		rec := do(http.MethodPut, "/categories/1", map[string]string{"description": "Meals"})
		Expect(rec.Code).To(Equal(http.StatusOK))
		Expect(decode(rec)).To(HaveKeyWithValue("description", "Meals"))

		rec = do(http.MethodPut, "/categories/1", map[string]string{"name": "bills"})
		Expect(rec.Code).To(Equal(http.StatusConflict))

		rec = do(http.MethodGet, "/categories/search?name=FOOD", nil)
		Expect(rec.Code).To(Equal(http.StatusOK))
		Expect(decode(rec)).To(HaveKeyWithValue("name", "Food"))
		Expect(do(http.MethodGet, "/categories/search?name=nothing", nil).Code).To(Equal(http.StatusNotFound))
		Expect(do(http.MethodGet, "/categories/search", nil).Code).To(Equal(http.StatusBadRequest))

		rec = do(http.MethodGet, "/categories", nil)
		Expect(rec.Code).To(Equal(http.StatusOK))
		list := decode(rec)
		Expect(list).To(HaveKeyWithValue("total", float64(2)))
		first := list["categories"].([]interface{})[0].(map[string]interface{})
		Expect(first).To(HaveKeyWithValue("name", "Bills"))

		rec = do(http.MethodGet, "/categories/stats", nil)
		Expect(decode(rec)).To(HaveKeyWithValue("total_categories", float64(2)))

		Expect(do(http.MethodDelete, "/categories/1", nil).Code).To(Equal(http.StatusOK))
		Expect(do(http.MethodGet, "/categories/1", nil).Code).To(Equal(http.StatusNotFound))
	})
})
