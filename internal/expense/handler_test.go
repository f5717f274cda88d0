package expense_test

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"time"

	"github.com/frahmantamala/expense-tracker/internal/expense"
	"github.com/frahmantamala/expense-tracker/internal/transport"
	"github.com/frahmantamala/expense-tracker/pkg/logger"
	"github.com/go-chi/chi"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"github.com/xuri/excelize/v2"
)

var _ = Describe("Expense Handler", func() {
	var (
		f      *fixture
		router *chi.Mux
		food   int64
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
		f = newFixture()
		food = f.category("Food", "#FF5733")
		handler := expense.NewHandler(transport.NewBaseHandler(logger.Discard()), f.expenses)

		router = chi.NewRouter()
		router.Get("/expenses", handler.ListExpenses)
		router.Post("/expenses", handler.CreateExpense)
		router.Get("/expenses/search", handler.SearchExpenses)
		router.Get("/expenses/recent", handler.RecentExpenses)
		router.Get("/expenses/summary", handler.GetSummary)
		router.Get("/expenses/export", handler.ExportExpenses)
		router.Get("/expenses/analytics/category", handler.SpendingByCategory)
		router.Get("/expenses/analytics/monthly", handler.MonthlyTrend)
		router.Get("/expenses/category/{categoryID}", handler.ListByCategory)
		router.Get("/expenses/{id}", handler.GetExpense)
		router.Put("/expenses/{id}", handler.UpdateExpense)
		router.Delete("/expenses/{id}", handler.DeleteExpense)
	})

	It("should create an expense from a JSON payload", func() {
		rec := do(http.MethodPost, "/expenses", map[string]interface{}{
			"amount":       "12.50",
			"description":  "Lunch",
			"expense_date": "2024-06-01",
			"category_id":  food,
		})
		Expect(rec.Code).To(Equal(http.StatusCreated))

		created := decode(rec)
		Expect(created).To(HaveKeyWithValue("amount", "12.50"))
		Expect(created).To(HaveKeyWithValue("expense_date", "2024-06-01"))
		Expect(created).To(HaveKeyWithValue("category_name", "Food"))

		rec = do(http.MethodGet, "/expenses/1", nil)
		Expect(rec.Code).To(Equal(http.StatusOK))
		Expect(decode(rec)).To(HaveKeyWithValue("description", "Lunch"))
	})

	It("should answer 400 with the failing field", func() {
		rec := do(http.MethodPost, "/expenses", map[string]interface{}{
			"amount":       "5",
			"description":  "Ghost",
			"expense_date": "2024-06-01",
			"category_id":  999,
		})
		Expect(rec.Code).To(Equal(http.StatusBadRequest))
		errBody := decode(rec)["error"].(map[string]interface{})
		Expect(errBody).To(HaveKeyWithValue("type", "VALIDATION_ERROR"))
		detail := errBody["details"].(map[string]interface{})["errors"].([]interface{})[0].(map[string]interface{})
		Expect(detail).To(HaveKeyWithValue("field", "category_id"))

		rec = do(http.MethodPost, "/expenses", map[string]interface{}{
			"amount":       "5",
			"description":  "Bad date",
			"expense_date": "01/06/2024",
			"category_id":  food,
		})
		Expect(rec.Code).To(Equal(http.StatusBadRequest))
	})

	It("should answer 404 for unknown expenses", func() {
		Expect(do(http.MethodGet, "/expenses/42", nil).Code).To(Equal(http.StatusNotFound))
		Expect(do(http.MethodPut, "/expenses/42", map[string]string{"description": "x"}).Code).To(Equal(http.StatusNotFound))
		Expect(do(http.MethodDelete, "/expenses/42", nil).Code).To(Equal(http.StatusNotFound))
		Expect(do(http.MethodGet, "/expenses/zero", nil).Code).To(Equal(http.StatusBadRequest))
	})

	Context("with expenses", func() {
		BeforeEach(func() {
			f.expense(food, "12.50", "Lunch", expense.NewDate(2024, time.June, 10))
			f.expense(food, "7.25", "Breakfast", expense.NewDate(2024, time.June, 12))
			f.expense(food, "3.00", "Tea", expense.NewDate(2024, time.May, 3))
		})

		It("should paginate by page and size", func() {
			rec := do(http.MethodGet, "/expenses?page=2&size=2", nil)
			Expect(rec.Code).To(Equal(http.StatusOK))
			body := decode(rec)
			Expect(body).To(HaveKeyWithValue("total", float64(3)))
			Expect(body).To(HaveKeyWithValue("pages", float64(2)))
			Expect(body["expenses"]).To(HaveLen(1))

			Expect(do(http.MethodGet, "/expenses?page=0", nil).Code).To(Equal(http.StatusBadRequest))
			Expect(do(http.MethodGet, "/expenses?size=101", nil).Code).To(Equal(http.StatusBadRequest))
		})

		It("should paginate by offset and limit", func() {
			rec := do(http.MethodGet, "/expenses?offset=1&limit=1", nil)
			Expect(rec.Code).To(Equal(http.StatusOK))
			body := decode(rec)
			first := body["expenses"].([]interface{})[0].(map[string]interface{})
			Expect(first).To(HaveKeyWithValue("description", "Lunch"))
		})

		It("should update and delete", func() {
			rec := do(http.MethodPut, "/expenses/1", map[string]string{"amount": "13.00"})
			Expect(rec.Code).To(Equal(http.StatusOK))
			Expect(decode(rec)).To(HaveKeyWithValue("amount", "13.00"))

			rec = do(http.MethodDelete, "/expenses/1", nil)
			Expect(rec.Code).To(Equal(http.StatusOK))
			Expect(decode(rec)).To(HaveKeyWithValue("message", "Expense deleted successfully"))
		})

		It("should serve the aggregate endpoints", func() {
			rec := do(http.MethodGet, "/expenses/summary", nil)
			Expect(rec.Code).To(Equal(http.StatusOK))
			Expect(decode(rec)).To(HaveKeyWithValue("total_amount", "22.75"))

			rec = do(http.MethodGet, "/expenses/analytics/category", nil)
			Expect(rec.Code).To(Equal(http.StatusOK))
			var spending []map[string]interface{}
			Expect(json.Unmarshal(rec.Body.Bytes(), &spending)).To(Succeed())
			Expect(spending).To(HaveLen(1))
			Expect(spending[0]).To(HaveKeyWithValue("total", "22.75"))

			rec = do(http.MethodGet, "/expenses/analytics/monthly", nil)
			Expect(rec.Code).To(Equal(http.StatusOK))
			var trend []map[string]interface{}
			Expect(json.Unmarshal(rec.Body.Bytes(), &trend)).To(Succeed())
			Expect(trend).To(HaveLen(2))
			Expect(trend[1]).To(HaveKeyWithValue("total", "19.75"))
		})

		It("should search, list recent and list by category", func() {
			rec := do(http.MethodGet, "/expenses/search?keyword=tea", nil)
			Expect(rec.Code).To(Equal(http.StatusOK))
			Expect(decode(rec)).To(HaveKeyWithValue("total", float64(1)))

			rec = do(http.MethodGet, "/expenses/search?start_date=2024-06-01&end_date=2024-06-30", nil)
			Expect(decode(rec)).To(HaveKeyWithValue("total", float64(2)))
			Expect(do(http.MethodGet, "/expenses/search?start_date=june", nil).Code).To(Equal(http.StatusBadRequest))

			rec = do(http.MethodGet, "/expenses/recent?limit=1", nil)
			Expect(decode(rec)).To(HaveKeyWithValue("total", float64(1)))
			Expect(do(http.MethodGet, "/expenses/recent?limit=51", nil).Code).To(Equal(http.StatusBadRequest))

			rec = do(http.MethodGet, "/expenses/category/1", nil)
			Expect(decode(rec)).To(HaveKeyWithValue("total", float64(3)))
		})

		It("should export a workbook", func() {
			rec := do(http.MethodGet, "/expenses/export", nil)
			Expect(rec.Code).To(Equal(http.StatusOK))
			Expect(rec.Header().Get("Content-Disposition")).To(ContainSubstring(".xlsx"))

			book, err := excelize.OpenReader(rec.Body)
			Expect(err).NotTo(HaveOccurred())
			defer book.Close()

			rows, err := book.GetRows(expense.SheetExpenses)
			Expect(err).NotTo(HaveOccurred())
			Expect(rows).To(HaveLen(4))

			Expect(do(http.MethodGet, "/expenses/export?start_date=2024-06-01", nil).Code).To(Equal(http.StatusBadRequest))
		})
	})
})
