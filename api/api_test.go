package api_test

import (
	"context"
	"testing"

	"github.com/frahmantamala/expense-tracker/api"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

func TestAPI(t *testing.T) {
	RegisterFailHandler(Fail)
	RunSpecs(t, "API Suite")
}

var _ = Describe("OpenAPI document", func() {
	It("should load and validate", func() {
		doc, err := api.Load(context.Background())
		Expect(err).NotTo(HaveOccurred())
		Expect(doc.Info.Title).To(Equal("Expense Tracker API"))
	})

	It("should describe every routed path", func() {
		doc, err := api.Load(context.Background())
		Expect(err).NotTo(HaveOccurred())

		for _, path := range []string{
			"/health",
			"/ping",
			"/categories",
			"/categories/stats",
			"/categories/search",
			"/categories/{id}",
			"/expenses",
			"/expenses/recent",
			"/expenses/summary",
			"/expenses/search",
			"/expenses/export",
			"/expenses/analytics/category",
			"/expenses/analytics/monthly",
			"/expenses/category/{categoryID}",
			"/expenses/{id}",
		} {
			Expect(doc.Paths.Find(path)).NotTo(BeNil(), path)
		}
	})
})
