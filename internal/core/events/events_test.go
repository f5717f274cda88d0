package events_test

import (
	"context"
	"encoding/json"
	"errors"
	"sync/atomic"
	"testing"

	"github.com/frahmantamala/expense-tracker/internal"
	"github.com/frahmantamala/expense-tracker/internal/core/events"
	"github.com/frahmantamala/expense-tracker/pkg/logger"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

func TestEvents(t *testing.T) {
	RegisterFailHandler(Fail)
	RunSpecs(t, "Events Suite")
}

var _ = Describe("EventBus", func() {
	var bus *events.EventBus

	BeforeEach(func() {
		bus = events.NewEventBus(logger.Discard())
	})

	It("should deliver published events to subscribers", func() {
		var received atomic.Int32
		bus.Subscribe(events.EventTypeCategoryCreated, func(ctx context.Context, event events.Event) error {
			received.Add(1)
			return nil
		})

		Expect(bus.Publish(context.Background(), events.NewCategoryCreatedEvent(context.Background(), 1, "Food"))).To(Succeed())
		bus.Wait()
		Expect(received.Load()).To(Equal(int32(1)))
	})

	It("should keep delivering after the caller's context is cancelled", func() {
		var handlerErr atomic.Value
		bus.Subscribe(events.EventTypeExpenseDeleted, func(ctx context.Context, event events.Event) error {
			handlerErr.Store(ctx.Err() == nil)
			return nil
		})

		ctx, cancel := context.WithCancel(context.Background())
		cancel()
		Expect(bus.Publish(ctx, events.NewExpenseDeletedEvent(ctx, 1, 2, "1.00"))).To(Succeed())
		bus.Wait()
		Expect(handlerErr.Load()).To(Equal(true))
	})

	It("should ignore events with no subscribers", func() {
		Expect(bus.PublishSync(context.Background(), events.NewExpenseCreatedEvent(context.Background(), 1, 1, "2.00"))).To(Succeed())
	})

	It("should surface handler failures from PublishSync", func() {
		bus.Subscribe(events.EventTypeExpenseUpdated, func(ctx context.Context, event events.Event) error {
			return errors.New("boom")
		})

		err := bus.PublishSync(context.Background(), events.NewExpenseUpdatedEvent(context.Background(), 1, 1, "2.00"))
		Expect(err).To(MatchError(ContainSubstring("boom")))
	})

	It("should subscribe to every domain event type with SubscribeAll", func() {
		var received atomic.Int32
		bus.SubscribeAll(func(ctx context.Context, event events.Event) error {
			received.Add(1)
			return nil
		})

		for _, eventType := range events.AllEventTypes {
			Expect(bus.PublishSync(context.Background(), events.BaseEvent{ID: "x", Type: eventType})).To(Succeed())
		}
		Expect(received.Load()).To(Equal(int32(len(events.AllEventTypes))))
	})
})

var _ = Describe("Domain events", func() {
	It("should carry the trace id of the originating request", func() {
		ctx := internal.ContextWithTraceID(context.Background(), "trace-1")
		event := events.NewCategoryDeletedEvent(ctx, 3, "Food", 4)

		Expect(event.EventID()).NotTo(BeEmpty())
		Expect(event.TraceID).To(Equal("trace-1"))
		Expect(event.Payload()).To(HaveKeyWithValue("removed_expenses", int64(4)))
	})

	It("should encode the broker envelope", func() {
		ctx := internal.ContextWithTraceID(context.Background(), "trace-2")
		event := events.NewExpenseCreatedEvent(ctx, 7, 3, "12.50")

		body, err := events.Encode(event)
		Expect(err).NotTo(HaveOccurred())

		var env map[string]interface{}
		Expect(json.Unmarshal(body, &env)).To(Succeed())
		Expect(env).To(HaveKeyWithValue("type", events.EventTypeExpenseCreated))
		Expect(env).To(HaveKeyWithValue("id", event.EventID()))
		Expect(env).To(HaveKeyWithValue("trace_id", "trace-2"))
		Expect(env["data"]).To(HaveKeyWithValue("amount", "12.50"))
	})

	It("should decode what it encodes so consumers can reuse handlers", func() {
		event := events.NewCategoryCreatedEvent(context.Background(), 5, "Travel")
		body, err := events.Encode(event)
		Expect(err).NotTo(HaveOccurred())

		env, err := events.Decode(body)
		Expect(err).NotTo(HaveOccurred())
		Expect(env.EventType()).To(Equal(events.EventTypeCategoryCreated))
		Expect(env.EventID()).To(Equal(event.EventID()))
		Expect(env.OccurredAt().Equal(event.OccurredAt())).To(BeTrue())
		Expect(env.Payload()).To(HaveKeyWithValue("name", "Travel"))

		_, err = events.Decode([]byte(`{"id":"x"}`))
		Expect(err).To(HaveOccurred())
	})
})
