package task_test

import (
	"context"
	"errors"
	"log/slog"
	"os"
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/taskgraph/taskgraph/internal/core/events"
	"github.com/taskgraph/taskgraph/internal/task"
)

var _ = Describe("TaskEventHandler", func() {
	var (
		repo    *mockTaskRepository
		handler *task.EventHandler
		bus     *events.EventBus
		ctx     context.Context
	)

	testLogger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelError}))

	BeforeEach(func() {
		repo = newMockTaskRepository()
		handler = task.NewEventHandler(repo, testLogger)
		bus = events.NewEventBus(testLogger)
		handler.RegisterEventHandlers(bus)
		ctx = context.Background()
	})

	Describe("task completed events", func() {
		It("should append a completion entry attributed to the assignee", func() {
			err := bus.PublishSync(ctx, events.NewTaskCompletedEvent(7, 3))

			Expect(err).NotTo(HaveOccurred())
			Expect(repo.logs).To(HaveLen(1))
			Expect(repo.logs[0].NodeID).To(Equal(int64(7)))
			Expect(repo.logs[0].EditorID).To(Equal(int64(3)))
			Expect(repo.logs[0].ChangeDescription).To(ContainSubstring("completed"))
		})

		It("should reject a mismatched event payload", func() {
			err := handler.HandleTaskCompleted(ctx, events.NewTaskOverdueEvent(7, 3, time.Now()))

			Expect(err).To(HaveOccurred())
			Expect(repo.logs).To(BeEmpty())
		})
	})

	Describe("task overdue events", func() {
		It("should record the missed due date in the node history", func() {
			due := time.Date(2026, 8, 30, 17, 0, 0, 0, time.UTC)

			err := bus.PublishSync(ctx, events.NewTaskOverdueEvent(11, 4, due))

			Expect(err).NotTo(HaveOccurred())
			Expect(repo.logs).To(HaveLen(1))
			Expect(repo.logs[0].NodeID).To(Equal(int64(11)))
			Expect(repo.logs[0].ChangeDescription).To(ContainSubstring(task.StatusOverdue))
			Expect(repo.logs[0].ChangeDescription).To(ContainSubstring("2026-08-30T17:00:00Z"))
		})
	})

	Describe("fine issued events", func() {
		It("should record the fine amount and reason", func() {
			err := bus.PublishSync(ctx, events.NewFineIssuedEvent(5, 4, 11, 10, "Missed deadline"))

			Expect(err).NotTo(HaveOccurred())
			Expect(repo.logs).To(HaveLen(1))
			Expect(repo.logs[0].NodeID).To(Equal(int64(11)))
			Expect(repo.logs[0].EditorID).To(Equal(int64(4)))
			Expect(repo.logs[0].ChangeDescription).To(ContainSubstring("10.00"))
			Expect(repo.logs[0].ChangeDescription).To(ContainSubstring("Missed deadline"))
		})
	})

	Describe("audit failures", func() {
		It("should surface a failed append through synchronous publish", func() {
			repo.logError = errors.New("disk full")

			err := bus.PublishSync(ctx, events.NewTaskCompletedEvent(7, 3))

			Expect(err).To(HaveOccurred())
			Expect(repo.logs).To(BeEmpty())
		})
	})
})
