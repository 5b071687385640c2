package postgres

import (
	"testing"
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	fineDatamodel "github.com/taskgraph/taskgraph/internal/core/datamodel/fine"
	graphDatamodel "github.com/taskgraph/taskgraph/internal/core/datamodel/graph"
	taskDatamodel "github.com/taskgraph/taskgraph/internal/core/datamodel/task"
	userDatamodel "github.com/taskgraph/taskgraph/internal/core/datamodel/user"
	"github.com/taskgraph/taskgraph/internal/task"
)

func TestTaskRepository(t *testing.T) {
	RegisterFailHandler(Fail)
	RunSpecs(t, "TaskRepository Suite")
}

var _ = Describe("TaskRepository", func() {
	var (
		db   *gorm.DB
		repo *TaskRepository
	)

	newNode := func(assigneeID int64, status string, due time.Time) *task.Node {
		node, err := repo.Create(&task.Node{
			Title:      "Test task",
			CreatorID:  1,
			AssigneeID: assigneeID,
			DueDate:    due,
			Status:     status,
			CreatedAt:  time.Now(),
			UpdatedAt:  time.Now(),
		})
		Expect(err).NotTo(HaveOccurred())
		return node
	}

	BeforeEach(func() {
		var err error

		db, err = gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
		Expect(err).NotTo(HaveOccurred())

		err = db.AutoMigrate(
			&userDatamodel.User{},
			&taskDatamodel.Node{},
			&taskDatamodel.TaskLog{},
			&graphDatamodel.Edge{},
			&fineDatamodel.Fine{},
		)
		Expect(err).NotTo(HaveOccurred())

		repo = NewTaskRepository(db)
	})

	AfterEach(func() {
		sqlDB, err := db.DB()
		Expect(err).NotTo(HaveOccurred())
		Expect(sqlDB.Close()).To(Succeed())
	})

	Describe("MarkSeen", func() {
		It("should stamp seen_at once and keep the first timestamp", func() {
			node := newNode(2, task.StatusPending, time.Now().Add(time.Hour))

			first := time.Date(2025, 9, 1, 10, 0, 0, 0, time.UTC)
			Expect(repo.MarkSeen(node.ID, 2, first)).To(Succeed())

			later := first.Add(time.Hour)
			Expect(repo.MarkSeen(node.ID, 2, later)).To(Succeed())

			got, err := repo.GetByID(node.ID)
			Expect(err).NotTo(HaveOccurred())
			Expect(got.SeenAt).NotTo(BeNil())
			Expect(got.SeenAt.Equal(first)).To(BeTrue())
		})

		It("should ignore calls from users other than the assignee", func() {
			node := newNode(2, task.StatusPending, time.Now().Add(time.Hour))

			Expect(repo.MarkSeen(node.ID, 99, time.Now())).To(Succeed())

			got, err := repo.GetByID(node.ID)
			Expect(err).NotTo(HaveOccurred())
			Expect(got.SeenAt).To(BeNil())
		})
	})

	Describe("Complete", func() {
		It("should flip a pending task and report the transition", func() {
			node := newNode(2, task.StatusPending, time.Now().Add(time.Hour))

			changed, err := repo.Complete(node.ID, time.Now())
			Expect(err).NotTo(HaveOccurred())
			Expect(changed).To(BeTrue())

			got, err := repo.GetByID(node.ID)
			Expect(err).NotTo(HaveOccurred())
			Expect(got.Status).To(Equal(task.StatusCompleted))
		})

		It("should match zero rows for an already completed task", func() {
			node := newNode(2, task.StatusCompleted, time.Now().Add(time.Hour))

			changed, err := repo.Complete(node.ID, time.Now())
			Expect(err).NotTo(HaveOccurred())
			Expect(changed).To(BeFalse())
		})

		It("should complete an overdue task", func() {
			node := newNode(2, task.StatusOverdue, time.Now().Add(-time.Hour))

			changed, err := repo.Complete(node.ID, time.Now())
			Expect(err).NotTo(HaveOccurred())
			Expect(changed).To(BeTrue())
		})
	})

	Describe("MarkOverdue", func() {
		It("should transition only pending tasks past their due date", func() {
			now := time.Now()
			past := newNode(2, task.StatusPending, now.Add(-time.Hour))
			newNode(2, task.StatusPending, now.Add(time.Hour))
			newNode(2, task.StatusCompleted, now.Add(-time.Hour))
			newNode(2, task.StatusOverdue, now.Add(-time.Hour))

			flipped, err := repo.MarkOverdue(now)
			Expect(err).NotTo(HaveOccurred())
			Expect(flipped).To(HaveLen(1))
			Expect(flipped[0].ID).To(Equal(past.ID))
			Expect(flipped[0].AssigneeID).To(Equal(int64(2)))
		})

		It("should return nothing on a second back-to-back sweep", func() {
			now := time.Now()
			newNode(2, task.StatusPending, now.Add(-time.Hour))

			flipped, err := repo.MarkOverdue(now)
			Expect(err).NotTo(HaveOccurred())
			Expect(flipped).To(HaveLen(1))

			flipped, err = repo.MarkOverdue(now.Add(time.Minute))
			Expect(err).NotTo(HaveOccurred())
			Expect(flipped).To(BeEmpty())
		})

		It("should never return a task completed before the sweep", func() {
			now := time.Now()
			node := newNode(2, task.StatusPending, now.Add(-time.Hour))

			changed, err := repo.Complete(node.ID, now)
			Expect(err).NotTo(HaveOccurred())
			Expect(changed).To(BeTrue())

			flipped, err := repo.MarkOverdue(now)
			Expect(err).NotTo(HaveOccurred())
			Expect(flipped).To(BeEmpty())

			got, err := repo.GetByID(node.ID)
			Expect(err).NotTo(HaveOccurred())
			Expect(got.Status).To(Equal(task.StatusCompleted))
		})
	})

	Describe("Delete", func() {
		It("should remove the node with its fines, edges and logs", func() {
			node := newNode(2, task.StatusPending, time.Now().Add(time.Hour))
			other := newNode(2, task.StatusPending, time.Now().Add(time.Hour))

			Expect(db.Create(&fineDatamodel.Fine{UserID: 2, NodeID: node.ID, Amount: 10}).Error).To(Succeed())
			Expect(db.Create(&graphDatamodel.Edge{SourceNodeID: node.ID, TargetNodeID: other.ID}).Error).To(Succeed())
			Expect(db.Create(&graphDatamodel.Edge{SourceNodeID: other.ID, TargetNodeID: node.ID}).Error).To(Succeed())
			Expect(repo.AppendLog(&task.TaskLog{NodeID: node.ID, EditorID: 1, ChangeDescription: "x", CreatedAt: time.Now()})).To(Succeed())

			Expect(repo.Delete(node.ID)).To(Succeed())

			_, err := repo.GetByID(node.ID)
			Expect(err).To(MatchError(task.ErrTaskNotFound))

			var fineCount, edgeCount, logCount int64
			Expect(db.Model(&fineDatamodel.Fine{}).Where("node_id = ?", node.ID).Count(&fineCount).Error).To(Succeed())
			Expect(db.Model(&graphDatamodel.Edge{}).Where("source_node_id = ? OR target_node_id = ?", node.ID, node.ID).Count(&edgeCount).Error).To(Succeed())
			Expect(db.Model(&taskDatamodel.TaskLog{}).Where("node_id = ?", node.ID).Count(&logCount).Error).To(Succeed())
			Expect(fineCount).To(BeZero())
			Expect(edgeCount).To(BeZero())
			Expect(logCount).To(BeZero())

			// The unrelated node survives.
			_, err = repo.GetByID(other.ID)
			Expect(err).NotTo(HaveOccurred())
		})

		It("should return not found for a missing node", func() {
			Expect(repo.Delete(404)).To(MatchError(task.ErrTaskNotFound))
		})
	})

	Describe("ListForUser", func() {
		BeforeEach(func() {
			Expect(db.Create(&userDatamodel.User{ID: 1, Username: "boss", PasswordHash: "x", Role: 2, Score: 100, IsActive: true}).Error).To(Succeed())
			Expect(db.Create(&userDatamodel.User{ID: 2, Username: "worker", PasswordHash: "x", Role: 0, Score: 100, IsActive: true}).Error).To(Succeed())
		})

		It("should order urgent tasks first, then by nearest due date", func() {
			now := time.Now()

			calm := newNode(2, task.StatusPending, now.Add(1*time.Hour))
			later := newNode(2, task.StatusPending, now.Add(3*time.Hour))
			urgent, err := repo.Create(&task.Node{
				Title: "Urgent task", CreatorID: 1, AssigneeID: 2,
				DueDate: now.Add(2 * time.Hour), IsUrgent: true,
				Status: task.StatusPending, CreatedAt: now, UpdatedAt: now,
			})
			Expect(err).NotTo(HaveOccurred())

			summaries, err := repo.ListForUser(2)
			Expect(err).NotTo(HaveOccurred())
			Expect(summaries).To(HaveLen(3))
			Expect(summaries[0].ID).To(Equal(urgent.ID))
			Expect(summaries[1].ID).To(Equal(calm.ID))
			Expect(summaries[2].ID).To(Equal(later.ID))
			Expect(summaries[0].IsAssignee).To(BeTrue())
		})

		It("should exclude completed tasks and count direct incomplete prerequisites", func() {
			now := time.Now()

			done := newNode(2, task.StatusCompleted, now.Add(time.Hour))
			pendingDep := newNode(2, task.StatusPending, now.Add(time.Hour))
			target := newNode(2, task.StatusPending, now.Add(2*time.Hour))

			Expect(db.Create(&graphDatamodel.Edge{SourceNodeID: done.ID, TargetNodeID: target.ID}).Error).To(Succeed())
			Expect(db.Create(&graphDatamodel.Edge{SourceNodeID: pendingDep.ID, TargetNodeID: target.ID}).Error).To(Succeed())

			summaries, err := repo.ListForUser(2)
			Expect(err).NotTo(HaveOccurred())

			byID := map[int64]*task.TaskSummary{}
			for _, s := range summaries {
				byID[s.ID] = s
			}
			Expect(byID).NotTo(HaveKey(done.ID))
			Expect(byID[target.ID].BlockedByCount).To(Equal(int64(1)))
			Expect(byID[pendingDep.ID].BlockedByCount).To(BeZero())
		})
	})
})
