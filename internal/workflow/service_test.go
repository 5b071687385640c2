package workflow_test

import (
	"log/slog"
	"os"
	"testing"
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/taskgraph/taskgraph/internal/task"
	"github.com/taskgraph/taskgraph/internal/user"
	"github.com/taskgraph/taskgraph/internal/workflow"
)

func TestWorkflowService(t *testing.T) {
	RegisterFailHandler(Fail)
	RunSpecs(t, "Workflow Service Suite")
}

type mockWorkflowRepository struct {
	workflows map[int64]*workflow.Workflow
	stats     map[int64]*workflow.Stats
	nextID    int64
}

func newMockWorkflowRepository() *mockWorkflowRepository {
	return &mockWorkflowRepository{
		workflows: make(map[int64]*workflow.Workflow),
		stats:     make(map[int64]*workflow.Stats),
		nextID:    1,
	}
}

func (m *mockWorkflowRepository) Create(w *workflow.Workflow) (*workflow.Workflow, error) {
	created := *w
	created.ID = m.nextID
	m.nextID++
	m.workflows[created.ID] = &created
	return &created, nil
}

func (m *mockWorkflowRepository) List() ([]*workflow.Workflow, error) {
	var result []*workflow.Workflow
	for _, w := range m.workflows {
		result = append(result, w)
	}
	return result, nil
}

func (m *mockWorkflowRepository) GetByID(id int64) (*workflow.Workflow, error) {
	w, exists := m.workflows[id]
	if !exists {
		return nil, workflow.ErrWorkflowNotFound
	}
	copied := *w
	return &copied, nil
}

func (m *mockWorkflowRepository) Update(w *workflow.Workflow) (*workflow.Workflow, error) {
	if _, exists := m.workflows[w.ID]; !exists {
		return nil, workflow.ErrWorkflowNotFound
	}
	copied := *w
	m.workflows[w.ID] = &copied
	return w, nil
}

func (m *mockWorkflowRepository) Delete(id int64) error {
	if _, exists := m.workflows[id]; !exists {
		return workflow.ErrWorkflowNotFound
	}
	delete(m.workflows, id)
	return nil
}

func (m *mockWorkflowRepository) Stats(id int64) (*workflow.Stats, error) {
	if _, exists := m.workflows[id]; !exists {
		return nil, workflow.ErrWorkflowNotFound
	}
	return m.stats[id], nil
}

type mockTaskCreator struct {
	created []task.CreateTaskDTO
}

func (m *mockTaskCreator) CreateTask(creatorID int64, creatorRole user.Role, dto task.CreateTaskDTO) (*task.Node, error) {
	m.created = append(m.created, dto)
	return &task.Node{ID: int64(len(m.created)), Title: dto.Title, WorkflowID: dto.WorkflowID}, nil
}

var _ = Describe("WorkflowService", func() {
	var (
		repo    *mockWorkflowRepository
		tasks   *mockTaskCreator
		service *workflow.Service
	)

	testLogger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelError}))

	BeforeEach(func() {
		repo = newMockWorkflowRepository()
		tasks = &mockTaskCreator{}
		service = workflow.NewService(repo, tasks, testLogger)
	})

	Describe("CreateWorkflow", func() {
		It("should create a workflow", func() {
			wf, err := service.CreateWorkflow(workflow.CreateWorkflowDTO{Name: "Launch"})

			Expect(err).NotTo(HaveOccurred())
			Expect(wf.Name).To(Equal("Launch"))
		})

		It("should require a name", func() {
			_, err := service.CreateWorkflow(workflow.CreateWorkflowDTO{})
			Expect(err).To(HaveOccurred())
		})
	})

	Describe("AddNode", func() {
		It("should attach the node to the workflow", func() {
			wf, err := service.CreateWorkflow(workflow.CreateWorkflowDTO{Name: "Launch"})
			Expect(err).NotTo(HaveOccurred())

			node, err := service.AddNode(wf.ID, 1, user.RoleAdmin, task.CreateTaskDTO{
				Title:      "First step",
				AssigneeID: 2,
				DueDate:    time.Now().Add(time.Hour),
			})

			Expect(err).NotTo(HaveOccurred())
			Expect(node.WorkflowID).NotTo(BeNil())
			Expect(*node.WorkflowID).To(Equal(wf.ID))
		})

		It("should refuse for a missing workflow", func() {
			_, err := service.AddNode(404, 1, user.RoleAdmin, task.CreateTaskDTO{
				Title:      "Orphan",
				AssigneeID: 2,
				DueDate:    time.Now().Add(time.Hour),
			})

			Expect(err).To(MatchError(workflow.ErrWorkflowNotFound))
			Expect(tasks.created).To(BeEmpty())
		})
	})

	Describe("UpdateWorkflow", func() {
		It("should apply partial changes", func() {
			wf, err := service.CreateWorkflow(workflow.CreateWorkflowDTO{Name: "Launch", Description: "old"})
			Expect(err).NotTo(HaveOccurred())

			newName := "Relaunch"
			updated, err := service.UpdateWorkflow(wf.ID, workflow.UpdateWorkflowDTO{Name: &newName})

			Expect(err).NotTo(HaveOccurred())
			Expect(updated.Name).To(Equal("Relaunch"))
			Expect(updated.Description).To(Equal("old"))
		})
	})

	Describe("DeleteWorkflow", func() {
		It("should delete an existing workflow", func() {
			wf, err := service.CreateWorkflow(workflow.CreateWorkflowDTO{Name: "Launch"})
			Expect(err).NotTo(HaveOccurred())

			Expect(service.DeleteWorkflow(wf.ID)).To(Succeed())
			_, err = service.GetWorkflow(wf.ID)
			Expect(err).To(MatchError(workflow.ErrWorkflowNotFound))
		})

		It("should return not found for a missing workflow", func() {
			Expect(service.DeleteWorkflow(404)).To(MatchError(workflow.ErrWorkflowNotFound))
		})
	})
})
