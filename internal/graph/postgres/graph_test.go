package postgres

import (
	"testing"
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	graphDatamodel "github.com/taskgraph/taskgraph/internal/core/datamodel/graph"
	taskDatamodel "github.com/taskgraph/taskgraph/internal/core/datamodel/task"
	workflowDatamodel "github.com/taskgraph/taskgraph/internal/core/datamodel/workflow"
	"github.com/taskgraph/taskgraph/internal/graph"
	"github.com/taskgraph/taskgraph/internal/task"
)

func TestGraphRepository(t *testing.T) {
	RegisterFailHandler(Fail)
	RunSpecs(t, "GraphRepository Suite")
}

var _ = Describe("GraphRepository", func() {
	var (
		db   *gorm.DB
		repo *GraphRepository
	)

	createNode := func(title, status string) int64 {
		node := &taskDatamodel.Node{
			Title:      title,
			CreatorID:  1,
			AssigneeID: 2,
			DueDate:    time.Now().Add(time.Hour),
			Status:     status,
		}
		Expect(db.Create(node).Error).To(Succeed())
		return node.ID
	}

	BeforeEach(func() {
		var err error

		db, err = gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
		Expect(err).NotTo(HaveOccurred())

		err = db.AutoMigrate(
			&workflowDatamodel.Workflow{},
			&taskDatamodel.Node{},
			&graphDatamodel.Edge{},
		)
		Expect(err).NotTo(HaveOccurred())

		repo = NewGraphRepository(db)
	})

	AfterEach(func() {
		sqlDB, err := db.DB()
		Expect(err).NotTo(HaveOccurred())
		Expect(sqlDB.Close()).To(Succeed())
	})

	Describe("IncompleteSourceTitles", func() {
		It("should name incomplete direct prerequisites only", func() {
			source := createNode("Write brief", task.StatusPending)
			target := createNode("Design page", task.StatusPending)
			_, err := repo.CreateEdge(source, target)
			Expect(err).NotTo(HaveOccurred())

			titles, err := repo.IncompleteSourceTitles(target)
			Expect(err).NotTo(HaveOccurred())
			Expect(titles).To(ConsistOf("Write brief"))
		})

		It("should check exactly one hop: a completed middle unblocks the tail", func() {
			// A -> B -> C with A pending and B completed. C looks only at B.
			a := createNode("A", task.StatusPending)
			b := createNode("B", task.StatusCompleted)
			c := createNode("C", task.StatusPending)

			_, err := repo.CreateEdge(a, b)
			Expect(err).NotTo(HaveOccurred())
			_, err = repo.CreateEdge(b, c)
			Expect(err).NotTo(HaveOccurred())

			titles, err := repo.IncompleteSourceTitles(c)
			Expect(err).NotTo(HaveOccurred())
			Expect(titles).To(BeEmpty())

			// B itself stays blocked on A.
			titles, err = repo.IncompleteSourceTitles(b)
			Expect(err).NotTo(HaveOccurred())
			Expect(titles).To(ConsistOf("A"))
		})

		It("should treat overdue prerequisites as incomplete", func() {
			source := createNode("Late prereq", task.StatusOverdue)
			target := createNode("Blocked task", task.StatusPending)
			_, err := repo.CreateEdge(source, target)
			Expect(err).NotTo(HaveOccurred())

			titles, err := repo.IncompleteSourceTitles(target)
			Expect(err).NotTo(HaveOccurred())
			Expect(titles).To(ConsistOf("Late prereq"))
		})

		It("should return nothing for a node without incoming edges", func() {
			lone := createNode("Standalone", task.StatusPending)

			titles, err := repo.IncompleteSourceTitles(lone)
			Expect(err).NotTo(HaveOccurred())
			Expect(titles).To(BeEmpty())
		})
	})

	Describe("edges", func() {
		It("should list incoming and outgoing edges separately", func() {
			a := createNode("A", task.StatusPending)
			b := createNode("B", task.StatusPending)
			c := createNode("C", task.StatusPending)

			_, err := repo.CreateEdge(a, b)
			Expect(err).NotTo(HaveOccurred())
			_, err = repo.CreateEdge(b, c)
			Expect(err).NotTo(HaveOccurred())

			incoming, err := repo.IncomingEdges(b)
			Expect(err).NotTo(HaveOccurred())
			Expect(incoming).To(HaveLen(1))
			Expect(incoming[0].SourceNodeID).To(Equal(a))

			outgoing, err := repo.OutgoingEdges(b)
			Expect(err).NotTo(HaveOccurred())
			Expect(outgoing).To(HaveLen(1))
			Expect(outgoing[0].TargetNodeID).To(Equal(c))
		})

		It("should delete an edge and report missing ones", func() {
			a := createNode("A", task.StatusPending)
			b := createNode("B", task.StatusPending)
			edge, err := repo.CreateEdge(a, b)
			Expect(err).NotTo(HaveOccurred())

			Expect(repo.DeleteEdge(edge.ID)).To(Succeed())
			Expect(repo.DeleteEdge(edge.ID)).To(MatchError(graph.ErrEdgeNotFound))
		})
	})

	Describe("MasterFlow", func() {
		It("should return every node with its workflow name and all edges", func() {
			wf := &workflowDatamodel.Workflow{Name: "Launch"}
			Expect(db.Create(wf).Error).To(Succeed())

			inWorkflow := &taskDatamodel.Node{
				Title: "Inside", WorkflowID: &wf.ID,
				CreatorID: 1, AssigneeID: 2,
				DueDate: time.Now().Add(time.Hour), Status: task.StatusPending,
			}
			Expect(db.Create(inWorkflow).Error).To(Succeed())
			standalone := createNode("Outside", task.StatusPending)

			_, err := repo.CreateEdge(inWorkflow.ID, standalone)
			Expect(err).NotTo(HaveOccurred())

			flow, err := repo.MasterFlow()
			Expect(err).NotTo(HaveOccurred())
			Expect(flow.Nodes).To(HaveLen(2))
			Expect(flow.Edges).To(HaveLen(1))

			byTitle := map[string]graph.FlowNode{}
			for _, n := range flow.Nodes {
				byTitle[n.Title] = n
			}
			Expect(byTitle["Inside"].WorkflowName).NotTo(BeNil())
			Expect(*byTitle["Inside"].WorkflowName).To(Equal("Launch"))
			Expect(byTitle["Outside"].WorkflowName).To(BeNil())
		})
	})
})
