package postgres

import (
	"testing"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	userDatamodel "github.com/taskgraph/taskgraph/internal/core/datamodel/user"
	"github.com/taskgraph/taskgraph/internal/user"
)

func TestUserRepository(t *testing.T) {
	RegisterFailHandler(Fail)
	RunSpecs(t, "UserRepository Suite")
}

var _ = Describe("UserRepository", func() {
	var (
		db   *gorm.DB
		repo *UserRepository
	)

	createUser := func(username string, role user.Role, score float64) int64 {
		u := &userDatamodel.User{
			Username:     username,
			PasswordHash: "x",
			Role:         int(role),
			Score:        score,
			IsActive:     true,
		}
		Expect(db.Create(u).Error).To(Succeed())
		return u.ID
	}

	BeforeEach(func() {
		var err error

		db, err = gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
		Expect(err).NotTo(HaveOccurred())

		err = db.AutoMigrate(&userDatamodel.User{})
		Expect(err).NotTo(HaveOccurred())

		repo = NewUserRepository(db)
	})

	AfterEach(func() {
		sqlDB, err := db.DB()
		Expect(err).NotTo(HaveOccurred())
		Expect(sqlDB.Close()).To(Succeed())
	})

	Describe("AdjustScore", func() {
		It("should apply a relative delta", func() {
			id := createUser("riko", user.RoleDesigner, 100)

			Expect(repo.AdjustScore(id, -5)).To(Succeed())
			Expect(repo.AdjustScore(id, -5)).To(Succeed())

			u, err := repo.GetByID(id)
			Expect(err).NotTo(HaveOccurred())
			Expect(u.Score).To(Equal(90.0))
		})

		It("should allow the score to go negative", func() {
			id := createUser("riko", user.RoleDesigner, 3)

			Expect(repo.AdjustScore(id, -5)).To(Succeed())

			u, err := repo.GetByID(id)
			Expect(err).NotTo(HaveOccurred())
			Expect(u.Score).To(Equal(-2.0))
		})

		It("should return not found for a missing user", func() {
			Expect(repo.AdjustScore(404, -5)).To(MatchError(user.ErrNotFound))
		})
	})

	Describe("GetAssignable", func() {
		BeforeEach(func() {
			createUser("designer", user.RoleDesigner, 100)
			createUser("supervisor", user.RoleSupervisor, 100)
			createUser("manager", user.RoleManager, 100)
			createUser("admin", user.RoleAdmin, 100)
		})

		It("should exclude users above the requester's role and all admins", func() {
			users, err := repo.GetAssignable(user.RoleSupervisor)
			Expect(err).NotTo(HaveOccurred())

			names := make([]string, len(users))
			for i, u := range users {
				names[i] = u.Username
			}
			Expect(names).To(ConsistOf("designer", "supervisor"))
		})

		It("should never include admins, even for an admin requester", func() {
			users, err := repo.GetAssignable(user.RoleAdmin)
			Expect(err).NotTo(HaveOccurred())

			for _, u := range users {
				Expect(u.Role).To(BeNumerically("<", user.RoleAdmin))
			}
			Expect(users).To(HaveLen(3))
		})

		It("should exclude inactive users", func() {
			Expect(db.Model(&userDatamodel.User{}).
				Where("username = ?", "designer").
				Update("is_active", false).Error).To(Succeed())

			users, err := repo.GetAssignable(user.RoleAdmin)
			Expect(err).NotTo(HaveOccurred())
			for _, u := range users {
				Expect(u.Username).NotTo(Equal("designer"))
			}
		})
	})
})
