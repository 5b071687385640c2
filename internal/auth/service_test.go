package auth_test

import (
	"testing"
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/taskgraph/taskgraph/internal/auth"
)

func TestAuthService(t *testing.T) {
	RegisterFailHandler(Fail)
	RunSpecs(t, "Auth Service Suite")
}

type mockAuthRepository struct {
	usersByName map[string]*auth.User
	hashesByID  map[int64]string
	nextID      int64
}

func newMockAuthRepository() *mockAuthRepository {
	return &mockAuthRepository{
		usersByName: make(map[string]*auth.User),
		hashesByID:  make(map[int64]string),
		nextID:      1,
	}
}

func (m *mockAuthRepository) GetPasswordForUsername(username string) (string, int64, error) {
	u, exists := m.usersByName[username]
	if !exists {
		return "", 0, auth.ErrUserNotFound
	}
	return m.hashesByID[u.ID], u.ID, nil
}

func (m *mockAuthRepository) GetUserByID(userID int64) (*auth.User, error) {
	for _, u := range m.usersByName {
		if u.ID == userID {
			return u, nil
		}
	}
	return nil, auth.ErrUserNotFound
}

func (m *mockAuthRepository) CreateUser(username, passwordHash string, role int) (*auth.User, error) {
	if _, exists := m.usersByName[username]; exists {
		return nil, auth.ErrUsernameTaken
	}
	u := &auth.User{ID: m.nextID, Username: username, Role: role, Score: 100}
	m.nextID++
	m.usersByName[username] = u
	m.hashesByID[u.ID] = passwordHash
	return u, nil
}

var _ = Describe("AuthService", func() {
	var (
		repo    *mockAuthRepository
		service *auth.Service
	)

	BeforeEach(func() {
		repo = newMockAuthRepository()
		tokenGen := auth.NewJWTTokenGenerator(
			"test-access-secret-that-is-long-enough!!",
			"test-refresh-secret-that-is-long-enough!",
			15*time.Minute,
			7*24*time.Hour,
		)
		service = auth.NewService(repo, tokenGen)
	})

	Describe("Register", func() {
		It("should create a user with a hashed password", func() {
			u, err := service.Register(auth.RegisterDTO{
				Username: "dana",
				Password: "supersecret",
				Role:     1,
			})

			Expect(err).NotTo(HaveOccurred())
			Expect(u.Username).To(Equal("dana"))
			Expect(u.Role).To(Equal(1))
			Expect(repo.hashesByID[u.ID]).NotTo(Equal("supersecret"))
		})

		It("should reject a duplicate username", func() {
			_, err := service.Register(auth.RegisterDTO{Username: "dana", Password: "supersecret"})
			Expect(err).NotTo(HaveOccurred())

			_, err = service.Register(auth.RegisterDTO{Username: "dana", Password: "othersecret"})
			Expect(err).To(MatchError(auth.ErrUsernameTaken))
		})

		It("should reject a short password", func() {
			_, err := service.Register(auth.RegisterDTO{Username: "dana", Password: "short"})
			Expect(err).To(HaveOccurred())
		})

		It("should reject an out-of-range role", func() {
			_, err := service.Register(auth.RegisterDTO{Username: "dana", Password: "supersecret", Role: 9})
			Expect(err).To(HaveOccurred())
		})
	})

	Describe("Authenticate", func() {
		BeforeEach(func() {
			_, err := service.Register(auth.RegisterDTO{Username: "dana", Password: "supersecret", Role: 2})
			Expect(err).NotTo(HaveOccurred())
		})

		It("should return a token pair for valid credentials", func() {
			tokens, err := service.Authenticate(auth.LoginDTO{Username: "dana", Password: "supersecret"})

			Expect(err).NotTo(HaveOccurred())
			Expect(tokens.AccessToken).NotTo(BeEmpty())
			Expect(tokens.RefreshToken).NotTo(BeEmpty())

			claims, err := service.ValidateAccessToken(tokens.AccessToken)
			Expect(err).NotTo(HaveOccurred())
			Expect(claims.Username).To(Equal("dana"))
			Expect(claims.Role).To(Equal(2))
		})

		It("should reject a wrong password", func() {
			_, err := service.Authenticate(auth.LoginDTO{Username: "dana", Password: "wrongpassword"})
			Expect(err).To(MatchError(auth.ErrInvalidCredentials))
		})

		It("should reject an unknown username", func() {
			_, err := service.Authenticate(auth.LoginDTO{Username: "ghost", Password: "supersecret"})
			Expect(err).To(MatchError(auth.ErrInvalidCredentials))
		})
	})

	Describe("RefreshTokens", func() {
		It("should issue a fresh pair for a valid refresh token", func() {
			_, err := service.Register(auth.RegisterDTO{Username: "dana", Password: "supersecret"})
			Expect(err).NotTo(HaveOccurred())

			tokens, err := service.Authenticate(auth.LoginDTO{Username: "dana", Password: "supersecret"})
			Expect(err).NotTo(HaveOccurred())

			refreshed, err := service.RefreshTokens(tokens.RefreshToken)
			Expect(err).NotTo(HaveOccurred())
			Expect(refreshed.AccessToken).NotTo(BeEmpty())
		})

		It("should reject garbage tokens", func() {
			_, err := service.RefreshTokens("not-a-token")
			Expect(err).To(MatchError(auth.ErrInvalidToken))
		})
	})
})
