package user

import (
	"log/slog"
	"net/http"

	"github.com/taskgraph/taskgraph/internal/auth"
	"github.com/taskgraph/taskgraph/internal/transport"
	"github.com/taskgraph/taskgraph/pkg/logger"
)

type ServiceAPI interface {
	GetByID(userID int64) (*User, error)
	AssignableUsers(requesterRole Role) ([]*User, error)
}

type Handler struct {
	*transport.BaseHandler
	Service ServiceAPI
}

func NewHandler(service ServiceAPI) *Handler {
	lg := logger.LoggerWrapper()
	if lg == nil {
		lg = slog.Default()
	}
	return &Handler{
		BaseHandler: transport.NewBaseHandler(lg),
		Service:     service,
	}
}

func (h *Handler) GetCurrentUser(w http.ResponseWriter, r *http.Request) {
	u, ok := auth.UserFromContext(r.Context())
	if !ok || u == nil {
		h.Logger.Error("GetCurrentUser: user not found in context")
		h.WriteError(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	// Re-read so the score reflects any sweep that ran since login.
	current, err := h.Service.GetByID(u.ID)
	if err != nil {
		h.Logger.Error("GetCurrentUser: service error", "error", err, "user_id", u.ID)
		h.WriteError(w, http.StatusInternalServerError, "failed to load user")
		return
	}

	h.WriteJSON(w, http.StatusOK, ToView(current))
}

func (h *Handler) GetAssignableUsers(w http.ResponseWriter, r *http.Request) {
	u, ok := auth.UserFromContext(r.Context())
	if !ok || u == nil {
		h.Logger.Error("GetAssignableUsers: user not found in context")
		h.WriteError(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	users, err := h.Service.AssignableUsers(Role(u.Role))
	if err != nil {
		h.Logger.Error("GetAssignableUsers: service error", "error", err, "user_id", u.ID)
		h.WriteError(w, http.StatusInternalServerError, "failed to list users")
		return
	}

	h.WriteJSON(w, http.StatusOK, map[string]interface{}{
		"users": ToViewSlice(users),
	})
}
