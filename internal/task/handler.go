package task

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi"
	apperrors "github.com/taskgraph/taskgraph/internal"
	"github.com/taskgraph/taskgraph/internal/auth"
	"github.com/taskgraph/taskgraph/internal/transport"
	"github.com/taskgraph/taskgraph/internal/user"
	"github.com/taskgraph/taskgraph/pkg/logger"
)

type ServiceAPI interface {
	CreateTask(creatorID int64, creatorRole user.Role, dto CreateTaskDTO) (*Node, error)
	GetTask(id int64) (*Node, error)
	ListMyTasks(userID int64) ([]*TaskSummary, error)
	MarkSeen(nodeID, userID int64) error
	CompleteTask(ctx context.Context, nodeID, requesterID int64) (*Node, error)
	UpdateTask(editorID, nodeID int64, dto UpdateTaskDTO) (*Node, error)
	DeleteTask(nodeID int64) error
	GetTaskLogs(nodeID int64) ([]*TaskLog, error)
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

func (h *Handler) CreateTask(w http.ResponseWriter, r *http.Request) {
	u, ok := auth.UserFromContext(r.Context())
	if !ok {
		h.WriteError(w, http.StatusUnauthorized, "authentication required")
		return
	}

	var dto CreateTaskDTO
	if err := json.NewDecoder(r.Body).Decode(&dto); err != nil {
		h.WriteError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	node, err := h.Service.CreateTask(u.ID, user.Role(u.Role), dto)
	if err != nil {
		h.writeServiceError(w, err)
		return
	}

	h.WriteJSON(w, http.StatusCreated, node)
}

func (h *Handler) GetMyTasks(w http.ResponseWriter, r *http.Request) {
	u, ok := auth.UserFromContext(r.Context())
	if !ok {
		h.WriteError(w, http.StatusUnauthorized, "authentication required")
		return
	}

	summaries, err := h.Service.ListMyTasks(u.ID)
	if err != nil {
		h.Logger.Error("GetMyTasks: service error", "error", err, "user_id", u.ID)
		h.WriteError(w, http.StatusInternalServerError, "failed to fetch tasks")
		return
	}

	h.WriteJSON(w, http.StatusOK, summaries)
}

func (h *Handler) GetTask(w http.ResponseWriter, r *http.Request) {
	id, ok := h.nodeID(w, r)
	if !ok {
		return
	}

	node, err := h.Service.GetTask(id)
	if err != nil {
		h.writeServiceError(w, err)
		return
	}

	h.WriteJSON(w, http.StatusOK, node)
}

func (h *Handler) MarkSeen(w http.ResponseWriter, r *http.Request) {
	u, ok := auth.UserFromContext(r.Context())
	if !ok {
		h.WriteError(w, http.StatusUnauthorized, "authentication required")
		return
	}

	id, ok := h.nodeID(w, r)
	if !ok {
		return
	}

	if err := h.Service.MarkSeen(id, u.ID); err != nil {
		h.Logger.Error("MarkSeen: service error", "error", err, "node_id", id)
		h.WriteError(w, http.StatusInternalServerError, "failed to mark task as seen")
		return
	}

	h.WriteJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (h *Handler) CompleteTask(w http.ResponseWriter, r *http.Request) {
	u, ok := auth.UserFromContext(r.Context())
	if !ok {
		h.WriteError(w, http.StatusUnauthorized, "authentication required")
		return
	}

	id, ok := h.nodeID(w, r)
	if !ok {
		return
	}

	node, err := h.Service.CompleteTask(r.Context(), id, u.ID)
	if err != nil {
		h.writeServiceError(w, err)
		return
	}

	h.WriteJSON(w, http.StatusOK, node)
}

func (h *Handler) UpdateTask(w http.ResponseWriter, r *http.Request) {
	u, ok := auth.UserFromContext(r.Context())
	if !ok {
		h.WriteError(w, http.StatusUnauthorized, "authentication required")
		return
	}

	id, ok := h.nodeID(w, r)
	if !ok {
		return
	}

	var dto UpdateTaskDTO
	if err := json.NewDecoder(r.Body).Decode(&dto); err != nil {
		h.WriteError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	node, err := h.Service.UpdateTask(u.ID, id, dto)
	if err != nil {
		h.writeServiceError(w, err)
		return
	}

	h.WriteJSON(w, http.StatusOK, node)
}

func (h *Handler) DeleteTask(w http.ResponseWriter, r *http.Request) {
	id, ok := h.nodeID(w, r)
	if !ok {
		return
	}

	if err := h.Service.DeleteTask(id); err != nil {
		h.writeServiceError(w, err)
		return
	}

	h.WriteJSON(w, http.StatusOK, map[string]string{"status": "deleted"})
}

func (h *Handler) GetTaskLogs(w http.ResponseWriter, r *http.Request) {
	id, ok := h.nodeID(w, r)
	if !ok {
		return
	}

	logs, err := h.Service.GetTaskLogs(id)
	if err != nil {
		h.writeServiceError(w, err)
		return
	}

	h.WriteJSON(w, http.StatusOK, logs)
}

func (h *Handler) nodeID(w http.ResponseWriter, r *http.Request) (int64, bool) {
	idStr := chi.URLParam(r, "id")
	id, err := strconv.ParseInt(idStr, 10, 64)
	if err != nil {
		h.WriteError(w, http.StatusBadRequest, "invalid task ID")
		return 0, false
	}
	return id, true
}

func (h *Handler) writeServiceError(w http.ResponseWriter, err error) {
	var blocked *BlockedError
	switch {
	case errors.As(err, &blocked):
		h.WriteError(w, http.StatusConflict, blocked.Error())
	case errors.Is(err, ErrTaskNotFound):
		h.WriteError(w, http.StatusNotFound, "task not found")
	case errors.Is(err, user.ErrNotFound):
		h.WriteError(w, http.StatusNotFound, "user not found")
	case errors.Is(err, ErrNotAssignee):
		h.WriteError(w, http.StatusForbidden, err.Error())
	case errors.Is(err, ErrTaskAlreadyCompleted):
		h.WriteError(w, http.StatusConflict, err.Error())
	case errors.Is(err, ErrAssigneeRoleTooHigh):
		h.WriteError(w, http.StatusForbidden, err.Error())
	default:
		if appErr, ok := apperrors.IsAppError(err); ok {
			status, body := appErr.ToHTTPResponse()
			h.WriteJSON(w, status, body)
			return
		}
		h.Logger.Error("task handler: unexpected error", "error", err)
		h.WriteError(w, http.StatusInternalServerError, "internal server error")
	}
}
