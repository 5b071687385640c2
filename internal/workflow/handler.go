package workflow

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi"
	apperrors "github.com/taskgraph/taskgraph/internal"
	"github.com/taskgraph/taskgraph/internal/auth"
	"github.com/taskgraph/taskgraph/internal/task"
	"github.com/taskgraph/taskgraph/internal/transport"
	"github.com/taskgraph/taskgraph/internal/user"
	"github.com/taskgraph/taskgraph/pkg/logger"
)

type ServiceAPI interface {
	CreateWorkflow(dto CreateWorkflowDTO) (*Workflow, error)
	ListWorkflows() ([]*Workflow, error)
	GetWorkflow(id int64) (*Workflow, error)
	UpdateWorkflow(id int64, dto UpdateWorkflowDTO) (*Workflow, error)
	AddNode(workflowID, creatorID int64, creatorRole user.Role, dto task.CreateTaskDTO) (*task.Node, error)
	GetStats(id int64) (*Stats, error)
	DeleteWorkflow(id int64) error
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

func (h *Handler) CreateWorkflow(w http.ResponseWriter, r *http.Request) {
	var dto CreateWorkflowDTO
	if err := json.NewDecoder(r.Body).Decode(&dto); err != nil {
		h.WriteError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	created, err := h.Service.CreateWorkflow(dto)
	if err != nil {
		h.writeServiceError(w, err)
		return
	}

	h.WriteJSON(w, http.StatusCreated, created)
}

func (h *Handler) ListWorkflows(w http.ResponseWriter, r *http.Request) {
	workflows, err := h.Service.ListWorkflows()
	if err != nil {
		h.Logger.Error("ListWorkflows: service error", "error", err)
		h.WriteError(w, http.StatusInternalServerError, "failed to fetch workflows")
		return
	}

	h.WriteJSON(w, http.StatusOK, workflows)
}

func (h *Handler) GetWorkflow(w http.ResponseWriter, r *http.Request) {
	id, ok := h.workflowID(w, r)
	if !ok {
		return
	}

	wf, err := h.Service.GetWorkflow(id)
	if err != nil {
		h.writeServiceError(w, err)
		return
	}

	h.WriteJSON(w, http.StatusOK, wf)
}

func (h *Handler) UpdateWorkflow(w http.ResponseWriter, r *http.Request) {
	id, ok := h.workflowID(w, r)
	if !ok {
		return
	}

	var dto UpdateWorkflowDTO
	if err := json.NewDecoder(r.Body).Decode(&dto); err != nil {
		h.WriteError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	wf, err := h.Service.UpdateWorkflow(id, dto)
	if err != nil {
		h.writeServiceError(w, err)
		return
	}

	h.WriteJSON(w, http.StatusOK, wf)
}

func (h *Handler) AddNode(w http.ResponseWriter, r *http.Request) {
	u, ok := auth.UserFromContext(r.Context())
	if !ok {
		h.WriteError(w, http.StatusUnauthorized, "authentication required")
		return
	}

	id, ok := h.workflowID(w, r)
	if !ok {
		return
	}

	var dto task.CreateTaskDTO
	if err := json.NewDecoder(r.Body).Decode(&dto); err != nil {
		h.WriteError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	node, err := h.Service.AddNode(id, u.ID, user.Role(u.Role), dto)
	if err != nil {
		h.writeServiceError(w, err)
		return
	}

	h.WriteJSON(w, http.StatusCreated, node)
}

func (h *Handler) GetStats(w http.ResponseWriter, r *http.Request) {
	id, ok := h.workflowID(w, r)
	if !ok {
		return
	}

	stats, err := h.Service.GetStats(id)
	if err != nil {
		h.writeServiceError(w, err)
		return
	}

	h.WriteJSON(w, http.StatusOK, stats)
}

func (h *Handler) DeleteWorkflow(w http.ResponseWriter, r *http.Request) {
	id, ok := h.workflowID(w, r)
	if !ok {
		return
	}

	if err := h.Service.DeleteWorkflow(id); err != nil {
		h.writeServiceError(w, err)
		return
	}

	h.WriteJSON(w, http.StatusOK, map[string]string{"status": "deleted"})
}

func (h *Handler) workflowID(w http.ResponseWriter, r *http.Request) (int64, bool) {
	idStr := chi.URLParam(r, "id")
	id, err := strconv.ParseInt(idStr, 10, 64)
	if err != nil {
		h.WriteError(w, http.StatusBadRequest, "invalid workflow ID")
		return 0, false
	}
	return id, true
}

func (h *Handler) writeServiceError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, ErrWorkflowNotFound):
		h.WriteError(w, http.StatusNotFound, "workflow not found")
	case errors.Is(err, user.ErrNotFound):
		h.WriteError(w, http.StatusNotFound, "user not found")
	case errors.Is(err, task.ErrAssigneeRoleTooHigh):
		h.WriteError(w, http.StatusForbidden, err.Error())
	default:
		if appErr, ok := apperrors.IsAppError(err); ok {
			status, body := appErr.ToHTTPResponse()
			h.WriteJSON(w, status, body)
			return
		}
		h.Logger.Error("workflow handler: unexpected error", "error", err)
		h.WriteError(w, http.StatusInternalServerError, "internal server error")
	}
}
