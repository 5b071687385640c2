package graph

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi"
	"github.com/taskgraph/taskgraph/internal/transport"
	"github.com/taskgraph/taskgraph/pkg/logger"
)

type ServiceAPI interface {
	CreateEdge(sourceID, targetID int64) (*Edge, error)
	DeleteEdge(id int64) error
	GetMasterFlow() (*MasterFlow, error)
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

func (h *Handler) CreateEdge(w http.ResponseWriter, r *http.Request) {
	var dto CreateEdgeDTO
	if err := json.NewDecoder(r.Body).Decode(&dto); err != nil {
		h.WriteError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	if err := dto.Validate(); err != nil {
		h.WriteError(w, http.StatusBadRequest, err.Error())
		return
	}

	edge, err := h.Service.CreateEdge(dto.SourceNodeID, dto.TargetNodeID)
	if err != nil {
		if err == ErrSelfDependency {
			h.WriteError(w, http.StatusBadRequest, "a task cannot depend on itself")
			return
		}
		h.Logger.Error("CreateEdge: service error", "error", err)
		h.WriteError(w, http.StatusInternalServerError, "failed to create dependency")
		return
	}

	h.WriteJSON(w, http.StatusCreated, edge)
}

func (h *Handler) DeleteEdge(w http.ResponseWriter, r *http.Request) {
	idStr := chi.URLParam(r, "id")
	id, err := strconv.ParseInt(idStr, 10, 64)
	if err != nil {
		h.WriteError(w, http.StatusBadRequest, "invalid edge ID")
		return
	}

	if err := h.Service.DeleteEdge(id); err != nil {
		if err == ErrEdgeNotFound {
			h.WriteError(w, http.StatusNotFound, "edge not found")
			return
		}
		h.Logger.Error("DeleteEdge: service error", "error", err, "edge_id", id)
		h.WriteError(w, http.StatusInternalServerError, "failed to delete dependency")
		return
	}

	h.WriteJSON(w, http.StatusOK, map[string]string{"status": "deleted"})
}

func (h *Handler) GetMasterFlow(w http.ResponseWriter, r *http.Request) {
	flow, err := h.Service.GetMasterFlow()
	if err != nil {
		h.Logger.Error("GetMasterFlow: service error", "error", err)
		h.WriteError(w, http.StatusInternalServerError, "failed to fetch master flow")
		return
	}

	h.WriteJSON(w, http.StatusOK, flow)
}
