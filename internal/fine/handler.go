package fine

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi"
	"github.com/taskgraph/taskgraph/internal/auth"
	"github.com/taskgraph/taskgraph/internal/transport"
	"github.com/taskgraph/taskgraph/pkg/logger"
)

type ServiceAPI interface {
	IssueFine(userID, nodeID int64, amount float64, reason string) (*Fine, error)
	ResolveFine(id int64) error
	ListFines(userID int64) ([]*FineRecord, error)
	ListAllFines() ([]*FineRecord, error)
}

// DefaultAmount is used when an admin manual fine omits the amount.
const DefaultAmount = 10.0

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

// GetMyFines returns the caller's fines, unresolved and resolved alike.
func (h *Handler) GetMyFines(w http.ResponseWriter, r *http.Request) {
	u, ok := auth.UserFromContext(r.Context())
	if !ok {
		h.WriteError(w, http.StatusUnauthorized, "authentication required")
		return
	}

	records, err := h.Service.ListFines(u.ID)
	if err != nil {
		h.Logger.Error("GetMyFines: service error", "error", err, "user_id", u.ID)
		h.WriteError(w, http.StatusInternalServerError, "failed to fetch fines")
		return
	}

	h.WriteJSON(w, http.StatusOK, records)
}

func (h *Handler) GetAllFines(w http.ResponseWriter, r *http.Request) {
	records, err := h.Service.ListAllFines()
	if err != nil {
		h.Logger.Error("GetAllFines: service error", "error", err)
		h.WriteError(w, http.StatusInternalServerError, "failed to fetch fines")
		return
	}

	h.WriteJSON(w, http.StatusOK, records)
}

// IssueFine is the admin manual penalty endpoint.
func (h *Handler) IssueFine(w http.ResponseWriter, r *http.Request) {
	var dto IssueFineDTO
	if err := json.NewDecoder(r.Body).Decode(&dto); err != nil {
		h.WriteError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	if err := dto.Validate(); err != nil {
		h.WriteError(w, http.StatusBadRequest, err.Error())
		return
	}

	amount := dto.Amount
	if amount <= 0 {
		amount = DefaultAmount
	}

	created, err := h.Service.IssueFine(dto.UserID, dto.NodeID, amount, dto.Reason)
	if err != nil {
		h.Logger.Error("IssueFine: service error", "error", err, "user_id", dto.UserID)
		h.WriteError(w, http.StatusInternalServerError, "failed to issue fine")
		return
	}

	h.WriteJSON(w, http.StatusCreated, created)
}

func (h *Handler) ResolveFine(w http.ResponseWriter, r *http.Request) {
	idStr := chi.URLParam(r, "id")
	id, err := strconv.ParseInt(idStr, 10, 64)
	if err != nil {
		h.WriteError(w, http.StatusBadRequest, "invalid fine ID")
		return
	}

	if err := h.Service.ResolveFine(id); err != nil {
		if errors.Is(err, ErrFineNotFound) {
			h.WriteError(w, http.StatusNotFound, "fine not found")
			return
		}
		h.Logger.Error("ResolveFine: service error", "error", err, "fine_id", id)
		h.WriteError(w, http.StatusInternalServerError, "failed to resolve fine")
		return
	}

	h.WriteJSON(w, http.StatusOK, map[string]string{"status": "resolved"})
}
