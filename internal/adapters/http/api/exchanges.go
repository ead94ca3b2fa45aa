package api

import (
	"errors"
	"net/http"
	"time"

	service "github.com/okian/skillswap/internal/app"
	"github.com/okian/skillswap/internal/domain/model"
	"github.com/okian/skillswap/pkg/logger"
	"github.com/shopspring/decimal"
)

type createExchangeRequest struct {
	SkillID        string          `json:"skillId" validate:"required"`
	RequestMessage string          `json:"requestMessage"`
	ProposedDate   time.Time       `json:"proposedDate" validate:"required"`
	Duration       decimal.Decimal `json:"duration"`
}

type transitionRequest struct {
	Status          string `json:"status" validate:"required"`
	ResponseMessage string `json:"responseMessage"`
}

// ExchangesHandler handles exchange requests.
type ExchangesHandler struct {
	deps     ExchangeDependencies
	maxLimit int
	logger   logger.Logger
}

// NewExchangesHandler creates a new exchanges handler.
func NewExchangesHandler(deps ExchangeDependencies, maxLimit int, l logger.Logger) *ExchangesHandler {
	return &ExchangesHandler{deps: deps, maxLimit: maxLimit, logger: l}
}

// HandleCreate handles POST /exchanges requests.
func (h *ExchangesHandler) HandleCreate(w http.ResponseWriter, r *http.Request) {
	const op = "api.create_exchange"
	requesterID, err := actor(r)
	if err != nil {
		writeError(w, NewKind(op, err))
		return
	}
	var req createExchangeRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, WrapKind(op, ErrBadRequest, err))
		return
	}

	ex, err := h.deps.CreateExchange(r.Context(), service.CreateExchangeInput{
		RequesterID:    requesterID,
		SkillID:        req.SkillID,
		RequestMessage: req.RequestMessage,
		ProposedDate:   req.ProposedDate,
		Duration:       req.Duration,
		IdempotencyKey: r.Header.Get(IdempotencyHeader),
	})
	var dup *service.DuplicateError
	switch {
	case errors.As(err, &dup):
		writeJSON(w, http.StatusConflict, errorResponse{
			Code:       "duplicate_request",
			Message:    dup.Error(),
			ExchangeID: dup.ExchangeID,
		})
	case err != nil:
		fail(r.Context(), h.logger, w, Wrap(op, err))
	default:
		w.Header().Set("Location", "/exchanges/"+ex.ID)
		writeJSON(w, http.StatusCreated, ex)
	}
}

// HandleList handles GET /exchanges?limit=N requests.
func (h *ExchangesHandler) HandleList(w http.ResponseWriter, r *http.Request) {
	const op = "api.list_exchanges"
	actorID, err := actor(r)
	if err != nil {
		writeError(w, NewKind(op, err))
		return
	}
	limit, err := parseLimit(r, h.maxLimit)
	if err != nil {
		writeError(w, WrapKind(op, ErrBadRequest, err))
		return
	}
	list, err := h.deps.ListExchanges(r.Context(), actorID, limit)
	if err != nil {
		fail(r.Context(), h.logger, w, Wrap(op, err))
		return
	}
	writeJSON(w, http.StatusOK, list)
}

// HandleGet handles GET /exchanges/{id} requests.
func (h *ExchangesHandler) HandleGet(w http.ResponseWriter, r *http.Request) {
	const op = "api.get_exchange"
	actorID, err := actor(r)
	if err != nil {
		writeError(w, NewKind(op, err))
		return
	}
	ex, err := h.deps.GetExchange(r.Context(), r.PathValue("id"), actorID)
	if err != nil {
		fail(r.Context(), h.logger, w, Wrap(op, err))
		return
	}
	writeJSON(w, http.StatusOK, ex)
}

// HandleTransition handles PUT /exchanges/{id} requests.
func (h *ExchangesHandler) HandleTransition(w http.ResponseWriter, r *http.Request) {
	const op = "api.transition"
	actorID, err := actor(r)
	if err != nil {
		writeError(w, NewKind(op, err))
		return
	}
	var req transitionRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, WrapKind(op, ErrBadRequest, err))
		return
	}
	target, err := model.ParseStatus(req.Status)
	if err != nil {
		writeError(w, Wrap(op, err))
		return
	}
	ex, err := h.deps.RequestTransition(r.Context(), r.PathValue("id"), actorID, target, req.ResponseMessage)
	if err != nil {
		fail(r.Context(), h.logger, w, Wrap(op, err))
		return
	}
	writeJSON(w, http.StatusOK, ex)
}
