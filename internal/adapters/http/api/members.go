package api

import (
	"net/http"

	service "github.com/okian/skillswap/internal/app"
	"github.com/okian/skillswap/pkg/logger"
	"github.com/shopspring/decimal"
)

type createMemberRequest struct {
	ID             string          `json:"id"`
	Name           string          `json:"name" validate:"required"`
	Location       string          `json:"location"`
	InitialBalance decimal.Decimal `json:"initialBalance"`
}

// MembersHandler handles member and ledger requests.
type MembersHandler struct {
	deps     MemberDependencies
	maxLimit int
	logger   logger.Logger
}

// NewMembersHandler creates a new members handler.
func NewMembersHandler(deps MemberDependencies, maxLimit int, l logger.Logger) *MembersHandler {
	return &MembersHandler{deps: deps, maxLimit: maxLimit, logger: l}
}

// HandleCreate handles POST /members requests.
func (h *MembersHandler) HandleCreate(w http.ResponseWriter, r *http.Request) {
	const op = "api.create_member"
	var req createMemberRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, WrapKind(op, ErrBadRequest, err))
		return
	}
	m, err := h.deps.CreateMember(r.Context(), service.CreateMemberInput{
		ID:             req.ID,
		Name:           req.Name,
		Location:       req.Location,
		InitialBalance: req.InitialBalance,
	})
	if err != nil {
		fail(r.Context(), h.logger, w, Wrap(op, err))
		return
	}
	writeJSON(w, http.StatusCreated, m)
}

// HandleGet handles GET /members/{id} requests.
func (h *MembersHandler) HandleGet(w http.ResponseWriter, r *http.Request) {
	m, err := h.deps.GetMember(r.Context(), r.PathValue("id"))
	if err != nil {
		fail(r.Context(), h.logger, w, Wrap("api.get_member", err))
		return
	}
	writeJSON(w, http.StatusOK, m)
}

// HandleLedger handles GET /members/{id}/ledger?limit=N requests.
func (h *MembersHandler) HandleLedger(w http.ResponseWriter, r *http.Request) {
	const op = "api.list_ledger"
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
	entries, err := h.deps.ListLedgerEntries(r.Context(), actorID, r.PathValue("id"), limit)
	if err != nil {
		fail(r.Context(), h.logger, w, Wrap(op, err))
		return
	}
	writeJSON(w, http.StatusOK, entries)
}
