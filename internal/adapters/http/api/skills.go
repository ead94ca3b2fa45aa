package api

import (
	"net/http"

	service "github.com/okian/skillswap/internal/app"
	"github.com/okian/skillswap/pkg/logger"
	"github.com/shopspring/decimal"
)

type createSkillRequest struct {
	Title      string          `json:"title" validate:"required"`
	Category   string          `json:"category"`
	HourlyRate decimal.Decimal `json:"hourlyRate"`
}

// SkillsHandler handles skill requests.
type SkillsHandler struct {
	deps   SkillDependencies
	logger logger.Logger
}

// NewSkillsHandler creates a new skills handler.
func NewSkillsHandler(deps SkillDependencies, l logger.Logger) *SkillsHandler {
	return &SkillsHandler{deps: deps, logger: l}
}

// HandleCreate handles POST /skills requests. The actor becomes the owner.
func (h *SkillsHandler) HandleCreate(w http.ResponseWriter, r *http.Request) {
	const op = "api.create_skill"
	ownerID, err := actor(r)
	if err != nil {
		writeError(w, NewKind(op, err))
		return
	}
	var req createSkillRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, WrapKind(op, ErrBadRequest, err))
		return
	}
	skill, err := h.deps.CreateSkill(r.Context(), service.CreateSkillInput{
		OwnerID:    ownerID,
		Title:      req.Title,
		Category:   req.Category,
		HourlyRate: req.HourlyRate,
	})
	if err != nil {
		fail(r.Context(), h.logger, w, Wrap(op, err))
		return
	}
	writeJSON(w, http.StatusCreated, skill)
}

// HandleGet handles GET /skills/{id} requests.
func (h *SkillsHandler) HandleGet(w http.ResponseWriter, r *http.Request) {
	skill, err := h.deps.GetSkill(r.Context(), r.PathValue("id"))
	if err != nil {
		fail(r.Context(), h.logger, w, Wrap("api.get_skill", err))
		return
	}
	writeJSON(w, http.StatusOK, skill)
}
