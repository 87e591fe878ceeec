package handlers

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/SaltaGet/Back-SIJAC/internal/audit"
	"github.com/SaltaGet/Back-SIJAC/internal/httperr"
	"github.com/SaltaGet/Back-SIJAC/internal/httpresp"
	infraRepo "github.com/SaltaGet/Back-SIJAC/internal/infra/repository"
	"github.com/SaltaGet/Back-SIJAC/internal/middleware"
	"github.com/SaltaGet/Back-SIJAC/internal/models"
)

type CaseRepository interface {
	Create(ctx context.Context, cs *models.Case, ownerID string) error
	List(ctx context.Context, scope infraRepo.CaseScope, f infraRepo.CaseFilter) ([]models.Case, error)
	Get(ctx context.Context, scope infraRepo.CaseScope, id string) (*models.Case, error)
	Update(ctx context.Context, cs *models.Case) error
	Share(ctx context.Context, caseID, userID string) error
	Unshare(ctx context.Context, caseID, userID string) error
}

// CaseHandler serves the cases of the calling staff member. A case is
// visible to every user it is shared with; admins see all.
type CaseHandler struct {
	repo  CaseRepository
	audit *audit.Dispatcher
}

func NewCaseHandler(repo CaseRepository, audit *audit.Dispatcher) *CaseHandler {
	return &CaseHandler{repo: repo, audit: audit}
}

type CreateCaseRequest struct {
	Detail string `json:"detail" binding:"required"`
	State  string `json:"state" binding:"omitempty,case_state"`
}

type UpdateCaseRequest struct {
	Detail string `json:"detail" binding:"required"`
	State  string `json:"state" binding:"required,case_state"`
}

type UpdateCaseStateRequest struct {
	State string `json:"state" binding:"required,case_state"`
}

type ShareCaseRequest struct {
	UserID string `json:"user_id" binding:"required,uuid"`
}

func scopeOf(c *gin.Context) infraRepo.CaseScope {
	return infraRepo.CaseScope{UserID: middleware.UserID(c), All: middleware.IsAdmin(c)}
}

// ======================================================
// CREATE
// ======================================================

func (h *CaseHandler) Create(c *gin.Context) {
	var req CreateCaseRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httperr.BadRequest(c, "invalid_request", err.Error())
		return
	}

	state := req.State
	if state == "" {
		state = models.CaseStateNull
	}

	cs := models.Case{
		Detail:   strings.TrimSpace(req.Detail),
		State:    state,
		ClientID: c.Param("id"),
	}

	if err := h.repo.Create(c.Request.Context(), &cs, middleware.UserID(c)); err != nil {
		if errors.Is(err, infraRepo.ErrClientNotFound) {
			httperr.NotFound(c, "client_not_found", "Cliente no encontrado.")
			return
		}
		httperr.FromError(c, err, "failed_to_create_case")
		return
	}

	h.dispatch(c, "case_created", cs.ID, map[string]any{"client_id": cs.ClientID})
	httpresp.Created(c, cs)
}

// ======================================================
// QUERIES
// ======================================================

func (h *CaseHandler) List(c *gin.Context) {
	state := c.Query("state")
	if state != "" && !models.IsCaseState(state) {
		httperr.BadRequest(c, "invalid_state_value", state)
		return
	}

	cases, err := h.repo.List(c.Request.Context(), scopeOf(c), infraRepo.CaseFilter{State: state})
	if err != nil {
		httperr.FromError(c, err, "failed_to_list_cases")
		return
	}
	httpresp.List(c, cases)
}

func (h *CaseHandler) ListByClient(c *gin.Context) {
	cases, err := h.repo.List(c.Request.Context(), scopeOf(c), infraRepo.CaseFilter{ClientID: c.Param("id")})
	if err != nil {
		httperr.FromError(c, err, "failed_to_list_cases")
		return
	}
	httpresp.List(c, cases)
}

func (h *CaseHandler) Get(c *gin.Context) {
	cs, ok := h.load(c)
	if !ok {
		return
	}
	httpresp.OK(c, cs)
}

// ======================================================
// UPDATE
// ======================================================

func (h *CaseHandler) Update(c *gin.Context) {
	var req UpdateCaseRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httperr.BadRequest(c, "invalid_request", err.Error())
		return
	}

	cs, ok := h.load(c)
	if !ok {
		return
	}

	from := cs.State
	cs.Detail = strings.TrimSpace(req.Detail)
	cs.State = req.State
	if err := h.repo.Update(c.Request.Context(), cs); err != nil {
		httperr.FromError(c, err, "failed_to_update_case")
		return
	}

	h.dispatch(c, "case_updated", cs.ID, map[string]any{"from": from, "to": cs.State})
	httpresp.OK(c, cs)
}

func (h *CaseHandler) UpdateState(c *gin.Context) {
	var req UpdateCaseStateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httperr.BadRequest(c, "invalid_request", err.Error())
		return
	}

	cs, ok := h.load(c)
	if !ok {
		return
	}

	from := cs.State
	cs.State = req.State
	if err := h.repo.Update(c.Request.Context(), cs); err != nil {
		httperr.FromError(c, err, "failed_to_update_case")
		return
	}

	h.dispatch(c, "case_state_updated", cs.ID, map[string]any{"from": from, "to": req.State})
	httpresp.OK(c, cs)
}

// ======================================================
// SHARING
// ======================================================

// Share grants another staff member access to the case.
func (h *CaseHandler) Share(c *gin.Context) {
	var req ShareCaseRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httperr.BadRequest(c, "invalid_request", err.Error())
		return
	}

	cs, ok := h.load(c)
	if !ok {
		return
	}

	if err := h.repo.Share(c.Request.Context(), cs.ID, req.UserID); err != nil {
		if errors.Is(err, infraRepo.ErrUserNotFound) {
			httperr.NotFound(c, "user_not_found", "Usuario no encontrado.")
			return
		}
		httperr.FromError(c, err, "failed_to_share_case")
		return
	}

	h.dispatch(c, "case_shared", cs.ID, map[string]any{"with": req.UserID})
	c.Status(http.StatusNoContent)
}

// Unshare revokes another staff member's access. A user cannot remove
// their own link, so every case keeps at least one holder.
func (h *CaseHandler) Unshare(c *gin.Context) {
	target := c.Param("user_id")
	if target == middleware.UserID(c) {
		httperr.BadRequest(c, "cannot_unshare_self", "No puede quitarse a sí mismo del caso.")
		return
	}

	cs, ok := h.load(c)
	if !ok {
		return
	}

	if err := h.repo.Unshare(c.Request.Context(), cs.ID, target); err != nil {
		if errors.Is(err, infraRepo.ErrCaseNotShared) {
			httperr.BadRequest(c, "case_not_shared", "Caso no compartido con el usuario.")
			return
		}
		httperr.FromError(c, err, "failed_to_unshare_case")
		return
	}

	h.dispatch(c, "case_unshared", cs.ID, map[string]any{"with": target})
	c.Status(http.StatusNoContent)
}

func (h *CaseHandler) load(c *gin.Context) (*models.Case, bool) {
	cs, err := h.repo.Get(c.Request.Context(), scopeOf(c), c.Param("case_id"))
	if err != nil {
		if errors.Is(err, infraRepo.ErrCaseNotFound) {
			httperr.NotFound(c, "case_not_found", "Caso no encontrado.")
			return nil, false
		}
		httperr.FromError(c, err, "failed_to_get_case")
		return nil, false
	}
	return cs, true
}

func (h *CaseHandler) dispatch(c *gin.Context, action, id string, meta map[string]any) {
	userID := middleware.UserID(c)
	h.audit.Dispatch(audit.Event{
		UserID:   &userID,
		Action:   action,
		Entity:   "case",
		EntityID: &id,
		Metadata: meta,
	})
}
