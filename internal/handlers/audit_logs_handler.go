package handlers

import (
	"context"
	"errors"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/SaltaGet/Back-SIJAC/internal/audit"
	"github.com/SaltaGet/Back-SIJAC/internal/httperr"
	"github.com/SaltaGet/Back-SIJAC/internal/httpresp"
	"github.com/SaltaGet/Back-SIJAC/internal/models"
)

type AuditLister interface {
	List(ctx context.Context, f audit.ListFilter) ([]models.AuditLog, int64, error)
	Get(ctx context.Context, id uint) (*models.AuditLog, error)
}

// ======================================================
// HANDLER
// ======================================================

type AuditLogsHandler struct {
	logs AuditLister
	loc  *time.Location
}

func NewAuditLogsHandler(logs AuditLister, loc *time.Location) *AuditLogsHandler {
	return &AuditLogsHandler{logs: logs, loc: loc}
}

func (h *AuditLogsHandler) List(c *gin.Context) {
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	if page <= 0 {
		page = 1
	}

	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "50"))
	if limit <= 0 || limit > 200 {
		limit = 50
	}

	from, ok := optionalDate(c, "from", h.loc)
	if !ok {
		httperr.BadRequest(c, "invalid_from", "Fecha 'from' inválida.")
		return
	}
	to, ok := optionalDate(c, "to", h.loc)
	if !ok {
		httperr.BadRequest(c, "invalid_to", "Fecha 'to' inválida.")
		return
	}

	logs, total, err := h.logs.List(c.Request.Context(), audit.ListFilter{
		UserID: c.Query("user_id"),
		Action: c.Query("action"),
		Entity: c.Query("entity"),
		From:   from,
		To:     to,
		Page:   page,
		Limit:  limit,
	})
	if err != nil {
		httperr.FromError(c, err, "audit_list_failed")
		return
	}

	httpresp.Page(c, logs, page, limit, total)
}

func (h *AuditLogsHandler) Get(c *gin.Context) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil || id == 0 {
		httperr.BadRequest(c, "invalid_id", "Identificador inválido.")
		return
	}

	row, err := h.logs.Get(c.Request.Context(), uint(id))
	if err != nil {
		if errors.Is(err, audit.ErrLogNotFound) {
			httperr.NotFound(c, "audit_log_not_found", "Registro no encontrado.")
			return
		}
		httperr.FromError(c, err, "audit_get_failed")
		return
	}

	httpresp.OK(c, row)
}
