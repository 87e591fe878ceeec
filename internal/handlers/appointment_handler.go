package handlers

import (
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	domain "github.com/SaltaGet/Back-SIJAC/internal/domain/appointment"
	"github.com/SaltaGet/Back-SIJAC/internal/dto"
	"github.com/SaltaGet/Back-SIJAC/internal/httperr"
	"github.com/SaltaGet/Back-SIJAC/internal/httpresp"
	"github.com/SaltaGet/Back-SIJAC/internal/middleware"
	"github.com/SaltaGet/Back-SIJAC/internal/timezone"
	ucAppointment "github.com/SaltaGet/Back-SIJAC/internal/usecase/appointment"
)

// ======================================================
// HANDLER
// ======================================================

type AppointmentHandler struct {
	reserve     *ucAppointment.ReserveAppointment
	confirm     *ucAppointment.ConfirmAppointment
	updateState *ucAppointment.UpdateAppointmentState
	list        *ucAppointment.ListAppointments
	loc         *time.Location
}

func NewAppointmentHandler(
	reserve *ucAppointment.ReserveAppointment,
	confirm *ucAppointment.ConfirmAppointment,
	updateState *ucAppointment.UpdateAppointmentState,
	list *ucAppointment.ListAppointments,
	loc *time.Location,
) *AppointmentHandler {
	return &AppointmentHandler{
		reserve:     reserve,
		confirm:     confirm,
		updateState: updateState,
		list:        list,
		loc:         loc,
	}
}

// ======================================================
// REQUESTS
// ======================================================

type ReserveRequest struct {
	FullName  string `json:"full_name" binding:"required,max=100"`
	Email     string `json:"email" binding:"required,email,max=100"`
	Cellphone string `json:"cellphone" binding:"required,max=20"`
	Reason    string `json:"reason" binding:"required"`
}

type ConfirmRequest struct {
	Token string `json:"token" binding:"required"`
}

type UpdateStateRequest struct {
	State  string `json:"state" binding:"required"`
	Reason string `json:"reason"`
}

// ======================================================
// PUBLIC
// ======================================================

func (h *AppointmentHandler) OpenSlots(c *gin.Context) {
	raw := c.Query("date")
	if raw == "" {
		httperr.BadRequest(c, "missing_date", "La fecha es obligatoria.")
		return
	}
	date, err := timezone.ParseDate(raw, h.loc)
	if err != nil {
		httperr.BadRequest(c, "invalid_date", "Fecha inválida.")
		return
	}

	aps, err := h.list.OpenSlots(c.Request.Context(), c.Param("user_id"), date)
	if err != nil {
		httperr.FromError(c, err, "failed_to_list_appointments")
		return
	}

	httpresp.List(c, dto.OpenSlots(aps))
}

func (h *AppointmentHandler) Reserve(c *gin.Context) {
	var req ReserveRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httperr.BadRequest(c, "invalid_request", err.Error())
		return
	}

	ap, err := h.reserve.Execute(c.Request.Context(), ucAppointment.ReserveInput{
		AppointmentID: c.Param("id"),
		FullName:      req.FullName,
		Email:         req.Email,
		Cellphone:     req.Cellphone,
		Reason:        req.Reason,
	})
	if err != nil {
		httperr.FromError(c, err, "failed_to_reserve_appointment")
		return
	}

	httpresp.OK(c, dto.Reservation(ap))
}

// Confirm accepts the token from the JSON body or the query string.
func (h *AppointmentHandler) Confirm(c *gin.Context) {
	raw := c.Query("token")
	if raw == "" {
		var req ConfirmRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			httperr.BadRequest(c, "missing_token", "Token requerido.")
			return
		}
		raw = req.Token
	}

	ap, err := h.confirm.Execute(c.Request.Context(), raw)
	if err != nil {
		httperr.FromError(c, err, "failed_to_confirm_appointment")
		return
	}

	httpresp.OK(c, dto.Reservation(ap))
}

// ======================================================
// STAFF
// ======================================================

func (h *AppointmentHandler) List(c *gin.Context) {
	from, to, ok := dateRange(c, h.loc)
	if !ok {
		httperr.BadRequest(c, "invalid_date_range", "Rango de fechas inválido.")
		return
	}

	aps, err := h.list.ForStaff(c.Request.Context(), middleware.UserID(c), from, to)
	if err != nil {
		httperr.FromError(c, err, "failed_to_list_appointments")
		return
	}

	httpresp.List(c, aps)
}

func (h *AppointmentHandler) Get(c *gin.Context) {
	ap, err := h.list.Get(c.Request.Context(), c.Param("id"), middleware.UserID(c))
	if err != nil {
		httperr.FromError(c, err, "failed_to_get_appointment")
		return
	}

	httpresp.OK(c, ap)
}

func (h *AppointmentHandler) UpdateState(c *gin.Context) {
	var req UpdateStateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httperr.BadRequest(c, "invalid_request", err.Error())
		return
	}

	state, err := domain.ParseState(strings.ToLower(strings.TrimSpace(req.State)))
	if err != nil {
		httperr.FromError(c, err, "invalid_state_value")
		return
	}

	reason := strings.TrimSpace(req.Reason)
	if state == domain.StateReject && reason == "" {
		httperr.BadRequest(c, "reason_required", "El motivo del rechazo es obligatorio.")
		return
	}

	ap, err := h.updateState.Execute(c.Request.Context(), ucAppointment.UpdateStateInput{
		AppointmentID: c.Param("id"),
		UserID:        middleware.UserID(c),
		State:         state,
		Reason:        reason,
	})
	if err != nil {
		httperr.FromError(c, err, "failed_to_update_appointment")
		return
	}

	httpresp.OK(c, ap)
}
