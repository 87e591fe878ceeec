package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/SaltaGet/Back-SIJAC/internal/httperr"
	"github.com/SaltaGet/Back-SIJAC/internal/httpresp"
	"github.com/SaltaGet/Back-SIJAC/internal/middleware"
	ucAvailability "github.com/SaltaGet/Back-SIJAC/internal/usecase/availability"
)

// ======================================================
// HANDLER
// ======================================================

type AvailabilityHandler struct {
	create *ucAvailability.CreateAvailability
	update *ucAvailability.UpdateAvailability
	delete *ucAvailability.DeleteAvailability
	list   *ucAvailability.ListAvailabilities
	loc    *time.Location
}

func NewAvailabilityHandler(
	create *ucAvailability.CreateAvailability,
	update *ucAvailability.UpdateAvailability,
	delete *ucAvailability.DeleteAvailability,
	list *ucAvailability.ListAvailabilities,
	loc *time.Location,
) *AvailabilityHandler {
	return &AvailabilityHandler{
		create: create,
		update: update,
		delete: delete,
		list:   list,
		loc:    loc,
	}
}

// ======================================================
// REQUESTS
// ======================================================

type CreateAvailabilityRequest struct {
	Date              string  `json:"date" binding:"required"`
	StartTime         string  `json:"start_time" binding:"required,hhmm"`
	EndTime           string  `json:"end_time" binding:"required,hhmm"`
	StartTimeOptional *string `json:"start_time_optional" binding:"omitempty,hhmm"`
	EndTimeOptional   *string `json:"end_time_optional" binding:"omitempty,hhmm"`
}

type UpdateAvailabilityRequest struct {
	StartTime         string  `json:"start_time" binding:"required,hhmm"`
	EndTime           string  `json:"end_time" binding:"required,hhmm"`
	StartTimeOptional *string `json:"start_time_optional" binding:"omitempty,hhmm"`
	EndTimeOptional   *string `json:"end_time_optional" binding:"omitempty,hhmm"`
}

// ======================================================
// CREATE
// ======================================================

func (h *AvailabilityHandler) Create(c *gin.Context) {
	var req CreateAvailabilityRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httperr.BadRequest(c, "invalid_request", err.Error())
		return
	}

	av, err := h.create.Execute(c.Request.Context(), ucAvailability.CreateInput{
		UserID:            middleware.UserID(c),
		Date:              req.Date,
		StartTime:         req.StartTime,
		EndTime:           req.EndTime,
		StartTimeOptional: req.StartTimeOptional,
		EndTimeOptional:   req.EndTimeOptional,
	})
	if err != nil {
		httperr.FromError(c, err, "failed_to_create_availability")
		return
	}

	httpresp.Created(c, av)
}

// ======================================================
// UPDATE
// ======================================================

func (h *AvailabilityHandler) Update(c *gin.Context) {
	var req UpdateAvailabilityRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httperr.BadRequest(c, "invalid_request", err.Error())
		return
	}

	av, err := h.update.Execute(c.Request.Context(), ucAvailability.UpdateInput{
		ID:                c.Param("id"),
		UserID:            middleware.UserID(c),
		StartTime:         req.StartTime,
		EndTime:           req.EndTime,
		StartTimeOptional: req.StartTimeOptional,
		EndTimeOptional:   req.EndTimeOptional,
	})
	if err != nil {
		httperr.FromError(c, err, "failed_to_update_availability")
		return
	}

	httpresp.OK(c, av)
}

// ======================================================
// DELETE
// ======================================================

func (h *AvailabilityHandler) Delete(c *gin.Context) {
	if err := h.delete.Execute(c.Request.Context(), c.Param("id"), middleware.UserID(c)); err != nil {
		httperr.FromError(c, err, "failed_to_delete_availability")
		return
	}

	c.Status(http.StatusNoContent)
}

// ======================================================
// QUERIES
// ======================================================

func (h *AvailabilityHandler) List(c *gin.Context) {
	from, to, ok := dateRange(c, h.loc)
	if !ok {
		httperr.BadRequest(c, "invalid_date_range", "Rango de fechas inválido.")
		return
	}

	list, err := h.list.ForStaff(c.Request.Context(), middleware.UserID(c), from, to)
	if err != nil {
		httperr.FromError(c, err, "failed_to_list_availabilities")
		return
	}

	httpresp.List(c, list)
}

func (h *AvailabilityHandler) Get(c *gin.Context) {
	av, err := h.list.Get(c.Request.Context(), c.Param("id"), middleware.UserID(c))
	if err != nil {
		httperr.FromError(c, err, "failed_to_get_availability")
		return
	}

	httpresp.OK(c, av)
}

// Public lists bookable dates of one staff member.
func (h *AvailabilityHandler) Public(c *gin.Context) {
	from, to, ok := dateRange(c, h.loc)
	if !ok {
		httperr.BadRequest(c, "invalid_date_range", "Rango de fechas inválido.")
		return
	}

	list, err := h.list.Public(c.Request.Context(), c.Param("user_id"), from, to)
	if err != nil {
		httperr.FromError(c, err, "failed_to_list_availabilities")
		return
	}

	out := make([]publicAvailability, 0, len(list))
	for _, s := range list {
		out = append(out, publicAvailability{
			ID:            s.ID,
			Date:          s.Date.Format("2006-01-02"),
			Disponibility: s.Disponibility,
		})
	}
	httpresp.List(c, out)
}

type publicAvailability struct {
	ID            string `json:"id"`
	Date          string `json:"date"`
	Disponibility bool   `json:"disponibility"`
}
