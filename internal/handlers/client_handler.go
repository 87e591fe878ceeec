package handlers

import (
	"errors"
	"strings"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/SaltaGet/Back-SIJAC/internal/audit"
	"github.com/SaltaGet/Back-SIJAC/internal/httperr"
	"github.com/SaltaGet/Back-SIJAC/internal/httpresp"
	"github.com/SaltaGet/Back-SIJAC/internal/middleware"
	"github.com/SaltaGet/Back-SIJAC/internal/models"
)

type ClientHandler struct {
	db    *gorm.DB
	audit *audit.Dispatcher
}

func NewClientHandler(db *gorm.DB, audit *audit.Dispatcher) *ClientHandler {
	return &ClientHandler{db: db, audit: audit}
}

type ClientRequest struct {
	FirstName string  `json:"first_name" binding:"required,max=100"`
	LastName  string  `json:"last_name" binding:"required,max=100"`
	DNI       string  `json:"dni" binding:"required,max=20"`
	Email     *string `json:"email" binding:"omitempty,email"`
	Phone     *string `json:"phone" binding:"omitempty,max=20"`
}

func (r ClientRequest) apply(cl *models.Client) {
	cl.FirstName = strings.TrimSpace(r.FirstName)
	cl.LastName = strings.TrimSpace(r.LastName)
	cl.DNI = strings.TrimSpace(r.DNI)
	cl.Email = r.Email
	cl.Phone = r.Phone
	if cl.Email != nil {
		e := strings.ToLower(strings.TrimSpace(*cl.Email))
		cl.Email = &e
	}
}

// ======================================================
// CREATE
// ======================================================

func (h *ClientHandler) Create(c *gin.Context) {
	var req ClientRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httperr.BadRequest(c, "invalid_request", err.Error())
		return
	}

	var client models.Client
	req.apply(&client)

	if err := h.db.WithContext(c.Request.Context()).Create(&client).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			httperr.FromError(c, httperr.ErrConflict("dni_already_exists", client.DNI), "")
			return
		}
		httperr.FromError(c, err, "failed_to_create_client")
		return
	}

	h.dispatch(c, "client_created", client.ID)
	httpresp.Created(c, client)
}

// ======================================================
// LIST (search by name or dni)
// ======================================================

func (h *ClientHandler) List(c *gin.Context) {
	query := strings.ToLower(strings.TrimSpace(c.Query("query")))

	q := h.db.WithContext(c.Request.Context()).Model(&models.Client{})
	if query != "" {
		like := "%" + query + "%"
		q = q.Where(
			"LOWER(first_name) LIKE ? OR LOWER(last_name) LIKE ? OR dni LIKE ?",
			like, like, like,
		)
	}

	var clients []models.Client
	if err := q.Order("last_name ASC, first_name ASC").Find(&clients).Error; err != nil {
		httperr.FromError(c, err, "failed_to_list_clients")
		return
	}

	httpresp.List(c, clients)
}

func (h *ClientHandler) Get(c *gin.Context) {
	client, ok := h.load(c)
	if !ok {
		return
	}
	httpresp.OK(c, client)
}

// ======================================================
// UPDATE
// ======================================================

func (h *ClientHandler) Update(c *gin.Context) {
	var req ClientRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httperr.BadRequest(c, "invalid_request", err.Error())
		return
	}

	client, ok := h.load(c)
	if !ok {
		return
	}
	req.apply(client)

	if err := h.db.WithContext(c.Request.Context()).Save(client).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			httperr.FromError(c, httperr.ErrConflict("dni_already_exists", client.DNI), "")
			return
		}
		httperr.FromError(c, err, "failed_to_update_client")
		return
	}

	h.dispatch(c, "client_updated", client.ID)
	httpresp.OK(c, client)
}

func (h *ClientHandler) load(c *gin.Context) (*models.Client, bool) {
	var client models.Client
	err := h.db.WithContext(c.Request.Context()).First(&client, "id = ?", c.Param("id")).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			httperr.NotFound(c, "client_not_found", "Cliente no encontrado.")
			return nil, false
		}
		httperr.FromError(c, err, "failed_to_get_client")
		return nil, false
	}
	return &client, true
}

func (h *ClientHandler) dispatch(c *gin.Context, action, id string) {
	userID := middleware.UserID(c)
	h.audit.Dispatch(audit.Event{
		UserID:   &userID,
		Action:   action,
		Entity:   "client",
		EntityID: &id,
	})
}
