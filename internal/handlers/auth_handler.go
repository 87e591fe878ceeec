package handlers

import (
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"github.com/SaltaGet/Back-SIJAC/internal/audit"
	"github.com/SaltaGet/Back-SIJAC/internal/httperr"
	"github.com/SaltaGet/Back-SIJAC/internal/middleware"
	"github.com/SaltaGet/Back-SIJAC/internal/models"
	"github.com/SaltaGet/Back-SIJAC/internal/validators"
)

type SessionMinter interface {
	MintSession(userID, role, email string, ttl time.Duration) (string, time.Time, error)
}

type AuthHandler struct {
	db       *gorm.DB
	sessions SessionMinter
	ttl      time.Duration
	audit    *audit.Dispatcher
	log      *zap.Logger
}

func NewAuthHandler(
	db *gorm.DB,
	sessions SessionMinter,
	ttl time.Duration,
	audit *audit.Dispatcher,
	log *zap.Logger,
) *AuthHandler {
	return &AuthHandler{db: db, sessions: sessions, ttl: ttl, audit: audit, log: log}
}

// --------- Requests ---------

type CreateUserRequest struct {
	Username  string `json:"username" binding:"required,max=50"`
	Email     string `json:"email" binding:"required,email"`
	FirstName string `json:"first_name" binding:"required,max=100"`
	LastName  string `json:"last_name" binding:"required,max=100"`
	Password  string `json:"password" binding:"required,min=8"`
	Role      string `json:"role" binding:"omitempty,oneof=admin user"`
	Specialty string `json:"specialty" binding:"max=100"`
}

type LoginRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

// --------- Handlers ---------

func (h *AuthHandler) Login(c *gin.Context) {
	var req LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httperr.BadRequest(c, "invalid_request", err.Error())
		return
	}

	email := strings.ToLower(strings.TrimSpace(req.Email))

	var user models.User
	if err := h.db.WithContext(c.Request.Context()).
		Where("email = ?", email).
		First(&user).Error; err != nil {

		if errors.Is(err, gorm.ErrRecordNotFound) {
			httperr.Unauthorized(c, "invalid_credentials", "Credenciales inválidas.")
			return
		}
		httperr.FromError(c, err, "internal_error")
		return
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(req.Password)); err != nil {
		httperr.Unauthorized(c, "invalid_credentials", "Credenciales inválidas.")
		return
	}

	token, expiresAt, err := h.sessions.MintSession(user.ID, user.Role, user.Email, h.ttl)
	if err != nil {
		httperr.FromError(c, err, "failed_to_generate_token")
		return
	}

	h.audit.Dispatch(audit.Event{
		UserID: &user.ID,
		Action: "user_login",
		Entity: "user",
	})

	c.JSON(http.StatusOK, gin.H{
		"token":      token,
		"expires_at": expiresAt,
		"user":       user,
	})
}

// CreateUser registers a staff member. Admin only.
func (h *AuthHandler) CreateUser(c *gin.Context) {
	var req CreateUserRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httperr.BadRequest(c, "invalid_request", err.Error())
		return
	}

	email := strings.ToLower(strings.TrimSpace(req.Email))
	if !validators.IsEmailDomainValid(c.Request.Context(), email) {
		httperr.BadRequest(c, "invalid_email_domain", "El dominio del e-mail no parece ser válido.")
		return
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		httperr.FromError(c, err, "failed_to_hash_password")
		return
	}

	role := req.Role
	if role == "" {
		role = models.RoleUser
	}

	user := models.User{
		Username:     strings.TrimSpace(req.Username),
		Email:        email,
		FirstName:    strings.TrimSpace(req.FirstName),
		LastName:     strings.TrimSpace(req.LastName),
		PasswordHash: string(hashed),
		Role:         role,
		Specialty:    strings.TrimSpace(req.Specialty),
	}

	if err := h.db.WithContext(c.Request.Context()).Create(&user).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			httperr.FromError(c, httperr.ErrConflict("email_already_exists", email), "")
			return
		}
		httperr.FromError(c, err, "failed_to_create_user")
		return
	}

	adminID := middleware.UserID(c)
	h.audit.Dispatch(audit.Event{
		UserID:   &adminID,
		Action:   "user_created",
		Entity:   "user",
		EntityID: &user.ID,
		Metadata: map[string]any{"email": user.Email, "role": user.Role},
	})
	h.log.Info("user created", zap.String("user_id", user.ID), zap.String("role", user.Role))

	c.JSON(http.StatusCreated, user)
}
