package handlers

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"github.com/SaltaGet/Back-SIJAC/internal/dto"
	"github.com/SaltaGet/Back-SIJAC/internal/httperr"
	"github.com/SaltaGet/Back-SIJAC/internal/httpresp"
	"github.com/SaltaGet/Back-SIJAC/internal/middleware"
	"github.com/SaltaGet/Back-SIJAC/internal/models"
	"github.com/SaltaGet/Back-SIJAC/internal/storage"
)

type MeHandler struct {
	db     *gorm.DB
	images *ImageUploader
	store  storage.ObjectStore
}

func NewMeHandler(db *gorm.DB, images *ImageUploader, store storage.ObjectStore) *MeHandler {
	return &MeHandler{db: db, images: images, store: store}
}

type UpdateMeRequest struct {
	FirstName *string `json:"first_name" binding:"omitempty,max=100"`
	LastName  *string `json:"last_name" binding:"omitempty,max=100"`
	Specialty *string `json:"specialty" binding:"omitempty,max=100"`
	Password  *string `json:"password" binding:"omitempty,min=8"`
}

func (h *MeHandler) current(c *gin.Context) (*models.User, bool) {
	var user models.User
	if err := h.db.WithContext(c.Request.Context()).
		First(&user, "id = ?", middleware.UserID(c)).Error; err != nil {

		if errors.Is(err, gorm.ErrRecordNotFound) {
			httperr.Unauthorized(c, "user_not_found", "Usuario no encontrado.")
			return nil, false
		}
		httperr.FromError(c, err, "failed_to_load_user")
		return nil, false
	}
	return &user, true
}

func (h *MeHandler) GetMe(c *gin.Context) {
	user, ok := h.current(c)
	if !ok {
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"user":      user,
		"image_url": h.store.URL(user.ImageKey),
	})
}

func (h *MeHandler) UpdateMe(c *gin.Context) {
	var req UpdateMeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httperr.BadRequest(c, "invalid_request", err.Error())
		return
	}

	user, ok := h.current(c)
	if !ok {
		return
	}

	updates := map[string]any{}
	if req.FirstName != nil {
		updates["first_name"] = strings.TrimSpace(*req.FirstName)
	}
	if req.LastName != nil {
		updates["last_name"] = strings.TrimSpace(*req.LastName)
	}
	if req.Specialty != nil {
		updates["specialty"] = strings.TrimSpace(*req.Specialty)
	}
	if req.Password != nil {
		hashed, err := bcrypt.GenerateFromPassword([]byte(*req.Password), bcrypt.DefaultCost)
		if err != nil {
			httperr.FromError(c, err, "failed_to_hash_password")
			return
		}
		updates["password_hash"] = string(hashed)
	}

	if len(updates) > 0 {
		if err := h.db.WithContext(c.Request.Context()).
			Model(user).Updates(updates).Error; err != nil {
			httperr.FromError(c, err, "failed_to_update_user")
			return
		}
	}

	httpresp.OK(c, user)
}

// UploadImage replaces the profile picture.
func (h *MeHandler) UploadImage(c *gin.Context) {
	user, ok := h.current(c)
	if !ok {
		return
	}

	key, err := h.images.FromForm(c, "image", "users")
	if err != nil {
		writeImageError(c, err)
		return
	}

	old := user.ImageKey
	if err := h.db.WithContext(c.Request.Context()).
		Model(user).Update("image_key", key).Error; err != nil {
		_ = h.store.Delete(c.Request.Context(), key)
		httperr.FromError(c, err, "failed_to_update_user")
		return
	}
	if old != "" {
		_ = h.store.Delete(c.Request.Context(), old)
	}

	httpresp.OK(c, gin.H{"image_url": h.store.URL(key)})
}

// PublicStaff lists the staff cards shown on the booking page.
func (h *MeHandler) PublicStaff(c *gin.Context) {
	var users []models.User
	if err := h.db.WithContext(c.Request.Context()).
		Order("last_name ASC, first_name ASC").
		Find(&users).Error; err != nil {
		httperr.FromError(c, err, "failed_to_list_users")
		return
	}

	out := make([]dto.StaffDTO, 0, len(users))
	for _, u := range users {
		out = append(out, dto.StaffDTO{
			ID:        u.ID,
			FirstName: u.FirstName,
			LastName:  u.LastName,
			Specialty: u.Specialty,
			ImageURL:  h.store.URL(u.ImageKey),
		})
	}
	httpresp.List(c, out)
}
