package handlers

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/SaltaGet/Back-SIJAC/internal/audit"
	"github.com/SaltaGet/Back-SIJAC/internal/httperr"
	"github.com/SaltaGet/Back-SIJAC/internal/httpresp"
	infraRepo "github.com/SaltaGet/Back-SIJAC/internal/infra/repository"
	"github.com/SaltaGet/Back-SIJAC/internal/middleware"
	"github.com/SaltaGet/Back-SIJAC/internal/models"
	"github.com/SaltaGet/Back-SIJAC/internal/storage"
)

type BlogRepository interface {
	Create(ctx context.Context, b *models.Blog) error
	Get(ctx context.Context, id string) (*models.Blog, error)
	List(ctx context.Context, limit, offset int) ([]models.Blog, int64, error)
	Update(ctx context.Context, b *models.Blog) error
	Delete(ctx context.Context, id string) error
}

// ======================================================
// HANDLER
// ======================================================

type BlogHandler struct {
	repo   BlogRepository
	images *ImageUploader
	store  storage.ObjectStore
	audit  *audit.Dispatcher
	log    *zap.Logger
}

func NewBlogHandler(
	repo BlogRepository,
	images *ImageUploader,
	store storage.ObjectStore,
	audit *audit.Dispatcher,
	log *zap.Logger,
) *BlogHandler {
	return &BlogHandler{repo: repo, images: images, store: store, audit: audit, log: log}
}

type blogView struct {
	models.Blog
	ImageURL string `json:"image_url"`
}

func (h *BlogHandler) view(b models.Blog) blogView {
	return blogView{Blog: b, ImageURL: h.store.URL(b.ImageKey)}
}

// ======================================================
// CREATE (multipart: title, body, image)
// ======================================================

func (h *BlogHandler) Create(c *gin.Context) {
	title, body, ok := blogFields(c)
	if !ok {
		return
	}

	key, err := h.images.FromForm(c, "image", "blog")
	if err != nil {
		writeImageError(c, err)
		return
	}

	blog := models.Blog{
		Title:    title,
		Body:     body,
		ImageKey: key,
		UserID:   middleware.UserID(c),
	}
	if err := h.repo.Create(c.Request.Context(), &blog); err != nil {
		_ = h.store.Delete(c.Request.Context(), key)
		httperr.FromError(c, err, "failed_to_create_blog")
		return
	}

	h.audit.Dispatch(audit.Event{
		UserID:   &blog.UserID,
		Action:   "blog_created",
		Entity:   "blog",
		EntityID: &blog.ID,
	})

	httpresp.Created(c, h.view(blog))
}

func blogFields(c *gin.Context) (title, body string, ok bool) {
	title = strings.TrimSpace(c.PostForm("title"))
	body = strings.TrimSpace(c.PostForm("body"))
	if title == "" || body == "" {
		httperr.BadRequest(c, "invalid_request", "Título y contenido son obligatorios.")
		return "", "", false
	}
	if len(title) > 200 {
		httperr.BadRequest(c, "title_too_long", "El título no puede superar 200 caracteres.")
		return "", "", false
	}
	return title, body, true
}

// ======================================================
// UPDATE (author or admin; image optional)
// ======================================================

func (h *BlogHandler) Update(c *gin.Context) {
	ctx := c.Request.Context()
	userID := middleware.UserID(c)

	title, body, ok := blogFields(c)
	if !ok {
		return
	}

	b, ok := h.loadOwned(c, "failed_to_update_blog")
	if !ok {
		return
	}

	oldKey := b.ImageKey
	newKey, err := h.images.FromForm(c, "image", "blog")
	switch {
	case errors.Is(err, errMissingImage):
		newKey = ""
	case err != nil:
		writeImageError(c, err)
		return
	}

	b.Title = title
	b.Body = body
	if newKey != "" {
		b.ImageKey = newKey
	}

	if err := h.repo.Update(ctx, b); err != nil {
		if newKey != "" {
			_ = h.store.Delete(ctx, newKey)
		}
		httperr.FromError(c, err, "failed_to_update_blog")
		return
	}

	if newKey != "" && oldKey != "" {
		if err := h.store.Delete(ctx, oldKey); err != nil {
			h.log.Warn("replaced blog image not removed", zap.String("key", oldKey), zap.Error(err))
		}
	}

	h.audit.Dispatch(audit.Event{
		UserID:   &userID,
		Action:   "blog_updated",
		Entity:   "blog",
		EntityID: &b.ID,
		Metadata: map[string]any{"image_replaced": newKey != ""},
	})

	httpresp.OK(c, h.view(*b))
}

// ======================================================
// PUBLIC
// ======================================================

func (h *BlogHandler) List(c *gin.Context) {
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	if page <= 0 {
		page = 1
	}
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "10"))
	if limit <= 0 || limit > 50 {
		limit = 10
	}

	list, total, err := h.repo.List(c.Request.Context(), limit, (page-1)*limit)
	if err != nil {
		httperr.FromError(c, err, "failed_to_list_blogs")
		return
	}

	out := make([]blogView, 0, len(list))
	for _, b := range list {
		out = append(out, h.view(b))
	}
	httpresp.Page(c, out, page, limit, total)
}

func (h *BlogHandler) Get(c *gin.Context) {
	b, err := h.repo.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		if errors.Is(err, infraRepo.ErrBlogNotFound) {
			httperr.NotFound(c, "blog_not_found", "Blog no encontrado.")
			return
		}
		httperr.FromError(c, err, "failed_to_get_blog")
		return
	}

	httpresp.OK(c, h.view(*b))
}

// ======================================================
// DELETE (author or admin)
// ======================================================

func (h *BlogHandler) Delete(c *gin.Context) {
	ctx := c.Request.Context()
	userID := middleware.UserID(c)

	b, ok := h.loadOwned(c, "failed_to_delete_blog")
	if !ok {
		return
	}

	if err := h.repo.Delete(ctx, b.ID); err != nil {
		httperr.FromError(c, err, "failed_to_delete_blog")
		return
	}

	if b.ImageKey != "" {
		if err := h.store.Delete(ctx, b.ImageKey); err != nil {
			h.log.Warn("blog image not removed", zap.String("key", b.ImageKey), zap.Error(err))
		}
	}

	h.audit.Dispatch(audit.Event{
		UserID:   &userID,
		Action:   "blog_deleted",
		Entity:   "blog",
		EntityID: &b.ID,
	})

	c.Status(http.StatusNoContent)
}

// loadOwned returns the blog when the caller wrote it or is an admin.
func (h *BlogHandler) loadOwned(c *gin.Context, fallbackCode string) (*models.Blog, bool) {
	b, err := h.repo.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		if errors.Is(err, infraRepo.ErrBlogNotFound) {
			httperr.NotFound(c, "blog_not_found", "Blog no encontrado.")
			return nil, false
		}
		httperr.FromError(c, err, fallbackCode)
		return nil, false
	}

	if b.UserID != middleware.UserID(c) && !middleware.IsAdmin(c) {
		httperr.Forbidden(c, "not_author", "Solo el autor puede modificar el blog.")
		return nil, false
	}
	return b, true
}
