package handlers

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/SaltaGet/Back-SIJAC/internal/httperr"
	"github.com/SaltaGet/Back-SIJAC/internal/storage"
)

// MediaHandler serves stored images. Only keys under the image prefix are
// reachable; backups share the store and stay private.
type MediaHandler struct {
	store  storage.ObjectStore
	prefix string
}

func NewMediaHandler(store storage.ObjectStore, imagePrefix string) *MediaHandler {
	return &MediaHandler{store: store, prefix: strings.Trim(imagePrefix, "/") + "/"}
}

// Serve handles GET /media/*key.
func (h *MediaHandler) Serve(c *gin.Context) {
	key := strings.TrimPrefix(c.Param("key"), "/")
	if !strings.HasPrefix(key, h.prefix) || strings.Contains(key, "..") {
		httperr.NotFound(c, "image_not_found", "Imagen no encontrada.")
		return
	}

	obj, err := h.store.Get(c.Request.Context(), key)
	if err != nil {
		if errors.Is(err, storage.ErrObjectNotFound) {
			httperr.NotFound(c, "image_not_found", "Imagen no encontrada.")
			return
		}
		httperr.FromError(c, err, "failed_to_get_image")
		return
	}

	contentType := obj.ContentType
	if contentType == "" {
		contentType = http.DetectContentType(obj.Body)
	}

	c.Header("Cache-Control", "public, max-age=86400")
	c.Data(http.StatusOK, contentType, obj.Body)
}
