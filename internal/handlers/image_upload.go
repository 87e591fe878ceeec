package handlers

import (
	"errors"
	"io"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/SaltaGet/Back-SIJAC/internal/httperr"
	"github.com/SaltaGet/Back-SIJAC/internal/media"
	"github.com/SaltaGet/Back-SIJAC/internal/storage"
)

var errMissingImage = errors.New("missing image")

// ImageUploader converts multipart images to WebP and stores them under prefix.
type ImageUploader struct {
	store  storage.ObjectStore
	prefix string
}

func NewImageUploader(store storage.ObjectStore, prefix string) *ImageUploader {
	return &ImageUploader{store: store, prefix: prefix}
}

// FromForm returns the stored object key.
func (u *ImageUploader) FromForm(c *gin.Context, field, folder string) (string, error) {
	fh, err := c.FormFile(field)
	if err != nil {
		return "", errMissingImage
	}
	if fh.Size > media.MaxUploadBytes {
		return "", media.ErrTooLarge
	}

	f, err := fh.Open()
	if err != nil {
		return "", err
	}
	defer f.Close()

	raw, err := io.ReadAll(io.LimitReader(f, media.MaxUploadBytes+1))
	if err != nil {
		return "", err
	}

	encoded, err := media.ToWebP(raw)
	if err != nil {
		return "", err
	}

	key := u.prefix + "/" + folder + "/" + uuid.NewString() + media.Extension
	if err := u.store.Put(c.Request.Context(), key, media.ContentType, encoded); err != nil {
		return "", err
	}
	return key, nil
}

func writeImageError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, errMissingImage):
		httperr.BadRequest(c, "missing_image", "La imagen es obligatoria.")
	case errors.Is(err, media.ErrTooLarge):
		httperr.Write(c, http.StatusRequestEntityTooLarge, "image_too_large", "La imagen no puede exceder los 2MB.")
	case errors.Is(err, media.ErrUnsupported):
		httperr.BadRequest(c, "unsupported_image", "Formatos válidos: JPEG, PNG.")
	default:
		httperr.FromError(c, err, "failed_to_store_image")
	}
}
