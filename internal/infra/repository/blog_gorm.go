package repository

import (
	"context"
	"errors"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/SaltaGet/Back-SIJAC/internal/models"
)

var ErrBlogNotFound = errors.New("blog not found")

type BlogGormRepository struct {
	db *gorm.DB
}

func NewBlogGormRepository(db *gorm.DB) *BlogGormRepository {
	return &BlogGormRepository{db: db}
}

func (r *BlogGormRepository) Create(ctx context.Context, b *models.Blog) error {
	return r.db.WithContext(ctx).Omit(clause.Associations).Create(b).Error
}

func (r *BlogGormRepository) Get(ctx context.Context, id string) (*models.Blog, error) {
	var b models.Blog
	err := r.db.WithContext(ctx).
		Preload("User").
		First(&b, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrBlogNotFound
	}
	if err != nil {
		return nil, err
	}
	return &b, nil
}

func (r *BlogGormRepository) List(ctx context.Context, limit, offset int) ([]models.Blog, int64, error) {
	var total int64
	if err := r.db.WithContext(ctx).Model(&models.Blog{}).Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var list []models.Blog
	err := r.db.WithContext(ctx).
		Preload("User").
		Order("created_at DESC").
		Limit(limit).
		Offset(offset).
		Find(&list).Error
	return list, total, err
}

// Update writes title, body and image key.
func (r *BlogGormRepository) Update(ctx context.Context, b *models.Blog) error {
	res := r.db.WithContext(ctx).
		Model(&models.Blog{ID: b.ID}).
		Updates(map[string]any{"title": b.Title, "body": b.Body, "image_key": b.ImageKey})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrBlogNotFound
	}
	return nil
}

func (r *BlogGormRepository) Delete(ctx context.Context, id string) error {
	res := r.db.WithContext(ctx).Delete(&models.Blog{}, "id = ?", id)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrBlogNotFound
	}
	return nil
}

// ImageKeys lists every stored image referenced by blogs or staff profiles.
func (r *BlogGormRepository) ImageKeys(ctx context.Context) ([]string, error) {
	var keys []string
	err := r.db.WithContext(ctx).Raw(`
		SELECT image_key FROM blogs WHERE image_key <> ''
		UNION
		SELECT image_key FROM users WHERE image_key <> ''
	`).Scan(&keys).Error
	return keys, err
}
