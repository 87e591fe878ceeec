package repository

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"github.com/SaltaGet/Back-SIJAC/internal/models"
)

var (
	ErrCaseNotFound   = errors.New("case not found")
	ErrClientNotFound = errors.New("client not found")
	ErrUserNotFound   = errors.New("user not found")
	ErrCaseNotShared  = errors.New("case not shared with user")
)

// CaseScope limits queries to the cases linked to UserID, unless All.
type CaseScope struct {
	UserID string
	All    bool
}

type CaseFilter struct {
	ClientID string
	State    string
}

type CaseGormRepository struct {
	db *gorm.DB
}

func NewCaseGormRepository(db *gorm.DB) *CaseGormRepository {
	return &CaseGormRepository{db: db}
}

func (r *CaseGormRepository) visible(ctx context.Context, scope CaseScope) *gorm.DB {
	q := r.db.WithContext(ctx).Model(&models.Case{})
	if scope.All {
		return q
	}
	return q.Where(
		"cases.id IN (SELECT case_id FROM user_cases WHERE user_id = ?)",
		scope.UserID,
	)
}

// Create stores the case and links it to ownerID.
func (r *CaseGormRepository) Create(ctx context.Context, cs *models.Case, ownerID string) error {
	var n int64
	if err := r.db.WithContext(ctx).Model(&models.Client{}).
		Where("id = ?", cs.ClientID).Count(&n).Error; err != nil {
		return err
	}
	if n == 0 {
		return ErrClientNotFound
	}

	cs.Users = []models.User{{ID: ownerID}}

	// Users holds only the id; the join row is written, the user row is not touched.
	err := r.db.WithContext(ctx).Omit("Users.*").Create(cs).Error
	cs.Users = nil
	return err
}

func (r *CaseGormRepository) List(ctx context.Context, scope CaseScope, f CaseFilter) ([]models.Case, error) {
	q := r.visible(ctx, scope).Preload("Client")
	if f.ClientID != "" {
		q = q.Where("client_id = ?", f.ClientID)
	}
	if f.State != "" {
		q = q.Where("state = ?", f.State)
	}

	var cases []models.Case
	err := q.Order("created_at DESC").Find(&cases).Error
	return cases, err
}

func (r *CaseGormRepository) Get(ctx context.Context, scope CaseScope, id string) (*models.Case, error) {
	var cs models.Case
	err := r.visible(ctx, scope).
		Preload("Client").
		Preload("Users").
		First(&cs, "cases.id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrCaseNotFound
	}
	if err != nil {
		return nil, err
	}
	return &cs, nil
}

// Update writes detail and state only.
func (r *CaseGormRepository) Update(ctx context.Context, cs *models.Case) error {
	return r.db.WithContext(ctx).
		Model(&models.Case{ID: cs.ID}).
		Updates(map[string]any{"detail": cs.Detail, "state": cs.State}).Error
}

func (r *CaseGormRepository) Share(ctx context.Context, caseID, userID string) error {
	var target models.User
	err := r.db.WithContext(ctx).First(&target, "id = ?", userID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return ErrUserNotFound
	}
	if err != nil {
		return err
	}

	return r.db.WithContext(ctx).
		Model(&models.Case{ID: caseID}).
		Association("Users").
		Append(&target)
}

func (r *CaseGormRepository) Unshare(ctx context.Context, caseID, userID string) error {
	var n int64
	if err := r.db.WithContext(ctx).Table("user_cases").
		Where("case_id = ? AND user_id = ?", caseID, userID).
		Count(&n).Error; err != nil {
		return err
	}
	if n == 0 {
		return ErrCaseNotShared
	}

	return r.db.WithContext(ctx).
		Model(&models.Case{ID: caseID}).
		Association("Users").
		Delete(&models.User{ID: userID})
}
