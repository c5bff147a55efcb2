package repository

import (
	"time"

	"github.com/teamtasker/team-task-service/internal/models"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// GormRegistrationRepository is a GORM implementation of RegistrationRepository
type GormRegistrationRepository struct {
	db *gorm.DB
}

// NewRegistrationRepository creates a new RegistrationRepository
func NewRegistrationRepository(db *gorm.DB) RegistrationRepository {
	return &GormRegistrationRepository{db: db}
}

// Create files a request. The per-user unique index makes a second request
// surface as gorm.ErrDuplicatedKey.
func (r *GormRegistrationRepository) Create(req *models.RegistrationRequest) error {
	req.Status = models.RequestStatusPending
	return r.db.Create(req).Error
}

// ListPending returns requests awaiting review, newest first
func (r *GormRegistrationRepository) ListPending() ([]models.RegistrationRequest, error) {
	var requests []models.RegistrationRequest
	err := r.db.Where("status = ?", models.RequestStatusPending).
		Order("requested_at DESC").
		Find(&requests).Error
	if err != nil {
		return nil, err
	}
	return requests, nil
}

// FindByUserID returns the user's latest request
func (r *GormRegistrationRepository) FindByUserID(userID uint64) (*models.RegistrationRequest, error) {
	var req models.RegistrationRequest
	err := r.db.Where("user_id = ?", userID).
		Order("requested_at DESC").
		First(&req).Error
	if err != nil {
		return nil, err
	}
	return &req, nil
}

// Approve marks the request approved and upserts the user as registered, in
// one transaction.
func (r *GormRegistrationRepository) Approve(requestID, reviewerID uint64) error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		var req models.RegistrationRequest
		if err := tx.First(&req, requestID).Error; err != nil {
			return err
		}

		now := time.Now()
		if err := tx.Model(&models.RegistrationRequest{}).
			Where("id = ?", requestID).
			Updates(map[string]interface{}{
				"status":      models.RequestStatusApproved,
				"reviewed_by": reviewerID,
				"reviewed_at": now,
			}).Error; err != nil {
			return err
		}

		user := models.User{
			ID:         req.UserID,
			Name:       req.Name,
			Username:   req.Username,
			Registered: true,
		}
		return tx.
			Clauses(clause.OnConflict{
				Columns:   []clause.Column{{Name: "id"}},
				DoUpdates: clause.AssignmentColumns([]string{"name", "username", "registered"}),
			}).
			Create(&user).Error
	})
}

// Reject marks the request rejected
func (r *GormRegistrationRepository) Reject(requestID, reviewerID uint64) error {
	res := r.db.Model(&models.RegistrationRequest{}).
		Where("id = ?", requestID).
		Updates(map[string]interface{}{
			"status":      models.RequestStatusRejected,
			"reviewed_by": reviewerID,
			"reviewed_at": time.Now(),
		})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}
