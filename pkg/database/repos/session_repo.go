package repos

import (
	"github.com/tauraamui/bgreplace/pkg/database/models"
	"github.com/tauraamui/xerror"
)

type SessionRepository struct {
	DB GormWrapper
}

func (r *SessionRepository) Create(session *models.Session) error {
	return r.DB.Create(session).Error()
}

func (r *SessionRepository) FindByUUID(uuid string) (models.Session, error) {
	session := models.Session{}
	if err := r.DB.Where("uuid = ?", uuid).First(&session).Error(); err != nil {
		return session, xerror.Errorf("session of uuid %s not found", uuid)
	}

	return session, nil
}

// Recent lists up to limit sessions, newest first.
func (r *SessionRepository) Recent(limit int) ([]models.Session, error) {
	sessions := []models.Session{}
	if err := r.DB.Order("created_at desc, id desc").Limit(limit).Find(&sessions).Error(); err != nil {
		return nil, xerror.Errorf("unable to list recent sessions: %w", err)
	}

	return sessions, nil
}
