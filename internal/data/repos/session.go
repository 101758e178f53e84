package repos

import (
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/brightpath/assessment-engine/internal/domain"
	"github.com/brightpath/assessment-engine/internal/pkg/dbctx"
	"github.com/brightpath/assessment-engine/internal/platform/logger"
)

type SessionRepo interface {
	Create(dbc dbctx.Context, session *domain.TestSession) error
	GetByID(dbc dbctx.Context, id uuid.UUID) (*domain.TestSession, error)
	ListByBeneficiaryID(dbc dbctx.Context, beneficiaryID uuid.UUID) ([]*domain.TestSession, error)
	// Save writes the session guarded by its version column and returns
	// domain.ErrStaleSession when another writer got there first.
	Save(dbc dbctx.Context, session *domain.TestSession) error
	CountStartedByPoolID(dbc dbctx.Context, poolID uuid.UUID) (int, error)
}

type sessionRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewSessionRepo(db *gorm.DB, baseLog *logger.Logger) SessionRepo {
	return &sessionRepo{db: db, log: baseLog.With("repo", "SessionRepo")}
}

func (r *sessionRepo) Create(dbc dbctx.Context, session *domain.TestSession) error {
	t := dbc.Tx
	if t == nil {
		t = r.db
	}
	if session == nil {
		return nil
	}
	if session.ID == uuid.Nil {
		session.ID = uuid.New()
	}
	return t.WithContext(dbc.Ctx).Omit("Pool").Create(session).Error
}

func (r *sessionRepo) GetByID(dbc dbctx.Context, id uuid.UUID) (*domain.TestSession, error) {
	t := dbc.Tx
	if t == nil {
		t = r.db
	}
	var session domain.TestSession
	if err := t.WithContext(dbc.Ctx).First(&session, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("session %s: %w", id, domain.ErrNotFound)
		}
		return nil, err
	}
	return &session, nil
}

func (r *sessionRepo) ListByBeneficiaryID(dbc dbctx.Context, beneficiaryID uuid.UUID) ([]*domain.TestSession, error) {
	t := dbc.Tx
	if t == nil {
		t = r.db
	}
	out := []*domain.TestSession{}
	if err := t.WithContext(dbc.Ctx).
		Where("beneficiary_id = ?", beneficiaryID).
		Order("created_at DESC").
		Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}

func (r *sessionRepo) Save(dbc dbctx.Context, session *domain.TestSession) error {
	t := dbc.Tx
	if t == nil {
		t = r.db
	}
	if session == nil {
		return nil
	}
	loadedVersion := session.Version
	session.Version = loadedVersion + 1
	session.UpdatedAt = time.Now().UTC()

	res := t.WithContext(dbc.Ctx).
		Model(&domain.TestSession{}).
		Where("id = ? AND version = ?", session.ID, loadedVersion).
		Select("*").
		Omit("id", "created_at", "deleted_at", "Pool").
		Updates(session)
	if res.Error != nil {
		session.Version = loadedVersion
		return res.Error
	}
	if res.RowsAffected == 0 {
		session.Version = loadedVersion
		return fmt.Errorf("session %s at version %d: %w", session.ID, loadedVersion, domain.ErrStaleSession)
	}
	return nil
}

func (r *sessionRepo) CountStartedByPoolID(dbc dbctx.Context, poolID uuid.UUID) (int, error) {
	t := dbc.Tx
	if t == nil {
		t = r.db
	}
	var count int64
	if err := t.WithContext(dbc.Ctx).
		Model(&domain.TestSession{}).
		Where("pool_id = ? AND status <> ?", poolID, domain.SessionNotStarted).
		Count(&count).Error; err != nil {
		return 0, err
	}
	return int(count), nil
}
