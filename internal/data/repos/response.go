package repos

import (
	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/brightpath/assessment-engine/internal/domain"
	"github.com/brightpath/assessment-engine/internal/pkg/dbctx"
	"github.com/brightpath/assessment-engine/internal/platform/logger"
)

type ResponseRepo interface {
	Append(dbc dbctx.Context, response *domain.SessionResponse) error
	ListBySessionID(dbc dbctx.Context, sessionID uuid.UUID) ([]*domain.SessionResponse, error)
	ListByItemID(dbc dbctx.Context, itemID uuid.UUID) ([]*domain.SessionResponse, error)
}

type responseRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewResponseRepo(db *gorm.DB, baseLog *logger.Logger) ResponseRepo {
	return &responseRepo{db: db, log: baseLog.With("repo", "ResponseRepo")}
}

func (r *responseRepo) Append(dbc dbctx.Context, response *domain.SessionResponse) error {
	t := dbc.Tx
	if t == nil {
		t = r.db
	}
	if response == nil {
		return nil
	}
	if response.ID == uuid.Nil {
		response.ID = uuid.New()
	}
	return t.WithContext(dbc.Ctx).Omit("Session", "Item").Create(response).Error
}

func (r *responseRepo) ListBySessionID(dbc dbctx.Context, sessionID uuid.UUID) ([]*domain.SessionResponse, error) {
	t := dbc.Tx
	if t == nil {
		t = r.db
	}
	out := []*domain.SessionResponse{}
	if err := t.WithContext(dbc.Ctx).
		Preload("Item").
		Where("session_id = ?", sessionID).
		Order("question_number ASC").
		Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}

func (r *responseRepo) ListByItemID(dbc dbctx.Context, itemID uuid.UUID) ([]*domain.SessionResponse, error) {
	t := dbc.Tx
	if t == nil {
		t = r.db
	}
	out := []*domain.SessionResponse{}
	if err := t.WithContext(dbc.Ctx).
		Where("item_id = ?", itemID).
		Order("created_at ASC").
		Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}
