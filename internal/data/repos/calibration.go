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

type CalibrationRepo interface {
	Create(dbc dbctx.Context, proposal *domain.CalibrationProposal) error
	GetByID(dbc dbctx.Context, id uuid.UUID) (*domain.CalibrationProposal, error)
	ListPendingByItemID(dbc dbctx.Context, itemID uuid.UUID) ([]*domain.CalibrationProposal, error)
	MarkApplied(dbc dbctx.Context, id uuid.UUID) error
}

type calibrationRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewCalibrationRepo(db *gorm.DB, baseLog *logger.Logger) CalibrationRepo {
	return &calibrationRepo{db: db, log: baseLog.With("repo", "CalibrationRepo")}
}

func (r *calibrationRepo) Create(dbc dbctx.Context, proposal *domain.CalibrationProposal) error {
	t := dbc.Tx
	if t == nil {
		t = r.db
	}
	if proposal == nil {
		return nil
	}
	if proposal.ID == uuid.Nil {
		proposal.ID = uuid.New()
	}
	return t.WithContext(dbc.Ctx).Omit("Item").Create(proposal).Error
}

func (r *calibrationRepo) GetByID(dbc dbctx.Context, id uuid.UUID) (*domain.CalibrationProposal, error) {
	t := dbc.Tx
	if t == nil {
		t = r.db
	}
	var proposal domain.CalibrationProposal
	if err := t.WithContext(dbc.Ctx).First(&proposal, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("calibration proposal %s: %w", id, domain.ErrNotFound)
		}
		return nil, err
	}
	return &proposal, nil
}

func (r *calibrationRepo) ListPendingByItemID(dbc dbctx.Context, itemID uuid.UUID) ([]*domain.CalibrationProposal, error) {
	t := dbc.Tx
	if t == nil {
		t = r.db
	}
	out := []*domain.CalibrationProposal{}
	if err := t.WithContext(dbc.Ctx).
		Where("item_id = ? AND state = ?", itemID, domain.ProposalPending).
		Order("created_at DESC").
		Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}

func (r *calibrationRepo) MarkApplied(dbc dbctx.Context, id uuid.UUID) error {
	t := dbc.Tx
	if t == nil {
		t = r.db
	}
	now := time.Now().UTC()
	return t.WithContext(dbc.Ctx).
		Model(&domain.CalibrationProposal{}).
		Where("id = ?", id).
		Updates(map[string]interface{}{
			"state":      domain.ProposalApplied,
			"applied_at": now,
		}).Error
}
