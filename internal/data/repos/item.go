package repos

import (
	"errors"
	"fmt"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/brightpath/assessment-engine/internal/domain"
	"github.com/brightpath/assessment-engine/internal/pkg/dbctx"
	"github.com/brightpath/assessment-engine/internal/platform/logger"
)

type TopicAccuracy struct {
	Topic    string  `json:"topic"`
	Accuracy float64 `json:"accuracy"`
}

type ItemRepo interface {
	CreateBatch(dbc dbctx.Context, items []*domain.PoolItem) error
	GetByID(dbc dbctx.Context, id uuid.UUID) (*domain.PoolItem, error)
	ListSelectableByPoolID(dbc dbctx.Context, poolID uuid.UUID) ([]*domain.PoolItem, error)
	// IncrementExposure is a single atomic UPDATE; concurrent sessions
	// sharing a pool never read-modify-write the counter in process.
	IncrementExposure(dbc dbctx.Context, itemID uuid.UUID) error
	RecordOutcome(dbc dbctx.Context, itemID uuid.UUID, correct bool) error
	UpdateParams(dbc dbctx.Context, itemID uuid.UUID, difficulty, discrimination, guessing float64) error
	TopicAccuracyByPoolID(dbc dbctx.Context, poolID uuid.UUID) (map[string]float64, error)
}

type itemRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewItemRepo(db *gorm.DB, baseLog *logger.Logger) ItemRepo {
	return &itemRepo{db: db, log: baseLog.With("repo", "ItemRepo")}
}

func (r *itemRepo) CreateBatch(dbc dbctx.Context, items []*domain.PoolItem) error {
	t := dbc.Tx
	if t == nil {
		t = r.db
	}
	if len(items) == 0 {
		return nil
	}
	for _, it := range items {
		if it.ID == uuid.Nil {
			it.ID = uuid.New()
		}
	}
	return t.WithContext(dbc.Ctx).Create(&items).Error
}

func (r *itemRepo) GetByID(dbc dbctx.Context, id uuid.UUID) (*domain.PoolItem, error) {
	t := dbc.Tx
	if t == nil {
		t = r.db
	}
	var item domain.PoolItem
	if err := t.WithContext(dbc.Ctx).First(&item, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("item %s: %w", id, domain.ErrNotFound)
		}
		return nil, err
	}
	return &item, nil
}

func (r *itemRepo) ListSelectableByPoolID(dbc dbctx.Context, poolID uuid.UUID) ([]*domain.PoolItem, error) {
	t := dbc.Tx
	if t == nil {
		t = r.db
	}
	out := []*domain.PoolItem{}
	if err := t.WithContext(dbc.Ctx).
		Where("pool_id = ? AND is_active = ? AND review_status = ?", poolID, true, domain.ReviewStatusApproved).
		Order("id ASC").
		Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}

func (r *itemRepo) IncrementExposure(dbc dbctx.Context, itemID uuid.UUID) error {
	t := dbc.Tx
	if t == nil {
		t = r.db
	}
	return t.WithContext(dbc.Ctx).
		Model(&domain.PoolItem{}).
		Where("id = ?", itemID).
		UpdateColumn("exposure_count", gorm.Expr("exposure_count + 1")).Error
}

func (r *itemRepo) RecordOutcome(dbc dbctx.Context, itemID uuid.UUID, correct bool) error {
	t := dbc.Tx
	if t == nil {
		t = r.db
	}
	updates := map[string]interface{}{
		"usage_count": gorm.Expr("usage_count + 1"),
	}
	if correct {
		updates["correct_count"] = gorm.Expr("correct_count + 1")
	}
	return t.WithContext(dbc.Ctx).
		Model(&domain.PoolItem{}).
		Where("id = ?", itemID).
		UpdateColumns(updates).Error
}

func (r *itemRepo) UpdateParams(dbc dbctx.Context, itemID uuid.UUID, difficulty, discrimination, guessing float64) error {
	t := dbc.Tx
	if t == nil {
		t = r.db
	}
	return t.WithContext(dbc.Ctx).
		Model(&domain.PoolItem{}).
		Where("id = ?", itemID).
		Updates(map[string]interface{}{
			"difficulty":     difficulty,
			"discrimination": discrimination,
			"guessing":       guessing,
			"review_status":  domain.ReviewStatusApproved,
		}).Error
}

func (r *itemRepo) TopicAccuracyByPoolID(dbc dbctx.Context, poolID uuid.UUID) (map[string]float64, error) {
	t := dbc.Tx
	if t == nil {
		t = r.db
	}
	rows := []TopicAccuracy{}
	if err := t.WithContext(dbc.Ctx).
		Model(&domain.PoolItem{}).
		Select("topic, COALESCE(SUM(correct_count)::float / NULLIF(SUM(usage_count), 0), 0) AS accuracy").
		Where("pool_id = ?", poolID).
		Group("topic").
		Scan(&rows).Error; err != nil {
		return nil, err
	}
	out := make(map[string]float64, len(rows))
	for _, row := range rows {
		out[row.Topic] = row.Accuracy
	}
	return out, nil
}
