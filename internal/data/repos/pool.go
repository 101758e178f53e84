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

type PoolRepo interface {
	Create(dbc dbctx.Context, pool *domain.ItemPool) error
	GetByID(dbc dbctx.Context, id uuid.UUID) (*domain.ItemPool, error)
	ListByTenantID(dbc dbctx.Context, tenantID uuid.UUID) ([]*domain.ItemPool, error)
}

type poolRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewPoolRepo(db *gorm.DB, baseLog *logger.Logger) PoolRepo {
	return &poolRepo{db: db, log: baseLog.With("repo", "PoolRepo")}
}

func (r *poolRepo) Create(dbc dbctx.Context, pool *domain.ItemPool) error {
	t := dbc.Tx
	if t == nil {
		t = r.db
	}
	if pool == nil {
		return nil
	}
	if pool.ID == uuid.Nil {
		pool.ID = uuid.New()
	}
	return t.WithContext(dbc.Ctx).Omit("Items").Create(pool).Error
}

func (r *poolRepo) GetByID(dbc dbctx.Context, id uuid.UUID) (*domain.ItemPool, error) {
	t := dbc.Tx
	if t == nil {
		t = r.db
	}
	var pool domain.ItemPool
	if err := t.WithContext(dbc.Ctx).First(&pool, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("pool %s: %w", id, domain.ErrNotFound)
		}
		return nil, err
	}
	return &pool, nil
}

func (r *poolRepo) ListByTenantID(dbc dbctx.Context, tenantID uuid.UUID) ([]*domain.ItemPool, error) {
	t := dbc.Tx
	if t == nil {
		t = r.db
	}
	out := []*domain.ItemPool{}
	if err := t.WithContext(dbc.Ctx).
		Where("tenant_id = ?", tenantID).
		Order("created_at ASC").
		Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}
