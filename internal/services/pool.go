package services

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/brightpath/assessment-engine/internal/data/repos"
	"github.com/brightpath/assessment-engine/internal/domain"
	"github.com/brightpath/assessment-engine/internal/pkg/dbctx"
	"github.com/brightpath/assessment-engine/internal/platform/logger"
)

type PoolService interface {
	CreatePool(ctx context.Context, tenantID uuid.UUID, pool *domain.ItemPool, items []*domain.PoolItem) (*domain.ItemPool, error)
	GetPool(ctx context.Context, tenantID, poolID uuid.UUID) (*domain.ItemPool, []*domain.PoolItem, error)
	ListPools(ctx context.Context, tenantID uuid.UUID) ([]*domain.ItemPool, error)
}

type poolService struct {
	db       *gorm.DB
	log      *logger.Logger
	poolRepo repos.PoolRepo
	itemRepo repos.ItemRepo
}

func NewPoolService(db *gorm.DB, baseLog *logger.Logger, poolRepo repos.PoolRepo, itemRepo repos.ItemRepo) PoolService {
	return &poolService{
		db:       db,
		log:      baseLog.With("service", "PoolService"),
		poolRepo: poolRepo,
		itemRepo: itemRepo,
	}
}

// CreatePool ingests a pool and its items. Items with out-of-range IRT
// parameters fail the whole ingestion; nothing is persisted.
func (s *poolService) CreatePool(ctx context.Context, tenantID uuid.UUID, pool *domain.ItemPool, items []*domain.PoolItem) (*domain.ItemPool, error) {
	if pool == nil {
		return nil, domain.NewValidationError("pool", "missing pool")
	}
	if pool.Name == "" {
		return nil, domain.NewValidationError("name", "must not be empty")
	}
	pool.TenantID = tenantID
	if pool.ID == uuid.Nil {
		pool.ID = uuid.New()
	}
	for i, it := range items {
		if err := it.ValidateParams(); err != nil {
			return nil, fmt.Errorf("item %d: %w", i, err)
		}
		it.PoolID = pool.ID
	}

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		dbc := dbctx.Context{Ctx: ctx, Tx: tx}
		if err := s.poolRepo.Create(dbc, pool); err != nil {
			return err
		}
		return s.itemRepo.CreateBatch(dbc, items)
	})
	if err != nil {
		return nil, err
	}
	s.log.Info("Pool created", "pool_id", pool.ID, "items", len(items))
	return pool, nil
}

func (s *poolService) GetPool(ctx context.Context, tenantID, poolID uuid.UUID) (*domain.ItemPool, []*domain.PoolItem, error) {
	dbc := dbctx.Context{Ctx: ctx}
	pool, err := s.poolRepo.GetByID(dbc, poolID)
	if err != nil {
		return nil, nil, err
	}
	if pool.TenantID != tenantID {
		return nil, nil, fmt.Errorf("pool %s for tenant %s: %w", poolID, tenantID, domain.ErrNotFound)
	}
	items, err := s.itemRepo.ListSelectableByPoolID(dbc, poolID)
	if err != nil {
		return nil, nil, err
	}
	return pool, items, nil
}

func (s *poolService) ListPools(ctx context.Context, tenantID uuid.UUID) ([]*domain.ItemPool, error) {
	return s.poolRepo.ListByTenantID(dbctx.Context{Ctx: ctx}, tenantID)
}
