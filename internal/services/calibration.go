package services

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"
	"gorm.io/datatypes"
	"gorm.io/gorm"

	"github.com/brightpath/assessment-engine/internal/data/repos"
	"github.com/brightpath/assessment-engine/internal/domain"
	"github.com/brightpath/assessment-engine/internal/engine/calibration"
	"github.com/brightpath/assessment-engine/internal/pkg/dbctx"
	"github.com/brightpath/assessment-engine/internal/platform/logger"
)

// calibrationWorkers bounds concurrent per-item fits during a pool sweep.
const calibrationWorkers = 4

type CalibrationService interface {
	// CalibrateItem fits fresh parameters from the item's response history and
	// records them as a pending proposal. Live parameters are untouched.
	CalibrateItem(ctx context.Context, tenantID, itemID uuid.UUID) (*domain.CalibrationProposal, error)
	// CalibratePool sweeps every selectable item in the pool.
	CalibratePool(ctx context.Context, tenantID, poolID uuid.UUID) ([]*domain.CalibrationProposal, error)
	ApproveProposal(ctx context.Context, tenantID, proposalID uuid.UUID) (*domain.CalibrationProposal, error)
	ListPending(ctx context.Context, tenantID, itemID uuid.UUID) ([]*domain.CalibrationProposal, error)
}

type calibrationService struct {
	db              *gorm.DB
	log             *logger.Logger
	poolRepo        repos.PoolRepo
	itemRepo        repos.ItemRepo
	responseRepo    repos.ResponseRepo
	calibrationRepo repos.CalibrationRepo
}

func NewCalibrationService(
	db *gorm.DB,
	baseLog *logger.Logger,
	poolRepo repos.PoolRepo,
	itemRepo repos.ItemRepo,
	responseRepo repos.ResponseRepo,
	calibrationRepo repos.CalibrationRepo,
) CalibrationService {
	return &calibrationService{
		db:              db,
		log:             baseLog.With("service", "CalibrationService"),
		poolRepo:        poolRepo,
		itemRepo:        itemRepo,
		responseRepo:    responseRepo,
		calibrationRepo: calibrationRepo,
	}
}

func (s *calibrationService) CalibrateItem(ctx context.Context, tenantID, itemID uuid.UUID) (*domain.CalibrationProposal, error) {
	dbc := dbctx.Context{Ctx: ctx}
	item, err := s.itemRepo.GetByID(dbc, itemID)
	if err != nil {
		return nil, err
	}
	if err := s.checkTenant(dbc, tenantID, item.PoolID); err != nil {
		return nil, err
	}
	return s.calibrate(dbc, item)
}

func (s *calibrationService) CalibratePool(ctx context.Context, tenantID, poolID uuid.UUID) ([]*domain.CalibrationProposal, error) {
	dbc := dbctx.Context{Ctx: ctx}
	if err := s.checkTenant(dbc, tenantID, poolID); err != nil {
		return nil, err
	}
	items, err := s.itemRepo.ListSelectableByPoolID(dbc, poolID)
	if err != nil {
		return nil, err
	}

	var (
		mu        sync.Mutex
		proposals []*domain.CalibrationProposal
	)
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(calibrationWorkers)
	for _, item := range items {
		item := item
		g.Go(func() error {
			p, err := s.calibrate(dbctx.Context{Ctx: gctx}, item)
			if err != nil {
				return err
			}
			mu.Lock()
			proposals = append(proposals, p)
			mu.Unlock()
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	s.log.Info("Pool calibration sweep finished", "pool_id", poolID, "items", len(items))
	return proposals, nil
}

func (s *calibrationService) calibrate(dbc dbctx.Context, item *domain.PoolItem) (*domain.CalibrationProposal, error) {
	responses, err := s.responseRepo.ListByItemID(dbc, item.ID)
	if err != nil {
		return nil, err
	}
	outcomes := make([]calibration.Outcome, 0, len(responses))
	for _, r := range responses {
		outcomes = append(outcomes, calibration.Outcome{Ability: r.AbilityBefore, Correct: r.IsCorrect})
	}

	res := calibration.Calibrate(outcomes)

	proposal := &domain.CalibrationProposal{
		ItemID:     item.ID,
		Status:     res.Status,
		SampleSize: res.SampleSize,
		State:      domain.ProposalPending,
	}
	if res.Status == domain.CalibrationCalibrated {
		proposal.Difficulty = res.Difficulty
		proposal.Discrimination = res.Discrimination
		proposal.Guessing = res.Guessing
		fit, err := json.Marshal(res.Fit)
		if err != nil {
			return nil, err
		}
		proposal.FitStatistics = datatypes.JSON(fit)
	} else {
		// Carry the current parameters so the row is self-describing even
		// when no fit was produced.
		proposal.Difficulty = item.Difficulty
		proposal.Discrimination = item.Discrimination
		proposal.Guessing = item.Guessing
	}

	if err := s.calibrationRepo.Create(dbc, proposal); err != nil {
		return nil, err
	}
	s.log.Info("Calibration proposal recorded",
		"item_id", item.ID,
		"status", string(res.Status),
		"sample_size", res.SampleSize)
	return proposal, nil
}

func (s *calibrationService) ApproveProposal(ctx context.Context, tenantID, proposalID uuid.UUID) (*domain.CalibrationProposal, error) {
	var proposal *domain.CalibrationProposal
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		dbc := dbctx.Context{Ctx: ctx, Tx: tx}
		var err error
		proposal, err = s.calibrationRepo.GetByID(dbc, proposalID)
		if err != nil {
			return err
		}
		if proposal.State != domain.ProposalPending {
			return fmt.Errorf("proposal %s already %s: %w", proposalID, proposal.State, domain.ErrIllegalTransition)
		}
		if proposal.Status != domain.CalibrationCalibrated {
			return fmt.Errorf("proposal %s has no fitted parameters: %w", proposalID, domain.ErrIllegalTransition)
		}
		item, err := s.itemRepo.GetByID(dbc, proposal.ItemID)
		if err != nil {
			return err
		}
		if err := s.checkTenant(dbc, tenantID, item.PoolID); err != nil {
			return err
		}
		if err := s.itemRepo.UpdateParams(dbc, item.ID, proposal.Difficulty, proposal.Discrimination, proposal.Guessing); err != nil {
			return err
		}
		if err := s.calibrationRepo.MarkApplied(dbc, proposalID); err != nil {
			return err
		}
		now := time.Now().UTC()
		proposal.State = domain.ProposalApplied
		proposal.AppliedAt = &now
		return nil
	})
	if err != nil {
		return nil, err
	}
	s.log.Info("Calibration proposal applied", "proposal_id", proposalID, "item_id", proposal.ItemID)
	return proposal, nil
}

func (s *calibrationService) ListPending(ctx context.Context, tenantID, itemID uuid.UUID) ([]*domain.CalibrationProposal, error) {
	dbc := dbctx.Context{Ctx: ctx}
	item, err := s.itemRepo.GetByID(dbc, itemID)
	if err != nil {
		return nil, err
	}
	if err := s.checkTenant(dbc, tenantID, item.PoolID); err != nil {
		return nil, err
	}
	return s.calibrationRepo.ListPendingByItemID(dbc, itemID)
}

func (s *calibrationService) checkTenant(dbc dbctx.Context, tenantID, poolID uuid.UUID) error {
	pool, err := s.poolRepo.GetByID(dbc, poolID)
	if err != nil {
		return err
	}
	if pool.TenantID != tenantID {
		return fmt.Errorf("pool %s for tenant %s: %w", poolID, tenantID, domain.ErrNotFound)
	}
	return nil
}
