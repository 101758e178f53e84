package repos

import (
	"testing"

	"github.com/brightpath/assessment-engine/internal/domain"
)

func TestCalibrationRepoPendingLifecycle(t *testing.T) {
	db := openTestDB(t)
	log := newTestLogger(t)
	dbc := testTx(t, db)

	pools := NewPoolRepo(db, log)
	items := NewItemRepo(db, log)
	calibrations := NewCalibrationRepo(db, log)

	_, seeded := seedPool(t, dbc, pools, items, 1)
	item := seeded[0]

	proposal := &domain.CalibrationProposal{
		ItemID:         item.ID,
		Difficulty:     0.8,
		Discrimination: 1.4,
		Guessing:       0.18,
		Status:         domain.CalibrationCalibrated,
		SampleSize:     64,
		State:          domain.ProposalPending,
	}
	if err := calibrations.Create(dbc, proposal); err != nil {
		t.Fatalf("create proposal: %v", err)
	}

	pending, err := calibrations.ListPendingByItemID(dbc, item.ID)
	if err != nil {
		t.Fatalf("list pending: %v", err)
	}
	if len(pending) != 1 || pending[0].ID != proposal.ID {
		t.Fatalf("unexpected pending set: %+v", pending)
	}

	if err := calibrations.MarkApplied(dbc, proposal.ID); err != nil {
		t.Fatalf("mark applied: %v", err)
	}

	applied, err := calibrations.GetByID(dbc, proposal.ID)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if applied.State != domain.ProposalApplied || applied.AppliedAt == nil {
		t.Fatalf("proposal not applied: state=%s applied_at=%v", applied.State, applied.AppliedAt)
	}

	pending, err = calibrations.ListPendingByItemID(dbc, item.ID)
	if err != nil {
		t.Fatalf("list pending after apply: %v", err)
	}
	if len(pending) != 0 {
		t.Fatalf("applied proposal still listed as pending: %+v", pending)
	}
}
