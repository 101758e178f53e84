package repos

import (
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"

	"github.com/brightpath/assessment-engine/internal/domain"
)

func TestSessionRepoSaveOptimisticLock(t *testing.T) {
	db := openTestDB(t)
	log := newTestLogger(t)
	dbc := testTx(t, db)

	pools := NewPoolRepo(db, log)
	items := NewItemRepo(db, log)
	sessions := NewSessionRepo(db, log)

	pool, _ := seedPool(t, dbc, pools, items, 3)
	session := &domain.TestSession{
		ID:            uuid.New(),
		TenantID:      pool.TenantID,
		PoolID:        pool.ID,
		BeneficiaryID: uuid.New(),
		Config:        datatypes.NewJSONType(domain.SessionConfig{MaxQuestions: 20}),
		Status:        domain.SessionNotStarted,
	}
	if err := sessions.Create(dbc, session); err != nil {
		t.Fatalf("create session: %v", err)
	}

	loaded, err := sessions.GetByID(dbc, session.ID)
	if err != nil {
		t.Fatalf("get session: %v", err)
	}

	// First writer wins.
	loaded.Status = domain.SessionInProgress
	now := time.Now().UTC()
	loaded.StartedAt = &now
	if err := sessions.Save(dbc, loaded); err != nil {
		t.Fatalf("save: %v", err)
	}
	if loaded.Version != 1 {
		t.Fatalf("version after save: got=%d want=1", loaded.Version)
	}

	// A second writer holding the stale version must be rejected.
	stale := *session
	stale.Status = domain.SessionAbandoned
	err = sessions.Save(dbc, &stale)
	if !errors.Is(err, domain.ErrStaleSession) {
		t.Fatalf("stale save: got=%v want=ErrStaleSession", err)
	}
	if stale.Version != 0 {
		t.Fatalf("failed save must not advance held version: got=%d", stale.Version)
	}

	reread, err := sessions.GetByID(dbc, session.ID)
	if err != nil {
		t.Fatalf("reread: %v", err)
	}
	if reread.Status != domain.SessionInProgress {
		t.Fatalf("stale writer leaked: status=%s", reread.Status)
	}
}

func TestSessionRepoCountStartedByPoolID(t *testing.T) {
	db := openTestDB(t)
	log := newTestLogger(t)
	dbc := testTx(t, db)

	pools := NewPoolRepo(db, log)
	items := NewItemRepo(db, log)
	sessions := NewSessionRepo(db, log)

	pool, _ := seedPool(t, dbc, pools, items, 1)
	statuses := []domain.SessionStatus{
		domain.SessionNotStarted,
		domain.SessionInProgress,
		domain.SessionCompleted,
		domain.SessionAbandoned,
	}
	for _, st := range statuses {
		s := &domain.TestSession{
			ID:            uuid.New(),
			TenantID:      pool.TenantID,
			PoolID:        pool.ID,
			BeneficiaryID: uuid.New(),
			Config:        datatypes.NewJSONType(domain.SessionConfig{MaxQuestions: 20}),
			Status:        st,
		}
		if err := sessions.Create(dbc, s); err != nil {
			t.Fatalf("create session (%s): %v", st, err)
		}
	}

	count, err := sessions.CountStartedByPoolID(dbc, pool.ID)
	if err != nil {
		t.Fatalf("count: %v", err)
	}
	if count != 3 {
		t.Fatalf("started count must exclude not_started: got=%d want=3", count)
	}
}

func TestSessionRepoGetByIDNotFound(t *testing.T) {
	db := openTestDB(t)
	log := newTestLogger(t)
	dbc := testTx(t, db)

	sessions := NewSessionRepo(db, log)
	_, err := sessions.GetByID(dbc, uuid.New())
	if !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("missing session: got=%v want=ErrNotFound", err)
	}
}
