package repos

import (
	"testing"

	"github.com/google/uuid"
	"gorm.io/datatypes"

	"github.com/brightpath/assessment-engine/internal/domain"
)

func TestResponseRepoAppendAndListOrdered(t *testing.T) {
	db := openTestDB(t)
	log := newTestLogger(t)
	dbc := testTx(t, db)

	pools := NewPoolRepo(db, log)
	items := NewItemRepo(db, log)
	sessions := NewSessionRepo(db, log)
	responses := NewResponseRepo(db, log)

	pool, seeded := seedPool(t, dbc, pools, items, 3)
	session := &domain.TestSession{
		ID:            uuid.New(),
		TenantID:      pool.TenantID,
		PoolID:        pool.ID,
		BeneficiaryID: uuid.New(),
		Config:        datatypes.NewJSONType(domain.SessionConfig{MaxQuestions: 20}),
		Status:        domain.SessionInProgress,
	}
	if err := sessions.Create(dbc, session); err != nil {
		t.Fatalf("create session: %v", err)
	}

	// Append out of order; reads must come back by question number.
	for _, q := range []int{2, 1, 3} {
		resp := &domain.SessionResponse{
			SessionID:      session.ID,
			ItemID:         seeded[q-1].ID,
			QuestionNumber: q,
			Answer:         datatypes.JSON(`{"choice_id":"a"}`),
			IsCorrect:      q%2 == 1,
			AbilityBefore:  0,
			AbilityAfter:   0.1 * float64(q),
			SEAfter:        1,
			ItemDifficulty: seeded[q-1].Difficulty,
		}
		if err := responses.Append(dbc, resp); err != nil {
			t.Fatalf("append q=%d: %v", q, err)
		}
	}

	got, err := responses.ListBySessionID(dbc, session.ID)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(got) != 3 {
		t.Fatalf("response count: got=%d want=3", len(got))
	}
	for i, r := range got {
		if r.QuestionNumber != i+1 {
			t.Fatalf("order broken at %d: question_number=%d", i, r.QuestionNumber)
		}
		if r.Item == nil || r.Item.ID != r.ItemID {
			t.Fatalf("item not preloaded for question %d", r.QuestionNumber)
		}
	}
}

func TestResponseRepoDuplicateQuestionNumberRejected(t *testing.T) {
	db := openTestDB(t)
	log := newTestLogger(t)
	dbc := testTx(t, db)

	pools := NewPoolRepo(db, log)
	items := NewItemRepo(db, log)
	sessions := NewSessionRepo(db, log)
	responses := NewResponseRepo(db, log)

	pool, seeded := seedPool(t, dbc, pools, items, 2)
	session := &domain.TestSession{
		ID:            uuid.New(),
		TenantID:      pool.TenantID,
		PoolID:        pool.ID,
		BeneficiaryID: uuid.New(),
		Config:        datatypes.NewJSONType(domain.SessionConfig{MaxQuestions: 20}),
		Status:        domain.SessionInProgress,
	}
	if err := sessions.Create(dbc, session); err != nil {
		t.Fatalf("create session: %v", err)
	}

	first := &domain.SessionResponse{
		SessionID:      session.ID,
		ItemID:         seeded[0].ID,
		QuestionNumber: 1,
		Answer:         datatypes.JSON(`{"choice_id":"a"}`),
		SEAfter:        1,
	}
	if err := responses.Append(dbc, first); err != nil {
		t.Fatalf("append: %v", err)
	}

	dup := &domain.SessionResponse{
		SessionID:      session.ID,
		ItemID:         seeded[1].ID,
		QuestionNumber: 1,
		Answer:         datatypes.JSON(`{"choice_id":"b"}`),
		SEAfter:        1,
	}
	if err := responses.Append(dbc, dup); err == nil {
		t.Fatal("duplicate question number must violate the unique index")
	}
}
