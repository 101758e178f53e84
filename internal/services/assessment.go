package services

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"

	"github.com/brightpath/assessment-engine/internal/data/repos"
	"github.com/brightpath/assessment-engine/internal/domain"
	"github.com/brightpath/assessment-engine/internal/engine/irt"
	"github.com/brightpath/assessment-engine/internal/engine/report"
	"github.com/brightpath/assessment-engine/internal/engine/selection"
	"github.com/brightpath/assessment-engine/internal/engine/sessionstate"
	"github.com/brightpath/assessment-engine/internal/pkg/dbctx"
	"github.com/brightpath/assessment-engine/internal/platform/logger"
)

// SubmitRequest is the answer payload for the session's current item.
type SubmitRequest struct {
	Answer         json.RawMessage `json:"answer"`
	ResponseTimeMS int             `json:"response_time_ms"`
}

// SubmitResult reports the outcome of one scored response. NextItem is nil
// when the session reached a stopping condition.
type SubmitResult struct {
	Correct         bool                    `json:"correct"`
	Ability         float64                 `json:"ability"`
	StandardError   float64                 `json:"standard_error"`
	QuestionsAsked  int                     `json:"questions_asked"`
	Status          domain.SessionStatus    `json:"status"`
	StopReason      sessionstate.StopReason `json:"stop_reason,omitempty"`
	NextItem        *domain.PoolItem        `json:"next_item,omitempty"`
	NextQuestionNum int                     `json:"next_question_number,omitempty"`
}

type AssessmentService interface {
	CreateSession(ctx context.Context, tenantID, beneficiaryID, poolID uuid.UUID, cfg domain.SessionConfig) (*domain.TestSession, error)
	// Start moves the session into in_progress and returns it together with
	// the first item to administer.
	Start(ctx context.Context, tenantID, sessionID uuid.UUID) (*domain.TestSession, *domain.PoolItem, error)
	SubmitResponse(ctx context.Context, tenantID, sessionID uuid.UUID, req SubmitRequest) (*SubmitResult, error)
	Abandon(ctx context.Context, tenantID, sessionID uuid.UUID) (*domain.TestSession, error)
	GetSession(ctx context.Context, tenantID, sessionID uuid.UUID) (*domain.TestSession, error)
	ListSessions(ctx context.Context, tenantID, beneficiaryID uuid.UUID) ([]*domain.TestSession, error)
	GetReport(ctx context.Context, tenantID, sessionID uuid.UUID) (*report.Report, error)
}

type assessmentService struct {
	db           *gorm.DB
	log          *logger.Logger
	policy       EnginePolicy
	poolRepo     repos.PoolRepo
	itemRepo     repos.ItemRepo
	sessionRepo  repos.SessionRepo
	responseRepo repos.ResponseRepo
	notifier     SessionNotifier
}

func NewAssessmentService(
	db *gorm.DB,
	baseLog *logger.Logger,
	policy EnginePolicy,
	poolRepo repos.PoolRepo,
	itemRepo repos.ItemRepo,
	sessionRepo repos.SessionRepo,
	responseRepo repos.ResponseRepo,
	notifier SessionNotifier,
) AssessmentService {
	return &assessmentService{
		db:           db,
		log:          baseLog.With("service", "AssessmentService"),
		policy:       policy,
		poolRepo:     poolRepo,
		itemRepo:     itemRepo,
		sessionRepo:  sessionRepo,
		responseRepo: responseRepo,
		notifier:     notifier,
	}
}

func (s *assessmentService) CreateSession(ctx context.Context, tenantID, beneficiaryID, poolID uuid.UUID, cfg domain.SessionConfig) (*domain.TestSession, error) {
	cfg.ApplyDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	dbc := dbctx.Context{Ctx: ctx}
	pool, err := s.poolRepo.GetByID(dbc, poolID)
	if err != nil {
		return nil, err
	}
	if pool.TenantID != tenantID {
		return nil, fmt.Errorf("pool %s for tenant %s: %w", poolID, tenantID, domain.ErrNotFound)
	}

	session := &domain.TestSession{
		ID:             uuid.New(),
		TenantID:       tenantID,
		PoolID:         poolID,
		BeneficiaryID:  beneficiaryID,
		Config:         datatypes.NewJSONType(cfg),
		Status:         domain.SessionNotStarted,
		CurrentAbility: cfg.InitialAbility,
		AbilitySE:      priorSE,
		AbilityHistory: []float64{},
		TopicCoverage:  datatypes.NewJSONType(map[string]int{}),
	}
	if err := s.sessionRepo.Create(dbc, session); err != nil {
		return nil, err
	}
	s.log.Info("Session created", "session_id", session.ID, "beneficiary_id", beneficiaryID, "pool_id", poolID)
	return session, nil
}

func (s *assessmentService) Start(ctx context.Context, tenantID, sessionID uuid.UUID) (*domain.TestSession, *domain.PoolItem, error) {
	var (
		session *domain.TestSession
		item    *domain.PoolItem
	)
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		dbc := dbctx.Context{Ctx: ctx, Tx: tx}
		var err error
		session, err = s.loadSession(dbc, tenantID, sessionID)
		if err != nil {
			return err
		}

		st, err := stateOf(session).Start(time.Now())
		if err != nil {
			return err
		}

		item, err = s.pickNext(dbc, session, st, nil)
		if err != nil {
			return err
		}
		if err := s.itemRepo.IncrementExposure(dbc, item.ID); err != nil {
			return err
		}

		applyState(session, st)
		session.CurrentItemID = &item.ID
		return s.sessionRepo.Save(dbc, session)
	})
	if err != nil {
		return nil, nil, err
	}

	s.notifier.SessionStarted(session.BeneficiaryID, session)
	s.log.Info("Session started", "session_id", session.ID)
	return session, item, nil
}

func (s *assessmentService) SubmitResponse(ctx context.Context, tenantID, sessionID uuid.UUID, req SubmitRequest) (*SubmitResult, error) {
	var (
		result  *SubmitResult
		session *domain.TestSession
		rep     *report.Report
	)
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		dbc := dbctx.Context{Ctx: ctx, Tx: tx}
		var err error
		session, err = s.loadSession(dbc, tenantID, sessionID)
		if err != nil {
			return err
		}
		st := stateOf(session)
		if st.Status != domain.SessionInProgress {
			return fmt.Errorf("%w: submit_response in %s", domain.ErrIllegalTransition, st.Status)
		}
		if session.CurrentItemID == nil {
			return fmt.Errorf("session %s has no pending item: %w", sessionID, domain.ErrIllegalTransition)
		}

		item, err := s.itemRepo.GetByID(dbc, *session.CurrentItemID)
		if err != nil {
			return err
		}
		correct, err := domain.ScoreAnswer(item, req.Answer)
		if err != nil {
			return err
		}

		prior, err := s.responseRepo.ListBySessionID(dbc, sessionID)
		if err != nil {
			return err
		}
		history := make([]irt.Response, 0, len(prior)+1)
		for _, r := range prior {
			if r.Item == nil {
				continue
			}
			history = append(history, irt.Response{
				Params:  irt.Params{A: r.Item.Discrimination, B: r.Item.Difficulty, C: r.Item.Guessing},
				Correct: r.IsCorrect,
			})
		}
		history = append(history, irt.Response{
			Params:  irt.Params{A: item.Discrimination, B: item.Difficulty, C: item.Guessing},
			Correct: correct,
		})

		theta, se := irt.Estimate(history)
		abilityBefore := st.Theta

		st, err = st.Record(item.Topic, theta, se)
		if err != nil {
			return err
		}

		now := time.Now().UTC()
		resp := &domain.SessionResponse{
			SessionID:      sessionID,
			ItemID:         item.ID,
			QuestionNumber: st.QuestionsAnswered,
			Answer:         datatypes.JSON(append([]byte(nil), req.Answer...)),
			IsCorrect:      correct,
			ResponseTimeMS: req.ResponseTimeMS,
			AbilityBefore:  abilityBefore,
			AbilityAfter:   theta,
			SEAfter:        clampSE(se),
			ItemDifficulty: item.Difficulty,
		}
		if err := s.responseRepo.Append(dbc, resp); err != nil {
			return err
		}
		if err := s.itemRepo.RecordOutcome(dbc, item.ID, correct); err != nil {
			return err
		}

		cfg := session.Config.Data()
		var elapsed time.Duration
		if st.StartedAt != nil {
			elapsed = now.Sub(*st.StartedAt)
		}

		administered := administeredSet(prior)
		administered[item.ID] = true
		next, selErr := s.pickNext(dbc, session, st, administered)
		eligibleRemaining := selErr == nil

		result = &SubmitResult{
			Correct:        correct,
			Ability:        theta,
			StandardError:  clampSE(se),
			QuestionsAsked: st.QuestionsAnswered,
		}

		if reason := sessionstate.EvaluateStop(st, cfg, elapsed, eligibleRemaining); reason != sessionstate.StopNone {
			st, err = st.Complete(now)
			if err != nil {
				return err
			}
			applyState(session, st)
			session.CurrentItemID = nil
			finalize(session, theta, se)
			result.Status = domain.SessionCompleted
			result.StopReason = reason
			rep, err = s.buildReport(dbc, session)
			if err != nil {
				return err
			}
		} else {
			if selErr != nil {
				return selErr
			}
			if err := s.itemRepo.IncrementExposure(dbc, next.ID); err != nil {
				return err
			}
			applyState(session, st)
			session.CurrentItemID = &next.ID
			result.Status = domain.SessionInProgress
			result.NextItem = next
			result.NextQuestionNum = st.QuestionsAnswered + 1
		}

		return s.sessionRepo.Save(dbc, session)
	})
	if err != nil {
		return nil, err
	}

	if result.Status == domain.SessionCompleted {
		s.notifier.SessionCompleted(session.BeneficiaryID, session, rep)
		s.log.Info("Session completed",
			"session_id", session.ID,
			"stop_reason", string(result.StopReason),
			"questions", result.QuestionsAsked)
	}
	return result, nil
}

func (s *assessmentService) Abandon(ctx context.Context, tenantID, sessionID uuid.UUID) (*domain.TestSession, error) {
	var (
		session *domain.TestSession
		changed bool
	)
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		dbc := dbctx.Context{Ctx: ctx, Tx: tx}
		var err error
		session, err = s.loadSession(dbc, tenantID, sessionID)
		if err != nil {
			return err
		}
		if session.Status.Terminal() {
			return nil
		}
		st, err := stateOf(session).Abandon(time.Now())
		if err != nil {
			return err
		}
		applyState(session, st)
		session.CurrentItemID = nil
		changed = true
		return s.sessionRepo.Save(dbc, session)
	})
	if err != nil {
		return nil, err
	}
	if changed {
		s.notifier.SessionAbandoned(session.BeneficiaryID, session)
		s.log.Info("Session abandoned", "session_id", session.ID)
	}
	return session, nil
}

func (s *assessmentService) GetSession(ctx context.Context, tenantID, sessionID uuid.UUID) (*domain.TestSession, error) {
	return s.loadSession(dbctx.Context{Ctx: ctx}, tenantID, sessionID)
}

func (s *assessmentService) ListSessions(ctx context.Context, tenantID, beneficiaryID uuid.UUID) ([]*domain.TestSession, error) {
	sessions, err := s.sessionRepo.ListByBeneficiaryID(dbctx.Context{Ctx: ctx}, beneficiaryID)
	if err != nil {
		return nil, err
	}
	out := sessions[:0]
	for _, sess := range sessions {
		if sess.TenantID == tenantID {
			out = append(out, sess)
		}
	}
	return out, nil
}

func (s *assessmentService) GetReport(ctx context.Context, tenantID, sessionID uuid.UUID) (*report.Report, error) {
	dbc := dbctx.Context{Ctx: ctx}
	session, err := s.loadSession(dbc, tenantID, sessionID)
	if err != nil {
		return nil, err
	}
	if session.Status != domain.SessionCompleted {
		return nil, fmt.Errorf("%w: report for %s session", domain.ErrIllegalTransition, session.Status)
	}
	return s.buildReport(dbc, session)
}

func (s *assessmentService) buildReport(dbc dbctx.Context, session *domain.TestSession) (*report.Report, error) {
	responses, err := s.responseRepo.ListBySessionID(dbc, session.ID)
	if err != nil {
		return nil, err
	}
	summaries := make([]report.ResponseSummary, 0, len(responses))
	for _, r := range responses {
		var topic string
		if r.Item != nil {
			topic = r.Item.Topic
		}
		summaries = append(summaries, report.ResponseSummary{Topic: topic, Correct: r.IsCorrect})
	}

	poolAccuracy, err := s.itemRepo.TopicAccuracyByPoolID(dbc, session.PoolID)
	if err != nil {
		return nil, err
	}

	var total time.Duration
	if session.StartedAt != nil && session.EndedAt != nil {
		total = session.EndedAt.Sub(*session.StartedAt)
	}

	theta := session.CurrentAbility
	se := session.AbilitySE
	if session.FinalAbility != nil {
		theta = *session.FinalAbility
	}
	if session.FinalSE != nil {
		se = *session.FinalSE
	}

	rep := report.Synthesize(report.Input{
		FinalAbility:      theta,
		FinalSE:           se,
		Responses:         summaries,
		PoolTopicAccuracy: poolAccuracy,
		TotalTime:         total,
	})
	return &rep, nil
}

// pickNext runs one selection decision against the current pool snapshot.
func (s *assessmentService) pickNext(dbc dbctx.Context, session *domain.TestSession, st sessionstate.State, administered map[uuid.UUID]bool) (*domain.PoolItem, error) {
	items, err := s.itemRepo.ListSelectableByPoolID(dbc, session.PoolID)
	if err != nil {
		return nil, err
	}
	poolSessions, err := s.sessionRepo.CountStartedByPoolID(dbc, session.PoolID)
	if err != nil {
		return nil, err
	}

	cfg := session.Config.Data()
	cands := selection.Eligible(items, administered)
	id, err := selection.SelectNext(cands, selection.SessionView{
		SessionID:         session.ID,
		QuestionsAnswered: st.QuestionsAnswered,
		Theta:             st.Theta,
		TopicCoverage:     st.TopicCoverage,
		PoolSessionCount:  poolSessions,
	}, selection.Policy{
		Method:          cfg.SelectionMethod,
		InitialAbility:  cfg.InitialAbility,
		TopicBalancing:  cfg.TopicBalancing,
		TopicTargets:    s.policy.TopicTargets,
		ExposureControl: cfg.ExposureControl,
		MaxExposureRate: s.policy.MaxExposureRate,
	})
	if err != nil {
		return nil, err
	}
	for _, it := range items {
		if it.ID == id {
			return it, nil
		}
	}
	return nil, fmt.Errorf("selected item %s: %w", id, domain.ErrNotFound)
}

func (s *assessmentService) loadSession(dbc dbctx.Context, tenantID, sessionID uuid.UUID) (*domain.TestSession, error) {
	session, err := s.sessionRepo.GetByID(dbc, sessionID)
	if err != nil {
		return nil, err
	}
	if session.TenantID != tenantID {
		return nil, fmt.Errorf("session %s for tenant %s: %w", sessionID, tenantID, domain.ErrNotFound)
	}
	return session, nil
}

// priorSE is the standard-error column value before any response is scored,
// matching the N(0, 1) prior the estimator starts from.
const priorSE = 1.0

func stateOf(session *domain.TestSession) sessionstate.State {
	coverage := session.TopicCoverage.Data()
	if coverage == nil {
		coverage = map[string]int{}
	}
	return sessionstate.State{
		Status:            session.Status,
		Theta:             session.CurrentAbility,
		SE:                session.AbilitySE,
		QuestionsAnswered: session.QuestionsAnswered,
		AbilityHistory:    append([]float64(nil), session.AbilityHistory...),
		TopicCoverage:     coverage,
		StartedAt:         session.StartedAt,
		EndedAt:           session.EndedAt,
	}
}

func applyState(session *domain.TestSession, st sessionstate.State) {
	session.Status = st.Status
	session.CurrentAbility = st.Theta
	session.AbilitySE = clampSE(st.SE)
	session.QuestionsAnswered = st.QuestionsAnswered
	session.AbilityHistory = st.AbilityHistory
	session.TopicCoverage = datatypes.NewJSONType(st.TopicCoverage)
	session.StartedAt = st.StartedAt
	session.EndedAt = st.EndedAt
}

func finalize(session *domain.TestSession, theta, se float64) {
	se = clampSE(se)
	low := theta - 1.96*se
	high := theta + 1.96*se
	session.FinalAbility = &theta
	session.FinalSE = &se
	session.ConfidenceLow = &low
	session.ConfidenceHigh = &high
}

// clampSE keeps the jsonb-backed columns finite when no information has been
// accumulated yet.
func clampSE(se float64) float64 {
	if se != se || se > maxStoredSE {
		return maxStoredSE
	}
	return se
}

const maxStoredSE = 99.0

func administeredSet(responses []*domain.SessionResponse) map[uuid.UUID]bool {
	out := make(map[uuid.UUID]bool, len(responses)+1)
	for _, r := range responses {
		out[r.ItemID] = true
	}
	return out
}
