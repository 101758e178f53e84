// Package sessionstate models the session lifecycle as a tagged value with
// transitions that return a new state instead of mutating in place. The
// source-of-truth status column is a string; every legal move goes through
// this package so an illegal one is an error, never a silent overwrite.
package sessionstate

import (
	"fmt"
	"time"

	"github.com/brightpath/assessment-engine/internal/domain"
)

type State struct {
	Status            domain.SessionStatus
	Theta             float64
	SE                float64
	QuestionsAnswered int
	AbilityHistory    []float64
	TopicCoverage     map[string]int
	StartedAt         *time.Time
	EndedAt           *time.Time
}

func New() State {
	return State{Status: domain.SessionNotStarted, TopicCoverage: map[string]int{}}
}

// Start moves NotStarted -> InProgress.
func (s State) Start(now time.Time) (State, error) {
	if s.Status != domain.SessionNotStarted {
		return s, fmt.Errorf("%w: start from %s", domain.ErrIllegalTransition, s.Status)
	}
	next := s.clone()
	next.Status = domain.SessionInProgress
	t := now.UTC()
	next.StartedAt = &t
	return next, nil
}

// Record appends one scored response to an InProgress session.
func (s State) Record(topic string, theta, se float64) (State, error) {
	if s.Status != domain.SessionInProgress {
		return s, fmt.Errorf("%w: submit_response in %s", domain.ErrIllegalTransition, s.Status)
	}
	next := s.clone()
	next.Theta = theta
	next.SE = se
	next.QuestionsAnswered++
	next.AbilityHistory = append(next.AbilityHistory, theta)
	if topic != "" {
		next.TopicCoverage[topic]++
	}
	return next, nil
}

// Complete moves InProgress -> Completed.
func (s State) Complete(now time.Time) (State, error) {
	if s.Status != domain.SessionInProgress {
		return s, fmt.Errorf("%w: complete from %s", domain.ErrIllegalTransition, s.Status)
	}
	next := s.clone()
	next.Status = domain.SessionCompleted
	t := now.UTC()
	next.EndedAt = &t
	return next, nil
}

// Abandon is idempotent: abandoning an already-terminal session is a no-op.
func (s State) Abandon(now time.Time) (State, error) {
	if s.Status.Terminal() {
		return s, nil
	}
	next := s.clone()
	next.Status = domain.SessionAbandoned
	t := now.UTC()
	next.EndedAt = &t
	return next, nil
}

func (s State) clone() State {
	next := s
	next.AbilityHistory = append([]float64(nil), s.AbilityHistory...)
	next.TopicCoverage = make(map[string]int, len(s.TopicCoverage))
	for k, v := range s.TopicCoverage {
		next.TopicCoverage[k] = v
	}
	return next
}

type StopReason string

const (
	StopNone          StopReason = ""
	StopMaxQuestions  StopReason = "max_questions"
	StopMaxTime       StopReason = "max_time"
	StopStandardError StopReason = "standard_error"
	StopPoolExhausted StopReason = "pool_exhausted"
)

// EvaluateStop checks the stopping rules after a response. Elapsed time is
// supplied by the caller; the engine keeps no timers of its own.
func EvaluateStop(s State, cfg domain.SessionConfig, elapsed time.Duration, eligibleRemaining bool) StopReason {
	if s.QuestionsAnswered >= cfg.MaxQuestions {
		return StopMaxQuestions
	}
	if cfg.MaxTimeMinutes != nil && elapsed >= time.Duration(*cfg.MaxTimeMinutes)*time.Minute {
		return StopMaxTime
	}
	if s.QuestionsAnswered >= cfg.MinQuestions && s.SE <= cfg.StandardErrorThreshold {
		return StopStandardError
	}
	if !eligibleRemaining {
		return StopPoolExhausted
	}
	return StopNone
}
