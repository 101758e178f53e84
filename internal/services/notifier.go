package services

import (
	"context"

	"github.com/google/uuid"

	"github.com/brightpath/assessment-engine/internal/domain"
	"github.com/brightpath/assessment-engine/internal/engine/report"
	"github.com/brightpath/assessment-engine/internal/realtime"
)

// SessionNotifier emits session lifecycle event payloads for the delivery
// collaborator. The engine never delivers notifications itself.
type SessionNotifier interface {
	SessionStarted(beneficiaryID uuid.UUID, session *domain.TestSession)
	SessionCompleted(beneficiaryID uuid.UUID, session *domain.TestSession, rep *report.Report)
	SessionAbandoned(beneficiaryID uuid.UUID, session *domain.TestSession)
}

type sessionNotifier struct {
	emit SSEEmitter
}

func NewSessionNotifier(emit SSEEmitter) SessionNotifier {
	return &sessionNotifier{emit: emit}
}

func (n *sessionNotifier) SessionStarted(beneficiaryID uuid.UUID, session *domain.TestSession) {
	if n == nil || n.emit == nil || beneficiaryID == uuid.Nil {
		return
	}
	n.emit.Emit(context.Background(), realtime.SSEMessage{
		Channel: beneficiaryID.String(),
		Event:   realtime.SSEEventSessionStarted,
		Data:    map[string]any{"session_id": safeSessionID(session)},
	})
}

func (n *sessionNotifier) SessionCompleted(beneficiaryID uuid.UUID, session *domain.TestSession, rep *report.Report) {
	if n == nil || n.emit == nil || beneficiaryID == uuid.Nil {
		return
	}
	n.emit.Emit(context.Background(), realtime.SSEMessage{
		Channel: beneficiaryID.String(),
		Event:   realtime.SSEEventSessionCompleted,
		Data: map[string]any{
			"session_id": safeSessionID(session),
			"report":     rep,
		},
	})
}

func (n *sessionNotifier) SessionAbandoned(beneficiaryID uuid.UUID, session *domain.TestSession) {
	if n == nil || n.emit == nil || beneficiaryID == uuid.Nil {
		return
	}
	n.emit.Emit(context.Background(), realtime.SSEMessage{
		Channel: beneficiaryID.String(),
		Event:   realtime.SSEEventSessionAbandoned,
		Data:    map[string]any{"session_id": safeSessionID(session)},
	})
}

func safeSessionID(session *domain.TestSession) uuid.UUID {
	if session == nil {
		return uuid.Nil
	}
	return session.ID
}
