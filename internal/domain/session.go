package domain

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

type SessionStatus string

const (
	SessionNotStarted SessionStatus = "not_started"
	SessionInProgress SessionStatus = "in_progress"
	SessionCompleted  SessionStatus = "completed"
	SessionAbandoned  SessionStatus = "abandoned"
)

func (s SessionStatus) Terminal() bool {
	return s == SessionCompleted || s == SessionAbandoned
}

type SelectionMethod string

const (
	SelectMaximumInformation SelectionMethod = "maximum_information"
	SelectClosestDifficulty  SelectionMethod = "closest_difficulty"
	SelectRandom             SelectionMethod = "random"
)

// SessionConfig is supplied at session creation and immutable afterwards.
type SessionConfig struct {
	MaxQuestions           int             `json:"max_questions"`
	MaxTimeMinutes         *int            `json:"max_time_minutes,omitempty"`
	StandardErrorThreshold float64         `json:"standard_error_threshold"`
	MinQuestions           int             `json:"min_questions"`
	InitialAbility         float64         `json:"initial_ability"`
	SelectionMethod        SelectionMethod `json:"selection_method"`
	TopicBalancing         bool            `json:"topic_balancing"`
	ExposureControl        bool            `json:"exposure_control"`
	TestID                 *string         `json:"test_id,omitempty"`
}

func (c *SessionConfig) Validate() error {
	if c.MaxQuestions < 5 || c.MaxQuestions > 100 {
		return NewValidationError("max_questions", "must be in [5, 100], got %d", c.MaxQuestions)
	}
	if c.MaxTimeMinutes != nil && (*c.MaxTimeMinutes < 5 || *c.MaxTimeMinutes > 180) {
		return NewValidationError("max_time_minutes", "must be in [5, 180], got %d", *c.MaxTimeMinutes)
	}
	if c.StandardErrorThreshold < 0.1 || c.StandardErrorThreshold > 1.0 {
		return NewValidationError("standard_error_threshold", "must be in [0.1, 1.0], got %.4f", c.StandardErrorThreshold)
	}
	if c.InitialAbility < -3 || c.InitialAbility > 3 {
		return NewValidationError("initial_ability", "must be in [-3, 3], got %.4f", c.InitialAbility)
	}
	if c.MinQuestions < 0 || c.MinQuestions > c.MaxQuestions {
		return NewValidationError("min_questions", "must be in [0, max_questions], got %d", c.MinQuestions)
	}
	switch c.SelectionMethod {
	case SelectMaximumInformation, SelectClosestDifficulty, SelectRandom:
	default:
		return NewValidationError("selection_method", "unknown selection method %q", c.SelectionMethod)
	}
	return nil
}

// ApplyDefaults fills unset optional fields on a freshly submitted config.
func (c *SessionConfig) ApplyDefaults() {
	if c.SelectionMethod == "" {
		c.SelectionMethod = SelectMaximumInformation
	}
	if c.StandardErrorThreshold == 0 {
		c.StandardErrorThreshold = 0.3
	}
	if c.MinQuestions == 0 {
		c.MinQuestions = 5
	}
}

type TestSession struct {
	ID            uuid.UUID `gorm:"type:uuid;default:uuid_generate_v4();primaryKey" json:"id"`
	TenantID      uuid.UUID `gorm:"type:uuid;not null;index" json:"tenant_id"`
	PoolID        uuid.UUID `gorm:"type:uuid;not null;index" json:"pool_id"`
	Pool          *ItemPool `gorm:"constraint:OnDelete:CASCADE;foreignKey:PoolID;references:ID" json:"pool,omitempty"`
	BeneficiaryID uuid.UUID `gorm:"type:uuid;not null;index" json:"beneficiary_id"`

	Config datatypes.JSONType[SessionConfig] `gorm:"type:jsonb;column:config" json:"config"`
	Status SessionStatus                     `gorm:"column:status;not null;default:'not_started';index" json:"status"`

	CurrentAbility    float64                      `gorm:"column:current_ability;not null;default:0" json:"current_ability"`
	AbilitySE         float64                      `gorm:"column:ability_se;not null;default:0" json:"ability_se"`
	QuestionsAnswered int                          `gorm:"column:questions_answered;not null;default:0" json:"questions_answered"`
	AbilityHistory    datatypes.JSONSlice[float64] `gorm:"type:jsonb;column:ability_history" json:"ability_history"`

	TopicCoverage datatypes.JSONType[map[string]int] `gorm:"type:jsonb;column:topic_coverage" json:"topic_coverage"`

	CurrentItemID *uuid.UUID `gorm:"type:uuid;column:current_item_id" json:"current_item_id,omitempty"`

	StartedAt *time.Time `gorm:"column:started_at" json:"started_at,omitempty"`
	EndedAt   *time.Time `gorm:"column:ended_at" json:"ended_at,omitempty"`

	FinalAbility   *float64 `gorm:"column:final_ability" json:"final_ability,omitempty"`
	FinalSE        *float64 `gorm:"column:final_se" json:"final_se,omitempty"`
	ConfidenceLow  *float64 `gorm:"column:confidence_low" json:"confidence_low,omitempty"`
	ConfidenceHigh *float64 `gorm:"column:confidence_high" json:"confidence_high,omitempty"`

	// Version backs the optimistic write check: at most one writer per
	// session wins a submit.
	Version int `gorm:"column:version;not null;default:0" json:"version"`

	CreatedAt time.Time      `gorm:"not null;default:now()" json:"created_at"`
	UpdatedAt time.Time      `gorm:"not null;default:now()" json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"deleted_at,omitempty"`
}

func (TestSession) TableName() string { return "test_session" }

type SessionResponse struct {
	ID        uuid.UUID    `gorm:"type:uuid;default:uuid_generate_v4();primaryKey" json:"id"`
	SessionID uuid.UUID    `gorm:"type:uuid;not null;index:idx_session_question,unique,priority:1" json:"session_id"`
	Session   *TestSession `gorm:"constraint:OnDelete:CASCADE;foreignKey:SessionID;references:ID" json:"session,omitempty"`
	ItemID    uuid.UUID    `gorm:"type:uuid;not null;index" json:"item_id"`
	Item      *PoolItem    `gorm:"constraint:OnDelete:CASCADE;foreignKey:ItemID;references:ID" json:"item,omitempty"`

	// 1-based, strictly increasing within a session.
	QuestionNumber int `gorm:"column:question_number;not null;index:idx_session_question,unique,priority:2" json:"question_number"`

	Answer         datatypes.JSON `gorm:"type:jsonb;column:answer" json:"answer"`
	IsCorrect      bool           `gorm:"column:is_correct;not null" json:"is_correct"`
	ResponseTimeMS int            `gorm:"column:response_time_ms;not null;default:0" json:"response_time_ms"`

	AbilityBefore  float64 `gorm:"column:ability_before;not null" json:"ability_before"`
	AbilityAfter   float64 `gorm:"column:ability_after;not null" json:"ability_after"`
	SEAfter        float64 `gorm:"column:se_after;not null" json:"se_after"`
	ItemDifficulty float64 `gorm:"column:item_difficulty;not null" json:"item_difficulty"`

	CreatedAt time.Time      `gorm:"not null;default:now()" json:"created_at"`
	UpdatedAt time.Time      `gorm:"not null;default:now()" json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"deleted_at,omitempty"`
}

func (SessionResponse) TableName() string { return "session_response" }
