package domain

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

type ReviewStatus string

const (
	ReviewStatusDraft       ReviewStatus = "draft"
	ReviewStatusApproved    ReviewStatus = "approved"
	ReviewStatusNeedsReview ReviewStatus = "needs_review"
)

type ItemType string

const (
	ItemTypeMultipleChoice ItemType = "multiple_choice"
	ItemTypeTrueFalse      ItemType = "true_false"
	ItemTypeNumeric        ItemType = "numeric"
)

// IRT parameter ranges accepted at ingestion. Out-of-range values are
// rejected, never clamped.
const (
	MinDifficulty     = -3.0
	MaxDifficulty     = 3.0
	MinDiscrimination = 0.1
	MaxDiscrimination = 2.5
	MinGuessing       = 0.0
	MaxGuessing       = 0.3 // exclusive
)

type ItemPool struct {
	ID         uuid.UUID      `gorm:"type:uuid;default:uuid_generate_v4();primaryKey" json:"id"`
	TenantID   uuid.UUID      `gorm:"type:uuid;not null;index" json:"tenant_id"`
	Name       string         `gorm:"column:name;not null" json:"name"`
	Subject    string         `gorm:"column:subject" json:"subject"`
	GradeLevel string         `gorm:"column:grade_level" json:"grade_level"`
	Items      []*PoolItem    `gorm:"foreignKey:PoolID;references:ID" json:"items,omitempty"`
	CreatedAt  time.Time      `gorm:"not null;default:now()" json:"created_at"`
	UpdatedAt  time.Time      `gorm:"not null;default:now()" json:"updated_at"`
	DeletedAt  gorm.DeletedAt `gorm:"index" json:"deleted_at,omitempty"`
}

func (ItemPool) TableName() string { return "item_pool" }

type PoolItem struct {
	ID     uuid.UUID `gorm:"type:uuid;default:uuid_generate_v4();primaryKey" json:"id"`
	PoolID uuid.UUID `gorm:"type:uuid;not null;index" json:"pool_id"`
	Pool   *ItemPool `gorm:"constraint:OnDelete:CASCADE;foreignKey:PoolID;references:ID" json:"pool,omitempty"`

	ItemType      ItemType       `gorm:"column:item_type;not null" json:"item_type"`
	PromptMD      string         `gorm:"column:prompt_md" json:"prompt_md"`
	Options       datatypes.JSON `gorm:"type:jsonb;column:options" json:"options,omitempty"`
	CorrectAnswer datatypes.JSON `gorm:"type:jsonb;column:correct_answer" json:"-"`

	Topic          string `gorm:"column:topic;not null;index" json:"topic"`
	Subtopic       string `gorm:"column:subtopic" json:"subtopic"`
	CognitiveLevel string `gorm:"column:cognitive_level" json:"cognitive_level"`

	// Flattened IRT parameters are the source of truth; the nested `irt`
	// object on the wire is derived from them at serialization time.
	Difficulty     float64 `gorm:"column:difficulty;not null;default:0" json:"difficulty"`
	Discrimination float64 `gorm:"column:discrimination;not null;default:1" json:"discrimination"`
	Guessing       float64 `gorm:"column:guessing;not null;default:0" json:"guessing"`

	ExposureCount int `gorm:"column:exposure_count;not null;default:0" json:"exposure_count"`
	UsageCount    int `gorm:"column:usage_count;not null;default:0" json:"usage_count"`
	CorrectCount  int `gorm:"column:correct_count;not null;default:0" json:"correct_count"`

	IsActive     bool         `gorm:"column:is_active;not null;default:true" json:"is_active"`
	ReviewStatus ReviewStatus `gorm:"column:review_status;not null;default:'draft'" json:"review_status"`

	CreatedAt time.Time      `gorm:"not null;default:now()" json:"created_at"`
	UpdatedAt time.Time      `gorm:"not null;default:now()" json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"deleted_at,omitempty"`
}

func (PoolItem) TableName() string { return "pool_item" }

// IRTParams is the nested wire representation, derived read-only from the
// flattened columns.
type IRTParams struct {
	Difficulty     float64 `json:"difficulty"`
	Discrimination float64 `json:"discrimination"`
	Guessing       float64 `json:"guessing"`
}

func (i *PoolItem) IRT() IRTParams {
	return IRTParams{
		Difficulty:     i.Difficulty,
		Discrimination: i.Discrimination,
		Guessing:       i.Guessing,
	}
}

// Selectable reports whether the item may be offered to a test-taker.
func (i *PoolItem) Selectable() bool {
	return i.IsActive && i.ReviewStatus == ReviewStatusApproved
}

// ValidateParams enforces the accepted IRT parameter ranges.
func (i *PoolItem) ValidateParams() error {
	if i.Difficulty < MinDifficulty || i.Difficulty > MaxDifficulty {
		return NewValidationError("difficulty", "must be in [%.1f, %.1f], got %.4f", MinDifficulty, MaxDifficulty, i.Difficulty)
	}
	if i.Discrimination < MinDiscrimination || i.Discrimination > MaxDiscrimination {
		return NewValidationError("discrimination", "must be in [%.1f, %.1f], got %.4f", MinDiscrimination, MaxDiscrimination, i.Discrimination)
	}
	if i.Guessing < MinGuessing || i.Guessing >= MaxGuessing {
		return NewValidationError("guessing", "must be in [%.1f, %.1f), got %.4f", MinGuessing, MaxGuessing, i.Guessing)
	}
	switch i.ItemType {
	case ItemTypeMultipleChoice, ItemTypeTrueFalse, ItemTypeNumeric:
	default:
		return NewValidationError("item_type", "unknown item type %q", i.ItemType)
	}
	if i.Topic == "" {
		return NewValidationError("topic", "must not be empty")
	}
	return nil
}
