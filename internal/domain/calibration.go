package domain

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

type CalibrationStatus string

const (
	CalibrationCalibrated       CalibrationStatus = "calibrated"
	CalibrationInsufficientData CalibrationStatus = "insufficient_data"
)

type ProposalState string

const (
	ProposalPending  ProposalState = "pending"
	ProposalApplied  ProposalState = "applied"
	ProposalRejected ProposalState = "rejected"
)

// CalibrationProposal is a re-estimated parameter set awaiting human approval.
// Live item parameters are never written by the calibrator itself.
type CalibrationProposal struct {
	ID     uuid.UUID `gorm:"type:uuid;default:uuid_generate_v4();primaryKey" json:"id"`
	ItemID uuid.UUID `gorm:"type:uuid;not null;index" json:"item_id"`
	Item   *PoolItem `gorm:"constraint:OnDelete:CASCADE;foreignKey:ItemID;references:ID" json:"item,omitempty"`

	Difficulty     float64 `gorm:"column:difficulty;not null;default:0" json:"difficulty"`
	Discrimination float64 `gorm:"column:discrimination;not null;default:1" json:"discrimination"`
	Guessing       float64 `gorm:"column:guessing;not null;default:0" json:"guessing"`

	Status        CalibrationStatus `gorm:"column:status;not null" json:"status"`
	SampleSize    int               `gorm:"column:sample_size;not null;default:0" json:"sample_size"`
	FitStatistics datatypes.JSON    `gorm:"type:jsonb;column:fit_statistics" json:"fit_statistics,omitempty"`

	State     ProposalState `gorm:"column:state;not null;default:'pending';index" json:"state"`
	AppliedAt *time.Time    `gorm:"column:applied_at" json:"applied_at,omitempty"`

	CreatedAt time.Time      `gorm:"not null;default:now()" json:"created_at"`
	UpdatedAt time.Time      `gorm:"not null;default:now()" json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"deleted_at,omitempty"`
}

func (CalibrationProposal) TableName() string { return "calibration_proposal" }
