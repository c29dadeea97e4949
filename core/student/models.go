package student

import (
	"time"

	"github.com/uzima/alama/core"
)

// Risk buckets
const (
	RiskLow    = "Low Risk"
	RiskMedium = "Medium Risk"
	RiskHigh   = "High Risk"
)

// DefaultName is used when a submission carries no student name.
const DefaultName = "Unknown"

type (
	// Attributes holds the raw form values a score is computed from.
	// Values are kept as submitted; parsing happens at scoring time and
	// unparsable values silently fall back to per-field defaults.
	Attributes struct {
		Academic     string `json:"academic" form:"academic"`
		ParentIncome string `json:"parent_income" form:"parent_income"`
		FamilySize   string `json:"family_size" form:"family_size"`
		Motivation   string `json:"motivation" form:"motivation"`
		Behavior     string `json:"behavior" form:"behavior"`
	}

	// ScoreResult is the outcome of scoring one set of attributes.
	ScoreResult struct {
		Score  float64 `json:"score"` // 0-100, rounded to 2 decimals
		Risk   string  `json:"risk"`
		Reason string  `json:"reason"`
	}

	// Student is a persisted submission. Records are append-only: they are
	// created once and never updated or deleted.
	Student struct {
		ID   int64  `json:"id"`
		Name string `json:"name"`
		Attributes
		ScoreResult
		CreatedAt time.Time `json:"created_at"` // UTC
	}

	NewStudent struct {
		Name string `json:"name" form:"name" validate:"max=255"`
		Attributes
	}

	// QueryFilter applies AND operation on available fields.
	QueryFilter struct {
		Risk     string
		MinScore *float64
		MaxScore *float64
	}

	// Summary holds the dashboard headline numbers.
	Summary struct {
		Total        int     `json:"total"`
		LowRisk      int     `json:"low_risk"`
		MediumRisk   int     `json:"medium_risk"`
		HighRisk     int     `json:"high_risk"`
		AverageScore float64 `json:"average_score"`
	}
)

func (ns *NewStudent) Validate() error {
	ns.Name = core.CleanString(ns.Name)
	if ns.Name == "" {
		ns.Name = DefaultName
	}
	return core.Validate.Struct(ns)
}

// Match reports whether `s` satisfies all set filter fields.
func (f QueryFilter) Match(s Student) bool {
	if f.Risk != "" && s.Risk != f.Risk {
		return false
	}
	if f.MinScore != nil && s.Score < *f.MinScore {
		return false
	}
	if f.MaxScore != nil && s.Score > *f.MaxScore {
		return false
	}
	return true
}
