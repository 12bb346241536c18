package model

// RuleCategory groups constraint rules by the predicate they evaluate
type RuleCategory string

const (
	CategoryUnion    RuleCategory = "union"
	CategoryPolicy   RuleCategory = "policy"
	CategorySafety   RuleCategory = "safety"
	CategoryAcademic RuleCategory = "academic"
	CategoryCustom   RuleCategory = "custom"
)

func (c RuleCategory) IsValid() bool {
	switch c {
	case CategoryUnion, CategoryPolicy, CategorySafety, CategoryAcademic, CategoryCustom:
		return true
	}
	return false
}

// RuleType controls how a violation is treated
type RuleType string

const (
	RuleHard       RuleType = "hard"
	RuleSoft       RuleType = "soft"
	RulePreference RuleType = "preference"
)

func (t RuleType) IsValid() bool {
	return t == RuleHard || t == RuleSoft || t == RulePreference
}

// RuleConditions is the predicate description of a rule. Only the fields relevant to the
// rule's category are read.
type RuleConditions struct {
	// union
	TeacherRole        Role `json:"teacherRole,omitempty" yaml:"teacherRole,omitempty"`
	MaxCoveragePerWeek int  `json:"maxCoveragePerWeek,omitempty" yaml:"maxCoveragePerWeek,omitempty"`

	// policy
	ProtectPrepPeriod    bool     `json:"protectPrepPeriod,omitempty" yaml:"protectPrepPeriod,omitempty"`
	ProtectedPeriodTypes []string `json:"protectedPeriodTypes,omitempty" yaml:"protectedPeriodTypes,omitempty"`

	// safety
	MaxConsecutivePeriods int `json:"maxConsecutivePeriods,omitempty" yaml:"maxConsecutivePeriods,omitempty"`

	// academic
	RequireSubjectMatch bool `json:"requireSubjectMatch,omitempty" yaml:"requireSubjectMatch,omitempty"`
}

// RuleActions says what happens when a rule fires
type RuleActions struct {
	PreventAssignment bool   `json:"preventAssignment,omitempty" yaml:"preventAssignment,omitempty"`
	RequireApproval   bool   `json:"requireApproval,omitempty" yaml:"requireApproval,omitempty"`
	BoostPriority     bool   `json:"boostPriority,omitempty" yaml:"boostPriority,omitempty"`
	Message           string `json:"message,omitempty" yaml:"message,omitempty"`
}

// ConstraintRule is a configured policy. Rules are read-only to the engine.
type ConstraintRule struct {
	ID         string
	SchoolID   string
	Name       string
	Category   RuleCategory
	Type       RuleType
	Conditions RuleConditions
	Actions    RuleActions
	Priority   int
}
