package db

// Absence represents a database absence record
type Absence struct {
	ID             string   `yaml:"id" validate:"required"`
	SchoolID       string   `yaml:"schoolID"`
	StaffID        string   `yaml:"staffID" validate:"required"`
	StaffName      string   `yaml:"staffName"`
	Date           string   `yaml:"date" validate:"required,datetime=2006-01-02"`
	DayOfWeek      string   `yaml:"dayOfWeek"` // monday, tuesday, ...
	PeriodsToCover []string `yaml:"periodsToCover" validate:"min=1"`
	Subject        string   `yaml:"subject,omitempty"`
	Department     string   `yaml:"department,omitempty"`
	Status         string   `yaml:"status"`
}

// CandidateStaff represents a database staff record that can cover periods.
// Availability and SubjectSpecialties are stored as JSON documents.
type CandidateStaff struct {
	ID                 string `yaml:"id"`
	SchoolID           string `yaml:"schoolID"`
	Name               string `yaml:"name"`
	Role               string `yaml:"role"`
	Availability       string `yaml:"availability"`
	SubjectSpecialties string `yaml:"subjectSpecialties,omitempty"`
	Department         string `yaml:"department,omitempty"`
	PreferredTeacherID string `yaml:"preferredTeacherID,omitempty"`
	Active             bool   `yaml:"active"`
}

// ScheduleEntry represents a database timetable record
type ScheduleEntry struct {
	ID        string `yaml:"id"`
	StaffID   string `yaml:"staffID"`
	DayOfWeek string `yaml:"dayOfWeek"`
	Period    string `yaml:"period"`
	Kind      string `yaml:"kind"` // class, duty, prep
	Subject   string `yaml:"subject,omitempty"`
}

// CoverageAssignment represents a database coverage record.
// AssigneeID is empty for periods nobody could cover.
type CoverageAssignment struct {
	ID               string   `yaml:"id"`
	AbsenceID        string   `yaml:"absenceID"`
	Date             string   `yaml:"date"`
	Periods          []string `yaml:"periods"`
	AssigneeID       string   `yaml:"assigneeID,omitempty"`
	AssigneeRole     string   `yaml:"assigneeRole,omitempty"`
	Kind             string   `yaml:"kind,omitempty"`
	Reason           string   `yaml:"reason,omitempty"`
	RequiresApproval bool     `yaml:"requiresApproval,omitempty"`
}

// LoadLimit represents a database load limit record for one staff member.
// Nil fields are unset and fall back to the role or default limit.
type LoadLimit struct {
	ID                    string `yaml:"id"`
	StaffID               string `yaml:"staffID,omitempty"`
	MaxPeriodsPerDay      *int   `yaml:"maxPeriodsPerDay,omitempty"`
	MaxPeriodsPerWeek     *int   `yaml:"maxPeriodsPerWeek,omitempty"`
	MaxConsecutivePeriods *int   `yaml:"maxConsecutivePeriods,omitempty"`
	MaxCoveragePerWeek    *int   `yaml:"maxCoveragePerWeek,omitempty"`
}

// ConstraintRule represents a database rule record. Conditions and Actions are JSON documents.
type ConstraintRule struct {
	ID         string `yaml:"id"`
	SchoolID   string `yaml:"schoolID"`
	Name       string `yaml:"name"`
	Category   string `yaml:"category"`
	RuleType   string `yaml:"ruleType"`
	Conditions string `yaml:"conditions"`
	Actions    string `yaml:"actions"`
	Priority   int    `yaml:"priority"`
	Active     bool   `yaml:"active"`
}

// PeriodConfig represents a database period definition for a school
type PeriodConfig struct {
	SchoolID string `yaml:"schoolID"`
	Period   string `yaml:"period"`
	Position int    `yaml:"position"`
	Type     string `yaml:"type"`
}
