package core

import (
	"sort"
	"strings"
	"time"
)

const (
	AppName       = "verifid"
	AppVersion    = "0.1.0"
	RepositoryURL = "https://github.com/sandevgo/verifid"
)

// Identifier fields are never used as question material.
const (
	FieldEmployeeID   = "Employee ID"
	FieldEmployeeName = "Employee Name"
)

// Record is a single employee record keyed by field name. Values that are
// not plain strings in the source dataset (lists, numbers) are excluded by
// the loader and never reach a Record.
type Record map[string]string

func (r Record) UserID() string {
	return strings.TrimSpace(r[FieldEmployeeID])
}

func (r Record) DisplayName() string {
	if name := strings.TrimSpace(r[FieldEmployeeName]); name != "" {
		return name
	}
	return "User"
}

// EligibleFields returns the non-identifier fields with a non-empty value,
// sorted so callers start from a stable order before any policy shuffling.
func (r Record) EligibleFields() []string {
	fields := make([]string, 0, len(r))
	for field, value := range r {
		if field == FieldEmployeeID || field == FieldEmployeeName {
			continue
		}
		if strings.TrimSpace(value) == "" {
			continue
		}
		fields = append(fields, field)
	}
	sort.Strings(fields)
	return fields
}

// Question is one issued verification question: the field it probes, the
// template it was rendered from and the final text shown to the user.
type Question struct {
	Field    string `json:"field"`
	Template string `json:"template"`
	Text     string `json:"question"`
}

// AskedPair identifies a question previously shown to a user. Dedup is by
// exact rendered text, not by template.
type AskedPair struct {
	Field string
	Text  string
}

// Interaction is one graded answer as persisted to the interaction log.
type Interaction struct {
	ID             int64
	UserID         string
	Field          string
	Template       string
	Answer         string
	CorrectAnswers []string
	Success        bool
	CreatedAt      time.Time
}

// GradedAnswer is the per-question grading result handed back to transports.
type GradedAnswer struct {
	Question       string
	Answer         string
	CorrectAnswers []string
	Correct        bool
}
