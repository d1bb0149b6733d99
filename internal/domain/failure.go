package domain

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"
)

// EventEmailFailed is the event log name recorded when the platform
// could not deliver an email.
const EventEmailFailed = `\core\event\email_failed`

// FailureRecord is one failed email, read from the event log joined to
// the user it was addressed to.
type FailureRecord struct {
	ID            int64
	RelatedUserID int64
	FirstName     string
	LastName      string
	UserDeleted   bool
	Other         string
	TimeCreated   time.Time
}

// AffectedUser returns the display name of the intended recipient.
func (r FailureRecord) AffectedUser() string {
	return JoinFullName(r.FirstName, r.LastName)
}

// EmailPayload holds the fields of the serialized "other" column that the
// report shows.
type EmailPayload struct {
	Subject string `json:"subject"`
	Message string `json:"message"`
}

func ParsePayload(other string) (EmailPayload, error) {
	var payload EmailPayload
	trimmed := strings.TrimSpace(other)
	if trimmed == "" || trimmed == "null" {
		return payload, nil
	}
	if err := json.Unmarshal([]byte(trimmed), &payload); err != nil {
		return EmailPayload{}, fmt.Errorf("%w: invalid email payload: %v", ErrValidation, err)
	}
	return payload, nil
}

// SortDirection is the ordering applied to a sortable column.
type SortDirection string

const (
	SortAsc  SortDirection = "ASC"
	SortDesc SortDirection = "DESC"
)

func (d SortDirection) String() string { return string(d) }

func (d SortDirection) IsValid() bool {
	switch d {
	case SortAsc, SortDesc:
		return true
	}
	return false
}

// ParseSortDirection accepts asc/desc and the platform's numeric sort
// constants (4 ascending, 3 descending).
func ParseSortDirection(s string) (SortDirection, error) {
	switch strings.ToUpper(strings.TrimSpace(s)) {
	case "ASC", "4":
		return SortAsc, nil
	case "DESC", "3":
		return SortDesc, nil
	}
	return "", fmt.Errorf("%w: invalid sort direction %q", ErrValidation, s)
}

// Sort names the column and direction of an ordered query.
type Sort struct {
	Column    string
	Direction SortDirection
}
