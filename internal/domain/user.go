package domain

import "strings"

// User is the subset of the platform user row the report needs.
type User struct {
	ID        int64
	Username  string
	FirstName string
	LastName  string
	Email     string
	Deleted   bool
	Suspended bool
}

// FullName joins first and last name the way the platform displays them.
func (u User) FullName() string {
	return JoinFullName(u.FirstName, u.LastName)
}

func JoinFullName(firstName, lastName string) string {
	return strings.TrimSpace(strings.TrimSpace(firstName) + " " + strings.TrimSpace(lastName))
}

// Viewer is the authenticated user requesting the report.
type Viewer struct {
	User      User
	SiteAdmin bool
	// CanViewReport is set when the viewer holds report/failedemails:view.
	CanViewReport bool
}
