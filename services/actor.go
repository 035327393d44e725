package services

import "strings"

// Actor is the authenticated user performing a mutation.
type Actor struct {
	UserID     int
	Name       string
	Department string
}

func (a Actor) validate() error {
	if a.UserID <= 0 {
		return invalid("actor", "user id is required")
	}
	if strings.TrimSpace(a.Department) == "" {
		return invalid("actor", "department is required")
	}
	return nil
}
