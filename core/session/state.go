package session

import (
	"slices"
	"time"
)

// Status is the position of the session in its lifecycle.
type Status string

const (
	StatusAnonymous  Status = "anonymous"
	StatusValid      Status = "valid"
	StatusExpired    Status = "expired"
	StatusRefreshing Status = "refreshing"
)

// State is an immutable snapshot of the session published to subscribers.
type State struct {
	Status Status
	// Authenticated mirrors Manager.IsAuthenticated at publish time.
	Authenticated bool
	Subject       string
	DisplayName   string
	Roles         []string
	Permissions   []string
	LastRefresh   time.Time
}

// Can reports whether perm is among the snapshot's permissions.
func (s State) Can(perm string) bool {
	return slices.Contains(s.Permissions, perm)
}
