package models

import "time"

type Manager struct {
	ID     string `json:"id"`
	Name   string `json:"name"`
	Email  string `json:"email"`
	Branch string `json:"branch"`
	// Password is stored verbatim for compatibility with the original
	// dataset. Not suitable for production use without salted hashing.
	Password  string    `json:"password"`
	CreatedAt time.Time `json:"createdAt"`
}

type ManagerInput struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Branch   string `json:"branch"`
	Password string `json:"password"`
}

// ManagerSession is a snapshot of the authenticated manager's public fields,
// taken at login time. Later edits to the manager record do not update it.
type ManagerSession struct {
	ManagerID string `json:"managerId"`
	Name      string `json:"name"`
	Branch    string `json:"branch"`
	Email     string `json:"email"`
}
