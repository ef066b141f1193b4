// Package storage implements the booking, manager and feedback collections on
// top of a generic key-value store. Each collection lives as a single JSON
// document under a fixed key, so every mutation is a whole-collection
// read-modify-write. There is no cross-process locking: two concurrent
// writers race and the second write silently discards the first. Single
// writer at a time is assumed, as it was for the original single browsing
// context.
package storage

import (
	"errors"

	"drivedesk/internal/models"
)

var ErrStorageUnavailable = errors.New("persistent storage is unavailable")

// Keys names the storage entries for each collection.
type Keys struct {
	Bookings string
	Managers string
	Session  string
	Feedback string
}

// DefaultKeys returns the key layout of the original web client.
func DefaultKeys() Keys {
	return Keys{
		Bookings: models.DefaultBookingsKey,
		Managers: models.DefaultManagersKey,
		Session:  models.DefaultSessionKey,
		Feedback: models.DefaultFeedbackKey,
	}
}

func (k Keys) withDefaults() Keys {
	d := DefaultKeys()
	if k.Bookings == "" {
		k.Bookings = d.Bookings
	}
	if k.Managers == "" {
		k.Managers = d.Managers
	}
	if k.Session == "" {
		k.Session = d.Session
	}
	if k.Feedback == "" {
		k.Feedback = d.Feedback
	}
	return k
}
