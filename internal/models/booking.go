package models

import "time"

type Booking struct {
	ID         string    `json:"id"`
	Customer   string    `json:"customer"`
	Email      string    `json:"email"`
	Phone      string    `json:"phone"`
	Model      string    `json:"model"`
	Dealership string    `json:"dealership"`
	Branch     string    `json:"branch"`
	Date       string    `json:"date"`
	Time       string    `json:"time"`
	Message    string    `json:"message,omitempty"`
	Status     string    `json:"status"` // pending, confirmed, completed, cancelled
	CreatedAt  time.Time `json:"createdAt"`
}

// BookingInput carries the customer-supplied fields of a booking request.
// ID, branch, status and creation time are assigned by the store.
type BookingInput struct {
	Customer   string `json:"customer"`
	Email      string `json:"email"`
	Phone      string `json:"phone"`
	Model      string `json:"model"`
	Dealership string `json:"dealership"`
	Date       string `json:"date"`
	Time       string `json:"time"`
	Message    string `json:"message,omitempty"`
}

// ModelPopularity is one slice of the per-branch model demand breakdown.
type ModelPopularity struct {
	Model      string `json:"model"`
	Count      int    `json:"count"`
	Percentage int    `json:"percentage"`
}
