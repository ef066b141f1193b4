package models

import (
	"math"
	"time"
)

// Feedback holds the post-drive satisfaction ratings for one booking.
// BookingID is the join key back to the booking record.
type Feedback struct {
	BookingID     string    `json:"customerId"`
	CustomerName  string    `json:"customerName"`
	Ratings       []int     `json:"ratings"`
	AverageRating float64   `json:"averageRating"`
	Comments      string    `json:"comments,omitempty"`
	Branch        string    `json:"branch"`
	CreatedAt     time.Time `json:"date"`
}

// AverageOf computes the mean rating rounded to one decimal place.
func AverageOf(ratings []int) float64 {
	if len(ratings) == 0 {
		return 0
	}
	sum := 0
	for _, r := range ratings {
		sum += r
	}
	avg := float64(sum) / float64(len(ratings))
	return math.Round(avg*10) / 10
}
