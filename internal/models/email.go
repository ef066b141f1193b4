package models

// Email is a rendered confirmation message. Delivery is simulated, so the
// envelope is only ever logged.
type Email struct {
	To      string `json:"to"`
	Subject string `json:"subject"`
	Body    string `json:"body"`
}
