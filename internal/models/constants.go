package models

const (
	StatusPending   = "pending"
	StatusConfirmed = "confirmed"
	StatusCompleted = "completed"
	StatusCancelled = "cancelled"
)

const (
	BranchNoida        = "Noida"
	BranchGurgaon      = "Gurgaon"
	BranchCentralDelhi = "Central Delhi"
)

// Branches lists the fixed dealership regions in derivation order.
var Branches = []string{BranchNoida, BranchGurgaon, BranchCentralDelhi}

// Storage keys mirror the original web client's local-storage layout so a
// migrated dataset keeps working.
const (
	DefaultBookingsKey = "honda-bookings"
	DefaultManagersKey = "honda_managers"
	DefaultSessionKey  = "honda_manager_session"
	DefaultFeedbackKey = "customer-feedback"
)

const (
	// FeedbackQuestionCount число вопросов анкеты после тест-драйва
	FeedbackQuestionCount = 7

	// RatingMin/RatingMax границы оценки по одному вопросу
	RatingMin = 1
	RatingMax = 5

	// MailQueueSize размер очереди писем в памяти
	MailQueueSize = 256
)

// IsValidStatus reports whether s is one of the known booking statuses.
func IsValidStatus(s string) bool {
	switch s {
	case StatusPending, StatusConfirmed, StatusCompleted, StatusCancelled:
		return true
	}
	return false
}

// IsValidBranch reports whether b is one of the fixed branches.
func IsValidBranch(b string) bool {
	for _, known := range Branches {
		if b == known {
			return true
		}
	}
	return false
}
