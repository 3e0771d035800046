package enums

import "fmt"

// QuoteStatus maps to the quote_status enum in Postgres.
type QuoteStatus string

const (
	QuoteStatusPendingReview QuoteStatus = "pending_review"
	QuoteStatusQuoteReady    QuoteStatus = "quote_ready"
	QuoteStatusAccepted      QuoteStatus = "accepted"
	QuoteStatusPaid          QuoteStatus = "paid"
	QuoteStatusRejected      QuoteStatus = "rejected"
	QuoteStatusExpired       QuoteStatus = "expired"
)

var validQuoteStatuses = []QuoteStatus{
	QuoteStatusPendingReview,
	QuoteStatusQuoteReady,
	QuoteStatusAccepted,
	QuoteStatusPaid,
	QuoteStatusRejected,
	QuoteStatusExpired,
}

// The webhook pipeline performs only the accepted -> paid edge; every other
// transition belongs to the admin quoting workflow.
var quoteStatusTransitions = map[QuoteStatus][]QuoteStatus{
	QuoteStatusPendingReview: {QuoteStatusQuoteReady, QuoteStatusRejected, QuoteStatusExpired},
	QuoteStatusQuoteReady:    {QuoteStatusAccepted, QuoteStatusRejected, QuoteStatusExpired},
	QuoteStatusAccepted:      {QuoteStatusPaid, QuoteStatusExpired},
	QuoteStatusPaid:          {},
	QuoteStatusRejected:      {},
	QuoteStatusExpired:       {},
}

// String implements fmt.Stringer.
func (s QuoteStatus) String() string {
	return string(s)
}

// Display returns the customer-facing label for the status.
func (s QuoteStatus) Display() string {
	switch s {
	case QuoteStatusPendingReview:
		return "Pending Review"
	case QuoteStatusQuoteReady:
		return "Quote Ready"
	case QuoteStatusAccepted:
		return "Accepted"
	case QuoteStatusPaid:
		return "Paid"
	case QuoteStatusRejected:
		return "Rejected"
	case QuoteStatusExpired:
		return "Expired"
	default:
		return string(s)
	}
}

// IsValid reports whether the value is a known QuoteStatus.
func (s QuoteStatus) IsValid() bool {
	for _, candidate := range validQuoteStatuses {
		if candidate == s {
			return true
		}
	}
	return false
}

// CanTransitionTo reports whether the status machine permits moving to next.
func (s QuoteStatus) CanTransitionTo(next QuoteStatus) bool {
	for _, candidate := range quoteStatusTransitions[s] {
		if candidate == next {
			return true
		}
	}
	return false
}

// ParseQuoteStatus converts raw input into a QuoteStatus.
func ParseQuoteStatus(value string) (QuoteStatus, error) {
	for _, candidate := range validQuoteStatuses {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid quote status %q", value)
}
