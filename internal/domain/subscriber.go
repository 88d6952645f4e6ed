package domain

import "time"

// SubscriberStatus enumerates the states a subscriber can be in.
// The only legal transition is pending_confirmation → confirmed.
type SubscriberStatus string

const (
	SubscriberPending   SubscriberStatus = "pending_confirmation"
	SubscriberConfirmed SubscriberStatus = "confirmed"
)

// Subscriber represents a single mailing-list recipient.
type Subscriber struct {
	ID           string           `json:"id"`
	Email        Email            `json:"email"`
	Name         Name             `json:"name"`
	Status       SubscriberStatus `json:"status"`
	SubscribedAt time.Time        `json:"subscribed_at"`
}

// Recipient is the projection of a confirmed subscriber used by
// newsletter dispatch.
type Recipient struct {
	SubscriberID string `json:"subscriber_id"`
	Email        Email  `json:"email"`
}
