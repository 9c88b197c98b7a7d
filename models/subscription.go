package models

import "time"

// Subscription links a client to a service they are billed for.
type Subscription struct {
	ID        int       `json:"id"`
	ClientID  int       `json:"client_id"`
	ServiceID int       `json:"service_id"`
	StartDate *string   `json:"start_date"`
	Status    string    `json:"status"` // active, paused, cancelled
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
	// Computed fields
	ClientName  *string `json:"client_name,omitempty"`
	ServiceName *string `json:"service_name,omitempty"`
	Price       Money   `json:"price"`
}

// SubscriptionInput is used for creating/updating subscriptions.
type SubscriptionInput struct {
	ClientID  int     `json:"client_id"`
	ServiceID int     `json:"service_id"`
	StartDate *string `json:"start_date"`
	Status    string  `json:"status"`
}

func (s *SubscriptionInput) Validate() string {
	if s.ClientID <= 0 {
		return "client_id is required"
	}
	if s.ServiceID <= 0 {
		return "service_id is required"
	}
	switch s.Status {
	case "", "active", "paused", "cancelled":
	default:
		return "status must be one of: active, paused, cancelled"
	}
	if s.Status == "" {
		s.Status = "active"
	}
	return ""
}
