package models

import "time"

// Service represents a billable service offered to clients.
type Service struct {
	ID          int       `json:"id"`
	Name        string    `json:"name"`
	Description *string   `json:"description"`
	Price       Money     `json:"price"`
	Period      string    `json:"period"` // monthly, quarterly, yearly
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
	// Computed fields
	Subscribers int `json:"subscribers"`
}

// ServiceInput is used for creating/updating services.
type ServiceInput struct {
	Name        string  `json:"name"`
	Description *string `json:"description"`
	Price       Money   `json:"price"`
	Period      string  `json:"period"`
}

func (s *ServiceInput) Validate() string {
	if s.Name == "" {
		return "name is required"
	}
	if s.Price < 0 {
		return "price must be non-negative"
	}
	switch s.Period {
	case "monthly", "quarterly", "yearly":
	default:
		return "period must be one of: monthly, quarterly, yearly"
	}
	return ""
}
