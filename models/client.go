package models

import (
	"time"
)

// Client represents a subscriber that is billed for services. The bank
// fields (IBAN, BIC, mandate) make the client eligible for direct debit
// collection.
type Client struct {
	ID          int       `json:"id"`
	Name        string    `json:"name"`
	TaxID       *string   `json:"tax_id"`
	Email       *string   `json:"email"`
	Phone       *string   `json:"phone"`
	IBAN        *string   `json:"iban"`
	BIC         *string   `json:"bic"`
	MandateRef  *string   `json:"mandate_ref"`
	MandateDate *string   `json:"mandate_date"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
	// Computed fields
	ActiveSubscriptions int   `json:"active_subscriptions"`
	PendingAmount       Money `json:"pending_amount"` // sum of pending invoice amounts
}

// ClientInput is used for creating/updating clients.
type ClientInput struct {
	Name        string  `json:"name"`
	TaxID       *string `json:"tax_id"`
	Email       *string `json:"email"`
	Phone       *string `json:"phone"`
	IBAN        *string `json:"iban"`
	BIC         *string `json:"bic"`
	MandateRef  *string `json:"mandate_ref"`
	MandateDate *string `json:"mandate_date"`
}

func (c *ClientInput) Validate() string {
	if c.Name == "" {
		return "name is required"
	}
	if c.MandateDate != nil && *c.MandateDate != "" {
		d, err := time.Parse("2006-01-02", *c.MandateDate)
		if err != nil {
			return "mandate_date must be in YYYY-MM-DD format"
		}
		// A mandate signed today or later cannot back a collection yet.
		if !d.Before(time.Now().Truncate(24 * time.Hour)) {
			return "mandate_date must be before today"
		}
		if c.MandateRef == nil || *c.MandateRef == "" {
			return "mandate_ref is required when mandate_date is set"
		}
	}
	return ""
}
