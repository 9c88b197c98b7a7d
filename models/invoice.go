package models

import "time"

// Invoice represents a billed amount due from a client. Pending direct-debit
// invoices are the collection items a remittance is generated from; once
// included in a remittance they move to 'remitted', and to 'paid' when the
// bank confirms collection.
type Invoice struct {
	ID             int       `json:"id"`
	ClientID       *int      `json:"client_id"`
	SubscriptionID *int      `json:"subscription_id"`
	InvoiceNumber  string    `json:"invoice_number"`
	IssueDate      *string   `json:"issue_date"`
	DueDate        *string   `json:"due_date"`
	Amount         Money     `json:"amount"`
	Status         string    `json:"status"`         // pending, remitted, paid, cancelled
	PaymentMethod  string    `json:"payment_method"` // direct_debit, transfer, cash
	PeriodStart    *string   `json:"period_start"`
	PeriodEnd      *string   `json:"period_end"`
	Description    *string   `json:"description"`
	RemittanceID   *int      `json:"remittance_id"`
	CreatedAt      time.Time `json:"created_at"`
	UpdatedAt      time.Time `json:"updated_at"`
	// Computed fields
	ClientName  *string `json:"client_name,omitempty"`
	ServiceName *string `json:"service_name,omitempty"`
}

// InvoiceInput is used for creating/updating invoices.
type InvoiceInput struct {
	ClientID       *int    `json:"client_id"`
	SubscriptionID *int    `json:"subscription_id"`
	InvoiceNumber  string  `json:"invoice_number"`
	IssueDate      *string `json:"issue_date"`
	DueDate        *string `json:"due_date"`
	Amount         Money   `json:"amount"`
	Status         string  `json:"status"`
	PaymentMethod  string  `json:"payment_method"`
	PeriodStart    *string `json:"period_start"`
	PeriodEnd      *string `json:"period_end"`
	Description    *string `json:"description"`
}

func (i *InvoiceInput) Validate() string {
	if i.Amount <= 0 {
		return "amount must be positive"
	}
	switch i.Status {
	case "", "pending", "remitted", "paid", "cancelled":
	default:
		return "status must be one of: pending, remitted, paid, cancelled"
	}
	if i.Status == "" {
		i.Status = "pending"
	}
	switch i.PaymentMethod {
	case "", "direct_debit", "transfer", "cash":
	default:
		return "payment_method must be one of: direct_debit, transfer, cash"
	}
	if i.PaymentMethod == "" {
		i.PaymentMethod = "direct_debit"
	}
	return ""
}
