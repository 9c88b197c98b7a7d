package models

import "time"

// Remittance is a record of a generated SEPA direct debit file. The rendered
// document is stored alongside so it can be downloaded again.
type Remittance struct {
	ID          int       `json:"id"`
	MessageID   string    `json:"message_id"`
	FileName    string    `json:"file_name"`
	TxCount     int       `json:"tx_count"`
	TotalAmount Money     `json:"total_amount"`
	CreatedAt   time.Time `json:"created_at"`
}
