package handlers

import (
	"net/http"

	"github.com/subtrackhq/subtrack/models"
)

type dashboardData struct {
	TotalClients       int `json:"total_clients"`
	TotalServices      int `json:"total_services"`
	TotalSubscriptions int `json:"total_subscriptions"`
	TotalInvoices      int `json:"total_invoices"`
	TotalRemittances   int `json:"total_remittances"`

	ActiveSubscriptions int `json:"active_subscriptions"`

	PendingAmount  models.Money `json:"pending_amount"`  // pending invoices
	RemittedAmount models.Money `json:"remitted_amount"` // sent to the bank, not yet confirmed
	PaidAmount     models.Money `json:"paid_amount"`

	ClientsWithoutMandate int `json:"clients_without_mandate"` // blocks direct debit

	RecentRemittances []map[string]any `json:"recent_remittances"`
}

// GetDashboard retrieves dashboard summary statistics
// @Summary      Get dashboard
// @Description  Get totals for clients, subscriptions, invoices, and recent remittances.
// @Tags         dashboard
// @Produce      json
// @Success      200  {object}  Response{data=dashboardData}
// @Router       /dashboard [get]
// @Security     BasicAuth
func GetDashboard(w http.ResponseWriter, r *http.Request) {
	var d dashboardData

	DB.QueryRow("SELECT COUNT(*) FROM clients").Scan(&d.TotalClients)
	DB.QueryRow("SELECT COUNT(*) FROM services").Scan(&d.TotalServices)
	DB.QueryRow("SELECT COUNT(*) FROM subscriptions").Scan(&d.TotalSubscriptions)
	DB.QueryRow("SELECT COUNT(*) FROM invoices").Scan(&d.TotalInvoices)
	DB.QueryRow("SELECT COUNT(*) FROM remittances").Scan(&d.TotalRemittances)

	DB.QueryRow("SELECT COUNT(*) FROM subscriptions WHERE status = 'active'").Scan(&d.ActiveSubscriptions)

	DB.QueryRow("SELECT COALESCE(SUM(amount), 0) FROM invoices WHERE status = 'pending'").Scan(&d.PendingAmount)
	DB.QueryRow("SELECT COALESCE(SUM(amount), 0) FROM invoices WHERE status = 'remitted'").Scan(&d.RemittedAmount)
	DB.QueryRow("SELECT COALESCE(SUM(amount), 0) FROM invoices WHERE status = 'paid'").Scan(&d.PaidAmount)

	DB.QueryRow(`SELECT COUNT(*) FROM clients
		WHERE mandate_ref IS NULL OR mandate_ref = '' OR iban IS NULL OR iban = ''`).Scan(&d.ClientsWithoutMandate)

	// Recent 5 remittances
	rows, err := DB.Query(`SELECT id, message_id, file_name, tx_count, total_amount, created_at
		FROM remittances ORDER BY created_at DESC LIMIT 5`)
	if err == nil {
		defer rows.Close()
		for rows.Next() {
			var id, count int
			var total models.Money
			var msgID, fileName, createdAt string
			rows.Scan(&id, &msgID, &fileName, &count, &total, &createdAt)
			d.RecentRemittances = append(d.RecentRemittances, map[string]any{
				"id":           id,
				"message_id":   msgID,
				"file_name":    fileName,
				"tx_count":     count,
				"total_amount": total,
				"created_at":   createdAt,
			})
		}
	}
	if d.RecentRemittances == nil {
		d.RecentRemittances = []map[string]any{}
	}

	writeJSON(w, http.StatusOK, d)
}
