package handlers

import (
	"database/sql"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/subtrackhq/subtrack/models"
)

// Date columns go through strftime so they round-trip as YYYY-MM-DD.
const invoiceSelectQuery = `SELECT i.id, i.client_id, i.subscription_id, i.invoice_number,
		strftime('%Y-%m-%d', i.issue_date), strftime('%Y-%m-%d', i.due_date),
		i.amount, i.status, i.payment_method,
		strftime('%Y-%m-%d', i.period_start), strftime('%Y-%m-%d', i.period_end),
		i.description, i.remittance_id, i.created_at, i.updated_at, c.name, s.name
		FROM invoices i
		LEFT JOIN clients c ON i.client_id = c.id
		LEFT JOIN subscriptions sub ON i.subscription_id = sub.id
		LEFT JOIN services s ON sub.service_id = s.id`

func scanInvoice(scanner interface{ Scan(...any) error }) (models.Invoice, error) {
	var i models.Invoice
	err := scanner.Scan(&i.ID, &i.ClientID, &i.SubscriptionID, &i.InvoiceNumber, &i.IssueDate, &i.DueDate,
		&i.Amount, &i.Status, &i.PaymentMethod, &i.PeriodStart, &i.PeriodEnd, &i.Description, &i.RemittanceID,
		&i.CreatedAt, &i.UpdatedAt, &i.ClientName, &i.ServiceName)
	return i, err
}

func getInvoiceByID(id int) (models.Invoice, error) {
	return scanInvoice(DB.QueryRow(invoiceSelectQuery+" WHERE i.id = ?", id))
}

// ListInvoices lists all invoices
// @Summary      List invoices
// @Description  Get a list of all invoices, with status and payment method filters.
// @Tags         invoices
// @Produce      json
// @Param        status          query     string  false  "Filter by status"
// @Param        payment_method  query     string  false  "Filter by payment method"
// @Param        client_id       query     int     false  "Filter by client"
// @Param        due_before      query     string  false  "Only invoices due on or before this date (YYYY-MM-DD)"
// @Param        search          query     string  false  "Search by invoice number, description, or client name"
// @Success      200             {object}  Response{data=[]models.Invoice}
// @Router       /invoices [get]
// @Security     BasicAuth
func ListInvoices(w http.ResponseWriter, r *http.Request) {
	query := invoiceSelectQuery
	var conditions []string
	var args []any

	if s := r.URL.Query().Get("status"); s != "" {
		conditions = append(conditions, "i.status = ?")
		args = append(args, s)
	}
	if m := r.URL.Query().Get("payment_method"); m != "" {
		conditions = append(conditions, "i.payment_method = ?")
		args = append(args, m)
	}
	if cid := r.URL.Query().Get("client_id"); cid != "" {
		conditions = append(conditions, "i.client_id = ?")
		args = append(args, cid)
	}
	if due := r.URL.Query().Get("due_before"); due != "" {
		conditions = append(conditions, "i.due_date <= ?")
		args = append(args, due)
	}
	if search := r.URL.Query().Get("search"); search != "" {
		conditions = append(conditions, "(i.invoice_number LIKE ? OR i.description LIKE ? OR c.name LIKE ?)")
		s := "%" + search + "%"
		args = append(args, s, s, s)
	}

	if len(conditions) > 0 {
		query += " WHERE " + strings.Join(conditions, " AND ")
	}
	query += " ORDER BY i.created_at DESC"

	rows, err := DB.Query(query, args...)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	defer rows.Close()

	var invoices []models.Invoice
	for rows.Next() {
		i, err := scanInvoice(rows)
		if err != nil {
			writeError(w, http.StatusInternalServerError, err.Error())
			return
		}
		invoices = append(invoices, i)
	}
	if invoices == nil {
		invoices = []models.Invoice{}
	}
	writeJSON(w, http.StatusOK, invoices)
}

// GetInvoice retrieves a single invoice by ID
// @Summary      Get invoice
// @Description  Get details of a specific invoice.
// @Tags         invoices
// @Produce      json
// @Param        id   path      int  true  "Invoice ID"
// @Success      200  {object}  Response{data=models.Invoice}
// @Failure      404  {object}  Response{error=string}
// @Router       /invoices/{id} [get]
// @Security     BasicAuth
func GetInvoice(w http.ResponseWriter, r *http.Request) {
	id, _ := strconv.Atoi(chi.URLParam(r, "id"))
	i, err := getInvoiceByID(id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			writeError(w, http.StatusNotFound, "invoice not found")
		} else {
			writeError(w, http.StatusInternalServerError, err.Error())
		}
		return
	}
	writeJSON(w, http.StatusOK, i)
}

// CreateInvoice creates a new invoice
// @Summary      Create invoice
// @Description  Create a new invoice.
// @Tags         invoices
// @Accept       json
// @Produce      json
// @Param        invoice  body      models.InvoiceInput  true  "Invoice contents"
// @Success      201      {object}  Response{data=models.Invoice}
// @Failure      400      {object}  Response{error=string}
// @Router       /invoices [post]
// @Security     BasicAuth
func CreateInvoice(w http.ResponseWriter, r *http.Request) {
	var input models.InvoiceInput
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON")
		return
	}
	if msg := input.Validate(); msg != "" {
		writeError(w, http.StatusBadRequest, msg)
		return
	}

	var id int
	err := DB.QueryRow(`INSERT INTO invoices (client_id, subscription_id, invoice_number, issue_date, due_date,
		amount, status, payment_method, period_start, period_end, description)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?) RETURNING id`,
		input.ClientID, input.SubscriptionID, input.InvoiceNumber, input.IssueDate, input.DueDate,
		input.Amount, input.Status, input.PaymentMethod, input.PeriodStart, input.PeriodEnd,
		input.Description).Scan(&id)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}

	i, err := getInvoiceByID(id)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to re-fetch created invoice: "+err.Error())
		return
	}
	writeJSON(w, http.StatusCreated, i)
}

// UpdateInvoice updates an existing invoice
// @Summary      Update invoice
// @Description  Update details of an existing invoice, including status transitions (e.g. marking a remitted invoice paid).
// @Tags         invoices
// @Accept       json
// @Produce      json
// @Param        id       path      int                  true  "Invoice ID"
// @Param        invoice  body      models.InvoiceInput  true  "Updated invoice contents"
// @Success      200      {object}  Response{data=models.Invoice}
// @Failure      400      {object}  Response{error=string}
// @Failure      404      {object}  Response{error=string}
// @Router       /invoices/{id} [put]
// @Security     BasicAuth
func UpdateInvoice(w http.ResponseWriter, r *http.Request) {
	id, _ := strconv.Atoi(chi.URLParam(r, "id"))
	var input models.InvoiceInput
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON")
		return
	}
	if msg := input.Validate(); msg != "" {
		writeError(w, http.StatusBadRequest, msg)
		return
	}

	res, err := DB.Exec(`UPDATE invoices SET client_id = ?, subscription_id = ?, invoice_number = ?, issue_date = ?,
		due_date = ?, amount = ?, status = ?, payment_method = ?, period_start = ?, period_end = ?,
		description = ?, updated_at = CURRENT_TIMESTAMP WHERE id = ?`,
		input.ClientID, input.SubscriptionID, input.InvoiceNumber, input.IssueDate, input.DueDate,
		input.Amount, input.Status, input.PaymentMethod, input.PeriodStart, input.PeriodEnd,
		input.Description, id)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	if n, _ := res.RowsAffected(); n == 0 {
		writeError(w, http.StatusNotFound, "invoice not found")
		return
	}
	i, err := getInvoiceByID(id)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to re-fetch updated invoice: "+err.Error())
		return
	}
	writeJSON(w, http.StatusOK, i)
}

// DeleteInvoice deletes an invoice
// @Summary      Delete invoice
// @Description  Remove an invoice.
// @Tags         invoices
// @Produce      json
// @Param        id   path      int  true  "Invoice ID"
// @Success      200  {object}  Response{data=map[string]string}
// @Failure      404  {object}  Response{error=string}
// @Router       /invoices/{id} [delete]
// @Security     BasicAuth
func DeleteInvoice(w http.ResponseWriter, r *http.Request) {
	id, _ := strconv.Atoi(chi.URLParam(r, "id"))
	res, err := DB.Exec("DELETE FROM invoices WHERE id = ?", id)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	if n, _ := res.RowsAffected(); n == 0 {
		writeError(w, http.StatusNotFound, "invoice not found")
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"message": "deleted"})
}
