package handlers

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/subtrackhq/subtrack/db"
)

func setupTestDB(t *testing.T) {
	t.Helper()

	database, err := db.OpenMemory()
	require.NoError(t, err)
	require.NoError(t, db.Migrate(database))

	DB = database
	t.Cleanup(func() {
		database.Close()
		DB = nil
	})
}

func seedOrgProfile(t *testing.T) {
	t.Helper()
	settings := map[string]string{
		"company_name":       "Acme Subscriptions",
		"legal_name":         "Acme Subscriptions SL",
		"iban":               "ES9121000418450200051332",
		"bic":                "CAIXESBBXXX",
		"creditor_scheme_id": "ES50000B12345678",
	}
	for key, value := range settings {
		_, err := DB.Exec("INSERT INTO settings (key, value) VALUES (?, ?)", key, value)
		require.NoError(t, err)
	}
}

func seedClient(t *testing.T, name, iban, mandateRef, mandateDate string) int {
	t.Helper()
	var id int
	err := DB.QueryRow(`INSERT INTO clients (name, iban, mandate_ref, mandate_date)
		VALUES (?, ?, NULLIF(?, ''), NULLIF(?, '')) RETURNING id`,
		name, iban, mandateRef, mandateDate).Scan(&id)
	require.NoError(t, err)
	return id
}

func seedInvoice(t *testing.T, clientID int, number string, cents int, due, status string) int {
	t.Helper()
	var id int
	err := DB.QueryRow(`INSERT INTO invoices (client_id, invoice_number, amount, due_date, status)
		VALUES (?, ?, ?, ?, ?) RETURNING id`,
		clientID, number, cents, due, status).Scan(&id)
	require.NoError(t, err)
	return id
}

func invoiceStatus(t *testing.T, id int) string {
	t.Helper()
	var status string
	require.NoError(t, DB.QueryRow("SELECT status FROM invoices WHERE id = ?", id).Scan(&status))
	return status
}

func postRemittance(t *testing.T, body any) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(http.MethodPost, "/api/v1/remittances", &buf)
	w := httptest.NewRecorder()
	CreateRemittance(w, req)
	return w
}

func TestCreateRemittance_EndToEnd(t *testing.T) {
	setupTestDB(t)
	seedOrgProfile(t)

	alice := seedClient(t, "Alice Martin", "ES7921000813610123456789", "MND-001", "2024-05-10")
	bob := seedClient(t, "Bob Perez", "ES6621000418401234567891", "MND-002", "2023-01-15")

	// Bob has prior collected invoices, so his next collection is recurring.
	for i := 0; i < 3; i++ {
		seedInvoice(t, bob, "", 1000, "2025-01-01", "paid")
	}

	inv1 := seedInvoice(t, alice, "INV-2025-001", 1000, "2025-03-01", "pending")
	inv2 := seedInvoice(t, alice, "INV-2025-002", 1500, "2025-03-01", "pending")
	inv3 := seedInvoice(t, bob, "INV-2025-003", 3000, "2025-03-01", "pending")
	inv4 := seedInvoice(t, alice, "INV-2025-004", 1000, "2025-03-10", "pending")

	w := postRemittance(t, nil)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	assert.Equal(t, "application/xml", w.Header().Get("Content-Type"))
	assert.Contains(t, w.Header().Get("Content-Disposition"), "attachment")

	xml := w.Body.String()
	assert.Contains(t, xml, "pain.008.001.02")
	assert.Equal(t, 3, strings.Count(xml, "<PmtInf>"))
	assert.Contains(t, xml, "<NbOfTxs>4</NbOfTxs>")
	assert.Contains(t, xml, "<CtrlSum>65.00</CtrlSum>")
	assert.Contains(t, xml, "<SeqTp>FRST</SeqTp>")
	assert.Contains(t, xml, "<SeqTp>RCUR</SeqTp>")
	assert.Contains(t, xml, "<MndtId>MND-002</MndtId>")

	// Dates stored in DATE columns must come out as plain calendar dates.
	assert.Contains(t, xml, "<DtOfSgntr>2024-05-10</DtOfSgntr>")
	assert.Contains(t, xml, "<ReqdColltnDt>2025-03-01</ReqdColltnDt>")
	assert.NotContains(t, xml, "T00:00:00Z")

	// Included invoices moved to remitted and reference the remittance row.
	for _, id := range []int{inv1, inv2, inv3, inv4} {
		assert.Equal(t, "remitted", invoiceStatus(t, id))
	}
	var count int
	require.NoError(t, DB.QueryRow("SELECT COUNT(*) FROM remittances").Scan(&count))
	assert.Equal(t, 1, count)
}

func TestCreateRemittance_IncompleteProfile(t *testing.T) {
	setupTestDB(t)
	// No settings seeded: the profile has no SEPA identifiers.
	alice := seedClient(t, "Alice Martin", "ES7921000813610123456789", "MND-001", "2024-05-10")
	seedInvoice(t, alice, "INV-1", 1000, "2025-03-01", "pending")

	w := postRemittance(t, nil)
	require.Equal(t, http.StatusUnprocessableEntity, w.Code)

	var resp Response
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Contains(t, resp.Error, "profile is incomplete")
	assert.Empty(t, resp.Problems)
}

func TestCreateRemittance_ValidationProblems(t *testing.T) {
	setupTestDB(t)
	seedOrgProfile(t)

	// Carol has an IBAN but never signed a mandate.
	carol := seedClient(t, "Carol Diaz", "ES7921000813610123456789", "", "")
	inv := seedInvoice(t, carol, "INV-1", 1000, "2025-03-01", "pending")

	w := postRemittance(t, nil)
	require.Equal(t, http.StatusUnprocessableEntity, w.Code)

	var resp Response
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, "remittance validation failed", resp.Error)
	require.NotEmpty(t, resp.Problems)
	assert.Contains(t, resp.Problems[0], "Carol Diaz")
	assert.Contains(t, resp.Problems[0], "mandate")

	// Nothing was produced or marked.
	assert.Equal(t, "pending", invoiceStatus(t, inv))
	var count int
	require.NoError(t, DB.QueryRow("SELECT COUNT(*) FROM remittances").Scan(&count))
	assert.Equal(t, 0, count)
}

func TestCreateRemittance_NoPendingCollections(t *testing.T) {
	setupTestDB(t)
	seedOrgProfile(t)

	w := postRemittance(t, nil)
	require.Equal(t, http.StatusUnprocessableEntity, w.Code)

	var resp Response
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Contains(t, resp.Error, "no pending collections")
}

func TestCreateRemittance_ExplicitSelectionReportsWrongChannel(t *testing.T) {
	setupTestDB(t)
	seedOrgProfile(t)

	alice := seedClient(t, "Alice Martin", "ES7921000813610123456789", "MND-001", "2024-05-10")
	var inv int
	err := DB.QueryRow(`INSERT INTO invoices (client_id, invoice_number, amount, due_date, status, payment_method)
		VALUES (?, 'INV-1', 1000, '2025-03-01', 'pending', 'transfer') RETURNING id`, alice).Scan(&inv)
	require.NoError(t, err)

	w := postRemittance(t, RemittanceRequest{InvoiceIDs: []int{inv}})
	require.Equal(t, http.StatusUnprocessableEntity, w.Code)

	var resp Response
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	require.NotEmpty(t, resp.Problems)
	assert.Contains(t, resp.Problems[0], "not direct debit")
}
