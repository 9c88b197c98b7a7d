package handlers

import (
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/shopspring/decimal"
	"github.com/subtrackhq/subtrack/models"
	"github.com/subtrackhq/subtrack/sepa"
)

// RemittanceRequest selects which invoices to remit. With no body, every
// pending direct-debit invoice is included.
type RemittanceRequest struct {
	InvoiceIDs []int  `json:"invoice_ids"`
	DueBefore  string `json:"due_before"`
}

// DATE columns are read through strftime so they arrive as YYYY-MM-DD text;
// scanned bare, the driver hands them back as time values.
const collectionSelectQuery = `SELECT i.id, i.invoice_number, i.amount,
		strftime('%Y-%m-%d', COALESCE(i.due_date, DATE('now'))),
		i.description, i.payment_method,
		strftime('%Y-%m-%d', i.period_start), strftime('%Y-%m-%d', i.period_end), s.name,
		c.id, c.name, c.tax_id, c.iban, c.bic, c.mandate_ref, strftime('%Y-%m-%d', c.mandate_date)
		FROM invoices i
		LEFT JOIN clients c ON i.client_id = c.id
		LEFT JOIN subscriptions sub ON i.subscription_id = sub.id
		LEFT JOIN services s ON sub.service_id = s.id`

// pendingCollections loads the selected pending invoices as collection items,
// together with their row ids so they can be marked remitted afterwards.
func pendingCollections(req RemittanceRequest) ([]sepa.CollectionItem, []int, error) {
	query := collectionSelectQuery + " WHERE i.status = 'pending'"
	var args []any

	if len(req.InvoiceIDs) > 0 {
		placeholders := strings.TrimSuffix(strings.Repeat("?,", len(req.InvoiceIDs)), ",")
		query += " AND i.id IN (" + placeholders + ")"
		for _, id := range req.InvoiceIDs {
			args = append(args, id)
		}
	} else {
		query += " AND i.payment_method = 'direct_debit'"
		if req.DueBefore != "" {
			query += " AND i.due_date <= ?"
			args = append(args, req.DueBefore)
		}
	}
	query += " ORDER BY i.due_date, i.id"

	rows, err := DB.Query(query, args...)
	if err != nil {
		return nil, nil, err
	}
	defer rows.Close()

	var items []sepa.CollectionItem
	var rowIDs []int
	for rows.Next() {
		var (
			id                            int
			number, dueDate, method       string
			amount                        models.Money
			descr, periodStart, periodEnd *string
			serviceName                   *string
			clientID                      *int
			clientName, taxID, iban, bic  *string
			mandateRef, mandateDate       *string
		)
		if err := rows.Scan(&id, &number, &amount, &dueDate, &descr, &method, &periodStart, &periodEnd,
			&serviceName, &clientID, &clientName, &taxID, &iban, &bic, &mandateRef, &mandateDate); err != nil {
			return nil, nil, err
		}

		item := sepa.CollectionItem{
			ID:      number,
			Amount:  amount.Decimal(),
			Channel: method,
		}
		if item.ID == "" {
			item.ID = strconv.Itoa(id)
		}
		if due, err := time.Parse("2006-01-02", dueDate); err == nil {
			item.DueDate = due
		}
		if descr != nil {
			item.Description = *descr
		}
		if serviceName != nil {
			item.ServiceName = *serviceName
		}
		item.Period = billingPeriod(periodStart, periodEnd)

		if clientID != nil {
			debtor := &sepa.Debtor{Ref: strconv.Itoa(*clientID)}
			if clientName != nil {
				debtor.Name = *clientName
			}
			if taxID != nil {
				debtor.TaxID = *taxID
			}
			if iban != nil {
				debtor.IBAN = *iban
			}
			if bic != nil {
				debtor.BIC = *bic
			}
			if mandateRef != nil && *mandateRef != "" && mandateDate != nil {
				if signed, err := time.Parse("2006-01-02", *mandateDate); err == nil {
					debtor.Mandate = &sepa.Mandate{Reference: *mandateRef, SignatureDate: signed}
				}
			}
			item.Debtor = debtor
		}

		items = append(items, item)
		rowIDs = append(rowIDs, id)
	}
	return items, rowIDs, rows.Err()
}

func billingPeriod(start, end *string) string {
	switch {
	case start != nil && end != nil:
		return *start + " - " + *end
	case start != nil:
		return *start
	default:
		return ""
	}
}

// priorCollectionCounts snapshots, per client, how many direct-debit invoices
// were already collected successfully. Computed once before sequence
// resolution so every item in the run sees the same history.
func priorCollectionCounts() (map[string]int, error) {
	rows, err := DB.Query(`SELECT client_id, COUNT(*) FROM invoices
		WHERE status = 'paid' AND payment_method = 'direct_debit' AND client_id IS NOT NULL
		GROUP BY client_id`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	prior := make(map[string]int)
	for rows.Next() {
		var clientID, count int
		if err := rows.Scan(&clientID, &count); err != nil {
			return nil, err
		}
		prior[strconv.Itoa(clientID)] = count
	}
	return prior, rows.Err()
}

// CreateRemittance generates a SEPA direct debit file
// @Summary      Generate remittance
// @Description  Generate a SEPA pain.008 direct debit file from pending direct-debit invoices. Included invoices move to 'remitted'. Responds with the XML file on success, or a 422 listing the validation problems.
// @Tags         remittances
// @Accept       json
// @Produce      xml
// @Param        request  body      RemittanceRequest  false  "Invoice selection; empty selects all pending direct-debit invoices"
// @Success      201      {string}  string  "pain.008 XML document"
// @Failure      422      {object}  Response{error=string,problems=[]string}
// @Router       /remittances [post]
// @Security     BasicAuth
func CreateRemittance(w http.ResponseWriter, r *http.Request) {
	var req RemittanceRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil && !errors.Is(err, io.EOF) {
		writeError(w, http.StatusBadRequest, "invalid JSON")
		return
	}

	profile, err := loadOrgProfile()
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	creditor, ok := sepa.CreditorFromProfile(sepa.Profile{
		TradeName: profile.CompanyName,
		LegalName: profile.LegalName,
		IBAN:      profile.IBAN,
		BIC:       profile.BIC,
		SchemeID:  profile.CreditorSchemeID,
	})
	if !ok {
		writeError(w, http.StatusUnprocessableEntity,
			"organization profile is incomplete: set iban and creditor_scheme_id in settings before generating remittances")
		return
	}

	items, rowIDs, err := pendingCollections(req)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	if len(items) == 0 {
		writeError(w, http.StatusUnprocessableEntity, "no pending collections to remit")
		return
	}

	prior, err := priorCollectionCounts()
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}

	result, err := sepa.NewGenerator().Generate(creditor, items, prior)
	if err != nil {
		// The pipeline's precondition was bypassed; nothing was emitted.
		slog.Error("remittance build failed", "error", err)
		writeError(w, http.StatusInternalServerError, "remittance build failed: "+err.Error())
		return
	}
	if len(result.Problems) > 0 {
		writeProblems(w, http.StatusUnprocessableEntity, "remittance validation failed", result.Problems)
		return
	}

	header := result.Document.CstmrDrctDbtInitn.GrpHdr
	total, err := decimal.NewFromString(header.CtrlSum)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}

	tx, err := DB.Begin()
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	defer tx.Rollback()

	var remittanceID int
	err = tx.QueryRow(`INSERT INTO remittances (message_id, file_name, tx_count, total_amount, document)
		VALUES (?, ?, ?, ?, ?) RETURNING id`,
		header.MsgId, result.File.Name, header.NbOfTxs, total.Shift(2).IntPart(),
		string(result.File.Data)).Scan(&remittanceID)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	for _, id := range rowIDs {
		if _, err := tx.Exec(`UPDATE invoices SET status = 'remitted', remittance_id = ?,
			updated_at = CURRENT_TIMESTAMP WHERE id = ?`, remittanceID, id); err != nil {
			writeError(w, http.StatusInternalServerError, err.Error())
			return
		}
	}
	if err := tx.Commit(); err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}

	slog.Info("remittance generated", "id", remittanceID, "message_id", header.MsgId,
		"transactions", header.NbOfTxs, "control_sum", header.CtrlSum)

	w.Header().Set("Content-Type", result.File.ContentType)
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", result.File.Name))
	w.Header().Set("X-Remittance-Id", strconv.Itoa(remittanceID))
	w.WriteHeader(http.StatusCreated)
	w.Write(result.File.Data)
}

// ListRemittances lists generated remittances
// @Summary      List remittances
// @Description  Get the history of generated remittance files.
// @Tags         remittances
// @Produce      json
// @Success      200  {object}  Response{data=[]models.Remittance}
// @Router       /remittances [get]
// @Security     BasicAuth
func ListRemittances(w http.ResponseWriter, r *http.Request) {
	rows, err := DB.Query(`SELECT id, message_id, file_name, tx_count, total_amount, created_at
		FROM remittances ORDER BY created_at DESC`)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	defer rows.Close()

	var remittances []models.Remittance
	for rows.Next() {
		var m models.Remittance
		if err := rows.Scan(&m.ID, &m.MessageID, &m.FileName, &m.TxCount, &m.TotalAmount, &m.CreatedAt); err != nil {
			writeError(w, http.StatusInternalServerError, err.Error())
			return
		}
		remittances = append(remittances, m)
	}
	if remittances == nil {
		remittances = []models.Remittance{}
	}
	writeJSON(w, http.StatusOK, remittances)
}

// GetRemittanceFile re-downloads a generated remittance document
// @Summary      Download remittance file
// @Description  Download the stored pain.008 document of a previously generated remittance.
// @Tags         remittances
// @Produce      xml
// @Param        id   path      int  true  "Remittance ID"
// @Success      200  {string}  string  "pain.008 XML document"
// @Failure      404  {object}  Response{error=string}
// @Router       /remittances/{id}/file [get]
// @Security     BasicAuth
func GetRemittanceFile(w http.ResponseWriter, r *http.Request) {
	id, _ := strconv.Atoi(chi.URLParam(r, "id"))

	var fileName, document string
	err := DB.QueryRow("SELECT file_name, document FROM remittances WHERE id = ?", id).Scan(&fileName, &document)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			writeError(w, http.StatusNotFound, "remittance not found")
		} else {
			writeError(w, http.StatusInternalServerError, err.Error())
		}
		return
	}

	w.Header().Set("Content-Type", "application/xml")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", fileName))
	w.Write([]byte(document))
}
