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

// mandate_date goes through strftime so it round-trips as YYYY-MM-DD, the
// format ClientInput.Validate accepts back.
const clientSelectQuery = `SELECT c.id, c.name, c.tax_id, c.email, c.phone, c.iban, c.bic,
		c.mandate_ref, strftime('%Y-%m-%d', c.mandate_date), c.created_at, c.updated_at,
		COALESCE((SELECT COUNT(*) FROM subscriptions s WHERE s.client_id = c.id AND s.status = 'active'), 0),
		COALESCE((SELECT SUM(i.amount) FROM invoices i WHERE i.client_id = c.id AND i.status = 'pending'), 0)
		FROM clients c`

func scanClient(scanner interface{ Scan(...any) error }) (models.Client, error) {
	var c models.Client
	err := scanner.Scan(&c.ID, &c.Name, &c.TaxID, &c.Email, &c.Phone, &c.IBAN, &c.BIC,
		&c.MandateRef, &c.MandateDate, &c.CreatedAt, &c.UpdatedAt,
		&c.ActiveSubscriptions, &c.PendingAmount)
	return c, err
}

func getClientByID(id int) (models.Client, error) {
	return scanClient(DB.QueryRow(clientSelectQuery+" WHERE c.id = ?", id))
}

// ListClients lists all clients
// @Summary      List clients
// @Description  Get a list of all clients, with subscription and pending-amount info.
// @Tags         clients
// @Produce      json
// @Param        search  query     string  false  "Search by name, tax id, or email"
// @Success      200     {object}  Response{data=[]models.Client}
// @Router       /clients [get]
// @Security     BasicAuth
func ListClients(w http.ResponseWriter, r *http.Request) {
	query := clientSelectQuery
	var conditions []string
	var args []any

	if search := r.URL.Query().Get("search"); search != "" {
		conditions = append(conditions, "(c.name LIKE ? OR c.tax_id LIKE ? OR c.email LIKE ?)")
		s := "%" + search + "%"
		args = append(args, s, s, s)
	}

	if len(conditions) > 0 {
		query += " WHERE " + strings.Join(conditions, " AND ")
	}
	query += " ORDER BY c.name"

	rows, err := DB.Query(query, args...)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	defer rows.Close()

	var clients []models.Client
	for rows.Next() {
		c, err := scanClient(rows)
		if err != nil {
			writeError(w, http.StatusInternalServerError, err.Error())
			return
		}
		clients = append(clients, c)
	}
	if clients == nil {
		clients = []models.Client{}
	}
	writeJSON(w, http.StatusOK, clients)
}

// GetClient retrieves a single client by ID
// @Summary      Get client
// @Description  Get details of a specific client.
// @Tags         clients
// @Produce      json
// @Param        id   path      int  true  "Client ID"
// @Success      200  {object}  Response{data=models.Client}
// @Failure      404  {object}  Response{error=string}
// @Router       /clients/{id} [get]
// @Security     BasicAuth
func GetClient(w http.ResponseWriter, r *http.Request) {
	id, _ := strconv.Atoi(chi.URLParam(r, "id"))
	c, err := getClientByID(id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			writeError(w, http.StatusNotFound, "client not found")
		} else {
			writeError(w, http.StatusInternalServerError, err.Error())
		}
		return
	}
	writeJSON(w, http.StatusOK, c)
}

// CreateClient creates a new client
// @Summary      Create client
// @Description  Create a new client.
// @Tags         clients
// @Accept       json
// @Produce      json
// @Param        client  body      models.ClientInput  true  "Client contents"
// @Success      201     {object}  Response{data=models.Client}
// @Failure      400     {object}  Response{error=string}
// @Router       /clients [post]
// @Security     BasicAuth
func CreateClient(w http.ResponseWriter, r *http.Request) {
	var input models.ClientInput
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON")
		return
	}
	if msg := input.Validate(); msg != "" {
		writeError(w, http.StatusBadRequest, msg)
		return
	}

	var id int
	err := DB.QueryRow(`INSERT INTO clients (name, tax_id, email, phone, iban, bic, mandate_ref, mandate_date)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?) RETURNING id`,
		input.Name, input.TaxID, input.Email, input.Phone, input.IBAN, input.BIC,
		input.MandateRef, input.MandateDate).Scan(&id)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}

	c, err := getClientByID(id)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to re-fetch created client: "+err.Error())
		return
	}
	writeJSON(w, http.StatusCreated, c)
}

// UpdateClient updates an existing client
// @Summary      Update client
// @Description  Update details of an existing client.
// @Tags         clients
// @Accept       json
// @Produce      json
// @Param        id      path      int                 true  "Client ID"
// @Param        client  body      models.ClientInput  true  "Updated client contents"
// @Success      200     {object}  Response{data=models.Client}
// @Failure      400     {object}  Response{error=string}
// @Failure      404     {object}  Response{error=string}
// @Router       /clients/{id} [put]
// @Security     BasicAuth
func UpdateClient(w http.ResponseWriter, r *http.Request) {
	id, _ := strconv.Atoi(chi.URLParam(r, "id"))
	var input models.ClientInput
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON")
		return
	}
	if msg := input.Validate(); msg != "" {
		writeError(w, http.StatusBadRequest, msg)
		return
	}

	res, err := DB.Exec(`UPDATE clients SET name = ?, tax_id = ?, email = ?, phone = ?, iban = ?, bic = ?,
		mandate_ref = ?, mandate_date = ?, updated_at = CURRENT_TIMESTAMP WHERE id = ?`,
		input.Name, input.TaxID, input.Email, input.Phone, input.IBAN, input.BIC,
		input.MandateRef, input.MandateDate, id)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	if n, _ := res.RowsAffected(); n == 0 {
		writeError(w, http.StatusNotFound, "client not found")
		return
	}
	c, err := getClientByID(id)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to re-fetch updated client: "+err.Error())
		return
	}
	writeJSON(w, http.StatusOK, c)
}

// DeleteClient deletes a client
// @Summary      Delete client
// @Description  Remove a client and their subscriptions.
// @Tags         clients
// @Produce      json
// @Param        id   path      int  true  "Client ID"
// @Success      200  {object}  Response{data=map[string]string}
// @Failure      404  {object}  Response{error=string}
// @Router       /clients/{id} [delete]
// @Security     BasicAuth
func DeleteClient(w http.ResponseWriter, r *http.Request) {
	id, _ := strconv.Atoi(chi.URLParam(r, "id"))
	res, err := DB.Exec("DELETE FROM clients WHERE id = ?", id)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	if n, _ := res.RowsAffected(); n == 0 {
		writeError(w, http.StatusNotFound, "client not found")
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"message": "deleted"})
}
