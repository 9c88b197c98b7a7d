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

// start_date goes through strftime so it round-trips as YYYY-MM-DD.
const subscriptionSelectQuery = `SELECT sub.id, sub.client_id, sub.service_id,
		strftime('%Y-%m-%d', sub.start_date), sub.status,
		sub.created_at, sub.updated_at, c.name, s.name, s.price
		FROM subscriptions sub
		LEFT JOIN clients c ON sub.client_id = c.id
		LEFT JOIN services s ON sub.service_id = s.id`

func scanSubscription(scanner interface{ Scan(...any) error }) (models.Subscription, error) {
	var s models.Subscription
	err := scanner.Scan(&s.ID, &s.ClientID, &s.ServiceID, &s.StartDate, &s.Status,
		&s.CreatedAt, &s.UpdatedAt, &s.ClientName, &s.ServiceName, &s.Price)
	return s, err
}

func getSubscriptionByID(id int) (models.Subscription, error) {
	return scanSubscription(DB.QueryRow(subscriptionSelectQuery+" WHERE sub.id = ?", id))
}

// ListSubscriptions lists all subscriptions
// @Summary      List subscriptions
// @Description  Get a list of all subscriptions, optionally filtered by client, service, or status.
// @Tags         subscriptions
// @Produce      json
// @Param        client_id   query     int     false  "Filter by client"
// @Param        service_id  query     int     false  "Filter by service"
// @Param        status      query     string  false  "Filter by status"
// @Success      200         {object}  Response{data=[]models.Subscription}
// @Router       /subscriptions [get]
// @Security     BasicAuth
func ListSubscriptions(w http.ResponseWriter, r *http.Request) {
	query := subscriptionSelectQuery
	var conditions []string
	var args []any

	if cid := r.URL.Query().Get("client_id"); cid != "" {
		conditions = append(conditions, "sub.client_id = ?")
		args = append(args, cid)
	}
	if sid := r.URL.Query().Get("service_id"); sid != "" {
		conditions = append(conditions, "sub.service_id = ?")
		args = append(args, sid)
	}
	if s := r.URL.Query().Get("status"); s != "" {
		conditions = append(conditions, "sub.status = ?")
		args = append(args, s)
	}

	if len(conditions) > 0 {
		query += " WHERE " + strings.Join(conditions, " AND ")
	}
	query += " ORDER BY sub.created_at DESC"

	rows, err := DB.Query(query, args...)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	defer rows.Close()

	var subs []models.Subscription
	for rows.Next() {
		s, err := scanSubscription(rows)
		if err != nil {
			writeError(w, http.StatusInternalServerError, err.Error())
			return
		}
		subs = append(subs, s)
	}
	if subs == nil {
		subs = []models.Subscription{}
	}
	writeJSON(w, http.StatusOK, subs)
}

// GetSubscription retrieves a single subscription by ID
// @Summary      Get subscription
// @Description  Get details of a specific subscription.
// @Tags         subscriptions
// @Produce      json
// @Param        id   path      int  true  "Subscription ID"
// @Success      200  {object}  Response{data=models.Subscription}
// @Failure      404  {object}  Response{error=string}
// @Router       /subscriptions/{id} [get]
// @Security     BasicAuth
func GetSubscription(w http.ResponseWriter, r *http.Request) {
	id, _ := strconv.Atoi(chi.URLParam(r, "id"))
	s, err := getSubscriptionByID(id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			writeError(w, http.StatusNotFound, "subscription not found")
		} else {
			writeError(w, http.StatusInternalServerError, err.Error())
		}
		return
	}
	writeJSON(w, http.StatusOK, s)
}

// CreateSubscription creates a new subscription
// @Summary      Create subscription
// @Description  Subscribe a client to a service.
// @Tags         subscriptions
// @Accept       json
// @Produce      json
// @Param        subscription  body      models.SubscriptionInput  true  "Subscription contents"
// @Success      201           {object}  Response{data=models.Subscription}
// @Failure      400           {object}  Response{error=string}
// @Router       /subscriptions [post]
// @Security     BasicAuth
func CreateSubscription(w http.ResponseWriter, r *http.Request) {
	var input models.SubscriptionInput
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON")
		return
	}
	if msg := input.Validate(); msg != "" {
		writeError(w, http.StatusBadRequest, msg)
		return
	}

	var id int
	err := DB.QueryRow(`INSERT INTO subscriptions (client_id, service_id, start_date, status)
		VALUES (?, ?, ?, ?) RETURNING id`,
		input.ClientID, input.ServiceID, input.StartDate, input.Status).Scan(&id)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}

	s, err := getSubscriptionByID(id)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to re-fetch created subscription: "+err.Error())
		return
	}
	writeJSON(w, http.StatusCreated, s)
}

// UpdateSubscription updates an existing subscription
// @Summary      Update subscription
// @Description  Update details of an existing subscription.
// @Tags         subscriptions
// @Accept       json
// @Produce      json
// @Param        id            path      int                       true  "Subscription ID"
// @Param        subscription  body      models.SubscriptionInput  true  "Updated subscription contents"
// @Success      200           {object}  Response{data=models.Subscription}
// @Failure      400           {object}  Response{error=string}
// @Failure      404           {object}  Response{error=string}
// @Router       /subscriptions/{id} [put]
// @Security     BasicAuth
func UpdateSubscription(w http.ResponseWriter, r *http.Request) {
	id, _ := strconv.Atoi(chi.URLParam(r, "id"))
	var input models.SubscriptionInput
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON")
		return
	}
	if msg := input.Validate(); msg != "" {
		writeError(w, http.StatusBadRequest, msg)
		return
	}

	res, err := DB.Exec(`UPDATE subscriptions SET client_id = ?, service_id = ?, start_date = ?, status = ?,
		updated_at = CURRENT_TIMESTAMP WHERE id = ?`,
		input.ClientID, input.ServiceID, input.StartDate, input.Status, id)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	if n, _ := res.RowsAffected(); n == 0 {
		writeError(w, http.StatusNotFound, "subscription not found")
		return
	}
	s, err := getSubscriptionByID(id)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to re-fetch updated subscription: "+err.Error())
		return
	}
	writeJSON(w, http.StatusOK, s)
}

// DeleteSubscription deletes a subscription
// @Summary      Delete subscription
// @Description  Remove a subscription.
// @Tags         subscriptions
// @Produce      json
// @Param        id   path      int  true  "Subscription ID"
// @Success      200  {object}  Response{data=map[string]string}
// @Failure      404  {object}  Response{error=string}
// @Router       /subscriptions/{id} [delete]
// @Security     BasicAuth
func DeleteSubscription(w http.ResponseWriter, r *http.Request) {
	id, _ := strconv.Atoi(chi.URLParam(r, "id"))
	res, err := DB.Exec("DELETE FROM subscriptions WHERE id = ?", id)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	if n, _ := res.RowsAffected(); n == 0 {
		writeError(w, http.StatusNotFound, "subscription not found")
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"message": "deleted"})
}
