package handlers

import (
	"database/sql"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/subtrackhq/subtrack/models"
)

const serviceSelectQuery = `SELECT s.id, s.name, s.description, s.price, s.period, s.created_at, s.updated_at,
		COALESCE((SELECT COUNT(*) FROM subscriptions sub WHERE sub.service_id = s.id AND sub.status = 'active'), 0)
		FROM services s`

func scanService(scanner interface{ Scan(...any) error }) (models.Service, error) {
	var s models.Service
	err := scanner.Scan(&s.ID, &s.Name, &s.Description, &s.Price, &s.Period,
		&s.CreatedAt, &s.UpdatedAt, &s.Subscribers)
	return s, err
}

func getServiceByID(id int) (models.Service, error) {
	return scanService(DB.QueryRow(serviceSelectQuery+" WHERE s.id = ?", id))
}

// ListServices lists all services
// @Summary      List services
// @Description  Get a list of all billable services.
// @Tags         services
// @Produce      json
// @Success      200  {object}  Response{data=[]models.Service}
// @Router       /services [get]
// @Security     BasicAuth
func ListServices(w http.ResponseWriter, r *http.Request) {
	rows, err := DB.Query(serviceSelectQuery + " ORDER BY s.name")
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	defer rows.Close()

	var services []models.Service
	for rows.Next() {
		s, err := scanService(rows)
		if err != nil {
			writeError(w, http.StatusInternalServerError, err.Error())
			return
		}
		services = append(services, s)
	}
	if services == nil {
		services = []models.Service{}
	}
	writeJSON(w, http.StatusOK, services)
}

// GetService retrieves a single service by ID
// @Summary      Get service
// @Description  Get details of a specific service.
// @Tags         services
// @Produce      json
// @Param        id   path      int  true  "Service ID"
// @Success      200  {object}  Response{data=models.Service}
// @Failure      404  {object}  Response{error=string}
// @Router       /services/{id} [get]
// @Security     BasicAuth
func GetService(w http.ResponseWriter, r *http.Request) {
	id, _ := strconv.Atoi(chi.URLParam(r, "id"))
	s, err := getServiceByID(id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			writeError(w, http.StatusNotFound, "service not found")
		} else {
			writeError(w, http.StatusInternalServerError, err.Error())
		}
		return
	}
	writeJSON(w, http.StatusOK, s)
}

// CreateService creates a new service
// @Summary      Create service
// @Description  Create a new billable service.
// @Tags         services
// @Accept       json
// @Produce      json
// @Param        service  body      models.ServiceInput  true  "Service contents"
// @Success      201      {object}  Response{data=models.Service}
// @Failure      400      {object}  Response{error=string}
// @Router       /services [post]
// @Security     BasicAuth
func CreateService(w http.ResponseWriter, r *http.Request) {
	var input models.ServiceInput
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON")
		return
	}
	if msg := input.Validate(); msg != "" {
		writeError(w, http.StatusBadRequest, msg)
		return
	}

	var id int
	err := DB.QueryRow(`INSERT INTO services (name, description, price, period)
		VALUES (?, ?, ?, ?) RETURNING id`,
		input.Name, input.Description, input.Price, input.Period).Scan(&id)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}

	s, err := getServiceByID(id)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to re-fetch created service: "+err.Error())
		return
	}
	writeJSON(w, http.StatusCreated, s)
}

// UpdateService updates an existing service
// @Summary      Update service
// @Description  Update details of an existing service.
// @Tags         services
// @Accept       json
// @Produce      json
// @Param        id       path      int                  true  "Service ID"
// @Param        service  body      models.ServiceInput  true  "Updated service contents"
// @Success      200      {object}  Response{data=models.Service}
// @Failure      400      {object}  Response{error=string}
// @Failure      404      {object}  Response{error=string}
// @Router       /services/{id} [put]
// @Security     BasicAuth
func UpdateService(w http.ResponseWriter, r *http.Request) {
	id, _ := strconv.Atoi(chi.URLParam(r, "id"))
	var input models.ServiceInput
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON")
		return
	}
	if msg := input.Validate(); msg != "" {
		writeError(w, http.StatusBadRequest, msg)
		return
	}

	res, err := DB.Exec(`UPDATE services SET name = ?, description = ?, price = ?, period = ?,
		updated_at = CURRENT_TIMESTAMP WHERE id = ?`,
		input.Name, input.Description, input.Price, input.Period, id)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	if n, _ := res.RowsAffected(); n == 0 {
		writeError(w, http.StatusNotFound, "service not found")
		return
	}
	s, err := getServiceByID(id)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to re-fetch updated service: "+err.Error())
		return
	}
	writeJSON(w, http.StatusOK, s)
}

// DeleteService deletes a service
// @Summary      Delete service
// @Description  Remove a service. Fails if subscriptions still reference it.
// @Tags         services
// @Produce      json
// @Param        id   path      int  true  "Service ID"
// @Success      200  {object}  Response{data=map[string]string}
// @Failure      404  {object}  Response{error=string}
// @Router       /services/{id} [delete]
// @Security     BasicAuth
func DeleteService(w http.ResponseWriter, r *http.Request) {
	id, _ := strconv.Atoi(chi.URLParam(r, "id"))
	res, err := DB.Exec("DELETE FROM services WHERE id = ?", id)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	if n, _ := res.RowsAffected(); n == 0 {
		writeError(w, http.StatusNotFound, "service not found")
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"message": "deleted"})
}
