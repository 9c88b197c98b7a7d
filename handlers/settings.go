package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/subtrackhq/subtrack/models"
)

// Settings keys for the organization profile.
const (
	settingCompanyName      = "company_name"
	settingLegalName        = "legal_name"
	settingTaxID            = "tax_id"
	settingIBAN             = "iban"
	settingBIC              = "bic"
	settingCreditorSchemeID = "creditor_scheme_id"
)

// loadOrgProfile reads the organization profile from the settings rows.
// Missing keys come back as empty strings.
func loadOrgProfile() (models.OrgProfile, error) {
	rows, err := DB.Query("SELECT key, value FROM settings")
	if err != nil {
		return models.OrgProfile{}, err
	}
	defer rows.Close()

	var p models.OrgProfile
	for rows.Next() {
		var key, value string
		if err := rows.Scan(&key, &value); err != nil {
			return models.OrgProfile{}, err
		}
		switch key {
		case settingCompanyName:
			p.CompanyName = value
		case settingLegalName:
			p.LegalName = value
		case settingTaxID:
			p.TaxID = value
		case settingIBAN:
			p.IBAN = value
		case settingBIC:
			p.BIC = value
		case settingCreditorSchemeID:
			p.CreditorSchemeID = value
		}
	}
	return p, rows.Err()
}

// GetSettings retrieves the organization profile
// @Summary      Get settings
// @Description  Get the organization profile, including the SEPA creditor fields.
// @Tags         settings
// @Produce      json
// @Success      200  {object}  Response{data=models.OrgProfile}
// @Router       /settings [get]
// @Security     BasicAuth
func GetSettings(w http.ResponseWriter, r *http.Request) {
	p, err := loadOrgProfile()
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, p)
}

// UpdateSettings updates the organization profile
// @Summary      Update settings
// @Description  Update the organization profile. The creditor scheme id and IBAN are required before remittances can be generated.
// @Tags         settings
// @Accept       json
// @Produce      json
// @Param        settings  body      models.OrgProfile  true  "Organization profile"
// @Success      200       {object}  Response{data=models.OrgProfile}
// @Failure      400       {object}  Response{error=string}
// @Router       /settings [put]
// @Security     BasicAuth
func UpdateSettings(w http.ResponseWriter, r *http.Request) {
	var input models.OrgProfile
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON")
		return
	}
	if msg := input.Validate(); msg != "" {
		writeError(w, http.StatusBadRequest, msg)
		return
	}

	values := map[string]string{
		settingCompanyName:      input.CompanyName,
		settingLegalName:        input.LegalName,
		settingTaxID:            input.TaxID,
		settingIBAN:             input.IBAN,
		settingBIC:              input.BIC,
		settingCreditorSchemeID: input.CreditorSchemeID,
	}
	// All six keys are written in one transaction so the profile is never
	// left half updated.
	tx, err := DB.Begin()
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	defer tx.Rollback()
	for key, value := range values {
		if _, err := tx.Exec(`INSERT INTO settings (key, value) VALUES (?, ?)
			ON CONFLICT(key) DO UPDATE SET value = excluded.value`, key, value); err != nil {
			writeError(w, http.StatusInternalServerError, err.Error())
			return
		}
	}
	if err := tx.Commit(); err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}

	p, err := loadOrgProfile()
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, p)
}
