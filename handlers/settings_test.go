package handlers

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/subtrackhq/subtrack/models"
)

func putSettings(t *testing.T, profile models.OrgProfile) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	require.NoError(t, json.NewEncoder(&buf).Encode(profile))
	req := httptest.NewRequest(http.MethodPut, "/api/v1/settings", &buf)
	w := httptest.NewRecorder()
	UpdateSettings(w, req)
	return w
}

func TestUpdateSettings_WritesWholeProfile(t *testing.T) {
	setupTestDB(t)

	profile := models.OrgProfile{
		CompanyName:      "Acme Subscriptions",
		LegalName:        "Acme Subscriptions SL",
		TaxID:            "B12345678",
		IBAN:             "ES9121000418450200051332",
		BIC:              "CAIXESBBXXX",
		CreditorSchemeID: "ES50000B12345678",
	}
	w := putSettings(t, profile)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	got, err := loadOrgProfile()
	require.NoError(t, err)
	assert.Equal(t, profile, got)

	// A second update replaces every key, including ones set to empty.
	profile.BIC = ""
	profile.CompanyName = "Acme"
	w = putSettings(t, profile)
	require.Equal(t, http.StatusOK, w.Code)

	got, err = loadOrgProfile()
	require.NoError(t, err)
	assert.Equal(t, profile, got)
}

func TestUpdateSettings_RejectsBadSchemeID(t *testing.T) {
	setupTestDB(t)

	w := putSettings(t, models.OrgProfile{CreditorSchemeID: "nonsense"})
	require.Equal(t, http.StatusBadRequest, w.Code)

	// Nothing was written.
	got, err := loadOrgProfile()
	require.NoError(t, err)
	assert.Equal(t, models.OrgProfile{}, got)
}
