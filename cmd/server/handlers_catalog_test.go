package main

import (
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Simplici0/logicalc/internal/model"
)

func TestBranchCRUD(t *testing.T) {
	env := newTestEnv(t)

	rec := env.do(t, http.MethodPost, "/api/branches", map[string]string{"code": "003", "name": "Filial Recife"}, true)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	created := decodeBody[model.Branch](t, rec)
	require.NotEmpty(t, created.ID)

	rec = env.do(t, http.MethodGet, "/api/branches?q=recife", nil, true)
	require.Equal(t, http.StatusOK, rec.Code)
	list := decodeBody[struct {
		Branches []model.Branch `json:"branches"`
	}](t, rec)
	require.Len(t, list.Branches, 1)
	assert.Equal(t, "003", list.Branches[0].Code)

	rec = env.do(t, http.MethodPut, "/api/branches/"+created.ID, map[string]string{"code": "003", "name": "Filial Olinda"}, true)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "Filial Olinda", decodeBody[model.Branch](t, rec).Name)

	rec = env.do(t, http.MethodDelete, "/api/branches/"+created.ID, nil, true)
	assert.Equal(t, http.StatusNoContent, rec.Code)

	rec = env.do(t, http.MethodDelete, "/api/branches/"+created.ID, nil, true)
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, "RESOURCE_NOT_FOUND", errorCode(t, rec))
}

func TestBranchCreateRejectsInvalidBody(t *testing.T) {
	env := newTestEnv(t)

	rec := env.do(t, http.MethodPost, "/api/branches", map[string]string{"code": " ", "name": "Sem código"}, true)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "INVALID_REQUEST", errorCode(t, rec))

	rec = env.do(t, http.MethodPost, "/api/branches", map[string]string{"code": "9", "name": "X", "city": "?"}, true)
	assert.Equal(t, http.StatusBadRequest, rec.Code, "unknown fields are rejected")
}

func TestCarrierCRUD(t *testing.T) {
	env := newTestEnv(t)

	body := map[string]any{
		"name":              "Rodo Sul",
		"branchId":          "2",
		"regions":           []string{"pr", " sc "},
		"costPerKg":         1.5,
		"percentageOfValue": 0.5,
		"minFreight":        30,
		"deliveryTimeValue": 3,
		"deliveryTimeUnit":  "dias",
		"isCombined":        true,
	}
	rec := env.do(t, http.MethodPost, "/api/carriers", body, true)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	created := decodeBody[model.Carrier](t, rec)
	assert.Equal(t, []string{"PR", "SC"}, created.Regions)
	assert.True(t, created.Combined)

	rec = env.do(t, http.MethodGet, "/api/carriers?q=rodo", nil, true)
	list := decodeBody[struct {
		Carriers []model.Carrier `json:"carriers"`
	}](t, rec)
	require.Len(t, list.Carriers, 1)
	assert.Equal(t, created.ID, list.Carriers[0].ID)

	body["minFreight"] = 35
	rec = env.do(t, http.MethodPut, "/api/carriers/"+created.ID, body, true)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Equal(t, 35.0, decodeBody[model.Carrier](t, rec).MinFreight)

	rec = env.do(t, http.MethodPut, "/api/carriers/missing", body, true)
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = env.do(t, http.MethodDelete, "/api/carriers/"+created.ID, nil, true)
	assert.Equal(t, http.StatusNoContent, rec.Code)
}

func TestCarrierCreateValidation(t *testing.T) {
	env := newTestEnv(t)

	base := func() map[string]any {
		return map[string]any{
			"name":              "Rodo Sul",
			"branchId":          "1",
			"regions":           []string{"SP"},
			"costPerKg":         1.0,
			"percentageOfValue": 1.0,
			"minFreight":        10,
			"deliveryTimeValue": 1,
			"deliveryTimeUnit":  "horas",
		}
	}

	tests := []struct {
		name   string
		mutate func(map[string]any)
	}{
		{"unknown region", func(b map[string]any) { b["regions"] = []string{"XX"} }},
		{"bad delivery unit", func(b map[string]any) { b["deliveryTimeUnit"] = "semanas" }},
		{"negative cost", func(b map[string]any) { b["costPerKg"] = -1 }},
		{"unknown branch", func(b map[string]any) { b["branchId"] = "99" }},
		{"missing name", func(b map[string]any) { b["name"] = "" }},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			body := base()
			tc.mutate(body)
			rec := env.do(t, http.MethodPost, "/api/carriers", body, true)
			assert.Equal(t, http.StatusBadRequest, rec.Code, rec.Body.String())
		})
	}
}

func TestConfigGetAndUpdate(t *testing.T) {
	env := newTestEnv(t)

	rec := env.do(t, http.MethodGet, "/api/config", nil, true)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, model.DefaultCompanyName, decodeBody[model.SystemConfig](t, rec).CompanyName)

	rec = env.do(t, http.MethodPut, "/api/config", map[string]string{"companyName": "  Acme Cargas ", "logoUrl": "/logo.png"}, true)
	require.Equal(t, http.StatusOK, rec.Code)

	rec = env.do(t, http.MethodGet, "/api/config", nil, true)
	cfg := decodeBody[model.SystemConfig](t, rec)
	assert.Equal(t, "Acme Cargas", cfg.CompanyName)
	assert.Equal(t, "/logo.png", cfg.LogoURL)

	rec = env.do(t, http.MethodPut, "/api/config", map[string]string{"companyName": ""}, true)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}
