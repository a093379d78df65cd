package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"math"
	"mime"
	"net/http"
	"strconv"
	"strings"

	"github.com/Simplici0/logicalc/internal/apperr"
	"github.com/Simplici0/logicalc/internal/store"
)

const maxBodyBytes = 1 << 20

type errorBody struct {
	Error errorPayload `json:"error"`
}

type errorPayload struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	Details string `json:"details,omitempty"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeErrorJSON(w http.ResponseWriter, status int, code, message, details string) {
	writeJSON(w, status, errorBody{Error: errorPayload{Code: code, Message: message, Details: details}})
}

// writeError renders err as {"error": {...}}. Errors that are not
// StandardErrors are logged and hidden behind a generic 500.
func (s *server) writeError(w http.ResponseWriter, r *http.Request, err error) {
	se, ok := apperr.As(err)
	if !ok {
		s.log.WithError(err).Error("unhandled request error", map[string]interface{}{"path": r.URL.Path})
		writeErrorJSON(w, http.StatusInternalServerError, string(apperr.ErrCodeInternal), "internal error", "")
		return
	}
	status := apperr.HTTPStatus(se)
	if status >= http.StatusInternalServerError {
		s.log.WithError(err).Error("request failed", map[string]interface{}{"path": r.URL.Path, "code": se.Code})
	}
	writeErrorJSON(w, status, string(se.Code), se.Message, se.Details)
}

// storeError translates repository sentinels into StandardErrors.
func storeError(kind, id, op string, err error) error {
	switch {
	case errors.Is(err, store.ErrNotFound):
		return apperr.NewNotFoundError(kind, id)
	case errors.Is(err, store.ErrDuplicate):
		return apperr.NewDuplicateError(kind, id)
	default:
		return apperr.NewPersistenceError(op, err)
	}
}

func decodeJSON(r *http.Request, dst any) error {
	dec := json.NewDecoder(io.LimitReader(r.Body, maxBodyBytes))
	dec.DisallowUnknownFields()
	if err := dec.Decode(dst); err != nil {
		return apperr.NewInvalidRequestError(fmt.Sprintf("invalid JSON body: %v", err))
	}
	return nil
}

func isFormRequest(r *http.Request) bool {
	mt, _, err := mime.ParseMediaType(r.Header.Get("Content-Type"))
	return err == nil && (mt == "application/x-www-form-urlencoded" || mt == "multipart/form-data")
}

// parseDecimal accepts both "1234.56" and the Brazilian "1.234,56".
func parseDecimal(raw string) (float64, error) {
	raw = strings.TrimSpace(raw)
	if strings.Contains(raw, ",") {
		raw = strings.ReplaceAll(raw, ".", "")
		raw = strings.ReplaceAll(raw, ",", ".")
	}
	return strconv.ParseFloat(raw, 64)
}

func parsePositiveFloat(raw, field string) (float64, error) {
	value, err := parseDecimal(raw)
	if err != nil {
		return 0, fmt.Errorf("%s deve ser numérico", field)
	}
	if math.IsNaN(value) || math.IsInf(value, 0) {
		return 0, fmt.Errorf("%s deve ser um número finito", field)
	}
	if value <= 0 {
		return 0, fmt.Errorf("%s deve ser maior que 0", field)
	}
	return value, nil
}
