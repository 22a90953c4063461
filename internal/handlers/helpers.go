package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/bobmcallan/vire-backtest/internal/client"
	"github.com/bobmcallan/vire-backtest/internal/workspace"
)

// RequireMethod reports whether r uses method, writing a 405 otherwise.
// HEAD is accepted wherever GET is.
func RequireMethod(w http.ResponseWriter, r *http.Request, method string) bool {
	if r.Method == method || (method == http.MethodGet && r.Method == http.MethodHead) {
		return true
	}
	MethodNotAllowed(w, r, method)
	return false
}

// MethodNotAllowed writes a 405 JSON error with an Allow header.
func MethodNotAllowed(w http.ResponseWriter, r *http.Request, allowed ...string) {
	w.Header().Set("Allow", strings.Join(allowed, ", "))
	WriteJSON(w, http.StatusMethodNotAllowed, map[string]string{
		"status": "error",
		"error":  r.Method + " not allowed on " + r.URL.Path,
		"kind":   KindValidation,
	})
}

// WriteJSON writes a JSON response with the specified status code and data.
func WriteJSON(w http.ResponseWriter, statusCode int, data interface{}) error {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	return json.NewEncoder(w).Encode(data)
}

// WriteError writes a standard error JSON response.
func WriteError(w http.ResponseWriter, statusCode int, message string) error {
	return WriteJSON(w, statusCode, map[string]string{
		"status": "error",
		"error":  message,
	})
}

// Error kinds reported to clients.
const (
	KindValidation  = "validation"
	KindCapacity    = "capacity"
	KindBusy        = "busy"
	KindNotFound    = "not_found"
	KindRemote      = "remote"
	KindUnavailable = "unavailable"
	KindInternal    = "internal"
)

// ClassifyError maps a workspace or engine error to an HTTP status and kind.
func ClassifyError(err error) (int, string) {
	var ve *workspace.ValidationError
	var ce *workspace.CapacityError
	var re *client.RemoteError
	switch {
	case errors.As(err, &ve):
		return http.StatusBadRequest, KindValidation
	case errors.As(err, &ce):
		return http.StatusConflict, KindCapacity
	case errors.Is(err, workspace.ErrBusy):
		return http.StatusConflict, KindBusy
	case errors.Is(err, workspace.ErrPortfolioNotFound):
		return http.StatusNotFound, KindNotFound
	case errors.As(err, &re):
		return http.StatusBadGateway, KindRemote
	case errors.Is(err, workspace.ErrStoreClosed), errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return http.StatusServiceUnavailable, KindUnavailable
	}
	return http.StatusInternalServerError, KindInternal
}

// WriteDomainError writes err with its classified status and kind.
func WriteDomainError(w http.ResponseWriter, err error) error {
	status, kind := ClassifyError(err)
	return WriteJSON(w, status, map[string]string{
		"status": "error",
		"error":  err.Error(),
		"kind":   kind,
	})
}

// DecodeJSON reads a JSON request body into v.
func DecodeJSON(r *http.Request, v interface{}) error {
	if r.Body == nil {
		return errors.New("request body required")
	}
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(v); err != nil {
		return fmt.Errorf("invalid JSON body: %w", err)
	}
	return nil
}

// DecodeOptionalJSON is DecodeJSON for endpoints whose body may be absent.
func DecodeOptionalJSON(r *http.Request, v interface{}) error {
	if r.Body == nil || r.ContentLength == 0 {
		return nil
	}
	if err := DecodeJSON(r, v); err != nil && !errors.Is(err, io.EOF) {
		return err
	}
	return nil
}
