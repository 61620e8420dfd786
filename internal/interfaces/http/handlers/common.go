// Package handlers implements the HTTP endpoints of the structure library.
package handlers

import (
	"encoding/json"
	"io"
	"net/http"
	"strconv"

	"github.com/turtacn/ChemGraph/internal/infrastructure/monitoring/logging"
	"github.com/turtacn/ChemGraph/pkg/errors"
)

const (
	defaultLimit = 20
	maxLimit     = 200
)

// parsePagination reads limit and offset, ignoring malformed values.
func parsePagination(r *http.Request) (limit, offset int) {
	limit = defaultLimit
	q := r.URL.Query()
	if v, err := strconv.Atoi(q.Get("limit")); err == nil && v > 0 {
		limit = v
		if limit > maxLimit {
			limit = maxLimit
		}
	}
	if v, err := strconv.Atoi(q.Get("offset")); err == nil && v >= 0 {
		offset = v
	}
	return limit, offset
}

// readBody reads at most max bytes of the request body; zero means no limit.
func readBody(w http.ResponseWriter, r *http.Request, max int64) ([]byte, error) {
	body := r.Body
	if max > 0 {
		body = http.MaxBytesReader(w, r.Body, max)
	}
	data, err := io.ReadAll(body)
	if err != nil {
		var tooBig *http.MaxBytesError
		if errors.As(err, &tooBig) {
			return nil, errors.InvalidParam("request body too large").WithDetailf("limit %d bytes", max)
		}
		return nil, errors.InvalidParam("cannot read request body").WithCause(err)
	}
	return data, nil
}

func writeJSON(w http.ResponseWriter, statusCode int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	if data != nil {
		_ = json.NewEncoder(w).Encode(data)
	}
}

// ErrorResponse is the body of every failed request.
type ErrorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	Detail  string `json:"detail,omitempty"`
}

// writeAppError maps err to a status through its code. Server-side failures
// are logged and answered with the code's generic message only.
func writeAppError(w http.ResponseWriter, logger logging.Logger, err error) {
	code := errors.GetCode(err)
	status := errors.HTTPStatusForCode(code)
	resp := ErrorResponse{Code: string(code), Message: err.Error()}

	var ae *errors.AppError
	if errors.As(err, &ae) {
		resp.Message = ae.Message
		resp.Detail = ae.Detail
	}
	if status >= http.StatusInternalServerError {
		logger.Error("request failed", logging.String("code", string(code)), logging.Err(err))
		resp.Message = errors.DefaultMessageForCode(code)
		resp.Detail = ""
	}
	writeJSON(w, status, resp)
}

//Personal.AI order the ending
