package api

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/corpusdb/corpusdb/internal/errors"
)

// errorBody is the wire shape of every error response.
type errorBody struct {
	Error struct {
		Code    string `json:"code"`
		Message string `json:"message"`
	} `json:"error"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if v != nil {
		_ = json.NewEncoder(w).Encode(v)
	}
}

// writeError maps a structured error to its HTTP status. Errors without a
// CorpusError in the chain become opaque 500s.
func writeError(w http.ResponseWriter, err error) {
	var body errorBody
	status := http.StatusInternalServerError
	if ce, ok := errors.AsCorpus(err); ok {
		status = ce.HTTPStatus()
		body.Error.Code = ce.Code
		body.Error.Message = ce.Message
	} else {
		body.Error.Code = errors.ErrCodeInternal
		body.Error.Message = "internal error"
	}
	writeJSON(w, status, body)
}

// decodeBody decodes a JSON request body into v, rejecting unknown fields.
func decodeBody(r *http.Request, v any) error {
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(v); err != nil {
		return errors.ValidationError("malformed request body: " + err.Error())
	}
	return nil
}

// pageParams parses skip/limit query parameters. Unparsable values fall
// back to the defaults rather than failing the request; range clamping
// happens in the store.
func pageParams(r *http.Request) (skip, limit int) {
	if v := r.URL.Query().Get("skip"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			skip = n
		}
	}
	if v := r.URL.Query().Get("limit"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			limit = n
		}
	}
	return skip, limit
}
