package handler

import (
	"net/http"
	"strings"

	"github.com/forgo/clubhub/api/internal/model"
)

// Record tables addressed from URLs and bodies
const (
	tableUser        = "user"
	tableClub        = "club"
	tableEvent       = "event"
	tableMessage     = "message"
	tableAchievement = "achievement"
)

// recordID accepts "abc" or "table:abc" and returns "table:abc"
func recordID(table, raw string) (string, bool) {
	raw = strings.TrimSpace(raw)
	key := raw
	if prefix, rest, found := strings.Cut(raw, ":"); found {
		if prefix != table {
			return "", false
		}
		key = rest
	}
	if key == "" {
		return "", false
	}
	for _, c := range key {
		if !(c == '_' || c == '-' ||
			(c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z') || (c >= '0' && c <= '9')) {
			return "", false
		}
	}
	return table + ":" + key, true
}

// pathID reads a record id path parameter, writing INVALID_REQUEST when it
// is malformed.
func pathID(w http.ResponseWriter, r *http.Request, param, table string) (string, bool) {
	id, ok := recordID(table, r.PathValue(param))
	if !ok {
		WriteError(w, model.NewBadRequestError(model.ErrCodeInvalidRequest, "invalid "+table+" id"))
	}
	return id, ok
}

// queryID reads an optional record id query parameter
func queryID(w http.ResponseWriter, r *http.Request, param, table string) (*string, bool) {
	raw := r.URL.Query().Get(param)
	if raw == "" {
		return nil, true
	}
	id, ok := recordID(table, raw)
	if !ok {
		WriteError(w, model.NewBadRequestError(model.ErrCodeInvalidRequest, "invalid "+param))
		return nil, false
	}
	return &id, true
}
