package repository

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/forgo/clubhub/api/internal/database"
	"github.com/surrealdb/surrealdb.go/pkg/models"
)

// isUniqueConstraintError checks if an error is a unique index violation
func isUniqueConstraintError(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, database.ErrDuplicate) {
		return true
	}
	errStr := err.Error()
	return strings.Contains(errStr, "unique") ||
		strings.Contains(errStr, "already contains") ||
		strings.Contains(errStr, "already exists")
}

// convertSurrealID converts a SurrealDB ID (which may be a complex object) to "table:id"
func convertSurrealID(id interface{}) string {
	switch v := id.(type) {
	case string:
		return v
	case models.RecordID:
		return fmt.Sprintf("%s:%v", v.Table, v.ID)
	case *models.RecordID:
		if v != nil {
			return fmt.Sprintf("%s:%v", v.Table, v.ID)
		}
	case map[string]interface{}:
		// {"tb": "user", "id": {"String": "demo"}} and similar
		tb, _ := v["tb"].(string)
		if tb == "" {
			tb, _ = v["Table"].(string)
		}
		idPart := ""
		if raw, ok := v["id"]; ok {
			idPart = extractIDValue(raw)
		} else if raw, ok := v["ID"]; ok {
			idPart = extractIDValue(raw)
		}
		if tb != "" && idPart != "" {
			return tb + ":" + idPart
		}
		if idPart != "" {
			return idPart
		}
	}
	return fmt.Sprintf("%v", id)
}

func extractIDValue(val interface{}) string {
	if str, ok := val.(string); ok {
		return str
	}
	if m, ok := val.(map[string]interface{}); ok {
		if s, ok := m["String"].(string); ok {
			return s
		}
	}
	return fmt.Sprintf("%v", val)
}

// normalizeValue rewrites driver-specific values (record ids, datetimes)
// into plain JSON-friendly values, recursing into maps and arrays.
func normalizeValue(v interface{}) interface{} {
	switch t := v.(type) {
	case models.RecordID, *models.RecordID:
		return convertSurrealID(t)
	case models.CustomDateTime:
		return t.Time.Format(time.RFC3339Nano)
	case *models.CustomDateTime:
		if t == nil {
			return nil
		}
		return t.Time.Format(time.RFC3339Nano)
	case time.Time:
		return t.Format(time.RFC3339Nano)
	case map[string]interface{}:
		out := make(map[string]interface{}, len(t))
		for k, val := range t {
			out[k] = normalizeValue(val)
		}
		return out
	case []interface{}:
		out := make([]interface{}, len(t))
		for i, val := range t {
			out[i] = normalizeValue(val)
		}
		return out
	}
	return v
}

// decodeRecord converts a raw record into out via a JSON round trip
func decodeRecord(raw interface{}, out interface{}) error {
	data, ok := raw.(map[string]interface{})
	if !ok {
		return errors.New("unexpected result format")
	}
	normalized := normalizeValue(data).(map[string]interface{})
	if id, ok := data["id"]; ok {
		normalized["id"] = convertSurrealID(id)
	}

	jsonBytes, err := json.Marshal(normalized)
	if err != nil {
		return err
	}
	return json.Unmarshal(jsonBytes, out)
}

// statementRecords returns the records produced by statement idx
func statementRecords(results []interface{}, idx int) []interface{} {
	if idx < 0 || idx >= len(results) {
		return nil
	}
	resp, ok := results[idx].(map[string]interface{})
	if !ok {
		return nil
	}
	if status, ok := resp["status"].(string); ok && status != "OK" {
		return nil
	}
	if records, ok := resp["result"].([]interface{}); ok {
		return records
	}
	return nil
}

// extractCount reads `count` from the first record of statement idx
// (queries of the form SELECT count() ... GROUP ALL)
func extractCount(results []interface{}, idx int) int {
	records := statementRecords(results, idx)
	if len(records) == 0 {
		return 0
	}
	if data, ok := records[0].(map[string]interface{}); ok {
		return extractCountValue(data["count"])
	}
	return 0
}

// extractCountValue converts various numeric types to int
func extractCountValue(v interface{}) int {
	switch c := v.(type) {
	case float64:
		return int(c)
	case float32:
		return int(c)
	case int:
		return c
	case int64:
		return int(c)
	case uint64:
		return int(c)
	}
	return 0
}

// getString extracts a string value from a map
func getString(m map[string]interface{}, key string) string {
	if v, ok := m[key].(string); ok {
		return v
	}
	return ""
}

// ptrToNone maps a nil pointer to NONE in SurrealQL
func ptrToNone[T any](p *T) interface{} {
	if p == nil {
		return nil
	}
	return *p
}
