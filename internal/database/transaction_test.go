package database

import (
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTxBuilder_NamespacesVariables(t *testing.T) {
	tb := NewTxBuilder()

	first := tb.Add("UPDATE type::record($club_id) SET members -= $user_id", map[string]interface{}{
		"club_id": "club:sail",
		"user_id": "user:john",
	})
	second := tb.Add("UPDATE type::record($user_id) SET joined_clubs -= $club", map[string]interface{}{
		"user_id": "user:john",
		"club":    "club:sail",
	})

	query, vars := tb.Build()

	require.NotEqual(t, first["user_id"], second["user_id"])
	assert.Contains(t, query, "$"+first["club_id"])
	assert.Contains(t, query, "$"+second["club"])
	assert.NotContains(t, query, "$user_id ")
	assert.Equal(t, "club:sail", vars[first["club_id"]])
	assert.Equal(t, "user:john", vars[second["user_id"]])
	assert.Len(t, vars, 4)
}

func TestTxBuilder_PrefixVariableNames(t *testing.T) {
	tb := NewTxBuilder()

	mapping := tb.Add("SELECT * FROM $club WHERE id = $club_id", map[string]interface{}{
		"club":    "a",
		"club_id": "b",
	})
	query, vars := tb.Build()

	assert.Contains(t, query, "$"+mapping["club"]+" ")
	assert.Contains(t, query, "$"+mapping["club_id"])
	assert.Equal(t, "a", vars[mapping["club"]])
	assert.Equal(t, "b", vars[mapping["club_id"]])
}

func TestTxBuilder_BuildWrapsInTransaction(t *testing.T) {
	tb := NewTxBuilder()
	tb.AddRaw("LET $updated = (SELECT * FROM club)")
	tb.AbortIfEmpty("$updated")

	query, _ := tb.Build()

	assert.True(t, strings.HasPrefix(query, "BEGIN TRANSACTION;"))
	assert.True(t, strings.HasSuffix(query, "COMMIT TRANSACTION;"))
	assert.Contains(t, query, `THROW "`+AbortMarker+`"`)
	assert.Equal(t, 2, tb.Len())
}

func TestTxBuilder_EmptyBuild(t *testing.T) {
	query, vars := NewTxBuilder().Build()

	assert.Empty(t, query)
	assert.Nil(t, vars)
}

func TestClassifyQueryError(t *testing.T) {
	tests := []struct {
		msg  string
		want error
	}{
		{"An error occurred: " + AbortMarker, ErrConditionFailed},
		{"Database index `club_name` already contains 'SAIL'", ErrDuplicate},
		{"Parse error", ErrQuery},
		{"", ErrQuery},
	}

	for _, tt := range tests {
		assert.True(t, errors.Is(classifyQueryError(tt.msg), tt.want), "msg %q", tt.msg)
	}
}

func TestFirstRecord(t *testing.T) {
	_, err := FirstRecord(nil)
	assert.ErrorIs(t, err, ErrNotFound)

	_, err = FirstRecord([]interface{}{map[string]interface{}{"status": "OK", "result": []interface{}{}}})
	assert.ErrorIs(t, err, ErrNotFound)

	rec, err := FirstRecord([]interface{}{map[string]interface{}{
		"status": "OK",
		"result": []interface{}{map[string]interface{}{"name": "SAIL"}},
	}})
	require.NoError(t, err)
	assert.Equal(t, "SAIL", rec.(map[string]interface{})["name"])
}
