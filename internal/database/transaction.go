package database

// Transactions here are batch based: statements accumulate in a TxBuilder
// and run together inside BEGIN/COMMIT TRANSACTION when executed. Guarded
// transactions LET the result of a conditional UPDATE and THROW AbortMarker
// when it matched nothing, which rolls back every statement in the batch.

import (
	"context"
	"fmt"
	"sort"
	"strings"
)

// TxBuilder builds atomic transaction queries with automatic variable namespacing.
// Two statements both using $user_id get rewritten to $v1_user_id and $v2_user_id.
type TxBuilder struct {
	statements []string
	vars       map[string]interface{}
	varCounter int
}

// NewTxBuilder creates a new transaction builder
func NewTxBuilder() *TxBuilder {
	return &TxBuilder{
		statements: make([]string, 0),
		vars:       make(map[string]interface{}),
	}
}

// Add adds a statement, namespacing its variables. The returned map gives the
// rewritten name of each variable.
func (tb *TxBuilder) Add(query string, vars map[string]interface{}) map[string]string {
	varMapping := make(map[string]string, len(vars))
	newQuery := query

	// Longest names first so $club never clobbers $club_id
	names := make([]string, 0, len(vars))
	for name := range vars {
		names = append(names, name)
	}
	sort.Slice(names, func(i, j int) bool { return len(names[i]) > len(names[j]) })

	for _, varName := range names {
		tb.varCounter++
		newVarName := fmt.Sprintf("v%d_%s", tb.varCounter, varName)
		newQuery = strings.ReplaceAll(newQuery, "$"+varName, "$"+newVarName)
		tb.vars[newVarName] = vars[varName]
		varMapping[varName] = newVarName
	}

	tb.statements = append(tb.statements, newQuery)
	return varMapping
}

// AddRaw adds a raw statement without variable substitution
func (tb *TxBuilder) AddRaw(query string) {
	tb.statements = append(tb.statements, query)
}

// AbortIfEmpty aborts the transaction when the LET-bound array param is empty
func (tb *TxBuilder) AbortIfEmpty(param string) {
	tb.AddRaw(fmt.Sprintf("IF array::len(%s) == 0 { THROW %q }", param, AbortMarker))
}

// Len returns the number of statements
func (tb *TxBuilder) Len() int {
	return len(tb.statements)
}

// Build returns the complete transaction query and merged variables
func (tb *TxBuilder) Build() (string, map[string]interface{}) {
	if len(tb.statements) == 0 {
		return "", nil
	}

	var sb strings.Builder
	sb.WriteString("BEGIN TRANSACTION;\n")
	for _, stmt := range tb.statements {
		sb.WriteString(stmt)
		if !strings.HasSuffix(strings.TrimSpace(stmt), ";") {
			sb.WriteString(";")
		}
		sb.WriteString("\n")
	}
	sb.WriteString("COMMIT TRANSACTION;")

	return sb.String(), tb.vars
}

// ExecuteTransaction executes a transaction built with TxBuilder
func ExecuteTransaction(ctx context.Context, db Database, tb *TxBuilder) ([]interface{}, error) {
	query, vars := tb.Build()
	if query == "" {
		return nil, nil
	}
	return db.Query(ctx, query, vars)
}
