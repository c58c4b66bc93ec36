// Package database provides the SurrealDB access layer.
//
// The Database interface exposes three query methods:
//   - Query: one {status, result} entry per statement
//   - QueryOne: the first record of the first statement
//   - Execute: mutations whose results are not needed
//
// # Transactions
//
// Transactions are batch based. TxBuilder accumulates statements, namespaces
// their variables and wraps them in BEGIN/COMMIT TRANSACTION. A statement
// can guard the batch with AbortIfEmpty; the resulting THROW rolls back every
// write and surfaces as ErrConditionFailed:
//
//	tb := database.NewTxBuilder()
//	tb.Add("LET $moved = (UPDATE type::record($club_id) SET ... WHERE $user_id INSIDE members RETURN AFTER)", vars)
//	tb.AbortIfEmpty("$moved")
//	tb.Add("UPDATE type::record($user_id) SET joined_clubs -= $club_id", vars)
//	_, err := database.ExecuteTransaction(ctx, db, tb)
//
// # Error Handling
//
//   - ErrNotFound: record does not exist
//   - ErrDuplicate: unique index violation
//   - ErrConnection: connection issues
//   - ErrQuery: query execution failures
//   - ErrConditionFailed: a guarded transaction aborted
package database
