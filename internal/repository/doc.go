// Package repository implements SurrealDB persistence for users, clubs,
// events, messages and Hall of Fame records.
//
// Each repository takes a database.Database and returns model structs.
// Lookups that find nothing return (nil, nil).
//
// # Query Patterns
//
//   - Parameterized queries with $variable syntax
//   - type::record() for record ids passed as "table:key" strings
//   - Guarded writes for registrations (UPDATE ... WHERE ... RETURN AFTER)
//     and membership changes (a transaction that aborts when its
//     precondition fails)
//   - time::now() for timestamps
//
// # Example Usage
//
//	events := NewEventRepository(db)
//	ok, err := events.Register(ctx, "event:abc123", "user:xyz")
//	if err != nil {
//	    return err
//	}
//	if !ok {
//	    // full or already registered
//	}
package repository
