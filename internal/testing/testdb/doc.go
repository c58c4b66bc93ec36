// Package testdb provides isolated SurrealDB databases for repository tests.
//
// Each call to New connects to the server named by TEST_DB_HOST, creates a
// fresh namespace, applies every migration and removes the namespace when
// the test finishes:
//
//	func TestClubRepository(t *testing.T) {
//	    tdb := testdb.New(t)
//	    repo := repository.NewClubRepository(tdb.DB)
//	    ...
//	}
//
// Tests are skipped when TEST_DB_HOST is unset.
package testdb
