// Package config loads and validates application configuration.
//
// Configuration comes from environment variables read through viper, with a
// default registered for every key:
//
//	cfg, err := config.Load()
//	if err := cfg.Validate(); err != nil {
//	    // err joins every failed check
//	}
//
// # Configuration Groups
//
//   - ServerConfig: port, environment, log level, timeouts, CORS origins, timezone
//   - DatabaseConfig: SurrealDB connection settings (DB_*)
//   - JWTConfig: session key paths, issuer, lifetime (45 days by default)
//   - AuthConfig: bcrypt cost and the seed password
package config
