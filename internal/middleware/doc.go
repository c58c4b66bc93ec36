// Package middleware provides HTTP middleware for the ClubHub API.
//
// # Available Middleware
//
//   - RequestID: assigns or propagates X-Request-ID
//   - Logger: one structured log line per request
//   - Recovery: turns panics into a 500 problem response
//   - CORS: origin allow-list and preflight handling
//   - Compress: gzip responses when the client accepts it
//   - Auth: bearer session token verification
//   - RequireRole: role guard, run after Auth
//
// # Authentication
//
// Auth rejects requests without a valid token using the NO_TOKEN,
// TOKEN_EXPIRED, INVALID_TOKEN and USER_NOT_FOUND codes. After it runs,
// handlers read the caller from context:
//
//	caller := middleware.GetCaller(r.Context())
//
// # Context Values
//
//   - GetUserID(ctx): authenticated user ID
//   - GetClaims(ctx): verified session claims
//   - GetCaller(ctx): user ID and role for authorization checks
//   - GetRequestID(ctx): unique request identifier
package middleware
