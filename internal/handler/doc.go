// Package handler provides the HTTP surface of the ClubHub API.
//
// Handlers are grouped by area (auth, clubs, events, messages, hall of
// fame). Each one decodes and validates its payload, calls a service and
// maps the result onto the response envelope.
//
// # Response Format
//
//   - WriteData: single resource with optional HATEOAS links
//   - WriteCollection: list of resources, paginated for messages
//   - WriteFile: binary or text downloads (iCalendar, PNG, xlsx)
//   - WriteError: RFC 9457 Problem Details
//
// Service errors are translated in MapServiceError. Payload validation
// failures are reported as 422 with one entry per field; nested fields use
// dotted names such as "achiever.type".
//
// # Identifiers
//
// Path and query identifiers accept either a bare key ("abc123") or a full
// record id ("club:abc123"). Anything else is rejected with 400 before a
// service is called.
//
// # Routing
//
// NewRouter registers every route on a net/http ServeMux. Routes other
// than login and health require a bearer token; role restrictions are
// applied per route with middleware.RequireRole.
package handler
