// Package model defines the campus domain entities shared by every layer.
//
// # Domain Entities
//
//   - User: credential record (student, club_head or pr_council)
//   - Club: head, member set and pending join-request queue
//   - Event: scheduled club event with a capacity-bounded registrant set
//   - Message: college-wide or club-specific broadcast with read receipts
//   - Achievement: Hall of Fame record
//
// Roles, message scopes, categories and achiever types are closed string
// enums with IsValid methods so invalid values are rejected at the boundary.
//
// # Error Types
//
// RFC 9457 Problem Details are defined in errors.go. Every problem carries a
// stable string code:
//
//	{"type": "...", "title": "Conflict", "status": 409, "code": "EVENT_FULL"}
package model
