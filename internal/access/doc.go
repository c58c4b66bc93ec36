// Package access holds the authorization predicates.
//
// Every function is pure: callers load the target club (or an event's owning
// club) and pass it in. Nothing here touches a store or a request.
//
//	caller := access.Caller{UserID: claims.UserID, Role: model.Role(claims.Role)}
//	if !access.CanManageClub(caller, club) {
//	    return service.ErrAccessDenied
//	}
package access
