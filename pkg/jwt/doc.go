// Package jwt issues and verifies RS256 session tokens.
//
// A session token is a signed identity assertion carrying the user id, role
// and login identity (name, roll number or club name). Tokens are stateless;
// the default lifetime is 45 days.
//
//	svc, err := jwt.NewService(jwt.Config{
//	    PrivateKeyPath: "./keys/private.pem",
//	    PublicKeyPath:  "./keys/public.pem",
//	    Issuer:         "clubhub",
//	    ExpirationMins: 64800,
//	})
//
//	token, err := svc.Sign(jwt.Claims{UserID: user.ID, Role: "student"})
//	claims, err := svc.Validate(token)
//
// Validate returns ErrTokenExpired for expired tokens and ErrInvalidToken or
// ErrInvalidSignature for anything malformed, forged or from another issuer.
package jwt
