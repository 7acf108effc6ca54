package models

// JWTClaims holds the claims the client reads from a bearer token. The
// client never verifies signatures; these claims are inspected only for
// proactive expiry checks and identity bootstrap.
type JWTClaims struct {
	Sub   string `json:"sub"`   // Subject (user ID)
	Email string `json:"email"` // User email
	Name  string `json:"name"`  // User name
	Exp   int64  `json:"exp"`   // Expiration time (epoch seconds)
	Iat   int64  `json:"iat"`   // Issued at
}
