package models

// SessionClaims represents the claims carried in a locally issued session token.
type SessionClaims struct {
	Sub   string `json:"sub"`   // User ID
	Email string `json:"email"` // User email
	Name  string `json:"name"`  // Display name
	Exp   int64  `json:"exp"`   // Expiration time
	Iat   int64  `json:"iat"`   // Issued at
	Iss   string `json:"iss"`   // Issuer
}
