package models

// User represents the authenticated user's identity as known to the
// client. It is either returned by the auth endpoints or derived from the
// claims of an externally obtained token.
type User struct {
	ID    string  `json:"id"`
	Email string  `json:"email,omitempty"`
	Name  *string `json:"name,omitempty"`
}
