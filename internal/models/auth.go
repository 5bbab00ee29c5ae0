package models

// LoginRequest is the admin dashboard login payload
type LoginRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

// SessionResponse describes the authenticated admin session
type SessionResponse struct {
	Email     string `json:"email"`
	Name      string `json:"name,omitempty"`
	ExpiresIn int64  `json:"expiresIn"`
}

// AdminSession is the validated session stored in request context by
// the session middleware
type AdminSession struct {
	Email     string `json:"email"`
	Name      string `json:"name,omitempty"`
	ExpiresAt int64  `json:"expiresAt"`
	IssuedAt  int64  `json:"issuedAt"`
}
