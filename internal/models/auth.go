package models

import (
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// LoginRequest carries the credentials posted by the login form. The role
// selects which principal collection is consulted.
type LoginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
	Role     Role   `json:"role" validate:"required"`
}

// LoginResponse is the issued session.
type LoginResponse struct {
	AccessToken string    `json:"access_token"`
	ExpiresIn   int64     `json:"expires_in"`
	IssuedAt    time.Time `json:"issued_at"`
	User        Person    `json:"user"`
}

// JWTClaims is the session snapshot embedded in access tokens. It carries
// everything the role-scoped views need so no directory lookup is required
// per request.
type JWTClaims struct {
	UserID     string `json:"user_id"`
	Role       Role   `json:"role"`
	Name       string `json:"name"`
	Email      string `json:"email"`
	Department string `json:"department"`
	Specialty  string `json:"specialty"`
	jwt.RegisteredClaims
}

// Person reconstructs the principal snapshot from the claims.
func (c *JWTClaims) Person() Person {
	return Person{
		ID:         c.UserID,
		Name:       c.Name,
		Email:      c.Email,
		Department: c.Department,
		Specialty:  c.Specialty,
		Role:       c.Role,
	}
}
