package auth

import "github.com/agrogas/agrogas-backend/internal/users"

// RegisterRequest is the sign-up payload. Location is the only optional field.
type RegisterRequest struct {
	Name     string  `json:"name" validate:"required"`
	Role     string  `json:"role" validate:"required"`
	Phone    string  `json:"phone" validate:"required"`
	Location *string `json:"location,omitempty"`
	Password string  `json:"password" validate:"required"`
}

// LoginRequest captures the user credentials sent to the login endpoint.
type LoginRequest struct {
	Phone    string `json:"phone" validate:"required"`
	Password string `json:"password" validate:"required"`
}

// LoginResponse contains the access token and the authenticated user.
type LoginResponse struct {
	AccessToken string         `json:"access_token"`
	TokenType   string         `json:"token_type"`
	ExpiresIn   int            `json:"expires_in"`
	User        *users.UserDTO `json:"user"`
}

type UsersResponse struct {
	Count int             `json:"count"`
	Users []users.UserDTO `json:"users"`
}

type ResetRequest struct {
	Phone string `json:"phone" validate:"required"`
}

// ResetRequestResponse only carries the code outside production, where no
// SMS gateway delivers it.
type ResetRequestResponse struct {
	Message   string  `json:"message"`
	ResetCode *string `json:"reset_code,omitempty"`
}

type ResetConfirmRequest struct {
	Phone       string `json:"phone" validate:"required"`
	Code        string `json:"code" validate:"required"`
	NewPassword string `json:"new_password" validate:"required"`
}
