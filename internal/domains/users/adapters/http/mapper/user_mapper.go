package mapper

import (
	"time"

	userdomain "github.com/Apurer/go-gin-order-api/internal/domains/users/domain"
	userports "github.com/Apurer/go-gin-order-api/internal/domains/users/ports"
)

// User represents the transport-level user payload. The password digest never leaves the domain.
type User struct {
	ID     int64
	Name   string
	Email  string
	Active bool
	Admin  bool
}

// SignupRequest is the transport-level registration payload.
type SignupRequest struct {
	Name     string
	Email    string
	Password string
}

// Tokens is the transport-level login/refresh response.
type Tokens struct {
	AccessToken  string
	RefreshToken string
	TokenType    string
	ExpiresIn    int64
}

// ToSignupInput converts a registration payload into the service input.
func ToSignupInput(req SignupRequest) userports.SignupInput {
	return userports.SignupInput{Name: req.Name, Email: req.Email, Password: req.Password}
}

// FromDomainUser converts a domain user into a transport representation.
func FromDomainUser(user *userdomain.User) User {
	if user == nil {
		return User{}
	}
	return User{
		ID:     user.ID,
		Name:   user.Name,
		Email:  user.Email,
		Active: user.Active,
		Admin:  user.Admin,
	}
}

// FromTokenPair converts a token pair into the bearer response; ExpiresIn is in seconds from now.
func FromTokenPair(pair *userports.TokenPair, now time.Time) Tokens {
	if pair == nil {
		return Tokens{}
	}
	expiresIn := int64(pair.AccessExpiresAt.Sub(now).Round(time.Second) / time.Second)
	if expiresIn < 0 {
		expiresIn = 0
	}
	return Tokens{
		AccessToken:  pair.AccessToken,
		RefreshToken: pair.RefreshToken,
		TokenType:    "Bearer",
		ExpiresIn:    expiresIn,
	}
}
