package orderserver

// SignupRequest - payload for POST /auth/signup
type SignupRequest struct {
	Nome string `json:"nome"`

	Email string `json:"email"`

	Senha string `json:"senha"`
}

// LoginRequest - payload for POST /auth/login
type LoginRequest struct {
	Email string `json:"email"`

	Senha string `json:"senha"`
}

// LoginForm - OAuth2 password form for POST /auth/login-form
type LoginForm struct {
	Username string `form:"username"`

	Password string `form:"password"`
}

type UserResponse struct {
	Id int64 `json:"id"`

	Nome string `json:"nome"`

	Email string `json:"email"`

	Ativo bool `json:"ativo"`

	Admin bool `json:"admin"`
}

type TokenResponse struct {
	AccessToken string `json:"access_token"`

	RefreshToken string `json:"refresh_token,omitempty"`

	TokenType string `json:"token_type"`

	// ExpiresIn - access token lifetime in seconds
	ExpiresIn int64 `json:"expires_in"`
}

type HealthResponse struct {
	Status string `json:"status"`
}
