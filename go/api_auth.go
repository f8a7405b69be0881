package orderserver

import (
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	orderdomain "github.com/Apurer/go-gin-order-api/internal/domains/orders/domain"
	userhttpmapper "github.com/Apurer/go-gin-order-api/internal/domains/users/adapters/http/mapper"
	userports "github.com/Apurer/go-gin-order-api/internal/domains/users/ports"
)

const actorContextKey = "orderserver.actor"

var errMissingBearer = errors.New("missing bearer token")

// AuthAPI serves the /auth routes and authenticates bearer tokens for the order routes.
type AuthAPI struct {
	service userports.Service
	now     func() time.Time
}

// NewAuthAPI creates an AuthAPI backed by the users service.
func NewAuthAPI(service userports.Service) AuthAPI {
	return AuthAPI{service: service, now: time.Now}
}

// Post /auth/signup
// Registers a new account
func (api *AuthAPI) Signup(c *gin.Context) {
	var payload SignupRequest
	if err := c.ShouldBindJSON(&payload); err != nil {
		respondBadRequest(c, err)
		return
	}
	user, err := api.service.Signup(c.Request.Context(), userhttpmapper.ToSignupInput(userhttpmapper.SignupRequest{
		Name:     payload.Nome,
		Email:    payload.Email,
		Password: payload.Senha,
	}))
	if err != nil {
		respondServiceError(c, err)
		return
	}
	c.JSON(http.StatusCreated, fromTransportUser(userhttpmapper.FromDomainUser(user)))
}

// Post /auth/login
// Exchanges credentials for an access and a refresh token
func (api *AuthAPI) Login(c *gin.Context) {
	var payload LoginRequest
	if err := c.ShouldBindJSON(&payload); err != nil {
		respondBadRequest(c, err)
		return
	}
	api.login(c, payload.Email, payload.Senha)
}

// Post /auth/login-form
// OAuth2 password flow variant of login
func (api *AuthAPI) LoginForm(c *gin.Context) {
	var form LoginForm
	if err := c.ShouldBind(&form); err != nil {
		respondBadRequest(c, err)
		return
	}
	api.login(c, form.Username, form.Password)
}

func (api *AuthAPI) login(c *gin.Context, email, password string) {
	pair, err := api.service.Login(c.Request.Context(), email, password)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, fromTransportTokens(userhttpmapper.FromTokenPair(pair, api.now())))
}

// Get /auth/refresh
// Issues a new access token for the refresh token sent as bearer
func (api *AuthAPI) Refresh(c *gin.Context) {
	token, ok := bearerToken(c)
	if !ok {
		respondUnauthenticated(c, errMissingBearer)
		return
	}
	pair, err := api.service.Refresh(c.Request.Context(), token)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, fromTransportTokens(userhttpmapper.FromTokenPair(pair, api.now())))
}

// RequireBearer rejects requests without a valid access token.
func (api *AuthAPI) RequireBearer() gin.HandlerFunc {
	return func(c *gin.Context) {
		token, ok := bearerToken(c)
		if !ok {
			respondUnauthenticated(c, errMissingBearer)
			c.Abort()
			return
		}
		if !api.authenticate(c, token) {
			c.Abort()
			return
		}
		c.Next()
	}
}

// OptionalBearer authenticates the caller when a token is present. An
// invalid token is still rejected.
func (api *AuthAPI) OptionalBearer() gin.HandlerFunc {
	return func(c *gin.Context) {
		token, ok := bearerToken(c)
		if ok && !api.authenticate(c, token) {
			c.Abort()
			return
		}
		c.Next()
	}
}

func (api *AuthAPI) authenticate(c *gin.Context, token string) bool {
	user, err := api.service.Authenticate(c.Request.Context(), token)
	if err != nil {
		respondServiceError(c, err)
		return false
	}
	c.Set(actorContextKey, orderdomain.Actor{UserID: user.ID, Admin: user.Admin})
	return true
}

// actorFrom returns the authenticated actor stored by the bearer middleware.
func actorFrom(c *gin.Context) (orderdomain.Actor, bool) {
	value, ok := c.Get(actorContextKey)
	if !ok {
		return orderdomain.Actor{}, false
	}
	actor, ok := value.(orderdomain.Actor)
	return actor, ok
}

func bearerToken(c *gin.Context) (string, bool) {
	header := strings.TrimSpace(c.GetHeader("Authorization"))
	scheme, token, found := strings.Cut(header, " ")
	if !found || !strings.EqualFold(scheme, "Bearer") {
		return "", false
	}
	token = strings.TrimSpace(token)
	return token, token != ""
}

func fromTransportUser(user userhttpmapper.User) UserResponse {
	return UserResponse{
		Id:    user.ID,
		Nome:  user.Name,
		Email: user.Email,
		Ativo: user.Active,
		Admin: user.Admin,
	}
}

func fromTransportTokens(tokens userhttpmapper.Tokens) TokenResponse {
	return TokenResponse{
		AccessToken:  tokens.AccessToken,
		RefreshToken: tokens.RefreshToken,
		TokenType:    tokens.TokenType,
		ExpiresIn:    tokens.ExpiresIn,
	}
}
