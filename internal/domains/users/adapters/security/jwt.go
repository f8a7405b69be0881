package security

import (
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"github.com/Apurer/go-gin-order-api/internal/domains/users/ports"
)

var _ ports.TokenIssuer = (*JWTIssuer)(nil)

// DefaultIssuer is written to the iss claim when none is configured.
const DefaultIssuer = "pedidos-api"

// JWTIssuer signs HS256 tokens. The token kind travels in its own claim so a
// refresh token is never accepted where an access token is expected.
type JWTIssuer struct {
	secret []byte
	issuer string
	now    func() time.Time
}

type JWTOption func(*JWTIssuer)

// WithIssuer sets the iss claim written and required by the issuer.
func WithIssuer(issuer string) JWTOption {
	return func(i *JWTIssuer) {
		if issuer != "" {
			i.issuer = issuer
		}
	}
}

// WithClock replaces time.Now, mostly for tests.
func WithClock(now func() time.Time) JWTOption {
	return func(i *JWTIssuer) {
		if now != nil {
			i.now = now
		}
	}
}

func NewJWTIssuer(secret []byte, opts ...JWTOption) (*JWTIssuer, error) {
	if len(secret) == 0 {
		return nil, errors.New("jwt secret is empty")
	}
	i := &JWTIssuer{secret: secret, issuer: DefaultIssuer, now: time.Now}
	for _, opt := range opts {
		if opt != nil {
			opt(i)
		}
	}
	return i, nil
}

type tokenClaims struct {
	Kind string `json:"token_type"`
	jwt.RegisteredClaims
}

func (i *JWTIssuer) Issue(userID int64, kind ports.TokenKind, ttl time.Duration) (ports.Token, error) {
	if userID <= 0 {
		return ports.Token{}, fmt.Errorf("cannot issue token for user %d", userID)
	}
	if ttl <= 0 {
		return ports.Token{}, errors.New("token ttl must be positive")
	}
	now := i.now().Truncate(time.Second)
	claims := tokenClaims{
		Kind: string(kind),
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        uuid.NewString(),
			Issuer:    i.issuer,
			Subject:   strconv.FormatInt(userID, 10),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(i.secret)
	if err != nil {
		return ports.Token{}, err
	}
	return ports.Token{
		ID:        claims.ID,
		Value:     signed,
		Kind:      kind,
		UserID:    userID,
		IssuedAt:  now,
		ExpiresAt: now.Add(ttl),
	}, nil
}

func (i *JWTIssuer) Verify(value string, kind ports.TokenKind) (ports.Token, error) {
	var claims tokenClaims
	_, err := jwt.ParseWithClaims(value, &claims,
		func(*jwt.Token) (any, error) { return i.secret, nil },
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithIssuer(i.issuer),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(i.now),
	)
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return ports.Token{}, ports.ErrTokenExpired
		}
		return ports.Token{}, fmt.Errorf("%w: %w", ports.ErrInvalidToken, err)
	}
	if claims.Kind != string(kind) {
		return ports.Token{}, fmt.Errorf("%w: expected %s token", ports.ErrInvalidToken, kind)
	}
	userID, err := strconv.ParseInt(claims.Subject, 10, 64)
	if err != nil || userID <= 0 || claims.ID == "" {
		return ports.Token{}, fmt.Errorf("%w: malformed claims", ports.ErrInvalidToken)
	}
	token := ports.Token{ID: claims.ID, Value: value, Kind: kind, UserID: userID}
	if claims.IssuedAt != nil {
		token.IssuedAt = claims.IssuedAt.Time
	}
	token.ExpiresAt = claims.ExpiresAt.Time
	return token, nil
}
