package jwt

import (
	"errors"
	"time"

	"github.com/DucAnhDev9421/dat-san-online-sub005/internal/domain/user"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

var (
	ErrInvalidToken = errors.New("invalid token")
	ErrExpiredToken = errors.New("token expired")
)

type Claims struct {
	UserID uuid.UUID `json:"user_id"`
	Role   string    `json:"role"`
	jwt.RegisteredClaims
}

// Service validates access tokens issued by the account service.
// GenerateToken exists for operations tooling and tests.
type Service struct {
	secretKey     []byte
	tokenDuration time.Duration
	issuer        string
	leeway        time.Duration
}

type Option func(*Service)

// WithIssuer pins the iss claim; tokens from another issuer are rejected.
func WithIssuer(issuer string) Option {
	return func(s *Service) { s.issuer = issuer }
}

// WithLeeway tolerates clock skew between the account service and this one.
func WithLeeway(d time.Duration) Option {
	return func(s *Service) { s.leeway = d }
}

func NewService(secretKey string, tokenDuration time.Duration, opts ...Option) *Service {
	s := &Service{
		secretKey:     []byte(secretKey),
		tokenDuration: tokenDuration,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *Service) GenerateToken(userID uuid.UUID, role user.Role) (string, error) {
	now := time.Now()
	claims := Claims{
		UserID: userID,
		Role:   role.String(),
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   userID.String(),
			Issuer:    s.issuer,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(s.tokenDuration)),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(s.secretKey)
}

func (s *Service) ValidateToken(tokenString string) (*Claims, error) {
	token, err := jwt.ParseWithClaims(tokenString, &Claims{}, func(*jwt.Token) (any, error) {
		return s.secretKey, nil
	}, s.parserOptions()...)
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, ErrExpiredToken
		}
		return nil, ErrInvalidToken
	}

	claims, ok := token.Claims.(*Claims)
	if !ok || !token.Valid {
		return nil, ErrInvalidToken
	}
	return claims, nil
}

func (s *Service) parserOptions() []jwt.ParserOption {
	opts := []jwt.ParserOption{
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithExpirationRequired(),
		jwt.WithLeeway(s.leeway),
	}
	if s.issuer != "" {
		opts = append(opts, jwt.WithIssuer(s.issuer))
	}
	return opts
}
