package usecase

import (
	"github.com/DucAnhDev9421/dat-san-online-sub005/internal/domain/user"
	"github.com/DucAnhDev9421/dat-san-online-sub005/internal/pkg/jwt"

	"github.com/google/uuid"
)

//go:generate mockgen -source=token_validator.go -destination=../../tests/mock/usecase/token_validator_mock.go -package=usecase

// TokenValidator provides token validation for middleware
type TokenValidator interface {
	ValidateToken(tokenString string) (uuid.UUID, user.Role, error)
}

type tokenValidatorImpl struct {
	jwtService *jwt.Service
}

func NewTokenValidator(jwtService *jwt.Service) TokenValidator {
	return &tokenValidatorImpl{
		jwtService: jwtService,
	}
}

func (t *tokenValidatorImpl) ValidateToken(tokenString string) (uuid.UUID, user.Role, error) {
	claims, err := t.jwtService.ValidateToken(tokenString)
	if err != nil {
		return uuid.Nil, "", err
	}
	if claims.UserID == uuid.Nil {
		return uuid.Nil, "", jwt.ErrInvalidToken
	}

	role, err := user.NewRole(claims.Role)
	if err != nil {
		return uuid.Nil, "", err
	}

	return claims.UserID, role, nil
}
