package services

import (
	"context"
	"fmt"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"github.com/brightpath/assessment-engine/internal/platform/logger"
	"github.com/brightpath/assessment-engine/internal/requestdata"
)

// IdentityClaims is the access-token payload issued by the upstream identity
// provider: the subject is the beneficiary id and tenant_id scopes every
// downstream query.
type IdentityClaims struct {
	TenantID string `json:"tenant_id"`
	jwt.RegisteredClaims
}

type IdentityService interface {
	SetContextFromToken(ctx context.Context, tokenString string) (context.Context, error)
}

type identityService struct {
	log          *logger.Logger
	jwtSecretKey string
}

func NewIdentityService(baseLog *logger.Logger, jwtSecretKey string) IdentityService {
	return &identityService{
		log:          baseLog.With("service", "IdentityService"),
		jwtSecretKey: jwtSecretKey,
	}
}

func (s *identityService) SetContextFromToken(ctx context.Context, tokenString string) (context.Context, error) {
	if tokenString == "" {
		return ctx, nil
	}
	parsed, err := jwt.ParseWithClaims(tokenString, &IdentityClaims{}, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method %v", token.Header["alg"])
		}
		return []byte(s.jwtSecretKey), nil
	})
	if err != nil {
		return ctx, fmt.Errorf("parse token: %w", err)
	}
	claims, ok := parsed.Claims.(*IdentityClaims)
	if !ok || !parsed.Valid {
		return ctx, fmt.Errorf("invalid or expired token")
	}
	beneficiaryID, err := uuid.Parse(claims.Subject)
	if err != nil {
		return ctx, fmt.Errorf("invalid beneficiary id in token: %w", err)
	}
	tenantID, err := uuid.Parse(claims.TenantID)
	if err != nil {
		return ctx, fmt.Errorf("invalid tenant id in token: %w", err)
	}
	rd := &requestdata.RequestData{
		TokenString:   tokenString,
		TenantID:      tenantID,
		BeneficiaryID: beneficiaryID,
	}
	return requestdata.WithRequestData(ctx, rd), nil
}
