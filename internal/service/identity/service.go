package identity

import (
	"context"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"golang.org/x/crypto/bcrypt"

	"github.com/carelink/dispatch-api/internal/config"
	"github.com/carelink/dispatch-api/internal/model"
	"github.com/carelink/dispatch-api/internal/repository"
	apperrors "github.com/carelink/dispatch-api/pkg/errors"
)

type Claims struct {
	Role      model.Role `json:"role"`
	SubjectID int64      `json:"subject_id"`
	jwt.RegisteredClaims
}

type Service struct {
	identities    repository.IdentityRepository
	professionals repository.ProfessionalRepository
	cfg           config.JWTConfig
}

func NewService(identities repository.IdentityRepository, professionals repository.ProfessionalRepository, cfg config.JWTConfig) *Service {
	return &Service{
		identities:    identities,
		professionals: professionals,
		cfg:           cfg,
	}
}

// Register creates a professional profile and its identity record.
func (s *Service) Register(ctx context.Context, req *model.RegisterRequest) (*model.Professional, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	professional := &model.Professional{
		Name:  req.Name,
		Phone: req.Phone,
		Credentials: model.Credentials{
			Email:        req.Email,
			PasswordHash: string(hash),
		},
		Skill:     req.Skill,
		Latitude:  req.Latitude,
		Longitude: req.Longitude,
	}
	if err := s.professionals.Create(ctx, professional); err != nil {
		return nil, err
	}

	identity := &model.Identity{
		Role:      model.RoleProfessional,
		SubjectID: professional.ID,
		Credentials: model.Credentials{
			Email:        req.Email,
			PasswordHash: string(hash),
		},
	}
	if err := s.identities.Create(ctx, identity); err != nil {
		return nil, err
	}

	return professional, nil
}

// Login authenticates against the single identity lookup and issues a
// token carrying the role discriminant.
func (s *Service) Login(ctx context.Context, req *model.LoginRequest) (*model.TokenResponse, error) {
	identity, err := s.identities.GetByEmail(ctx, req.Email)
	if err != nil {
		if apperrors.IsKind(err, apperrors.KindNotFound) {
			return nil, apperrors.Unauthorized("invalid credentials", nil)
		}
		return nil, err
	}

	if identity.Banned {
		return nil, apperrors.Unauthorized("account is banned", nil)
	}

	if err := bcrypt.CompareHashAndPassword([]byte(identity.PasswordHash), []byte(req.Password)); err != nil {
		return nil, apperrors.Unauthorized("invalid credentials", nil)
	}

	expiresAt := time.Now().Add(time.Duration(s.cfg.ExpiryHours) * time.Hour)
	claims := &Claims{
		Role:      identity.Role,
		SubjectID: identity.SubjectID,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   identity.Email,
			ExpiresAt: jwt.NewNumericDate(expiresAt),
			IssuedAt:  jwt.NewNumericDate(time.Now()),
		},
	}

	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(s.cfg.Secret))
	if err != nil {
		return nil, fmt.Errorf("failed to sign token: %w", err)
	}

	return &model.TokenResponse{
		Token:     token,
		ExpiresAt: expiresAt,
		Role:      identity.Role,
		SubjectID: identity.SubjectID,
	}, nil
}

// Verify parses and validates a token issued by Login.
func (s *Service) Verify(tokenString string) (*Claims, error) {
	claims := &Claims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return []byte(s.cfg.Secret), nil
	})
	if err != nil || !token.Valid {
		return nil, apperrors.Unauthorized("invalid token", err)
	}
	return claims, nil
}
