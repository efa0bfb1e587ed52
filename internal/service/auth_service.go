package service

import (
	"crypto/subtle"
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"rolecoach/internal/model"
)

var (
	ErrInvalidCredentials = errors.New("invalid username or password")
	ErrInvalidToken       = errors.New("invalid or expired token")
)

const trainerTokenTTL = 12 * time.Hour

// AuthService handles trainer authentication
type AuthService struct {
	trainerUsername string
	trainerPassword string
	jwtSecret       []byte
	now             func() time.Time
}

// NewAuthService creates a new auth service
func NewAuthService(username, password, secret string) *AuthService {
	return &AuthService{
		trainerUsername: username,
		trainerPassword: password,
		jwtSecret:       []byte(secret),
		now:             time.Now,
	}
}

// Login validates credentials and returns a signed token
func (s *AuthService) Login(username, password string) (*model.LoginResponse, error) {
	userOK := subtle.ConstantTimeCompare([]byte(username), []byte(s.trainerUsername)) == 1
	passOK := subtle.ConstantTimeCompare([]byte(password), []byte(s.trainerPassword)) == 1
	if !userOK || !passOK {
		return nil, ErrInvalidCredentials
	}

	// stable per username
	trainerID := "trainer_" + uuid.NewSHA1(uuid.NameSpaceOID, []byte(username)).String()[:8]

	now := s.now()
	claims := &model.TrainerClaims{
		TrainerID: trainerID,
		Username:  username,
		RegisteredClaims: jwt.RegisteredClaims{
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(trainerTokenTTL)),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	tokenString, err := token.SignedString(s.jwtSecret)
	if err != nil {
		return nil, err
	}

	return &model.LoginResponse{
		Token:     tokenString,
		TrainerID: trainerID,
		ExpiresIn: int64(trainerTokenTTL.Seconds()),
	}, nil
}

// ValidateTrainerToken validates a trainer JWT and returns claims
func (s *AuthService) ValidateTrainerToken(tokenString string) (*model.TrainerClaims, error) {
	token, err := jwt.ParseWithClaims(tokenString, &model.TrainerClaims{}, func(token *jwt.Token) (interface{}, error) {
		return s.jwtSecret, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
	if err != nil {
		return nil, ErrInvalidToken
	}

	claims, ok := token.Claims.(*model.TrainerClaims)
	if !ok || !token.Valid || claims.TrainerID == "" {
		return nil, ErrInvalidToken
	}

	return claims, nil
}
