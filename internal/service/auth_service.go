// internal/service/auth_service.go

package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"github.com/dhananjayaaps/wifi-monitor/internal/clock"
	"github.com/dhananjayaaps/wifi-monitor/internal/logger"
	"github.com/dhananjayaaps/wifi-monitor/internal/models"
	"github.com/dhananjayaaps/wifi-monitor/internal/repository"
)

var (
	ErrInvalidCredentials = errors.New("invalid email or password")
	ErrEmailTaken         = errors.New("email already registered")
	ErrInvalidToken       = errors.New("invalid or expired token")
	ErrInvalidAPIKey      = errors.New("invalid agent api key")
)

type AuthService struct {
	users     models.UserRepository
	jwtSecret []byte
	tokenTTL  time.Duration
	clk       clock.Clock
	log       *logger.Logger
}

func NewAuthService(users models.UserRepository, jwtSecret string, tokenTTL time.Duration, clk clock.Clock, log *logger.Logger) *AuthService {
	return &AuthService{
		users:     users,
		jwtSecret: []byte(jwtSecret),
		tokenTTL:  tokenTTL,
		clk:       clk,
		log:       log,
	}
}

func (s *AuthService) Register(ctx context.Context, email, password string) (*models.User, error) {
	if email == "" || len(password) < 8 {
		return nil, fmt.Errorf("%w: email required and password must be at least 8 characters", ErrInvalidCredentials)
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}
	user := &models.User{Email: email, PasswordHash: string(hash)}
	if err := s.users.CreateUser(ctx, user); err != nil {
		if errors.Is(err, repository.ErrDuplicateEmail) {
			return nil, ErrEmailTaken
		}
		return nil, err
	}
	s.log.Info("registered user %s", email)
	return user, nil
}

// Login verifies credentials and issues an HS256 token carrying the user
// id as subject.
func (s *AuthService) Login(ctx context.Context, email, password string) (string, *models.User, error) {
	user, err := s.users.GetUserByEmail(ctx, email)
	if err != nil {
		return "", nil, ErrInvalidCredentials
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		return "", nil, ErrInvalidCredentials
	}

	now := s.clk.Now().UTC()
	claims := jwt.RegisteredClaims{
		Subject:   fmt.Sprintf("%d", user.ID),
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(now.Add(s.tokenTTL)),
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.jwtSecret)
	if err != nil {
		return "", nil, fmt.Errorf("sign token: %w", err)
	}
	return token, user, nil
}

// ParseToken validates a bearer token and returns the user id it carries.
func (s *AuthService) ParseToken(tokenString string) (int64, error) {
	claims := &jwt.RegisteredClaims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method %v", t.Header["alg"])
		}
		return s.jwtSecret, nil
	}, jwt.WithTimeFunc(func() time.Time { return s.clk.Now() }))
	if err != nil || !token.Valid {
		return 0, ErrInvalidToken
	}
	var userID int64
	if _, err := fmt.Sscanf(claims.Subject, "%d", &userID); err != nil {
		return 0, ErrInvalidToken
	}
	return userID, nil
}

// RegisterAgent mints an api key for a new monitoring agent. The key is
// only ever returned here.
func (s *AuthService) RegisterAgent(ctx context.Context, ownerID int64, name string) (*models.Agent, error) {
	if name == "" {
		name = "agent"
	}
	agent := &models.Agent{
		Name:    name,
		APIKey:  uuid.NewString(),
		OwnerID: ownerID,
	}
	if err := s.users.CreateAgent(ctx, agent); err != nil {
		return nil, err
	}
	s.log.Info("registered agent %q for user %d", name, ownerID)
	return agent, nil
}

// AuthenticateAgent resolves an api key to its agent and bumps last_sync.
func (s *AuthService) AuthenticateAgent(ctx context.Context, apiKey string) (*models.Agent, error) {
	if apiKey == "" {
		return nil, ErrInvalidAPIKey
	}
	agent, err := s.users.GetAgentByAPIKey(ctx, apiKey)
	if err != nil {
		return nil, ErrInvalidAPIKey
	}
	if err := s.users.UpdateAgentLastSync(ctx, agent.ID, s.clk.Now().UTC()); err != nil {
		s.log.Warn("bump last_sync for agent %d: %v", agent.ID, err)
	}
	return agent, nil
}

func (s *AuthService) Notifications(ctx context.Context, userID int64, limit int) ([]models.Notification, error) {
	if limit <= 0 || limit > 200 {
		limit = 50
	}
	return s.users.ListNotificationsByUser(ctx, userID, limit)
}
