// Package auth issues and validates sandbox merchant tokens
package auth

import (
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
)

var (
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrMerchantExists     = errors.New("merchant already registered")
	ErrSessionExpired     = errors.New("session expired")
	ErrInvalidToken       = errors.New("invalid token")
)

// Config holds token settings
type Config struct {
	JWTSecret   string
	TokenExpiry time.Duration
	// HashCost is the bcrypt cost; zero means bcrypt.DefaultCost
	HashCost int
}

// Merchant is a registered API key pair
type Merchant struct {
	ID         string
	PublicKey  string
	secretHash []byte
	CreatedAt  time.Time
}

// Claims are the verified contents of a session token
type Claims struct {
	MerchantID string
	PublicKey  string
	SessionID  string
	ExpiresAt  time.Time
}

// Service provides authentication functionality
type Service struct {
	config Config
	now    func() time.Time

	mu        sync.RWMutex
	merchants map[string]*Merchant
}

// Option configures optional service behavior
type Option func(*Service)

// WithClock overrides the time source used to issue and check tokens
func WithClock(now func() time.Time) Option {
	return func(s *Service) {
		if now != nil {
			s.now = now
		}
	}
}

// New creates a new auth service
func New(cfg Config, opts ...Option) *Service {
	s := &Service{
		config:    cfg,
		now:       time.Now,
		merchants: make(map[string]*Merchant),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Register adds a merchant key pair; the secret is stored as a bcrypt hash.
func (s *Service) Register(publicKey, secret string) (*Merchant, error) {
	if publicKey == "" || secret == "" {
		return nil, errors.New("public key and secret are required")
	}

	cost := s.config.HashCost
	if cost == 0 {
		cost = bcrypt.DefaultCost
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(secret), cost)
	if err != nil {
		return nil, fmt.Errorf("failed to hash secret: %w", err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.merchants[publicKey]; ok {
		return nil, ErrMerchantExists
	}
	m := &Merchant{
		ID:         uuid.New().String(),
		PublicKey:  publicKey,
		secretHash: hash,
		CreatedAt:  s.now().UTC(),
	}
	s.merchants[publicKey] = m
	return m, nil
}

// Authenticate checks the key pair and returns a signed session token
func (s *Service) Authenticate(publicKey, secret string) (string, error) {
	s.mu.RLock()
	m, ok := s.merchants[publicKey]
	s.mu.RUnlock()
	if !ok {
		return "", ErrInvalidCredentials
	}
	if err := bcrypt.CompareHashAndPassword(m.secretHash, []byte(secret)); err != nil {
		return "", ErrInvalidCredentials
	}
	return s.issue(m)
}

func (s *Service) issue(m *Merchant) (string, error) {
	now := s.now().UTC()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"session_id":  uuid.New().String(),
		"merchant_id": m.ID,
		"public_key":  m.PublicKey,
		"exp":         now.Add(s.config.TokenExpiry).Unix(),
		"iat":         now.Unix(),
	})

	tokenString, err := token.SignedString([]byte(s.config.JWTSecret))
	if err != nil {
		return "", fmt.Errorf("failed to sign token: %w", err)
	}
	return tokenString, nil
}

// ValidateToken verifies a token and returns its claims.
// An expired but otherwise valid token yields ErrSessionExpired.
func (s *Service) ValidateToken(tokenString string) (*Claims, error) {
	token, err := jwt.Parse(tokenString, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return []byte(s.config.JWTSecret), nil
	}, jwt.WithTimeFunc(s.now), jwt.WithExpirationRequired())
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, ErrSessionExpired
		}
		return nil, ErrInvalidToken
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok || !token.Valid {
		return nil, ErrInvalidToken
	}

	publicKey, _ := claims["public_key"].(string)
	s.mu.RLock()
	m, known := s.merchants[publicKey]
	s.mu.RUnlock()
	if !known || claims["merchant_id"] != m.ID {
		return nil, ErrInvalidToken
	}

	sessionID, _ := claims["session_id"].(string)
	exp, err := claims.GetExpirationTime()
	if err != nil || exp == nil {
		return nil, ErrInvalidToken
	}

	return &Claims{
		MerchantID: m.ID,
		PublicKey:  m.PublicKey,
		SessionID:  sessionID,
		ExpiresAt:  exp.Time,
	}, nil
}
