package service

import (
	"context"
	"fmt"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/civicsense/portal-gateway/internal/backend"
	"github.com/civicsense/portal-gateway/internal/dto"
	"github.com/civicsense/portal-gateway/internal/models"
	appErrors "github.com/civicsense/portal-gateway/pkg/errors"
)

type sessionBackend interface {
	Login(ctx context.Context, creds backend.Credentials) (*backend.AuthResponse, error)
	Register(ctx context.Context, req backend.RegisterRequest) (*backend.AuthResponse, error)
}

type sessionStore interface {
	Get(ctx context.Context, id string) (*models.Session, error)
	Set(ctx context.Context, session *models.Session, ttl time.Duration) error
	Delete(ctx context.Context, id string) error
}

// SessionConfig defines configuration for gateway sessions.
type SessionConfig struct {
	Secret     string
	Expiration time.Duration
	Issuer     string
}

// SessionService owns the session lifecycle. The backend authenticates
// credentials and issues its own token; the gateway wraps that token and the
// user profile into a session object and hands the client a JWT carrying only
// the session id.
type SessionService struct {
	backend   sessionBackend
	sessions  sessionStore
	validator *validator.Validate
	logger    *zap.Logger
	config    SessionConfig
}

// NewSessionService constructs a SessionService instance.
func NewSessionService(b sessionBackend, sessions sessionStore, validate *validator.Validate, logger *zap.Logger, config SessionConfig) *SessionService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if validate == nil {
		validate = validator.New()
	}
	return &SessionService{backend: b, sessions: sessions, validator: validate, logger: logger, config: config}
}

// Login authenticates against the backend and opens a session.
func (s *SessionService) Login(ctx context.Context, req dto.LoginRequest) (*dto.AuthResponse, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid login payload")
	}

	auth, err := s.backend.Login(ctx, backend.Credentials{Email: req.Email, Password: req.Password})
	if err != nil {
		return nil, err
	}

	return s.openSession(ctx, auth)
}

// Register creates a citizen account on the backend and opens a session.
func (s *SessionService) Register(ctx context.Context, req dto.RegisterRequest) (*dto.AuthResponse, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid registration payload")
	}

	auth, err := s.backend.Register(ctx, backend.RegisterRequest{Name: req.Name, Email: req.Email, Password: req.Password})
	if err != nil {
		return nil, err
	}

	return s.openSession(ctx, auth)
}

// Logout closes the session. The gateway JWT becomes useless once the session
// behind it is gone.
func (s *SessionService) Logout(ctx context.Context, sessionID string) error {
	if err := s.sessions.Delete(ctx, sessionID); err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to close session")
	}
	s.logger.Info("session closed", zap.String("session_id", sessionID))
	return nil
}

// Resolve loads the session object for the given id.
func (s *SessionService) Resolve(ctx context.Context, sessionID string) (*models.Session, error) {
	session, err := s.sessions.Get(ctx, sessionID)
	if err != nil {
		if appErr := appErrors.FromError(err); appErr.Code == appErrors.ErrCacheMiss.Code {
			return nil, appErrors.Clone(appErrors.ErrUnauthorized, "session expired")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load session")
	}
	return session, nil
}

// ValidateToken parses and validates an access token returning the claims.
func (s *SessionService) ValidateToken(tokenString string) (*models.JWTClaims, error) {
	token, err := jwt.ParseWithClaims(tokenString, &models.JWTClaims{}, func(token *jwt.Token) (interface{}, error) {
		if token.Method != jwt.SigningMethodHS256 {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return []byte(s.config.Secret), nil
	})
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrUnauthorized.Code, appErrors.ErrUnauthorized.Status, "invalid token")
	}

	claims, ok := token.Claims.(*models.JWTClaims)
	if !ok || !token.Valid {
		return nil, appErrors.Clone(appErrors.ErrUnauthorized, "invalid token claims")
	}

	return claims, nil
}

func (s *SessionService) openSession(ctx context.Context, auth *backend.AuthResponse) (*dto.AuthResponse, error) {
	session := &models.Session{
		ID:           uuid.NewString(),
		BackendToken: auth.Token,
		User:         auth.User,
		CreatedAt:    time.Now().UTC(),
	}

	if err := s.sessions.Set(ctx, session, s.config.Expiration); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to persist session")
	}

	token, err := s.generateAccessToken(session)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to create access token")
	}

	s.logger.Info("session opened",
		zap.String("session_id", session.ID),
		zap.String("role", string(session.User.Role)),
	)

	return &dto.AuthResponse{
		Token:     token,
		ExpiresIn: int64(s.config.Expiration.Seconds()),
		User:      session.User,
	}, nil
}

func (s *SessionService) generateAccessToken(session *models.Session) (string, error) {
	issuedAt := time.Now().UTC()
	claims := &models.JWTClaims{
		SessionID: session.ID,
		Role:      session.User.Role,
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    s.config.Issuer,
			Subject:   session.User.ID,
			ExpiresAt: jwt.NewNumericDate(issuedAt.Add(s.config.Expiration)),
			IssuedAt:  jwt.NewNumericDate(issuedAt),
			NotBefore: jwt.NewNumericDate(issuedAt),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(s.config.Secret))
}
