package service

import (
	"context"
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/taskmanager/task-api/internal/core/domain"
	"github.com/taskmanager/task-api/internal/core/ports"
)

// revokedRetention is how long a token without an expiry stays on the
// revocation list. The token set in Mongo remains the source of truth.
const revokedRetention = 7 * 24 * time.Hour

// sessionClaims is the payload of a session token. Subject holds the user ID
// and ID a random UUID so that every issued token is distinct.
type sessionClaims struct {
	jwt.RegisteredClaims
}

// SessionService issues and verifies bearer tokens backed by the user's token set.
type SessionService struct {
	users     ports.UserRepository
	revoked   ports.RevocationList
	jwtSecret []byte
	tokenTTL  time.Duration
	logger    zerolog.Logger
	now       func() time.Time
}

// NewSessionService returns a SessionService. A zero tokenTTL issues tokens
// without an expiry. revoked may be nil when no revocation list is configured.
func NewSessionService(users ports.UserRepository, revoked ports.RevocationList, jwtSecret string, tokenTTL time.Duration, logger zerolog.Logger) *SessionService {
	return &SessionService{
		users:     users,
		revoked:   revoked,
		jwtSecret: []byte(jwtSecret),
		tokenTTL:  tokenTTL,
		logger:    logger,
		now:       time.Now,
	}
}

// Issue signs a new token for user and appends it to the user's token set.
func (s *SessionService) Issue(ctx context.Context, user *domain.User) (string, error) {
	ctx, span := tracer.Start(ctx, "SessionService.Issue")
	defer span.End()

	now := s.now()
	claims := sessionClaims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:  user.ID,
			ID:       uuid.NewString(),
			IssuedAt: jwt.NewNumericDate(now),
		},
	}
	if s.tokenTTL > 0 {
		claims.ExpiresAt = jwt.NewNumericDate(now.Add(s.tokenTTL))
	}

	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.jwtSecret)
	if err != nil {
		return "", err
	}

	if err := s.users.AddToken(ctx, user.ID, token); err != nil {
		return "", err
	}
	user.Tokens = append(user.Tokens, domain.SessionToken{Token: token})
	return token, nil
}

// Verify resolves token to its user. Every failure is reported as
// domain.ErrUnauthenticated; storage failures are returned as they are.
func (s *SessionService) Verify(ctx context.Context, token string) (*domain.User, error) {
	ctx, span := tracer.Start(ctx, "SessionService.Verify")
	defer span.End()

	claims, err := s.parse(token)
	if err != nil {
		s.logger.Debug().Err(err).Msg("token rejected")
		return nil, domain.ErrUnauthenticated
	}

	if s.revoked != nil {
		revoked, err := s.revoked.IsRevoked(ctx, token)
		if err != nil {
			s.logger.Warn().Err(err).Msg("revocation check failed, falling back to token set")
		} else if revoked {
			return nil, domain.ErrUnauthenticated
		}
	}

	user, err := s.users.FindByIDAndToken(ctx, claims.Subject, token)
	if err != nil {
		if errors.Is(err, domain.ErrUserNotFound) {
			return nil, domain.ErrUnauthenticated
		}
		return nil, err
	}
	return user, nil
}

// Revoke removes token from the user's token set, keeping every other token.
func (s *SessionService) Revoke(ctx context.Context, user *domain.User, token string) error {
	ctx, span := tracer.Start(ctx, "SessionService.Revoke")
	defer span.End()

	if err := s.users.RemoveToken(ctx, user.ID, token); err != nil {
		return err
	}

	kept := user.Tokens[:0]
	for _, t := range user.Tokens {
		if t.Token != token {
			kept = append(kept, t)
		}
	}
	user.Tokens = kept

	s.remember(ctx, token)
	return nil
}

// RevokeAll empties the user's token set.
func (s *SessionService) RevokeAll(ctx context.Context, user *domain.User) error {
	ctx, span := tracer.Start(ctx, "SessionService.RevokeAll")
	defer span.End()

	if err := s.users.ClearTokens(ctx, user.ID); err != nil {
		return err
	}
	for _, t := range user.Tokens {
		s.remember(ctx, t.Token)
	}
	user.Tokens = nil
	return nil
}

func (s *SessionService) parse(token string) (*sessionClaims, error) {
	claims := &sessionClaims{}
	tkn, err := jwt.ParseWithClaims(token, claims, func(t *jwt.Token) (interface{}, error) {
		if t.Method.Alg() != jwt.SigningMethodHS256.Alg() {
			return nil, jwt.ErrTokenSignatureInvalid
		}
		return s.jwtSecret, nil
	}, jwt.WithTimeFunc(s.now))
	if err != nil {
		return nil, err
	}
	if !tkn.Valid || claims.Subject == "" {
		return nil, jwt.ErrTokenInvalidClaims
	}
	return claims, nil
}

// remember puts token on the revocation list for the rest of its lifetime.
// Failures are logged only: the token set has already dropped the token.
func (s *SessionService) remember(ctx context.Context, token string) {
	if s.revoked == nil {
		return
	}

	// Tokens that no longer parse are already rejected by Verify.
	claims, err := s.parse(token)
	if err != nil {
		return
	}
	ttl := revokedRetention
	if claims.ExpiresAt != nil {
		ttl = claims.ExpiresAt.Sub(s.now())
	}
	if ttl <= 0 {
		return
	}

	if err := s.revoked.Revoke(ctx, token, ttl); err != nil {
		s.logger.Warn().Err(err).Msg("failed to record revoked token")
	}
}
