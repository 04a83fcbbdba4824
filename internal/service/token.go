package service

import (
	"fmt"
	"strconv"
	"time"

	"aidanwoods.dev/go-paseto"
	"github.com/rs/zerolog"

	"github.com/maxviazov/fabricare-service/internal/model"
)

const tokenAudience = "fabricare-api"

// tokenService issues PASETO v4 local (encrypted) access tokens.
type tokenService struct {
	key paseto.V4SymmetricKey
	ttl time.Duration
	now func() time.Time
	log zerolog.Logger
}

// NewTokenService builds the token maker from a hex encoded 32-byte key. An empty key
// generates an ephemeral one, so tokens do not survive a restart.
func NewTokenService(keyHex string, ttl time.Duration, logger zerolog.Logger) (TokenService, error) {
	l := logger.With().Str("module", "service").Str("component", "token").Logger()
	var key paseto.V4SymmetricKey
	if keyHex == "" {
		l.Warn().Msg("auth.paseto_key not set; using an ephemeral key")
		key = paseto.NewV4SymmetricKey()
	} else {
		k, err := paseto.V4SymmetricKeyFromHex(keyHex)
		if err != nil {
			return nil, fmt.Errorf("invalid paseto key: %w", err)
		}
		key = k
	}
	if ttl <= 0 {
		ttl = 15 * time.Minute
	}
	return &tokenService{key: key, ttl: ttl, now: time.Now, log: l}, nil
}

func (s *tokenService) Issue(u model.User) (Token, error) {
	now := s.now()
	exp := now.Add(s.ttl)

	token := paseto.NewToken()
	token.SetIssuedAt(now)
	token.SetNotBefore(now)
	token.SetExpiration(exp)
	token.SetAudience(tokenAudience)
	token.SetSubject(strconv.FormatInt(u.ID, 10))
	token.SetString("username", u.Username)
	token.SetString("role", u.Role)

	return Token{
		AccessToken: token.V4Encrypt(s.key, nil),
		TokenType:   "Bearer",
		ExpiresAt:   exp,
	}, nil
}

func (s *tokenService) Verify(raw string) (Claims, error) {
	parser := paseto.NewParser()
	parser.AddRule(paseto.NotExpired())
	parser.AddRule(paseto.ForAudience(tokenAudience))
	parser.AddRule(paseto.ValidAt(s.now()))

	token, err := parser.ParseV4Local(s.key, raw, nil)
	if err != nil {
		s.log.Debug().Err(err).Msg("token rejected")
		return Claims{}, ErrUnauthorized
	}
	sub, err := token.GetSubject()
	if err != nil {
		return Claims{}, ErrUnauthorized
	}
	id, err := strconv.ParseInt(sub, 10, 64)
	if err != nil {
		return Claims{}, ErrUnauthorized
	}
	username, _ := token.GetString("username")
	role, _ := token.GetString("role")
	return Claims{UserID: id, Username: username, Role: role}, nil
}
