package service_test

import (
	"encoding/hex"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/maxviazov/fabricare-service/internal/model"
	"github.com/maxviazov/fabricare-service/internal/service"
)

var testKey = hex.EncodeToString([]byte(strings.Repeat("k", 32)))

func TestTokenService_IssueVerifyRoundTrip(t *testing.T) {
	svc, err := service.NewTokenService(testKey, time.Minute, discard)
	require.NoError(t, err)

	tok, err := svc.Issue(model.User{ID: 42, Username: "alice", Role: model.RoleAdmin})
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(tok.AccessToken, "v4.local."))
	assert.Equal(t, "Bearer", tok.TokenType)
	assert.WithinDuration(t, time.Now().Add(time.Minute), tok.ExpiresAt, 5*time.Second)

	claims, err := svc.Verify(tok.AccessToken)
	require.NoError(t, err)
	assert.Equal(t, service.Claims{UserID: 42, Username: "alice", Role: model.RoleAdmin}, claims)
}

func TestTokenService_RejectsForeignAndGarbageTokens(t *testing.T) {
	issuer, err := service.NewTokenService(testKey, time.Minute, discard)
	require.NoError(t, err)
	other, err := service.NewTokenService("", time.Minute, discard)
	require.NoError(t, err)

	tok, err := issuer.Issue(model.User{ID: 1, Username: "bob"})
	require.NoError(t, err)

	_, err = other.Verify(tok.AccessToken)
	assert.ErrorIs(t, err, service.ErrUnauthorized)
	_, err = issuer.Verify("v4.local.garbage")
	assert.ErrorIs(t, err, service.ErrUnauthorized)
	_, err = issuer.Verify("")
	assert.ErrorIs(t, err, service.ErrUnauthorized)
}

func TestTokenService_ExpiredToken(t *testing.T) {
	svc, err := service.NewTokenService(testKey, time.Millisecond, discard)
	require.NoError(t, err)
	tok, err := svc.Issue(model.User{ID: 7, Username: "carol"})
	require.NoError(t, err)

	time.Sleep(1100 * time.Millisecond)
	_, err = svc.Verify(tok.AccessToken)
	assert.ErrorIs(t, err, service.ErrUnauthorized)
}

func TestTokenService_InvalidKey(t *testing.T) {
	_, err := service.NewTokenService("zz", time.Minute, discard)
	assert.Error(t, err)
}
