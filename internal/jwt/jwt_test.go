package jwt

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ctfquest07/ctf-server1-sub000/internal/model"
)

func TestGenerateAndValidateToken(t *testing.T) {
	mgr := NewJWTManager("test-secret")

	token, err := mgr.GenerateToken("user-1", model.RoleAdmin, time.Hour)
	require.NoError(t, err)
	require.NotEmpty(t, token)

	claims, err := mgr.ValidateToken(token)
	require.NoError(t, err)
	assert.Equal(t, "user-1", claims.UserID)
	assert.Equal(t, model.RoleAdmin, claims.Role)
}

func TestGenerateToken_EmptyUserID(t *testing.T) {
	mgr := NewJWTManager("test-secret")
	_, err := mgr.GenerateToken("", model.RolePlayer, time.Hour)
	assert.Error(t, err)
}

func TestValidateToken_WrongSecret(t *testing.T) {
	mgr := NewJWTManager("test-secret")
	token, err := mgr.GenerateToken("user-1", model.RolePlayer, time.Hour)
	require.NoError(t, err)

	other := NewJWTManager("other-secret")
	_, err = other.ValidateToken(token)
	assert.Error(t, err)
}

func TestValidateToken_Expired(t *testing.T) {
	mgr := NewJWTManager("test-secret")
	token, err := mgr.GenerateToken("user-1", model.RolePlayer, -time.Minute)
	require.NoError(t, err)

	_, err = mgr.ValidateToken(token)
	assert.Error(t, err)
}

func TestValidateToken_Garbage(t *testing.T) {
	mgr := NewJWTManager("test-secret")
	_, err := mgr.ValidateToken("not.a.token")
	assert.Error(t, err)

	_, err = mgr.ValidateToken("")
	assert.Error(t, err)
}
