package jwt

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestJWTMaker_GenerateAndParseToken_ValidCases(t *testing.T) {
	secretKey := "test_secret_key_1234567890"
	tokenTTL := 15 * time.Minute
	maker := NewJWTMaker(secretKey, tokenTTL)

	tests := []struct {
		name     string
		username string
		role     string
		useruid  string
	}{
		{
			name:     "admin user",
			username: "admin_user",
			role:     "admin",
			useruid:  "uid-1",
		},
		{
			name:     "regular user",
			username: "regular_user",
			role:     "user",
			useruid:  "uid-2",
		},
		{
			name:     "user with email username",
			username: "user@domain.com",
			role:     "user",
			useruid:  "uid-3",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			token, err := maker.GenerateToken(tt.username, tt.role, tt.useruid)
			require.NoError(t, err)
			assert.NotEmpty(t, token)

			claims, err := maker.ParseToken(token)
			require.NoError(t, err)

			assert.Equal(t, tt.username, claims.Username)
			assert.Equal(t, tt.role, claims.Role)
			assert.Equal(t, tt.useruid, claims.UserUID)
			assert.Equal(t, tt.username, claims.Subject)
			assert.WithinDuration(t, time.Now(), claims.IssuedAt.Time, time.Second)
			assert.WithinDuration(t, time.Now().Add(tokenTTL), claims.ExpiresAt.Time, time.Second)
		})
	}
}

func TestJWTMaker_Validate_FailsClosed(t *testing.T) {
	secretKey := "test_secret_key_1234567890"
	maker := NewJWTMaker(secretKey, 15*time.Minute)

	validToken, err := maker.GenerateToken("testuser", "user", "uid-1")
	require.NoError(t, err)

	tests := []struct {
		name  string
		token string
		want  bool
	}{
		{
			name:  "валидный токен",
			token: validToken,
			want:  true,
		},
		{
			name:  "пустой токен",
			token: "",
			want:  false,
		},
		{
			name:  "битый токен",
			token: "invalid.token.here",
			want:  false,
		},
		{
			name:  "просроченный токен",
			token: createExpiredToken(t, secretKey),
			want:  false,
		},
		{
			name:  "чужой секретный ключ",
			token: createTokenWithWrongSecret(t),
			want:  false,
		},
		{
			name:  "подправленный токен",
			token: validToken + "tampered",
			want:  false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, maker.Validate(tt.token))
		})
	}
}

func TestJWTMaker_Subject(t *testing.T) {
	secretKey := "test_secret_key_1234567890"
	maker := NewJWTMaker(secretKey, 15*time.Minute)

	token, err := maker.GenerateToken("alice", "user", "uid-1")
	require.NoError(t, err)

	subject, err := maker.Subject(token)
	require.NoError(t, err)
	assert.Equal(t, "alice", subject)

	// Просроченный токен всё ещё разбирается, срок не перепроверяется.
	expired := createExpiredToken(t, secretKey)
	subject, err = maker.Subject(expired)
	require.NoError(t, err)
	assert.Equal(t, "testuser", subject)

	_, err = maker.Subject("not-a-token")
	assert.Error(t, err)
}

func TestJWTMaker_RefreshIfNeeded(t *testing.T) {
	secretKey := "test_secret_key_1234567890"

	t.Run("токен с большим остатком не меняется", func(t *testing.T) {
		maker := NewJWTMaker(secretKey, 24*time.Hour)
		token, err := maker.GenerateToken("alice", "user", "uid-1")
		require.NoError(t, err)

		refreshed, err := maker.RefreshIfNeeded(token)
		require.NoError(t, err)
		assert.Equal(t, token, refreshed)
	})

	t.Run("токен с остатком меньше часа ротируется", func(t *testing.T) {
		maker := NewJWTMaker(secretKey, 30*time.Minute)
		token, err := maker.GenerateToken("alice", "user", "uid-1")
		require.NoError(t, err)

		refreshed, err := maker.RefreshIfNeeded(token)
		require.NoError(t, err)
		assert.NotEqual(t, token, refreshed)

		claims, err := maker.ParseToken(refreshed)
		require.NoError(t, err)
		assert.Equal(t, "alice", claims.Username)
		assert.Equal(t, "user", claims.Role)
		assert.WithinDuration(t, time.Now().Add(30*time.Minute), claims.ExpiresAt.Time, time.Second)
	})

	t.Run("просроченный токен возвращается без изменений", func(t *testing.T) {
		maker := NewJWTMaker(secretKey, 15*time.Minute)
		expired := createExpiredToken(t, secretKey)

		refreshed, err := maker.RefreshIfNeeded(expired)
		require.NoError(t, err)
		assert.Equal(t, expired, refreshed)
	})

	t.Run("битый токен возвращается без изменений", func(t *testing.T) {
		maker := NewJWTMaker(secretKey, 15*time.Minute)

		refreshed, err := maker.RefreshIfNeeded("garbage")
		require.NoError(t, err)
		assert.Equal(t, "garbage", refreshed)
	})
}

func TestJWTMaker_TokenExpiration(t *testing.T) {
	secretKey := "test_secret_key"
	shortTTL := 100 * time.Millisecond
	maker := NewJWTMaker(secretKey, shortTTL)

	token, err := maker.GenerateToken("testuser", "user", "uid-1")
	require.NoError(t, err)

	claims, err := maker.ParseToken(token)
	require.NoError(t, err)
	assert.NotNil(t, claims)

	time.Sleep(150 * time.Millisecond)

	_, err = maker.ParseToken(token)
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "expired")
}

func createExpiredToken(t *testing.T, secretKey string) string {
	maker := NewJWTMaker(secretKey, -time.Hour)
	token, err := maker.GenerateToken("testuser", "user", "uid-1")
	require.NoError(t, err)
	return token
}

func createTokenWithWrongSecret(t *testing.T) string {
	wrongMaker := NewJWTMaker("wrong_secret_key", 15*time.Minute)
	token, err := wrongMaker.GenerateToken("testuser", "user", "uid-1")
	require.NoError(t, err)
	return token
}
