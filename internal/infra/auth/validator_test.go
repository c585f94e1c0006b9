package auth

import (
	"crypto/rand"
	"crypto/rsa"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/xela07ax/dashboard-daddy/internal/domain"
)

func testKey(t *testing.T) *rsa.PrivateKey {
	t.Helper()
	key, err := rsa.GenerateKey(rand.Reader, 2048)
	require.NoError(t, err)
	return key
}

func signToken(t *testing.T, key *rsa.PrivateKey, claims *domain.CustomClaims) string {
	t.Helper()
	signed, err := jwt.NewWithClaims(jwt.SigningMethodRS256, claims).SignedString(key)
	require.NoError(t, err)
	return signed
}

func TestVerifyTokenRoundTrip(t *testing.T) {
	key := testKey(t)
	v := NewBaseValidator(&key.PublicKey)

	token := signToken(t, key, &domain.CustomClaims{
		UserID: "u-1",
		Scopes: map[string]bool{"agents.control": true},
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
		},
	})

	claims, err := v.VerifyToken("Bearer " + token)
	require.NoError(t, err)
	require.Equal(t, "u-1", claims.UserID)
	require.Equal(t, map[string]bool{"agents.control": true}, claims.Scopes)
}

func TestVerifyTokenExpired(t *testing.T) {
	key := testKey(t)
	v := NewBaseValidator(&key.PublicKey)

	token := signToken(t, key, &domain.CustomClaims{
		UserID: "u-1",
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(-time.Minute)),
		},
	})

	_, err := v.VerifyToken(token)
	require.Error(t, err)
}

func TestVerifyTokenWrongKey(t *testing.T) {
	key := testKey(t)
	other := testKey(t)
	v := NewBaseValidator(&other.PublicKey)

	token := signToken(t, key, &domain.CustomClaims{
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
		},
	})

	_, err := v.VerifyToken(token)
	require.Error(t, err)
}

func TestVerifyTokenRejectsHMAC(t *testing.T) {
	key := testKey(t)
	v := NewBaseValidator(&key.PublicKey)

	hs, err := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.RegisteredClaims{
		ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
	}).SignedString([]byte("secret"))
	require.NoError(t, err)

	_, err = v.VerifyToken(hs)
	require.Error(t, err)
}

func TestMiddleware(t *testing.T) {
	key := testKey(t)
	v := NewBaseValidator(&key.PublicKey)

	var gotUserID string
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotUserID = UserID(r.Context())
		w.WriteHeader(http.StatusOK)
	})
	protected := NewMiddleware(v, zap.NewNop())(next)

	// Без заголовка — 401
	rec := httptest.NewRecorder()
	protected.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/v1/agents", nil))
	require.Equal(t, http.StatusUnauthorized, rec.Code)

	// Мусорный токен — 401
	rec = httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/v1/agents", nil)
	req.Header.Set("Authorization", "Bearer garbage")
	protected.ServeHTTP(rec, req)
	require.Equal(t, http.StatusUnauthorized, rec.Code)

	// Валидный токен — запрос проходит, user id в контексте
	token := signToken(t, key, &domain.CustomClaims{
		UserID: "u-42",
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
		},
	})
	rec = httptest.NewRecorder()
	req = httptest.NewRequest(http.MethodGet, "/v1/agents", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	protected.ServeHTTP(rec, req)
	require.Equal(t, http.StatusOK, rec.Code)
	require.Equal(t, "u-42", gotUserID)
}
