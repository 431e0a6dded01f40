package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"vinestore-be/internal/metrics"
	"vinestore-be/internal/user"
	"vinestore-be/internal/utils"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExtractAccessToken(t *testing.T) {
	t.Run("Cookie preferred over header", func(t *testing.T) {
		r := httptest.NewRequest(http.MethodGet, "/", nil)
		r.AddCookie(&http.Cookie{Name: "access_token", Value: "cookie-token"})
		r.Header.Set("Authorization", "Bearer header-token")

		assert.Equal(t, "cookie-token", ExtractAccessToken(r))
	})

	t.Run("Header fallback", func(t *testing.T) {
		r := httptest.NewRequest(http.MethodGet, "/", nil)
		r.Header.Set("Authorization", "Bearer header-token")

		assert.Equal(t, "header-token", ExtractAccessToken(r))
	})

	t.Run("Nothing present", func(t *testing.T) {
		r := httptest.NewRequest(http.MethodGet, "/", nil)
		assert.Equal(t, "", ExtractAccessToken(r))
	})
}

func TestAuthMiddleware(t *testing.T) {
	t.Setenv("JWT_SECRET", "test-signing-key")

	t.Run("Valid token sets identity", func(t *testing.T) {
		token, err := user.GenerateJWT("staff@vinechurch.com", user.RoleMember)
		require.NoError(t, err)

		var gotEmail string
		var ok bool
		next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			gotEmail, ok = utils.GetUserEmailFromContext(r.Context())
		})

		r := httptest.NewRequest(http.MethodGet, "/items", nil)
		r.Header.Set("Authorization", "Bearer "+token)
		AuthMiddleware(next).ServeHTTP(httptest.NewRecorder(), r)

		assert.True(t, ok)
		assert.Equal(t, "staff@vinechurch.com", gotEmail)
	})

	t.Run("Invalid token passes through anonymous", func(t *testing.T) {
		var ok bool
		next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			_, ok = utils.GetUserEmailFromContext(r.Context())
		})

		r := httptest.NewRequest(http.MethodGet, "/items", nil)
		r.Header.Set("Authorization", "Bearer garbage")
		rec := httptest.NewRecorder()
		AuthMiddleware(next).ServeHTTP(rec, r)

		assert.False(t, ok)
		assert.Equal(t, http.StatusOK, rec.Code)
	})
}

func TestRateLimitMiddleware(t *testing.T) {
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
	handler := RateLimitMiddleware(next)

	t.Run("Strict tier throttles repeated logins", func(t *testing.T) {
		var lastCode int
		for i := 0; i < burstStrict+3; i++ {
			r := httptest.NewRequest(http.MethodPost, "/login", nil)
			r.RemoteAddr = "10.0.0.1:1234"
			rec := httptest.NewRecorder()
			handler.ServeHTTP(rec, r)
			lastCode = rec.Code
		}
		assert.Equal(t, http.StatusTooManyRequests, lastCode)
	})

	t.Run("Different IP unaffected", func(t *testing.T) {
		r := httptest.NewRequest(http.MethodPost, "/login", nil)
		r.RemoteAddr = "10.0.0.2:1234"
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, r)
		assert.Equal(t, http.StatusOK, rec.Code)
	})

	t.Run("General tier has its own bucket", func(t *testing.T) {
		r := httptest.NewRequest(http.MethodGet, "/items", nil)
		r.RemoteAddr = "10.0.0.1:1234"
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, r)
		assert.Equal(t, http.StatusOK, rec.Code)
	})
}

func TestLoggingMiddleware(t *testing.T) {
	reg := metrics.NewRegistry()

	okHandler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
	failHandler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	})

	wrap := LoggingMiddleware(reg)

	wrap(okHandler).ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/items", nil))
	wrap(failHandler).ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/items", nil))

	assert.Equal(t, uint64(2), reg.RequestsTotal.Load())
	assert.Equal(t, uint64(1), reg.RequestsFailed.Load())
}
