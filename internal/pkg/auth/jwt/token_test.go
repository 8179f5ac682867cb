package jwt_test

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"crmchat/internal/pkg/auth/jwt"
)

const testSecret = "unit-test-secret"

func TestGenerateAndParseToken(t *testing.T) {
	payload := &jwt.Payload{ID: "u-42", Name: "Alice", Role: "sales"}

	token, err := jwt.GenerateToken(payload, testSecret, jwt.IdentityExpiration)
	require.NoError(t, err)

	parsed, err := jwt.ParseToken(token, testSecret)
	require.NoError(t, err)
	require.Equal(t, "u-42", parsed.ID)
	require.Equal(t, "Alice", parsed.Name)
	require.Equal(t, "sales", parsed.Role)
	require.Equal(t, jwt.TokenIssuer, parsed.Issuer)
}

func TestParseToken_RejectsWrongSecret(t *testing.T) {
	token, err := jwt.GenerateToken(&jwt.Payload{ID: "u-42"}, testSecret, time.Minute)
	require.NoError(t, err)

	_, err = jwt.ParseToken(token, "a-different-secret")
	require.Error(t, err)
}

func TestParseToken_RejectsExpired(t *testing.T) {
	token, err := jwt.GenerateToken(&jwt.Payload{ID: "u-42"}, testSecret, -time.Minute)
	require.NoError(t, err)

	_, err = jwt.ParseToken(token, testSecret)
	require.Error(t, err)
}

func TestRequireAuth(t *testing.T) {
	var seen *jwt.Payload
	handler := jwt.RequireAuth(testSecret)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen = jwt.GetPayloadFromContext(r)
		w.WriteHeader(http.StatusOK)
	}))

	token, err := jwt.GenerateToken(&jwt.Payload{ID: "u-42", Name: "Alice"}, testSecret, time.Minute)
	require.NoError(t, err)

	tests := []struct {
		name       string
		authHeader string
		wantStatus int
	}{
		{"valid bearer token", "Bearer " + token, http.StatusOK},
		{"missing header", "", http.StatusUnauthorized},
		{"wrong scheme", "Basic " + token, http.StatusUnauthorized},
		{"garbage token", "Bearer not.a.jwt", http.StatusUnauthorized},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			seen = nil

			req := httptest.NewRequest(http.MethodGet, "/api/chat/groups", nil)
			if tt.authHeader != "" {
				req.Header.Set("Authorization", tt.authHeader)
			}

			rec := httptest.NewRecorder()
			handler.ServeHTTP(rec, req)

			require.Equal(t, tt.wantStatus, rec.Code)
			if tt.wantStatus == http.StatusOK {
				require.NotNil(t, seen)
				require.Equal(t, "u-42", seen.ID)
			} else {
				require.Nil(t, seen)
			}
		})
	}
}
