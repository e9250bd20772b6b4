package server

import (
	"bytes"
	"context"
	"encoding/json"
	"net"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strconv"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/folio-dev/folio/internal/auth"
	"github.com/folio-dev/folio/internal/config"
	"github.com/folio-dev/folio/internal/store/sqlstore"
)

const testSecret = "0123456789abcdef0123456789abcdef"

func testConfig(port string) *config.Config {
	return &config.Config{
		Server: config.ServerConfig{
			Port:        port,
			CORSOrigins: []string{"http://localhost:5173"},
		},
		Database: config.DatabaseConfig{Driver: config.DriverSQLite},
		Auth: config.AuthConfig{
			JWTSecret: testSecret,
			TokenTTL:  time.Hour,
		},
	}
}

func newTestServer(t *testing.T) *Server {
	t.Helper()
	return newTestServerWithConfig(t, testConfig("0"))
}

func newTestServerWithConfig(t *testing.T, cfg *config.Config) *Server {
	t.Helper()

	st, err := sqlstore.Open(filepath.Join(t.TempDir(), "folio.sqlite"), zerolog.Nop())
	require.NoError(t, err)
	t.Cleanup(func() { _ = st.Close(context.Background()) })

	issuer, err := auth.NewTokenIssuer(testSecret, time.Hour, nil)
	require.NoError(t, err)

	authService := auth.NewService(st, &auth.BcryptHasher{Cost: bcrypt.MinCost}, issuer, zerolog.Nop())
	return New(cfg, st, authService, zerolog.Nop(), "test")
}

func doJSON(t *testing.T, s *Server, method, path string, body any, token string) *httptest.ResponseRecorder {
	t.Helper()

	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}

	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	w := httptest.NewRecorder()
	s.Handler().ServeHTTP(w, req)
	return w
}

func creds(email, password string) map[string]string {
	return map[string]string{"email": email, "password": password}
}

func loginToken(t *testing.T, s *Server, email, password string) string {
	t.Helper()

	w := doJSON(t, s, http.MethodPost, "/api/users/login", creds(email, password), "")
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	var resp LoginResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	return resp.Token
}

func TestAuthScenario(t *testing.T) {
	s := newTestServer(t)

	w := doJSON(t, s, http.MethodPost, "/api/users/signup", creds("a@x.com", "pw1"), "")
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	var signup SignupResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &signup))
	assert.Equal(t, "a@x.com", signup.User.Email)
	assert.NotContains(t, w.Body.String(), "token")
	assert.NotContains(t, w.Body.String(), "password")

	w = doJSON(t, s, http.MethodPost, "/api/users/login", creds("a@x.com", "pw1"), "")
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	var login LoginResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &login))
	assert.NotEmpty(t, login.Token)
	assert.Equal(t, signup.User.ID, login.User.ID)
	assert.True(t, login.ExpiresAt.After(time.Now()))

	w = doJSON(t, s, http.MethodPost, "/api/users/login", creds("a@x.com", "wrong"), "")
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.NotContains(t, w.Body.String(), "token")

	w = doJSON(t, s, http.MethodPost, "/api/users/signup", creds("a@x.com", "pw2"), "")
	assert.Equal(t, http.StatusConflict, w.Code)
}

func TestLogin_UnknownIdentifier(t *testing.T) {
	s := newTestServer(t)

	w := doJSON(t, s, http.MethodPost, "/api/users/login", creds("ghost@x.com", "pw"), "")
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.JSONEq(t, `{"error":"User not found"}`, w.Body.String())
}

func TestSignup_MalformedInput(t *testing.T) {
	s := newTestServer(t)

	tests := []struct {
		name string
		body any
	}{
		{"empty body", nil},
		{"missing password", map[string]string{"email": "a@x.com"}},
		{"missing email", map[string]string{"password": "pw"}},
		{"bad email", creds("not-an-email", "pw")},
		{"wrong types", map[string]any{"email": 12, "password": true}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := doJSON(t, s, http.MethodPost, "/api/users/signup", tt.body, "")
			assert.Equal(t, http.StatusBadRequest, w.Code, w.Body.String())
		})
	}

	t.Run("missing email message", func(t *testing.T) {
		w := doJSON(t, s, http.MethodPost, "/api/users/signup", map[string]string{"password": "pw"}, "")
		assert.Equal(t, http.StatusBadRequest, w.Code)
		assert.Contains(t, w.Body.String(), "email is required")
		assert.NotContains(t, w.Body.String(), "CredentialsRequest")
	})

	t.Run("unparsable json", func(t *testing.T) {
		for _, path := range []string{"/api/users/signup", "/api/users/login"} {
			req := httptest.NewRequest(http.MethodPost, path, bytes.NewBufferString(`{"email":`))
			req.Header.Set("Content-Type", "application/json")
			w := httptest.NewRecorder()
			s.Handler().ServeHTTP(w, req)

			assert.Equal(t, http.StatusBadRequest, w.Code, path)
			assert.JSONEq(t, `{"error":"Invalid request body"}`, w.Body.String(), path)
		}
	})

	t.Run("oversized password", func(t *testing.T) {
		long := string(bytes.Repeat([]byte("p"), 100))
		w := doJSON(t, s, http.MethodPost, "/api/users/signup", creds("a@x.com", long), "")
		assert.Equal(t, http.StatusBadRequest, w.Code)
		assert.Contains(t, w.Body.String(), "at most 72 bytes")
	})
}

func TestMe_RequiresToken(t *testing.T) {
	s := newTestServer(t)

	tests := []struct {
		name    string
		header  string
		message string
	}{
		{"missing header", "", "Missing authorization header"},
		{"wrong scheme", "Basic abc", "Invalid authorization header format"},
		{"empty token", "Bearer ", "Empty token"},
		{"garbage token", "Bearer abc.def.ghi", "Invalid or expired token"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/api/users/me", nil)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}
			w := httptest.NewRecorder()
			s.Handler().ServeHTTP(w, req)

			assert.Equal(t, http.StatusUnauthorized, w.Code)
			assert.Contains(t, w.Body.String(), tt.message)
		})
	}
}

func TestMe_WithToken(t *testing.T) {
	s := newTestServer(t)

	w := doJSON(t, s, http.MethodPost, "/api/users/signup", creds("a@x.com", "pw1"), "")
	require.Equal(t, http.StatusCreated, w.Code)

	token := loginToken(t, s, "a@x.com", "pw1")

	w = doJSON(t, s, http.MethodGet, "/api/users/me", nil, token)
	require.Equal(t, http.StatusOK, w.Code)

	var me UserDetail
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &me))
	assert.Equal(t, "a@x.com", me.Email)
}

func TestUserManagement(t *testing.T) {
	s := newTestServer(t)

	for _, email := range []string{"a@x.com", "b@x.com"} {
		w := doJSON(t, s, http.MethodPost, "/api/users/signup", creds(email, "pw"), "")
		require.Equal(t, http.StatusCreated, w.Code)
	}
	token := loginToken(t, s, "a@x.com", "pw")

	w := doJSON(t, s, http.MethodGet, "/api/users", nil, token)
	require.Equal(t, http.StatusOK, w.Code)

	var users []UserDetail
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &users))
	require.Len(t, users, 2)

	ids := map[string]string{}
	for _, u := range users {
		ids[u.Email] = u.ID
	}

	w = doJSON(t, s, http.MethodDelete, "/api/users/"+ids["a@x.com"], nil, token)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = doJSON(t, s, http.MethodDelete, "/api/users/"+ids["b@x.com"], nil, token)
	assert.Equal(t, http.StatusNoContent, w.Code)

	w = doJSON(t, s, http.MethodDelete, "/api/users/"+ids["b@x.com"], nil, token)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestHealthCheck(t *testing.T) {
	s := newTestServer(t)

	w := doJSON(t, s, http.MethodGet, "/health", nil, "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"status":"online"`)
}

func TestMetricsEndpoint(t *testing.T) {
	s := newTestServer(t)

	doJSON(t, s, http.MethodPost, "/api/users/login", creds("ghost@x.com", "pw"), "")

	w := doJSON(t, s, http.MethodGet, "/metrics", nil, "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "folio_logins_total")
}

func TestCORSPreflight(t *testing.T) {
	s := newTestServer(t)

	req := httptest.NewRequest(http.MethodOptions, "/api/users/login", nil)
	req.Header.Set("Origin", "http://localhost:5173")
	req.Header.Set("Access-Control-Request-Method", "POST")
	w := httptest.NewRecorder()
	s.Handler().ServeHTTP(w, req)

	assert.Equal(t, http.StatusNoContent, w.Code)
	assert.Equal(t, "http://localhost:5173", w.Header().Get("Access-Control-Allow-Origin"))
}

func TestListen_PortInUse(t *testing.T) {
	taken, err := net.Listen("tcp", ":0")
	require.NoError(t, err)
	defer taken.Close()

	port := strconv.Itoa(taken.Addr().(*net.TCPAddr).Port)
	s := &Server{config: testConfig(port)}

	_, err = s.Listen()
	assert.ErrorIs(t, err, ErrPortInUse)
}

func TestServe_ShutsDownOnCancel(t *testing.T) {
	s := newTestServer(t)

	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- s.Serve(ctx, ln) }()

	resp, err := http.Get("http://" + ln.Addr().String() + "/health")
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	cancel()
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(10 * time.Second):
		t.Fatal("server did not shut down")
	}
}

func TestSignup_NormalizesEmail(t *testing.T) {
	s := newTestServer(t)

	w := doJSON(t, s, http.MethodPost, "/api/users/signup", creds(" A@X.com ", "pw1"), "")
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	var signup SignupResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &signup))
	assert.Equal(t, "a@x.com", signup.User.Email)

	w = doJSON(t, s, http.MethodPost, "/api/users/signup", creds("a@x.com", "pw2"), "")
	assert.Equal(t, http.StatusConflict, w.Code)

	token := loginToken(t, s, "  a@X.COM", "pw1")
	assert.NotEmpty(t, token)
}

func TestNew_WithoutCORSOrigins(t *testing.T) {
	cfg := testConfig("0")
	cfg.Server.CORSOrigins = nil

	var s *Server
	require.NotPanics(t, func() { s = newTestServerWithConfig(t, cfg) })

	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	req.Header.Set("Origin", "http://localhost:5173")
	w := httptest.NewRecorder()
	s.Handler().ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Empty(t, w.Header().Get("Access-Control-Allow-Origin"))
}
