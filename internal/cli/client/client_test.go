package client

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLogin(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/users/login", r.URL.Path)
		assert.Equal(t, http.MethodPost, r.Method)

		var req CredentialsRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))

		if req.Password != "pw1" {
			w.WriteHeader(http.StatusUnauthorized)
			w.Write([]byte(`{"error":"Invalid credentials"}`))
			return
		}
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"token":"tok","expires_at":"2030-01-01T00:00:00Z","user":{"id":"u1","email":"a@x.com"}}`))
	}))
	defer server.Close()

	c := New(server.URL + "/")

	resp, err := c.Login("a@x.com", "pw1")
	require.NoError(t, err)
	assert.Equal(t, "tok", resp.Token)
	assert.Equal(t, "a@x.com", resp.User.Email)
	assert.Equal(t, 2030, resp.ExpiresAt.Year())

	_, err = c.Login("a@x.com", "wrong")
	require.Error(t, err)
	assert.Equal(t, http.StatusUnauthorized, StatusCode(err))
	assert.Contains(t, err.Error(), "Invalid credentials")
}

func TestSignup(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/users/signup", r.URL.Path)
		w.WriteHeader(http.StatusConflict)
		w.Write([]byte(`{"error":"User already exists"}`))
	}))
	defer server.Close()

	_, err := New(server.URL).Signup("a@x.com", "pw")
	require.Error(t, err)
	assert.Equal(t, http.StatusConflict, StatusCode(err))
}

func TestMe_SendsBearer(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("Authorization") != "Bearer tok" {
			w.WriteHeader(http.StatusUnauthorized)
			return
		}
		w.Write([]byte(`{"id":"u1","email":"a@x.com"}`))
	}))
	defer server.Close()

	c := New(server.URL)

	user, err := c.Me("tok")
	require.NoError(t, err)
	assert.Equal(t, "u1", user.ID)

	_, err = c.Me("other")
	assert.Equal(t, http.StatusUnauthorized, StatusCode(err))
	assert.Contains(t, err.Error(), "Unauthorized")
}

func TestDeleteUser(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodDelete, r.Method)
		assert.Equal(t, "/api/users/u2", r.URL.Path)
		w.WriteHeader(http.StatusNoContent)
	}))
	defer server.Close()

	require.NoError(t, New(server.URL).DeleteUser("tok", "u2"))
}

func TestDeleteUser_EscapesID(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/users/a%2Fb%3Fx", r.URL.EscapedPath())
		assert.Empty(t, r.URL.RawQuery)
		w.WriteHeader(http.StatusNoContent)
	}))
	defer server.Close()

	require.NoError(t, New(server.URL).DeleteUser("tok", "a/b?x"))
}

func TestUnreachableServer(t *testing.T) {
	server := httptest.NewServer(http.NotFoundHandler())
	url := server.URL
	server.Close()

	_, err := New(url).Login("a@x.com", "pw")
	require.Error(t, err)
	assert.Equal(t, 0, StatusCode(err))
}
