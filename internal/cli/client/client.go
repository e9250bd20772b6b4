package client

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"
)

// Client represents an HTTP client for the Folio API
type Client struct {
	baseURL    string
	httpClient *http.Client
}

// New creates a new API client for the server at baseURL
func New(baseURL string) *Client {
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
	}
}

// SetHTTPClient sets a custom HTTP client
func (c *Client) SetHTTPClient(httpClient *http.Client) {
	c.httpClient = httpClient
}

// APIError is a non-2xx response from the server
type APIError struct {
	StatusCode int
	Message    string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("%s (status %d)", e.Message, e.StatusCode)
}

// StatusCode returns the HTTP status of err if it is an APIError, else 0
func StatusCode(err error) int {
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return apiErr.StatusCode
	}
	return 0
}

// CredentialsRequest is the body of signup and login
type CredentialsRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// User is the public view of an account
type User struct {
	ID        string    `json:"id"`
	Email     string    `json:"email"`
	CreatedAt time.Time `json:"created_at"`
}

// LoginResponse represents the login response
type LoginResponse struct {
	Token     string    `json:"token"`
	ExpiresAt time.Time `json:"expires_at"`
	User      User      `json:"user"`
}

type signupResponse struct {
	User User `json:"user"`
}

// Signup registers a new account. The server does not log the user in.
func (c *Client) Signup(email, password string) (*User, error) {
	var resp signupResponse
	if err := c.do(http.MethodPost, "/api/users/signup", "", CredentialsRequest{Email: email, Password: password}, http.StatusCreated, &resp); err != nil {
		return nil, err
	}
	return &resp.User, nil
}

// Login authenticates the user and returns a JWT token
func (c *Client) Login(email, password string) (*LoginResponse, error) {
	var resp LoginResponse
	if err := c.do(http.MethodPost, "/api/users/login", "", CredentialsRequest{Email: email, Password: password}, http.StatusOK, &resp); err != nil {
		return nil, err
	}
	if resp.Token == "" {
		return nil, fmt.Errorf("server returned an empty token")
	}
	return &resp, nil
}

// Me returns the user the token belongs to
func (c *Client) Me(token string) (*User, error) {
	var user User
	if err := c.do(http.MethodGet, "/api/users/me", token, nil, http.StatusOK, &user); err != nil {
		return nil, err
	}
	return &user, nil
}

// ListUsers returns all accounts, newest first
func (c *Client) ListUsers(token string) ([]User, error) {
	var users []User
	if err := c.do(http.MethodGet, "/api/users", token, nil, http.StatusOK, &users); err != nil {
		return nil, err
	}
	return users, nil
}

// DeleteUser removes the account with id
func (c *Client) DeleteUser(token, id string) error {
	return c.do(http.MethodDelete, "/api/users/"+url.PathEscape(id), token, nil, http.StatusNoContent, nil)
}

func (c *Client) do(method, path, token string, body any, expected int, out any) error {
	var reader io.Reader
	if body != nil {
		jsonData, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("failed to marshal request: %w", err)
		}
		reader = bytes.NewReader(jsonData)
	}

	req, err := http.NewRequest(method, c.baseURL+path, reader)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", fmt.Sprintf("Bearer %s", token))
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("failed to send request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != expected {
		return decodeError(resp)
	}

	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("failed to decode response: %w", err)
	}
	return nil
}

func decodeError(resp *http.Response) error {
	data, _ := io.ReadAll(resp.Body)

	var body struct {
		Error string `json:"error"`
	}
	message := strings.TrimSpace(string(data))
	if json.Unmarshal(data, &body) == nil && body.Error != "" {
		message = body.Error
	}
	if message == "" {
		message = http.StatusText(resp.StatusCode)
	}

	return &APIError{StatusCode: resp.StatusCode, Message: message}
}
