// Package session holds the client's session token for one server and
// answers whether the client is logged in.
package session

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/jonboulle/clockwork"
	"github.com/rs/zerolog"
)

// ErrNotLoggedIn is returned by Token when no usable token is held.
var ErrNotLoggedIn = errors.New("not logged in. Please run 'folio login' first")

// Holder is the client session for a single server. It is passed explicitly
// to whatever needs to know the login state.
type Holder struct {
	server string
	store  TokenStore
	clock  clockwork.Clock
	logger zerolog.Logger
}

// NewHolder creates a Holder for server backed by store
func NewHolder(server string, store TokenStore, clock clockwork.Clock) *Holder {
	if clock == nil {
		clock = clockwork.NewRealClock()
	}
	return &Holder{
		server: server,
		store:  store,
		clock:  clock,
		logger: zerolog.Nop(),
	}
}

// WithLogger sets where storage failures hidden behind IsLoggedIn are reported
func (h *Holder) WithLogger(l zerolog.Logger) *Holder {
	h.logger = l
	return h
}

// Server returns the server URL this session belongs to
func (h *Holder) Server() string {
	return h.server
}

// SetToken persists token, replacing any previous one. Tokens the client
// cannot read are refused, since they could never count as logged in.
func (h *Holder) SetToken(token string) error {
	if token == "" {
		return fmt.Errorf("refusing to store an empty token")
	}
	if _, err := ParseClaims(token); err != nil {
		return fmt.Errorf("refusing to store token: %w", err)
	}
	return h.store.SaveToken(h.server, token)
}

// ClearToken removes the stored token. Clearing an empty session succeeds.
func (h *Holder) ClearToken() error {
	return h.store.DeleteToken(h.server)
}

// IsLoggedIn reports whether a token is stored and has not expired
func (h *Holder) IsLoggedIn() bool {
	_, err := h.Token()
	if err != nil && !errors.Is(err, ErrNotLoggedIn) {
		h.logger.Warn().Err(err).Str("server", h.server).Msg("Could not read session token")
	}
	return err == nil
}

// Token returns the stored token if it is present and unexpired
func (h *Holder) Token() (string, error) {
	token, err := h.store.LoadToken(h.server)
	if err != nil {
		if errors.Is(err, ErrNoToken) {
			return "", ErrNotLoggedIn
		}
		return "", err
	}

	expiresAt, err := Expiry(token)
	if err != nil {
		return "", fmt.Errorf("%w: stored token is unreadable", ErrNotLoggedIn)
	}
	if !expiresAt.IsZero() && !h.clock.Now().Before(expiresAt) {
		return "", fmt.Errorf("%w: session expired at %s", ErrNotLoggedIn, expiresAt.Format(time.RFC3339))
	}

	return token, nil
}

// Claims are the token fields the client reads
type Claims struct {
	UserID string `json:"user_id"`
	Email  string `json:"email"`
	jwt.RegisteredClaims
}

// ParseClaims decodes a JWT without verifying its signature.
// The client holds no secret, so the server stays the authority on validity.
func ParseClaims(token string) (*Claims, error) {
	claims := &Claims{}
	if _, _, err := jwt.NewParser().ParseUnverified(token, claims); err != nil {
		return nil, fmt.Errorf("failed to parse token: %w", err)
	}
	return claims, nil
}

// Expiry reads the exp claim of a JWT. A token without exp yields the zero time.
func Expiry(token string) (time.Time, error) {
	claims, err := ParseClaims(token)
	if err != nil {
		return time.Time{}, err
	}
	if claims.ExpiresAt == nil {
		return time.Time{}, nil
	}
	return claims.ExpiresAt.Time, nil
}
