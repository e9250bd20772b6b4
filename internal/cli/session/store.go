package session

import "errors"

// ErrNoToken is returned by a TokenStore when nothing is stored for the server.
var ErrNoToken = errors.New("no token stored")

// TokenStore persists one session token per server URL in client-local storage
type TokenStore interface {
	SaveToken(server, token string) error
	LoadToken(server string) (string, error)
	DeleteToken(server string) error
}
