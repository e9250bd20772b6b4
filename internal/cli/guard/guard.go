// Package guard gates protected views on the client session.
package guard

import (
	"errors"
	"fmt"
	"io"
)

// LoginPath is where unauthenticated visitors are sent
const LoginPath = "/login"

// ErrRedirected is returned by Render when the view was withheld
var ErrRedirected = errors.New("redirected to login")

// Session is the part of the session holder the guard consults
type Session interface {
	IsLoggedIn() bool
}

// View renders a protected page
type View interface {
	Render(w io.Writer) error
}

// ViewFunc adapts a function to View
type ViewFunc func(w io.Writer) error

func (f ViewFunc) Render(w io.Writer) error { return f(w) }

// Decision is the outcome of a guard check
type Decision struct {
	Allowed bool
	// To is the redirect target when not allowed
	To string
}

// Redirected reports whether the visitor is sent elsewhere
func (d Decision) Redirected() bool {
	return !d.Allowed
}

// Guard allows a protected view only while the session is logged in
type Guard struct {
	session Session
}

// New creates a Guard over session
func New(session Session) *Guard {
	return &Guard{session: session}
}

// Check decides synchronously from the current session state
func (g *Guard) Check() Decision {
	if g.session != nil && g.session.IsLoggedIn() {
		return Decision{Allowed: true}
	}
	return Decision{To: LoginPath}
}

// Render writes view to w when allowed. Otherwise it writes a redirect
// notice, never touches the view, and returns ErrRedirected.
func (g *Guard) Render(w io.Writer, view View) error {
	decision := g.Check()
	if decision.Redirected() {
		fmt.Fprintf(w, "Not logged in. Redirecting to %s\n", decision.To)
		return ErrRedirected
	}
	return view.Render(w)
}
