// Package views holds the CLI's protected pages.
package views

import (
	"fmt"
	"io"
)

// Sections of the home page, in display order
var Sections = []string{
	"About",
	"Projects",
	"Testimonials",
	"Contact",
}

// Home is the protected landing page
type Home struct {
	// Email of the signed-in user, if known
	Email string
}

func (h Home) Render(w io.Writer) error {
	if h.Email != "" {
		if _, err := fmt.Fprintf(w, "Welcome back, %s\n\n", h.Email); err != nil {
			return err
		}
	}
	for _, s := range Sections {
		if _, err := fmt.Fprintf(w, "## %s\n", s); err != nil {
			return err
		}
	}
	return nil
}
