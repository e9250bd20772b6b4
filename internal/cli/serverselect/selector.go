package serverselect

import (
	"fmt"

	"github.com/manifoldco/promptui"

	"github.com/folio-dev/folio/internal/cli/userconfig"
)

// Candidates lists the servers worth offering, current first, without duplicates
func Candidates(cfg *userconfig.UserConfig) []string {
	seen := map[string]bool{}
	var out []string

	add := func(s string) {
		if s != "" && !seen[s] {
			seen[s] = true
			out = append(out, s)
		}
	}

	add(cfg.ServerURL)
	for _, s := range cfg.KnownServers {
		add(s)
	}
	add(userconfig.DefaultServer)

	return out
}

// PromptServerSelection shows an interactive prompt for the user to select a server
func PromptServerSelection(cfg *userconfig.UserConfig) (string, error) {
	servers := Candidates(cfg)

	type serverOption struct {
		Label string
		URL   string
	}

	options := make([]serverOption, len(servers))
	for i, s := range servers {
		label := s
		if s == cfg.ServerURL {
			label += " (current)"
		}
		options[i] = serverOption{Label: label, URL: s}
	}

	templates := &promptui.SelectTemplates{
		Label:    "{{ . }}",
		Active:   "> {{ .Label | cyan }}",
		Inactive: "  {{ .Label }}",
		Selected: "{{ .Label | green }}",
	}

	prompt := promptui.Select{
		Label:     "Select a server",
		Items:     options,
		Templates: templates,
		Size:      10,
	}

	index, _, err := prompt.Run()
	if err != nil {
		return "", fmt.Errorf("server selection cancelled: %w", err)
	}

	return options[index].URL, nil
}
