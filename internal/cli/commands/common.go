package commands

import (
	"fmt"
	"io"
	"os"

	"github.com/jonboulle/clockwork"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/folio-dev/folio/internal/cli/client"
	"github.com/folio-dev/folio/internal/cli/session"
	"github.com/folio-dev/folio/internal/cli/userconfig"
)

// APIClient is the subset of the Folio API the commands call
type APIClient interface {
	Signup(email, password string) (*client.User, error)
	Login(email, password string) (*client.LoginResponse, error)
	Me(token string) (*client.User, error)
	ListUsers(token string) ([]client.User, error)
	DeleteUser(token, id string) error
}

var _ APIClient = (*client.Client)(nil)

type options struct {
	server     string
	apiClient  APIClient
	tokenStore session.TokenStore
	prompter   Prompter
	out        io.Writer
	clock      clockwork.Clock
}

// Option overrides a dependency of a command, mostly for tests
type Option func(*options)

func WithServer(server string) Option {
	return func(o *options) { o.server = server }
}

func WithAPIClient(c APIClient) Option {
	return func(o *options) { o.apiClient = c }
}

func WithTokenStore(s session.TokenStore) Option {
	return func(o *options) { o.tokenStore = s }
}

func WithPrompter(p Prompter) Option {
	return func(o *options) { o.prompter = p }
}

func WithOutput(w io.Writer) Option {
	return func(o *options) { o.out = w }
}

func WithClock(c clockwork.Clock) Option {
	return func(o *options) { o.clock = c }
}

// env is everything a command needs, resolved once per invocation
type env struct {
	server   string
	api      APIClient
	holder   *session.Holder
	prompter Prompter
	out      io.Writer
}

func (e *env) printf(format string, args ...any) {
	fmt.Fprintf(e.out, format, args...)
}

// newEnv fills every dependency not set by an Option from the user config
func newEnv(cmd *cobra.Command, opts []Option) (*env, error) {
	o := &options{}
	for _, opt := range opts {
		opt(o)
	}

	cfg, err := userconfig.Load()
	if err != nil {
		return nil, err
	}

	server := o.server
	if server == "" {
		server = cfg.ResolveServer(serverFlag(cmd))
	}

	store := o.tokenStore
	if store == nil {
		store, err = defaultTokenStore(cfg)
		if err != nil {
			return nil, err
		}
	}

	api := o.apiClient
	if api == nil {
		api = client.New(server)
	}

	prompter := o.prompter
	if prompter == nil {
		prompter = terminalPrompter{}
	}

	out := o.out
	if out == nil {
		out = cmd.OutOrStdout()
	}

	return &env{
		server:   server,
		api:      api,
		holder:   session.NewHolder(server, store, o.clock).WithLogger(cliLogger(cmd.ErrOrStderr())),
		prompter: prompter,
		out:      out,
	}, nil
}

// cliLogger reports warnings on stderr without timestamps
func cliLogger(w io.Writer) zerolog.Logger {
	return zerolog.New(zerolog.ConsoleWriter{Out: w, NoColor: true, PartsExclude: []string{zerolog.TimestampFieldName}}).
		Level(zerolog.WarnLevel)
}

func serverFlag(cmd *cobra.Command) string {
	if f := cmd.Flags().Lookup("server"); f != nil {
		return f.Value.String()
	}
	return ""
}

func defaultTokenStore(cfg *userconfig.UserConfig) (session.TokenStore, error) {
	if cfg.TokenBackend == userconfig.BackendFile {
		path, err := userconfig.TokenFilePath()
		if err != nil {
			return nil, err
		}
		return session.NewFileStore(path), nil
	}
	return session.KeyringStore{}, nil
}

// credentials fills email and password from flags, env, then prompts
func credentials(e *env, email, password string) (string, string, error) {
	if email == "" {
		email = os.Getenv("FOLIO_EMAIL")
	}
	if password == "" {
		password = os.Getenv("FOLIO_PASSWORD")
	}

	if email == "" {
		if !e.prompter.Interactive() {
			return "", "", fmt.Errorf("email is required (use --email flag or FOLIO_EMAIL env var)")
		}
		var err error
		if email, err = e.prompter.Email(); err != nil {
			return "", "", err
		}
	}

	if password == "" {
		if !e.prompter.Interactive() {
			return "", "", fmt.Errorf("password is required in non-interactive mode (use --password flag or FOLIO_PASSWORD env var)")
		}
		var err error
		if password, err = e.prompter.Password(); err != nil {
			return "", "", err
		}
	}

	return email, password, nil
}

func addCredentialFlags(cmd *cobra.Command, email, password *string) {
	cmd.Flags().StringVar(email, "email", "", "Email address (or set FOLIO_EMAIL)")
	cmd.Flags().StringVar(password, "password", "", "Password (or set FOLIO_PASSWORD, will prompt if not provided)")
}
