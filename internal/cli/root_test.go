package cli

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestVersionCommand(t *testing.T) {
	var out bytes.Buffer
	cmd := NewRootCmd()
	cmd.SetOut(&out)
	cmd.SetArgs([]string{"version"})

	require.NoError(t, cmd.Execute())
	assert.Equal(t, "folio version dev\n", out.String())
}

func TestRootRegistersCommands(t *testing.T) {
	cmd := NewRootCmd()

	for _, name := range []string{"signup", "login", "logout", "status", "whoami", "home", "users", "use"} {
		sub, _, err := cmd.Find([]string{name})
		require.NoError(t, err, name)
		assert.Equal(t, name, sub.Name())
	}
}

func TestServerFlagIsInherited(t *testing.T) {
	cmd := NewRootCmd()
	sub, _, err := cmd.Find([]string{"status"})
	require.NoError(t, err)
	assert.NotNil(t, sub.InheritedFlags().Lookup("server"))
}
