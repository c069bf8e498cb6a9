package config

import (
	"bytes"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sample = `
private:
  token: yaml-token
  owner: "100"
  prefix: "?"
  github:
    repository: divine-development/divine
    interval: 2m
  appeals:
    entry_channel: "500"
servers:
  - id: "300"
    prefix: "$"
  - id: "301"
`

func TestReadDefaults(t *testing.T) {
	root, err := Read(strings.NewReader(sample))
	require.NoError(t, err)

	root.Defaults()

	assert.Equal(t, "?", root.Private.Prefix)
	assert.Equal(t, DefaultSettings, root.Private.Settings)
	assert.Equal(t, "100", root.Private.Owner)
	assert.Equal(t, 2*time.Minute, root.Private.GitHub.Interval)
	assert.Empty(t, root.Private.GitHub.Branch)
	assert.Equal(t, 20*time.Second, root.Private.Membership.StaffInterval)
	assert.Equal(t, 5*time.Minute, root.Private.Presence.Interval)
	assert.Equal(t, "500", root.Private.Appeals.EntryChannel)
	assert.Equal(t, map[string]string{"300": "$"}, root.Prefixes())
}

func TestWriteRead(t *testing.T) {
	root := &Root{
		Private: Private{Token: "t", Owner: "1"},
		Servers: []Server{{GuildID: "2", Prefix: "."}},
	}

	var buf bytes.Buffer

	require.NoError(t, Write(&buf, root))

	read, err := Read(&buf)
	require.NoError(t, err)
	assert.Equal(t, root, read)
}

func TestApplyEnv(t *testing.T) {
	root, err := Read(strings.NewReader(sample))
	require.NoError(t, err)

	env := map[string]string{
		EnvToken:       "env-token",
		EnvGitHubToken: "gh",
	}

	root.ApplyEnv(func(k string) (string, bool) {
		v, ok := env[k]

		return v, ok
	})

	assert.Equal(t, "env-token", root.Private.Token)
	assert.Equal(t, "gh", root.Private.GitHub.Token)
	assert.Empty(t, root.Private.Inspect.Password)
}

func TestParseColor(t *testing.T) {
	color, err := ParseColor("#ff8000")
	require.NoError(t, err)
	assert.Equal(t, 0xff8000, color)

	_, err = ParseColor("orange")
	assert.Error(t, err)

	p := Private{Color: "bad"}
	assert.Equal(t, 0x5865f2, p.EmbedColor())
}
