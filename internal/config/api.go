// Package config with configuration models and utilities
package config

import (
	"io"
	"time"

	colorful "github.com/lucasb-eyer/go-colorful"
	yaml "gopkg.in/yaml.v2"
)

// Default values applied to empty configuration fields
const (
	DefaultPrefix           = "!"
	DefaultSettings         = "settings"
	DefaultLogLevel         = "info"
	DefaultColor            = "#5865f2"
	DefaultPresenceTemplate = "over {guilds} servers"
)

// Environment variables overriding secrets
const (
	EnvToken           = "TOKEN"
	EnvGitHubToken     = "GITHUB_TOKEN"
	EnvInspectPassword = "INSPECT_PASSWORD"
)

// Read reads configuration
func Read(reader io.Reader) (root *Root, err error) {
	root = &Root{}
	err = yaml.NewDecoder(reader).Decode(root)

	return
}

// Write writes configuration
func Write(writer io.Writer, root *Root) (err error) {
	err = yaml.NewEncoder(writer).Encode(root)

	return
}

func orDefault(s *string, def string) {
	if *s == "" {
		*s = def
	}
}

func orDefaultDuration(d *time.Duration, def time.Duration) {
	if *d <= 0 {
		*d = def
	}
}

// Defaults fills unset fields
func (root *Root) Defaults() {
	p := &root.Private

	orDefault(&p.Prefix, DefaultPrefix)
	orDefault(&p.Settings, DefaultSettings)
	orDefault(&p.LogLevel, DefaultLogLevel)
	orDefault(&p.Color, DefaultColor)
	orDefault(&p.Presence.Template, DefaultPresenceTemplate)
	orDefaultDuration(&p.GitHub.Interval, time.Minute)
	orDefaultDuration(&p.Membership.StaffInterval, 20*time.Second)
	orDefaultDuration(&p.Membership.VIPInterval, 20*time.Second)
	orDefaultDuration(&p.Presence.Interval, 5*time.Minute)
}

// ApplyEnv overrides secrets from environment lookup
func (root *Root) ApplyEnv(lookup func(string) (string, bool)) {
	for name, field := range map[string]*string{
		EnvToken:           &root.Private.Token,
		EnvGitHubToken:     &root.Private.GitHub.Token,
		EnvInspectPassword: &root.Private.Inspect.Password,
	} {
		if v, ok := lookup(name); ok && v != "" {
			*field = v
		}
	}
}

// Prefixes returns per-guild command prefix overrides
func (root *Root) Prefixes() map[string]string {
	prefixes := make(map[string]string)

	for _, s := range root.Servers {
		if s.GuildID != "" && s.Prefix != "" {
			prefixes[s.GuildID] = s.Prefix
		}
	}

	return prefixes
}

// ParseColor converts #rrggbb hex into embed color value
func ParseColor(hex string) (int, error) {
	c, err := colorful.Hex(hex)
	if err != nil {
		return 0, err
	}

	r, g, b := c.RGB255()

	return int(r)<<16 | int(g)<<8 | int(b), nil
}

// EmbedColor returns configured embed color, falling back to default
func (p *Private) EmbedColor() int {
	color, err := ParseColor(p.Color)
	if err != nil {
		color, _ = ParseColor(DefaultColor)
	}

	return color
}
