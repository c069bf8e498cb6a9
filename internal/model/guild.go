package model

import (
	"errors"
	"fmt"
)

// GuildConfig field names as persisted
const (
	FieldWelcomeChannel    = "welcome_channel"
	FieldAdminRole         = "admin_role"
	FieldSuggestionChannel = "suggestion_channel"
	FieldVerified          = "verified"
)

var (
	// ErrUnknownField is returned when patching field GuildConfig does not have
	ErrUnknownField = errors.New("unknown config field")
	// ErrInvalidValue is returned when patch value type does not match field
	ErrInvalidValue = errors.New("invalid config value")
)

// GuildConfig holds per-guild settings, nil means not set
type GuildConfig struct {
	WelcomeChannel    *ID   `json:"welcome_channel"`
	AdminRole         *ID   `json:"admin_role"`
	SuggestionChannel *ID   `json:"suggestion_channel"`
	Verified          *bool `json:"verified"`
}

// Fields lists patchable field names
func Fields() []string {
	return []string{FieldWelcomeChannel, FieldAdminRole, FieldSuggestionChannel, FieldVerified}
}

func idValue(field string, value interface{}) (*ID, error) {
	switch v := value.(type) {
	case nil:
		return nil, nil
	case ID:
		return &v, nil
	case *ID:
		if v == nil {
			return nil, nil
		}

		c := *v

		return &c, nil
	case string:
		id := ID(v)

		return &id, nil
	}

	return nil, fmt.Errorf("%w: %s expects id, got %T", ErrInvalidValue, field, value)
}

func boolValue(field string, value interface{}) (*bool, error) {
	switch v := value.(type) {
	case nil:
		return nil, nil
	case bool:
		return &v, nil
	case *bool:
		if v == nil {
			return nil, nil
		}

		c := *v

		return &c, nil
	}

	return nil, fmt.Errorf("%w: %s expects bool, got %T", ErrInvalidValue, field, value)
}

// Patch sets single field to value, nil value clears the field
func (c *GuildConfig) Patch(field string, value interface{}) (err error) {
	switch field {
	case FieldWelcomeChannel:
		c.WelcomeChannel, err = idValue(field, value)
	case FieldAdminRole:
		c.AdminRole, err = idValue(field, value)
	case FieldSuggestionChannel:
		c.SuggestionChannel, err = idValue(field, value)
	case FieldVerified:
		c.Verified, err = boolValue(field, value)
	default:
		err = fmt.Errorf("%w: %s", ErrUnknownField, field)
	}

	return
}

// AdminRoleID returns admin role or empty string when not set
func (c *GuildConfig) AdminRoleID() string {
	if c.AdminRole == nil {
		return ""
	}

	return string(*c.AdminRole)
}

// WelcomeChannelID returns welcome channel or empty string when not set
func (c *GuildConfig) WelcomeChannelID() string {
	if c.WelcomeChannel == nil {
		return ""
	}

	return string(*c.WelcomeChannel)
}

// SuggestionChannelID returns suggestion channel or empty string when not set
func (c *GuildConfig) SuggestionChannelID() string {
	if c.SuggestionChannel == nil {
		return ""
	}

	return string(*c.SuggestionChannel)
}

// IsVerified returns true only if guild was explicitly verified
func (c *GuildConfig) IsVerified() bool {
	return c.Verified != nil && *c.Verified
}
