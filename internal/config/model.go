package config

import (
	"time"
)

// Redis connection part of configuration
type Redis struct {
	Address  string `yaml:"address"`
	Password string `yaml:"password"`
	DB       int    `yaml:"db"`
	Prefix   string `yaml:"prefix"`
}

// GitHub upstream repository polled for new commits
type GitHub struct {
	URL        string        `yaml:"url"`
	Repository string        `yaml:"repository"`
	Branch     string        `yaml:"branch"`
	Token      string        `yaml:"token"`
	Interval   time.Duration `yaml:"interval"`
}

// Membership cache refresh periods
type Membership struct {
	StaffInterval time.Duration `yaml:"staff_interval"`
	VIPInterval   time.Duration `yaml:"vip_interval"`
}

// Presence status rotation
type Presence struct {
	Template string        `yaml:"template"`
	Interval time.Duration `yaml:"interval"`
}

// Appeals ticket channels
type Appeals struct {
	EntryChannel string `yaml:"entry_channel"`
	StaffRole    string `yaml:"staff_role"`
	Category     string `yaml:"category"`
}

// Inspect HTTP viewer of persisted documents
type Inspect struct {
	Listen   string `yaml:"listen"`
	Username string `yaml:"username"`
	Password string `yaml:"password"`
}

// Private part of configuration
type Private struct {
	Token      string     `yaml:"token"`
	Owner      string     `yaml:"owner"`
	Prefix     string     `yaml:"prefix"`
	Settings   string     `yaml:"settings"`
	LogLevel   string     `yaml:"log_level"`
	Color      string     `yaml:"color"`
	LogDB      string     `yaml:"logdb"`
	Redis      Redis      `yaml:"redis"`
	GitHub     GitHub     `yaml:"github"`
	Membership Membership `yaml:"membership"`
	Presence   Presence   `yaml:"presence"`
	Appeals    Appeals    `yaml:"appeals"`
	Inspect    Inspect    `yaml:"inspect"`
}

// Server specific part of configuration
type Server struct {
	GuildID string `yaml:"id"`
	Prefix  string `yaml:"prefix"`
}

// Root of configuration
type Root struct {
	Private Private  `yaml:"private"`
	Servers []Server `yaml:"servers"`
}
