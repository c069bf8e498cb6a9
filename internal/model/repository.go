package model

import (
	"errors"
	"strings"

	"github.com/divine-development/divine/internal/store"
	"github.com/sirupsen/logrus"
)

const guildPrefix = "guilds/"

// Repository provides methods to load, save and patch guild configuration
type Repository struct {
	Store store.Store
	Log   *logrus.Logger
	locks *store.KeyLock
}

func guildKey(guildID string) string {
	return guildPrefix + guildID
}

// Load returns persisted guild config, or empty config when guild has none.
// Unparseable record is reported as *store.CorruptError.
func (repo *Repository) Load(guildID string) (*GuildConfig, error) {
	c := &GuildConfig{}

	err := repo.Store.Get(guildKey(guildID), c)
	if errors.Is(err, store.ErrNotFound) {
		return &GuildConfig{}, nil
	}

	if err != nil {
		return &GuildConfig{}, err
	}

	return c, nil
}

// Get returns guild config, logging load failures and falling back to empty config
func (repo *Repository) Get(guildID string) *GuildConfig {
	c, err := repo.Load(guildID)
	if err != nil {
		repo.Log.WithError(err).WithField("guild", guildID).Error("Loading guild config")
	}

	return c
}

// Save overwrites whole guild config
func (repo *Repository) Save(guildID string, c *GuildConfig) error {
	unlock := repo.locks.Lock(guildID)
	defer unlock()

	return repo.Store.Put(guildKey(guildID), c)
}

// Ensure persists empty config for guild with no record, returns true if created
func (repo *Repository) Ensure(guildID string) (bool, error) {
	unlock := repo.locks.Lock(guildID)
	defer unlock()

	_, err := repo.Store.Raw(guildKey(guildID))
	if err == nil {
		return false, nil
	}

	if !errors.Is(err, store.ErrNotFound) {
		return false, err
	}

	return true, repo.Store.Put(guildKey(guildID), &GuildConfig{})
}

// Update patches single field of guild config. Load, patch and save are
// performed while holding the guild lock, so concurrent updates of the same
// guild are applied one after another.
func (repo *Repository) Update(guildID, field string, value interface{}) error {
	unlock := repo.locks.Lock(guildID)
	defer unlock()

	c, err := repo.Load(guildID)

	switch {
	case store.IsCorrupt(err):
		repo.Log.WithError(err).WithField("guild", guildID).Warn("Replacing corrupt guild config")
	case err != nil:
		return err
	}

	err = c.Patch(field, value)
	if err != nil {
		return err
	}

	return repo.Store.Put(guildKey(guildID), c)
}

// Guilds returns IDs of all guilds with persisted config
func (repo *Repository) Guilds() ([]string, error) {
	keys, err := repo.Store.Keys(guildPrefix)
	if err != nil {
		return nil, err
	}

	ids := make([]string, 0, len(keys))

	for _, k := range keys {
		ids = append(ids, strings.TrimPrefix(k, guildPrefix))
	}

	return ids, nil
}

// Raw returns persisted guild config document
func (repo *Repository) Raw(guildID string) ([]byte, error) {
	return repo.Store.Raw(guildKey(guildID))
}
