// Package model provides guild configuration model and repository
package model

import (
	"github.com/divine-development/divine/internal/store"
	"github.com/sirupsen/logrus"
)

// NewRepository provides Repository instance
func NewRepository(s store.Store, log *logrus.Logger) *Repository {
	if log == nil {
		log = logrus.New()
	}

	return &Repository{
		Store: s,
		Log:   log,
		locks: store.NewKeyLock(),
	}
}
