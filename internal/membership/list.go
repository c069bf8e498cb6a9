// Package membership provides persisted staff and vip lists with refreshed in-memory snapshots
package membership

import (
	"errors"
	"sync"

	"github.com/divine-development/divine/internal/model"
	"github.com/divine-development/divine/internal/store"
)

// Outcome reports result of list mutation
type Outcome int

// Mutation outcomes
const (
	Added Outcome = iota
	AlreadyPresent
	Removed
	NotPresent
)

// String implementation
func (o Outcome) String() string {
	switch o {
	case Added:
		return "added"
	case AlreadyPresent:
		return "already present"
	case Removed:
		return "removed"
	case NotPresent:
		return "not present"
	}

	return "unknown"
}

// Well-known lists
const (
	StaffKey   = "staff"
	StaffField = "staff"
	VIPKey     = "vips"
	VIPField   = "vips"
)

// List is a set of user IDs persisted as {"<field>": [ids...]} document
type List struct {
	Store store.Store
	Key   string
	Field string
	m     sync.Mutex
}

// NewList returns list stored under key with given document field
func NewList(s store.Store, key, field string) *List {
	return &List{
		Store: s,
		Key:   key,
		Field: field,
	}
}

// NewStaffList returns staff list
func NewStaffList(s store.Store) *List {
	return NewList(s, StaffKey, StaffField)
}

// NewVIPList returns vip list
func NewVIPList(s store.Store) *List {
	return NewList(s, VIPKey, VIPField)
}

func (l *List) load() ([]model.ID, error) {
	doc := make(map[string][]model.ID)

	err := l.Store.Get(l.Key, &doc)
	if errors.Is(err, store.ErrNotFound) {
		return nil, nil
	}

	if err != nil {
		return nil, err
	}

	return doc[l.Field], nil
}

func (l *List) save(ids []model.ID) error {
	if ids == nil {
		ids = []model.ID{}
	}

	return l.Store.Put(l.Key, map[string][]model.ID{
		l.Field: ids,
	})
}

// Members returns persisted members, missing document is an empty list
func (l *List) Members() ([]model.ID, error) {
	l.m.Lock()
	defer l.m.Unlock()

	return l.load()
}

// Ensure creates empty list document when none exists
func (l *List) Ensure() error {
	l.m.Lock()
	defer l.m.Unlock()

	_, err := l.Store.Raw(l.Key)
	if errors.Is(err, store.ErrNotFound) {
		return l.save(nil)
	}

	return err
}

// Add appends id unless already present
func (l *List) Add(id model.ID) (Outcome, error) {
	l.m.Lock()
	defer l.m.Unlock()

	ids, err := l.load()
	if err != nil {
		return AlreadyPresent, err
	}

	for _, i := range ids {
		if i == id {
			return AlreadyPresent, nil
		}
	}

	err = l.save(append(ids, id))
	if err != nil {
		return AlreadyPresent, err
	}

	return Added, nil
}

// Remove deletes id if present
func (l *List) Remove(id model.ID) (Outcome, error) {
	l.m.Lock()
	defer l.m.Unlock()

	ids, err := l.load()
	if err != nil {
		return NotPresent, err
	}

	kept := make([]model.ID, 0, len(ids))

	for _, i := range ids {
		if i != id {
			kept = append(kept, i)
		}
	}

	if len(kept) == len(ids) {
		return NotPresent, nil
	}

	err = l.save(kept)
	if err != nil {
		return NotPresent, err
	}

	return Removed, nil
}
