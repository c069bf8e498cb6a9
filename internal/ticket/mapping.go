package ticket

import (
	"errors"
	"sort"
	"sync"

	"github.com/divine-development/divine/internal/model"
	"github.com/divine-development/divine/internal/store"
)

// MappingKey is store key of appeal mapping document
const MappingKey = "appeals"

// Mapping persists open appeals as {"<channelID>": <submitterID>} document
type Mapping struct {
	Store store.Store
	Key   string
	m     sync.Mutex
}

// NewMapping returns mapping stored under MappingKey
func NewMapping(s store.Store) *Mapping {
	return &Mapping{
		Store: s,
		Key:   MappingKey,
	}
}

func (mp *Mapping) load() (map[string]model.ID, error) {
	doc := make(map[string]model.ID)

	err := mp.Store.Get(mp.Key, &doc)
	if errors.Is(err, store.ErrNotFound) {
		return make(map[string]model.ID), nil
	}

	if err != nil {
		return nil, err
	}

	return doc, nil
}

// All returns copy of all open appeals
func (mp *Mapping) All() (map[string]string, error) {
	mp.m.Lock()
	defer mp.m.Unlock()

	doc, err := mp.load()
	if err != nil {
		return nil, err
	}

	res := make(map[string]string, len(doc))

	for k, v := range doc {
		res[k] = string(v)
	}

	return res, nil
}

// Channels returns sorted channel IDs of open appeals
func (mp *Mapping) Channels() ([]string, error) {
	all, err := mp.All()
	if err != nil {
		return nil, err
	}

	channels := make([]string, 0, len(all))

	for k := range all {
		channels = append(channels, k)
	}

	sort.Strings(channels)

	return channels, nil
}

// Get returns submitter of appeal in channel
func (mp *Mapping) Get(channelID string) (string, bool, error) {
	mp.m.Lock()
	defer mp.m.Unlock()

	doc, err := mp.load()
	if err != nil {
		return "", false, err
	}

	v, ok := doc[channelID]

	return string(v), ok, nil
}

// Put stores appeal channel submitter
func (mp *Mapping) Put(channelID, submitterID string) error {
	mp.m.Lock()
	defer mp.m.Unlock()

	doc, err := mp.load()
	if err != nil {
		return err
	}

	doc[channelID] = model.ID(submitterID)

	return mp.Store.Put(mp.Key, doc)
}

// Delete removes appeal channel, returns false when it was not mapped
func (mp *Mapping) Delete(channelID string) (bool, error) {
	mp.m.Lock()
	defer mp.m.Unlock()

	doc, err := mp.load()
	if err != nil {
		return false, err
	}

	if _, ok := doc[channelID]; !ok {
		return false, nil
	}

	delete(doc, channelID)

	return true, mp.Store.Put(mp.Key, doc)
}
