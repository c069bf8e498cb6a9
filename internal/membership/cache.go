package membership

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/divine-development/divine/internal/model"
	"github.com/divine-development/divine/internal/schedule"
	"github.com/divine-development/divine/internal/store"
	"github.com/sirupsen/logrus"
)

// DefaultInterval is refresh interval used when none configured
const DefaultInterval = 20 * time.Second

var empty = struct{}{}

// Cache keeps point-in-time snapshot of List. Mutations go to the persisted
// list and become visible only after next Refresh.
type Cache struct {
	List     *List
	Name     string
	Interval time.Duration
	log      *logrus.Logger
	m        sync.RWMutex
	members  map[model.ID]struct{}
}

// NewCache returns empty cache over list
func NewCache(name string, list *List, interval time.Duration, log *logrus.Logger) *Cache {
	if interval <= 0 {
		interval = DefaultInterval
	}

	if log == nil {
		log = logrus.New()
	}

	return &Cache{
		List:     list,
		Name:     name,
		Interval: interval,
		log:      log,
		members:  make(map[model.ID]struct{}),
	}
}

// Refresh reloads persisted list into snapshot. Corrupt list is logged and
// results in empty snapshot.
func (c *Cache) Refresh() error {
	ids, err := c.List.Members()

	switch {
	case store.IsCorrupt(err):
		c.log.WithError(err).WithField("list", c.Name).Error("Loading membership list")

		ids = nil
	case err != nil:
		return err
	}

	members := make(map[model.ID]struct{}, len(ids))

	for _, id := range ids {
		members[id] = empty
	}

	c.m.Lock()
	c.members = members
	c.m.Unlock()

	c.log.WithField("list", c.Name).WithField("members", len(members)).Debug("Membership list refreshed")

	return nil
}

// ForceRefresh performs same work as periodic refresh on demand
func (c *Cache) ForceRefresh() (int, error) {
	err := c.Refresh()
	if err != nil {
		return 0, err
	}

	return c.Len(), nil
}

// Contains checks snapshot for id
func (c *Cache) Contains(id model.ID) bool {
	c.m.RLock()
	_, ok := c.members[id]
	c.m.RUnlock()

	return ok
}

// Len returns snapshot size
func (c *Cache) Len() int {
	c.m.RLock()
	defer c.m.RUnlock()

	return len(c.members)
}

// Members returns sorted snapshot copy
func (c *Cache) Members() []model.ID {
	c.m.RLock()

	ids := make([]model.ID, 0, len(c.members))

	for id := range c.members {
		ids = append(ids, id)
	}

	c.m.RUnlock()

	sort.Slice(ids, func(i, j int) bool {
		return ids[i] < ids[j]
	})

	return ids
}

// Add adds id to persisted list, snapshot is not changed
func (c *Cache) Add(id model.ID) (Outcome, error) {
	return c.List.Add(id)
}

// Remove removes id from persisted list, snapshot is not changed
func (c *Cache) Remove(id model.ID) (Outcome, error) {
	return c.List.Remove(id)
}

// Task returns periodic refresh task
func (c *Cache) Task() schedule.Task {
	return schedule.Task{
		Name:     c.Name + ".refresh",
		Interval: c.Interval,
		Run: func(context.Context) error {
			return c.Refresh()
		},
	}
}
