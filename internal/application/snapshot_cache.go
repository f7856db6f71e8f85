package application

import (
	"sync"
	"time"
)

// snapshotCache keeps recently read appointment rows so that repeated
// availability queries do not hit storage while nothing has been written.
// Entries hold stored rows only; room and client names are not cached.
type snapshotCache struct {
	mu         sync.RWMutex
	now        func() time.Time
	ttl        time.Duration
	maxEntries int
	entries    map[string]snapshotCacheEntry
}

type snapshotCacheEntry struct {
	appointments []Appointment
	expiresAt    time.Time
}

func newSnapshotCache(ttl time.Duration, maxEntries int, now func() time.Time) *snapshotCache {
	if ttl <= 0 {
		ttl = 15 * time.Second
	}
	if maxEntries <= 0 {
		maxEntries = 64
	}
	if now == nil {
		now = time.Now
	}
	return &snapshotCache{
		now:        now,
		ttl:        ttl,
		maxEntries: maxEntries,
		entries:    make(map[string]snapshotCacheEntry),
	}
}

func (c *snapshotCache) Get(key string) ([]Appointment, bool) {
	if c == nil {
		return nil, false
	}
	c.mu.RLock()
	entry, ok := c.entries[key]
	c.mu.RUnlock()
	if !ok {
		return nil, false
	}
	if c.now().After(entry.expiresAt) {
		c.mu.Lock()
		delete(c.entries, key)
		c.mu.Unlock()
		return nil, false
	}
	return cloneAppointments(entry.appointments), true
}

func (c *snapshotCache) Store(key string, appointments []Appointment) {
	if c == nil {
		return
	}
	cloned := cloneAppointments(appointments)
	expiry := c.now().Add(c.ttl)

	c.mu.Lock()
	defer c.mu.Unlock()

	c.cleanupLocked()
	if len(c.entries) >= c.maxEntries {
		c.evictOneLocked()
	}
	c.entries[key] = snapshotCacheEntry{appointments: cloned, expiresAt: expiry}
}

func (c *snapshotCache) Invalidate() {
	if c == nil {
		return
	}
	c.mu.Lock()
	c.entries = make(map[string]snapshotCacheEntry)
	c.mu.Unlock()
}

func (c *snapshotCache) cleanupLocked() {
	now := c.now()
	for key, entry := range c.entries {
		if now.After(entry.expiresAt) {
			delete(c.entries, key)
		}
	}
}

// evictOneLocked drops the entry closest to expiry.
func (c *snapshotCache) evictOneLocked() {
	var (
		victim string
		oldest time.Time
	)
	for key, entry := range c.entries {
		if victim == "" || entry.expiresAt.Before(oldest) {
			victim, oldest = key, entry.expiresAt
		}
	}
	delete(c.entries, victim)
}

func cloneAppointments(appointments []Appointment) []Appointment {
	if len(appointments) == 0 {
		return nil
	}
	out := make([]Appointment, len(appointments))
	copy(out, appointments)
	return out
}

func snapshotKey(filter AppointmentRepositoryFilter) string {
	date := ""
	if filter.Date != nil {
		date = filter.Date.String()
	}
	return date + "|" + filter.RoomID + "|" + filter.ClientID
}
