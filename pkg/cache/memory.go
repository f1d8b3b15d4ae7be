package cache

import (
	"container/list"
	"sync"
)

// memoryTier is a byte-budgeted LRU store for response entries.
// All access goes through its mutex.
type memoryTier struct {
	mu      sync.Mutex
	budget  int64
	used    int64
	lru     *list.List // front = most recently used
	entries map[string]*list.Element
}

type memoryItem struct {
	key   string
	entry *Entry
}

func newMemoryTier(budget int64) *memoryTier {
	return &memoryTier{
		budget:  budget,
		lru:     list.New(),
		entries: make(map[string]*list.Element),
	}
}

// get returns the entry for key, promoting it to most recently used.
// Expired entries are removed and reported as misses.
func (m *memoryTier) get(key string) (*Entry, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()

	elem, ok := m.entries[key]
	if !ok {
		return nil, false
	}

	item := elem.Value.(*memoryItem)
	if item.entry.IsExpired() {
		m.removeLocked(elem)
		return nil, false
	}

	m.lru.MoveToFront(elem)
	return item.entry, true
}

// set stores the entry, evicting least recently used entries until the
// byte budget is satisfied. Entries larger than the whole budget are
// silently skipped.
func (m *memoryTier) set(key string, entry *Entry) {
	size := int64(entry.Size())
	if size > m.budget {
		return
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	if elem, ok := m.entries[key]; ok {
		m.removeLocked(elem)
	}

	for m.used+size > m.budget {
		oldest := m.lru.Back()
		if oldest == nil {
			break
		}
		m.removeLocked(oldest)
		CacheEvictions.Inc()
	}

	elem := m.lru.PushFront(&memoryItem{key: key, entry: entry})
	m.entries[key] = elem
	m.used += size
	CacheSize.WithLabelValues("memory").Set(float64(m.used))
}

// clear drops all entries.
func (m *memoryTier) clear() {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.lru.Init()
	m.entries = make(map[string]*list.Element)
	m.used = 0
	CacheSize.WithLabelValues("memory").Set(0)
}

// stats returns the current entry count and byte usage.
func (m *memoryTier) stats() (entries int, bytes int64) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.entries), m.used
}

// removeLocked unlinks an element; callers must hold the mutex.
func (m *memoryTier) removeLocked(elem *list.Element) {
	item := elem.Value.(*memoryItem)
	m.lru.Remove(elem)
	delete(m.entries, item.key)
	m.used -= int64(item.entry.Size())
	CacheSize.WithLabelValues("memory").Set(float64(m.used))
}
