package cache

import (
	"errors"
	"fmt"
	"sync"
	"time"
)

var ErrMiss = errors.New("cache: key not found")

type item struct {
	value    interface{}
	expireAt time.Time
}

func (i *item) expired() bool {
	return time.Now().After(i.expireAt)
}

// Memory is an in-process TTL cache with LRU eviction. It keeps
// recently served query results so repeated identical requests do not
// hit the backing store.
type Memory struct {
	data          map[string]*item
	access        map[string]time.Time
	mutex         sync.Mutex
	maxSize       int
	cleanupTicker *time.Ticker
}

// NewMemory creates an in-memory cache.
func NewMemory(opts ...Option) *Memory {
	cfg := &Config{
		MaxSize:         1000,
		CleanupInterval: 5 * time.Minute,
	}
	for _, opt := range opts {
		opt(cfg)
	}

	m := &Memory{
		data:          make(map[string]*item),
		access:        make(map[string]time.Time),
		maxSize:       cfg.MaxSize,
		cleanupTicker: time.NewTicker(cfg.CleanupInterval),
	}

	go m.cleanupExpired()
	return m
}

// Set stores value under key for ttl.
func (m *Memory) Set(key string, value interface{}, ttl time.Duration) {
	m.mutex.Lock()
	defer m.mutex.Unlock()

	if len(m.data) >= m.maxSize {
		m.evictLRU()
	}

	m.data[key] = &item{value: value, expireAt: time.Now().Add(ttl)}
	m.access[key] = time.Now()
}

// Get returns the cached value for key, or ErrMiss.
func (m *Memory) Get(key string) (interface{}, error) {
	m.mutex.Lock()
	defer m.mutex.Unlock()

	it, ok := m.data[key]
	if !ok || it.expired() {
		if ok {
			delete(m.data, key)
			delete(m.access, key)
		}
		return nil, ErrMiss
	}

	m.access[key] = time.Now()
	return it.value, nil
}

// Delete removes keys.
func (m *Memory) Delete(keys ...string) {
	m.mutex.Lock()
	defer m.mutex.Unlock()

	for _, key := range keys {
		delete(m.data, key)
		delete(m.access, key)
	}
}

// Len reports the number of entries, expired ones included.
func (m *Memory) Len() int {
	m.mutex.Lock()
	defer m.mutex.Unlock()
	return len(m.data)
}

// Close stops the cleanup ticker.
func (m *Memory) Close() error {
	if m.cleanupTicker != nil {
		m.cleanupTicker.Stop()
	}
	return nil
}

func (m *Memory) evictLRU() {
	if len(m.data) == 0 {
		return
	}

	var oldestKey string
	oldestTime := time.Now()

	for key, accessTime := range m.access {
		if accessTime.Before(oldestTime) {
			oldestTime = accessTime
			oldestKey = key
		}
	}

	if oldestKey != "" {
		delete(m.data, oldestKey)
		delete(m.access, oldestKey)
	}
}

func (m *Memory) cleanupExpired() {
	for range m.cleanupTicker.C {
		m.mutex.Lock()
		now := time.Now()
		for key, it := range m.data {
			if now.After(it.expireAt) {
				delete(m.data, key)
				delete(m.access, key)
			}
		}
		m.mutex.Unlock()
	}
}

// Key builds a cache key from a prefix and parameters.
func Key(prefix string, params ...interface{}) string {
	key := prefix
	for _, param := range params {
		key = fmt.Sprintf("%s:%v", key, param)
	}
	return key
}
