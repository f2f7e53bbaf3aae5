package storage

import (
	"errors"
	"fmt"
	"path"
	"strings"
	"sync"
)

// Blob is a stored payload plus its media type.
type Blob struct {
	Data []byte
	MIME string
}

// MemStore keeps session blobs (the upload preview and generated renders) in
// memory. It mirrors the contract of a keyed blob store but deliberately has
// no disk backing: nothing in a session outlives the process.
type MemStore struct {
	mu    sync.RWMutex
	blobs map[string]Blob
}

// NewMemStore initializes an empty store.
func NewMemStore() *MemStore {
	return &MemStore{blobs: make(map[string]Blob)}
}

// Write stores the provided bytes at the given key and returns the
// canonicalized key. Keys are cleaned to keep lookups unambiguous.
func (s *MemStore) Write(key string, data []byte, mime string) (string, error) {
	cleanKey, err := sanitizeKey(key)
	if err != nil {
		return "", err
	}
	if len(data) == 0 {
		return "", errors.New("storage: empty payload")
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.blobs[cleanKey] = Blob{Data: data, MIME: mime}
	return cleanKey, nil
}

// Read returns the blob stored at key, if any.
func (s *MemStore) Read(key string) (Blob, bool) {
	cleanKey, err := sanitizeKey(key)
	if err != nil {
		return Blob{}, false
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	blob, ok := s.blobs[cleanKey]
	return blob, ok
}

// Remove deletes the blob stored at key and reports whether one was present.
func (s *MemStore) Remove(key string) bool {
	cleanKey, err := sanitizeKey(key)
	if err != nil {
		return false
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.blobs[cleanKey]; !ok {
		return false
	}
	delete(s.blobs, cleanKey)
	return true
}

// RemovePrefix deletes every blob whose key starts with prefix and returns
// the number removed.
func (s *MemStore) RemovePrefix(prefix string) int {
	cleanPrefix, err := sanitizeKey(prefix)
	if err != nil {
		return 0
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	removed := 0
	for key := range s.blobs {
		if strings.HasPrefix(key, cleanPrefix) {
			delete(s.blobs, key)
			removed++
		}
	}
	return removed
}

// Len reports the number of stored blobs.
func (s *MemStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.blobs)
}

func sanitizeKey(key string) (string, error) {
	key = strings.TrimSpace(key)
	if key == "" {
		return "", errors.New("storage: key is required")
	}
	cleaned := path.Clean(strings.TrimLeft(key, "/"))
	if cleaned == "." || cleaned == ".." || strings.HasPrefix(cleaned, "../") {
		return "", fmt.Errorf("storage: invalid key %q", key)
	}
	return cleaned, nil
}
