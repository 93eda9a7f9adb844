package knowledge

import (
	"fmt"
	"sort"

	"github.com/zhouzirui/edu-guide/backend/internal/model/chat"
)

// Store exposes curated guidance lookups for the composer and HTTP handlers.
type Store interface {
	Lookup(field chat.Field, topic chat.Topic) (Entry, bool)
	Resolve(field chat.Field, topic chat.Topic) (Entry, bool)
	Topics(field chat.Field) []chat.Topic
}

// MemoryStore implements Store with an immutable in-memory table.
type MemoryStore struct {
	items []Entry
	index map[Key]int
}

// NewMemoryStore indexes the supplied entries. Duplicate keys are rejected.
func NewMemoryStore(items []Entry) (*MemoryStore, error) {
	s := &MemoryStore{
		items: make([]Entry, 0, len(items)),
		index: make(map[Key]int, len(items)),
	}
	for _, item := range items {
		key := item.Key()
		if _, dup := s.index[key]; dup {
			return nil, fmt.Errorf("duplicate knowledge entry %s", key)
		}
		s.index[key] = len(s.items)
		s.items = append(s.items, item.Clone())
	}
	return s, nil
}

// MustDefault returns a store preloaded with Seed.
func MustDefault() *MemoryStore {
	s, err := NewMemoryStore(Seed())
	if err != nil {
		panic(err)
	}
	return s
}

// Lookup finds the entry for exactly (field, topic).
func (s *MemoryStore) Lookup(field chat.Field, topic chat.Topic) (Entry, bool) {
	idx, ok := s.index[Key{Field: field, Topic: topic}]
	if !ok {
		return Entry{}, false
	}
	return s.items[idx].Clone(), true
}

// Resolve tries the exact key first and then the general entry for the same topic.
func (s *MemoryStore) Resolve(field chat.Field, topic chat.Topic) (Entry, bool) {
	if entry, ok := s.Lookup(field, topic); ok {
		return entry, true
	}
	if field == chat.FieldGeneral {
		return Entry{}, false
	}
	return s.Lookup(chat.FieldGeneral, topic)
}

// Topics lists the curated topics for a field in a stable order.
func (s *MemoryStore) Topics(field chat.Field) []chat.Topic {
	var topics []chat.Topic
	for _, item := range s.items {
		if item.Field == field {
			topics = append(topics, item.Topic)
		}
	}
	sort.Slice(topics, func(i, j int) bool { return topics[i] < topics[j] })
	return topics
}
