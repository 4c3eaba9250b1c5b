package pkg

import (
	"fmt"
	"sort"
	"strings"
	"sync"
)

var (
	ErrInvalidPattern      = fmt.Errorf("invalid pattern")
	ErrInvalidSplatPattern = fmt.Errorf("splat patterns must start or end with *")
	ErrItemAlreadyExist    = fmt.Errorf("item already exist")
)

// MediaTypeStore utility to persist and search items by media type. Patterns can be exact ("application/xml"),
// prefix wildcards ("application/*") or suffix wildcards ("*+xml").
//
// IMPORTANT: Items should only persist during system startup.
type MediaTypeStore[T any] struct {
	mutex    sync.RWMutex
	exactly  map[string]T
	wildcard []*wildcardEntry[T]
}

type wildcardEntry[T any] struct {
	item    T
	pattern string
	prefix  string
	suffix  string
}

func (e *wildcardEntry[T]) matches(key string) bool {
	if len(e.prefix)+len(e.suffix) >= len(key) {
		return false
	}
	return strings.HasPrefix(key, e.prefix) && strings.HasSuffix(key, e.suffix)
}

// Get returns the value registered for exactly this pattern
func (s *MediaTypeStore[T]) Get(pattern string) (out T, found bool) {
	pattern = normalize(pattern)

	s.mutex.RLock()
	defer s.mutex.RUnlock()

	if item, exist := s.exactly[pattern]; exist {
		return item, true
	}
	for _, entry := range s.wildcard {
		if entry.pattern == pattern {
			return entry.item, true
		}
	}
	return
}

// Match returns the value of the most specific pattern that matches the given media type
func (s *MediaTypeStore[T]) Match(key string) (out T) {
	key = normalize(key)

	s.mutex.RLock()
	defer s.mutex.RUnlock()

	if item, exist := s.exactly[key]; exist {
		return item
	}

	for _, entry := range s.wildcard {
		if entry.matches(key) {
			return entry.item
		}
	}
	return
}

// MatchAll returns all existing values that match the given media type, most specific first
func (s *MediaTypeStore[T]) MatchAll(key string) []T {
	key = normalize(key)

	s.mutex.RLock()
	defer s.mutex.RUnlock()

	var items []T
	if item, exist := s.exactly[key]; exist {
		items = append(items, item)
	}

	for _, entry := range s.wildcard {
		if entry.matches(key) {
			items = append(items, entry.item)
		}
	}
	return items
}

func (s *MediaTypeStore[T]) Insert(pattern string, value T) error {
	pattern = normalize(pattern)
	if pattern == "" {
		return ErrInvalidPattern
	}

	s.mutex.Lock()
	defer s.mutex.Unlock()

	if strings.ContainsRune(pattern, '*') {
		entry := &wildcardEntry[T]{pattern: pattern, item: value}
		switch {
		case pattern == "*" || pattern == "*/*":
		case strings.HasSuffix(pattern, "*"):
			entry.prefix = strings.TrimSuffix(pattern, "*")
		case strings.HasPrefix(pattern, "*"):
			entry.suffix = strings.TrimPrefix(pattern, "*")
		default:
			return ErrInvalidSplatPattern
		}
		if strings.ContainsRune(entry.prefix, '*') || strings.ContainsRune(entry.suffix, '*') {
			return ErrInvalidSplatPattern
		}

		for _, w := range s.wildcard {
			if w.pattern == pattern {
				return ErrItemAlreadyExist
			}
		}

		wildcard := append(s.wildcard, entry)
		sort.SliceStable(wildcard, func(i, j int) bool {
			return len(wildcard[i].prefix)+len(wildcard[i].suffix) > len(wildcard[j].prefix)+len(wildcard[j].suffix)
		})
		s.wildcard = wildcard
		return nil
	}

	if s.exactly == nil {
		s.exactly = map[string]T{}
	}

	if _, exist := s.exactly[pattern]; exist {
		return ErrItemAlreadyExist
	}

	s.exactly[pattern] = value
	return nil
}

// normalize strips media type parameters and lowercases the type ("Text/XML; charset=utf-8" -> "text/xml")
func normalize(mediaType string) string {
	if i := strings.IndexByte(mediaType, ';'); i >= 0 {
		mediaType = mediaType[:i]
	}
	return strings.ToLower(strings.TrimSpace(mediaType))
}
