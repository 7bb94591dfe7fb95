// Package apikey holds the allow-list of accepted API keys and the rule for
// picking a key out of the three places a client may send one.
package apikey

import "errors"

// ErrUnauthorized is returned when no candidate key is in the allow-list.
var ErrUnauthorized = errors.New("Invalid API key")

// KeySet is an immutable set of accepted keys. The empty string is never a member.
type KeySet struct {
	keys map[string]struct{}
}

// NewKeySet builds a KeySet from one or more key lists. Duplicates and empty
// strings are ignored.
func NewKeySet(lists ...[]string) *KeySet {
	keys := make(map[string]struct{})
	for _, list := range lists {
		for _, k := range list {
			if k == "" {
				continue
			}
			keys[k] = struct{}{}
		}
	}
	return &KeySet{keys: keys}
}

func (s *KeySet) Contains(key string) bool {
	if s == nil || key == "" {
		return false
	}
	_, ok := s.keys[key]
	return ok
}

func (s *KeySet) Len() int {
	if s == nil {
		return 0
	}
	return len(s.keys)
}

// Verify checks the header, query and cookie candidates in that order and
// returns the first one that is a member. Later candidates are not looked at
// once one matches.
func (s *KeySet) Verify(header, query, cookie string) (string, error) {
	for _, candidate := range [...]string{header, query, cookie} {
		if s.Contains(candidate) {
			return candidate, nil
		}
	}
	return "", ErrUnauthorized
}
