package importer

import "strings"

// dedupe.go holds the duplicate index: a set of identity keys seeded from
// persisted records before the batch starts and grown as the batch commits
// rows, so later rows colliding with either are skipped. The index lives for
// one batch run and is never persisted.

type keySet map[string]struct{}

func newKeySet(keys ...string) keySet {
	s := make(keySet, len(keys))
	for _, k := range keys {
		s.add(k)
	}
	return s
}

func (s keySet) add(k string) {
	s[k] = struct{}{}
}

func (s keySet) addAll(keys []string) {
	for _, k := range keys {
		s.add(k)
	}
}

func (s keySet) has(k string) bool {
	_, ok := s[k]
	return ok
}

// hasAny reports whether any of the keys collide with the index. A record
// with a multi-key identity (customers) is a duplicate if either key matches.
func (s keySet) hasAny(keys []string) bool {
	for _, k := range keys {
		if s.has(k) {
			return true
		}
	}
	return false
}

// Identity key builders. Keys are lowercased so "X@Y.com" and "x@y.com"
// name the same entity; composite keys join parts with "|".

func emailKey(email string) string {
	return "email:" + strings.ToLower(strings.TrimSpace(email))
}

func nameKey(name string) string {
	return strings.ToLower(strings.TrimSpace(name))
}

func nameZipKey(name, zip string) string {
	return "namezip:" + nameKey(name) + "|" + strings.ToLower(strings.TrimSpace(zip))
}

// customerKeys returns the two-key identity for a customer: the email key
// (when an email exists) and the name + postal-code key.
func customerKeys(c Customer) []string {
	keys := make([]string, 0, 2)
	if strings.TrimSpace(c.Email) != "" {
		keys = append(keys, emailKey(c.Email))
	}
	keys = append(keys, nameZipKey(c.Name, c.Zip))
	return keys
}
