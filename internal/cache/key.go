// Package cache stores structured guidance results keyed by a deterministic
// digest of the request's semantically relevant fields.
//
// Three backends are provided behind one interface:
//   - memory — in-process map, used in tests and as the default backend.
//   - bbolt  — embedded key-value store, survives process restarts.
//   - sqlite — embedded SQL store, survives restarts and is inspectable
//     with standard tooling.
//
// Values are the JSON-serialized result structs; raw model text is never
// cached. Expired entries are dropped lazily on read.
package cache

import (
	"crypto/sha256"
	"encoding/hex"
	"sort"
	"strings"
)

// Key namespaces. Assessment and first aid responses share a key space and
// are distinguished by namespace alone.
const (
	NamespaceAssessment = "assessment"
	NamespaceFirstAid   = "first_aid"
)

// keyPrefix is the fixed leading component of every cache key.
const keyPrefix = "llm"

// Key derives a deterministic cache key from a namespace and a field set.
// Fields are sorted by name before hashing, so identical field sets produce
// identical keys regardless of how the map was populated. Callers must
// truncate long field values (the description prefix) identically on every
// call path or keys silently diverge.
func Key(namespace string, fields map[string]string) string {
	names := make([]string, 0, len(fields))
	for name := range fields {
		names = append(names, name)
	}
	sort.Strings(names)

	var b strings.Builder
	for i, name := range names {
		if i > 0 {
			b.WriteByte('|')
		}
		b.WriteString(name)
		b.WriteByte('=')
		b.WriteString(fields[name])
	}

	sum := sha256.Sum256([]byte(b.String()))
	return keyPrefix + ":" + namespace + ":" + hex.EncodeToString(sum[:])
}

// TruncateDescription returns at most n leading bytes of the anonymized
// description for key derivation. Centralized so the assessment and first
// aid paths cannot drift apart.
func TruncateDescription(desc string, n int) string {
	if n <= 0 || len(desc) <= n {
		return desc
	}
	return desc[:n]
}
