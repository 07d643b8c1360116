package services

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"sort"

	"github.com/gowebpki/jcs"
)

// keyInput is the canonicalized tuple of operation inputs a cache key is
// derived from. Entries for different callers are never shared, so the
// caller id is always part of the tuple.
type keyInput struct {
	Op      string   `json:"op"`
	Caller  string   `json:"caller"`
	Query   string   `json:"query,omitempty"`
	IDs     []string `json:"ids,omitempty"`
	Sources []string `json:"sources,omitempty"`
	Limit   int      `json:"limit,omitempty"`
	Days    int      `json:"days,omitempty"`
	Length  int      `json:"length,omitempty"`
}

// deriveKey produces a stable digest for the input tuple. Set-valued
// fields are sorted before hashing so that permutations of the same
// source or id set map to the same entry, and the JSON encoding is run
// through RFC 8785 canonicalization before digesting.
func deriveKey(in keyInput) string {
	if len(in.Sources) > 0 {
		in.Sources = append([]string(nil), in.Sources...)
		sort.Strings(in.Sources)
	}
	if len(in.IDs) > 0 {
		in.IDs = append([]string(nil), in.IDs...)
		sort.Strings(in.IDs)
	}

	raw, err := json.Marshal(in)
	if err != nil {
		// keyInput is a flat struct of strings and ints; Marshal cannot
		// fail on it. Fall back to a non-canonical representation anyway.
		raw = []byte(fmt.Sprintf("%+v", in))
	}

	canonical, err := jcs.Transform(raw)
	if err != nil {
		canonical = raw
	}

	sum := sha256.Sum256(canonical)
	return hex.EncodeToString(sum[:])
}
