// Package index records which candidates each rule matched as roaring
// bitmaps of candidate ordinals.
package index

import (
	"bytes"
	"fmt"
	"sort"
	"sync"

	"github.com/RoaringBitmap/roaring"
)

// Index maps rule names to the ordinals of the candidates they matched.
// It is safe for concurrent use.
type Index struct {
	mu    sync.RWMutex
	rules map[string]*roaring.Bitmap
}

func New() *Index {
	return &Index{rules: make(map[string]*roaring.Bitmap)}
}

// Add records that rule matched the candidate with the given ordinal.
func (x *Index) Add(rule string, ordinal uint32) {
	x.mu.Lock()
	defer x.mu.Unlock()
	bm, ok := x.rules[rule]
	if !ok {
		bm = roaring.New()
		x.rules[rule] = bm
	}
	bm.Add(ordinal)
}

// Matches returns the ordinals matched by rule in ascending order.
func (x *Index) Matches(rule string) []uint32 {
	x.mu.RLock()
	defer x.mu.RUnlock()
	bm, ok := x.rules[rule]
	if !ok {
		return nil
	}
	return bm.ToArray()
}

// Count returns how many candidates rule matched.
func (x *Index) Count(rule string) uint64 {
	x.mu.RLock()
	defer x.mu.RUnlock()
	bm, ok := x.rules[rule]
	if !ok {
		return 0
	}
	return bm.GetCardinality()
}

// Rules returns the names of the rules with at least one match, sorted.
func (x *Index) Rules() []string {
	x.mu.RLock()
	defer x.mu.RUnlock()
	names := make([]string, 0, len(x.rules))
	for name := range x.rules {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// All returns the ordinals matched by every one of rules. A rule without
// matches makes the result empty.
func (x *Index) All(rules ...string) []uint32 {
	bitmaps, missing := x.lookup(rules)
	if missing || len(bitmaps) == 0 {
		return nil
	}
	return roaring.FastAnd(bitmaps...).ToArray()
}

// Any returns the ordinals matched by at least one of rules.
func (x *Index) Any(rules ...string) []uint32 {
	bitmaps, _ := x.lookup(rules)
	if len(bitmaps) == 0 {
		return nil
	}
	return roaring.FastOr(bitmaps...).ToArray()
}

func (x *Index) lookup(rules []string) (bitmaps []*roaring.Bitmap, missing bool) {
	x.mu.RLock()
	defer x.mu.RUnlock()
	for _, rule := range rules {
		bm, ok := x.rules[rule]
		if !ok {
			missing = true
			continue
		}
		bitmaps = append(bitmaps, bm.Clone())
	}
	return bitmaps, missing
}

// MarshalRule serializes the bitmap of rule in the portable roaring format.
func (x *Index) MarshalRule(rule string) ([]byte, error) {
	x.mu.RLock()
	defer x.mu.RUnlock()
	bm, ok := x.rules[rule]
	if !ok {
		bm = roaring.New()
	}
	var buf bytes.Buffer
	if _, err := bm.WriteTo(&buf); err != nil {
		return nil, fmt.Errorf("marshal bitmap %s: %w", rule, err)
	}
	return buf.Bytes(), nil
}

// UnmarshalRule replaces the bitmap of rule with a serialized one.
func (x *Index) UnmarshalRule(rule string, data []byte) error {
	bm := roaring.New()
	if err := bm.UnmarshalBinary(data); err != nil {
		return fmt.Errorf("unmarshal bitmap %s: %w", rule, err)
	}
	x.mu.Lock()
	defer x.mu.Unlock()
	x.rules[rule] = bm
	return nil
}
