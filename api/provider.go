// SPDX-License-Identifier: MIT

package api

import (
	"fmt"
	"sort"
	"strconv"
	"strings"
)

// memo is the fetch-once gate shared by the data providers. It stores only a
// completed result, never an in-flight fetch: two near-simultaneous callers
// missing the cache will both issue the underlying request. Providers are
// session-scoped and used from a single goroutine, so no locking is needed.
type memo[T any] struct {
	value T
	ok    bool
}

// get returns the cached value, fetching it first when unset or when a
// refresh is requested. A fetch error leaves the cache untouched.
func (m *memo[T]) get(refresh bool, fetch func() (T, error)) (T, error) {
	if !m.ok || refresh {
		v, err := fetch()
		if err != nil {
			var zero T
			return zero, err
		}
		m.value = v
		m.ok = true
	}
	return m.value, nil
}

// clear drops the cached value.
func (m *memo[T]) clear() {
	var zero T
	m.value = zero
	m.ok = false
}

// looseEqual compares payload values the way the wire mixes them: numbers
// against numeric strings, booleans against their string forms.
func looseEqual(a, b any) bool {
	if af, aok := asFloat(a); aok {
		if bf, bok := asFloat(b); bok {
			return af == bf
		}
	}
	return fmt.Sprint(a) == fmt.Sprint(b)
}

func asFloat(v any) (float64, bool) {
	switch n := v.(type) {
	case float64:
		return n, true
	case int:
		return float64(n), true
	case bool:
		if n {
			return 1, true
		}
		return 0, true
	case string:
		if f, err := strconv.ParseFloat(n, 64); err == nil {
			return f, true
		}
	}
	return 0, false
}

// lookupProperty resolves a property on a payload item. Dotted paths are
// supported one level deep ("asset.isHidden"); deeper paths never match.
func lookupProperty(item map[string]any, property string) (any, bool) {
	head, rest, nested := strings.Cut(property, ".")
	v, ok := item[head]
	if !ok {
		return nil, false
	}
	if !nested {
		return v, true
	}
	if strings.Contains(rest, ".") {
		return nil, false
	}
	child, ok := v.(map[string]any)
	if !ok {
		return nil, false
	}
	v, ok = child[rest]
	return v, ok
}

// FilterAssetsByProperty removes the items whose property equals the
// excluded value (an exclusion filter). It operates on the "asset" or
// "programs" list of the payload, whichever is present, and recomputes a
// present currentCount to the new cardinality. The input map is modified in
// place and returned.
func FilterAssetsByProperty(payload map[string]any, property string, excluded any) map[string]any {
	if payload == nil {
		return nil
	}
	for _, key := range []string{"asset", "programs"} {
		items, ok := payload[key].([]any)
		if !ok {
			continue
		}
		kept := make([]any, 0, len(items))
		for _, it := range items {
			m, ok := it.(map[string]any)
			if ok {
				if v, found := lookupProperty(m, property); found && looseEqual(v, excluded) {
					continue
				}
			}
			kept = append(kept, it)
		}
		payload[key] = kept
		if _, ok := payload["currentCount"]; ok {
			payload["currentCount"] = float64(len(kept))
		}
		break
	}
	return payload
}

// compareSortValues orders two payload values for a merge re-sort. Numeric
// comparison applies when both values are stored numerically; otherwise the
// values compare as strings. A descending sort reverses the comparison
// outcome, not the final list, which keeps ties in encounter order.
func compareSortValues(a, b any, desc bool) int {
	var c int
	if af, aok := a.(float64); aok {
		if bf, bok := b.(float64); bok {
			switch {
			case af < bf:
				c = -1
			case af > bf:
				c = 1
			}
			if desc {
				c = -c
			}
			return c
		}
	}
	c = strings.Compare(fmt.Sprint(a), fmt.Sprint(b))
	if desc {
		c = -c
	}
	return c
}

// sortAssets stable-sorts a merged asset list by the requested field.
// Items missing the field keep their encounter order.
func sortAssets(items []any, s Sort) {
	desc := s.Dir == "desc"
	sort.SliceStable(items, func(i, j int) bool {
		a, aok := items[i].(map[string]any)
		b, bok := items[j].(map[string]any)
		if !aok || !bok {
			return false
		}
		av, aok := a[s.By]
		bv, bok := b[s.By]
		if !aok || !bok {
			return false
		}
		return compareSortValues(av, bv, desc) < 0
	})
}
