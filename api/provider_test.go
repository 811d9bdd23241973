// SPDX-License-Identifier: MIT

package api

import (
	"errors"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemoFetchesOnce(t *testing.T) {
	var calls int
	m := memo[int]{}
	fetch := func() (int, error) {
		calls++
		return 7, nil
	}

	v, err := m.get(false, fetch)
	require.NoError(t, err)
	assert.Equal(t, 7, v)

	v, err = m.get(false, fetch)
	require.NoError(t, err)
	assert.Equal(t, 7, v)
	assert.Equal(t, 1, calls)

	_, err = m.get(true, fetch)
	require.NoError(t, err)
	assert.Equal(t, 2, calls)

	m.clear()
	_, err = m.get(false, fetch)
	require.NoError(t, err)
	assert.Equal(t, 3, calls)
}

func TestMemoErrorLeavesCacheEmpty(t *testing.T) {
	var calls int
	m := memo[int]{}
	boom := errors.New("boom")

	_, err := m.get(false, func() (int, error) {
		calls++
		return 0, boom
	})
	assert.ErrorIs(t, err, boom)

	v, err := m.get(false, func() (int, error) {
		calls++
		return 9, nil
	})
	require.NoError(t, err)
	assert.Equal(t, 9, v)
	assert.Equal(t, 2, calls)
}

func TestFilterAssetsByProperty(t *testing.T) {
	payload := map[string]any{
		"asset": []any{
			map[string]any{"assetid": float64(1), "isHidden": float64(1)},
			map[string]any{"assetid": float64(2), "isHidden": float64(0)},
			map[string]any{"assetid": float64(3)},
			map[string]any{"assetid": float64(4), "isHidden": "1"},
		},
		"totalCount":   float64(40),
		"currentCount": float64(4),
	}

	got := FilterAssetsByProperty(payload, "isHidden", 1)

	want := []any{
		map[string]any{"assetid": float64(2), "isHidden": float64(0)},
		map[string]any{"assetid": float64(3)},
	}
	if diff := cmp.Diff(want, got["asset"]); diff != "" {
		t.Errorf("asset list mismatch (-want +got):\n%s", diff)
	}
	// Only the page cardinality is recomputed; the server-wide total stands.
	assert.Equal(t, float64(2), got["currentCount"])
	assert.Equal(t, float64(40), got["totalCount"])
}

func TestFilterAssetsByPropertyNestedPath(t *testing.T) {
	payload := map[string]any{
		"programs": []any{
			map[string]any{"uuid": "a", "asset": map[string]any{"isHidden": float64(1)}},
			map[string]any{"uuid": "b", "asset": map[string]any{"isHidden": float64(0)}},
		},
	}

	got := FilterAssetsByProperty(payload, "asset.isHidden", 1)
	require.Len(t, got["programs"], 1)

	// Paths deeper than one level never match, so nothing is removed.
	payload = map[string]any{
		"programs": []any{
			map[string]any{"a": map[string]any{"b": map[string]any{"c": float64(1)}}},
		},
	}
	got = FilterAssetsByProperty(payload, "a.b.c", 1)
	assert.Len(t, got["programs"], 1)
}

func TestCompareSortValues(t *testing.T) {
	// Numeric comparison only when both values are stored numerically.
	assert.Negative(t, compareSortValues(float64(2), float64(10), false))
	assert.Positive(t, compareSortValues(float64(2), float64(10), true))
	// Mixed types compare as strings: "2" > "10".
	assert.Positive(t, compareSortValues(float64(2), "10", false))
	assert.Zero(t, compareSortValues(float64(3), float64(3), true))
}

func TestMergeAssetPagesSortStability(t *testing.T) {
	primary := Envelope{
		Payload: map[string]any{
			"asset": []any{
				map[string]any{"v": float64(5)},
				map[string]any{"v": float64(3)},
			},
		},
		TotalCount: 2,
		HasCount:   true,
	}
	shared := Envelope{
		Payload: map[string]any{
			"asset": []any{
				map[string]any{"v": float64(4)},
			},
		},
		TotalCount: 1,
		HasCount:   true,
	}

	merged := mergeAssetPages(primary, shared, Page{Start: 0, Limit: 20}, Sort{By: "v", Dir: "desc"})

	want := []any{
		map[string]any{"v": float64(5)},
		map[string]any{"v": float64(4)},
		map[string]any{"v": float64(3)},
	}
	if diff := cmp.Diff(want, merged.Payload["asset"]); diff != "" {
		t.Errorf("merged list mismatch (-want +got):\n%s", diff)
	}
	assert.Equal(t, 3, merged.TotalCount)
	assert.Equal(t, float64(3), merged.Payload["totalCount"])
}

func TestMergeAssetPagesTruncatesToLimit(t *testing.T) {
	primary := Envelope{
		Payload: map[string]any{"asset": []any{
			map[string]any{"v": float64(9)},
			map[string]any{"v": float64(7)},
		}},
		TotalCount: 12,
		HasCount:   true,
	}
	shared := Envelope{
		Payload: map[string]any{"asset": []any{
			map[string]any{"v": float64(8)},
		}},
		TotalCount: 5,
		HasCount:   true,
	}

	merged := mergeAssetPages(primary, shared, Page{Start: 0, Limit: 2}, Sort{By: "v", Dir: "desc"})

	require.Len(t, merged.Payload["asset"], 2)
	assert.Equal(t, 17, merged.TotalCount)
}

func TestSortAssetsMissingFieldKeepsOrder(t *testing.T) {
	items := []any{
		map[string]any{"name": "first"},
		map[string]any{"name": "second"},
		map[string]any{"name": "third", "v": float64(1)},
	}
	sortAssets(items, Sort{By: "v", Dir: "desc"})

	first, _ := items[0].(map[string]any)
	assert.Equal(t, "first", first["name"])
}
