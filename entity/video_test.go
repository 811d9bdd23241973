// SPDX-License-Identifier: MIT

package entity

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewVideoRequiresAssetID(t *testing.T) {
	_, err := NewVideo(map[string]any{"title": "No ID"})
	assert.ErrorIs(t, err, ErrMissingAssetID)

	v, err := NewVideo(map[string]any{"assetid": float64(42), "title": "With ID"})
	require.NoError(t, err)
	assert.Equal(t, "42", v.ID())
}

func TestVideoIDFirstWriteWins(t *testing.T) {
	v, err := NewVideo(map[string]any{"assetid": float64(42), "title": "Clip"})
	require.NoError(t, err)

	v.SetID("99")
	assert.Equal(t, "42", v.ID())
}

func TestVideoTitleResolution(t *testing.T) {
	tests := []struct {
		name string
		raw  map[string]any
		want string
	}{
		{"lowercase title", map[string]any{"assetid": float64(1), "title": "lower"}, "lower"},
		{"program-style Title", map[string]any{"assetid": float64(1), "Title": "Upper"}, "Upper"},
		{"Title wins over title", map[string]any{"assetid": float64(1), "title": "lower", "Title": "Upper"}, "Upper"},
		{"neither", map[string]any{"assetid": float64(1)}, "undefined"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			v, err := NewVideo(tt.raw)
			require.NoError(t, err)
			assert.Equal(t, tt.want, v.Title())
		})
	}
}

func TestVideoSlugDerivation(t *testing.T) {
	v, err := NewVideo(map[string]any{"assetid": float64(1), "title": "Summer Campaign!"})
	require.NoError(t, err)
	assert.Equal(t, "summer-campaign", v.Slug())
}

func TestVideoDurationFallbackChain(t *testing.T) {
	v, err := NewVideo(map[string]any{
		"assetid": float64(1),
		"assetFiles": []any{
			map[string]any{"duration": float64(125.4)},
			map[string]any{"duration": float64(999)},
		},
		"duration": float64(60),
	})
	require.NoError(t, err)

	d, ok := v.Duration()
	require.True(t, ok)
	assert.Equal(t, 125.4, d)

	// Without encodings the top-level field applies.
	v, err = NewVideo(map[string]any{"assetid": float64(1), "duration": float64(60)})
	require.NoError(t, err)
	d, ok = v.Duration()
	require.True(t, ok)
	assert.Equal(t, float64(60), d)

	v, err = NewVideo(map[string]any{"assetid": float64(1)})
	require.NoError(t, err)
	_, ok = v.Duration()
	assert.False(t, ok)
}

func TestVideoFormattedDuration(t *testing.T) {
	tests := []struct {
		name     string
		duration float64
		want     string
	}{
		{"minutes and seconds", 125.7, "02:05"},
		{"with hours", 3725, "01:02:05"},
		{"exactly one hour", 3600, "01:00:00"},
		{"zero", 0, ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			v, err := NewVideo(map[string]any{"assetid": float64(1), "duration": tt.duration})
			require.NoError(t, err)
			assert.Equal(t, tt.want, v.FormattedDuration())
		})
	}
}

func TestVideoSrcFallbackChain(t *testing.T) {
	tests := []struct {
		name string
		raw  map[string]any
		want string
	}{
		{
			"metadata override wins",
			map[string]any{
				"assetid":        float64(1),
				"metadatas":      map[string]any{"custom_m3u8android": "http://meta"},
				"m3u8AndroidURL": "http://top",
			},
			"http://meta",
		},
		{
			"top-level stream",
			map[string]any{"assetid": float64(1), "m3u8AndroidURL": "http://top"},
			"http://top",
		},
		{
			"nested under asset",
			map[string]any{
				"assetid": float64(1),
				"asset":   map[string]any{"m3u8AndroidURL": "http://nested"},
			},
			"http://nested",
		},
		{"none", map[string]any{"assetid": float64(1)}, ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			v, err := NewVideo(tt.raw)
			require.NoError(t, err)
			assert.Equal(t, tt.want, v.Src())
		})
	}
}

func TestVideoThumbnailResize(t *testing.T) {
	v, err := NewVideo(map[string]any{
		"assetid":      float64(1),
		"thumbnailUrl": "http://cdn/thumb?w=100&h=75",
	})
	require.NoError(t, err)

	assert.Equal(t, "http://cdn/thumb?w=100&h=75", v.ThumbnailURL(false, 0, 0))
	assert.Equal(t, "http://cdn/thumb?w=420&h=315", v.ThumbnailURL(true, 420, 315))

	// Path-style size segments resize too.
	v, err = NewVideo(map[string]any{
		"assetid":      float64(1),
		"thumbnailUrl": "http://cdn/w100/h75/thumb.jpg",
	})
	require.NoError(t, err)
	assert.Equal(t, "http://cdn/w640/h480/thumb.jpg", v.ThumbnailURL(true, 640, 480))
}

func TestVideoTags(t *testing.T) {
	v, err := NewVideo(map[string]any{"assetid": float64(1), "tags": "news, sports, culture"})
	require.NoError(t, err)
	assert.Equal(t, []string{"news", "sports", "culture"}, v.Tags())

	v, err = NewVideo(map[string]any{"assetid": float64(1)})
	require.NoError(t, err)
	assert.Nil(t, v.Tags())
}

func TestVideoDownloadable(t *testing.T) {
	// Absence of the flag means downloadable.
	v, err := NewVideo(map[string]any{"assetid": float64(1)})
	require.NoError(t, err)
	assert.True(t, v.Downloadable())

	v, err = NewVideo(map[string]any{
		"assetid":   float64(1),
		"metadatas": map[string]any{"downloadable": "true"},
	})
	require.NoError(t, err)
	assert.True(t, v.Downloadable())

	v, err = NewVideo(map[string]any{
		"assetid":   float64(1),
		"metadatas": map[string]any{"downloadable": "false"},
	})
	require.NoError(t, err)
	assert.False(t, v.Downloadable())
}

func TestVideoDownloadURL(t *testing.T) {
	raw := map[string]any{
		"assetid": float64(1),
		"assetFiles": []any{
			map[string]any{"full_cdn_path": "http://cdn/hd.mp4"},
			map[string]any{"full_cdn_path": "http://cdn/sd.mp4"},
		},
	}
	v, err := NewVideo(raw)
	require.NoError(t, err)
	assert.Equal(t, "http://cdn/hd.mp4", v.DownloadURL())

	raw["metadatas"] = map[string]any{"downloadable": "false"}
	v, err = NewVideo(raw)
	require.NoError(t, err)
	assert.Equal(t, "", v.DownloadURL())
}

func TestVideoFormattedSize(t *testing.T) {
	v, err := NewVideo(map[string]any{
		"assetid":    float64(1),
		"assetFiles": []any{map[string]any{"filesize": float64(2 * 1024 * 1024)}},
	})
	require.NoError(t, err)
	assert.Equal(t, "2.0 MiB", v.FormattedSize())

	v, err = NewVideo(map[string]any{"assetid": float64(1)})
	require.NoError(t, err)
	assert.Equal(t, "", v.FormattedSize())
}

func TestVideoAssociationsAttachOnce(t *testing.T) {
	v, err := NewVideo(map[string]any{"assetid": float64(1), "title": "Clip"})
	require.NoError(t, err)
	assert.Nil(t, v.AssociatedPrograms())

	v.AttachAssociations(map[string]any{
		"associatedPrograms": []any{map[string]any{"uuid": "p-1"}},
		"associatedLinks":    []any{map[string]any{"url": "clip"}},
	})
	require.Len(t, v.AssociatedPrograms(), 1)

	// Only the first attachment sticks.
	v.AttachAssociations(map[string]any{
		"associatedPrograms": []any{map[string]any{"uuid": "p-2"}, map[string]any{"uuid": "p-3"}},
	})
	require.Len(t, v.AssociatedPrograms(), 1)
}

func TestVideoPublished(t *testing.T) {
	tests := []struct {
		name  string
		value any
		want  bool
	}{
		{"numeric one", float64(1), true},
		{"numeric zero", float64(0), false},
		{"bool", true, true},
		{"string true", "true", true},
		{"string zero", "0", false},
		{"absent", nil, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			raw := map[string]any{"assetid": float64(1)}
			if tt.value != nil {
				raw["isPublished"] = tt.value
			}
			v, err := NewVideo(raw)
			require.NoError(t, err)
			assert.Equal(t, tt.want, v.Published())
		})
	}
}
