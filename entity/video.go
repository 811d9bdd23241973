// SPDX-License-Identifier: MIT

package entity

import (
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/dustin/go-humanize"
)

// ErrMissingAssetID is returned when a payload carries no assetid field.
var ErrMissingAssetID = fmt.Errorf("entity: payload has no assetid")

// thumbSizePattern matches the width/height segment of a thumbnail URL,
// in both query form (w=420&h=315) and path form (w420/h315).
var thumbSizePattern = regexp.MustCompile(`w(=)?(\d{1,4})(&|/)h(=)?(\d{1,4})`)

var dateLayouts = []string{
	time.RFC3339,
	"2006-01-02 15:04:05",
	"2006-01-02",
}

// Video wraps a raw asset-or-program payload. The two payload shapes differ
// in field naming and nesting, so every accessor resolves its value through a
// fixed fallback chain instead of reading a single field.
type Video struct {
	Base
	raw map[string]any

	associatedPrograms []any
	associationsSet    bool
}

// NewVideo builds a Video from a raw payload. The assetid field is
// mandatory; everything else is optional and resolved lazily.
func NewVideo(raw map[string]any) (*Video, error) {
	id, ok := raw["assetid"]
	if !ok || id == nil {
		return nil, ErrMissingAssetID
	}

	title := "undefined"
	if t, ok := raw["title"].(string); ok && t != "" {
		title = t
	}
	if t, ok := raw["Title"].(string); ok && t != "" {
		title = t
	}

	v := &Video{
		Base: newBase(title, "", fmt.Sprint(id)),
		raw:  raw,
	}

	if modified := v.stringField("dateStart", "datemod"); modified != "" {
		for _, layout := range dateLayouts {
			if t, err := time.Parse(layout, modified); err == nil {
				v.setLastModified(t)
				break
			}
		}
	}
	return v, nil
}

// Raw returns the payload the video was built from, for session persistence.
func (v *Video) Raw() map[string]any { return v.raw }

// AssetID returns the upstream asset identifier.
func (v *Video) AssetID() string { return fmt.Sprint(v.raw["assetid"]) }

// ThumbnailURL returns the thumbnail URL. With resize set, the embedded
// width/height segment is rewritten to the given dimensions.
func (v *Video) ThumbnailURL(resize bool, width, height int) string {
	raw, _ := v.raw["thumbnailUrl"].(string)
	if !resize || raw == "" {
		return raw
	}
	repl := fmt.Sprintf("w${1}%d${3}h${4}%d", width, height)
	return thumbSizePattern.ReplaceAllString(raw, repl)
}

func (v *Video) Description() string {
	return v.stringField("description", "Description")
}

// Src returns the playable source URL: the custom metadata override wins,
// then the top-level stream URL, then the one nested under asset.
func (v *Video) Src() string {
	if meta, ok := v.raw["metadatas"].(map[string]any); ok {
		if src, ok := meta["custom_m3u8android"].(string); ok && src != "" {
			return src
		}
	}
	if src, ok := v.raw["m3u8AndroidURL"].(string); ok && src != "" {
		return src
	}
	if asset, ok := v.raw["asset"].(map[string]any); ok {
		if src, ok := asset["m3u8AndroidURL"].(string); ok && src != "" {
			return src
		}
	}
	return ""
}

// Tags splits the comma-separated tag list.
func (v *Video) Tags() []string {
	raw, _ := v.raw["tags"].(string)
	if raw == "" {
		return nil
	}
	return strings.Split(raw, ", ")
}

// PubDate is an alias of DateStart.
func (v *Video) PubDate() string { return v.DateStart() }

func (v *Video) DateStart() string {
	return v.stringField("date_start", "dateStart")
}

// Duration returns the duration in seconds, taken from the first encoding
// entry when present, the top-level field otherwise.
func (v *Video) Duration() (float64, bool) {
	if d, ok := v.firstAssetFileNumber("duration"); ok {
		return d, true
	}
	return asNumber(v.raw["duration"])
}

// FormattedDuration renders the duration as H:MM:SS, or MM:SS under one
// hour. Missing duration renders as the empty string.
func (v *Video) FormattedDuration() string {
	d, ok := v.Duration()
	if !ok || d <= 0 {
		return ""
	}
	seconds := int(d)
	if seconds >= 3600 {
		return fmt.Sprintf("%02d:%02d:%02d", seconds/3600, seconds%3600/60, seconds%60)
	}
	return fmt.Sprintf("%02d:%02d", seconds/60, seconds%60)
}

// Size returns the file size in bytes of the first encoding entry, falling
// back to the top-level field.
func (v *Video) Size() (float64, bool) {
	if s, ok := v.firstAssetFileNumber("filesize"); ok {
		return s, true
	}
	return asNumber(v.raw["filesize"])
}

// FormattedSize renders the size human-readably, or empty when unknown.
func (v *Video) FormattedSize() string {
	s, ok := v.Size()
	if !ok || s <= 0 {
		return ""
	}
	return humanize.IBytes(uint64(s))
}

// Captions returns the captions payload if any.
func (v *Video) Captions() any {
	if c, ok := v.raw["captions"]; ok && c != nil {
		return c
	}
	if asset, ok := v.raw["asset"].(map[string]any); ok {
		if c, ok := asset["captions"]; ok && c != nil {
			return c
		}
	}
	return nil
}

// Downloadable reports whether the video may be downloaded. Absence of the
// metadata flag means downloadable.
func (v *Video) Downloadable() bool {
	meta, ok := v.raw["metadatas"].(map[string]any)
	if !ok {
		return true
	}
	flag, ok := meta["downloadable"]
	if !ok {
		return true
	}
	return flag == "true"
}

// DownloadURL returns the CDN path of the first encoding entry, or empty
// when the video is not downloadable or carries no encodings.
func (v *Video) DownloadURL() string {
	if !v.Downloadable() {
		return ""
	}
	files, ok := v.raw["assetFiles"].([]any)
	if !ok || len(files) == 0 {
		return ""
	}
	first, ok := files[0].(map[string]any)
	if !ok {
		return ""
	}
	url, _ := first["full_cdn_path"].(string)
	return url
}

func (v *Video) Published() bool {
	switch p := v.raw["isPublished"].(type) {
	case bool:
		return p
	case string:
		return p != "" && p != "0" && p != "false"
	default:
		n, ok := asNumber(p)
		return ok && n != 0
	}
}

// AttachAssociations stores the associated programs from an associations
// payload. Only the first attachment sticks.
func (v *Video) AttachAssociations(data map[string]any) {
	if v.associationsSet || data == nil {
		return
	}
	if programs, ok := data["associatedPrograms"].([]any); ok {
		v.associatedPrograms = programs
	}
	v.associationsSet = true
	v.touch()
}

// AssociatedPrograms returns the programs attached earlier, or nil.
func (v *Video) AssociatedPrograms() []any { return v.associatedPrograms }

func (v *Video) stringField(keys ...string) string {
	var out string
	for _, key := range keys {
		if s, ok := v.raw[key].(string); ok && s != "" {
			out = s
		}
	}
	return out
}

func (v *Video) firstAssetFileNumber(key string) (float64, bool) {
	files, ok := v.raw["assetFiles"].([]any)
	if !ok || len(files) == 0 {
		return 0, false
	}
	first, ok := files[0].(map[string]any)
	if !ok {
		return 0, false
	}
	return asNumber(first[key])
}

func asNumber(v any) (float64, bool) {
	switch n := v.(type) {
	case float64:
		return n, true
	case int:
		return float64(n), true
	case string:
		var f float64
		if _, err := fmt.Sscanf(n, "%g", &f); err == nil {
			return f, true
		}
	}
	return 0, false
}
