// SPDX-License-Identifier: MIT

// Package entity holds the value objects built from raw Vidora payloads.
package entity

import (
	"time"

	"github.com/vidora/vidora-go/internal/slug"
)

// Base carries the fields shared by every entity: a stable identifier, a
// human title and a URL-safe slug. The identifier is first-write-wins; once
// set it never changes.
type Base struct {
	id           string
	title        string
	slug         string
	lastModified time.Time
}

func newBase(title, slugValue, id string) Base {
	var b Base
	b.SetTitle(title)
	b.SetSlug(slugValue)
	b.SetID(id)
	if b.lastModified.IsZero() {
		b.lastModified = time.Now()
	}
	return b
}

// SetID assigns the identifier unless one is already set and returns the
// effective value.
func (b *Base) SetID(id string) string {
	if b.id == "" && id != "" {
		b.id = id
		b.touch()
	}
	return b.id
}

func (b *Base) ID() string { return b.id }

// SetTitle replaces the title when the new value is non-empty.
func (b *Base) SetTitle(title string) string {
	if title != "" {
		b.title = title
	}
	return b.title
}

func (b *Base) Title() string { return b.title }

// SetSlug sets the slug, slugifying the given value. An empty value derives
// the slug from the title, but only when no slug is set yet.
func (b *Base) SetSlug(value string) string {
	if value != "" {
		b.slug = slug.Make(value)
	} else if b.slug == "" && b.title != "" {
		b.slug = slug.Make(b.title)
	}
	return b.slug
}

func (b *Base) Slug() string { return b.slug }

func (b *Base) LastModified() time.Time { return b.lastModified }

func (b *Base) touch() { b.lastModified = time.Now() }

func (b *Base) setLastModified(t time.Time) {
	if !t.IsZero() {
		b.lastModified = t
	}
}
