// SPDX-License-Identifier: MIT

package entity

// Category groups videos under a shared slug. The total count is usually
// known before the videos themselves are fetched, so the two are set in
// separate phases.
type Category struct {
	Base

	totalCount int
	videos     map[string]*Video
}

// NewCategory builds a category. Slug and id may be empty; the slug is then
// derived from the title. A zero totalCount leaves the count unset.
func NewCategory(title, slugValue, id string, totalCount int) *Category {
	c := &Category{Base: newBase(title, slugValue, id)}
	c.SetTotalCount(totalCount)
	return c
}

// SetTotalCount records the video count once. Later calls with a different
// value are ignored; the effective count is returned.
func (c *Category) SetTotalCount(n int) int {
	if c.totalCount == 0 && n > 0 {
		c.totalCount = n
		c.touch()
	}
	return c.totalCount
}

func (c *Category) TotalCount() int { return c.totalCount }

// SetVideos attaches the category's videos, keyed by slug. The attachment is
// refused while the total count is zero, and a nil map never clears an
// existing collection.
func (c *Category) SetVideos(videos map[string]*Video) bool {
	if c.totalCount == 0 {
		return false
	}
	if videos != nil {
		c.videos = videos
		c.touch()
	}
	return true
}

// Videos returns the attached videos, or nil while none are loaded.
func (c *Category) Videos() map[string]*Video { return c.videos }
