// SPDX-License-Identifier: MIT

package api

import (
	"encoding/base64"
	"fmt"
	"net/url"
)

// Page selects a data subset for pagination. The wrapped API takes an
// inclusive end index, so a page covers [Start, Start+Limit-1].
type Page struct {
	Start int
	Limit int
}

// DefaultPage is the listing window used when the caller does not paginate.
var DefaultPage = Page{Start: 0, Limit: 20}

// end returns the inclusive end index of the page.
func (p Page) end() int {
	return p.Start + p.Limit - 1
}

// Sort names the field and direction of a listing query.
type Sort struct {
	By  string
	Dir string // "asc" or "desc"
}

// Resource-specific default sorts.
var (
	AssetSort   = Sort{By: "date_start", Dir: "desc"}
	ProgramSort = Sort{By: "sortnum", Dir: "desc"}
)

// assetListQuery lists published assets with their encodings.
func assetListQuery(p Page, s Sort) string {
	return fmt.Sprintf(
		"start=%d&end=%d&sortby=%s&sortdir=%s&isPublished=true&include_shared=true&assetfiles=true",
		p.Start, p.end(), s.By, s.Dir,
	)
}

// assetTagQuery filters assets by tag. The tag is wildcard-wrapped to
// emulate a substring match.
func assetTagQuery(tag string, p Page, s Sort) string {
	return fmt.Sprintf(
		"start=%d&end=%d&sortby=%s&sortdir=%s&isPublished=true&tags=%s&include_shared=true&assetfiles=true",
		p.Start, p.end(), s.By, s.Dir, url.QueryEscape("%"+tag+"%"),
	)
}

// assetMetadataQuery filters assets by a custom metadata field value.
func assetMetadataQuery(name, value string, p Page, s Sort) string {
	return fmt.Sprintf(
		"start=%d&end=%d&sortby=%s&sortdir=%s&isPublished=true&metadata=%s&metavalue=%s&include_shared=true&assetfiles=true",
		p.Start, p.end(), s.By, s.Dir, name, url.QueryEscape(value),
	)
}

// isNumeric reports whether the vid looks like an asset ID rather than a
// reference string.
func isNumeric(s string) bool {
	if s == "" {
		return false
	}
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}

// assetVidQuery looks up a single asset either by numeric asset ID ("a") or
// by reference ID ("r"). Internal workflows that must see unpublished assets
// drop the isPublished term.
func assetVidQuery(vid string, useReferenceID, publishedOnly bool) string {
	identifier := "r"
	if isNumeric(vid) && !useReferenceID {
		identifier = "a"
	}
	if publishedOnly {
		return fmt.Sprintf("%s=%s&isPublished=true&include_shared=true&assetfiles=true", identifier, vid)
	}
	return fmt.Sprintf("%s=%s&include_shared=true&assetfiles=true", identifier, vid)
}

// assetTitleQuery looks up a single published asset by exact title.
func assetTitleQuery(title string) string {
	return fmt.Sprintf("title=%s&isPublished=true&include_shared=true&assetfiles=true", url.QueryEscape(title))
}

// associationsQuery lists the associations of an asset.
func associationsQuery(assetID string, p Page) string {
	return fmt.Sprintf("assetId=%s&start=%d&end=%d", assetID, p.Start, p.end())
}

// programProjectQuery lists the programs of a project.
func programProjectQuery(uuid string, p Page, s Sort) string {
	return fmt.Sprintf(
		"p=%s&start=%d&end=%d&sortby=%s&sortdir=%s&include_viewcount=true&include_details=true",
		uuid, p.Start, p.end(), s.By, s.Dir,
	)
}

// programRefIDQuery lists the programs of a category reference ID.
func programRefIDQuery(refID string, p Page, s Sort) string {
	return fmt.Sprintf(
		"refid=%s&start=%d&end=%d&sortby=%s&sortdir=%s&include_viewcount=true&include_details=true",
		refID, p.Start, p.end(), s.By, s.Dir,
	)
}

// programUUIDQuery fetches one program by UUID.
func programUUIDQuery(uuid string) string {
	return fmt.Sprintf("v=%s", uuid)
}

// searchQuery searches programs in a project. The search string travels
// base64-encoded.
func searchQuery(search, projectUUID string, p Page, s Sort) string {
	return fmt.Sprintf(
		"p=%s&field&s=%s&start=%d&end=%d&sortBy=%s&sortDir=%s",
		projectUUID,
		url.QueryEscape(base64.StdEncoding.EncodeToString([]byte(search))),
		p.Start, p.end(), s.By, s.Dir,
	)
}

// thumbnailQuery fetches the thumbnails of an asset.
func thumbnailQuery(assetID string) string {
	return fmt.Sprintf("assetId=%s", assetID)
}

// userTokenPath builds the slash-style path that mints a user token. The
// password travels base64-encoded.
func userTokenPath(username, password string) string {
	return fmt.Sprintf(
		"/u/%s/p/%s",
		username,
		url.QueryEscape(base64.StdEncoding.EncodeToString([]byte(password))),
	)
}
