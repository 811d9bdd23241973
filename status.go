// SPDX-License-Identifier: MIT

package vidora

import (
	"context"

	"github.com/vidora/vidora-go/api"
)

// AssetStatus is the lifecycle state of an uploaded asset.
type AssetStatus string

const (
	// StatusNotFound means the asset does not exist upstream.
	StatusNotFound AssetStatus = "not found"
	// StatusError means the asset has neither encoding nor thumbnail:
	// processing failed.
	StatusError AssetStatus = "error"
	// StatusShared means the asset lives in another account's folder and
	// is only shared into this one.
	StatusShared AssetStatus = "shared"
	// StatusReady means encoding finished but the asset has not been
	// placed in the default project yet.
	StatusReady AssetStatus = "ready"
	// StatusUpdated means the asset is already in the default project.
	StatusUpdated AssetStatus = "updated"
	// StatusNotReady means the asset is still being processed.
	StatusNotReady AssetStatus = "not ready"
)

// CheckAssetStatus classifies an asset. The rules are evaluated in a fixed
// priority order; the thumbnail state is a tri-state, and an unknown state
// never counts as "no thumbnail".
func (c *Client) CheckAssetStatus(ctx context.Context, assetID string) (AssetStatus, error) {
	env, err := c.assets.FetchByVid(ctx, assetID, api.VidOptions{NoCache: true, IncludeUnpublished: true})
	if err != nil {
		return "", err
	}
	if env.NotFound() {
		return StatusNotFound, nil
	}
	if env.Failed() {
		return StatusError, nil
	}
	data := env.Payload

	// A duration field of any value marks the asset as encoded.
	encoded := data["duration"] != nil

	hasSlugLink := false
	if links, ok := data["associatedLinks"].([]any); ok && len(links) > 0 {
		hasSlugLink = true
	}

	inDefaultProject := hasSlugLink
	if meta, ok := data["metadatas"].(map[string]any); ok {
		if flag, ok := meta["in_default_project"]; ok {
			inDefaultProject = flag == "1"
		}
	}

	thumbs, known, err := c.thumbnails.Get(ctx, assetID)
	if err != nil {
		return "", err
	}
	// hasThumbnail stays nil while the upstream cannot tell yet.
	var hasThumbnail *bool
	if known {
		v := len(thumbs) > 0
		hasThumbnail = &v
	}

	folders, _ := data["folders"].([]any)
	shared := len(folders) > 0 && c.cfg.FolderID == ""
	if shared {
		inDefaultProject = false
	}

	noThumbnail := hasThumbnail != nil && !*hasThumbnail

	switch {
	case noThumbnail && !encoded:
		return StatusError, nil
	case shared:
		return StatusShared, nil
	case !inDefaultProject && encoded && !noThumbnail:
		return StatusReady, nil
	case inDefaultProject && !noThumbnail:
		return StatusUpdated, nil
	default:
		return StatusNotReady, nil
	}
}
