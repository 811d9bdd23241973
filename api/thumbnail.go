// SPDX-License-Identifier: MIT

package api

import "context"

const endpointThumbnail = "ws_thumbnail"

// ThumbnailProvider fetches asset thumbnails (ws_thumbnail). Thumbnail state
// is tri-state: present, absent, or not determinable yet while the asset is
// still processing.
type ThumbnailProvider struct {
	client *Client
}

// NewThumbnailProvider creates a thumbnail provider on the given client.
func NewThumbnailProvider(client *Client) *ThumbnailProvider {
	return &ThumbnailProvider{client: client}
}

// Get returns the thumbnails of an asset. known is false when the service
// cannot determine the thumbnail state yet (failure code 903); any other
// failure means the asset has no thumbnail.
func (p *ThumbnailProvider) Get(ctx context.Context, assetID string) (thumbs []any, known bool, err error) {
	env, err := p.client.Get(ctx, endpointThumbnail, thumbnailQuery(assetID), getOptions{})
	if err != nil {
		return nil, false, err
	}
	if env.Failed() {
		if env.Failure.Code == thumbnailUnknown {
			return nil, false, nil
		}
		return nil, true, nil
	}
	thumbs, _ = env.Payload["thumbnails"].([]any)
	return thumbs, true, nil
}
