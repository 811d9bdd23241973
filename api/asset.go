// SPDX-License-Identifier: MIT

package api

import (
	"context"
	"net/http"
)

const endpointAsset = "ws_asset"
const endpointAssetAssociations = "ws_asset_associations"

// AssetProvider fetches and caches asset data (ws_asset and
// ws_asset_associations).
type AssetProvider struct {
	client *Client
	data   memo[Envelope]
	count  memo[int]
}

// NewAssetProvider creates an asset provider on the given client.
func NewAssetProvider(client *Client) *AssetProvider {
	return &AssetProvider{client: client}
}

// Data returns the default published-asset listing, fetched at most once
// unless a refresh is requested.
func (p *AssetProvider) Data(ctx context.Context, refresh bool) (Envelope, error) {
	return p.data.get(refresh, func() (Envelope, error) {
		return p.FetchList(ctx, DefaultPage, AssetSort)
	})
}

// TotalCount returns the number of published assets in the account, using a
// minimal limit=1 query that only reads the count.
func (p *AssetProvider) TotalCount(ctx context.Context, refresh bool) (int, error) {
	return p.count.get(refresh, func() (int, error) {
		env, err := p.client.Get(ctx, endpointAsset, "start=0&end=1&isPublished=true", getOptions{})
		if err != nil {
			return 0, err
		}
		return env.TotalCount, nil
	})
}

// Clear drops the cached listing and count.
func (p *AssetProvider) Clear() {
	p.data.clear()
	p.count.clear()
}

// FetchList fetches one page of published assets.
func (p *AssetProvider) FetchList(ctx context.Context, page Page, sort Sort) (Envelope, error) {
	return p.client.Get(ctx, endpointAsset, assetListQuery(page, sort), getOptions{})
}

// FetchByTag fetches one page of published assets matching a tag substring.
func (p *AssetProvider) FetchByTag(ctx context.Context, tag string, page Page, sort Sort) (Envelope, error) {
	return p.client.Get(ctx, endpointAsset, assetTagQuery(tag, page, sort), getOptions{})
}

// FetchByMetadata fetches one page of published assets filtered by a custom
// metadata field value.
//
// A configured read-only token means a child-account setup: the parent
// account sees a different slice of shared assets under the same category,
// so for "Categories" filters a second request runs with that token and the
// two lists are merged, re-sorted and truncated to the page size. Pagination
// cannot be done server-side across both tokens.
func (p *AssetProvider) FetchByMetadata(ctx context.Context, name, value string, page Page, sort Sort) (Envelope, error) {
	query := assetMetadataQuery(name, value, page, sort)
	env, err := p.client.Get(ctx, endpointAsset, query, getOptions{})
	if err != nil {
		return Envelope{}, err
	}

	if name != "Categories" || p.client.cfg.ReadOnlyToken == "" || env.Failed() {
		return env, nil
	}

	shared, err := p.client.Get(ctx, endpointAsset, query, getOptions{token: p.client.cfg.ReadOnlyToken})
	if err != nil {
		return Envelope{}, err
	}
	if shared.Failed() || !shared.HasCount || shared.TotalCount == 0 {
		return env, nil
	}

	return mergeAssetPages(env, shared, page, sort), nil
}

// mergeAssetPages combines the primary and shared asset pages: concatenate,
// stable re-sort by the requested field, cut to the page limit and sum the
// counts.
func mergeAssetPages(primary, shared Envelope, page Page, sort Sort) Envelope {
	own, _ := primary.Payload["asset"].([]any)
	extra, _ := shared.Payload["asset"].([]any)

	merged := make([]any, 0, len(own)+len(extra))
	merged = append(merged, own...)
	merged = append(merged, extra...)
	sortAssets(merged, sort)
	if len(merged) > page.Limit {
		merged = merged[:page.Limit]
	}

	total := primary.TotalCount + shared.TotalCount
	primary.Payload["asset"] = merged
	primary.Payload["totalCount"] = float64(total)
	primary.TotalCount = total
	primary.HasCount = true
	return primary
}

// VidOptions tune a single-asset lookup.
type VidOptions struct {
	// UseReferenceID forces the reference-ID identifier even for numeric vids.
	UseReferenceID bool
	// NoCache defeats intermediary caches; mutation preconditions use it.
	NoCache bool
	// IncludeUnpublished drops the isPublished filter.
	IncludeUnpublished bool
}

// FetchByVid retrieves a single asset by asset ID or reference ID. On
// success the envelope payload is the asset object itself; on failure the
// failure envelope passes through for the caller to branch on.
func (p *AssetProvider) FetchByVid(ctx context.Context, vid string, opts VidOptions) (Envelope, error) {
	query := assetVidQuery(vid, opts.UseReferenceID, !opts.IncludeUnpublished)
	env, err := p.client.Get(ctx, endpointAsset, query, getOptions{noCache: opts.NoCache})
	if err != nil {
		return Envelope{}, err
	}
	return unwrapFirstAsset(env), nil
}

// FetchByTitle retrieves a single published asset by exact title.
func (p *AssetProvider) FetchByTitle(ctx context.Context, title string) (Envelope, error) {
	env, err := p.client.Get(ctx, endpointAsset, assetTitleQuery(title), getOptions{})
	if err != nil {
		return Envelope{}, err
	}
	return unwrapFirstAsset(env), nil
}

// unwrapFirstAsset replaces a list payload with its first asset when one is
// present; otherwise the payload stands as fetched.
func unwrapFirstAsset(env Envelope) Envelope {
	if assets, ok := env.Payload["asset"].([]any); ok && len(assets) > 0 {
		if first, ok := assets[0].(map[string]any); ok {
			env.Payload = first
		}
	}
	return env
}

// FetchAssociations lists the associated data of an asset.
func (p *AssetProvider) FetchAssociations(ctx context.Context, assetID string, page Page) (Envelope, error) {
	return p.client.Get(ctx, endpointAssetAssociations, associationsQuery(assetID, page), getOptions{})
}

// SetProperties issues the ws_asset write carrying the given fields for the
// asset. The caller supplies the short-lived user token.
func (p *AssetProvider) SetProperties(ctx context.Context, userToken, assetID string, fields map[string]any) (*Failure, error) {
	body := map[string]any{"assetid": assetIDValue(assetID)}
	for k, v := range fields {
		body[k] = v
	}
	return p.client.Mutate(ctx, mutationRequest{
		method:    http.MethodPut,
		resource:  endpointAsset,
		bodyKey:   endpointAsset,
		body:      body,
		userToken: userToken,
	})
}

// SetAssociatedLink attaches a titled link to an asset, used to make a
// video addressable by its slug.
func (p *AssetProvider) SetAssociatedLink(ctx context.Context, userToken, assetID, title, url string) (*Failure, error) {
	return p.client.Mutate(ctx, mutationRequest{
		method:   http.MethodPost,
		resource: "ws_asset_associated_link",
		bodyKey:  "Ws_Asset_Associated_Link",
		body: map[string]any{
			"assetId": assetIDValue(assetID),
			"title":   title,
			"url":     url,
		},
		userToken: userToken,
	})
}

// assetIDValue keeps numeric asset IDs numeric on the wire.
func assetIDValue(assetID string) any {
	if f, ok := asFloat(assetID); ok {
		return int(f)
	}
	return assetID
}
