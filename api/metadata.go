// SPDX-License-Identifier: MIT

package api

import (
	"context"
	"strings"
)

const endpointAccountMetadata = "ws_account_metadata"

// AccountMetadataProvider fetches the account's custom metadata definitions
// (ws_account_metadata). Categories and the tag menu both derive from it, so
// one instance is shared between their providers.
type AccountMetadataProvider struct {
	client *Client
	data   memo[Envelope]
}

// NewAccountMetadataProvider creates an account-metadata provider on the
// given client.
func NewAccountMetadataProvider(client *Client) *AccountMetadataProvider {
	return &AccountMetadataProvider{client: client}
}

// Data returns the account metadata, fetched at most once unless a refresh
// is requested.
func (p *AccountMetadataProvider) Data(ctx context.Context, refresh bool) (Envelope, error) {
	return p.data.get(refresh, func() (Envelope, error) {
		return p.client.Get(ctx, endpointAccountMetadata, "", getOptions{})
	})
}

// FieldOptions returns the comma-separated option list of the named custom
// metadata field, trimmed. The second return reports whether the field
// exists.
func (p *AccountMetadataProvider) FieldOptions(ctx context.Context, metaname string, refresh bool) ([]string, bool, error) {
	env, err := p.Data(ctx, refresh)
	if err != nil {
		return nil, false, err
	}
	custom, ok := env.Payload["custom"].([]any)
	if !ok {
		return nil, false, nil
	}
	for _, entry := range custom {
		field, ok := entry.(map[string]any)
		if !ok {
			continue
		}
		if name, _ := field["metaname"].(string); name != metaname {
			continue
		}
		options, _ := field["fieldOptions"].(string)
		var out []string
		for _, opt := range strings.Split(options, ",") {
			if opt = strings.TrimSpace(opt); opt != "" {
				out = append(out, opt)
			}
		}
		return out, true, nil
	}
	return nil, false, nil
}

// CategoriesProvider derives the account's category titles from the
// "Categories" custom metadata field.
type CategoriesProvider struct {
	metadata *AccountMetadataProvider
	data     memo[[]string]
}

// NewCategoriesProvider creates a categories provider over the shared
// account-metadata provider.
func NewCategoriesProvider(metadata *AccountMetadataProvider) *CategoriesProvider {
	return &CategoriesProvider{metadata: metadata}
}

// Data returns the category titles, fetched at most once unless a refresh
// is requested.
func (p *CategoriesProvider) Data(ctx context.Context, refresh bool) ([]string, error) {
	return p.data.get(refresh, func() ([]string, error) {
		options, _, err := p.metadata.FieldOptions(ctx, "Categories", refresh)
		return options, err
	})
}

// TotalCount returns the number of categories.
func (p *CategoriesProvider) TotalCount(ctx context.Context, refresh bool) (int, error) {
	data, err := p.Data(ctx, refresh)
	if err != nil {
		return 0, err
	}
	return len(data), nil
}

// TagMenuProvider derives the account's tag menu from the "tag_menu" custom
// metadata field.
type TagMenuProvider struct {
	metadata *AccountMetadataProvider
	data     memo[[]string]
}

// NewTagMenuProvider creates a tag-menu provider over the shared
// account-metadata provider.
func NewTagMenuProvider(metadata *AccountMetadataProvider) *TagMenuProvider {
	return &TagMenuProvider{metadata: metadata}
}

// Data returns the tag menu entries, fetched at most once unless a refresh
// is requested.
func (p *TagMenuProvider) Data(ctx context.Context, refresh bool) ([]string, error) {
	return p.data.get(refresh, func() ([]string, error) {
		options, _, err := p.metadata.FieldOptions(ctx, "tag_menu", refresh)
		return options, err
	})
}

// TotalCount returns the number of tag menu entries.
func (p *TagMenuProvider) TotalCount(ctx context.Context, refresh bool) (int, error) {
	data, err := p.Data(ctx, refresh)
	if err != nil {
		return 0, err
	}
	return len(data), nil
}
