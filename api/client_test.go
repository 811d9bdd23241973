// SPDX-License-Identifier: MIT

package api

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestClient(t *testing.T, mock *MockServer) *Client {
	t.Helper()
	client, err := NewClient(mock.Config())
	require.NoError(t, err)
	return client
}

func TestNewClientRejectsIncompleteConfig(t *testing.T) {
	_, err := NewClient(Config{BaseURL: "http://host"})
	require.Error(t, err)
	// All missing fields are reported at once.
	assert.Contains(t, err.Error(), "Token")
	assert.Contains(t, err.Error(), "Username")
}

func TestAssetProviderMemoizesData(t *testing.T) {
	mock := NewMockServer()
	defer mock.Close()
	mock.Assets = []map[string]any{
		{"assetid": float64(1), "title": "One", "isPublished": float64(1)},
	}

	provider := NewAssetProvider(newTestClient(t, mock))
	ctx := context.Background()

	env, err := provider.Data(ctx, false)
	require.NoError(t, err)
	require.False(t, env.Failed())
	assert.Equal(t, 1, env.TotalCount)

	_, err = provider.Data(ctx, false)
	require.NoError(t, err)
	assert.Equal(t, 1, mock.Reads("ws_asset"), "second call must hit the cache")

	_, err = provider.Data(ctx, true)
	require.NoError(t, err)
	assert.Equal(t, 2, mock.Reads("ws_asset"))

	provider.Clear()
	_, err = provider.Data(ctx, false)
	require.NoError(t, err)
	assert.Equal(t, 3, mock.Reads("ws_asset"))
}

func TestAssetProviderFetchByVid(t *testing.T) {
	mock := NewMockServer()
	defer mock.Close()
	mock.Assets = []map[string]any{
		{"assetid": float64(42), "title": "Intro", "isPublished": float64(1)},
		{"assetid": float64(43), "title": "Draft", "isPublished": float64(0)},
	}

	provider := NewAssetProvider(newTestClient(t, mock))
	ctx := context.Background()

	env, err := provider.FetchByVid(ctx, "42", VidOptions{})
	require.NoError(t, err)
	require.False(t, env.Failed())
	// The payload is the asset object itself, not the listing wrapper.
	assert.Equal(t, float64(42), env.Payload["assetid"])

	// Unpublished assets are invisible to the default lookup.
	env, err = provider.FetchByVid(ctx, "43", VidOptions{})
	require.NoError(t, err)
	assert.True(t, env.NotFound())

	env, err = provider.FetchByVid(ctx, "43", VidOptions{IncludeUnpublished: true})
	require.NoError(t, err)
	require.False(t, env.Failed())
	assert.Equal(t, float64(43), env.Payload["assetid"])

	env, err = provider.FetchByVid(ctx, "9999", VidOptions{})
	require.NoError(t, err)
	assert.True(t, env.NotFound())
}

func TestAssetProviderMergesSharedAccountPages(t *testing.T) {
	mock := NewMockServer()
	defer mock.Close()
	mock.SharedToken = "shared-token"
	mock.Assets = []map[string]any{
		{"assetid": float64(1), "title": "A", "isPublished": float64(1), "sortnum": float64(5),
			"metadatas": map[string]any{"Categories": "News"}},
		{"assetid": float64(2), "title": "B", "isPublished": float64(1), "sortnum": float64(3),
			"metadatas": map[string]any{"Categories": "News"}},
	}
	mock.SharedAssets = []map[string]any{
		{"assetid": float64(3), "title": "C", "isPublished": float64(1), "sortnum": float64(4),
			"metadatas": map[string]any{"Categories": "News"}},
	}

	cfg := mock.Config()
	cfg.ReadOnlyToken = "shared-token"
	client, err := NewClient(cfg)
	require.NoError(t, err)

	provider := NewAssetProvider(client)
	env, err := provider.FetchByMetadata(context.Background(), "Categories", "News", DefaultPage, Sort{By: "sortnum", Dir: "desc"})
	require.NoError(t, err)
	require.False(t, env.Failed())

	assets, ok := env.Payload["asset"].([]any)
	require.True(t, ok)
	require.Len(t, assets, 3)
	order := make([]float64, 0, 3)
	for _, a := range assets {
		order = append(order, a.(map[string]any)["sortnum"].(float64))
	}
	assert.Equal(t, []float64{5, 4, 3}, order)
	assert.Equal(t, 3, env.TotalCount)
}

func TestAssetProviderNoMergeForOtherMetadata(t *testing.T) {
	mock := NewMockServer()
	defer mock.Close()
	mock.SharedToken = "shared-token"
	mock.Assets = []map[string]any{
		{"assetid": float64(1), "isPublished": float64(1),
			"metadatas": map[string]any{"audience": "staff"}},
	}

	cfg := mock.Config()
	cfg.ReadOnlyToken = "shared-token"
	client, err := NewClient(cfg)
	require.NoError(t, err)

	_, err = NewAssetProvider(client).FetchByMetadata(context.Background(), "audience", "staff", DefaultPage, AssetSort)
	require.NoError(t, err)
	assert.Equal(t, 1, mock.Reads("ws_asset"), "non-Categories filters stay single-request")
}

func TestThumbnailProviderTriState(t *testing.T) {
	mock := NewMockServer()
	defer mock.Close()
	mock.Thumbnails["42"] = []any{map[string]any{"url": "http://cdn/42.jpg"}}
	mock.Thumbnails["43"] = []any{}
	mock.ThumbnailUnknown["44"] = true
	mock.ThumbnailFailure["45"] = 900

	provider := NewThumbnailProvider(newTestClient(t, mock))
	ctx := context.Background()

	thumbs, known, err := provider.Get(ctx, "42")
	require.NoError(t, err)
	assert.True(t, known)
	assert.Len(t, thumbs, 1)

	thumbs, known, err = provider.Get(ctx, "43")
	require.NoError(t, err)
	assert.True(t, known)
	assert.Empty(t, thumbs)

	// The unknown state is not an error, just not knowable yet.
	thumbs, known, err = provider.Get(ctx, "44")
	require.NoError(t, err)
	assert.False(t, known)
	assert.Nil(t, thumbs)

	// Any other failure code means the asset has no thumbnail.
	thumbs, known, err = provider.Get(ctx, "45")
	require.NoError(t, err)
	assert.True(t, known)
	assert.Empty(t, thumbs)
}

func TestFetchByProgramUUIDValidatesIdentifier(t *testing.T) {
	mock := NewMockServer()
	defer mock.Close()

	provider := NewProgramProvider(newTestClient(t, mock))
	ctx := context.Background()

	// An identifier that is not a UUID never reaches the service.
	_, err := provider.FetchByProgramUUID(ctx, "not-a-uuid")
	assert.ErrorIs(t, err, ErrNotFound)
	assert.Equal(t, 0, mock.Reads("ws_program"))

	// A UUID-shaped identifier does, even when the program is unknown.
	env, err := provider.FetchByProgramUUID(ctx, "5d0f5a1e-4b2c-4f3d-9a8e-6c7b1d2e3f40")
	require.NoError(t, err)
	assert.True(t, env.Failed())
	assert.Equal(t, 1, mock.Reads("ws_program"))
}

func TestRequestsCarryRequestID(t *testing.T) {
	mock := NewMockServer()
	defer mock.Close()
	mock.Assets = []map[string]any{{"assetid": float64(1), "isPublished": "true"}}

	provider := NewAssetProvider(newTestClient(t, mock))

	_, err := provider.Data(context.Background(), false)
	require.NoError(t, err)
	assert.NoError(t, uuid.Validate(mock.LastRequestID()))
}

func TestUserTokenMintedPerCall(t *testing.T) {
	mock := NewMockServer()
	defer mock.Close()
	mock.UserToken = "fresh-token"

	provider := NewUserTokenProvider(newTestClient(t, mock))

	token, err := provider.Token(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "fresh-token", token)

	// Tokens are short-lived: every call mints a new one.
	_, err = provider.Token(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 2, mock.Reads("ws_user_token"))
}

func TestAccountMetadataFieldOptions(t *testing.T) {
	mock := NewMockServer()
	defer mock.Close()
	mock.CustomFields = []map[string]any{
		{"metaname": "Categories", "fieldOptions": "News, Sports ,Culture"},
		{"metaname": "tag_menu", "fieldOptions": "alpha,beta"},
	}

	metadata := NewAccountMetadataProvider(newTestClient(t, mock))
	ctx := context.Background()

	options, found, err := metadata.FieldOptions(ctx, "Categories", false)
	require.NoError(t, err)
	require.True(t, found)
	assert.Equal(t, []string{"News", "Sports", "Culture"}, options)

	_, found, err = metadata.FieldOptions(ctx, "nope", false)
	require.NoError(t, err)
	assert.False(t, found)

	// Categories and tag menu share the underlying metadata fetch.
	categories := NewCategoriesProvider(metadata)
	tagMenu := NewTagMenuProvider(metadata)

	titles, err := categories.Data(ctx, false)
	require.NoError(t, err)
	assert.Len(t, titles, 3)

	tags, err := tagMenu.Data(ctx, false)
	require.NoError(t, err)
	assert.Equal(t, []string{"alpha", "beta"}, tags)

	assert.Equal(t, 1, mock.Reads("ws_account_metadata"))
}

func TestProgramSearchRequiresProject(t *testing.T) {
	mock := NewMockServer()
	defer mock.Close()

	provider := NewProgramSearchProvider(newTestClient(t, mock))

	_, err := provider.Fetch(context.Background(), "holidays", "", DefaultPage, Sort{Dir: "desc"})
	assert.ErrorIs(t, err, ErrMissingSearchTerm)
}

func TestProgramSearchFetch(t *testing.T) {
	mock := NewMockServer()
	defer mock.Close()
	mock.ProjectPrograms["proj-1"] = []map[string]any{
		{"assetid": float64(1), "Title": "Summer holidays"},
		{"assetid": float64(2), "Title": "Winter special"},
	}

	provider := NewProgramSearchProvider(newTestClient(t, mock))
	ctx := context.Background()

	env, err := provider.Fetch(ctx, "holidays", "proj-1", DefaultPage, Sort{Dir: "desc"})
	require.NoError(t, err)
	require.False(t, env.Failed())
	assert.Equal(t, 1, env.TotalCount)

	// The count from the last search is reused without another request.
	count, err := provider.TotalCount(ctx, "holidays", "proj-1", false)
	require.NoError(t, err)
	assert.Equal(t, 1, count)
	assert.Equal(t, 1, mock.Reads("ws_search_programs"))
}

func TestMutationSuccessAndFailure(t *testing.T) {
	mock := NewMockServer()
	defer mock.Close()

	provider := NewAssetProvider(newTestClient(t, mock))
	ctx := context.Background()

	failure, err := provider.SetProperties(ctx, "user-token", "42", map[string]any{"isPublished": 0})
	require.NoError(t, err)
	assert.Nil(t, failure)
	assert.Equal(t, 1, mock.Writes())

	mock.WriteFailure = &Failure{Code: 101, Reason: "denied"}
	failure, err = provider.SetProperties(ctx, "user-token", "42", map[string]any{"isPublished": 0})
	require.NoError(t, err)
	require.NotNil(t, failure)
	assert.Equal(t, 101, failure.Code)
	assert.Equal(t, "denied", failure.Reason)
}

func TestTransportErrorIsUnavailable(t *testing.T) {
	mock := NewMockServer()
	cfg := mock.Config()
	mock.Close()

	client, err := NewClient(cfg)
	require.NoError(t, err)

	_, err = NewAssetProvider(client).Data(context.Background(), false)
	assert.ErrorIs(t, err, ErrUnavailable)
}
