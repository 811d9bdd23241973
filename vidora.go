// SPDX-License-Identifier: MIT

// Package vidora is a typed client for the Vidora video platform. It wraps
// the raw REST endpoints with providers, entities and session-scoped
// collections so application code works with Video and Category objects
// instead of JSON payloads.
package vidora

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/rs/zerolog"

	"github.com/vidora/vidora-go/api"
	"github.com/vidora/vidora-go/entity"
	"github.com/vidora/vidora-go/internal/log"
	"github.com/vidora/vidora-go/internal/slug"
	"github.com/vidora/vidora-go/session"
)

// Config configures the client. See api.Config for the field semantics.
type Config = api.Config

// Client composes the per-resource providers and owns the session-scoped
// video, tag, program and category collections. It is meant to live for one
// logical user session and is not safe for concurrent use.
type Client struct {
	cfg    Config
	api    *api.Client
	logger zerolog.Logger
	store  session.Store

	assets     *api.AssetProvider
	programs   *api.ProgramProvider
	search     *api.ProgramSearchProvider
	metadata   *api.AccountMetadataProvider
	categories *api.CategoriesProvider
	tagMenu    *api.TagMenuProvider
	thumbnails *api.ThumbnailProvider
	userTokens *api.UserTokenProvider

	videos      map[string]*entity.Video
	videoOrder  []string
	tags        map[string]*tagEntry
	projects    map[string]*tagEntry
	categoryCol map[string]*entity.Category
	tagNames    map[string]string
	totalCount  int
}

// tagEntry caches one tag's (or project's) page of videos plus the
// server-side total.
type tagEntry struct {
	videos     []*entity.Video
	totalCount int
}

// New builds a client. A nil store keeps collections purely in memory; in
// debug mode nothing is persisted at all.
func New(cfg Config, store session.Store) (*Client, error) {
	apiClient, err := api.NewClient(cfg)
	if err != nil {
		return nil, err
	}
	if store == nil {
		store = session.NewMemoryStore()
	}
	if cfg.Debug {
		store = session.NewNoopStore()
	}

	metadata := api.NewAccountMetadataProvider(apiClient)
	c := &Client{
		cfg:        cfg,
		api:        apiClient,
		logger:     log.WithComponent("client"),
		store:      store,
		assets:     api.NewAssetProvider(apiClient),
		programs:   api.NewProgramProvider(apiClient),
		search:     api.NewProgramSearchProvider(apiClient),
		metadata:   metadata,
		categories: api.NewCategoriesProvider(metadata),
		tagMenu:    api.NewTagMenuProvider(metadata),
		thumbnails: api.NewThumbnailProvider(apiClient),
		userTokens: api.NewUserTokenProvider(apiClient),
		videos:     make(map[string]*entity.Video),
		tags:       make(map[string]*tagEntry),
		projects:   make(map[string]*tagEntry),
		tagNames:   make(map[string]string),
	}
	return c, nil
}

// TagMenu returns the account's tag menu, keyed by trimmed tag name.
func (c *Client) TagMenu(ctx context.Context) (map[string]string, error) {
	if len(c.tagNames) > 0 {
		return c.tagNames, nil
	}
	tags, err := c.tagMenu.Data(ctx, false)
	if err != nil {
		return nil, err
	}
	for _, tag := range tags {
		tag = strings.TrimSpace(tag)
		if tag != "" {
			c.tagNames[tag] = tag
		}
	}
	return c.tagNames, nil
}

// TotalCount returns the number of programs in the default project.
func (c *Client) TotalCount(ctx context.Context) (int, error) {
	if c.totalCount > 0 {
		return c.totalCount, nil
	}
	count, err := c.programs.TotalCount(ctx, false)
	if err != nil {
		return 0, err
	}
	c.totalCount = count
	return count, nil
}

// LatestVideos returns the newest videos of the default project, hidden
// assets excluded, and fills the session video collection.
func (c *Client) LatestVideos(ctx context.Context) ([]*entity.Video, error) {
	if len(c.videoOrder) > 0 {
		return c.collectionVideos(), nil
	}
	env, err := c.programs.FetchByProjectUUID(ctx, c.cfg.SearchUUID, api.DefaultPage, api.Sort{By: "dateStart", Dir: "desc"})
	if err != nil {
		return nil, err
	}
	if env.Failed() {
		return nil, failureError("latest videos", env)
	}
	payload := api.FilterAssetsByProperty(env.Payload, "isHidden", 1)
	videos, err := c.cacheVideoList(ctx, payload, "programs")
	if err != nil {
		return nil, err
	}
	return videos, nil
}

// RawLatestVideos fills the collection from the plain asset listing instead
// of the default project and returns at most one page.
func (c *Client) RawLatestVideos(ctx context.Context) ([]*entity.Video, error) {
	if len(c.videoOrder) == 0 {
		env, err := c.assets.Data(ctx, false)
		if err != nil {
			return nil, err
		}
		if env.Failed() {
			return nil, failureError("raw latest videos", env)
		}
		if _, err := c.cacheVideoList(ctx, env.Payload, "asset"); err != nil {
			return nil, err
		}
	}
	videos := c.collectionVideos()
	if len(videos) > api.DefaultPage.Limit {
		videos = videos[:api.DefaultPage.Limit]
	}
	return videos, nil
}

// Categories lists the account categories, keyed by slug. Videos are not
// loaded here; see GetCategoryBySlug.
func (c *Client) Categories(ctx context.Context) (map[string]*entity.Category, error) {
	if c.categoryCol != nil {
		return c.categoryCol, nil
	}
	titles, err := c.categories.Data(ctx, false)
	if err != nil {
		return nil, err
	}
	c.categoryCol = make(map[string]*entity.Category, len(titles))
	for _, title := range titles {
		category := entity.NewCategory(title, "", "", 0)
		c.categoryCol[category.Slug()] = category
	}
	return c.categoryCol, nil
}

// GetCategoryBySlug returns a category with its videos attached. The videos
// are fetched lazily on the first call, filtered by the humanized category
// title and with hidden assets removed.
func (c *Client) GetCategoryBySlug(ctx context.Context, categorySlug string, page api.Page, sort api.Sort) (*entity.Category, error) {
	if _, err := c.Categories(ctx); err != nil {
		return nil, err
	}
	category, ok := c.categoryCol[categorySlug]
	if !ok {
		return nil, &api.APIError{Sentinel: api.ErrNotFound, Operation: "category by slug", Reason: "unknown category " + categorySlug}
	}
	if category.Videos() != nil || category.TotalCount() == 0 {
		return category, nil
	}

	title := slug.Humanize(categorySlug)
	env, err := c.assets.FetchByMetadata(ctx, "Categories", title, page, sort)
	if err != nil {
		return nil, err
	}
	if env.Failed() {
		return nil, failureError("category by slug", env)
	}
	payload := api.FilterAssetsByProperty(env.Payload, "isHidden", 1)

	videos := make(map[string]*entity.Video)
	for _, item := range listField(payload, "asset") {
		raw, ok := item.(map[string]any)
		if !ok {
			continue
		}
		video, err := entity.NewVideo(raw)
		if err != nil {
			continue
		}
		videos[video.Slug()] = video
	}
	category.SetTotalCount(env.TotalCount)
	category.SetVideos(videos)
	return category, nil
}

// CategoryTotalCountBySlug returns the video count of a category without
// loading its videos, creating the category entry when needed.
func (c *Client) CategoryTotalCountBySlug(ctx context.Context, categorySlug string) (int, error) {
	if _, err := c.Categories(ctx); err != nil {
		return 0, err
	}
	if category, ok := c.categoryCol[categorySlug]; ok && category.TotalCount() > 0 {
		return category.TotalCount(), nil
	}

	title := slug.Humanize(categorySlug)
	env, err := c.assets.FetchByMetadata(ctx, "Categories", title, api.Page{Start: 0, Limit: 1}, api.AssetSort)
	if err != nil {
		return 0, err
	}
	if env.Failed() {
		return 0, failureError("category total count", env)
	}
	category, ok := c.categoryCol[categorySlug]
	if !ok {
		category = entity.NewCategory(title, categorySlug, "", 0)
		c.categoryCol[categorySlug] = category
	}
	category.SetTotalCount(env.TotalCount)
	return category.TotalCount(), nil
}

// GetVideoBySlug returns a cached video by its slug, looking in the session
// store before falling back to a title lookup.
func (c *Client) GetVideoBySlug(ctx context.Context, videoSlug string) (*entity.Video, error) {
	if video, ok := c.videos[videoSlug]; ok {
		return video, nil
	}
	if raw, ok := c.loadStoredVideo(ctx, videoSlug); ok {
		if video, err := entity.NewVideo(raw); err == nil {
			c.cacheVideo(ctx, video)
			return video, nil
		}
	}

	env, err := c.assets.FetchByTitle(ctx, videoSlug)
	if err != nil {
		return nil, err
	}
	if env.Failed() || env.Payload["assetid"] == nil {
		return nil, &api.APIError{Sentinel: api.ErrNotFound, Operation: "video by slug", Reason: "no video found for " + videoSlug}
	}
	video, err := entity.NewVideo(env.Payload)
	if err != nil {
		return nil, err
	}
	c.cacheVideo(ctx, video)
	return video, nil
}

// GetVideoByVid resolves a video by asset id, reference id or program UUID.
// The asset lookup is tried first; on a failure envelope the program lookup
// takes over.
func (c *Client) GetVideoByVid(ctx context.Context, vid string) (*entity.Video, error) {
	for _, key := range c.videoOrder {
		if video := c.videos[key]; video != nil && video.ID() == vid {
			return video, nil
		}
	}

	env, err := c.assets.FetchByVid(ctx, vid, api.VidOptions{})
	if err != nil {
		return nil, err
	}
	if env.Failed() {
		env, err = c.programs.FetchByProgramUUID(ctx, vid)
		if err != nil {
			return nil, err
		}
	}
	if env.Failed() || env.Payload["assetid"] == nil {
		return nil, &api.APIError{Sentinel: api.ErrNotFound, Operation: "video by vid", Reason: "no video found for " + vid}
	}
	video, err := entity.NewVideo(env.Payload)
	if err != nil {
		return nil, err
	}
	c.cacheVideo(ctx, video)
	return video, nil
}

// VideosByTag returns the videos carrying a tag, hidden assets excluded.
func (c *Client) VideosByTag(ctx context.Context, tag string, page api.Page, sort api.Sort) ([]*entity.Video, error) {
	required := page.Limit
	if page.Start > 0 {
		required = page.Start + page.Limit
	}
	if entry, ok := c.tags[tag]; ok && len(entry.videos) > required {
		return entry.videos, nil
	}

	env, err := c.assets.FetchByTag(ctx, tag, page, sort)
	if err != nil {
		return nil, err
	}
	if env.Failed() {
		return nil, failureError("videos by tag", env)
	}
	payload := api.FilterAssetsByProperty(env.Payload, "isHidden", 1)
	videos := c.buildVideoList(ctx, payload, "asset")
	c.tags[tag] = &tagEntry{videos: videos, totalCount: env.TotalCount}
	return videos, nil
}

// TotalCountByTag returns how many videos carry a tag.
func (c *Client) TotalCountByTag(ctx context.Context, tag string) (int, error) {
	if entry, ok := c.tags[tag]; ok && entry.totalCount > 0 {
		return entry.totalCount, nil
	}
	env, err := c.assets.FetchByTag(ctx, tag, api.Page{Start: 0, Limit: 1}, api.AssetSort)
	if err != nil {
		return 0, err
	}
	if env.Failed() {
		return 0, failureError("total count by tag", env)
	}
	if entry, ok := c.tags[tag]; ok {
		entry.totalCount = env.TotalCount
	} else {
		c.tags[tag] = &tagEntry{totalCount: env.TotalCount}
	}
	return env.TotalCount, nil
}

// VideosByProjectUUID returns the videos of a project.
func (c *Client) VideosByProjectUUID(ctx context.Context, projectUUID string, page api.Page, sort api.Sort) ([]*entity.Video, error) {
	required := page.Limit
	if page.Start > 0 {
		required = page.Start * page.Limit
	}
	if entry, ok := c.projects[projectUUID]; ok && len(entry.videos) > required {
		return entry.videos, nil
	}

	env, err := c.programs.FetchByProjectUUID(ctx, projectUUID, page, sort)
	if err != nil {
		return nil, err
	}
	if env.Failed() {
		return nil, failureError("videos by project", env)
	}
	videos := c.buildVideoList(ctx, env.Payload, "programs")
	c.projects[projectUUID] = &tagEntry{videos: videos, totalCount: env.TotalCount}
	return videos, nil
}

// VideosBySearch runs a full-text program search within a project.
func (c *Client) VideosBySearch(ctx context.Context, search, projectUUID string, page api.Page, sort api.Sort) ([]*entity.Video, error) {
	env, err := c.search.Fetch(ctx, search, projectUUID, page, sort)
	if err != nil {
		return nil, err
	}
	if env.Failed() {
		return nil, failureError("videos by search", env)
	}
	return c.buildVideoList(ctx, env.Payload, "programs"), nil
}

// TotalCountBySearch returns how many programs match a search string.
func (c *Client) TotalCountBySearch(ctx context.Context, search, projectUUID string) (int, error) {
	return c.search.TotalCount(ctx, search, projectUUID, false)
}

// AssociatedDataBySlug returns the programs associated with a video,
// fetching and attaching them on first access.
func (c *Client) AssociatedDataBySlug(ctx context.Context, videoSlug, vid string) ([]any, error) {
	video, ok := c.videos[videoSlug]
	if !ok {
		var err error
		video, err = c.GetVideoByVid(ctx, vid)
		if err != nil {
			return nil, err
		}
	}
	if video.AssociatedPrograms() == nil {
		env, err := c.assets.FetchAssociations(ctx, video.ID(), api.DefaultPage)
		if err != nil {
			return nil, err
		}
		if env.Failed() {
			return nil, failureError("associated data", env)
		}
		video.AttachAssociations(env.Payload)
	}
	return video.AssociatedPrograms(), nil
}

// DownloadURLByVid returns the CDN download URL of a video.
func (c *Client) DownloadURLByVid(ctx context.Context, vid string) (string, error) {
	video, err := c.GetVideoByVid(ctx, vid)
	if err != nil {
		return "", err
	}
	return video.DownloadURL(), nil
}

// DownloadInfo describes a downloadable video.
type DownloadInfo struct {
	Slug string
	URL  string
}

// DownloadInfo returns slug and URL for a downloadable video, or an error
// when downloads are disabled for it.
func (c *Client) DownloadInfo(ctx context.Context, vid string) (*DownloadInfo, error) {
	video, err := c.GetVideoByVid(ctx, vid)
	if err != nil {
		return nil, err
	}
	if !video.Downloadable() {
		return nil, fmt.Errorf("video %s is not downloadable", vid)
	}
	return &DownloadInfo{Slug: video.Slug(), URL: video.DownloadURL()}, nil
}

// collectionVideos returns the session collection in insertion order.
func (c *Client) collectionVideos() []*entity.Video {
	out := make([]*entity.Video, 0, len(c.videoOrder))
	for _, key := range c.videoOrder {
		out = append(out, c.videos[key])
	}
	return out
}

// cacheVideo adds a video to the session collection and persists its raw
// payload in the session store.
func (c *Client) cacheVideo(ctx context.Context, video *entity.Video) {
	key := video.Slug()
	if _, ok := c.videos[key]; !ok {
		c.videoOrder = append(c.videoOrder, key)
	}
	c.videos[key] = video

	if raw, err := json.Marshal(video.Raw()); err == nil {
		if err := c.store.Set(ctx, "video:"+key, raw); err != nil {
			c.logger.Debug().Err(err).Str("slug", key).Msg("session store write failed")
		}
	}
}

func (c *Client) loadStoredVideo(ctx context.Context, videoSlug string) (map[string]any, bool) {
	data, ok, err := c.store.Get(ctx, "video:"+videoSlug)
	if err != nil || !ok {
		return nil, false
	}
	var raw map[string]any
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, false
	}
	return raw, true
}

// cacheVideoList builds videos from a payload list field, fills the session
// collection and returns them in payload order.
func (c *Client) cacheVideoList(ctx context.Context, payload map[string]any, field string) ([]*entity.Video, error) {
	items := listField(payload, field)
	if len(items) == 0 {
		return nil, &api.APIError{Sentinel: api.ErrNotFound, Operation: "video list", Reason: "no videos in payload"}
	}
	videos := make([]*entity.Video, 0, len(items))
	for _, item := range items {
		raw, ok := item.(map[string]any)
		if !ok {
			continue
		}
		video, err := entity.NewVideo(raw)
		if err != nil {
			c.logger.Debug().Err(err).Msg("skipping payload item")
			continue
		}
		c.cacheVideo(ctx, video)
		videos = append(videos, video)
	}
	return videos, nil
}

// buildVideoList builds videos without touching the shared video collection;
// tag and project pages keep their own entries.
func (c *Client) buildVideoList(ctx context.Context, payload map[string]any, field string) []*entity.Video {
	items := listField(payload, field)
	videos := make([]*entity.Video, 0, len(items))
	for _, item := range items {
		raw, ok := item.(map[string]any)
		if !ok {
			continue
		}
		video, err := entity.NewVideo(raw)
		if err != nil {
			continue
		}
		videos = append(videos, video)
	}
	return videos
}

func listField(payload map[string]any, field string) []any {
	items, _ := payload[field].([]any)
	return items
}

func failureError(operation string, env api.Envelope) error {
	err := &api.APIError{Sentinel: api.ErrUpstreamFailure, Operation: operation}
	if env.Failure != nil {
		err.Code = env.Failure.Code
		err.Reason = env.Failure.Reason
	}
	if env.NotFound() {
		err.Sentinel = api.ErrNotFound
	}
	return err
}
