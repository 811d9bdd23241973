// SPDX-License-Identifier: MIT

package vidora

import (
	"context"
	"fmt"

	"github.com/vidora/vidora-go/api"
	"github.com/vidora/vidora-go/entity"
)

// Result reports the outcome of a write workflow. A failed precondition or a
// failure envelope yields Success=false with the reason in Message; errors
// are reserved for transport and decoding problems.
type Result struct {
	Success bool
	Message string
}

// UserToken mints a fresh short-lived user token for write calls.
func (c *Client) UserToken(ctx context.Context) (string, error) {
	return c.userTokens.Token(ctx)
}

// fetchAssetForWrite loads the current asset state bypassing every cache,
// unpublished assets included. A missing asset comes back as a failed
// Result instead of an error.
func (c *Client) fetchAssetForWrite(ctx context.Context, assetID string) (map[string]any, *Result, error) {
	env, err := c.assets.FetchByVid(ctx, assetID, api.VidOptions{NoCache: true, IncludeUnpublished: true})
	if err != nil {
		return nil, nil, err
	}
	if env.Failed() || env.Payload["assetid"] == nil {
		return nil, &Result{Message: fmt.Sprintf("asset %s does not exist", assetID)}, nil
	}
	return env.Payload, nil, nil
}

// SetAssociatedLinkAsSlug associates a link carrying the video's slug to the
// asset, making the video addressable by slug later.
func (c *Client) SetAssociatedLinkAsSlug(ctx context.Context, assetID string) (Result, error) {
	asset, precondition, err := c.fetchAssetForWrite(ctx, assetID)
	if err != nil {
		return Result{}, err
	}
	if precondition != nil {
		return *precondition, nil
	}

	video, err := entity.NewVideo(asset)
	if err != nil {
		return Result{}, err
	}
	token, err := c.UserToken(ctx)
	if err != nil {
		return Result{}, err
	}

	failure, err := c.assets.SetAssociatedLink(ctx, token, assetID, video.Title(), video.Slug())
	if err != nil {
		return Result{}, err
	}
	if failure != nil {
		return Result{Message: failure.Reason}, nil
	}
	c.logger.Info().Str("asset_id", assetID).Str("slug", video.Slug()).Msg("associated link set")
	return Result{
		Success: true,
		Message: fmt.Sprintf("link %s associated to asset %s", video.Slug(), assetID),
	}, nil
}

// HasAssociatedLinkAsSlug reports whether the asset already carries an
// associated link.
func (c *Client) HasAssociatedLinkAsSlug(ctx context.Context, assetID string) (bool, error) {
	asset, precondition, err := c.fetchAssetForWrite(ctx, assetID)
	if err != nil {
		return false, err
	}
	if precondition != nil {
		return false, &api.APIError{Sentinel: api.ErrNotFound, Operation: "associated link check", Reason: precondition.Message}
	}
	_, ok := asset["associatedLinks"]
	return ok, nil
}

// CreateProgramIntoDefaultProject places an asset in the default project.
// With checkIfIn set the call is idempotent: an asset already flagged as
// placed succeeds without a second write, and a successful placement flips
// the flag for the next caller.
func (c *Client) CreateProgramIntoDefaultProject(ctx context.Context, assetID string, checkIfIn bool) (Result, error) {
	asset, precondition, err := c.fetchAssetForWrite(ctx, assetID)
	if err != nil {
		return Result{}, err
	}
	if precondition != nil {
		return *precondition, nil
	}

	meta, _ := asset["metadatas"].(map[string]any)
	flag, hasFlag := meta["in_default_project"]
	if checkIfIn && hasFlag && flag != "false" {
		return Result{
			Success: true,
			Message: fmt.Sprintf("asset %s was already placed in default project %s", assetID, c.cfg.SearchUUID),
		}, nil
	}

	token, err := c.UserToken(ctx)
	if err != nil {
		return Result{}, err
	}
	failure, err := c.programs.CreateInProject(ctx, token, assetID, c.cfg.SearchUUID)
	if err != nil {
		return Result{}, err
	}
	if failure != nil {
		return Result{Message: failure.Reason}, nil
	}

	if checkIfIn && hasFlag {
		// Keep the placement flag in sync so the next call short-circuits.
		if _, err := c.SetAssetProperties(ctx, assetID, map[string]any{
			"metadatas": map[string]any{"in_default_project": true},
		}); err != nil {
			c.logger.Warn().Err(err).Str("asset_id", assetID).Msg("placement flag update failed")
		}
	}

	c.logger.Info().Str("asset_id", assetID).Str("project", c.cfg.SearchUUID).Msg("program created")
	return Result{
		Success: true,
		Message: fmt.Sprintf("asset %s placed in default project %s", assetID, c.cfg.SearchUUID),
	}, nil
}

// SetAssetProperties writes arbitrary asset fields. An empty field set
// succeeds without touching the upstream.
func (c *Client) SetAssetProperties(ctx context.Context, assetID string, fields map[string]any) (Result, error) {
	_, precondition, err := c.fetchAssetForWrite(ctx, assetID)
	if err != nil {
		return Result{}, err
	}
	if precondition != nil {
		return *precondition, nil
	}
	if len(fields) == 0 {
		return Result{Success: true, Message: fmt.Sprintf("asset %s remains unmodified", assetID)}, nil
	}

	token, err := c.UserToken(ctx)
	if err != nil {
		return Result{}, err
	}
	failure, err := c.assets.SetProperties(ctx, token, assetID, fields)
	if err != nil {
		return Result{}, err
	}
	if failure != nil {
		return Result{Message: failure.Reason}, nil
	}
	return Result{Success: true, Message: fmt.Sprintf("asset %s modified", assetID)}, nil
}

// DeleteProgramFromDefaultProject removes the asset's program from the
// default project, resolving the program UUID through the asset's
// associations.
func (c *Client) DeleteProgramFromDefaultProject(ctx context.Context, assetID string) (Result, error) {
	programUUID, err := c.defaultProjectProgram(ctx, assetID)
	if err != nil {
		return Result{}, err
	}
	if programUUID == "" {
		return Result{Message: fmt.Sprintf("asset %s has no program in the default project", assetID)}, nil
	}

	token, err := c.UserToken(ctx)
	if err != nil {
		return Result{}, err
	}
	failure, err := c.programs.Delete(ctx, token, programUUID)
	if err != nil {
		return Result{}, err
	}
	if failure != nil {
		return Result{Message: failure.Reason}, nil
	}
	c.logger.Info().Str("asset_id", assetID).Str("program", programUUID).Msg("program deleted")
	return Result{
		Success: true,
		Message: fmt.Sprintf("program %s deleted from default project %s", programUUID, c.cfg.SearchUUID),
	}, nil
}

// PublishProgramInDefaultProject publishes the asset's program in the
// default project.
func (c *Client) PublishProgramInDefaultProject(ctx context.Context, assetID string) (Result, error) {
	programUUID, err := c.defaultProjectProgram(ctx, assetID)
	if err != nil {
		return Result{}, err
	}
	if programUUID == "" {
		return Result{Message: fmt.Sprintf("asset %s has no program in the default project", assetID)}, nil
	}

	token, err := c.UserToken(ctx)
	if err != nil {
		return Result{}, err
	}
	failure, err := c.programs.Publish(ctx, token, programUUID)
	if err != nil {
		return Result{}, err
	}
	if failure != nil {
		return Result{Message: failure.Reason}, nil
	}
	return Result{
		Success: true,
		Message: fmt.Sprintf("program %s published in default project %s", programUUID, c.cfg.SearchUUID),
	}, nil
}

// Unpublish clears the published flag of an asset. Already-unpublished
// assets succeed without a write unless extra fields need to go out anyway.
func (c *Client) Unpublish(ctx context.Context, assetID string, extras map[string]any) (Result, error) {
	asset, precondition, err := c.fetchAssetForWrite(ctx, assetID)
	if err != nil {
		return Result{}, err
	}
	if precondition != nil {
		return *precondition, nil
	}

	if !truthyValue(asset["isPublished"]) && len(extras) == 0 {
		return Result{Success: true, Message: fmt.Sprintf("asset %s is already unpublished", assetID)}, nil
	}

	fields := map[string]any{"isPublished": 0}
	for k, v := range extras {
		fields[k] = v
	}

	token, err := c.UserToken(ctx)
	if err != nil {
		return Result{}, err
	}
	failure, err := c.assets.SetProperties(ctx, token, assetID, fields)
	if err != nil {
		return Result{}, err
	}
	if failure != nil {
		return Result{Message: failure.Reason}, nil
	}
	c.logger.Info().Str("asset_id", assetID).Msg("asset unpublished")
	return Result{Success: true, Message: fmt.Sprintf("asset %s unpublished", assetID)}, nil
}

// defaultProjectProgram finds the UUID of the asset's program inside the
// default project, identified by the configured client name.
func (c *Client) defaultProjectProgram(ctx context.Context, assetID string) (string, error) {
	env, err := c.assets.FetchAssociations(ctx, assetID, api.DefaultPage)
	if err != nil {
		return "", err
	}
	if env.Failed() {
		return "", failureError("associations", env)
	}
	programs, _ := env.Payload["associatedPrograms"].([]any)
	for _, p := range programs {
		program, ok := p.(map[string]any)
		if !ok {
			continue
		}
		if program["project_title"] == c.cfg.ClientName {
			if uuid, ok := program["uuid"].(string); ok {
				return uuid, nil
			}
		}
	}
	return "", nil
}

func truthyValue(v any) bool {
	switch t := v.(type) {
	case bool:
		return t
	case float64:
		return t != 0
	case string:
		return t != "" && t != "0" && t != "false"
	default:
		return false
	}
}
