// SPDX-License-Identifier: MIT

package api

import (
	"context"
	"net/http"

	"github.com/google/uuid"
)

const endpointProgram = "ws_program"

// ProgramProvider fetches and caches program data (ws_program).
type ProgramProvider struct {
	client *Client
	data   memo[Envelope]
	count  memo[int]
}

// NewProgramProvider creates a program provider on the given client.
func NewProgramProvider(client *Client) *ProgramProvider {
	return &ProgramProvider{client: client}
}

// Data returns the default-project program listing, fetched at most once
// unless a refresh is requested.
func (p *ProgramProvider) Data(ctx context.Context, refresh bool) (Envelope, error) {
	return p.data.get(refresh, func() (Envelope, error) {
		return p.FetchByProjectUUID(ctx, p.client.cfg.SearchUUID, DefaultPage, ProgramSort)
	})
}

// TotalCount returns the number of programs in the default project, read
// through a minimal limit=1 query.
func (p *ProgramProvider) TotalCount(ctx context.Context, refresh bool) (int, error) {
	return p.count.get(refresh, func() (int, error) {
		env, err := p.FetchByProjectUUID(ctx, p.client.cfg.SearchUUID, Page{Start: 0, Limit: 1}, ProgramSort)
		if err != nil {
			return 0, err
		}
		return env.TotalCount, nil
	})
}

// Clear drops the cached listing and count.
func (p *ProgramProvider) Clear() {
	p.data.clear()
	p.count.clear()
}

// FetchByProjectUUID lists one page of the programs of a project. The
// payload keeps the "programs" list and carries the copied totalCount.
func (p *ProgramProvider) FetchByProjectUUID(ctx context.Context, uuid string, page Page, sort Sort) (Envelope, error) {
	env, err := p.client.Get(ctx, endpointProgram, programProjectQuery(uuid, page, sort), getOptions{})
	if err != nil {
		return Envelope{}, err
	}
	return normalizeProgramList(env), nil
}

// FetchByRefID lists one page of the programs of a category reference ID.
func (p *ProgramProvider) FetchByRefID(ctx context.Context, refID string, page Page, sort Sort) (Envelope, error) {
	env, err := p.client.Get(ctx, endpointProgram, programRefIDQuery(refID, page, sort), getOptions{})
	if err != nil {
		return Envelope{}, err
	}
	return normalizeProgramList(env), nil
}

// FetchByProgramUUID retrieves one program by UUID. Identifiers that are not
// UUIDs are rejected before any request is made. On success the envelope
// payload is the program object itself.
func (p *ProgramProvider) FetchByProgramUUID(ctx context.Context, programUUID string) (Envelope, error) {
	if err := uuid.Validate(programUUID); err != nil {
		return Envelope{}, &APIError{
			Sentinel:  ErrNotFound,
			Operation: endpointProgram,
			Reason:    "not a program uuid: " + programUUID,
			Err:       err,
		}
	}
	env, err := p.client.Get(ctx, endpointProgram, programUUIDQuery(programUUID), getOptions{})
	if err != nil {
		return Envelope{}, err
	}
	if program, ok := env.Payload["program"].(map[string]any); ok {
		env.Payload = program
	}
	return env, nil
}

// normalizeProgramList flattens the optional "programs" wrapper and stamps
// the totalCount into the payload for downstream pagination.
func normalizeProgramList(env Envelope) Envelope {
	if env.Failed() || env.Malformed {
		return env
	}
	if inner, ok := env.Payload["programs"].(map[string]any); ok {
		env.Payload = inner
	}
	env.Payload["totalCount"] = float64(env.TotalCount)
	return env
}

// CreateInProject issues the write that places an asset into a project.
func (p *ProgramProvider) CreateInProject(ctx context.Context, userToken, assetID, projectUUID string) (*Failure, error) {
	return p.client.Mutate(ctx, mutationRequest{
		method:   http.MethodPost,
		resource: endpointProgram,
		bodyKey:  endpointProgram,
		body: map[string]any{
			"assetId":     assetIDValue(assetID),
			"projectUUID": projectUUID,
		},
		userToken: userToken,
	})
}

// Publish issues the write that publishes a program.
func (p *ProgramProvider) Publish(ctx context.Context, userToken, programUUID string) (*Failure, error) {
	return p.client.Mutate(ctx, mutationRequest{
		method:   http.MethodPut,
		resource: endpointProgram,
		bodyKey:  endpointProgram,
		body: map[string]any{
			"programUUID": programUUID,
			"isPublished": 1,
		},
		userToken: userToken,
	})
}

// Delete issues the write that removes a program.
func (p *ProgramProvider) Delete(ctx context.Context, userToken, programUUID string) (*Failure, error) {
	return p.client.Mutate(ctx, mutationRequest{
		method:   http.MethodDelete,
		resource: endpointProgram,
		bodyKey:  endpointProgram,
		body: map[string]any{
			"programUuid": programUUID,
		},
		userToken: userToken,
	})
}
