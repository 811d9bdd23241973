// SPDX-License-Identifier: MIT

package api

import "context"

const endpointSearchPrograms = "ws_search_programs"

// ProgramSearchProvider searches programs across a project (ws_search_programs).
// The search covers asset metadata, program and asset titles and both
// descriptions. Search strings shorter than three characters return nothing.
type ProgramSearchProvider struct {
	client *Client
	count  memo[int]
}

// NewProgramSearchProvider creates a search provider on the given client.
func NewProgramSearchProvider(client *Client) *ProgramSearchProvider {
	return &ProgramSearchProvider{client: client}
}

// Fetch runs one search. An empty sort keeps the service's relevance
// weighting; the sort field can be programTitle, assetTitle, programCreation
// or assetCreation.
func (p *ProgramSearchProvider) Fetch(ctx context.Context, search, projectUUID string, page Page, sort Sort) (Envelope, error) {
	if projectUUID == "" {
		return Envelope{}, &APIError{Sentinel: ErrMissingSearchTerm, Operation: endpointSearchPrograms}
	}
	env, err := p.client.Get(ctx, endpointSearchPrograms, searchQuery(search, projectUUID, page, sort), getOptions{})
	if err != nil {
		return Envelope{}, err
	}
	if env.HasCount {
		p.count.value = env.TotalCount
		p.count.ok = true
	}
	return env, nil
}

// TotalCount returns the count recorded by the most recent search, or runs a
// minimal query against the given search when none is cached.
func (p *ProgramSearchProvider) TotalCount(ctx context.Context, search, projectUUID string, refresh bool) (int, error) {
	return p.count.get(refresh, func() (int, error) {
		env, err := p.Fetch(ctx, search, projectUUID, Page{Start: 0, Limit: 1}, Sort{Dir: "desc"})
		if err != nil {
			return 0, err
		}
		return env.TotalCount, nil
	})
}
