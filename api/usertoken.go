// SPDX-License-Identifier: MIT

package api

import "context"

const endpointUserToken = "ws_user_token"

// UserTokenProvider mints short-lived user tokens (ws_user_token). Tokens
// authenticate one mutation workflow and are never cached: every call
// fetches a fresh one with caching defeated.
type UserTokenProvider struct {
	client *Client
}

// NewUserTokenProvider creates a user-token provider on the given client.
func NewUserTokenProvider(client *Client) *UserTokenProvider {
	return &UserTokenProvider{client: client}
}

// Token mints a fresh user token for the configured API user.
func (p *UserTokenProvider) Token(ctx context.Context) (string, error) {
	path := userTokenPath(p.client.cfg.Username, p.client.cfg.Password)
	env, err := p.client.Get(ctx, endpointUserToken, path, getOptions{noCache: true})
	if err != nil {
		return "", err
	}
	if env.Failed() {
		return "", &APIError{
			Sentinel:  ErrUpstreamFailure,
			Operation: endpointUserToken,
			Code:      env.Failure.Code,
			Reason:    env.Failure.Reason,
		}
	}
	token, ok := env.Payload["token"].(string)
	if !ok || token == "" {
		return "", &APIError{Sentinel: ErrBadResponse, Operation: endpointUserToken}
	}
	return token, nil
}
