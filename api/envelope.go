// SPDX-License-Identifier: MIT

package api

import (
	"strconv"

	"github.com/vidora/vidora-go/internal/slug"
)

// successCodes is the fixed whitelist of accepted success codes. Each entry
// belongs to one endpoint family; the service reuses them across versions.
var successCodes = map[int]bool{
	224: true, // user token found
	321: true, // account metadata found
	303: true, // programs found
	205: true, // asset found
	304: true, // assets found
	325: true, // thumbnail found
}

// Failure is the decoded upstream failure object.
type Failure struct {
	Code   int
	Reason string
}

// Envelope is the normalized view of a raw decoded response.
//
// Exactly one of three shapes applies: a successful payload (Failure nil,
// Malformed false), an upstream failure (Failure set, Payload still holding
// the raw response object so callers can address payload["failure"]), or a
// malformed response (Malformed true, Payload holding the raw input
// unchanged). Malformed input is deliberately not an error: callers check
// for the keys they expect before use.
type Envelope struct {
	Payload    map[string]any
	TotalCount int
	HasCount   bool
	Failure    *Failure
	Malformed  bool
}

// Failed reports whether the upstream returned a failure envelope.
func (e Envelope) Failed() bool {
	return e.Failure != nil
}

// NotFound reports whether the failure is the service's not-found code.
func (e Envelope) NotFound() bool {
	return e.Failure != nil && e.Failure.Code == failureNotFound
}

// failureNotFound is the upstream failure code for an absent resource.
const failureNotFound = 303

// thumbnailUnknown is the failure code for assets whose thumbnail state
// cannot be determined yet.
const thumbnailUnknown = 903

// Normalize extracts the meaningful payload from a raw decoded response.
// The response key depends on how the query was built: slash-style paths use
// camelCase(endpoint), query strings use camelCase(endpoint)+"Response".
func Normalize(raw map[string]any, endpoint string, pathStyle bool) Envelope {
	key := slug.Camelize(endpoint)
	if !pathStyle {
		key += "Response"
	}

	var env Envelope

	resp, ok := raw["response"].(map[string]any)
	if ok {
		if success, ok := resp["success"].(map[string]any); ok {
			if code, ok := asInt(success["code"]); ok && successCodes[code] {
				if payload, ok := resp[key].(map[string]any); ok {
					env.Payload = payload
					if count, ok := asInt(payload["totalCount"]); ok {
						env.TotalCount = count
						env.HasCount = true
					}
					return env
				}
			}
		}
		if failure, ok := resp["failure"].(map[string]any); ok {
			code, _ := asInt(failure["code"])
			reason, _ := failure["reason"].(string)
			env.Payload = resp
			env.Failure = &Failure{Code: code, Reason: reason}
			return env
		}
	}

	// Neither success nor failure shape: pass the raw structure through
	// unchanged, explicitly marked, so callers cannot mistake it for a
	// validated payload.
	env.Payload = raw
	env.Malformed = true
	return env
}

// asInt coerces the numeric representations seen on the wire (JSON numbers
// and numeric strings) into an int.
func asInt(v any) (int, bool) {
	switch n := v.(type) {
	case float64:
		return int(n), true
	case int:
		return n, true
	case string:
		if i, err := strconv.Atoi(n); err == nil {
			return i, true
		}
	}
	return 0, false
}
