// SPDX-License-Identifier: MIT

package api

import (
	"encoding/base64"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strconv"
	"strings"
	"sync"
)

// MockServer emulates the wrapped Vidora service for tests: the read
// endpoints under /ws/{endpoint}/api/{token}/..., the generic write endpoint
// under /services/index.php and the resource write endpoints under
// /ws/{resource}/mode/json/apiv/5.0.
type MockServer struct {
	*httptest.Server

	mu sync.RWMutex

	// AppToken and SharedToken select between the two asset sets.
	AppToken    string
	SharedToken string

	Assets       []map[string]any
	SharedAssets []map[string]any

	// Thumbnails by asset ID; ThumbnailUnknown marks assets whose thumbnail
	// state is not determinable yet (failure 903), ThumbnailFailure assets
	// whose thumbnail endpoint fails with another code.
	Thumbnails       map[string][]any
	ThumbnailUnknown map[string]bool
	ThumbnailFailure map[string]int

	// CustomFields feed ws_account_metadata.
	CustomFields []map[string]any

	// Programs by project UUID and by program UUID.
	ProjectPrograms map[string][]map[string]any
	Programs        map[string]map[string]any

	// Associations payload by asset ID.
	Associations map[string]map[string]any

	UserToken string

	// WriteFailure, when set, is returned by every mutation endpoint.
	WriteFailure *Failure

	reads  map[string]int
	writes int

	lastRequestID string
}

// NewMockServer creates a mock with empty data sets.
func NewMockServer() *MockServer {
	m := &MockServer{
		AppToken:         "app-token",
		Thumbnails:       make(map[string][]any),
		ThumbnailUnknown: make(map[string]bool),
		ThumbnailFailure: make(map[string]int),
		ProjectPrograms:  make(map[string][]map[string]any),
		Programs:         make(map[string]map[string]any),
		Associations:     make(map[string]map[string]any),
		UserToken:        "user-token-1",
		reads:            make(map[string]int),
	}

	mux := http.NewServeMux()
	mux.HandleFunc("/services/index.php", m.handleWrite)
	mux.HandleFunc("/ws/", m.handleWS)
	m.Server = httptest.NewServer(mux)
	return m
}

// Config returns a client configuration pointing at the mock.
func (m *MockServer) Config() Config {
	return Config{
		BaseURL:     m.URL,
		Token:       m.AppToken,
		ClientToken: "client-token",
		SearchUUID:  "default-project",
		Username:    "apiuser",
		Password:    "secret",
	}
}

// Reads returns how many read requests hit the named endpoint.
func (m *MockServer) Reads(endpoint string) int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.reads[endpoint]
}

// Writes returns how many mutation requests the mock received.
func (m *MockServer) Writes() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.writes
}

// LastRequestID returns the X-Request-Id header of the most recent read.
func (m *MockServer) LastRequestID() string {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.lastRequestID
}

func (m *MockServer) handleWS(w http.ResponseWriter, r *http.Request) {
	m.mu.Lock()
	m.lastRequestID = r.Header.Get("X-Request-Id")
	m.mu.Unlock()

	parts := strings.Split(strings.Trim(r.URL.Path, "/"), "/")
	// Read:  ws/{endpoint}/api/{token}/mode/json/apiv/5[/...]
	// Write: ws/{resource}/mode/json/apiv/5.0
	if len(parts) >= 3 && parts[2] == "mode" {
		m.handleWrite(w, r)
		return
	}
	if len(parts) < 8 || parts[2] != "api" {
		http.NotFound(w, r)
		return
	}
	endpoint, token := parts[1], parts[3]
	extra := parts[8:]

	m.mu.Lock()
	m.reads[endpoint]++
	m.mu.Unlock()

	m.mu.RLock()
	defer m.mu.RUnlock()

	switch endpoint {
	case "ws_asset":
		m.serveAssets(w, r, token)
	case "ws_asset_associations":
		m.serveAssociations(w, r)
	case "ws_account_metadata":
		writeSuccess(w, 321, "WsAccountMetadataResponse", map[string]any{"custom": anySlice(m.CustomFields)})
	case "ws_thumbnail":
		m.serveThumbnail(w, r)
	case "ws_user_token":
		m.serveUserToken(w, extra)
	case "ws_program":
		m.servePrograms(w, r)
	case "ws_search_programs":
		m.serveSearch(w, r)
	default:
		writeFailure(w, 404, "unknown endpoint "+endpoint)
	}
}

func (m *MockServer) serveAssets(w http.ResponseWriter, r *http.Request, token string) {
	assets := m.Assets
	if m.SharedToken != "" && token == m.SharedToken {
		assets = m.SharedAssets
	}
	q := r.URL.Query()

	if vid := firstOf(q, "a", "r"); vid != "" {
		for _, a := range assets {
			if fmt.Sprint(a["assetid"]) == vid || fmt.Sprint(a["reference"]) == vid {
				if q.Get("isPublished") == "true" && !truthy(a["isPublished"]) {
					continue
				}
				writeSuccess(w, 205, "WsAssetResponse", map[string]any{
					"asset":      []any{a},
					"totalCount": 1,
				})
				return
			}
		}
		writeFailure(w, failureNotFound, "asset not found")
		return
	}

	var matched []map[string]any
	switch {
	case q.Get("title") != "":
		for _, a := range assets {
			if fmt.Sprint(a["title"]) == q.Get("title") {
				matched = append(matched, a)
			}
		}
	case q.Get("tags") != "":
		needle := strings.Trim(q.Get("tags"), "%")
		for _, a := range assets {
			if tags, _ := a["tags"].(string); strings.Contains(tags, needle) {
				matched = append(matched, a)
			}
		}
	case q.Get("metadata") != "":
		name, value := q.Get("metadata"), q.Get("metavalue")
		for _, a := range assets {
			meta, _ := a["metadatas"].(map[string]any)
			if meta != nil && fmt.Sprint(meta[name]) == value {
				matched = append(matched, a)
			}
		}
	default:
		matched = assets
	}

	if q.Get("isPublished") == "true" {
		var published []map[string]any
		for _, a := range matched {
			if truthy(a["isPublished"]) {
				published = append(published, a)
			}
		}
		matched = published
	}

	if len(matched) == 0 {
		writeFailure(w, failureNotFound, "no assets found")
		return
	}

	items := anySlice(matched)
	sortAssets(items, Sort{By: q.Get("sortby"), Dir: q.Get("sortdir")})
	total := len(items)
	items = pageOf(items, q)
	writeSuccess(w, 304, "WsAssetResponse", map[string]any{
		"asset":        items,
		"totalCount":   total,
		"currentCount": len(items),
	})
}

func (m *MockServer) serveAssociations(w http.ResponseWriter, r *http.Request) {
	id := r.URL.Query().Get("assetId")
	payload, ok := m.Associations[id]
	if !ok {
		writeFailure(w, failureNotFound, "no associations")
		return
	}
	writeSuccess(w, 304, "WsAssetAssociationsResponse", payload)
}

func (m *MockServer) serveThumbnail(w http.ResponseWriter, r *http.Request) {
	id := r.URL.Query().Get("assetId")
	if m.ThumbnailUnknown[id] {
		writeFailure(w, thumbnailUnknown, "thumbnail state unknown")
		return
	}
	if code := m.ThumbnailFailure[id]; code != 0 {
		writeFailure(w, code, "internal error")
		return
	}
	thumbs := m.Thumbnails[id]
	if thumbs == nil {
		thumbs = []any{}
	}
	writeSuccess(w, 325, "WsThumbnailResponse", map[string]any{"thumbnails": thumbs})
}

func (m *MockServer) serveUserToken(w http.ResponseWriter, extra []string) {
	// Path style: .../apiv/5/u/{username}/p/{base64 password}
	if len(extra) < 4 || extra[0] != "u" || extra[2] != "p" {
		writeFailure(w, 400, "bad token path")
		return
	}
	if pw, err := base64.StdEncoding.DecodeString(extra[3]); err != nil || len(pw) == 0 {
		writeFailure(w, 401, "bad credentials")
		return
	}
	writeJSON(w, map[string]any{
		"response": map[string]any{
			"success":     map[string]any{"code": 224},
			"WsUserToken": map[string]any{"token": m.UserToken},
		},
	})
}

func (m *MockServer) servePrograms(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	if uuid := q.Get("v"); uuid != "" {
		program, ok := m.Programs[uuid]
		if !ok {
			writeFailure(w, failureNotFound, "program not found")
			return
		}
		writeSuccess(w, 303, "WsProgramResponse", map[string]any{"program": program})
		return
	}

	var programs []map[string]any
	if uuid := q.Get("p"); uuid != "" {
		programs = m.ProjectPrograms[uuid]
	} else if refID := q.Get("refid"); refID != "" {
		programs = m.ProjectPrograms[refID]
	}
	if programs == nil {
		writeFailure(w, failureNotFound, "no programs found")
		return
	}

	items := anySlice(programs)
	sortAssets(items, Sort{By: q.Get("sortby"), Dir: q.Get("sortdir")})
	total := len(items)
	items = pageOf(items, q)
	writeSuccess(w, 303, "WsProgramResponse", map[string]any{
		"programs":   items,
		"totalCount": total,
	})
}

func (m *MockServer) serveSearch(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	decoded, err := base64.StdEncoding.DecodeString(q.Get("s"))
	if err != nil {
		writeFailure(w, 400, "bad search string")
		return
	}
	needle := strings.ToLower(string(decoded))

	var matched []map[string]any
	for _, p := range m.ProjectPrograms[q.Get("p")] {
		title, _ := p["Title"].(string)
		if title == "" {
			title, _ = p["title"].(string)
		}
		if needle == "*" || strings.Contains(strings.ToLower(title), needle) {
			matched = append(matched, p)
		}
	}

	items := anySlice(matched)
	total := len(items)
	items = pageOf(items, q)
	writeSuccess(w, 303, "WsSearchProgramsResponse", map[string]any{
		"programs":   items,
		"totalCount": total,
	})
}

// handleWrite serves every mutation endpoint with a canned success unless a
// failure is injected. Bodies are not applied to the data sets; tests check
// the write counter instead.
func (m *MockServer) handleWrite(w http.ResponseWriter, r *http.Request) {
	m.mu.Lock()
	m.writes++
	failure := m.WriteFailure
	m.mu.Unlock()

	if failure != nil {
		writeFailure(w, failure.Code, failure.Reason)
		return
	}
	writeJSON(w, map[string]any{
		"response": map[string]any{
			"success": map[string]any{"code": 832},
		},
	})
}

func firstOf(q url.Values, keys ...string) string {
	for _, k := range keys {
		if v := q.Get(k); v != "" {
			return v
		}
	}
	return ""
}

func truthy(v any) bool {
	f, ok := asFloat(v)
	return ok && f != 0
}

func anySlice[T any](in []T) []any {
	out := make([]any, len(in))
	for i, v := range in {
		out[i] = v
	}
	return out
}

// pageOf applies the inclusive start/end window of the query.
func pageOf(items []any, q url.Values) []any {
	start, _ := strconv.Atoi(q.Get("start"))
	end, err := strconv.Atoi(q.Get("end"))
	if err != nil {
		end = len(items) - 1
	}
	if start >= len(items) {
		return []any{}
	}
	if end >= len(items) {
		end = len(items) - 1
	}
	return items[start : end+1]
}

func writeSuccess(w http.ResponseWriter, code int, key string, payload map[string]any) {
	writeJSON(w, map[string]any{
		"response": map[string]any{
			"success": map[string]any{"code": code},
			key:       payload,
		},
	})
}

func writeFailure(w http.ResponseWriter, code int, reason string) {
	writeJSON(w, map[string]any{
		"response": map[string]any{
			"failure": map[string]any{"code": code, "reason": reason},
		},
	})
}

func writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(v)
}
