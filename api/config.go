// SPDX-License-Identifier: MIT

package api

import (
	"fmt"
	"net/url"
	"strings"
)

// Config holds the account credentials and identifiers for one wrapped
// Vidora account. The same configuration feeds every provider.
type Config struct {
	// BaseURL is the API origin, e.g. "https://api-ovp.vidora.example".
	BaseURL string
	// Token is the application token used for read queries.
	Token string
	// ClientToken authenticates mutation workflows.
	ClientToken string
	// SearchUUID identifies the default project videos are picked from.
	SearchUUID string
	// Username and Password mint short-lived user tokens for mutations.
	Username string
	Password string

	// ReadOnlyToken, when set, marks a child-account configuration: asset
	// queries by category additionally fetch the parent account's shared
	// slice with this token and merge the results.
	ReadOnlyToken string
	// RefIDPrefix disambiguates category reference IDs between sub accounts.
	RefIDPrefix string
	// FolderID, when set, disables shared-asset detection in status checks.
	FolderID string
	// ClientName matches the project title of associated-program entries.
	ClientName string

	// Debug disables caching and logs every request URL.
	Debug bool
}

// Validate checks the required fields and reports every missing one at once.
// It runs before any network activity.
func (c Config) Validate() error {
	var missing []string
	required := []struct {
		name, value string
	}{
		{"BaseURL", c.BaseURL},
		{"Token", c.Token},
		{"ClientToken", c.ClientToken},
		{"SearchUUID", c.SearchUUID},
		{"Username", c.Username},
		{"Password", c.Password},
	}
	for _, f := range required {
		if strings.TrimSpace(f.value) == "" {
			missing = append(missing, f.name)
		}
	}
	if len(missing) > 0 {
		return fmt.Errorf("config: missing required fields: %s", strings.Join(missing, ", "))
	}

	u, err := url.Parse(c.BaseURL)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return fmt.Errorf("config: BaseURL must be an absolute http(s) URL, got %q", c.BaseURL)
	}

	return nil
}

// serviceBaseURL strips the "api-" host prefix; the write endpoints live on
// the plain host.
func (c Config) serviceBaseURL() string {
	return strings.Replace(c.BaseURL, "api-", "", 1)
}
