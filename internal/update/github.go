package update

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/divine-development/divine/internal/httputil"
	"golang.org/x/oauth2"
)

const (
	// DefaultGitHubURL is public GitHub API root
	DefaultGitHubURL = "https://api.github.com"
	githubAccept     = "application/vnd.github.v3+json"
	userAgent        = "divine-bot"
)

// StatusError is returned when upstream responds with non-success status
type StatusError struct {
	Code int
	Body string
}

// Error implementation
func (e *StatusError) Error() string {
	return fmt.Sprintf("upstream responded %d: %s", e.Code, e.Body)
}

// GitHub reads latest commit of repository via GitHub REST API
type GitHub struct {
	BaseURL    string
	Repository string
	Branch     string
	Client     *http.Client
}

// NewGitHub returns source authenticating with bearer token, empty token means anonymous access
func NewGitHub(baseURL, repository, branch, token string) *GitHub {
	if baseURL == "" {
		baseURL = DefaultGitHubURL
	}

	client := http.DefaultClient

	if token != "" {
		client = oauth2.NewClient(context.Background(), oauth2.StaticTokenSource(&oauth2.Token{
			AccessToken: token,
		}))
	}

	return &GitHub{
		BaseURL:    strings.TrimRight(baseURL, "/"),
		Repository: repository,
		Branch:     branch,
		Client: &http.Client{
			Timeout: 30 * time.Second,
			Transport: httputil.NewTransport(client.Transport, &httputil.StaticHeaders{
				Set: map[string][]string{
					"Accept":     {githubAccept},
					"User-Agent": {userAgent},
				},
			}),
		},
	}
}

type commit struct {
	SHA string `json:"sha"`
}

// Latest returns sha of the first commit in repository commit list
func (g *GitHub) Latest(ctx context.Context) (string, error) {
	q := url.Values{}
	q.Set("per_page", "1")

	if g.Branch != "" {
		q.Set("sha", g.Branch)
	}

	u := fmt.Sprintf("%s/repos/%s/commits?%s", g.BaseURL, g.Repository, q.Encode())

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return "", err
	}

	resp, err := g.Client.Do(req)
	if err != nil {
		return "", err
	}

	defer func() {
		_ = resp.Body.Close()
	}()

	if resp.StatusCode != http.StatusOK {
		bs, _ := io.ReadAll(io.LimitReader(resp.Body, 512))

		return "", &StatusError{
			Code: resp.StatusCode,
			Body: strings.TrimSpace(string(bs)),
		}
	}

	var commits []commit

	err = json.NewDecoder(resp.Body).Decode(&commits)
	if err != nil {
		return "", fmt.Errorf("decoding commit list: %w", err)
	}

	if len(commits) == 0 {
		return "", nil
	}

	return commits[0].SHA, nil
}
