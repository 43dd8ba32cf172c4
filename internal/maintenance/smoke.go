package maintenance

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

// SmokeResult is the outcome of one check.
type SmokeResult struct {
	Name     string
	Method   string
	Path     string
	Status   int
	Duration time.Duration
	Err      error
}

func (r SmokeResult) OK() bool { return r.Err == nil }

// SmokeOptions configures RunSmoke. Username and Password are optional; without them
// the authenticated checks are skipped.
type SmokeOptions struct {
	BaseURL  string
	Username string
	Password string
	Client   *http.Client
}

type check struct {
	name   string
	method string
	path   string
	body   any
	auth   bool
	want   int
}

// RunSmoke exercises the public API and, with credentials, the admin API.
func RunSmoke(ctx context.Context, opts SmokeOptions) []SmokeResult {
	client := opts.Client
	if client == nil {
		client = &http.Client{Timeout: 10 * time.Second}
	}
	base := strings.TrimRight(opts.BaseURL, "/")

	checks := []check{
		{name: "health", method: http.MethodGet, path: "/health", want: http.StatusOK},
		{name: "notes", method: http.MethodGet, path: "/api/notes", want: http.StatusOK},
		{name: "categories", method: http.MethodGet, path: "/api/categories", want: http.StatusOK},
		{name: "carousels", method: http.MethodGet, path: "/api/carousels", want: http.StatusOK},
		{name: "search", method: http.MethodGet, path: "/api/search?q=smoke", want: http.StatusOK},
	}

	var results []SmokeResult
	for _, p := range checks {
		results = append(results, runCheck(ctx, client, base, "", p, nil))
	}

	if opts.Username == "" {
		return results
	}

	var login struct {
		Token string `json:"token"`
	}
	results = append(results, runCheck(ctx, client, base, "", check{
		name: "login", method: http.MethodPost, path: "/api/login",
		body: map[string]string{"username": opts.Username, "password": opts.Password},
		want: http.StatusOK,
	}, &login))
	if login.Token == "" {
		return results
	}

	authed := []check{
		{name: "me", method: http.MethodGet, path: "/api/admin/me", auth: true, want: http.StatusOK},
		{name: "admin notes", method: http.MethodGet, path: "/api/admin/notes", auth: true, want: http.StatusOK},
		{name: "render preview", method: http.MethodPost, path: "/api/admin/render/preview", auth: true,
			body: map[string]string{"content": "# smoke"}, want: http.StatusOK},
	}
	for _, p := range authed {
		results = append(results, runCheck(ctx, client, base, login.Token, p, nil))
	}
	return results
}

func runCheck(ctx context.Context, client *http.Client, base, token string, p check, out any) SmokeResult {
	res := SmokeResult{Name: p.name, Method: p.method, Path: p.path}
	start := time.Now()
	defer func() { res.Duration = time.Since(start) }()

	var body io.Reader
	if p.body != nil {
		b, err := json.Marshal(p.body)
		if err != nil {
			res.Err = err
			return res
		}
		body = bytes.NewReader(b)
	}

	req, err := http.NewRequestWithContext(ctx, p.method, base+p.path, body)
	if err != nil {
		res.Err = err
		return res
	}
	if p.body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if p.auth {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := client.Do(req)
	if err != nil {
		res.Err = err
		return res
	}
	defer resp.Body.Close()
	res.Status = resp.StatusCode

	if resp.StatusCode != p.want {
		res.Err = fmt.Errorf("expected status %d, got %d", p.want, resp.StatusCode)
		return res
	}
	if out != nil {
		if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
			res.Err = fmt.Errorf("decode response: %w", err)
		}
	}
	return res
}
