package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/alfredjeanlab/querydsl/internal/model"
)

// HTTPClient implements MembersClient using the querydsl HTTP/JSON API.
type HTTPClient struct {
	baseURL    string
	token      string
	httpClient *http.Client
}

// NewHTTPClient creates a new HTTP client targeting the given base URL
// (e.g. "http://localhost:8080"). When token is non-empty, an Authorization
// header is set on every request.
func NewHTTPClient(baseURL, token string) *HTTPClient {
	return &HTTPClient{
		baseURL:    strings.TrimRight(baseURL, "/"),
		token:      token,
		httpClient: &http.Client{},
	}
}

// Close is a no-op for the HTTP client.
func (c *HTTPClient) Close() error { return nil }

// --- Search ---

// conditionValues encodes cond with the query parameter names the server reads.
func conditionValues(cond model.MemberSearchCondition) url.Values {
	q := url.Values{}
	if cond.Username != "" {
		q.Set("username", cond.Username)
	}
	if cond.TeamName != "" {
		q.Set("teamName", cond.TeamName)
	}
	if cond.AgeGoe != nil {
		q.Set("ageGoe", strconv.Itoa(*cond.AgeGoe))
	}
	if cond.AgeLoe != nil {
		q.Set("ageLoe", strconv.Itoa(*cond.AgeLoe))
	}
	return q
}

func withQuery(path string, q url.Values) string {
	if len(q) == 0 {
		return path
	}
	return path + "?" + q.Encode()
}

func (c *HTTPClient) Search(ctx context.Context, cond model.MemberSearchCondition) ([]*model.MemberTeam, error) {
	var rows []*model.MemberTeam
	if err := c.doJSON(ctx, http.MethodGet, withQuery("/v1/members", conditionValues(cond)), nil, &rows); err != nil {
		return nil, err
	}
	return rows, nil
}

// SearchPage calls /v3/members for the optimized strategy and /v2/members
// otherwise.
func (c *HTTPClient) SearchPage(ctx context.Context, req *SearchPageRequest) (*Page, error) {
	q := conditionValues(req.Condition)
	q.Set("page", strconv.Itoa(req.Page.Index))
	q.Set("size", strconv.Itoa(req.Page.Size))
	for _, o := range req.Page.Sort {
		q.Add("sort", o.String())
	}

	path := "/v2/members"
	if req.Strategy == model.CountOptimized {
		path = "/v3/members"
	}

	var page Page
	if err := c.doJSON(ctx, http.MethodGet, withQuery(path, q), nil, &page); err != nil {
		return nil, err
	}
	return &page, nil
}

// --- Members ---

func (c *HTTPClient) GetMember(ctx context.Context, id int64) (*model.Member, error) {
	var m model.Member
	if err := c.doJSON(ctx, http.MethodGet, "/v1/members/"+strconv.FormatInt(id, 10), nil, &m); err != nil {
		return nil, err
	}
	return &m, nil
}

func (c *HTTPClient) CreateMember(ctx context.Context, req *CreateMemberRequest) (*model.Member, error) {
	var m model.Member
	if err := c.doJSON(ctx, http.MethodPost, "/v1/members", req, &m); err != nil {
		return nil, err
	}
	return &m, nil
}

func (c *HTTPClient) UpdateMember(ctx context.Context, id int64, req *UpdateMemberRequest) (*model.Member, error) {
	var m model.Member
	if err := c.doJSON(ctx, http.MethodPatch, "/v1/members/"+strconv.FormatInt(id, 10), req, &m); err != nil {
		return nil, err
	}
	return &m, nil
}

func (c *HTTPClient) DeleteMember(ctx context.Context, id int64) error {
	return c.doJSON(ctx, http.MethodDelete, "/v1/members/"+strconv.FormatInt(id, 10), nil, nil)
}

func (c *HTTPClient) Bulk(ctx context.Context, req *BulkRequest) (int64, error) {
	var res model.BulkResult
	if err := c.doJSON(ctx, http.MethodPost, "/v1/members/bulk", req, &res); err != nil {
		return 0, err
	}
	return res.Affected, nil
}

// --- Teams ---

func (c *HTTPClient) CreateTeam(ctx context.Context, name string) (*model.Team, error) {
	var team model.Team
	if err := c.doJSON(ctx, http.MethodPost, "/v1/teams", map[string]string{"name": name}, &team); err != nil {
		return nil, err
	}
	return &team, nil
}

func (c *HTTPClient) ListTeams(ctx context.Context) ([]*model.Team, error) {
	var teams []*model.Team
	if err := c.doJSON(ctx, http.MethodGet, "/v1/teams", nil, &teams); err != nil {
		return nil, err
	}
	return teams, nil
}

func (c *HTTPClient) TeamStats(ctx context.Context) ([]*model.TeamStats, error) {
	var stats []*model.TeamStats
	if err := c.doJSON(ctx, http.MethodGet, "/v1/teams/stats", nil, &stats); err != nil {
		return nil, err
	}
	return stats, nil
}

// --- Health ---

func (c *HTTPClient) Health(ctx context.Context) (string, error) {
	var resp struct {
		Status string `json:"status"`
	}
	if err := c.doJSON(ctx, http.MethodGet, "/v1/health", nil, &resp); err != nil {
		return "", err
	}
	return resp.Status, nil
}

// --- internal helpers ---

// APIError represents an error response from the server.
type APIError struct {
	StatusCode int
	Message    string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("HTTP %d: %s", e.StatusCode, e.Message)
}

// doJSON performs an HTTP request with optional JSON body and decodes the JSON response.
// If result is nil, the response body is discarded (for DELETE/204 responses).
func (c *HTTPClient) doJSON(ctx context.Context, method, path string, body any, result any) error {
	var bodyReader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("marshaling request body: %w", err)
		}
		bodyReader = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, bodyReader)
	if err != nil {
		return fmt.Errorf("creating request: %w", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("performing request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNoContent {
		return nil
	}

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("reading response: %w", err)
	}

	if resp.StatusCode >= 400 {
		var errResp struct {
			Error string `json:"error"`
		}
		if json.Unmarshal(respBody, &errResp) == nil && errResp.Error != "" {
			return &APIError{StatusCode: resp.StatusCode, Message: errResp.Error}
		}
		return &APIError{StatusCode: resp.StatusCode, Message: string(respBody)}
	}

	if result != nil {
		if err := json.Unmarshal(respBody, result); err != nil {
			return fmt.Errorf("decoding response: %w", err)
		}
	}

	return nil
}
