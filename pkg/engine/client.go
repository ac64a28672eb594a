package engine

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"
)

// Cache lifetimes for the read endpoints. Writes invalidate eagerly, so
// these only bound staleness across unrelated sessions.
const (
	rosterCacheTTL       = 5 * time.Minute
	contributorsCacheTTL = time.Minute
	trackingCacheTTL     = time.Minute
)

const (
	rosterCacheKey           = "users/yours"
	contributorsCachePrefix  = "contributors/item/"
	eventTrackingCachePrefix = "giftTracking/event/"
)

// envelope is the wire shape shared by every endpoint.
type envelope struct {
	Success bool            `json:"success"`
	Data    json.RawMessage `json:"data,omitempty"`
	Error   string          `json:"error,omitempty"`
}

// LoadError wraps a failed roster, contributor or tracking fetch.
type LoadError struct {
	Endpoint string
	Err      error
}

func (e *LoadError) Error() string {
	return fmt.Sprintf("load %v -> %v", e.Endpoint, e.Err)
}

func (e *LoadError) Unwrap() error { return e.Err }

// SubmitError wraps a failed batch submission. The submission is
// all-or-nothing from the caller's perspective: on any SubmitError the
// local draft, including its changed flags, is left untouched.
type SubmitError struct {
	Endpoint string
	Err      error
}

func (e *SubmitError) Error() string {
	return fmt.Sprintf("submit %v -> %v", e.Endpoint, e.Err)
}

func (e *SubmitError) Unwrap() error { return e.Err }

// Client consumes the giftsync REST endpoints. Read endpoints go through
// the shared Cache; batch submissions never touch the cache themselves,
// leaving invalidation to the caller.
type Client struct {
	baseURL string
	http    *http.Client
	cache   *Cache
	token   string
}

// NewClient returns a Client rooted at baseURL. cache may be nil to
// disable response caching.
func NewClient(baseURL string, cache *Cache) *Client {
	return &Client{
		baseURL: baseURL,
		http:    &http.Client{},
		cache:   cache,
	}
}

// SetToken sets the bearer token attached to every request.
func (c *Client) SetToken(token string) {
	c.token = token
}

// SetHTTPClient overrides the underlying transport, e.g. to add timeouts.
func (c *Client) SetHTTPClient(h *http.Client) {
	c.http = h
}

// Roster fetches the caller's known-users list.
func (c *Client) Roster(ctx context.Context) ([]RosterUser, error) {
	var roster []RosterUser
	if err := c.getJSON(ctx, "/users/yours", rosterCacheKey, rosterCacheTTL, &roster); err != nil {
		return nil, err
	}

	return roster, nil
}

// Contributors fetches the allocation context and sparse contribution
// records for one item.
func (c *Client) Contributors(ctx context.Context, itemID uint) (ContributorBaseline, error) {
	path := fmt.Sprintf("/contributors/item/%d", itemID)
	key := fmt.Sprintf("%v%d", contributorsCachePrefix, itemID)

	var baseline ContributorBaseline
	if err := c.getJSON(ctx, path, key, contributorsCacheTTL, &baseline); err != nil {
		return ContributorBaseline{}, err
	}

	return baseline, nil
}

// EventTracking fetches the recipient states and gift rows for one event.
func (c *Client) EventTracking(ctx context.Context, eventID uint) ([]RecipientBaseline, error) {
	path := fmt.Sprintf("/giftTracking/event/%d", eventID)
	key := fmt.Sprintf("%v%d", eventTrackingCachePrefix, eventID)

	var recipients []RecipientBaseline
	if err := c.getJSON(ctx, path, key, trackingCacheTTL, &recipients); err != nil {
		return nil, err
	}

	return recipients, nil
}

// BulkUpdateGetting submits getting allocations in a single batch call.
func (c *Client) BulkUpdateGetting(ctx context.Context, updates []GettingUpdate) error {
	return c.postJSON(ctx, "/giftTracking/bulkUpdateGetting", updates)
}

// BulkUpdateGoInOn submits joint-funding participation in a single batch call.
func (c *Client) BulkUpdateGoInOn(ctx context.Context, updates []GoInOnUpdate) error {
	return c.postJSON(ctx, "/giftTracking/bulkUpdateGoInOn", updates)
}

// BulkSave submits an event tracking change-set in a single batch call.
func (c *Client) BulkSave(ctx context.Context, changes ChangeSet) error {
	return c.postJSON(ctx, "/giftTracking/bulkSave", changes)
}

func (c *Client) getJSON(ctx context.Context, path, cacheKey string, ttl time.Duration, out any) error {
	if c.cache != nil {
		if cached, ok := c.cache.Get(cacheKey); ok {
			if raw, ok := cached.(json.RawMessage); ok {
				if err := json.Unmarshal(raw, out); err == nil {
					return nil
				}
			}
		}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path, nil)
	if err != nil {
		return &LoadError{Endpoint: path, Err: err}
	}

	data, err := c.do(req)
	if err != nil {
		return &LoadError{Endpoint: path, Err: err}
	}

	if err = json.Unmarshal(data, out); err != nil {
		return &LoadError{Endpoint: path, Err: err}
	}

	if c.cache != nil {
		c.cache.Set(cacheKey, data, ttl)
	}

	return nil
}

func (c *Client) postJSON(ctx context.Context, path string, payload any) error {
	body, err := json.Marshal(payload)
	if err != nil {
		return &SubmitError{Endpoint: path, Err: err}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, bytes.NewReader(body))
	if err != nil {
		return &SubmitError{Endpoint: path, Err: err}
	}
	req.Header.Set("Content-Type", "application/json")

	if _, err = c.do(req); err != nil {
		return &SubmitError{Endpoint: path, Err: err}
	}

	return nil
}

func (c *Client) do(req *http.Request) (json.RawMessage, error) {
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	var env envelope
	if err = json.NewDecoder(resp.Body).Decode(&env); err != nil {
		return nil, fmt.Errorf("decoding response (status %v) -> %w", resp.StatusCode, err)
	}

	if !env.Success {
		if env.Error == "" {
			return nil, fmt.Errorf("request failed with status %v", resp.StatusCode)
		}

		return nil, fmt.Errorf("request failed -> %v", env.Error)
	}

	return env.Data, nil
}
