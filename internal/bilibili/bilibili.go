// Package bilibili probes the public live API for room status.
package bilibili

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"github.com/ebisawa/chatrelic/internal/presence"
)

// DefaultBaseURL is the public live API endpoint.
const DefaultBaseURL = "https://api.live.bilibili.com"

// Client queries live room status. Implements presence.Probe.
type Client struct {
	baseURL string
	http    *http.Client
}

// Option configures a Client.
type Option func(*Client)

// WithBaseURL overrides the API endpoint.
func WithBaseURL(u string) Option {
	return func(c *Client) { c.baseURL = u }
}

// WithHTTPClient overrides the HTTP client.
func WithHTTPClient(h *http.Client) Option {
	return func(c *Client) { c.http = h }
}

// New creates a Client against the public endpoint with a 10 second
// request timeout.
func New(opts ...Option) *Client {
	c := &Client{
		baseURL: DefaultBaseURL,
		http:    &http.Client{Timeout: 10 * time.Second},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// roomInfo mirrors the get_info response envelope. A non-zero code means
// the room does not exist; data is null in that case and decodes to zero
// values.
type roomInfo struct {
	Code int `json:"code"`
	Data struct {
		LiveStatus  int    `json:"live_status"`
		Online      int64  `json:"online"`
		Attention   int64  `json:"attention"`
		Keyframe    string `json:"keyframe"`
		UserCover   string `json:"user_cover"`
		AreaName    string `json:"area_name"`
		Description string `json:"description"`
		Title       string `json:"title"`
	} `json:"data"`
}

// Status fetches one room's state.
//
// Transport failures, non-2xx responses and undecodable bodies are
// errors. Once the body decodes, the result only degrades: any
// live_status other than 1 reads as not streaming.
func (c *Client) Status(ctx context.Context, roomID string) (presence.RoomStatus, error) {
	u, err := url.Parse(c.baseURL + "/room/v1/Room/get_info")
	if err != nil {
		return presence.RoomStatus{}, fmt.Errorf("live room endpoint: %w", err)
	}
	q := u.Query()
	q.Set("room_id", roomID)
	u.RawQuery = q.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u.String(), nil)
	if err != nil {
		return presence.RoomStatus{}, fmt.Errorf("build live room request: %w", err)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return presence.RoomStatus{}, fmt.Errorf("query live room %s: %w", roomID, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return presence.RoomStatus{}, fmt.Errorf("query live room %s: unexpected status %s", roomID, resp.Status)
	}

	var info roomInfo
	if err := json.NewDecoder(resp.Body).Decode(&info); err != nil {
		return presence.RoomStatus{}, fmt.Errorf("decode live room %s: %w", roomID, err)
	}

	return presence.RoomStatus{
		Exists:      info.Code == 0,
		Live:        info.Data.LiveStatus == 1,
		Title:       info.Data.Title,
		AreaName:    info.Data.AreaName,
		Description: info.Data.Description,
		Keyframe:    info.Data.Keyframe,
		UserCover:   info.Data.UserCover,
		Online:      info.Data.Online,
		Attention:   info.Data.Attention,
	}, nil
}
