// Package zoom creates scheduled meetings through the Zoom REST API using a
// server-to-server OAuth app.
package zoom

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
	"time"

	"github.com/hireloop/portal-api/internal/core/meeting"
	"golang.org/x/oauth2"
	"golang.org/x/oauth2/clientcredentials"
)

const scheduledMeeting = 2

// Config is the subset of the zoom config section the client needs.
type Config struct {
	AccountID    string
	ClientID     string
	ClientSecret string
	BaseURL      string
	TokenURL     string
	UserID       string
	Timeout      time.Duration
}

// Client implements meeting.Scheduler.
type Client struct {
	http    *http.Client
	baseURL string
	userID  string
}

// NewClient builds a Client whose requests carry an account-credentials
// access token, refreshed on expiry.
func NewClient(cfg Config) *Client {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 15 * time.Second
	}

	cc := clientcredentials.Config{
		ClientID:     cfg.ClientID,
		ClientSecret: cfg.ClientSecret,
		TokenURL:     cfg.TokenURL,
		EndpointParams: url.Values{
			"grant_type": {"account_credentials"},
			"account_id": {cfg.AccountID},
		},
		AuthStyle: oauth2.AuthStyleInHeader,
	}

	ctx := context.WithValue(context.Background(), oauth2.HTTPClient, &http.Client{Timeout: timeout})
	httpClient := cc.Client(ctx)
	httpClient.Timeout = timeout

	userID := cfg.UserID
	if userID == "" {
		userID = "me"
	}
	return &Client{
		http:    httpClient,
		baseURL: strings.TrimRight(cfg.BaseURL, "/"),
		userID:  userID,
	}
}

type createMeetingRequest struct {
	Topic     string `json:"topic"`
	Type      int    `json:"type"`
	StartTime string `json:"start_time"`
	Duration  int    `json:"duration"`
	Timezone  string `json:"timezone"`
	Agenda    string `json:"agenda,omitempty"`
}

type createMeetingResponse struct {
	ID        int64  `json:"id"`
	JoinURL   string `json:"join_url"`
	StartURL  string `json:"start_url"`
	StartTime string `json:"start_time"`
}

// CreateMeeting schedules a meeting and returns its join details.
func (c *Client) CreateMeeting(ctx context.Context, req meeting.ScheduleRequest) (*meeting.Scheduled, error) {
	body, err := json.Marshal(createMeetingRequest{
		Topic:     req.Topic,
		Type:      scheduledMeeting,
		StartTime: req.Start.UTC().Format("2006-01-02T15:04:05Z"),
		Duration:  int(req.Duration / time.Minute),
		Timezone:  "UTC",
		Agenda:    req.Agenda,
	})
	if err != nil {
		return nil, fmt.Errorf("zoom: encode request: %w", err)
	}

	endpoint := fmt.Sprintf("%s/users/%s/meetings", c.baseURL, url.PathEscape(c.userID))
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("zoom: build request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")

	resp, err := c.http.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("zoom: create meeting: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusCreated && resp.StatusCode != http.StatusOK {
		snippet, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return nil, fmt.Errorf("zoom: create meeting: status %d: %s", resp.StatusCode, strings.TrimSpace(string(snippet)))
	}

	var out createMeetingResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return nil, fmt.Errorf("zoom: decode response: %w", err)
	}
	if out.JoinURL == "" {
		return nil, fmt.Errorf("zoom: response has no join url")
	}

	start := req.Start.UTC()
	if out.StartTime != "" {
		if parsed, err := time.Parse(time.RFC3339, out.StartTime); err == nil {
			start = parsed.UTC()
		}
	}
	return &meeting.Scheduled{
		ExternalID: strconv.FormatInt(out.ID, 10),
		JoinURL:    out.JoinURL,
		StartURL:   out.StartURL,
		Start:      start,
	}, nil
}
