package sync

import (
	"context"
	"fmt"
	"time"

	"github.com/go-resty/resty/v2"
)

// Client is the remote side of the sync protocol. Implementations must
// classify failures: *NetworkError for anything worth retrying,
// *ValidationError for rejections that will never succeed.
type Client interface {
	Push(ctx context.Context, req *PushRequest) (*PushResponse, error)
	Pull(ctx context.Context, lastSyncAt *time.Time, role string) (*PullResponse, error)
	Ping(ctx context.Context) error
}

type ClientConfig struct {
	BaseURL string
	Token   string
	Timeout time.Duration
}

type restyClient struct {
	http *resty.Client
}

func NewClient(cfg *ClientConfig) Client {
	c := resty.New().
		SetBaseURL(cfg.BaseURL).
		SetTimeout(cfg.Timeout).
		SetHeader("Content-Type", "application/json")
	if cfg.Token != "" {
		c.SetAuthToken(cfg.Token)
	}
	return &restyClient{http: c}
}

func (c *restyClient) Push(ctx context.Context, req *PushRequest) (*PushResponse, error) {
	var out PushResponse
	resp, err := c.http.R().
		SetContext(ctx).
		SetBody(req).
		SetResult(&out).
		Post("/sync/push")
	if err != nil {
		return nil, &NetworkError{Err: err}
	}
	if err := classifyStatus(resp); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *restyClient) Pull(ctx context.Context, lastSyncAt *time.Time, role string) (*PullResponse, error) {
	var out PullResponse
	r := c.http.R().
		SetContext(ctx).
		SetResult(&out).
		SetQueryParam("role", role)
	if lastSyncAt != nil {
		r.SetQueryParam("lastSyncAt", lastSyncAt.UTC().Format(time.RFC3339Nano))
	}

	resp, err := r.Get("/sync/pull")
	if err != nil {
		return nil, &NetworkError{Err: err}
	}
	if err := classifyStatus(resp); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *restyClient) Ping(ctx context.Context) error {
	resp, err := c.http.R().SetContext(ctx).Get("/health")
	if err != nil {
		return &NetworkError{Err: err}
	}
	if resp.IsError() {
		return &NetworkError{Err: fmt.Errorf("health check returned %d", resp.StatusCode())}
	}
	return nil
}

func classifyStatus(resp *resty.Response) error {
	code := resp.StatusCode()
	switch {
	case code >= 200 && code < 300:
		return nil
	case code >= 500:
		return &NetworkError{Err: fmt.Errorf("server returned %d", code)}
	default:
		return &ValidationError{StatusCode: code, Message: string(resp.Body())}
	}
}
