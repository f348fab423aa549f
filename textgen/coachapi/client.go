// Package coachapi implements the textgen provider for the hosted coaching
// model API. Service failures surface as coded engine errors so the Manager
// can roll back the in-flight turn and the caller can retry safely.
package coachapi

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"

	"go.opentelemetry.io/otel/attribute"

	"github.com/goksnair/careerframe/core"
	"github.com/goksnair/careerframe/internal/httpclient"
	"github.com/goksnair/careerframe/obs"
	"github.com/goksnair/careerframe/textgen"
)

func init() {
	textgen.Register("coachapi", func(cfg textgen.Config) (textgen.Provider, error) {
		opts := []Option{}
		if cfg.BaseURL != "" {
			opts = append(opts, WithBaseURL(cfg.BaseURL))
		}
		if cfg.APIKey != "" {
			opts = append(opts, WithAPIKey(cfg.APIKey))
		}
		if cfg.Timeout > 0 {
			opts = append(opts, WithTimeout(cfg.Timeout))
		}
		if cfg.HTTPClient != nil {
			opts = append(opts, WithHTTPClient(cfg.HTTPClient))
		}
		return New(opts...), nil
	})
}

// Client talks to the coaching model's turn endpoint.
type Client struct {
	httpClient *http.Client
	opts       options
}

// New constructs a coachapi client.
func New(opts ...Option) *Client {
	o := defaultOptions()
	for _, opt := range opts {
		opt(&o)
	}
	if o.httpClient == nil {
		o.httpClient = httpclient.New(httpclient.WithTimeout(o.timeout))
	}
	return &Client{httpClient: o.httpClient, opts: o}
}

func (c *Client) Name() string { return "coachapi" }

type turnRequest struct {
	SessionID string `json:"session_id"`
	UserText  string `json:"user_text"`
	Phase     string `json:"phase"`
}

type turnResponse struct {
	Reply              string         `json:"reply"`
	Insights           *core.Insights `json:"insights,omitempty"`
	SuggestedFollowUps []string       `json:"suggested_follow_ups,omitempty"`
	NextPhaseHint      string         `json:"next_phase_hint,omitempty"`
}

// Generate submits one user turn and returns the coaching reply.
func (c *Client) Generate(ctx context.Context, req textgen.Request) (_ *textgen.Reply, err error) {
	ctx, recorder := obs.StartOperation(ctx, "textgen.coachapi.Generate",
		attribute.String("textgen.provider", "coachapi"),
		attribute.String("session.phase", string(req.Phase)),
	)
	defer func() { recorder.End(err) }()

	payload, err := json.Marshal(turnRequest{
		SessionID: req.SessionID,
		UserText:  req.UserText,
		Phase:     string(req.Phase),
	})
	if err != nil {
		return nil, fmt.Errorf("encode turn request: %w", err)
	}

	url := strings.TrimRight(c.opts.baseURL, "/") + "/turns"
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(payload))
	if err != nil {
		return nil, fmt.Errorf("build turn request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	if c.opts.apiKey != "" {
		httpReq.Header.Set("Authorization", "Bearer "+c.opts.apiKey)
	}
	for k, v := range c.opts.headers {
		httpReq.Header.Set(k, v)
	}

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) {
			return nil, core.Wrap(err, core.ErrServiceTimeout, "coachapi: turn request timed out")
		}
		return nil, core.Wrap(err, core.ErrServiceUnavailable, "coachapi: turn request failed")
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 2048))
		return nil, core.E(core.ErrServiceUnavailable,
			"coachapi: unexpected status %d: %s", resp.StatusCode, strings.TrimSpace(string(body)))
	}

	var tr turnResponse
	if err := json.NewDecoder(resp.Body).Decode(&tr); err != nil {
		return nil, core.Wrap(err, core.ErrServiceUnavailable, "coachapi: decode turn response")
	}
	if tr.Reply == "" {
		return nil, core.E(core.ErrServiceUnavailable, "coachapi: empty reply")
	}

	if tr.NextPhaseHint != "" {
		recorder.AddAttributes(attribute.String("textgen.next_phase_hint", tr.NextPhaseHint))
	}

	return &textgen.Reply{
		Text:               tr.Reply,
		Insights:           tr.Insights,
		SuggestedFollowUps: tr.SuggestedFollowUps,
		NextPhaseHint:      core.Phase(tr.NextPhaseHint),
	}, nil
}
