// Package confd implements callgen.DirectoryClient against the
// directory service ("confd") over HTTP.
package confd

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"golang.org/x/time/rate"

	"github.com/wazo-platform/call-logd/internal/callgen"
	"github.com/wazo-platform/call-logd/internal/metrics"
)

// Client is an HTTP-backed callgen.DirectoryClient. Outbound requests are
// client-side rate limited so a burst of lookups during a trigger storm
// can't overwhelm confd.
type Client struct {
	baseURL    string
	token      string
	httpClient *http.Client
	limiter    *rate.Limiter
}

type Options struct {
	BaseURL string
	Token   string
	Timeout time.Duration
	RateRPS float64
}

func New(opts Options) *Client {
	burst := int(opts.RateRPS)
	if burst < 1 {
		burst = 1
	}
	return &Client{
		baseURL:    opts.BaseURL,
		token:      opts.Token,
		httpClient: &http.Client{Timeout: opts.Timeout},
		limiter:    rate.NewLimiter(rate.Limit(opts.RateRPS), burst),
	}
}

type participantInfoResponse struct {
	UUID          string   `json:"uuid"`
	LineID        int      `json:"line_id"`
	Tags          []string `json:"tags"`
	TenantUUID    string   `json:"tenant_uuid"`
	MainExtension *struct {
		Exten   string `json:"exten"`
		Context string `json:"context"`
	} `json:"main_extension"`
}

func (r *participantInfoResponse) toParticipantInfo() *callgen.ParticipantInfo {
	info := &callgen.ParticipantInfo{
		UUID:       r.UUID,
		LineID:     r.LineID,
		Tags:       r.Tags,
		TenantUUID: r.TenantUUID,
	}
	if r.MainExtension != nil {
		info.MainExtension = &callgen.Extension{
			Exten:   r.MainExtension.Exten,
			Context: r.MainExtension.Context,
		}
	}
	return info
}

func (c *Client) FindParticipantByChannel(ctx context.Context, channelName string) (*callgen.ParticipantInfo, error) {
	var resp participantInfoResponse
	found, err := c.get(ctx, "channel", fmt.Sprintf("/1.1/users/channels/%s", channelName), &resp)
	if err != nil || !found {
		return nil, err
	}
	return resp.toParticipantInfo(), nil
}

func (c *Client) FindParticipantByUUID(ctx context.Context, userUUID string) (*callgen.ParticipantInfo, error) {
	var resp participantInfoResponse
	found, err := c.get(ctx, "uuid", fmt.Sprintf("/1.1/users/%s", userUUID), &resp)
	if err != nil || !found {
		return nil, err
	}
	return resp.toParticipantInfo(), nil
}

type contextResponse struct {
	TenantUUID string `json:"tenant_uuid"`
}

func (c *Client) ListContexts(ctx context.Context, name string) ([]callgen.ConfdContext, error) {
	var resp []contextResponse
	found, err := c.get(ctx, "context", fmt.Sprintf("/1.1/contexts?name=%s", name), &resp)
	if err != nil || !found {
		return nil, err
	}
	contexts := make([]callgen.ConfdContext, 0, len(resp))
	for _, r := range resp {
		contexts = append(contexts, callgen.ConfdContext{TenantUUID: r.TenantUUID})
	}
	return contexts, nil
}

// get performs a rate-limited, authenticated GET and decodes a JSON body
// into out. A 404 is reported as (false, nil) — "not found", not an
// error — matching the DirectoryClient contract. Every call records an
// outcome (found/not_found/error) against kind in DirectoryLookupsTotal.
func (c *Client) get(ctx context.Context, kind, path string, out any) (bool, error) {
	found, err := c.doGet(ctx, path, out)
	outcome := "found"
	switch {
	case err != nil:
		outcome = "error"
	case !found:
		outcome = "not_found"
	}
	metrics.DirectoryLookupsTotal.WithLabelValues(kind, outcome).Inc()
	return found, err
}

func (c *Client) doGet(ctx context.Context, path string, out any) (bool, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return false, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path, nil)
	if err != nil {
		return false, err
	}
	if c.token != "" {
		req.Header.Set("X-Auth-Token", c.token)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return false, err
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		return false, nil
	}
	if resp.StatusCode >= 300 {
		return false, fmt.Errorf("confd: unexpected status %d for %s", resp.StatusCode, path)
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return false, err
	}
	return true, nil
}
