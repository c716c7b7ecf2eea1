// Package transport is the HTTP collaborator: it fetches signed records,
// namespace metadata and proofs from an auditor endpoint. It interprets
// nothing cryptographic; every non-2xx response surfaces as ErrTransport.
package transport

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"go.uber.org/zap"

	"plexi/internal/domain"
)

const userAgent = "plexi-go/0.1"

type Client struct {
	baseURL    string
	httpClient *http.Client
	log        *zap.Logger
}

func New(baseURL string, log *zap.Logger) (*Client, error) {
	if baseURL == "" {
		return nil, fmt.Errorf("%w: remote url is required", domain.ErrTransport)
	}
	if _, err := url.Parse(baseURL); err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrTransport, err)
	}
	if log == nil {
		log = zap.NewNop()
	}
	return &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{Timeout: 60 * time.Second},
		log:        log,
	}, nil
}

// AuditorConfig fetches the auditor's verifying keys and monitored logs.
func (c *Client) AuditorConfig(ctx context.Context) (domain.AuditorConfiguration, error) {
	var cfg domain.AuditorConfiguration
	if err := c.getJSON(ctx, "/info", &cfg); err != nil {
		return domain.AuditorConfiguration{}, err
	}
	return cfg, nil
}

// Namespaces lists every namespace the auditor monitors.
func (c *Client) Namespaces(ctx context.Context) (domain.Namespaces, error) {
	var out domain.Namespaces
	if err := c.getJSON(ctx, "/namespaces", &out); err != nil {
		return domain.Namespaces{}, err
	}
	return out, nil
}

// Namespace fetches one namespace's metadata.
func (c *Client) Namespace(ctx context.Context, name string) (domain.NamespaceInfo, error) {
	var out domain.NamespaceInfo
	if err := c.getJSON(ctx, "/namespaces/"+url.PathEscape(name), &out); err != nil {
		return domain.NamespaceInfo{}, err
	}
	return out, nil
}

// SignedRecord fetches the signed epoch record for (namespace, epoch) as
// raw bytes. Decoding is the core's job, not the transport's.
func (c *Client) SignedRecord(ctx context.Context, namespace string, epoch domain.Epoch) ([]byte, error) {
	path := fmt.Sprintf("/namespaces/%s/audits/%s", url.PathEscape(namespace), epoch)
	return c.getBytes(ctx, c.baseURL+path)
}

// LastVerifiedEpoch asks the auditor for the most recent epoch it has
// verified for a namespace.
func (c *Client) LastVerifiedEpoch(ctx context.Context, namespace string) (domain.Epoch, error) {
	var out domain.LastVerifiedEpoch
	path := fmt.Sprintf("/namespaces/%s/last-verified-epoch", url.PathEscape(namespace))
	if err := c.getJSON(ctx, path, &out); err != nil {
		return 0, err
	}
	return out.Epoch, nil
}

// Proof fetches a consistency-proof blob from a namespace's log
// directory. The auditor endpoint does not serve proofs itself; the
// blob name addresses them under the directory URL.
func (c *Client) Proof(ctx context.Context, directoryURL, blobName string) ([]byte, error) {
	if directoryURL == "" {
		return nil, fmt.Errorf("%w: namespace has no log directory", domain.ErrTransport)
	}
	base, err := url.Parse(directoryURL)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrTransport, err)
	}
	full := strings.TrimRight(base.String(), "/") + "/" + blobName
	return c.getBytes(ctx, full)
}

// SubmitReport posts an emergency report to the auditor and returns the
// acknowledgement.
func (c *Client) SubmitReport(ctx context.Context, namespace string, report domain.Report) (domain.ReportResponse, error) {
	payload, err := report.Encode()
	if err != nil {
		return domain.ReportResponse{}, fmt.Errorf("%w: %v", domain.ErrMalformedRecord, err)
	}
	path := fmt.Sprintf("%s/namespaces/%s/reports", c.baseURL, url.PathEscape(namespace))
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, path, strings.NewReader(string(payload)))
	if err != nil {
		return domain.ReportResponse{}, fmt.Errorf("%w: %v", domain.ErrTransport, err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("User-Agent", userAgent)

	body, err := c.do(req)
	if err != nil {
		return domain.ReportResponse{}, err
	}
	var out domain.ReportResponse
	if err := json.Unmarshal(body, &out); err != nil {
		return domain.ReportResponse{}, fmt.Errorf("%w: decoding report response: %v", domain.ErrTransport, err)
	}
	return out, nil
}

func (c *Client) getJSON(ctx context.Context, path string, out any) error {
	body, err := c.getBytes(ctx, c.baseURL+path)
	if err != nil {
		return err
	}
	if err := json.Unmarshal(body, out); err != nil {
		return fmt.Errorf("%w: decoding %s: %v", domain.ErrTransport, path, err)
	}
	return nil
}

func (c *Client) getBytes(ctx context.Context, fullURL string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, fullURL, nil)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrTransport, err)
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", userAgent)
	return c.do(req)
}

func (c *Client) do(req *http.Request) ([]byte, error) {
	resp, err := c.httpClient.Do(req)
	if err != nil {
		// a cancelled context propagates as-is so callers can tell
		// timeouts apart from server failures.
		if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
			return nil, err
		}
		return nil, fmt.Errorf("%w: %v", domain.ErrTransport, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("%w: reading body: %v", domain.ErrTransport, err)
	}
	if resp.StatusCode == http.StatusNotFound {
		return nil, fmt.Errorf("%w: %s", domain.ErrNotFound, req.URL.Path)
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		c.log.Debug("auditor request failed",
			zap.String("url", req.URL.String()),
			zap.Int("status", resp.StatusCode))
		return nil, fmt.Errorf("%w: status %d for %s", domain.ErrTransport, resp.StatusCode, req.URL.Path)
	}
	return body, nil
}
