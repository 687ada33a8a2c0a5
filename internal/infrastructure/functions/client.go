package functions

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"

	jsoniter "github.com/json-iterator/go"

	"imhungri/internal/config"
	"imhungri/internal/domain"
	"imhungri/pkg/errcodes"
	"imhungri/pkg/httpx"
	"imhungri/pkg/logx"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary //nolint:gochecknoglobals

type authenticator interface {
	Authenticate(context.Context) error
	BearerToken() string
}

// serviceAuthenticator prefers the session's user token and falls back to the
// backend service token for calls made outside a signed-in session, such as
// moderation escalation during shutdown.
type serviceAuthenticator struct {
	session authenticator
	token   string
}

func (a serviceAuthenticator) BearerToken() string {
	if token := a.session.BearerToken(); token != "" {
		return token
	}

	return a.token
}

func (a serviceAuthenticator) Authenticate(ctx context.Context) error {
	if err := a.session.Authenticate(ctx); err != nil && a.token == "" {
		return err
	}

	return nil
}

// Client calls the serverless functions backing image processing and
// moderation escalation.
type Client struct {
	httpClient    *http.Client
	baseURL       string
	publicBaseURL string
}

func NewClient(cfg config.Backend, auth authenticator) *Client {
	if cfg.ServiceToken != "" {
		auth = serviceAuthenticator{session: auth, token: cfg.ServiceToken}
	}

	transport := httpx.NewAuthBearerRoundTripper(
		httpx.NewLoggingRoundTripper(
			http.DefaultTransport,
			httpx.WithLogFieldMaxLen(2048),
			httpx.WithSensitiveDataMasker(logx.NewSensitiveDataMasker()),
		),
		auth,
	)

	return &Client{
		httpClient: &http.Client{
			Transport: transport,
			Timeout:   cfg.RequestTimeout,
		},
		baseURL:       strings.TrimRight(cfg.FunctionsBaseURL, "/"),
		publicBaseURL: strings.TrimRight(cfg.StoragePublicBaseURL, "/"),
	}
}

// PublicURL resolves a storage object path to its public CDN URL.
func (c *Client) PublicURL(path string) string {
	return c.publicBaseURL + "/" + strings.TrimLeft(path, "/")
}

type resizeRequest struct {
	ImageURL string `json:"imageUrl"`
	Width    int    `json:"width"`
}

type resizeResponse struct {
	ResizedPath string `json:"resizedPath"`
}

// ResizeImage asks the image function for a width-bound rendition and
// returns its public URL.
func (c *Client) ResizeImage(ctx context.Context, imageURL string, width int) (string, error) {
	var resp resizeResponse
	if err := c.post(ctx, "/resize-image", resizeRequest{ImageURL: imageURL, Width: width}, &resp); err != nil {
		return "", fmt.Errorf("resize image: %w", err)
	}

	return c.PublicURL(resp.ResizedPath), nil
}

type escalateRequest struct {
	DealID string `json:"dealId"`
	Reason string `json:"reason"`
}

// EscalateReport forwards a report to the moderation function, which notifies
// the on-call moderator.
func (c *Client) EscalateReport(ctx context.Context, dealID, reason string) error {
	if err := c.post(ctx, "/escalate-report", escalateRequest{DealID: dealID, Reason: reason}, nil); err != nil {
		return fmt.Errorf("escalate report: %w", err)
	}

	return nil
}

func (c *Client) post(ctx context.Context, path string, body, out any) error {
	endpoint, err := url.JoinPath(c.baseURL, path)
	if err != nil {
		return fmt.Errorf("url.JoinPath: %w", err)
	}

	payload, err := json.Marshal(body)
	if err != nil {
		return fmt.Errorf("json.Marshal: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(payload))
	if err != nil {
		return fmt.Errorf("http.NewRequestWithContext: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) {
			return domain.WrapError(err, errcodes.TimeoutExceeded, "functions call timed out")
		}

		return domain.WrapError(err, errcodes.NetworkUnavailable, "functions call failed")
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return domain.NewError(
			errcodes.InternalServerError,
			fmt.Sprintf("functions returned %d for %s", resp.StatusCode, path),
		)
	}

	if out == nil {
		_, _ = io.Copy(io.Discard, resp.Body)
		return nil
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}

	return nil
}
