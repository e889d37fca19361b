package forum

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/startcommunity/startbot/src/webclient"
	"golang.org/x/time/rate"
)

const (
	DefaultBaseURL = "https://forums.oculusvr.com"
	DefaultTimeout = 15 * time.Second
	userAgent      = "startbot/1.0 (+https://forums.oculusvr.com/start)"
)

// ErrFetchFailed marks every failure to retrieve a profile page.
var ErrFetchFailed = errors.New("forum: profile fetch failed")

// FetchError describes a failed profile request.
type FetchError struct {
	Username   string
	StatusCode int
	Err        error
}

func (e *FetchError) Error() string {
	if e.StatusCode != 0 {
		return fmt.Sprintf("forum: fetch %q: unexpected status %d", e.Username, e.StatusCode)
	}
	return fmt.Sprintf("forum: fetch %q: %v", e.Username, e.Err)
}

func (e *FetchError) Unwrap() error { return e.Err }

func (e *FetchError) Is(target error) bool { return target == ErrFetchFailed }

// Timeout reports whether the request ran out of time.
func (e *FetchError) Timeout() bool {
	if errors.Is(e.Err, context.DeadlineExceeded) {
		return true
	}
	var t interface{ Timeout() bool }
	return errors.As(e.Err, &t) && t.Timeout()
}

// IsRetryable reports whether a fetch failure is worth another attempt.
func IsRetryable(err error) bool {
	var fe *FetchError
	if !errors.As(err, &fe) {
		return false
	}
	switch fe.StatusCode {
	case 0:
		return !errors.Is(fe.Err, context.Canceled)
	case http.StatusTooManyRequests,
		http.StatusBadGateway,
		http.StatusServiceUnavailable,
		http.StatusGatewayTimeout,
		http.StatusInternalServerError:
		return true
	default:
		return false
	}
}

// ClientOptions configures a Client. Zero values select defaults.
type ClientOptions struct {
	BaseURL           string
	Timeout           time.Duration
	RequestsPerSecond float64
	Burst             int
	HTTPClient        *http.Client
}

// Client fetches and parses profile pages.
type Client struct {
	baseURL string
	rest    *resty.Client
	limiter *rate.Limiter
}

func NewClient(opts ClientOptions) *Client {
	base := strings.TrimRight(strings.TrimSpace(opts.BaseURL), "/")
	if base == "" {
		base = DefaultBaseURL
	}
	timeout := opts.Timeout
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	hc := opts.HTTPClient
	if hc == nil {
		hc = webclient.NewDefault(timeout)
	}

	limit := rate.Inf
	if opts.RequestsPerSecond > 0 {
		limit = rate.Limit(opts.RequestsPerSecond)
	}
	burst := opts.Burst
	if burst <= 0 {
		burst = 1
	}

	rest := resty.NewWithClient(hc).
		SetTimeout(timeout).
		SetHeader("User-Agent", userAgent).
		SetHeader("Accept", "text/html")

	return &Client{
		baseURL: base,
		rest:    rest,
		limiter: rate.NewLimiter(limit, burst),
	}
}

// ProfileURL is the address of a user's Start profile.
func (c *Client) ProfileURL(username string) string {
	return c.baseURL + "/start/profile/" + url.PathEscape(username)
}

// FetchProfile downloads and parses one profile. It does not retry; a 404 is
// parsed like any other page since the forum renders a not-found splash.
func (c *Client) FetchProfile(ctx context.Context, username string) (*ProfileSnapshot, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return nil, &FetchError{Username: username, Err: err}
	}

	resp, err := c.rest.R().SetContext(ctx).Get(c.ProfileURL(username))
	if err != nil {
		return nil, &FetchError{Username: username, Err: err}
	}

	status := resp.StatusCode()
	if status != http.StatusNotFound && (status < 200 || status > 299) {
		return nil, &FetchError{Username: username, StatusCode: status}
	}

	snap, err := Parse(bytes.NewReader(resp.Body()), username)
	if err != nil {
		return nil, &FetchError{Username: username, Err: err}
	}
	return &snap, nil
}
