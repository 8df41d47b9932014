// Package garmin talks to the unofficial Garmin Connect web API using a
// session-cookie login scraped from the SSO sign-in page. One client holds
// one session; never share a client across concurrent sync runs.
package garmin

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http/cookiejar"
	"regexp"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/go-resty/resty/v2"

	"github.com/Miittkkoo/gaf-insight-engine-sub000/internal/domain"
)

const (
	defaultSSOBaseURL = "https://sso.garmin.com"
	defaultAPIBaseURL = "https://connectapi.garmin.com"

	// FallbackDisplayName is used when a stored credential blob carries no
	// explicit account identifier. Placeholder, not a hardened design.
	FallbackDisplayName = "current"

	defaultTimeout = 30 * time.Second
)

// csrfPattern matches the anti-forgery token embedded in the SSO login page.
var csrfPattern = regexp.MustCompile(`name="_csrf"\s+value="([^"]+)"`)

// metricEndpoints are the per-metric GET paths, templated with the account
// display name and the calendar date.
var metricEndpoints = map[domain.MetricType]string{
	domain.MetricHRV:         "/wellness-service/wellness/dailyHrvData/%s?date=%s",
	domain.MetricSleep:       "/wellness-service/wellness/dailySleepData/%s?date=%s",
	domain.MetricBodyBattery: "/wellness-service/wellness/dailyBodyBattery/%s?date=%s",
	domain.MetricSteps:       "/usersummary-service/usersummary/daily/%s?calendarDate=%s",
	domain.MetricStress:      "/wellness-service/wellness/dailyStress/%s?date=%s",
}

// FetchResult is the typed outcome of one per-date, per-metric fetch.
// IsEmpty covers both HTTP 204 and syntactically valid payloads that fail
// the meaningfulness check; neither is an error.
type FetchResult struct {
	Success bool
	Data    json.RawMessage
	IsEmpty bool
	Err     string
}

// Client fetches per-day Garmin data after a session login.
type Client interface {
	// Authenticate performs the SSO handshake. Credential rejection returns
	// (false, nil); only transport-level failures return an error.
	Authenticate(ctx context.Context, email, password string) (bool, error)
	// FetchData requires a prior successful Authenticate.
	FetchData(ctx context.Context, date time.Time, metric domain.MetricType) FetchResult
}

// Config tunes one client instance.
type Config struct {
	SSOBaseURL  string
	APIBaseURL  string
	DisplayName string
	// MaxAttempts bounds the retry policy for transient transport errors.
	// 1 means a single attempt (no retry), matching the original contract.
	MaxAttempts int
	Timeout     time.Duration
}

type client struct {
	http          *resty.Client
	cfg           Config
	authenticated bool
}

// NewClient creates an unauthenticated Garmin client with its own cookie jar.
func NewClient(cfg Config) Client {
	if cfg.SSOBaseURL == "" {
		cfg.SSOBaseURL = defaultSSOBaseURL
	}
	if cfg.APIBaseURL == "" {
		cfg.APIBaseURL = defaultAPIBaseURL
	}
	if cfg.DisplayName == "" {
		cfg.DisplayName = FallbackDisplayName
	}
	if cfg.MaxAttempts < 1 {
		cfg.MaxAttempts = 1
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = defaultTimeout
	}

	jar, _ := cookiejar.New(nil)
	httpClient := resty.New().
		SetCookieJar(jar).
		SetTimeout(cfg.Timeout).
		SetHeader("User-Agent", "Mozilla/5.0 (compatible; gaf-insight-engine)").
		SetHeader("Accept", "application/json, text/html")

	return &client{http: httpClient, cfg: cfg}
}

func (c *client) Authenticate(ctx context.Context, email, password string) (bool, error) {
	if email == "" || password == "" {
		return false, nil
	}

	signinURL := c.cfg.SSOBaseURL + "/sso/signin"

	// Step 1: fetch the login page for the CSRF token and initial cookies.
	pageResp, err := c.http.R().SetContext(ctx).Get(signinURL)
	if err != nil {
		return false, fmt.Errorf("fetch login page: %w", err)
	}
	if pageResp.IsError() {
		return false, nil
	}

	csrf := ""
	if m := csrfPattern.FindSubmatch(pageResp.Body()); m != nil {
		csrf = string(m[1])
	}

	// Step 2: POST credentials plus the token; session cookies land in the jar.
	resp, err := c.http.R().
		SetContext(ctx).
		SetHeader("Referer", signinURL).
		SetFormData(map[string]string{
			"username": email,
			"password": password,
			"embed":    "false",
			"_csrf":    csrf,
		}).
		Post(signinURL)
	if err != nil {
		return false, fmt.Errorf("submit credentials: %w", err)
	}

	status := resp.StatusCode()
	if status >= 200 && status < 400 {
		c.authenticated = true
		return true, nil
	}

	// Rejected credentials leave the client unauthenticated without error.
	return false, nil
}

func (c *client) FetchData(ctx context.Context, date time.Time, metric domain.MetricType) FetchResult {
	if !c.authenticated {
		return FetchResult{Err: domain.ErrNotAuthenticated.Error()}
	}

	tmpl, ok := metricEndpoints[metric]
	if !ok {
		return FetchResult{Err: fmt.Sprintf("unknown metric type %q", metric)}
	}
	url := c.cfg.APIBaseURL + fmt.Sprintf(tmpl, c.cfg.DisplayName, date.Format("2006-01-02"))

	resp, err := c.get(ctx, url)
	if err != nil {
		return FetchResult{Err: err.Error()}
	}

	switch {
	case resp.StatusCode() == 204:
		return FetchResult{Success: true, IsEmpty: true}
	case resp.IsError():
		return FetchResult{Err: fmt.Sprintf("HTTP %d", resp.StatusCode())}
	}

	body := resp.Body()
	if !Meaningful(body, metric) {
		// Empty placeholder payloads are discarded, never stored.
		return FetchResult{Success: true, IsEmpty: true}
	}

	return FetchResult{Success: true, Data: json.RawMessage(body)}
}

// get retries transient transport errors with bounded exponential backoff.
// HTTP error statuses are returned to the caller without retry; the
// orchestrator owns that policy.
func (c *client) get(ctx context.Context, url string) (*resty.Response, error) {
	var resp *resty.Response

	operation := func() error {
		var err error
		resp, err = c.http.R().SetContext(ctx).Get(url)
		return err
	}

	policy := backoff.WithContext(
		backoff.WithMaxRetries(backoff.NewExponentialBackOff(), uint64(c.cfg.MaxAttempts-1)),
		ctx,
	)
	if err := backoff.Retry(operation, policy); err != nil {
		return nil, err
	}
	return resp, nil
}
