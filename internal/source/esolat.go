package source

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/tidwall/gjson"
)

// DefaultBaseURL is the JAKIM e-solat timetable endpoint.
const DefaultBaseURL = "https://www.e-solat.gov.my/index.php?r=esolatApi/takwimsolat"

// maxResponseBytes bounds an API response body.
const maxResponseBytes = 4 << 20

var (
	// ErrAPIStatus is returned when the API reports an error in its status list
	// or answers with a non-200 HTTP status.
	ErrAPIStatus = errors.New("e-solat API error")

	// ErrBadResponse is returned when the body is not the expected JSON document.
	ErrBadResponse = errors.New("malformed e-solat response")
)

// Columns are the record fields kept from each prayerTime entry, in CSV order.
var Columns = []string{"date", "hijri", "day", "imsak", "fajr", "syuruk", "dhuhr", "asr", "maghrib", "isha"}

// Record is one day of the API timetable keyed by Columns. Missing keys read as "".
type Record map[string]string

// ClientConfig configures the e-solat client. Zero values take defaults.
type ClientConfig struct {
	BaseURL string        // default DefaultBaseURL
	Timeout time.Duration // per request, default 30s
	Retries int           // attempts, default 3
	Backoff time.Duration // sleep is Backoff*attempt, default 2s
}

// Client fetches timetables from the e-solat API.
type Client struct {
	baseURL    string
	httpClient *http.Client
	retries    int
	backoff    time.Duration
}

// NewClient creates a Client.
func NewClient(cfg ClientConfig) *Client {
	if cfg.BaseURL == "" {
		cfg.BaseURL = DefaultBaseURL
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 30 * time.Second
	}
	if cfg.Retries <= 0 {
		cfg.Retries = 3
	}
	if cfg.Backoff <= 0 {
		cfg.Backoff = 2 * time.Second
	}

	return &Client{
		baseURL:    cfg.BaseURL,
		httpClient: &http.Client{Timeout: cfg.Timeout},
		retries:    cfg.Retries,
		backoff:    cfg.Backoff,
	}
}

// Request selects a zone and period. Start and End apply to PeriodDuration only.
type Request struct {
	Zone   string
	Period Period
	Start  string
	End    string
}

// Fetch retrieves the timetable for req, retrying every failure with a
// linear back-off. An empty prayerTime array is not an error.
func (c *Client) Fetch(ctx context.Context, req Request) ([]Record, error) {
	if err := ValidateRange(req.Period, req.Start, req.End); err != nil {
		return nil, err
	}

	var lastErr error
	for attempt := 1; attempt <= c.retries; attempt++ {
		slog.Info("e-solat request",
			"zone", req.Zone,
			"period", req.Period,
			"start", req.Start,
			"end", req.End,
			"attempt", attempt,
			"retries", c.retries,
		)

		records, err := c.fetchOnce(ctx, req)
		if err == nil {
			return records, nil
		}
		lastErr = err

		slog.Warn("e-solat request failed", "zone", req.Zone, "attempt", attempt, "error", err)
		if attempt == c.retries {
			break
		}

		wait := c.backoff * time.Duration(attempt)
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(wait):
		}
	}

	return nil, fmt.Errorf("fetch %s %s after %d attempts: %w", req.Zone, req.Period, c.retries, lastErr)
}

func (c *Client) fetchOnce(ctx context.Context, req Request) ([]Record, error) {
	httpReq, err := c.buildRequest(ctx, req)
	if err != nil {
		return nil, err
	}

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		return nil, fmt.Errorf("read response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("%w: HTTP %d", ErrAPIStatus, resp.StatusCode)
	}

	return parseResponse(body)
}

func (c *Client) buildRequest(ctx context.Context, req Request) (*http.Request, error) {
	u, err := url.Parse(c.baseURL)
	if err != nil {
		return nil, fmt.Errorf("invalid base URL: %w", err)
	}
	q := u.Query()
	q.Set("period", string(req.Period))
	q.Set("zone", req.Zone)
	u.RawQuery = q.Encode()

	if req.Period != PeriodDuration {
		return http.NewRequestWithContext(ctx, http.MethodGet, u.String(), nil)
	}

	form := url.Values{}
	form.Set("datestart", req.Start)
	form.Set("dateend", req.End)

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, u.String(), strings.NewReader(form.Encode()))
	if err != nil {
		return nil, err
	}
	httpReq.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	return httpReq, nil
}

// parseResponse checks the status list and extracts prayerTime entries.
func parseResponse(body []byte) ([]Record, error) {
	if !gjson.ValidBytes(body) {
		return nil, fmt.Errorf("%w: body is not JSON", ErrBadResponse)
	}

	if status := gjson.GetBytes(body, "status"); status.IsArray() {
		var msgs []string
		failed := false
		for _, s := range status.Array() {
			msg := s.String()
			msgs = append(msgs, msg)
			if strings.HasPrefix(strings.ToLower(msg), "error") {
				failed = true
			}
		}
		joined := strings.Join(msgs, " | ")
		slog.Debug("e-solat status", "status", joined)
		if failed {
			return nil, fmt.Errorf("%w: %s", ErrAPIStatus, joined)
		}
	}

	times := gjson.GetBytes(body, "prayerTime")
	if !times.IsArray() {
		return nil, fmt.Errorf("%w: missing prayerTime array", ErrBadResponse)
	}

	var records []Record
	times.ForEach(func(_, item gjson.Result) bool {
		rec := make(Record, len(Columns))
		for _, col := range Columns {
			rec[col] = item.Get(col).String()
		}
		records = append(records, rec)
		return true
	})
	return records, nil
}
