package health

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"sort"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/averlow/healthdash/internal/logger"
	"github.com/averlow/healthdash/internal/models"
)

// Client fetches samples from a health-export REST endpoint. One request is
// issued per metric kind; the four requests run concurrently and the whole
// fetch fails fast if any one of them errors.
type Client struct {
	baseURL    string
	httpClient *http.Client
}

// NewClient creates a provider client for the given endpoint base URL.
func NewClient(baseURL string) *Client {
	return &Client{
		baseURL: baseURL,
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
	}
}

var _ Provider = (*Client)(nil)

// RequestAccess checks the endpoint's status route. A 401/403 or an
// unreachable endpoint both surface as AuthError.
func (c *Client) RequestAccess(ctx context.Context) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/api/v1/status", nil)
	if err != nil {
		return &AuthError{Reason: err.Error()}
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return &AuthError{Reason: fmt.Sprintf("endpoint unreachable: %v", err)}
	}
	defer func() { _ = resp.Body.Close() }()

	switch resp.StatusCode {
	case http.StatusOK:
		return nil
	case http.StatusUnauthorized, http.StatusForbidden:
		return &AuthError{Reason: fmt.Sprintf("endpoint returned %d", resp.StatusCode)}
	default:
		return &AuthError{Reason: fmt.Sprintf("unexpected status %d", resp.StatusCode)}
	}
}

// scalarSample is one day's value for a scalar metric kind.
type scalarSample struct {
	Date  string  `json:"date"`
	Value float64 `json:"value"`
}

type scalarResponse struct {
	Samples []scalarSample `json:"samples"`
}

type sleepResponse struct {
	Intervals []SleepInterval `json:"intervals"`
}

// FetchDailySamples queries all four metric kinds for [from, to] and merges
// the results into one sparse DailyMetric per day that has any sample.
func (c *Client) FetchDailySamples(ctx context.Context, from, to time.Time) ([]models.DailyMetric, error) {
	var (
		mu     sync.Mutex
		byDay  = make(map[string]*models.DailyMetric)
		metric = func(dayStr string) (*models.DailyMetric, error) {
			if m, ok := byDay[dayStr]; ok {
				return m, nil
			}
			d, err := models.ParseDay(dayStr)
			if err != nil {
				return nil, fmt.Errorf("provider returned bad date %q: %w", dayStr, err)
			}
			m := &models.DailyMetric{Day: d}
			byDay[dayStr] = m
			return m, nil
		}
	)

	setScalar := func(kind MetricKind, samples []scalarSample) error {
		mu.Lock()
		defer mu.Unlock()
		for _, s := range samples {
			m, err := metric(s.Date)
			if err != nil {
				return err
			}
			switch kind {
			case KindBodyMass:
				v := s.Value
				m.Weight = &v
			case KindStepCount:
				n := int64(s.Value)
				m.Steps = &n
			case KindActiveEnergy:
				v := s.Value
				m.ActiveEnergy = &v
			}
		}
		return nil
	}

	g, gctx := errgroup.WithContext(ctx)

	for _, kind := range []MetricKind{KindBodyMass, KindStepCount, KindActiveEnergy} {
		kind := kind
		g.Go(func() error {
			var resp scalarResponse
			if err := c.getJSON(gctx, kind, from, to, &resp); err != nil {
				return err
			}
			return setScalar(kind, resp.Samples)
		})
	}

	g.Go(func() error {
		var resp sleepResponse
		if err := c.getJSON(gctx, KindSleep, from, to, &resp); err != nil {
			return err
		}

		mu.Lock()
		defer mu.Unlock()
		for d := models.DayKey(from); !d.After(models.DayKey(to)); d = d.AddDate(0, 0, 1) {
			minutes, start, end := AggregateSleepNight(d, resp.Intervals)
			if minutes <= 0 {
				continue
			}
			m, err := metric(models.DayString(d))
			if err != nil {
				return err
			}
			m.SleepMinutes = &minutes
			m.SleepStart = start
			m.SleepEnd = end
		}
		return nil
	})

	if err := g.Wait(); err != nil {
		return nil, err
	}

	metrics := make([]models.DailyMetric, 0, len(byDay))
	for _, m := range byDay {
		metrics = append(metrics, *m)
	}
	sort.Slice(metrics, func(i, j int) bool { return metrics[i].Day.Before(metrics[j].Day) })

	logger.Debug("fetched daily samples", "days", len(metrics),
		"from", models.DayString(from), "to", models.DayString(to))
	return metrics, nil
}

// getJSON fetches one metric kind's samples and decodes the response.
func (c *Client) getJSON(ctx context.Context, kind MetricKind, from, to time.Time, out any) error {
	q := url.Values{}
	q.Set("from", models.DayString(from))
	q.Set("to", models.DayString(to))
	endpoint := fmt.Sprintf("%s/api/v1/samples/%s?%s", c.baseURL, kind, q.Encode())

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return &FetchError{Kind: kind, Err: err}
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return &FetchError{Kind: kind, Err: err}
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		return &FetchError{Kind: kind, Err: fmt.Errorf("unexpected status %d", resp.StatusCode)}
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return &FetchError{Kind: kind, Err: fmt.Errorf("undecodable response: %w", err)}
	}

	return nil
}
