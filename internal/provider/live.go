package provider

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/Satianurag/green-ai-carbon-scheduler/internal/models"
)

// ukTimeLayout is the timestamp format used by the National Grid API
// (minute precision, trailing Z).
const ukTimeLayout = "2006-01-02T15:04Z"

const maxResponseBytes = 1 << 20 // 1 MB

// Live fetches readings from a National-Grid-style carbon intensity API.
type Live struct {
	endpoint string
	region   string
	client   *http.Client

	now func() time.Time // overridable in tests
}

// NewLive builds a live provider from cfg. Endpoint and Timeout fall back
// to DefaultEndpoint and 8s when unset.
func NewLive(cfg Config) *Live {
	endpoint := cfg.Endpoint
	if endpoint == "" {
		endpoint = DefaultEndpoint
	}
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	return &Live{
		endpoint: endpoint,
		region:   cfg.Region,
		client:   &http.Client{Timeout: timeout},
		now:      time.Now,
	}
}

// Wire shapes of the intensity API. Actual may be null outside the UK
// half-hour settlement cadence; Forecast is always populated on healthy
// responses.
type apiIntensity struct {
	Actual   *float64 `json:"actual"`
	Forecast *float64 `json:"forecast"`
}

type apiPeriod struct {
	From      string       `json:"from"`
	To        string       `json:"to"`
	Intensity apiIntensity `json:"intensity"`
}

type apiResponse struct {
	Data []apiPeriod `json:"data"`
}

// GetIntensity returns the current reading, or the minimum-intensity
// forecast window inside [now, now+horizonHours] when horizonHours > 0.
func (l *Live) GetIntensity(ctx context.Context, horizonHours int) (models.IntensityReading, error) {
	if horizonHours > 0 {
		return l.forecastMin(ctx, horizonHours)
	}
	return l.current(ctx)
}

func (l *Live) current(ctx context.Context) (models.IntensityReading, error) {
	url := l.endpoint + "/intensity"
	resp, err := l.fetch(ctx, url)
	if err != nil {
		return models.IntensityReading{}, err
	}
	if len(resp.Data) == 0 {
		return models.IntensityReading{}, l.wrapErr("parse", url, fmt.Errorf("empty data array"))
	}

	period := resp.Data[0]
	switch {
	case period.Intensity.Actual != nil:
		return models.IntensityReading{
			Value:     *period.Intensity.Actual,
			Source:    models.SourceLive,
			Timestamp: l.now().UTC(),
			Region:    l.region,
		}, nil
	case period.Intensity.Forecast != nil:
		// actual unavailable: fall back to the forecast field of the same
		// response, tagging the reading so callers can tell
		start, err := time.Parse(ukTimeLayout, period.From)
		if err != nil {
			start = l.now().UTC()
		}
		return models.IntensityReading{
			Value:     *period.Intensity.Forecast,
			Source:    models.SourceForecast,
			Timestamp: start.UTC(),
			Region:    l.region,
		}, nil
	default:
		return models.IntensityReading{}, l.wrapErr("parse", url, fmt.Errorf("both actual and forecast missing"))
	}
}

// forecastMin queries the 48h forecast and selects the lowest-intensity
// window starting inside the horizon. Ties go to the earliest window.
func (l *Live) forecastMin(ctx context.Context, horizonHours int) (models.IntensityReading, error) {
	now := l.now().UTC()
	until := now.Add(time.Duration(horizonHours) * time.Hour)
	url := fmt.Sprintf("%s/intensity/%s/fw48h", l.endpoint, now.Format(ukTimeLayout))

	resp, err := l.fetch(ctx, url)
	if err != nil {
		return models.IntensityReading{}, err
	}

	var (
		found     bool
		bestValue float64
		bestStart time.Time
	)
	for _, p := range resp.Data {
		start, perr := time.Parse(ukTimeLayout, p.From)
		if perr != nil {
			return models.IntensityReading{}, l.wrapErr("parse", url, fmt.Errorf("bad window start %q: %w", p.From, perr))
		}
		start = start.UTC()
		if start.Before(now) || start.After(until) {
			continue
		}
		value := p.Intensity.Forecast
		if value == nil {
			value = p.Intensity.Actual
		}
		if value == nil {
			continue
		}
		if !found || *value < bestValue || (*value == bestValue && start.Before(bestStart)) {
			found = true
			bestValue = *value
			bestStart = start
		}
	}
	if !found {
		return models.IntensityReading{}, l.wrapErr("select", url,
			fmt.Errorf("no forecast window within %dh horizon", horizonHours))
	}

	return models.IntensityReading{
		Value:     bestValue,
		Source:    models.SourceForecast,
		Timestamp: bestStart,
		Region:    l.region,
	}, nil
}

func (l *Live) fetch(ctx context.Context, url string) (*apiResponse, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, l.wrapErr("fetch", url, err)
	}
	req.Header.Set("Accept", "application/json")

	res, err := l.client.Do(req)
	if err != nil {
		return nil, l.wrapErr("fetch", url, err)
	}
	defer func() { _ = res.Body.Close() }()

	if res.StatusCode < 200 || res.StatusCode > 299 {
		return nil, l.wrapErr("fetch", url, fmt.Errorf("unexpected status %d", res.StatusCode))
	}

	body, err := io.ReadAll(io.LimitReader(res.Body, maxResponseBytes))
	if err != nil {
		return nil, l.wrapErr("fetch", url, err)
	}

	var parsed apiResponse
	if err := json.Unmarshal(body, &parsed); err != nil {
		return nil, l.wrapErr("parse", url, err)
	}
	return &parsed, nil
}

func (l *Live) wrapErr(op, url string, err error) *ProviderError {
	return &ProviderError{
		Source:    models.SourceLive,
		Op:        op,
		Endpoint:  url,
		Timestamp: l.now().UTC(),
		Err:       err,
	}
}
