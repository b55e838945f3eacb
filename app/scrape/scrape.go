package scrape

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"time"

	"github.com/PuerkitoBio/goquery"
	"go.uber.org/zap"

	"github.com/alcortesm/physiofit-radar/app/gym"
)

const (
	// Selector locates the element carrying the occupancy.
	Selector = "div#studioChart1"
	// Attribute is the name of the attribute with the occupancy.
	Attribute = "percentage"
)

type Config struct {
	URL       string        `default:"https://portal.aidoo-online.de/workload?mandant=201000113_physiofit_peine&stud_nr=1"`
	UserAgent string        `default:"Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/91.0.4472.124 Safari/537.36" split_words:"true"`
	Timeout   time.Duration `default:"10s"`
}

// Fetcher scrapes the studio page for its current occupancy.
type Fetcher struct {
	logger    *zap.Logger
	client    HTTPer
	clock     Clock
	url       string
	userAgent string
	timeout   time.Duration
}

type HTTPer interface {
	Do(*http.Request) (*http.Response, error)
}

type Clock func() time.Time

// NewClient returns an http.Client suitable for the fetcher.
func NewClient(config Config) *http.Client {
	return &http.Client{Timeout: config.Timeout}
}

func NewFetcher(
	logger *zap.Logger,
	client HTTPer,
	clock Clock,
	config Config,
) *Fetcher {
	return &Fetcher{
		logger:    logger.Named("scrape"),
		client:    client,
		clock:     clock,
		url:       config.URL,
		userAgent: config.UserAgent,
		timeout:   config.Timeout,
	}
}

// Fetch requests the studio page once and extracts the occupancy from
// it. All errors are *FetchError.
func (f *Fetcher) Fetch(ctx context.Context) (*gym.Occupancy, error) {
	if f.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, f.timeout)
		defer cancel()
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, f.url, nil)
	if err != nil {
		return nil, &FetchError{
			Kind: KindNetwork,
			Err:  fmt.Errorf("creating request: %w", err),
		}
	}

	req.Header.Set("User-Agent", f.userAgent)

	resp, err := f.client.Do(req)
	if err != nil {
		return nil, transportError(ctx, fmt.Errorf("failed GET %s: %w", f.url, err))
	}

	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, &FetchError{
			Kind:   KindHTTPStatus,
			Status: resp.StatusCode,
		}
	}

	doc, err := goquery.NewDocumentFromReader(resp.Body)
	if err != nil {
		return nil, transportError(ctx, fmt.Errorf("reading document: %w", err))
	}

	raw, ok := doc.Find(Selector).First().Attr(Attribute)
	if !ok {
		return nil, &FetchError{Kind: KindMarkerNotFound}
	}

	percent, err := ParsePercent(raw)
	if err != nil {
		return nil, &FetchError{
			Kind: KindMalformedValue,
			Raw:  raw,
			Err:  err,
		}
	}

	f.logger.Debug("found occupancy", zap.Float64("percent", percent))

	result := &gym.Occupancy{
		Timestamp: f.clock(),
		Percent:   percent,
		Source:    gym.SourceOpen,
	}

	return result, nil
}

// transportError classifies errors from the HTTP round trip or from
// reading the body as timeouts or network errors.
func transportError(ctx context.Context, err error) *FetchError {
	if errors.Is(err, context.DeadlineExceeded) ||
		errors.Is(ctx.Err(), context.DeadlineExceeded) {
		return &FetchError{Kind: KindTimeout, Err: err}
	}

	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return &FetchError{Kind: KindTimeout, Err: err}
	}

	return &FetchError{Kind: KindNetwork, Err: err}
}
