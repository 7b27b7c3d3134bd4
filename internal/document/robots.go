package document

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"sync"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/temoto/robotstxt"
)

// RobotsChecker answers robots.txt questions for remote pages
type RobotsChecker struct {
	client        *http.Client
	userAgent     string
	cacheDuration time.Duration
	logger        *logrus.Entry

	cache map[string]*robotsEntry
	mu    sync.RWMutex
}

// robotsEntry caches robots.txt data
type robotsEntry struct {
	robots    *robotstxt.RobotsData
	fetchTime time.Time
}

// NewRobotsChecker creates a checker sharing the loader's HTTP client
func NewRobotsChecker(client *http.Client, userAgent string, cacheDuration time.Duration, logger *logrus.Entry) *RobotsChecker {
	if logger == nil {
		logger = logrus.WithField("component", "robots")
	}
	return &RobotsChecker{
		client:        client,
		userAgent:     userAgent,
		cacheDuration: cacheDuration,
		logger:        logger,
		cache:         make(map[string]*robotsEntry),
	}
}

// Allowed checks if the URL may be fetched according to robots.txt
func (rc *RobotsChecker) Allowed(ctx context.Context, rawURL string) (bool, error) {
	parsedURL, err := url.Parse(rawURL)
	if err != nil {
		return false, fmt.Errorf("invalid URL: %w", err)
	}

	robotsData, err := rc.getRobotsData(ctx, parsedURL)
	if err != nil {
		rc.logger.WithError(err).WithField("domain", parsedURL.Host).Warn("Failed to get robots.txt, allowing request")
		return true, nil
	}

	if robotsData == nil {
		return true, nil
	}

	group := robotsData.FindGroup(rc.userAgent)
	if group == nil {
		return true, nil
	}

	path := parsedURL.EscapedPath()
	if path == "" {
		path = "/"
	}
	return group.Test(path), nil
}

// getRobotsData fetches and caches robots.txt data per scheme and host
func (rc *RobotsChecker) getRobotsData(ctx context.Context, page *url.URL) (*robotstxt.RobotsData, error) {
	key := page.Scheme + "://" + page.Host

	rc.mu.RLock()
	entry, exists := rc.cache[key]
	rc.mu.RUnlock()

	if exists && time.Since(entry.fetchTime) < rc.cacheDuration {
		return entry.robots, nil
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, key+"/robots.txt", nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create robots.txt request: %w", err)
	}
	req.Header.Set("User-Agent", rc.userAgent)

	resp, err := rc.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch robots.txt: %w", err)
	}
	defer resp.Body.Close()

	var robotsData *robotstxt.RobotsData
	if resp.StatusCode == http.StatusOK {
		robotsData, err = robotstxt.FromResponse(resp)
		if err != nil {
			return nil, fmt.Errorf("failed to parse robots.txt: %w", err)
		}
	}

	// Cache the result (even if nil for 404s)
	rc.mu.Lock()
	rc.cache[key] = &robotsEntry{
		robots:    robotsData,
		fetchTime: time.Now(),
	}
	rc.mu.Unlock()

	return robotsData, nil
}
