package document

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/knowledge-engine/pagefilter/internal/config"
)

// ErrDisallowed is returned when robots.txt forbids fetching a page
var ErrDisallowed = errors.New("blocked by robots.txt")

// Loader obtains pages from local files or remote URLs
type Loader struct {
	client    *http.Client
	userAgent string
	robots    *RobotsChecker
	logger    *logrus.Entry
}

func NewLoader(cfg config.FetchConfig, logger *logrus.Entry) *Loader {
	if logger == nil {
		logger = logrus.WithField("component", "loader")
	}

	client := &http.Client{
		Timeout: cfg.Timeout,
		Transport: &http.Transport{
			MaxIdleConns:        cfg.MaxIdleConns,
			MaxIdleConnsPerHost: cfg.MaxIdleConnsPerHost,
			IdleConnTimeout:     90 * time.Second,
		},
	}

	l := &Loader{
		client:    client,
		userAgent: cfg.UserAgent,
		logger:    logger,
	}
	if cfg.EnableRobotsCheck {
		l.robots = NewRobotsChecker(client, cfg.UserAgent, cfg.RobotsCacheDuration, logger)
	}
	return l
}

// Load reads the page named by source. HTTP(S) URLs are fetched, anything
// else is a file path; .md and .markdown files are rendered first.
func (l *Loader) Load(ctx context.Context, source string) (*Document, error) {
	if IsRemote(source) {
		return l.fetch(ctx, source)
	}
	return l.readFile(source)
}

// IsRemote reports whether source is an http or https URL
func IsRemote(source string) bool {
	lower := strings.ToLower(source)
	return strings.HasPrefix(lower, "http://") || strings.HasPrefix(lower, "https://")
}

func (l *Loader) readFile(path string) (*Document, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read page: %w", err)
	}

	var doc *Document
	switch strings.ToLower(filepath.Ext(path)) {
	case ".md", ".markdown":
		doc, err = ParseMarkdown(data)
	default:
		doc, err = Parse(bytes.NewReader(data))
	}
	if err != nil {
		return nil, err
	}

	if abs, err := filepath.Abs(path); err == nil {
		doc.BaseURL = (&url.URL{Scheme: "file", Path: filepath.ToSlash(abs)}).String()
	}

	l.logger.WithField("path", path).Debug("Loaded local page")
	return doc, nil
}

// fetch downloads and parses a remote page
func (l *Loader) fetch(ctx context.Context, pageURL string) (*Document, error) {
	if l.robots != nil {
		allowed, err := l.robots.Allowed(ctx, pageURL)
		if err != nil {
			return nil, err
		}
		if !allowed {
			return nil, fmt.Errorf("%s: %w", pageURL, ErrDisallowed)
		}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, pageURL, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("User-Agent", l.userAgent)

	resp, err := l.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("network error: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("received non-200 status code: %d", resp.StatusCode)
	}

	doc, err := Parse(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("parsing error: %w", err)
	}
	doc.BaseURL = resp.Request.URL.String()

	l.logger.WithFields(logrus.Fields{"url": pageURL, "status": resp.StatusCode}).Debug("Fetched remote page")
	return doc, nil
}
