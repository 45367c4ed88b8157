package scraper

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/gocolly/colly/v2"
	"golang.org/x/net/html"

	"github.com/thinkscotty/explainer/internal/explain"
)

const (
	DefaultUserAgent = "Mozilla/5.0 (compatible; ELI5-Explainer/1.0)"

	// MaxExcerptLength is the number of characters kept from a fetched page.
	MaxExcerptLength = 5000
	// MinContentLength is the least cleaned HTML text worth explaining.
	MinContentLength = 100
)

// Scraper fetches page text for URL input. It implements explain.URLResolver.
type Scraper struct {
	userAgent      string
	requestTimeout time.Duration
}

// New creates a Scraper. Empty or zero arguments fall back to defaults.
func New(userAgent string, timeout time.Duration) *Scraper {
	if userAgent == "" {
		userAgent = DefaultUserAgent
	}
	if timeout <= 0 {
		timeout = 15 * time.Second
	}
	return &Scraper{
		userAgent:      userAgent,
		requestTimeout: timeout,
	}
}

// ValidateURL checks if a URL is absolute and uses http/https.
func ValidateURL(urlStr string) error {
	parsed, err := url.Parse(urlStr)
	if err != nil {
		return fmt.Errorf("invalid URL format: %w", err)
	}
	if parsed.Scheme != "http" && parsed.Scheme != "https" {
		return fmt.Errorf("URL must use http or https scheme")
	}
	if parsed.Host == "" {
		return fmt.Errorf("URL must have a host")
	}
	return nil
}

// IsURL reports whether s is an absolute http(s) URL.
func IsURL(s string) bool {
	return ValidateURL(strings.TrimSpace(s)) == nil
}

func (s *Scraper) IsURL(str string) bool { return IsURL(str) }

// FetchContent downloads rawURL and returns up to MaxExcerptLength characters
// of its text. HTML pages are reduced to their visible text first. All
// failures are explain FetchError values.
func (s *Scraper) FetchContent(ctx context.Context, rawURL string) (string, error) {
	c := colly.NewCollector(
		colly.UserAgent(s.userAgent),
		colly.MaxDepth(1),
		colly.StdlibContext(ctx),
	)
	c.SetRequestTimeout(s.requestTimeout)

	var body []byte
	c.OnResponse(func(r *colly.Response) {
		body = r.Body
	})

	var status int
	c.OnError(func(r *colly.Response, err error) {
		if r != nil {
			status = r.StatusCode
		}
	})

	if err := c.Visit(rawURL); err != nil {
		if status != 0 {
			return "", explain.FetchFailed(
				fmt.Sprintf("Failed to fetch URL: %d %s", status, http.StatusText(status)), err)
		}
		return "", explain.FetchFailed("Failed to fetch URL", err)
	}
	c.Wait()

	text := string(body)
	if looksLikeHTML(text) {
		cleaned, err := cleanHTML(text)
		if err != nil {
			return "", explain.FetchFailed("Could not parse HTML from URL", err)
		}
		if len([]rune(cleaned)) < MinContentLength {
			return "", explain.FetchFailed("Could not extract meaningful content from URL", nil)
		}
		return truncate(cleaned, MaxExcerptLength), nil
	}

	text = strings.TrimSpace(text)
	if text == "" {
		return "", explain.FetchFailed("URL returned an empty body", nil)
	}
	return truncate(text, MaxExcerptLength), nil
}

func looksLikeHTML(body string) bool {
	lower := strings.ToLower(body)
	return strings.Contains(lower, "<html") || strings.Contains(lower, "<!doctype")
}

// cleanHTML drops script and style blocks and returns the remaining text
// nodes joined by single spaces.
func cleanHTML(body string) (string, error) {
	root, err := html.ParseWithOptions(strings.NewReader(body), html.ParseOptionEnableScripting(false))
	if err != nil {
		return "", err
	}
	doc := goquery.NewDocumentFromNode(root)
	doc.Find("script, style").Remove()

	var sb strings.Builder
	for _, n := range doc.Nodes {
		collectText(&sb, n)
	}
	return cleanText(sb.String()), nil
}

func collectText(sb *strings.Builder, n *html.Node) {
	if n.Type == html.TextNode {
		sb.WriteString(n.Data)
		sb.WriteByte(' ')
		return
	}
	for child := n.FirstChild; child != nil; child = child.NextSibling {
		collectText(sb, child)
	}
}

func truncate(s string, max int) string {
	runes := []rune(s)
	if len(runes) <= max {
		return s
	}
	return string(runes[:max])
}

func cleanText(s string) string {
	return strings.TrimSpace(strings.Join(strings.Fields(s), " "))
}
