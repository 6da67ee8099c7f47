package yahoo

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"github.com/wonny/alphaopt/internal/contracts"
)

// errIndustryMissing mirrors the label of a profile without an industry field
var errIndustryMissing = errors.New("'industry'")

// Lookup returns the industry of a ticker from its profile page.
// Failures come back as "Error: <message>" and never abort the caller.
func (c *Client) Lookup(ctx context.Context, ticker string) string {
	industry, err := c.FetchIndustry(ctx, ticker)
	if err != nil {
		c.logger.WithFields(map[string]interface{}{
			"ticker": ticker,
			"error":  fmt.Errorf("%w: %v", contracts.ErrIndustryLookup, err).Error(),
		}).Warn("Industry lookup failed")
		return contracts.IndustryLabelForError(err)
	}
	return industry
}

// FetchIndustry scrapes the industry from the quote profile page
func (c *Client) FetchIndustry(ctx context.Context, ticker string) (string, error) {
	fullURL := fmt.Sprintf("%s/quote/%s/profile/", c.profileURL, url.PathEscape(ticker))

	status, body, err := c.fetch(ctx, fullURL)
	if err != nil {
		return "", err
	}
	if status != http.StatusOK {
		return "", fmt.Errorf("unexpected status code: %d", status)
	}

	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("parse HTML failed: %w", err)
	}

	industry := parseIndustry(doc)
	if industry == "" {
		return "", errIndustryMissing
	}

	c.logger.WithFields(map[string]interface{}{
		"ticker":   ticker,
		"industry": industry,
	}).Debug("Fetched industry")

	return industry, nil
}

// parseIndustry finds the industry value on a profile page.
// Handles <dt>Industry:</dt><dd>..</dd> and <span>Industry</span>: <span>..</span> layouts.
func parseIndustry(doc *goquery.Document) string {
	var industry string

	doc.Find("dt").EachWithBreak(func(_ int, dt *goquery.Selection) bool {
		if !isIndustryLabel(dt.Text()) {
			return true
		}
		industry = strings.TrimSpace(dt.NextFiltered("dd").Text())
		return industry == ""
	})
	if industry != "" {
		return industry
	}

	doc.Find("span").EachWithBreak(func(_ int, span *goquery.Selection) bool {
		if !isIndustryLabel(span.Text()) {
			return true
		}
		industry = strings.TrimSpace(span.NextAllFiltered("span").First().Text())
		return industry == ""
	})

	return industry
}

func isIndustryLabel(text string) bool {
	text = strings.TrimSpace(strings.TrimSuffix(strings.TrimSpace(text), ":"))
	return strings.EqualFold(text, "Industry")
}
