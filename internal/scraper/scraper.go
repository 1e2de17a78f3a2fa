package scraper

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"net/url"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/samvad-hq/sysfetch/pkg/httpclient"
)

// Package scraper extracts page metadata from fetched HTML.

const (
	maxHTMLBodyBytes = 1 << 20 // 1 MiB
	maxSnippetBytes  = 512
)

// PageMeta is the metadata extracted from a page.
type PageMeta struct {
	URL         string `json:"url"`
	Title       string `json:"title,omitempty"`
	Description string `json:"description,omitempty"`
	ImageURL    string `json:"image_url,omitempty"`
}

// Scraper fetches pages and extracts metadata from OG tags.
type Scraper struct {
	client httpclient.Client
}

// New constructs a scraper over client.
func New(client httpclient.Client) (*Scraper, error) {
	if client == nil {
		return nil, errors.New("scraper requires an http client")
	}
	return &Scraper{client: client}, nil
}

// Scrape fetches pageURL and extracts its metadata. Responses with a known
// status other than 200 are rejected; an unknown status is accepted.
func (s *Scraper) Scrape(ctx context.Context, pageURL string) (PageMeta, error) {
	resp, err := s.client.Get(ctx, pageURL, nil)
	if err != nil {
		return PageMeta{}, fmt.Errorf("http fetch: %w", err)
	}

	if code := resp.StatusCode(); code != httpclient.StatusUnknown && code != 200 {
		return PageMeta{}, fmt.Errorf("status %d body: %s", code, responseSnippet(resp.Body()))
	}

	body := resp.Body()
	if len(body) > maxHTMLBodyBytes {
		body = body[:maxHTMLBodyBytes]
	}

	meta, err := parseMeta(body)
	if err != nil {
		return PageMeta{}, err
	}
	meta.URL = pageURL
	meta.ImageURL = resolveURL(meta.ImageURL, pageURL)
	return meta, nil
}

func parseMeta(body []byte) (PageMeta, error) {
	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(body))
	if err != nil {
		return PageMeta{}, fmt.Errorf("parse html: %w", err)
	}

	extract := func(sel string) string {
		if node := doc.Find(sel).First(); node.Length() > 0 {
			if val, ok := node.Attr("content"); ok {
				return strings.TrimSpace(val)
			}
		}
		return ""
	}

	return PageMeta{
		Title: firstNonEmpty(
			extract(`meta[property="og:title"]`),
			doc.Find("title").First().Text(),
		),
		Description: firstNonEmpty(
			extract(`meta[property="og:description"]`),
			extract(`meta[name="description"]`),
		),
		ImageURL: extract(`meta[property="og:image"]`),
	}, nil
}

// resolveURL makes ref absolute against base. Unparseable input is returned as is.
func resolveURL(ref, base string) string {
	ref = strings.TrimSpace(ref)
	if ref == "" {
		return ""
	}
	refURL, err := url.Parse(ref)
	if err != nil {
		return ref
	}
	baseURL, err := url.Parse(base)
	if err != nil {
		return ref
	}
	return baseURL.ResolveReference(refURL).String()
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if strings.TrimSpace(v) != "" {
			return strings.TrimSpace(v)
		}
	}
	return ""
}

func responseSnippet(body []byte) string {
	s := strings.TrimSpace(string(body))
	if len(s) > maxSnippetBytes {
		return s[:maxSnippetBytes] + "..."
	}
	if s == "" {
		return "<empty>"
	}
	return s
}
