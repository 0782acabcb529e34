// Package corpus fetches reference catalog records from the document store
// using the scroll API, page by page, up to a hard record cap.
package corpus

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/rs/zerolog/log"
)

const (
	// DefaultURL is the document store endpoint used when none is configured.
	DefaultURL = "http://localhost:9200"
	// IndexName is the index holding all reference records.
	IndexName = "records"
	// MaxRecords caps a full scan of one source.
	MaxRecords = 10000000

	pageSize   = 10000
	scrollKeep = "1m"
)

// Record is one reference catalog record as ingested from the store.
type Record struct {
	ID       string
	Source   string
	Title    string
	Author   string
	Location string // from the publisher property
	Year     string // from the first_year property
}

// Combined joins the main fields in the order author, title, location, year.
func (r *Record) Combined() string {
	return fmt.Sprintf("%s %s %s %s", r.Author, r.Title, r.Location, r.Year)
}

// Client reads records for a single source from the document store.
type Client struct {
	baseURL string
	index   string
	http    *http.Client
}

// NewClient creates a corpus client for the given base URL. An empty URL
// selects DefaultURL.
func NewClient(baseURL string) *Client {
	if baseURL == "" {
		baseURL = DefaultURL
	}
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		index:   IndexName,
		http:    &http.Client{Timeout: 5 * time.Minute},
	}
}

// ForEach streams every record of the named source to fn, following the
// scroll cursor until the store runs dry or MaxRecords is reached. It
// returns the number of records seen.
func (c *Client) ForEach(ctx context.Context, sourceName string, fn func(*Record) error) (uint32, error) {
	var total uint32
	page, scrollID, err := c.fetchInitial(ctx, sourceName)
	for {
		if err != nil {
			return total, err
		}
		if len(page) == 0 {
			break
		}
		for i := range page {
			if err := fn(&page[i]); err != nil {
				return total, err
			}
		}
		total += uint32(len(page))
		if total%100000 == 0 {
			log.Info().Uint32("records", total).Str("source", sourceName).Msg("processing corpus")
		}
		if total >= MaxRecords {
			break
		}
		page, scrollID, err = c.fetchScroll(ctx, scrollID)
	}
	return total, nil
}

type searchResponse struct {
	ScrollID string `json:"_scroll_id"`
	Hits     struct {
		Hits []struct {
			Source map[string]json.RawMessage `json:"_source"`
		} `json:"hits"`
	} `json:"hits"`
}

func (c *Client) fetchInitial(ctx context.Context, sourceName string) ([]Record, string, error) {
	body := map[string]any{
		"query": map[string]any{
			"match": map[string]any{"source": sourceName},
		},
		"size": pageSize,
	}
	url := fmt.Sprintf("%s/%s/_search?scroll=%s", c.baseURL, c.index, scrollKeep)
	return c.post(ctx, url, body, sourceName)
}

func (c *Client) fetchScroll(ctx context.Context, scrollID string) ([]Record, string, error) {
	body := map[string]any{
		"scroll":    scrollKeep,
		"scroll_id": scrollID,
	}
	return c.post(ctx, c.baseURL+"/_search/scroll", body, "")
}

func (c *Client) post(ctx context.Context, url string, body map[string]any, sourceName string) ([]Record, string, error) {
	payload, err := json.Marshal(body)
	if err != nil {
		return nil, "", err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(payload))
	if err != nil {
		return nil, "", err
	}
	req.Header.Set("Content-Type", "application/json")
	resp, err := c.http.Do(req)
	if err != nil {
		return nil, "", fmt.Errorf("corpus request failed: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()
	if resp.StatusCode != http.StatusOK {
		return nil, "", fmt.Errorf("corpus request failed: status %s", resp.Status)
	}
	var parsed searchResponse
	if err := json.NewDecoder(resp.Body).Decode(&parsed); err != nil {
		return nil, "", fmt.Errorf("corpus response decode failed: %w", err)
	}
	records := make([]Record, 0, len(parsed.Hits.Hits))
	for _, hit := range parsed.Hits.Hits {
		records = append(records, recordFromSource(hit.Source, sourceName))
	}
	return records, parsed.ScrollID, nil
}

func recordFromSource(source map[string]json.RawMessage, sourceName string) Record {
	return Record{
		ID:       asString(source["id"]),
		Source:   sourceName,
		Title:    asString(source["title"]),
		Author:   asString(source["author"]),
		Location: asString(source["publisher"]),
		Year:     asString(source["first_year"]),
	}
}

// asString accepts a string, a number, or an array of strings (joined with
// single spaces); every other shape maps to the empty string.
func asString(raw json.RawMessage) string {
	if len(raw) == 0 {
		return ""
	}
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		return s
	}
	var n json.Number
	if err := json.Unmarshal(raw, &n); err == nil {
		return n.String()
	}
	var arr []string
	if err := json.Unmarshal(raw, &arr); err == nil {
		return strings.Join(arr, " ")
	}
	return ""
}
