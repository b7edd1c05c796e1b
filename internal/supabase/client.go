package supabase

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"
)

// Client queries the PostgREST data endpoint of a Supabase project.
type Client struct {
	restURL    string
	apiKey     string
	httpClient *http.Client
}

func New(projectURL, apiKey string) *Client {
	return &Client{
		restURL:    strings.TrimRight(projectURL, "/") + "/rest/v1",
		apiKey:     apiKey,
		httpClient: &http.Client{Timeout: 60 * time.Second},
	}
}

// errorDocument is the JSON body PostgREST returns instead of data.
type errorDocument struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	Details string `json:"details"`
	Hint    string `json:"hint"`
}

// RequestError carries the status and PostgREST error code of a failed query.
type RequestError struct {
	Status  int
	Code    string
	Message string
}

func (e *RequestError) Error() string {
	if e.Code != "" {
		return fmt.Sprintf("supabase request failed: status=%d code=%s message=%s", e.Status, e.Code, e.Message)
	}
	return fmt.Sprintf("supabase request failed: status=%d message=%s", e.Status, e.Message)
}

// IsUndefinedTable reports whether err means the queried relation does not exist.
func IsUndefinedTable(err error) bool {
	var reqErr *RequestError
	if !errors.As(err, &reqErr) {
		return false
	}
	return reqErr.Code == "42P01" || reqErr.Status == http.StatusNotFound
}

// IsInvalidOrder reports whether err means the backend rejected an order column.
func IsInvalidOrder(err error) bool {
	var reqErr *RequestError
	if !errors.As(err, &reqErr) {
		return false
	}
	return reqErr.Code == "42703" || reqErr.Status == http.StatusBadRequest
}

// QueryBuilder accumulates PostgREST query parameters for a single table read.
type QueryBuilder struct {
	client   *Client
	table    string
	params   url.Values
	start    int
	end      int
	hasRange bool
}

func (c *Client) From(table string) *QueryBuilder {
	return &QueryBuilder{
		client: c,
		table:  table,
		params: url.Values{},
	}
}

func (q *QueryBuilder) Select(columns string) *QueryBuilder {
	q.params.Set("select", columns)
	return q
}

// IsNull keeps only rows where the given column is null.
func (q *QueryBuilder) IsNull(column string) *QueryBuilder {
	q.params.Set(column, "is.null")
	return q
}

func (q *QueryBuilder) Order(column string, ascending bool) *QueryBuilder {
	direction := "asc"
	if !ascending {
		direction = "desc"
	}
	q.params.Set("order", column+"."+direction)
	return q
}

// Range limits the query to rows [start, end], end inclusive.
func (q *QueryBuilder) Range(start, end int) *QueryBuilder {
	q.start = start
	q.end = end
	q.hasRange = true
	return q
}

func (q *QueryBuilder) Execute(ctx context.Context) ([]map[string]any, error) {
	requestURL := q.client.restURL + "/" + q.table
	if encoded := q.params.Encode(); encoded != "" {
		requestURL += "?" + encoded
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, requestURL, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request for table %s: %v", q.table, err)
	}

	req.Header.Set("apikey", q.client.apiKey)
	req.Header.Set("Authorization", "Bearer "+q.client.apiKey)
	req.Header.Set("Accept", "application/json")
	if q.hasRange {
		req.Header.Set("Range-Unit", "items")
		req.Header.Set("Range", fmt.Sprintf("%d-%d", q.start, q.end))
	}

	resp, err := q.client.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("request to table %s failed: %v", q.table, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response for table %s: %v", q.table, err)
	}

	if resp.StatusCode < http.StatusOK || resp.StatusCode >= http.StatusMultipleChoices {
		var doc errorDocument
		// The body may not be a PostgREST error document at all, keep
		// whatever fields decoded.
		_ = json.Unmarshal(body, &doc)
		return nil, &RequestError{Status: resp.StatusCode, Code: doc.Code, Message: doc.Message}
	}

	var rows []map[string]any
	if err := json.Unmarshal(body, &rows); err != nil {
		return nil, fmt.Errorf("unexpected response shape for table %s: %v", q.table, err)
	}

	return rows, nil
}
