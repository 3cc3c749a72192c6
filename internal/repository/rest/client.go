// Package rest talks to a hosted PostgREST data service (the tables are
// exposed under /rest/v1/<table>).
package rest

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/dafibh/bizdesk/bizdesk-backend/internal/domain"
	"github.com/supabase-community/postgrest-go"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
)

const restPath = "/rest/v1"

// Client issues table operations against a PostgREST endpoint
type Client struct {
	pg *postgrest.Client
}

// NewClient creates a Client for baseURL authenticated with the anon key
func NewClient(baseURL, apiKey string, timeout time.Duration) (*Client, error) {
	u, err := url.Parse(strings.TrimRight(baseURL, "/"))
	if err != nil {
		return nil, fmt.Errorf("parse data service URL: %w", err)
	}
	if u.Scheme == "" || u.Host == "" {
		return nil, fmt.Errorf("data service URL %q must be absolute", baseURL)
	}

	pg := postgrest.NewClient(u.String()+restPath, "public", nil)
	if pg.ClientError != nil {
		return nil, fmt.Errorf("create data service client: %w", pg.ClientError)
	}
	pg.SetApiKey(apiKey).SetAuthToken(apiKey)

	transport := http.DefaultTransport.(*http.Transport).Clone()
	transport.ResponseHeaderTimeout = timeout
	pg.Transport.Parent = otelhttp.NewTransport(transport)

	return &Client{pg: pg}, nil
}

func (c *Client) from(table string) *postgrest.QueryBuilder {
	return c.pg.From(table)
}

type result struct {
	body  []byte
	count int64
	err   error
}

// execute runs q and decodes the JSON body into out. postgrest-go takes no
// context, so cancellation abandons the in-flight call.
func execute(ctx context.Context, table string, q *postgrest.FilterBuilder, out any) (int64, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}

	done := make(chan result, 1)
	go func() {
		body, count, err := q.Execute()
		done <- result{body: body, count: count, err: err}
	}()

	var res result
	select {
	case <-ctx.Done():
		return 0, fmt.Errorf("%s: %w", table, ctx.Err())
	case res = <-done:
	}
	if res.err != nil {
		return 0, decodeError(table, res.err)
	}

	if out != nil && len(bytes.TrimSpace(res.body)) > 0 {
		dec := json.NewDecoder(bytes.NewReader(res.body))
		dec.UseNumber()
		if err := dec.Decode(out); err != nil {
			return 0, fmt.Errorf("decode %s response: %w", table, err)
		}
	}
	return res.count, nil
}

// encode marshals a write body up front; postgrest-go records marshal
// failures on the shared client.
func encode(table string, body any) (json.RawMessage, error) {
	data, err := json.Marshal(body)
	if err != nil {
		return nil, fmt.Errorf("encode %s body: %w", table, err)
	}
	return data, nil
}

// apiError is the PostgREST error as reported by postgrest-go
type apiError struct {
	Code    string
	Message string
}

func (e *apiError) Error() string {
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// postgrest-go flattens error bodies to "(<code>) <message>"
var executeErrorPattern = regexp.MustCompile(`^\(([^)]*)\) (.*)$`)

// decodeError maps a postgrest-go failure onto domain errors
func decodeError(table string, err error) error {
	m := executeErrorPattern.FindStringSubmatch(err.Error())
	if m == nil {
		return fmt.Errorf("%s: %w", table, err)
	}
	apiErr := &apiError{Code: m[1], Message: m[2]}

	switch apiErr.Code {
	case "PGRST116": // zero rows for a single-object request
		return fmt.Errorf("%w: %w", domain.ErrNotFound, apiErr)
	case "23505":
		return fmt.Errorf("%w: %w", domain.ErrAlreadyExists, apiErr)
	case "23503":
		return fmt.Errorf("%w: %w", domain.ErrAccountNotFound, apiErr)
	case "23514":
		return fmt.Errorf("%w: %w", domain.ErrInvalidInput, apiErr)
	}
	return apiErr
}

func isForeignKeyViolation(err error) bool {
	var apiErr *apiError
	return errors.As(err, &apiErr) && apiErr.Code == "23503"
}

func id(v int64) string {
	return strconv.FormatInt(v, 10)
}

var ascending = &postgrest.OrderOpts{Ascending: true}
