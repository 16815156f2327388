// Package postgrest reaches the hosted backend through its PostgREST API.
package postgrest

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"juvenat-admin/internal/domain/record"

	"github.com/go-resty/resty/v2"
)

var ErrUnsupportedQuery = errors.New("query shape not supported by postgrest gateway")

// APIError is a PostgREST error payload. Error() is the backend's own
// message so it can be shown to the operator unchanged.
type APIError struct {
	Status  int    `json:"-"`
	Code    string `json:"code"`
	Message string `json:"message"`
	Details string `json:"details"`
	Hint    string `json:"hint"`
}

func (e *APIError) Error() string {
	if e.Message != "" {
		return e.Message
	}
	return fmt.Sprintf("postgrest: http %d", e.Status)
}

type Gateway struct {
	http *resty.Client
}

// NewGateway builds a client for restURL, the REST root of the backend
// (for a hosted project: https://<ref>.supabase.co/rest/v1).
func NewGateway(restURL, apiKey string) *Gateway {
	c := resty.New().
		SetBaseURL(strings.TrimSuffix(restURL, "/")).
		SetHeader("apikey", apiKey).
		SetHeader("Authorization", "Bearer "+apiKey).
		SetHeader("Content-Type", "application/json").
		SetHeader("Accept", "application/json").
		SetTimeout(15 * time.Second)
	return &Gateway{http: c}
}

func eq(v any) string { return "eq." + record.Stringify(v) }

// quoteValue wraps values holding PostgREST reserved characters.
func quoteValue(s string) string {
	if strings.ContainsAny(s, `,().:"\ `) {
		s = strings.ReplaceAll(s, `\`, `\\`)
		s = strings.ReplaceAll(s, `"`, `\"`)
		return `"` + s + `"`
	}
	return s
}

func selectParam(q record.Query) string {
	cols := "*"
	if len(q.Columns) > 0 {
		cols = strings.Join(q.Columns, ",")
	}
	for _, e := range q.Expand {
		cols += fmt.Sprintf(",%s:%s(%s)", e.Table, e.ForeignKey, e.Column)
	}
	return cols
}

func queryParams(q record.Query) (url.Values, error) {
	p := url.Values{}
	p.Set("select", selectParam(q))
	for _, f := range q.Filters {
		p.Add(f.Column, eq(f.Value))
	}
	if s := q.Search; s != nil && strings.TrimSpace(s.Term) != "" && len(s.Columns) > 0 {
		term := quoteValue("*" + strings.TrimSpace(s.Term) + "*")
		parts := make([]string, 0, len(s.Columns))
		for _, c := range s.Columns {
			if strings.Contains(c, ".") {
				return nil, fmt.Errorf("search column %q: %w", c, ErrUnsupportedQuery)
			}
			parts = append(parts, c+".ilike."+term)
		}
		p.Set("or", "("+strings.Join(parts, ",")+")")
	}
	if q.OrderBy != "" {
		dir := "asc"
		if q.Desc {
			dir = "desc"
		}
		p.Set("order", q.OrderBy+"."+dir)
	}
	if q.Limit > 0 {
		p.Set("limit", strconv.Itoa(q.Limit))
	}
	if q.Offset > 0 {
		p.Set("offset", strconv.Itoa(q.Offset))
	}
	return p, nil
}

func (g *Gateway) request(ctx context.Context) *resty.Request {
	return g.http.R().SetContext(ctx).SetError(&APIError{})
}

func check(resp *resty.Response, err error) error {
	if err != nil {
		return err
	}
	if resp.StatusCode() < http.StatusBadRequest {
		return nil
	}
	if apiErr, ok := resp.Error().(*APIError); ok && apiErr != nil {
		apiErr.Status = resp.StatusCode()
		return apiErr
	}
	return &APIError{Status: resp.StatusCode(), Message: strings.TrimSpace(string(resp.Body()))}
}

func (g *Gateway) Select(ctx context.Context, table string, q record.Query) ([]record.Record, error) {
	params, err := queryParams(q)
	if err != nil {
		return nil, err
	}
	var rows []map[string]any
	resp, err := g.request(ctx).
		SetQueryParamsFromValues(params).
		SetResult(&rows).
		Get("/" + table)
	if err := check(resp, err); err != nil {
		return nil, err
	}
	out := make([]record.Record, 0, len(rows))
	for _, r := range rows {
		out = append(out, flatten(record.Record(r), q.Expand))
	}
	return out, nil
}

// flatten moves embedded {"medicaments": {"Nom": x}} into medicament_nom.
func flatten(r record.Record, expand []record.Expand) record.Record {
	for _, e := range expand {
		if m, ok := r[e.Table].(map[string]any); ok {
			r[e.As] = m[e.Column]
		} else if _, present := r[e.As]; !present {
			r[e.As] = nil
		}
		delete(r, e.Table)
	}
	return r
}

func (g *Gateway) Count(ctx context.Context, table string, filters ...record.Filter) (int64, error) {
	req := g.request(ctx).
		SetHeader("Prefer", "count=exact").
		SetQueryParam("select", "id")
	for _, f := range filters {
		req.SetQueryParam(f.Column, eq(f.Value))
	}
	resp, err := req.Head("/" + table)
	if err := check(resp, err); err != nil {
		return 0, err
	}
	return parseContentRange(resp.Header().Get("Content-Range"))
}

// parseContentRange reads the total from "0-24/573" or "*/0".
func parseContentRange(h string) (int64, error) {
	i := strings.LastIndexByte(h, '/')
	if i < 0 || i == len(h)-1 {
		return 0, fmt.Errorf("postgrest: bad Content-Range %q", h)
	}
	total := h[i+1:]
	if total == "*" {
		return 0, fmt.Errorf("postgrest: count not returned in %q", h)
	}
	return strconv.ParseInt(total, 10, 64)
}

func (g *Gateway) Insert(ctx context.Context, table string, values record.Record) (record.Record, error) {
	var rows []map[string]any
	resp, err := g.request(ctx).
		SetHeader("Prefer", "return=representation").
		SetBody(map[string]any(values)).
		SetResult(&rows).
		Post("/" + table)
	if err := check(resp, err); err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return values.Clone(), nil
	}
	return record.Record(rows[0]), nil
}

func (g *Gateway) Update(ctx context.Context, table string, id any, values record.Record) error {
	if len(values) == 0 {
		return nil
	}
	var rows []map[string]any
	resp, err := g.request(ctx).
		SetHeader("Prefer", "return=representation").
		SetQueryParam("id", eq(id)).
		SetBody(map[string]any(values)).
		SetResult(&rows).
		Patch("/" + table)
	if err := check(resp, err); err != nil {
		return err
	}
	if len(rows) == 0 {
		return record.ErrNotFound
	}
	return nil
}

func (g *Gateway) Delete(ctx context.Context, table string, id any) error {
	var rows []map[string]any
	resp, err := g.request(ctx).
		SetHeader("Prefer", "return=representation").
		SetQueryParam("id", eq(id)).
		SetResult(&rows).
		Delete("/" + table)
	if err := check(resp, err); err != nil {
		return err
	}
	if len(rows) == 0 {
		return record.ErrNotFound
	}
	return nil
}
