// Package search implements the command palette: table navigation plus a
// bounded fan-out of substring searches over the workspace's tables.
package search

import (
	"context"
	"strings"
	"sync"
	"time"

	"juvenat-admin/internal/domain/record"
	"juvenat-admin/internal/domain/schema"
	"juvenat-admin/internal/domain/stock"
	"juvenat-admin/internal/domain/workspace"
	"juvenat-admin/internal/infrastructure/cache"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

const (
	minQueryLen = 2
	fanOut      = 4
)

var (
	branchFailuresTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "juvenat_search_branch_failures_total",
		Help: "Quick-search table queries that failed, by table.",
	}, []string{"table"})
	searchDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "juvenat_search_duration_seconds",
		Help:    "Quick-search fan-out duration.",
		Buckets: prometheus.DefBuckets,
	})
)

type Config struct {
	Debounce  time.Duration
	CacheTTL  time.Duration
	CacheSize int
}

type Usecase struct {
	gw       record.Gateway
	debounce *Debouncer
	cache    *cache.TTL[*Response]
	log      *zap.Logger
}

func NewUsecase(gw record.Gateway, cfg Config, log *zap.Logger) *Usecase {
	if log == nil {
		log = zap.NewNop()
	}
	u := &Usecase{gw: gw, debounce: NewDebouncer(cfg.Debounce), log: log}
	if cfg.CacheTTL > 0 {
		u.cache = cache.NewTTL[*Response]("search", cfg.CacheSize, cfg.CacheTTL)
	}
	return u
}

func normalize(q string) string { return strings.ToLower(strings.TrimSpace(q)) }

// Search debounces per session, then answers from cache or runs the
// fan-out. A newer query from the same session makes this one return
// ErrSuperseded.
func (u *Usecase) Search(ctx context.Context, sessionID string, ws workspace.Workspace, query string) (*Response, error) {
	if len([]rune(strings.TrimSpace(query))) < minQueryLen {
		return u.QuickNav(ws, query), nil
	}
	if err := u.debounce.Wait(ctx, sessionID); err != nil {
		return nil, err
	}
	return u.Run(ctx, ws, query), nil
}

// QuickNav lists the active tables of ws.
func (u *Usecase) QuickNav(ws workspace.Workspace, query string) *Response {
	results := []Result{}
	for _, t := range ws.ActiveTables() {
		results = append(results, navResult(t, "Navigation rapide"))
	}
	return &Response{Query: query, Results: results, Groups: group(results)}
}

func navResult(table, category string) Result {
	return Result{
		Type: TypeNavigation, Title: schema.Label(table), Subtitle: "Aller à la page",
		Category: category, Target: table, Actions: []Action{},
	}
}

// Run executes the search without debounce.
func (u *Usecase) Run(ctx context.Context, ws workspace.Workspace, query string) *Response {
	term := strings.TrimSpace(query)
	key := ws.ID + "|" + normalize(term)
	if u.cache != nil {
		if r, ok := u.cache.Get(key); ok {
			cp := *r
			cp.Query = query
			return &cp
		}
	}
	start := time.Now()

	results := []Result{}
	lterm := normalize(term)
	for _, t := range ws.ActiveTables() {
		if strings.Contains(strings.ToLower(t), lterm) {
			results = append(results, navResult(t, "Navigation"))
		}
	}

	// one slot per active table, filled concurrently, read in table order
	tables := []string{}
	for _, t := range ws.ActiveTables() {
		if _, ok := sources[t]; ok {
			tables = append(tables, t)
		}
	}
	slots := make([][]Result, len(tables))
	var (
		mu     sync.Mutex
		failed []string
	)
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(fanOut)
	for i, t := range tables {
		g.Go(func() error {
			res, err := u.searchTable(gctx, ws, sources[t], term)
			if err != nil {
				branchFailuresTotal.WithLabelValues(t).Inc()
				u.log.Warn("search branch failed", zap.String("table", t), zap.Error(err))
				mu.Lock()
				failed = append(failed, t)
				mu.Unlock()
				return nil
			}
			slots[i] = res
			return nil
		})
	}
	_ = g.Wait()
	for _, s := range slots {
		results = append(results, s...)
	}

	if len(results) == 0 {
		results = append(results, Result{
			Type: TypeEmpty, Title: "Aucun résultat trouvé",
			Subtitle: `Aucune correspondance pour "` + term + `"`,
			Actions:  []Action{},
		})
	}
	resp := &Response{Query: query, Results: results, Groups: group(results), Failed: failed}
	searchDuration.Observe(time.Since(start).Seconds())

	// partial answers are not cached so a recovered table shows up next time
	if u.cache != nil && len(failed) == 0 {
		u.cache.Set(key, resp)
	}
	return resp
}

func (u *Usecase) searchTable(ctx context.Context, ws workspace.Workspace, src source, term string) ([]Result, error) {
	var rows []record.Record
	var err error
	if src.table == stock.Table {
		rows, err = u.gw.Select(ctx, stock.Table, record.Query{
			Expand: []record.Expand{stock.MedicamentExpand},
			Limit:  stockScanLimit,
		})
		if err != nil {
			return nil, err
		}
		matched := rows[:0]
		for _, r := range rows {
			if len(matched) == perTableLimit {
				break
			}
			if stock.FromRecord(r).MatchesMedicament(term) {
				matched = append(matched, r)
			}
		}
		rows = matched
	} else {
		t, _ := schema.Lookup(src.table)
		rows, err = u.gw.Select(ctx, src.table, record.Query{
			Search: &record.Search{Columns: t.SearchColumns, Term: term},
			Limit:  perTableLimit,
		})
		if err != nil {
			return nil, err
		}
	}

	actions := make([]Action, 0, len(src.actions))
	for _, a := range src.actions {
		if ws.CheckTable(a.Table) == nil {
			actions = append(actions, a)
		}
	}
	out := make([]Result, 0, len(rows))
	for _, r := range rows {
		out = append(out, Result{
			Type: src.typ, Title: src.title(r), Subtitle: src.subtitle(r),
			Category: src.category, Target: src.table, Actions: actions,
		})
	}
	return out, nil
}
