package dashboard

import (
	"context"
	"sync"

	"juvenat-admin/internal/domain/record"
	"juvenat-admin/internal/domain/stock"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
	"golang.org/x/text/number"
)

const Currency = "HTG"

type StatsDTO struct {
	Medicaments    int64   `json:"medicaments"`
	Patients       int64   `json:"patients"`
	Sorties        int64   `json:"sorties"`
	LowStock       int     `json:"low_stock"`
	InventoryValue float64 `json:"inventory_value"`
	// InventoryLabel is InventoryValue with French digit grouping.
	InventoryLabel string   `json:"inventory_label"`
	Failed         []string `json:"failed,omitempty"`
}

type Usecase struct {
	gw  record.Gateway
	log *zap.Logger
}

func NewUsecase(gw record.Gateway, log *zap.Logger) *Usecase {
	if log == nil {
		log = zap.NewNop()
	}
	return &Usecase{gw: gw, log: log}
}

var printer = message.NewPrinter(language.French)

// FormatAmount renders v the way the dashboard shows money, e.g. "1 234,5 HTG".
func FormatAmount(v float64) string {
	return printer.Sprintf("%v", number.Decimal(v, number.MaxFractionDigits(2))) + " " + Currency
}

// Stats runs the dashboard queries in parallel. A failing query is logged
// and reported as zero.
func (u *Usecase) Stats(ctx context.Context) *StatsDTO {
	out := &StatsDTO{}
	var mu sync.Mutex
	fail := func(what string, err error) {
		u.log.Warn("dashboard query failed", zap.String("query", what), zap.Error(err))
		mu.Lock()
		out.Failed = append(out.Failed, what)
		mu.Unlock()
	}

	g, gctx := errgroup.WithContext(ctx)
	counts := []struct {
		table string
		dst   *int64
	}{
		{"medicaments", &out.Medicaments},
		{"patients", &out.Patients},
		{"sorties", &out.Sorties},
	}
	for _, c := range counts {
		g.Go(func() error {
			n, err := u.gw.Count(gctx, c.table)
			if err != nil {
				fail(c.table, err)
				return nil
			}
			*c.dst = n
			return nil
		})
	}
	g.Go(func() error {
		rows, err := u.gw.Select(gctx, stock.Table, record.Query{Columns: []string{"quantite", "prix_vente"}})
		if err != nil {
			fail(stock.Table, err)
			return nil
		}
		low, value := 0, 0.0
		for _, r := range rows {
			s := stock.FromRecord(r)
			if s.Low() {
				low++
			}
			value += s.Value()
		}
		out.LowStock, out.InventoryValue = low, value
		return nil
	})
	_ = g.Wait()

	out.InventoryLabel = FormatAmount(out.InventoryValue)
	return out
}
