package entity

import (
	"context"
	"errors"
	"testing"
	"time"

	"juvenat-admin/internal/adapter/repository/sqlrepo"
	"juvenat-admin/internal/domain/record"
	"juvenat-admin/internal/domain/requisition"
	"juvenat-admin/internal/domain/staff"
	"juvenat-admin/internal/domain/stock"
	"juvenat-admin/internal/testutil/gatewaymock"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

func openTestGateway(t *testing.T) *sqlrepo.Gateway {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	sqlDB, err := db.DB()
	if err != nil {
		t.Fatalf("sql db: %v", err)
	}
	sqlDB.SetMaxOpenConns(1)

	stmts := []string{
		`CREATE TABLE requisition (id TEXT PRIMARY KEY, created_at DATETIME, personnel TEXT, article TEXT, etat TEXT,
			proforma BOOLEAN DEFAULT 0, livraison BOOLEAN DEFAULT 0, posted BOOLEAN DEFAULT 0)`,
		`CREATE TABLE medicaments (id INTEGER PRIMARY KEY AUTOINCREMENT, Nom TEXT)`,
		`CREATE TABLE stock (id INTEGER PRIMARY KEY AUTOINCREMENT, medicaments_id INTEGER, institution_id INTEGER DEFAULT 1,
			quantite REAL, prix_vente REAL, created_at DATETIME DEFAULT CURRENT_TIMESTAMP, UNIQUE (medicaments_id, institution_id))`,
		`CREATE TABLE personnel (id INTEGER PRIMARY KEY AUTOINCREMENT, Nom TEXT, Prenom TEXT, Mail TEXT, admin_site TEXT, pin_code TEXT)`,
	}
	for _, s := range stmts {
		if err := db.Exec(s).Error; err != nil {
			t.Fatalf("schema: %v", err)
		}
	}
	return sqlrepo.NewGateway(db)
}

func TestRequisitionRepository_CreateListGetUpdate(t *testing.T) {
	gw := openTestGateway(t)
	repo := NewRequisitionRepository(gw)
	ctx := context.Background()

	article, _, err := requisition.EncodeLineItems([]requisition.LineItem{{Nom: "Gants", Quantite: 4}})
	if err != nil {
		t.Fatalf("encode: %v", err)
	}
	older := &requisition.Requisition{
		Personnel: "Jean Pierre", Article: article, Etat: string(requisition.StatusPending),
		CreatedAt: time.Date(2024, 1, 1, 8, 0, 0, 0, time.UTC),
	}
	newer := &requisition.Requisition{
		Personnel: "Marie Claire", Article: article, Etat: string(requisition.StatusApproved),
		CreatedAt: time.Date(2024, 3, 1, 8, 0, 0, 0, time.UTC),
	}
	for _, r := range []*requisition.Requisition{older, newer} {
		if err := repo.Create(ctx, r); err != nil {
			t.Fatalf("Create: %v", err)
		}
		if r.ID == "" {
			t.Fatal("Create must assign an id")
		}
	}

	list, err := repo.List(ctx)
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(list) != 2 || list[0].ID != newer.ID {
		t.Fatalf("List must be newest first, got %+v", list)
	}

	got, err := repo.GetByID(ctx, older.ID)
	if err != nil {
		t.Fatalf("GetByID: %v", err)
	}
	items := got.LineItems()
	if len(items) != 1 || items[0].Nom != "Gants" || items[0].Quantite != 4 {
		t.Fatalf("round trip items = %+v", items)
	}

	if err := repo.UpdateFields(ctx, older.ID, map[string]any{"etat": string(requisition.StatusRejected)}); err != nil {
		t.Fatalf("UpdateFields: %v", err)
	}
	got, _ = repo.GetByID(ctx, older.ID)
	if got.Status() != requisition.StatusRejected {
		t.Fatalf("status = %q", got.Etat)
	}

	if _, err := repo.GetByID(ctx, "missing"); !errors.Is(err, requisition.ErrNotFound) {
		t.Fatalf("GetByID missing: want ErrNotFound, got %v", err)
	}
	if err := repo.UpdateFields(ctx, "missing", map[string]any{"etat": "x"}); !errors.Is(err, requisition.ErrNotFound) {
		t.Fatalf("UpdateFields missing: want ErrNotFound, got %v", err)
	}
}

func TestRequisitionRepository_BackendErrorIsRaw(t *testing.T) {
	boom := errors.New("permission denied for table requisition")
	repo := NewRequisitionRepository(&gatewaymock.Gateway{
		SelectFn: func(context.Context, string, record.Query) ([]record.Record, error) { return nil, boom },
		UpdateFn: func(context.Context, string, any, record.Record) error { return boom },
	})
	if _, err := repo.List(context.Background()); !errors.Is(err, boom) {
		t.Fatalf("List: want raw error, got %v", err)
	}
	if err := repo.UpdateFields(context.Background(), "x", map[string]any{"etat": "x"}); !errors.Is(err, boom) {
		t.Fatalf("UpdateFields: want raw error, got %v", err)
	}
}

func TestStockRepository(t *testing.T) {
	gw := openTestGateway(t)
	ctx := context.Background()
	if _, err := gw.Insert(ctx, "medicaments", record.Record{"id": 1, "Nom": "Ibuprofene"}); err != nil {
		t.Fatalf("seed: %v", err)
	}
	if _, err := gw.Insert(ctx, "stock", record.Record{"medicaments_id": 1, "institution_id": 1, "quantite": 19, "prix_vente": 5}); err != nil {
		t.Fatalf("seed: %v", err)
	}
	repo := NewStockRepository(gw)

	s, err := repo.FindByKey(ctx, 1, 1)
	if err != nil || s.Quantite != 19 || !s.Low() {
		t.Fatalf("FindByKey = %+v, %v", s, err)
	}
	if _, err := repo.FindByKey(ctx, 1, 2); !errors.Is(err, stock.ErrNotFound) {
		t.Fatalf("FindByKey other institution: want ErrNotFound, got %v", err)
	}
}

func TestStaffRepository(t *testing.T) {
	gw := openTestGateway(t)
	ctx := context.Background()
	for _, p := range []record.Record{
		{"Nom": "Zéphyr", "Prenom": "Alix", "Mail": "alix@juvenat.ht", "admin_site": `["juvenat","rh"]`, "pin_code": "1234"},
		{"Nom": "Augustin", "Prenom": "Rose", "Mail": "rose@juvenat.ht"},
	} {
		if _, err := gw.Insert(ctx, "personnel", p); err != nil {
			t.Fatalf("seed: %v", err)
		}
	}
	repo := NewStaffRepository(gw)

	s, err := repo.GetByMail(ctx, " alix@juvenat.ht ")
	if err != nil {
		t.Fatalf("GetByMail: %v", err)
	}
	if !s.HasScope("rh") || !s.VerifyPIN("1234") {
		t.Fatalf("staff = %+v", s)
	}
	byID, err := repo.GetByID(ctx, s.ID)
	if err != nil || byID.Mail != s.Mail {
		t.Fatalf("GetByID = %+v, %v", byID, err)
	}
	if _, err := repo.GetByID(ctx, "999"); !errors.Is(err, staff.ErrNotFound) {
		t.Fatalf("GetByID missing: want ErrNotFound, got %v", err)
	}

	reqs, err := repo.Requesters(ctx)
	if err != nil {
		t.Fatalf("Requesters: %v", err)
	}
	if len(reqs) != 2 || reqs[0].Nom != "Augustin" || reqs[1].Label() != "Alix Zéphyr" {
		t.Fatalf("requesters = %+v", reqs)
	}
}
