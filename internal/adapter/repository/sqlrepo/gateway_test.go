package sqlrepo

import (
	"context"
	"errors"
	"testing"

	"juvenat-admin/internal/domain/record"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

// openTestDB creates an in-memory sqlite DB with a pharmacy-like schema.
func openTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	sqlDB, err := db.DB()
	if err != nil {
		t.Fatalf("sql db: %v", err)
	}
	// one connection, or every new one gets its own empty memory db
	sqlDB.SetMaxOpenConns(1)

	stmts := []string{
		`CREATE TABLE medicaments (id INTEGER PRIMARY KEY AUTOINCREMENT, Nom TEXT, Nom_generique TEXT, description TEXT)`,
		`CREATE TABLE stock (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			medicaments_id INTEGER,
			institution_id INTEGER DEFAULT 1,
			quantite REAL,
			prix_vente REAL,
			created_at DATETIME DEFAULT CURRENT_TIMESTAMP,
			UNIQUE (medicaments_id, institution_id)
		)`,
	}
	for _, s := range stmts {
		if err := db.Exec(s).Error; err != nil {
			t.Fatalf("schema: %v", err)
		}
	}
	return db
}

func seed(t *testing.T, g *Gateway) {
	t.Helper()
	ctx := context.Background()
	for _, m := range []record.Record{
		{"id": 1, "Nom": "Amoxicilline", "Nom_generique": "amoxicillin"},
		{"id": 2, "Nom": "Paracetamol", "Nom_generique": "acetaminophen"},
	} {
		if _, err := g.Insert(ctx, "medicaments", m); err != nil {
			t.Fatalf("seed medicaments: %v", err)
		}
	}
	for _, s := range []record.Record{
		{"medicaments_id": 1, "institution_id": 1, "quantite": 19, "prix_vente": 10},
		{"medicaments_id": 2, "institution_id": 1, "quantite": 40, "prix_vente": 2.5},
		{"medicaments_id": 2, "institution_id": 2, "quantite": 5, "prix_vente": 3},
	} {
		if _, err := g.Insert(ctx, "stock", s); err != nil {
			t.Fatalf("seed stock: %v", err)
		}
	}
}

func TestSelect_ExpandOrderLimit(t *testing.T) {
	g := NewGateway(openTestDB(t))
	seed(t, g)

	rows, err := g.Select(context.Background(), "stock", record.Query{
		Expand:  []record.Expand{{Table: "medicaments", ForeignKey: "medicaments_id", Column: "Nom", As: "medicament_nom"}},
		OrderBy: "id",
		Desc:    true,
		Limit:   2,
	})
	if err != nil {
		t.Fatalf("Select: %v", err)
	}
	if len(rows) != 2 {
		t.Fatalf("len = %d, want 2", len(rows))
	}
	if rows[0].ID() != "3" || rows[0]["medicament_nom"] != "Paracetamol" {
		t.Fatalf("first row = %+v", rows[0])
	}
	if _, ok := rows[0]["created_at"]; !ok {
		t.Fatal("stock.* must be projected alongside the join")
	}
}

func TestSelect_FiltersSearchProjection(t *testing.T) {
	g := NewGateway(openTestDB(t))
	seed(t, g)
	ctx := context.Background()

	rows, err := g.Select(ctx, "stock", record.Query{
		Columns: []string{"id", "quantite"},
		Filters: []record.Filter{{Column: "medicaments_id", Value: 2}, {Column: "institution_id", Value: 2}},
	})
	if err != nil {
		t.Fatalf("Select filters: %v", err)
	}
	if len(rows) != 1 || len(rows[0]) != 2 {
		t.Fatalf("rows = %+v", rows)
	}

	rows, err = g.Select(ctx, "medicaments", record.Query{
		Search: &record.Search{Columns: []string{"Nom", "Nom_generique"}, Term: "ACETAMIN"},
	})
	if err != nil {
		t.Fatalf("Select search: %v", err)
	}
	if len(rows) != 1 || rows[0]["Nom"] != "Paracetamol" {
		t.Fatalf("search rows = %+v", rows)
	}

	// qualified search column through a join
	rows, err = g.Select(ctx, "stock", record.Query{
		Expand: []record.Expand{{Table: "medicaments", ForeignKey: "medicaments_id", Column: "Nom", As: "medicament_nom"}},
		Search: &record.Search{Columns: []string{"medicaments.Nom"}, Term: "amox"},
	})
	if err != nil {
		t.Fatalf("Select joined search: %v", err)
	}
	if len(rows) != 1 || rows[0]["medicament_nom"] != "Amoxicilline" {
		t.Fatalf("joined search rows = %+v", rows)
	}
}

func TestCount(t *testing.T) {
	g := NewGateway(openTestDB(t))
	seed(t, g)
	ctx := context.Background()

	n, err := g.Count(ctx, "stock")
	if err != nil || n != 3 {
		t.Fatalf("Count = %d, %v", n, err)
	}
	n, err = g.Count(ctx, "stock", record.Filter{Column: "medicaments_id", Value: 2})
	if err != nil || n != 2 {
		t.Fatalf("Count filtered = %d, %v", n, err)
	}
}

func TestUpdateAndDelete(t *testing.T) {
	g := NewGateway(openTestDB(t))
	seed(t, g)
	ctx := context.Background()

	if err := g.Update(ctx, "stock", 1, record.Record{"quantite": 25}); err != nil {
		t.Fatalf("Update: %v", err)
	}
	rows, _ := g.Select(ctx, "stock", record.Query{Filters: []record.Filter{{Column: "id", Value: 1}}})
	if q, _ := record.Number(rows[0]["quantite"]); q != 25 {
		t.Fatalf("quantite = %v", rows[0]["quantite"])
	}

	if err := g.Update(ctx, "stock", 999, record.Record{"quantite": 1}); !errors.Is(err, record.ErrNotFound) {
		t.Fatalf("Update missing: want ErrNotFound, got %v", err)
	}
	if err := g.Update(ctx, "stock", 1, nil); err != nil {
		t.Fatalf("empty update must be a no-op: %v", err)
	}

	if err := g.Delete(ctx, "stock", 1); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if err := g.Delete(ctx, "stock", 1); !errors.Is(err, record.ErrNotFound) {
		t.Fatalf("Delete twice: want ErrNotFound, got %v", err)
	}
	if n, _ := g.Count(ctx, "stock"); n != 2 {
		t.Fatalf("Count after delete = %d", n)
	}
}

func TestInsert_DuplicateNaturalKeySurfaces(t *testing.T) {
	g := NewGateway(openTestDB(t))
	seed(t, g)

	_, err := g.Insert(context.Background(), "stock", record.Record{"medicaments_id": 1, "institution_id": 1, "quantite": 3})
	if err == nil {
		t.Fatal("expected a unique constraint error")
	}
}

func TestSelect_UnknownTable(t *testing.T) {
	g := NewGateway(openTestDB(t))
	if _, err := g.Select(context.Background(), "nope", record.Query{}); err == nil {
		t.Fatal("expected error for missing table")
	}
}
