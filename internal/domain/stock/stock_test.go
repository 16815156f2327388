package stock

import (
	"testing"

	"juvenat-admin/internal/domain/record"
)

func TestIsLow_Boundary(t *testing.T) {
	if !IsLow(19) {
		t.Fatal("19 must be low stock")
	}
	if IsLow(20) {
		t.Fatal("20 must not be low stock")
	}
	if !IsLow(0) || IsLow(250) {
		t.Fatal("unexpected low-stock result")
	}
}

func TestFromRecord(t *testing.T) {
	s := FromRecord(record.Record{
		"id": int64(4), "medicaments_id": "12", "institution_id": float64(1),
		"quantite": "19", "prix_vente": 25.5, "medicament_nom": "Amoxicilline",
	})
	if s.ID != 4 || s.MedicamentsID != 12 || s.InstitutionID != 1 {
		t.Fatalf("ids = %+v", s)
	}
	if !s.Low() || s.Value() != 19*25.5 {
		t.Fatalf("low=%v value=%v", s.Low(), s.Value())
	}
	if !s.MatchesMedicament("amox") || s.MatchesMedicament("ibu") {
		t.Fatal("medicament match mismatch")
	}
}

func TestFromRecord_NestedJoin(t *testing.T) {
	s := FromRecord(record.Record{"id": 1, "medicaments": map[string]any{"Nom": "Paracétamol"}, "quantite": 40})
	if s.MedicamentNom != "Paracétamol" || s.Low() {
		t.Fatalf("unexpected stock %+v", s)
	}
}
