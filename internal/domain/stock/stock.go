package stock

import (
	"context"
	"errors"
	"strings"
	"time"

	"juvenat-admin/internal/domain/record"
)

const (
	Table = "stock"

	// LowStockThreshold is fixed; rows strictly below it are flagged.
	LowStockThreshold = 20

	DefaultInstitutionID = 1
)

var ErrNotFound = errors.New("stock row not found")

// Table: stock
type Stock struct {
	ID            int64     `gorm:"column:id;primaryKey;autoIncrement" json:"id"`
	MedicamentsID int64     `gorm:"column:medicaments_id;uniqueIndex:ux_stock_med_inst" json:"medicaments_id"`
	InstitutionID int64     `gorm:"column:institution_id;uniqueIndex:ux_stock_med_inst;default:1" json:"institution_id"`
	Quantite      float64   `gorm:"column:quantite" json:"quantite"`
	PrixVente     float64   `gorm:"column:prix_vente" json:"prix_vente"`
	CreatedAt     time.Time `gorm:"column:created_at;autoCreateTime" json:"created_at"`

	// joined from medicaments.Nom, never persisted
	MedicamentNom string `gorm:"-" json:"medicament_nom,omitempty"`
}

func (Stock) TableName() string { return Table }

func IsLow(quantite float64) bool { return quantite < LowStockThreshold }

func (s Stock) Low() bool { return IsLow(s.Quantite) }

// Value is the sale value of the row.
func (s Stock) Value() float64 { return s.Quantite * s.PrixVente }

// MedicamentExpand flattens medicaments.Nom into medicament_nom.
var MedicamentExpand = record.Expand{Table: "medicaments", ForeignKey: "medicaments_id", Column: "Nom", As: "medicament_nom"}

func FromRecord(rec record.Record) Stock {
	s := Stock{
		CreatedAt:     record.Time(rec["created_at"]),
		MedicamentNom: record.Stringify(rec["medicament_nom"]),
	}
	s.ID = toInt(rec["id"])
	s.MedicamentsID = toInt(rec["medicaments_id"])
	s.InstitutionID = toInt(rec["institution_id"])
	s.Quantite, _ = record.Number(rec["quantite"])
	s.PrixVente, _ = record.Number(rec["prix_vente"])
	// nested join shape: {"medicaments": {"Nom": ...}}
	if s.MedicamentNom == "" {
		if m, ok := rec["medicaments"].(map[string]any); ok {
			s.MedicamentNom = record.Stringify(m["Nom"])
		}
	}
	return s
}

// MatchesMedicament reports whether the joined medication name contains term.
func (s Stock) MatchesMedicament(term string) bool {
	return strings.Contains(strings.ToLower(s.MedicamentNom), strings.ToLower(strings.TrimSpace(term)))
}

func toInt(v any) int64 {
	f, ok := record.Number(v)
	if !ok {
		return 0
	}
	return int64(f)
}

type Repository interface {
	// FindByKey looks a row up by its natural key; ErrNotFound when absent.
	FindByKey(ctx context.Context, medicamentsID, institutionID any) (*Stock, error)
}
