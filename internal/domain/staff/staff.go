package staff

import (
	"context"
	"crypto/subtle"
	"encoding/json"
	"errors"
	"strings"

	"juvenat-admin/internal/domain/record"

	"golang.org/x/crypto/bcrypt"
)

const Table = "personnel"

var (
	ErrNotFound   = errors.New("staff member not found")
	ErrNoAccess   = errors.New("staff member has no admin_site access")
	ErrInvalidPIN = errors.New("invalid PIN")
)

// Table: personnel
type Staff struct {
	ID        string     `json:"id"`
	Nom       string     `json:"Nom"`
	Prenom    string     `json:"Prenom"`
	Role      string     `json:"role"`
	Function  string     `json:"Function"`
	Service   string     `json:"service"`
	Mail      string     `json:"Mail"`
	Phone     string     `json:"Phone"`
	AdminSite StringList `json:"admin_site"`
	PinCode   string     `json:"-"`
}

func (s Staff) FullName() string {
	return strings.TrimSpace(s.Prenom + " " + s.Nom)
}

// CanSignIn requires a non-empty access scope.
func (s Staff) CanSignIn() bool { return len(s.AdminSite) > 0 }

func (s Staff) HasScope(scope string) bool {
	for _, v := range s.AdminSite {
		if v == scope {
			return true
		}
	}
	return false
}

// VerifyPIN accepts bcrypt hashes and legacy plain-text pins.
func (s Staff) VerifyPIN(pin string) bool {
	if s.PinCode == "" || pin == "" {
		return false
	}
	if strings.HasPrefix(s.PinCode, "$2") {
		return bcrypt.CompareHashAndPassword([]byte(s.PinCode), []byte(pin)) == nil
	}
	return subtle.ConstantTimeCompare([]byte(s.PinCode), []byte(pin)) == 1
}

func HashPIN(pin string) (string, error) {
	b, err := bcrypt.GenerateFromPassword([]byte(pin), bcrypt.DefaultCost)
	return string(b), err
}

// StringList reads admin_site stored as an array, JSON text, or a
// comma-separated string.
type StringList []string

func ParseStringList(v any) StringList {
	switch t := v.(type) {
	case nil:
		return nil
	case []string:
		return clean(t)
	case []any:
		out := make([]string, 0, len(t))
		for _, el := range t {
			out = append(out, record.Stringify(el))
		}
		return clean(out)
	case StringList:
		return clean(t)
	}
	s := strings.TrimSpace(record.Stringify(v))
	if strings.HasPrefix(s, "[") {
		var arr []string
		if err := json.Unmarshal([]byte(s), &arr); err == nil {
			return clean(arr)
		}
	}
	// postgres array literal {a,b}
	s = strings.TrimSuffix(strings.TrimPrefix(s, "{"), "}")
	return clean(strings.Split(s, ","))
}

func clean(in []string) StringList {
	out := make(StringList, 0, len(in))
	for _, s := range in {
		s = strings.Trim(strings.TrimSpace(s), `"`)
		if s != "" {
			out = append(out, s)
		}
	}
	if len(out) == 0 {
		return nil
	}
	return out
}

func FromRecord(rec record.Record) Staff {
	return Staff{
		ID:        rec.ID(),
		Nom:       record.Stringify(rec["Nom"]),
		Prenom:    record.Stringify(rec["Prenom"]),
		Role:      record.Stringify(rec["role"]),
		Function:  record.Stringify(rec["Function"]),
		Service:   record.Stringify(rec["service"]),
		Mail:      record.Stringify(rec["Mail"]),
		Phone:     record.Stringify(rec["Phone"]),
		AdminSite: ParseStringList(rec["admin_site"]),
		PinCode:   record.Stringify(rec["pin_code"]),
	}
}

// Requester is the picker entry for requisition creation.
type Requester struct {
	ID     string `json:"id"`
	Nom    string `json:"Nom"`
	Prenom string `json:"Prenom"`
}

func (r Requester) Label() string { return strings.TrimSpace(r.Prenom + " " + r.Nom) }

type Repository interface {
	GetByID(ctx context.Context, id string) (*Staff, error)
	GetByMail(ctx context.Context, mail string) (*Staff, error)
	// Requesters lists staff ordered by Nom.
	Requesters(ctx context.Context) ([]Requester, error)
}
