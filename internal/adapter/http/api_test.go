package http

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	stdhttp "net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"juvenat-admin/internal/adapter/repository/redisstore"
	"juvenat-admin/internal/domain/record"
	"juvenat-admin/internal/domain/requisition"
	"juvenat-admin/internal/domain/staff"
	"juvenat-admin/internal/domain/stock"
	"juvenat-admin/internal/testutil/gatewaymock"
	"juvenat-admin/internal/testutil/requisitionmock"
	"juvenat-admin/internal/testutil/staffmock"
	"juvenat-admin/internal/testutil/stockmock"
	"juvenat-admin/internal/usecase/browser"
	"juvenat-admin/internal/usecase/dashboard"
	"juvenat-admin/internal/usecase/editor"
	"juvenat-admin/internal/usecase/search"
	"juvenat-admin/internal/usecase/session"
	"juvenat-admin/pkg/id"

	requisitionuc "juvenat-admin/internal/usecase/requisition"

	miniredis "github.com/alicebob/miniredis/v2"
	"github.com/labstack/echo/v4"
	"github.com/redis/go-redis/v9"
)

const idleLock = 2 * time.Minute

type apiEnv struct {
	e      *echo.Echo
	mr     *miniredis.Miniredis
	token  string
	reqs   *requisitionmock.Repo
	gw     *gatewaymock.Gateway
	stocks *stockmock.Repo
}

func newAPI(t *testing.T, scopes ...string) *apiEnv {
	t.Helper()
	mr, err := miniredis.Run()
	if err != nil {
		t.Fatalf("miniredis: %v", err)
	}
	t.Cleanup(mr.Close)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = rdb.Close() })

	nurse := staff.Staff{ID: "42", Nom: "Pierre", Prenom: "Marie", AdminSite: scopes, PinCode: "1234"}
	staffRepo := &staffmock.Repo{
		GetByIDFn: func(_ context.Context, id string) (*staff.Staff, error) {
			if id != nurse.ID {
				return nil, staff.ErrNotFound
			}
			s := nurse
			return &s, nil
		},
		RequestersFn: func(context.Context) ([]staff.Requester, error) {
			return []staff.Requester{{ID: "7", Nom: "Joseph", Prenom: "Anne"}}, nil
		},
	}
	env := &apiEnv{mr: mr, reqs: &requisitionmock.Repo{}, gw: &gatewaymock.Gateway{}, stocks: &stockmock.Repo{}}
	sessions := session.NewUsecase(staffRepo, redisstore.NewSessionStore(rdb), session.NewSigner("test-secret-0123456789", time.Hour), idleLock, nil)

	env.e = echo.New()
	Register(env.e, Deps{
		Sessions:     sessions,
		Requisitions: requisitionuc.NewUsecase(env.reqs, staffRepo, nil),
		Browser:      browser.NewUsecase(env.gw, 2, nil),
		Editor:       editor.NewUsecase(env.gw, env.stocks, nil),
		Search:       search.NewUsecase(env.gw, search.Config{}, nil),
		Dashboard:    dashboard.NewUsecase(env.gw, nil),
		Redis:        rdb,
		IdempTTL:     time.Minute,
	})

	rec := env.do(t, stdhttp.MethodPost, "/api/auth/login", map[string]string{"identifier": "42", "pin": "1234"})
	if rec.Code != stdhttp.StatusOK {
		t.Fatalf("login = %d %s", rec.Code, rec.Body.String())
	}
	var out struct {
		Token string `json:"token"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &out); err != nil || out.Token == "" {
		t.Fatalf("login body: %v %s", err, rec.Body.String())
	}
	env.token = out.Token
	return env
}

// do sends an authenticated request; mutating requests get fresh
// idempotency headers.
func (env *apiEnv) do(t *testing.T, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var r *bytes.Reader
	if body != nil {
		b, err := json.Marshal(body)
		if err != nil {
			t.Fatalf("marshal: %v", err)
		}
		r = bytes.NewReader(b)
	} else {
		r = bytes.NewReader(nil)
	}
	req := httptest.NewRequest(method, path, r)
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	if env.token != "" {
		req.Header.Set(echo.HeaderAuthorization, "Bearer "+env.token)
	}
	if method != stdhttp.MethodGet {
		req.Header.Set("Ax-Request-Id", id.New())
		req.Header.Set("Ax-Request-At", time.Now().UTC().Format(time.RFC3339))
	}
	rec := httptest.NewRecorder()
	env.e.ServeHTTP(rec, req)
	return rec
}

func decode[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	if err := json.Unmarshal(rec.Body.Bytes(), &v); err != nil {
		t.Fatalf("bad json: %v; raw=%s", err, rec.Body.String())
	}
	return v
}

func TestLogin_RejectsBadPIN(t *testing.T) {
	env := newAPI(t, "juvenat")
	env.token = ""

	rec := env.do(t, stdhttp.MethodPost, "/api/auth/login", map[string]string{"identifier": "42", "pin": "9999"})
	if rec.Code != stdhttp.StatusUnauthorized {
		t.Fatalf("status = %d, want 401", rec.Code)
	}
	rec = env.do(t, stdhttp.MethodPost, "/api/auth/login", map[string]string{"pin": "1234"})
	if rec.Code != stdhttp.StatusUnprocessableEntity {
		t.Fatalf("missing identifier = %d, want 422", rec.Code)
	}
	if er := decode[ErrorResponse](t, rec); !containsFieldMsg(er.Details, "Identifier", "is required") {
		t.Fatalf("details = %+v", er.Details)
	}
	if rec := env.do(t, stdhttp.MethodGet, "/api/session", nil); rec.Code != stdhttp.StatusUnauthorized {
		t.Fatalf("no token = %d, want 401", rec.Code)
	}
}

func TestSession_StateAndIdleLock(t *testing.T) {
	env := newAPI(t, "juvenat", "rh")
	env.gw.CountFn = func(context.Context, string, ...record.Filter) (int64, error) { return 4, nil }
	env.gw.SelectFn = func(context.Context, string, record.Query) ([]record.Record, error) {
		return []record.Record{{"quantite": 5, "prix_vente": 10}, {"quantite": 30, "prix_vente": 1}}, nil
	}

	type stateBody struct {
		State struct {
			Screen string `json:"screen"`
			Locked bool   `json:"locked"`
		} `json:"state"`
		Workspace struct {
			ID string `json:"id"`
		} `json:"workspace"`
	}
	rec := env.do(t, stdhttp.MethodGet, "/api/session", nil)
	st := decode[stateBody](t, rec)
	if rec.Code != stdhttp.StatusOK || st.Workspace.ID != "hcj" || st.State.Screen != "dashboard" {
		t.Fatalf("state = %d %s", rec.Code, rec.Body.String())
	}

	rec = env.do(t, stdhttp.MethodGet, "/api/dashboard", nil)
	stats := decode[dashboard.StatsDTO](t, rec)
	if rec.Code != stdhttp.StatusOK || stats.Medicaments != 4 || stats.LowStock != 1 || stats.InventoryValue != 80 {
		t.Fatalf("dashboard = %d %s", rec.Code, rec.Body.String())
	}

	env.mr.FastForward(idleLock + time.Second)

	if rec := env.do(t, stdhttp.MethodGet, "/api/dashboard", nil); rec.Code != stdhttp.StatusLocked {
		t.Fatalf("after idle = %d, want 423", rec.Code)
	}
	rec = env.do(t, stdhttp.MethodGet, "/api/session", nil)
	if st := decode[stateBody](t, rec); !st.State.Locked {
		t.Fatalf("state should be locked: %s", rec.Body.String())
	}
	if rec := env.do(t, stdhttp.MethodPost, "/api/session/unlock", map[string]string{"pin": "0000"}); rec.Code != stdhttp.StatusUnauthorized {
		t.Fatalf("unlock wrong pin = %d, want 401", rec.Code)
	}
	if rec := env.do(t, stdhttp.MethodPost, "/api/session/unlock", map[string]string{"pin": "1234"}); rec.Code != stdhttp.StatusOK {
		t.Fatalf("unlock = %d %s", rec.Code, rec.Body.String())
	}
	if rec := env.do(t, stdhttp.MethodGet, "/api/dashboard", nil); rec.Code != stdhttp.StatusOK {
		t.Fatalf("after unlock = %d", rec.Code)
	}

	if rec := env.do(t, stdhttp.MethodPost, "/api/shell/workspace", map[string]string{"workspace": "abc"}); rec.Code != stdhttp.StatusForbidden {
		t.Fatalf("switch to abc = %d, want 403", rec.Code)
	}
	rec = env.do(t, stdhttp.MethodPost, "/api/shell/workspace", map[string]string{"workspace": "rh"})
	if st := decode[stateBody](t, rec); rec.Code != stdhttp.StatusOK || st.Workspace.ID != "rh" {
		t.Fatalf("switch to rh = %d %s", rec.Code, rec.Body.String())
	}

	if rec := env.do(t, stdhttp.MethodPost, "/api/auth/logout", nil); rec.Code != stdhttp.StatusNoContent {
		t.Fatalf("logout = %d", rec.Code)
	}
	if rec := env.do(t, stdhttp.MethodGet, "/api/session", nil); rec.Code != stdhttp.StatusUnauthorized {
		t.Fatalf("after logout = %d, want 401", rec.Code)
	}
}

func articles(t *testing.T, v any) []byte {
	t.Helper()
	b, err := json.Marshal(v)
	if err != nil {
		t.Fatal(err)
	}
	return b
}

func TestRequisitions(t *testing.T) {
	env := newAPI(t, "juvenat")
	rows := []requisition.Requisition{
		{ID: "r1", Personnel: "7", Etat: "En Attente", Article: articles(t, []map[string]any{{"nom": "Gants", "quantite": 2}})},
		{ID: "r2", Personnel: "8", Etat: "Approuvé"},
		{ID: "r3", Personnel: "9", Etat: "???"},
	}
	env.reqs.ListFn = func(context.Context) ([]requisition.Requisition, error) { return rows, nil }
	env.reqs.GetByIDFn = func(_ context.Context, id string) (*requisition.Requisition, error) {
		for _, r := range rows {
			if r.ID == id {
				r := r
				return &r, nil
			}
		}
		return nil, requisition.ErrNotFound
	}
	created := 0
	env.reqs.CreateFn = func(_ context.Context, r *requisition.Requisition) error {
		created++
		r.ID = "new"
		return nil
	}

	rec := env.do(t, stdhttp.MethodGet, "/api/requisitions", nil)
	if list := decode[[]requisitionuc.RequisitionDTO](t, rec); rec.Code != stdhttp.StatusOK || len(list) != 2 {
		t.Fatalf("pending tab = %d %s", rec.Code, rec.Body.String())
	}
	rec = env.do(t, stdhttp.MethodGet, "/api/requisitions?etat=Approuv%C3%A9", nil)
	if list := decode[[]requisitionuc.RequisitionDTO](t, rec); len(list) != 1 || list[0].ID != "r2" {
		t.Fatalf("approved tab = %s", rec.Body.String())
	}
	if rec := env.do(t, stdhttp.MethodGet, "/api/requisitions?etat=closed", nil); rec.Code != stdhttp.StatusUnprocessableEntity {
		t.Fatalf("bad etat = %d, want 422", rec.Code)
	}
	rec = env.do(t, stdhttp.MethodGet, "/api/requisitions/tabs", nil)
	if tabs := decode[[]requisitionuc.TabDTO](t, rec); len(tabs) != 3 || tabs[0].Count != 2 {
		t.Fatalf("tabs = %s", rec.Body.String())
	}
	rec = env.do(t, stdhttp.MethodGet, "/api/requisitions/r1/articles", nil)
	if items := decode[[]requisition.LineItem](t, rec); len(items) != 1 || items[0].Nom != "Gants" {
		t.Fatalf("articles = %s", rec.Body.String())
	}
	if rec := env.do(t, stdhttp.MethodGet, "/api/requisitions/zzz", nil); rec.Code != stdhttp.StatusNotFound {
		t.Fatalf("missing = %d, want 404", rec.Code)
	}
	rec = env.do(t, stdhttp.MethodGet, "/api/requisitions/requesters", nil)
	if !strings.Contains(rec.Body.String(), `"label":"Anne Joseph"`) {
		t.Fatalf("requesters = %s", rec.Body.String())
	}

	rec = env.do(t, stdhttp.MethodPost, "/api/requisitions", map[string]any{"articles": []any{}})
	if rec.Code != stdhttp.StatusUnprocessableEntity || created != 0 {
		t.Fatalf("invalid create = %d created=%d", rec.Code, created)
	}
	rec = env.do(t, stdhttp.MethodPost, "/api/requisitions", map[string]any{
		"personnel": "7",
		"articles":  []map[string]any{{"nom": "Seringues", "quantite": 10}},
	})
	dto := decode[requisitionuc.RequisitionDTO](t, rec)
	if rec.Code != stdhttp.StatusCreated || dto.Etat != requisition.StatusPending || len(dto.LineItems) != 1 {
		t.Fatalf("create = %d %s", rec.Code, rec.Body.String())
	}

	if rec := env.do(t, stdhttp.MethodPatch, "/api/requisitions/r1/etat", map[string]string{"etat": "Closed"}); rec.Code != stdhttp.StatusUnprocessableEntity {
		t.Fatalf("bad status = %d, want 422", rec.Code)
	}
	rec = env.do(t, stdhttp.MethodPatch, "/api/requisitions/r1/etat", map[string]string{"etat": "Rejeté"})
	if dto := decode[requisitionuc.RequisitionDTO](t, rec); rec.Code != stdhttp.StatusOK || dto.Etat != requisition.StatusRejected {
		t.Fatalf("set status = %d %s", rec.Code, rec.Body.String())
	}
	if rec := env.do(t, stdhttp.MethodPost, "/api/requisitions/r1/flags/proforma", nil); rec.Code != stdhttp.StatusConflict {
		t.Fatalf("flag on pending = %d, want 409", rec.Code)
	}
	rec = env.do(t, stdhttp.MethodPost, "/api/requisitions/r2/flags/livraison", nil)
	if dto := decode[requisitionuc.RequisitionDTO](t, rec); rec.Code != stdhttp.StatusOK || !dto.Livraison {
		t.Fatalf("flag on approved = %d %s", rec.Code, rec.Body.String())
	}
}

func TestRequisitions_OutsideWorkspace(t *testing.T) {
	env := newAPI(t, "rh")
	if rec := env.do(t, stdhttp.MethodGet, "/api/requisitions", nil); rec.Code != stdhttp.StatusForbidden {
		t.Fatalf("status = %d, want 403", rec.Code)
	}
}

func TestMutationsRequireIdempotencyHeaders(t *testing.T) {
	env := newAPI(t, "juvenat")
	req := httptest.NewRequest(stdhttp.MethodPost, "/api/requisitions", strings.NewReader(`{}`))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	req.Header.Set(echo.HeaderAuthorization, "Bearer "+env.token)
	rec := httptest.NewRecorder()
	env.e.ServeHTTP(rec, req)
	if rec.Code != stdhttp.StatusBadRequest {
		t.Fatalf("status = %d, want 400", rec.Code)
	}
}

func TestTables(t *testing.T) {
	env := newAPI(t, "juvenat")
	env.gw.SelectFn = func(_ context.Context, table string, q record.Query) ([]record.Record, error) {
		if table != "stock" || len(q.Expand) != 1 || q.Limit != 2 {
			return nil, errors.New("unexpected query")
		}
		return []record.Record{
			{"id": 1, "medicament_nom": "Paracetamol", "quantite": 19, "prix_vente": 2},
			{"id": 2, "medicament_nom": "Amoxicilline", "quantite": 20, "prix_vente": 5},
		}, nil
	}
	env.gw.CountFn = func(context.Context, string, ...record.Filter) (int64, error) { return 7, nil }
	var deleted any
	env.gw.DeleteFn = func(_ context.Context, _ string, id any) error { deleted = id; return nil }

	rec := env.do(t, stdhttp.MethodGet, "/api/tables/stock?f.medicament_nom=PARA", nil)
	page := decode[browser.PageDTO](t, rec)
	if rec.Code != stdhttp.StatusOK || page.Total != 7 || page.Loaded != 2 || len(page.Rows) != 1 {
		t.Fatalf("page = %d %s", rec.Code, rec.Body.String())
	}
	if page.Rows[0].LowStock == nil || !*page.Rows[0].LowStock {
		t.Fatalf("quantite 19 must be low: %+v", page.Rows[0])
	}

	rec = env.do(t, stdhttp.MethodGet, "/api/tables/stock/export?q=amox", nil)
	if rec.Code != stdhttp.StatusOK || !strings.HasPrefix(rec.Header().Get(echo.HeaderContentType), "text/csv") {
		t.Fatalf("export = %d %q", rec.Code, rec.Header().Get(echo.HeaderContentType))
	}
	if got := rec.Header().Get(echo.HeaderContentDisposition); got != `attachment; filename="stock_export.csv"` {
		t.Fatalf("disposition = %q", got)
	}
	if rec.Header().Get("X-Row-Count") != "1" || !strings.Contains(rec.Body.String(), `"Amoxicilline"`) {
		t.Fatalf("export body = %s", rec.Body.String())
	}

	if rec := env.do(t, stdhttp.MethodGet, "/api/tables/ordonnances", nil); rec.Code != stdhttp.StatusForbidden {
		t.Fatalf("inactive table = %d, want 403", rec.Code)
	}
	if rec := env.do(t, stdhttp.MethodDelete, "/api/tables/stock/1", nil); rec.Code != stdhttp.StatusBadRequest || deleted != nil {
		t.Fatalf("unconfirmed delete = %d deleted=%v", rec.Code, deleted)
	}
	if rec := env.do(t, stdhttp.MethodDelete, "/api/tables/stock/1?confirm=true", nil); rec.Code != stdhttp.StatusOK || deleted != "1" {
		t.Fatalf("confirmed delete = %d deleted=%v", rec.Code, deleted)
	}

	env.gw.SelectFn = func(context.Context, string, record.Query) ([]record.Record, error) {
		return nil, errors.New(`relation "stock" does not exist`)
	}
	rec = env.do(t, stdhttp.MethodGet, "/api/tables/stock", nil)
	if er := decode[ErrorResponse](t, rec); rec.Code != stdhttp.StatusBadGateway || !strings.Contains(er.Error, "does not exist") {
		t.Fatalf("backend error = %d %s", rec.Code, rec.Body.String())
	}
}

func TestForms_StockUpsertThroughShell(t *testing.T) {
	env := newAPI(t, "juvenat")
	env.stocks.FindByKeyFn = func(context.Context, any, any) (*stock.Stock, error) { return nil, stock.ErrNotFound }
	var inserted record.Record
	env.gw.InsertFn = func(_ context.Context, table string, values record.Record) (record.Record, error) {
		inserted = values.Clone()
		out := values.Clone()
		out["id"] = 11
		return out, nil
	}

	if rec := env.do(t, stdhttp.MethodGet, "/api/shell/form", nil); rec.Code != stdhttp.StatusBadRequest {
		t.Fatalf("no form = %d, want 400", rec.Code)
	}
	if rec := env.do(t, stdhttp.MethodPost, "/api/shell/navigate", map[string]string{"screen": "stock"}); rec.Code != stdhttp.StatusOK {
		t.Fatalf("navigate = %d %s", rec.Code, rec.Body.String())
	}
	rec := env.do(t, stdhttp.MethodPost, "/api/shell/form/create", map[string]any{
		"initial": map[string]any{"medicaments_id": 3},
		"locked":  []string{"medicaments_id"},
		"upsert":  true,
	})
	if rec.Code != stdhttp.StatusOK {
		t.Fatalf("open create = %d %s", rec.Code, rec.Body.String())
	}

	rec = env.do(t, stdhttp.MethodGet, "/api/shell/form", nil)
	form := decode[editor.FormDTO](t, rec)
	if rec.Code != stdhttp.StatusOK || form.Table != "stock" || form.Mode != editor.ModeCreate || len(form.Locked) != 1 {
		t.Fatalf("form = %d %s", rec.Code, rec.Body.String())
	}

	rec = env.do(t, stdhttp.MethodPost, "/api/shell/form/save", map[string]any{"values": map[string]any{"quantite": "douze"}})
	if er := decode[ErrorResponse](t, rec); rec.Code != stdhttp.StatusUnprocessableEntity || !containsFieldMsg(er.Details, "quantite", "number") {
		t.Fatalf("invalid save = %d %s", rec.Code, rec.Body.String())
	}
	if inserted != nil {
		t.Fatal("nothing may be written when validation fails")
	}

	rec = env.do(t, stdhttp.MethodPost, "/api/shell/form/save", map[string]any{"values": map[string]any{"quantite": "12", "medicaments_id": 9}})
	if rec.Code != stdhttp.StatusOK {
		t.Fatalf("save = %d %s", rec.Code, rec.Body.String())
	}
	if n, _ := record.Number(inserted["medicaments_id"]); n != 3 {
		t.Fatalf("locked field overwritten: %+v", inserted)
	}
	if n, _ := record.Number(inserted["quantite"]); n != 12 {
		t.Fatalf("quantite = %v", inserted["quantite"])
	}
	var out struct {
		State struct {
			State struct {
				Form     any `json:"form"`
				Revision int `json:"revision"`
			} `json:"state"`
		} `json:"state"`
	}
	_ = json.Unmarshal(rec.Body.Bytes(), &out)
	if out.State.State.Form != nil || out.State.State.Revision != 1 {
		t.Fatalf("state after save = %s", rec.Body.String())
	}
}

func TestSearchAndAmountWords(t *testing.T) {
	env := newAPI(t, "juvenat")
	env.gw.SelectFn = func(context.Context, string, record.Query) ([]record.Record, error) { return nil, nil }

	rec := env.do(t, stdhttp.MethodGet, "/api/search?q=s", nil)
	resp := decode[search.Response](t, rec)
	if rec.Code != stdhttp.StatusOK || len(resp.Results) == 0 || resp.Results[0].Type != search.TypeNavigation {
		t.Fatalf("quick nav = %d %s", rec.Code, rec.Body.String())
	}
	rec = env.do(t, stdhttp.MethodGet, "/api/search?q=zzzz", nil)
	resp = decode[search.Response](t, rec)
	if rec.Code != stdhttp.StatusOK || len(resp.Results) != 1 || resp.Results[0].Type != search.TypeEmpty {
		t.Fatalf("empty search = %d %s", rec.Code, rec.Body.String())
	}

	for _, bad := range []string{"abc", "1e19", "NaN"} {
		if rec := env.do(t, stdhttp.MethodGet, "/api/amount-words?montant="+bad, nil); rec.Code != stdhttp.StatusUnprocessableEntity {
			t.Fatalf("montant %s = %d, want 422", bad, rec.Code)
		}
	}
	rec = env.do(t, stdhttp.MethodGet, "/api/amount-words?montant=100", nil)
	if words := decode[map[string]string](t, rec); words["montant_lettre"] != "Cent Gourdes" {
		t.Fatalf("words = %s", rec.Body.String())
	}
}
