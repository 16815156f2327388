package http

import (
	"time"

	"juvenat-admin/internal/adapter/middleware"
	"juvenat-admin/internal/usecase/browser"
	"juvenat-admin/internal/usecase/dashboard"
	"juvenat-admin/internal/usecase/editor"
	"juvenat-admin/internal/usecase/search"
	"juvenat-admin/internal/usecase/session"

	requisitionuc "juvenat-admin/internal/usecase/requisition"

	"github.com/labstack/echo/v4"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

type Deps struct {
	Sessions     *session.Usecase
	Requisitions *requisitionuc.Usecase
	Browser      *browser.Usecase
	Editor       *editor.Usecase
	Search       *search.Usecase
	Dashboard    *dashboard.Usecase

	Redis    *redis.Client
	IdempTTL time.Duration
	Log      *zap.Logger
}

// Register mounts the API. Routes under /api/session stay reachable while
// the idle lock is engaged; everything else behind RequireActive answers
// 423 until the PIN is re-entered.
func Register(e *echo.Echo, d Deps) {
	e.Validator = NewValidator()

	sh := NewSessionHandler(d.Sessions)
	rh := NewRequisitionHandler(d.Requisitions, d.Sessions)
	th := NewTableHandler(d.Browser, d.Sessions)
	fh := NewFormHandler(d.Editor, d.Sessions)
	qh := NewSearchHandler(d.Search, d.Dashboard, d.Sessions)

	e.GET("/health", NewHandler().Health)
	e.POST("/api/auth/login", sh.Login)

	authed := e.Group("/api", middleware.RequireSession(d.Sessions))
	authed.POST("/auth/logout", sh.Logout)
	authed.GET("/session", sh.State)
	authed.POST("/session/lock", sh.Lock)
	authed.POST("/session/unlock", sh.Unlock)

	active := authed.Group("", middleware.RequireActive(d.Sessions))
	idem := middleware.Idempotency(d.Redis, d.IdempTTL, d.Log)

	active.POST("/shell/navigate", sh.Navigate)
	active.POST("/shell/workspace", sh.SwitchWorkspace)
	active.POST("/shell/form/edit", sh.OpenEditor)
	active.POST("/shell/form/create", sh.OpenCreate)
	active.POST("/shell/form/close", sh.CloseForm)
	active.GET("/shell/form", fh.Get)
	active.POST("/shell/form/save", fh.Save, idem)
	active.GET("/amount-words", fh.AmountInWords)

	active.GET("/dashboard", qh.Dashboard)
	active.GET("/search", qh.Search)

	active.GET("/tables/:table", th.Page)
	active.GET("/tables/:table/export", th.Export)
	active.DELETE("/tables/:table/:id", th.Delete, idem)

	active.GET("/requisitions", rh.List)
	active.GET("/requisitions/tabs", rh.Tabs)
	active.GET("/requisitions/requesters", rh.Requesters)
	active.GET("/requisitions/:id", rh.Get)
	active.GET("/requisitions/:id/articles", rh.LineItems)
	active.POST("/requisitions", rh.Create, idem)
	active.PATCH("/requisitions/:id/etat", rh.SetStatus, idem)
	active.POST("/requisitions/:id/flags/:flag", rh.ToggleFlag, idem)
}
