package main

import (
	"context"
	"errors"
	"flag"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/labstack/echo/v4"
	echomw "github.com/labstack/echo/v4/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	httpadp "juvenat-admin/internal/adapter/http"
	"juvenat-admin/internal/adapter/middleware"
	"juvenat-admin/internal/adapter/repository/entity"
	"juvenat-admin/internal/adapter/repository/postgrest"
	"juvenat-admin/internal/adapter/repository/redisstore"
	"juvenat-admin/internal/adapter/repository/sqlrepo"
	"juvenat-admin/internal/config"
	"juvenat-admin/internal/domain/record"
	"juvenat-admin/internal/infrastructure/cache"
	"juvenat-admin/internal/infrastructure/db"
	"juvenat-admin/internal/usecase/browser"
	"juvenat-admin/internal/usecase/dashboard"
	"juvenat-admin/internal/usecase/editor"
	"juvenat-admin/internal/usecase/search"
	"juvenat-admin/internal/usecase/session"
	"juvenat-admin/pkg/logger"

	requisitionuc "juvenat-admin/internal/usecase/requisition"
)

func main() {
	migrate := flag.Bool("migrate", false, "create local tables, then exit")
	flag.Parse()

	cfg := config.Load()
	log := logger.Must(logger.New(cfg.LogLevel))
	defer func() { _ = log.Sync() }()

	if err := cfg.Validate(); err != nil {
		log.Fatal("invalid config", zap.Error(err))
	}

	gw, err := openGateway(cfg, *migrate, log)
	if err != nil {
		log.Fatal("open gateway", zap.String("driver", cfg.DBDriver), zap.Error(err))
	}
	if gw == nil {
		return
	}

	rdb, err := cache.OpenRedis(cfg.RedisAddr, cfg.RedisDB)
	if err != nil {
		log.Fatal("open redis", zap.String("addr", cfg.RedisAddr), zap.Error(err))
	}
	defer rdb.Close()

	staffRepo := entity.NewStaffRepository(gw)
	sessions := session.NewUsecase(
		staffRepo,
		redisstore.NewSessionStore(rdb),
		session.NewSigner(cfg.JWTSecret, cfg.JWTTTL()),
		cfg.IdleLock(),
		logger.Named(log, "session"),
	)

	e := echo.New()
	e.HideBanner = true
	e.Use(echomw.Recover(), middleware.RequestLogger(logger.Named(log, "http")), middleware.Metrics())
	e.GET("/metrics", echo.WrapHandler(promhttp.Handler()))

	httpadp.Register(e, httpadp.Deps{
		Sessions:     sessions,
		Requisitions: requisitionuc.NewUsecase(entity.NewRequisitionRepository(gw), staffRepo, logger.Named(log, "requisition")),
		Browser:      browser.NewUsecase(gw, cfg.TablePageSize, logger.Named(log, "browser")),
		Editor:       editor.NewUsecase(gw, entity.NewStockRepository(gw), logger.Named(log, "editor")),
		Search: search.NewUsecase(gw, search.Config{
			Debounce:  cfg.SearchDebounce(),
			CacheTTL:  cfg.SearchCacheTTL(),
			CacheSize: cfg.SearchCacheSize,
		}, logger.Named(log, "search")),
		Dashboard: dashboard.NewUsecase(gw, logger.Named(log, "dashboard")),
		Redis:     rdb,
		IdempTTL:  cfg.IdempTTL(),
		Log:       logger.Named(log, "idempotency"),
	})

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	go func() {
		addr := ":" + cfg.AppPort
		log.Info("listening", zap.String("addr", addr), zap.String("driver", cfg.DBDriver))
		if err := e.Start(addr); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal("server stopped", zap.Error(err))
		}
	}()

	<-ctx.Done()
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := e.Shutdown(shutdownCtx); err != nil {
		log.Error("shutdown", zap.Error(err))
	}
}

// openGateway returns nil, nil after a -migrate run.
func openGateway(cfg *config.Config, migrate bool, log *zap.Logger) (record.Gateway, error) {
	if cfg.DBDriver == config.DriverPostgREST {
		if migrate {
			return nil, errors.New("-migrate needs a SQL driver")
		}
		return postgrest.NewGateway(cfg.PostgRESTURL, cfg.PostgRESTKey), nil
	}
	gdb, err := db.OpenGorm(cfg.DBDriver, cfg.DSN())
	if err != nil {
		return nil, err
	}
	if migrate {
		if err := db.Migrate(gdb); err != nil {
			return nil, err
		}
		log.Info("migrated", zap.String("driver", cfg.DBDriver))
		return nil, nil
	}
	return sqlrepo.NewGateway(gdb), nil
}
