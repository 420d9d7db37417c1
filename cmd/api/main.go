// @title           Lot Ledger API
// @version         0.1.0
// @description     Ledger de inventario por lotes: journal de entradas y salidas, saldos y extractos.
// @BasePath        /
// @securityDefinitions.apikey  Bearer
// @in                          header
// @name                        Authorization
package main

import (
	"context"
	"errors"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/contrib/swagger"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/swaggo/swag"

	"github.com/jhoicas/lot-ledger/docs"
	appanalytics "github.com/jhoicas/lot-ledger/internal/application/analytics"
	"github.com/jhoicas/lot-ledger/internal/application/audit"
	"github.com/jhoicas/lot-ledger/internal/application/ledger"
	"github.com/jhoicas/lot-ledger/internal/application/usecase"
	"github.com/jhoicas/lot-ledger/internal/infrastructure/cache"
	"github.com/jhoicas/lot-ledger/internal/infrastructure/kafka"
	infrapdf "github.com/jhoicas/lot-ledger/internal/infrastructure/pdf"
	"github.com/jhoicas/lot-ledger/internal/infrastructure/statement"
	httpRouter "github.com/jhoicas/lot-ledger/internal/interfaces/http"
	"github.com/jhoicas/lot-ledger/pkg/config"
	"github.com/jhoicas/lot-ledger/pkg/logger"
	"github.com/jhoicas/lot-ledger/pkg/telemetry"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic("cargar configuración: " + err.Error())
	}

	log := logger.New(logger.Config{
		Env:   cfg.App.Env,
		Level: cfg.Log.Level,
	})
	log.Info().
		Str("env", cfg.App.Env).
		Str("app", cfg.App.Name).
		Str("storage", cfg.Storage.Driver).
		Bool("auth", cfg.JWT.Secret != "").
		Msg("iniciando aplicación")

	ctx := context.Background()

	shutdownTracing, err := telemetry.SetupTracing(ctx, cfg.Telemetry, cfg.App.Name, cfg.App.Version)
	if err != nil {
		log.Fatal().Err(err).Msg("inicializar tracing")
	}

	store, err := openStorage(ctx, cfg, log)
	if err != nil {
		log.Fatal().Err(err).Msg("almacenamiento")
	}
	defer store.close()

	// Catálogo de productos con caché Redis opcional
	var catalog *cache.ProductCatalog
	if cfg.Redis.Enabled() {
		rdb := cache.NewRedisClient(cfg.Redis)
		defer rdb.Close()
		catalog = cache.NewProductCatalog(store.products, rdb, cfg.Redis.ProductTTL, log)
	} else {
		catalog = cache.NewProductCatalog(store.products, nil, 0, log)
	}

	// Auditoría: tabla activity_logs y, si hay brokers, Kafka
	sinks := audit.FanoutSink{audit.NewRepositorySink(store.logs)}
	var kafkaSink *kafka.AuditSink
	if cfg.Audit.KafkaEnabled() {
		kafkaSink = kafka.NewAuditSink(kafka.NewWriter(cfg.Audit))
		sinks = append(sinks, kafkaSink)
		log.Info().Strs("brokers", cfg.Audit.KafkaBrokers).Str("topic", cfg.Audit.KafkaTopic).Msg("auditoría publicada en Kafka")
	}
	emitter := audit.NewEmitter(sinks, log, audit.EmitterConfig{
		BufferSize: cfg.Audit.BufferSize,
		Workers:    cfg.Audit.Workers,
		Timeout:    cfg.Audit.Timeout,
	})

	balance := ledger.NewBalanceEngine(store.txns, store.summaries, log)
	registry := ledger.NewLotRegistry(store.txRunner, store.lots, catalog, balance, emitter, log)
	journal := ledger.NewJournal(store.txRunner, store.lots, store.txns, balance, emitter, log)
	statementUC := ledger.NewStatementUseCase(store.lots, store.txns, catalog, balance, statement.NewXMLRenderer(), log)
	productUC := usecase.NewProductUseCase(store.products, catalog, emitter)
	auditLogUC := usecase.NewAuditLogUseCase(store.logs)
	dashboardUC := appanalytics.NewDashboardUseCase(balance, infrapdf.NewMarotoReportGenerator(cfg.Report.Locale))

	var writeLimiter fiber.Handler
	if cfg.HTTP.RateLimit != "" {
		writeLimiter, err = httpRouter.RateLimit(cfg.HTTP.RateLimit)
		if err != nil {
			log.Fatal().Err(err).Str("rate", cfg.HTTP.RateLimit).Msg("HTTP_RATE_LIMIT inválido")
		}
	}

	app := fiber.New(fiber.Config{
		AppName:      cfg.App.Name,
		ReadTimeout:  time.Second * 10,
		WriteTimeout: time.Second * 30,
		IdleTimeout:  time.Second * 60,
	})
	app.Use(recover.New())

	// Swagger UI en local: http://localhost:<port>/docs
	docs.SwaggerInfo.Version = cfg.App.Version
	if _, err := os.Stat(cfg.HTTP.SwaggerFile); err == nil {
		app.Use(swagger.New(swagger.Config{
			BasePath: "/",
			FilePath: cfg.HTTP.SwaggerFile,
			Path:     "docs",
			Title:    "Lot Ledger API",
		}))
	} else {
		log.Warn().Str("file", cfg.HTTP.SwaggerFile).Msg("swagger.json no encontrado, UI deshabilitada")
	}
	app.Get("/openapi.json", func(c *fiber.Ctx) error {
		doc, err := swag.ReadDoc(docs.SwaggerInfo.InstanceName())
		if err != nil {
			return fiber.ErrNotFound
		}
		c.Set(fiber.HeaderContentType, fiber.MIMEApplicationJSON)
		return c.SendString(doc)
	})

	app.Get("/health", func(c *fiber.Ctx) error {
		delivered, dropped, failed := emitter.Stats()
		return c.JSON(fiber.Map{
			"status":  "ok",
			"service": cfg.App.Name,
			"version": cfg.App.Version,
			"storage": cfg.Storage.Driver,
			"audit": fiber.Map{
				"delivered": delivered,
				"dropped":   dropped,
				"failed":    failed,
			},
		})
	})

	httpRouter.Router(app, httpRouter.RouterDeps{
		ProductUC:    productUC,
		Registry:     registry,
		Journal:      journal,
		Balance:      balance,
		Statement:    statementUC,
		DashboardUC:  dashboardUC,
		AuditLogUC:   auditLogUC,
		JWTSecret:    cfg.JWT.Secret,
		WriteLimiter: writeLimiter,
	})

	go func() {
		if err := app.Listen(cfg.HTTP.Addr()); err != nil {
			log.Error().Err(err).Msg("servidor HTTP finalizado")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("señal de apagado recibida, cerrando servidor...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := app.ShutdownWithContext(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("apagado del servidor")
	}
	// Drenar la auditoría pendiente antes de cerrar sus destinos.
	if err := emitter.Close(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("cierre del emisor de auditoría")
	}
	if kafkaSink != nil {
		if err := kafkaSink.Close(); err != nil {
			log.Error().Err(err).Msg("cierre del productor Kafka")
		}
	}
	if err := shutdownTracing(shutdownCtx); err != nil && !errors.Is(err, context.DeadlineExceeded) {
		log.Error().Err(err).Msg("cierre del tracing")
	}

	log.Info().Msg("aplicación detenida")
}
