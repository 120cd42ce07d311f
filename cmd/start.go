package cmd

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"world-sync/core/database"
	"world-sync/core/loader"
	"world-sync/core/logger"
	"world-sync/core/middleware/auth"
	"world-sync/core/middleware/rayid"
	_ "world-sync/docs/swagger"
	"world-sync/feature/integrity"
	"world-sync/feature/sync"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/swagger"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

// @title World Sync API
// @version 1.0
// @description Control channel of the world synchronization engine.
// @host localhost:8080
// @BasePath /
// @securityDefinitions.apikey ApiKeyAuth
// @in header
// @name X-API-Key

// startCmd represents the start command
var startCmd = &cobra.Command{
	Use:   "start",
	Short: "Start the scheduler and the control server",
	Long: `Restores the persisted sync queue, runs the background tasks and serves
the control API until interrupted.`,
	Run: func(cmd *cobra.Command, args []string) {
		ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		a, err := bootstrap(ctx)
		if err != nil {
			log.Fatalf("Failed to start: %v", err)
		}
		defer a.close()
		logg := a.logger

		if err := database.Migrate(a.db); err != nil {
			logg.Fatal("Failed to migrate database", zap.Error(err))
		}

		if _, err := a.scheduler.Restore(ctx); err != nil {
			logg.Fatal("Failed to restore sync queue", zap.Error(err))
		}
		go func() {
			if err := a.scheduler.Run(ctx); err != nil && ctx.Err() == nil {
				logg.Error("Scheduler stopped", zap.Error(err))
			}
		}()

		srv := fiber.New(fiber.Config{
			DisableStartupMessage: true,
		})

		mgr := loader.NewManager()
		mgr.Register(sync.NewFeature(a.scheduler, logg))
		mgr.Register(integrity.NewFeature(a.db, a.store, a.storage, a.cfg.Storage.Bucket, logg))

		// RayID first so every log line below carries it
		srv.Use(rayid.New())
		srv.Use(func(c *fiber.Ctx) error {
			l := logger.WithRayID(logg, c)
			l.Info("Request started",
				zap.String("method", c.Method()),
				zap.String("path", c.Path()),
				zap.String("ip", c.IP()),
			)
			err := c.Next()
			if err != nil {
				l.Error("Request error", zap.Error(err))
			}
			return err
		})

		if a.cfg.Server.Docs {
			srv.Get("/swagger/*", swagger.HandlerDefault)
		}

		srv.Use(auth.New(auth.Config{ApiKey: a.cfg.Server.ApiKey}))
		if !a.cfg.Server.IsProtected() {
			logg.Warn("Control API is not protected, set SERVER_API_KEY")
		}

		if err := mgr.LoadAll(srv); err != nil {
			logg.Fatal("Failed to load features", zap.Error(err))
		}

		go func() {
			logg.Info("Starting server", zap.String("port", a.cfg.Server.Port))
			if err := srv.Listen(a.cfg.Server.Address()); err != nil {
				logg.Fatal("Server failed to start", zap.Error(err))
			}
		}()

		<-ctx.Done()
		logg.Info("Shutting down...")
		_ = srv.Shutdown()
	},
}

func init() {
	RootCmd.AddCommand(startCmd)
}
