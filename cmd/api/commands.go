package main

import (
	"context"
	"fmt"
	"log"
	"os/signal"
	"syscall"
	"time"

	config "github.com/anjiri1684/fitness_marketplace/configs"
	"github.com/anjiri1684/fitness_marketplace/database"
	"github.com/anjiri1684/fitness_marketplace/handlers"
	"github.com/anjiri1684/fitness_marketplace/hooks"
	"github.com/anjiri1684/fitness_marketplace/jobs"
	"github.com/anjiri1684/fitness_marketplace/notifications"
	"github.com/anjiri1684/fitness_marketplace/routes"
	"github.com/anjiri1684/fitness_marketplace/services"
	"github.com/anjiri1684/fitness_marketplace/websocket"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/google/uuid"
	"github.com/urfave/cli/v3"
)

const sweepTimeout = 5 * time.Minute

func serve(ctx context.Context, cmd *cli.Command) error {
	return withApp(ctx, cmd.String("env-file"), func(a *app) error {
		if a.cfg.JWTSecret == "" {
			return fmt.Errorf("JWT_SECRET must be set")
		}
		ctx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		hub := websocket.NewHub()
		go hub.Run(ctx)

		queue := hooks.NewQueue(a.cfg.HookWorkers, 1024)
		defer queue.Close()

		scheduler := jobs.NewScheduler()
		deps := a.deps(notifications.MultiDispatcher{hub, a.emailNotifier()})
		deps.Scheduler = scheduler
		deps.Hooks = queue

		settlement := services.NewSettlementService(deps)
		scheduler.Handle(jobs.GroupDistributeProfit, settlement.HandleDistributeProfitJob)
		if err := scheduler.AddPeriodic(a.cfg.DueSweepSpec, jobs.DistributeDueProfits(settlement, sweepTimeout)); err != nil {
			return fmt.Errorf("schedule due profit sweep %q: %w", a.cfg.DueSweepSpec, err)
		}
		scheduler.Start()
		defer scheduler.Stop()

		h := &handlers.Handler{
			Orders:     services.NewOrderService(deps),
			Settlement: settlement,
			Disputes:   services.NewDisputeService(deps),
			Wallets:    services.NewWalletService(deps),
			Configs:    a.configs,
			Hub:        hub,
			JWTSecret:  a.cfg.JWTSecret,
		}
		server := newServer(h)

		errCh := make(chan error, 1)
		go func() {
			log.Printf("✅ Server is running on %s", a.cfg.HTTPAddr)
			errCh <- server.Listen(a.cfg.HTTPAddr)
		}()

		select {
		case err := <-errCh:
			return fmt.Errorf("server failed to start: %w", err)
		case <-ctx.Done():
			log.Println("Shutting down...")
			return server.ShutdownWithTimeout(10 * time.Second)
		}
	})
}

func newServer(h *handlers.Handler) *fiber.App {
	app := fiber.New(fiber.Config{
		AppName:       "Fitness Marketplace",
		CaseSensitive: true,
		StrictRouting: true,
		ReadTimeout:   15 * time.Second,
		WriteTimeout:  15 * time.Second,
		IdleTimeout:   60 * time.Second,
		ErrorHandler:  handlers.ErrorHandler,
	})

	app.Use(cors.New(cors.Config{
		AllowOrigins:  "*",
		AllowHeaders:  "Origin, Content-Type, Accept, Authorization, Sec-WebSocket-Key, Sec-WebSocket-Version",
		AllowMethods:  "GET, POST, PUT, PATCH, DELETE, OPTIONS",
		ExposeHeaders: "Content-Length, Content-Disposition",
		MaxAge:        86400,
	}))
	app.Use(recover.New())
	app.Use(logger.New(logger.Config{
		TimeFormat: "2006-01-02 15:04:05",
		Format:     "[${time}] ${status} - ${latency} ${method} ${path}\n",
	}))

	app.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"status": "ok"})
	})
	routes.Setup(app, h)
	return app
}

func migrate(ctx context.Context, cmd *cli.Command) error {
	return withApp(ctx, cmd.String("env-file"), func(a *app) error {
		if err := database.Migrate(a.db); err != nil {
			return err
		}
		defaults, err := config.DefaultSystemConfigurations()
		if err != nil {
			return err
		}
		n, err := a.configs.Seed(ctx, defaults)
		if err != nil {
			return fmt.Errorf("seed system configurations: %w", err)
		}
		log.Printf("✅ Seeded %d system configuration(s).", n)
		return nil
	})
}

func distributeDue(ctx context.Context, cmd *cli.Command) error {
	return withApp(ctx, cmd.String("env-file"), func(a *app) error {
		settlement := services.NewSettlementService(a.deps(a.emailNotifier()))
		jobs.DistributeDueProfits(settlement, sweepTimeout)()
		return nil
	})
}

func distributeOne(ctx context.Context, cmd *cli.Command) error {
	id, err := uuid.Parse(cmd.String("order-item"))
	if err != nil {
		return fmt.Errorf("invalid order item id: %w", err)
	}
	return withApp(ctx, cmd.String("env-file"), func(a *app) error {
		settlement := services.NewSettlementService(a.deps(a.emailNotifier()))
		ok, err := settlement.DistributeProfit(ctx, id)
		if err != nil {
			return err
		}
		if ok {
			log.Printf("✅ Distributed profit for order item %s.", id)
		} else {
			log.Printf("⚠️ Nothing to distribute for order item %s.", id)
		}
		return nil
	})
}
