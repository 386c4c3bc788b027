package main

import (
	"context"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"
	"github.com/urfave/cli/v2"
	"golang.org/x/sync/errgroup"

	"storefront/pkg/common/domain"
	"storefront/pkg/domain/service"
	"storefront/pkg/infrastructure/event"
	"storefront/pkg/infrastructure/mysql"
	"storefront/pkg/infrastructure/transport"
	"storefront/pkg/infrastructure/transport/rpc"
)

const shutdownTimeout = 10 * time.Second

func serviceCommand() *cli.Command {
	return &cli.Command{
		Name:  "service",
		Usage: "run the HTTP and gRPC servers",
		Flags: []cli.Flag{
			&cli.BoolFlag{Name: "skip-seed", Usage: "do not bootstrap the catalog on startup"},
		},
		Action: func(c *cli.Context) error {
			return withDatabase(c.Context, func(cfg *config, db *sqlx.DB) error {
				if err := mysql.Migrate(c.Context, db); err != nil {
					return err
				}

				dispatcher, closeDispatcher, err := newEventDispatcher(cfg)
				if err != nil {
					return err
				}
				defer closeDispatcher()

				if !c.Bool("skip-seed") {
					seeder := service.NewSeedService(mysql.NewUnitOfWork(db), cfg.SeedInventoryFloor, dispatcher)
					if err := seeder.Seed(c.Context); err != nil {
						return err
					}
				}

				return serve(c.Context, cfg, db, dispatcher)
			})
		},
	}
}

func migrateCommand() *cli.Command {
	return &cli.Command{
		Name:  "migrate",
		Usage: "apply database migrations",
		Action: func(c *cli.Context) error {
			return withDatabase(c.Context, func(_ *config, db *sqlx.DB) error {
				return mysql.Migrate(c.Context, db)
			})
		},
	}
}

func seedCommand() *cli.Command {
	return &cli.Command{
		Name:  "seed",
		Usage: "insert the starter catalog or top up inventory to the floor",
		Action: func(c *cli.Context) error {
			return withDatabase(c.Context, func(cfg *config, db *sqlx.DB) error {
				dispatcher := event.NewLogDispatcher(log.StandardLogger())
				return service.NewSeedService(mysql.NewUnitOfWork(db), cfg.SeedInventoryFloor, dispatcher).Seed(c.Context)
			})
		},
	}
}

func withDatabase(ctx context.Context, f func(cfg *config, db *sqlx.DB) error) error {
	cfg, err := parseConfig()
	if err != nil {
		return err
	}
	initLogger(cfg)

	db, err := mysql.Open(ctx, cfg.dsn(), cfg.DatabaseConnectTimeout)
	if err != nil {
		return err
	}
	defer db.Close()

	return f(cfg, db)
}

func newEventDispatcher(cfg *config) (domain.EventDispatcher, func(), error) {
	logDispatcher := event.NewLogDispatcher(log.StandardLogger())
	if len(cfg.KafkaBrokers) == 0 {
		return logDispatcher, func() {}, nil
	}

	kafka, err := event.NewKafkaDispatcher(cfg.KafkaBrokers, cfg.KafkaTopic)
	if err != nil {
		return nil, nil, err
	}
	closeKafka := func() {
		ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		kafka.Close(ctx)
	}
	return event.NewMultiDispatcher(logDispatcher, kafka), closeKafka, nil
}

func serve(ctx context.Context, cfg *config, db *sqlx.DB, dispatcher domain.EventDispatcher) error {
	repos := mysql.NewRepositoryProvider(db)
	catalog := service.NewCatalogService(repos.ProductRepository())
	orders := service.NewOrderService(repos.OrderRepository(), mysql.NewUnitOfWork(db), dispatcher)

	httpServer := &http.Server{
		Addr:              cfg.ServeHTTPAddress,
		Handler:           transport.Router(catalog, orders, cfg.StaticDir),
		ReadHeaderTimeout: 5 * time.Second,
	}
	grpcServer := rpc.NewServer(catalog, orders)

	killSignalChan := getKillSignalChan()
	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		log.WithField("address", cfg.ServeHTTPAddress).Info("starting http server")
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return errors.Wrap(err, "http server failed")
		}
		return nil
	})

	g.Go(func() error {
		lis, err := net.Listen("tcp", cfg.ServeGRPCAddress)
		if err != nil {
			return errors.Wrap(err, "failed to listen for grpc")
		}
		log.WithField("address", cfg.ServeGRPCAddress).Info("starting grpc server")
		return errors.Wrap(grpcServer.Serve(lis), "grpc server failed")
	})

	g.Go(func() error {
		waitForKillSignal(gctx, killSignalChan)

		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		grpcServer.GracefulStop()
		return errors.Wrap(httpServer.Shutdown(shutdownCtx), "http shutdown failed")
	})

	return g.Wait()
}

func getKillSignalChan() chan os.Signal {
	osKillSignalChan := make(chan os.Signal, 1)
	signal.Notify(osKillSignalChan, os.Interrupt, syscall.SIGTERM)
	return osKillSignalChan
}

func waitForKillSignal(ctx context.Context, killSignalChan <-chan os.Signal) {
	select {
	case killSignal := <-killSignalChan:
		switch killSignal {
		case os.Interrupt:
			log.Info("got SIGINT...")
		case syscall.SIGTERM:
			log.Info("got SIGTERM...")
		}
	case <-ctx.Done():
		log.WithError(ctx.Err()).Warn("server stopped, shutting down")
	}
}
