package main

import (
	"context"
	"errors"
	"flag"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"gitlab.com/swifttrack/driver-app/internal/adapters"
	"gitlab.com/swifttrack/driver-app/internal/config"
	"gitlab.com/swifttrack/driver-app/internal/db"
	"gitlab.com/swifttrack/driver-app/internal/delivery"
	"gitlab.com/swifttrack/driver-app/internal/events"
	"gitlab.com/swifttrack/driver-app/internal/feed"
	"gitlab.com/swifttrack/driver-app/internal/logger"
	"gitlab.com/swifttrack/driver-app/internal/model"
	"gitlab.com/swifttrack/driver-app/internal/proof"
	"gitlab.com/swifttrack/driver-app/internal/repository/postgresql"
	"gitlab.com/swifttrack/driver-app/internal/seed"
	"gitlab.com/swifttrack/driver-app/internal/server"
	"gitlab.com/swifttrack/driver-app/internal/session"
	"gitlab.com/swifttrack/driver-app/internal/store"
	"gitlab.com/swifttrack/driver-app/internal/viewmodel"
)

func main() {
	configPath := flag.String("config", "", "path to config file")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		panic(err)
	}

	log := logger.New(cfg.App.LogLevel)
	defer func() { _ = log.Sync() }()

	if err := run(cfg, log); err != nil && !errors.Is(err, context.Canceled) {
		log.Fatal("driver app exited", zap.Error(err))
	}
}

func run(cfg *config.Config, log *zap.Logger) error {
	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	st := store.New(log.Named("store"))
	machine := delivery.NewMachine(st, delivery.DefaultCatalog(), log.Named("delivery"))
	fd := feed.New(log.Named("feed"))
	st.Subscribe(fd.ObserveStore())

	trail := buildTrail(cfg, log)
	trail.Start(ctx)
	st.Subscribe(trail.ObserveStore())

	var snapshot *store.Snapshot
	if cfg.Snapshot.Enabled {
		snapshot = store.NewSnapshot(cfg.Snapshot.Path)
	}

	auth, route, err := buildManifest(ctx, cfg, st, fd, snapshot, log)
	if err != nil {
		return err
	}
	sessions := session.NewManager(auth, log.Named("session"))

	proofs := proof.NewRegistry(
		adapters.NewLocalCamera(log.Named("camera")),
		&adapters.LocalSignaturePad{},
		adapters.NewLocalMediaLibrary(log.Named("media")),
		log.Named("proof"),
	)

	srv := server.New(
		sessions, st, machine, fd, proofs,
		adapters.NewLogTelephony(log.Named("telephony")),
		adapters.NewLogDirections(log.Named("directions")),
		route,
		log.Named("server"),
	)

	poller := feed.NewPoller(fd, buildSource(cfg, log), cfg.Feed.PollInterval, log.Named("poller"))

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error { return srv.Run(gctx, cfg.HTTP.Port) })
	g.Go(func() error { return poller.Run(gctx) })
	g.Go(func() error {
		<-gctx.Done()
		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer shutdownCancel()

		if err := srv.Shutdown(shutdownCtx); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Warn("http shutdown", zap.Error(err))
		}
		trail.Shutdown(shutdownCtx)
		if snapshot != nil {
			if err := snapshot.Save(st, seedDriver(cfg)); err != nil {
				log.Warn("snapshot save failed", zap.Error(err))
			} else {
				log.Info("session snapshot written", zap.String("path", cfg.Snapshot.Path))
			}
		}
		return gctx.Err()
	})

	log.Info("driver app started", zap.String("port", cfg.HTTP.Port))
	return g.Wait()
}

// buildManifest loads today's packages into the store: from the dispatch
// database when configured, from a snapshot when one exists, otherwise from
// the fixture manifest. It also selects the matching authenticator and route
// inputs.
func buildManifest(
	ctx context.Context,
	cfg *config.Config,
	st *store.Store,
	fd *feed.Feed,
	snapshot *store.Snapshot,
	log *zap.Logger,
) (session.Authenticator, server.RouteInputs, error) {
	now := time.Now()
	route := server.RouteInputs{
		ETA:        viewmodel.StaticETAProvider(seed.ETAs(now)),
		Traffic:    viewmodel.StaticTrafficSignal(seed.TrafficDelays()),
		DistanceKm: seed.DistanceKm(),
	}

	if cfg.Postgres.Enabled {
		pool, err := db.Connect(ctx, cfg.Postgres)
		if err != nil {
			return nil, route, err
		}
		packageRepo := postgresql.NewPackageRepo(pool)
		driverRepo := postgresql.NewDriverRepo(pool)
		historyRepo := postgresql.NewHistoryRepo(pool)

		// Mirror committed status changes back to dispatch. Listeners run under
		// the store lock, so the write itself happens off to the side.
		st.Subscribe(func(ev store.Event) {
			if ev.Type == store.EventAdmitted {
				return
			}
			go func(change model.StatusChange) {
				recordCtx, recordCancel := context.WithTimeout(context.Background(), 5*time.Second)
				defer recordCancel()
				if err := historyRepo.Record(recordCtx, change); err != nil {
					log.Warn("mirroring status change failed",
						zap.String("package_id", change.PackageID),
						zap.Error(err))
				}
			}(ev.Change)
		})

		driver, _, err := driverRepo.GetByUsername(ctx, cfg.Login.Username)
		if err != nil {
			return nil, route, err
		}
		pkgs, err := packageRepo.ListAssigned(ctx, driver.ID, now)
		if err != nil {
			return nil, route, err
		}
		if err := st.Admit(pkgs); err != nil {
			return nil, route, err
		}
		if distances, err := packageRepo.DistanceKm(ctx, driver.ID, now); err == nil {
			route.DistanceKm = distances
		} else {
			log.Warn("route leg distances unavailable", zap.Error(err))
		}
		return session.NewRepoAuthenticator(driverRepo), route, nil
	}

	if snapshot != nil {
		pkgs, driver, err := snapshot.Load()
		if err != nil {
			return nil, route, err
		}
		if len(pkgs) > 0 {
			if err := st.Admit(pkgs); err != nil {
				return nil, route, err
			}
			if driver == nil {
				driver = seed.Driver()
			}
			auth, err := session.NewStaticAuthenticator(driver, cfg.Login.Username, cfg.Login.Password)
			if err != nil {
				return nil, route, err
			}
			log.Info("session restored from snapshot", zap.Int("packages", len(pkgs)))
			return auth, route, nil
		}
	}

	if err := st.Admit(seed.Packages(now)); err != nil {
		return nil, route, err
	}
	for _, n := range seed.Notifications(now) {
		if _, err := fd.Add(n); err != nil {
			log.Warn("dropping seed notification", zap.Error(err))
		}
	}
	auth, err := session.NewStaticAuthenticator(seed.Driver(), cfg.Login.Username, cfg.Login.Password)
	if err != nil {
		return nil, route, err
	}
	log.Info("fixture manifest seeded")
	return auth, route, nil
}

func buildTrail(cfg *config.Config, log *zap.Logger) *events.Trail {
	var producer events.Producer
	if cfg.Kafka.Enabled {
		producer = events.NewKafkaProducer(cfg.Kafka.Brokers, cfg.Kafka.Topic)
	} else {
		producer = events.NewConsoleProducer(log.Named("events"))
	}
	return events.NewTrail(producer, 2, 5, 500*time.Millisecond, log.Named("trail"))
}

func buildSource(cfg *config.Config, log *zap.Logger) feed.Source {
	if cfg.Redis.Enabled {
		client := redis.NewClient(&redis.Options{
			Addr:     cfg.Redis.Address,
			Password: cfg.Redis.Password,
		})
		return feed.NewRedisSource(client, cfg.Redis.Key, log.Named("redis"))
	}
	return feed.NewStaticSource(nil)
}

func seedDriver(cfg *config.Config) *model.Driver {
	if cfg.Postgres.Enabled {
		return nil
	}
	return seed.Driver()
}
