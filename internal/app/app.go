// Package app собирает приложение: клиенты, репозитории, usecase-слой,
// фоновый индексатор и HTTP-сервер.
package app

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	config "github.com/tewff14/searh-your-moments-webapp/internal/cfg"
	v1Http "github.com/tewff14/searh-your-moments-webapp/internal/delivery/v1/http"
	"github.com/tewff14/searh-your-moments-webapp/internal/infrastructure/auth"
	"github.com/tewff14/searh-your-moments-webapp/internal/infrastructure/clip"
	"github.com/tewff14/searh-your-moments-webapp/internal/infrastructure/ffmpeg"
	"github.com/tewff14/searh-your-moments-webapp/internal/infrastructure/kafka"
	"github.com/tewff14/searh-your-moments-webapp/internal/infrastructure/tasks"
	s3Repo "github.com/tewff14/searh-your-moments-webapp/internal/repository/minio"
	"github.com/tewff14/searh-your-moments-webapp/internal/repository/pgdb"
	pgdbConv "github.com/tewff14/searh-your-moments-webapp/internal/repository/pgdb/converter"
	qdrantRepo "github.com/tewff14/searh-your-moments-webapp/internal/repository/qdrant"
	"github.com/tewff14/searh-your-moments-webapp/internal/repository/redis"
	redisConv "github.com/tewff14/searh-your-moments-webapp/internal/repository/redis/converter"
	"github.com/tewff14/searh-your-moments-webapp/internal/usecase"
	"github.com/tewff14/searh-your-moments-webapp/pkg/clients"
	"github.com/tewff14/searh-your-moments-webapp/pkg/closer"
	"github.com/tewff14/searh-your-moments-webapp/pkg/e"
	"github.com/tewff14/searh-your-moments-webapp/pkg/keylock"
	"github.com/tewff14/searh-your-moments-webapp/pkg/logger"
	"github.com/tewff14/searh-your-moments-webapp/pkg/postgres"
	"github.com/go-chi/chi/v5"
	"github.com/jimlawless/whereami"
)

const (
	initTimeout     = 10 * time.Second
	shutdownTimeout = 10 * time.Second
)

// App держит ресурсы приложения и управляет их жизненным циклом.
type App struct {
	cfg    *config.Config
	logger logger.Logger

	httpSrv *v1Http.Server
	runner  *tasks.Runner
	closer  *closer.Closer

	// baseCancel останавливает фоновые задачи; вызывается последним,
	// чтобы не оборвать индексацию, которую еще можно дождаться.
	baseCancel context.CancelFunc
}

func NewApp(cfg *config.Config, log logger.Logger) (*App, error) {
	cl := closer.NewCloser(2 * time.Second)
	baseCtx, baseCancel := context.WithCancel(context.Background())

	app := &App{
		cfg:        cfg,
		logger:     log,
		closer:     cl,
		baseCancel: baseCancel,
	}

	db, err := initPGDB(log, cfg)
	if err != nil {
		baseCancel()
		return nil, err
	}
	cl.Add(func(context.Context) error {
		db.Close()
		return nil
	})

	videoConv := pgdbConv.NewVideoConverterImpl()
	infoConv := redisConv.NewVideoInfoConverterImpl()

	videoRepo := pgdb.NewVideoRepo(db.Pool, videoConv)

	minioClient, err := clients.NewMinIOClient(cfg)
	if err != nil {
		baseCancel()
		return nil, e.Wrap(whereami.WhereAmI(), err)
	}

	minioCtx, minioCancel := context.WithTimeout(context.Background(), initTimeout)
	if err := clients.EnsureBucket(minioCtx, minioClient, cfg.Minio.BucketName); err != nil {
		minioCancel()
		baseCancel()
		return nil, e.Wrap(whereami.WhereAmI(), err)
	}
	minioCancel()

	blobRepo := s3Repo.NewVideoBlobRepo(minioClient, cfg.Minio)

	qdrantClient, err := clients.NewQdrantClient(cfg.Qdrant)
	if err != nil {
		baseCancel()
		return nil, e.Wrap(whereami.WhereAmI(), err)
	}
	qdrantCtx, qdrantCancel := context.WithTimeout(context.Background(), initTimeout)
	if err := clients.EnsureCollection(qdrantCtx, qdrantClient); err != nil {
		qdrantCancel()
		baseCancel()
		return nil, e.Wrap(whereami.WhereAmI(), err)
	}
	qdrantCancel()
	cl.Add(func(context.Context) error {
		return qdrantClient.Client.Close()
	})

	frameRepo := qdrantRepo.NewFrameRepo(qdrantClient.Client, cfg.Qdrant)

	redisClient := clients.NewRedisClient(cfg.Redis)
	redisCtx, redisCancel := context.WithTimeout(context.Background(), initTimeout)
	if err := redisClient.Ping(redisCtx); err != nil {
		redisCancel()
		baseCancel()
		return nil, e.Wrap(whereami.WhereAmI(), err)
	}
	redisCancel()
	cl.Add(func(context.Context) error {
		return redisClient.Client.Close()
	})

	cacheRepo := redis.NewCacheRepo(redisClient, infoConv, cfg.Redis, log)

	producer, err := kafka.NewProducer(log, cfg.Kafka)
	if err != nil {
		baseCancel()
		return nil, e.Wrap(whereami.WhereAmI(), err)
	}
	if err := producer.EnsureTopic(initTimeout); err != nil {
		baseCancel()
		return nil, e.Wrap(whereami.WhereAmI(), err)
	}
	cl.Add(func(context.Context) error {
		return producer.Close()
	})

	sampler := ffmpeg.NewSampler(cfg.Sampler, log)
	encoder := clip.NewEncoder(cfg.Encoder, cfg.Qdrant.VectorSize, log)
	locks := keylock.New()

	indexerUC := usecase.NewIndexerUC(
		videoRepo,
		frameRepo,
		sampler,
		encoder,
		producer,
		cacheRepo,
		locks,
		log,
		cfg.Encoder.BatchSize,
	)

	runner := tasks.NewRunner(videoRepo, blobRepo, indexerUC, sampler, cfg.Indexer, log, baseCtx)
	app.runner = runner

	videoUC := usecase.NewVideoUC(
		videoRepo,
		frameRepo,
		blobRepo,
		cacheRepo,
		db.Pool,
		runner,
		producer,
		locks,
		log,
	)

	searchUC := usecase.NewSearchUC(videoRepo, frameRepo, encoder, log)

	r := chi.NewRouter()
	router := v1Http.NewRouter(r, log)
	router.Init(videoUC, searchUC, auth.NewStaticVerifier())

	app.httpSrv = v1Http.NewServer(r, cfg.Http)

	return app, nil
}

// Run запускает HTTP-сервер и блокируется до сигнала завершения или
// фатальной ошибки сервера. Возвращает ошибку, если завершение не штатное.
func (a *App) Run() error {
	errCh := make(chan error, 1)
	go func() {
		a.logger.Infof("HTTP server started on port %s", a.cfg.Http.Port)
		if err := a.httpSrv.Run(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			a.logger.Errorf(err, "HTTP server failed")
			errCh <- err
		}
	}()

	shutdown := make(chan os.Signal, 1)
	signal.Notify(shutdown, os.Interrupt, syscall.SIGTERM)

	var appErr error
	select {
	case appErr = <-errCh:
		a.logger.Errorf(appErr, "HTTP server fatal error")
	case <-shutdown:
		a.logger.Infof("Received shutdown signal, stopping gracefully...")
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if err := a.httpSrv.Stop(shutdownCtx); err != nil {
		a.logger.Errorf(err, "HTTP server shutdown error")
	} else {
		a.logger.Infof("HTTP server stopped")
	}

	// Дожидаемся фоновой индексации, прежде чем закрывать клиентов.
	if err := a.runner.WaitForShutdown(shutdownCtx); err != nil {
		a.logger.Warnf("indexing tasks did not finish before shutdown: %v", err)
	}
	a.baseCancel()

	if err := a.closer.Close(shutdownCtx); err != nil {
		a.logger.Warnf("resource shutdown: %v", err)
	}

	a.logger.Infof("Application shutdown complete")
	return appErr
}

func initPGDB(logger logger.Logger, cfg *config.Config) (*postgres.PgDatabase, error) {
	db, err := postgres.Connect(cfg.Db)
	if err != nil {
		logger.Errorf(err, "failed to connect to database")
		return nil, e.Wrap(whereami.WhereAmI(), err)
	}

	if err := db.RunMigrations(logger); err != nil {
		logger.Errorf(err, "failed to run migrations")
		return nil, e.Wrap(whereami.WhereAmI(), err)
	}

	if err := db.Ping(); err != nil {
		logger.Errorf(err, "failed to ping database")
		return nil, e.Wrap(whereami.WhereAmI(), err)
	}

	return db, nil
}
