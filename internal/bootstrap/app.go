package bootstrap

import (
	"context"
	"database/sql"
	"fmt"
	"log"
	"strings"

	"github.com/gin-gonic/gin"

	"studyvault-backend/internal/documents"
	"studyvault-backend/internal/queue"
	"studyvault-backend/internal/shared/config"
	"studyvault-backend/internal/shared/server"
	"studyvault-backend/internal/shared/storage/db"
	"studyvault-backend/internal/shared/storage/object"
	localstore "studyvault-backend/internal/shared/storage/object/local"
	s3store "studyvault-backend/internal/shared/storage/object/s3"
	"studyvault-backend/internal/subjects"
	"studyvault-backend/internal/summarize"
	"studyvault-backend/internal/users"
)

// App holds shared dependencies for the API server and the worker.
type App struct {
	Config config.Config
	Router *gin.Engine
	DB     *sql.DB
	Store  object.ObjectStore
	Queue  queue.Client

	UsersRepo     users.Repo
	SubjectsRepo  subjects.Repo
	DocumentsRepo documents.Repo

	UsersService     *users.Service
	SubjectsService  *subjects.Service
	DocumentsService *documents.Service
	Summarizer       documents.Processor

	UsersHandler     *users.Handler
	SubjectsHandler  *subjects.Handler
	DocumentsHandler *documents.Handler
}

// Build prepares shared dependencies and wires the router.
func Build(cfg config.Config) (*App, error) {
	if strings.TrimSpace(cfg.Env) == "" {
		cfg.Env = "dev"
	}
	if strings.TrimSpace(cfg.ObjectStoreType) == "" {
		cfg.ObjectStoreType = "local"
	}
	ctx := context.Background()

	sqlDB, err := buildDB(ctx, cfg)
	if err != nil {
		return nil, err
	}

	store, err := buildStore(ctx, cfg)
	if err != nil {
		return nil, err
	}

	queueClient, err := buildQueue(ctx, cfg)
	if err != nil {
		return nil, err
	}

	app := &App{
		Config: cfg,
		DB:     sqlDB,
		Store:  store,
		Queue:  queueClient,
	}
	buildServices(app)

	app.Router = server.NewRouter(server.RouterDeps{
		Config:          app.Config,
		UsersHandler:    app.UsersHandler,
		SubjectsHandler: app.SubjectsHandler,
		DocumentHandler: app.DocumentsHandler,
	})

	return app, nil
}

func buildDB(ctx context.Context, cfg config.Config) (*sql.DB, error) {
	if strings.TrimSpace(cfg.DatabaseURL) == "" {
		if isDevLike(cfg.Env) {
			log.Printf("bootstrap: DATABASE_URL empty; using in-memory repositories")
			return nil, nil
		}
		return nil, fmt.Errorf("DATABASE_URL is required")
	}

	opts := db.OptionsFromEnv(db.DefaultServerOptions())
	sqlDB, err := db.Connect(ctx, cfg.DatabaseURL, opts)
	if err != nil {
		if isDevLike(cfg.Env) {
			log.Printf("bootstrap: database connect failed; using in-memory repositories: %v", err)
			return nil, nil
		}
		return nil, err
	}

	if err := db.RunMigrations(ctx, sqlDB); err != nil {
		return nil, fmt.Errorf("run migrations: %w", err)
	}
	return sqlDB, nil
}

func buildStore(ctx context.Context, cfg config.Config) (object.ObjectStore, error) {
	switch cfg.ObjectStoreType {
	case "s3":
		if strings.TrimSpace(cfg.S3Bucket) == "" {
			return nil, fmt.Errorf("OBJECT_STORE=s3 requires S3_BUCKET")
		}
		return s3store.New(ctx, cfg.AWSRegion, cfg.S3Bucket, cfg.S3Prefix, cfg.SSEKMSKeyID)
	default:
		return localstore.New(cfg.LocalStoreDir), nil
	}
}

func buildQueue(ctx context.Context, cfg config.Config) (queue.Client, error) {
	if strings.TrimSpace(cfg.QueueURL) == "" {
		return nil, nil
	}
	return queue.NewSQSClient(ctx, cfg.AWSRegion, cfg.QueueURL)
}

func isDevLike(env string) bool {
	switch strings.ToLower(strings.TrimSpace(env)) {
	case "dev", "local":
		return true
	default:
		return false
	}
}

func buildServices(app *App) {
	var (
		userRepo    users.Repo
		subjectRepo subjects.Repo
		docRepo     documents.Repo
	)

	if app.DB != nil {
		userRepo = &users.PGRepo{DB: app.DB}
		subjectRepo = &subjects.PGRepo{DB: app.DB}
		docRepo = &documents.PGRepo{DB: app.DB}
	} else {
		memUsers := users.NewMemoryRepo()
		memSubjects := subjects.NewMemoryRepo(memUsers)
		userRepo = memUsers
		subjectRepo = memSubjects
		docRepo = documents.NewMemoryRepo(memSubjects)
	}

	summarizer := &summarize.Service{Repo: docRepo, Store: app.Store}

	docSvc := &documents.Service{
		Store:     app.Store,
		Repo:      docRepo,
		Jobs:      app.Queue,
		Processor: summarizer,
	}
	subjectSvc := &subjects.Service{Repo: subjectRepo, Docs: docSvc}
	userSvc := users.NewService(userRepo)

	app.UsersRepo = userRepo
	app.SubjectsRepo = subjectRepo
	app.DocumentsRepo = docRepo
	app.UsersService = userSvc
	app.SubjectsService = subjectSvc
	app.DocumentsService = docSvc
	app.Summarizer = summarizer
	app.UsersHandler = users.NewHandler(userSvc)
	app.SubjectsHandler = subjects.NewHandler(subjectSvc)
	app.DocumentsHandler = documents.NewHandler(docSvc)
}
