package bootstrap

import (
	"context"
	"database/sql"
	"fmt"
	"log"
	"os"
	"strings"

	"github.com/gin-gonic/gin"

	"resume-tailor/internal/admin"
	"resume-tailor/internal/authn"
	"resume-tailor/internal/generations"
	"resume-tailor/internal/jobs"
	"resume-tailor/internal/llm"
	openai "resume-tailor/internal/llm/openai"
	"resume-tailor/internal/profiles"
	"resume-tailor/internal/resumes"
	"resume-tailor/internal/shared/config"
	"resume-tailor/internal/shared/server"
	"resume-tailor/internal/shared/storage/db"
	"resume-tailor/internal/shared/storage/object"
	localstore "resume-tailor/internal/shared/storage/object/local"
	s3store "resume-tailor/internal/shared/storage/object/s3"
)

// App holds shared dependencies and the wired router.
type App struct {
	Config config.Config
	Router *gin.Engine
	DB     *sql.DB
	Store  object.ObjectStore
	LLM    llm.Client

	ProfilesRepo    profiles.Repo
	ResumesRepo     resumes.Repo
	JobsRepo        jobs.Repo
	GenerationsRepo generations.Repo

	ProfilesService    *profiles.Service
	ResumesService     *resumes.Service
	JobsService        *jobs.Service
	GenerationsService *generations.Service

	AuthHandler       *authn.Handler
	ResumeHandler     *resumes.Handler
	JobHandler        *jobs.Handler
	GenerationHandler *generations.Handler
	AdminHandler      *admin.Handler
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

	app := &App{
		Config: cfg,
		DB:     sqlDB,
		Store:  store,
	}
	if err := buildServices(app); err != nil {
		return nil, err
	}

	app.Router = server.NewRouter(server.RouterDeps{
		Config:            app.Config,
		AuthHandler:       app.AuthHandler,
		ResumeHandler:     app.ResumeHandler,
		JobHandler:        app.JobHandler,
		GenerationHandler: app.GenerationHandler,
		AdminHandler:      app.AdminHandler,
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
		if strings.TrimSpace(cfg.AWSRegion) == "" || strings.TrimSpace(cfg.S3Bucket) == "" {
			return nil, fmt.Errorf("OBJECT_STORE=s3 requires AWS_REGION and S3_BUCKET")
		}
		return s3store.New(ctx, cfg.AWSRegion, cfg.S3Bucket, cfg.S3Prefix, cfg.SSEKMSKeyID)
	default:
		return localstore.New(cfg.LocalStoreDir), nil
	}
}

func isDevLike(env string) bool {
	switch strings.ToLower(strings.TrimSpace(env)) {
	case "dev", "local":
		return true
	default:
		return false
	}
}

func buildServices(app *App) error {
	if app.DB != nil {
		app.ProfilesRepo = &profiles.PGRepo{DB: app.DB}
		app.ResumesRepo = &resumes.PGRepo{DB: app.DB}
		app.JobsRepo = &jobs.PGRepo{DB: app.DB}
		app.GenerationsRepo = &generations.PGRepo{DB: app.DB}
	} else {
		app.ProfilesRepo = profiles.NewMemoryRepo()
		app.ResumesRepo = resumes.NewMemoryRepo()
		app.JobsRepo = jobs.NewMemoryRepo()
		app.GenerationsRepo = generations.NewMemoryRepo()
	}

	llmClient := llm.Client(llm.PlaceholderClient{})
	if app.Config.LLMProvider == "openai" {
		openaiClient, err := openai.NewClient(os.Getenv("OPENAI_API_KEY"), app.Config.LLMModel)
		if err != nil {
			return err
		}
		llmClient = openaiClient
	}
	app.LLM = llmClient

	app.ProfilesService = profiles.NewService(app.ProfilesRepo, app.Config.SignupCredits)
	app.ResumesService = resumes.NewService(app.Store, app.ResumesRepo)
	app.JobsService = jobs.NewService(app.JobsRepo)
	app.GenerationsService = &generations.Service{
		Repo:     app.GenerationsRepo,
		Profiles: app.ProfilesService,
		Resumes:  app.ResumesService,
		Jobs:     app.JobsService,
		Store:    app.Store,
		LLM:      app.LLM,
	}

	googleAuth := authn.NewGoogleService(
		app.Config.GoogleClientID,
		app.Config.GoogleClientSecret,
		app.Config.GoogleRedirectURL,
		app.Config.UIRedirectURL,
		app.ProfilesService,
	)

	app.AuthHandler = authn.NewHandler(app.ProfilesService, googleAuth)
	app.ResumeHandler = resumes.NewHandler(app.ResumesService)
	app.JobHandler = jobs.NewHandler(app.JobsService)
	app.GenerationHandler = generations.NewHandler(app.GenerationsService)
	app.AdminHandler = admin.NewHandler(app.ProfilesService, app.GenerationsRepo, app.ResumesRepo, app.JobsRepo)

	return nil
}
