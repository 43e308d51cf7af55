package bootstrap

import (
	"context"
	"database/sql"
	"log"
	"os"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"filings-backend/internal/documents"
	"filings-backend/internal/llm"
	openai "filings-backend/internal/llm/openai"
	"filings-backend/internal/questions"
	"filings-backend/internal/shared/config"
	"filings-backend/internal/shared/server"
	"filings-backend/internal/shared/storage/db"
	"filings-backend/internal/shared/storage/object"
	localstore "filings-backend/internal/shared/storage/object/local"
	s3store "filings-backend/internal/shared/storage/object/s3"
)

// App holds shared dependencies.
type App struct {
	Config           config.Config
	Router           *gin.Engine
	DB               *sql.DB
	Store            object.ObjectStore
	LLM              llm.Client
	DocumentsRepo    documents.DocumentsRepo
	QuestionsRepo    questions.Repo
	DocumentsService *documents.Service
	QuestionsService *questions.Service
	DocumentsHandler *documents.Handler
	QuestionsHandler *questions.Handler
}

// Build prepares shared dependencies and the router.
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
		Config:           app.Config,
		DocumentsHandler: app.DocumentsHandler,
		QuestionsHandler: app.QuestionsHandler,
	})

	return app, nil
}

func buildDB(ctx context.Context, cfg config.Config) (*sql.DB, error) {
	if strings.TrimSpace(cfg.DatabaseURL) == "" {
		if isDevLike(cfg.Env) {
			log.Printf("bootstrap: DATABASE_URL empty; using in-memory repositories")
			return nil, nil
		}
		return nil, errRequired("DATABASE_URL")
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
		sqlDB.Close()
		return nil, err
	}

	return sqlDB, nil
}

func buildStore(ctx context.Context, cfg config.Config) (object.ObjectStore, error) {
	switch cfg.ObjectStoreType {
	case "s3":
		return s3store.New(ctx, cfg.AWSRegion, cfg.S3Bucket, cfg.S3Prefix)
	default:
		return localstore.New(cfg.LocalStoreDir), nil
	}
}

func buildServices(app *App) error {
	var docRepo documents.DocumentsRepo
	var questionRepo questions.Repo
	var purger documents.QuestionsPurger

	if app.DB != nil {
		docRepo = &documents.PGRepo{DB: app.DB}
		questionRepo = &questions.PGRepo{DB: app.DB}
		// Postgres cascades question deletion through the FK.
	} else {
		memQuestions := questions.NewMemoryRepo()
		docRepo = documents.NewMemoryRepo()
		questionRepo = memQuestions
		purger = memQuestions
	}

	llmClient := llm.Client(llm.PlaceholderClient{})
	if app.Config.LLMProvider == "openai" {
		apiKey := strings.TrimSpace(os.Getenv("OPENAI_API_KEY"))
		if apiKey == "" && isDevLike(app.Config.Env) {
			log.Printf("bootstrap: OPENAI_API_KEY empty; analysis calls will fail until configured")
		} else {
			openaiClient, err := openai.NewClient(apiKey, app.Config.LLMModel)
			if err != nil {
				return err
			}
			llmClient = openaiClient
		}
	}

	docSvc := &documents.Service{
		Store:        app.Store,
		Repo:         docRepo,
		Questions:    purger,
		PreviewChars: app.Config.PreviewChars,
	}
	questionSvc := &questions.Service{
		Repo:           questionRepo,
		Docs:           docRepo,
		Store:          app.Store,
		LLM:            llmClient,
		Timeout:        time.Duration(app.Config.LLMTimeoutSeconds) * time.Second,
		MaxPromptChars: app.Config.MaxPromptChars,
	}

	app.DocumentsRepo = docRepo
	app.QuestionsRepo = questionRepo
	app.LLM = llmClient
	app.DocumentsService = docSvc
	app.QuestionsService = questionSvc
	app.DocumentsHandler = documents.NewHandler(docSvc, app.Config.MaxUploadBytes)
	app.QuestionsHandler = questions.NewHandler(questionSvc)
	return nil
}

func isDevLike(env string) bool {
	switch strings.ToLower(strings.TrimSpace(env)) {
	case "dev", "local":
		return true
	default:
		return false
	}
}

type errRequired string

func (e errRequired) Error() string { return string(e) + " is required" }
