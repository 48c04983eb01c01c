package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/previewlabs/preview-backend/docs"
	"github.com/previewlabs/preview-backend/internal/logger"
	"github.com/previewlabs/preview-backend/pkg/api/routes"
	"github.com/previewlabs/preview-backend/pkg/api/servers"
	"github.com/previewlabs/preview-backend/pkg/buildengine"
	"github.com/previewlabs/preview-backend/pkg/globalconfig"
	"github.com/previewlabs/preview-backend/pkg/infrastructure/buildagent"
	"github.com/previewlabs/preview-backend/pkg/infrastructure/github"
	"github.com/previewlabs/preview-backend/pkg/infrastructure/notify"
	"github.com/previewlabs/preview-backend/pkg/infrastructure/postgres/connection"
	"github.com/previewlabs/preview-backend/pkg/infrastructure/postgres/repositories"
	"github.com/previewlabs/preview-backend/pkg/infrastructure/registry"
	"github.com/previewlabs/preview-backend/pkg/infrastructure/remoteci"
	"github.com/previewlabs/preview-backend/pkg/orchestrator"
	"github.com/previewlabs/preview-backend/pkg/registrar"
	"github.com/previewlabs/preview-backend/pkg/resolver"
	"github.com/previewlabs/preview-backend/pkg/services"
	"github.com/previewlabs/preview-backend/pkg/taskmanager"

	"github.com/gin-contrib/cors"
	"github.com/joho/godotenv"
	"go.uber.org/zap"

	_ "github.com/previewlabs/preview-backend/docs"
)

// @title           Preview Backend
// @version         1.0
// @description     Preview Backend API

// @host      localhost:${PORT}
// @BasePath  /api/v1

// @securityDefinitions.basic  NoAuth
func main() {

	logger.Init()

	// Load .env file if it exists (optional for Docker runtime)
	if err := godotenv.Load(".env"); err != nil {
		logger.Infof("No .env file found, using environment variables: %s", err)
	}

	port := os.Getenv("PORT")

	if port == "" {
		port = "8000"
	}

	postgresUser := os.Getenv("POSTGRES_USER")
	postgresHost := os.Getenv("POSTGRES_HOST")
	postgresPassword := os.Getenv("POSTGRES_PASSWORD")
	postgresDatabase := os.Getenv("POSTGRES_DB")
	postgresPort := os.Getenv("POSTGRES_PORT")

	postgresDB, err := connection.Init(
		postgresUser,
		postgresHost,
		postgresPassword,
		postgresDatabase,
		postgresPort,
	)
	if err != nil {
		logger.Fatal("Failed to connect to postgres", zap.Error(err))
	}

	cfg := globalconfig.NewProvider()

	buildRepo := repositories.NewBuildPostgresRepository(postgresDB)
	deployRepo := repositories.NewDeployPostgresRepository(postgresDB)
	deployableRepo := repositories.NewDeployablePostgresRepository(postgresDB)
	templateRepo := repositories.NewTemplatePostgresRepository(postgresDB)
	overrideRepo := repositories.NewOverridePostgresRepository(postgresDB)

	scm := github.NewClient(
		context.Background(),
		os.Getenv("GITHUB_TOKEN"),
		os.Getenv("DECLARATIVE_CONFIG_PATH"),
	)
	registryClient := registry.NewClient(os.Getenv("REGISTRY_TOKEN_ENDPOINT"))
	agent := buildagent.NewClient(os.Getenv("BUILD_AGENT_ENDPOINT"))
	ci := remoteci.NewClient(cfg.Build().RemoteCIEndpoint, os.Getenv("REMOTE_CI_TOKEN"))

	selector := buildengine.NewSelector(
		buildengine.NewKanikoEngine(agent, registryClient, cfg),
		buildengine.NewBuildKitEngine(agent, registryClient, cfg),
		buildengine.NewRemoteCIEngine(ci, cfg),
		buildengine.NewDatastoreRestoreEngine(agent),
		buildengine.NewImageEngine(),
		buildengine.NewNoopEngine(),
	)

	taskManager := taskmanager.NewTaskManager(5, 20)

	orch := orchestrator.NewOrchestrator(
		buildRepo,
		deployRepo,
		resolver.NewResolver(templateRepo, overrideRepo, deployableRepo, scm),
		registrar.NewRegistrar(deployRepo, cfg),
		selector,
		scm,
		registryClient,
		notify.NewWebhookNotifier(os.Getenv("NOTIFY_WEBHOOK_URL")),
		notify.NewFileArchiver(os.Getenv("LOG_ARCHIVE_ROOT")),
		agent,
		cfg,
		taskManager,
	)

	previewService := services.NewPreviewService(buildRepo, deployRepo, overrideRepo, orch)

	// programmatically set swagger info
	docs.SwaggerInfo.Title = "Preview Backend"
	docs.SwaggerInfo.Description = "Preview Backend API"
	docs.SwaggerInfo.Version = "1.0"
	docs.SwaggerInfo.Schemes = []string{"http"}
	docs.SwaggerInfo.Host = fmt.Sprintf("localhost:%s", port)
	docs.SwaggerInfo.BasePath = "/api/v1"

	server := servers.NewServer(postgresDB, previewService)
	config := cors.DefaultConfig()
	config.AllowOrigins = []string{"*"}
	config.AllowMethods = []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"}
	config.AllowHeaders = []string{"*"}

	server.Use(cors.New(config))

	routes.SetupRoutes(server)

	// Drain in-flight deploy tasks before exiting.
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		sig := <-sigCh
		logger.Info("Shutting down", zap.String("signal", sig.String()))
		taskManager.Stop()
		os.Exit(0)
	}()

	err = server.Start(port)
	if err != nil {
		logger.Error("Failed to start server", zap.Error(err))
		log.Fatal(err)
	}
}
