package main

import (
	"coursetrack/config"
	"coursetrack/database"
	"coursetrack/middleware"
	"coursetrack/routers"
	"coursetrack/services/auth"
	"coursetrack/services/catalog"
	"coursetrack/services/certificates"
	"coursetrack/services/progress"
	"coursetrack/services/submissions"
	"coursetrack/storage"
	"coursetrack/utils"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"
)

func main() {
	cfg := config.LoadConfig()

	dbi, err := database.Connect(cfg)
	if err != nil {
		log.Fatalf("Failed to connect to the database: %v", err)
	}
	db := dbi.Db

	blobs, staticDir, err := newBlobStore(cfg)
	if err != nil {
		log.Fatalf("Failed to initialize blob storage: %v", err)
	}
	mailer := utils.NewMailer(cfg)

	app := routers.NewApp(routers.Deps{
		DB:           db,
		Blobs:        blobs,
		Auth:         auth.New(db, cfg.SaltRound, cfg.IsAdminEmail, middleware.GenerateJWT),
		Catalog:      catalog.New(db, blobs),
		Progress:     progress.New(db, mailer),
		Submissions:  submissions.New(db),
		Certificates: certificates.New(db, blobs, mailer),
		StaticDir:    staticDir,
		StaticPath:   cfg.BlobPublicURL,
	})

	scheduler, err := utils.StartBlobCleanupScheduler(db, blobs, cfg.BlobCleanupCron)
	if err != nil {
		log.Fatalf("Failed to start blob cleanup scheduler: %v", err)
	}

	go func() {
		log.Printf("Server is running on port %s", cfg.Port)
		if err := app.Listen(":" + cfg.Port); err != nil {
			log.Fatalf("Server stopped: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Println("Shutting down server...")

	if err := app.ShutdownWithTimeout(10 * time.Second); err != nil {
		log.Printf("Error shutting down server: %v", err)
	}
	<-scheduler.Stop().Done()
	if err := dbi.Close(); err != nil {
		log.Printf("Error closing database: %v", err)
	}
	log.Println("Server exited")
}

// newBlobStore picks the blob backend. Local storage is also served statically.
func newBlobStore(cfg *config.Config) (storage.BlobStore, string, error) {
	if cfg.BlobDriver == "http" {
		timeout := time.Duration(cfg.BlobTimeoutSeconds) * time.Second
		return storage.NewHTTPStore(cfg.BlobAPIURL, cfg.BlobAPIKey, timeout), "", nil
	}
	store, err := storage.NewLocalStore(cfg.BlobLocalDir, cfg.BlobPublicURL)
	if err != nil {
		return nil, "", err
	}
	return store, cfg.BlobLocalDir, nil
}
