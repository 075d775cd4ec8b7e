package main

import (
	"context"
	"log"

	"sigment-be/internal/bootstrap"
	"sigment-be/internal/config"
	"sigment-be/internal/server"
	"sigment-be/internal/tracer"
	"sigment-be/pkg/database"
)

func main() {
	shutdownTracer := tracer.InitTracer()
	defer shutdownTracer(context.Background())

	cfg := config.Load()

	gormDB, err := database.NewGormDBFromDSN(cfg.Database.Connection)
	if err != nil {
		log.Panicf("Unable to connect to GORM DB: %v", err)
	}

	container := bootstrap.NewContainer(gormDB, cfg)

	// Background workers: the audit consumer and the triage job consumers.
	if err := container.LifecycleConsumer.Consume(context.Background()); err != nil {
		log.Fatalf("Failed to start lifecycle consumer: %v", err)
	}
	if err := container.ProcessingService.Start(context.Background()); err != nil {
		log.Fatalf("Failed to start processing workers: %v", err)
	}

	srv := server.New(cfg, container)
	log.Fatal(srv.Run())
}
