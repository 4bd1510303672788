package main

import (
	"context"
	"log"

	"taskdeck/internal/app"
	"taskdeck/internal/config"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("loading config: %v", err)
	}

	application := app.New(cfg)
	if err := application.Init(context.Background()); err != nil {
		log.Fatalf("initializing app: %v", err)
	}

	if err := application.Run(context.Background()); err != nil {
		log.Fatalf("running app: %v", err)
	}
}
