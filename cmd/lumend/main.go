package main

import (
	"context"
	"log"

	"lumen/internal/daemonrun"
)

func main() {
	cfg, err := loadConfig()
	if err != nil {
		log.Fatalf("load config: %v", err)
	}
	if err := daemonrun.Run(context.Background(), cfg, runOptions()); err != nil {
		log.Fatalf("lumend: %v", err)
	}
}
