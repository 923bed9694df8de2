package main

import (
	"log"
	"os"

	"github.com/deepwork/internal/cli"
	"github.com/deepwork/internal/config"
)

func main() {
	if err := config.LoadDotEnv(); err != nil {
		log.Printf("failed to load .env: %v", err)
	}
	if err := cli.Execute(); err != nil {
		os.Exit(1)
	}
}
