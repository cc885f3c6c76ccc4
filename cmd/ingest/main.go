package main

import (
	"os"

	"github.com/akolanti/PersonaRAG/internal/config"
	"github.com/akolanti/PersonaRAG/pkg/logger_i"
)

func main() {
	logger_i.Init(config.Load().Server.Production)
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
