package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/pocketcalc/pcalc/internal/cli"
	"github.com/pocketcalc/pcalc/internal/i18n"
	"github.com/pocketcalc/pcalc/internal/utils"
	"github.com/pocketcalc/pcalc/internal/validation"
)

func main() {
	var (
		port    = flag.Int("port", 0, "Server port (default: port from config.json, 8080)")
		dataDir = flag.String("data", "", "Data directory (default: $PCALC_DATA_DIR or ~/.pcalc)")
		lang    = flag.String("lang", "", "Message language (ja|en)")
		debug   = flag.Bool("debug", false, "Enable debug mode")
	)
	flag.Parse()

	// 国際化システムを初期化
	i18n.Initialize()

	config, err := utils.LoadAppConfig(*dataDir)
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}
	if *lang != "" {
		config.Language = *lang
	}
	if *port != 0 {
		config.Port = *port
	}
	if *debug {
		config.Debug = true
	}
	if err := validation.NewConfigValidator().Validate(config); err != nil {
		log.Fatalf("Invalid configuration: %v", err)
	}
	if err := cli.ApplyMessages(config); err != nil {
		log.Fatalf("Failed to load messages: %v", err)
	}

	env, err := cli.OpenEnvironment(config)
	if err != nil {
		log.Fatalf("Failed to open data directory: %v", err)
	}
	defer env.Close()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	addr := fmt.Sprintf(":%d", config.Port)
	log.Printf("🌐 %s", i18n.T("server_starting", addr))
	log.Printf("📁 Data directory: %s", config.DataDir)
	log.Printf("🗣️  Language: %s", config.Language)
	if config.Debug {
		log.Printf("🐛 Debug mode enabled")
	}

	if err := cli.RunServer(ctx, env, addr); err != nil {
		log.Printf("Server failed: %v", err)
		env.Close()
		stop()
		os.Exit(1)
	}
}
