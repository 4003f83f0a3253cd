package main

import (
	"context"
	"flag"
	"fmt"
	"log"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/joho/godotenv"
	"go.uber.org/zap"

	"github.com/kailas-cloud/lexai/internal/app"
	"github.com/kailas-cloud/lexai/internal/config"
	logpkg "github.com/kailas-cloud/lexai/internal/logger"
	"github.com/kailas-cloud/lexai/internal/tui"
	"github.com/kailas-cloud/lexai/internal/version"
)

func main() {
	_ = godotenv.Load()

	var cfgPath, logPath string
	flag.StringVar(&cfgPath, "config", "", "Path to YAML config file (default: config/<ENV>.yaml)")
	flag.StringVar(&logPath, "log", "", "Write logs to this file (default: discard)")
	showVersion := flag.Bool("version", false, "Print version and exit")
	flag.Parse()

	if *showVersion {
		fmt.Println(version.String())
		return
	}

	env := config.GetEnv()
	var (
		cfg config.Config
		err error
	)
	if cfgPath == "" {
		cfg, err = config.Load(env)
	} else {
		cfg, err = config.LoadFile(cfgPath)
	}
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	// the terminal belongs to the UI, so logs go to a file or nowhere
	logger := zap.NewNop()
	if logPath != "" {
		if logger, err = logpkg.NewLogger(env, cfg.Logging.Level, logPath); err != nil {
			log.Fatalf("failed to create logger: %v", err)
		}
	}
	defer func() { _ = logger.Sync() }()

	a, err := app.New(context.Background(), cfg, logger)
	if err != nil {
		log.Fatalf("failed to build application: %v", err)
	}
	defer a.Close()

	if _, err := tea.NewProgram(tui.New(a.Retrieval), tea.WithAltScreen()).Run(); err != nil {
		log.Fatal(err)
	}
}
