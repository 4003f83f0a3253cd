package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"
	"go.uber.org/zap"

	"github.com/kailas-cloud/lexai/internal/app"
	"github.com/kailas-cloud/lexai/internal/config"
	logpkg "github.com/kailas-cloud/lexai/internal/logger"
	"github.com/kailas-cloud/lexai/internal/usecase/indexing"
	"github.com/kailas-cloud/lexai/internal/version"
)

func main() {
	_ = godotenv.Load()

	var cfgPath, in, out, jurisdiction string
	flag.StringVar(&cfgPath, "config", "", "Path to YAML config file (default: config/<ENV>.yaml)")
	flag.StringVar(&in, "in", "", "JSON array of {url,title,subtitle,content} records (required)")
	flag.StringVar(&out, "out", "", "Corpus locator to write: path[.gz], redis://key or sql://table")
	flag.StringVar(&jurisdiction, "jurisdiction", "", "Write to this jurisdiction's configured corpus instead of -out")
	showVersion := flag.Bool("version", false, "Print version and exit")
	flag.Parse()

	if *showVersion {
		fmt.Println(version.String())
		return
	}

	if in == "" || (out == "" && jurisdiction == "") {
		fmt.Fprintln(os.Stderr, "Usage: lexai-index -in records.json (-out locator | -jurisdiction name) [-config file]")
		os.Exit(2)
	}

	env := config.GetEnv()
	cfg, err := loadConfig(env, cfgPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load config: %v\n", err)
		os.Exit(1)
	}

	logger, err := logpkg.NewLogger(env, cfg.Logging.Level)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to create logger: %v\n", err)
		os.Exit(1)
	}
	defer func() { _ = logger.Sync() }()

	if jurisdiction != "" {
		jc, ok := cfg.Jurisdictions[jurisdiction]
		if !ok {
			logger.Fatal("Unknown jurisdiction", zap.String("jurisdiction", jurisdiction),
				zap.Strings("configured", cfg.JurisdictionNames()))
		}
		out = jc.Corpus
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	a, err := app.New(ctx, cfg, logger)
	if err != nil {
		logger.Fatal("Failed to build application", zap.Error(err))
	}
	defer a.Close()

	f, err := os.Open(in)
	if err != nil {
		logger.Fatal("Open records", zap.Error(err))
	}
	records, err := indexing.DecodeRecords(f)
	_ = f.Close()
	if err != nil {
		logger.Fatal("Read records", zap.String("path", in), zap.Error(err))
	}

	stats, err := a.Indexing.Index(ctx, records, out)
	if err != nil {
		logger.Fatal("Indexing failed", zap.String("out", out), zap.Error(err))
	}
	fmt.Printf("indexed %d records (%d skipped, %d dims, %d tokens) into %s in %s\n",
		stats.Records, stats.Skipped, stats.Dimensions, stats.TotalTokens, out, stats.Duration)
}

func loadConfig(env, path string) (config.Config, error) {
	if path == "" {
		return config.Load(env)
	}
	return config.LoadFile(path)
}
