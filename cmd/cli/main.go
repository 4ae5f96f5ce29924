package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/rs/zerolog"

	"github.com/dvloznov/profit-report/internal/config"
	"github.com/dvloznov/profit-report/internal/fetch"
	"github.com/dvloznov/profit-report/internal/logger"
	"github.com/dvloznov/profit-report/internal/pipeline"
	"github.com/dvloznov/profit-report/internal/presentation"
)

func main() {
	log := logger.New()

	if len(os.Args) < 2 {
		printUsage()
		os.Exit(1)
	}

	switch os.Args[1] {
	case "sheets":
		runSheets(log)
	case "report":
		runReport(log)
	case "help", "-h", "--help":
		printUsage()
	default:
		fmt.Fprintf(os.Stderr, "Unknown command: %s\n\n", os.Args[1])
		printUsage()
		os.Exit(1)
	}
}

func printUsage() {
	fmt.Println("Profit Report CLI")
	fmt.Println("\nUsage:")
	fmt.Println("  cli <command> [options]")
	fmt.Println("\nCommands:")
	fmt.Println("  sheets    List the selectable sheets")
	fmt.Println("  report    Fetch a sheet and print its report")
	fmt.Println("  help      Show this help message")
	fmt.Println("\nRun 'cli <command> -h' for more information on a command.")
}

func loadConfig(log zerolog.Logger, dir string) (*config.Config, zerolog.Logger) {
	cfg, err := config.LoadConfig(dir)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to load configuration")
	}
	return cfg, logger.NewWithFormat(cfg.LogFormat, cfg.LogLevel)
}

func runSheets(log zerolog.Logger) {
	fs := flag.NewFlagSet("sheets", flag.ExitOnError)
	configDir := fs.String("config", ".", "Directory containing config.yaml and .env")
	fs.Parse(os.Args[2:])

	cfg, _ := loadConfig(log, *configDir)
	resolver := fetch.NewResolver(cfg.Source, cfg.Sheets)

	for i, sheet := range resolver.Sheets() {
		marker := " "
		if i == 0 {
			marker = "*"
		}
		fmt.Printf("%s %-24s %s\n", marker, sheet, fetch.MonthLabel(sheet))
	}
}

func runReport(log zerolog.Logger) {
	fs := flag.NewFlagSet("report", flag.ExitOnError)
	configDir := fs.String("config", ".", "Directory containing config.yaml and .env")
	sheet := fs.String("sheet", "", "Sheet label (defaults to the first configured sheet)")
	page := fs.Int("page", 1, "Table page number")
	format := fs.String("format", "text", "Output format: text, json or yaml")
	fs.Parse(os.Args[2:])

	outFormat, err := presentation.ParseFormat(*format)
	if err != nil {
		log.Fatal().Err(err).Msg("Invalid -format")
	}

	cfg, log := loadConfig(log, *configDir)

	resolver := fetch.NewResolver(cfg.Source, cfg.Sheets)
	fetcher := fetch.NewDefaultFetcher(cfg.Source, log)
	svc := pipeline.NewService(resolver, fetcher, pipeline.OptionsFromConfig(cfg), log)
	presenter := presentation.NewPresenterFromConfig(cfg)

	ctx, cancel := context.WithTimeout(context.Background(), 2*cfg.Source.Timeout+5*time.Second)
	defer cancel()
	ctx = logger.WithContext(ctx, log)

	report, err := svc.BuildReport(ctx, *sheet, *page)
	if err != nil {
		if fetch.IsFetchError(err) {
			log.Fatal().Err(err).Msg("Could not retrieve sheet data")
		}
		log.Fatal().Err(err).Msg("Report failed")
	}

	if err := presentation.Encode(os.Stdout, presenter.Build(report), outFormat); err != nil {
		log.Fatal().Err(err).Msg("Failed to write report")
	}
}
