package main

import (
	"context"
	"flag"
	"log"
	"time"

	"github.com/farxc/nf_sync/internal/env"
	"github.com/farxc/nf_sync/internal/logger"
	"github.com/farxc/nf_sync/internal/nfe"
	"github.com/farxc/nf_sync/internal/supabase"
	"github.com/joho/godotenv"
)

type config struct {
	supabaseURL      string
	supabaseKey      string
	table            string
	pageSize         int
	incluirRemovidas bool
	outputFile       string
}

func main() {
	const component = "Main"

	// Remove default timestamp since the logger adds its own
	log.SetFlags(0)

	// Best-effort for local runs, the scheduled runner injects real env vars
	_ = godotenv.Load()

	outputPtr := flag.String("output", "dados_supabase.csv", "Path of the generated CSV file")
	logLevelPtr := flag.String("loglevel", "info", "Log level: debug, info, warn, error")
	incluirRemovidasPtr := flag.Bool("incluirRemovidas", env.GetBool("SUPABASE_INCLUIR_REMOVIDAS", true), "Keep soft-deleted rows in the output")
	flag.Parse()

	appLogger := logger.New(logger.ParseLevel(*logLevelPtr))

	startingTime := time.Now()
	appLogger.Info(component, "Supabase -> CSV sync starting: startTime=%s", startingTime.Format(time.RFC3339))

	cfg := config{
		supabaseURL:      env.GetString("SUPABASE_URL", ""),
		supabaseKey:      env.GetString("SUPABASE_KEY", ""),
		table:            env.GetString("SUPABASE_TABELA_LOG", "log_of_nf"),
		pageSize:         env.GetInt("SUPABASE_PAGE_SIZE", nfe.DefaultPageSize),
		incluirRemovidas: *incluirRemovidasPtr,
		outputFile:       *outputPtr,
	}

	if cfg.supabaseURL == "" || cfg.supabaseKey == "" {
		appLogger.Fatal(component, "SUPABASE_URL and SUPABASE_KEY must be configured")
		return
	}

	appLogger.Info(component, "Connecting to Supabase: url=%s table=%s", cfg.supabaseURL, cfg.table)
	client := supabase.New(cfg.supabaseURL, cfg.supabaseKey)

	ctx := context.Background()

	rows, err := nfe.FetchAll(ctx, client, nfe.FetchOptions{
		Table:            cfg.table,
		IncluirRemovidas: cfg.incluirRemovidas,
		PageSize:         cfg.pageSize,
	}, appLogger)
	if err != nil {
		appLogger.Fatal(component, "Data fetch failed: error=%v", err)
		return
	}

	if len(rows) == 0 {
		if err := nfe.SaveEmptyCSV(cfg.outputFile); err != nil {
			appLogger.Fatal(component, "Failed to write empty CSV: file=%s error=%v", cfg.outputFile, err)
			return
		}
		appLogger.Info(component, "No records found, empty CSV created: file=%s", cfg.outputFile)
		return
	}

	appLogger.Info(component, "Enriching records: totalRecords=%d", len(rows))
	enriched := nfe.Enrich(rows)

	appLogger.Info(component, "Saving CSV: file=%s", cfg.outputFile)
	df := nfe.BuildDataFrame(enriched)
	if df.Error() != nil {
		appLogger.Fatal(component, "Failed to assemble output table: error=%v", df.Error())
		return
	}

	if err := nfe.SaveDataFrame(df, cfg.outputFile); err != nil {
		appLogger.Fatal(component, "Failed to save CSV: file=%s error=%v", cfg.outputFile, err)
		return
	}

	timeTaken := time.Since(startingTime)
	appLogger.Info(component, "Sync completed successfully: records=%d duration=%.2f seconds", len(enriched), timeTaken.Seconds())
}
