package main

import (
	"log"

	"github.com/farxc/nf_sync/internal/env"
	"github.com/joho/godotenv"
)

func main() {
	_ = godotenv.Load()

	cfg := config{
		addr:    env.GetString("ADDR", ":8080"),
		csvFile: env.GetString("CSV_FILE", "dados_supabase.csv"),
	}

	app := &application{
		config: cfg,
	}

	mux := app.mount()

	log.Fatal(app.run(mux))
}
