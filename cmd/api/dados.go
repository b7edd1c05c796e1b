package main

import (
	"net/http"
	"os"
	"time"

	"github.com/farxc/nf_sync/internal/response"
)

type dadosMeta struct {
	File      string    `json:"file"`
	SizeBytes int64     `json:"size_bytes"`
	UpdatedAt time.Time `json:"updated_at"`
}

// handleGetDados streams the CSV produced by the last sync run.
func (app *application) handleGetDados(w http.ResponseWriter, r *http.Request) {
	if _, err := os.Stat(app.config.csvFile); os.IsNotExist(err) {
		writeJSONError(w, http.StatusNotFound, "no sync output available yet")
		return
	}

	w.Header().Set("Content-Type", "text/csv; charset=utf-8")
	http.ServeFile(w, r, app.config.csvFile)
}

func (app *application) handleGetDadosMeta(w http.ResponseWriter, r *http.Request) {
	info, err := os.Stat(app.config.csvFile)
	if os.IsNotExist(err) {
		writeJSONError(w, http.StatusNotFound, "no sync output available yet")
		return
	}
	if err != nil {
		writeJSONError(w, http.StatusInternalServerError, err.Error())
		return
	}

	meta := response.APIResponse[dadosMeta]{
		Success: true,
		Data: dadosMeta{
			File:      app.config.csvFile,
			SizeBytes: info.Size(),
			UpdatedAt: info.ModTime(),
		},
	}

	if err := writeJSON(w, http.StatusOK, meta); err != nil {
		writeJSONError(w, http.StatusInternalServerError, err.Error())
	}
}
