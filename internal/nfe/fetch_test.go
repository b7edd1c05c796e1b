package nfe

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/farxc/nf_sync/internal/logger"
	"github.com/farxc/nf_sync/internal/supabase"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func quietLogger() *logger.Logger {
	return logger.New(logger.LevelError)
}

func writeRows(t *testing.T, w http.ResponseWriter, rows []map[string]any) {
	t.Helper()
	w.Header().Set("Content-Type", "application/json")
	require.NoError(t, json.NewEncoder(w).Encode(rows))
}

func writePostgRESTError(w http.ResponseWriter, status int, code, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	fmt.Fprintf(w, `{"code":%q,"message":%q,"details":null,"hint":null}`, code, message)
}

func TestFetchAll_SinglePage(t *testing.T) {
	requests := 0
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requests++
		assert.Equal(t, "/rest/v1/log_of_nf", r.URL.Path)
		writeRows(t, w, []map[string]any{
			{"OF": 1, "CHAVE_NF": "a"},
			{"OF": 2, "CHAVE_NF": "b"},
			{"OF": 3, "CHAVE_NF": "c"},
		})
	}))
	defer server.Close()

	client := supabase.New(server.URL, "test-key")
	rows, err := FetchAll(context.Background(), client, FetchOptions{Table: "log_of_nf", IncluirRemovidas: true}, quietLogger())

	require.NoError(t, err)
	assert.Len(t, rows, 3)
	// A short page must terminate the loop without a second request
	assert.Equal(t, 1, requests)
}

func TestFetchAll_MultiplePages(t *testing.T) {
	var ranges []string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ranges = append(ranges, r.Header.Get("Range"))
		switch r.Header.Get("Range") {
		case "0-1":
			writeRows(t, w, []map[string]any{
				{"CHAVE_NF": "a"},
				{"CHAVE_NF": "b"},
			})
		case "2-3":
			writeRows(t, w, []map[string]any{
				{"CHAVE_NF": "c"},
			})
		default:
			t.Errorf("unexpected range %q", r.Header.Get("Range"))
		}
	}))
	defer server.Close()

	client := supabase.New(server.URL, "test-key")
	rows, err := FetchAll(context.Background(), client, FetchOptions{Table: "log_of_nf", IncluirRemovidas: true, PageSize: 2}, quietLogger())

	require.NoError(t, err)
	assert.Len(t, rows, 3)
	assert.Equal(t, []string{"0-1", "2-3"}, ranges)
}

func TestFetchAll_EmptyFirstPage(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		writeRows(t, w, []map[string]any{})
	}))
	defer server.Close()

	client := supabase.New(server.URL, "test-key")
	rows, err := FetchAll(context.Background(), client, FetchOptions{Table: "log_of_nf", IncluirRemovidas: true}, quietLogger())

	require.NoError(t, err)
	assert.Empty(t, rows)
}

func TestFetchAll_OrderFallback(t *testing.T) {
	var orders []string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		order := r.URL.Query().Get("order")
		orders = append(orders, order)
		// Only the job-order column exists on this backend
		if order != "" && !strings.HasPrefix(order, "OF.") {
			writePostgRESTError(w, http.StatusBadRequest, "42703", "column does not exist")
			return
		}
		writeRows(t, w, []map[string]any{{"OF": 1, "CHAVE_NF": "a"}})
	}))
	defer server.Close()

	client := supabase.New(server.URL, "test-key")
	rows, err := FetchAll(context.Background(), client, FetchOptions{Table: "log_of_nf", IncluirRemovidas: true}, quietLogger())

	require.NoError(t, err)
	assert.Len(t, rows, 1)
	assert.Equal(t, []string{"bipado_em.asc", "CHAVE_NF.asc", "OF.asc"}, orders)
}

func TestFetchAll_UnorderedFallback(t *testing.T) {
	var orders []string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		order := r.URL.Query().Get("order")
		orders = append(orders, order)
		if order != "" {
			writePostgRESTError(w, http.StatusBadRequest, "42703", "column does not exist")
			return
		}
		writeRows(t, w, []map[string]any{{"CHAVE_NF": "a"}})
	}))
	defer server.Close()

	client := supabase.New(server.URL, "test-key")
	rows, err := FetchAll(context.Background(), client, FetchOptions{Table: "log_of_nf", IncluirRemovidas: true}, quietLogger())

	require.NoError(t, err)
	assert.Len(t, rows, 1)
	assert.Equal(t, []string{"bipado_em.asc", "CHAVE_NF.asc", "OF.asc", ""}, orders)
}

func TestFetchAll_SafetyOffsetCap(t *testing.T) {
	const pageSize = 500_000

	// One full page, serialized once; every request gets the same payload
	var payload strings.Builder
	payload.WriteString("[")
	for i := 0; i < pageSize; i++ {
		if i > 0 {
			payload.WriteString(",")
		}
		payload.WriteString(`{"CHAVE_NF":"k"}`)
	}
	payload.WriteString("]")
	page := []byte(payload.String())

	var ranges []string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ranges = append(ranges, r.Header.Get("Range"))
		w.Header().Set("Content-Type", "application/json")
		w.Write(page)
	}))
	defer server.Close()

	client := supabase.New(server.URL, "test-key")
	rows, err := FetchAll(context.Background(), client, FetchOptions{Table: "log_of_nf", IncluirRemovidas: true, PageSize: pageSize}, quietLogger())

	require.NoError(t, err)
	// A backend that always fills its pages must be cut off once the next
	// offset passes 1,000,000
	assert.Equal(t, []string{"0-499999", "500000-999999", "1000000-1499999"}, ranges)
	assert.Len(t, rows, 3*pageSize)
}

func TestFetchAll_TableNotFound(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		writePostgRESTError(w, http.StatusNotFound, "42P01", `relation "public.nope" does not exist`)
	}))
	defer server.Close()

	client := supabase.New(server.URL, "test-key")
	_, err := FetchAll(context.Background(), client, FetchOptions{Table: "nope", IncluirRemovidas: true}, quietLogger())

	require.Error(t, err)
	assert.Contains(t, err.Error(), "table nope not found")
}

func TestFetchAll_DuplicatesKept(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		writeRows(t, w, []map[string]any{
			{"CHAVE_NF": "dup"},
			{"CHAVE_NF": "dup"},
			{"OF": 9},
		})
	}))
	defer server.Close()

	client := supabase.New(server.URL, "test-key")
	rows, err := FetchAll(context.Background(), client, FetchOptions{Table: "log_of_nf", IncluirRemovidas: true}, quietLogger())

	require.NoError(t, err)
	// Duplicate keys are counted, never removed
	assert.Len(t, rows, 3)
}

func TestFetchAll_ExcludesRemovedRows(t *testing.T) {
	var filters []string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		filters = append(filters, r.URL.Query().Get("removido_em"))
		writeRows(t, w, []map[string]any{{"CHAVE_NF": "a"}})
	}))
	defer server.Close()

	client := supabase.New(server.URL, "test-key")
	_, err := FetchAll(context.Background(), client, FetchOptions{Table: "log_of_nf", IncluirRemovidas: false}, quietLogger())

	require.NoError(t, err)
	require.NotEmpty(t, filters)
	assert.Equal(t, "is.null", filters[0])
}
