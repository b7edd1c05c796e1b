package nfe

import (
	"context"
	"fmt"

	"github.com/farxc/nf_sync/internal/logger"
	"github.com/farxc/nf_sync/internal/supabase"
)

const (
	// DefaultPageSize is the window size of each range request.
	DefaultPageSize = 1000
	// maxOffset is a safety cap against runaway pagination on a
	// misbehaving backend.
	maxOffset = 1_000_000
)

// orderCandidates are tried in order until the backend accepts one. Pagination
// without a stable order can repeat or skip rows between pages.
var orderCandidates = []string{"bipado_em", "CHAVE_NF", "OF"}

// unordered marks that every candidate was rejected by the backend.
const unordered = ""

type FetchOptions struct {
	Table string
	// IncluirRemovidas keeps soft-deleted rows (removido_em not null).
	IncluirRemovidas bool
	PageSize         int
}

// FetchAll pages through the whole table and returns every row. Duplicate
// keys are only counted for diagnostics, never dropped.
func FetchAll(ctx context.Context, client *supabase.Client, opts FetchOptions, appLogger *logger.Logger) ([]Registro, error) {
	const component = "Fetcher"

	pageSize := opts.PageSize
	if pageSize <= 0 {
		pageSize = DefaultPageSize
	}

	appLogger.Info(component, "Starting table fetch: table=%s", opts.Table)

	var allRows []Registro
	seenKeys := make(map[string]struct{})
	offset := 0
	orderField := orderCandidates[0]
	orderResolved := false

	for {
		inicio := offset
		fim := offset + pageSize - 1
		appLogger.Info(component, "Fetching records %d to %d", inicio, fim)

		rows, usedOrder, err := fetchPage(ctx, client, opts, orderField, orderResolved, inicio, fim)
		if err != nil {
			if supabase.IsUndefinedTable(err) {
				return nil, fmt.Errorf("table %s not found on backend: %v", opts.Table, err)
			}
			return nil, fmt.Errorf("failed to fetch records %d to %d from table %s: %v", inicio, fim, opts.Table, err)
		}

		if !orderResolved {
			orderField = usedOrder
			orderResolved = true
			if orderField == unordered {
				appLogger.Warn(component, "No order column accepted by backend, paginating unordered: table=%s", opts.Table)
			} else {
				appLogger.Debug(component, "Pagination order resolved: column=%s", orderField)
			}
		}

		if len(rows) == 0 {
			break
		}

		for _, registro := range rows {
			seenKeys[dedupKey(registro)] = struct{}{}
			allRows = append(allRows, Registro(registro))
		}

		appLogger.Info(component, "Loaded %d records so far: uniqueKeys=%d", len(allRows), len(seenKeys))

		if len(rows) < pageSize {
			break
		}

		offset += pageSize
		if offset > maxOffset {
			appLogger.Warn(component, "Safety offset limit reached: offset=%d", offset)
			break
		}
	}

	appLogger.Info(component, "Fetch completed: totalRecords=%d uniqueKeys=%d", len(allRows), len(seenKeys))
	return allRows, nil
}

// fetchPage runs one range request. While the order column is unresolved it
// walks the candidate list, retrying the same window on each rejection.
func fetchPage(ctx context.Context, client *supabase.Client, opts FetchOptions, orderField string, orderResolved bool, inicio, fim int) ([]map[string]any, string, error) {
	candidates := []string{orderField}
	if !orderResolved {
		candidates = append([]string{}, orderCandidates...)
		candidates = append(candidates, unordered)
	}

	var lastErr error
	for _, candidate := range candidates {
		query := client.From(opts.Table).Select("*")
		if !opts.IncluirRemovidas {
			query = query.IsNull("removido_em")
		}
		if candidate != unordered {
			query = query.Order(candidate, true)
		}

		rows, err := query.Range(inicio, fim).Execute(ctx)
		if err != nil {
			if !orderResolved && candidate != unordered && supabase.IsInvalidOrder(err) {
				lastErr = err
				continue
			}
			return nil, candidate, err
		}
		return rows, candidate, nil
	}

	return nil, unordered, lastErr
}

// dedupKey identifies a row by its CHAVE_NF, falling back to a string
// rendering of the whole row when the key is missing.
func dedupKey(row map[string]any) string {
	if chave, ok := row["CHAVE_NF"].(string); ok && chave != "" {
		return chave
	}
	return fmt.Sprintf("%v", row)
}
