package store

import (
	"fmt"
	"io"
	"sort"

	"github.com/NoahAizen44/SmarterTips/schema"
)

// PrintStoreStatus prints league and model store status information.
func PrintStoreStatus(w io.Writer, league, models schema.StoreStatus) {
	_, _ = fmt.Fprintf(w, "Store Backend: %s\n", league.Backend)
	_, _ = fmt.Fprintf(w, "Connected: %t\n", league.Connected)
	if !league.Connected {
		return
	}
	_, _ = fmt.Fprintf(w, "Teams: %d\n", league.Teams)
	_, _ = fmt.Fprintf(w, "Games: %d\n", league.Games)
	_, _ = fmt.Fprintf(w, "Models: %d\n", models.Models)
	if models.Models > 0 {
		_, _ = fmt.Fprintf(w, "Last Model Update: %s\n", models.LastModelTime.Format("2006-01-02 15:04:05"))
	}
	if league.DatabaseSizeKB > 0 {
		_, _ = fmt.Fprintf(w, "Database Size: %d KB\n", league.DatabaseSizeKB)
	}
	sizes := make(map[string]int64, len(league.TableSizes)+len(models.TableSizes))
	for table, size := range league.TableSizes {
		sizes[table] = size
	}
	for table, size := range models.TableSizes {
		sizes[table] = size
	}
	printTableSizes(w, sizes)
}

// PrintRunStatus prints retrain run store status information.
func PrintRunStatus(w io.Writer, status schema.RunStatus) {
	_, _ = fmt.Fprintf(w, "Runs Backend: %s\n", status.Backend)
	_, _ = fmt.Fprintf(w, "Connected: %t\n", status.Connected)
	if !status.Connected {
		return
	}
	_, _ = fmt.Fprintf(w, "Total Runs: %d\n", status.TotalRuns)
	if status.TotalRuns > 0 {
		_, _ = fmt.Fprintf(w, "Last Run ID: %d (%s)\n", status.LastRunID, status.LastRunUUID)
		_, _ = fmt.Fprintf(w, "Last Run: %s\n", status.LastRunTime.Format("2006-01-02 15:04:05"))
		_, _ = fmt.Fprintf(w, "Oldest Run: %s\n", status.OldestRunTime.Format("2006-01-02 15:04:05"))
		_, _ = fmt.Fprintf(w, "Total Targets Trained: %d\n", status.TotalTrained)
	}
	printTableSizes(w, status.TableSizes)
}

func printTableSizes(w io.Writer, sizes map[string]int64) {
	tables := make([]string, 0, len(sizes))
	for table := range sizes {
		tables = append(tables, table)
	}
	sort.Strings(tables)
	_, _ = fmt.Fprintln(w, "Table Sizes:")
	for _, table := range tables {
		_, _ = fmt.Fprintf(w, "  %s: %d rows\n", table, sizes[table])
	}
}
