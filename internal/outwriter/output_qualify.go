package outwriter

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"
	"time"

	"github.com/NoahAizen44/SmarterTips/internal/contract"
	"github.com/NoahAizen44/SmarterTips/schema"

	"github.com/olekukonko/tablewriter"
	"github.com/olekukonko/tablewriter/tw"
)

// WriteQualifying outputs the qualifying players of a team.
func WriteQualifying(players []schema.QualifyingPlayer, cfg *contract.Config, duration time.Duration) error {
	return writeFormatted(cfg, formatWriters{
		table: func(w io.Writer) error {
			return writeQualifyingTable(w, players, cfg, duration)
		},
		csv: func(w *csv.Writer) error {
			return writeQualifyingCSV(w, players, cfg.Precision)
		},
		json: func(w io.Writer) error {
			if players == nil {
				players = []schema.QualifyingPlayer{}
			}
			return writeJSON(w, players)
		},
		subject: "qualifying players",
	})
}

func writeQualifyingTable(w io.Writer, players []schema.QualifyingPlayer, cfg *contract.Config, duration time.Duration) error {
	fmtFloat, intFmt := createFormatters(cfg.Precision)
	nameWidth := getMaxNameWidth(cfg, 45)

	table := tablewriter.NewWriter(w)
	table.Header([]string{"Rank", "Player", "MPG", "Played", "Missed"})
	table.Configure(func(cfg *tablewriter.Config) {
		cfg.Row.Alignment.Global = tw.AlignRight
	})

	var data [][]string
	for i, p := range players {
		data = append(data, []string{
			strconv.Itoa(i + 1),
			contract.TruncateName(schema.DisplayName(p.Player), nameWidth),
			fmtFloat(p.AvgMinutes),
			fmt.Sprintf(intFmt, p.GamesPlayed),
			fmt.Sprintf(intFmt, p.GamesMissed),
		})
	}
	if err := table.Bulk(data); err != nil {
		return err
	}
	if err := table.Render(); err != nil {
		return err
	}
	_, err := fmt.Fprintf(w, "Showing %d qualifying players in %v\n", len(players), duration)
	return err
}

func writeQualifyingCSV(w *csv.Writer, players []schema.QualifyingPlayer, precision int) error {
	fmtFloat, intFmt := createFormatters(precision)
	header := []string{"rank", "player", "avg_minutes", "games_played", "games_missed"}
	records := make([][]string, 0, len(players))
	for i, p := range players {
		records = append(records, []string{
			strconv.Itoa(i + 1),
			p.Player,
			fmtFloat(p.AvgMinutes),
			fmt.Sprintf(intFmt, p.GamesPlayed),
			fmt.Sprintf(intFmt, p.GamesMissed),
		})
	}
	return writeCSVRows(w, header, records)
}

// WriteImpact outputs the with/without usage splits around one absent teammate.
func WriteImpact(results []schema.ImpactResult, cfg *contract.Config, duration time.Duration) error {
	return writeFormatted(cfg, formatWriters{
		table: func(w io.Writer) error {
			return writeImpactTable(w, results, cfg, duration)
		},
		csv: func(w *csv.Writer) error {
			return writeImpactCSV(w, results, cfg.Precision)
		},
		json: func(w io.Writer) error {
			if results == nil {
				results = []schema.ImpactResult{}
			}
			return writeJSON(w, results)
		},
		subject: "impact",
	})
}

func writeImpactTable(w io.Writer, results []schema.ImpactResult, cfg *contract.Config, duration time.Duration) error {
	fmtFloat, intFmt := createFormatters(cfg.Precision)
	nameWidth := getMaxNameWidth(cfg, 70)

	table := tablewriter.NewWriter(w)
	table.Header([]string{"Rank", "Player", "With", "Without", "Impact %", "Games With", "Games Without"})
	table.Configure(func(cfg *tablewriter.Config) {
		cfg.Row.Alignment.Global = tw.AlignRight
	})

	var data [][]string
	for _, r := range results {
		data = append(data, []string{
			strconv.Itoa(r.Rank),
			contract.TruncateName(schema.DisplayName(r.Player), nameWidth),
			fmtFloat(r.WithUsage),
			fmtFloat(r.WithoutUsage),
			fmtSigned(cfg.Precision, r.ImpactPct),
			fmt.Sprintf(intFmt, r.GamesWith),
			fmt.Sprintf(intFmt, r.GamesWithout),
		})
	}
	if err := table.Bulk(data); err != nil {
		return err
	}
	if err := table.Render(); err != nil {
		return err
	}
	_, err := fmt.Fprintf(w, "Showing top %d players in %v\n", len(results), duration)
	return err
}

func writeImpactCSV(w *csv.Writer, results []schema.ImpactResult, precision int) error {
	fmtFloat, intFmt := createFormatters(precision)
	header := []string{"rank", "player", "with_usage", "without_usage", "impact_pct", "games_with", "games_without"}
	records := make([][]string, 0, len(results))
	for _, r := range results {
		records = append(records, []string{
			strconv.Itoa(r.Rank),
			r.Player,
			fmtFloat(r.WithUsage),
			fmtFloat(r.WithoutUsage),
			fmtFloat(r.ImpactPct),
			fmt.Sprintf(intFmt, r.GamesWith),
			fmt.Sprintf(intFmt, r.GamesWithout),
		})
	}
	return writeCSVRows(w, header, records)
}
