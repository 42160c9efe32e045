package outwriter

import (
	"encoding/csv"
	"io"
	"strconv"

	"github.com/NoahAizen44/SmarterTips/internal/contract"
	"github.com/NoahAizen44/SmarterTips/schema"

	"github.com/olekukonko/tablewriter"
)

// WriteTeams outputs the franchise reference table with recorded game counts.
func WriteTeams(teams []schema.TeamListing, cfg *contract.Config) error {
	return writeFormatted(cfg, formatWriters{
		table: func(w io.Writer) error {
			return writeTeamsTable(w, teams)
		},
		csv: func(w *csv.Writer) error {
			return writeTeamsCSV(w, teams)
		},
		json: func(w io.Writer) error {
			if teams == nil {
				teams = []schema.TeamListing{}
			}
			return writeJSON(w, teams)
		},
		subject: "teams",
	})
}

func writeTeamsTable(w io.Writer, teams []schema.TeamListing) error {
	table := tablewriter.NewWriter(w)
	table.Header([]string{"ID", "Key", "Abbr", "Name", "Games"})
	var data [][]string
	for _, t := range teams {
		data = append(data, []string{
			strconv.FormatInt(t.ID, 10),
			t.Key,
			t.Abbreviation,
			t.Name,
			strconv.Itoa(t.Games),
		})
	}
	if err := table.Bulk(data); err != nil {
		return err
	}
	return table.Render()
}

func writeTeamsCSV(w *csv.Writer, teams []schema.TeamListing) error {
	header := []string{"id", "key", "abbreviation", "name", "games"}
	records := make([][]string, 0, len(teams))
	for _, t := range teams {
		records = append(records, []string{
			strconv.FormatInt(t.ID, 10),
			t.Key,
			t.Abbreviation,
			t.Name,
			strconv.Itoa(t.Games),
		})
	}
	return writeCSVRows(w, header, records)
}
