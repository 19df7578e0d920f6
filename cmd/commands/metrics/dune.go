package metrics

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"strings"
	"text/tabwriter"

	"github.com/yashh-d/chainpulse/internal/services/auth"
	"github.com/yashh-d/chainpulse/internal/sources"
	"github.com/yashh-d/chainpulse/internal/util"

	"github.com/spf13/cobra"
)

func DuneCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "dune <ecosystem>",
		Short: "Run the curated Dune queries for an ecosystem",
		Long: `Execute the curated Dune Analytics queries for an ecosystem and print
each result set. Requires a Dune API key (see 'chainpulse auth login
dune').

Known ecosystems: ` + strings.Join(sources.Ecosystems(), ", ") + `

Examples:
  # Run every curated query for sei
  chainpulse metrics dune sei

  # JSON output for scripting
  chainpulse metrics dune optimism -o json`,
		Args:         cobra.ExactArgs(1),
		RunE:         runDune,
		SilenceUsage: true,
	}

	cmd.Flags().StringP("output", "o", "table", "Output format: table or json")

	return cmd
}

// duneQueryResult pairs a query ID with its rows for JSON output.
type duneQueryResult struct {
	QueryID int              `json:"query_id"`
	Rows    []map[string]any `json:"rows"`
}

func runDune(cmd *cobra.Command, args []string) error {
	ecosystem := util.NormalizeKey(args[0])
	queries := sources.QueriesFor(ecosystem)
	if len(queries) == 0 {
		return fmt.Errorf("unknown ecosystem %q (known: %s)", args[0], strings.Join(sources.Ecosystems(), ", "))
	}

	key, err := auth.DefaultStore().GetToken("dune")
	if err != nil {
		if errors.Is(err, auth.ErrTokenNotFound) {
			return fmt.Errorf("dune api key not found (run 'chainpulse auth login dune')")
		}
		return fmt.Errorf("failed to read dune api key: %w", err)
	}

	client := sources.NewDuneClient(key)
	ctx := context.Background()

	output, _ := cmd.Flags().GetString("output")
	if output != "table" && output != "json" {
		return fmt.Errorf("unsupported output format %q (use table or json)", output)
	}

	var results []duneQueryResult
	for _, queryID := range queries {
		rows, err := client.Run(ctx, queryID)
		if err != nil {
			return fmt.Errorf("dune query %d failed: %w", queryID, err)
		}
		results = append(results, duneQueryResult{QueryID: queryID, Rows: rows})
	}

	if output == "json" {
		enc := json.NewEncoder(cmd.OutOrStdout())
		enc.SetIndent("", "  ")
		enc.Encode(results)
		return nil
	}

	for i, res := range results {
		if i > 0 {
			fmt.Fprintln(cmd.OutOrStdout())
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Query %d (%d rows)\n", res.QueryID, len(res.Rows))
		printDuneRows(cmd, res.Rows)
	}

	return nil
}

// printDuneRows renders ad-hoc query rows with columns derived from the
// row keys, sorted for a stable layout.
func printDuneRows(cmd *cobra.Command, rows []map[string]any) {
	if len(rows) == 0 {
		fmt.Fprintln(cmd.OutOrStdout(), "  (no rows)")
		return
	}

	keySet := make(map[string]bool)
	for _, row := range rows {
		for k := range row {
			keySet[k] = true
		}
	}
	keys := make([]string, 0, len(keySet))
	for k := range keySet {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 3, ' ', 0)

	header := make([]string, len(keys))
	dashes := make([]string, len(keys))
	for i, k := range keys {
		header[i] = strings.ToUpper(k)
		dashes[i] = strings.Repeat("-", len(k))
	}
	fmt.Fprintln(w, strings.Join(header, "\t"))
	fmt.Fprintln(w, strings.Join(dashes, "\t"))

	for _, row := range rows {
		cells := make([]string, len(keys))
		for i, k := range keys {
			v, ok := row[k]
			if !ok || v == nil {
				cells[i] = "-"
				continue
			}
			cells[i] = fmt.Sprintf("%v", v)
		}
		fmt.Fprintln(w, strings.Join(cells, "\t"))
	}

	w.Flush()
}
