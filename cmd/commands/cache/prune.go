package cache

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/yashh-d/chainpulse/internal/snapstore"

	"github.com/spf13/cobra"
)

func PruneCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "prune",
		Short: "Delete cached points older than a duration",
		Long: `Delete snapshot points older than a duration.

Examples:
  chainpulse cache prune --older-than 365d
  chainpulse cache prune --older-than 720h`,
		Args:         cobra.NoArgs,
		RunE:         runPrune,
		SilenceUsage: true,
	}

	cmd.Flags().String("older-than", "", "Remove points older than this duration (e.g. 90d, 720h)")

	return cmd
}

func runPrune(cmd *cobra.Command, args []string) error {
	olderThanRaw, _ := cmd.Flags().GetString("older-than")
	olderThanRaw = strings.TrimSpace(olderThanRaw)
	if olderThanRaw == "" {
		return fmt.Errorf("--older-than is required")
	}

	olderThan, err := parseDuration(olderThanRaw)
	if err != nil {
		return err
	}

	repo, err := snapstore.Open()
	if err != nil {
		return fmt.Errorf("failed to open snapshot store: %w", err)
	}
	defer repo.Close()

	removed, err := repo.PruneBefore(time.Now().Add(-olderThan))
	if err != nil {
		return fmt.Errorf("failed to prune cache: %w", err)
	}

	fmt.Fprintf(cmd.OutOrStdout(), "Removed %d snapshot point(s).\n", removed)
	return nil
}

// parseDuration accepts time.ParseDuration syntax plus a day suffix,
// e.g. "90d".
func parseDuration(input string) (time.Duration, error) {
	if before, ok := strings.CutSuffix(input, "d"); ok {
		days, err := strconv.Atoi(before)
		if err != nil {
			return 0, fmt.Errorf("invalid duration %q", input)
		}
		if days < 0 {
			return 0, fmt.Errorf("duration must be positive")
		}
		return time.Duration(days) * 24 * time.Hour, nil
	}

	d, err := time.ParseDuration(input)
	if err != nil {
		return 0, fmt.Errorf("invalid duration %q", input)
	}
	if d < 0 {
		return 0, fmt.Errorf("duration must be positive")
	}
	return d, nil
}
