package config

import (
	"fmt"
	"strings"

	"github.com/yashh-d/chainpulse/internal/config"
	"github.com/yashh-d/chainpulse/internal/networks"
	"github.com/yashh-d/chainpulse/internal/timerange"
	"github.com/yashh-d/chainpulse/internal/util"

	"github.com/spf13/cobra"
)

// SetCommand returns the "config set" command.
func SetCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "set <key> <value>",
		Short: "Set a configuration value",
		Long: "Set a persistent configuration value.\n\n" +
			config.KeysHelp() +
			"\nExamples:\n" +
			"  chainpulse config set default-network avalanche\n" +
			"  chainpulse config set default-range 30D",
		Args: cobra.ExactArgs(2),
		Run:  runSet,
	}

	return cmd
}

// validators maps key names to optional pre-save validation functions.
// Keys not present in this map have no extra validation.
var validators = map[string]func(cmd *cobra.Command, value string) error{
	"default-network": validateNetwork,
	"default-range":   validateRange,
}

func runSet(cmd *cobra.Command, args []string) {
	key := util.NormalizeKey(args[0])
	value := args[1]

	spec := config.Lookup(key)
	if spec == nil {
		fmt.Fprintf(cmd.ErrOrStderr(), "Error: unknown configuration key %q\n", args[0])
		fmt.Fprintf(cmd.ErrOrStderr(), "Valid keys: %s\n", strings.Join(config.KeyNames(), ", "))
		return
	}

	if validate, ok := validators[spec.Name]; ok {
		if err := validate(cmd, value); err != nil {
			return // validate already printed the error
		}
	}

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(cmd.ErrOrStderr(), "Error: %v\n", err)
		return
	}

	normalized := normalizeValue(spec.Name, value)
	spec.Set(cfg, normalized)
	if err := cfg.Save(); err != nil {
		fmt.Fprintf(cmd.ErrOrStderr(), "Error: %v\n", err)
		return
	}

	fmt.Fprintf(cmd.OutOrStdout(), "%s set to %q\n", spec.Name, normalized)
}

// normalizeValue coerces a value into the form the key stores: network
// slugs are lowercased, range tokens upper-cased, URLs and listen
// addresses kept verbatim.
func normalizeValue(key, value string) string {
	switch key {
	case "default-network":
		return util.NormalizeKey(value)
	case "default-range":
		return strings.ToUpper(strings.TrimSpace(value))
	default:
		return strings.TrimSpace(value)
	}
}

// validateNetwork checks that the given slug is in the network catalog.
func validateNetwork(cmd *cobra.Command, name string) error {
	if _, err := networks.Lookup(name); err != nil {
		ids := make([]string, 0, len(networks.List()))
		for _, n := range networks.List() {
			ids = append(ids, n.ID)
		}
		fmt.Fprintf(cmd.ErrOrStderr(), "Error: unknown network %q\n", name)
		fmt.Fprintf(cmd.ErrOrStderr(), "Supported networks: %s\n", strings.Join(ids, ", "))
		return err
	}
	return nil
}

// validateRange checks that the given token is a standard picker token.
func validateRange(cmd *cobra.Command, token string) error {
	trimmed := strings.TrimSpace(token)
	for _, t := range timerange.Tokens() {
		if strings.EqualFold(t, trimmed) {
			return nil
		}
	}
	fmt.Fprintf(cmd.ErrOrStderr(), "Error: unknown range token %q\n", token)
	fmt.Fprintf(cmd.ErrOrStderr(), "Valid tokens: %s\n", strings.Join(timerange.Tokens(), ", "))
	return fmt.Errorf("unknown range token %q", token)
}
