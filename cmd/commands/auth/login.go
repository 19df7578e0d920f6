package auth

import (
	"fmt"
	"os"
	"strings"

	"github.com/yashh-d/chainpulse/internal/services/auth"

	"golang.org/x/term"

	"github.com/spf13/cobra"
)

func LoginCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "login <service>",
		Short: "Store an API key for a service",
		Long: `Store an API key for a data service using the local keychain.

Known services: ` + strings.Join(auth.KnownServices, ", ") + `

Example:
  chainpulse auth login dune`,
		Args: cobra.ExactArgs(1),
		Run: func(cmd *cobra.Command, args []string) {
			service := auth.NormalizeService(args[0])
			if service == "" {
				fmt.Fprintln(os.Stderr, "service is required")
				return
			}
			if !auth.IsKnownService(service) {
				fmt.Fprintf(os.Stderr, "unknown service %q (known: %s)\n",
					args[0], strings.Join(auth.KnownServices, ", "))
				return
			}

			key, err := cmd.Flags().GetString("key")
			if err != nil {
				fmt.Fprintln(os.Stderr, err)
				return
			}

			key = strings.TrimSpace(key)
			if key == "" {
				fmt.Fprint(os.Stdout, "Enter API key: ")
				bytes, err := term.ReadPassword(int(os.Stdin.Fd()))
				fmt.Fprintln(os.Stdout)
				if err != nil {
					fmt.Fprintln(os.Stderr, err)
					return
				}
				key = strings.TrimSpace(string(bytes))
			}

			if key == "" {
				fmt.Fprintln(os.Stderr, "key cannot be empty")
				return
			}

			store := auth.DefaultStore()
			if err := store.SetToken(service, key); err != nil {
				fmt.Fprintln(os.Stderr, err)
				return
			}

			fmt.Fprintf(os.Stdout, "Saved key for service %s\n", service)
		},
	}

	cmd.Flags().String("key", "", "API key (optional, overrides prompt)")

	return cmd
}
