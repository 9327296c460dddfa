package cmd

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/Aman-CERP/tmbliss/internal/marker"
	"github.com/Aman-CERP/tmbliss/pkg/version"
)

// versionReport is the --json output: build info plus the store an `auto`
// backend resolves to on this platform.
type versionReport struct {
	version.BuildInfo
	DefaultStore string `json:"default_store"`
}

func newVersionCmd() *cobra.Command {
	var asJSON, short bool

	cmd := &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Long: `Print the version, git commit, build date and Go version, and the marker
store used when --store is left at auto.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			out := cmd.OutOrStdout()
			defaultStore := marker.ResolveBackend(marker.BackendAuto)

			switch {
			case short:
				_, err := fmt.Fprintln(out, version.Short())
				return err
			case asJSON:
				enc := json.NewEncoder(out)
				enc.SetIndent("", "  ")
				return enc.Encode(versionReport{BuildInfo: version.GetInfo(), DefaultStore: defaultStore})
			default:
				_, err := fmt.Fprintf(out, "%s\ndefault store: %s\n", version.String(), defaultStore)
				return err
			}
		},
	}

	cmd.Flags().BoolVar(&asJSON, "json", false, "Output version info as JSON")
	cmd.Flags().BoolVar(&short, "short", false, "Output only the version number (wins over --json)")

	return cmd
}
