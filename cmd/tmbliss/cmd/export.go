package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/Aman-CERP/tmbliss/internal/errors"
	"github.com/Aman-CERP/tmbliss/internal/marker"
	"github.com/Aman-CERP/tmbliss/internal/pathmatch"
)

func newExportCmd() *cobra.Command {
	var (
		store storeFlags
		under string
	)

	cmd := &cobra.Command{
		Use:   "export",
		Short: "Print every path recorded as excluded, one per line",
		Long: `Print the paths recorded in a store that keeps a list of its marks
(sqlite or memory), one per line, sorted. The output can be fed to other
backup tools as an exclude file.`,
		Example: `  tmbliss run --path ~/src --store sqlite
  tmbliss export > ~/.config/restic/excludes.txt`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			s, closeStore, err := openStore(store.options())
			if err != nil {
				return err
			}
			defer closeStore()

			lister, ok := s.(marker.Lister)
			if !ok {
				return errors.ValidationError(
					fmt.Sprintf("store %q cannot list its marks", marker.ResolveBackend(store.backend)), nil).
					WithSuggestion("Use --store sqlite")
			}

			paths, err := lister.List()
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			for _, p := range paths {
				if under != "" && !pathmatch.IsInside(under, p) {
					continue
				}
				if _, err := fmt.Fprintln(out, p); err != nil {
					return err
				}
			}
			return nil
		},
	}

	store.bind(cmd, marker.BackendSQLite)
	cmd.Flags().StringVar(&under, "under", "", "Only print paths inside this directory")

	return cmd
}
