package cli

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/slgMitch/fidelity-interview/graph"
)

func newSchemaCmd() *cobra.Command {
	var out string

	cmd := &cobra.Command{
		Use:   "schema",
		Short: "Print the GraphQL schema",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if out != "" {
				return writeSchema(out)
			}
			sdl, err := graph.FormatSDL()
			if err != nil {
				return err
			}
			fmt.Fprint(cmd.OutOrStdout(), sdl)
			return nil
		},
	}
	cmd.Flags().StringVar(&out, "out", "", "write the schema to this file instead of stdout")
	return cmd
}

// writeSchema writes the formatted SDL to path, creating parent directories.
func writeSchema(path string) error {
	sdl, err := graph.FormatSDL()
	if err != nil {
		return err
	}
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("failed to create schema directory: %w", err)
		}
	}
	if err := os.WriteFile(path, []byte(sdl), 0o644); err != nil {
		return fmt.Errorf("failed to write schema: %w", err)
	}
	return nil
}
