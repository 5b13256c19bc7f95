package cli

import (
	"github.com/spf13/cobra"

	"github.com/lucasefe/pgts/typemap"
)

func newTypeMapCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "typemap",
		Short: "Print the default type map as YAML",
		Long: `Print the built-in PostgreSQL to TypeScript type map. The output is a valid
type_map_file and a starting point for overrides.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			data, err := typemap.Marshal(typemap.Default())
			if err != nil {
				return err
			}
			_, err = cmd.OutOrStdout().Write(data)
			return err
		},
	}
}
