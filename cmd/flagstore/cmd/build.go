package cmd

import (
	"path/filepath"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/fagerli/flagstore/pkg/builder"
)

// buildCmd represents the build command
var buildCmd = &cobra.Command{
	Use:   "build <definition.yaml>...",
	Short: "Compile container definitions into table files",
	Long: `Compile one or more YAML container definitions into their binary
package table, flag table, and flag value list.

Each container is written to <data-dir>/<container>/. Definitions build
concurrently; a rebuild of unchanged definitions is byte-identical.

Example:
  flagstore build system.yaml vendor.yaml`,
	Args: cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		dataDir, _ := cmd.Flags().GetString("data-dir")
		limit, _ := cmd.Flags().GetInt("parallel")

		g := new(errgroup.Group)
		g.SetLimit(limit)
		for _, path := range args {
			path := path
			g.Go(func() error {
				def, err := builder.LoadContainerDef(path)
				if err != nil {
					return err
				}
				files, err := builder.Build(def)
				if err != nil {
					return err
				}
				outDir := filepath.Join(dataDir, def.Container)
				if err := files.WriteDir(outDir); err != nil {
					return err
				}
				cmd.Printf("built %s: %d packages, %d flags -> %s\n",
					def.Container,
					files.PackageTable.Header.NumPackages,
					files.FlagTable.Header.NumFlags,
					outDir)
				return nil
			})
		}
		return g.Wait()
	},
}

func init() {
	rootCmd.AddCommand(buildCmd)
	buildCmd.Flags().Int("parallel", 4, "Maximum definitions to build concurrently")
}
