package cmd

import (
	"fmt"
	"path/filepath"

	"github.com/segmentio/ksuid"
	"github.com/spf13/cobra"

	"github.com/fagerli/flagstore/pkg/builder"
	"github.com/fagerli/flagstore/pkg/registry"
)

// archiveCmd groups the snapshot registry commands
var archiveCmd = &cobra.Command{
	Use:   "archive",
	Short: "Manage the compressed snapshot registry",
	Long: `Archive built containers into a local registry and restore them
later. Snapshots are zstd-compressed and keyed by container name plus a
time-sortable id.`,
}

var archivePushCmd = &cobra.Command{
	Use:   "push <definition.yaml>",
	Short: "Build a definition and store it as a snapshot",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		registryDir, _ := cmd.Flags().GetString("registry-dir")

		def, err := builder.LoadContainerDef(args[0])
		if err != nil {
			return err
		}
		files, err := builder.Build(def)
		if err != nil {
			return err
		}

		reg, err := registry.Open(registryDir)
		if err != nil {
			return fmt.Errorf("failed to open registry: %w", err)
		}
		defer reg.Close()

		id, err := reg.Put(files)
		if err != nil {
			return err
		}
		cmd.Printf("archived %s as %s\n", def.Container, id)
		return nil
	},
}

var archiveListCmd = &cobra.Command{
	Use:   "list <container>",
	Short: "List the snapshots stored for a container",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		registryDir, _ := cmd.Flags().GetString("registry-dir")

		reg, err := registry.Open(registryDir)
		if err != nil {
			return fmt.Errorf("failed to open registry: %w", err)
		}
		defer reg.Close()

		snapshots, err := reg.List(args[0])
		if err != nil {
			return err
		}
		for _, s := range snapshots {
			cmd.Printf("%s  %s  %s\n", s.ID, s.ID.Time().UTC().Format("2006-01-02T15:04:05Z"), s.Container)
		}
		return nil
	},
}

var archiveRestoreCmd = &cobra.Command{
	Use:   "restore <container>",
	Short: "Restore a snapshot's table files to the data directory",
	Long: `Restore a snapshot to <data-dir>/<container>/. Without --id the
latest snapshot is restored.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		registryDir, _ := cmd.Flags().GetString("registry-dir")
		dataDir, _ := cmd.Flags().GetString("data-dir")
		rawID, _ := cmd.Flags().GetString("id")
		container := args[0]

		reg, err := registry.Open(registryDir)
		if err != nil {
			return fmt.Errorf("failed to open registry: %w", err)
		}
		defer reg.Close()

		var files *builder.StorageFiles
		var id ksuid.KSUID
		if rawID == "" {
			id, files, err = reg.Latest(container)
		} else {
			id, err = ksuid.Parse(rawID)
			if err != nil {
				return fmt.Errorf("invalid snapshot id: %w", err)
			}
			files, err = reg.Get(container, id)
		}
		if err != nil {
			return err
		}

		outDir := filepath.Join(dataDir, container)
		if err := files.WriteDir(outDir); err != nil {
			return err
		}
		cmd.Printf("restored %s snapshot %s -> %s\n", container, id, outDir)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(archiveCmd)
	archiveCmd.AddCommand(archivePushCmd)
	archiveCmd.AddCommand(archiveListCmd)
	archiveCmd.AddCommand(archiveRestoreCmd)
	archiveCmd.PersistentFlags().String("registry-dir", "./registry", "Directory for the snapshot registry")
	archiveRestoreCmd.Flags().String("id", "", "Snapshot id to restore (defaults to latest)")
}
