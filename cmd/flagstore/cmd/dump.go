package cmd

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/fagerli/flagstore/pkg/codec"
)

// dumpCmd represents the dump command
var dumpCmd = &cobra.Command{
	Use:   "dump <dir>",
	Short: "Decode and print the table files in a directory",
	Long: `Decode the package table, flag table, and flag value list in a
directory and print their structure, bucket layout included.

Example:
  flagstore dump ./data/system`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		dir := args[0]

		pkgBuf, err := os.ReadFile(filepath.Join(dir, codec.PackageMapFile))
		if err != nil {
			return err
		}
		pkgTable, err := codec.DecodePackageTable(pkgBuf)
		if err != nil {
			return fmt.Errorf("%s: %w", codec.PackageMapFile, err)
		}

		flagBuf, err := os.ReadFile(filepath.Join(dir, codec.FlagMapFile))
		if err != nil {
			return err
		}
		flagTable, err := codec.DecodeFlagTable(flagBuf)
		if err != nil {
			return fmt.Errorf("%s: %w", codec.FlagMapFile, err)
		}

		valBuf, err := os.ReadFile(filepath.Join(dir, codec.FlagValFile))
		if err != nil {
			return err
		}
		values, err := codec.DecodeFlagValueList(valBuf)
		if err != nil {
			return fmt.Errorf("%s: %w", codec.FlagValFile, err)
		}

		out := cmd.OutOrStdout()
		h := pkgTable.Header
		fmt.Fprintf(out, "%s: version=%d container=%s size=%d packages=%d buckets=%d\n",
			codec.PackageMapFile, h.Version, h.Container, h.FileSize,
			h.NumPackages, len(pkgTable.Buckets))
		for _, n := range pkgTable.Nodes {
			fmt.Fprintf(out, "  package %-40s id=%-4d boolean_offset=%-4d next=%d\n",
				n.PackageName, n.PackageID, n.BooleanOffset, n.NextOffset)
		}

		fh := flagTable.Header
		fmt.Fprintf(out, "%s: version=%d container=%s size=%d flags=%d buckets=%d\n",
			codec.FlagMapFile, fh.Version, fh.Container, fh.FileSize,
			fh.NumFlags, len(flagTable.Buckets))
		for _, n := range flagTable.Nodes {
			fmt.Fprintf(out, "  flag %d/%-34s type=%-17s index=%-4d next=%d\n",
				n.PackageID, n.FlagName, n.FlagType, n.FlagIndex, n.NextOffset)
		}

		vh := values.Header
		fmt.Fprintf(out, "%s: version=%d container=%s size=%d flags=%d\n",
			codec.FlagValFile, vh.Version, vh.Container, vh.FileSize, vh.NumFlags)
		for i, v := range values.Booleans {
			fmt.Fprintf(out, "  [%d] %t\n", i, v)
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(dumpCmd)
}
