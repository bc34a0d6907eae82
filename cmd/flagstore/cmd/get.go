package cmd

import (
	"fmt"

	json "github.com/goccy/go-json"
	"github.com/spf13/cobra"

	"github.com/fagerli/flagstore/pkg/store"
)

// getCmd represents the get command
var getCmd = &cobra.Command{
	Use:   "get <package> [flag]",
	Short: "Look up a package or flag in the built tables",
	Long: `Look up a package, or a single flag within it, and print the
resolved metadata as JSON.

Examples:
  flagstore get com.android.adbd
  flagstore get com.android.adbd enable_tls`,
	Args: cobra.RangeArgs(1, 2),
	RunE: func(cmd *cobra.Command, args []string) error {
		dataDir, _ := cmd.Flags().GetString("data-dir")

		flagStore, err := store.Open(dataDir)
		if err != nil {
			return fmt.Errorf("failed to open store: %w", err)
		}

		var result any
		if len(args) == 1 {
			result, err = flagStore.GetPackage(args[0])
		} else {
			result, err = flagStore.GetFlag(args[0], args[1])
		}
		if err != nil {
			return err
		}

		data, err := json.MarshalIndent(result, "", "  ")
		if err != nil {
			return err
		}
		cmd.Println(string(data))
		return nil
	},
}

func init() {
	rootCmd.AddCommand(getCmd)
}
