package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/pdiddy/doi-metadata/internal/pdfsync"
)

var syncCmd = &cobra.Command{
	Use:   "sync-pdfs",
	Short: "Copy main-text PDFs into per-PMCID folders",
	Long: `Sync-pdfs copies every PDF in --source to --dest/<PMCID>/<PMCID>_main.pdf. The
PMCID is the file name before "_main", or the stem. When the folder already
exists, PDFs there with the same byte size as the source are removed before
the copy.`,
	RunE: runSync,
}

func init() {
	syncCmd.Flags().String("source", "", "directory of source PDFs")
	syncCmd.Flags().String("dest", "", "directory of per-PMCID folders")
	syncCmd.MarkFlagRequired("source")
	syncCmd.MarkFlagRequired("dest")

	rootCmd.AddCommand(syncCmd)
}

func runSync(cmd *cobra.Command, args []string) error {
	src, _ := cmd.Flags().GetString("source")
	dest, _ := cmd.Flags().GetString("dest")

	sum, err := pdfsync.Sync(src, dest, cmd.OutOrStdout())
	if err != nil {
		return err
	}
	if n := sum.Count(pdfsync.ActionFailed); n > 0 {
		return fmt.Errorf("%d file(s) failed to sync", n)
	}
	return nil
}
