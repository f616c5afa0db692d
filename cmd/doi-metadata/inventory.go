package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/pdiddy/doi-metadata/internal/inventory"
)

var missingCmd = &cobra.Command{
	Use:   "missing",
	Short: "List JSON records that have no matching folder",
	RunE:  runMissing,
}

var compareCmd = &cobra.Command{
	Use:   "compare",
	Short: "Compare registry PMCIDs against processed records and folders",
	Long: `Compare reads the PMCIDs of a registry file (a JSON array whose entries carry
publication.pmcid) and reports coverage, missing, and extra PMCIDs against the
stems of a processed-JSON directory and the folder names of a folders directory.`,
	RunE: runCompare,
}

var mkdirsCmd = &cobra.Command{
	Use:   "mkdirs <pmcid>...",
	Short: "Create placeholder folders for PMCIDs",
	Args:  cobra.MinimumNArgs(1),
	RunE:  runMkdirs,
}

func init() {
	missingCmd.Flags().String("json-dir", "", "directory of processed JSON records")
	missingCmd.Flags().String("folders-dir", "", "directory of per-PMCID folders")
	missingCmd.MarkFlagRequired("json-dir")
	missingCmd.MarkFlagRequired("folders-dir")

	compareCmd.Flags().String("registry", "", "registry JSON file")
	compareCmd.Flags().String("processed", "", "directory of processed JSON records")
	compareCmd.Flags().String("folders", "", "directory of per-PMCID folders")
	compareCmd.MarkFlagRequired("registry")

	mkdirsCmd.Flags().String("dest", "", "directory to create folders in (must exist)")
	mkdirsCmd.Flags().String("prefix", "empty_", "folder name prefix")
	mkdirsCmd.MarkFlagRequired("dest")

	rootCmd.AddCommand(missingCmd)
	rootCmd.AddCommand(compareCmd)
	rootCmd.AddCommand(mkdirsCmd)
}

func runMissing(cmd *cobra.Command, args []string) error {
	jsonDir, _ := cmd.Flags().GetString("json-dir")
	foldersDir, _ := cmd.Flags().GetString("folders-dir")

	missing, err := inventory.MissingFolders(jsonDir, foldersDir)
	if err != nil {
		return err
	}
	w := cmd.OutOrStdout()
	fmt.Fprintf(w, "Found %d JSON records with no folder:\n", len(missing))
	for _, id := range missing {
		fmt.Fprintln(w, id)
	}
	return nil
}

func runCompare(cmd *cobra.Command, args []string) error {
	registry, _ := cmd.Flags().GetString("registry")
	processed, _ := cmd.Flags().GetString("processed")
	folders, _ := cmd.Flags().GetString("folders")
	w := cmd.OutOrStdout()

	source, err := inventory.RegistryPMCIDs(registry, false)
	if err != nil {
		return err
	}
	fmt.Fprintf(w, "Found %d unique PMCIDs in %s\n", len(source), registry)

	var comparisons []inventory.Comparison
	if processed != "" {
		stems, err := inventory.JSONStems(processed)
		if err != nil {
			fmt.Fprintf(w, "ERROR: %v\n", err)
			stems = inventory.NewSet()
		}
		comparisons = append(comparisons, inventory.Compare("A. Registry PMCIDs vs processed JSONs", "processed JSONs", source, stems))
	}
	if folders != "" {
		dirs, err := inventory.Folders(folders)
		if err != nil {
			fmt.Fprintf(w, "ERROR: %v\n", err)
			dirs = inventory.NewSet()
		}
		comparisons = append(comparisons, inventory.Compare("B. Registry PMCIDs vs folders", "folders", source, dirs))
	}
	if len(comparisons) == 0 {
		return fmt.Errorf("provide --processed, --folders, or both")
	}

	inventory.WriteReport(w, comparisons)
	return nil
}

func runMkdirs(cmd *cobra.Command, args []string) error {
	dest, _ := cmd.Flags().GetString("dest")
	prefix, _ := cmd.Flags().GetString("prefix")

	_, _, err := inventory.CreatePlaceholders(dest, prefix, args, cmd.OutOrStdout())
	return err
}
