// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"fmt"
	"os"
	"strings"

	"github.com/google/uuid"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/pdiddy/doi-metadata/internal/httputil"
	"github.com/pdiddy/doi-metadata/internal/observability"
	"github.com/pdiddy/doi-metadata/internal/output"
	"github.com/pdiddy/doi-metadata/internal/resolve"
	"github.com/pdiddy/doi-metadata/pkg/types"
)

var resolveCmd = &cobra.Command{
	Use:   "resolve <text>",
	Short: "Resolve a DOI, DOI URL, or citation text into a metadata record",
	Long: `Resolve extracts the first DOI from its argument, looks up PubMed identifiers,
and queries CrossRef, Zenodo, arXiv, bioRxiv, and medRxiv in order until one
returns a record with a title. Europe PMC is tried last when a PMID is known.

The record is printed to stdout and written to <output-dir>/metadata_<pmid>.json
(or metadata_doi_<doi>.json when no PMID is known). The attempt trace goes to
stderr.`,
	Args: cobra.MinimumNArgs(1),
	RunE: runResolve,
}

func init() {
	resolveCmd.Flags().String("output-dir", "", "directory for the record file (default .)")
	resolveCmd.Flags().String("format", "", "output format: json or csl (csl also writes a CSL-YAML file)")
	resolveCmd.Flags().Bool("dry-run", false, "print the record without writing files")
	resolveCmd.Flags().Duration("timeout", 0, "HTTP client timeout (default 30s)")
	resolveCmd.Flags().Duration("source-timeout", 0, "timeout for one source call (default 10s)")
	resolveCmd.Flags().Float64("rate-limit", 0, "maximum requests per second across sources (default 5)")
	resolveCmd.Flags().String("email", "", "contact email sent to CrossRef and NCBI")
	resolveCmd.Flags().String("metrics-file", "", "write prometheus metrics in textfile format to this path")

	viper.BindPFlag("output.dir", resolveCmd.Flags().Lookup("output-dir"))
	viper.BindPFlag("output.format", resolveCmd.Flags().Lookup("format"))
	viper.BindPFlag("http.timeout", resolveCmd.Flags().Lookup("timeout"))
	viper.BindPFlag("http.source_timeout", resolveCmd.Flags().Lookup("source-timeout"))
	viper.BindPFlag("http.rate_limit", resolveCmd.Flags().Lookup("rate-limit"))
	viper.BindPFlag("contact.email", resolveCmd.Flags().Lookup("email"))
	viper.BindPFlag("metrics.file", resolveCmd.Flags().Lookup("metrics-file"))

	rootCmd.AddCommand(resolveCmd)
}

func runResolve(cmd *cobra.Command, args []string) error {
	input := strings.Join(args, " ")

	cfg, err := resolveConfig(viper.GetViper(), loadedSecrets)
	if err != nil {
		return err
	}
	dryRun, _ := cmd.Flags().GetBool("dry-run")

	logger := observability.WithRun(newLogger(), uuid.NewString(), input)
	metrics := observability.NewMetrics()
	defer func() {
		if err := metrics.WriteTextfile(viper.GetString("metrics.file")); err != nil {
			logger.Warn().Err(err).Msg("metrics not written")
		}
	}()

	r := resolve.New(cfg, httputil.NewClient(cfg.HTTPConfig), logger, metrics)
	res, err := r.Run(cmd.Context(), input)
	if err != nil {
		return err
	}

	data, err := output.MarshalRecord(*res.Record)
	if err != nil {
		return err
	}
	fmt.Fprintf(os.Stderr, "\nResolved via %s:\n", res.Source)
	if _, err := cmd.OutOrStdout().Write(data); err != nil {
		return fmt.Errorf("writing record: %w", err)
	}

	if dryRun {
		return nil
	}
	return writeOutputs(cfg, *res.Record)
}

func writeOutputs(cfg types.ResolveConfig, rec types.MetadataRecord) error {
	path, err := output.WriteRecord(cfg.OutputDir, rec)
	if err != nil {
		return err
	}
	fmt.Fprintf(os.Stderr, "Saved to file: %s\n", path)

	if cfg.Format == types.OutputCSL {
		cslPath, err := output.WriteCSL(cfg.OutputDir, rec)
		if err != nil {
			return err
		}
		fmt.Fprintf(os.Stderr, "Saved CSL-YAML: %s\n", cslPath)
	}
	return nil
}
