// cmd/tools/program-registry/commands.go
package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"strings"
	"time"

	"immigration-workers/internal/common/config"
	"immigration-workers/internal/common/database"
	"immigration-workers/internal/common/validation"
	"immigration-workers/internal/crs"
	"immigration-workers/pkg/registry"

	"github.com/pkg/errors"
	"github.com/spf13/cobra"
)

var (
	exportForce  bool
	indexName    string
	scoreProfile string
	scoreCutoff  int
	scorePolicy  string
)

var exportCmd = &cobra.Command{
	Use:   "export",
	Short: "Write the built-in catalog to the registry file",
	RunE: func(cmd *cobra.Command, args []string) error {
		if _, err := os.Stat(registryPath); err == nil && !exportForce {
			return errors.Errorf("%s already exists (use --force to overwrite)", registryPath)
		}
		catalog := crs.DefaultCatalog()
		if err := registry.SaveRegistry(registryPath, registry.FromCatalog(catalog, time.Now())); err != nil {
			return errors.Wrapf(err, "failed to write %s", registryPath)
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Exported %d programs to %s\n", len(catalog), registryPath)
		return nil
	},
}

var validateCmd = &cobra.Command{
	Use:   "validate",
	Short: "Check the registry file for duplicate ids and unknown requirement checks",
	RunE: func(cmd *cobra.Command, args []string) error {
		catalog, err := registry.LoadCatalog(registryPath)
		if err != nil {
			return errors.Wrap(err, "registry validation failed")
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Registry validation passed: %d programs\n", len(catalog))
		return nil
	},
}

var indexCmd = &cobra.Command{
	Use:   "index",
	Short: "Index the registry into Elasticsearch for program search",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.Load()
		if err != nil {
			return errors.Wrap(err, "failed to load config")
		}
		catalog, err := registry.LoadCatalog(registryPath)
		if err != nil {
			return errors.Wrap(err, "failed to load registry")
		}

		es, err := database.NewElasticsearch(cfg.Database.Elasticsearch)
		if err != nil {
			return err
		}

		ctx, cancel := context.WithTimeout(cmd.Context(), time.Minute)
		defer cancel()

		if err := es.Ping(ctx); err != nil {
			return err
		}

		index := indexName
		if index == "" {
			index = cfg.Search.ProgramsIndex
		}
		n, err := registry.IndexPrograms(ctx, es.Client, index, catalog)
		if err != nil {
			return errors.Wrapf(err, "failed to index programs into %s", index)
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Indexed %d programs into %s\n", n, index)
		return nil
	},
}

var scoreCmd = &cobra.Command{
	Use:   "score",
	Short: "Score a profile file against the registry and print the result as JSON",
	RunE: func(cmd *cobra.Command, args []string) error {
		if scoreProfile == "" {
			return errors.New("--profile is required")
		}
		raw, err := os.ReadFile(scoreProfile)
		if err != nil {
			return errors.Wrapf(err, "failed to read profile %s", scoreProfile)
		}

		var doc interface{}
		if err := json.Unmarshal(raw, &doc); err != nil {
			return errors.Wrap(err, "profile is not valid JSON")
		}
		res, err := validation.ValidateProfile(doc)
		if err != nil {
			return err
		}
		if !res.Valid {
			return errors.Errorf("profile failed validation: %s", strings.Join(res.GetErrorMessages(), "; "))
		}

		var profile crs.Profile
		if err := json.Unmarshal(raw, &profile); err != nil {
			return errors.Wrap(err, "failed to decode profile")
		}

		catalog, err := registry.LoadCatalog(catalogPath())
		if err != nil {
			return errors.Wrap(err, "failed to load registry")
		}

		engine := crs.NewEngine(
			crs.WithCatalog(catalog),
			crs.WithUnknownValuePolicy(crs.UnknownValuePolicy(scorePolicy)),
		)
		result, err := engine.Score(profile, scoreCutoff)
		if err != nil {
			return errors.Wrap(err, "scoring failed")
		}

		enc := json.NewEncoder(cmd.OutOrStdout())
		enc.SetIndent("", "  ")
		return enc.Encode(result)
	},
}

// catalogPath falls back to the built-in catalog when the default registry
// file has not been exported yet.
func catalogPath() string {
	if _, err := os.Stat(registryPath); err != nil {
		return ""
	}
	return registryPath
}

func init() {
	exportCmd.Flags().BoolVar(&exportForce, "force", false, "Overwrite an existing registry file")
	indexCmd.Flags().StringVar(&indexName, "index", "", "Target index (defaults to search.programs_index)")
	scoreCmd.Flags().StringVar(&scoreProfile, "profile", "", "Path to a profile JSON file")
	scoreCmd.Flags().IntVar(&scoreCutoff, "cutoff", 0, "Cutoff to classify against")
	scoreCmd.Flags().StringVar(&scorePolicy, "unknown-values", string(crs.PolicyLenient), "lenient or reject")
}
