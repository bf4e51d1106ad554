// cmd/tools/program-registry/main.go
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var registryPath string

var rootCmd = &cobra.Command{
	Use:   "program-registry",
	Short: "Maintain the immigration program catalog",
	Long: `program-registry exports, validates and indexes the program catalog that the
CRS workers match applicants against, and can score a profile locally.`,
	SilenceUsage: true,
}

func init() {
	rootCmd.PersistentFlags().StringVar(&registryPath, "path", "configs/programs.json", "Path to the program registry file")
	rootCmd.AddCommand(exportCmd, validateCmd, indexCmd, scoreCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
