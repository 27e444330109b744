// Package cmd implements the pybump command-line interface.
package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/papapumpkin/pybump/internal/config"
	"github.com/papapumpkin/pybump/internal/logging"
	"github.com/papapumpkin/pybump/internal/release"
)

var rootCmd = &cobra.Command{
	Use:   "pybump [<newversion> | major | minor | patch | bump]",
	Short: "Bump the project version in pyproject.toml, then commit and tag",
	Long: `pybump updates the project.version field of pyproject.toml following
PEP440-style rules, commits the change with the new version as the message,
and tags the commit (v<version>, or test-<version> for pre-releases).

With no argument, "bump" is assumed: a patch bump for normal releases, a
pre-release number bump for pre-releases. Switching between pre-release and
normal release requires an explicit version argument.`,
	Args:          cobra.MaximumNArgs(1),
	SilenceUsage:  true,
	SilenceErrors: true,
	RunE:          runBump,
}

// Execute runs the root command. Fatal errors print to stderr and exit 1.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func init() {
	cobra.OnInitialize(initConfig)

	rootCmd.Flags().BoolP("test", "t", false, "use the test- tag prefix instead of v")
	rootCmd.Flags().BoolP("dry-run", "n", false, "show what would be done without making changes")
	rootCmd.Flags().String("manifest", "", "path to pyproject.toml (default ./pyproject.toml)")
	rootCmd.Flags().BoolP("verbose", "v", false, "verbose output")

	_ = viper.BindPFlag("manifest", rootCmd.Flags().Lookup("manifest"))
	_ = viper.BindPFlag("verbose", rootCmd.Flags().Lookup("verbose"))
}

func initConfig() {
	// Settings come from flags and PYBUMP_* env only; no config file is read.
	viper.SetEnvPrefix("PYBUMP")
	viper.AutomaticEnv()
}

func runBump(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}
	log := logging.New(cfg.Verbose)

	testTag, _ := cmd.Flags().GetBool("test")
	dryRun, _ := cmd.Flags().GetBool("dry-run")

	arg := ""
	if len(args) == 1 {
		arg = args[0]
	}

	wd, err := os.Getwd()
	if err != nil {
		return fmt.Errorf("resolving working directory: %w", err)
	}

	report, err := release.Run(cmd.Context(), release.Options{
		Dir:          wd,
		ManifestPath: cfg.Manifest,
		Arg:          arg,
		TestTag:      testTag,
		DryRun:       dryRun,
		Log:          log,
	})
	if err != nil {
		return err
	}

	for _, w := range report.Warnings {
		log.Warn().Msg(w)
	}
	fmt.Fprint(cmd.OutOrStdout(), report.Render())
	return nil
}
