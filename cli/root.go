// Package cli provides the command-line interface for directus-typescript-gen.
package cli

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/Anoesj/directus-typescript-gen/config"
	"github.com/Anoesj/directus-typescript-gen/logging"
	"github.com/Anoesj/directus-typescript-gen/openapits"
)

// Version is set at build time via -ldflags "-X".
var Version = "dev"

// flagAliases maps accepted alternative flag names to their canonical name.
var flagAliases = map[string]string{
	"typeName": "appTypeName",
}

// NewRootCommand builds the directus-typescript-gen command.
func NewRootCommand() *cobra.Command {
	var cfgFile string

	cmd := &cobra.Command{
		Use:   "directus-typescript-gen",
		Short: "Generate TypeScript types for a Directus instance",
		Long: `directus-typescript-gen logs in to a Directus instance, downloads the
OpenAPI document describing its data model and writes TypeScript declarations
for it, including a type mapping every collection to its item type.

Every flag can also be set through a DIRECTUS_<FLAG> environment variable
(e.g. DIRECTUS_PASSWORD) or a config file.

Example:
  directus-typescript-gen --host http://localhost:8055 --email admin@example.com \
    --password secret --outFile directus.d.ts
  directus-typescript-gen --inFile spec.json --outFile directus.d.ts`,
		Version:       Version,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(cmd.Flags(), cfgFile)
			if err != nil {
				return err
			}
			if err := cfg.Validate(); err != nil {
				return err
			}

			logger, err := logging.NewLogger(logging.Config{
				Component: "directus-typescript-gen",
				Level:     cfg.LogLevel,
				Output:    cmd.ErrOrStderr(),
			})
			if err != nil {
				return err
			}
			defer func() { _ = logger.Sync() }()

			return Run(cmd.Context(), cfg, RunOptions{Logger: logger})
		},
	}

	defaults := config.Default()
	flags := cmd.Flags()
	flags.SetNormalizeFunc(normalizeFlagName)

	flags.StringVarP(&cfgFile, "config", "c", "", "config file (YAML or JSON)")
	flags.String("host", "", "Directus host, e.g. http://localhost:8055 (required)")
	flags.String("email", "", "email address of the user to log in as (required)")
	flags.String("password", "", "password of the user to log in as (required)")
	flags.String("outFile", "", "path of the generated TypeScript file (required)")
	flags.String("specOutFile", "", "also write the OpenAPI document to this path (.json, .yaml or .yml)")
	flags.String("inFile", "", "read the OpenAPI document from this file instead of the host")
	flags.String("appTypeName", defaults.AppTypeName, "name of the type for user-defined collections (alias --typeName)")
	flags.String("directusTypeName", defaults.DirectusTypeName, "name of the type for Directus system collections")
	flags.String("allTypeName", defaults.AllTypeName, "name of the type combining all collections")
	flags.String("missingCollection", defaults.MissingCollection,
		"handling of schemas without "+openapits.CollectionExtension+": undefined, skip or error")
	flags.Bool("validate", false, "validate the OpenAPI document before generating")
	flags.String("logLevel", defaults.LogLevel, "log level: debug, info, warn, error")

	return cmd
}

// normalizeFlagName resolves flag aliases to their canonical name.
func normalizeFlagName(_ *pflag.FlagSet, name string) pflag.NormalizedName {
	if canonical, ok := flagAliases[name]; ok {
		name = canonical
	}
	return pflag.NormalizedName(name)
}

// Execute runs the root command, cancelling in-flight requests on interrupt.
// This is called by main.main().
func Execute() error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	return NewRootCommand().ExecuteContext(ctx)
}
