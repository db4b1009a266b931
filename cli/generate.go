package cli

import (
	"context"
	"fmt"
	"net/http"
	"os"

	"go.uber.org/zap"

	"github.com/Anoesj/directus-typescript-gen/config"
	"github.com/Anoesj/directus-typescript-gen/directus"
	"github.com/Anoesj/directus-typescript-gen/openapits"
)

// RunOptions carries the collaborators of a generation run.
type RunOptions struct {
	Logger     *zap.Logger
	HTTPClient *http.Client
}

// Run generates the declarations file described by cfg. cfg must already be
// validated.
func Run(ctx context.Context, cfg *config.Config, opts RunOptions) error {
	logger := opts.Logger
	if logger == nil {
		logger = zap.NewNop()
	}

	policy, err := openapits.ParseMissingPolicy(cfg.MissingCollection)
	if err != nil {
		return err
	}

	raw, err := readSpec(ctx, cfg, opts.HTTPClient, logger)
	if err != nil {
		return err
	}

	if cfg.SpecOutFile != "" {
		logger.Info("writing spec", zap.String("path", cfg.SpecOutFile))
		if err := openapits.WriteSpecFile(cfg.SpecOutFile, raw); err != nil {
			return fmt.Errorf("failed to write spec file: %w", err)
		}
	}

	spec, err := openapits.LoadSpec(raw, openapits.LoadOptions{Validate: cfg.ValidateSpec, Logger: logger})
	if err != nil {
		return err
	}

	base, err := openapits.GenerateBase(spec.Doc, openapits.GenerateOptions{
		SchemaOrder: spec.SchemaOrder,
		Logger:      logger,
	})
	if err != nil {
		return fmt.Errorf("failed to generate declarations: %w", err)
	}

	decls, err := openapits.AssembleCollections(openapits.SchemaEntries(spec), cfg.TypeNames(), policy)
	if err != nil {
		return err
	}

	if err := openapits.WriteDocument(cfg.OutFile, openapits.Document(base, decls)); err != nil {
		return fmt.Errorf("failed to write declarations: %w", err)
	}

	logger.Info("wrote declarations", zap.String("path", cfg.OutFile))
	return nil
}

// readSpec returns the raw OpenAPI document, from disk when inFile is set and
// from the Directus instance otherwise.
func readSpec(ctx context.Context, cfg *config.Config, httpClient *http.Client, logger *zap.Logger) ([]byte, error) {
	if cfg.InFile != "" {
		logger.Info("reading spec", zap.String("path", cfg.InFile))
		raw, err := os.ReadFile(cfg.InFile)
		if err != nil {
			return nil, fmt.Errorf("failed to read spec file: %w", err)
		}
		return raw, nil
	}

	client, err := directus.NewClient(cfg.Host,
		directus.WithHTTPClient(httpClient),
		directus.WithLogger(logger),
	)
	if err != nil {
		return nil, err
	}

	token, err := client.Login(ctx, cfg.Email, cfg.Password)
	if err != nil {
		return nil, err
	}

	return client.FetchSpec(ctx, token)
}
