// Package config provides configuration loading and validation for directus-typescript-gen.
package config

import (
	"fmt"
	"strings"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"github.com/Anoesj/directus-typescript-gen/openapits"
)

// EnvPrefix prefixes the environment variables that mirror the flags,
// e.g. DIRECTUS_PASSWORD for --password.
const EnvPrefix = "DIRECTUS"

// Config represents the generator configuration.
type Config struct {
	// Host is the base URL of the Directus instance
	Host string `mapstructure:"host"`

	// Email and Password are exchanged for an access token
	Email    string `mapstructure:"email"`
	Password string `mapstructure:"password"`

	// OutFile receives the generated TypeScript declarations
	OutFile string `mapstructure:"outFile"`

	// SpecOutFile optionally receives the raw OpenAPI document
	SpecOutFile string `mapstructure:"specOutFile"`

	// InFile reads the OpenAPI document from disk instead of the host
	InFile string `mapstructure:"inFile"`

	// AppTypeName names the type of user-defined collections
	AppTypeName string `mapstructure:"appTypeName"`

	// DirectusTypeName names the type of system collections
	DirectusTypeName string `mapstructure:"directusTypeName"`

	// AllTypeName names the intersection of both collection types
	AllTypeName string `mapstructure:"allTypeName"`

	// MissingCollection is the policy for schemas without x-collection
	MissingCollection string `mapstructure:"missingCollection"`

	// ValidateSpec runs OpenAPI document validation before generating
	ValidateSpec bool `mapstructure:"validate"`

	// LogLevel is the minimum log severity
	LogLevel string `mapstructure:"logLevel"`
}

// ValidationError represents a configuration validation error.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("config validation error: %s: %s", e.Field, e.Message)
}

// ValidationErrors represents multiple validation errors.
type ValidationErrors []ValidationError

func (e ValidationErrors) Error() string {
	if len(e) == 0 {
		return "no validation errors"
	}
	if len(e) == 1 {
		return e[0].Error()
	}
	var sb strings.Builder
	sb.WriteString("config validation errors:\n")
	for _, err := range e {
		sb.WriteString("  - ")
		sb.WriteString(err.Field)
		sb.WriteString(": ")
		sb.WriteString(err.Message)
		sb.WriteString("\n")
	}
	return sb.String()
}

// Default returns a Config with default values.
func Default() *Config {
	names := openapits.DefaultTypeNames()
	return &Config{
		AppTypeName:       names.App,
		DirectusTypeName:  names.Directus,
		AllTypeName:       names.All,
		MissingCollection: string(openapits.MissingUndefined),
		LogLevel:          "info",
	}
}

// Load resolves the configuration from, in increasing precedence: defaults,
// the optional config file, DIRECTUS_* environment variables and flags.
func Load(flags *pflag.FlagSet, configPath string) (*Config, error) {
	v := viper.New()
	setDefaults(v)

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()

	if flags != nil {
		if err := v.BindPFlags(flags); err != nil {
			return nil, fmt.Errorf("failed to bind flags: %w", err)
		}
	}

	if configPath != "" {
		v.SetConfigFile(configPath)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	return &cfg, nil
}

// setDefaults sets the default values for viper.
func setDefaults(v *viper.Viper) {
	def := Default()
	v.SetDefault("appTypeName", def.AppTypeName)
	v.SetDefault("directusTypeName", def.DirectusTypeName)
	v.SetDefault("allTypeName", def.AllTypeName)
	v.SetDefault("missingCollection", def.MissingCollection)
	v.SetDefault("logLevel", def.LogLevel)
	// Keys without a default are invisible to AutomaticEnv during Unmarshal.
	for _, key := range []string{"host", "email", "password", "outFile", "specOutFile", "inFile"} {
		v.SetDefault(key, "")
	}
	v.SetDefault("validate", false)
}

// Validate checks that every required setting is present. It runs before any
// network call is made.
func (c *Config) Validate() error {
	var errs ValidationErrors

	if c.OutFile == "" {
		errs = append(errs, ValidationError{Field: "outFile", Message: "is required"})
	}

	if c.InFile == "" {
		if c.Host == "" {
			errs = append(errs, ValidationError{Field: "host", Message: "is required"})
		}
		if c.Email == "" {
			errs = append(errs, ValidationError{Field: "email", Message: "is required"})
		}
		if c.Password == "" {
			errs = append(errs, ValidationError{Field: "password", Message: "is required"})
		}
	}

	for _, name := range []struct{ field, value string }{
		{"appTypeName", c.AppTypeName},
		{"directusTypeName", c.DirectusTypeName},
		{"allTypeName", c.AllTypeName},
	} {
		if name.value == "" {
			errs = append(errs, ValidationError{Field: name.field, Message: "must not be empty"})
		}
	}

	if _, err := openapits.ParseMissingPolicy(c.MissingCollection); err != nil {
		errs = append(errs, ValidationError{Field: "missingCollection", Message: err.Error()})
	}

	if len(errs) > 0 {
		return errs
	}
	return nil
}

// TypeNames returns the configured collection type names.
func (c *Config) TypeNames() openapits.TypeNames {
	return openapits.TypeNames{
		App:      c.AppTypeName,
		Directus: c.DirectusTypeName,
		All:      c.AllTypeName,
	}
}
