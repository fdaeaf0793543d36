package config

import (
	"errors"
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
)

// validate is the shared validator instance used across the package.
var validate *validator.Validate

func init() {
	validate = validator.New()

	// Rejects the sample key shipped in example configs.
	if err := validate.RegisterValidation("realkey", validateRealKey); err != nil {
		panic(fmt.Sprintf("failed to register realkey validator: %v", err))
	}
	validate.RegisterStructValidation(validateProviderKey, Config{})
}

func validateRealKey(fl validator.FieldLevel) bool {
	key := strings.TrimSpace(fl.Field().String())
	return key != "" && key != PlaceholderAPIKey
}

// validateProviderKey requires a key for hosted providers. Local providers
// (ollama, openai-compatible servers) run without one.
func validateProviderKey(sl validator.StructLevel) {
	cfg := sl.Current().Interface().(Config)
	if cfg.Provider == "anthropic" && cfg.HasPlaceholderKey("anthropic") {
		sl.ReportError(cfg.APIKeys, "APIKeys", "APIKeys", "providerkey", cfg.Provider)
	}
}

// Validate checks the whole configuration.
func (c *Config) Validate() error {
	if err := validate.Struct(c); err != nil {
		return describe(err)
	}
	return nil
}

// ValidateKey checks that a usable API key is configured for name.
func (c *Config) ValidateKey(name string) error {
	if err := validate.Var(c.APIKey(name), "realkey"); err != nil {
		return fmt.Errorf("missing API key for %s: set %s_API_KEY", name, strings.ToUpper(name))
	}
	return nil
}

// describe turns validator output into one readable error.
func describe(err error) error {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return fmt.Errorf("invalid configuration: %w", err)
	}
	msgs := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		switch fe.Tag() {
		case "providerkey":
			msgs = append(msgs, fmt.Sprintf("provider %s requires an API key", fe.Param()))
		case "oneof":
			msgs = append(msgs, fmt.Sprintf("%s must be one of [%s], got %q", fe.Field(), fe.Param(), fe.Value()))
		case "ltfield":
			msgs = append(msgs, fmt.Sprintf("%s must be before %s", fe.Field(), fe.Param()))
		default:
			msgs = append(msgs, fmt.Sprintf("%s failed %s validation", fe.Field(), fe.Tag()))
		}
	}
	return fmt.Errorf("invalid configuration: %s: %w", strings.Join(msgs, "; "), err)
}
