package oasguard

import (
	"os"

	"gopkg.in/yaml.v3"

	"github.com/oasguard/oasguard/casing"
)

// fileConfig is the YAML form of Config used by the CLI and by
// applications that prefer file-based configuration. Conventions are
// referenced by name; booleans that default to true are pointers so an
// absent key keeps the default.
type fileConfig struct {
	Schema        string   `yaml:"schema"`
	Case          string   `yaml:"case_convention"`
	CaseWhitelist []string `yaml:"case_whitelist"`
	CamelCaseKeys bool     `yaml:"camel_case_keys"`

	Middleware struct {
		LogLevel                   string   `yaml:"log_level"`
		ValidateResponse           *bool    `yaml:"validate_response"`
		ValidateRequestBody        *bool    `yaml:"validate_request_body"`
		RejectInvalidRequestBodies bool     `yaml:"reject_invalid_request_bodies"`
		ExemptURLs                 []string `yaml:"exempt_urls"`
	} `yaml:"middleware"`
}

// LoadConfigFile reads a YAML configuration file into a Config. The
// returned Config is not yet validated; that happens in New, so file and
// programmatic configuration fail through the same path.
func LoadConfigFile(path string) (Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, configErrorf("could not read the configuration file at `%s`: %v", path, err)
	}

	var fc fileConfig
	if err := yaml.Unmarshal(data, &fc); err != nil {
		return Config{}, configErrorf("could not parse the configuration file at `%s`: %v", path, err)
	}

	cfg := Config{
		CaseWhitelist: fc.CaseWhitelist,
		CamelCaseKeys: fc.CamelCaseKeys,
	}
	if fc.Schema != "" {
		cfg.Loader = FileLoader{Path: fc.Schema}
	}
	if fc.Case != "" {
		convention, err := casing.FromName(fc.Case)
		if err != nil {
			return Config{}, &ConfigError{Message: err.Error()}
		}
		cfg.Case = convention
	}

	cfg.Middleware.LogLevel = fc.Middleware.LogLevel
	cfg.Middleware.ExemptURLs = fc.Middleware.ExemptURLs
	cfg.Middleware.RejectInvalidRequestBodies = fc.Middleware.RejectInvalidRequestBodies
	if fc.Middleware.ValidateResponse != nil {
		cfg.Middleware.SkipResponseValidation = !*fc.Middleware.ValidateResponse
	}
	if fc.Middleware.ValidateRequestBody != nil {
		cfg.Middleware.SkipRequestBodyValidation = !*fc.Middleware.ValidateRequestBody
	}
	return cfg, nil
}
