package oasguard

import (
	"log/slog"
	"regexp"
	"strings"

	"github.com/oasguard/oasguard/casing"
)

// Config is the full configuration surface. It is validated eagerly when
// a Validator is constructed; a misconfigured field fails construction
// with a *ConfigError rather than surfacing later per-request.
type Config struct {
	// Loader supplies the OpenAPI document. Required.
	Loader SchemaLoader

	// Case is the naming convention JSON keys are checked against.
	// Defaults to casing.SnakeCase; use casing.None to skip.
	Case casing.Convention

	// CaseWhitelist exempts individual keys from the convention.
	CaseWhitelist []string

	// CamelCaseKeys indicates the host application renders camelCase
	// JSON from snake_case schema property names. When set, schema
	// property and required names are camelized before payload lookup.
	CamelCaseKeys bool

	Middleware MiddlewareConfig
}

// MiddlewareConfig holds settings that only apply to the HTTP middleware
// surface. Zero values match the defaults: validate both directions, log
// violations at error level, reject nothing.
type MiddlewareConfig struct {
	// LogLevel is the level violations are logged at: debug, info,
	// warn, or error (the default).
	LogLevel string

	// Logger receives violation logs. Defaults to slog.Default().
	Logger *slog.Logger

	// SkipResponseValidation and SkipRequestBodyValidation turn off
	// the respective checks.
	SkipResponseValidation    bool
	SkipRequestBodyValidation bool

	// RejectInvalidRequestBodies makes the middleware answer 400 with
	// a JSON error body when a request body fails validation, instead
	// of only logging. Requires request body validation to be on.
	RejectInvalidRequestBodies bool

	// ExemptURLs holds regular expressions; requests whose path
	// matches any of them bypass validation entirely.
	ExemptURLs []string
}

// validated carries the checked, ready-to-use form of a Config.
type validated struct {
	caseChecker *casing.Checker
	keyMap      func(string) string
	logger      *slog.Logger
	logLevel    slog.Level
	exempt      []*regexp.Regexp

	skipResponse    bool
	skipRequestBody bool
	rejectRequests  bool
}

func (c Config) validate() (*validated, error) {
	if c.Loader == nil {
		return nil, configErrorf("Loader is missing from the configuration, and is required. Pass a FileLoader, a DocumentLoader, or your own SchemaLoader")
	}
	if c.Middleware.RejectInvalidRequestBodies && c.Middleware.SkipRequestBodyValidation {
		return nil, configErrorf("RejectInvalidRequestBodies cannot be set when request body validation is skipped")
	}

	v := &validated{
		skipResponse:    c.Middleware.SkipResponseValidation,
		skipRequestBody: c.Middleware.SkipRequestBodyValidation,
		rejectRequests:  c.Middleware.RejectInvalidRequestBodies,
	}

	convention := c.Case
	if convention.Name() == "" {
		convention = casing.SnakeCase
	}
	v.caseChecker = casing.NewChecker(convention, c.CaseWhitelist)

	if c.CamelCaseKeys {
		v.keyMap = casing.ToCamel
	}

	level, err := parseLogLevel(c.Middleware.LogLevel)
	if err != nil {
		return nil, err
	}
	v.logLevel = level

	v.logger = c.Middleware.Logger
	if v.logger == nil {
		v.logger = slog.Default()
	}

	for _, pattern := range c.Middleware.ExemptURLs {
		re, err := regexp.Compile(pattern)
		if err != nil {
			return nil, configErrorf("failed to compile the exempt URL pattern `%s` as a regular expression: %v", pattern, err)
		}
		v.exempt = append(v.exempt, re)
	}

	return v, nil
}

func parseLogLevel(level string) (slog.Level, error) {
	switch strings.ToLower(strings.TrimSpace(level)) {
	case "debug":
		return slog.LevelDebug, nil
	case "info":
		return slog.LevelInfo, nil
	case "warn", "warning":
		return slog.LevelWarn, nil
	case "", "error":
		return slog.LevelError, nil
	}
	return 0, configErrorf("`%s` is not a valid log level. Should be one of: debug, info, warn, error.", level)
}
