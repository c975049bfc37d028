// Package cli implements the oasguard command line interface.
package cli

import (
	"context"
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/oasguard/oasguard"
	"github.com/oasguard/oasguard/casing"
	"github.com/oasguard/oasguard/internal/output"
	"github.com/oasguard/oasguard/internal/version"
)

type rootOptions struct {
	Schema     string
	ConfigFile string

	Case          string
	CaseWhitelist []string
	CamelCaseKeys bool

	Pretty   bool
	NoPretty bool
	JSON     bool
}

type appState struct {
	opts    rootOptions
	printer *output.Printer
}

func (a *appState) initFromFlags(cmd *cobra.Command) error {
	if a.opts.Pretty && a.opts.NoPretty {
		return fmt.Errorf("cannot set both --pretty and --no-pretty")
	}

	a.printer = output.NewPrinter(cmd.OutOrStdout(), cmd.ErrOrStderr(), output.PrinterOptions{
		ForcePretty:  a.opts.Pretty,
		ForceCompact: a.opts.NoPretty,
	})
	return nil
}

// buildConfig merges the optional config file with flag overrides into a
// library Config. Flags win over the file.
func (a *appState) buildConfig() (oasguard.Config, error) {
	var cfg oasguard.Config
	if a.opts.ConfigFile != "" {
		loaded, err := oasguard.LoadConfigFile(a.opts.ConfigFile)
		if err != nil {
			return oasguard.Config{}, err
		}
		cfg = loaded
	}
	if a.opts.Schema != "" {
		cfg.Loader = oasguard.FileLoader{Path: a.opts.Schema}
	}
	if a.opts.Case != "" {
		convention, err := casing.FromName(a.opts.Case)
		if err != nil {
			return oasguard.Config{}, err
		}
		cfg.Case = convention
	}
	if len(a.opts.CaseWhitelist) > 0 {
		cfg.CaseWhitelist = a.opts.CaseWhitelist
	}
	if a.opts.CamelCaseKeys {
		cfg.CamelCaseKeys = true
	}
	if cfg.Loader == nil {
		return oasguard.Config{}, fmt.Errorf("no schema specified: pass --schema or a config file with a `schema` entry")
	}
	return cfg, nil
}

func (a *appState) newValidator() (*oasguard.Validator, error) {
	cfg, err := a.buildConfig()
	if err != nil {
		return nil, err
	}
	return oasguard.New(cfg)
}

func (a *appState) contextWithApp(ctx context.Context) context.Context {
	return context.WithValue(ctx, appKey{}, a)
}

type appKey struct{}

func appFrom(cmd *cobra.Command) (*appState, error) {
	v := cmd.Context().Value(appKey{})
	if v == nil {
		return nil, errors.New("internal error: app state missing from command context")
	}
	a, ok := v.(*appState)
	if !ok {
		return nil, errors.New("internal error: app state has wrong type")
	}
	return a, nil
}

func NewRootCmd() *cobra.Command {
	app := &appState{}

	root := &cobra.Command{
		Use:   "oasguard",
		Short: "Validate API payloads against an OpenAPI schema",
		Long: "Validate API payloads against an OpenAPI schema.\n\n" +
			"oasguard checks that captured JSON request/response bodies conform to\n" +
			"an OpenAPI 2 or 3 document, and that JSON key casing follows a\n" +
			"configured naming convention.\n\n" +
			"Common usage:\n" +
			"  oasguard validate --schema openapi.yaml --path /api/v1/trucks/correct/ --data @response.json\n" +
			"  oasguard validate --schema openapi.yaml --path /api/v1/vehicles/ --method POST --request --data '{\"name\":\"x\"}'\n" +
			"  oasguard spec list --schema openapi.yaml\n",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if err := app.initFromFlags(cmd); err != nil {
				return err
			}
			cmd.SetContext(app.contextWithApp(cmd.Context()))
			return nil
		},
	}

	root.PersistentFlags().StringVar(&app.opts.Schema, "schema", "", "Path to the OpenAPI document (.json, .yaml, .yml)")
	root.PersistentFlags().StringVar(&app.opts.ConfigFile, "config", "", "Path to an oasguard YAML config file")
	root.PersistentFlags().StringVar(&app.opts.Case, "case", "", "Key case convention: snake_case, camelCase, PascalCase, kebab-case, none")
	root.PersistentFlags().StringSliceVar(&app.opts.CaseWhitelist, "case-whitelist", nil, "Keys exempt from the case convention")
	root.PersistentFlags().BoolVar(&app.opts.CamelCaseKeys, "camel-case-keys", false, "Treat schema property names as camelized in payloads")

	root.PersistentFlags().BoolVar(&app.opts.Pretty, "pretty", false, "Force pretty-printed JSON output")
	root.PersistentFlags().BoolVar(&app.opts.NoPretty, "no-pretty", false, "Force compact (non-pretty) output")
	root.PersistentFlags().BoolVar(&app.opts.JSON, "json", false, "Emit validation failures as JSON on stdout")

	root.SetVersionTemplate("{{.Version}}\n")
	root.Version = version.Version()

	root.AddCommand(newValidateCmd())
	root.AddCommand(newSpecCmd())
	root.AddCommand(newVersionCmd())

	return root
}
