package cli

import (
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/oasguard/oasguard"
)

type validateOptions struct {
	Path    string
	Method  string
	Status  int
	Data    string
	Request bool
}

func newValidateCmd() *cobra.Command {
	opts := validateOptions{
		Method: "GET",
		Status: 200,
	}

	cmd := &cobra.Command{
		Use:   "validate",
		Short: "Validate a captured JSON payload against the schema",
		Long: "Validate a captured JSON payload against the schema.\n\n" +
			"The payload is treated as a response body for --path/--method/--status,\n" +
			"or as a request body with --request. Pass the payload inline, from a\n" +
			"file with @file, or from stdin with -.",
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			app, err := appFrom(cmd)
			if err != nil {
				return err
			}
			if opts.Path == "" {
				return fmt.Errorf("--path is required")
			}
			if opts.Data == "" {
				return fmt.Errorf("--data is required")
			}

			body, err := readData(cmd.InOrStdin(), opts.Data)
			if err != nil {
				return err
			}

			v, err := app.newValidator()
			if err != nil {
				return err
			}

			if opts.Request {
				err = v.ValidateRequestBytes(opts.Path, opts.Method, body)
			} else {
				err = v.ValidateResponseBytes(opts.Path, opts.Method, opts.Status, body)
			}
			if err == nil {
				app.printer.Println("ok")
				return nil
			}

			var verr *oasguard.ValidationError
			if app.opts.JSON && errors.As(err, &verr) {
				_ = app.printer.PrintJSON(map[string]any{
					"path":     verr.Path,
					"reason":   verr.Reason,
					"expected": verr.Expected,
					"actual":   verr.Actual,
				})
			}
			return err
		},
	}

	cmd.Flags().StringVar(&opts.Path, "path", "", "Concrete request path, e.g. /api/v1/trucks/42/")
	cmd.Flags().StringVar(&opts.Method, "method", opts.Method, "HTTP method")
	cmd.Flags().IntVar(&opts.Status, "status", opts.Status, "Response status code")
	cmd.Flags().StringVar(&opts.Data, "data", "", "Payload: inline JSON, @file, or - for stdin")
	cmd.Flags().BoolVar(&opts.Request, "request", false, "Validate as a request body instead of a response")

	return cmd
}

// readData resolves the --data flag value: "-" reads stdin, "@file"
// reads a file, anything else is the payload itself.
func readData(stdin io.Reader, data string) ([]byte, error) {
	switch {
	case data == "-":
		b, err := io.ReadAll(stdin)
		if err != nil {
			return nil, fmt.Errorf("read stdin: %w", err)
		}
		return b, nil
	case strings.HasPrefix(data, "@"):
		b, err := os.ReadFile(strings.TrimPrefix(data, "@"))
		if err != nil {
			return nil, fmt.Errorf("read payload file: %w", err)
		}
		return b, nil
	default:
		return []byte(data), nil
	}
}
