package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/openkraft/schemactl/internal/domain"
	"github.com/openkraft/schemactl/internal/domain/gate"
)

func newIfErrorsCmd(opts *rootOptions) *cobra.Command {
	var (
		resultsPath string
		forPath     string
		then        string
		otherwise   string
	)

	cmd := &cobra.Command{
		Use:   "iferrors",
		Short: "Print one of two values depending on validation errors",
		Long: "Read a validation result tree as JSON and print the --then value when the node at --for " +
			"(or the root) holds errors, the --else value otherwise.",
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			req := domain.NewActionRequest()
			if resultsPath != "" {
				results, err := loadResults(resultsPath, cmd.InOrStdin())
				if err != nil {
					return err
				}
				req.SetInternalArgument(domain.SubmittedValidationResults, results)
			}

			out, err := gate.Render(req, forPath, gate.StaticChildren{Then: then, Else: otherwise})
			if err != nil {
				return err
			}
			if out != "" {
				fmt.Fprintln(cmd.OutOrStdout(), out)
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&resultsPath, "results", "", `Validation results JSON file ("-" reads stdin)`)
	cmd.Flags().StringVar(&forPath, "for", "", "Dot-separated property path to check")
	cmd.Flags().StringVar(&then, "then", "", "Value printed when errors are present")
	cmd.Flags().StringVar(&otherwise, "else", "", "Value printed when there are no errors")
	return cmd
}

func loadResults(path string, stdin io.Reader) (*domain.Result, error) {
	var (
		data []byte
		err  error
	)
	if path == "-" {
		data, err = io.ReadAll(stdin)
	} else {
		data, err = os.ReadFile(path)
	}
	if err != nil {
		return nil, fmt.Errorf("reading results: %w", err)
	}

	results := domain.NewResult()
	if err := json.Unmarshal(data, results); err != nil {
		return nil, fmt.Errorf("decoding results: %w", err)
	}
	return results, nil
}
