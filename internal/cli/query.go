package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/google/uuid"
	"github.com/graph-gophers/graphql-go/errors"
	"github.com/hashicorp/go-multierror"
	"github.com/spf13/cobra"
	"github.com/tidwall/pretty"

	"github.com/slgMitch/fidelity-interview/graph"
)

type queryOptions struct {
	json      bool
	variables string
	operation string
}

func newQueryCmd(opts *rootOptions) *cobra.Command {
	qo := &queryOptions{}

	cmd := &cobra.Command{
		Use:   "query [document]",
		Short: "Execute a GraphQL query or mutation against the database",
		Long: `Execute a GraphQL document directly against the configured database,
without starting the HTTP server.

Examples:
  crm-api query '{ allAccounts { id email contacts { email } } }'
  crm-api query -v '{"id": 1}' 'query C($id: Int) { contactById(id: $id) { email } }'
  echo '{ allContacts { email } }' | crm-api query`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) (err error) {
			var document string
			if len(args) == 1 {
				document = args[0]
			} else {
				document, err = readDocument(cmd.InOrStdin())
				if err != nil {
					return err
				}
			}
			if document == "" {
				return fmt.Errorf("no query provided (pass as argument or pipe to stdin)")
			}

			var variables map[string]any
			if qo.variables != "" {
				if err := json.Unmarshal([]byte(qo.variables), &variables); err != nil {
					return fmt.Errorf("invalid variables JSON: %w", err)
				}
			}

			cfg, logger, err := opts.load(cmd)
			if err != nil {
				return err
			}
			db, err := openDatabase(cmd.Context(), cfg, logger, cfg.AutoMigrate)
			if err != nil {
				return err
			}
			defer func() {
				if cerr := db.Close(); cerr != nil {
					err = multierror.Append(err, cerr).ErrorOrNil()
				}
			}()

			exec, err := graph.NewExecutor(db, logger, cfg.GraphQLMaxDepth)
			if err != nil {
				return err
			}
			resp := exec.Exec(cmd.Context(), uuid.New().String(), graph.Params{
				Query:         document,
				OperationName: qo.operation,
				Variables:     variables,
			})
			if len(resp.Errors) > 0 {
				return queryErrors(resp.Errors)
			}

			out := cmd.OutOrStdout()
			if qo.json {
				fmt.Fprintln(out, string(resp.Data))
			} else {
				formatted := pretty.Pretty(resp.Data)
				if isTerminal(out) {
					formatted = pretty.Color(formatted, nil)
				}
				fmt.Fprint(out, string(formatted))
			}
			return nil
		},
	}

	cmd.Flags().BoolVar(&qo.json, "json", false, "print the raw JSON result")
	cmd.Flags().StringVarP(&qo.variables, "variables", "v", "", "variables as a JSON object")
	cmd.Flags().StringVarP(&qo.operation, "operation", "o", "", "operation name for multi-operation documents")
	return cmd
}

// readDocument reads a document piped on stdin. An interactive terminal
// yields an empty document.
func readDocument(in io.Reader) (string, error) {
	if f, ok := in.(*os.File); ok {
		stat, err := f.Stat()
		if err != nil {
			return "", fmt.Errorf("checking stdin: %w", err)
		}
		if stat.Mode()&os.ModeCharDevice != 0 {
			return "", nil
		}
	}
	data, err := io.ReadAll(in)
	if err != nil {
		return "", fmt.Errorf("reading stdin: %w", err)
	}
	return strings.TrimSpace(string(data)), nil
}

func isTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	if !ok {
		return false
	}
	stat, err := f.Stat()
	return err == nil && stat.Mode()&os.ModeCharDevice != 0
}

func queryErrors(errs []*errors.QueryError) error {
	var result *multierror.Error
	for _, e := range errs {
		result = multierror.Append(result, fmt.Errorf("graphql: %s", e.Message))
	}
	return result.ErrorOrNil()
}
