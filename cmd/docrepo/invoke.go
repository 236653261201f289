package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/your-org/docrepo/internal/ingestion"
)

func newInvokeCmd(envFile *string) *cobra.Command {
	var (
		eventFile string
		verbose   bool
	)

	cmd := &cobra.Command{
		Use:   "invoke",
		Short: "Run one storage event read from a file or stdin",
		RunE: func(cmd *cobra.Command, _ []string) error {
			raw, err := readEvent(cmd.InOrStdin(), eventFile)
			if err != nil {
				return err
			}
			ev, err := ingestion.DecodeEvent(raw)
			if err != nil {
				return err
			}

			a, err := newApp(cmd.Context(), *envFile)
			if err != nil {
				return err
			}
			defer a.Close(context.Background())

			res := a.service.Process(cmd.Context(), ev)
			out := cmd.OutOrStdout()
			if verbose {
				enc := json.NewEncoder(out)
				enc.SetIndent("", "  ")
				if err := enc.Encode(res.Report()); err != nil {
					return err
				}
			} else {
				fmt.Fprintln(out, res.Response())
			}
			if !res.OK() {
				return fmt.Errorf("invocation %s failed", res.InvocationID)
			}
			return nil
		},
	}
	cmd.Flags().StringVarP(&eventFile, "event", "e", "-", "event JSON file, - for stdin")
	cmd.Flags().BoolVarP(&verbose, "verbose", "v", false, "print the invocation report instead of the response")
	return cmd
}

func readEvent(stdin io.Reader, path string) ([]byte, error) {
	if path == "" || path == "-" {
		return io.ReadAll(stdin)
	}
	return os.ReadFile(path)
}
