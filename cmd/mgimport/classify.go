package main

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/memgraph/mgconsole/internal/query"
	"github.com/memgraph/mgconsole/internal/source"
)

// newClassifyCmd prints, for every statement in the source, the lane it
// would be routed to and the classifier traits behind that decision.
// Nothing is executed against a server.
func newClassifyCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "classify",
		Short: "Print each statement's lane and classifier traits without executing anything",
		RunE: func(cmd *cobra.Command, args []string) error {
			spec, _ := cmd.Flags().GetString("source")
			ctx := cmd.Context()
			src, err := openSource(ctx, spec)
			if err != nil {
				return err
			}
			return classifyAll(ctx, src, cmd.OutOrStdout())
		},
	}
}

func classifyAll(ctx context.Context, src source.StatementSource, out io.Writer) error {
	for {
		q, err := src.Next(ctx)
		if errors.Is(err, io.EOF) {
			return nil
		}
		if err != nil {
			return err
		}
		lane := query.Classify(q.Info)
		traits := "unclassified"
		if q.Info != nil {
			traits = fmt.Sprintf("%+v", *q.Info)
		}
		fmt.Fprintf(out, "line=%-6d lane=%-6s traits=%s text=%q\n", q.Line, lane, traits, truncate(q.Text, 80))
	}
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}
