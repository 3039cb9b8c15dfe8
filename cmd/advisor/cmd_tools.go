package main

import (
	"fmt"
	"io"
	"strings"
	"text/tabwriter"

	"github.com/hackguide/advisor/internal/catalog"
	"github.com/spf13/cobra"
)

func newToolsCmd() *cobra.Command {
	var (
		catalogFile string
		limit       int
	)

	cmd := &cobra.Command{
		Use:   "tools [query]",
		Short: "List catalog tools, ranked by query when one is given",
		RunE: func(cmd *cobra.Command, args []string) error {
			idx, err := cliCatalog(catalogFile)
			if err != nil {
				return err
			}
			return printTools(cmd.OutOrStdout(), idx, strings.Join(args, " "), limit)
		},
	}
	cmd.Flags().StringVar(&catalogFile, "catalog", "", "YAML catalog file (default: built-in catalog)")
	cmd.Flags().IntVar(&limit, "limit", catalog.DefaultRankLimit, "maximum number of tools")
	return cmd
}

func printTools(w io.Writer, idx *catalog.Index, query string, limit int) error {
	var tools []*catalog.Entry
	if query != "" {
		tools = idx.Rank(query, limit)
	} else {
		tools = idx.Entries()
		if limit > 0 && len(tools) > limit {
			tools = tools[:limit]
		}
	}

	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tNAME\tCATEGORY\tTAGLINE")
	for _, e := range tools {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\n", e.ID, e.Name, e.Category, e.Tagline)
	}
	return tw.Flush()
}
