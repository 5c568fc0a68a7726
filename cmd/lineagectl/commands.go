package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/vocal-lineage/backend/pkg/common"
	"github.com/vocal-lineage/backend/pkg/counts"
	"github.com/vocal-lineage/backend/pkg/names"
	"github.com/vocal-lineage/backend/pkg/pathfind"
	"github.com/vocal-lineage/backend/pkg/store"

	"github.com/spf13/cobra"
)

func printJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func parseKind(s string) (common.EntityKind, error) {
	kind, ok := common.ParseEntityKind(s)
	if !ok {
		return "", fmt.Errorf("unknown kind %q: %w", s, common.ErrInvalidInput)
	}
	return kind, nil
}

func pathCmd(opts *options) *cobra.Command {
	var hops int

	cmd := &cobra.Command{
		Use:   "path <from> <to>",
		Short: "Print the shortest lineage path between two people",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return opts.withStore(cmd, func(ctx context.Context, s store.GraphStore) error {
				r := pathfind.NewResolver(pathfind.NewResolverParams{Store: s})
				res, err := r.FindPath(ctx, args[0], args[1], hops)
				if err != nil {
					return err
				}

				out := cmd.OutOrStdout()
				if opts.json {
					return printJSON(out, res)
				}
				if len(res.Steps) == 0 {
					fmt.Fprintf(out, "%s is the same person\n", res.Nodes[0].Name)
					return nil
				}
				for _, step := range res.Steps {
					fmt.Fprintf(out, "%d. %s -[%s]-> %s", step.Order, step.Source.Name, step.Label, step.Target.Name)
					if step.Role != "" {
						fmt.Fprintf(out, " (%s)", step.Role)
					}
					if step.CitationText != "" {
						fmt.Fprintf(out, " [%s]", step.CitationText)
					}
					fmt.Fprintln(out)
				}
				return nil
			})
		},
	}

	cmd.Flags().IntVar(&hops, "hops", pathfind.DefaultMaxHops, "Maximum number of relationships on the path")
	return cmd
}

func neighborhoodCmd(opts *options) *cobra.Command {
	var (
		kind  string
		depth int
	)

	cmd := &cobra.Command{
		Use:   "neighborhood <name>",
		Short: "Print everything directly related to a person or work",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			k, err := parseKind(kind)
			if err != nil {
				return err
			}
			if depth != 1 && depth != 2 {
				return fmt.Errorf("depth must be 1 or 2: %w", common.ErrInvalidInput)
			}

			return opts.withStore(cmd, func(ctx context.Context, s store.GraphStore) error {
				center, err := store.Lookup(ctx, s, k, args[0])
				if err != nil {
					return err
				}
				n, err := s.Neighborhood(ctx, center, depth)
				if err != nil {
					return err
				}

				out := cmd.OutOrStdout()
				if opts.json {
					return printJSON(out, n)
				}
				fmt.Fprintln(out, n.Center.Name)
				printEntities(out, "teachers", n.Teachers)
				printEntities(out, "students", n.Students)
				for _, f := range n.Family {
					fmt.Fprintf(out, "  family: %s (%s)\n", f.Entity.Name, f.Qualifier)
				}
				for _, w := range n.Works.Operas {
					fmt.Fprintf(out, "  premiered: %s\n", w.Entity.Name)
				}
				for _, w := range n.Works.Books {
					fmt.Fprintf(out, "  authored: %s\n", w.Entity.Name)
				}
				for _, w := range n.Works.ComposedOperas {
					fmt.Fprintf(out, "  composed: %s\n", w.Entity.Name)
				}
				return nil
			})
		},
	}

	cmd.Flags().StringVar(&kind, "kind", "person", "Kind of the subject (person, opera, book)")
	cmd.Flags().IntVar(&depth, "depth", 1, "1 for direct relations, 2 to add the second-degree lineage")
	return cmd
}

func printEntities(w io.Writer, label string, entities []common.Entity) {
	if len(entities) == 0 {
		return
	}
	list := make([]string, 0, len(entities))
	for _, e := range entities {
		list = append(list, e.Name)
	}
	fmt.Fprintf(w, "  %s: %s\n", label, strings.Join(list, ", "))
}

func countsCmd(opts *options) *cobra.Command {
	var kind string

	cmd := &cobra.Command{
		Use:   "counts <name>",
		Short: "Print the relationship counts of a node",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			k, err := parseKind(kind)
			if err != nil {
				return err
			}

			return opts.withStore(cmd, func(ctx context.Context, s store.GraphStore) error {
				node, c, err := counts.Count(ctx, s, k, args[0])
				if err != nil {
					return err
				}
				return printJSON(cmd.OutOrStdout(), map[string]any{"node": node.Name, "counts": c})
			})
		},
	}

	cmd.Flags().StringVar(&kind, "kind", "person", "Kind of the node (person, opera, book)")
	return cmd
}

func searchCmd(opts *options) *cobra.Command {
	var kind string

	cmd := &cobra.Command{
		Use:   "search <query>",
		Short: "List the entities matching a name, best first",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			k, err := parseKind(kind)
			if err != nil {
				return err
			}

			return opts.withStore(cmd, func(ctx context.Context, s store.GraphStore) error {
				candidates, err := s.Candidates(ctx, k, args[0])
				if err != nil {
					return err
				}
				matches := names.Rank(args[0], candidates)

				out := cmd.OutOrStdout()
				if opts.json {
					return printJSON(out, matches)
				}
				for _, m := range matches {
					fmt.Fprintf(out, "%s\t%s\n", m.TierName, m.Entity.Name)
				}
				return nil
			})
		},
	}

	cmd.Flags().StringVar(&kind, "kind", "person", "Kind to search (person, opera, book)")
	return cmd
}
