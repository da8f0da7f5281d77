package main

import (
	"fmt"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"github.com/thinkscotty/postcraft/internal/gallery"
	"github.com/thinkscotty/postcraft/internal/store"
)

func newGalleryCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "gallery",
		Short: "Manage saved content packages",
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "list",
		Short: "List saved packages, newest first",
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.withGallery(func(g *gallery.Gallery) error {
				items, err := g.List()
				if err != nil {
					return err
				}
				if len(items) == 0 {
					fmt.Fprintln(cmd.OutOrStdout(), "No saved packages.")
					return nil
				}

				tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
				fmt.Fprintln(tw, "ID\tCREATED\tPLATFORM\tTONE\tTOPIC")
				for _, it := range items {
					fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\n",
						it.ID, it.CreatedAt.Local().Format(time.DateTime), it.Platform, it.Tone, it.Topic)
				}
				return tw.Flush()
			})
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "show <id>",
		Short: "Print one saved package",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.withGallery(func(g *gallery.Gallery) error {
				pkg, found, err := g.Get(args[0])
				if err != nil {
					return err
				}
				if !found {
					return fmt.Errorf("no package with id %q", args[0])
				}

				out := cmd.OutOrStdout()
				fmt.Fprintf(out, "%s  %s / %s / %s  %s\n\n",
					pkg.ID, pkg.Topic, pkg.Platform, pkg.Tone, pkg.CreatedAt.Local().Format(time.DateTime))
				renderPackage(out, pkg.Generated())
				return nil
			})
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "stats",
		Short: "Summarize saved packages",
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.withGallery(func(g *gallery.Gallery) error {
				st, err := g.Stats()
				if err != nil {
					return err
				}

				last := "N/A"
				if !st.LastGenerated.IsZero() {
					last = st.LastGenerated.Local().Format(time.DateTime)
				}
				tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
				fmt.Fprintf(tw, "Total posts:\t%d\n", st.TotalPosts)
				fmt.Fprintf(tw, "Platforms:\t%d\n", st.Platforms)
				fmt.Fprintf(tw, "Total variants:\t%d\n", st.TotalVariants)
				fmt.Fprintf(tw, "Last generated:\t%s\n", last)
				return tw.Flush()
			})
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "remove <id>",
		Short: "Remove a saved package",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.withGallery(func(g *gallery.Gallery) error {
				removed, err := g.Remove(args[0])
				if err != nil {
					return err
				}
				if !removed {
					return fmt.Errorf("no package with id %q", args[0])
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Removed %s\n", args[0])
				return nil
			})
		},
	})

	return cmd
}

func (a *app) withGallery(fn func(*gallery.Gallery) error) error {
	s, err := store.Open(a.cfg.Storage.Path)
	if err != nil {
		return err
	}
	defer s.Close()
	return fn(gallery.New(s))
}
