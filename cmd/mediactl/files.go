package main

import (
	"errors"
	"fmt"
	"sort"
	"strings"
	"text/tabwriter"

	"github.com/brueckenwerk/cms/internal/audit"
	"github.com/brueckenwerk/cms/internal/media"
	"github.com/spf13/cobra"
)

func newFilesCommand(c *cli) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "files",
		Short: "Inspect and maintain stored media files",
	}
	cmd.AddCommand(newFilesListCommand(c))
	cmd.AddCommand(newFilesUsageCommand(c))
	cmd.AddCommand(newFilesDeleteCommand(c))
	cmd.AddCommand(newFilesNoIndexCommand(c))
	cmd.AddCommand(newFilesOrphansCommand(c))
	return cmd
}

func newFilesListCommand(c *cli) *cobra.Command {
	var category string
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List stored files with category, noindex flag and usage count",
		RunE: func(cmd *cobra.Command, _ []string) error {
			a, err := c.open(cmd.Context())
			if err != nil {
				return err
			}
			files, err := a.Media.Files(cmd.Context())
			if err != nil {
				return err
			}
			if category != "" {
				kept := files[:0]
				for _, f := range files {
					if f.Category == category {
						kept = append(kept, f)
					}
				}
				files = kept
			}
			if c.jsonOut {
				return c.printJSON(files)
			}
			tw := tabwriter.NewWriter(c.out, 0, 4, 2, ' ', 0)
			fmt.Fprintln(tw, "KEY\tCATEGORY\tSIZE\tNOINDEX\tUSED BY")
			for _, f := range files {
				fmt.Fprintf(tw, "%s\t%s\t%d\t%t\t%d\n", f.Key, f.Category, f.Size, f.NoIndex, len(f.UsedBy))
			}
			return tw.Flush()
		},
	}
	cmd.Flags().StringVar(&category, "category", "", "Only show one category (image, video, audio, document, other)")
	return cmd
}

func newFilesUsageCommand(c *cli) *cobra.Command {
	return &cobra.Command{
		Use:   "usage [key]",
		Short: "Show which content records reference each file",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := c.open(cmd.Context())
			if err != nil {
				return err
			}
			idx, err := a.Media.Usage(cmd.Context())
			if err != nil {
				return err
			}
			if len(args) == 1 {
				key := a.Media.Resolver().Normalize(args[0])
				idx = media.UsageIndex{key: idx[key]}
			}
			if c.jsonOut {
				return c.printJSON(idx)
			}
			keys := make([]string, 0, len(idx))
			for k := range idx {
				keys = append(keys, k)
			}
			sort.Strings(keys)
			for _, k := range keys {
				c.printf("%s (%d)\n", k, len(idx[k]))
				for _, u := range idx[k] {
					c.printf("  %s %s %q [%s]\n", u.Type, u.ID, u.Name, u.Field)
				}
			}
			return nil
		},
	}
}

func newFilesDeleteCommand(c *cli) *cobra.Command {
	return &cobra.Command{
		Use:   "delete <key>",
		Short: "Delete a file that no content record references",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := c.open(cmd.Context())
			if err != nil {
				return err
			}
			err = a.Media.Delete(cmd.Context(), args[0])
			var inUse *media.InUseError
			if errors.As(err, &inUse) {
				names := make([]string, 0, len(inUse.UsedBy))
				for _, u := range inUse.UsedBy {
					names = append(names, fmt.Sprintf("%s %s (%s)", u.Type, u.Name, u.Field))
				}
				return fmt.Errorf("refusing to delete %s, still used by: %s", inUse.Key, strings.Join(names, "; "))
			}
			if err != nil {
				return err
			}
			c.printf("deleted %s\n", a.Media.Resolver().Normalize(args[0]))
			return nil
		},
	}
}

func newFilesNoIndexCommand(c *cli) *cobra.Command {
	var off bool
	cmd := &cobra.Command{
		Use:   "noindex <key>",
		Short: "Exclude a file from search indexing (--off to allow again)",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := c.open(cmd.Context())
			if err != nil {
				return err
			}
			if err := a.Media.SetNoIndex(cmd.Context(), args[0], !off); err != nil {
				return err
			}
			c.printf("%s noindex=%t\n", a.Media.Resolver().Normalize(args[0]), !off)
			return nil
		},
	}
	cmd.Flags().BoolVar(&off, "off", false, "Clear the noindex flag")
	return cmd
}

func newFilesOrphansCommand(c *cli) *cobra.Command {
	return &cobra.Command{
		Use:   "orphans",
		Short: "Report unreferenced files and references to missing files",
		RunE: func(cmd *cobra.Command, _ []string) error {
			a, err := c.open(cmd.Context())
			if err != nil {
				return err
			}
			rep, err := audit.Run(cmd.Context(), a.Media)
			if err != nil {
				return err
			}
			if c.jsonOut {
				return c.printJSON(rep)
			}
			c.printf("checked %d files, %d orphans (%d bytes), %d missing\n", rep.Checked, len(rep.Orphans), rep.OrphanSize, len(rep.Missing))
			for _, f := range rep.Orphans {
				c.printf("orphan  %s\n", f.Key)
			}
			for _, m := range rep.Missing {
				c.printf("missing %s (%d references)\n", m.Key, len(m.UsedBy))
			}
			return nil
		},
	}
}
