package main

import (
	"time"

	"github.com/brueckenwerk/cms/internal/content/mongostore"
	"github.com/brueckenwerk/cms/internal/content/pgstore"
	"github.com/spf13/cobra"
)

func newSchemaCommand(c *cli) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "schema",
		Short: "Manage the content store schema",
	}
	cmd.AddCommand(&cobra.Command{
		Use:   "init",
		Short: "Create tables or indexes for the configured content driver",
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := c.config(cmd.Context())
			if err != nil {
				return err
			}
			switch cfg.ContentDriver {
			case "postgres":
				pool, err := pgstore.Connect(cmd.Context(), cfg.DatabaseURL, 3, time.Second)
				if err != nil {
					return err
				}
				defer pool.Close()
				if err := pgstore.InitSchema(cmd.Context(), pool); err != nil {
					return err
				}
			case "mongo":
				// Open ensures the indexes.
				store, err := mongostore.Open(cmd.Context(), cfg.MongoURI, cfg.MongoDatabase)
				if err != nil {
					return err
				}
				defer store.Close(cmd.Context())
			}
			c.printf("schema ready for %s\n", cfg.ContentDriver)
			return nil
		},
	})
	return cmd
}
