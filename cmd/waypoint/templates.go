package main

import (
	"encoding/json"
	"fmt"
	"text/tabwriter"

	"github.com/aretw0/waypoint"
	"github.com/spf13/cobra"
)

func newTemplatesCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "templates",
		Short: "List the quick templates available in the editor",
		RunE: func(cmd *cobra.Command, args []string) error {
			asJSON, _ := cmd.Flags().GetBool("json")

			cfg, err := loadConfig(cmd)
			if err != nil {
				return err
			}
			opts, err := templateOptions(cfg)
			if err != nil {
				return err
			}
			engine, err := waypoint.New(opts...)
			if err != nil {
				return err
			}

			templates := engine.Templates().List()
			out := cmd.OutOrStdout()
			if asJSON {
				enc := json.NewEncoder(out)
				enc.SetIndent("", "  ")
				return enc.Encode(templates)
			}

			tw := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
			fmt.Fprintln(tw, "NAME\tCATEGORY\tTITLE")
			for _, t := range templates {
				category := string(t.Category)
				if category == "" {
					category = "-"
				}
				fmt.Fprintf(tw, "%s\t%s\t%s\n", t.Name, category, t.Title)
			}
			return tw.Flush()
		},
	}
	cmd.Flags().Bool("json", false, "Print the catalog as JSON")
	return cmd
}
