package main

import (
	"encoding/json"
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/weiye465/Kindle-Transfer-App/pkg/library"
	"github.com/weiye465/Kindle-Transfer-App/pkg/settings"
)

func newHistoryCmd(c *cli) *cobra.Command {
	var (
		limit  int
		asJSON bool
	)

	cmd := &cobra.Command{
		Use:   "history",
		Short: "List recently uploaded files, newest first",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			lib, err := library.New(c.cfg.Storage.UploadDir)
			if err != nil {
				return err
			}
			entries, err := lib.History(cmd.Context(), limit)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			if asJSON {
				enc := json.NewEncoder(out)
				enc.SetIndent("", "  ")
				return enc.Encode(entries)
			}
			if len(entries) == 0 {
				fmt.Fprintln(out, "no uploads")
				return nil
			}

			tw := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
			fmt.Fprintln(tw, "NAME\tSIZE (MB)\tTIME")
			for _, e := range entries {
				fmt.Fprintf(tw, "%s\t%.2f\t%s\n", e.Name, e.Size, e.Time)
			}
			return tw.Flush()
		},
	}

	cmd.Flags().IntVarP(&limit, "limit", "n", library.HistoryLimit, "number of entries, 0 for all")
	cmd.Flags().BoolVar(&asJSON, "json", false, "print JSON")
	return cmd
}

func newSMTPDefaultsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "smtp-defaults EMAIL",
		Short: "Print the SMTP server and port used for a sender address",
		Args:  cobra.ExactArgs(1),
		// Needs no configuration.
		PersistentPreRunE: func(*cobra.Command, []string) error { return nil },
		RunE: func(cmd *cobra.Command, args []string) error {
			host, port := settings.SMTPDefaults(args[0])
			fmt.Fprintf(cmd.OutOrStdout(), "%s:%d\n", host, port)
			return nil
		},
	}
}
