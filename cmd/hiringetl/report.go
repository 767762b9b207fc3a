package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/camilotorresmestra/globant-de/internal/analytics"
	"github.com/camilotorresmestra/globant-de/internal/db"
)

var titleColor = color.New(color.Bold, color.FgCyan)

func (a *app) reportCmd() *cobra.Command {
	var format string
	cmd := &cobra.Command{
		Use:   "report",
		Short: "Print a " + analytics.ReportYear + " hiring report",
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if format != "text" && format != "json" {
				return fmt.Errorf("unknown format %q: expected text or json", format)
			}
			return cmd.Root().PersistentPreRunE(cmd, args)
		},
	}
	cmd.PersistentFlags().StringVar(&format, "format", "text", "output format: text or json")

	cmd.AddCommand(&cobra.Command{
		Use:   "quarterly",
		Short: "Hires per department and job, by quarter",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return a.withStore(cmd, func(ctx context.Context, store db.Store) error {
				rows, err := a.services(store).reports.QuarterlyHiringReport(ctx)
				if err != nil {
					return err
				}
				if format == "json" {
					return writeJSON(cmd.OutOrStdout(), rows)
				}
				formatQuarterlyText(cmd.OutOrStdout(), rows)
				return nil
			})
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:     "above-mean",
		Aliases: []string{"above_mean"},
		Short:   "Departments that hired more than the mean",
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return a.withStore(cmd, func(ctx context.Context, store db.Store) error {
				rows, err := a.services(store).reports.AboveMeanDepartments(ctx)
				if err != nil {
					return err
				}
				if format == "json" {
					return writeJSON(cmd.OutOrStdout(), rows)
				}
				formatAboveMeanText(cmd.OutOrStdout(), rows)
				return nil
			})
		},
	})
	return cmd
}

func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

// formatQuarterlyText prints the quarterly report as aligned columns.
// Hires whose department is unknown are shown as "-".
func formatQuarterlyText(w io.Writer, rows []analytics.QuarterlyHires) {
	titleColor.Fprintf(w, "Hires by quarter, %s\n", analytics.ReportYear)
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "DEPARTMENT\tJOB\tQ1\tQ2\tQ3\tQ4")
	for _, r := range rows {
		dept := "-"
		if r.Department != nil {
			dept = *r.Department
		}
		fmt.Fprintf(tw, "%s\t%s\t%d\t%d\t%d\t%d\n", dept, r.Job, r.Q1, r.Q2, r.Q3, r.Q4)
	}
	tw.Flush()
}

func formatAboveMeanText(w io.Writer, rows []analytics.DepartmentHires) {
	titleColor.Fprintf(w, "Departments above the mean, %s\n", analytics.ReportYear)
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tDEPARTMENT\tHIRED")
	for _, r := range rows {
		fmt.Fprintf(tw, "%d\t%s\t%d\n", r.ID, r.Department, r.TotalHired)
	}
	tw.Flush()
}
