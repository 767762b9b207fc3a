package main

import (
	"context"
	"fmt"
	"path/filepath"
	"strconv"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/camilotorresmestra/globant-de/internal/db"
	"github.com/camilotorresmestra/globant-de/internal/domain"
	"github.com/camilotorresmestra/globant-de/internal/importer"
)

var okColor = color.New(color.FgGreen)

func okLabel() string { return okColor.Sprint("OK") }

func (a *app) initDBCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "init-db",
		Short: "Create the departments, jobs and hired_employees tables",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return a.withStore(cmd, func(context.Context, db.Store) error {
				fmt.Fprintf(cmd.OutOrStdout(), "%s schema ready (driver=%s)\n", okLabel(), a.cfg.DB.Driver)
				return nil
			})
		},
	}
}

func (a *app) ingestCmd() *cobra.Command {
	var dataset string
	cmd := &cobra.Command{
		Use:   "ingest <file>",
		Short: "Load one headerless CSV file",
		Long: "Load one headerless CSV file. The dataset is taken from the file name\n" +
			"(departments.csv, jobs.csv or hired_employees.csv) unless --dataset is set.",
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			path := args[0]
			content, err := importer.ReadFile(path)
			if err != nil {
				return err
			}
			name := dataset
			if name == "" {
				name = filepath.Base(path)
			}
			return a.withStore(cmd, func(ctx context.Context, store db.Store) error {
				ack, err := a.services(store).orch.Ingest(ctx, name, content)
				if err != nil {
					return err
				}
				printAck(cmd, ack)
				return nil
			})
		},
	}
	cmd.Flags().StringVar(&dataset, "dataset", "", "dataset name (departments, jobs, hired_employees)")
	return cmd
}

func (a *app) loadCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "load <dir>",
		Short: "Load every dataset CSV found in a directory",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.withStore(cmd, func(ctx context.Context, store db.Store) error {
				acks, err := a.services(store).orch.LoadDir(ctx, args[0])
				if err != nil {
					return err
				}
				for _, ack := range acks {
					printAck(cmd, ack)
				}
				return nil
			})
		},
	}
}

func printAck(cmd *cobra.Command, ack importer.Ack) {
	fmt.Fprintf(cmd.OutOrStdout(), "%s %s: %d rows (checksum %s)\n", okLabel(), ack.Dataset, ack.Rows, ack.Checksum)
}

func (a *app) createCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "create",
		Short: "Insert a single record",
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "department <id> <name>",
		Short: "Insert one department",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID("id", args[0])
			if err != nil {
				return err
			}
			return a.withStore(cmd, func(ctx context.Context, store db.Store) error {
				if err := a.services(store).orch.CreateDepartment(ctx, domain.Department{ID: id, Name: args[1]}); err != nil {
					return err
				}
				fmt.Fprintln(cmd.OutOrStdout(), okLabel(), "department created")
				return nil
			})
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "job <id> <title>",
		Short: "Insert one job",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID("id", args[0])
			if err != nil {
				return err
			}
			return a.withStore(cmd, func(ctx context.Context, store db.Store) error {
				if err := a.services(store).orch.CreateJob(ctx, domain.Job{ID: id, Title: args[1]}); err != nil {
					return err
				}
				fmt.Fprintln(cmd.OutOrStdout(), okLabel(), "job created")
				return nil
			})
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:     "hire <id> <name> <datetime> <department_id> <job_id>",
		Aliases: []string{"hired_employee"},
		Short:   "Insert one hired employee",
		Args:    cobra.ExactArgs(5),
		RunE: func(cmd *cobra.Command, args []string) error {
			h := domain.HiredEmployee{Name: args[1], HiredAt: args[2]}
			var err error
			if h.ID, err = parseID("id", args[0]); err != nil {
				return err
			}
			if h.DepartmentID, err = parseID("department_id", args[3]); err != nil {
				return err
			}
			if h.JobID, err = parseID("job_id", args[4]); err != nil {
				return err
			}
			return a.withStore(cmd, func(ctx context.Context, store db.Store) error {
				if err := a.services(store).orch.CreateHiredEmployee(ctx, h); err != nil {
					return err
				}
				fmt.Fprintln(cmd.OutOrStdout(), okLabel(), "hired employee created")
				return nil
			})
		},
	})
	return cmd
}

func parseID(field, s string) (int64, error) {
	n, err := strconv.ParseInt(s, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("%s must be an integer, got %q", field, s)
	}
	return n, nil
}
