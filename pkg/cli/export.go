package cli

import (
	"context"
	"fmt"

	"github.com/abhijitramesh/echovault/pkg/adapter"
	"github.com/abhijitramesh/echovault/pkg/model"
	"github.com/abhijitramesh/echovault/pkg/usecase/memory"
	"github.com/m-mizutani/goerr/v2"
	"github.com/urfave/cli/v3"
)

func exportCommand() *cli.Command {
	var (
		cfg       config
		bqProject string
		dataset   string
		table     string
	)

	flags := []cli.Flag{
		&cli.StringFlag{
			Name:        "bq-project",
			Usage:       "Google Cloud project of the BigQuery dataset (defaults to --project)",
			Sources:     cli.EnvVars("ECHOVAULT_BIGQUERY_PROJECT"),
			Destination: &bqProject,
		},
		&cli.StringFlag{
			Name:        "bq-dataset",
			Usage:       "BigQuery dataset ID",
			Sources:     cli.EnvVars("ECHOVAULT_BIGQUERY_DATASET"),
			Destination: &dataset,
			Required:    true,
		},
		&cli.StringFlag{
			Name:        "bq-table",
			Usage:       "BigQuery table name",
			Value:       "memories",
			Sources:     cli.EnvVars("ECHOVAULT_BIGQUERY_TABLE"),
			Destination: &table,
		},
	}
	flags = append(flags, globalFlags(&cfg)...)

	return &cli.Command{
		Name:  "export",
		Usage: "Export every memory into a BigQuery table for analytics",
		Flags: flags,
		Action: func(ctx context.Context, c *cli.Command) error {
			if bqProject == "" {
				bqProject = cfg.project
			}
			if bqProject == "" {
				return goerr.New("bq-project or project is required")
			}

			uc, closeFn, err := cfg.newStoreUseCase(ctx)
			if err != nil {
				return err
			}
			defer closeFn()

			bq, err := adapter.NewBigQuery(ctx, bqProject)
			if err != nil {
				return goerr.Wrap(err, "failed to create bigquery client")
			}
			defer bq.Close()

			n, err := uc.Export(ctx, bq, memory.ExportOptions{
				DatasetID: dataset,
				Table:     table,
			})
			if err != nil {
				return userError(err, model.OperationList)
			}

			fmt.Fprintf(c.Root().Writer, "Exported %d memories to %s.%s.%s\n", n, bqProject, dataset, table)
			return nil
		},
	}
}
