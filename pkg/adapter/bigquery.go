package adapter

import (
	"context"
	"errors"
	"net/http"

	"cloud.google.com/go/bigquery"
	"github.com/m-mizutani/goerr/v2"
	"google.golang.org/api/googleapi"
)

// BigQuery is an interface for BigQuery operations
type BigQuery interface {
	// EnsureTable creates the table with schema unless it already exists
	EnsureTable(ctx context.Context, datasetID, table string, schema bigquery.Schema) error

	// Insert streams rows into the table. rows must be a struct, a slice of
	// structs or a ValueSaver accepted by bigquery.Inserter.
	Insert(ctx context.Context, datasetID, table string, rows any) error

	// GetTableMetadata retrieves the metadata of a table including schema and partition information
	GetTableMetadata(ctx context.Context, datasetID, table string) (*bigquery.TableMetadata, error)

	Close() error
}

type bigqueryClient struct {
	client *bigquery.Client
}

// BigQueryOption is a functional option for BigQuery client
type BigQueryOption func(*bigqueryClient)

// NewBigQuery creates a new BigQuery client
func NewBigQuery(ctx context.Context, projectID string, opts ...BigQueryOption) (BigQuery, error) {
	client, err := bigquery.NewClient(ctx, projectID)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to create BigQuery client", goerr.V("project", projectID))
	}

	bq := &bigqueryClient{
		client: client,
	}

	for _, opt := range opts {
		opt(bq)
	}

	return bq, nil
}

func (bq *bigqueryClient) EnsureTable(ctx context.Context, datasetID, table string, schema bigquery.Schema) error {
	tbl := bq.client.Dataset(datasetID).Table(table)

	err := tbl.Create(ctx, &bigquery.TableMetadata{Schema: schema})
	if err == nil {
		return nil
	}

	var gerr *googleapi.Error
	if errors.As(err, &gerr) && gerr.Code == http.StatusConflict {
		return nil
	}

	return goerr.Wrap(err, "failed to create table",
		goerr.V("dataset", datasetID),
		goerr.V("table", table))
}

func (bq *bigqueryClient) Insert(ctx context.Context, datasetID, table string, rows any) error {
	inserter := bq.client.Dataset(datasetID).Table(table).Inserter()
	if err := inserter.Put(ctx, rows); err != nil {
		return goerr.Wrap(err, "failed to insert rows",
			goerr.V("dataset", datasetID),
			goerr.V("table", table))
	}
	return nil
}

func (bq *bigqueryClient) GetTableMetadata(ctx context.Context, datasetID, table string) (*bigquery.TableMetadata, error) {
	metadata, err := bq.client.Dataset(datasetID).Table(table).Metadata(ctx)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to get table metadata",
			goerr.V("dataset", datasetID),
			goerr.V("table", table))
	}

	return metadata, nil
}

func (bq *bigqueryClient) Close() error {
	return bq.client.Close()
}
