package memory

import (
	"context"
	"time"

	"cloud.google.com/go/bigquery"
	"github.com/abhijitramesh/echovault/pkg/adapter"
	"github.com/abhijitramesh/echovault/pkg/model"
	"github.com/abhijitramesh/echovault/pkg/utils/logging"
	"github.com/m-mizutani/goerr/v2"
)

const exportBatchSize = 500

// exportRow is the BigQuery row of a memory. Embeddings are not exported.
type exportRow struct {
	ID        string    `bigquery:"id"`
	RawText   string    `bigquery:"raw_text"`
	Source    string    `bigquery:"source"`
	Summary   string    `bigquery:"summary"`
	People    []string  `bigquery:"people"`
	Tasks     []string  `bigquery:"tasks"`
	Topics    []string  `bigquery:"topics"`
	Decisions []string  `bigquery:"decisions"`
	CreatedAt time.Time `bigquery:"created_at"`
	AudioURI  string    `bigquery:"audio_uri"`
}

// ExportOptions contains the destination table of Export
type ExportOptions struct {
	DatasetID string
	Table     string
}

// Export copies every memory into a BigQuery table, creating the table when
// it does not exist. It returns the number of exported memories.
func (u *UseCase) Export(ctx context.Context, bq adapter.BigQuery, opts ExportOptions) (int, error) {
	if opts.DatasetID == "" || opts.Table == "" {
		return 0, goerr.New("dataset and table are required", goerr.T(model.TagInvalidInput))
	}

	schema, err := bigquery.InferSchema(exportRow{})
	if err != nil {
		return 0, goerr.Wrap(err, "failed to infer export schema")
	}
	if err := bq.EnsureTable(ctx, opts.DatasetID, opts.Table, schema); err != nil {
		return 0, err
	}

	memories, err := u.repo.ListMemories(ctx)
	if err != nil {
		return 0, err
	}

	for start := 0; start < len(memories); start += exportBatchSize {
		end := min(start+exportBatchSize, len(memories))

		rows := make([]*exportRow, 0, end-start)
		for _, m := range memories[start:end] {
			rows = append(rows, &exportRow{
				ID:        string(m.ID),
				RawText:   m.RawText,
				Source:    string(m.Source),
				Summary:   m.Summary,
				People:    m.People,
				Tasks:     m.Tasks,
				Topics:    m.Topics,
				Decisions: m.Decisions,
				CreatedAt: m.CreatedAt,
				AudioURI:  m.AudioURI,
			})
		}

		if err := bq.Insert(ctx, opts.DatasetID, opts.Table, rows); err != nil {
			return start, err
		}
		logging.From(ctx).Debug("exported batch", "from", start, "to", end)
	}

	return len(memories), nil
}
