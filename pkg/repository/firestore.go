package repository

import (
	"context"

	"cloud.google.com/go/firestore"
	"github.com/abhijitramesh/echovault/pkg/model"
	"github.com/m-mizutani/goerr/v2"
	"google.golang.org/api/iterator"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

const (
	defaultMemoryCollection = "memories"
	vectorDistanceField     = "vector_distance"
)

// Firestore implements Repository using Cloud Firestore and its native vector index
type Firestore struct {
	client     *firestore.Client
	collection string
}

// FirestoreOption is a functional option for Firestore
type FirestoreOption func(*Firestore)

// WithCollection sets the collection name that holds memories
func WithCollection(name string) FirestoreOption {
	return func(f *Firestore) {
		f.collection = name
	}
}

// NewFirestore creates a new Firestore repository
func NewFirestore(ctx context.Context, projectID, databaseID string, opts ...FirestoreOption) (*Firestore, error) {
	client, err := firestore.NewClientWithDatabase(ctx, projectID, databaseID)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to create firestore client",
			goerr.V("project", projectID),
			goerr.V("database", databaseID),
			goerr.T(model.TagStoreUnavailable))
	}

	f := &Firestore{
		client:     client,
		collection: defaultMemoryCollection,
	}
	for _, opt := range opts {
		opt(f)
	}

	return f, nil
}

// Close releases the underlying client
func (f *Firestore) Close() error {
	return f.client.Close()
}

func (f *Firestore) PutMemory(ctx context.Context, memory *model.Memory) error {
	// Create fails if the ID already exists, so a memory is never overwritten
	if _, err := f.client.Collection(f.collection).Doc(string(memory.ID)).Create(ctx, memory); err != nil {
		return goerr.Wrap(err, "failed to put memory",
			goerr.V("id", memory.ID),
			goerr.T(model.TagStoreUnavailable))
	}
	return nil
}

func (f *Firestore) GetMemory(ctx context.Context, id model.MemoryID) (*model.Memory, error) {
	doc, err := f.client.Collection(f.collection).Doc(string(id)).Get(ctx)
	if err != nil {
		if status.Code(err) == codes.NotFound {
			return nil, goerr.Wrap(err, "memory not found", goerr.V("id", id), goerr.T(model.TagNotFound))
		}
		return nil, goerr.Wrap(err, "failed to get memory", goerr.V("id", id), goerr.T(model.TagStoreUnavailable))
	}

	var memory model.Memory
	if err := doc.DataTo(&memory); err != nil {
		return nil, goerr.Wrap(err, "failed to decode memory", goerr.V("id", id), goerr.T(model.TagStoreUnavailable))
	}

	return &memory, nil
}

func (f *Firestore) ListMemories(ctx context.Context) ([]*model.Memory, error) {
	iter := f.client.Collection(f.collection).OrderBy("CreatedAt", firestore.Desc).Documents(ctx)
	defer iter.Stop()

	var memories []*model.Memory
	for {
		doc, err := iter.Next()
		if err == iterator.Done {
			break
		}
		if err != nil {
			return nil, goerr.Wrap(err, "failed to iterate memories", goerr.T(model.TagStoreUnavailable))
		}

		var memory model.Memory
		if err := doc.DataTo(&memory); err != nil {
			return nil, goerr.Wrap(err, "failed to decode memory",
				goerr.V("id", doc.Ref.ID),
				goerr.T(model.TagStoreUnavailable))
		}
		memories = append(memories, &memory)
	}

	return memories, nil
}

func (f *Firestore) SearchSimilarMemories(ctx context.Context, embedding []float32, limit int) ([]*model.Neighbor, error) {
	query := f.client.Collection(f.collection).
		FindNearest("Embedding", firestore.Vector32(embedding), limit, firestore.DistanceMeasureCosine,
			&firestore.FindNearestOptions{
				DistanceResultField: vectorDistanceField,
			})

	iter := query.Documents(ctx)
	defer iter.Stop()

	var neighbors []*model.Neighbor
	for {
		doc, err := iter.Next()
		if err == iterator.Done {
			break
		}
		if err != nil {
			return nil, goerr.Wrap(err, "failed to run vector search", goerr.T(model.TagStoreUnavailable))
		}

		neighbor, err := neighborFromData(doc.Ref.ID, doc.Data())
		if err != nil {
			return nil, err
		}
		neighbors = append(neighbors, neighbor)
	}

	return neighbors, nil
}

// neighborFromData converts a FindNearest result document. Cosine distance
// is in [0, 2]; similarity is reported as 1 - distance.
func neighborFromData(id string, data map[string]any) (*model.Neighbor, error) {
	var distance float64
	switch v := data[vectorDistanceField].(type) {
	case float64:
		distance = v
	case int64:
		distance = float64(v)
	default:
		return nil, goerr.New("vector distance missing from result",
			goerr.V("id", id),
			goerr.T(model.TagStoreUnavailable))
	}

	return &model.Neighbor{
		ID:         model.MemoryID(id),
		Similarity: 1 - distance,
	}, nil
}
