package source

import (
	"context"
	"fmt"
	"slices"
	"strings"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/matzehuels/topoviz/pkg/errors"
	"github.com/matzehuels/topoviz/pkg/graph"
)

const (
	vertexSuffix = "_vertices"
	edgeSuffix   = "_edges"
)

// MongoSource reads a collection from two MongoDB collections:
// <collection>_vertices keyed by _id and <collection>_edges carrying
// _from and _to.
type MongoSource struct {
	client *mongo.Client // nil when built from an existing database
	db     *mongo.Database
}

// NewMongoSource connects to uri and pings the server.
func NewMongoSource(ctx context.Context, uri, database string) (*MongoSource, error) {
	if database == "" {
		return nil, errors.New(errors.ErrCodeInvalidInput, "mongo database name cannot be empty")
	}
	client, err := mongo.Connect(ctx, options.Client().ApplyURI(uri))
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeNetwork, err, "connect to mongo")
	}
	if err := client.Ping(ctx, nil); err != nil {
		_ = client.Disconnect(ctx)
		return nil, errors.Wrap(errors.ErrCodeNetwork, err, "ping mongo")
	}
	return &MongoSource{client: client, db: client.Database(database)}, nil
}

// NewMongoSourceFromDatabase wraps an existing database handle. Close is a
// no-op for sources built this way.
func NewMongoSourceFromDatabase(db *mongo.Database) *MongoSource {
	return &MongoSource{db: db}
}

// Name implements [Source].
func (s *MongoSource) Name() string { return "mongo:" + s.db.Name() }

// Close disconnects the client owned by the source.
func (s *MongoSource) Close(ctx context.Context) error {
	if s.client == nil {
		return nil
	}
	return s.client.Disconnect(ctx)
}

// Collections implements [Source]. A collection is listed when both its
// vertex and edge collections exist.
func (s *MongoSource) Collections(ctx context.Context) ([]string, error) {
	names, err := s.db.ListCollectionNames(ctx, bson.D{})
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeNetwork, err, "list mongo collections")
	}
	return pairCollections(names), nil
}

// pairCollections returns the sorted base names that have both a vertex
// and an edge collection.
func pairCollections(names []string) []string {
	edges := map[string]bool{}
	for _, n := range names {
		if base, ok := strings.CutSuffix(n, edgeSuffix); ok {
			edges[base] = true
		}
	}
	var out []string
	for _, n := range names {
		base, ok := strings.CutSuffix(n, vertexSuffix)
		if ok && edges[base] && errors.ValidateCollectionName(base) == nil {
			out = append(out, base)
		}
	}
	slices.Sort(out)
	return out
}

// Topology implements [Source].
func (s *MongoSource) Topology(ctx context.Context, collection string) (graph.Topology, error) {
	if err := checkName(collection); err != nil {
		return graph.Topology{}, err
	}

	filter := bson.D{{Key: "name", Value: collection + vertexSuffix}}
	names, err := s.db.ListCollectionNames(ctx, filter)
	if err != nil {
		return graph.Topology{}, errors.Wrap(errors.ErrCodeNetwork, err, "list mongo collections")
	}
	if len(names) == 0 {
		return graph.Topology{}, notFound(collection)
	}

	vertices, err := s.findAll(ctx, collection+vertexSuffix)
	if err != nil {
		return graph.Topology{}, err
	}
	edges, err := s.findAll(ctx, collection+edgeSuffix)
	if err != nil {
		return graph.Topology{}, err
	}
	return documentsToTopology(vertices, edges)
}

func (s *MongoSource) findAll(ctx context.Context, name string) ([]bson.M, error) {
	cur, err := s.db.Collection(name).Find(ctx, bson.D{})
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeNetwork, err, "query %s", name)
	}
	var docs []bson.M
	if err := cur.All(ctx, &docs); err != nil {
		return nil, errors.Wrap(errors.ErrCodeNetwork, err, "read %s", name)
	}
	return docs, nil
}

// documentsToTopology converts raw documents to the topology payload. A
// vertex document without an _id is a DATA_SHAPE error.
func documentsToTopology(vertices, edges []bson.M) (graph.Topology, error) {
	t := graph.Topology{
		Vertices: make(map[string]map[string]any, len(vertices)),
		Edges:    make([]map[string]any, 0, len(edges)),
	}
	for i, doc := range vertices {
		attrs, _ := plain(doc).(map[string]any)
		id, _ := attrs["_id"].(string)
		if id == "" {
			return graph.Topology{}, errors.New(errors.ErrCodeDataShape, "vertex document #%d has no _id", i)
		}
		t.Vertices[id] = attrs
	}
	for _, doc := range edges {
		attrs, _ := plain(doc).(map[string]any)
		t.Edges = append(t.Edges, attrs)
	}
	return t, nil
}

// plain converts driver types to the JSON-shaped values the topology model
// reads: documents become maps, arrays become slices, object ids become hex
// strings.
func plain(v any) any {
	switch x := v.(type) {
	case bson.M:
		out := make(map[string]any, len(x))
		for k, val := range x {
			out[k] = plain(val)
		}
		return out
	case map[string]any:
		return plain(bson.M(x))
	case bson.D:
		out := make(map[string]any, len(x))
		for _, e := range x {
			out[e.Key] = plain(e.Value)
		}
		return out
	case bson.A:
		out := make([]any, len(x))
		for i, val := range x {
			out[i] = plain(val)
		}
		return out
	case []any:
		return plain(bson.A(x))
	case primitive.ObjectID:
		return x.Hex()
	case primitive.Decimal128:
		return x.String()
	case primitive.DateTime:
		return x.Time().UTC().Format(time.RFC3339)
	case nil, string, bool, float64, int32, int64:
		return x
	default:
		return fmt.Sprint(x)
	}
}

var _ Source = (*MongoSource)(nil)
