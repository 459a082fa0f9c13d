package source

import (
	"context"
	"fmt"
	"slices"

	"github.com/matzehuels/topoviz/pkg/errors"
	"github.com/matzehuels/topoviz/pkg/graph"
)

// Source provides topology payloads by collection name.
type Source interface {
	// Name identifies the source in cache keys and logs.
	Name() string

	// Collections lists the available collection names in sorted order.
	Collections(ctx context.Context) ([]string, error)

	// Topology returns the payload of one collection.
	Topology(ctx context.Context, collection string) (graph.Topology, error)
}

// Kind names a source implementation.
type Kind string

// Source kinds.
const (
	KindFile  Kind = "file"
	KindHTTP  Kind = "http"
	KindMongo Kind = "mongo"
)

// Kinds lists the supported source kinds.
var Kinds = []Kind{KindFile, KindHTTP, KindMongo}

// ParseKind validates a source kind name.
func ParseKind(s string) (Kind, error) {
	k := Kind(s)
	if slices.Contains(Kinds, k) {
		return k, nil
	}
	return "", errors.New(errors.ErrCodeInvalidInput, "unknown source %q (want one of %v)", s, Kinds)
}

func notFound(collection string) error {
	return errors.New(errors.ErrCodeCollectionNotFound, "collection %q not found", collection)
}

func checkName(collection string) error {
	if err := errors.ValidateCollectionName(collection); err != nil {
		return fmt.Errorf("collection: %w", err)
	}
	return nil
}
