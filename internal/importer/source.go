package importer

import (
	"context"
	"errors"
	"fmt"

	"cloud.google.com/go/firestore"
	"google.golang.org/api/iterator"
)

// Source streams every document of a legacy collection.
type Source interface {
	Stream(ctx context.Context, collection string, fn func(Document) error) error
}

// FirestoreSource reads from a Firestore project.
type FirestoreSource struct {
	client *firestore.Client
}

var _ Source = (*FirestoreSource)(nil)

func NewFirestoreSource(ctx context.Context, projectID string) (*FirestoreSource, error) {
	if projectID == "" {
		return nil, fmt.Errorf("projectID must be provided to create a firestore client")
	}
	client, err := firestore.NewClient(ctx, projectID)
	if err != nil {
		return nil, fmt.Errorf("failed to create Firestore client: %w", err)
	}
	return &FirestoreSource{client: client}, nil
}

func (s *FirestoreSource) Stream(ctx context.Context, collection string, fn func(Document) error) error {
	iter := s.client.Collection(collection).Documents(ctx)
	defer iter.Stop()
	for {
		snap, err := iter.Next()
		if errors.Is(err, iterator.Done) {
			return nil
		}
		if err != nil {
			return fmt.Errorf("read %s: %w", collection, err)
		}
		if err := fn(Document{ID: snap.Ref.ID, Data: snap.Data()}); err != nil {
			return err
		}
	}
}

func (s *FirestoreSource) Close() error {
	return s.client.Close()
}
