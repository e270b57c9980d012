package importer_test

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"pass-questions/internal/importer"
	"pass-questions/internal/importer/config"

	"cloud.google.com/go/firestore"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson"
)

type fakeSource struct {
	docs map[string][]importer.Document
	errs map[string]error
}

func (f *fakeSource) Stream(ctx context.Context, collection string, fn func(importer.Document) error) error {
	for _, d := range f.docs[collection] {
		if err := fn(d); err != nil {
			return err
		}
	}
	return f.errs[collection]
}

type fakeSink struct {
	mu      sync.Mutex
	written map[string][]bson.M
	batches map[string]int
	err     error
}

func newFakeSink() *fakeSink {
	return &fakeSink{written: map[string][]bson.M{}, batches: map[string]int{}}
}

func (f *fakeSink) Upsert(ctx context.Context, collection string, docs []bson.M) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return f.err
	}
	f.written[collection] = append(f.written[collection], docs...)
	f.batches[collection]++
	return nil
}

func docs(prefix string, n int) []importer.Document {
	out := make([]importer.Document, 0, n)
	for i := 0; i < n; i++ {
		out = append(out, importer.Document{ID: fmt.Sprintf("%s-%d", prefix, i), Data: map[string]interface{}{"n": int64(i)}})
	}
	return out
}

func TestRun_CopiesEveryCollection(t *testing.T) {
	// Arrange
	source := &fakeSource{docs: map[string][]importer.Document{
		"users":             docs("u", 5),
		"verificationCodes": docs("PQ", 3),
	}}
	sink := newFakeSink()
	cfg := &config.Config{Concurrency: 3, BatchSize: 2}

	// Act
	report, err := importer.New(source, sink, cfg, nil).Run(context.Background())

	// Assert
	require.NoError(t, err)
	assert.Len(t, report.Collections, len(importer.DefaultMappings))
	assert.Equal(t, 8, report.Total)
	assert.Len(t, sink.written["users"], 5)
	assert.Equal(t, 3, sink.batches["users"])
	assert.Len(t, sink.written["verification_codes"], 3)
	assert.Equal(t, "u-4", sink.written["users"][4]["_id"])
	assert.Equal(t, "verification_codes", report.Collections[5].Target)
	assert.Equal(t, 3, report.Collections[5].Copied)
}

func TestRun_SelectedCollections(t *testing.T) {
	source := &fakeSource{docs: map[string][]importer.Document{
		"quiz_history": docs("h", 2),
		"legacy_extra": docs("x", 1),
	}}
	sink := newFakeSink()
	cfg := &config.Config{Collections: []string{"quiz_history", "legacy_extra"}, Concurrency: 1, BatchSize: 10}

	report, err := importer.New(source, sink, cfg, nil).Run(context.Background())

	require.NoError(t, err)
	require.Len(t, report.Collections, 2)
	assert.Len(t, sink.written["quiz_history"], 2)
	assert.Len(t, sink.written["legacy_extra"], 1)
}

func TestRun_DryRunWritesNothing(t *testing.T) {
	source := &fakeSource{docs: map[string][]importer.Document{"users": docs("u", 4)}}
	sink := newFakeSink()
	cfg := &config.Config{Collections: []string{"users"}, Concurrency: 1, BatchSize: 3, DryRun: true}

	report, err := importer.New(source, sink, cfg, nil).Run(context.Background())

	require.NoError(t, err)
	assert.True(t, report.DryRun)
	assert.Equal(t, 4, report.Total)
	assert.Empty(t, sink.written)
}

func TestRun_ReportsFailures(t *testing.T) {
	source := &fakeSource{
		docs: map[string][]importer.Document{"users": docs("u", 2)},
		errs: map[string]error{"users": errors.New("permission denied")},
	}
	cfg := &config.Config{Collections: []string{"users"}, Concurrency: 1, BatchSize: 1}

	report, err := importer.New(source, newFakeSink(), cfg, nil).Run(context.Background())

	assert.ErrorContains(t, err, "import users: permission denied")
	assert.Equal(t, 2, report.Collections[0].Copied)
	assert.Equal(t, "permission denied", report.Collections[0].Error)
}

func TestRun_SinkFailure(t *testing.T) {
	source := &fakeSource{docs: map[string][]importer.Document{"users": docs("u", 1)}}
	sink := newFakeSink()
	sink.err = errors.New("write failed")
	cfg := &config.Config{Collections: []string{"users"}, Concurrency: 1, BatchSize: 10}

	report, err := importer.New(source, sink, cfg, nil).Run(context.Background())

	assert.ErrorContains(t, err, "write failed")
	assert.Equal(t, 0, report.Total)
}

func TestDocumentToBSON(t *testing.T) {
	// Arrange
	created := time.Date(2025, 3, 1, 12, 0, 0, 0, time.FixedZone("GMT+1", 3600))
	doc := importer.Document{ID: "uid-1", Data: map[string]interface{}{
		"email":      "a@x.com",
		"created_at": created,
		"exam":       &firestore.DocumentRef{ID: "e1", Path: "projects/p/databases/(default)/documents/admin_uploads/e1"},
		"nested":     map[string]interface{}{"at": created},
		"list":       []interface{}{&firestore.DocumentRef{ID: "q9", Path: "bad"}, int64(3)},
	}}

	// Act
	out := doc.ToBSON()

	// Assert
	assert.Equal(t, "uid-1", out["_id"])
	assert.Equal(t, "a@x.com", out["email"])
	assert.Equal(t, time.UTC, out["created_at"].(time.Time).Location())
	assert.Equal(t, "admin_uploads/e1", out["exam"])
	assert.Equal(t, time.UTC, out["nested"].(bson.M)["at"].(time.Time).Location())
	assert.Equal(t, bson.A{"q9", int64(3)}, out["list"])
}

func TestParseRefPath(t *testing.T) {
	ref, err := importer.ParseRefPath("projects/proj1/databases/(default)/documents/users/u1/history/h1")
	require.NoError(t, err)
	assert.Equal(t, "proj1", ref.ProjectID)
	assert.Equal(t, "(default)", ref.DatabaseID)
	assert.Equal(t, "users/u1/history/h1", ref.DocumentPath)
	assert.Equal(t, "history", ref.Collection())
	assert.Equal(t, "h1", ref.DocumentID())

	for _, bad := range []string{"", "invalid/path", "projects/p/databases/d/documents/users"} {
		_, err := importer.ParseRefPath(bad)
		assert.Error(t, err, bad)
	}
}
