package importer

import (
	"context"
	"fmt"
	"time"

	"pass-questions/internal/importer/config"
	"pass-questions/internal/shared/database"
	"pass-questions/internal/shared/logger"
	"pass-questions/internal/shared/utils"

	"go.mongodb.org/mongo-driver/bson"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

// Mapping pairs a legacy collection with the collection it lands in.
type Mapping struct {
	Source string
	Target string
}

// DefaultMappings lists every legacy collection the application reads.
var DefaultMappings = []Mapping{
	{"users", database.CollectionUsers},
	{"quiz_questions", database.CollectionQuizQuestions},
	{"quiz_history", database.CollectionQuizHistory},
	{"user_analytics", database.CollectionUserAnalytics},
	{"admin_uploads", database.CollectionAdminUploads},
	{"verificationCodes", database.CollectionVerificationCodes},
	{"user_deleted_exams", database.CollectionUserDeletedExams},
	{"user_deleted_questions", database.CollectionUserDeletedQuestions},
}

// CollectionReport is the outcome for one collection.
type CollectionReport struct {
	Source   string        `json:"source"`
	Target   string        `json:"target"`
	Copied   int           `json:"copied"`
	Duration time.Duration `json:"duration"`
	Error    string        `json:"error,omitempty"`
}

type Report struct {
	Collections []CollectionReport `json:"collections"`
	Total       int                `json:"total"`
	DryRun      bool               `json:"dry_run"`
}

// Importer copies legacy collections into the document store, several
// collections at a time.
type Importer struct {
	source Source
	sink   Sink
	config *config.Config
	log    logger.Logger
}

func New(source Source, sink Sink, cfg *config.Config, log logger.Logger) *Importer {
	if log == nil {
		log = logger.NewNopLogger()
	}
	return &Importer{source: source, sink: sink, config: cfg, log: log.WithComponent("importer")}
}

// Mappings resolves the configured collection names. Unknown names are
// copied into a collection of the same name.
func (im *Importer) Mappings() []Mapping {
	if len(im.config.Collections) == 0 {
		return DefaultMappings
	}
	known := make(map[string]string, len(DefaultMappings))
	for _, m := range DefaultMappings {
		known[m.Source] = m.Target
	}
	out := make([]Mapping, 0, len(im.config.Collections))
	for _, name := range im.config.Collections {
		target, ok := known[name]
		if !ok {
			target = name
		}
		out = append(out, Mapping{Source: name, Target: target})
	}
	return out
}

// Run copies every mapped collection. The report covers all collections
// even when one of them fails; the first failure is returned.
func (im *Importer) Run(ctx context.Context) (*Report, error) {
	mappings := im.Mappings()
	report := &Report{Collections: make([]CollectionReport, len(mappings)), DryRun: im.config.DryRun}

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(max(im.config.Concurrency, 1))
	for i, m := range mappings {
		g.Go(func() error {
			started := time.Now()
			opCtx := utils.WithOperation(gctx, "import "+m.Source)
			log := im.log.WithContext(opCtx)
			copied, err := im.copyCollection(opCtx, m)
			report.Collections[i] = CollectionReport{
				Source:   m.Source,
				Target:   m.Target,
				Copied:   copied,
				Duration: time.Since(started),
			}
			if err != nil {
				report.Collections[i].Error = err.Error()
				log.Error("Collection import failed", zap.String("collection", m.Source), zap.Int("copied", copied), zap.Error(err))
				return fmt.Errorf("import %s: %w", m.Source, err)
			}
			log.Info("Collection imported", zap.String("collection", m.Source), zap.String("target", m.Target), zap.Int("copied", copied))
			return nil
		})
	}
	err := g.Wait()

	for _, c := range report.Collections {
		report.Total += c.Copied
	}
	return report, err
}

func (im *Importer) copyCollection(ctx context.Context, m Mapping) (int, error) {
	size := max(im.config.BatchSize, 1)
	batch := make([]bson.M, 0, size)
	copied := 0
	flush := func() error {
		if len(batch) == 0 {
			return nil
		}
		if !im.config.DryRun {
			if err := im.sink.Upsert(ctx, m.Target, batch); err != nil {
				return err
			}
		}
		copied += len(batch)
		batch = batch[:0]
		return nil
	}

	err := im.source.Stream(ctx, m.Source, func(doc Document) error {
		batch = append(batch, doc.ToBSON())
		if len(batch) >= size {
			return flush()
		}
		return nil
	})
	if err != nil {
		return copied, err
	}
	return copied, flush()
}
