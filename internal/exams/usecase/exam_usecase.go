package usecase

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/url"
	"path"
	"sort"
	"strings"
	"time"

	"pass-questions/internal/exams/config"
	"pass-questions/internal/exams/domain/model"
	"pass-questions/internal/exams/domain/repository"
	"pass-questions/internal/shared/eventbus"
	"pass-questions/internal/shared/logger"
	"pass-questions/internal/shared/storage"
	"pass-questions/internal/shared/validation"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

// ExamUsecaseInterface defines the contract for exam paper use cases.
type ExamUsecaseInterface interface {
	Upload(ctx context.Context, req UploadRequest) (*model.Exam, error)
	ListUploaded(ctx context.Context) ([]*model.Exam, error)
	Delete(ctx context.Context, id string) (*DeleteResult, error)
	ListForUser(ctx context.Context, uid string) ([]*model.UserExam, error)
	OpenPDF(ctx context.Context, rawPath string) (io.ReadCloser, storage.ObjectInfo, error)
	SyncDeletions(ctx context.Context, uid string, req SyncDeletionsRequest) (*SyncResult, error)
	CheckDeletions(ctx context.Context, uid string) (*model.DeletionSummary, error)
	CountUploads(ctx context.Context) (int64, error)
	DistinctPrograms(ctx context.Context) ([]string, error)
	DistinctCourses(ctx context.Context) ([]string, error)
}

// UploadFile is one PDF part of an upload form.
type UploadFile struct {
	Name    string
	Size    int64
	Content io.ReadSeeker
}

// UploadRequest is the admin upload form.
type UploadRequest struct {
	Program        string      `form:"program" validate:"notblank,max=100"`
	Course         string      `form:"course" validate:"notblank,max=100"`
	Year           string      `form:"year" validate:"notblank,max=20"`
	Level          string      `form:"level" validate:"notblank,max=10"`
	Semester       string      `form:"semester" validate:"notblank,max=10"`
	ExamType       string      `form:"exam_type" validate:"max=30"`
	Questions      *UploadFile `form:"-"`
	Answers        *UploadFile `form:"-"`
	UploadedBy     string      `form:"-"`
	UploadedByName string      `form:"-"`
}

// DeleteResult reports which stored files went away with the exam.
type DeleteResult struct {
	Exam         *model.Exam
	RemovedFiles []string
}

// Message is the human readable outcome.
func (r *DeleteResult) Message() string {
	msg := "Exam deleted successfully"
	if len(r.RemovedFiles) > 0 {
		msg += " (" + strings.Join(r.RemovedFiles, ", ") + " removed)"
	}
	return msg
}

type SyncDeletionsRequest struct {
	DeletedExams     []string `json:"deleted_exams"`
	DeletedQuestions []string `json:"deleted_questions"`
}

type SyncResult struct {
	Exams     int
	Questions int
}

// ExamUsecase implements the exam paper logic.
type ExamUsecase struct {
	exams     repository.ExamRepository
	deletions repository.DeletionRepository
	catalog   repository.PDFCatalog
	inspector repository.PDFInspector
	blobs     storage.BlobStore
	bus       eventbus.Bus
	config    *config.Config
	log       logger.Logger
}

// Deps groups the collaborators of ExamUsecase. Catalog, Inspector and Bus
// are optional.
type Deps struct {
	Exams     repository.ExamRepository
	Deletions repository.DeletionRepository
	Catalog   repository.PDFCatalog
	Inspector repository.PDFInspector
	Blobs     storage.BlobStore
	Bus       eventbus.Bus
}

func NewExamUsecase(deps Deps, cfg *config.Config, log logger.Logger) *ExamUsecase {
	if log == nil {
		log = logger.NewNopLogger()
	}
	if cfg == nil {
		cfg = config.DefaultConfig()
	}
	return &ExamUsecase{
		exams:     deps.Exams,
		deletions: deps.Deletions,
		catalog:   deps.Catalog,
		inspector: deps.Inspector,
		blobs:     deps.Blobs,
		bus:       deps.Bus,
		config:    cfg,
		log:       log.WithComponent("exams"),
	}
}

// Upload stores both PDFs under the exam's object prefix and records the
// exam. Files written before a failure are removed again.
func (uc *ExamUsecase) Upload(ctx context.Context, req UploadRequest) (*model.Exam, error) {
	if err := validation.Struct(req); err != nil {
		return nil, err
	}
	if req.Questions == nil || req.Answers == nil || req.Questions.Content == nil || req.Answers.Content == nil {
		return nil, ErrMissingFile
	}
	if !IsPDFName(req.Questions.Name) || !IsPDFName(req.Answers.Name) {
		return nil, ErrNotPDF
	}
	if req.ExamType == "" {
		req.ExamType = uc.config.DefaultExamType
	}

	exam := &model.Exam{
		ID:                NewExamID(req.Program, req.Level, req.Semester, req.Course),
		Program:           strings.TrimSpace(req.Program),
		Course:            strings.TrimSpace(req.Course),
		Year:              strings.TrimSpace(req.Year),
		Level:             strings.TrimSpace(req.Level),
		Semester:          strings.TrimSpace(req.Semester),
		ExamType:          req.ExamType,
		QuestionsFileName: storage.SecureFilename(req.Questions.Name),
		AnswersFileName:   storage.SecureFilename(req.Answers.Name),
		UploadDate:        time.Now().UTC().Format(time.RFC3339),
		UploadedBy:        req.UploadedBy,
		UploadedByName:    req.UploadedByName,
	}
	exam.ExamName = exam.Course + " - " + exam.Year
	if exam.UploadedByName == "" {
		exam.UploadedByName = "Admin"
	}
	exam.QuestionsFilePath = storage.ExamObjectKey(exam.Program, exam.Level, exam.Semester, exam.Course, exam.Year, "questions", req.Questions.Name)
	exam.AnswersFilePath = storage.ExamObjectKey(exam.Program, exam.Level, exam.Semester, exam.Course, exam.Year, "answers", req.Answers.Name)

	if uc.inspector != nil && uc.config.ValidateUploads {
		qInfo, err := uc.inspect(req.Questions)
		if err != nil {
			return nil, err
		}
		aInfo, err := uc.inspect(req.Answers)
		if err != nil {
			return nil, err
		}
		exam.QuestionsPages = qInfo.Pages
		exam.AnswersPages = aInfo.Pages
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		_, err := uc.blobs.Put(gctx, exam.QuestionsFilePath, req.Questions.Content, "application/pdf")
		return err
	})
	g.Go(func() error {
		_, err := uc.blobs.Put(gctx, exam.AnswersFilePath, req.Answers.Content, "application/pdf")
		return err
	})
	if err := g.Wait(); err != nil {
		uc.removeBlobs(exam)
		return nil, fmt.Errorf("failed to store exam files: %w", err)
	}

	if err := uc.exams.Create(ctx, exam); err != nil {
		uc.removeBlobs(exam)
		return nil, err
	}

	if uc.catalog != nil {
		record := &model.PDFRecord{
			Filename:   exam.QuestionsFileName,
			Program:    exam.Program,
			Course:     exam.Course,
			Year:       exam.Year,
			ExamType:   exam.ExamType,
			FilePath:   exam.QuestionsFilePath,
			UploadDate: time.Now().UTC(),
		}
		if err := uc.catalog.Insert(ctx, record); err != nil {
			uc.log.Warn("failed to record pdf row", zap.String("exam_id", exam.ID), zap.Error(err))
		}
	}

	uc.log.Info("exam uploaded",
		zap.String("exam_id", exam.ID),
		zap.String("program", exam.Program),
		zap.String("course", exam.Course))
	return exam, nil
}

func (uc *ExamUsecase) inspect(f *UploadFile) (*model.PDFInfo, error) {
	info, err := uc.inspector.Inspect(f.Content)
	if _, seekErr := f.Content.Seek(0, io.SeekStart); seekErr != nil && err == nil {
		err = seekErr
	}
	if err != nil {
		uc.log.Warn("rejected upload", zap.String("file", f.Name), zap.Error(err))
		return nil, fmt.Errorf("%w: %s", ErrInvalidPDF, f.Name)
	}
	return info, nil
}

func (uc *ExamUsecase) removeBlobs(exam *model.Exam) {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	for _, key := range []string{exam.QuestionsFilePath, exam.AnswersFilePath} {
		if err := uc.blobs.Delete(ctx, key); err != nil {
			uc.log.Warn("failed to remove exam file", zap.String("key", key), zap.Error(err))
		}
	}
}

func (uc *ExamUsecase) ListUploaded(ctx context.Context) ([]*model.Exam, error) {
	exams, err := uc.exams.List(ctx)
	if err != nil {
		return nil, err
	}
	for _, e := range exams {
		if e.ExamType == "" {
			e.ExamType = uc.config.DefaultExamType
		}
		e.ExamName = e.DisplayName()
	}
	return exams, nil
}

// Delete removes the exam document and whichever of its files still exist.
func (uc *ExamUsecase) Delete(ctx context.Context, id string) (*DeleteResult, error) {
	exam, err := uc.exams.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	result := &DeleteResult{Exam: exam}
	for _, f := range []struct{ key, label string }{
		{exam.QuestionsFilePath, "questions PDF"},
		{exam.AnswersFilePath, "answers PDF"},
	} {
		key, err := storageKey(f.key)
		if err != nil {
			continue
		}
		exists, err := uc.blobs.Exists(ctx, key)
		if err != nil || !exists {
			continue
		}
		if err := uc.blobs.Delete(ctx, key); err != nil {
			uc.log.Warn("failed to delete exam file", zap.String("key", key), zap.Error(err))
			continue
		}
		result.RemovedFiles = append(result.RemovedFiles, f.label)
	}

	if err := uc.exams.Delete(ctx, id); err != nil {
		return nil, err
	}
	if uc.bus != nil {
		uc.bus.PublishAndForget(ctx, eventbus.NewEvent(eventbus.EventTypeExamDeleted, "exams", exam))
	}
	uc.log.Info("exam deleted", zap.String("exam_id", id), zap.Strings("removed", result.RemovedFiles))
	return result, nil
}

// ListForUser hides exams the user removed and turns stored paths into
// URLs under /static/pdfs/.
func (uc *ExamUsecase) ListForUser(ctx context.Context, uid string) ([]*model.UserExam, error) {
	exams, err := uc.exams.List(ctx)
	if err != nil {
		return nil, err
	}
	hidden := map[string]struct{}{}
	if uid != "" && uc.deletions != nil {
		ids, err := uc.deletions.DeletedExamIDs(ctx, uid)
		if err != nil {
			uc.log.Warn("failed to load deleted exams", zap.String("uid", uid), zap.Error(err))
		}
		for _, id := range ids {
			hidden[id] = struct{}{}
		}
	}

	out := make([]*model.UserExam, 0, len(exams))
	for _, e := range exams {
		if _, skip := hidden[e.ID]; skip {
			continue
		}
		level, semester, examType := e.Level, e.Semester, e.ExamType
		if level == "" {
			level = "100"
		}
		if semester == "" {
			semester = "1"
		}
		if examType == "" {
			examType = uc.config.DefaultExamType
		}
		uploadedBy := e.UploadedByName
		if uploadedBy == "" {
			uploadedBy = "Admin"
		}
		out = append(out, &model.UserExam{
			ID:                e.ID,
			Program:           e.Program,
			Course:            e.Course,
			Year:              e.Year,
			Level:             level,
			Semester:          semester,
			ExamType:          examType,
			QuestionsFilePath: FileURL(e.QuestionsFilePath, e.Program, e.Course, e.Year, level, semester),
			AnswersFilePath:   FileURL(e.AnswersFilePath, e.Program, e.Course, e.Year, level, semester),
			QuestionsFileName: e.QuestionsFileName,
			AnswersFileName:   e.AnswersFileName,
			UploadDate:        e.UploadDate,
			UploadedByName:    uploadedBy,
		})
	}
	return out, nil
}

// OpenPDF opens a stored PDF by its URL-decoded path relative to the PDF
// root.
func (uc *ExamUsecase) OpenPDF(ctx context.Context, rawPath string) (io.ReadCloser, storage.ObjectInfo, error) {
	if strings.Contains(rawPath, "..") || strings.HasPrefix(rawPath, "/") {
		return nil, storage.ObjectInfo{}, ErrInvalidPath
	}
	key, err := storage.CleanKey(rawPath)
	if err != nil {
		return nil, storage.ObjectInfo{}, ErrInvalidPath
	}
	rc, info, err := uc.blobs.Open(ctx, key)
	if errors.Is(err, storage.ErrObjectNotFound) {
		return nil, storage.ObjectInfo{}, ErrPDFNotFound
	}
	if err != nil {
		return nil, storage.ObjectInfo{}, err
	}
	if info.ContentType == "" {
		info.ContentType = "application/pdf"
	}
	return rc, info, nil
}

func (uc *ExamUsecase) SyncDeletions(ctx context.Context, uid string, req SyncDeletionsRequest) (*SyncResult, error) {
	if uid == "" {
		return nil, ErrUserIDRequired
	}
	if req.DeletedExams == nil && req.DeletedQuestions == nil {
		return nil, ErrNothingToSync
	}
	exams := uniqueNonEmpty(req.DeletedExams)
	questions := uniqueNonEmpty(req.DeletedQuestions)
	if len(exams) > 0 {
		if err := uc.deletions.MarkExamsDeleted(ctx, uid, exams); err != nil {
			return nil, err
		}
	}
	if len(questions) > 0 {
		if err := uc.deletions.MarkQuestionsDeleted(ctx, uid, questions); err != nil {
			return nil, err
		}
	}
	return &SyncResult{Exams: len(req.DeletedExams), Questions: len(req.DeletedQuestions)}, nil
}

func (uc *ExamUsecase) CheckDeletions(ctx context.Context, uid string) (*model.DeletionSummary, error) {
	if uid == "" {
		return nil, ErrUserIDRequired
	}
	exams, err := uc.deletions.DeletedExamIDs(ctx, uid)
	if err != nil {
		return nil, err
	}
	questions, err := uc.deletions.DeletedQuestionIDs(ctx, uid)
	if err != nil {
		return nil, err
	}
	if exams == nil {
		exams = []string{}
	}
	if questions == nil {
		questions = []string{}
	}
	return &model.DeletionSummary{DeletedExams: exams, DeletedQuestions: questions}, nil
}

func (uc *ExamUsecase) CountUploads(ctx context.Context) (int64, error) {
	return uc.exams.Count(ctx)
}

func (uc *ExamUsecase) DistinctPrograms(ctx context.Context) ([]string, error) {
	return sortedNonEmpty(uc.exams.DistinctPrograms(ctx))
}

func (uc *ExamUsecase) DistinctCourses(ctx context.Context) ([]string, error) {
	return sortedNonEmpty(uc.exams.DistinctCourses(ctx))
}

// HandleExamDeleted drops the relational rows of a deleted exam.
func (uc *ExamUsecase) HandleExamDeleted(ctx context.Context, event eventbus.Event) error {
	exam, ok := event.Data().(*model.Exam)
	if !ok || uc.catalog == nil {
		return nil
	}
	n, err := uc.catalog.DeleteByPath(ctx, exam.QuestionsFilePath, exam.AnswersFilePath)
	if err != nil {
		return err
	}
	uc.log.Debug("pdf rows removed", zap.String("exam_id", exam.ID), zap.Int64("rows", n))
	return nil
}

// NewExamID builds "<program[:3]>-<level>-<semester>-<course[:3]>-<8 hex>".
func NewExamID(program, level, semester, course string) string {
	return fmt.Sprintf("%s-%s-%s-%s-%s",
		prefix(strings.TrimSpace(program), 3),
		strings.TrimSpace(level),
		strings.TrimSpace(semester),
		prefix(strings.TrimSpace(course), 3),
		uuid.NewString()[:8])
}

func IsPDFName(name string) bool {
	return strings.HasSuffix(strings.ToLower(strings.TrimSpace(name)), ".pdf")
}

// FileURL converts a stored file path into a URL under /static/pdfs/.
// Object keys, legacy absolute paths containing static/pdfs, bare file
// names with exam metadata and URLs that are already served all map to a
// path the PDF routes can open.
func FileURL(filePath, program, course, year, level, semester string) string {
	if filePath == "" {
		return ""
	}
	if strings.HasPrefix(filePath, "/static/pdfs/") || strings.HasPrefix(filePath, "/pdf/") {
		return filePath
	}
	p := strings.ReplaceAll(filePath, "\\", "/")

	if i := strings.LastIndex(p, "static/pdfs"); i >= 0 {
		return "/static/pdfs/" + escapePath(strings.TrimLeft(p[i+len("static/pdfs"):], "/"))
	}
	if isAbsolute(p) {
		return "/static/pdfs/" + escapePath(path.Base(p))
	}
	if !strings.Contains(p, "/") && program != "" && course != "" && year != "" {
		p = path.Join(program, "Level_"+level, "Semester_"+semester, course, year, p)
	}
	return "/static/pdfs/" + escapePath(strings.TrimLeft(p, "/"))
}

func isAbsolute(p string) bool {
	if strings.HasPrefix(p, "/") {
		return true
	}
	return len(p) > 2 && p[1] == ':' && p[2] == '/'
}

func escapePath(p string) string {
	parts := strings.Split(p, "/")
	for i, part := range parts {
		parts[i] = url.PathEscape(part)
	}
	return strings.Join(parts, "/")
}

// storageKey maps whatever an exam document holds to a blob key.
func storageKey(filePath string) (string, error) {
	p := strings.ReplaceAll(filePath, "\\", "/")
	if i := strings.LastIndex(p, "static/pdfs/"); i >= 0 {
		p = p[i+len("static/pdfs/"):]
	}
	return storage.CleanKey(p)
}

func prefix(s string, n int) string {
	r := []rune(s)
	if len(r) > n {
		r = r[:n]
	}
	return string(r)
}

func uniqueNonEmpty(ids []string) []string {
	seen := make(map[string]struct{}, len(ids))
	out := make([]string, 0, len(ids))
	for _, id := range ids {
		id = strings.TrimSpace(id)
		if id == "" {
			continue
		}
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	return out
}

func sortedNonEmpty(values []string, err error) ([]string, error) {
	if err != nil {
		return nil, err
	}
	out := uniqueNonEmpty(values)
	sort.Strings(out)
	return out, nil
}

var _ ExamUsecaseInterface = (*ExamUsecase)(nil)
