package model

import "time"

// Exam is one uploaded past paper: a questions PDF and its answers PDF.
// Field names follow the documents already stored in admin_uploads.
type Exam struct {
	ID                string `json:"id" bson:"_id"`
	Program           string `json:"program" bson:"program"`
	Course            string `json:"course" bson:"course"`
	Year              string `json:"year" bson:"year"`
	Level             string `json:"level" bson:"level"`
	Semester          string `json:"semester" bson:"semester"`
	ExamType          string `json:"exam_type" bson:"exam_type"`
	ExamName          string `json:"examName" bson:"examName"`
	QuestionsFileName string `json:"questionsFileName" bson:"questionsFileName"`
	AnswersFileName   string `json:"answersFileName" bson:"answersFileName"`
	QuestionsFilePath string `json:"questionsFilePath" bson:"questionsFilePath"`
	AnswersFilePath   string `json:"answersFilePath" bson:"answersFilePath"`
	QuestionsPages    int    `json:"questionsPages,omitempty" bson:"questionsPages,omitempty"`
	AnswersPages      int    `json:"answersPages,omitempty" bson:"answersPages,omitempty"`
	// UploadDate is ISO-8601 text, as in legacy documents.
	UploadDate     string `json:"uploadDate" bson:"uploadDate"`
	UploadedBy     string `json:"uploadedBy" bson:"uploadedBy"`
	UploadedByName string `json:"uploadedByName" bson:"uploadedByName"`
}

// DisplayName falls back to "<course> - <year>".
func (e *Exam) DisplayName() string {
	if e.ExamName != "" {
		return e.ExamName
	}
	return e.Course + " - " + e.Year
}

// UserExam is the listing entry shown to students. File paths are URLs.
type UserExam struct {
	ID                string `json:"id"`
	Program           string `json:"program"`
	Course            string `json:"course"`
	Year              string `json:"year"`
	Level             string `json:"level"`
	Semester          string `json:"semester"`
	ExamType          string `json:"exam_type"`
	QuestionsFilePath string `json:"questionsFilePath"`
	AnswersFilePath   string `json:"answersFilePath"`
	QuestionsFileName string `json:"questionsFileName"`
	AnswersFileName   string `json:"answersFileName"`
	UploadDate        string `json:"uploadDate"`
	UploadedByName    string `json:"uploadedByName"`
}

// DeletionSummary lists what a user has hidden from their own view.
type DeletionSummary struct {
	DeletedExams     []string `json:"deleted_exams"`
	DeletedQuestions []string `json:"deleted_questions"`
}

// PDFRecord is a row of the relational pdf table.
type PDFRecord struct {
	ID         int64     `db:"id"`
	Filename   string    `db:"filename"`
	Program    string    `db:"program"`
	Course     string    `db:"course"`
	Year       string    `db:"year"`
	ExamType   string    `db:"exam_type"`
	FilePath   string    `db:"file_path"`
	UploadDate time.Time `db:"upload_date"`
}

// PDFInfo is what inspection learns about an uploaded file.
type PDFInfo struct {
	Pages   int
	Version string
}
