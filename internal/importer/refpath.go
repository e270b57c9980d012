package importer

import (
	"regexp"
	"strings"

	"pass-questions/internal/shared/errors"
)

// RefPath is a legacy document reference broken into its parts.
type RefPath struct {
	ProjectID    string
	DatabaseID   string
	DocumentPath string
	Segments     []string
}

// Collection is the id of the collection holding the document.
func (p *RefPath) Collection() string { return p.Segments[len(p.Segments)-2] }

// DocumentID is the last path segment.
func (p *RefPath) DocumentID() string { return p.Segments[len(p.Segments)-1] }

var refPathRegex = regexp.MustCompile(`^projects/([^/]+)/databases/([^/]+)/documents/(.+)$`)

// ParseRefPath parses projects/{project}/databases/{db}/documents/{path}.
// The path must name a document, not a collection.
func ParseRefPath(path string) (*RefPath, error) {
	if path == "" {
		return nil, errors.NewValidationError("path cannot be empty")
	}
	path = strings.Trim(path, "/")

	matches := refPathRegex.FindStringSubmatch(path)
	if len(matches) != 4 {
		return nil, errors.NewValidationError("invalid document reference").
			WithDetail("expected_format", "projects/{PROJECT_ID}/databases/{DATABASE_ID}/documents/{DOCUMENT_PATH}").
			WithDetail("provided_path", path)
	}

	segments := splitSegments(matches[3])
	if len(segments) == 0 || len(segments)%2 != 0 {
		return nil, errors.NewValidationError("reference does not name a document").
			WithDetail("provided_path", path)
	}
	return &RefPath{
		ProjectID:    matches[1],
		DatabaseID:   matches[2],
		DocumentPath: strings.Join(segments, "/"),
		Segments:     segments,
	}, nil
}

func splitSegments(documentPath string) []string {
	var out []string
	for _, segment := range strings.Split(documentPath, "/") {
		if segment != "" {
			out = append(out, segment)
		}
	}
	return out
}
