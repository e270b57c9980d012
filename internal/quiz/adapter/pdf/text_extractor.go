package pdf

import (
	"fmt"
	"io"
	"strings"
	"sync"

	"pass-questions/internal/quiz/domain/repository"

	"github.com/pdfcpu/pdfcpu/pkg/api"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu"
	pdfmodel "github.com/pdfcpu/pdfcpu/pkg/pdfcpu/model"
)

var disableConfigDir sync.Once

// TextExtractor reads the text shown by each page's content stream. Text
// drawn with custom font encodings comes out as raw character codes.
type TextExtractor struct {
	conf *pdfmodel.Configuration
}

var _ repository.TextExtractor = (*TextExtractor)(nil)

func NewTextExtractor() *TextExtractor {
	disableConfigDir.Do(api.DisableConfigDir)
	conf := pdfmodel.NewDefaultConfiguration()
	conf.ValidationMode = pdfmodel.ValidationRelaxed
	return &TextExtractor{conf: conf}
}

func (e *TextExtractor) ExtractText(r io.ReadSeeker) (string, error) {
	ctx, err := api.ReadContext(r, e.conf)
	if err != nil {
		return "", fmt.Errorf("read pdf: %w", err)
	}
	if err := api.ValidateContext(ctx); err != nil {
		return "", fmt.Errorf("validate pdf: %w", err)
	}

	var sb strings.Builder
	for page := 1; page <= ctx.PageCount; page++ {
		content, err := pdfcpu.ExtractPageContent(ctx, page)
		if err != nil {
			return "", fmt.Errorf("page %d: %w", page, err)
		}
		if content == nil {
			continue
		}
		raw, err := io.ReadAll(content)
		if err != nil {
			return "", fmt.Errorf("page %d: %w", page, err)
		}
		if text := strings.TrimSpace(ContentText(raw)); text != "" {
			if sb.Len() > 0 {
				sb.WriteString("\n")
			}
			sb.WriteString(text)
		}
	}
	return sb.String(), nil
}
