package pdf

import (
	"fmt"
	"io"
	"sync"

	"pass-questions/internal/exams/domain/model"
	"pass-questions/internal/exams/domain/repository"

	"github.com/pdfcpu/pdfcpu/pkg/api"
	pdfmodel "github.com/pdfcpu/pdfcpu/pkg/pdfcpu/model"
)

var disableConfigDir sync.Once

// Inspector validates uploads with pdfcpu in relaxed mode.
type Inspector struct {
	conf *pdfmodel.Configuration
}

var _ repository.PDFInspector = (*Inspector)(nil)

func NewInspector() *Inspector {
	disableConfigDir.Do(api.DisableConfigDir)
	conf := pdfmodel.NewDefaultConfiguration()
	conf.ValidationMode = pdfmodel.ValidationRelaxed
	return &Inspector{conf: conf}
}

func (i *Inspector) Inspect(r io.ReadSeeker) (*model.PDFInfo, error) {
	ctx, err := api.ReadContext(r, i.conf)
	if err != nil {
		return nil, fmt.Errorf("read pdf: %w", err)
	}
	if err := api.ValidateContext(ctx); err != nil {
		return nil, fmt.Errorf("validate pdf: %w", err)
	}
	if ctx.PageCount < 1 {
		return nil, fmt.Errorf("pdf has no pages")
	}
	return &model.PDFInfo{Pages: ctx.PageCount, Version: ctx.VersionString()}, nil
}
