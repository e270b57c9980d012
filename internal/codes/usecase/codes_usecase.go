package usecase

import (
	"context"
	"crypto/rand"
	"errors"
	"fmt"
	"io"
	"math"
	"strconv"
	"strings"
	"time"

	"pass-questions/internal/codes/config"
	"pass-questions/internal/codes/domain/model"
	"pass-questions/internal/codes/domain/repository"
	"pass-questions/internal/shared/logger"
	"pass-questions/internal/shared/validation"

	"go.uber.org/zap"
)

// codeAlphabet leaves out 0, 1, I and O. Its 32 letters split a random
// byte evenly.
const codeAlphabet = "ABCDEFGHJKLMNPQRSTUVWXYZ23456789"

const (
	maxPrefixLen      = 6
	maxReportedErrors = 5
	exportDateLayout  = "2006-01-02"
)

// CodesUsecaseInterface defines the contract for verification code
// administration.
type CodesUsecaseInterface interface {
	Generate(ctx context.Context, req GenerateRequest, createdBy string) (*GenerateResult, error)
	List(ctx context.Context, req ListRequest) (*model.Page, error)
	Update(ctx context.Context, id string, req UpdateRequest) error
	Delete(ctx context.Context, id string) error
	BulkImport(ctx context.Context, text, createdBy string) (*ImportResult, error)
	ExportCSV(ctx context.Context) (*Export, error)
	Stats(ctx context.Context) (*model.Stats, error)
}

// Deps are the ports the codes use cases depend on. Random defaults to
// crypto/rand.
type Deps struct {
	Codes  repository.CodeRepository
	Random io.Reader
}

type CodesUsecase struct {
	codes  repository.CodeRepository
	random io.Reader
	config *config.Config
	log    logger.Logger
	now    func() time.Time
}

var _ CodesUsecaseInterface = (*CodesUsecase)(nil)

func NewCodesUsecase(deps Deps, cfg *config.Config, log logger.Logger) *CodesUsecase {
	if log == nil {
		log = logger.NewNopLogger()
	}
	if cfg == nil {
		cfg = config.DefaultConfig()
	}
	random := deps.Random
	if random == nil {
		random = rand.Reader
	}
	return &CodesUsecase{
		codes:  deps.Codes,
		random: random,
		config: cfg,
		log:    log.WithComponent("codes"),
		now:    time.Now,
	}
}

// GenerateRequest is the generate form. Missing fields take the configured
// defaults.
type GenerateRequest struct {
	Count      *int    `json:"count"`
	Value      *int    `json:"value" validate:"omitempty,gte=1"`
	ExpiryDays *int    `json:"expiry_days" validate:"omitempty,gte=1"`
	Prefix     *string `json:"prefix"`
}

type GenerateResult struct {
	Codes []string `json:"codes"`
	Count int      `json:"count"`
}

// ListRequest filters and pages the admin listing.
type ListRequest struct {
	Status  string `query:"status"`
	Search  string `query:"search"`
	Page    int    `query:"page"`
	PerPage int    `query:"per_page"`
}

// UpdateRequest marks a code used or unused and may move its expiry.
// ExpiresAt is ISO-8601.
type UpdateRequest struct {
	Used        *bool  `json:"used"`
	UsedBy      string `json:"usedBy"`
	UsedByEmail string `json:"usedByEmail"`
	ExpiresAt   string `json:"expiresAt"`
}

type ImportResult struct {
	Imported int      `json:"imported"`
	Skipped  int      `json:"skipped"`
	Errors   []string `json:"errors,omitempty"`
}

// Export is a rendered CSV file.
type Export struct {
	Filename string
	Data     []byte
}

func (uc *CodesUsecase) Generate(ctx context.Context, req GenerateRequest, createdBy string) (*GenerateResult, error) {
	if err := validation.Struct(req); err != nil {
		return nil, err
	}
	count, value, expiryDays, prefix := uc.config.DefaultCount, uc.config.DefaultValue, uc.config.DefaultExpiryDays, uc.config.DefaultPrefix
	if req.Count != nil {
		count = *req.Count
	}
	if req.Value != nil {
		value = *req.Value
	}
	if req.ExpiryDays != nil {
		expiryDays = *req.ExpiryDays
	}
	if req.Prefix != nil {
		prefix = strings.TrimSpace(*req.Prefix)
	}

	switch {
	case count > uc.config.MaxCount:
		return nil, ErrTooManyCodes
	case count <= 0:
		return nil, ErrCountNotPositive
	case prefix == "" || len(prefix) > maxPrefixLen:
		return nil, ErrInvalidPrefix
	}

	result := &GenerateResult{Codes: make([]string, 0, count)}
	for i := 0; i < count; i++ {
		code, err := uc.insertFresh(ctx, prefix, value, expiryDays, createdBy)
		if err != nil {
			return nil, err
		}
		if code != "" {
			result.Codes = append(result.Codes, code)
		}
	}
	result.Count = len(result.Codes)
	uc.log.Info("Verification codes generated", zap.Int("count", result.Count), zap.String("prefix", prefix), zap.String("by", createdBy))
	return result, nil
}

// insertFresh stores one new code, drawing again on collision. It returns
// "" when every attempt collided.
func (uc *CodesUsecase) insertFresh(ctx context.Context, prefix string, value, expiryDays int, createdBy string) (string, error) {
	for attempt := 0; attempt <= uc.config.CollisionRetries; attempt++ {
		text, err := uc.newCode(prefix)
		if err != nil {
			return "", err
		}
		now := uc.now().UTC()
		expires := now.AddDate(0, 0, expiryDays)
		err = uc.codes.Insert(ctx, &model.Code{
			ID:        text,
			Code:      text,
			Value:     value,
			CreatedAt: now,
			ExpiresAt: &expires,
			CreatedBy: createdBy,
			Prefix:    prefix,
		})
		if errors.Is(err, ErrCodeExists) {
			continue
		}
		if err != nil {
			return "", fmt.Errorf("save code: %w", err)
		}
		return text, nil
	}
	uc.log.Warn("Skipped code after repeated collisions", zap.String("prefix", prefix))
	return "", nil
}

// newCode formats PREFIX-XXXX-XXXX.
func (uc *CodesUsecase) newCode(prefix string) (string, error) {
	buf := make([]byte, 8)
	if _, err := io.ReadFull(uc.random, buf); err != nil {
		return "", fmt.Errorf("read random: %w", err)
	}
	for i, b := range buf {
		buf[i] = codeAlphabet[int(b)%len(codeAlphabet)]
	}
	return prefix + "-" + string(buf[:4]) + "-" + string(buf[4:]), nil
}

func (uc *CodesUsecase) List(ctx context.Context, req ListRequest) (*model.Page, error) {
	var filter model.CodeFilter
	switch req.Status {
	case model.StatusUsed:
		used := true
		filter.Used = &used
	case model.StatusUnused:
		used := false
		filter.Used = &used
	}
	codes, err := uc.codes.List(ctx, filter)
	if err != nil {
		return nil, err
	}

	now := uc.now().UTC()
	search := strings.ToLower(strings.TrimSpace(req.Search))
	matched := make([]model.CodeView, 0, len(codes))
	for _, c := range codes {
		if search != "" && !strings.Contains(strings.ToLower(c.Code), search) &&
			!strings.Contains(strings.ToLower(c.UsedByEmail), search) {
			continue
		}
		if req.Status == model.StatusExpired && !c.IsExpired(now) {
			continue
		}
		matched = append(matched, c.View(now))
	}

	page, perPage := req.Page, req.PerPage
	if page < 1 {
		page = 1
	}
	if perPage <= 0 {
		perPage = uc.config.PageSize
	}
	start := (page - 1) * perPage
	if start > len(matched) {
		start = len(matched)
	}
	end := start + perPage
	if end > len(matched) {
		end = len(matched)
	}
	return &model.Page{
		Codes:      matched[start:end],
		Total:      len(matched),
		Page:       page,
		PerPage:    perPage,
		TotalPages: int(math.Ceil(float64(len(matched)) / float64(perPage))),
	}, nil
}

func (uc *CodesUsecase) Update(ctx context.Context, id string, req UpdateRequest) error {
	var patch model.CodePatch
	if req.Used != nil {
		patch.Used = req.Used
		if *req.Used {
			now := uc.now().UTC()
			patch.UsedAt = &now
			patch.UsedBy = req.UsedBy
			if patch.UsedBy == "" {
				patch.UsedBy = "admin"
			}
			patch.UsedByEmail = req.UsedByEmail
		}
	}
	if strings.TrimSpace(req.ExpiresAt) != "" {
		expires, err := parseISODate(req.ExpiresAt)
		if err != nil {
			return err
		}
		patch.ExpiresAt = &expires
	}

	if err := uc.codes.Update(ctx, id, patch); err != nil {
		return err
	}
	uc.log.Info("Verification code updated", zap.String("code", id))
	return nil
}

var isoLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05.999999999",
	"2006-01-02T15:04",
	"2006-01-02",
}

// parseISODate accepts ISO-8601 with or without an offset. Values without
// one are read as UTC.
func parseISODate(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	for _, layout := range isoLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t.UTC(), nil
		}
	}
	return time.Time{}, ErrInvalidDate
}

func (uc *CodesUsecase) Delete(ctx context.Context, id string) error {
	if err := uc.codes.Delete(ctx, id); err != nil {
		return err
	}
	uc.log.Info("Verification code deleted", zap.String("code", id))
	return nil
}

// BulkImport reads one code per line as code[,expiry_days][,value]. Codes
// that already exist are skipped.
func (uc *CodesUsecase) BulkImport(ctx context.Context, text, createdBy string) (*ImportResult, error) {
	if strings.TrimSpace(text) == "" {
		return nil, ErrNoCodesProvided
	}

	result := &ImportResult{}
	var failures []string
	for idx, line := range nonEmptyLines(text) {
		parts := strings.Split(line, ",")
		for i := range parts {
			parts[i] = strings.TrimSpace(parts[i])
		}
		code := strings.Trim(strings.Trim(parts[0], `"`), "'")
		if code == "" {
			continue
		}

		expiryDays, value := uc.config.DefaultExpiryDays, uc.config.DefaultValue
		if len(parts) > 1 {
			if n, ok := digits(parts[1]); ok {
				expiryDays = n
				if expiryDays < 1 || expiryDays > uc.config.MaxExpiryDays {
					expiryDays = uc.config.DefaultExpiryDays
				}
			}
		}
		if len(parts) > 2 {
			if n, ok := digits(parts[2]); ok && n >= 1 {
				value = n
			}
		}

		now := uc.now().UTC()
		expires := now.AddDate(0, 0, expiryDays)
		err := uc.codes.Insert(ctx, &model.Code{
			ID:         code,
			Code:       code,
			Value:      value,
			CreatedAt:  now,
			ExpiresAt:  &expires,
			CreatedBy:  createdBy,
			Imported:   true,
			ImportedAt: &now,
		})
		switch {
		case errors.Is(err, ErrCodeExists):
			result.Skipped++
		case err != nil:
			failures = append(failures, fmt.Sprintf("Line %d: %v", idx+1, err))
		default:
			result.Imported++
		}
	}

	if len(failures) > maxReportedErrors {
		failures = failures[:maxReportedErrors]
	}
	result.Errors = failures
	uc.log.Info("Verification codes imported",
		zap.Int("imported", result.Imported),
		zap.Int("skipped", result.Skipped),
		zap.Int("errors", len(failures)))
	return result, nil
}

func nonEmptyLines(text string) []string {
	var lines []string
	for _, line := range strings.Split(text, "\n") {
		if line = strings.TrimSpace(line); line != "" {
			lines = append(lines, line)
		}
	}
	return lines
}

// digits parses an unsigned decimal made only of ASCII digits.
func digits(s string) (int, bool) {
	if s == "" {
		return 0, false
	}
	n, err := strconv.ParseUint(s, 10, 32)
	if err != nil {
		return 0, false
	}
	return int(n), true
}

// ExportCSV renders every code, newest first. All fields are quoted and
// commas inside a field become spaces.
func (uc *CodesUsecase) ExportCSV(ctx context.Context) (*Export, error) {
	codes, err := uc.codes.List(ctx, model.CodeFilter{})
	if err != nil {
		return nil, err
	}

	now := uc.now().UTC()
	var sb strings.Builder
	sb.WriteString("Code,Value (GHS),Status,Created,Expires,Used By,Used At\n")
	for _, c := range codes {
		fields := []string{
			c.Code,
			strconv.Itoa(c.Value),
			strings.ToUpper(c.StatusAt(now)),
			formatDate(&c.CreatedAt),
			formatDate(c.ExpiresAt),
			c.UsedByEmail,
			formatDate(c.UsedAt),
		}
		for i, f := range fields {
			if i > 0 {
				sb.WriteByte(',')
			}
			sb.WriteString(csvField(f))
		}
		sb.WriteByte('\n')
	}

	return &Export{
		Filename: "verification_codes_" + now.Format("20060102_150405") + ".csv",
		Data:     []byte(sb.String()),
	}, nil
}

func csvField(s string) string {
	s = strings.ReplaceAll(s, `"`, `""`)
	s = strings.ReplaceAll(s, ",", " ")
	return `"` + s + `"`
}

func formatDate(t *time.Time) string {
	if t == nil || t.IsZero() {
		return ""
	}
	return t.Format(exportDateLayout)
}

func (uc *CodesUsecase) Stats(ctx context.Context) (*model.Stats, error) {
	codes, err := uc.codes.List(ctx, model.CodeFilter{})
	if err != nil {
		return nil, err
	}
	now := uc.now().UTC()
	stats := &model.Stats{Total: len(codes)}
	for _, c := range codes {
		stats.TotalValue += c.Value
		switch c.StatusAt(now) {
		case model.StatusUsed:
			stats.Used++
			stats.UsedValue += c.Value
		case model.StatusExpired:
			stats.Expired++
		default:
			stats.Unused++
		}
	}
	return stats, nil
}
