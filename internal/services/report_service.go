package services

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"strings"

	"github.com/vitalpath/scoring-service/internal/models"
	"github.com/vitalpath/scoring-service/internal/psychometrics"
	"github.com/vitalpath/scoring-service/internal/repositories"
	"github.com/vitalpath/scoring-service/internal/validator"
	"github.com/xuri/excelize/v2"
	"gorm.io/datatypes"
)

type reportService struct {
	repo          repositories.Repository
	logger        *slog.Logger
	validator     *validator.Validator
	psychometrics PsychometricsService
}

func NewReportService(
	repo repositories.Repository,
	logger *slog.Logger,
	v *validator.Validator,
	psychometricsService PsychometricsService,
) ReportService {
	return &reportService{
		repo:          repo,
		logger:        logger,
		validator:     v,
		psychometrics: psychometricsService,
	}
}

// ===== IMPORT =====

// ImportItemsFromExcel loads bank items from a spreadsheet with the columns
// id, case_id, type, stem, client_need, content, rationale. Content is the
// type-specific JSON payload, validated before anything is written.
func (s *reportService) ImportItemsFromExcel(ctx context.Context, reader io.Reader) (*ImportResult, error) {
	f, err := excelize.OpenReader(reader)
	if err != nil {
		return nil, fmt.Errorf("failed to open Excel file: %w", err)
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return nil, NewValidationError("file", "Excel file has no sheets", nil)
	}

	rows, err := f.GetRows(sheets[0])
	if err != nil {
		return nil, fmt.Errorf("failed to read Excel rows: %w", err)
	}
	if len(rows) < 2 {
		return nil, NewValidationError("file", "Excel must have header row and at least one data row", len(rows))
	}

	headerMap := make(map[string]int)
	for i, header := range rows[0] {
		headerMap[strings.ToLower(strings.TrimSpace(header))] = i
	}
	for _, required := range []string{"id", "case_id", "type", "stem", "content"} {
		if _, ok := headerMap[required]; !ok {
			return nil, NewValidationError("file", fmt.Sprintf("missing required column %q", required), nil)
		}
	}

	result := &ImportResult{TotalRows: len(rows) - 1}
	var items []*models.BankItem

	for rowIndex, row := range rows[1:] {
		item, rowErr := s.parseItemRow(row, headerMap)
		if rowErr != nil {
			result.ErrorCount++
			result.Errors = append(result.Errors, fmt.Sprintf("row %d: %v", rowIndex+2, rowErr))
			continue
		}
		items = append(items, item)
		result.SuccessCount++
	}

	if len(items) > 0 {
		if err := s.repo.Item().CreateBatch(ctx, items); err != nil {
			return nil, fmt.Errorf("failed to save items: %w", err)
		}
	}

	s.logger.Info("Item bank import completed",
		"total_rows", result.TotalRows,
		"success_count", result.SuccessCount,
		"error_count", result.ErrorCount)

	return result, nil
}

func (s *reportService) parseItemRow(row []string, headerMap map[string]int) (*models.BankItem, error) {
	cell := func(name string) string {
		idx, ok := headerMap[name]
		if !ok || idx >= len(row) {
			return ""
		}
		return strings.TrimSpace(row[idx])
	}

	content := cell("content")
	if !json.Valid([]byte(content)) {
		return nil, fmt.Errorf("content is not valid JSON")
	}

	item := &models.BankItem{
		ID:         cell("id"),
		CaseID:     cell("case_id"),
		Type:       models.ItemType(cell("type")),
		Stem:       cell("stem"),
		ClientNeed: models.ClientNeed(cell("client_need")),
		Content:    datatypes.JSON(content),
	}
	if rationale := cell("rationale"); rationale != "" {
		item.Rationale = &rationale
	}

	if err := s.validator.ValidateStruct(item); err != nil {
		return nil, err
	}
	if err := s.validator.Item().ValidateItem(item); err != nil {
		return nil, err
	}
	return item, nil
}

// ===== EXPORT =====

func (s *reportService) ExportCaseAnalysisToExcel(ctx context.Context, caseID string) ([]byte, error) {
	summary, err := s.psychometrics.AnalyzeCase(ctx, caseID)
	if err != nil {
		return nil, err
	}

	f := excelize.NewFile()
	sheetName := "Item Analysis"

	index, err := f.NewSheet(sheetName)
	if err != nil {
		return nil, fmt.Errorf("failed to create Excel sheet: %w", err)
	}
	f.SetActiveSheet(index)
	f.DeleteSheet("Sheet1")

	headers := []string{
		"Item ID", "N", "P-Value", "Discrimination (r)", "Top-Bottom Index", "Notes",
	}
	for i, header := range headers {
		cell := fmt.Sprintf("%c1", 'A'+i)
		f.SetCellValue(sheetName, cell, header)
	}

	for rowIndex, item := range summary.Items {
		row := []interface{}{
			item.ItemID,
			item.N,
			statCell(item.PValue),
			statCell(item.Discrimination),
			statCell(item.TopBottomIndex),
			statNotes(item),
		}
		for colIndex, value := range row {
			cell := fmt.Sprintf("%c%d", 'A'+colIndex, rowIndex+2)
			f.SetCellValue(sheetName, cell, value)
		}
	}

	// Case-level block below the item rows.
	footerRow := len(summary.Items) + 3
	f.SetCellValue(sheetName, fmt.Sprintf("A%d", footerRow), "KR-20")
	f.SetCellValue(sheetName, fmt.Sprintf("B%d", footerRow), statCell(summary.KR20))
	f.SetCellValue(sheetName, fmt.Sprintf("A%d", footerRow+1), "Attempts")
	f.SetCellValue(sheetName, fmt.Sprintf("B%d", footerRow+1), summary.N)
	f.SetCellValue(sheetName, fmt.Sprintf("A%d", footerRow+2), "Common Items")
	f.SetCellValue(sheetName, fmt.Sprintf("B%d", footerRow+2), len(summary.CommonItems))

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, fmt.Errorf("failed to write Excel file: %w", err)
	}
	return buf.Bytes(), nil
}

func (s *reportService) ExportAttemptResultsToExcel(ctx context.Context, caseID string) ([]byte, error) {
	attempts, err := s.repo.Attempt().GetFinalizedByCase(ctx, caseID)
	if err != nil {
		return nil, fmt.Errorf("failed to load finalized attempts: %w", err)
	}

	f := excelize.NewFile()
	sheetName := "Results"

	index, err := f.NewSheet(sheetName)
	if err != nil {
		return nil, fmt.Errorf("failed to create Excel sheet: %w", err)
	}
	f.SetActiveSheet(index)
	f.DeleteSheet("Sheet1")

	headers := []string{
		"Attempt ID", "Student ID", "Session ID", "Started At", "Finalized At",
		"Total Points", "Max Points", "Safety Capped Domains",
	}
	for i, header := range headers {
		cell := fmt.Sprintf("%c1", 'A'+i)
		f.SetCellValue(sheetName, cell, header)
	}

	for rowIndex, attempt := range attempts {
		finalizedAt := ""
		if attempt.FinalizedAt != nil {
			finalizedAt = attempt.FinalizedAt.Format("2006-01-02 15:04:05")
		}

		row := []interface{}{
			attempt.ID,
			attempt.StudentID,
			attempt.SessionID,
			attempt.StartedAt.Format("2006-01-02 15:04:05"),
			finalizedAt,
			attempt.TotalPoints,
			attempt.MaxPoints,
			cappedDomains(attempt),
		}
		for colIndex, value := range row {
			cell := fmt.Sprintf("%c%d", 'A'+colIndex, rowIndex+2)
			f.SetCellValue(sheetName, cell, value)
		}
	}

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, fmt.Errorf("failed to write Excel file: %w", err)
	}
	return buf.Bytes(), nil
}

func statCell(stat psychometrics.Stat) interface{} {
	if !stat.Computable {
		return "n/a"
	}
	return stat.Value
}

func statNotes(item psychometrics.ItemSummary) string {
	var notes []string
	for _, stat := range []psychometrics.Stat{item.PValue, item.Discrimination, item.TopBottomIndex} {
		if !stat.Computable && stat.Reason != "" {
			notes = append(notes, stat.Reason)
		}
	}
	return strings.Join(notes, "; ")
}

func cappedDomains(attempt *models.Attempt) string {
	report, err := attempt.DecodeScoreReport()
	if err != nil || report == nil {
		return ""
	}
	var capped []string
	for domain, detail := range report.Domains {
		if detail.SafetyCapped {
			capped = append(capped, string(domain))
		}
	}
	return strings.Join(capped, ", ")
}
