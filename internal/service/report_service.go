package service

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/xuri/excelize/v2"

	"merchantops/models"
	"merchantops/pkg/database"
	"merchantops/pkg/logger"
)

const reportDateFormat = "2006-01-02"

// inventoryCSVColumns is the documented export contract for inventory
// CSV files; order and spelling are load-bearing for consumers.
var inventoryCSVColumns = []string{
	"dishId", "dishName", "stock", "alertThreshold", "stockStatus",
	"supplier", "cost", "stockValue", "expiryDate", "lastUpdated",
}

type ExportResult struct {
	Success     bool      `json:"success"`
	ReportType  string    `json:"reportType"`
	Format      string    `json:"format"`
	FilePath    string    `json:"filePath"`
	RecordCount int       `json:"recordCount"`
	GeneratedAt time.Time `json:"generatedAt"`
	Data        any       `json:"data,omitempty"`
}

type ReportArtifact struct {
	Name       string    `json:"name"`
	SizeBytes  int64     `json:"sizeBytes"`
	ModifiedAt time.Time `json:"modifiedAt"`
}

type ReportServiceInterface interface {
	ExportReport(reportType, format string) (*ExportResult, error)
	ListReportArtifacts() ([]ReportArtifact, error)
	ArtifactPath(name string) (string, error)
}

type ReportService struct {
	analytics AnalyticsServiceInterface
	storage   *database.Storage
	logger    *logger.Logger
}

func NewReportService(analytics AnalyticsServiceInterface, storage *database.Storage, log *logger.Logger) *ReportService {
	return &ReportService{
		analytics: analytics,
		storage:   storage,
		logger:    log.WithComponent("report_service"),
	}
}

// ExportReport generates one report type, serializes it into the asked
// format and writes the artifact under the reports directory. Type and
// format match case-insensitively; the format defaults to json.
func (s *ReportService) ExportReport(reportType, format string) (*ExportResult, error) {
	reportType = strings.ToLower(strings.TrimSpace(reportType))
	format = strings.ToLower(strings.TrimSpace(format))
	if format == "" {
		format = "json"
	}

	switch format {
	case "json", "csv", "xlsx":
	default:
		return nil, models.NewValidationError("", "Unsupported export format")
	}

	var (
		report      any
		recordCount int
	)
	switch reportType {
	case "sales":
		sales, err := s.analytics.GetSalesAnalytics()
		if err != nil {
			return nil, err
		}
		report, recordCount = sales, len(sales.TopDishes)
	case "inventory":
		inventory, err := s.analytics.GetInventoryReport()
		if err != nil {
			return nil, err
		}
		report, recordCount = inventory, len(inventory.Items)
	case "reviews":
		reviews, err := s.analytics.GetReviewAnalytics()
		if err != nil {
			return nil, err
		}
		report, recordCount = reviews, len(reviews.DishReviews)
	case "promotions":
		promotions, err := s.analytics.GetPromotionAnalytics()
		if err != nil {
			return nil, err
		}
		report, recordCount = promotions, len(promotions.Promotions)
	default:
		return nil, models.NewValidationError("", "Unsupported report type")
	}

	var (
		content []byte
		err     error
	)
	switch format {
	case "json":
		content, err = json.MarshalIndent(report, "", "  ")
		if err != nil {
			return nil, fmt.Errorf("failed to marshal %s report: %w", reportType, err)
		}
	case "csv":
		if inventory, ok := report.(*InventoryReport); ok {
			content = []byte(inventoryCSV(inventory))
		} else {
			content, err = genericCSV(report)
			if err != nil {
				return nil, err
			}
		}
	case "xlsx":
		if inventory, ok := report.(*InventoryReport); ok {
			content, err = inventoryXLSX(inventory)
		} else {
			content, err = genericXLSX(report)
		}
		if err != nil {
			return nil, err
		}
	}

	fileName := fmt.Sprintf("%s_report_%s.%s", reportType, time.Now().Format(reportDateFormat), format)
	filePath := filepath.Join(s.storage.ReportsDir(), fileName)
	if err := os.WriteFile(filePath, content, 0o644); err != nil {
		s.logger.Error("Failed to write report artifact", "error", err, "path", filePath)
		return nil, models.NewIOError("write", filePath, err)
	}

	result := &ExportResult{
		Success:     true,
		ReportType:  reportType,
		Format:      format,
		FilePath:    filePath,
		RecordCount: recordCount,
		GeneratedAt: time.Now(),
	}
	if format == "json" {
		result.Data = report
	}

	s.logger.Info("Exported report", "type", reportType, "format", format, "path", filePath, "records", recordCount)
	return result, nil
}

// ListReportArtifacts returns the exported files, newest first
func (s *ReportService) ListReportArtifacts() ([]ReportArtifact, error) {
	reportsDir := s.storage.ReportsDir()
	entries, err := os.ReadDir(reportsDir)
	if err != nil {
		if os.IsNotExist(err) {
			return []ReportArtifact{}, nil
		}
		return nil, models.NewIOError("read", reportsDir, err)
	}

	artifacts := make([]ReportArtifact, 0, len(entries))
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		info, err := entry.Info()
		if err != nil {
			s.logger.Warn("Skipping unreadable report artifact", "name", entry.Name(), "error", err)
			continue
		}
		artifacts = append(artifacts, ReportArtifact{
			Name:       entry.Name(),
			SizeBytes:  info.Size(),
			ModifiedAt: info.ModTime(),
		})
	}

	sort.SliceStable(artifacts, func(i, j int) bool {
		return artifacts[i].ModifiedAt.After(artifacts[j].ModifiedAt)
	})

	return artifacts, nil
}

// ArtifactPath resolves a download name to a path inside the reports
// directory. Anything that is not a plain base name is rejected before
// it can traverse out.
func (s *ReportService) ArtifactPath(name string) (string, error) {
	if name == "" || name == "." || name == ".." || name != filepath.Base(name) {
		return "", models.NewValidationError("", "invalid report file name")
	}

	path := filepath.Join(s.storage.ReportsDir(), name)
	info, err := os.Stat(path)
	if err != nil {
		if os.IsNotExist(err) {
			return "", models.NewNotFoundError("report", name)
		}
		return "", models.NewIOError("stat", path, err)
	}
	if info.IsDir() {
		return "", models.NewNotFoundError("report", name)
	}

	return path, nil
}

func inventoryCSV(report *InventoryReport) string {
	var b strings.Builder
	writeCSVRow(&b, inventoryCSVColumns)
	for _, item := range report.Items {
		writeCSVRow(&b, inventoryCSVRow(item))
	}
	return b.String()
}

func inventoryCSVRow(item InventoryReportRow) []string {
	return []string{
		item.DishID,
		item.DishName,
		strconv.Itoa(item.Stock),
		strconv.Itoa(item.AlertThreshold),
		item.StockStatus,
		item.Supplier,
		strconv.FormatFloat(item.Cost, 'f', 2, 64),
		strconv.FormatFloat(item.StockValue, 'f', 2, 64),
		item.ExpiryDate,
		item.LastUpdated,
	}
}

func genericCSV(report any) ([]byte, error) {
	columns, values, err := flattenReport(report)
	if err != nil {
		return nil, err
	}

	var b strings.Builder
	writeCSVRow(&b, columns)
	writeCSVRow(&b, values)
	return []byte(b.String()), nil
}

// flattenReport dot-flattens one nesting level of plain objects into
// key.subkey columns. Arrays and deeper nesting are skipped; columns are
// sorted so the output is deterministic. Lossy for array-heavy reports.
func flattenReport(report any) ([]string, []string, error) {
	raw, err := json.Marshal(report)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to flatten report: %w", err)
	}

	var doc map[string]any
	if err := json.Unmarshal(raw, &doc); err != nil {
		return nil, nil, fmt.Errorf("failed to flatten report: %w", err)
	}

	flat := make(map[string]string)
	for key, value := range doc {
		if nested, ok := value.(map[string]any); ok {
			for subKey, subValue := range nested {
				if scalar, ok := csvScalar(subValue); ok {
					flat[key+"."+subKey] = scalar
				}
			}
			continue
		}
		if scalar, ok := csvScalar(value); ok {
			flat[key] = scalar
		}
	}

	columns := make([]string, 0, len(flat))
	for column := range flat {
		columns = append(columns, column)
	}
	sort.Strings(columns)

	values := make([]string, len(columns))
	for i, column := range columns {
		values[i] = flat[column]
	}
	return columns, values, nil
}

func csvScalar(value any) (string, bool) {
	switch typed := value.(type) {
	case nil:
		return "", true
	case string:
		return typed, true
	case bool:
		return strconv.FormatBool(typed), true
	case float64:
		return strconv.FormatFloat(typed, 'f', -1, 64), true
	default:
		return "", false
	}
}

// writeCSVRow renders one row with every value quoted. encoding/csv only
// quotes when forced to, and the export contract wants all values
// quoted, so rows are rendered by hand.
func writeCSVRow(b *strings.Builder, values []string) {
	for i, value := range values {
		if i > 0 {
			b.WriteByte(',')
		}
		b.WriteString(csvQuote(value))
	}
	b.WriteByte('\n')
}

func csvQuote(value string) string {
	return `"` + strings.ReplaceAll(value, `"`, `""`) + `"`
}

func inventoryXLSX(report *InventoryReport) ([]byte, error) {
	rows := make([][]string, 0, len(report.Items))
	for _, item := range report.Items {
		rows = append(rows, inventoryCSVRow(item))
	}
	return buildXLSX(inventoryCSVColumns, rows)
}

func genericXLSX(report any) ([]byte, error) {
	columns, values, err := flattenReport(report)
	if err != nil {
		return nil, err
	}
	return buildXLSX(columns, [][]string{values})
}

func buildXLSX(columns []string, rows [][]string) ([]byte, error) {
	f := excelize.NewFile()
	defer f.Close()

	sheet := f.GetSheetName(0)
	for i, column := range columns {
		cell, err := excelize.CoordinatesToCellName(i+1, 1)
		if err != nil {
			return nil, fmt.Errorf("failed to build xlsx header: %w", err)
		}
		if err := f.SetCellValue(sheet, cell, column); err != nil {
			return nil, fmt.Errorf("failed to build xlsx header: %w", err)
		}
	}

	for r, row := range rows {
		for c, value := range row {
			cell, err := excelize.CoordinatesToCellName(c+1, r+2)
			if err != nil {
				return nil, fmt.Errorf("failed to build xlsx row: %w", err)
			}
			if err := f.SetCellValue(sheet, cell, value); err != nil {
				return nil, fmt.Errorf("failed to build xlsx row: %w", err)
			}
		}
	}

	buffer, err := f.WriteToBuffer()
	if err != nil {
		return nil, fmt.Errorf("failed to serialize xlsx: %w", err)
	}
	return buffer.Bytes(), nil
}
