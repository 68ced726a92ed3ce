package service

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"merchantops/models"
)

func seedInventoryForReport(t *testing.T, stack *serviceStack) {
	t.Helper()
	dish := seedDishWithCategory(t, stack, "Pad Thai", 0)
	if _, err := stack.inventoryService().UpdateStock(dish.ID, &UpdateStockRequest{
		Stock: intPtr(3),
		Cost:  floatPtr(2.50),
	}); err != nil {
		t.Fatalf("UpdateStock: %v", err)
	}
}

func TestExportReportJSON(t *testing.T) {
	stack := newServiceStack(t)
	seedInventoryForReport(t, stack)
	svc := stack.reportService()

	result, err := svc.ExportReport("inventory", "json")
	if err != nil {
		t.Fatalf("ExportReport: %v", err)
	}
	if !result.Success {
		t.Fatal("expected success")
	}
	if result.RecordCount != 1 {
		t.Fatalf("expected 1 record, got %d", result.RecordCount)
	}
	if result.Data == nil {
		t.Fatal("expected inline data on json export")
	}

	expectedName := fmt.Sprintf("inventory_report_%s.json", time.Now().Format(reportDateFormat))
	if filepath.Base(result.FilePath) != expectedName {
		t.Fatalf("expected file name %s, got %s", expectedName, filepath.Base(result.FilePath))
	}

	content, err := os.ReadFile(result.FilePath)
	if err != nil {
		t.Fatalf("read artifact: %v", err)
	}
	var decoded InventoryReport
	if err := json.Unmarshal(content, &decoded); err != nil {
		t.Fatalf("artifact is not valid json: %v", err)
	}
	if len(decoded.Items) != 1 || decoded.Items[0].DishName != "Pad Thai" {
		t.Fatalf("unexpected artifact content: %+v", decoded)
	}
}

func TestExportReportDefaultsToJSON(t *testing.T) {
	stack := newServiceStack(t)
	svc := stack.reportService()

	result, err := svc.ExportReport("sales", "")
	if err != nil {
		t.Fatalf("ExportReport: %v", err)
	}
	if result.Format != "json" {
		t.Fatalf("expected default format json, got %s", result.Format)
	}
}

func TestExportReportInventoryCSV(t *testing.T) {
	stack := newServiceStack(t)
	seedInventoryForReport(t, stack)
	svc := stack.reportService()

	result, err := svc.ExportReport("inventory", "csv")
	if err != nil {
		t.Fatalf("ExportReport: %v", err)
	}
	if result.Data != nil {
		t.Fatal("expected no inline data on csv export")
	}

	content, err := os.ReadFile(result.FilePath)
	if err != nil {
		t.Fatalf("read artifact: %v", err)
	}

	lines := strings.Split(strings.TrimRight(string(content), "\n"), "\n")
	if len(lines) != 2 {
		t.Fatalf("expected header plus one row, got %d lines", len(lines))
	}
	expectedHeader := `"dishId","dishName","stock","alertThreshold","stockStatus","supplier","cost","stockValue","expiryDate","lastUpdated"`
	if lines[0] != expectedHeader {
		t.Fatalf("unexpected header:\n%s", lines[0])
	}
	if !strings.HasPrefix(lines[1], `"dish_1","Pad Thai","3","5","low","","2.50","7.50","",`) {
		t.Fatalf("unexpected row:\n%s", lines[1])
	}
}

func TestExportReportXLSX(t *testing.T) {
	stack := newServiceStack(t)
	seedInventoryForReport(t, stack)
	svc := stack.reportService()

	result, err := svc.ExportReport("inventory", "xlsx")
	if err != nil {
		t.Fatalf("ExportReport: %v", err)
	}

	content, err := os.ReadFile(result.FilePath)
	if err != nil {
		t.Fatalf("read artifact: %v", err)
	}
	// xlsx files are zip archives
	if len(content) < 4 || content[0] != 'P' || content[1] != 'K' {
		t.Fatalf("expected zip container, got leading bytes %v", content[:4])
	}
}

func TestExportReportNormalizesCase(t *testing.T) {
	stack := newServiceStack(t)
	svc := stack.reportService()

	result, err := svc.ExportReport("  SALES ", " Json ")
	if err != nil {
		t.Fatalf("ExportReport: %v", err)
	}
	if result.ReportType != "sales" || result.Format != "json" {
		t.Fatalf("expected normalized type and format, got %s/%s", result.ReportType, result.Format)
	}
}

func TestExportReportRejectsUnknownType(t *testing.T) {
	svc := newServiceStack(t).reportService()

	_, err := svc.ExportReport("orders", "json")
	if !models.IsValidation(err) {
		t.Fatalf("expected validation error, got %v", err)
	}
	if err.Error() != "Unsupported report type" {
		t.Fatalf("unexpected message %q", err.Error())
	}
}

func TestExportReportRejectsUnknownFormat(t *testing.T) {
	svc := newServiceStack(t).reportService()

	// The format check runs before any report is generated, so even an
	// unknown type reports the format problem first.
	_, err := svc.ExportReport("orders", "pdf")
	if !models.IsValidation(err) {
		t.Fatalf("expected validation error, got %v", err)
	}
	if err.Error() != "Unsupported export format" {
		t.Fatalf("unexpected message %q", err.Error())
	}
}

func TestListReportArtifactsNewestFirst(t *testing.T) {
	stack := newServiceStack(t)
	svc := stack.reportService()

	reportsDir := stack.storage.ReportsDir()
	older := filepath.Join(reportsDir, "sales_report_2026-08-01.json")
	newer := filepath.Join(reportsDir, "sales_report_2026-08-02.json")
	if err := os.WriteFile(older, []byte("{}"), 0o644); err != nil {
		t.Fatalf("write older: %v", err)
	}
	if err := os.WriteFile(newer, []byte("{}"), 0o644); err != nil {
		t.Fatalf("write newer: %v", err)
	}
	oldTime := time.Now().Add(-time.Hour)
	if err := os.Chtimes(older, oldTime, oldTime); err != nil {
		t.Fatalf("chtimes: %v", err)
	}
	// Directories in the reports dir are not artifacts.
	if err := os.Mkdir(filepath.Join(reportsDir, "archive"), 0o755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}

	artifacts, err := svc.ListReportArtifacts()
	if err != nil {
		t.Fatalf("ListReportArtifacts: %v", err)
	}
	if len(artifacts) != 2 {
		t.Fatalf("expected 2 artifacts, got %d", len(artifacts))
	}
	if artifacts[0].Name != "sales_report_2026-08-02.json" {
		t.Fatalf("expected newest first, got %s", artifacts[0].Name)
	}
	if artifacts[1].SizeBytes != 2 {
		t.Fatalf("expected recorded size 2, got %d", artifacts[1].SizeBytes)
	}
}

func TestArtifactPath(t *testing.T) {
	stack := newServiceStack(t)
	svc := stack.reportService()

	name := "inventory_report_2026-08-21.csv"
	if err := os.WriteFile(filepath.Join(stack.storage.ReportsDir(), name), []byte("x"), 0o644); err != nil {
		t.Fatalf("write artifact: %v", err)
	}

	path, err := svc.ArtifactPath(name)
	if err != nil {
		t.Fatalf("ArtifactPath: %v", err)
	}
	if filepath.Base(path) != name {
		t.Fatalf("unexpected path %s", path)
	}

	for _, bad := range []string{"", ".", "..", "../secrets", "a/b.json"} {
		if _, err := svc.ArtifactPath(bad); !models.IsValidation(err) {
			t.Fatalf("ArtifactPath(%q) expected validation error, got %v", bad, err)
		}
	}
	if _, err := svc.ArtifactPath("missing.json"); !models.IsNotFound(err) {
		t.Fatalf("expected not found for missing artifact, got %v", err)
	}
}

func TestFlattenReport(t *testing.T) {
	report := struct {
		Summary struct {
			Total int     `json:"total"`
			Rate  float64 `json:"rate"`
		} `json:"summary"`
		Name  string   `json:"name"`
		Tags  []string `json:"tags"`
		Ready bool     `json:"ready"`
	}{
		Name:  "overview",
		Tags:  []string{"a", "b"},
		Ready: true,
	}
	report.Summary.Total = 3
	report.Summary.Rate = 1.5

	columns, values, err := flattenReport(report)
	if err != nil {
		t.Fatalf("flattenReport: %v", err)
	}

	expectedColumns := []string{"name", "ready", "summary.rate", "summary.total"}
	if len(columns) != len(expectedColumns) {
		t.Fatalf("expected columns %v, got %v", expectedColumns, columns)
	}
	for i := range expectedColumns {
		if columns[i] != expectedColumns[i] {
			t.Fatalf("expected columns %v, got %v", expectedColumns, columns)
		}
	}

	expectedValues := []string{"overview", "true", "1.5", "3"}
	for i := range expectedValues {
		if values[i] != expectedValues[i] {
			t.Fatalf("expected values %v, got %v", expectedValues, values)
		}
	}
}

func TestCSVQuoting(t *testing.T) {
	var b strings.Builder
	writeCSVRow(&b, []string{`plain`, `say "hi"`, ``})
	if got := b.String(); got != `"plain","say ""hi""",""`+"\n" {
		t.Fatalf("unexpected csv row: %q", got)
	}
}
