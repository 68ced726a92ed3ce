package handler

import (
	"net/http"

	"merchantops/internal/service"
	"merchantops/pkg/logger"
)

// ReportHandler struct
type ReportHandler struct {
	responder
	reportService service.ReportServiceInterface
}

// NewReportHandler creates a new ReportHandler with the given service and logger
func NewReportHandler(reportService service.ReportServiceInterface, log *logger.Logger) *ReportHandler {
	return &ReportHandler{
		responder:     responder{logger: log.WithComponent("report_handler")},
		reportService: reportService,
	}
}

// HandleReports handles GET /api/v1/reports
func (h *ReportHandler) HandleReports(w http.ResponseWriter, r *http.Request) {
	reqCtx := newRequestContext(r)
	h.logger.LogRequest(reqCtx)

	if r.Method != http.MethodGet {
		h.respondError(w, reqCtx, http.StatusMethodNotAllowed, "Method not allowed")
		return
	}

	artifacts, err := h.reportService.ListReportArtifacts()
	if err != nil {
		h.respondServiceError(w, reqCtx, err)
		return
	}

	h.respondJSON(w, reqCtx, http.StatusOK, artifacts)
}

// HandleReportRoutes handles POST /api/v1/reports/export and
// GET /api/v1/reports/download/{file}
func (h *ReportHandler) HandleReportRoutes(w http.ResponseWriter, r *http.Request) {
	reqCtx := newRequestContext(r)
	h.logger.LogRequest(reqCtx)

	parts := pathParts(r, "/api/v1/reports")

	if len(parts) == 1 && parts[0] == "export" {
		if r.Method != http.MethodPost {
			h.respondError(w, reqCtx, http.StatusMethodNotAllowed, "Method not allowed")
			return
		}
		h.exportReport(w, r, reqCtx)
		return
	}

	if len(parts) == 2 && parts[0] == "download" {
		if r.Method != http.MethodGet {
			h.respondError(w, reqCtx, http.StatusMethodNotAllowed, "Method not allowed")
			return
		}
		h.downloadReport(w, r, reqCtx, parts[1])
		return
	}

	h.respondError(w, reqCtx, http.StatusNotFound, "Not found")
}

func (h *ReportHandler) exportReport(w http.ResponseWriter, r *http.Request, reqCtx *logger.RequestContext) {
	query := r.URL.Query()
	reportType := query.Get("type")
	format := query.Get("format")

	result, err := h.reportService.ExportReport(reportType, format)
	if err != nil {
		h.respondServiceError(w, reqCtx, err)
		return
	}

	h.logger.Info("Report exported",
		"type", result.ReportType,
		"format", result.Format,
		"file", result.FilePath,
		"records", result.RecordCount)

	h.respondJSON(w, reqCtx, http.StatusOK, result)
}

func (h *ReportHandler) downloadReport(w http.ResponseWriter, r *http.Request, reqCtx *logger.RequestContext, name string) {
	path, err := h.reportService.ArtifactPath(name)
	if err != nil {
		h.respondServiceError(w, reqCtx, err)
		return
	}

	http.ServeFile(w, r, path)
	reqCtx.StatusCode = http.StatusOK
	h.logger.LogResponse(reqCtx)
}
