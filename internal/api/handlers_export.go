package api

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/go-chi/chi/v5"

	"converterservice/internal/export"
	"converterservice/internal/service"
)

// ExportRequestedResponse represents the response for a newly created export job
type ExportRequestedResponse struct {
	ExportID string `json:"export_id" example:"123e4567-e89b-12d3-a456-426614174000"`
	Status   string `json:"status" example:"PENDING"`
}

// ExportStatusResponse represents the status of an export job
type ExportStatusResponse struct {
	ExportID  string `json:"export_id" example:"123e4567-e89b-12d3-a456-426614174000"`
	Status    string `json:"status" example:"SUCCESS"`
	Error     string `json:"error,omitempty" example:"failed to fetch currency symbols"`
	UpdatedAt string `json:"updated_at,omitempty" example:"2024-03-15T10:30:00Z"`
}

// HandleRequestExport godoc
// @Summary Request an export of current USD rates
// @Description Creates an export job and schedules workbook generation in the background. Poll the status endpoint, then download the file once the job reports SUCCESS.
// @Tags exports
// @Produce json
// @Success 202 {object} ExportRequestedResponse "Export job accepted"
// @Failure 500 {object} ErrorResponse "Failed to schedule the export"
// @Router /exports [post]
func HandleRequestExport(svc service.ConverterServiceInterface) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := svc.RequestExport(r.Context())
		if err != nil {
			writeJSON(w, http.StatusInternalServerError, ErrorResponse{Error: "failed to schedule export"})
			return
		}
		writeJSON(w, http.StatusAccepted, ExportRequestedResponse{ExportID: id, Status: "PENDING"})
	}
}

// HandleGetExport godoc
// @Summary Get the status of an export job
// @Tags exports
// @Produce json
// @Param id path string true "Export job ID" format(uuid)
// @Success 200 {object} ExportStatusResponse "Export status"
// @Failure 400 {object} ErrorResponse "Invalid export ID"
// @Failure 404 {object} ErrorResponse "Export not found"
// @Router /exports/{id} [get]
func HandleGetExport(svc service.ConverterServiceInterface) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id := chi.URLParam(r, "id")

		res, err := svc.GetExport(r.Context(), id)
		if err != nil {
			switch {
			case errors.Is(err, service.ErrInvalidExportID):
				writeJSON(w, http.StatusBadRequest, ErrorResponse{Error: "invalid export ID format"})
			case errors.Is(err, service.ErrNotFound):
				writeJSON(w, http.StatusNotFound, ErrorResponse{Error: "export not found"})
			default:
				writeJSON(w, http.StatusInternalServerError, ErrorResponse{Error: "Internal error"})
			}
			return
		}

		writeJSON(w, http.StatusOK, ExportStatusResponse{
			ExportID:  res.ID,
			Status:    res.Status,
			Error:     derefStr(res.ErrorMsg),
			UpdatedAt: derefStr(res.UpdatedAt),
		})
	}
}

// HandleDownloadExport godoc
// @Summary Download a completed export workbook
// @Tags exports
// @Produce application/vnd.openxmlformats-officedocument.spreadsheetml.sheet
// @Param id path string true "Export job ID" format(uuid)
// @Success 200 {file} binary "The xlsx workbook"
// @Failure 400 {object} ErrorResponse "Invalid export ID"
// @Failure 404 {object} ErrorResponse "Export not found"
// @Failure 409 {object} ErrorResponse "Export not finished yet"
// @Router /exports/{id}/download [get]
func HandleDownloadExport(svc service.ConverterServiceInterface) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id := chi.URLParam(r, "id")

		data, err := svc.GetExportFile(r.Context(), id)
		if err != nil {
			switch {
			case errors.Is(err, service.ErrInvalidExportID):
				writeJSON(w, http.StatusBadRequest, ErrorResponse{Error: "invalid export ID format"})
			case errors.Is(err, service.ErrNotFound):
				writeJSON(w, http.StatusNotFound, ErrorResponse{Error: "export not found"})
			case errors.Is(err, service.ErrExportNotReady):
				writeJSON(w, http.StatusConflict, ErrorResponse{Error: "export is not ready for download"})
			default:
				writeJSON(w, http.StatusInternalServerError, ErrorResponse{Error: "Internal error"})
			}
			return
		}

		w.Header().Set("Content-Type", export.ContentType)
		w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", export.FileName))
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write(data)
	}
}
