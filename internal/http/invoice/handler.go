package invoice

import (
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/taxright/taxright/internal/invoice"
	"github.com/taxright/taxright/internal/ocr"
	"github.com/taxright/taxright/internal/verification"
)

type Handler struct {
	invoices      *invoice.Service
	verifications *verification.Service
}

func NewHandler(invoices *invoice.Service, verifications *verification.Service) *Handler {
	return &Handler{
		invoices:      invoices,
		verifications: verifications,
	}
}

func (h *Handler) Routes(r chi.Router) {
	r.Post("/", h.upload)
	r.Get("/", h.list)
	r.Get("/{id}", h.get)
	r.Delete("/{id}", h.delete)
	r.Get("/{id}/line-items", h.lineItems)
	r.Post("/{id}/reprocess", h.reprocess)
	r.Post("/{id}/verify-taxes", h.verifyTaxes)
	r.Get("/{id}/tax-determination", h.taxDetermination)
	r.Get("/{id}/pipeline/ocr", h.pipelineOCR)
	r.Get("/{id}/pipeline/tax-verification", h.pipelineVerification)
	r.Get("/{id}/pipeline/tax-determination", h.taxDetermination)
}

func (h *Handler) upload(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseMultipartForm(ocr.MaxPDFSize); err != nil {
		http.Error(w, "invalid multipart form", http.StatusBadRequest)
		return
	}

	file, header, err := r.FormFile("file")
	if err != nil {
		http.Error(w, "missing file field", http.StatusBadRequest)
		return
	}
	defer file.Close()

	pdf, err := io.ReadAll(file)
	if err != nil {
		http.Error(w, "reading file", http.StatusBadRequest)
		return
	}

	inv, err := h.invoices.ProcessPDF(r.Context(), header.Filename, pdf)
	if err != nil {
		// An invoice in error status is still a persisted, reportable
		// outcome; reject outright only when nothing was created.
		if inv == nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}

		writeJSON(w, http.StatusUnprocessableEntity, toInvoiceResponse(inv))

		return
	}

	writeJSON(w, http.StatusCreated, toInvoiceResponse(inv))
}

func (h *Handler) list(w http.ResponseWriter, r *http.Request) {
	filter := invoice.ListFilter{}

	if s := r.URL.Query().Get("status"); s != "" {
		status := invoice.Status(s)
		filter.Status = &status
	}

	if s := r.URL.Query().Get("state_code"); s != "" {
		filter.StateCode = &s
	}

	if s := r.URL.Query().Get("vendor"); s != "" {
		filter.Vendor = &s
	}

	invoices, err := h.invoices.List(r.Context(), filter)
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	writeJSON(w, http.StatusOK, toInvoiceResponseList(invoices))
}

func (h *Handler) get(w http.ResponseWriter, r *http.Request) {
	id, ok := parseID(w, r)
	if !ok {
		return
	}

	inv, err := h.invoices.Get(r.Context(), id)
	if err != nil {
		respondError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, toInvoiceResponse(inv))
}

func (h *Handler) delete(w http.ResponseWriter, r *http.Request) {
	id, ok := parseID(w, r)
	if !ok {
		return
	}

	if err := h.invoices.Delete(r.Context(), id); err != nil {
		respondError(w, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) lineItems(w http.ResponseWriter, r *http.Request) {
	id, ok := parseID(w, r)
	if !ok {
		return
	}

	items, err := h.invoices.LineItems(r.Context(), id)
	if err != nil {
		respondError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, toLineItemResponseList(items))
}

func (h *Handler) reprocess(w http.ResponseWriter, r *http.Request) {
	id, ok := parseID(w, r)
	if !ok {
		return
	}

	inv, err := h.invoices.Reparse(r.Context(), id)
	if err != nil {
		if errors.Is(err, invoice.ErrNoOCRData) {
			http.Error(w, "invoice has no OCR data to reprocess", http.StatusBadRequest)
			return
		}

		respondError(w, err)

		return
	}

	writeJSON(w, http.StatusOK, toInvoiceResponse(inv))
}

func (h *Handler) verifyTaxes(w http.ResponseWriter, r *http.Request) {
	id, ok := parseID(w, r)
	if !ok {
		return
	}

	result, err := h.verifications.VerifyInvoice(r.Context(), id)
	if err != nil {
		if errors.Is(err, verification.ErrNotApplicable) {
			http.Error(w, "invoice has no valid state code or no line items", http.StatusBadRequest)
			return
		}

		respondError(w, err)

		return
	}

	writeJSON(w, http.StatusOK, toVerificationResultResponse(result))
}

func (h *Handler) taxDetermination(w http.ResponseWriter, r *http.Request) {
	id, ok := parseID(w, r)
	if !ok {
		return
	}

	det, err := h.verifications.Determination(r.Context(), id)
	if err != nil {
		if errors.Is(err, verification.ErrNotFound) {
			http.Error(w, "no tax determination for this invoice", http.StatusNotFound)
			return
		}

		respondError(w, err)

		return
	}

	writeJSON(w, http.StatusOK, toDeterminationResponse(det))
}

func (h *Handler) pipelineOCR(w http.ResponseWriter, r *http.Request) {
	id, ok := parseID(w, r)
	if !ok {
		return
	}

	inv, err := h.invoices.Get(r.Context(), id)
	if err != nil {
		respondError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, toOCRStageResponse(inv))
}

func (h *Handler) pipelineVerification(w http.ResponseWriter, r *http.Request) {
	id, ok := parseID(w, r)
	if !ok {
		return
	}

	verifications, err := h.verifications.Verifications(r.Context(), id)
	if err != nil {
		respondError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, toVerificationResponseList(verifications))
}

func parseID(w http.ResponseWriter, r *http.Request) (uuid.UUID, bool) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		http.Error(w, "invalid id", http.StatusBadRequest)
		return uuid.Nil, false
	}

	return id, true
}

func respondError(w http.ResponseWriter, err error) {
	if errors.Is(err, invoice.ErrNotFound) {
		http.Error(w, "invoice not found", http.StatusNotFound)
		return
	}

	http.Error(w, "internal error", http.StatusInternalServerError)
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	if err := json.NewEncoder(w).Encode(body); err != nil {
		slog.Error("failed to encode response", "error", err)
	}
}
