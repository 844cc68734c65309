package handler

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"sake-recommendation/internal/validation"
)

func (h *Handler) createRecord(w http.ResponseWriter, r *http.Request) {
	body, err := decodeBody(w, r)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	rec, err := h.records.Create(r.Context(), userIDFrom(r.Context()), body)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	if h.metrics != nil {
		h.metrics.RecordsCreated.Inc()
	}
	writeJSON(w, http.StatusCreated, dataResponse{Data: rec})
}

func (h *Handler) listRecords(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	list, err := h.records.List(r.Context(), userIDFrom(r.Context()), validation.ListQuery{
		Q:      q.Get("q"),
		Brand:  q.Get("brand"),
		Rating: q.Get("rating"),
		From:   q.Get("from"),
		To:     q.Get("to"),
	})
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, dataResponse{Data: list})
}

func (h *Handler) updateRecord(w http.ResponseWriter, r *http.Request) {
	body, err := decodeBody(w, r)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	rec, err := h.records.Update(r.Context(), userIDFrom(r.Context()), chi.URLParam(r, "recordId"), body)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	if h.metrics != nil {
		h.metrics.RecordsUpdated.Inc()
	}
	writeJSON(w, http.StatusOK, dataResponse{Data: rec})
}

func (h *Handler) deleteRecord(w http.ResponseWriter, r *http.Request) {
	if err := h.records.Delete(r.Context(), userIDFrom(r.Context()), chi.URLParam(r, "recordId")); err != nil {
		h.writeError(w, r, err)
		return
	}
	if h.metrics != nil {
		h.metrics.RecordsDeleted.Inc()
	}
	w.WriteHeader(http.StatusNoContent)
}
