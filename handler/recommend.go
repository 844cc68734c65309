package handler

import (
	"errors"
	"net/http"

	"sake-recommendation/internal/usecase"
)

func (h *Handler) recommendSake(w http.ResponseWriter, r *http.Request) {
	body, err := decodeBody(w, r)
	if err != nil {
		h.countRecommendation("validation")
		h.writeError(w, r, err)
		return
	}
	out, err := h.recommend.Recommend(r.Context(), userIDFrom(r.Context()), body)
	if err != nil {
		var ucErr *usecase.Error
		if errors.As(err, &ucErr) && ucErr.Code == usecase.ErrorValidation {
			h.countRecommendation("validation")
		} else {
			h.countRecommendation("error")
		}
		h.writeError(w, r, err)
		return
	}
	h.countRecommendation("ok")
	writeJSON(w, http.StatusOK, out)
}

func (h *Handler) countRecommendation(outcome string) {
	if h.metrics != nil {
		h.metrics.Recommendations.WithLabelValues(outcome).Inc()
	}
}
