package handlers

import (
	"net/http"

	"github.com/Dosada05/gods-bracket/middleware"
	"github.com/Dosada05/gods-bracket/services"
	"github.com/sirupsen/logrus"
)

type SnapshotHandler struct {
	snapshotService services.SnapshotService
}

func NewSnapshotHandler(ss services.SnapshotService) *SnapshotHandler {
	return &SnapshotHandler{
		snapshotService: ss,
	}
}

// GetSnapshot serves the stored document for a year as-is.
func (h *SnapshotHandler) GetSnapshot(w http.ResponseWriter, r *http.Request) {
	year, err := getYearFromURL(r)
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	snapshot, err := h.snapshotService.Get(r.Context(), year)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	headers := http.Header{"Cache-Control": []string{"public, max-age=60"}}
	if err := writeJSON(w, http.StatusOK, snapshot, headers); err != nil {
		serverErrorResponse(w, r, err)
	}
}

func (h *SnapshotHandler) RebuildSnapshot(w http.ResponseWriter, r *http.Request) {
	year, err := getYearFromURL(r)
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	result, err := h.snapshotService.Build(r.Context(), year)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	middleware.LoggerFromContext(r.Context()).WithFields(logrus.Fields{
		"run_id":   result.RunID,
		"year":     year,
		"status":   result.Snapshot.Status,
		"duration": result.Duration.String(),
	}).Info("Snapshot rebuilt on request")

	response := jsonResponse{
		"runId":        result.RunID,
		"snapshot":     result.Snapshot,
		"leagueErrors": result.Snapshot.LeagueErrors,
	}
	if result.PublishedURL != "" {
		response["publishedUrl"] = result.PublishedURL
	}
	if err := writeJSON(w, http.StatusOK, response, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}
