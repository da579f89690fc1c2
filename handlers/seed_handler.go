package handlers

import (
	"net/http"
	"strings"

	"github.com/Dosada05/gods-bracket/models"
	"github.com/Dosada05/gods-bracket/services"
	"github.com/go-chi/chi/v5"
)

type SeedHandler struct {
	seedService services.SeedService
}

func NewSeedHandler(ss services.SeedService) *SeedHandler {
	return &SeedHandler{
		seedService: ss,
	}
}

type setSeedsInput struct {
	Owners []models.OwnerSeed `json:"owners"`
}

type divisionView struct {
	Name string             `json:"name"`
	Gods []models.GodConfig `json:"gods"`
}

// GetSeeds reports the registry for a year together with its completeness.
func (h *SeedHandler) GetSeeds(w http.ResponseWriter, r *http.Request) {
	year, err := getYearFromURL(r)
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	registry, err := h.seedService.Load(r.Context(), year)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	leagues := make([]*models.LeagueConfig, 0, len(registry.LeagueOrder))
	for _, id := range registry.LeagueOrder {
		leagues = append(leagues, registry.Leagues[id])
	}
	divisions := make([]divisionView, 0, len(registry.Divisions))
	for _, d := range registry.Divisions {
		divisions = append(divisions, divisionView{Name: d.Name, Gods: d.Gods})
	}

	response := jsonResponse{
		"year":         registry.Year,
		"leagues":      leagues,
		"divisions":    divisions,
		"missingSeeds": registry.Completeness,
	}
	if err := writeJSON(w, http.StatusOK, response, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

func (h *SeedHandler) SetLeagueSeeds(w http.ResponseWriter, r *http.Request) {
	year, err := getYearFromURL(r)
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}
	leagueID := strings.TrimSpace(chi.URLParam(r, "leagueID"))

	var input setSeedsInput
	if err := readJSON(w, r, &input); err != nil {
		badRequestResponse(w, r, err)
		return
	}

	if err := h.seedService.SetSeeds(r.Context(), year, leagueID, input.Owners); err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	response := jsonResponse{"leagueId": leagueID, "owners": len(input.Owners)}
	if err := writeJSON(w, http.StatusOK, response, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}
