package server

import (
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/rotisserie/eris"

	"github.com/sells-group/georadius/internal/engine"
	"github.com/sells-group/georadius/internal/model"
	"github.com/sells-group/georadius/internal/region"
)

const dateLayout = "2006-01-02"

func (s *Server) handleHealthz(w http.ResponseWriter, r *http.Request) {
	respondWithJSON(w, http.StatusOK, map[string]any{
		"status":    "ok",
		"counties":  s.eng.Geo().Len(),
		"stat_rows": s.eng.Stats().Rows(),
		"datasets": map[string]any{
			"geocodes":   s.ds.GeoSummary,
			"statistics": s.ds.StatsSummary,
		},
	})
}

func (s *Server) handleStatistics(w http.ResponseWriter, r *http.Request) {
	payload := map[string]any{
		"statistics": s.eng.Stats().StatNames(),
	}
	if first, last, ok := s.eng.Stats().DateRange(); ok {
		payload["date_range"] = map[string]string{
			"min": first.Format(dateLayout),
			"max": last.Format(dateLayout),
		}
	}
	respondWithJSON(w, http.StatusOK, payload)
}

func (s *Server) handleCounty(w http.ResponseWriter, r *http.Request) {
	key, ok := model.NewCountyKey(chi.URLParam(r, "state"), chi.URLParam(r, "county"))
	if !ok {
		respondWithError(w, http.StatusBadRequest, "invalid county or state", nil)
		return
	}

	rec, ok := s.eng.Geo().Lookup(key)
	if !ok {
		respondWithError(w, http.StatusNotFound, "county not found", nil)
		return
	}
	respondWithJSON(w, http.StatusOK, rec)
}

func (s *Server) handleAggregate(w http.ResponseWriter, r *http.Request) {
	params := r.URL.Query()

	county := params.Get("county")
	state := params.Get("state")
	statistic := params.Get("statistic")
	radiusStr := params.Get("radius")
	if county == "" || state == "" || statistic == "" || radiusStr == "" {
		respondWithError(w, http.StatusBadRequest, "county, state, radius and statistic are required", nil)
		return
	}

	radius, err := strconv.ParseFloat(radiusStr, 64)
	if err != nil {
		respondWithError(w, http.StatusBadRequest, "invalid radius", err)
		return
	}
	if radius >= s.cfg.Engine.MaxRadiusMiles {
		respondWithError(w, http.StatusBadRequest, "radius exceeds the configured maximum", nil)
		return
	}

	var at *time.Time
	if d := params.Get("date"); d != "" {
		parsed, err := time.Parse(dateLayout, d)
		if err != nil {
			respondWithError(w, http.StatusBadRequest, "invalid date, want yyyy-mm-dd", err)
			return
		}
		at = &parsed
	}

	q := model.Query{County: county, State: state, RadiusMiles: radius}
	res, err := s.eng.Aggregate(q, statistic, at)
	if err != nil {
		switch {
		case eris.Is(err, region.ErrNotGeolocatable):
			respondWithError(w, http.StatusNotFound, "county not geolocatable", err)
		case eris.Is(err, engine.ErrUnknownStatistic):
			respondWithError(w, http.StatusBadRequest, "unknown statistic", err)
		default:
			respondWithError(w, http.StatusBadRequest, eris.Cause(err).Error(), err)
		}
		return
	}
	respondWithJSON(w, http.StatusOK, res)
}
