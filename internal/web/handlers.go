package web

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/abdullahzubairwan/waktu-solat-ampang/internal/logging"
	"github.com/abdullahzubairwan/waktu-solat-ampang/internal/solat"
	"github.com/abdullahzubairwan/waktu-solat-ampang/internal/source"
	"github.com/abdullahzubairwan/waktu-solat-ampang/internal/zone"
)

// maxFetchBody bounds the POST /api/fetch request body.
const maxFetchBody = 4 << 10

// ----------------------------------------------------------------------------
// Health
// ----------------------------------------------------------------------------

type healthResponse struct {
	Status   string `json:"status"`
	Zone     string `json:"zone"`
	Today    string `json:"today"`
	Database string `json:"database"`
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	resp := healthResponse{
		Status:   "ok",
		Zone:     s.deps.Service.Zone(),
		Today:    s.deps.Service.TodayDate(),
		Database: "disabled",
	}

	status := http.StatusOK
	if s.deps.DB != nil {
		resp.Database = "ok"
		if err := s.deps.DB.Ping(r.Context()); err != nil {
			logging.FromContext(r.Context()).Warn("health check: database unreachable", "error", err)
			resp.Status = "degraded"
			resp.Database = "unreachable"
			status = http.StatusServiceUnavailable
		}
	}

	writeJSON(w, status, resp)
}

// ----------------------------------------------------------------------------
// Zones
// ----------------------------------------------------------------------------

type zonesResponse struct {
	Zones []zone.Zone `json:"zones"`
	Count int         `json:"count"`
}

// handleListZones lists every zone, or one state's zones with ?state=.
func (s *Server) handleListZones(w http.ResponseWriter, r *http.Request) {
	var zones []zone.Zone
	if state := strings.TrimSpace(r.URL.Query().Get("state")); state != "" {
		zones = zone.ByState(state)
	} else {
		zones = zone.All()
	}
	if zones == nil {
		zones = []zone.Zone{}
	}

	writeJSON(w, http.StatusOK, zonesResponse{Zones: zones, Count: len(zones)})
}

func (s *Server) handleGetZone(w http.ResponseWriter, r *http.Request) {
	code := chi.URLParam(r, "code")
	z, ok := zone.Get(code)
	if !ok {
		respondError(w, r, fmt.Errorf("%w: %s", solat.ErrUnknownZone, code), http.StatusNotFound)
		return
	}
	writeJSON(w, http.StatusOK, z)
}

// ----------------------------------------------------------------------------
// Times
// ----------------------------------------------------------------------------

// handleToday resolves today in the server timezone. ?zone= overrides the
// default zone.
func (s *Server) handleToday(w http.ResponseWriter, r *http.Request) {
	s.serveLookup(w, r, s.deps.Service.TodayDate())
}

// handleTimesForDate resolves the {date} path segment.
func (s *Server) handleTimesForDate(w http.ResponseWriter, r *http.Request) {
	s.serveLookup(w, r, chi.URLParam(r, "date"))
}

// handleTimes resolves ?date=, for shapes such as 5/9/2025 that cannot sit
// in a path segment. Without ?date= it behaves like /times/today.
func (s *Server) handleTimes(w http.ResponseWriter, r *http.Request) {
	date := r.URL.Query().Get("date")
	if strings.TrimSpace(date) == "" {
		date = s.deps.Service.TodayDate()
	}
	s.serveLookup(w, r, date)
}

// serveLookup writes the DayTimes for date. Matched and unmatched days are
// both 200; the body's status tells them apart.
func (s *Server) serveLookup(w http.ResponseWriter, r *http.Request, date string) {
	dt, err := s.deps.Service.Lookup(r.Context(), r.URL.Query().Get("zone"), date)
	if err != nil {
		respondError(w, r, err, statusFor(err))
		return
	}
	writeJSON(w, http.StatusOK, dt)
}

// ----------------------------------------------------------------------------
// Lookup log
// ----------------------------------------------------------------------------

type lookupsResponse struct {
	Lookups []solat.LookupEntry `json:"lookups"`
	Count   int                 `json:"count"`
}

// handleLookups lists recent resolutions, newest first. Accepts ?zone= and ?limit=.
func (s *Server) handleLookups(w http.ResponseWriter, r *http.Request) {
	if s.deps.Lookups == nil {
		respondError(w, r, fmt.Errorf("%w: lookup log", errDisabled), http.StatusServiceUnavailable)
		return
	}

	limit := 0
	if raw := r.URL.Query().Get("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 0 {
			respondError(w, r, fmt.Errorf("%w: limit %q", errBadRequest, raw), http.StatusBadRequest)
			return
		}
		limit = n
	}

	code := r.URL.Query().Get("zone")
	if code != "" {
		code = zone.Normalize(code)
		if _, ok := zone.Get(code); !ok {
			respondError(w, r, fmt.Errorf("%w: %s", solat.ErrUnknownZone, code), http.StatusBadRequest)
			return
		}
	}

	entries, err := s.deps.Lookups.RecentLookups(r.Context(), code, limit)
	if err != nil {
		respondError(w, r, err, http.StatusInternalServerError)
		return
	}
	if entries == nil {
		entries = []solat.LookupEntry{}
	}

	writeJSON(w, http.StatusOK, lookupsResponse{Lookups: entries, Count: len(entries)})
}

// ----------------------------------------------------------------------------
// Fetch
// ----------------------------------------------------------------------------

type fetchRequest struct {
	Zone   string `json:"zone"`
	Period string `json:"period"`
	Start  string `json:"start"`
	End    string `json:"end"`
}

type fetchResponse struct {
	Zone    string       `json:"zone"`
	Period  string       `json:"period"`
	Path    string       `json:"path"`
	Records int          `json:"records"`
	Range   source.Range `json:"range"`
}

// handleFetch downloads a timetable from e-solat into the data directory,
// where the file source picks it up on the next lookup.
func (s *Server) handleFetch(w http.ResponseWriter, r *http.Request) {
	if s.deps.Fetcher == nil {
		respondError(w, r, fmt.Errorf("%w: e-solat fetch", errDisabled), http.StatusServiceUnavailable)
		return
	}

	var body fetchRequest
	if r.ContentLength != 0 {
		dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxFetchBody))
		dec.DisallowUnknownFields()
		if err := dec.Decode(&body); err != nil {
			respondError(w, r, fmt.Errorf("%w: %v", errBadRequest, err), http.StatusBadRequest)
			return
		}
	}

	req, err := s.fetchRequestFrom(body)
	if err != nil {
		respondError(w, r, err, statusFor(err))
		return
	}

	log := logging.WithFields(r.Context(), "zone", req.Zone, "period", req.Period)

	records, err := s.deps.Fetcher.Fetch(r.Context(), req)
	if err != nil {
		respondError(w, r, err, statusFor(err))
		return
	}
	if len(records) == 0 {
		err := fmt.Errorf("%w: e-solat returned no entries for %s", source.ErrTableNotFound, req.Zone)
		respondError(w, r, err, http.StatusNotFound)
		return
	}

	_, day, err := solat.ParseDate(s.deps.Service.TodayDate(), s.deps.Service.Location())
	if err != nil {
		respondError(w, r, err, http.StatusInternalServerError)
		return
	}

	name := source.TableName(s.cfg.Source.FilePrefix, req, day, "csv")
	path, err := source.SaveCSV(s.cfg.Source.DataDir, name, records)
	if err != nil {
		respondError(w, r, err, http.StatusInternalServerError)
		return
	}

	rng := source.DateRange(records)
	log.Info("fetched timetable", "path", path, "records", len(records), "first", rng.First, "last", rng.Last)

	writeJSON(w, http.StatusCreated, fetchResponse{
		Zone:    req.Zone,
		Period:  req.Period.String(),
		Path:    path,
		Records: len(records),
		Range:   rng,
	})
}

// fetchRequestFrom fills defaults and validates a fetch body.
func (s *Server) fetchRequestFrom(body fetchRequest) (source.Request, error) {
	code := zone.Normalize(body.Zone)
	if code == "" {
		code = s.deps.Service.Zone()
	}
	if _, ok := zone.Get(code); !ok {
		return source.Request{}, fmt.Errorf("%w: %s", solat.ErrUnknownZone, code)
	}

	periodName := body.Period
	if periodName == "" {
		periodName = s.cfg.Source.Period
	}
	period, err := source.ParsePeriod(periodName)
	if err != nil {
		return source.Request{}, fmt.Errorf("%w: %v", errBadRequest, err)
	}

	req := source.Request{Zone: code, Period: period, Start: body.Start, End: body.End}
	if err := source.ValidateRange(req.Period, req.Start, req.End); err != nil {
		return source.Request{}, err
	}
	return req, nil
}
