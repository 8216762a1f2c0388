package web

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/inovacc/fleetroster/internal/fleet"
	"github.com/inovacc/fleetroster/internal/model"
	"github.com/inovacc/fleetroster/internal/report"
)

// historyWindow is the span returned by the history endpoint when no from is given.
const historyWindow = 30 * 24 * time.Hour

// APIResponse is a generic API response
type APIResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message,omitempty"`
	Data    any    `json:"data,omitempty"`
	Error   string `json:"error,omitempty"`
	Code    string `json:"code,omitempty"`
}

// DayView is the state of one day as returned by GET day.
type DayView struct {
	Date              string             `json:"date"`
	Caption           string             `json:"caption"`
	Assignments       []model.Assignment `json:"assignments"`
	Counts            fleet.Counts       `json:"counts"`
	Available         []int              `json:"available"`
	AvailableStations []string           `json:"available_stations"`
}

// ConfigView is the user's configuration with the derived pool size.
type ConfigView struct {
	Config   model.FleetConfig `json:"config"`
	Caption  string            `json:"default_caption"`
	PoolSize int               `json:"pool_size"`
}

type rangeRequest struct {
	Min int `json:"min"`
	Max int `json:"max"`
}

type stationRequest struct {
	Name string `json:"name"`
}

type unitsRequest struct {
	Units []int `json:"units"`
}

type assignmentRequest struct {
	Station string           `json:"station"`
	Window  model.TimeWindow `json:"window"`
	Units   []int            `json:"units"`
}

type captionRequest struct {
	Caption string `json:"caption"`
}

// ============================================================================
// System
// ============================================================================

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	if err := s.store.Ping(r.Context()); err != nil {
		slog.Warn("health check failed", "error", err)
		writeJSON(w, http.StatusServiceUnavailable, map[string]string{"status": "unavailable"})

		return
	}

	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// ============================================================================
// Configuration
// ============================================================================

func (s *Server) handleGetConfig(w http.ResponseWriter, r *http.Request) {
	var view ConfigView

	err := s.sessions.WithUser(r.Context(), r.PathValue("user"), func(sess *fleet.Session) error {
		view = ConfigView{
			Config:   sess.Config.Clone(),
			Caption:  sess.DefaultCaption(),
			PoolSize: sess.Ledger.Pool().Len(),
		}

		return nil
	})
	if err != nil {
		s.fail(w, err)
		return
	}

	s.ok(w, http.StatusOK, "", view)
}

func (s *Server) handleSetAppearance(w http.ResponseWriter, r *http.Request) {
	var req model.Appearance
	if !decode(w, r, &req) {
		return
	}

	s.mutateUser(w, r, EventConfigChanged, "appearance updated", func(sess *fleet.Session) (any, error) {
		if err := sess.SetAppearance(r.Context(), req); err != nil {
			return nil, err
		}

		return sess.Config.Appearance, nil
	})
}

func (s *Server) handleAddRange(w http.ResponseWriter, r *http.Request) {
	var req rangeRequest
	if !decode(w, r, &req) {
		return
	}

	s.mutateUser(w, r, EventConfigChanged, "range added", func(sess *fleet.Session) (any, error) {
		if err := sess.AddRange(r.Context(), model.Range{Min: req.Min, Max: req.Max}); err != nil {
			return nil, err
		}

		return sess.Config.Ranges, nil
	})
}

func (s *Server) handleRemoveRange(w http.ResponseWriter, r *http.Request) {
	index, ok := pathIndex(w, r)
	if !ok {
		return
	}

	s.mutateUser(w, r, EventConfigChanged, "range removed", func(sess *fleet.Session) (any, error) {
		if err := sess.RemoveRange(r.Context(), index); err != nil {
			return nil, err
		}

		return sess.Config.Ranges, nil
	})
}

func (s *Server) handleAddStation(w http.ResponseWriter, r *http.Request) {
	var req stationRequest
	if !decode(w, r, &req) {
		return
	}

	s.mutateUser(w, r, EventConfigChanged, "station added", func(sess *fleet.Session) (any, error) {
		if err := sess.AddStation(r.Context(), req.Name); err != nil {
			return nil, err
		}

		return sess.Config.Stations, nil
	})
}

func (s *Server) handleRemoveStation(w http.ResponseWriter, r *http.Request) {
	name := r.PathValue("name")

	s.mutateUser(w, r, EventConfigChanged, "station removed", func(sess *fleet.Session) (any, error) {
		n, err := sess.RemoveStations(r.Context(), name)
		if err != nil {
			return nil, err
		}

		return map[string]any{"removed": n, "stations": sess.Config.Stations}, nil
	})
}

// ============================================================================
// Workshop
// ============================================================================

func (s *Server) handleListRepairs(w http.ResponseWriter, r *http.Request) {
	var units []int

	err := s.sessions.WithUser(r.Context(), r.PathValue("user"), func(sess *fleet.Session) error {
		units = sess.Repairs.Units()
		return nil
	})
	if err != nil {
		s.fail(w, err)
		return
	}

	s.ok(w, http.StatusOK, "", units)
}

func (s *Server) handleReportRepairs(w http.ResponseWriter, r *http.Request) {
	var req unitsRequest
	if !decode(w, r, &req) {
		return
	}

	s.mutateUser(w, r, EventRepairsChanged, "units reported", func(sess *fleet.Session) (any, error) {
		n, err := sess.ReportUnits(r.Context(), req.Units...)
		if err != nil {
			return nil, err
		}

		return map[string]any{"changed": n, "repairs": sess.Repairs.Units()}, nil
	})
}

func (s *Server) handleFixRepairs(w http.ResponseWriter, r *http.Request) {
	var req unitsRequest
	if !decode(w, r, &req) {
		return
	}

	s.mutateUser(w, r, EventRepairsChanged, "units repaired", func(sess *fleet.Session) (any, error) {
		n, err := sess.RepairUnits(r.Context(), req.Units...)
		if err != nil {
			return nil, err
		}

		return map[string]any{"changed": n, "repairs": sess.Repairs.Units()}, nil
	})
}

// ============================================================================
// Daily ledger
// ============================================================================

func (s *Server) handleGetDay(w http.ResponseWriter, r *http.Request) {
	date, ok := pathDate(w, r)
	if !ok {
		return
	}

	var view DayView

	err := s.sessions.WithDay(r.Context(), r.PathValue("user"), date, func(sess *fleet.Session) error {
		view = dayView(sess)
		return nil
	})
	if err != nil {
		s.fail(w, err)
		return
	}

	s.ok(w, http.StatusOK, "", view)
}

func (s *Server) handleCreateAssignment(w http.ResponseWriter, r *http.Request) {
	var req assignmentRequest
	if !decode(w, r, &req) {
		return
	}

	window := req.Window
	if !window.IsZero() {
		canonical, err := fleet.NewWindow(window.Open, window.Close)
		if err != nil {
			s.fail(w, err)
			return
		}

		window = canonical
	}

	s.mutateDay(w, r, http.StatusCreated, "assignment created", func(sess *fleet.Session) (any, error) {
		return sess.Ledger.CreateAssignment(req.Station, window, req.Units)
	})
}

func (s *Server) handleDeleteAssignment(w http.ResponseWriter, r *http.Request) {
	index, ok := pathIndex(w, r)
	if !ok {
		return
	}

	s.mutateDay(w, r, http.StatusOK, "assignment deleted", func(sess *fleet.Session) (any, error) {
		return sess.Ledger.DeleteAssignment(index)
	})
}

func (s *Server) handleAddUnits(w http.ResponseWriter, r *http.Request) {
	index, ok := pathIndex(w, r)
	if !ok {
		return
	}

	var req unitsRequest
	if !decode(w, r, &req) {
		return
	}

	s.mutateDay(w, r, http.StatusOK, "units added", func(sess *fleet.Session) (any, error) {
		if err := sess.Ledger.AddUnits(index, req.Units); err != nil {
			return nil, err
		}

		return sess.Ledger.Record(index)
	})
}

func (s *Server) handleRemoveUnits(w http.ResponseWriter, r *http.Request) {
	index, ok := pathIndex(w, r)
	if !ok {
		return
	}

	var req unitsRequest
	if !decode(w, r, &req) {
		return
	}

	s.mutateDay(w, r, http.StatusOK, "units removed", func(sess *fleet.Session) (any, error) {
		n, err := sess.Ledger.RemoveUnits(index, req.Units)
		if err != nil {
			return nil, err
		}

		rec, err := sess.Ledger.Record(index)
		if err != nil {
			return nil, err
		}

		return map[string]any{"removed": n, "assignment": rec}, nil
	})
}

func (s *Server) handleEditWindow(w http.ResponseWriter, r *http.Request) {
	index, ok := pathIndex(w, r)
	if !ok {
		return
	}

	var req model.TimeWindow
	if !decode(w, r, &req) {
		return
	}

	s.mutateDay(w, r, http.StatusOK, "window updated", func(sess *fleet.Session) (any, error) {
		window := req
		if !window.IsZero() {
			canonical, err := fleet.NewWindow(req.Open, req.Close)
			if err != nil {
				return nil, err
			}

			window = canonical
		}

		if err := sess.Ledger.EditTimeWindow(index, window); err != nil {
			return nil, err
		}

		return sess.Ledger.Record(index)
	})
}

func (s *Server) handleSetCaption(w http.ResponseWriter, r *http.Request) {
	var req captionRequest
	if !decode(w, r, &req) {
		return
	}

	s.mutateDay(w, r, http.StatusOK, "caption updated", func(sess *fleet.Session) (any, error) {
		sess.SetCaption(req.Caption)
		return map[string]string{"caption": sess.Caption}, nil
	})
}

func (s *Server) handleSaveDay(w http.ResponseWriter, r *http.Request) {
	date, ok := pathDate(w, r)
	if !ok {
		return
	}

	user := model.NormalizeUser(r.PathValue("user"))

	var view DayView

	err := s.sessions.WithDay(r.Context(), user, date, func(sess *fleet.Session) error {
		view = dayView(sess)
		return sess.Save(r.Context())
	})
	if err != nil {
		s.fail(w, err)
		return
	}

	s.BroadcastEvent(SSEEvent{Type: EventDaySaved, User: user, Date: view.Date})
	s.ok(w, http.StatusOK, "day saved", view)
}

// handleResetDay deletes the stored day and any unsaved edits to it.
func (s *Server) handleResetDay(w http.ResponseWriter, r *http.Request) {
	date, ok := pathDate(w, r)
	if !ok {
		return
	}

	user := model.NormalizeUser(r.PathValue("user"))

	if err := s.sessions.Reset(r.Context(), s.store, user, date); err != nil {
		s.fail(w, err)
		return
	}

	s.BroadcastEvent(SSEEvent{Type: EventAssignmentChanged, User: user, Date: model.DateKey(date)})
	s.ok(w, http.StatusOK, "day reset", nil)
}

func (s *Server) handleReport(w http.ResponseWriter, r *http.Request) {
	date, ok := pathDate(w, r)
	if !ok {
		return
	}

	format := report.Format(r.URL.Query().Get("format"))

	renderer, err := report.ForFormat(format)
	if err != nil {
		writeError(w, http.StatusBadRequest, CodeBadRequest, err.Error())
		return
	}

	if format == "" || format == report.FormatText {
		renderer = s.text
	}

	var snap fleet.Snapshot

	err = s.sessions.WithDay(r.Context(), r.PathValue("user"), date, func(sess *fleet.Session) error {
		snap = sess.Snapshot()
		return nil
	})
	if err != nil {
		s.fail(w, err)
		return
	}

	body, err := renderer.Render(snap)
	if err != nil {
		s.fail(w, err)
		return
	}

	w.Header().Set("Content-Type", renderer.ContentType())
	if format == report.FormatXLSX {
		w.Header().Set("Content-Disposition",
			fmt.Sprintf("attachment; filename=%q", "report-"+model.DateKey(date)+".xlsx"))
	}

	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(body)
}

// ============================================================================
// History
// ============================================================================

func (s *Server) handleHistory(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()

	to := model.Day(time.Now())
	if v := q.Get("to"); v != "" {
		t, err := model.ParseDate(v)
		if err != nil {
			writeError(w, http.StatusBadRequest, CodeInvalidDate, "invalid to date: "+v)
			return
		}

		to = t
	}

	from := to.Add(-historyWindow)
	if v := q.Get("from"); v != "" {
		t, err := model.ParseDate(v)
		if err != nil {
			writeError(w, http.StatusBadRequest, CodeInvalidDate, "invalid from date: "+v)
			return
		}

		from = t
	}

	if from.After(to) {
		writeError(w, http.StatusBadRequest, CodeInvalidDate, "from is after to")
		return
	}

	days, err := s.store.ListDays(r.Context(), r.PathValue("user"), from, to)
	if err != nil {
		s.fail(w, &fleet.PersistenceError{Op: "list days", Err: err})
		return
	}

	if report.Format(q.Get("format")) == report.FormatXLSX {
		body, err := report.HistoryWorkbook(days)
		if err != nil {
			s.fail(w, err)
			return
		}

		w.Header().Set("Content-Type", report.NewXLSXRenderer().ContentType())
		w.Header().Set("Content-Disposition", `attachment; filename="history.xlsx"`)
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write(body)

		return
	}

	if days == nil {
		days = []model.DayRecord{}
	}

	s.ok(w, http.StatusOK, "", days)
}

// ============================================================================
// Helpers
// ============================================================================

// mutateUser runs fn on user-wide data and broadcasts event on success.
func (s *Server) mutateUser(w http.ResponseWriter, r *http.Request, event, message string, fn func(*fleet.Session) (any, error)) {
	user := model.NormalizeUser(r.PathValue("user"))

	var data any

	err := s.sessions.WithUser(r.Context(), user, func(sess *fleet.Session) error {
		var err error
		data, err = fn(sess)

		return err
	})

	s.finish(w, err, SSEEvent{Type: event, User: user}, http.StatusOK, message, data)
}

// mutateDay runs fn on the session of the requested day and broadcasts an
// assignment change on success.
func (s *Server) mutateDay(w http.ResponseWriter, r *http.Request, status int, message string, fn func(*fleet.Session) (any, error)) {
	date, ok := pathDate(w, r)
	if !ok {
		return
	}

	user := model.NormalizeUser(r.PathValue("user"))

	var data any

	err := s.sessions.WithDay(r.Context(), user, date, func(sess *fleet.Session) error {
		var err error
		data, err = fn(sess)

		return err
	})

	s.finish(w, err, SSEEvent{Type: EventAssignmentChanged, User: user, Date: model.DateKey(date)}, status, message, data)
}

// finish writes the outcome of a mutation. A persistence failure still
// broadcasts, since the in-memory state did change.
func (s *Server) finish(w http.ResponseWriter, err error, event SSEEvent, status int, message string, data any) {
	var pe *fleet.PersistenceError

	switch {
	case err == nil:
		s.BroadcastEvent(event)
		s.ok(w, status, message, data)
	case errors.As(err, &pe):
		s.BroadcastEvent(event)
		s.fail(w, err)
	default:
		s.fail(w, err)
	}
}

func dayView(sess *fleet.Session) DayView {
	caption := sess.Caption
	if caption == "" {
		caption = sess.DefaultCaption()
	}

	return DayView{
		Date:              model.DateKey(sess.Date),
		Caption:           caption,
		Assignments:       sess.Ledger.Records(),
		Counts:            sess.Ledger.Counts(),
		Available:         sess.Ledger.Available(),
		AvailableStations: sess.Ledger.AvailableStations(sess.Config.Stations),
	}
}

func pathDate(w http.ResponseWriter, r *http.Request) (time.Time, bool) {
	raw := r.PathValue("date")

	date, err := model.ParseDate(raw)
	if err != nil {
		writeError(w, http.StatusBadRequest, CodeInvalidDate, "invalid date: "+raw)
		return time.Time{}, false
	}

	return date, true
}

func pathIndex(w http.ResponseWriter, r *http.Request) (int, bool) {
	raw := r.PathValue("index")

	index, err := strconv.Atoi(strings.TrimSpace(raw))
	if err != nil {
		writeError(w, http.StatusBadRequest, CodeBadRequest, "invalid index: "+raw)
		return 0, false
	}

	return index, true
}

func decode(w http.ResponseWriter, r *http.Request, v any) bool {
	r.Body = http.MaxBytesReader(w, r.Body, 1<<20)

	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		writeError(w, http.StatusBadRequest, CodeBadRequest, "invalid request body: "+err.Error())
		return false
	}

	return true
}

func (s *Server) ok(w http.ResponseWriter, status int, message string, data any) {
	writeJSON(w, status, APIResponse{Success: true, Message: message, Data: data})
}

func (s *Server) fail(w http.ResponseWriter, err error) {
	status, code := classify(err)
	if status >= http.StatusInternalServerError {
		slog.Error("request failed", "status", status, "code", code, "error", err)
	}

	writeError(w, status, code, err.Error())
}

// writeJSON writes a JSON response
func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	if err := json.NewEncoder(w).Encode(data); err != nil {
		slog.Error("json encode error", "error", err)
	}
}

// writeError writes a JSON error response
func writeError(w http.ResponseWriter, status int, code, message string) {
	writeJSON(w, status, APIResponse{Success: false, Error: message, Code: code})
}
