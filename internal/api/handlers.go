package api

import (
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"fleetscan/internal/export"
	"fleetscan/internal/ingest"
	"fleetscan/internal/pipeline"
	"fleetscan/internal/reconcile"
	"fleetscan/internal/store"
)

// createRun accepts a multipart CSV upload, runs the full pipeline
// synchronously, persists the results, and returns the run report. Column
// bindings and filters come from form fields; unset columns are auto-detected
// from the header.
func (s *Server) createRun(c *gin.Context) {
	file, _, err := c.Request.FormFile("file")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "multipart field 'file' is required"})
		return
	}
	defer file.Close()

	table, err := ingest.ReadCSV(file)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	binding := ingest.AutoDetect(table.Columns, ingest.Binding{
		DeviceID:    strings.TrimSpace(c.PostForm("device_column")),
		Description: strings.TrimSpace(c.PostForm("description_column")),
		Date:        strings.TrimSpace(c.PostForm("date_column")),
		Client:      strings.TrimSpace(c.PostForm("client_column")),
	})
	if !binding.Complete() {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":   "could not bind all required columns",
			"columns": table.Columns,
		})
		return
	}

	rows, err := ingest.Rows(table, binding)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	filter, err := parseFilter(c)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	rows = ingest.Apply(rows, filter)

	batchSize := s.batchSize
	if raw := strings.TrimSpace(c.PostForm("batch_size")); raw != "" {
		v, err := strconv.Atoi(raw)
		if err != nil || v <= 0 {
			c.JSON(http.StatusBadRequest, gin.H{"error": "batch_size must be a positive integer"})
			return
		}
		batchSize = v
	}
	orchestrator := pipeline.New(s.extractor, batchSize, s.log, pipeline.WithMetrics(s.metrics))

	runID := uuid.NewString()
	records, report := orchestrator.Run(c.Request.Context(), runID, rows)
	states := reconcile.Table(runID, reconcile.Reconcile(records))

	if err := s.store.SaveRun(c.Request.Context(), report, records, states); err != nil {
		s.log.WithError(err).Error("persisting run results failed")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "persisting run results failed"})
		return
	}

	if s.sink != nil {
		s.publish(c, runID)
	}

	c.JSON(http.StatusCreated, gin.H{
		"run_id": runID,
		"report": report,
	})
}

func (s *Server) publish(c *gin.Context, runID string) {
	ctx := c.Request.Context()
	events, err := s.store.GetEvents(ctx, runID)
	if err != nil {
		s.log.WithError(err).Warn("export skipped, events unavailable")
		return
	}
	states, err := s.store.GetStates(ctx, runID)
	if err != nil {
		s.log.WithError(err).Warn("export skipped, states unavailable")
		return
	}
	report, err := s.store.GetRun(ctx, runID)
	if err != nil {
		s.log.WithError(err).Warn("export skipped, report unavailable")
		return
	}
	eventsCSV, err := export.EventsCSV(events)
	if err != nil {
		s.log.WithError(err).Warn("export skipped, rendering events failed")
		return
	}
	statesCSV, err := export.StatesCSV(states)
	if err != nil {
		s.log.WithError(err).Warn("export skipped, rendering states failed")
		return
	}
	summaryCSV, err := export.RunSummaryCSV(report)
	if err != nil {
		s.log.WithError(err).Warn("export skipped, rendering summary failed")
		return
	}
	if err := s.sink.PublishRun(ctx, runID, eventsCSV, statesCSV, summaryCSV); err != nil {
		// Object-store publishing is best effort; results are already in the DB.
		s.log.WithError(err).Warn("publishing exports failed")
	}
}

func parseFilter(c *gin.Context) (ingest.Filter, error) {
	var f ingest.Filter
	if raw := strings.TrimSpace(c.PostForm("start_date")); raw != "" {
		t, ok := ingest.ParseTimestamp(raw)
		if !ok {
			return f, errBadDate("start_date", raw)
		}
		f.Start = t
	}
	if raw := strings.TrimSpace(c.PostForm("end_date")); raw != "" {
		t, ok := ingest.ParseTimestamp(raw)
		if !ok {
			return f, errBadDate("end_date", raw)
		}
		// A bare date means "through the end of that day".
		if t.Hour() == 0 && t.Minute() == 0 && t.Second() == 0 {
			t = t.Add(24*time.Hour - time.Second)
		}
		f.End = t
	}
	if raw := strings.TrimSpace(c.PostForm("clients")); raw != "" {
		f.Clients = strings.Split(raw, ",")
	}
	return f, nil
}

type badDateError struct{ field, value string }

func (e badDateError) Error() string { return "unparseable " + e.field + ": " + e.value }

func errBadDate(field, value string) error { return badDateError{field: field, value: value} }

func (s *Server) listRuns(c *gin.Context) {
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "50"))
	runs, err := s.store.ListRuns(c.Request.Context(), limit)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "listing runs failed"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"runs": runs})
}

func (s *Server) getRun(c *gin.Context) {
	report, err := s.store.GetRun(c.Request.Context(), c.Param("id"))
	if err != nil {
		s.notFoundOr500(c, err)
		return
	}
	c.JSON(http.StatusOK, report)
}

func (s *Server) getEvents(c *gin.Context) {
	runID := c.Param("id")
	if _, err := s.store.GetRun(c.Request.Context(), runID); err != nil {
		s.notFoundOr500(c, err)
		return
	}
	events, err := s.store.GetEvents(c.Request.Context(), runID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "loading events failed"})
		return
	}
	if c.Query("format") == "csv" {
		data, err := export.EventsCSV(events)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "rendering csv failed"})
			return
		}
		c.Header("Content-Disposition", `attachment; filename="events.csv"`)
		c.Data(http.StatusOK, "text/csv; charset=utf-8", data)
		return
	}
	c.JSON(http.StatusOK, gin.H{"run_id": runID, "events": events})
}

func (s *Server) getState(c *gin.Context) {
	runID := c.Param("id")
	if _, err := s.store.GetRun(c.Request.Context(), runID); err != nil {
		s.notFoundOr500(c, err)
		return
	}
	states, err := s.store.GetStates(c.Request.Context(), runID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "loading state failed"})
		return
	}
	if c.Query("format") == "csv" {
		data, err := export.StatesCSV(states)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "rendering csv failed"})
			return
		}
		c.Header("Content-Disposition", `attachment; filename="state.csv"`)
		c.Data(http.StatusOK, "text/csv; charset=utf-8", data)
		return
	}
	c.JSON(http.StatusOK, gin.H{"run_id": runID, "state": states})
}

func (s *Server) notFoundOr500(c *gin.Context, err error) {
	if store.IsNotFound(err) {
		c.JSON(http.StatusNotFound, gin.H{"error": "run not found"})
		return
	}
	s.log.WithError(err).Error("run lookup failed")
	c.JSON(http.StatusInternalServerError, gin.H{"error": "run lookup failed"})
}
