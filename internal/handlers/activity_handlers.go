package handlers

import (
	"encoding/json"
	"net/http"
	"time"

	"activityPlanner/internal/handlers/dto"
	"activityPlanner/internal/logger"
	"activityPlanner/internal/models/activity"
	"activityPlanner/internal/service"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

const serviceName = "activity-planner"

type ActivityHandler struct {
	Service   Service
	Reminders Reminders
	PageSize  int
}

func NewActivityHandler(svc Service, reminders Reminders, pageSize int) ActivityHandler {
	if pageSize <= 0 {
		pageSize = service.DefaultPageSize
	}
	return ActivityHandler{
		Service:   svc,
		Reminders: reminders,
		PageSize:  pageSize,
	}
}

// Routes mounts the activity endpoints on r.
func (h *ActivityHandler) Routes(r chi.Router) {
	r.Route("/activities", func(r chi.Router) {
		r.Get("/", h.ListActivities)         // GET /activities
		r.Post("/", h.PostActivity)          // POST /activities
		r.Get("/pending", h.PendingActivity) // GET /activities/pending

		r.Route("/{id}", func(r chi.Router) {
			r.Put("/", h.UpdateActivity)    // PUT /activities/{id}
			r.Delete("/", h.DeleteActivity) // DELETE /activities/{id}

			r.Post("/toggle", h.ToggleActivity) // POST /activities/{id}/toggle
			r.Post("/flip", h.FlipActivity)     // POST /activities/{id}/flip

			r.Get("/note", h.GetNote) // GET /activities/{id}/note
			r.Put("/note", h.PutNote) // PUT /activities/{id}/note
		})
	})

	r.Get("/reminders", h.DrainReminders)
	r.Get("/health", h.HealthCheck)
}

func (h *ActivityHandler) HealthCheck(w http.ResponseWriter, r *http.Request) {
	logger.HttpRequestInfo(r, "HTTP: health check")

	if err := h.Service.HealthCheck(r.Context()); err != nil {
		logger.Error("HTTP: health check failed", err)
		responseWithJSON(w, http.StatusServiceUnavailable,
			toPayload("status", "unavailable"),
			toPayload("service", serviceName),
		)
		return
	}
	responseWithJSON(w, http.StatusOK,
		toPayload("status", "ok"),
		toPayload("service", serviceName),
	)
}

func (h *ActivityHandler) PostActivity(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	logger.HttpRequestInfo(r, "HTTP_IN:")

	request, ok := decodeActivity(w, r)
	if !ok {
		return
	}
	startAt, endAt, ok := requestTimes(w, r, request)
	if !ok {
		return
	}

	a, err := h.Service.Add(r.Context(), request.Name, startAt, endAt, request.Tags)
	if err != nil {
		handleBusinessError(w, r, err, "add_activity")
		return
	}

	logger.Info("HTTP_OUT: activity created",
		zap.Int64("activity_id", a.ID),
		zap.Duration("ms", time.Since(start)),
		zap.Int("http_status", http.StatusCreated))

	responseWithJSON(w, http.StatusCreated, toPayload("id", a.ID))
}

func (h *ActivityHandler) UpdateActivity(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	logger.HttpRequestInfo(r, "HTTP_IN:")

	id, ok := readID(w, r)
	if !ok {
		return
	}
	request, ok := decodeActivity(w, r)
	if !ok {
		return
	}
	startAt, endAt, ok := requestTimes(w, r, request)
	if !ok {
		return
	}

	if err := h.Service.Update(r.Context(), id, request.Name, startAt, endAt, request.Tags); err != nil {
		handleBusinessError(w, r, err, "update_activity")
		return
	}

	logger.Info("HTTP_OUT: activity updated",
		zap.Int64("activity_id", id),
		zap.Duration("ms", time.Since(start)),
		zap.Int("http_status", http.StatusNoContent))
	w.WriteHeader(http.StatusNoContent)
}

func (h *ActivityHandler) DeleteActivity(w http.ResponseWriter, r *http.Request) {
	logger.HttpRequestInfo(r, "HTTP_IN:")

	id, ok := readID(w, r)
	if !ok {
		return
	}
	if err := h.Service.Delete(r.Context(), id); err != nil {
		handleBusinessError(w, r, err, "delete_activity")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *ActivityHandler) ToggleActivity(w http.ResponseWriter, r *http.Request) {
	logger.HttpRequestInfo(r, "HTTP_IN:")

	id, ok := readID(w, r)
	if !ok {
		return
	}

	var request dto.StatusRequest
	if !decodeJSON(w, r, &request) {
		return
	}
	if request.Status == nil {
		logger.Warn("HTTP: validation failed",
			zap.String("field", "status"),
			zap.String("error", "empty_field"),
			zap.String("client_ip", r.RemoteAddr))
		responseWithError(w, http.StatusBadRequest, "status is required")
		return
	}

	if err := h.Service.Toggle(r.Context(), id, activity.Status(*request.Status)); err != nil {
		handleBusinessError(w, r, err, "toggle_activity")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *ActivityHandler) FlipActivity(w http.ResponseWriter, r *http.Request) {
	logger.HttpRequestInfo(r, "HTTP_IN:")

	id, ok := readID(w, r)
	if !ok {
		return
	}
	if err := h.Service.Flip(r.Context(), id); err != nil {
		handleBusinessError(w, r, err, "flip_activity")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *ActivityHandler) GetNote(w http.ResponseWriter, r *http.Request) {
	logger.HttpRequestInfo(r, "HTTP_IN:")

	id, ok := readID(w, r)
	if !ok {
		return
	}
	note, err := h.Service.Note(r.Context(), id)
	if err != nil {
		handleBusinessError(w, r, err, "get_note")
		return
	}
	responseWithJSON(w, http.StatusOK, toPayload("note", note))
}

func (h *ActivityHandler) PutNote(w http.ResponseWriter, r *http.Request) {
	logger.HttpRequestInfo(r, "HTTP_IN:")

	id, ok := readID(w, r)
	if !ok {
		return
	}

	var request dto.NoteRequest
	if !decodeJSON(w, r, &request) {
		return
	}
	if request.Note == nil {
		responseWithError(w, http.StatusBadRequest, "note is required")
		return
	}

	if err := h.Service.UpdateNote(r.Context(), id, *request.Note); err != nil {
		handleBusinessError(w, r, err, "update_note")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// ListActivities serves one page. A fresh Pager per request keeps the
// handler stateless; the client carries next_offset forward.
func (h *ActivityHandler) ListActivities(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	logger.HttpRequestInfo(r, "HTTP_IN:")

	limit, err := queryInt(r, "limit", h.PageSize)
	if err != nil {
		logger.Warn("HTTP: bad query parameter",
			zap.String("query", "limit"),
			zap.Error(err),
			zap.String("client_ip", r.RemoteAddr))
		responseWithError(w, http.StatusBadRequest, "limit must be a number")
		return
	}
	offset, err := queryInt(r, "offset", 0)
	if err != nil {
		logger.Warn("HTTP: bad query parameter",
			zap.String("query", "offset"),
			zap.Error(err),
			zap.String("client_ip", r.RemoteAddr))
		responseWithError(w, http.StatusBadRequest, "offset must be a number")
		return
	}
	status, err := dto.ParseStatusFilter(r.URL.Query().Get("status"))
	if err != nil {
		responseWithError(w, http.StatusBadRequest, "status must be one of all, pending, completed")
		return
	}
	if limit < 0 || offset < 0 {
		responseWithError(w, http.StatusBadRequest, "limit and offset must not be negative")
		return
	}
	if limit == 0 {
		limit = h.PageSize
	}

	pager := service.NewPager(h.Service, limit)
	pager.SetFilter(status, r.URL.Query().Get("search"))
	pager.Seek(offset)

	page, err := pager.Next(r.Context())
	if err != nil {
		handleBusinessError(w, r, err, "list_activities")
		return
	}

	logger.Info("HTTP_OUT: activities listed",
		zap.Int("count", len(page.Items)),
		zap.Duration("ms", time.Since(start)),
		zap.Int("http_status", http.StatusOK))

	responseWithBody(w, http.StatusOK, dto.PageResponse{
		Items:      dto.FromActivityList(page.Items),
		NextOffset: pager.Offset(),
		Fresh:      page.Fresh,
		Empty:      page.Empty,
	})
}

func (h *ActivityHandler) PendingActivity(w http.ResponseWriter, r *http.Request) {
	logger.HttpRequestInfo(r, "HTTP_IN:")

	pending, err := h.Service.Pending(r.Context())
	if err != nil {
		handleBusinessError(w, r, err, "pending_activities")
		return
	}
	responseWithBody(w, http.StatusOK, dto.FromPendingList(pending))
}

func (h *ActivityHandler) DrainReminders(w http.ResponseWriter, r *http.Request) {
	logger.HttpRequestInfo(r, "HTTP_IN:")

	if h.Reminders == nil {
		responseWithBody(w, http.StatusOK, []dto.NotificationResponse{})
		return
	}
	responseWithBody(w, http.StatusOK, dto.FromNotifications(h.Reminders.Drain()))
}

func readID(w http.ResponseWriter, r *http.Request) (int64, bool) {
	id, err := pathID(r)
	if err != nil {
		logger.Warn("HTTP: failed to read id",
			zap.Error(err),
			zap.String("client_ip", r.RemoteAddr))
		responseWithError(w, http.StatusBadRequest, "id must be an integer")
		return 0, false
	}
	return id, true
}

func decodeJSON(w http.ResponseWriter, r *http.Request, target any) bool {
	if !checkContentType(r, "application/json") {
		logger.Warn("HTTP: wrong content type",
			zap.String("expected", "application/json"),
			zap.String("received", r.Header.Get("Content-Type")),
			zap.String("client_ip", r.RemoteAddr))
		responseWithError(w, http.StatusUnsupportedMediaType, "Content-Type must be application/json")
		return false
	}

	defer r.Body.Close()
	if err := json.NewDecoder(r.Body).Decode(target); err != nil {
		logger.Warn("HTTP: failed to read JSON",
			zap.Error(err),
			zap.String("client_ip", r.RemoteAddr))
		responseWithError(w, http.StatusBadRequest, "invalid request body: "+err.Error())
		return false
	}
	return true
}

func decodeActivity(w http.ResponseWriter, r *http.Request) (dto.ActivityRequest, bool) {
	var request dto.ActivityRequest
	ok := decodeJSON(w, r, &request)
	return request, ok
}

// requestTimes parses start and end. An empty value stays zero and is
// rejected by the service.
func requestTimes(w http.ResponseWriter, r *http.Request, request dto.ActivityRequest) (time.Time, time.Time, bool) {
	var parsed [2]time.Time
	for i, raw := range []string{request.Start, request.End} {
		if raw == "" {
			continue
		}
		t, err := activity.ParseTime(raw)
		if err != nil {
			logger.Warn("HTTP: bad timestamp",
				zap.String("value", raw),
				zap.String("client_ip", r.RemoteAddr))
			responseWithError(w, http.StatusBadRequest, "timestamps must use the format "+activity.Layout)
			return time.Time{}, time.Time{}, false
		}
		parsed[i] = t
	}
	return parsed[0], parsed[1], true
}
