package handlers

import (
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog"

	"github.com/legal_queries/backend/internal/ingest"
	"github.com/legal_queries/backend/internal/models"
	"github.com/legal_queries/backend/internal/notify"
	"github.com/legal_queries/backend/internal/service"
	"github.com/legal_queries/backend/internal/store"
)

type Handler struct {
	Service   *service.AssignmentService
	Store     *store.Store
	Validator *validator.Validate
	Logger    zerolog.Logger
	Now       func() time.Time
}

type ImportSummary struct {
	Parsed int                `json:"parsed"`
	Errors []string           `json:"errors"`
	Run    service.RunSummary `json:"run"`
}

type StatusRequest struct {
	Status string `json:"status" validate:"required,oneof=pending in_process completed reclassified elevated info_requested"`
}

type LawyerRequest struct {
	WorkPercentage  *int     `json:"work_percentage" validate:"omitempty,min=0,max=100"`
	CanHandleUrgent *bool    `json:"can_handle_urgent"`
	Typologies      []string `json:"typologies" validate:"omitempty,min=1,dive,required"`
}

type LawyerStats struct {
	LawyerID       string  `json:"lawyer_id"`
	Name           string  `json:"name"`
	WorkPercentage int     `json:"work_percentage"`
	Assigned       int     `json:"assigned"`
	Urgent         int     `json:"urgent"`
	Open           int     `json:"open"`
	Ratio          float64 `json:"ratio"`
}

type Dashboard struct {
	Total      int            `json:"total"`
	Urgent     int            `json:"urgent"`
	Unassigned int            `json:"unassigned"`
	ByStatus   map[string]int `json:"by_status"`
	Lawyers    []LawyerStats  `json:"lawyers"`
}

func (h *Handler) Healthz(c *gin.Context) {
	_, lawyers := h.Store.Snapshot()
	c.JSON(http.StatusOK, gin.H{"status": "ok", "lawyers": len(lawyers)})
}

// @Summary Import queries
// @Description Upload a query export as CSV, replace the working batch and assign it
// @Tags import
// @Accept multipart/form-data
// @Produce json
// @Param queries formData file true "queries.csv"
// @Success 200 {object} ImportSummary
// @Failure 400 {object} map[string]any
// @Router /api/import [post]
func (h *Handler) Import(c *gin.Context) {
	file, err := c.FormFile("queries")
	if err != nil {
		writeError(c, http.StatusBadRequest, "INVALID_REQUEST", "queries file required", nil)
		return
	}
	if !ingest.ValidateExt(file.Filename) {
		writeError(c, http.StatusBadRequest, "INVALID_REQUEST", "file must be .csv", nil)
		return
	}
	f, err := file.Open()
	if err != nil {
		writeError(c, http.StatusBadRequest, "INVALID_REQUEST", "cannot open upload", err.Error())
		return
	}
	defer f.Close()

	queries, errs := ingest.ParseQueriesCSV(f, h.now())
	if errs == nil {
		errs = []string{}
	}
	if len(queries) == 0 {
		writeError(c, http.StatusBadRequest, "CSV_PARSE_ERROR", "No valid queries in file", errs)
		return
	}

	summary, err := h.Service.Load(c.Request.Context(), queries)
	if err != nil {
		h.Logger.Error().Err(err).Msg("assignment failed")
		writeError(c, http.StatusInternalServerError, "PROCESSING_ERROR", "Assignment failed", err.Error())
		return
	}
	if len(errs) > 0 {
		h.Logger.Warn().Int("skipped", len(errs)).Msg("import skipped rows")
	}
	c.JSON(http.StatusOK, ImportSummary{Parsed: len(queries), Errors: errs, Run: summary})
}

// @Summary Reassign stored queries
// @Tags process
// @Produce json
// @Success 200 {object} service.RunSummary
// @Failure 409 {object} map[string]any
// @Router /api/reassign [post]
func (h *Handler) Reassign(c *gin.Context) {
	summary, err := h.Service.Reassign(c.Request.Context())
	if err != nil {
		if errors.Is(err, service.ErrNoQueries) {
			writeError(c, http.StatusConflict, "NO_QUERIES", "No queries loaded", nil)
			return
		}
		h.Logger.Error().Err(err).Msg("reassign failed")
		writeError(c, http.StatusInternalServerError, "PROCESSING_ERROR", "Reassign failed", err.Error())
		return
	}
	c.JSON(http.StatusOK, summary)
}

// @Summary Latest run
// @Tags process
// @Produce json
// @Success 200 {object} models.Run
// @Router /api/runs/latest [get]
func (h *Handler) RunsLatest(c *gin.Context) {
	run, err := h.Store.LatestRun()
	if err != nil {
		writeError(c, http.StatusNotFound, "NOT_FOUND", "No runs found", nil)
		return
	}
	c.JSON(http.StatusOK, run)
}

func (h *Handler) QueriesList(c *gin.Context) {
	filter := store.QueryFilter{
		Search:      c.Query("q"),
		Urgency:     strings.ToLower(c.DefaultQuery("urgency", "all")),
		LawyerEmail: strings.TrimSpace(c.Query("lawyer")),
		Unassigned:  c.Query("unassigned") == "1" || strings.EqualFold(c.Query("unassigned"), "true"),
	}
	if raw := strings.TrimSpace(c.Query("status")); raw != "" && raw != "all" {
		status := models.QueryStatus(raw)
		if !status.Valid() {
			writeError(c, http.StatusBadRequest, "VALIDATION_ERROR", "unknown status", raw)
			return
		}
		filter.Status = status
	}
	items := h.Store.ListQueries(filter)
	c.JSON(http.StatusOK, gin.H{"items": items, "total": len(items)})
}

func (h *Handler) QueryDetails(c *gin.Context) {
	q, err := h.Store.GetQuery(c.Param("id"))
	if err != nil {
		writeError(c, http.StatusNotFound, "NOT_FOUND", "Query not found", nil)
		return
	}
	c.JSON(http.StatusOK, q)
}

// @Summary Update query status
// @Tags queries
// @Accept json
// @Produce json
// @Param id path string true "Query ID"
// @Param body body StatusRequest true "New status"
// @Success 200 {object} models.Query
// @Router /api/queries/{id}/status [patch]
func (h *Handler) UpdateQueryStatus(c *gin.Context) {
	var req StatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		writeError(c, http.StatusBadRequest, "INVALID_REQUEST", "Invalid payload", err.Error())
		return
	}
	if err := h.Validator.Struct(req); err != nil {
		writeError(c, http.StatusBadRequest, "VALIDATION_ERROR", "Validation failed", err.Error())
		return
	}
	q, err := h.Store.UpdateQueryStatus(c.Param("id"), models.QueryStatus(req.Status))
	if err != nil {
		writeError(c, http.StatusNotFound, "NOT_FOUND", "Query not found", nil)
		return
	}
	c.JSON(http.StatusOK, q)
}

func (h *Handler) LawyersList(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"items": h.Store.ListLawyers()})
}

// @Summary Update lawyer availability
// @Description Changes take effect on the next import or reassign
// @Tags lawyers
// @Accept json
// @Produce json
// @Param id path string true "Lawyer ID"
// @Param body body LawyerRequest true "Fields to change"
// @Success 200 {object} models.Lawyer
// @Router /api/lawyers/{id} [patch]
func (h *Handler) UpdateLawyer(c *gin.Context) {
	var req LawyerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		writeError(c, http.StatusBadRequest, "INVALID_REQUEST", "Invalid payload", err.Error())
		return
	}
	if err := h.Validator.Struct(req); err != nil {
		writeError(c, http.StatusBadRequest, "VALIDATION_ERROR", "Validation failed", err.Error())
		return
	}
	l, err := h.Store.UpdateLawyer(c.Param("id"), store.LawyerUpdate{
		WorkPercentage:  req.WorkPercentage,
		CanHandleUrgent: req.CanHandleUrgent,
		Typologies:      req.Typologies,
	})
	if err != nil {
		writeError(c, http.StatusNotFound, "NOT_FOUND", "Lawyer not found", nil)
		return
	}
	h.Logger.Info().Str("lawyer_id", l.ID).Int("work_percentage", l.WorkPercentage).Msg("lawyer updated")
	c.JSON(http.StatusOK, l)
}

// @Summary Notify lawyer
// @Description Email the lawyer every query currently assigned to them
// @Tags lawyers
// @Produce json
// @Param id path string true "Lawyer ID"
// @Success 200 {object} notify.Result
// @Router /api/lawyers/{id}/notify [post]
func (h *Handler) NotifyLawyer(c *gin.Context) {
	res, err := h.Service.NotifyLawyer(c.Request.Context(), c.Param("id"))
	switch {
	case err == nil:
		c.JSON(http.StatusOK, res)
	case errors.Is(err, store.ErrNotFound):
		writeError(c, http.StatusNotFound, "NOT_FOUND", "Lawyer not found", nil)
	case errors.Is(err, notify.ErrNoQueries):
		writeError(c, http.StatusBadRequest, "NO_QUERIES", "Lawyer has no assigned queries", nil)
	default:
		h.Logger.Error().Err(err).Str("lawyer_id", c.Param("id")).Msg("notification failed")
		writeError(c, http.StatusBadGateway, "NOTIFICATION_FAILED", "Notification failed", err.Error())
	}
}

func (h *Handler) DashboardStats(c *gin.Context) {
	queries, lawyers := h.Store.Snapshot()
	d := Dashboard{ByStatus: map[string]int{}, Lawyers: []LawyerStats{}}
	for _, s := range models.QueryStatuses {
		d.ByStatus[string(s)] = 0
	}
	byEmail := map[string]*LawyerStats{}
	for _, l := range lawyers {
		d.Lawyers = append(d.Lawyers, LawyerStats{LawyerID: l.ID, Name: l.Name, WorkPercentage: l.WorkPercentage})
	}
	for i, l := range lawyers {
		byEmail[l.Email] = &d.Lawyers[i]
	}
	for _, q := range queries {
		d.Total++
		d.ByStatus[string(q.Status)]++
		if q.IsUrgent {
			d.Urgent++
		}
		st, ok := byEmail[q.AssignedLawyerEmail]
		if !ok || q.AssignedLawyerEmail == "" {
			if !q.Assigned() {
				d.Unassigned++
			}
			continue
		}
		st.Assigned++
		if q.IsUrgent {
			st.Urgent++
		}
		if q.Status.Open() {
			st.Open++
		}
	}
	for i := range d.Lawyers {
		if d.Lawyers[i].WorkPercentage > 0 {
			d.Lawyers[i].Ratio = service.LoadRatio(d.Lawyers[i].Assigned, d.Lawyers[i].WorkPercentage)
		}
	}
	c.JSON(http.StatusOK, d)
}

// @Summary Debug eligibility
// @Tags debug
// @Produce json
// @Param query_id query string true "Query ID"
// @Success 200 {object} service.EligibilityReport
// @Router /api/debug/eligibility [get]
func (h *Handler) DebugEligibility(c *gin.Context) {
	queryID := strings.TrimSpace(c.Query("query_id"))
	if queryID == "" {
		writeError(c, http.StatusBadRequest, "VALIDATION_ERROR", "query_id is required", nil)
		return
	}
	report, err := h.Service.ExplainEligibility(queryID)
	if err != nil {
		writeError(c, http.StatusNotFound, "NOT_FOUND", "Query not found", nil)
		return
	}
	c.JSON(http.StatusOK, report)
}

func writeError(c *gin.Context, status int, code string, message string, details any) {
	c.JSON(status, gin.H{
		"error": gin.H{
			"code":    code,
			"message": message,
			"details": details,
		},
	})
}

func (h *Handler) now() time.Time {
	if h.Now != nil {
		return h.Now()
	}
	return time.Now()
}
