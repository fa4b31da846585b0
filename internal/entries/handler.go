package entries

import (
	"math"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"mangashelf/internal/events"
	"mangashelf/pkg/models"
)

type Handler struct {
	Repo *Repo
	Hub  *events.Hub
}

func NewHandler(repo *Repo, hub *events.Hub) *Handler {
	return &Handler{Repo: repo, Hub: hub}
}

// RegisterPublicRoutes mounts the read-only surface.
func (h *Handler) RegisterPublicRoutes(rg *gin.RouterGroup) {
	rg.GET("", h.list)
	rg.GET("/:id", h.getByID)
}

// RegisterProtectedRoutes mounts everything that mutates the shelf.
func (h *Handler) RegisterProtectedRoutes(rg *gin.RouterGroup) {
	rg.POST("", h.create)
	rg.PUT("/:id", h.update)
	rg.DELETE("/:id", h.remove)
	rg.POST("/:id/increment", h.increment)
}

type entryReq struct {
	Title              string   `json:"title"`
	Author             string   `json:"author"`
	Synopsis           string   `json:"synopsis"`
	Notes              string   `json:"notes"`
	Status             string   `json:"status"`
	Tags               []string `json:"tags"`
	BulkTags           string   `json:"bulk_tags"`
	Rating             *float64 `json:"rating"`
	ChaptersRead       int      `json:"chapters_read"`
	TotalChapters      *int     `json:"total_chapters"`
	TotalRepeats       int      `json:"total_repeats"`
	CoverURL           string   `json:"cover_url"`
	OriginalImageURL   string   `json:"original_image_url"`
	CompressedImageURL string   `json:"compressed_image_url"`
	Sources            []string `json:"sources"`
	StartDate          string   `json:"start_date"`
	EndDate            string   `json:"end_date"`
	AllowOverflow      bool     `json:"allow_overflow"`
}

// toEntry validates the request and maps it onto a model. Returns a
// human-readable problem string when the input is rejected.
func (req *entryReq) toEntry() (models.Entry, string) {
	var e models.Entry

	e.Title = strings.TrimSpace(req.Title)
	if e.Title == "" {
		return e, "title required"
	}

	e.Status = normalizeStatus(req.Status)
	if e.Status == "" {
		return e, "status must be one of: Plan to Read, Reading, Paused, Completed, Dropped, Rereading"
	}

	if req.ChaptersRead < 0 {
		return e, "chapters_read must be >= 0"
	}
	if req.TotalChapters != nil && *req.TotalChapters < 0 {
		return e, "total_chapters must be >= 0"
	}
	if req.TotalChapters != nil && *req.TotalChapters > 0 &&
		req.ChaptersRead > *req.TotalChapters && !req.AllowOverflow {
		return e, "chapters_read exceeds total_chapters (set allow_overflow to override)"
	}
	if req.TotalRepeats < 0 {
		return e, "total_repeats must be >= 0"
	}

	if req.Rating != nil {
		r := *req.Rating
		if r < 1 || r > 10 || math.Mod(r*2, 1) != 0 {
			return e, "rating must be between 1 and 10 in steps of 0.5"
		}
		e.Rating = req.Rating
	}

	for _, d := range []string{req.StartDate, req.EndDate} {
		if d == "" {
			continue
		}
		if _, err := time.Parse("2006-01-02", d); err != nil {
			return e, "dates must be YYYY-MM-DD"
		}
	}

	tags := append([]string{}, req.Tags...)
	tags = append(tags, ParseBulkTags(req.BulkTags)...)
	e.Tags = NormalizeTags(tags)

	e.Sources = make([]string, 0, len(req.Sources))
	for _, s := range req.Sources {
		if s = strings.TrimSpace(s); s != "" {
			e.Sources = append(e.Sources, s)
		}
	}

	e.Author = strings.TrimSpace(req.Author)
	e.Synopsis = strings.TrimSpace(req.Synopsis)
	e.Notes = strings.TrimSpace(req.Notes)
	e.ChaptersRead = req.ChaptersRead
	e.TotalChapters = req.TotalChapters
	e.TotalRepeats = req.TotalRepeats
	e.CoverURL = strings.TrimSpace(req.CoverURL)
	e.OriginalImageURL = strings.TrimSpace(req.OriginalImageURL)
	e.CompressedImageURL = strings.TrimSpace(req.CompressedImageURL)
	e.StartDate = req.StartDate
	e.EndDate = req.EndDate

	return e, ""
}

func (h *Handler) list(c *gin.Context) {
	q := ListQuery{
		Q:      c.Query("q"),
		Status: c.Query("status"),
		Tag:    c.Query("tag"),
		Limit:  parseInt(c.Query("limit"), 20),
		Offset: parseInt(c.Query("offset"), 0),
	}

	total, err := h.Repo.Count(c.Request.Context(), q)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "count failed"})
		return
	}

	items, err := h.Repo.List(c.Request.Context(), q)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "list failed"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"total":  total,
		"limit":  q.Limit,
		"offset": q.Offset,
		"items":  items,
	})
}

func (h *Handler) getByID(c *gin.Context) {
	id := c.Param("id")
	e, err := h.Repo.GetByID(c.Request.Context(), id)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "get failed"})
		return
	}
	if e == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "not found"})
		return
	}
	c.JSON(http.StatusOK, e)
}

func (h *Handler) create(c *gin.Context) {
	var req entryReq
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid json"})
		return
	}

	e, problem := req.toEntry()
	if problem != "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": problem})
		return
	}
	e.ID = uuid.NewString()

	if err := h.Repo.Create(c.Request.Context(), e); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "create failed"})
		return
	}

	saved, err := h.Repo.GetByID(c.Request.Context(), e.ID)
	if err != nil || saved == nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "fetch saved failed"})
		return
	}

	h.broadcast("entry.create", saved)
	c.JSON(http.StatusCreated, saved)
}

func (h *Handler) update(c *gin.Context) {
	id := strings.TrimSpace(c.Param("id"))
	if id == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "id required"})
		return
	}

	var req entryReq
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid json"})
		return
	}

	e, problem := req.toEntry()
	if problem != "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": problem})
		return
	}
	e.ID = id

	ok, err := h.Repo.Update(c.Request.Context(), e)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "update failed"})
		return
	}
	if !ok {
		c.JSON(http.StatusNotFound, gin.H{"error": "not found"})
		return
	}

	saved, err := h.Repo.GetByID(c.Request.Context(), id)
	if err != nil || saved == nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "fetch saved failed"})
		return
	}

	h.broadcast("entry.update", saved)
	c.JSON(http.StatusOK, saved)
}

func (h *Handler) remove(c *gin.Context) {
	id := strings.TrimSpace(c.Param("id"))
	if id == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "id required"})
		return
	}

	ok, err := h.Repo.Delete(c.Request.Context(), id)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "delete failed"})
		return
	}
	if !ok {
		c.JSON(http.StatusNotFound, gin.H{"error": "not found"})
		return
	}

	if h.Hub != nil {
		ev := events.EntryEvent{
			Type:    "entry.delete",
			EntryID: id,
			At:      time.Now().UTC(),
		}
		go h.Hub.BroadcastJSON(ev)
	}

	c.JSON(http.StatusOK, gin.H{"message": "deleted"})
}

func (h *Handler) increment(c *gin.Context) {
	id := strings.TrimSpace(c.Param("id"))
	if id == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "id required"})
		return
	}

	e, err := h.Repo.GetByID(c.Request.Context(), id)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "get failed"})
		return
	}
	if e == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "not found"})
		return
	}

	today := time.Now().UTC().Format("2006-01-02")
	completed := ApplyIncrement(e, today)

	if _, err := h.Repo.Update(c.Request.Context(), *e); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "save failed"})
		return
	}

	saved, err := h.Repo.GetByID(c.Request.Context(), id)
	if err != nil || saved == nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "fetch saved failed"})
		return
	}

	h.broadcast("entry.update", saved)
	c.JSON(http.StatusOK, gin.H{
		"entry":     saved,
		"completed": completed,
	})
}

func (h *Handler) broadcast(eventType string, e *models.Entry) {
	if h.Hub == nil {
		return
	}
	ev := events.EntryEvent{
		Type:         eventType,
		EntryID:      e.ID,
		Title:        e.Title,
		Status:       e.Status,
		ChaptersRead: e.ChaptersRead,
		At:           time.Now().UTC(),
	}
	go h.Hub.BroadcastJSON(ev)
}

func normalizeStatus(s string) string {
	switch strings.ToLower(strings.ReplaceAll(strings.ReplaceAll(strings.TrimSpace(s), "_", " "), "-", " ")) {
	case "plan to read", "planned", "ptr":
		return models.StatusPlanToRead
	case "reading":
		return models.StatusReading
	case "paused", "on hold":
		return models.StatusPaused
	case "completed":
		return models.StatusCompleted
	case "dropped":
		return models.StatusDropped
	case "rereading", "re reading":
		return models.StatusRereading
	default:
		return ""
	}
}

func parseInt(s string, def int) int {
	s = strings.TrimSpace(s)
	if s == "" {
		return def
	}
	n, err := strconv.Atoi(s)
	if err != nil {
		return def
	}
	return n
}
