package handlers

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/cursolab/cursolab-backend/internal/cache"
	"github.com/cursolab/cursolab-backend/internal/platform/assistant"
	"github.com/cursolab/cursolab-backend/internal/platform/logger"
	"github.com/cursolab/cursolab-backend/internal/services"
	"github.com/cursolab/cursolab-backend/internal/types"
)

type CourseHandler struct {
	log       *logger.Logger
	sessions  *services.SessionManager
	cache     cache.CourseCache
	assistant assistant.Client
}

func NewCourseHandler(log *logger.Logger, sessions *services.SessionManager, courseCache cache.CourseCache, assistantClient assistant.Client) *CourseHandler {
	return &CourseHandler{
		log:       log.With("handler", "CourseHandler"),
		sessions:  sessions,
		cache:     courseCache,
		assistant: assistantClient,
	}
}

type createCourseRequest struct {
	Name string `json:"name" binding:"required"`
}

func (h *CourseHandler) Create(c *gin.Context) {
	var req createCourseRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		RespondError(c, http.StatusBadRequest, "invalid_request", err)
		return
	}
	session := h.sessions.Open(services.NewCourse(req.Name))
	RespondOK(c, gin.H{"course": session.Course()})
}

// Open loads a course from the cache into a fresh editing session.
func (h *CourseHandler) Open(c *gin.Context) {
	id := c.Param("id")
	if session, err := h.sessions.Get(id); err == nil {
		RespondOK(c, gin.H{"course": session.Course()})
		return
	}
	course, err := h.cache.Get(c.Request.Context(), id)
	if err != nil {
		h.log.Error("cache load failed", "course_id", id, "error", err)
		RespondError(c, http.StatusInternalServerError, "load_course_failed", err)
		return
	}
	if course == nil {
		RespondError(c, http.StatusNotFound, "course_not_found", nil)
		return
	}
	session := h.sessions.Open(course)
	RespondOK(c, gin.H{"course": session.Course()})
}

func (h *CourseHandler) Get(c *gin.Context) {
	session, err := h.sessions.Get(c.Param("id"))
	if err != nil {
		RespondError(c, http.StatusNotFound, "session_not_found", err)
		return
	}
	RespondOK(c, gin.H{"course": session.Course()})
}

func (h *CourseHandler) Close(c *gin.Context) {
	if err := h.sessions.Close(c.Request.Context(), c.Param("id")); err != nil {
		RespondError(c, http.StatusInternalServerError, "close_failed", err)
		return
	}
	RespondOK(c, gin.H{"closed": true})
}

func (h *CourseHandler) UpdateSettings(c *gin.Context) {
	session, err := h.sessions.Get(c.Param("id"))
	if err != nil {
		RespondError(c, http.StatusNotFound, "session_not_found", err)
		return
	}
	var settings types.CourseSettings
	if err := c.ShouldBindJSON(&settings); err != nil {
		RespondError(c, http.StatusBadRequest, "invalid_request", err)
		return
	}
	session.UpdateSettings(settings)
	RespondOK(c, gin.H{"course": session.Course()})
}

func (h *CourseHandler) AddModule(c *gin.Context) {
	session, err := h.sessions.Get(c.Param("id"))
	if err != nil {
		RespondError(c, http.StatusNotFound, "session_not_found", err)
		return
	}
	var module types.Module
	if err := c.ShouldBindJSON(&module); err != nil {
		RespondError(c, http.StatusBadRequest, "invalid_request", err)
		return
	}
	if err := session.AddModule(&module); err != nil {
		RespondError(c, http.StatusBadRequest, "invalid_module", err)
		return
	}
	RespondOK(c, gin.H{"module": module})
}

func (h *CourseHandler) UpdateModule(c *gin.Context) {
	session, err := h.sessions.Get(c.Param("id"))
	if err != nil {
		RespondError(c, http.StatusNotFound, "session_not_found", err)
		return
	}
	var module types.Module
	if err := c.ShouldBindJSON(&module); err != nil {
		RespondError(c, http.StatusBadRequest, "invalid_request", err)
		return
	}
	module.ID = c.Param("moduleId")
	if err := session.UpdateModule(&module); err != nil {
		RespondError(c, http.StatusBadRequest, "invalid_module", err)
		return
	}
	RespondOK(c, gin.H{"module": module})
}

type moveModuleRequest struct {
	Index int `json:"index"`
}

func (h *CourseHandler) MoveModule(c *gin.Context) {
	session, err := h.sessions.Get(c.Param("id"))
	if err != nil {
		RespondError(c, http.StatusNotFound, "session_not_found", err)
		return
	}
	var req moveModuleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		RespondError(c, http.StatusBadRequest, "invalid_request", err)
		return
	}
	if err := session.MoveModule(c.Param("moduleId"), req.Index); err != nil {
		RespondError(c, http.StatusNotFound, "module_not_found", err)
		return
	}
	RespondOK(c, gin.H{"course": session.Course()})
}

func (h *CourseHandler) RemoveModule(c *gin.Context) {
	session, err := h.sessions.Get(c.Param("id"))
	if err != nil {
		RespondError(c, http.StatusNotFound, "session_not_found", err)
		return
	}
	if err := session.RemoveModule(c.Param("moduleId")); err != nil {
		RespondError(c, http.StatusNotFound, "module_not_found", err)
		return
	}
	RespondOK(c, gin.H{"removed": true})
}

type generateModulesRequest struct {
	Topic string `json:"topic" binding:"required"`
	Count int    `json:"count"`
}

// GenerateModules asks the assistant for new modules and appends them to the
// course. Unavailable assistant (no API key at startup) is a 503, not a bug.
func (h *CourseHandler) GenerateModules(c *gin.Context) {
	if h.assistant == nil {
		RespondError(c, http.StatusServiceUnavailable, "assistant_unavailable", nil)
		return
	}
	session, err := h.sessions.Get(c.Param("id"))
	if err != nil {
		RespondError(c, http.StatusNotFound, "session_not_found", err)
		return
	}
	var req generateModulesRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		RespondError(c, http.StatusBadRequest, "invalid_request", err)
		return
	}
	modules, err := h.assistant.GenerateModules(c.Request.Context(), strings.TrimSpace(req.Topic), req.Count)
	if err != nil {
		h.log.Error("module generation failed", "course_id", c.Param("id"), "error", err)
		RespondError(c, http.StatusBadGateway, "generation_failed", err)
		return
	}
	for _, m := range modules {
		if err := session.AddModule(m); err != nil {
			RespondError(c, http.StatusInternalServerError, "add_module_failed", err)
			return
		}
	}
	RespondOK(c, gin.H{"modules": modules})
}
