package server

import (
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"
	"github.com/poiesic/soundbite/core"
)

// Root reports the service banner.
func (s *Server) Root(c echo.Context) error {
	return c.JSON(http.StatusOK, RootResponse{
		Message: serviceName,
		Version: s.version,
		Status:  "active",
	})
}

// Health reports liveness and whether an engine is attached.
func (s *Server) Health(c echo.Context) error {
	return c.JSON(http.StatusOK, HealthResponse{
		Status:            "healthy",
		SystemInitialized: s.matcher != nil,
	})
}

// Stats reports the catalogue summary.
func (s *Server) Stats(c echo.Context) error {
	if s.matcher == nil {
		return notInitialized(c)
	}
	stats := s.matcher.Stats()
	ids := stats.ClipIDs
	if ids == nil {
		ids = []string{}
	}
	return c.JSON(http.StatusOK, StatsResponse{
		TotalAudios:      stats.Count,
		Model:            stats.Model,
		CurrentThreshold: stats.Threshold,
		AvailableAudios:  ids,
	})
}

// Process answers one query.
func (s *Server) Process(c echo.Context) error {
	if s.matcher == nil {
		return notInitialized(c)
	}
	var req ProcessRequest
	if err := c.Bind(&req); err != nil {
		return badRequest(c, "invalid request body")
	}
	text := strings.TrimSpace(req.Text)
	if text == "" {
		return badRequest(c, "text must not be empty")
	}
	method, err := core.ParseMethod(req.Method)
	if err != nil {
		return badRequest(c, err.Error())
	}

	decision, err := s.matcher.Match(c.Request().Context(), text, method)
	if err != nil {
		if errors.Is(err, core.ErrUnknownMethod) {
			return badRequest(c, err.Error())
		}
		s.logger.Error("error processing query", "err", err)
		return c.JSON(http.StatusInternalServerError, ErrorDetail{Detail: err.Error()})
	}
	return c.JSON(http.StatusOK, Render(decision))
}

// AddAudio inserts or replaces a clip.
func (s *Server) AddAudio(c echo.Context) error {
	if s.matcher == nil {
		return notInitialized(c)
	}
	var req AudioRequest
	if err := c.Bind(&req); err != nil {
		return badRequest(c, "invalid request body")
	}
	id := strings.TrimSpace(req.AudioFile)
	if id == "" {
		return badRequest(c, "audio_file must not be empty")
	}
	if len(req.Descriptions) == 0 {
		return badRequest(c, "descriptions must contain at least one item")
	}
	if len(req.Descriptions) > s.maxDescriptions {
		return badRequest(c, fmt.Sprintf("too many descriptions: %d (max %d)", len(req.Descriptions), s.maxDescriptions))
	}
	phrases, err := core.NormalizePhrases(req.Descriptions)
	if err != nil {
		return badRequest(c, "descriptions must contain at least one non-empty item")
	}

	if !s.matcher.InsertClip(c.Request().Context(), id, phrases) {
		return badRequest(c, "Error adding audio")
	}
	return c.JSON(http.StatusOK, MessageResponse{
		Message: fmt.Sprintf("Audio %s added successfully", id),
	})
}

// UpdateThreshold replaces the acceptance threshold.
func (s *Server) UpdateThreshold(c echo.Context) error {
	if s.matcher == nil {
		return notInitialized(c)
	}
	var req ThresholdRequest
	if err := c.Bind(&req); err != nil || req.Threshold == nil {
		return badRequest(c, "threshold is required")
	}
	if !s.matcher.SetThreshold(*req.Threshold) {
		return badRequest(c, "Invalid threshold (must be between 0.0 and 1.0)")
	}
	return c.JSON(http.StatusOK, MessageResponse{
		Message: fmt.Sprintf("Threshold updated to %v", *req.Threshold),
	})
}

func badRequest(c echo.Context, detail string) error {
	return c.JSON(http.StatusBadRequest, ErrorDetail{Detail: detail})
}

func notInitialized(c echo.Context) error {
	return c.JSON(http.StatusInternalServerError, ErrorDetail{Detail: "System not initialized"})
}
