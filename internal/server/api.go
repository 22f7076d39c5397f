package server

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"

	"sound-server/internal/library"
)

//go:generate mockgen -destination=mocks/dispatcher.go -package=mocks sound-server/internal/server Dispatcher

// Dispatcher plays a resolved sound file and blocks until it is done.
type Dispatcher interface {
	Play(ctx context.Context, path string) error
}

// dispatchStats is implemented by dispatchers that can report their state.
type dispatchStats interface {
	Backend() string
	InFlight() int64
}

// Error messages returned to clients.
const (
	msgUnreadable = "Unable to read sounds directory"
	msgNoSounds   = "No sound files found"
)

// API handles HTTP endpoints.
type API struct {
	library    *library.Library
	dispatcher Dispatcher
	log        *slog.Logger
}

// NewAPI creates a new API handler.
func NewAPI(lib *library.Library, dispatcher Dispatcher, log *slog.Logger) *API {
	return &API{
		library:    lib,
		dispatcher: dispatcher,
		log:        log,
	}
}

// ListSounds returns the names of the files in the sounds directory.
func (a *API) ListSounds(c *gin.Context) {
	names, err := a.library.List()
	if err != nil {
		a.log.Error("list sounds", "dir", a.library.Dir(), "error", err)
		c.JSON(http.StatusInternalServerError, Failed(msgUnreadable))
		return
	}
	c.JSON(http.StatusOK, names)
}

// Play plays the sound named in the request body.
func (a *API) Play(c *gin.Context) {
	var req PlayRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, Failed(fmt.Sprintf("invalid request: %v", err)))
		return
	}

	a.playSound(c, req.Sound)
}

// PlayDefault plays the first sound the directory listing yields.
func (a *API) PlayDefault(c *gin.Context) {
	name, err := a.library.First()
	switch {
	case errors.Is(err, library.ErrEmpty):
		c.JSON(http.StatusNotFound, Failed(msgNoSounds))
		return
	case err != nil:
		a.log.Error("list sounds", "dir", a.library.Dir(), "error", err)
		c.JSON(http.StatusInternalServerError, Failed(msgUnreadable))
		return
	}

	a.playSound(c, name)
}

// Health reports liveness and playback activity.
func (a *API) Health(c *gin.Context) {
	resp := HealthResponse{Status: "ok"}
	if s, ok := a.dispatcher.(dispatchStats); ok {
		resp.Backend = s.Backend()
		resp.InFlight = s.InFlight()
	}
	c.JSON(http.StatusOK, resp)
}

func (a *API) playSound(c *gin.Context, name string) {
	path, err := a.library.Resolve(name)
	if err != nil {
		c.JSON(http.StatusNotFound, Failed(fmt.Sprintf("Sound file '%s' not found", name)))
		return
	}

	a.log.Debug("play request", "sound", name, "request_id", c.GetString(requestIDKey))

	if err := a.dispatcher.Play(c.Request.Context(), path); err != nil {
		c.JSON(http.StatusInternalServerError, Failed(fmt.Sprintf("Failed to play sound: %s", name)))
		return
	}

	c.JSON(http.StatusOK, Succeeded(fmt.Sprintf("Successfully played sound: %s", name)))
}
