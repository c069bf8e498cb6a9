// Package inspect provides password protected HTTP viewer of stored guild configs
package inspect

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/divine-development/divine/internal/model"
	"github.com/divine-development/divine/internal/store"
	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
)

var (
	// ErrNoCredentials is returned when viewer is configured without username or password
	ErrNoCredentials = errors.New("inspect server requires username and password")
)

const shutdownTimeout = 5 * time.Second

// Server serves stored guild configs over HTTP basic auth
type Server struct {
	Repository *model.Repository
	Log        *logrus.Logger
	engine     *gin.Engine
}

// New returns viewer server
func New(repo *model.Repository, log *logrus.Logger, username, password string) (*Server, error) {
	if username == "" || password == "" {
		return nil, ErrNoCredentials
	}

	if log == nil {
		log = logrus.New()
	}

	s := &Server{
		Repository: repo,
		Log:        log,
		engine:     gin.New(),
	}

	s.engine.Use(gin.Recovery(), s.middlewareLog())

	guilds := s.engine.Group("/guilds", gin.BasicAuth(gin.Accounts{username: password}))
	guilds.GET("", s.handlerGuilds)
	guilds.GET("/:id", s.handlerGuild)

	return s, nil
}

// Handler returns http handler
func (s *Server) Handler() http.Handler {
	return s.engine
}

func (s *Server) middlewareLog() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()

		c.Next()

		s.Log.WithFields(logrus.Fields{
			"method":   c.Request.Method,
			"path":     c.Request.URL.Path,
			"status":   c.Writer.Status(),
			"duration": time.Since(start),
			"remote":   c.ClientIP(),
		}).Debug("Inspect request")
	}
}

func (s *Server) handlerGuilds(c *gin.Context) {
	ids, err := s.Repository.Guilds()
	if err != nil {
		s.Log.WithError(err).Error("Listing guild configs")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "could not list guilds"})

		return
	}

	c.JSON(http.StatusOK, gin.H{"guilds": ids})
}

func (s *Server) handlerGuild(c *gin.Context) {
	id := model.ID(c.Param("id"))
	if !id.Valid() {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid guild id"})

		return
	}

	raw, err := s.Repository.Raw(id.String())

	switch {
	case errors.Is(err, store.ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "guild not found"})
	case err != nil:
		s.Log.WithError(err).WithField("guild", id).Error("Reading guild config")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "could not read guild"})
	default:
		c.Data(http.StatusOK, "application/json; charset=utf-8", raw)
	}
}

// ListenAndServe serves on addr until ctx is done
func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.engine,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errc := make(chan error, 1)

	go func() {
		errc <- srv.ListenAndServe()
	}()

	s.Log.WithField("addr", addr).Info("Inspect server listening")

	select {
	case err := <-errc:
		return err
	case <-ctx.Done():
	}

	shutdownctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	err := srv.Shutdown(shutdownctx)
	if err != nil {
		return err
	}

	err = <-errc
	if errors.Is(err, http.ErrServerClosed) {
		return nil
	}

	return err
}
