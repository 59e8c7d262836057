// Package mockapi serves the remote anime collection the manager talks to. It behaves
// like a hosted mock REST backend: no validation beyond well-formed JSON, ids assigned
// sequentially, full-replace updates.
package mockapi

import (
	"database/sql"
	"errors"
	"net/http"

	"github.com/charmbracelet/log"
	"github.com/gin-gonic/gin"

	"animemanager/internal/anime"
	"animemanager/internal/changefeed"
	"animemanager/internal/logging"
	"animemanager/pkg/models"
)

type API struct {
	db     *sql.DB
	feed   *changefeed.Publisher
	logger *log.Logger
}

func New(db *sql.DB, feed *changefeed.Publisher, logger *log.Logger) *API {
	return &API{db: db, feed: feed, logger: logger}
}

// Router builds the gin engine with every collection route mounted.
func (a *API) Router() *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery(), logging.Gin(a.logger))

	r.GET("/health", func(c *gin.Context) { c.JSON(http.StatusOK, gin.H{"ok": true}) })

	r.GET("/animes", a.handleList)
	r.GET("/animes/:id", a.handleGet)
	r.POST("/animes", a.handleCreate)
	r.PUT("/animes/:id", a.handleUpdate)
	r.DELETE("/animes/:id", a.handleDelete)

	r.NoRoute(func(c *gin.Context) {
		c.JSON(http.StatusNotFound, gin.H{"error": "not found"})
	})
	return r
}

func (a *API) handleList(c *gin.Context) {
	list, err := anime.List(a.db)
	if err != nil {
		a.dbError(c, "list", err)
		return
	}
	c.JSON(http.StatusOK, list)
}

func (a *API) handleGet(c *gin.Context) {
	m, err := anime.GetByID(a.db, c.Param("id"))
	if err != nil {
		a.lookupError(c, "get", err)
		return
	}
	c.JSON(http.StatusOK, m)
}

func (a *API) handleCreate(c *gin.Context) {
	var req models.Anime
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid json"})
		return
	}

	m, err := anime.Create(a.db, req)
	if err != nil {
		a.dbError(c, "create", err)
		return
	}
	a.feed.Publish("created", m)
	c.JSON(http.StatusCreated, m)
}

func (a *API) handleUpdate(c *gin.Context) {
	var req models.Anime
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid json"})
		return
	}

	m, err := anime.Update(a.db, c.Param("id"), req)
	if err != nil {
		a.lookupError(c, "update", err)
		return
	}
	a.feed.Publish("updated", m)
	c.JSON(http.StatusOK, m)
}

func (a *API) handleDelete(c *gin.Context) {
	m, err := anime.Delete(a.db, c.Param("id"))
	if err != nil {
		a.lookupError(c, "delete", err)
		return
	}
	a.feed.Publish("deleted", m)
	c.JSON(http.StatusOK, m)
}

func (a *API) lookupError(c *gin.Context, op string, err error) {
	if errors.Is(err, sql.ErrNoRows) {
		c.JSON(http.StatusNotFound, gin.H{"error": "anime not found"})
		return
	}
	a.dbError(c, op, err)
}

func (a *API) dbError(c *gin.Context, op string, err error) {
	a.logger.Error("db error", "op", op, "id", c.Param("id"), "err", err)
	c.JSON(http.StatusInternalServerError, gin.H{"error": "db error"})
}
