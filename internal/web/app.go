// Package web renders the manager's pages over the shared Store.
//
// Mutating handlers follow post/redirect/get. Before touching the Store they note the
// toast hub's sequence number and pass it along as ?after=, so the page that follows
// replays exactly the toasts the mutation produced.
package web

import (
	"context"
	"fmt"
	"net/http"
	"strconv"

	"github.com/charmbracelet/log"
	"github.com/gin-gonic/gin"

	"animemanager/internal/logging"
	"animemanager/internal/notify"
	"animemanager/internal/store"
	"animemanager/internal/validate"
	"animemanager/pkg/models"
)

// Messages shown by the views themselves.
const (
	MsgFixErrors    = "Please fix the errors in the form"
	MsgEditLoadFail = "Could not load the anime's information"
)

// Catalog is the part of the Store the views use.
type Catalog interface {
	Snapshot() store.Snapshot
	LoadAll(ctx context.Context) bool
	GetByID(ctx context.Context, id string) *models.Anime
	Create(ctx context.Context, a models.Anime) *models.Anime
	Update(ctx context.Context, id string, a models.Anime) *models.Anime
	Delete(ctx context.Context, id string) bool
}

type App struct {
	catalog Catalog
	hub     *notify.Hub
	logger  *log.Logger
	views   views

	createRules validate.Validator
	editRules   validate.Validator
}

func New(catalog Catalog, hub *notify.Hub, logger *log.Logger) (*App, error) {
	v, err := loadViews()
	if err != nil {
		return nil, fmt.Errorf("parse templates: %w", err)
	}
	return &App{
		catalog:     catalog,
		hub:         hub,
		logger:      logger,
		views:       v,
		createRules: validate.Default(),
		editRules:   validate.Strict(),
	}, nil
}

// Router mounts every page plus the toast socket.
func (a *App) Router() *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery(), logging.Gin(a.logger), a.trackToasts)

	r.GET("/", a.handleHome)

	r.GET("/animes", a.handleList)
	r.POST("/animes/refresh", a.handleRefresh)
	r.GET("/animes/create", a.handleCreateForm)
	r.POST("/animes", a.handleCreate)
	r.GET("/animes/:id", a.handleDetail)
	r.GET("/animes/:id/edit", a.handleEditForm)
	r.POST("/animes/:id", a.handleUpdate)
	r.GET("/animes/:id/delete", a.handleConfirmDelete)
	r.POST("/animes/:id/delete", a.handleDelete)

	r.GET("/ws", notify.HandleWebSocket(a.hub))

	r.NoRoute(a.notFound)
	return r
}

const toastAfterKey = "toastAfter"

// trackToasts records the toast sequence the page should replay from: the ?after=
// of a redirect, or the hub's current position for a fresh request.
func (a *App) trackToasts(c *gin.Context) {
	after, err := strconv.ParseUint(c.Query("after"), 10, 64)
	if err != nil {
		after = a.hub.Seq()
	}
	c.Set(toastAfterKey, after)
	c.Next()
}

func toastAfter(c *gin.Context) uint64 {
	v, _ := c.Get(toastAfterKey)
	n, _ := v.(uint64)
	return n
}

func redirect(c *gin.Context, path string, after uint64) {
	c.Redirect(http.StatusSeeOther, fmt.Sprintf("%s?after=%d", path, after))
}
