package web

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"animemanager/internal/filter"
	"animemanager/internal/notify"
	"animemanager/pkg/models"
)

func (a *App) handleHome(c *gin.Context) {
	a.render(c, http.StatusOK, "home", page{Title: "Home"})
}

type listView struct {
	Loading    bool
	Error      string
	Query      string
	Category   string
	Categories []string
	Animes     []models.Anime
}

func (a *App) handleList(c *gin.Context) {
	snap := a.catalog.Snapshot()
	v := listView{
		Loading:  snap.Loading && !snap.Loaded,
		Error:    snap.Error,
		Query:    c.Query("q"),
		Category: c.Query("genre"),
	}
	p := page{Title: "Catalog", Body: &v}

	switch {
	case v.Loading:
		p.Refresh = 1
	case v.Error != "":
	default:
		v.Categories = filter.Categories(snap.Animes)
		v.Animes = filter.Filter(snap.Animes, v.Query, v.Category)
	}
	a.render(c, http.StatusOK, "list", p)
}

func (a *App) handleRefresh(c *gin.Context) {
	after := toastAfter(c)
	a.catalog.LoadAll(c.Request.Context())
	redirect(c, "/animes", after)
}

func (a *App) handleDetail(c *gin.Context) {
	m := a.catalog.GetByID(c.Request.Context(), c.Param("id"))
	if m == nil {
		a.notFound(c)
		return
	}
	a.render(c, http.StatusOK, "detail", page{Title: m.Title, Body: m})
}

func (a *App) handleCreateForm(c *gin.Context) {
	f := newFormView(blankValues(), nil, nil)
	a.renderForm(c, http.StatusOK, f, "")
}

func (a *App) handleCreate(c *gin.Context) {
	after := toastAfter(c)
	values, genres, draft := readForm(c)

	rec, errs := a.createRules.Approve(draft)
	if !errs.OK() {
		a.hub.Notify(notify.Failure(MsgFixErrors))
		a.renderForm(c, http.StatusUnprocessableEntity, newFormView(values, genres, errs), "")
		return
	}

	created := a.catalog.Create(c.Request.Context(), rec)
	if created == nil {
		a.renderForm(c, http.StatusBadGateway, newFormView(values, genres, nil), "")
		return
	}
	redirect(c, "/animes/"+created.ID, after)
}

func (a *App) handleEditForm(c *gin.Context) {
	after := toastAfter(c)
	m := a.catalog.GetByID(c.Request.Context(), c.Param("id"))
	if m == nil {
		a.hub.Notify(notify.Failure(MsgEditLoadFail))
		redirect(c, "/animes", after)
		return
	}
	a.renderForm(c, http.StatusOK, newFormView(valuesFrom(*m), m.Genres, nil), m.ID)
}

func (a *App) handleUpdate(c *gin.Context) {
	after := toastAfter(c)
	id := c.Param("id")
	values, genres, draft := readForm(c)

	rec, errs := a.editRules.Approve(draft)
	if !errs.OK() {
		a.hub.Notify(notify.Failure(MsgFixErrors))
		a.renderForm(c, http.StatusUnprocessableEntity, newFormView(values, genres, errs), id)
		return
	}

	rec.ID = id
	if a.catalog.Update(c.Request.Context(), id, rec) == nil {
		a.renderForm(c, http.StatusBadGateway, newFormView(values, genres, nil), id)
		return
	}
	redirect(c, "/animes/"+id, after)
}

func (a *App) handleConfirmDelete(c *gin.Context) {
	m := a.catalog.GetByID(c.Request.Context(), c.Param("id"))
	if m == nil {
		a.notFound(c)
		return
	}
	a.render(c, http.StatusOK, "confirm_delete", page{Title: "Delete " + m.Title, Body: m})
}

func (a *App) handleDelete(c *gin.Context) {
	after := toastAfter(c)
	id := c.Param("id")
	if !a.catalog.Delete(c.Request.Context(), id) {
		redirect(c, "/animes/"+id, after)
		return
	}
	redirect(c, "/animes", after)
}

// renderForm shows the create form when id is empty, the edit form otherwise.
func (a *App) renderForm(c *gin.Context, code int, f formView, id string) {
	if id == "" {
		f.Heading, f.Action, f.Cancel, f.Submit = "Add new anime", "/animes", "/animes", "Create anime"
	} else {
		f.Heading, f.Action, f.Cancel, f.Submit = "Edit anime", "/animes/"+id, "/animes/"+id, "Save changes"
	}
	a.render(c, code, "form", page{Title: f.Heading, Body: f})
}
