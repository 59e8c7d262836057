package web

import (
	"embed"
	"html/template"
	"net/http"
	"slices"

	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/render"

	"animemanager/pkg/models"
)

//go:embed templates/*.tmpl
var templateFS embed.FS

var funcs = template.FuncMap{
	"statusLabel": func(s models.Status) string { return s.Label() },
	"contains":    func(list []string, v string) bool { return slices.Contains(list, v) },
}

// views holds one template set per page, each parsed together with the layout so
// every page can define its own "content" block.
type views map[string]*template.Template

var pageFiles = []string{"home", "list", "detail", "form", "confirm_delete", "notfound"}

func loadViews() (views, error) {
	v := views{}
	for _, name := range pageFiles {
		t, err := template.New(name).Funcs(funcs).ParseFS(templateFS,
			"templates/layout.tmpl", "templates/"+name+".tmpl")
		if err != nil {
			return nil, err
		}
		v[name] = t
	}
	return v, nil
}

// page is the data every template receives.
type page struct {
	Title      string
	ToastAfter uint64
	Refresh    int // seconds, 0 disables the meta refresh
	Body       any
}

func (a *App) render(c *gin.Context, code int, name string, p page) {
	p.ToastAfter = toastAfter(c)
	c.Render(code, render.HTML{Template: a.views[name], Name: "layout", Data: p})
}

func (a *App) notFound(c *gin.Context) {
	a.render(c, http.StatusNotFound, "notfound", page{Title: "Not found"})
}
