package http

import (
	"errors"
	"net/http"

	c "github.com/d0ngw/viewcount/common"
	"github.com/d0ngw/viewcount/views"
)

// ViewController 浏览计数的http接口
type ViewController struct {
	BaseController
	Views *views.Service
}

// NewViewController create ViewController
func NewViewController(svc *views.Service) *ViewController {
	return &ViewController{
		BaseController: BaseController{
			Name: "views",
			Path: "/",
			PatternMethods: map[string]string{
				"POST /views/{id}": "Incr",
				"GET /views/{id}":  "Read",
				"POST /views/":     "Incr",
				"GET /views/":      "Read",
				"GET /healthz":     "Healthz",
			},
		},
		Views: svc,
	}
}

// GetHandlers implements Controller
func (p *ViewController) GetHandlers() (map[string]http.HandlerFunc, error) {
	return ReflectHandlers(p)
}

// Incr POST /views/{id}
func (p *ViewController) Incr(w http.ResponseWriter, r *http.Request) {
	total, err := p.Views.Increment(r.Context(), r.PathValue("id"))
	if err != nil {
		renderViewError(w, r, err)
		return
	}
	RenderJSON(w, views.Resp{Total: views.NewTotal(total)})
}

// Read GET /views/{id}
func (p *ViewController) Read(w http.ResponseWriter, r *http.Request) {
	total, err := p.Views.Read(r.Context(), r.PathValue("id"))
	if err != nil {
		renderViewError(w, r, err)
		return
	}
	RenderJSON(w, views.Resp{Total: total})
}

// Healthz GET /healthz
func (p *ViewController) Healthz(w http.ResponseWriter, r *http.Request) {
	RenderText(w, "ok")
}

func renderViewError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, views.ErrBadRequest):
		RenderError(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, views.ErrStoreUnavailable):
		c.Errorf("%s %s fail,err:%v", r.Method, r.URL.Path, err)
		RenderError(w, http.StatusServiceUnavailable, "store unavailable")
	default:
		c.Errorf("%s %s fail,err:%v", r.Method, r.URL.Path, err)
		RenderError(w, http.StatusInternalServerError, "internal error")
	}
}
