package viz

import (
	"embed"
	"encoding/json"
	"fmt"
	"html/template"
	"io"
	"os"
	"path/filepath"
	"sync"
)

//go:embed templates/*
var templateFS embed.FS

var pageTemplate = template.Must(template.ParseFS(templateFS, "templates/page.html.tmpl"))

// PageFile is the file HTMLPage writes.
const PageFile = "index.html"

// Page is the data rendered into the HTML page.
type Page struct {
	Title string
	// Live enables the training form and fetches chart data from the API.
	Live        bool
	Targets     []string
	Activations []string
	Loss        *LossSeries
	Surfaces    []SurfaceSeries
}

type pageView struct {
	Page
	LossJSON    template.JS
	SurfaceJSON template.JS
}

// RenderPage writes p as a self-contained HTML document.
func RenderPage(w io.Writer, p Page) error {
	view := pageView{Page: p, LossJSON: "null", SurfaceJSON: "null"}
	if p.Loss != nil {
		b, err := json.Marshal(LossChart(*p.Loss))
		if err != nil {
			return err
		}
		view.LossJSON = template.JS(b)
	}
	if p.Surfaces != nil {
		b, err := json.Marshal(SurfacesChart(p.Surfaces))
		if err != nil {
			return err
		}
		view.SurfaceJSON = template.JS(b)
	}
	return pageTemplate.Execute(w, view)
}

// HTMLPage re-renders a static page into Dir whenever either chart changes.
type HTMLPage struct {
	Dir   string
	Title string

	mu  sync.Mutex
	mem Memory
}

// CreateLoss implements LossSink.
func (h *HTMLPage) CreateLoss(s LossSeries) error {
	h.mu.Lock()
	defer h.mu.Unlock()
	_ = h.mem.CreateLoss(s)
	return h.render()
}

// ReplaceLoss implements LossSink.
func (h *HTMLPage) ReplaceLoss(s LossSeries) error {
	h.mu.Lock()
	defer h.mu.Unlock()
	_ = h.mem.ReplaceLoss(s)
	return h.render()
}

// RenderSurfaces implements SurfaceSink.
func (h *HTMLPage) RenderSurfaces(series []SurfaceSeries) error {
	h.mu.Lock()
	defer h.mu.Unlock()
	_ = h.mem.RenderSurfaces(series)
	return h.render()
}

func (h *HTMLPage) render() error {
	p := Page{Title: h.Title}
	if loss, ok := h.mem.Loss(); ok {
		p.Loss = &loss
	}
	if surfaces, ok := h.mem.Surfaces(); ok {
		p.Surfaces = surfaces
	}
	if err := os.MkdirAll(h.Dir, 0o755); err != nil {
		return fmt.Errorf("create page dir: %w", err)
	}
	f, err := os.Create(filepath.Join(h.Dir, PageFile))
	if err != nil {
		return err
	}
	if err := RenderPage(f, p); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}
