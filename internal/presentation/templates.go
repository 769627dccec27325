package presentation

import (
	"bytes"
	"embed"
	"errors"
	"fmt"
	"html/template"
	"io"
	"io/fs"
	"strings"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cast"
)

//go:embed templates/*.html
var templateFS embed.FS

//go:embed static
var staticFS embed.FS

// Static serves the embedded assets (wizard script, stylesheet).
func Static() fs.FS {
	sub, err := fs.Sub(staticFS, "static")
	if err != nil {
		panic(err)
	}
	return sub
}

// View is what every page template receives.
type View struct {
	Site    Site
	Meta    Meta
	Schemas []any
	Data    any
}

// Page names, one per templates/<name>.html.
const (
	PageHome        = "home"
	PageRegions     = "regions"
	PageRegion      = "region"
	PageDestination = "destination"
	PagePlace       = "place"
	PageDayTrips    = "day_trips"
	PageDayTrip     = "day_trip"
	PageJourneys    = "journeys"
	PageJourney     = "journey"
	PageMessage     = "message"
	PageNotFound    = "not_found"
)

var pages = []string{
	PageHome, PageRegions, PageRegion, PageDestination, PagePlace,
	PageDayTrips, PageDayTrip, PageJourneys, PageJourney, PageMessage, PageNotFound,
}

func funcMap() template.FuncMap {
	return template.FuncMap{
		"dict": func(values ...interface{}) (map[string]interface{}, error) {
			if len(values)%2 != 0 {
				return nil, errors.New("invalid dict call")
			}
			dict := make(map[string]interface{}, len(values)/2)
			for i := 0; i < len(values); i += 2 {
				key, ok := values[i].(string)
				if !ok {
					return nil, errors.New("dict keys must be strings")
				}
				dict[key] = values[i+1]
			}
			return dict, nil
		},
		"formatMoney": func(val interface{}) string {
			amount := cast.ToFloat64(val)
			return humanize.Commaf(amount)
		},
		"body":   RenderBody,
		"jsonld": JSONLD,
		"join":   strings.Join,
		"add":    func(a, b int) int { return a + b },
		"fullTitle": func(m Meta, s Site) string {
			return m.FullTitle(s)
		},
	}
}

// Renderer holds one template set per page, each parsed together with the layout.
type Renderer struct {
	pages map[string]*template.Template
}

func NewRenderer() (*Renderer, error) {
	r := &Renderer{pages: make(map[string]*template.Template, len(pages))}
	for _, p := range pages {
		t, err := template.New("layout.html").Funcs(funcMap()).ParseFS(templateFS,
			"templates/layout.html",
			"templates/partials.html",
			"templates/"+p+".html",
		)
		if err != nil {
			return nil, fmt.Errorf("parse %s: %w", p, err)
		}
		r.pages[p] = t
	}
	return r, nil
}

// Render executes page into w. Output is buffered so a template error never
// leaves a half-written page behind.
func (r *Renderer) Render(w io.Writer, page string, v View) error {
	t, ok := r.pages[page]
	if !ok {
		return fmt.Errorf("unknown page %q", page)
	}
	var buf bytes.Buffer
	if err := t.ExecuteTemplate(&buf, "layout.html", v); err != nil {
		return fmt.Errorf("render %s: %w", page, err)
	}
	_, err := buf.WriteTo(w)
	return err
}
