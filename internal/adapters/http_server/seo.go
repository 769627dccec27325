package httpserver

import (
	"encoding/xml"
	"net/http"
	"strconv"

	"github.com/rs/zerolog/log"

	"slow_travel/internal/app"
)

type urlset struct {
	XMLName xml.Name     `xml:"urlset"`
	XMLNS   string       `xml:"xmlns,attr"`
	URLs    []sitemapURL `xml:"url"`
}

type sitemapURL struct {
	Loc        string `xml:"loc"`
	LastMod    string `xml:"lastmod"`
	ChangeFreq string `xml:"changefreq"`
	Priority   string `xml:"priority"`
}

func toSitemapURL(e app.SitemapEntry) sitemapURL {
	return sitemapURL{
		Loc:        e.Loc,
		LastMod:    e.LastMod.UTC().Format("2006-01-02"),
		ChangeFreq: string(e.ChangeFreq),
		Priority:   strconv.FormatFloat(e.Priority, 'f', 1, 64),
	}
}

func (h *Handlers) sitemap(w http.ResponseWriter, r *http.Request) {
	entries := h.Sitemap.Entries(r.Context())
	set := urlset{XMLNS: "http://www.sitemaps.org/schemas/sitemap/0.9", URLs: make([]sitemapURL, 0, len(entries))}
	for _, e := range entries {
		set.URLs = append(set.URLs, toSitemapURL(e))
	}
	body, err := xml.MarshalIndent(set, "", "  ")
	if err != nil {
		log.Error().Err(err).Msg("encode sitemap failed")
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/xml; charset=utf-8")
	w.Header().Set("Cache-Control", "public, max-age=3600")
	_, _ = w.Write([]byte(xml.Header))
	if _, err := w.Write(body); err != nil {
		log.Error().Err(err).Msg("write sitemap failed")
	}
}

func (h *Handlers) robots(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	_, _ = w.Write([]byte(h.Sitemap.RobotsTxt()))
}
