package presentation

import (
	"fmt"
	"strconv"

	"slow_travel/internal/domain"
)

// Lightbox is the full-screen viewer over a gallery of Count images.
// While it is open the page behind it must not scroll.
type Lightbox struct {
	Count        int
	Index        int
	IsOpen       bool
	ScrollLocked bool
}

func NewLightbox(count int) *Lightbox { return &Lightbox{Count: count} }

func (l *Lightbox) Open(i int) {
	if l.Count == 0 {
		return
	}
	l.Index = l.wrap(i)
	l.IsOpen = true
	l.ScrollLocked = true
}

func (l *Lightbox) Close() {
	l.IsOpen = false
	l.ScrollLocked = false
}

func (l *Lightbox) Next() {
	if l.Count > 0 {
		l.Index = l.wrap(l.Index + 1)
	}
}

func (l *Lightbox) Prev() {
	if l.Count > 0 {
		l.Index = l.wrap(l.Index - 1)
	}
}

func (l *Lightbox) wrap(i int) int {
	return ((i % l.Count) + l.Count) % l.Count
}

// HasNav reports whether prev/next controls and the counter are shown.
func (l *Lightbox) HasNav() bool { return l.Count > 1 }

// Gallery is a place's image grid with its lightbox, rendered server side:
// the open image comes from the ?photo= query parameter.
type Gallery struct {
	BasePath string
	Images   []domain.PlaceImage
	Lightbox *Lightbox
}

// NewGallery builds the gallery for basePath. photo is the raw ?photo= value;
// anything that is not an integer leaves the lightbox closed.
func NewGallery(basePath string, images []domain.PlaceImage, photo string) Gallery {
	g := Gallery{BasePath: basePath, Images: images, Lightbox: NewLightbox(len(images))}
	if i, err := strconv.Atoi(photo); err == nil {
		g.Lightbox.Open(i)
	}
	return g
}

func (g Gallery) Current() domain.PlaceImage {
	if !g.Lightbox.IsOpen {
		return domain.PlaceImage{}
	}
	return g.Images[g.Lightbox.Index]
}

// Alt is the image caption, or a numbered fallback.
func (g Gallery) Alt(i int) string {
	if i >= 0 && i < len(g.Images) && g.Images[i].Caption != "" {
		return g.Images[i].Caption
	}
	return fmt.Sprintf("Gallery image %d", i+1)
}

func (g Gallery) PhotoURL(i int) string { return fmt.Sprintf("%s?photo=%d", g.BasePath, i) }

func (g Gallery) NextURL() string {
	l := *g.Lightbox
	l.Next()
	return g.PhotoURL(l.Index)
}

func (g Gallery) PrevURL() string {
	l := *g.Lightbox
	l.Prev()
	return g.PhotoURL(l.Index)
}

// Counter reads "3 / 7".
func (g Gallery) Counter() string {
	return fmt.Sprintf("%d / %d", g.Lightbox.Index+1, g.Lightbox.Count)
}
