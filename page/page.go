package page

import (
	"context"
	"embed"
	"fmt"
	"html/template"
	"io"
	"sync"

	s "github.com/ChrisTheAbysswalker/nekopage/services"
)

const (
	templateName  = "index.html"
	ButtonCaption = "今日の猫さん🐱"

	title = "nekopage"
)

//go:embed templates/*.html
var templateFS embed.FS

var tmpl = template.Must(template.ParseFS(templateFS, "templates/*.html"))

type Props struct {
	InitialCatImageURL string `json:"initialCatImageUrl"`
}

type view struct {
	Title         string
	ButtonCaption string
	CatImageURL   string
}

// LoadProps runs once per page request, before any markup is produced.
func LoadProps(ctx context.Context, fetcher s.CatImageFetcher) (Props, error) {
	image, err := fetcher.FetchCatImage(ctx)
	if err != nil {
		return Props{}, fmt.Errorf("load initial cat image: %w", err)
	}
	return Props{InitialCatImageURL: image.URL}, nil
}

// Component holds the URL currently on display. Concurrent clicks race
// freely; whichever fetch resolves last is what stays on screen.
type Component struct {
	fetcher s.CatImageFetcher

	mu          sync.Mutex
	catImageURL string
}

func New(props Props, fetcher s.CatImageFetcher) *Component {
	return &Component{
		fetcher:     fetcher,
		catImageURL: props.InitialCatImageURL,
	}
}

func (c *Component) ImageURL() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.catImageURL
}

// OnClick fetches a new image and puts it on display. A failed fetch leaves
// the current image in place.
func (c *Component) OnClick(ctx context.Context) error {
	image, err := c.fetcher.FetchCatImage(ctx)
	if err != nil {
		return err
	}

	c.mu.Lock()
	c.catImageURL = image.URL
	c.mu.Unlock()
	return nil
}

func (c *Component) view() view {
	return view{
		Title:         title,
		ButtonCaption: ButtonCaption,
		CatImageURL:   c.ImageURL(),
	}
}

// Render writes the whole page for the current display state.
func (c *Component) Render(w io.Writer) error {
	return tmpl.ExecuteTemplate(w, templateName, c.view())
}
