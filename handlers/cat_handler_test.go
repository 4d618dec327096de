package handlers

import (
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/goccy/go-json"
	"go.uber.org/mock/gomock"
	"go.uber.org/zap/zaptest"

	m "github.com/ChrisTheAbysswalker/nekopage/models"
	s "github.com/ChrisTheAbysswalker/nekopage/services"
	"github.com/ChrisTheAbysswalker/nekopage/services/mocks"
)

func init() {
	gin.SetMode(gin.TestMode)
}

type fakeSource struct {
	*mocks.MockCatImageFetcher
	fetches int64
}

func (f fakeSource) FetchCount() int64 { return f.fetches }

func newTestRouter(t *testing.T) (*gin.Engine, *mocks.MockCatImageFetcher) {
	t.Helper()
	ctrl := gomock.NewController(t)
	fetcher := mocks.NewMockCatImageFetcher(ctrl)
	logger := zaptest.NewLogger(t)
	handler := NewCatHandler(fakeSource{MockCatImageFetcher: fetcher, fetches: 7}, logger)
	return NewRouter(handler, logger), fetcher
}

func catImage(u string) m.CatImage {
	return m.CatImage{ID: "bpc", URL: u, Width: "1", Height: "1"}
}

func TestIndex_RendersServerPickedImage(t *testing.T) {
	router, fetcher := newTestRouter(t)
	fetcher.EXPECT().FetchCatImage(gomock.Any()).
		Return(catImage("https://cdn2.thecatapi.com/images/bpc.jpg"), nil).
		Times(1)

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/", nil))

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", w.Code)
	}
	if ct := w.Header().Get("Content-Type"); !strings.HasPrefix(ct, "text/html") {
		t.Fatalf("Content-Type = %q, want text/html", ct)
	}
	if !strings.Contains(w.Body.String(), `src="https://cdn2.thecatapi.com/images/bpc.jpg"`) {
		t.Fatalf("body missing image src:\n%s", w.Body.String())
	}
	if w.Header().Get(requestIDHeader) == "" {
		t.Fatalf("%s header missing", requestIDHeader)
	}
}

func TestIndex_FetchFailureIsGenericServerError(t *testing.T) {
	router, fetcher := newTestRouter(t)
	fetcher.EXPECT().FetchCatImage(gomock.Any()).Return(m.CatImage{}, s.ErrNoImages)

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/", nil))

	if w.Code != http.StatusInternalServerError {
		t.Fatalf("status = %d, want 500", w.Code)
	}
	if strings.Contains(w.Body.String(), "<img") {
		t.Fatalf("body = %q, want no page markup", w.Body.String())
	}
}

func TestIndex_EveryRequestFetchesAgain(t *testing.T) {
	router, fetcher := newTestRouter(t)
	gomock.InOrder(
		fetcher.EXPECT().FetchCatImage(gomock.Any()).Return(catImage("https://example.com/1.jpg"), nil),
		fetcher.EXPECT().FetchCatImage(gomock.Any()).Return(catImage("https://example.com/2.jpg"), nil),
	)

	for i, want := range []string{"1.jpg", "2.jpg"} {
		w := httptest.NewRecorder()
		router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/", nil))
		if !strings.Contains(w.Body.String(), want) {
			t.Fatalf("request %d body missing %s", i, want)
		}
	}
}

func postNext(router *gin.Engine, current string) *httptest.ResponseRecorder {
	form := url.Values{"current": {current}}
	req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func TestNextImage_SwapsImage(t *testing.T) {
	router, fetcher := newTestRouter(t)
	fetcher.EXPECT().FetchCatImage(gomock.Any()).Return(catImage("https://example.com/x.jpg"), nil).Times(1)

	w := postNext(router, "https://example.com/a.jpg")

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", w.Code)
	}
	if !strings.Contains(w.Body.String(), `src="https://example.com/x.jpg"`) {
		t.Fatalf("body missing new image:\n%s", w.Body.String())
	}
}

func TestNextImage_FailureKeepsCurrentImage(t *testing.T) {
	router, fetcher := newTestRouter(t)
	fetcher.EXPECT().FetchCatImage(gomock.Any()).Return(m.CatImage{}, errors.New("offline"))

	w := postNext(router, "https://example.com/a.jpg")

	if w.Code != http.StatusBadGateway {
		t.Fatalf("status = %d, want 502", w.Code)
	}
	if !strings.Contains(w.Body.String(), `src="https://example.com/a.jpg"`) {
		t.Fatalf("body lost the current image:\n%s", w.Body.String())
	}
}

func TestGetCatImage_ReturnsURL(t *testing.T) {
	router, fetcher := newTestRouter(t)
	fetcher.EXPECT().FetchCatImage(gomock.Any()).Return(catImage("https://example.com/x.jpg"), nil).Times(1)

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/cat-image", nil))

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", w.Code)
	}
	var body m.CatImageResponse
	if err := json.Unmarshal(w.Body.Bytes(), &body); err != nil {
		t.Fatalf("Unmarshal: %v", err)
	}
	if body.URL != "https://example.com/x.jpg" {
		t.Fatalf("url = %q, want x.jpg", body.URL)
	}
	if w.Header().Get("Access-Control-Allow-Origin") != "" {
		// Same-origin request: cors only answers when an Origin is sent.
		t.Fatalf("unexpected CORS header on same-origin request")
	}
}

func TestGetCatImage_MapsUpstreamErrors(t *testing.T) {
	tests := []struct {
		err  error
		code string
	}{
		{err: s.ErrNoImages, code: "no_images_available"},
		{err: fmt.Errorf("%w: missing url", s.ErrInvalidImage), code: "invalid_upstream_image"},
		{err: fmt.Errorf("%w: answered 503", s.ErrUpstreamStatus), code: "upstream_unavailable"},
		{err: errors.New("execute request: refused"), code: "upstream_unavailable"},
	}

	for _, tt := range tests {
		t.Run(tt.code, func(t *testing.T) {
			router, fetcher := newTestRouter(t)
			fetcher.EXPECT().FetchCatImage(gomock.Any()).Return(m.CatImage{}, tt.err)

			w := httptest.NewRecorder()
			router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/cat-image", nil))

			if w.Code != http.StatusBadGateway {
				t.Fatalf("status = %d, want 502", w.Code)
			}
			var body m.ErrorResponse
			if err := json.Unmarshal(w.Body.Bytes(), &body); err != nil {
				t.Fatalf("Unmarshal: %v", err)
			}
			if body.Error != tt.code {
				t.Fatalf("error code = %q, want %q", body.Error, tt.code)
			}
		})
	}
}

func TestGetCatImage_CORS(t *testing.T) {
	router, fetcher := newTestRouter(t)
	fetcher.EXPECT().FetchCatImage(gomock.Any()).Return(catImage("https://example.com/x.jpg"), nil)

	req := httptest.NewRequest(http.MethodGet, "/api/cat-image", nil)
	req.Header.Set("Origin", "https://elsewhere.example")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	if got := w.Header().Get("Access-Control-Allow-Origin"); got != "*" {
		t.Fatalf("Access-Control-Allow-Origin = %q, want *", got)
	}
}

func TestHealth(t *testing.T) {
	router, _ := newTestRouter(t)

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/health", nil))

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", w.Code)
	}
	var body m.HealthResponse
	if err := json.Unmarshal(w.Body.Bytes(), &body); err != nil {
		t.Fatalf("Unmarshal: %v", err)
	}
	if body.Status != "healthy" || body.Fetches != 7 || body.Timestamp == 0 {
		t.Fatalf("health = %#v, want healthy with 7 fetches", body)
	}
}

func TestRouter_RegistersListedRoutes(t *testing.T) {
	router, _ := newTestRouter(t)

	registered := make(map[string]bool)
	for _, r := range router.Routes() {
		registered[r.Method+" "+r.Path] = true
	}
	for _, r := range Routes {
		if !registered[r.Method+" "+r.Path] {
			t.Fatalf("route %s %s listed but not registered", r.Method, r.Path)
		}
	}
}

func TestMetricsEndpoint(t *testing.T) {
	router, _ := newTestRouter(t)

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/metrics", nil))

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", w.Code)
	}
	if !strings.Contains(w.Body.String(), "nekopage_cat_api_request_duration_seconds") {
		t.Fatalf("metrics output missing cat api histogram")
	}
}
