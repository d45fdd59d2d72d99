package web

import (
	"bytes"
	"context"
	"fmt"
	"image"
	"image/png"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/cookiejar"
	"net/http/httptest"
	"net/url"
	"strings"
	"sync"
	"testing"
	"time"

	"go.uber.org/zap"

	"storefront/internal/assets"
	"storefront/internal/auth"
	"storefront/internal/catalog"
	"storefront/internal/docstore"
	"storefront/internal/outcome"
	"storefront/internal/site"
)

type harness struct {
	t       *testing.T
	srv     *httptest.Server
	client  *http.Client
	site    *site.Store
	catalog *catalog.Store
}

func newHarness(t *testing.T, opts ...assets.Option) *harness {
	t.Helper()
	siteStore := site.NewStore(docstore.NewMemory())
	catalogStore := catalog.NewStore(docstore.NewMemory())
	s, err := New(Options{
		Site:     siteStore,
		Catalog:  catalogStore,
		Assets:   assets.New(t.TempDir(), zap.NewNop(), opts...),
		Sessions: auth.NewSessions([]byte("0123456789abcdef0123456789abcdef")),
		Logger:   zap.NewNop(),
	})
	if err != nil {
		t.Fatal(err)
	}
	srv := httptest.NewServer(s.Handler())
	t.Cleanup(srv.Close)

	jar, err := cookiejar.New(nil)
	if err != nil {
		t.Fatal(err)
	}
	client := &http.Client{
		Jar: jar,
		CheckRedirect: func(*http.Request, []*http.Request) error {
			return http.ErrUseLastResponse
		},
	}
	return &harness{t: t, srv: srv, client: client, site: siteStore, catalog: catalogStore}
}

func (h *harness) do(req *http.Request) (*http.Response, string) {
	h.t.Helper()
	resp, err := h.client.Do(req)
	if err != nil {
		h.t.Fatal(err)
	}
	defer resp.Body.Close()
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		h.t.Fatal(err)
	}
	return resp, string(body)
}

func (h *harness) get(path string) (*http.Response, string) {
	h.t.Helper()
	req, err := http.NewRequest(http.MethodGet, h.srv.URL+path, nil)
	if err != nil {
		h.t.Fatal(err)
	}
	return h.do(req)
}

func (h *harness) postForm(path string, form url.Values) (*http.Response, string) {
	h.t.Helper()
	req, err := http.NewRequest(http.MethodPost, h.srv.URL+path, strings.NewReader(form.Encode()))
	if err != nil {
		h.t.Fatal(err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	return h.do(req)
}

type upload struct {
	field, filename string
	content         []byte
}

func (h *harness) postMultipart(path string, form url.Values, files ...upload) (*http.Response, string) {
	h.t.Helper()
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	for key, values := range form {
		for _, v := range values {
			if err := mw.WriteField(key, v); err != nil {
				h.t.Fatal(err)
			}
		}
	}
	for _, f := range files {
		fw, err := mw.CreateFormFile(f.field, f.filename)
		if err != nil {
			h.t.Fatal(err)
		}
		if _, err := fw.Write(f.content); err != nil {
			h.t.Fatal(err)
		}
	}
	if err := mw.Close(); err != nil {
		h.t.Fatal(err)
	}
	req, err := http.NewRequest(http.MethodPost, h.srv.URL+path, &buf)
	if err != nil {
		h.t.Fatal(err)
	}
	req.Header.Set("Content-Type", mw.FormDataContentType())
	return h.do(req)
}

func (h *harness) login() {
	h.t.Helper()
	resp, _ := h.postForm("/admin/login", url.Values{"password": {"admin123"}})
	if resp.StatusCode != http.StatusFound || resp.Header.Get("Location") != "/admin" {
		h.t.Fatalf("login: status %d location %q", resp.StatusCode, resp.Header.Get("Location"))
	}
}

// expectRedirect checks the redirect target and returns the page it leads to.
func (h *harness) expectRedirect(resp *http.Response, to string) string {
	h.t.Helper()
	if resp.StatusCode != http.StatusFound {
		h.t.Fatalf("status = %d, want 302", resp.StatusCode)
	}
	if got := resp.Header.Get("Location"); got != to {
		h.t.Fatalf("location = %q, want %q", got, to)
	}
	_, body := h.get(to)
	return body
}

func (h *harness) products() []catalog.Product {
	h.t.Helper()
	products, err := h.catalog.Load(context.Background())
	if err != nil {
		h.t.Fatal(err)
	}
	return products
}

func (h *harness) config() site.SiteConfig {
	h.t.Helper()
	cfg, err := h.site.Load(context.Background())
	if err != nil {
		h.t.Fatal(err)
	}
	return cfg
}

func pngBytes(t *testing.T, w, h int) []byte {
	t.Helper()
	var buf bytes.Buffer
	if err := png.Encode(&buf, image.NewRGBA(image.Rect(0, 0, w, h))); err != nil {
		t.Fatal(err)
	}
	return buf.Bytes()
}

func TestStorefrontRendersDefaults(t *testing.T) {
	h := newHarness(t)
	resp, body := h.get("/")
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d", resp.StatusCode)
	}
	for _, want := range []string{"Green Valley Market", "Welcome to our shop!", "No products yet."} {
		if !strings.Contains(body, want) {
			t.Errorf("home page missing %q", want)
		}
	}
}

func TestAdminRequiresLogin(t *testing.T) {
	h := newHarness(t)
	for _, path := range []string{"/admin", "/admin/edit_product/1", "/admin/delete_page/x"} {
		resp, _ := h.get(path)
		if resp.StatusCode != http.StatusFound || resp.Header.Get("Location") != "/admin/login" {
			t.Errorf("%s: status %d location %q", path, resp.StatusCode, resp.Header.Get("Location"))
		}
	}
	resp, _ := h.postForm("/admin/add_page", url.Values{"name": {"Sneaky"}})
	h.expectRedirect(resp, "/admin/login")
	if len(h.config().Pages) != 0 {
		t.Fatal("anonymous request changed the config")
	}
}

func TestLoginWrongPassword(t *testing.T) {
	h := newHarness(t)
	resp, _ := h.postForm("/admin/login", url.Values{"password": {"nope"}})
	body := h.expectRedirect(resp, "/admin/login")
	if !strings.Contains(body, "Invalid password") {
		t.Error("missing invalid password flash")
	}
	resp, _ = h.get("/admin")
	if resp.Header.Get("Location") != "/admin/login" {
		t.Fatal("wrong password granted access")
	}
}

func TestLoginLogout(t *testing.T) {
	h := newHarness(t)
	h.login()
	resp, body := h.get("/admin")
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("dashboard status = %d", resp.StatusCode)
	}
	if !strings.Contains(body, "Logged in") {
		t.Error("missing login flash")
	}

	resp, _ = h.get("/admin/logout")
	h.expectRedirect(resp, "/")
	resp, _ = h.get("/admin")
	if resp.Header.Get("Location") != "/admin/login" {
		t.Fatal("session still authenticated after logout")
	}
}

func TestFlashShownOnce(t *testing.T) {
	h := newHarness(t)
	resp, _ := h.get("/product/42")
	body := h.expectRedirect(resp, "/")
	if !strings.Contains(body, "Product not found") {
		t.Fatal("missing flash")
	}
	_, body = h.get("/")
	if strings.Contains(body, "Product not found") {
		t.Fatal("flash shown twice")
	}
}

func TestPages(t *testing.T) {
	h := newHarness(t)
	h.login()

	resp, _ := h.postForm("/admin/add_page", url.Values{
		"name":      {"My Page"},
		"content":   {"Hello from the page"},
		"instagram": {"https://instagram.com/shop"},
	})
	if body := h.expectRedirect(resp, "/admin"); !strings.Contains(body, "Page added") {
		t.Error("missing page added flash")
	}

	page, ok := h.config().Pages["my-page"]
	if !ok {
		t.Fatal("page not stored under my-page")
	}
	if page.Title != "My Page" || page.SocialLinks.Instagram != "https://instagram.com/shop" {
		t.Fatalf("page = %+v", page)
	}

	resp, body := h.get("/page/my-page")
	if resp.StatusCode != http.StatusOK || !strings.Contains(body, "Hello from the page") {
		t.Fatalf("page view: status %d", resp.StatusCode)
	}

	resp, _ = h.get("/page/unknown")
	if body := h.expectRedirect(resp, "/"); !strings.Contains(body, "Page not found") {
		t.Error("missing page not found flash")
	}

	resp, _ = h.postForm("/admin/update_page/my-page", url.Values{"title": {"Renamed"}, "content": {"New"}})
	h.expectRedirect(resp, "/admin")
	if got := h.config().Pages["my-page"]; got.Title != "Renamed" || got.Content != "New" || got.SocialLinks.Instagram != "" {
		t.Fatalf("updated page = %+v", got)
	}

	resp, _ = h.postForm("/admin/add_page", url.Values{"name": {""}})
	if body := h.expectRedirect(resp, "/admin"); !strings.Contains(body, "Page name is required") {
		t.Error("missing page name flash")
	}

	resp, _ = h.get("/admin/delete_page/my-page")
	h.expectRedirect(resp, "/admin")
	if len(h.config().Pages) != 0 {
		t.Fatal("page not deleted")
	}
	resp, _ = h.get("/admin/delete_page/my-page")
	if body := h.expectRedirect(resp, "/admin"); !strings.Contains(body, "Page not found") {
		t.Error("missing page not found flash on second delete")
	}
}

func TestUpdateConfigMergesFields(t *testing.T) {
	h := newHarness(t)
	h.login()

	resp, _ := h.postMultipart("/admin/update_config", url.Values{
		"title":      {"Hill Farm"},
		"categories": {" Fruit , ,Veg "},
	}, upload{field: "logo", filename: "malware.exe", content: []byte("MZ")})
	if body := h.expectRedirect(resp, "/admin"); !strings.Contains(body, "Configuration updated") {
		t.Error("missing configuration flash")
	}

	cfg := h.config()
	if cfg.Title != "Hill Farm" {
		t.Errorf("title = %q", cfg.Title)
	}
	if cfg.Subtitle != site.Default().Subtitle {
		t.Errorf("subtitle changed to %q", cfg.Subtitle)
	}
	if len(cfg.Categories) != 2 || cfg.Categories[0] != "Fruit" || cfg.Categories[1] != "Veg" {
		t.Errorf("categories = %q", cfg.Categories)
	}
	if cfg.LogoPath != "" {
		t.Errorf("rejected upload stored as %q", cfg.LogoPath)
	}

	resp, _ = h.postMultipart("/admin/update_config", url.Values{},
		upload{field: "logo", filename: "logo.png", content: pngBytes(t, 40, 20)})
	h.expectRedirect(resp, "/admin")
	cfg = h.config()
	if !strings.HasPrefix(cfg.LogoPath, "logo_") || !strings.HasSuffix(cfg.LogoPath, "_logo.png") {
		t.Fatalf("logo path = %q", cfg.LogoPath)
	}
	if cfg.Title != "Hill Farm" {
		t.Errorf("absent title overwrote stored one: %q", cfg.Title)
	}

	resp, _ = h.get("/uploads/" + cfg.LogoPath)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("uploaded logo status = %d", resp.StatusCode)
	}
}

func TestProductLifecycle(t *testing.T) {
	h := newHarness(t)
	h.login()

	resp, _ := h.postMultipart("/admin/add_product", url.Values{
		"name":     {"Lavender"},
		"category": {"Flowers"},
		"quantity": {"1", "", "10"},
		"unit":     {"bunch", "bunch", "bunch"},
		"price":    {"4.5", "3", "40"},
		"tiktok":   {"https://tiktok.com/@farm"},
	}, upload{field: "image", filename: "lavender.png", content: pngBytes(t, 1600, 600)})
	if body := h.expectRedirect(resp, "/admin"); !strings.Contains(body, "Product added") {
		t.Error("missing product added flash")
	}

	products := h.products()
	if len(products) != 1 {
		t.Fatalf("products = %d", len(products))
	}
	p := products[0]
	if p.ID != 1 || p.Name != "Lavender" || p.SocialLinks.TikTok != "https://tiktok.com/@farm" {
		t.Fatalf("product = %+v", p)
	}
	if len(p.Prices) != 2 || p.Prices[0].Price != 4.5 || p.Prices[1].Quantity != "10" {
		t.Fatalf("prices = %+v", p.Prices)
	}
	if !strings.HasPrefix(p.Image, "product_") {
		t.Fatalf("image = %q", p.Image)
	}

	resp, body := h.get("/product/1")
	if resp.StatusCode != http.StatusOK || !strings.Contains(body, "Lavender") {
		t.Fatalf("product page status %d", resp.StatusCode)
	}

	resp, _ = h.postForm("/admin/update_product/1", url.Values{
		"name":     {"Lavender bunch"},
		"category": {"Flowers"},
		"quantity": {"2"},
		"unit":     {"bunch"},
		"price":    {"8"},
	})
	if body := h.expectRedirect(resp, "/admin"); !strings.Contains(body, "Product updated") {
		t.Error("missing product updated flash")
	}
	p = h.products()[0]
	if p.Name != "Lavender bunch" || len(p.Prices) != 1 || p.Prices[0].Price != 8 {
		t.Fatalf("updated product = %+v", p)
	}
	if !strings.HasPrefix(p.Image, "product_") {
		t.Errorf("image dropped on update without upload: %q", p.Image)
	}
	if p.SocialLinks.TikTok != "" {
		t.Errorf("social links not replaced: %+v", p.SocialLinks)
	}

	resp, _ = h.postForm("/admin/update_product/1", url.Values{
		"name": {"Broken"}, "quantity": {"1"}, "unit": {"g"}, "price": {"cheap"},
	})
	if resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("malformed price status = %d", resp.StatusCode)
	}
	if h.products()[0].Name != "Lavender bunch" {
		t.Fatal("malformed price update was persisted")
	}

	resp, _ = h.get("/admin/delete_product/99")
	if body := h.expectRedirect(resp, "/admin"); !strings.Contains(body, "Product deleted") {
		t.Error("missing delete flash for unknown id")
	}
	if len(h.products()) != 1 {
		t.Fatal("deleting an unknown id changed the list")
	}

	resp, _ = h.get("/admin/delete_product/1")
	h.expectRedirect(resp, "/admin")
	if len(h.products()) != 0 {
		t.Fatal("product not deleted")
	}

	resp, _ = h.postForm("/admin/add_product", url.Values{"name": {"Rose"}, "category": {"Flowers"}})
	h.expectRedirect(resp, "/admin")
	if got := h.products(); len(got) != 1 || got[0].ID != 1 {
		t.Fatalf("id after deleting everything = %+v", got)
	}
}

func TestAddProductRejections(t *testing.T) {
	h := newHarness(t)
	h.login()

	resp, _ := h.postForm("/admin/add_product", url.Values{
		"name": {"Oil"}, "quantity": {"1"}, "unit": {"ml"}, "price": {"1,5"},
	})
	if resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("malformed price status = %d", resp.StatusCode)
	}

	for _, bad := range []string{"NaN", "Inf", "-inf"} {
		resp, _ = h.postForm("/admin/add_product", url.Values{
			"name": {"Oil"}, "quantity": {"1"}, "unit": {"ml"}, "price": {bad},
		})
		if resp.StatusCode != http.StatusBadRequest {
			t.Fatalf("price %q status = %d, want 400", bad, resp.StatusCode)
		}
	}

	resp, _ = h.postForm("/admin/add_product", url.Values{"category": {"Oils"}})
	h.expectRedirect(resp, "/admin")
	if len(h.products()) != 0 {
		t.Fatalf("products = %+v", h.products())
	}
}

func TestEditUnknownProduct(t *testing.T) {
	h := newHarness(t)
	h.login()
	resp, _ := h.get("/admin/edit_product/7")
	if body := h.expectRedirect(resp, "/admin"); !strings.Contains(body, "Product not found") {
		t.Error("missing flash")
	}
	resp, _ = h.postForm("/admin/update_product/abc", url.Values{"name": {"x"}})
	if body := h.expectRedirect(resp, "/admin"); !strings.Contains(body, "Product not found") {
		t.Error("missing flash for malformed id")
	}
}

func TestCustomSocialLinks(t *testing.T) {
	h := newHarness(t)
	h.login()

	resp, _ := h.postForm("/admin/add_social_link", url.Values{"name": {"Telegram"}, "url": {"https://t.me/farm"}})
	h.expectRedirect(resp, "/admin")
	resp, _ = h.postForm("/admin/add_social_link", url.Values{"name": {"Empty"}})
	if body := h.expectRedirect(resp, "/admin"); !strings.Contains(body, "Name and URL are required") {
		t.Error("missing required flash")
	}

	resp, body := h.get("/admin/edit_social_link/0")
	if resp.StatusCode != http.StatusOK || !strings.Contains(body, "https://t.me/farm") {
		t.Fatalf("edit form status %d", resp.StatusCode)
	}
	resp, _ = h.postForm("/admin/edit_social_link/0", url.Values{"name": {"Signal"}, "url": {"https://signal.me/farm"}})
	h.expectRedirect(resp, "/admin")
	links := h.config().CustomSocialLinks
	if len(links) != 1 || links[0].Name != "Signal" {
		t.Fatalf("links = %+v", links)
	}

	for _, path := range []string{"/admin/remove_social_link/5", "/admin/remove_social_link/-1", "/admin/edit_social_link/5"} {
		resp, _ = h.get(path)
		if body := h.expectRedirect(resp, "/admin"); !strings.Contains(body, "Social link not found") {
			t.Errorf("%s: missing not found flash", path)
		}
	}
	if len(h.config().CustomSocialLinks) != 1 {
		t.Fatal("out of range index changed the links")
	}

	resp, _ = h.get("/admin/remove_social_link/0")
	h.expectRedirect(resp, "/admin")
	if len(h.config().CustomSocialLinks) != 0 {
		t.Fatal("link not removed")
	}
}

func TestPathIDsAreDecimal(t *testing.T) {
	h := newHarness(t)
	products := make([]catalog.Product, 0, 10)
	for i := 1; i <= 10; i++ {
		products = append(products, catalog.Product{ID: i, Name: fmt.Sprintf("item-%c", 'A'+i-1)})
	}
	if err := h.catalog.Save(context.Background(), products); err != nil {
		t.Fatal(err)
	}

	resp, body := h.get("/product/010")
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d", resp.StatusCode)
	}
	if !strings.Contains(body, "item-J") || strings.Contains(body, "item-H") {
		t.Fatal("/product/010 did not resolve to id 10")
	}

	for _, path := range []string{"/product/0x2", "/product/+2", "/product/-1", "/product/2.0"} {
		resp, _ = h.get(path)
		if body := h.expectRedirect(resp, "/"); !strings.Contains(body, "Product not found") {
			t.Errorf("%s: missing not found flash", path)
		}
	}

	h.login()
	resp, _ = h.get("/admin/delete_product/010")
	h.expectRedirect(resp, "/admin")
	remaining := h.products()
	if len(remaining) != 9 {
		t.Fatalf("products = %d, want 9", len(remaining))
	}
	if _, err := catalog.Find(remaining, 8); err != nil {
		t.Fatal("deleting 010 removed id 8")
	}
	if _, err := catalog.Find(remaining, 10); err == nil {
		t.Fatal("id 10 still present")
	}

	resp, _ = h.postForm("/admin/add_social_link", url.Values{"name": {"A"}, "url": {"https://a.example"}})
	h.expectRedirect(resp, "/admin")
	resp, _ = h.get("/admin/remove_social_link/0x0")
	if body := h.expectRedirect(resp, "/admin"); !strings.Contains(body, "Social link not found") {
		t.Error("hex index was accepted")
	}
	if len(h.config().CustomSocialLinks) != 1 {
		t.Fatal("hex index removed a link")
	}
}

// lockCheckMirror records uploads and whether the catalog could be
// locked while an upload was in progress.
type lockCheckMirror struct {
	catalog *catalog.Store

	mu        sync.Mutex
	uploaded  []string
	destroyed []string
	blocked   bool
}

func (m *lockCheckMirror) Upload(ctx context.Context, path, publicID string) (string, error) {
	done := make(chan struct{})
	go func() {
		defer close(done)
		_, _ = m.catalog.Update(context.Background(), func(p []catalog.Product) ([]catalog.Product, outcome.Outcome, error) {
			return p, outcome.Skipped, nil
		})
	}()
	blocked := false
	select {
	case <-done:
	case <-time.After(2 * time.Second):
		blocked = true
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.blocked = m.blocked || blocked
	m.uploaded = append(m.uploaded, publicID)
	return "https://cdn.example/" + publicID, nil
}

func (m *lockCheckMirror) Destroy(ctx context.Context, publicID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.destroyed = append(m.destroyed, publicID)
	return nil
}

func TestUpdateProductUploadsOutsideCatalogLock(t *testing.T) {
	mirror := &lockCheckMirror{}
	h := newHarness(t, assets.WithMirror(mirror))
	mirror.catalog = h.catalog
	h.login()

	form := url.Values{"name": {"Rose"}, "category": {"Flowers"}}
	resp, _ := h.postMultipart("/admin/add_product", form,
		upload{field: "image", filename: "rose.png", content: pngBytes(t, 10, 10)})
	h.expectRedirect(resp, "/admin")
	first := h.products()[0]
	if first.ImagePublicID == "" {
		t.Fatal("image was not mirrored")
	}

	resp, _ = h.postMultipart("/admin/update_product/1", form,
		upload{field: "image", filename: "rose2.png", content: pngBytes(t, 10, 10)})
	h.expectRedirect(resp, "/admin")
	updated := h.products()[0]

	mirror.mu.Lock()
	defer mirror.mu.Unlock()
	if mirror.blocked {
		t.Fatal("catalog was locked during a mirror upload")
	}
	if len(mirror.uploaded) != 2 {
		t.Fatalf("uploads = %q", mirror.uploaded)
	}
	if updated.ImagePublicID != mirror.uploaded[1] || updated.ImageCDNURL != "https://cdn.example/"+mirror.uploaded[1] {
		t.Fatalf("updated product = %+v", updated)
	}
	if len(mirror.destroyed) != 1 || mirror.destroyed[0] != first.ImagePublicID {
		t.Fatalf("destroyed = %q, want %q", mirror.destroyed, first.ImagePublicID)
	}
}

func TestUpdateProductBadPriceWritesNoFile(t *testing.T) {
	mirror := &lockCheckMirror{}
	h := newHarness(t, assets.WithMirror(mirror))
	mirror.catalog = h.catalog
	h.login()

	resp, _ := h.postForm("/admin/add_product", url.Values{"name": {"Rose"}})
	h.expectRedirect(resp, "/admin")
	resp, _ = h.postMultipart("/admin/update_product/1", url.Values{
		"name": {"Rose"}, "quantity": {"1"}, "unit": {"g"}, "price": {"NaN"},
	}, upload{field: "image", filename: "rose.png", content: pngBytes(t, 10, 10)})
	if resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", resp.StatusCode)
	}
	mirror.mu.Lock()
	defer mirror.mu.Unlock()
	if len(mirror.uploaded) != 0 {
		t.Fatalf("uploads = %q, want none", mirror.uploaded)
	}
}
