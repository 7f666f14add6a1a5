package service

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"
)

type imgflipStub struct {
	body string
	form url.Values
}

func (s *imgflipStub) server(t *testing.T) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost || r.URL.Path != "/caption_image" {
			t.Errorf("unexpected request %s %s", r.Method, r.URL.Path)
		}
		if err := r.ParseForm(); err != nil {
			t.Errorf("ParseForm() error = %v", err)
		}
		s.form = r.PostForm
		w.Header().Set("Content-Type", "application/json")
		io.WriteString(w, s.body)
	}))
	t.Cleanup(srv.Close)
	return srv
}

func newTestRenderer(baseURL string) *ImgflipRenderer {
	return NewImgflipRenderer(&ImgflipConfig{
		BaseURL:  baseURL + "/",
		Username: "meme-bot",
		Password: "hunter22",
		Timeout:  5 * time.Second,
	})
}

func TestImgflipRenderer_Render(t *testing.T) {
	stub := &imgflipStub{body: `{"success": true, "data": {"url": "https://i.imgflip.com/abc.jpg", "page_url": "https://imgflip.com/i/abc"}}`}
	renderer := newTestRenderer(stub.server(t).URL)

	got, err := renderer.Render(context.Background(), RenderRequest{TemplateID: "181913649", Text0: "MONDAY", Text1: "SEND HELP"})
	if err != nil {
		t.Fatalf("Render() error = %v", err)
	}
	if got != "https://i.imgflip.com/abc.jpg" {
		t.Errorf("Render() = %q", got)
	}

	want := map[string]string{
		"template_id": "181913649",
		"username":    "meme-bot",
		"password":    "hunter22",
		"text0":       "MONDAY",
		"text1":       "SEND HELP",
	}
	for key, value := range want {
		if stub.form.Get(key) != value {
			t.Errorf("form[%s] = %q, want %q", key, stub.form.Get(key), value)
		}
	}
}

func TestImgflipRenderer_RenderFailure(t *testing.T) {
	stub := &imgflipStub{body: `{"success": false, "error_message": "Invalid username/password"}`}
	renderer := newTestRenderer(stub.server(t).URL)

	_, err := renderer.Render(context.Background(), RenderRequest{TemplateID: "1"})
	if err == nil {
		t.Fatal("Render() expected error")
	}
	if !strings.Contains(err.Error(), "Invalid username/password") {
		t.Errorf("Render() error = %v, want imgflip message", err)
	}
}
