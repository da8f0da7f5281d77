package main

import (
	"bytes"
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/thinkscotty/postcraft/internal/ai"
	"github.com/thinkscotty/postcraft/internal/config"
	"github.com/thinkscotty/postcraft/internal/models"
	"github.com/thinkscotty/postcraft/internal/server"
)

var testNow = time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

func TestRenderPackage(t *testing.T) {
	var buf bytes.Buffer
	renderPackage(&buf, models.GeneratedPackage{
		MainPost:    "Hello",
		Variants:    []string{"a", "b"},
		Hashtags:    []string{"#x", "#y"},
		ImagePrompt: "sunrise",
	})

	out := buf.String()
	for _, want := range []string{
		"Hello\n",
		"  1. a\n",
		"  2. b\n",
		"Hashtags: #x #y",
		"Image prompt: sunrise",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %q:\n%s", want, out)
		}
	}
}

func TestCheckTopic(t *testing.T) {
	tests := []struct {
		topic   string
		wantErr string
	}{
		{"AI tools", ""},
		{"abc", ""},
		{"  ab  ", "at least 3"},
		{"日本", "at least 3"},
		{"   ", "required"},
		{"", "required"},
	}

	for _, tt := range tests {
		err := checkTopic(tt.topic)
		switch {
		case tt.wantErr == "" && err != nil:
			t.Errorf("checkTopic(%q) = %v, want nil", tt.topic, err)
		case tt.wantErr != "" && (err == nil || !strings.Contains(err.Error(), tt.wantErr)):
			t.Errorf("checkTopic(%q) = %v, want error containing %q", tt.topic, err, tt.wantErr)
		}
	}
}

// writeConfig writes a config file into a temp dir and clears environment
// overrides so the file is what the command sees.
func writeConfig(t *testing.T, body string) (cfgPath, dir string) {
	t.Helper()
	t.Setenv("GEMINI_API_KEY", "")
	t.Setenv("GEMINI_BASE_URL", "")
	dir = t.TempDir()
	cfgPath = filepath.Join(dir, "config.yaml")
	if err := os.WriteFile(cfgPath, []byte(body), 0o644); err != nil {
		t.Fatal(err)
	}
	return cfgPath, dir
}

func runCLI(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	cmd := newRootCmd()
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), err
}

func TestVersionCommand(t *testing.T) {
	out, err := runCLI(t, "version")
	if err != nil {
		t.Fatalf("version: %v", err)
	}
	if !strings.HasPrefix(out, "Postcraft dev") {
		t.Errorf("version output = %q", out)
	}
}

func TestGenerateRejectsShortTopic(t *testing.T) {
	upstream := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Errorf("unexpected upstream call %s", r.URL.Path)
	}))
	defer upstream.Close()
	cfgPath, _ := writeConfig(t, "gemini:\n  api_key: k\n  base_url: "+upstream.URL+"\n")

	_, err := runCLI(t, "--config", cfgPath, "generate", "--topic", " ab ")
	if err == nil || !strings.Contains(err.Error(), "at least 3 characters") {
		t.Fatalf("generate error = %v, want topic length error", err)
	}
}

func TestModelsCommandMarksNonGenerating(t *testing.T) {
	upstream := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		io.WriteString(w, `{"models":[
			{"name":"models/embedding-001","supportedGenerationMethods":["embedContent"]},
			{"name":"models/gemini-pro","displayName":"Gemini Pro","supportedGenerationMethods":["generateContent"]}
		]}`)
	}))
	defer upstream.Close()
	cfgPath, _ := writeConfig(t, "gemini:\n  api_key: k\n  base_url: "+upstream.URL+"\n")

	out, err := runCLI(t, "--config", cfgPath, "models")
	if err != nil {
		t.Fatalf("models: %v", err)
	}

	lines := strings.Split(out, "\n")
	var embedding, gemini string
	for _, l := range lines {
		switch {
		case strings.HasPrefix(l, "models/embedding-001"):
			embedding = l
		case strings.HasPrefix(l, "models/gemini-pro"):
			gemini = l
		}
	}
	if !strings.Contains(embedding, " no ") {
		t.Errorf("embedding model should be marked as not generating: %q", embedding)
	}
	if !strings.Contains(gemini, "*") || !strings.Contains(gemini, " yes ") {
		t.Errorf("gemini model should be selected and generating: %q", gemini)
	}
	if !strings.Contains(out, "Selected: models/gemini-pro (primary)") {
		t.Errorf("output missing selection:\n%s", out)
	}
}

func TestGalleryCommands(t *testing.T) {
	cfgPath, dir := writeConfig(t, "")
	dbPath := filepath.Join(dir, "gallery.db")
	if err := os.WriteFile(cfgPath, []byte("storage:\n  path: "+dbPath+"\n"), 0o644); err != nil {
		t.Fatal(err)
	}

	out, err := runCLI(t, "--config", cfgPath, "gallery", "list")
	if err != nil {
		t.Fatalf("gallery list: %v", err)
	}
	if !strings.Contains(out, "No saved packages.") {
		t.Errorf("empty list output = %q", out)
	}

	out, err = runCLI(t, "--config", cfgPath, "gallery", "stats")
	if err != nil {
		t.Fatalf("gallery stats: %v", err)
	}
	if !strings.Contains(out, "Last generated:  N/A") {
		t.Errorf("empty stats output = %q", out)
	}

	a := &app{}
	a.cfg.Storage.Path = dbPath
	var saved bytes.Buffer
	req := models.GenerationRequest{Topic: "AI", Tone: "Casual", Platform: "Twitter"}
	gen := models.GeneratedPackage{MainPost: "hi there", Variants: []string{"v1", "v2"}, Hashtags: []string{"#ai"}}
	if err := a.save(&saved, models.NewContentPackage(req, gen, testNow)); err != nil {
		t.Fatalf("save: %v", err)
	}
	id := strings.TrimSpace(strings.TrimPrefix(saved.String(), "Saved as "))

	out, err = runCLI(t, "--config", cfgPath, "gallery", "list")
	if err != nil {
		t.Fatalf("gallery list: %v", err)
	}
	if !strings.Contains(out, id) || !strings.Contains(out, "Twitter") {
		t.Errorf("list output = %q", out)
	}

	out, err = runCLI(t, "--config", cfgPath, "gallery", "show", id)
	if err != nil {
		t.Fatalf("gallery show: %v", err)
	}
	for _, want := range []string{id, "AI / Twitter / Casual", "hi there\n", "  2. v2\n", "Hashtags: #ai"} {
		if !strings.Contains(out, want) {
			t.Errorf("show output missing %q:\n%s", want, out)
		}
	}

	out, err = runCLI(t, "--config", cfgPath, "gallery", "stats")
	if err != nil {
		t.Fatalf("gallery stats: %v", err)
	}
	for _, want := range []string{"Total posts:     1", "Platforms:       1", "Total variants:  2"} {
		if !strings.Contains(out, want) {
			t.Errorf("stats output missing %q:\n%s", want, out)
		}
	}

	if _, err := runCLI(t, "--config", cfgPath, "gallery", "remove", id); err != nil {
		t.Fatalf("gallery remove: %v", err)
	}
	if _, err := runCLI(t, "--config", cfgPath, "gallery", "remove", id); err == nil {
		t.Error("removing a missing id should fail")
	}
	if _, err := runCLI(t, "--config", cfgPath, "gallery", "show", id); err == nil {
		t.Error("showing a missing id should fail")
	}
}

func TestServeReturnsAfterShutdown(t *testing.T) {
	cfg := config.DefaultConfig()
	cfg.Server.Host = "127.0.0.1"
	cfg.Server.Port = 0
	srv := server.New(cfg, ai.NewClient(nil, ai.Options{}), "test")

	ctx, cancel := context.WithCancel(context.Background())
	errCh := make(chan error, 1)
	go func() { errCh <- serve(ctx, srv) }()
	cancel()

	select {
	case err := <-errCh:
		if err != nil {
			t.Errorf("serve() = %v, want nil", err)
		}
	case <-time.After(shutdownTimeout + 5*time.Second):
		t.Fatal("serve did not return after cancellation")
	}
}
