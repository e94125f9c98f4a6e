package main

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"go.uber.org/zap"

	"github.com/kailas-cloud/vecscope/internal/config"
	"github.com/kailas-cloud/vecscope/internal/version"
)

func TestClientOptions(t *testing.T) {
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, "t.yaml"), []byte("templates:\n  red:\n    terms: {color: red}\n"), 0o600); err != nil {
		t.Fatal(err)
	}

	cfg := config.Config{
		Database:  config.DatabaseConfig{Driver: "valkey", Addrs: []string{"a:6379", "b:6379"}},
		Templates: config.TemplatesConfig{Path: dir},
	}
	opts, err := clientOptions(&cfg, zap.NewNop())
	if err != nil {
		t.Fatalf("clientOptions: %v", err)
	}
	// driver, addrs, prefix, readiness, logger, prometheus, templates
	if len(opts) != 7 {
		t.Errorf("len(opts) = %d, want 7", len(opts))
	}
}

func TestClientOptions_Errors(t *testing.T) {
	bad := config.Config{Database: config.DatabaseConfig{Driver: "memcached", Addrs: []string{"a"}}}
	if _, err := clientOptions(&bad, zap.NewNop()); err == nil {
		t.Error("expected unknown driver error")
	}

	noAddr := config.Config{Database: config.DatabaseConfig{Driver: "redis"}}
	if _, err := clientOptions(&noAddr, zap.NewNop()); err == nil {
		t.Error("expected missing address error")
	}

	missing := config.Config{
		Database:  config.DatabaseConfig{Driver: "redis", Addrs: []string{"a"}},
		Templates: config.TemplatesConfig{Path: filepath.Join(t.TempDir(), "nope")},
	}
	if _, err := clientOptions(&missing, zap.NewNop()); err == nil {
		t.Error("expected template load error")
	}
}

func TestServe_StopsOnCancel(t *testing.T) {
	srv := &http.Server{Addr: "127.0.0.1:0", ReadHeaderTimeout: time.Second}
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- serve(ctx, srv, time.Second, zap.NewNop()) }()

	cancel()
	select {
	case err := <-done:
		if err != nil {
			t.Errorf("serve: %v", err)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("serve did not return after cancel")
	}
}

func TestServe_ListenError(t *testing.T) {
	srv := &http.Server{Addr: "127.0.0.1:99999", ReadHeaderTimeout: time.Second}
	err := serve(context.Background(), srv, time.Second, zap.NewNop())
	if err == nil || !strings.Contains(err.Error(), "http server") {
		t.Errorf("err = %v", err)
	}
}

func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	root := newRootCmd()
	root.SetOut(&out)
	root.SetErr(&out)
	root.SetArgs(args)
	err := root.ExecuteContext(context.Background())
	return out.String(), err
}

func TestVersionCmd(t *testing.T) {
	out, err := execute(t, "version")
	if err != nil {
		t.Fatal(err)
	}
	if !strings.HasPrefix(out, "vecscope ") || !strings.Contains(out, "go: ") {
		t.Errorf("out = %q", out)
	}

	out, err = execute(t, "version", "--json")
	if err != nil {
		t.Fatal(err)
	}
	var info version.Info
	if err := json.Unmarshal([]byte(out), &info); err != nil {
		t.Fatalf("decode %q: %v", out, err)
	}
	if info.Version == "" {
		t.Error("version is empty")
	}
}

const checkConfig = `
database:
  addrs: ["localhost:6379"]
templates:
  path: %s
models:
  products:
    fields:
      - {name: color, type: tag}
    scopes:
      red: {terms: {color: red}}
      by_color: {terms: {color: blue}}
`

func TestCheckCmd(t *testing.T) {
	dir := t.TempDir()
	tmpl := filepath.Join(dir, "t.yaml")
	if err := os.WriteFile(tmpl, []byte("templates:\n  by_color:\n    terms:\n      color: ${color}\n"), 0o600); err != nil {
		t.Fatal(err)
	}
	cfgPath := filepath.Join(dir, "gateway.yaml")
	if err := os.WriteFile(cfgPath, []byte(fmt.Sprintf(checkConfig, tmpl)), 0o600); err != nil {
		t.Fatal(err)
	}

	out, err := execute(t, "check", "--config", cfgPath)
	if err != nil {
		t.Fatalf("check: %v\n%s", err, out)
	}
	for _, want := range []string{
		"model products: 1 fields, scopes [by_color red]",
		"scope by_color is shadowed by template by_color",
		"templates from " + tmpl + ": [by_color]",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("output lacks %q:\n%s", want, out)
		}
	}
}

func TestCheckCmd_InvalidConfig(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bad.yaml")
	if err := os.WriteFile(path, []byte("database:\n  driver: memcached\n"), 0o600); err != nil {
		t.Fatal(err)
	}
	if _, err := execute(t, "check", "-c", path); err == nil {
		t.Error("expected validation error")
	}
}

func TestRootCmd_UnknownCommand(t *testing.T) {
	if _, err := execute(t, "frobnicate"); err == nil {
		t.Error("expected error")
	}
}
