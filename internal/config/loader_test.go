package config

import (
	"os"
	"path/filepath"
	"testing"
)

func writeTempFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	p := filepath.Join(dir, name)
	if err := os.WriteFile(p, []byte(content), 0o644); err != nil {
		t.Fatalf("write %s: %v", name, err)
	}
	return p
}

func TestLoadYAML(t *testing.T) {
	d := t.TempDir()
	p := writeTempFile(t, d, "cfg.yaml", "addr: :9999\nenv: development\nmongo_uri: mongodb://db:27017\nmongo_db: users\nretry_backoff_ms: 500\nallow_buffering: false\ncors_origins:\n  - https://a.example\n")
	cfg, err := Load(p)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.Addr != ":9999" || cfg.Env != "development" || cfg.MongoURI != "mongodb://db:27017" || cfg.MongoDB != "users" || cfg.RetryBackoffMS != 500 {
		t.Fatalf("unexpected cfg: %+v", cfg)
	}
	if cfg.AllowBuffering == nil || *cfg.AllowBuffering {
		t.Fatalf("allow_buffering=%v", cfg.AllowBuffering)
	}
	if len(cfg.CORSOrigins) != 1 || cfg.CORSOrigins[0] != "https://a.example" {
		t.Fatalf("cors_origins=%v", cfg.CORSOrigins)
	}
}

func TestLoadJSON(t *testing.T) {
	d := t.TempDir()
	p := writeTempFile(t, d, "cfg.json", `{"addr":":7070","mongo_uri":"mongodb://x","max_pool_size":20,"address_family":6,"token":"t"}`)
	cfg, err := Load(p)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.Addr != ":7070" || cfg.MongoURI != "mongodb://x" || cfg.MaxPoolSize != 20 || cfg.AddressFamily != 6 || cfg.Token != "t" {
		t.Fatalf("unexpected cfg: %+v", cfg)
	}
}

func TestLoadTOML(t *testing.T) {
	d := t.TempDir()
	p := writeTempFile(t, d, "cfg.toml", "addr=\":8081\"\nmongo_uri=\"mongodb://y\"\nconnect_timeout_ms=2500\nbcrypt_cost=12\n")
	cfg, err := Load(p)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.Addr != ":8081" || cfg.MongoURI != "mongodb://y" || cfg.ConnectTimeoutMS != 2500 || cfg.BcryptCost != 12 {
		t.Fatalf("unexpected cfg: %+v", cfg)
	}
}

func TestLoadExpandsHome(t *testing.T) {
	home := t.TempDir()
	t.Setenv("HOME", home)
	t.Setenv("USERPROFILE", home)
	writeTempFile(t, home, "authd.yaml", "addr: :1234\n")
	cfg, err := Load("~/authd.yaml")
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.Addr != ":1234" {
		t.Fatalf("addr=%q", cfg.Addr)
	}
}

func TestLoadErrors(t *testing.T) {
	if _, err := Load(""); err == nil {
		t.Fatalf("expected error on empty path")
	}
	d := t.TempDir()
	p := writeTempFile(t, d, "cfg.txt", "not supported")
	if _, err := Load(p); err == nil {
		t.Fatalf("expected unsupported extension error")
	}
}

func TestDiscover(t *testing.T) {
	d := t.TempDir()
	old := DefaultPaths
	t.Cleanup(func() { DefaultPaths = old })

	DefaultPaths = []string{filepath.Join(d, "missing.yaml")}
	cfg, p, err := Discover()
	if err != nil || p != "" || cfg.Addr != "" {
		t.Fatalf("cfg=%+v p=%q err=%v", cfg, p, err)
	}

	found := writeTempFile(t, d, "authd.toml", "addr=\":6000\"\n")
	DefaultPaths = []string{filepath.Join(d, "missing.yaml"), found}
	cfg, p, err = Discover()
	if err != nil || p != found || cfg.Addr != ":6000" {
		t.Fatalf("cfg=%+v p=%q err=%v", cfg, p, err)
	}
}
