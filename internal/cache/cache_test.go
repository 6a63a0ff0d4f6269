package cache

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"
)

func useTempCache(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	t.Setenv("XDG_CACHE_HOME", dir)
	return filepath.Join(dir, "clstat")
}

func TestDir_XDGOverride(t *testing.T) {
	t.Setenv("XDG_CACHE_HOME", "/custom/cache")
	if got := Dir(); got != "/custom/cache/clstat" {
		t.Errorf("Dir() = %q", got)
	}
}

func TestProjectHash_StableAndIndependentOfCwd(t *testing.T) {
	a := ProjectHash("/home/u/proj")
	b := ProjectHash("/home/u/proj")
	if a != b {
		t.Errorf("hash not stable: %q vs %q", a, b)
	}
	if len(a) != 8 {
		t.Errorf("hash length = %d, want 8", len(a))
	}
	if ProjectHash("/home/u/other") == a {
		t.Error("different projects should hash differently")
	}
}

func TestProjectHash_KnownValue(t *testing.T) {
	// echo "home-u-proj" | md5sum -> ad87bc8b... Pins the slug rules:
	// leading "/" stripped, "/" -> "-", trailing newline part of the input.
	if got := ProjectHash("/home/u/proj"); got != "ad87bc8b" {
		t.Errorf("ProjectHash(/home/u/proj) = %q, want ad87bc8b", got)
	}
	if ProjectHash("a/b") != ProjectHash("/a/b") {
		t.Error("leading slash must be stripped before hashing")
	}
}

func TestReadModels_MissingAndCorrupt(t *testing.T) {
	cacheDir := useTempCache(t)

	if got := ReadModels("nope"); got != nil {
		t.Errorf("missing file should read nil, got %+v", got)
	}
	if got := ReadModels(""); got != nil {
		t.Error("empty session id should read nil")
	}

	if err := os.MkdirAll(cacheDir, 0o755); err != nil {
		t.Fatal(err)
	}
	for name, content := range map[string]string{
		"empty":     "",
		"truncated": `{"models":[{"model":"claude-op`,
		"badtype":   `{"models": "not-a-list"}`,
	} {
		path := filepath.Join(cacheDir, "models-"+name+".json")
		if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
			t.Fatal(err)
		}
		if got := ReadModels(name); got != nil {
			t.Errorf("%s cache should read nil, got %+v", name, got)
		}
	}
}

func TestWriteThenReadModels(t *testing.T) {
	useTempCache(t)

	doc := ModelsDocument{Models: []ModelEntry{
		{Model: "claude-opus-4-1", In: 1000, Out: 200},
		{Model: "claude-opus-4-1-20250805", In: 500, Out: 100},
		{Model: "claude-sonnet-4-6", In: 2000, Out: 400},
		{Model: "claude-haiku-4-5", In: 10, Out: 5},
		{Model: "gpt-oss", In: 999, Out: 999}, // no recognized family
	}}
	if err := WriteModels("sess", doc); err != nil {
		t.Fatal(err)
	}

	stats := ReadModels("sess")
	if stats == nil {
		t.Fatal("expected stats")
	}
	if stats.OpusIn != 1500 || stats.OpusOut != 300 {
		t.Errorf("opus = %d/%d, want 1500/300", stats.OpusIn, stats.OpusOut)
	}
	if stats.SonnetIn != 2000 || stats.SonnetOut != 400 {
		t.Errorf("sonnet = %d/%d", stats.SonnetIn, stats.SonnetOut)
	}
	if stats.HaikuIn != 10 || stats.HaikuOut != 5 {
		t.Errorf("haiku = %d/%d", stats.HaikuIn, stats.HaikuOut)
	}
	if stats.MaxOut() != 400 {
		t.Errorf("MaxOut() = %d, want 400", stats.MaxOut())
	}
}

func TestWriteModels_AtomicVisibility(t *testing.T) {
	useTempCache(t)

	if err := WriteModels("s", ModelsDocument{Models: []ModelEntry{{Model: "claude-opus-4-1", In: 1, Out: 1}}}); err != nil {
		t.Fatal(err)
	}

	// Interleave writes with reads: every observed document must parse as
	// complete JSON (old or new, never partial).
	done := make(chan struct{})
	go func() {
		defer close(done)
		for i := 0; i < 50; i++ {
			_ = WriteModels("s", ModelsDocument{Models: []ModelEntry{
				{Model: "claude-opus-4-1", In: i, Out: i},
			}})
		}
	}()

	path := ModelsPath("s")
	for i := 0; i < 200; i++ {
		data, err := os.ReadFile(path)
		if err != nil {
			t.Fatalf("read during write: %v", err)
		}
		var doc ModelsDocument
		if err := json.Unmarshal(data, &doc); err != nil {
			t.Fatalf("observed partial document: %q", data)
		}
	}
	<-done
}

func TestReadCumulative(t *testing.T) {
	cacheDir := useTempCache(t)
	if err := os.MkdirAll(cacheDir, 0o755); err != nil {
		t.Fatal(err)
	}

	// Absent caches read as nil.
	proj, all := ReadCumulative("/home/u/proj")
	if proj != nil || all != nil {
		t.Errorf("absent caches should be nil, got %+v %+v", proj, all)
	}

	write := func(name, content string) {
		t.Helper()
		if err := os.WriteFile(filepath.Join(cacheDir, name), []byte(content), 0o644); err != nil {
			t.Fatal(err)
		}
	}

	write("all.json", `{"d1":{"cost":1.5},"d7":{"cost":10},"d30":{"cost":42.25}}`)
	write("proj-"+ProjectHash("/home/u/proj")+".json", `{"d1":{"cost":0.5},"d7":{"cost":2},"d30":{"cost":3}}`)

	proj, all = ReadCumulative("/home/u/proj")
	if proj == nil || all == nil {
		t.Fatal("expected both caches")
	}
	if proj.D1 != 0.5 || proj.D7 != 2 || proj.D30 != 3 {
		t.Errorf("proj = %+v", proj)
	}
	if all.D1 != 1.5 || all.D7 != 10 || all.D30 != 42.25 {
		t.Errorf("all = %+v", all)
	}

	// All-zero documents read as absent.
	write("all.json", `{"d1":{"cost":0},"d7":{"cost":0},"d30":{"cost":0}}`)
	_, all = ReadCumulative("/home/u/proj")
	if all != nil {
		t.Errorf("all-zero document should read nil, got %+v", all)
	}

	// Corrupt project cache degrades to nil without affecting the global one.
	write("all.json", `{"d1":{"cost":1}}`)
	write("proj-"+ProjectHash("/home/u/proj")+".json", `{"d1":`)
	proj, all = ReadCumulative("/home/u/proj")
	if proj != nil {
		t.Error("corrupt proj cache should be nil")
	}
	if all == nil || all.D1 != 1 {
		t.Errorf("global cache should still load, got %+v", all)
	}
}
