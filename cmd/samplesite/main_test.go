package main

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/PuerkitoBio/goquery"
)

// the CLI swaps zap's globals and reads the environment, so these tests run one at a time.

// env isolates a test from the caller's environment and .env files.
func env(t *testing.T) {
	t.Helper()
	t.Setenv("ENV_FILE", filepath.Join(t.TempDir(), "none.env"))
	t.Setenv("SAMPLESITE_BASE_URL", "")
	t.Setenv("SAMPLESITE_METRICS_FILE", "")
	t.Setenv("SAMPLESITE_LOG_LEVEL", "error")
	t.Setenv("SAMPLESITE_CONFIG", "")
	// set, so enve never reports it as missing: TestEnvFallbackReachesStderr relies on being first to.
	t.Setenv("SAMPLESITE_FEED_LIMIT", "20")
}

// samplesDir makes a directory of n samples, sample0.html being the newest.
func samplesDir(t *testing.T, n int) string {
	t.Helper()
	dir := filepath.Join(t.TempDir(), "samples")
	if err := os.Mkdir(dir, 0o755); err != nil {
		t.Fatal(err)
	}
	now := time.Date(2024, time.March, 14, 12, 0, 0, 0, time.UTC)
	for i := 0; i < n; i++ {
		path := filepath.Join(dir, "sample"+string(rune('0'+i%10))+string(rune('a'+i/10))+".html")
		content := "<html><head><title>Sample " + filepath.Base(path) + "</title></head><body><p>hello</p></body></html>"
		if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
			t.Fatal(err)
		}
		mod := now.Add(-time.Duration(i) * time.Minute)
		if err := os.Chtimes(path, mod, mod); err != nil {
			t.Fatal(err)
		}
	}
	return dir
}

func runArgs(t *testing.T, args ...string) (code int, stdout, stderr string) {
	t.Helper()
	var out, errOut bytes.Buffer
	code = run(append([]string{"samplesite"}, args...), &out, &errOut)
	return code, out.String(), errOut.String()
}

func TestUsage(t *testing.T) {
	env(t)
	for _, args := range [][]string{
		{},
		{"archive"},
		{"archive", "a", "b", "c"},
		{"rss", "a"},
		{"rss", "a", "b", "c", "d"},
		{"sitemap", "a"},
		{"homepage", "a", "b", "c"},
		{"all", "extra"},
		{"nonsense"},
	} {
		if code, _, stderr := runArgs(t, args...); code != 2 {
			t.Errorf("samplesite %s: exit %d, want 2 (stderr: %s)", strings.Join(args, " "), code, stderr)
		}
	}
}

func TestArchiveCmd(t *testing.T) {
	env(t)
	dir := samplesDir(t, 3)
	out := filepath.Join(t.TempDir(), "site", "archive.html")
	code, stdout, stderr := runArgs(t, "archive", dir, out)
	if code != 0 {
		t.Fatalf("exit %d: %s", code, stderr)
	}
	if want := "Generated " + out + " with 3 samples\n"; stdout != want {
		t.Fatalf("stdout %q, want %q", stdout, want)
	}
	f, err := os.Open(out)
	if err != nil {
		t.Fatal(err)
	}
	defer f.Close()
	d, err := goquery.NewDocumentFromReader(f)
	if err != nil {
		t.Fatal(err)
	}
	if n := d.Find(".sample-card").Length(); n != 3 {
		t.Fatalf("%d cards, want 3", n)
	}
	if first := d.Find(".sample-title").First().Text(); first != "Sample sample0a.html" {
		t.Fatalf("first card %q, want the newest sample", first)
	}
}

func TestArchiveCmdIsIdempotent(t *testing.T) {
	env(t)
	dir := samplesDir(t, 4)
	out := filepath.Join(t.TempDir(), "archive.html")
	var runs [2][]byte
	for i := range runs {
		if code, _, stderr := runArgs(t, "archive", dir, out); code != 0 {
			t.Fatalf("exit %d: %s", code, stderr)
		}
		b, err := os.ReadFile(out)
		if err != nil {
			t.Fatal(err)
		}
		runs[i] = b
	}
	if !bytes.Equal(runs[0], runs[1]) {
		t.Fatal("second run wrote different bytes")
	}
}

func TestMissingInputIsNotFatal(t *testing.T) {
	env(t)
	missing := filepath.Join(t.TempDir(), "nope")
	outDir := t.TempDir()
	for _, args := range [][]string{
		{"archive", missing, filepath.Join(outDir, "archive.html")},
		{"rss", missing, filepath.Join(outDir, "rss.xml")},
		{"homepage", samplesDir(t, 1), filepath.Join(outDir, "index.html")},
	} {
		code, stdout, _ := runArgs(t, args...)
		if code != 0 || stdout != "" {
			t.Errorf("samplesite %s: exit %d stdout %q, want 0 and nothing", strings.Join(args, " "), code, stdout)
		}
	}
	if entries, _ := os.ReadDir(outDir); len(entries) != 0 {
		t.Fatalf("skipped outputs were written: %v", entries)
	}
}

func TestSitemapWithoutSamples(t *testing.T) {
	env(t)
	out := filepath.Join(t.TempDir(), "sitemap.xml")
	code, stdout, stderr := runArgs(t, "sitemap", filepath.Join(t.TempDir(), "nope"), out, "https://example.com")
	if code != 0 {
		t.Fatalf("exit %d: %s", code, stderr)
	}
	if !strings.Contains(stdout, "with 3 URLs") {
		t.Fatalf("stdout %q", stdout)
	}
	b, err := os.ReadFile(out)
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(string(b), "<loc>https://example.com/editor/</loc>") {
		t.Fatalf("base url not applied:\n%s", b)
	}
}

func TestFeedCmd(t *testing.T) {
	env(t)
	dir := samplesDir(t, 25)
	out := filepath.Join(t.TempDir(), "rss.xml")
	code, stdout, stderr := runArgs(t, "rss", dir, out)
	if code != 0 {
		t.Fatalf("exit %d: %s", code, stderr)
	}
	if want := "Generated RSS feed " + out + " with 20 items\n"; stdout != want {
		t.Fatalf("stdout %q, want %q", stdout, want)
	}
	b, err := os.ReadFile(out)
	if err != nil {
		t.Fatal(err)
	}
	if n := strings.Count(string(b), "<item>"); n != 20 {
		t.Fatalf("%d items, want 20", n)
	}
}

func TestAllWithConfigAndMetrics(t *testing.T) {
	env(t)
	root := t.TempDir()
	samples := samplesDir(t, 2)
	index := filepath.Join(root, "index.html")
	page := "<html><head><style>body{}</style></head><body><section><div class=\"cta\"></div></section></body></html>"
	if err := os.WriteFile(index, []byte(page), 0o644); err != nil {
		t.Fatal(err)
	}
	cfg := filepath.Join(root, "site.yaml")
	yml := "paths:\n" +
		"  samples: " + samples + "\n" +
		"  archive: " + filepath.Join(root, "archive.html") + "\n" +
		"  feed: " + filepath.Join(root, "rss.xml") + "\n" +
		"  sitemap: " + filepath.Join(root, "sitemap.xml") + "\n" +
		"  homepage: " + index + "\n"
	if err := os.WriteFile(cfg, []byte(yml), 0o644); err != nil {
		t.Fatal(err)
	}
	prom := filepath.Join(root, "samplesite.prom")

	code, stdout, stderr := runArgs(t, "--config", cfg, "--metrics-file", prom, "all")
	if code != 0 {
		t.Fatalf("exit %d: %s", code, stderr)
	}
	if n := strings.Count(stdout, "\n"); n != 4 {
		t.Fatalf("expected four success lines, got:\n%s", stdout)
	}
	for _, name := range []string{"archive.html", "rss.xml", "sitemap.xml"} {
		if _, err := os.Stat(filepath.Join(root, name)); err != nil {
			t.Errorf("%s: %v", name, err)
		}
	}
	b, err := os.ReadFile(index)
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(string(b), `class="latest-sample"`) {
		t.Fatalf("homepage not patched:\n%s", b)
	}
	metrics, err := os.ReadFile(prom)
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(string(metrics), `samplesite_items_rendered{output="archive"} 2`) {
		t.Fatalf("metrics:\n%s", metrics)
	}
}

func TestWriteFailure(t *testing.T) {
	env(t)
	root := t.TempDir()
	// a regular file where a directory should be: nothing can be written beneath it.
	blocker := filepath.Join(root, "blocker")
	if err := os.WriteFile(blocker, []byte("not a directory"), 0o644); err != nil {
		t.Fatal(err)
	}
	samples := samplesDir(t, 2)

	t.Run("archive", func(t *testing.T) {
		code, stdout, stderr := runArgs(t, "archive", samples, filepath.Join(blocker, "archive.html"))
		if code != 1 {
			t.Fatalf("exit %d, want 1 (stderr: %s)", code, stderr)
		}
		if stdout != "" {
			t.Fatalf("stdout %q, want nothing", stdout)
		}
		if !strings.Contains(stderr, "archive") {
			t.Fatalf("stderr doesn't name the failed output: %q", stderr)
		}
	})

	t.Run("all", func(t *testing.T) {
		out := t.TempDir()
		index := filepath.Join(out, "index.html")
		page := "<html><head><style>body{}</style></head><body><section><div class=\"cta\"></div></section></body></html>"
		if err := os.WriteFile(index, []byte(page), 0o644); err != nil {
			t.Fatal(err)
		}
		cfg := filepath.Join(out, "site.yaml")
		yml := "paths:\n" +
			"  samples: " + samples + "\n" +
			"  archive: " + filepath.Join(out, "archive.html") + "\n" +
			"  feed: " + filepath.Join(out, "rss.xml") + "\n" +
			"  sitemap: " + filepath.Join(blocker, "sitemap.xml") + "\n" +
			"  homepage: " + index + "\n"
		if err := os.WriteFile(cfg, []byte(yml), 0o644); err != nil {
			t.Fatal(err)
		}
		code, stdout, stderr := runArgs(t, "--config", cfg, "all")
		if code != 1 {
			t.Fatalf("exit %d, want 1 (stderr: %s)", code, stderr)
		}
		if n := strings.Count(stdout, "\n"); n != 3 {
			t.Fatalf("expected three success lines, got:\n%s", stdout)
		}
		for _, name := range []string{"archive.html", "rss.xml"} {
			if _, err := os.Stat(filepath.Join(out, name)); err != nil {
				t.Errorf("%s: %v", name, err)
			}
		}
		b, err := os.ReadFile(index)
		if err != nil {
			t.Fatal(err)
		}
		if !strings.Contains(string(b), `class="latest-sample"`) {
			t.Fatal("homepage not patched after the sitemap failed")
		}
	})
}

func TestEnvFallbackReachesStderr(t *testing.T) {
	env(t)
	t.Setenv("SAMPLESITE_LOG_LEVEL", "info")
	t.Setenv("SAMPLESITE_FEED_LIMIT", "twenty")
	out := filepath.Join(t.TempDir(), "rss.xml")
	code, stdout, stderr := runArgs(t, "rss", samplesDir(t, 1), out)
	if code != 0 {
		t.Fatalf("exit %d: %s", code, stderr)
	}
	if !strings.Contains(stdout, "with 1 items") {
		t.Fatalf("stdout %q", stdout)
	}
	if !strings.Contains(stderr, "SAMPLESITE_FEED_LIMIT") {
		t.Fatalf("enve's fallback note for SAMPLESITE_FEED_LIMIT is missing from stderr:\n%s", stderr)
	}
}
