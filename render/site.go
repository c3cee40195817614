// Package render turns a set of samples into the generated site documents:
// the archive gallery, the RSS feed, the sitemap, and the homepage's "latest sample" section.
//
// Renderers are pure: the same samples and Site give the same bytes. Nothing here reads the clock.
package render

import (
	"net/url"
	"strings"
	"time"

	"gitlab.com/efronlicht/samplesite/sample"
)

// DefaultBaseURL is where the site is published.
const DefaultBaseURL = "https://dtslib1979.github.io/scenestealer-engine"

// DefaultFeedLimit is the most items an RSS feed carries.
const DefaultFeedLimit = 20

// Site describes the published site the documents link into. Paths are relative to the site root.
type Site struct {
	Title       string `yaml:"title"`
	Tagline     string `yaml:"tagline"`
	Description string `yaml:"description"`
	BaseURL     string `yaml:"base_url"`
	ProjectURL  string `yaml:"project_url"`
	SamplesPath string `yaml:"samples_path"` // eg, "samples/"
	EditorPath  string `yaml:"editor_path"`  // eg, "editor/"; samples are preloaded with ?sample=NAME
	ArchivePath string `yaml:"archive_path"` // eg, "archive.html"
	FeedPath    string `yaml:"feed_path"`    // eg, "rss.xml"
	FeedLimit   int    `yaml:"feed_limit"`
}

// DefaultSite is the SceneStealer site.
func DefaultSite() Site {
	return Site{
		Title:       "SceneStealer Archive",
		Tagline:     "Browse beautiful design samples · Pick what you like · Edit in the engine",
		Description: "Latest design samples and templates from SceneStealer Engine",
		BaseURL:     DefaultBaseURL,
		ProjectURL:  "https://github.com/dtslib1979/scenestealer-engine",
		SamplesPath: "samples/",
		EditorPath:  "editor/",
		ArchivePath: "archive.html",
		FeedPath:    "rss.xml",
		FeedLimit:   DefaultFeedLimit,
	}
}

// abs makes a site-relative path absolute against BaseURL.
func (s Site) abs(path string) string {
	return strings.TrimSuffix(s.BaseURL, "/") + "/" + strings.TrimPrefix(path, "/")
}

// SampleHref is the site-relative link to the raw sample.
func (s Site) SampleHref(name string) string { return s.SamplesPath + url.PathEscape(name) }

// EditHref is the site-relative link that opens the sample in the editor.
func (s Site) EditHref(name string) string {
	return s.EditorPath + "?" + url.Values{"sample": {name}}.Encode()
}

// SampleURL is the absolute link to the raw sample.
func (s Site) SampleURL(name string) string { return s.abs(s.SampleHref(name)) }

// lastModified is the newest modification time among files, or the zero time if there are none.
// It stands in for "now" wherever a document needs a build date, so unchanged input gives unchanged output.
func lastModified(files []sample.File) time.Time {
	newest, ok := sample.Newest(files)
	if !ok {
		return time.Time{}
	}
	return newest.ModifiedAt
}
