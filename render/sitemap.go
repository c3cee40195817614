package render

import (
	"encoding/xml"
	"time"

	"gitlab.com/efronlicht/samplesite/sample"
)

// URLSet is a sitemaps.org <urlset>.
type URLSet struct {
	XMLName xml.Name `xml:"urlset"`
	XMLNS   string   `xml:"xmlns,attr"`
	URLs    []URL    `xml:"url"`
}

// URL is one sitemap entry.
type URL struct {
	Loc        string `xml:"loc"`
	LastMod    string `xml:"lastmod,omitempty"` // date only: 2006-01-02
	ChangeFreq string `xml:"changefreq,omitempty"`
	Priority   string `xml:"priority,omitempty"`
}

// Sitemap renders sitemap.xml: the home page, the archive and the editor, then one entry per sample.
// The static pages are stamped with the newest sample's date; with no samples they carry no lastmod at all.
func Sitemap(site Site, files []sample.File) ([]byte, error) {
	var built string
	if t := lastModified(files); !t.IsZero() {
		built = t.UTC().Format(time.DateOnly)
	}
	set := URLSet{
		XMLNS: "http://www.sitemaps.org/schemas/sitemap/0.9",
		URLs: append(make([]URL, 0, len(files)+3),
			URL{Loc: site.abs(""), LastMod: built, ChangeFreq: "weekly", Priority: "1.0"},
			URL{Loc: site.abs(site.ArchivePath), LastMod: built, ChangeFreq: "daily", Priority: "0.9"},
			URL{Loc: site.abs(site.EditorPath), LastMod: built, ChangeFreq: "monthly", Priority: "0.8"},
		),
	}
	for _, f := range files {
		set.URLs = append(set.URLs, URL{
			Loc:        site.SampleURL(f.Name),
			LastMod:    f.ModifiedAt.UTC().Format(time.DateOnly),
			ChangeFreq: "never",
			Priority:   "0.7",
		})
	}
	return marshalXML(set)
}
