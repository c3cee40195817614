package render

import (
	"bytes"
	"embed"
	"fmt"
	"html/template"
	"time"

	"gitlab.com/efronlicht/samplesite/sample"
)

//go:embed templates
var templateFS embed.FS

// html/template escapes everything that came out of a sample: titles, descriptions, and names in URLs.
var templates = template.Must(template.ParseFS(templateFS, "templates/*.html.tmpl"))

type archivePage struct {
	Site       Site
	Count      int
	LatestYear int // zero when there are no samples
	Cards      []archiveCard
}

type archiveCard struct {
	Title, Description string
	Size, Modified     string
	Href, EditHref     string
}

// Archive renders the gallery page: one card per sample, newest first, with the sample count in the header.
func Archive(site Site, files []sample.File) ([]byte, error) {
	files = sorted(files)
	page := archivePage{Site: site, Count: len(files), Cards: make([]archiveCard, len(files))}
	if t := lastModified(files); !t.IsZero() {
		page.LatestYear = t.UTC().Year()
	}
	for i, f := range files {
		page.Cards[i] = archiveCard{
			Title:       f.Title,
			Description: f.Description,
			Size:        Size(f.SizeBytes),
			Modified:    f.ModifiedAt.UTC().Format(time.DateOnly),
			Href:        site.SampleHref(f.Name),
			EditHref:    site.EditHref(f.Name),
		}
	}
	var buf bytes.Buffer
	if err := templates.ExecuteTemplate(&buf, "archive.html.tmpl", page); err != nil {
		return nil, fmt.Errorf("rendering archive: %w", err)
	}
	return buf.Bytes(), nil
}

// Size formats a byte count for display, eg, "12.3 KB".
func Size(n int64) string { return fmt.Sprintf("%.1f KB", float64(n)/1024) }

// sorted returns a recency-sorted copy of files, leaving the caller's slice alone.
func sorted(files []sample.File) []sample.File {
	files = append([]sample.File(nil), files...)
	sample.SortByRecency(files)
	return files
}
