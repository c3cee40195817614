package render

import (
	"bytes"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"regexp"
	"strings"

	"gitlab.com/efronlicht/samplesite/sample"
)

var (
	// ErrHomepageNotFound is returned by ReadHomepage when there's no homepage to patch.
	ErrHomepageNotFound = errors.New("homepage file not found")

	// ErrNoAnchor means the homepage has neither a previous latest-sample section nor a place to put a new one.
	ErrNoAnchor = errors.New(`homepage has no <div class="cta"> or closing hero section to insert before`)
)

// the section is fenced with these so the next run replaces it instead of stacking another copy.
const (
	sectionBegin = "<!-- samplesite:latest-sample -->"
	sectionEnd   = "<!-- /samplesite:latest-sample -->"
)

var (
	ctaRE        = regexp.MustCompile(`(?i)<div\s+class=["']cta["']\s*>`)
	heroCloseRE  = regexp.MustCompile(`(?i)</div>\s*</section>`)
	styleCloseRE = regexp.MustCompile(`(?i)</style>`)
	headCloseRE  = regexp.MustCompile(`(?i)</head>`)

	// a section written without markers, as older versions of the page generator did.
	unmarkedRE = regexp.MustCompile(`(?i)<div\s+class=["']latest-sample["']\s*>`)
	divTagRE   = regexp.MustCompile(`(?i)<div[\s>]|</div\s*>`)
)

// the style block is injected at most once: its presence is detected by this selector.
const styleMarker = ".latest-sample{"

const latestSampleCSS = `
  .latest-sample{
    background:var(--card); padding:24px; border-radius:var(--radius);
    box-shadow:var(--shadow); border:1px solid var(--border);
    margin:24px 0; text-align:center;
  }
  .sample-badge{
    display:inline-block; padding:4px 12px; background:var(--accent);
    color:white; border-radius:16px; font-size:12px; font-weight:500;
    margin-bottom:16px;
  }
  .latest-sample h3{margin:0 0 12px; color:var(--ink)}
  .latest-sample p{color:var(--muted); margin:0 0 16px}
  .sample-actions{display:flex; gap:12px; justify-content:center; flex-wrap:wrap}
  .sample-date{color:var(--muted); font-size:12px; margin-top:16px}
`

// titleSuffix is the site name samples tend to append to their <title>; it's noise on the homepage.
const titleSuffix = " - Scenestealer Engine"

type latestSection struct {
	HasSample                bool
	Title, Description, Date string
	Href, EditHref           string
	ArchiveHref, EditorHref  string
}

// ReadHomepage reads the homepage at path, returning an error wrapping ErrHomepageNotFound if it doesn't exist.
func ReadHomepage(path string) ([]byte, error) {
	b, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("%w: %s", ErrHomepageNotFound, path)
	} else if err != nil {
		return nil, fmt.Errorf("reading homepage %s: %w", path, err)
	}
	return b, nil
}

// Homepage patches doc with a "latest sample" section for the most recently modified of files,
// or a "browse archive" section if there are none. A section left by an earlier run, marked or not, is replaced in place;
// otherwise the section goes right before <div class="cta">, or failing that, before the close of the hero section.
// The section's CSS is added to the page's styles unless it's already there.
// Everything else in doc is preserved byte for byte.
func Homepage(site Site, doc []byte, files []sample.File) ([]byte, error) {
	section, err := renderLatest(site, files)
	if err != nil {
		return nil, err
	}
	out := injectStyle(doc)
	if i := bytes.Index(out, []byte(sectionBegin)); i >= 0 {
		if j := bytes.Index(out[i:], []byte(sectionEnd)); j >= 0 {
			return splice(out, i, i+j+len(sectionEnd), section), nil
		}
	}
	if replaced, ok := replaceUnmarked(out, section); ok {
		return replaced, nil
	}
	if loc := ctaRE.FindIndex(out); loc != nil {
		return splice(out, loc[0], loc[0], append(section, "\n      "...)), nil
	}
	if loc := heroCloseRE.FindIndex(out); loc != nil {
		return splice(out, loc[0], loc[0], append(section, "\n    "...)), nil
	}
	return nil, ErrNoAnchor
}

func renderLatest(site Site, files []sample.File) ([]byte, error) {
	data := latestSection{ArchiveHref: site.ArchivePath, EditorHref: site.EditorPath}
	if f, ok := sample.Newest(files); ok {
		data.HasSample = true
		data.Title = strings.TrimSuffix(f.Title, titleSuffix)
		data.Description = f.Description
		data.Date = f.ModifiedAt.UTC().Format("January 02, 2006")
		data.Href = site.SampleHref(f.Name)
		data.EditHref = site.EditHref(f.Name)
	}
	var buf bytes.Buffer
	if err := templates.ExecuteTemplate(&buf, "latest-sample.html.tmpl", data); err != nil {
		return nil, fmt.Errorf("rendering latest sample section: %w", err)
	}
	section := append([]byte(sectionBegin+"\n      "), bytes.TrimSpace(buf.Bytes())...)
	return append(section, "\n      "+sectionEnd...), nil
}

// injectStyle adds latestSampleCSS before the first </style>, or in a new <style> before </head>.
// A document with neither is returned unchanged.
func injectStyle(doc []byte) []byte {
	if bytes.Contains(doc, []byte(styleMarker)) {
		return doc
	}
	if loc := styleCloseRE.FindIndex(doc); loc != nil {
		return splice(doc, loc[0], loc[0], []byte(latestSampleCSS))
	}
	if loc := headCloseRE.FindIndex(doc); loc != nil {
		return splice(doc, loc[0], loc[0], []byte("<style>"+latestSampleCSS+"</style>\n"))
	}
	return doc
}

// replaceUnmarked swaps the first unmarked latest-sample block in doc for section and drops any others,
// along with the whitespace before them. Unmarked sections were stacked one per run, so there may be several.
func replaceUnmarked(doc, section []byte) ([]byte, bool) {
	out := make([]byte, 0, len(doc)+len(section))
	rest := doc
	found := false
	for {
		loc := unmarkedRE.FindIndex(rest)
		if loc == nil {
			break
		}
		end, ok := closingDiv(rest, loc[1])
		if !ok {
			break
		}
		if found {
			out = append(out, bytes.TrimRight(rest[:loc[0]], " \t\r\n")...)
		} else {
			out = append(out, rest[:loc[0]]...)
			out = append(out, section...)
		}
		found = true
		rest = rest[end:]
	}
	if !found {
		return nil, false
	}
	return append(out, rest...), true
}

// closingDiv returns the index just past the </div> that closes a <div> whose start tag ends at from.
func closingDiv(doc []byte, from int) (int, bool) {
	depth := 1
	for _, m := range divTagRE.FindAllIndex(doc[from:], -1) {
		if doc[from+m[0]+1] == '/' {
			depth--
		} else {
			depth++
		}
		if depth == 0 {
			return from + m[1], true
		}
	}
	return 0, false
}

// splice returns a new slice: doc[:i] + insert + doc[j:].
func splice(doc []byte, i, j int, insert []byte) []byte {
	out := make([]byte, 0, len(doc)-(j-i)+len(insert))
	out = append(out, doc[:i]...)
	out = append(out, insert...)
	return append(out, doc[j:]...)
}
