package render

import (
	"encoding/xml"
	"fmt"
	"time"

	"gitlab.com/efronlicht/samplesite/sample"
)

// RFC822 is the date layout RSS 2.0 wants: RFC 2822 with a numeric zone.
const RFC822 = time.RFC1123Z

type rss struct {
	XMLName   xml.Name `xml:"rss"`
	Version   string   `xml:"version,attr"`
	AtomXMLNS string   `xml:"xmlns:atom,attr"`
	Channel   Channel  `xml:"channel"`
}

// Channel is the <channel> of an RSS 2.0 feed.
type Channel struct {
	Title         string   `xml:"title"`
	Link          string   `xml:"link"`
	Description   string   `xml:"description"`
	Language      string   `xml:"language"`
	LastBuildDate string   `xml:"lastBuildDate,omitempty"`
	AtomLink      atomLink `xml:"atom:link"`
	Generator     string   `xml:"generator"`
	Image         Image    `xml:"image"`
	Items         []Item   `xml:"item"`
}

type atomLink struct {
	Href string `xml:"href,attr"`
	Rel  string `xml:"rel,attr"`
	Type string `xml:"type,attr"`
}

type Image struct {
	URL   string `xml:"url"`
	Title string `xml:"title"`
	Link  string `xml:"link"`
}

// Item is one sample in the feed.
type Item struct {
	Title       string    `xml:"title"`
	Link        string    `xml:"link"`
	GUID        GUID      `xml:"guid"`
	Description string    `xml:"description"`
	PubDate     string    `xml:"pubDate"`
	Categories  []string  `xml:"category"`
	Enclosure   Enclosure `xml:"enclosure"`
}

// GUID is the item's permanent link, which doubles as its unique ID.
type GUID struct {
	IsPermaLink bool   `xml:"isPermaLink,attr"`
	Value       string `xml:",chardata"`
}

type Enclosure struct {
	URL    string `xml:"url,attr"`
	Type   string `xml:"type,attr"`
	Length int64  `xml:"length,attr"`
}

// Feed renders an RSS 2.0 feed of the site.FeedLimit most recently modified samples (DefaultFeedLimit if unset).
// Older samples are left out. lastBuildDate is the newest sample's modification time, not the wall clock.
func Feed(site Site, files []sample.File) ([]byte, error) {
	limit := site.FeedLimit
	if limit <= 0 {
		limit = DefaultFeedLimit
	}
	files = sample.Recent(sorted(files), limit)
	ch := Channel{
		Title:       site.Title + " - Design Samples",
		Link:        site.BaseURL,
		Description: site.Description,
		Language:    "en-us",
		AtomLink:    atomLink{Href: site.abs(site.FeedPath), Rel: "self", Type: "application/rss+xml"},
		Generator:   "SceneStealer Engine Archive Generator",
		Image:       Image{URL: site.abs("favicon.ico"), Title: site.Title, Link: site.BaseURL},
		Items:       make([]Item, len(files)),
	}
	if t := lastModified(files); !t.IsZero() {
		ch.LastBuildDate = t.UTC().Format(RFC822)
	}
	for i, f := range files {
		link := site.SampleURL(f.Name)
		ch.Items[i] = Item{
			Title:       f.Title,
			Link:        link,
			GUID:        GUID{IsPermaLink: true, Value: link},
			Description: f.Description,
			PubDate:     f.ModifiedAt.UTC().Format(RFC822),
			Categories:  []string{"Design Sample", "SceneStealer"},
			Enclosure:   Enclosure{URL: link, Type: "text/html", Length: f.SizeBytes},
		}
	}
	return marshalXML(rss{Version: "2.0", AtomXMLNS: "http://www.w3.org/2005/Atom", Channel: ch})
}

// marshalXML encodes v as an indented, newline-terminated XML document. encoding/xml escapes all text and attributes.
func marshalXML(v any) ([]byte, error) {
	b, err := xml.MarshalIndent(v, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("marshaling %T: %w", v, err)
	}
	b = append([]byte(xml.Header), b...)
	return append(b, '\n'), nil
}
