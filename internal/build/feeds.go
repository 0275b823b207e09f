package build

import (
	"encoding/xml"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/stenstad/inkwell/internal/config"
	"github.com/stenstad/inkwell/internal/content"
)

type rssFeed struct {
	XMLName xml.Name   `xml:"rss"`
	Version string     `xml:"version,attr"`
	Channel rssChannel `xml:"channel"`
}

type rssChannel struct {
	Title         string    `xml:"title"`
	Link          string    `xml:"link"`
	Description   string    `xml:"description"`
	Language      string    `xml:"language,omitempty"`
	LastBuildDate string    `xml:"lastBuildDate"`
	Items         []rssItem `xml:"item"`
}

type rssItem struct {
	Title       string `xml:"title"`
	Link        string `xml:"link"`
	GUID        string `xml:"guid"`
	PubDate     string `xml:"pubDate,omitempty"`
	Description string `xml:"description,omitempty"`
}

type urlSet struct {
	XMLName xml.Name     `xml:"urlset"`
	Xmlns   string       `xml:"xmlns,attr"`
	URLs    []sitemapURL `xml:"url"`
}

type sitemapURL struct {
	Loc     string `xml:"loc"`
	LastMod string `xml:"lastmod,omitempty"`
}

// writeFeeds emits rss.xml (posts only) and sitemap.xml (every page)
// into the output directory.
func writeFeeds(outDir string, site config.SiteConfig, items, posts []*content.Item, now time.Time) error {
	base := strings.TrimRight(site.BaseURL, "/")

	feed := rssFeed{
		Version: "2.0",
		Channel: rssChannel{
			Title:         site.Title,
			Link:          base + "/",
			Description:   site.Description,
			Language:      site.Language,
			LastBuildDate: now.Format(time.RFC1123Z),
		},
	}
	for _, p := range posts {
		link := base + p.Permalink()
		item := rssItem{
			Title:       p.Meta.Title,
			Link:        link,
			GUID:        link,
			Description: p.Meta.Description,
		}
		if !p.Meta.Date.IsZero() {
			item.PubDate = p.Meta.Date.Format(time.RFC1123Z)
		}
		feed.Channel.Items = append(feed.Channel.Items, item)
	}
	if err := writeXML(filepath.Join(outDir, "rss.xml"), feed); err != nil {
		return fmt.Errorf("write rss feed: %w", err)
	}

	sitemap := urlSet{
		Xmlns: "http://www.sitemaps.org/schemas/sitemap/0.9",
		URLs:  []sitemapURL{{Loc: base + "/", LastMod: now.Format("2006-01-02")}},
	}
	for _, it := range items {
		sitemap.URLs = append(sitemap.URLs, sitemapURL{
			Loc:     base + it.Permalink(),
			LastMod: it.LastMod.Format("2006-01-02"),
		})
	}
	if err := writeXML(filepath.Join(outDir, "sitemap.xml"), sitemap); err != nil {
		return fmt.Errorf("write sitemap: %w", err)
	}
	return nil
}

func writeXML(path string, v any) error {
	data, err := xml.MarshalIndent(v, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(path, append([]byte(xml.Header), data...), 0o644)
}
