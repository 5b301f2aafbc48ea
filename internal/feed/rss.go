package feed

import (
	"encoding/xml"
	"fmt"
	"strings"
	"time"

	"github.com/podcast-studio/backend/internal/db/models"
)

type rss struct {
	XMLName xml.Name `xml:"rss"`
	Version string   `xml:"version,attr"`
	Channel channel  `xml:"channel"`
}

type channel struct {
	Title         string `xml:"title"`
	Link          string `xml:"link,omitempty"`
	Description   string `xml:"description"`
	Language      string `xml:"language,omitempty"`
	Category      string `xml:"category,omitempty"`
	ManagingEmail string `xml:"managingEditor,omitempty"`
	Generator     string `xml:"generator"`
	LastBuildDate string `xml:"lastBuildDate"`
	Items         []item `xml:"item"`
}

type item struct {
	Title       string `xml:"title"`
	Link        string `xml:"link,omitempty"`
	Description string `xml:"description,omitempty"`
	Author      string `xml:"author,omitempty"`
	GUID        guid   `xml:"guid"`
	PubDate     string `xml:"pubDate,omitempty"`
}

type guid struct {
	IsPermaLink bool   `xml:"isPermaLink,attr"`
	Value       string `xml:",chardata"`
}

// Generate renders an RSS 2.0 feed for the published episodes of a series.
// Episodes are expected newest-first; feed order follows input order.
// When baseURL is set it provides the channel link fallback and permalink
// item links/GUIDs; otherwise items carry an opaque GUID.
func Generate(series *models.Series, episodes []*models.Episode, baseURL string) ([]byte, error) {
	baseURL = strings.TrimRight(baseURL, "/")

	link := series.Website
	if link == "" {
		link = baseURL
	}

	ch := channel{
		Title:         series.Name,
		Link:          link,
		Description:   series.Description,
		Language:      series.Language,
		Category:      series.Category,
		ManagingEmail: series.Email,
		Generator:     "podcast-studio",
		LastBuildDate: time.Now().Format(time.RFC1123Z),
	}

	for _, e := range episodes {
		if e.Status != models.EpisodePublished {
			continue
		}
		it := item{
			Title:       e.Title,
			Description: e.Description,
			Author:      series.Author,
			GUID: guid{
				IsPermaLink: false,
				Value:       fmt.Sprintf("podcast-studio:episode:%d", e.ID),
			},
		}
		if baseURL != "" {
			it.Link = fmt.Sprintf("%s/episodes/%d", baseURL, e.ID)
			it.GUID = guid{IsPermaLink: true, Value: it.Link}
		}
		if e.PublishDate != nil {
			it.PubDate = e.PublishDate.Format(time.RFC1123Z)
		}
		ch.Items = append(ch.Items, it)
	}

	out, err := xml.MarshalIndent(rss{Version: "2.0", Channel: ch}, "", "  ")
	if err != nil {
		return nil, err
	}
	return append([]byte(xml.Header), out...), nil
}
