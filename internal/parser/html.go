package parser

import (
	"path"
	"strconv"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/macrat/statwatch/internal/classify"
	api "github.com/macrat/statwatch/lib-statwatch"
)

// Selectors is the set of CSS selectors to find elements in HTML pages.
type Selectors struct {
	Banner            string
	BannerDescription string

	Component       string
	ComponentName   string
	ComponentStatus string

	Day           string
	Incident      string
	IncidentTitle string
	Update        string
	UpdateMessage string
	DateDay       string
	DateTime      string
	DateYear      string
}

// DefaultSelectors is for pages hosted by Atlassian Statuspage.
var DefaultSelectors = Selectors{
	Banner:            ".page-status, .overall-status",
	BannerDescription: ".overall-status__description, .page-status .status",

	Component:       ".component-container",
	ComponentName:   ".name",
	ComponentStatus: ".component-status",

	Day:           ".status-day",
	Incident:      ".incident-container",
	IncidentTitle: ".incident-title",
	Update:        ".update",
	UpdateMessage: ".whitespace-pre-wrap",
	DateDay:       `var[data-var="date"]`,
	DateTime:      `var[data-var="time"]`,
	DateYear:      `var[data-var="year"]`,
}

func (p *Parser) scanHTML(raw string) (rawPage, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(raw))
	if err != nil {
		return rawPage{}, err
	}

	var r rawPage
	r.Banner, r.BannerFound = p.htmlBanner(doc)
	r.Components, r.ComponentsFound = p.htmlComponents(doc)
	r.Incidents = p.htmlIncidents(doc)

	return r, nil
}

func (p *Parser) htmlBanner(doc *goquery.Document) (api.Overall, bool) {
	banner := doc.Find(p.Selectors.Banner).First()
	desc := doc.Find(p.Selectors.BannerDescription).First()

	if banner.Length() == 0 && desc.Length() == 0 {
		return api.Overall{}, false
	}

	o := api.Overall{
		Description: normalizeSpace(desc.Text()),
		Level:       classify.Classes(classNames(banner), classify.Overall),
	}
	if o.Description == "" && banner.Length() > 0 {
		o.Description = normalizeSpace(banner.Text())
	}

	// some pages have only neutral classes on the banner.
	if byText := classify.Text(o.Description, classify.Overall); byText.WorseThan(o.Level) {
		o.Level = byText
	}

	return o, true
}

func (p *Parser) htmlComponents(doc *goquery.Document) (cs []api.Component, found bool) {
	doc.Find(p.Selectors.Component).Each(func(_ int, sel *goquery.Selection) {
		name := cleanName(sel.Find(p.Selectors.ComponentName).First().Text())
		if name == "" {
			return
		}
		found = true

		var classes []string
		classes = append(classes, classNames(sel)...)
		sel.Find(`[class*="status-"]`).Each(func(_ int, x *goquery.Selection) {
			classes = append(classes, classNames(x)...)
		})

		c := componentStatus(sel.Find(p.Selectors.ComponentStatus).First().Text(), classify.Classes(classes, classify.Component))
		c.Name = name
		cs = append(cs, c)
	})

	return cs, found
}

func (p *Parser) htmlIncidents(doc *goquery.Document) []api.Incident {
	var xs []api.Incident

	doc.Find(p.Selectors.Day).Each(func(_ int, day *goquery.Selection) {
		day.Find(p.Selectors.Incident).Each(func(_ int, sel *goquery.Selection) {
			xs = append(xs, p.htmlIncident(sel))
		})
	})

	return xs
}

func (p *Parser) htmlIncident(sel *goquery.Selection) api.Incident {
	title := sel.Find(p.Selectors.IncidentTitle).First()
	link := title.Find("a").First()

	i := api.Incident{
		Name:    normalizeSpace(link.Text()),
		Impact:  classify.Impact(classNames(title)),
		Status:  api.DefaultIncidentStatus,
		Updates: p.htmlUpdates(sel),
	}

	if i.Name == "" {
		i.Name = normalizeSpace(title.Text())
	}
	if i.Name == "" {
		i.Name = "Unknown Incident"
	}

	href, _ := link.Attr("href")
	if id := permalinkID(href); id != "" {
		i.ID = id
	} else {
		// No permalink means there is no stable identity.
		// The time based ID changes on every parse, so the same incident is reported as new again.
		i.ID = strconv.FormatInt(CurrentTime().UnixMilli(), 10)
		i.SyntheticID = true
		p.Logger.Debug().Str("incident", i.Name).Str("id", i.ID).Msg("incident has no permalink")
	}

	if len(i.Updates) > 0 {
		i.Status = i.Updates[0].Status
	}

	return i
}

// permalinkID takes the last path segment of an incident link like "/incidents/abc123".
func permalinkID(href string) string {
	href = strings.TrimSpace(href)
	if i := strings.IndexAny(href, "?#"); i >= 0 {
		href = href[:i]
	}
	href = strings.TrimRight(href, "/")
	if href == "" {
		return ""
	}

	id := path.Base(href)
	if id == "." || id == "/" {
		return ""
	}
	return id
}

func (p *Parser) htmlUpdates(sel *goquery.Selection) []api.IncidentUpdate {
	us := []api.IncidentUpdate{}

	sel.Find(p.Selectors.Update).Each(func(n int, row *goquery.Selection) {
		status := strings.ToLower(normalizeSpace(row.Find("strong").First().Text()))
		message := strings.TrimSpace(row.Find(p.Selectors.UpdateMessage).First().Text())
		small := row.Find("small").First()

		if status == "" || message == "" || normalizeSpace(small.Text()) == "" {
			p.Logger.Debug().Int("row", n).Msg("skip malformed incident update")
			return
		}

		us = append(us, api.IncidentUpdate{
			Status:    status,
			Message:   message,
			Timestamp: p.updateTime(small),
		})
	})

	return us
}

// updateTime reads a date like "Nov <var data-var="date">28</var>, <var data-var="time">16:47</var> PST".
// It returns the current time if the date is not readable.
func (p *Parser) updateTime(small *goquery.Selection) time.Time {
	month := ""
	if fs := strings.Fields(small.Text()); len(fs) > 0 {
		month = fs[0]
	}
	day := normalizeSpace(small.Find(p.Selectors.DateDay).First().Text())
	clock := normalizeSpace(small.Find(p.Selectors.DateTime).First().Text())
	year := normalizeSpace(small.Find(p.Selectors.DateYear).First().Text())
	if year == "" {
		year = strconv.Itoa(CurrentTime().Year())
	}

	fragment := month + " " + day + ", " + year + " " + clock

	t, err := api.ParsePageTime(fragment)
	if err != nil {
		p.Logger.Debug().Err(err).Msg("use current time for unreadable update time")
		return CurrentTime().UTC()
	}
	return t
}

func classNames(sel *goquery.Selection) []string {
	c, ok := sel.Attr("class")
	if !ok {
		return nil
	}
	return strings.Fields(c)
}
