package marketdata

import (
	"sort"
	"strings"
	"time"

	"stockCharts/internal/domain"
)

// publication pairs a display name with the link domains it publishes under.
type publication struct {
	Name    string
	Domains []string
}

// trackedPublications are the only sources kept in news results.
var trackedPublications = []publication{
	{Name: "Market Watch", Domains: []string{"marketwatch.com"}},
	{Name: "Bloom Berg", Domains: []string{"bloomberg.com"}},
	{Name: "Reuters", Domains: []string{"reuters.com"}},
	{Name: "Financial Times", Domains: []string{"ft.com", "financialtimes.com"}},
	{Name: "WSJ", Domains: []string{"wsj.com", "dowjones.com"}},
	{Name: "Yahoo Finance", Domains: []string{"finance.yahoo.com"}},
}

// IdentifyPublication returns the tracked publication a link belongs to.
func IdentifyPublication(link string) (string, bool) {
	l := strings.ToLower(link)
	for _, p := range trackedPublications {
		for _, d := range p.Domains {
			if strings.Contains(l, d) {
				return p.Name, true
			}
		}
	}
	return "", false
}

// filterNews keeps items from tracked publications and tags them with ticker.
func filterNews(ticker string, raw []domain.RawNewsItem) []domain.NewsItem {
	out := make([]domain.NewsItem, 0, len(raw))
	for _, r := range raw {
		pub, ok := IdentifyPublication(r.Link)
		if !ok {
			continue
		}
		out = append(out, domain.NewsItem{
			Date:        r.Date,
			Publication: pub,
			Headline:    r.Title,
			Link:        r.Link,
			Symbol:      ticker,
		})
	}
	return out
}

// sortNewsNewestFirst orders items by date descending. Unparseable dates sort last.
func sortNewsNewestFirst(items []domain.NewsItem) {
	parsed := make(map[string]time.Time, len(items))
	for _, it := range items {
		if _, ok := parsed[it.Date]; ok {
			continue
		}
		parsed[it.Date] = parseNewsDate(it.Date)
	}
	sort.SliceStable(items, func(i, j int) bool {
		return parsed[items[i].Date].After(parsed[items[j].Date])
	})
}

func parseNewsDate(s string) time.Time {
	for _, layout := range []string{time.RFC3339, time.DateTime, time.DateOnly} {
		if t, err := time.Parse(layout, s); err == nil {
			return t
		}
	}
	return time.Time{}
}
