package domain

// NewsItem is a headline attributed to one of the tracked publications.
type NewsItem struct {
	Date        string `json:"date"`
	Publication string `json:"publication"`
	Headline    string `json:"headline"`
	Link        string `json:"link"`
	Symbol      string `json:"symbol"`
}

// RawNewsItem is a headline as returned by the provider, before filtering.
type RawNewsItem struct {
	Date  string
	Title string
	Link  string
}

// SentimentRecord holds the retail activity and sentiment readings of one day.
type SentimentRecord struct {
	Date      string  `json:"date"` // YYYY-MM-DD
	Activity  float64 `json:"activity"`
	Sentiment float64 `json:"sentiment"`
}

// Symbol is an entry of an exchange's symbol directory.
type Symbol struct {
	Code     string `json:"code"`
	Name     string `json:"name"`
	Exchange string `json:"exchange,omitempty"`
	Type     string `json:"type,omitempty"`
}
