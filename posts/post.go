package posts

// Post is one submission as returned by the Reddit listing API. The dump
// path works with generic records instead since old dumps carry fields this
// struct does not know about.
type Post struct {
	ID            string  `json:"id"`
	CreatedUTC    float64 `json:"created_utc"`
	Title         string  `json:"title"`
	Author        string  `json:"author"`
	NumComments   int     `json:"num_comments"`
	Score         int     `json:"score"`
	UpvoteRatio   float64 `json:"upvote_ratio"`
	Permalink     string  `json:"permalink"`
	URL           string  `json:"url"`
	Selftext      string  `json:"selftext"`
	Subreddit     string  `json:"subreddit"`
	IsSelf        bool    `json:"is_self"`
	Over18        bool    `json:"over_18"`
	Spoiler       bool    `json:"spoiler"`
	Locked        bool    `json:"locked"`
	Archived      bool    `json:"archived"`
	Distinguished *string `json:"distinguished"`
	Stickied      bool    `json:"stickied"`
}

// Listing is the paginated envelope around posts. The after cursor is empty
// on the last page.
type Listing struct {
	Kind string `json:"kind"`
	Data struct {
		After    string `json:"after"`
		Before   string `json:"before"`
		Children []struct {
			Kind string `json:"kind"`
			Data Post   `json:"data"`
		} `json:"children"`
	} `json:"data"`
}

// RecognizedFields is the canonical field subset kept for every record, in
// the column order used by the CSV exporter.
var RecognizedFields = []string{
	"id",
	"created_utc",
	"title",
	"author",
	"num_comments",
	"score",
	"upvote_ratio",
	"permalink",
	"url",
	"selftext",
	"subreddit",
	"is_self",
	"over_18",
	"spoiler",
	"locked",
	"archived",
	"distinguished",
	"stickied",
}

// Record converts a fetched post into the loose record form shared with the
// dump pipeline.
func (p Post) Record() map[string]any {
	var distinguished any
	if p.Distinguished != nil {
		distinguished = *p.Distinguished
	}
	return map[string]any{
		"id":            p.ID,
		"created_utc":   p.CreatedUTC,
		"title":         p.Title,
		"author":        p.Author,
		"num_comments":  p.NumComments,
		"score":         p.Score,
		"upvote_ratio":  p.UpvoteRatio,
		"permalink":     p.Permalink,
		"url":           p.URL,
		"selftext":      p.Selftext,
		"subreddit":     p.Subreddit,
		"is_self":       p.IsSelf,
		"over_18":       p.Over18,
		"spoiler":       p.Spoiler,
		"locked":        p.Locked,
		"archived":      p.Archived,
		"distinguished": distinguished,
		"stickied":      p.Stickied,
	}
}
