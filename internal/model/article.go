package model

// NewsArticle is a record returned by the news-search collaborator
type NewsArticle struct {
	Title       string `json:"title"`
	Description string `json:"description"`
	Content     string `json:"content"`
	URL         string `json:"url"`
	PublishedAt string `json:"publishedAt"`
	Source      string `json:"source"`
}

// OutletResult is the search outcome for one reference outlet
type OutletResult struct {
	Outlet   Outlet        `json:"outlet"`
	Query    string        `json:"query,omitempty"`
	Articles []NewsArticle `json:"articles"`
}
