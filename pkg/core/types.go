package core

// SimplifiedIssue is the persisted projection of a GitHub issue
type SimplifiedIssue struct {
	Number int      `json:"number"`
	URL    string   `json:"url"`
	Title  string   `json:"title"`
	Body   *string  `json:"body"`
	Labels []string `json:"labels"`
}

// Config represents the fetcher configuration
type Config struct {
	Owner      string
	Repo       string
	Token      string
	Label      string
	OutputPath string
	// Limit caps the number of fetched issues when Limited is set.
	// Zero or negative limits yield no issues.
	Limit   int
	Limited bool
}

// HasLimit reports whether the number of fetched issues is capped
func (c Config) HasLimit() bool {
	return c.Limited
}
