// Package countries is the reference domain for loadable: a country list
// fetched from a REST API, cached locally and queried by name.
package countries

// Country is one list entry as cached locally.
type Country struct {
	Code       string `json:"code"`
	Name       string `json:"name"`
	Region     string `json:"region"`
	Capital    string `json:"capital"`
	Population int64  `json:"population"`
}

// Details is the expanded record for a single country.
type Details struct {
	Code       string   `json:"code"`
	Name       string   `json:"name"`
	Region     string   `json:"region"`
	Capital    string   `json:"capital"`
	Population int64    `json:"population"`
	Area       float64  `json:"area"`
	Currencies []string `json:"currencies"`
	Languages  []string `json:"languages"`
	Borders    []string `json:"borders"`
	FlagURL    string   `json:"flag_url"`
}

// SearchText is the matchable text used by list queries.
func SearchText(c Country) string { return c.Name }
