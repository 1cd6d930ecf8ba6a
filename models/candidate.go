package models

// Strategy tags recorded on extracted candidates
const (
	StrategyMarkup   = "markup"
	StrategyEmbedded = "embedded"
	StrategyLinks    = "links"
)

// RawCandidate is an unvalidated record harvested by one extraction strategy
// from one page. Field values are raw text exactly as found on the page.
// Candidates live only for the duration of a single pipeline call.
type RawCandidate struct {
	Title          string `json:"title"`
	Description    string `json:"description"`
	Link           string `json:"link"`
	Location       string `json:"location"`
	Units          string `json:"units"`
	Price          string `json:"price"`
	SqFt           string `json:"sq_ft"`
	YearBuilt      string `json:"year_built"`
	Status         string `json:"status"`
	ImageURL       string `json:"image_url"`
	SourceStrategy string `json:"source_strategy"`
}

// Set assigns a value to the candidate field with the given canonical name.
// Unknown names are ignored. Used by strategies that map loose source keys
// (selector names, JSON aliases) onto the fixed candidate shape.
func (c *RawCandidate) Set(field, value string) {
	switch field {
	case "title":
		c.Title = value
	case "description":
		c.Description = value
	case "link":
		c.Link = value
	case "location":
		c.Location = value
	case "units":
		c.Units = value
	case "price":
		c.Price = value
	case "sq_ft":
		c.SqFt = value
	case "year_built":
		c.YearBuilt = value
	case "status":
		c.Status = value
	case "image_url":
		c.ImageURL = value
	}
}

// Get returns the candidate field with the given canonical name.
func (c *RawCandidate) Get(field string) string {
	switch field {
	case "title":
		return c.Title
	case "description":
		return c.Description
	case "link":
		return c.Link
	case "location":
		return c.Location
	case "units":
		return c.Units
	case "price":
		return c.Price
	case "sq_ft":
		return c.SqFt
	case "year_built":
		return c.YearBuilt
	case "status":
		return c.Status
	case "image_url":
		return c.ImageURL
	}
	return ""
}

// Empty reports whether the candidate carries no usable signal at all.
func (c *RawCandidate) Empty() bool {
	return c.Title == "" && c.Description == "" && c.Link == "" && c.Location == ""
}
