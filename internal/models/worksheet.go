package models

// Worksheet is a parent-imported set of photographed worksheet pages.
// Worksheets are immutable after import except for deletion.
type Worksheet struct {
	ID      string   `json:"id"`
	Subject Subject  `json:"subject"`
	Images  []string `json:"images"`
	Name    string   `json:"name"`
	Date    string   `json:"date"`
}

// Prize is a parent-configured reward redeemable with credits. Unlocked
// transitions false to true exactly once, on purchase, and never reverts.
type Prize struct {
	ID       string  `json:"id"`
	Name     string  `json:"name"`
	Cost     float64 `json:"cost"`
	Image    string  `json:"image"`
	Unlocked bool    `json:"unlocked"`
}
