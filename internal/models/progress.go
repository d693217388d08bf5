package models

// SessionProgress is the durable snapshot of an in-flight exercise attempt.
// It is mirrored to local storage after every state transition so an
// interrupted session can resume, and it is destroyed on completion or an
// explicit exit. It is never part of the cloud-synced aggregate set.
type SessionProgress struct {
	CurrentIndex    int      `json:"current_index"`
	CorrectCount    int      `json:"correct_count"`
	TotalCredits    float64  `json:"total_credits"`
	WorksheetImages []string `json:"worksheet_images"`
	WorksheetID     string   `json:"worksheet_id,omitempty"`
	Subject         Subject  `json:"subject,omitempty"`
}

// CompletionRecord summarizes a finished session for the rewards ledger.
type CompletionRecord struct {
	CorrectCount int     `json:"correct_count"`
	TotalCredits float64 `json:"total_credits"`
	ItemCount    int     `json:"item_count"`
}
