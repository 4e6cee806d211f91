package domain

// Location is the position the user shares with the assistant.
type Location struct {
	Lat     float64 `json:"lat"`
	Lng     float64 `json:"lng"`
	City    *string `json:"city,omitempty"`
	Country *string `json:"country,omitempty"`
	Address *string `json:"address,omitempty"`
}

type UserContext struct {
	ID      string
	Name    string
	Reviews []UserReview
}

type UserReview struct {
	PostID  string         `json:"postId"`
	Comment string         `json:"comment"`
	Ratings []ReviewRating `json:"ratings"`
}

type ReviewRating struct {
	Type  string  `json:"type"`
	Score float64 `json:"score"`
}

// GeneralScore returns the score tagged "general", if the review has one.
func (r UserReview) GeneralScore() (float64, bool) {
	for _, rt := range r.Ratings {
		if rt.Type == "general" {
			return rt.Score, true
		}
	}
	return 0, false
}
