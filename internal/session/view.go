package session

// CardView is the render model of one outfit card.
type CardView struct {
	Index           int    `json:"index"`
	Name            string `json:"name"`
	Category        string `json:"category"`
	ImageURL        string `json:"image_url"`
	FallbackApplied bool   `json:"fallback_applied"`
}

// ResultView is the render model of a recommendation.
type ResultView struct {
	InputItemCategory string     `json:"input_item_category"`
	SuggestionText    string     `json:"suggestion_text"`
	Cards             []CardView `json:"cards"`
}

// View is an immutable snapshot of a session used by templates and the JSON API.
type View struct {
	SessionID      string      `json:"session_id"`
	Status         Status      `json:"status"`
	Filename       string      `json:"filename,omitempty"`
	PreviewID      string      `json:"preview_id,omitempty"`
	Busy           bool        `json:"busy"`
	CanSubmit      bool        `json:"can_submit"`
	Error          string      `json:"error,omitempty"`
	Result         *ResultView `json:"result,omitempty"`
	PlaceholderURL string      `json:"-"`
}

// View builds a snapshot; cards with an applied fallback point at placeholder.
func (s *State) View(sessionID, placeholder string) View {
	v := View{
		SessionID:      sessionID,
		Status:         s.Status(),
		PreviewID:      s.previewID,
		Busy:           s.pending,
		CanSubmit:      s.image != nil && !s.pending,
		Error:          s.errMessage,
		PlaceholderURL: placeholder,
	}
	if s.image != nil {
		v.Filename = s.image.Filename
	}
	if s.result != nil {
		rv := &ResultView{
			InputItemCategory: s.result.InputItemCategory,
			SuggestionText:    s.result.SuggestionText,
			Cards:             make([]CardView, 0, len(s.cards)),
		}
		for i, card := range s.cards {
			imageURL := card.Item.ImageURL
			if card.FallbackApplied {
				imageURL = placeholder
			}
			rv.Cards = append(rv.Cards, CardView{
				Index:           i,
				Name:            card.Item.Name,
				Category:        card.Item.Category,
				ImageURL:        imageURL,
				FallbackApplied: card.FallbackApplied,
			})
		}
		v.Result = rv
	}
	return v
}
