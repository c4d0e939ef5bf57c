package recommendation

import (
	"bytes"
	"encoding/json"
)

// OutfitItem is one recommended garment.
type OutfitItem struct {
	ImageURL string `json:"image_url"`
	Name     string `json:"name"`
	Category string `json:"category"`
}

// Result is the payload returned by the prediction endpoint.
type Result struct {
	InputItemCategory string       `json:"input_item_category"`
	SuggestionText    string       `json:"suggestion_text"`
	SuggestedOutfit   []OutfitItem `json:"suggested_outfit"`
}

// ErrorBody is the optional JSON body of a non-2xx prediction response.
type ErrorBody struct {
	Error string `json:"error"`
}

// UnmarshalJSON accepts any JSON value for error. Strings are kept as is,
// other non-empty values keep their JSON text, and null, false, 0 or "" mean
// no message.
func (b *ErrorBody) UnmarshalJSON(data []byte) error {
	var raw struct {
		Error json.RawMessage `json:"error"`
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}

	b.Error = ""
	value := bytes.TrimSpace(raw.Error)
	if text, ok := stringValue(value); ok {
		b.Error = text
		return nil
	}
	switch string(value) {
	case "", "null", "false", "0":
	default:
		b.Error = string(value)
	}
	return nil
}

// UnmarshalJSON keeps whatever parts of a success body are usable. A wrong
// typed field or a non-object body leaves the affected parts empty; only
// invalid JSON is an error.
func (r *Result) UnmarshalJSON(data []byte) error {
	*r = Result{}

	if !json.Valid(data) {
		var discard interface{}
		return json.Unmarshal(data, &discard)
	}
	body := bytes.TrimSpace(data)
	if len(body) == 0 || body[0] != '{' {
		return nil
	}

	var raw struct {
		InputItemCategory json.RawMessage `json:"input_item_category"`
		SuggestionText    json.RawMessage `json:"suggestion_text"`
		SuggestedOutfit   json.RawMessage `json:"suggested_outfit"`
	}
	if err := json.Unmarshal(body, &raw); err != nil {
		return err
	}

	r.InputItemCategory, _ = stringValue(raw.InputItemCategory)
	r.SuggestionText, _ = stringValue(raw.SuggestionText)

	outfit := bytes.TrimSpace(raw.SuggestedOutfit)
	if len(outfit) == 0 || outfit[0] != '[' {
		return nil
	}

	var items []json.RawMessage
	if err := json.Unmarshal(outfit, &items); err != nil {
		return nil
	}
	r.SuggestedOutfit = make([]OutfitItem, 0, len(items))
	for _, rawItem := range items {
		var item OutfitItem
		// A malformed entry still occupies its slot so positions line up
		// with the server's list.
		_ = json.Unmarshal(rawItem, &item)
		r.SuggestedOutfit = append(r.SuggestedOutfit, item)
	}
	return nil
}

func stringValue(raw json.RawMessage) (string, bool) {
	var text string
	if len(raw) == 0 || json.Unmarshal(raw, &text) != nil {
		return "", false
	}
	return text, true
}

// ItemCount returns the number of outfit cards the result renders.
func (r *Result) ItemCount() int {
	if r == nil {
		return 0
	}
	return len(r.SuggestedOutfit)
}
