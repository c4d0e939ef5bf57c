package recommendation

import (
	"encoding/json"
	"testing"
)

func TestResultDecodesOutfitInOrder(t *testing.T) {
	body := `{
		"input_item_category": "Dresses",
		"suggestion_text": "Try this",
		"suggested_outfit": [
			{"image_url": "https://img/1", "name": "Sneaker", "category": "Shoes"},
			{"image_url": "https://img/2", "name": "Cap", "category": "Accessories"}
		]
	}`

	var result Result
	if err := json.Unmarshal([]byte(body), &result); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if result.InputItemCategory != "Dresses" || result.SuggestionText != "Try this" {
		t.Fatalf("unexpected header fields: %+v", result)
	}
	if result.ItemCount() != 2 {
		t.Fatalf("expected 2 items, got %d", result.ItemCount())
	}
	if result.SuggestedOutfit[0].Name != "Sneaker" || result.SuggestedOutfit[1].Name != "Cap" {
		t.Fatalf("items out of order: %+v", result.SuggestedOutfit)
	}
}

func TestResultToleratesMissingOrMalformedOutfit(t *testing.T) {
	tests := []struct {
		name string
		body string
	}{
		{name: "missing", body: `{"input_item_category": "Skirts", "suggestion_text": "x"}`},
		{name: "null", body: `{"input_item_category": "Skirts", "suggested_outfit": null}`},
		{name: "object", body: `{"input_item_category": "Skirts", "suggested_outfit": {"name": "x"}}`},
		{name: "string", body: `{"input_item_category": "Skirts", "suggested_outfit": "none"}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var result Result
			if err := json.Unmarshal([]byte(tt.body), &result); err != nil {
				t.Fatalf("expected tolerant decode, got %v", err)
			}
			if result.ItemCount() != 0 {
				t.Fatalf("expected no items, got %d", result.ItemCount())
			}
			if result.InputItemCategory != "Skirts" {
				t.Fatalf("expected category to survive, got %q", result.InputItemCategory)
			}
		})
	}
}

func TestResultToleratesWrongTypedHeaderFields(t *testing.T) {
	tests := []struct {
		name         string
		body         string
		wantCategory string
		wantText     string
	}{
		{
			name:     "numeric category",
			body:     `{"input_item_category": 5, "suggestion_text": "Try this", "suggested_outfit": [{"name": "Cap"}]}`,
			wantText: "Try this",
		},
		{
			name:         "array suggestion",
			body:         `{"input_item_category": "Dresses", "suggestion_text": ["a"], "suggested_outfit": [{"name": "Cap"}]}`,
			wantCategory: "Dresses",
		},
		{
			name: "object category and null text",
			body: `{"input_item_category": {"k": 1}, "suggestion_text": null, "suggested_outfit": [{"name": "Cap"}]}`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var result Result
			if err := json.Unmarshal([]byte(tt.body), &result); err != nil {
				t.Fatalf("expected tolerant decode, got %v", err)
			}
			if result.InputItemCategory != tt.wantCategory || result.SuggestionText != tt.wantText {
				t.Fatalf("unexpected header fields: %+v", result)
			}
			if result.ItemCount() != 1 || result.SuggestedOutfit[0].Name != "Cap" {
				t.Fatalf("expected the outfit to survive, got %+v", result.SuggestedOutfit)
			}
		})
	}
}

func TestResultToleratesNonObjectBody(t *testing.T) {
	for _, body := range []string{`[1, 2]`, `"text"`, `42`, `null`} {
		t.Run(body, func(t *testing.T) {
			result := Result{InputItemCategory: "stale"}
			if err := json.Unmarshal([]byte(body), &result); err != nil {
				t.Fatalf("expected tolerant decode, got %v", err)
			}
			if result.InputItemCategory != "" || result.ItemCount() != 0 {
				t.Fatalf("expected an empty result, got %+v", result)
			}
		})
	}
}

func TestResultRejectsInvalidJSON(t *testing.T) {
	var result Result
	if err := json.Unmarshal([]byte(`{"input_item_category": `), &result); err == nil {
		t.Fatal("expected error for truncated body")
	}
}

func TestItemWithWrongTypedNameKeepsItsSlot(t *testing.T) {
	var result Result
	body := `{"suggested_outfit": [{"name": 7, "category": "Shoes"}, {"name": "Cap"}]}`
	if err := json.Unmarshal([]byte(body), &result); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if result.ItemCount() != 2 || result.SuggestedOutfit[0].Category != "Shoes" || result.SuggestedOutfit[1].Name != "Cap" {
		t.Fatalf("unexpected items: %+v", result.SuggestedOutfit)
	}
}

func TestErrorBodyAcceptsAnyMessageType(t *testing.T) {
	tests := []struct {
		body string
		want string
	}{
		{body: `{"error": "bad image"}`, want: "bad image"},
		{body: `{"error": 42}`, want: "42"},
		{body: `{"error": true}`, want: "true"},
		{body: `{"error": {"code": 1}}`, want: `{"code": 1}`},
		{body: `{"error": null}`, want: ""},
		{body: `{"error": 0}`, want: ""},
		{body: `{"error": ""}`, want: ""},
		{body: `{"message": "other"}`, want: ""},
	}

	for _, tt := range tests {
		t.Run(tt.body, func(t *testing.T) {
			var errBody ErrorBody
			if err := json.Unmarshal([]byte(tt.body), &errBody); err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if errBody.Error != tt.want {
				t.Fatalf("expected %q, got %q", tt.want, errBody.Error)
			}
		})
	}
}

func TestItemCountOnNilResult(t *testing.T) {
	var result *Result
	if result.ItemCount() != 0 {
		t.Fatal("expected zero items for nil result")
	}
}
