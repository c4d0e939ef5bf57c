package stylist

import (
	"fmt"
	"math/rand"

	"github.com/example/outfit-stylist/internal/recommendation"
)

// Categories are the labels the classifier can assign to an input garment.
var Categories = []string{
	"Jackets & Vests", "Shirts & Polos", "Suiting", "Blouses & Shirts",
	"Cardigans", "Dresses", "Graphic Tees", "Jackets & Coats", "Leggings",
	"Rompers & Jumpsuits", "Skirts", "Denim", "Pants", "Shorts",
	"Sweaters", "Sweatshirts & Hoodies", "Tees & Tanks",
}

// Outfit slots filled by the suggestion rules.
const (
	SlotTops        = "Tops"
	SlotBottoms     = "Bottoms"
	SlotShoes       = "Shoes"
	SlotOuterwear   = "Outerwear"
	SlotAccessories = "Accessories"
)

// maxOutfitItems caps how many items one suggestion carries.
const maxOutfitItems = 3

// Catalog maps an outfit slot to the item suggested for it.
type Catalog map[string]recommendation.OutfitItem

// DefaultCatalog is the built-in demo catalog.
var DefaultCatalog = Catalog{
	SlotTops:        {Name: "Basic Fit Tee", ImageURL: "https://placehold.co/200x300/E2E8F0/AAAAAA?text=Basic+Tee"},
	SlotBottoms:     {Name: "Straight Leg Jeans", ImageURL: "https://placehold.co/200x300/A0AEC0/FFFFFF?text=Straight+Jeans"},
	SlotShoes:       {Name: "Classic Sneakers", ImageURL: "https://placehold.co/200x300/CBD5E0/FFFFFF?text=Classic+Sneakers"},
	SlotOuterwear:   {Name: "Khaki Bomber Jacket", ImageURL: "https://placehold.co/200x300/718096/FFFFFF?text=Khaki+Bomber"},
	SlotAccessories: {Name: "Sporty Baseball Cap", ImageURL: "https://placehold.co/200x300/4A5568/FFFFFF?text=Baseball+Cap"},
}

var (
	topCategories    = set("Tees & Tanks", "Graphic Tees", "Shirts & Polos", "Blouses & Shirts")
	onePieceCategory = set("Dresses", "Rompers & Jumpsuits")
	bottomCategories = set("Skirts", "Denim", "Pants", "Shorts", "Leggings")
)

func set(values ...string) map[string]struct{} {
	out := make(map[string]struct{}, len(values))
	for _, v := range values {
		out[v] = struct{}{}
	}
	return out
}

// Suggest builds the outfit for a classified input garment. rnd decides the
// optional outerwear on tops.
func (c Catalog) Suggest(category string, rnd *rand.Rand) (string, []recommendation.OutfitItem) {
	var slots []string
	switch {
	case has(topCategories, category):
		slots = []string{SlotBottoms, SlotShoes}
		if rnd != nil && rnd.Float64() > 0.5 {
			slots = append(slots, SlotOuterwear)
		}
	case has(onePieceCategory, category):
		slots = []string{SlotShoes, SlotAccessories}
	case has(bottomCategories, category):
		slots = []string{SlotTops, SlotShoes}
	default:
		slots = []string{SlotTops, SlotBottoms, SlotShoes}
	}

	items := make([]recommendation.OutfitItem, 0, len(slots))
	for _, slot := range slots {
		item, ok := c[slot]
		if !ok {
			continue
		}
		item.Category = slot
		items = append(items, item)
		if len(items) == maxOutfitItems {
			break
		}
	}

	text := fmt.Sprintf("With a '%s' piece, here is an outfit idea for you:", category)
	return text, items
}

func has(s map[string]struct{}, v string) bool {
	_, ok := s[v]
	return ok
}
