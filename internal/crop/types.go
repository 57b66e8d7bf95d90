package crop

import "strings"

// WaterRequirement is the coarse irrigation need of a crop.
type WaterRequirement string

const (
	// WaterLow marks drought-tolerant crops.
	WaterLow WaterRequirement = "Low"

	// WaterModerate marks crops with average irrigation needs.
	WaterModerate WaterRequirement = "Moderate"

	// WaterHigh marks crops that need sustained rainfall or
	// irrigation.
	WaterHigh WaterRequirement = "High"
)

// Crop describes a single crop and its growing conditions. A Crop is
// immutable once created: saved copies are only ever replaced wholesale,
// never mutated field by field.
type Crop struct {
	// ID is the stable identifier. When empty the lowercase name
	// serves as the identity key instead.
	ID string `json:"id,omitempty"`

	// Name is the common name, e.g. "Cassava".
	Name string `json:"name"`

	// ScientificName is the botanical name.
	ScientificName string `json:"scientificName,omitempty"`

	// Category groups the crop, e.g. "Cereal", "Root", "Vegetable".
	Category string `json:"category,omitempty"`

	// WaterRequirement is the irrigation need band.
	WaterRequirement WaterRequirement `json:"waterRequirement,omitempty"`

	// TempMin and TempMax bound the average temperature range in
	// degrees Celsius within which the crop is viable.
	TempMin float64 `json:"tempMin,omitempty"`
	TempMax float64 `json:"tempMax,omitempty"`

	// SoilType is the preferred soil, free text.
	SoilType string `json:"soilType,omitempty"`

	// DaysToMaturity is the typical days from planting to harvest.
	DaysToMaturity int `json:"daysToMaturity,omitempty"`

	// PlantingInstructions and CareInstructions are free-text
	// guidance lists shown to the user.
	PlantingInstructions []string `json:"plantingInstructions,omitempty"`
	CareInstructions     []string `json:"careInstructions,omitempty"`
}

// IdentityKey returns the key used to deduplicate and address a crop:
// the explicit ID when present, otherwise the case-folded name.
func (c Crop) IdentityKey() string {
	if c.ID != "" {
		return c.ID
	}
	return strings.ToLower(c.Name)
}

// Recommendation pairs a crop with its suitability assessment for a
// given weather window.
type Recommendation struct {
	// Crop is the recommended crop.
	Crop Crop `json:"crop"`

	// SuitabilityScore rates the fit on a 0-100 scale.
	SuitabilityScore int `json:"suitabilityScore"`

	// Reasoning explains the recommendation in terms of the actual
	// weather numbers.
	Reasoning string `json:"reasoning"`

	// Benefits lists upsides of planting this crop now.
	Benefits []string `json:"benefits,omitempty"`

	// Warnings lists risks the farmer should plan around.
	Warnings []string `json:"warnings,omitempty"`
}
