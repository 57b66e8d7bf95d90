package crop

// refEntry is a row of the built-in reference table used by the
// heuristic recommender. baseScore is a static suitability prior that
// orders candidates once the hard filters have run.
type refEntry struct {
	crop      Crop
	baseScore int
	benefits  []string
}

// referenceTable is the fixed fallback catalogue. It intentionally skews
// toward staple crops for tropical and subtropical smallholdings, since
// that is where the advisory client operates.
var referenceTable = []refEntry{
	{
		crop: Crop{
			Name:             "Cassava",
			ScientificName:   "Manihot esculenta",
			Category:         "Root",
			WaterRequirement: WaterLow,
			TempMin:          20,
			TempMax:          35,
			SoilType:         "Well-drained sandy loam",
			DaysToMaturity:   300,
			PlantingInstructions: []string{
				"Plant stem cuttings 20-30cm long at a slant",
				"Space rows 1m apart",
			},
			CareInstructions: []string{
				"Weed during the first three months",
			},
		},
		baseScore: 88,
		benefits: []string{
			"Thrives in poor soil",
			"Long in-ground storage after maturity",
		},
	},
	{
		crop: Crop{
			Name:             "Millet",
			ScientificName:   "Pennisetum glaucum",
			Category:         "Cereal",
			WaterRequirement: WaterLow,
			TempMin:          22,
			TempMax:          35,
			SoilType:         "Light sandy soil",
			DaysToMaturity:   90,
			PlantingInstructions: []string{
				"Broadcast or drill seed 2-3cm deep",
			},
			CareInstructions: []string{
				"Thin seedlings to 10cm spacing",
			},
		},
		baseScore: 85,
		benefits: []string{
			"Very drought hardy",
			"Short growing cycle",
		},
	},
	{
		crop: Crop{
			Name:             "Sorghum",
			ScientificName:   "Sorghum bicolor",
			Category:         "Cereal",
			WaterRequirement: WaterLow,
			TempMin:          21,
			TempMax:          35,
			SoilType:         "Tolerates heavy clay",
			DaysToMaturity:   110,
			PlantingInstructions: []string{
				"Sow 3-5cm deep after soil warms",
			},
			CareInstructions: []string{
				"Guard against bird damage near maturity",
			},
		},
		baseScore: 84,
		benefits: []string{
			"Withstands both drought and short waterlogging",
		},
	},
	{
		crop: Crop{
			Name:             "Maize",
			ScientificName:   "Zea mays",
			Category:         "Cereal",
			WaterRequirement: WaterModerate,
			TempMin:          18,
			TempMax:          32,
			SoilType:         "Fertile loam",
			DaysToMaturity:   100,
			PlantingInstructions: []string{
				"Sow 3-5cm deep, 25cm in-row spacing",
			},
			CareInstructions: []string{
				"Top-dress nitrogen at knee height",
			},
		},
		baseScore: 90,
		benefits: []string{
			"Reliable market demand",
		},
	},
	{
		crop: Crop{
			Name:             "Rice",
			ScientificName:   "Oryza sativa",
			Category:         "Cereal",
			WaterRequirement: WaterHigh,
			TempMin:          20,
			TempMax:          35,
			SoilType:         "Clay that holds standing water",
			DaysToMaturity:   120,
			PlantingInstructions: []string{
				"Transplant seedlings into puddled field",
			},
			CareInstructions: []string{
				"Maintain 5cm standing water through tillering",
			},
		},
		baseScore: 87,
		benefits: []string{
			"High yield under wet conditions",
		},
	},
	{
		crop: Crop{
			Name:             "Taro",
			ScientificName:   "Colocasia esculenta",
			Category:         "Root",
			WaterRequirement: WaterHigh,
			TempMin:          21,
			TempMax:          35,
			SoilType:         "Moist, rich soil",
			DaysToMaturity:   200,
			PlantingInstructions: []string{
				"Plant corms 15cm deep in wet beds",
			},
			CareInstructions: []string{
				"Keep soil saturated throughout growth",
			},
		},
		baseScore: 75,
		benefits: []string{
			"Tolerates flooded ground other crops cannot",
		},
	},
	{
		crop: Crop{
			Name:             "Beans",
			ScientificName:   "Phaseolus vulgaris",
			Category:         "Legume",
			WaterRequirement: WaterModerate,
			TempMin:          16,
			TempMax:          29,
			SoilType:         "Well-drained loam",
			DaysToMaturity:   60,
			PlantingInstructions: []string{
				"Direct-sow 3cm deep after rains begin",
			},
			CareInstructions: []string{
				"Avoid overhead watering once flowering",
			},
		},
		baseScore: 82,
		benefits: []string{
			"Fixes nitrogen for the next rotation",
			"Fast to first harvest",
		},
	},
	{
		crop: Crop{
			Name:             "Groundnut",
			ScientificName:   "Arachis hypogaea",
			Category:         "Legume",
			WaterRequirement: WaterModerate,
			TempMin:          20,
			TempMax:          33,
			SoilType:         "Loose sandy loam",
			DaysToMaturity:   120,
			PlantingInstructions: []string{
				"Sow shelled kernels 5cm deep",
			},
			CareInstructions: []string{
				"Earth up around plants at flowering",
			},
		},
		baseScore: 80,
		benefits: []string{
			"Improves soil fertility",
		},
	},
	{
		crop: Crop{
			Name:             "Tomato",
			ScientificName:   "Solanum lycopersicum",
			Category:         "Vegetable",
			WaterRequirement: WaterModerate,
			TempMin:          15,
			TempMax:          30,
			SoilType:         "Fertile, well-drained loam",
			DaysToMaturity:   75,
			PlantingInstructions: []string{
				"Transplant seedlings at 4-6 true leaves",
			},
			CareInstructions: []string{
				"Stake early and prune suckers",
			},
		},
		baseScore: 78,
		benefits: []string{
			"Strong local market price",
		},
	},
	{
		crop: Crop{
			Name:             "Sweet Potato",
			ScientificName:   "Ipomoea batatas",
			Category:         "Root",
			WaterRequirement: WaterLow,
			TempMin:          18,
			TempMax:          33,
			SoilType:         "Sandy loam ridges",
			DaysToMaturity:   110,
			PlantingInstructions: []string{
				"Plant vine cuttings on ridges",
			},
			CareInstructions: []string{
				"Lift vines occasionally to stop rooting at nodes",
			},
		},
		baseScore: 81,
		benefits: []string{
			"Good ground cover suppresses weeds",
		},
	},
	{
		crop: Crop{
			Name:             "Okra",
			ScientificName:   "Abelmoschus esculentus",
			Category:         "Vegetable",
			WaterRequirement: WaterModerate,
			TempMin:          20,
			TempMax:          35,
			SoilType:         "Well-drained loam",
			DaysToMaturity:   55,
			PlantingInstructions: []string{
				"Soak seed overnight, sow 2cm deep",
			},
			CareInstructions: []string{
				"Harvest pods every two days once bearing",
			},
		},
		baseScore: 74,
		benefits: []string{
			"Continuous harvest over a long season",
		},
	},
	{
		crop: Crop{
			Name:             "Cabbage",
			ScientificName:   "Brassica oleracea",
			Category:         "Vegetable",
			WaterRequirement: WaterHigh,
			TempMin:          10,
			TempMax:          24,
			SoilType:         "Firm, fertile soil",
			DaysToMaturity:   90,
			PlantingInstructions: []string{
				"Transplant at 4-5 weeks, firm in well",
			},
			CareInstructions: []string{
				"Never let the soil dry out during heading",
			},
		},
		baseScore: 70,
		benefits: []string{
			"Cool-season option for highland plots",
		},
	},
}

// ReferenceCrops returns a copy of the built-in crop catalogue, used by
// the CLI to let users save crops by name without typing full records.
func ReferenceCrops() []Crop {
	crops := make([]Crop, len(referenceTable))
	for i, entry := range referenceTable {
		crops[i] = entry.crop
	}
	return crops
}

// LookupReference finds a reference crop by identity key. The second
// return value reports whether the crop was found.
func LookupReference(name string) (Crop, bool) {
	needle := (Crop{Name: name}).IdentityKey()
	for _, entry := range referenceTable {
		if entry.crop.IdentityKey() == needle {
			return entry.crop, true
		}
	}
	return Crop{}, false
}
