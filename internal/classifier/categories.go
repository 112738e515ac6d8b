package classifier

import "github.com/isdelr/ewaste-ai-be/internal/models"

// Category ids of the static table.
const (
	LithiumBattery = 1
	CircuitBoard   = 2
	PlasticCasing  = 3
	LCDScreen      = 4
	CopperWires    = 5
	Smartphone     = 6
	Laptop         = 7
)

var categoryTable = []models.Category{
	{
		ID:        LithiumBattery,
		Name:      "Lithium Battery",
		Icon:      "🔋",
		Risk:      models.RiskCritical,
		Impact:    "Fire hazard, contains toxic chemicals like lithium, cobalt, and nickel",
		Recycle:   "Special battery recycling facility required",
		Materials: []string{"Lithium", "Cobalt", "Nickel", "Graphite"},
		Value:     models.ValueHigh,
		CO2Saved:  15.2,
	},
	{
		ID:        CircuitBoard,
		Name:      "Circuit Board",
		Icon:      "🔌",
		Risk:      models.RiskHigh,
		Impact:    "Contains lead, mercury, cadmium, and brominated flame retardants",
		Recycle:   "Professional e-waste facility with PCB de-soldering capability",
		Materials: []string{"Copper", "Gold", "Silver", "Lead", "Fiberglass"},
		Value:     models.ValueHigh,
		CO2Saved:  8.7,
	},
	{
		ID:        PlasticCasing,
		Name:      "Plastic Casing",
		Icon:      "🧱",
		Risk:      models.RiskMedium,
		Impact:    "Non-biodegradable, contributes to microplastic pollution",
		Recycle:   "Plastic recycling #7 (Other) - check local facilities",
		Materials: []string{"ABS Plastic", "Polycarbonate", "Flame Retardants"},
		Value:     models.ValueLow,
		CO2Saved:  2.3,
	},
	{
		ID:        LCDScreen,
		Name:      "LCD Screen",
		Icon:      "📺",
		Risk:      models.RiskHigh,
		Impact:    "Contains mercury in backlight, indium tin oxide coating",
		Recycle:   "Special screen recycling for mercury recovery",
		Materials: []string{"Mercury", "Indium", "Glass", "Liquid Crystal"},
		Value:     models.ValueModerate,
		CO2Saved:  6.5,
	},
	{
		ID:        CopperWires,
		Name:      "Copper Wires",
		Icon:      "🔗",
		Risk:      models.RiskLow,
		Impact:    "Valuable material, safe if insulated properly",
		Recycle:   "Metal recycling facility - high value scrap",
		Materials: []string{"Copper", "PVC Insulation", "Tin Coating"},
		Value:     models.ValueHigh,
		CO2Saved:  12.8,
	},
	{
		ID:        Smartphone,
		Name:      "Smartphone",
		Icon:      "📱",
		Risk:      models.RiskMediumHigh,
		Impact:    "Multiple hazardous materials in small package",
		Recycle:   "Manufacturer take-back programs or e-waste centers",
		Materials: []string{"Battery", "Screen", "Circuit Board", "Plastic/Metal Case"},
		Value:     models.ValueHigh,
		CO2Saved:  10.4,
	},
	{
		ID:        Laptop,
		Name:      "Laptop",
		Icon:      "💻",
		Risk:      models.RiskMediumHigh,
		Impact:    "Multiple components with varying toxicity levels",
		Recycle:   "Dismantle for component-specific recycling",
		Materials: []string{"Battery", "Screen", "Motherboard", "Plastic", "Aluminum"},
		Value:     models.ValueHigh,
		CO2Saved:  18.9,
	},
}

// Categories returns a copy of the category table in id order.
func Categories() []models.Category {
	out := make([]models.Category, len(categoryTable))
	for i, c := range categoryTable {
		out[i] = copyCategory(c)
	}
	return out
}

// CategoryByID looks up a single category.
func CategoryByID(id int) (models.Category, bool) {
	for _, c := range categoryTable {
		if c.ID == id {
			return copyCategory(c), true
		}
	}
	return models.Category{}, false
}

func copyCategory(c models.Category) models.Category {
	c.Materials = append([]string(nil), c.Materials...)
	return c
}
