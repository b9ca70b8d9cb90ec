package catalog

import "github.com/shopspring/decimal"

var defaultBadges = []Badge{
	{ID: "laligawinners", Code: "B1", SKU: "BDG-LALIGA", Label: "LaLiga Winners", Price: decimal.NewFromInt(15)},
	{ID: "ucl", Code: "B2", SKU: "BDG-UCL", Label: "UCL", Price: decimal.NewFromInt(15)},
	{ID: "supercopa", Code: "B3", SKU: "BDG-SUPERCOPA", Label: "Supercopa", Price: decimal.NewFromInt(30)},
}

var defaultRoster = []string{
	"LAMINE YAMAL 10",
	"PEDRI 8",
	"RAPHINHA 11",
	"LEWANDOWSKI 9",
	"RASHFORD 14",
	"FERMÍN 16",
	"F. DE JONG 21",
	"CUBARSÍ 5",
	"GAVI 6",
	"ROONY 19",
	"KOUNDE 23",
	"FERRAN 7",
	"BALDE 3",
	"BERNAL 22",
	"ERIC 24",
	"M. CASADÓ 17",
	"OLMO 20",
	"CHRISTENSEN 15",
	"GERARD MARTÍN 18",
	"R. ARAUJO 4",
}

var defaultProducts = []Product{
	{
		ID:                 "202333090",
		SKU:                "FCB-2526-4TH-JSY-PE",
		Name:               "SUPERCOPA Men's fourth jersey 25/26 FC Barcelona - Player's Edition",
		Price:              decimal.RequireFromString("49.99"),
		OriginalPrice:      decimal.RequireFromString("140.00"),
		CustomizationPrice: decimal.RequireFromString("20.00"),
		Image:              "/images/contentProduct/main.webp",
		Sizes:              []string{"S", "M", "L", "XL", "XXL"},
		Type:               ProductTypeJersey,
		Customizable:       true,
	},
	{
		ID:    "15202689679745",
		SKU:   "FCB-2526-4TH-SHORT-PE",
		Name:  "Fourth Short FC Barcelona 25/26 - Player's Edition",
		Price: decimal.RequireFromString("39.99"),
		Image: "/images/otherProducts/Short_fc_2526.webp",
		Sizes: []string{"S", "M", "L", "XL", "2XL"},
		Type:  ProductTypeShort,
	},
	{
		ID:    "socks-2526",
		SKU:   "FCB-2526-4TH-SOCKS",
		Name:  "Fourth Kit Socks FC Barcelona 25/26",
		Price: decimal.RequireFromString("19.99"),
		Image: "/images/otherProducts/fourth_kit_socks_2526.webp",
		Sizes: []string{"38-42", "42-46"},
		Type:  ProductTypeAccessory,
	},
	{
		ID:    "54860590219649",
		SKU:   "FCB-2526-4TH-PRE-SWEAT",
		Name:  "Pre-Match sweatshirt FC Barcelona fourth 25/26",
		Price: decimal.RequireFromString("64.99"),
		Image: "/images/otherProducts/pre_Match_sweatshirt.webp",
		Sizes: []string{"S", "M", "L", "XL", "2XL"},
		Type:  ProductTypeTraining,
	},
	{
		ID:    "pre-match-jersey",
		SKU:   "FCB-2526-4TH-PRE-JSY",
		Name:  "Pre-Match Jersey FC Barcelona Fourth 25/26",
		Price: decimal.RequireFromString("49.99"),
		Image: "/images/otherProducts/pre_Match_fourth_2526.webp",
		Sizes: []string{"S", "M", "L", "XL", "2XL"},
		Type:  ProductTypeTraining,
	},
}

// Default returns the storefront's built-in catalog.
func Default() *Catalog {
	products := make([]Product, len(defaultProducts))
	copy(products, defaultProducts)

	c, err := New(products, defaultBadges, defaultRoster)
	if err != nil {
		panic(err) // static data
	}
	return c
}
