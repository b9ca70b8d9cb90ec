package catalog

import (
	"fmt"
	"sort"
	"strings"

	"github.com/shopspring/decimal"
)

type ProductType string

const (
	ProductTypeJersey    ProductType = "jersey"
	ProductTypeShort     ProductType = "short"
	ProductTypeTraining  ProductType = "training"
	ProductTypeAccessory ProductType = "accessory"
)

type Product struct {
	ID                 string          `json:"id"`
	SKU                string          `json:"sku"`
	Name               string          `json:"name"`
	Price              decimal.Decimal `json:"price"`
	OriginalPrice      decimal.Decimal `json:"original_price"`
	CustomizationPrice decimal.Decimal `json:"customization_price"`
	Image              string          `json:"image"`
	Sizes              []string        `json:"sizes"`
	Type               ProductType     `json:"type"`
	Customizable       bool            `json:"customizable"`
}

type Badge struct {
	ID    string          `json:"id"`
	Code  string          `json:"code"`
	SKU   string          `json:"sku"`
	Label string          `json:"label"`
	Price decimal.Decimal `json:"price"`
}

type Player struct {
	Code   string `json:"code"`
	Name   string `json:"name"`
	Number string `json:"number"`
}

// Catalog is the read-only product, badge and player roster. Safe for
// concurrent use once built.
type Catalog struct {
	products []Product
	badges   []Badge
	players  []Player

	badgeByID     map[string]Badge
	badgeByCode   map[string]Badge
	playerByCode  map[string]Player
	playerByLabel map[string]Player
}

func New(products []Product, badges []Badge, roster []string) (*Catalog, error) {
	c := &Catalog{
		products:      products,
		badges:        badges,
		badgeByID:     make(map[string]Badge, len(badges)),
		badgeByCode:   make(map[string]Badge, len(badges)),
		playerByCode:  make(map[string]Player, len(roster)),
		playerByLabel: make(map[string]Player, len(roster)),
	}

	for _, b := range badges {
		c.badgeByID[b.ID] = b
		c.badgeByCode[b.Code] = b
	}

	for i, entry := range roster {
		p, err := parsePlayer(entry)
		if err != nil {
			return nil, err
		}
		p.Code = fmt.Sprintf("P%02d", i+1)
		c.players = append(c.players, p)
		c.playerByCode[p.Code] = p
		c.playerByLabel[playerKey(p.Name, p.Number)] = p
	}

	// longest id first so prefix matching prefers the most specific product
	sort.SliceStable(c.products, func(i, j int) bool {
		return len(c.products[i].ID) > len(c.products[j].ID)
	})

	return c, nil
}

func parsePlayer(entry string) (Player, error) {
	entry = strings.TrimSpace(entry)
	idx := strings.LastIndex(entry, " ")
	if idx <= 0 {
		return Player{}, fmt.Errorf("invalid roster entry %q", entry)
	}
	return Player{
		Name:   strings.TrimSpace(entry[:idx]),
		Number: entry[idx+1:],
	}, nil
}

func playerKey(name, number string) string {
	return strings.ToUpper(strings.TrimSpace(name)) + "#" + strings.TrimSpace(number)
}

// ProductForItem resolves a cart item id such as "202333090-M" to the
// catalog product whose id prefixes it.
func (c *Catalog) ProductForItem(itemID string) (Product, bool) {
	itemID = strings.TrimSpace(itemID)
	if itemID == "" {
		return Product{}, false
	}
	for _, p := range c.products {
		if strings.HasPrefix(itemID, p.ID) {
			return p, true
		}
	}
	return Product{}, false
}

func (c *Catalog) Products() []Product {
	out := make([]Product, len(c.products))
	copy(out, c.products)
	sort.SliceStable(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

func (c *Catalog) Badges() []Badge {
	out := make([]Badge, len(c.badges))
	copy(out, c.badges)
	return out
}

func (c *Catalog) Players() []Player {
	out := make([]Player, len(c.players))
	copy(out, c.players)
	return out
}

func (c *Catalog) BadgeByID(id string) (Badge, bool) {
	b, ok := c.badgeByID[id]
	return b, ok
}

func (c *Catalog) BadgeByCode(code string) (Badge, bool) {
	b, ok := c.badgeByCode[code]
	return b, ok
}

func (c *Catalog) PlayerByCode(code string) (Player, bool) {
	p, ok := c.playerByCode[code]
	return p, ok
}

// PlayerByName matches case-insensitively on name and exactly on number.
func (c *Catalog) PlayerByName(name, number string) (Player, bool) {
	p, ok := c.playerByLabel[playerKey(name, number)]
	return p, ok
}
