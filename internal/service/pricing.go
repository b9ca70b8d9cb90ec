package service

import (
	"fmt"
	"maps"
	"slices"
	"strings"

	"jersey-storefront/internal/catalog"
	"jersey-storefront/internal/client"
	"jersey-storefront/internal/dto"
	"jersey-storefront/internal/model"
	"jersey-storefront/internal/textutil"

	"github.com/shopspring/decimal"
)

// Provider metadata limits.
const (
	maxMetadataKeys     = 50
	maxMetadataKeyLen   = 40
	maxMetadataValueLen = 500
)

var hundred = decimal.NewFromInt(100)

type pricedItem struct {
	item    model.OrderItem
	product catalog.Product
	known   bool
}

type pricedCart struct {
	items []*pricedItem
	total decimal.Decimal
}

// priceCart resolves every cart line against the catalog and computes the
// authoritative total. Client prices and totals are never read.
func priceCart(cat *catalog.Catalog, cartItems []*dto.CartItem) (*pricedCart, error) {
	cart := &pricedCart{total: decimal.Zero}

	for _, ci := range cartItems {
		if ci == nil {
			continue
		}
		quantity := ci.Quantity
		if quantity == 0 {
			quantity = 1
		}
		if quantity < 0 {
			return nil, fmt.Errorf("%w: item %q has quantity %d", ErrInvalidQuantity, ci.ID, ci.Quantity)
		}

		p := &pricedItem{}
		product, ok := cat.ProductForItem(ci.ID)
		p.product, p.known = product, ok

		item := model.OrderItem{
			SKU:      model.UnknownSKU,
			Quantity: quantity,
			Price:    decimal.Zero,
		}
		if size := strings.TrimSpace(ci.Size); size != "" {
			item.Size = &size
		}

		if ok {
			item.SKU = product.SKU
			item.ProductName = product.Name
			item.Customization = resolveCustomization(cat, ci.Customization)
			item.Price = unitPrice(product, item.Customization)
		} else {
			item.ProductName = strings.TrimSpace(ci.Name)
			if item.ProductName == "" {
				item.ProductName = ci.ID
			}
		}

		p.item = item
		cart.items = append(cart.items, p)
		cart.total = cart.total.Add(item.LineTotal())
	}

	if len(cart.items) == 0 {
		return nil, ErrEmptyCart
	}
	cart.total = cart.total.Round(2)
	return cart, nil
}

func unitPrice(product catalog.Product, c *model.Customization) decimal.Decimal {
	price := product.Price
	if c.HasPersonalization() {
		price = price.Add(product.CustomizationPrice)
	}
	if c != nil {
		for _, b := range c.Badges {
			price = price.Add(b.Price)
		}
	}
	return price.Round(2)
}

// resolveCustomization maps the storefront selection onto catalog data: a
// known player gets its roster code, anything else is free text. Badge ids
// that the catalog does not know are dropped.
func resolveCustomization(cat *catalog.Catalog, in *dto.Customization) *model.Customization {
	if in == nil {
		return nil
	}

	out := &model.Customization{
		PrintingType: strings.TrimSpace(in.PrintingType),
		Name:         strings.TrimSpace(in.Details.Name),
		Number:       strings.TrimSpace(in.Details.Number.String()),
	}

	if out.Name != "" || out.Number != "" {
		out.Type = "custom"
		if strings.EqualFold(in.Type, "player") {
			if player, ok := cat.PlayerByName(out.Name, out.Number); ok {
				out.Type = "player"
				out.PlayerCode = player.Code
				out.Name = player.Name
				out.Number = player.Number
			}
		}
	}

	selections := in.Badges
	if in.Badge != nil {
		selections = append([]dto.BadgeSelection{*in.Badge}, selections...)
	}
	seen := map[string]bool{}
	for _, sel := range selections {
		badge, ok := cat.BadgeByID(sel.ID)
		if !ok || seen[badge.Code] {
			continue
		}
		seen[badge.Code] = true
		out.Badges = append(out.Badges, model.BadgeRef{
			Code:  badge.Code,
			SKU:   badge.SKU,
			Name:  badge.Label,
			Price: badge.Price,
		})
	}

	if !out.HasPersonalization() && len(out.Badges) == 0 {
		return nil
	}
	return out
}

// toMinorUnits converts a decimal amount to cents.
func toMinorUnits(amount decimal.Decimal) int64 {
	return amount.Round(2).Mul(hundred).IntPart()
}

// providerLineItems builds the minimized provider view of the cart. Unknown
// products stay on the order for inspection but are never sent.
func providerLineItems(cart *pricedCart, imageBase string) []*client.CheckoutLineItem {
	var out []*client.CheckoutLineItem
	for _, p := range cart.items {
		if !p.known {
			continue
		}

		name := p.product.Name
		meta := catalog.EncodeCustomization(p.item.Customization)
		meta[catalog.MetaSKU] = p.item.SKU
		if p.item.Size != nil {
			name = fmt.Sprintf("%s - %s", name, *p.item.Size)
			meta[catalog.MetaSize] = *p.item.Size
		}

		out = append(out, &client.CheckoutLineItem{
			Name:       name,
			Image:      absoluteURL(imageBase, p.product.Image),
			UnitAmount: toMinorUnits(p.item.Price),
			Quantity:   int64(p.item.Quantity),
			Metadata:   limitMetadata(meta, maxMetadataKeys),
		})
	}
	return out
}

func absoluteURL(base, path string) string {
	if path == "" || strings.HasPrefix(path, "http://") || strings.HasPrefix(path, "https://") {
		return path
	}
	return strings.TrimRight(base, "/") + "/" + strings.TrimLeft(path, "/")
}

// limitMetadata enforces the provider ceilings: at most maxKeys keys, keys
// cut to 40 characters, values to 500. Empty values are dropped.
func limitMetadata(in map[string]string, maxKeys int) map[string]string {
	out := make(map[string]string, len(in))
	for _, k := range slices.Sorted(maps.Keys(in)) {
		v := in[k]
		if v == "" {
			continue
		}
		if len(out) == maxKeys {
			break
		}
		out[textutil.Truncate(k, maxMetadataKeyLen)] = textutil.Truncate(v, maxMetadataValueLen)
	}
	return out
}
