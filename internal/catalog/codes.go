package catalog

import (
	"strings"

	"jersey-storefront/internal/model"
)

// Metadata keys written on provider line items.
const (
	MetaSKU        = "sku"
	MetaSize       = "size"
	MetaPlayerCode = "pCode"
	MetaCustomType = "cType"
	MetaBadgeCodes = "bCodes"
)

const customTypeFreeText = "custom"

// EncodeCustomization renders a customization as short codes only. Free
// text names and numbers never leave the order store.
func EncodeCustomization(c *model.Customization) map[string]string {
	meta := map[string]string{}
	if c == nil {
		return meta
	}

	switch {
	case c.PlayerCode != "":
		meta[MetaPlayerCode] = c.PlayerCode
	case c.HasPersonalization():
		meta[MetaCustomType] = customTypeFreeText
	}

	if len(c.Badges) > 0 {
		codes := make([]string, 0, len(c.Badges))
		for _, b := range c.Badges {
			codes = append(codes, b.Code)
		}
		meta[MetaBadgeCodes] = strings.Join(codes, ",")
	}

	return meta
}

// DecodeCustomization resolves codes from provider metadata back through the
// roster and badge list. Returns nil when the metadata carries no codes.
func (c *Catalog) DecodeCustomization(meta map[string]string) *model.Customization {
	out := &model.Customization{}

	if code := meta[MetaPlayerCode]; code != "" {
		out.Type = "player"
		out.PlayerCode = code
		if p, ok := c.PlayerByCode(code); ok {
			out.Name = p.Name
			out.Number = p.Number
		} else {
			out.Name = "Unknown Code: " + code
		}
	} else if meta[MetaCustomType] == customTypeFreeText {
		out.Type = customTypeFreeText
	}

	if raw := meta[MetaBadgeCodes]; raw != "" {
		for _, code := range strings.Split(raw, ",") {
			code = strings.TrimSpace(code)
			if code == "" {
				continue
			}
			if b, ok := c.BadgeByCode(code); ok {
				out.Badges = append(out.Badges, model.BadgeRef{Code: b.Code, SKU: b.SKU, Name: b.Label, Price: b.Price})
			} else {
				out.Badges = append(out.Badges, model.BadgeRef{Code: code, SKU: code, Name: "Unknown"})
			}
		}
	}

	if out.Type == "" && len(out.Badges) == 0 {
		return nil
	}
	return out
}
