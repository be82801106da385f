package normalize

import (
	"strings"

	"github.com/google/uuid"

	"ecometl/internal/extract"
	"ecometl/internal/logging"
	"ecometl/internal/model"
)

// ProductsContract lists the columns the pipeline reads from the product
// catalog export. "Uniqe Id" is the upstream header, typo included; the
// canonical matcher absorbs it either way.
var ProductsContract = extract.Contract{
	Source: "products",
	Fields: []extract.Field{
		{Column: "product_id", Header: "Uniqe Id", Required: true},
		{Column: "product_name", Header: "Product Name"},
		{Column: "brand_name", Header: "Brand Name"},
		{Column: "category", Header: "Category"},
		{Column: "model_number", Header: "Model Number"},
		{Column: "size_quantity_variant", Header: "Size Quantity Variant"},
		{Column: "color", Header: "Color"},
		{Column: "dimensions", Header: "Dimensions"},
		{Column: "shipping_weight", Header: "Shipping Weight"},
		{Column: "selling_price", Header: "Selling Price"},
		{Column: "stock", Header: "Stock"},
		{Column: "quantity", Header: "Quantity"},
		{Column: "product_url", Header: "Product URL"},
		{Column: "product_description", Header: "Product Description"},
	},
}

// splitVariant extracts discrete size and color values from a free-text
// variant cell. Cells look like "Size: 9.5 | Color: Black", "Size:M", or
// just "9.5"; segments split on "|", labeled segments are matched by label
// and a bare first segment counts as the size.
func splitVariant(s string) (size, color string) {
	for i, seg := range strings.Split(s, "|") {
		seg = strings.TrimSpace(seg)
		if seg == "" {
			continue
		}
		label, value, found := strings.Cut(seg, ":")
		if !found {
			if i == 0 {
				size = seg
			}
			continue
		}
		value = strings.TrimSpace(value)
		switch strings.ToLower(strings.TrimSpace(label)) {
		case "size":
			if size == "" {
				size = value
			}
		case "color", "colour":
			if color == "" {
				color = value
			}
		}
	}
	return size, color
}

// validProductID accepts the catalog's id shapes: canonical UUID or the
// bare 32-hex form the export actually uses.
func validProductID(s string) bool {
	_, err := uuid.Parse(s)
	return err == nil
}

// Products normalizes the product catalog frame straight into warehouse
// rows. A missing or malformed product id drops the row; bad numerics are
// nulled (negative stock clamps to zero) and counted, the row stays.
func Products(f *extract.Frame, log *logging.Logger) ([]model.Product, *Report) {
	if log == nil {
		log = logging.NewNop()
	}
	rep := newReport(f.Source)
	rep.Total = f.Len()

	var (
		ids      = f.Column("product_id")
		names    = f.Column("product_name")
		brands   = f.Column("brand_name")
		cats     = f.Column("category")
		models   = f.Column("model_number")
		variants = f.Column("size_quantity_variant")
		colors   = f.Column("color")
		dims     = f.Column("dimensions")
		weights  = f.Column("shipping_weight")
		prices   = f.Column("selling_price")
		stocks   = f.Column("stock")
		qtys     = f.Column("quantity")
		urls     = f.Column("product_url")
		descs    = f.Column("product_description")
	)

	out := make([]model.Product, 0, f.Len())
	for i := 0; i < f.Len(); i++ {
		id := strings.TrimSpace(ids[i])
		if id == "" {
			rep.dropRow("product_id: missing")
			continue
		}
		if !validProductID(id) {
			rep.dropRow("product_id: not a uuid")
			log.Debug("product id not a uuid", "value", id)
			continue
		}

		p := model.Product{ProductID: id}
		p.ProductName = cleanString(names[i])
		p.BrandName = cleanString(brands[i])
		p.Category = cleanString(cats[i])
		p.ModelNumber = cleanString(models[i])

		size, variantColor := splitVariant(variants[i])
		if size != "" {
			p.Size = &size
		}
		if c := strings.TrimSpace(colors[i]); c != "" {
			p.Color = &c
		} else if variantColor != "" {
			p.Color = &variantColor
		}

		p.Dimensions = cleanString(dims[i])
		if v := strings.TrimSpace(weights[i]); v != "" {
			switch w, ok := parseFloatField(v); {
			case !ok:
				rep.countField("shipping_weight: not numeric")
			case w < 0:
				rep.countField("shipping_weight: negative")
			default:
				w = round2(w)
				p.ShippingWeight = &w
			}
		}
		if v := strings.TrimSpace(prices[i]); v != "" {
			switch pr, ok := parseCurrency(v); {
			case !ok:
				rep.countField("selling_price: not numeric")
			case pr < 0:
				rep.countField("selling_price: negative")
			default:
				pr = round2(pr)
				p.SellingPrice = &pr
			}
		}
		if v := strings.TrimSpace(stocks[i]); v != "" {
			if n, ok := parseIntField(v); ok {
				if n < 0 {
					n = 0
					rep.countField("stock: negative clamped")
				}
				p.Stock = &n
			} else {
				rep.countField("stock: not numeric")
			}
		}
		if v := strings.TrimSpace(qtys[i]); v != "" {
			if n, ok := parseIntField(v); ok {
				if n < 0 {
					n = 0
					rep.countField("quantity: negative clamped")
				}
				p.Quantity = &n
			} else {
				rep.countField("quantity: not numeric")
			}
		}
		p.ProductURL = cleanString(urls[i])
		p.ProductDescription = cleanString(descs[i])

		out = append(out, p)
	}
	rep.Valid = len(out)

	log.Info("products normalized",
		"total", rep.Total, "valid", rep.Valid, "dropped", rep.Dropped)
	return out, rep
}
