package services

import (
	"context"
	"math/rand"
	"strings"

	"github.com/gunalchandran/grocery-backend/models"
	"github.com/gunalchandran/grocery-backend/store"
)

// PriceBand is the price range assigned to products whose name contains
// one of the keywords.
type PriceBand struct {
	Category string
	Keywords []string
	Min, Max int
}

// PriceBands are checked in order; the first band with a matching keyword
// wins.
var PriceBands = []PriceBand{
	{"dairy", []string{"milk", "cheese", "dairy", "butter"}, 40, 100},
	{"sweets", []string{"chocolate", "candy", "sweet", "sugar"}, 20, 80},
	{"snacks", []string{"chips", "lays", "kurkure", "snack"}, 10, 50},
	{"grains", []string{"rice", "atta", "wheat", "flour"}, 60, 150},
	{"oil", []string{"oil", "refined", "mustard", "sunflower"}, 100, 250},
	{"toiletries", []string{"soap", "shampoo", "toothpaste", "detergent"}, 30, 200},
	{"beverages", []string{"juice", "drink", "beverage"}, 25, 100},
	{"biscuits", []string{"biscuit", "cookies", "parle"}, 10, 50},
}

// DefaultPriceBand applies when no keyword matches.
var DefaultPriceBand = PriceBand{Category: "default", Min: 20, Max: 120}

// BandFor returns the price band for a product name.
func BandFor(name string) PriceBand {
	name = strings.ToLower(name)
	for _, band := range PriceBands {
		for _, kw := range band.Keywords {
			if strings.Contains(name, kw) {
				return band
			}
		}
	}
	return DefaultPriceBand
}

// PriceChange is one product's assigned price.
type PriceChange struct {
	ProductID string  `json:"product_id"`
	Name      string  `json:"product_name"`
	Category  string  `json:"category"`
	OldPrice  float64 `json:"old_price"`
	NewPrice  float64 `json:"new_price"`
}

// BackfillResult summarizes a price backfill run.
type BackfillResult struct {
	Updated int           `json:"updated"`
	Skipped int           `json:"skipped"`
	Changes []PriceChange `json:"changes"`
}

// Pricing assigns catalog prices from name keywords. It is a maintenance
// operation and only runs when invoked.
type Pricing struct {
	products store.ProductStore
	rng      *rand.Rand
}

func NewPricing(products store.ProductStore, rng *rand.Rand) *Pricing {
	return &Pricing{products: products, rng: rng}
}

// Backfill gives every product a random whole price from its band. With
// dryRun set the changes are computed but not written.
func (p *Pricing) Backfill(ctx context.Context, dryRun bool) (BackfillResult, error) {
	const op = "pricing.Backfill"
	var res BackfillResult

	products, err := p.products.ListProducts(ctx)
	if err != nil {
		return res, translate(op, err, "")
	}
	for _, product := range products {
		change := p.priceFor(product)
		res.Changes = append(res.Changes, change)
		if dryRun {
			continue
		}
		price := change.NewPrice
		if _, err := p.products.UpdateProduct(ctx, change.ProductID, models.ProductUpdate{Price: &price}); err != nil {
			if ctx.Err() != nil {
				return res, ctx.Err()
			}
			res.Skipped++
			continue
		}
		res.Updated++
	}
	return res, nil
}

func (p *Pricing) priceFor(product models.Product) PriceChange {
	band := BandFor(product.Name)
	return PriceChange{
		ProductID: product.ID.Hex(),
		Name:      product.Name,
		Category:  band.Category,
		OldPrice:  product.Price,
		NewPrice:  float64(band.Min + p.rng.Intn(band.Max-band.Min+1)),
	}
}
