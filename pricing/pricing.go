// Package pricing derives the display price of a product from its variants.
package pricing

import (
	"math"

	"github.com/devclub-nstru/tryyel-backend/models"
	"github.com/shopspring/decimal"
)

type Summary struct {
	Price         decimal.Decimal `json:"price"`
	OriginalPrice decimal.Decimal `json:"originalPrice"`
	Discount      int             `json:"discount"`
	Sizes         []string        `json:"sizes"`
	InStock       bool            `json:"inStock"`
}

// Summarize returns the cheapest size price, breaking ties by the higher
// original price. Products without sizes fall back to their base prices.
func Summarize(p models.Product) Summary {
	s := Summary{Sizes: []string{}}
	seen := map[string]bool{}
	found := false

	for _, c := range p.Colors {
		for _, size := range c.Sizes {
			if !seen[size.Size] {
				seen[size.Size] = true
				s.Sizes = append(s.Sizes, size.Size)
			}
			if size.Stock > 0 {
				s.InStock = true
			}
			if !found ||
				size.Price.LessThan(s.Price) ||
				(size.Price.Equal(s.Price) && size.OriginalPrice.GreaterThan(s.OriginalPrice)) {
				s.Price = size.Price
				s.OriginalPrice = size.OriginalPrice
				found = true
			}
		}
	}

	if !found {
		s.Price = p.Price
		s.OriginalPrice = p.OriginalPrice
		s.InStock = p.StockAvailable > 0
	}
	s.Discount = Discount(s.Price, s.OriginalPrice)
	return s
}

// Discount is round((orig - price) / orig * 100), or 0 when there is no markdown.
func Discount(price, original decimal.Decimal) int {
	if !original.IsPositive() || !price.LessThan(original) {
		return 0
	}
	pct := original.Sub(price).Div(original).Mul(decimal.NewFromInt(100))
	return int(pct.Round(0).IntPart())
}

// MinorUnits converts an amount to the smallest currency unit (paise for INR).
func MinorUnits(amount decimal.Decimal) int64 {
	return amount.Mul(decimal.NewFromInt(100)).Round(0).IntPart()
}

type Rating struct {
	Average float64 `json:"averageRating"`
	Count   int     `json:"reviewCount"`
}

// Ratings averages review scores to one decimal place.
func Ratings(scores []int) Rating {
	sum := 0
	for _, s := range scores {
		sum += s
	}
	return RatingOf(sum, len(scores))
}

// RatingOf averages count scores adding up to sum.
func RatingOf(sum, count int) Rating {
	if count == 0 {
		return Rating{}
	}
	avg := float64(sum) / float64(count)
	return Rating{Average: math.Round(avg*10) / 10, Count: count}
}
