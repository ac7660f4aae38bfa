package productcontroller

import (
	"strings"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// cheapestPrice is the display price in SQL: the lowest size price, or the
// product's own price when it has no variants.
const cheapestPrice = `COALESCE((SELECT MIN(ps.price) FROM product_sizes ps
	JOIN product_colors pc ON pc.id = ps.product_color_id
	WHERE pc.product_id = products.id), products.price)`

type predicate struct {
	sql  string
	args []any
}

// FilterBuilder collects product list predicates. Empty inputs are ignored.
type FilterBuilder struct {
	preds []predicate
}

func NewFilter() *FilterBuilder { return &FilterBuilder{} }

func (f *FilterBuilder) add(sql string, args ...any) *FilterBuilder {
	f.preds = append(f.preds, predicate{sql: "(" + sql + ")", args: args})
	return f
}

// Search matches the term against the name and both descriptions.
func (f *FilterBuilder) Search(term string) *FilterBuilder {
	term = strings.TrimSpace(term)
	if term == "" {
		return f
	}
	like := "%" + likeEscaper.Replace(strings.ToLower(term)) + "%"
	return f.add("LOWER(products.name) LIKE ? ESCAPE '!' OR LOWER(products.short_description) LIKE ? ESCAPE '!' OR LOWER(products.long_description) LIKE ? ESCAPE '!'",
		like, like, like)
}

// likeEscaper makes LIKE wildcards in a search term literal. '!' is the escape
// character since a backslash literal is itself an escape in MySQL.
var likeEscaper = strings.NewReplacer("!", "!!", "%", "!%", "_", "!_")

func (f *FilterBuilder) Categories(names []string) *FilterBuilder {
	names = lowered(names)
	if len(names) == 0 {
		return f
	}
	return f.add("products.category_id IN (SELECT id FROM categories WHERE LOWER(name) IN ?)", names)
}

func (f *FilterBuilder) SubCategories(names []string) *FilterBuilder {
	names = lowered(names)
	if len(names) == 0 {
		return f
	}
	return f.add("products.sub_category_id IN (SELECT id FROM sub_categories WHERE LOWER(name) IN ?)", names)
}

func (f *FilterBuilder) Brands(names []string) *FilterBuilder {
	names = lowered(names)
	if len(names) == 0 {
		return f
	}
	return f.add("products.brand_id IN (SELECT id FROM brands WHERE LOWER(name) IN ?)", names)
}

// Sizes keeps products offering at least one of the sizes.
func (f *FilterBuilder) Sizes(sizes []string) *FilterBuilder {
	sizes = trimmed(sizes)
	if len(sizes) == 0 {
		return f
	}
	return f.add(`EXISTS (SELECT 1 FROM product_sizes ps
		JOIN product_colors pc ON pc.id = ps.product_color_id
		WHERE pc.product_id = products.id AND ps.size IN ?)`, sizes)
}

func (f *FilterBuilder) Gender(g string) *FilterBuilder {
	g = strings.TrimSpace(g)
	if g == "" {
		return f
	}
	return f.add("LOWER(products.gender) = ?", strings.ToLower(g))
}

// PriceRange bounds the display price. Either end may be nil.
func (f *FilterBuilder) PriceRange(min, max *decimal.Decimal) *FilterBuilder {
	if min != nil {
		f.add(cheapestPrice+" >= ?", min.InexactFloat64())
	}
	if max != nil {
		f.add(cheapestPrice+" <= ?", max.InexactFloat64())
	}
	return f
}

func (f *FilterBuilder) Trending(only *bool) *FilterBuilder {
	if only == nil {
		return f
	}
	return f.add("products.trending = ?", *only)
}

// Apply ANDs every collected predicate onto q.
func (f *FilterBuilder) Apply(q *gorm.DB) *gorm.DB {
	for _, p := range f.preds {
		q = q.Where(p.sql, p.args...)
	}
	return q
}

func lowered(in []string) []string {
	out := trimmed(in)
	for i := range out {
		out[i] = strings.ToLower(out[i])
	}
	return out
}

func trimmed(in []string) []string {
	out := make([]string, 0, len(in))
	for _, s := range in {
		if s = strings.TrimSpace(s); s != "" {
			out = append(out, s)
		}
	}
	return out
}

type Sort string

const (
	SortLatest     Sort = "latest"
	SortPopularity Sort = "popularity"
	SortTrending   Sort = "trending"
	SortPriceLow   Sort = "price_low"
	SortPriceHigh  Sort = "price_high"
	SortNameAsc    Sort = "name_asc"
	SortNameDesc   Sort = "name_desc"
)

// ParseSort maps a query value onto the whitelist. Unknown values sort by latest.
func ParseSort(s string) Sort {
	switch v := Sort(strings.ToLower(strings.TrimSpace(s))); v {
	case SortPopularity, SortTrending, SortPriceLow, SortPriceHigh, SortNameAsc, SortNameDesc:
		return v
	case "price_low_to_high":
		return SortPriceLow
	case "price_high_to_low":
		return SortPriceHigh
	}
	return SortLatest
}

func (s Sort) orderBy() string {
	switch s {
	case SortPopularity:
		return "products.clicks DESC, products.id DESC"
	case SortTrending:
		return "products.trending DESC, products.clicks DESC, products.id DESC"
	case SortPriceLow:
		return cheapestPrice + " ASC, products.id DESC"
	case SortPriceHigh:
		return cheapestPrice + " DESC, products.id DESC"
	case SortNameAsc:
		return "products.name ASC"
	case SortNameDesc:
		return "products.name DESC"
	}
	return "products.created_at DESC, products.id DESC"
}
