package models

// All lists every table in migration order.
func All() []any {
	return []any{
		&User{},
		&Address{},
		&Category{},
		&SubCategory{},
		&HomeCategory{},
		&Brand{},
		&Product{},
		&ProductColor{},
		&ProductSize{},
		&ProductImage{},
		&Collection{},
		&Cart{},
		&CartItem{},
		&Order{},
		&OrderItem{},
		&OrderStatusHistory{},
		&Transaction{},
		&Review{},
		&Wishlist{},
		&Banner{},
	}
}
