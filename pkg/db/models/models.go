package models

// All lists every persisted model in dependency order. Used by tests and the
// sqlite bootstrap to build a schema matching the goose migrations.
func All() []any {
	return []any{
		&Record{},
		&User{},
		&PricingConfig{},
		&Order{},
		&OrderItem{},
	}
}
