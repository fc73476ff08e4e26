package models

// EventType describes a bookable event category offered by the venue,
// loaded from the catalog YAML. Pricing here is informational; the engine
// carries reservation pricing fields through unchanged.
type EventType struct {
	ID          int64          `yaml:"id" json:"id"`
	Name        string         `yaml:"name" json:"name"`
	Description string         `yaml:"description" json:"description"`
	Buffets     []BuffetOption `yaml:"buffets" json:"buffets,omitempty"`
	SortOrder   int64          `yaml:"sort_order" json:"sort_order"`
	IsActive    bool           `yaml:"is_active" json:"is_active"`
}

type BuffetOption struct {
	Name          string  `yaml:"name" json:"name"`
	PricePerGuest float64 `yaml:"price_per_guest" json:"price_per_guest"`
}
