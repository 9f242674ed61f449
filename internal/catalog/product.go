package catalog

import (
	"errors"
	"strconv"
)

// ErrNotFound is returned when a product does not exist.
var ErrNotFound = errors.New("product not found")

// Product is one catalog entry with its estimated emission.
type Product struct {
	ID                int64   `json:"id" yaml:"-"`
	Name              string  `json:"name" yaml:"name" validate:"required"`
	Category          string  `json:"category" yaml:"category" validate:"required"`
	DetailedCategory  string  `json:"detailedCategory,omitempty" yaml:"detailed_category"`
	Price             float64 `json:"price" yaml:"price" validate:"gte=0"`                          // CHF
	WeightGram        float64 `json:"weightGram" yaml:"weight_gram" validate:"gte=0"`               // grams
	Emission          float64 `json:"emission" yaml:"emission" validate:"gte=0"`                    // kg CO2
	CompensationPrice float64 `json:"compensationPrice" yaml:"compensation_price" validate:"gte=0"` // CHF
}

// PointKey identifies a product's point on the emission/weight scatter.
func (p Product) PointKey() string {
	return PointKey(p.Emission, p.WeightGram)
}

// PointKey formats an emission/weight pair as "<emission>-<weight>".
func PointKey(emission, weightGram float64) string {
	return strconv.FormatFloat(emission, 'f', -1, 64) + "-" + strconv.FormatInt(int64(weightGram), 10)
}

// Stats summarizes the catalog.
type Stats struct {
	Products    int     `json:"products"`
	Categories  int     `json:"categories"`
	MinEmission float64 `json:"minEmission"`
	MaxEmission float64 `json:"maxEmission"`
}

// Filter narrows a product listing. Empty Categories means all categories.
type Filter struct {
	Categories []string
}
