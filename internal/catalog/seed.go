package catalog

import (
	"context"
	"fmt"
	"os"

	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"
)

var validate = validator.New()

// seedFile is the YAML layout of a product seed:
//
//	products:
//	  - name: Kettle
//	    category: Kitchen
//	    price: 49.9
//	    weight_gram: 1200
//	    emission: 23.4
type seedFile struct {
	Products []Product `yaml:"products" validate:"dive"`
}

// LoadSeed reads and validates a YAML product seed.
func LoadSeed(path string) ([]Product, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read seed: %w", err)
	}

	var f seedFile
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("parse seed %s: %w", path, err)
	}
	if err := validate.Struct(f); err != nil {
		return nil, fmt.Errorf("invalid seed %s: %w", path, err)
	}
	return f.Products, nil
}

// Import upserts all products and returns how many were written.
func (s *SQLiteStore) Import(ctx context.Context, products []Product) (int, error) {
	for i, p := range products {
		if _, err := s.Upsert(ctx, p); err != nil {
			return i, err
		}
	}
	return len(products), nil
}
