package main

import (
	"os"
	"path/filepath"
	"testing"
)

func TestParsePriceListText(t *testing.T) {
	t.Parallel()

	text := `Mill & Field Wholesale Price List
Effective 01 March

Cake Flour 12.5 kg R198.50
Salted Butter 5 kg R612.00
Full Cream Milk 2 l 43.80
Page 1 of 1
`
	ingredients, err := parsePriceListText(text)
	if err != nil {
		t.Fatalf("parsePriceListText returned error: %v", err)
	}
	if len(ingredients) != 3 {
		t.Fatalf("expected 3 ingredients, got %d: %+v", len(ingredients), ingredients)
	}

	first := ingredients[0]
	if first.Name != "Cake Flour" || first.PackSize != 12.5 || first.PackUnit != "kg" || first.PackPrice != 198.50 {
		t.Fatalf("unexpected first ingredient: %+v", first)
	}
	if ingredients[2].PackUnit != "l" || ingredients[2].PackPrice != 43.80 {
		t.Fatalf("unexpected third ingredient: %+v", ingredients[2])
	}
}

func TestParsePriceListTextSkipsUnknownUnits(t *testing.T) {
	t.Parallel()

	ingredients, err := parsePriceListText("Mystery Item 3 crates R99.00\n")
	if err != nil {
		t.Fatalf("parsePriceListText returned error: %v", err)
	}
	if len(ingredients) != 0 {
		t.Fatalf("expected unknown units to be skipped, got %+v", ingredients)
	}
}

func TestReadCSVPriceList(t *testing.T) {
	t.Parallel()

	csvPath := filepath.Join(t.TempDir(), "pricelist.csv")
	content := `name,supplier,pack_size,pack_unit,pack_price,price_includes_tax,notes
Cake Flour,Mill & Field,12.5,kg,198.50,false,stone ground
Salted Butter,Fairmead Dairy,5,kg,612.00,true,
`
	if err := os.WriteFile(csvPath, []byte(content), 0o600); err != nil {
		t.Fatalf("write csv: %v", err)
	}

	ingredients, err := readCSVPriceList(csvPath)
	if err != nil {
		t.Fatalf("readCSVPriceList returned error: %v", err)
	}
	if len(ingredients) != 2 {
		t.Fatalf("expected 2 ingredients, got %d", len(ingredients))
	}

	flour := ingredients[0]
	if flour.Supplier != "Mill & Field" || flour.Notes != "stone ground" || flour.PriceIncludesTax {
		t.Fatalf("unexpected flour row: %+v", flour)
	}
	if !ingredients[1].PriceIncludesTax {
		t.Fatalf("expected butter price to include tax: %+v", ingredients[1])
	}
}

func TestReadCSVPriceListRejectsMissingColumns(t *testing.T) {
	t.Parallel()

	csvPath := filepath.Join(t.TempDir(), "bad.csv")
	if err := os.WriteFile(csvPath, []byte("name,price\nFlour,12\n"), 0o600); err != nil {
		t.Fatalf("write csv: %v", err)
	}

	if _, err := readCSVPriceList(csvPath); err == nil {
		t.Fatal("expected error for missing columns")
	}
}

func TestBuildIngredientRejectsBadValues(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name  string
		size  string
		unit  string
		price string
	}{
		{name: "zero size", size: "0", unit: "kg", price: "10"},
		{name: "bad unit", size: "5", unit: "crate", price: "10"},
		{name: "negative price", size: "5", unit: "kg", price: "-10"},
		{name: "unparseable size", size: "five", unit: "kg", price: "10"},
	}
	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			if _, err := buildIngredient("Flour", tt.size, tt.unit, tt.price); err == nil {
				t.Fatal("expected error")
			}
		})
	}
}
