package main

import (
	"bytes"
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
	"github.com/ledongthuc/pdf"
	"gorm.io/gorm"

	"provender/internal/config"
	"provender/internal/costing"
	"provender/internal/db"
	"provender/models"
)

// priceLinePattern matches a supplier price-list line such as
// "Cake Flour 12.5 kg R198.50" or "Full Cream Milk 2 l 43.80".
var priceLinePattern = regexp.MustCompile(`^(.+?)\s+(\d+(?:\.\d+)?)\s*([A-Za-z]+)\s+R?\s*(\d+(?:\.\d+)?)\s*$`)

func main() {
	if len(os.Args) < 2 {
		fmt.Fprintln(os.Stderr, "usage: import-pricelist <pricelist.csv|pricelist.pdf>")
		os.Exit(2)
	}

	if err := run(os.Args[1]); err != nil {
		fmt.Fprintf(os.Stderr, "import failed: %v\n", err)
		os.Exit(1)
	}
}

func run(path string) error {
	if strings.TrimSpace(path) == "" {
		return errors.New("price list path must not be empty")
	}
	if _, err := os.Stat(path); err != nil {
		return fmt.Errorf("locate price list: %w", err)
	}

	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	database, err := db.Initialize(cfg.Database)
	if err != nil {
		return fmt.Errorf("open database: %w", err)
	}
	if err := db.AutoMigrate(database); err != nil {
		return fmt.Errorf("auto migrate: %w", err)
	}

	var ingredients []models.Ingredient
	switch strings.ToLower(filepath.Ext(path)) {
	case ".csv":
		ingredients, err = readCSVPriceList(path)
	case ".pdf":
		ingredients, err = readPDFPriceList(path)
	default:
		return fmt.Errorf("unsupported price list format %q", filepath.Ext(path))
	}
	if err != nil {
		return fmt.Errorf("read price list: %w", err)
	}
	if len(ingredients) == 0 {
		return errors.New("price list contained no usable rows")
	}

	imported, err := upsertIngredients(database, ingredients)
	if err != nil {
		return err
	}

	fmt.Fprintf(os.Stdout, "Imported %d ingredients from %s\n", imported, filepath.Base(path))
	return nil
}

// upsertIngredients writes each parsed row in its own transaction, matching
// existing catalog entries by name so reruns update prices instead of
// duplicating rows.
func upsertIngredients(database *gorm.DB, ingredients []models.Ingredient) (int, error) {
	ctx := context.Background()
	imported := 0
	for idx, ingredient := range ingredients {
		ingredient := ingredient
		err := database.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
			var existing models.Ingredient
			err := tx.Where("lower(name) = ?", strings.ToLower(ingredient.Name)).First(&existing).Error
			switch {
			case err == nil:
				updates := map[string]any{
					"pack_size":          ingredient.PackSize,
					"pack_unit":          ingredient.PackUnit,
					"pack_price":         ingredient.PackPrice,
					"price_includes_tax": ingredient.PriceIncludesTax,
				}
				if ingredient.Supplier != "" {
					updates["supplier"] = ingredient.Supplier
				}
				if ingredient.Notes != "" {
					updates["notes"] = ingredient.Notes
				}
				return tx.Model(&existing).Updates(updates).Error
			case errors.Is(err, gorm.ErrRecordNotFound):
				return tx.Create(&ingredient).Error
			default:
				return err
			}
		})
		if err != nil {
			return imported, fmt.Errorf("record %d (%s): %w", idx+1, ingredient.Name, err)
		}
		imported++
	}
	return imported, nil
}

func readCSVPriceList(path string) ([]models.Ingredient, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer file.Close()

	reader := csv.NewReader(file)
	reader.TrimLeadingSpace = true
	rows, err := reader.ReadAll()
	if err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return nil, errors.New("csv is empty")
	}

	header := make(map[string]int, len(rows[0]))
	for idx, key := range rows[0] {
		header[strings.ToLower(strings.TrimSpace(key))] = idx
	}
	for _, required := range []string{"name", "pack_size", "pack_unit", "pack_price"} {
		if _, ok := header[required]; !ok {
			return nil, fmt.Errorf("csv is missing the %q column", required)
		}
	}

	field := func(row []string, key string) string {
		idx, ok := header[key]
		if !ok || idx >= len(row) {
			return ""
		}
		return strings.TrimSpace(row[idx])
	}

	ingredients := make([]models.Ingredient, 0, len(rows)-1)
	for idx, row := range rows[1:] {
		name := field(row, "name")
		if name == "" {
			continue
		}

		ingredient, err := buildIngredient(
			name,
			field(row, "pack_size"),
			field(row, "pack_unit"),
			field(row, "pack_price"),
		)
		if err != nil {
			return nil, fmt.Errorf("row %d (%s): %w", idx+2, name, err)
		}

		ingredient.Supplier = field(row, "supplier")
		ingredient.Notes = field(row, "notes")
		if includes := field(row, "price_includes_tax"); includes != "" {
			parsed, err := strconv.ParseBool(includes)
			if err != nil {
				return nil, fmt.Errorf("row %d (%s): parse price_includes_tax: %w", idx+2, name, err)
			}
			ingredient.PriceIncludesTax = parsed
		}

		ingredients = append(ingredients, ingredient)
	}
	return ingredients, nil
}

func readPDFPriceList(path string) ([]models.Ingredient, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	text, err := extractTextFromPDF(data)
	if err != nil {
		return nil, err
	}
	return parsePriceListText(text)
}

func extractTextFromPDF(data []byte) (string, error) {
	reader, err := pdf.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return "", err
	}
	var builder strings.Builder
	numPages := reader.NumPage()
	for i := 1; i <= numPages; i++ {
		page := reader.Page(i)
		if page.V.IsNull() {
			continue
		}
		text, err := page.GetPlainText(nil)
		if err != nil {
			return "", err
		}
		builder.WriteString(text)
		builder.WriteString("\n")
	}
	return builder.String(), nil
}

// parsePriceListText pulls ingredient rows out of extracted PDF text. Lines
// that do not look like a priced pack are skipped rather than treated as
// errors because supplier PDFs carry headers, footers, and page numbers.
func parsePriceListText(text string) ([]models.Ingredient, error) {
	var ingredients []models.Ingredient
	for _, line := range strings.Split(text, "\n") {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		match := priceLinePattern.FindStringSubmatch(line)
		if match == nil {
			continue
		}

		ingredient, err := buildIngredient(match[1], match[2], match[3], match[4])
		if err != nil {
			continue
		}
		ingredients = append(ingredients, ingredient)
	}
	return ingredients, nil
}

func buildIngredient(name, size, unit, price string) (models.Ingredient, error) {
	packSize, err := strconv.ParseFloat(size, 64)
	if err != nil {
		return models.Ingredient{}, fmt.Errorf("parse pack size: %w", err)
	}
	if packSize <= 0 {
		return models.Ingredient{}, fmt.Errorf("pack size must be positive, got %g", packSize)
	}

	packUnit, ok := costing.ParseUnit(unit)
	if !ok {
		return models.Ingredient{}, fmt.Errorf("unknown unit %q", unit)
	}

	packPrice, err := strconv.ParseFloat(price, 64)
	if err != nil {
		return models.Ingredient{}, fmt.Errorf("parse pack price: %w", err)
	}
	if packPrice < 0 {
		return models.Ingredient{}, fmt.Errorf("pack price must not be negative, got %g", packPrice)
	}

	return models.Ingredient{
		Name:      strings.TrimSpace(name),
		PackSize:  packSize,
		PackUnit:  string(packUnit),
		PackPrice: packPrice,
	}, nil
}
