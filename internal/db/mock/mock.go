package mock

import (
	"context"
	"time"

	"golang.org/x/crypto/bcrypt"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"provender/internal/db"
	applog "provender/internal/log"
	"provender/models"
)

// New returns an in-memory sqlite database seeded with representative shop data.
func New(ctx context.Context) (*gorm.DB, error) {
	applog.Debug(ctx, "initialising mock database")

	database, err := gorm.Open(sqlite.Open("file:provender-mock?mode=memory&cache=shared"), &gorm.Config{
		Logger:                                   logger.Default.LogMode(logger.Silent),
		PrepareStmt:                              true,
		SkipDefaultTransaction:                   true,
		DisableForeignKeyConstraintWhenMigrating: true,
		NowFunc: func() time.Time {
			return time.Now().UTC()
		},
	})
	if err != nil {
		return nil, err
	}

	if err := db.AutoMigrate(database); err != nil {
		return nil, err
	}

	if err := seed(ctx, database); err != nil {
		return nil, err
	}

	applog.Debug(ctx, "mock database ready")
	return database, nil
}

func seed(ctx context.Context, database *gorm.DB) error {
	applog.Debug(ctx, "seeding mock database")

	password, err := bcrypt.GenerateFromPassword([]byte("counter"), bcrypt.DefaultCost)
	if err != nil {
		return err
	}

	user := &models.User{
		Name:         "Thandi Mokoena",
		Email:        "thandi@provender.app",
		PasswordHash: string(password),
		Role:         models.RoleManager,
	}
	if err := database.WithContext(ctx).Create(user).Error; err != nil {
		return err
	}

	flour := models.Ingredient{
		Name:             "Cake Flour",
		Supplier:         "Drakensberg Mills",
		PackSize:         12.5,
		PackUnit:         "kg",
		PackPrice:        198.50,
		PriceIncludesTax: false,
		Notes:            "Unbleached, high extraction.",
	}
	butter := models.Ingredient{
		Name:             "Salted Butter",
		Supplier:         "Midlands Dairy",
		PackSize:         5,
		PackUnit:         "kg",
		PackPrice:        612.00,
		PriceIncludesTax: true,
	}
	milk := models.Ingredient{
		Name:      "Full Cream Milk",
		Supplier:  "Midlands Dairy",
		PackSize:  2,
		PackUnit:  "l",
		PackPrice: 43.80,
	}

	ingredients := []*models.Ingredient{&flour, &butter, &milk}
	for _, ingredient := range ingredients {
		if err := database.WithContext(ctx).Create(ingredient).Error; err != nil {
			return err
		}
	}

	shortbread := models.Recipe{
		Name:      "Shortbread Rounds",
		Notes:     "Rest the dough overnight before sheeting.",
		BatchSize: 60,
		BatchUnit: "unit",
	}
	if err := database.WithContext(ctx).Create(&shortbread).Error; err != nil {
		return err
	}

	lines := []models.RecipeIngredient{
		{
			RecipeID:     shortbread.ID,
			Name:         flour.Name,
			IngredientID: &flour.ID,
			PackSize:     flour.PackSize,
			PackUnit:     flour.PackUnit,
			PackPrice:    flour.PackPrice,
			UsedQuantity: 1.8,
			UsedUnit:     "kg",
		},
		{
			RecipeID:     shortbread.ID,
			Name:         butter.Name,
			IngredientID: &butter.ID,
			PackSize:     butter.PackSize,
			PackUnit:     butter.PackUnit,
			PackPrice:    butter.PackPrice,
			UsedQuantity: 900,
			UsedUnit:     "g",
		},
	}
	for _, line := range lines {
		lineCopy := line
		if err := database.WithContext(ctx).Create(&lineCopy).Error; err != nil {
			return err
		}
	}

	baked := models.Product{
		Name:     "Shortbread Rounds (6 pack)",
		Barcode:  "6001234500017",
		SKU:      "BAKE-SBR-6",
		Category: "Bakery",
		Price:    54.00,
		Active:   true,
		RecipeID: &shortbread.ID,
	}
	coffee := models.Product{
		Name:     "Filter Coffee",
		SKU:      "BEV-COF-R",
		Category: "Beverages",
		Price:    28.00,
		Active:   true,
	}
	for _, product := range []*models.Product{&baked, &coffee} {
		if err := database.WithContext(ctx).Create(product).Error; err != nil {
			return err
		}
	}

	front := models.Department{Name: "Front of House"}
	bakery := models.Department{Name: "Bakery"}
	for _, department := range []*models.Department{&front, &bakery} {
		if err := database.WithContext(ctx).Create(department).Error; err != nil {
			return err
		}
	}

	baker := models.StaffMember{
		Name:         "Sipho Dlamini",
		Email:        "sipho@provender.app",
		Position:     "Head Baker",
		DepartmentID: &bakery.ID,
	}
	if err := database.WithContext(ctx).Create(&baker).Error; err != nil {
		return err
	}

	promo := models.Promotion{
		Name:       "Morning Coffee Special",
		ProductID:  coffee.ID,
		PercentOff: 20,
		StartDate:  time.Now().UTC().AddDate(0, 0, -7),
		EndDate:    time.Now().UTC().AddDate(0, 1, 0),
		Active:     true,
	}
	if err := database.WithContext(ctx).Create(&promo).Error; err != nil {
		return err
	}

	applog.Debug(ctx, "mock database seeded")
	return nil
}
