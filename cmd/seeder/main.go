// cmd/seeder/main.go
package main

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/google/uuid"
	"github.com/joho/godotenv"
	"golang.org/x/crypto/bcrypt"

	"github.com/jkarimi/wacrm-backend/internal/config"
	"github.com/jkarimi/wacrm-backend/internal/db"
	"github.com/jkarimi/wacrm-backend/internal/model"
	"github.com/jkarimi/wacrm-backend/internal/repository"
	"github.com/jkarimi/wacrm-backend/internal/service"
)

// Seeds a demo account with customers and a template so the API can be
// exercised right after start.
func main() {
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		log.Fatal(err)
	}

	ctx := context.Background()
	database, err := db.Connect(ctx, cfg)
	if err != nil {
		log.Fatal("failed to connect to mongo:", err)
	}
	defer database.Client().Disconnect(ctx)

	userRepo := repository.NewUserRepository(database)
	customerRepo := repository.NewCustomerRepository(database)
	templateRepo := repository.NewTemplateRepository(database)

	now := time.Now().UTC()

	hashed, err := bcrypt.GenerateFromPassword([]byte("demo12345"), bcrypt.DefaultCost)
	if err != nil {
		log.Fatal(err)
	}
	user := &model.User{
		ID:             uuid.NewString(),
		Email:          "demo@example.com",
		FullName:       "Demo User",
		HashedPassword: string(hashed),
		IsActive:       true,
		CreatedAt:      now,
	}
	if err := userRepo.Insert(ctx, user); err != nil {
		log.Fatal("failed to seed user:", err)
	}
	fmt.Println("Seeded user:", user.Email)

	customers := make([]model.Customer, 0, 250)
	for i := 0; i < 250; i++ {
		customers = append(customers, model.Customer{
			ID:            uuid.NewString(),
			UserID:        user.ID,
			Name:          fmt.Sprintf("Customer %03d", i+1),
			Phone:         fmt.Sprintf("+2547%08d", i+1),
			Email:         fmt.Sprintf("customer%03d@example.com", i+1),
			Category:      model.CategoryRegular,
			TotalQuantity: float64(i % 60),
			PurchaseCount: i % 12,
			OrderValue:    float64((i % 100) * 75),
			UploadedAt:    now,
		})
	}
	if err := customerRepo.InsertMany(ctx, customers); err != nil {
		log.Fatal("failed to seed customers:", err)
	}
	fmt.Printf("Seeded %d customers\n", len(customers))

	content := "Hi {{name}}, thanks for your {{purchase_count}} orders! Reply STOP to opt out."
	template := &model.Template{
		ID:           uuid.NewString(),
		UserID:       user.ID,
		Name:         "Loyalty thank-you",
		Content:      content,
		Placeholders: service.ExtractPlaceholders(content),
		CreatedAt:    now,
	}
	if err := templateRepo.Insert(ctx, template); err != nil {
		log.Fatal("failed to seed template:", err)
	}
	fmt.Println("Seeded template:", template.Name)

	fmt.Println("Database seeding completed successfully!")
}
