package main

import (
	"log"
	"os"
	"time"

	"sigment-be/internal/model"
	"sigment-be/pkg/database"

	"github.com/fatih/color"
	"github.com/google/uuid"
	"github.com/joho/godotenv"
	"gorm.io/gorm"
)

// Seeds a demo tenant with a user per department and a starter pillar set,
// so a fresh environment can exercise the whole pipeline immediately.
func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("Info: No .env file found, using system env")
	}

	dsn := os.Getenv("DB_CONNECTION_STRING")
	if dsn == "" {
		log.Fatal("Error: DB_CONNECTION_STRING is not set")
	}

	db, err := database.NewGormDBFromDSN(dsn)
	if err != nil {
		log.Fatal("Error: Failed to connect to database:", err)
	}

	success := color.New(color.FgGreen).PrintfFunc()
	skipped := color.New(color.FgYellow).PrintfFunc()

	org := model.Organization{Name: "Acme Industries"}
	var existingOrg model.Organization
	if err := db.Where("name = ?", org.Name).First(&existingOrg).Error; err == nil {
		skipped("Organization %q already exists, reusing it\n", org.Name)
		org = existingOrg
	} else {
		org.Id = uuid.New()
		org.CreatedAt = time.Now()
		if err := db.Create(&org).Error; err != nil {
			log.Fatalf("Error creating organization: %v", err)
		}
		success("Created organization %q\n", org.Name)
	}

	users := []model.User{
		{Email: "dana@acme.test", FullName: "Dana Reyes", Role: "admin", Department: "Strategy", Seniority: "VP"},
		{Email: "jordan@acme.test", FullName: "Jordan Blake", Role: "member", Department: "Engineering", Seniority: "Senior"},
		{Email: "sam@acme.test", FullName: "Sam Okafor", Role: "member", Department: "Sales", Seniority: "Junior"},
	}
	for _, u := range users {
		var existing model.User
		if err := db.Where("email = ?", u.Email).First(&existing).Error; err == nil {
			skipped("User %s already exists, skipping\n", u.Email)
			continue
		}
		u.Id = uuid.New()
		u.OrganizationId = org.Id
		u.CreatedAt = time.Now()
		if err := db.Create(&u).Error; err != nil {
			log.Printf("Error creating user %s: %v", u.Email, err)
			continue
		}
		success("Created user %s (%s, %s)\n", u.Email, u.Department, u.Seniority)
	}

	pillars := []model.Pillar{
		{Name: "Customer Experience", Description: "Everything touching the customer journey", Color: "#2563eb"},
		{Name: "Operational Excellence", Description: "Internal process quality and efficiency", Color: "#16a34a"},
		{Name: "Innovation", Description: "New products, markets and capabilities", Color: "#9333ea"},
	}
	for _, p := range pillars {
		seedPillar(db, org.Id, p, success, skipped)
	}

	success("Seeding completed\n")
}

func seedPillar(db *gorm.DB, organizationId uuid.UUID, p model.Pillar, success, skipped func(format string, a ...interface{})) {
	var existing model.Pillar
	if err := db.Where("organization_id = ? AND name = ?", organizationId, p.Name).First(&existing).Error; err == nil {
		skipped("Pillar %q already exists, skipping\n", p.Name)
		return
	}
	p.Id = uuid.New()
	p.OrganizationId = organizationId
	p.CreatedAt = time.Now()
	if err := db.Create(&p).Error; err != nil {
		log.Printf("Error creating pillar %q: %v", p.Name, err)
		return
	}
	success("Created pillar %q\n", p.Name)
}
