// cmd/create-user/main.go provisions a portal login for the document tracker.
package main

import (
	"flag"
	"log"
	"time"

	"document-tracker-api/catalog"
	"document-tracker-api/config"
	"document-tracker-api/models"
	"document-tracker-api/utils"

	"github.com/joho/godotenv"
)

func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found")
	}

	var email, password, first, last, department string
	flag.StringVar(&email, "email", "", "login e-mail (required)")
	flag.StringVar(&password, "password", "", "initial password (required, min 8 chars)")
	flag.StringVar(&first, "first", "", "first name")
	flag.StringVar(&last, "last", "", "last name")
	flag.StringVar(&department, "department", "", "department (must own a routing location or originate documents)")
	flag.Parse()

	email = utils.SanitizeInput(email)
	department = utils.SanitizeInput(department)
	if !utils.ValidateEmail(email) {
		log.Fatal("a valid -email is required")
	}
	if ok, msg := utils.ValidatePassword(password); !ok {
		log.Fatal(msg)
	}
	if department == "" {
		log.Fatal("-department is required")
	}
	if len(catalog.Default().LocationsOf(department)) == 0 {
		log.Printf("Warning: department %q owns no routing locations; it will only see documents it creates", department)
	}

	hashed, err := utils.HashPassword(password)
	if err != nil {
		log.Fatalf("Failed to hash password: %v", err)
	}

	config.InitDB()

	now := time.Now()
	user := models.User{
		Email:        email,
		UserFname:    utils.SanitizeInput(first),
		UserLname:    utils.SanitizeInput(last),
		Department:   department,
		PasswordHash: hashed,
		CreateAt:     &now,
		UpdateAt:     &now,
	}
	if err := config.DB.Create(&user).Error; err != nil {
		log.Fatalf("Failed to create user %s: %v", email, err)
	}
	log.Printf("Created user %s (id %d) in %s\n", user.Email, user.UserID, user.Department)
}
