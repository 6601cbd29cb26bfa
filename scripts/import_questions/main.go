// Bulk question importer. Reads an xlsx workbook where every sheet holds
// rows of: Category | Question | Options (comma-separated) | Answer | Hint
// and upserts each row keyed by question text.
//
// Usage: go run ./scripts/import_questions questions.xlsx
package main

import (
	"fmt"
	"log"
	"os"

	"github.com/joho/godotenv"
	"github.com/mroshb/science_quiz_bot/internal/models"
	"github.com/mroshb/science_quiz_bot/internal/repositories"
	"github.com/mroshb/science_quiz_bot/internal/security"
	"github.com/mroshb/science_quiz_bot/pkg/utils"
	"github.com/xuri/excelize/v2"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

func main() {
	if len(os.Args) < 2 {
		log.Fatal("usage: import_questions <path to xlsx>")
	}

	// Load .env
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found")
	}

	dsn := fmt.Sprintf("host=%s user=%s password=%s dbname=%s port=%s sslmode=disable",
		os.Getenv("DB_HOST"), os.Getenv("DB_USER"), os.Getenv("DB_PASSWORD"),
		os.Getenv("DB_NAME"), os.Getenv("DB_PORT"))

	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{})
	if err != nil {
		log.Fatal("failed to connect database:", err)
	}

	f, err := excelize.OpenFile(os.Args[1])
	if err != nil {
		log.Fatal(err)
	}
	defer f.Close()

	repo := repositories.NewQuestionRepository(db)
	totalImported := 0

	for _, sheetName := range f.GetSheetList() {
		fmt.Printf("Importing sheet: %s\n", sheetName)
		rows, err := f.GetRows(sheetName)
		if err != nil {
			fmt.Printf("Error reading sheet %s: %v\n", sheetName, err)
			continue
		}

		for i, row := range rows {
			if i == 0 || len(row) < 4 { // Skip header or invalid rows
				continue
			}

			// row[0]: Category
			// row[1]: Question Text
			// row[2]: Options, comma-separated
			// row[3]: Correct Answer
			// row[4]: Hint (optional)
			//
			// Spreadsheet cells go through the same sanitizer as
			// /addquiz payloads before they reach the store.

			question := models.Question{
				Category:      security.CleanText(row[0]),
				QuestionText:  security.CleanText(row[1]),
				CorrectAnswer: security.CleanText(row[3]),
			}
			if len(row) > 4 {
				question.Hint = security.CleanText(row[4])
			}
			options := utils.ParseOptions(row[2])
			for j := range options {
				options[j] = security.CleanText(options[j])
			}
			if err := question.SetOptions(options); err != nil {
				fmt.Printf("Invalid options in row %d: %v\n", i, err)
				continue
			}

			if err := repo.Upsert(&question); err != nil {
				fmt.Printf("Error importing row %d: %v\n", i, err)
			} else {
				totalImported++
			}
		}
	}

	fmt.Printf("Successfully imported %d questions.\n", totalImported)
}
