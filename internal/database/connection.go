package database

import (
	"fmt"
	"time"

	"github.com/mroshb/science_quiz_bot/internal/config"
	"github.com/mroshb/science_quiz_bot/internal/models"
	"github.com/mroshb/science_quiz_bot/internal/repositories"
	"github.com/mroshb/science_quiz_bot/pkg/logger"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

func Connect(cfg *config.Config) (*gorm.DB, error) {
	dsn := cfg.GetDSN()

	var logLevel gormlogger.LogLevel
	if cfg.AppEnv == "development" {
		logLevel = gormlogger.Info
	} else {
		logLevel = gormlogger.Error
	}

	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{
		Logger: gormlogger.Default.LogMode(logLevel),
		NowFunc: func() time.Time {
			return time.Now().UTC()
		},
		SkipDefaultTransaction: true, // Skip wrapping every operation in a transaction
		PrepareStmt:            true, // Cache prepared statements
	})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to get database instance: %w", err)
	}

	// Many group sessions score concurrently, keep a warm pool
	sqlDB.SetMaxIdleConns(10)
	sqlDB.SetMaxOpenConns(100)
	sqlDB.SetConnMaxLifetime(time.Hour)
	sqlDB.SetConnMaxIdleTime(10 * time.Minute)

	logger.Info("Database connected successfully")
	return db, nil
}

func AutoMigrate(db *gorm.DB) error {
	logger.Info("Running database migrations...")

	err := db.AutoMigrate(
		&models.User{},
		&models.Group{},
		&models.Question{},
		&models.QuizSession{},
		&models.Admin{},
	)
	if err != nil {
		return fmt.Errorf("migration failed: %w", err)
	}

	logger.Info("Database migrations completed successfully")
	return nil
}

// SeedQuestions inserts a starter question set so a fresh deployment can run
// a quiz immediately
func SeedQuestions(db *gorm.DB) error {
	repo := repositories.NewQuestionRepository(db)
	count, err := repo.Count()
	if err != nil {
		return err
	}
	if count > 0 {
		return nil
	}

	logger.Info("Seeding starter questions...")

	type seed struct {
		category string
		text     string
		options  []string
		answer   string
		hint     string
	}

	seeds := []seed{
		{
			category: "bio",
			text:     "DNA stands for?",
			options:  []string{"Deoxyribonucleic Acid", "RNA", "Protein"},
			answer:   "Deoxyribonucleic Acid",
			hint:     "It carries your genetic code.",
		},
		{
			category: "bio",
			text:     "Which organelle is known as the powerhouse of the cell?",
			options:  []string{"Nucleus", "Mitochondria", "Ribosome", "Golgi apparatus"},
			answer:   "Mitochondria",
			hint:     "It produces ATP.",
		},
		{
			category: "physics",
			text:     "What is the speed of light in vacuum?",
			options:  []string{"300,000 km/s", "150,000 km/s", "1,000 km/s", "30,000 km/s"},
			answer:   "300,000 km/s",
			hint:     "Roughly 3x10^8 m/s.",
		},
		{
			category: "physics",
			text:     "Which force keeps planets in orbit around the Sun?",
			options:  []string{"Magnetism", "Friction", "Gravity", "Tension"},
			answer:   "Gravity",
			hint:     "Newton's apple.",
		},
		{
			category: "chemistry",
			text:     "What is the chemical symbol for gold?",
			options:  []string{"Go", "Gd", "Au", "Ag"},
			answer:   "Au",
			hint:     "From the Latin aurum.",
		},
	}

	for _, s := range seeds {
		q := models.Question{
			Category:      s.category,
			QuestionText:  s.text,
			CorrectAnswer: s.answer,
			Hint:          s.hint,
		}
		if err := q.SetOptions(s.options); err != nil {
			return err
		}
		if err := repo.Upsert(&q); err != nil {
			logger.Warn("Failed to seed question", "question", s.text, "error", err)
		}
	}

	return nil
}
