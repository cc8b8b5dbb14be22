package roster

import (
	"log"

	"github.com/LetterLobby/LL-Backend/internal/db"
)

func Init() {
	if err := db.EnsureSchema(db.DB, "districts"); err != nil {
		log.Fatal("Failed to ensure schema districts: ", err)
	}

	if err := db.DB.Exec(`CREATE EXTENSION IF NOT EXISTS "uuid-ossp"`).Error; err != nil {
		log.Fatal("Failed to enable uuid-ossp extension:", err)
	}

	if err := db.DB.AutoMigrate(
		&District{},
		&Representative{},
	); err != nil {
		log.Fatal("Failed to auto-migrate tables", err)
	}
}
