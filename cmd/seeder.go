package cmd

import (
	"fmt"
	"log"

	"github.com/spf13/cobra"
	"github.com/taskgraph/taskgraph/internal/user"
	"golang.org/x/crypto/bcrypt"
)

var seedCmd = &cobra.Command{
	Use:   "seed",
	Short: "Seed the database with sample data",
	Long:  `Seed the database with sample users for development and testing purposes.`,
	Run: func(cmd *cobra.Command, args []string) {
		cfg, err := loadConfig(".")
		if err != nil {
			log.Fatalf("failed to load config: %v", err)
		}

		sqlxDB, err := initDB(cfg.Database)
		if err != nil {
			log.Fatalf("failed to init db: %v", err)
		}
		db, err := initGorm(sqlxDB)
		if err != nil {
			log.Fatalf("failed to init gorm: %v", err)
		}

		if clearData {
			for _, table := range []string{"fines", "edges", "task_logs", "nodes", "workflows", "users"} {
				if err := db.Exec("DELETE FROM " + table).Error; err != nil {
					log.Fatalf("failed to clear %s: %v", table, err)
				}
			}
			fmt.Println("Cleared existing data")
		}

		password := "password"
		hash, _ := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)

		seedUsers := []struct {
			Username string
			Role     user.Role
		}{
			{"admin", user.RoleAdmin},
			{"manager", user.RoleManager},
			{"supervisor", user.RoleSupervisor},
			{"designer", user.RoleDesigner},
		}

		for _, su := range seedUsers {
			var exists int
			row := db.Raw("SELECT 1 FROM users WHERE username = ?", su.Username).Row()
			if err := row.Scan(&exists); err == nil {
				fmt.Printf("user %s already exists, skipping\n", su.Username)
				continue
			}

			err := db.Exec(
				"INSERT INTO users (username, password_hash, role, score, is_active, created_at, updated_at) VALUES (?, ?, ?, ?, true, now(), now())",
				su.Username, string(hash), int(su.Role), user.DefaultScore,
			).Error
			if err != nil {
				log.Fatalf("failed to insert user %s: %v", su.Username, err)
			}
			fmt.Printf("Seeded user %s (%s)\n", su.Username, su.Role)
		}

		fmt.Println("Seeding complete. Default password for all users: password")
	},
}
