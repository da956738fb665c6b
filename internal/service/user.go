package service

import (
	"database/sql"
	"fmt"
	"strings"

	"github.com/saadjs/keto-cli/internal/model"
)

const configActiveUser = "active_user"

func CreateUser(db *sql.DB, name string) (int64, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return 0, fmt.Errorf("user name is required")
	}
	var id int64
	err := inTx(db, "create user", func(tx *sql.Tx) error {
		res, err := tx.Exec(`INSERT INTO users(name) VALUES(?)`, name)
		if err != nil {
			return fmt.Errorf("create user %q: %w", name, err)
		}
		id, err = res.LastInsertId()
		if err != nil {
			return fmt.Errorf("resolve user id: %w", err)
		}
		_, err = seedUnmeasuredIngredients(tx, id)
		return err
	})
	if err != nil {
		return 0, err
	}
	return id, nil
}

func ListUsers(db *sql.DB) ([]model.User, error) {
	rows, err := db.Query(`SELECT id, name, created_at FROM users ORDER BY name`)
	if err != nil {
		return nil, fmt.Errorf("list users: %w", err)
	}
	defer rows.Close()

	users := make([]model.User, 0)
	for rows.Next() {
		var u model.User
		if err := rows.Scan(&u.ID, &u.Name, &u.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan user: %w", err)
		}
		users = append(users, u)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate users: %w", err)
	}
	return users, nil
}

func ResolveUser(db *sql.DB, idOrName string) (*model.User, error) {
	idOrName = strings.TrimSpace(idOrName)
	if idOrName == "" {
		return nil, fmt.Errorf("user identifier is required")
	}
	var row *sql.Row
	if id, err := parseIDLoose(idOrName); err == nil {
		row = db.QueryRow(`SELECT id, name, created_at FROM users WHERE id = ?`, id)
	} else {
		row = db.QueryRow(`SELECT id, name, created_at FROM users WHERE LOWER(name) = ?`, normalizeName(idOrName))
	}
	var u model.User
	if err := row.Scan(&u.ID, &u.Name, &u.CreatedAt); err != nil {
		if err == sql.ErrNoRows {
			return nil, fmt.Errorf("user %q not found", idOrName)
		}
		return nil, fmt.Errorf("resolve user %q: %w", idOrName, err)
	}
	return &u, nil
}

func SetActiveUser(db *sql.DB, idOrName string) (*model.User, error) {
	u, err := ResolveUser(db, idOrName)
	if err != nil {
		return nil, err
	}
	_, err = db.Exec(`
INSERT INTO app_config(key, value, updated_at)
VALUES(?, ?, CURRENT_TIMESTAMP)
ON CONFLICT(key) DO UPDATE SET value=excluded.value, updated_at=excluded.updated_at
`, configActiveUser, fmt.Sprint(u.ID))
	if err != nil {
		return nil, fmt.Errorf("remember active user: %w", err)
	}
	return u, nil
}

func ActiveUser(db *sql.DB) (*model.User, error) {
	var value string
	err := db.QueryRow(`SELECT value FROM app_config WHERE key = ?`, configActiveUser).Scan(&value)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read active user: %w", err)
	}
	return ResolveUser(db, value)
}
