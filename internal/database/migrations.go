package database

import (
	"context"
	"fmt"
)

var migrations = []string{
	`CREATE TABLE IF NOT EXISTS users (
		id BIGSERIAL PRIMARY KEY,
		cognito_sub VARCHAR(255) UNIQUE NOT NULL,
		email VARCHAR(255) UNIQUE NOT NULL,
		full_name VARCHAR(255),
		role VARCHAR(20) NOT NULL DEFAULT 'USER',
		status VARCHAR(20) NOT NULL DEFAULT 'PENDING',
		created_at TIMESTAMP WITH TIME ZONE DEFAULT NOW(),
		updated_at TIMESTAMP WITH TIME ZONE DEFAULT NOW()
	)`,

	`CREATE INDEX IF NOT EXISTS idx_users_cognito_sub ON users(cognito_sub)`,
	`CREATE INDEX IF NOT EXISTS idx_users_email ON users(email)`,

	`CREATE TABLE IF NOT EXISTS categories (
		id BIGSERIAL PRIMARY KEY,
		name VARCHAR(100) NOT NULL,
		slug VARCHAR(120) UNIQUE NOT NULL,
		type VARCHAR(20) NOT NULL,
		parent_category_id BIGINT REFERENCES categories(id) ON DELETE SET NULL,
		created_at TIMESTAMP WITH TIME ZONE DEFAULT NOW(),
		updated_at TIMESTAMP WITH TIME ZONE DEFAULT NOW()
	)`,

	`CREATE INDEX IF NOT EXISTS idx_categories_parent ON categories(parent_category_id)`,

	`CREATE TABLE IF NOT EXISTS listings (
		id BIGSERIAL PRIMARY KEY,
		seller_id BIGINT NOT NULL REFERENCES users(id),
		category_id BIGINT NOT NULL REFERENCES categories(id),
		listing_type VARCHAR(20) NOT NULL,
		title VARCHAR(255) NOT NULL,
		description TEXT NOT NULL DEFAULT '',
		price NUMERIC(12,2) NOT NULL CHECK (price >= 0),
		price_unit VARCHAR(50),
		quantity INTEGER NOT NULL DEFAULT 1,
		status VARCHAR(20) NOT NULL DEFAULT 'PENDING',
		approved_by_admin_id BIGINT REFERENCES users(id),
		created_at TIMESTAMP WITH TIME ZONE DEFAULT NOW(),
		updated_at TIMESTAMP WITH TIME ZONE DEFAULT NOW()
	)`,

	`CREATE INDEX IF NOT EXISTS idx_listings_seller_id ON listings(seller_id)`,
	`CREATE INDEX IF NOT EXISTS idx_listings_category_id ON listings(category_id)`,
	`CREATE INDEX IF NOT EXISTS idx_listings_status ON listings(status)`,

	`CREATE TABLE IF NOT EXISTS listing_images (
		id BIGSERIAL PRIMARY KEY,
		listing_id BIGINT NOT NULL REFERENCES listings(id) ON DELETE CASCADE,
		image_url VARCHAR(500) NOT NULL,
		is_primary BOOLEAN NOT NULL DEFAULT FALSE,
		created_at TIMESTAMP WITH TIME ZONE DEFAULT NOW()
	)`,

	`CREATE INDEX IF NOT EXISTS idx_listing_images_listing_id ON listing_images(listing_id)`,

	`CREATE TABLE IF NOT EXISTS notifications (
		id BIGSERIAL PRIMARY KEY,
		user_id BIGINT NOT NULL REFERENCES users(id) ON DELETE CASCADE,
		type VARCHAR(50) NOT NULL,
		message TEXT NOT NULL,
		listing_id BIGINT REFERENCES listings(id) ON DELETE SET NULL,
		is_read BOOLEAN NOT NULL DEFAULT FALSE,
		created_at TIMESTAMP WITH TIME ZONE DEFAULT NOW()
	)`,

	`CREATE INDEX IF NOT EXISTS idx_notifications_user_id ON notifications(user_id)`,
}

func (db *DB) Migrate(ctx context.Context) error {
	for i, migration := range migrations {
		if _, err := db.Pool.Exec(ctx, migration); err != nil {
			return fmt.Errorf("migration %d failed: %w", i+1, err)
		}
	}
	return nil
}
