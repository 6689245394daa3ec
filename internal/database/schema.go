package database

import (
	"context"
	"database/sql"
	"fmt"
)

// schema is applied in order by Migrate. Every statement is idempotent.
//
// Accommodations keep the full document in `doc`; the scalar columns next
// to it are projections used by the search filter and are rewritten on
// every save. Counters and the average rating are kept outside the
// document so increments never race with calendar writes.
var schema = []string{
	`CREATE TABLE IF NOT EXISTS users (
		id            CHAR(36)     NOT NULL PRIMARY KEY,
		email         VARCHAR(255) NOT NULL UNIQUE,
		password_hash VARCHAR(255) NOT NULL,
		name          VARCHAR(255) NOT NULL DEFAULT '',
		role          ENUM('GUEST','HOST','ADMIN') NOT NULL DEFAULT 'GUEST',
		is_active     BOOLEAN      NOT NULL DEFAULT TRUE,
		created_at    DATETIME     NOT NULL DEFAULT CURRENT_TIMESTAMP,
		updated_at    DATETIME     NOT NULL DEFAULT CURRENT_TIMESTAMP ON UPDATE CURRENT_TIMESTAMP,
		KEY idx_users_role (role)
	) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4`,

	`CREATE TABLE IF NOT EXISTS refresh_tokens (
		id         BIGINT UNSIGNED NOT NULL AUTO_INCREMENT PRIMARY KEY,
		user_id    CHAR(36)     NOT NULL,
		token_hash CHAR(64)     NOT NULL UNIQUE,
		expires_at DATETIME     NOT NULL,
		revoked_at DATETIME     NULL,
		created_at DATETIME     NOT NULL DEFAULT CURRENT_TIMESTAMP,
		KEY idx_refresh_user (user_id)
	) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4`,

	`CREATE TABLE IF NOT EXISTS accommodations (
		id                CHAR(36)     NOT NULL PRIMARY KEY,
		user_id           CHAR(36)     NOT NULL,
		doc               JSON         NOT NULL,
		version           BIGINT       NOT NULL DEFAULT 1,
		property_type     VARCHAR(64)  NOT NULL DEFAULT '',
		city              VARCHAR(128) NOT NULL DEFAULT '',
		country           VARCHAR(128) NOT NULL DEFAULT '',
		address           VARCHAR(255) NOT NULL DEFAULT '',
		price_mon_thus    DECIMAL(10,2) NOT NULL DEFAULT 0,
		pet               VARCHAR(64)  NOT NULL DEFAULT '',
		smoking           VARCHAR(64)  NOT NULL DEFAULT '',
		rentalform        VARCHAR(64)  NOT NULL DEFAULT '',
		party_organizing  VARCHAR(64)  NOT NULL DEFAULT '',
		person            INT          NOT NULL DEFAULT 0,
		beds              INT          NOT NULL DEFAULT 0,
		bedroom           INT          NOT NULL DEFAULT 0,
		bathroom          INT          NOT NULL DEFAULT 0,
		ical_url          VARCHAR(1024) NOT NULL DEFAULT '',
		views             BIGINT       NOT NULL DEFAULT 0,
		clicks            BIGINT       NOT NULL DEFAULT 0,
		customer_interest BIGINT       NOT NULL DEFAULT 0,
		average_rating    DOUBLE       NOT NULL DEFAULT 0,
		created_at        DATETIME     NOT NULL DEFAULT CURRENT_TIMESTAMP,
		updated_at        DATETIME     NOT NULL DEFAULT CURRENT_TIMESTAMP ON UPDATE CURRENT_TIMESTAMP,
		KEY idx_acc_user (user_id),
		KEY idx_acc_city (city),
		KEY idx_acc_type (property_type)
	) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4`,

	`CREATE TABLE IF NOT EXISTS deleted_accommodations (
		id         CHAR(36) NOT NULL PRIMARY KEY,
		user_id    CHAR(36) NOT NULL,
		doc        JSON     NOT NULL,
		deleted_at DATETIME NOT NULL
	) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4`,

	`CREATE TABLE IF NOT EXISTS reservations (
		id                     CHAR(36)     NOT NULL PRIMARY KEY,
		user_id                VARCHAR(36)  NOT NULL DEFAULT '',
		accommodation_id       CHAR(36)     NOT NULL,
		accommodation_provider VARCHAR(36)  NOT NULL DEFAULT '',
		name                   VARCHAR(255) NOT NULL,
		email                  VARCHAR(255) NOT NULL,
		phone                  VARCHAR(64)  NOT NULL DEFAULT '',
		check_in_date          DATE         NOT NULL,
		check_out_date         DATE         NOT NULL,
		guests                 INT          NOT NULL DEFAULT 1,
		total_price            DECIMAL(10,2) NOT NULL DEFAULT 0,
		is_approved            ENUM('pending','approved','rejected') NOT NULL DEFAULT 'pending',
		review_email_sent      BOOLEAN      NOT NULL DEFAULT FALSE,
		notes                  TEXT         NULL,
		created_at             DATETIME     NOT NULL DEFAULT CURRENT_TIMESTAMP,
		updated_at             DATETIME     NOT NULL DEFAULT CURRENT_TIMESTAMP ON UPDATE CURRENT_TIMESTAMP,
		KEY idx_res_acc (accommodation_id),
		KEY idx_res_user (user_id),
		KEY idx_res_provider (accommodation_provider),
		KEY idx_res_checkout (check_out_date, is_approved, review_email_sent)
	) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4`,

	`CREATE TABLE IF NOT EXISTS deleted_reservations (
		id         CHAR(36) NOT NULL PRIMARY KEY,
		doc        JSON     NOT NULL,
		deleted_at DATETIME NOT NULL
	) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4`,

	`CREATE TABLE IF NOT EXISTS reviews (
		id               CHAR(36)     NOT NULL PRIMARY KEY,
		accommodation_id CHAR(36)     NOT NULL,
		name             VARCHAR(255) NOT NULL,
		email            VARCHAR(255) NOT NULL,
		review_text      TEXT         NOT NULL,
		pluses           TEXT         NULL,
		cons             TEXT         NULL,
		overall_rating   TINYINT      NOT NULL,
		category_ratings JSON         NOT NULL,
		created_at       DATETIME     NOT NULL DEFAULT CURRENT_TIMESTAMP,
		updated_at       DATETIME     NOT NULL DEFAULT CURRENT_TIMESTAMP ON UPDATE CURRENT_TIMESTAMP,
		KEY idx_reviews_acc (accommodation_id)
	) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4`,

	`CREATE TABLE IF NOT EXISTS blogs (
		id         CHAR(36)     NOT NULL PRIMARY KEY,
		title      VARCHAR(255) NOT NULL,
		slug       VARCHAR(255) NOT NULL UNIQUE,
		content    MEDIUMTEXT   NOT NULL,
		author     VARCHAR(255) NOT NULL DEFAULT 'Admin',
		categories VARCHAR(255) NOT NULL,
		tags       JSON         NOT NULL,
		image      VARCHAR(1024) NOT NULL DEFAULT '',
		summary    TEXT         NOT NULL,
		blog_type  ENUM('customer','provider') NOT NULL,
		created_at DATETIME     NOT NULL DEFAULT CURRENT_TIMESTAMP,
		KEY idx_blogs_type (blog_type)
	) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4`,

	`CREATE TABLE IF NOT EXISTS blog_comments (
		id                CHAR(36)      NOT NULL PRIMARY KEY,
		blog_id           CHAR(36)      NOT NULL,
		name              VARCHAR(100)  NOT NULL,
		email             VARCHAR(255)  NOT NULL,
		comment           VARCHAR(1000) NOT NULL,
		rating            TINYINT       NOT NULL DEFAULT 5,
		is_approved       BOOLEAN       NOT NULL DEFAULT TRUE,
		parent_comment_id CHAR(36)      NULL,
		created_at        DATETIME(3)   NOT NULL,
		updated_at        DATETIME(3)   NOT NULL,
		KEY idx_comments_blog (blog_id, created_at),
		KEY idx_comments_parent (parent_comment_id)
	) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4`,

	`CREATE TABLE IF NOT EXISTS login_histories (
		id         CHAR(36)     NOT NULL PRIMARY KEY,
		host_id    CHAR(36)     NOT NULL,
		ts         DATETIME(3)  NOT NULL,
		ip         VARCHAR(64)  NOT NULL DEFAULT '',
		user_agent VARCHAR(512) NOT NULL DEFAULT '',
		KEY idx_login_host (host_id, ts)
	) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4`,
}

// Migrate creates any missing tables.
func Migrate(ctx context.Context, db *sql.DB) error {
	for i, stmt := range schema {
		if _, err := db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("migrate step %d: %w", i, err)
		}
	}
	return nil
}
