package database

import (
	"context"
	"database/sql"
)

// schema creates the reservation_records table.  active_slot is non-NULL
// only while a row is PENDING or APPROVED, so the unique key rejects a
// second active booking of one resource-slot while inactive history rows
// (NULL) never collide.
const schema = `CREATE TABLE IF NOT EXISTS reservation_records (
    id             BIGINT UNSIGNED NOT NULL AUTO_INCREMENT,
    order_id       VARCHAR(36)  NOT NULL,
    requester_name VARCHAR(255) NOT NULL,
    department     VARCHAR(255) NOT NULL,
    resource       VARCHAR(64)  NOT NULL,
    date           DATE         NOT NULL,
    slot           VARCHAR(16)  NOT NULL,
    purpose        TEXT         NOT NULL,
    status         ENUM('PENDING','APPROVED','REJECTED','RETURNED','CANCELLED') NOT NULL,
    submitted_at   DATETIME     NOT NULL,
    processed_at   DATETIME     NULL,
    active_slot    VARCHAR(128) AS (
        IF(status IN ('PENDING','APPROVED'), CONCAT(resource, '|', date, '|', slot), NULL)
    ) STORED,
    PRIMARY KEY (id),
    UNIQUE KEY uq_order_row (order_id, resource, slot),
    UNIQUE KEY uq_active_slot (active_slot),
    KEY idx_status (status)
) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4`

// Migrate creates the schema when missing.  It is idempotent.
func Migrate(ctx context.Context, db *sql.DB) error {
	_, err := db.ExecContext(ctx, schema)
	return err
}
