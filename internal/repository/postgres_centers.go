package repository

import (
	"context"
	"database/sql"
	"fmt"

	"relief-data/internal/domain"

	"github.com/lib/pq"
)

// PostgresCentersRepository 救援中心 Repository 实现（Managed Database 层）
type PostgresCentersRepository struct {
	db *sql.DB
}

// NewPostgresCentersRepository 创建救援中心 Repository
func NewPostgresCentersRepository(db *sql.DB) *PostgresCentersRepository {
	return &PostgresCentersRepository{db: db}
}

// 确保实现了接口
var _ CentersRepository = (*PostgresCentersRepository)(nil)

// EnsureSchema 建表（IF NOT EXISTS，启动时调用一次）
func (r *PostgresCentersRepository) EnsureSchema(ctx context.Context) error {
	schema := `
		CREATE TABLE IF NOT EXISTS rescue_centers (
			id                          VARCHAR(32) PRIMARY KEY,
			name                        VARCHAR(200) NOT NULL,
			phone                       VARCHAR(32) NOT NULL DEFAULT '',
			address                     TEXT NOT NULL DEFAULT '',
			lat                         DOUBLE PRECISION NOT NULL DEFAULT 0,
			lng                         DOUBLE PRECISION NOT NULL DEFAULT 0,
			total_capacity              INTEGER NOT NULL CHECK (total_capacity >= 1),
			current_guests              INTEGER NOT NULL DEFAULT 0,
			available_capacity          INTEGER NOT NULL DEFAULT 0,
			water_level                 INTEGER NOT NULL DEFAULT 100,
			food_level                  INTEGER NOT NULL DEFAULT 100,
			supplies_medical            INTEGER NOT NULL DEFAULT 100,
			supplies_bedding            INTEGER NOT NULL DEFAULT 100,
			supplies_clothing           INTEGER NOT NULL DEFAULT 100,
			facilities                  TEXT[] NOT NULL DEFAULT '{}',
			staff_count                 INTEGER NOT NULL DEFAULT 0,
			emergency_contact_primary   VARCHAR(32) NOT NULL DEFAULT '',
			emergency_contact_secondary VARCHAR(32) NOT NULL DEFAULT '',
			status                      VARCHAR(20) NOT NULL DEFAULT 'active',
			created_at                  TIMESTAMPTZ NOT NULL,
			updated_at                  TIMESTAMPTZ NOT NULL,
			last_updated                TIMESTAMPTZ NOT NULL
		)`
	if _, err := r.db.ExecContext(ctx, schema); err != nil {
		return fmt.Errorf("failed to ensure rescue_centers schema: %w", err)
	}
	return nil
}

const centerColumns = `
	id,
	name,
	COALESCE(phone, '') AS phone,
	COALESCE(address, '') AS address,
	lat,
	lng,
	total_capacity,
	current_guests,
	available_capacity,
	water_level,
	food_level,
	supplies_medical,
	supplies_bedding,
	supplies_clothing,
	facilities,
	staff_count,
	COALESCE(emergency_contact_primary, '') AS emergency_contact_primary,
	COALESCE(emergency_contact_secondary, '') AS emergency_contact_secondary,
	COALESCE(status, 'active') AS status,
	created_at,
	updated_at,
	last_updated
`

func scanCenter(row interface{ Scan(...any) error }) (*domain.RescueCenter, error) {
	var c domain.RescueCenter
	var facilities pq.StringArray
	err := row.Scan(
		&c.ID,
		&c.Name,
		&c.Phone,
		&c.Address,
		&c.Lat,
		&c.Lng,
		&c.TotalCapacity,
		&c.CurrentGuests,
		&c.AvailableCapacity,
		&c.WaterLevel,
		&c.FoodLevel,
		&c.Supplies.Medical,
		&c.Supplies.Bedding,
		&c.Supplies.Clothing,
		&facilities,
		&c.StaffCount,
		&c.EmergencyContacts.Primary,
		&c.EmergencyContacts.Secondary,
		&c.Status,
		&c.CreatedAt,
		&c.UpdatedAt,
		&c.LastUpdated,
	)
	if err != nil {
		return nil, err
	}
	c.Facilities = []string(facilities)
	return &c, nil
}

// ListCenters 查询全部中心（按 id 排序）
func (r *PostgresCentersRepository) ListCenters(ctx context.Context) ([]*domain.RescueCenter, error) {
	query := fmt.Sprintf(`SELECT %s FROM rescue_centers ORDER BY id`, centerColumns)
	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to list centers: %w", err)
	}
	defer rows.Close()

	var centers []*domain.RescueCenter
	for rows.Next() {
		c, err := scanCenter(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan center: %w", err)
		}
		centers = append(centers, c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate centers: %w", err)
	}
	return centers, nil
}

// GetCenter 根据 id 获取中心
func (r *PostgresCentersRepository) GetCenter(ctx context.Context, centerID string) (*domain.RescueCenter, error) {
	if centerID == "" {
		return nil, fmt.Errorf("center_id is required")
	}

	query := fmt.Sprintf(`SELECT %s FROM rescue_centers WHERE id = $1`, centerColumns)
	c, err := scanCenter(r.db.QueryRowContext(ctx, query, centerID))
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, fmt.Errorf("center %s: %w", centerID, domain.ErrNotFound)
		}
		return nil, fmt.Errorf("failed to get center: %w", err)
	}
	return c, nil
}

// CreateCenter 插入中心
func (r *PostgresCentersRepository) CreateCenter(ctx context.Context, c *domain.RescueCenter) error {
	query := `
		INSERT INTO rescue_centers (
			id, name, phone, address, lat, lng,
			total_capacity, current_guests, available_capacity,
			water_level, food_level,
			supplies_medical, supplies_bedding, supplies_clothing,
			facilities, staff_count,
			emergency_contact_primary, emergency_contact_secondary,
			status, created_at, updated_at, last_updated
		) VALUES (
			$1, $2, $3, $4, $5, $6,
			$7, $8, $9,
			$10, $11,
			$12, $13, $14,
			$15, $16,
			$17, $18,
			$19, $20, $21, $22
		)`
	_, err := r.db.ExecContext(ctx, query,
		c.ID, c.Name, c.Phone, c.Address, c.Lat, c.Lng,
		c.TotalCapacity, c.CurrentGuests, c.AvailableCapacity,
		c.WaterLevel, c.FoodLevel,
		c.Supplies.Medical, c.Supplies.Bedding, c.Supplies.Clothing,
		pq.Array(c.Facilities), c.StaffCount,
		c.EmergencyContacts.Primary, c.EmergencyContacts.Secondary,
		c.Status, c.CreatedAt, c.UpdatedAt, c.LastUpdated,
	)
	if err != nil {
		return fmt.Errorf("failed to create center: %w", err)
	}
	return nil
}

// UpdateCenter 整行覆盖更新（last-writer-wins，见 DESIGN.md）
func (r *PostgresCentersRepository) UpdateCenter(ctx context.Context, c *domain.RescueCenter) error {
	query := `
		UPDATE rescue_centers SET
			name = $2, phone = $3, address = $4, lat = $5, lng = $6,
			total_capacity = $7, current_guests = $8, available_capacity = $9,
			water_level = $10, food_level = $11,
			supplies_medical = $12, supplies_bedding = $13, supplies_clothing = $14,
			facilities = $15, staff_count = $16,
			emergency_contact_primary = $17, emergency_contact_secondary = $18,
			status = $19, updated_at = $20, last_updated = $21
		WHERE id = $1`
	result, err := r.db.ExecContext(ctx, query,
		c.ID, c.Name, c.Phone, c.Address, c.Lat, c.Lng,
		c.TotalCapacity, c.CurrentGuests, c.AvailableCapacity,
		c.WaterLevel, c.FoodLevel,
		c.Supplies.Medical, c.Supplies.Bedding, c.Supplies.Clothing,
		pq.Array(c.Facilities), c.StaffCount,
		c.EmergencyContacts.Primary, c.EmergencyContacts.Secondary,
		c.Status, c.UpdatedAt, c.LastUpdated,
	)
	if err != nil {
		return fmt.Errorf("failed to update center: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to check update result: %w", err)
	}
	if affected == 0 {
		return fmt.Errorf("center %s: %w", c.ID, domain.ErrNotFound)
	}
	return nil
}

// DeleteCenter 删除中心（幂等）
func (r *PostgresCentersRepository) DeleteCenter(ctx context.Context, centerID string) error {
	if _, err := r.db.ExecContext(ctx, `DELETE FROM rescue_centers WHERE id = $1`, centerID); err != nil {
		return fmt.Errorf("failed to delete center: %w", err)
	}
	return nil
}
