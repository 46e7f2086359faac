package repository

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"relief-data/internal/domain"
)

// PostgresGuestsRepository 避灾人员 Repository 实现（Managed Database 层）
type PostgresGuestsRepository struct {
	db *sql.DB
}

// NewPostgresGuestsRepository 创建人员 Repository
func NewPostgresGuestsRepository(db *sql.DB) *PostgresGuestsRepository {
	return &PostgresGuestsRepository{db: db}
}

// 确保实现了接口
var _ GuestsRepository = (*PostgresGuestsRepository)(nil)

// EnsureSchema 建表（IF NOT EXISTS，启动时调用一次）
// 外键不加 ON DELETE CASCADE：级联删除由 service 层显式执行，
// 保证远端失败时本地清理仍然发生（见错误处理设计）
func (r *PostgresGuestsRepository) EnsureSchema(ctx context.Context) error {
	schema := `
		CREATE TABLE IF NOT EXISTS guests (
			id                         VARCHAR(64) PRIMARY KEY,
			center_id                  VARCHAR(32) NOT NULL,
			first_name                 VARCHAR(100) NOT NULL,
			middle_name                VARCHAR(100) NOT NULL DEFAULT '',
			last_name                  VARCHAR(100) NOT NULL DEFAULT '',
			gender                     VARCHAR(20) NOT NULL DEFAULT '',
			date_of_birth              VARCHAR(10) NOT NULL DEFAULT '',
			age                        INTEGER NOT NULL DEFAULT 0,
			mobile_phone               VARCHAR(20) NOT NULL,
			alternate_mobile           VARCHAR(20) NOT NULL DEFAULT '',
			email                      VARCHAR(200) NOT NULL DEFAULT '',
			permanent_address          TEXT NOT NULL DEFAULT '',
			emergency_contact_name     VARCHAR(200) NOT NULL DEFAULT '',
			emergency_contact_phone    VARCHAR(20) NOT NULL DEFAULT '',
			emergency_contact_relation VARCHAR(50) NOT NULL DEFAULT '',
			medical_conditions         TEXT NOT NULL DEFAULT '',
			current_medications        TEXT NOT NULL DEFAULT '',
			allergies                  TEXT NOT NULL DEFAULT '',
			disability_status          VARCHAR(100) NOT NULL DEFAULT '',
			special_needs              TEXT NOT NULL DEFAULT '',
			created_at                 TIMESTAMPTZ NOT NULL,
			updated_at                 TIMESTAMPTZ NOT NULL
		);
		CREATE INDEX IF NOT EXISTS idx_guests_center_id ON guests (center_id)`
	if _, err := r.db.ExecContext(ctx, schema); err != nil {
		return fmt.Errorf("failed to ensure guests schema: %w", err)
	}
	return nil
}

const guestColumns = `
	id, center_id,
	first_name, middle_name, last_name, gender,
	COALESCE(date_of_birth, '') AS date_of_birth, age,
	mobile_phone, COALESCE(alternate_mobile, '') AS alternate_mobile,
	COALESCE(email, '') AS email, COALESCE(permanent_address, '') AS permanent_address,
	COALESCE(emergency_contact_name, '') AS emergency_contact_name,
	COALESCE(emergency_contact_phone, '') AS emergency_contact_phone,
	COALESCE(emergency_contact_relation, '') AS emergency_contact_relation,
	COALESCE(medical_conditions, '') AS medical_conditions,
	COALESCE(current_medications, '') AS current_medications,
	COALESCE(allergies, '') AS allergies,
	COALESCE(disability_status, '') AS disability_status,
	COALESCE(special_needs, '') AS special_needs,
	created_at, updated_at
`

func scanGuest(row interface{ Scan(...any) error }) (*domain.Guest, error) {
	var g domain.Guest
	err := row.Scan(
		&g.ID, &g.CenterID,
		&g.FirstName, &g.MiddleName, &g.LastName, &g.Gender,
		&g.DateOfBirth, &g.Age,
		&g.MobilePhone, &g.AlternateMobile,
		&g.Email, &g.PermanentAddress,
		&g.EmergencyContactName,
		&g.EmergencyContactPhone,
		&g.EmergencyContactRelation,
		&g.MedicalConditions,
		&g.CurrentMedications,
		&g.Allergies,
		&g.DisabilityStatus,
		&g.SpecialNeeds,
		&g.CreatedAt, &g.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &g, nil
}

// ListGuests 查询人员列表（created_at 倒序，支持中心过滤与模糊搜索）
func (r *PostgresGuestsRepository) ListGuests(ctx context.Context, filters GuestFilters) ([]*domain.Guest, error) {
	where := []string{}
	args := []any{}
	argIdx := 1

	if filters.CenterID != "" {
		where = append(where, fmt.Sprintf("center_id = $%d", argIdx))
		args = append(args, filters.CenterID)
		argIdx++
	}

	if filters.Search != "" {
		where = append(where, fmt.Sprintf(
			`(first_name ILIKE $%d OR middle_name ILIKE $%d OR last_name ILIKE $%d
			  OR mobile_phone ILIKE $%d OR alternate_mobile ILIKE $%d
			  OR email ILIKE $%d OR id ILIKE $%d)`,
			argIdx, argIdx, argIdx, argIdx, argIdx, argIdx, argIdx))
		args = append(args, "%"+filters.Search+"%")
		argIdx++
	}

	whereClause := ""
	if len(where) > 0 {
		whereClause = "WHERE " + strings.Join(where, " AND ")
	}

	query := fmt.Sprintf(`SELECT %s FROM guests %s ORDER BY created_at DESC, id DESC`, guestColumns, whereClause)
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list guests: %w", err)
	}
	defer rows.Close()

	var guests []*domain.Guest
	for rows.Next() {
		g, err := scanGuest(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan guest: %w", err)
		}
		guests = append(guests, g)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate guests: %w", err)
	}
	return guests, nil
}

// GetGuest 根据 id 获取人员
func (r *PostgresGuestsRepository) GetGuest(ctx context.Context, guestID string) (*domain.Guest, error) {
	if guestID == "" {
		return nil, fmt.Errorf("guest_id is required")
	}

	query := fmt.Sprintf(`SELECT %s FROM guests WHERE id = $1`, guestColumns)
	g, err := scanGuest(r.db.QueryRowContext(ctx, query, guestID))
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, fmt.Errorf("guest %s: %w", guestID, domain.ErrNotFound)
		}
		return nil, fmt.Errorf("failed to get guest: %w", err)
	}
	return g, nil
}

// CreateGuest 插入人员
func (r *PostgresGuestsRepository) CreateGuest(ctx context.Context, g *domain.Guest) error {
	query := `
		INSERT INTO guests (
			id, center_id,
			first_name, middle_name, last_name, gender, date_of_birth, age,
			mobile_phone, alternate_mobile, email, permanent_address,
			emergency_contact_name, emergency_contact_phone, emergency_contact_relation,
			medical_conditions, current_medications, allergies, disability_status, special_needs,
			created_at, updated_at
		) VALUES (
			$1, $2,
			$3, $4, $5, $6, $7, $8,
			$9, $10, $11, $12,
			$13, $14, $15,
			$16, $17, $18, $19, $20,
			$21, $22
		)`
	_, err := r.db.ExecContext(ctx, query,
		g.ID, g.CenterID,
		g.FirstName, g.MiddleName, g.LastName, g.Gender, g.DateOfBirth, g.Age,
		g.MobilePhone, g.AlternateMobile, g.Email, g.PermanentAddress,
		g.EmergencyContactName, g.EmergencyContactPhone, g.EmergencyContactRelation,
		g.MedicalConditions, g.CurrentMedications, g.Allergies, g.DisabilityStatus, g.SpecialNeeds,
		g.CreatedAt, g.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to create guest: %w", err)
	}
	return nil
}

// UpdateGuest 整行覆盖更新
func (r *PostgresGuestsRepository) UpdateGuest(ctx context.Context, g *domain.Guest) error {
	query := `
		UPDATE guests SET
			center_id = $2,
			first_name = $3, middle_name = $4, last_name = $5, gender = $6,
			date_of_birth = $7, age = $8,
			mobile_phone = $9, alternate_mobile = $10, email = $11, permanent_address = $12,
			emergency_contact_name = $13, emergency_contact_phone = $14, emergency_contact_relation = $15,
			medical_conditions = $16, current_medications = $17, allergies = $18,
			disability_status = $19, special_needs = $20,
			updated_at = $21
		WHERE id = $1`
	result, err := r.db.ExecContext(ctx, query,
		g.ID, g.CenterID,
		g.FirstName, g.MiddleName, g.LastName, g.Gender,
		g.DateOfBirth, g.Age,
		g.MobilePhone, g.AlternateMobile, g.Email, g.PermanentAddress,
		g.EmergencyContactName, g.EmergencyContactPhone, g.EmergencyContactRelation,
		g.MedicalConditions, g.CurrentMedications, g.Allergies,
		g.DisabilityStatus, g.SpecialNeeds,
		g.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to update guest: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to check update result: %w", err)
	}
	if affected == 0 {
		return fmt.Errorf("guest %s: %w", g.ID, domain.ErrNotFound)
	}
	return nil
}

// DeleteGuest 删除人员（幂等）
func (r *PostgresGuestsRepository) DeleteGuest(ctx context.Context, guestID string) error {
	if _, err := r.db.ExecContext(ctx, `DELETE FROM guests WHERE id = $1`, guestID); err != nil {
		return fmt.Errorf("failed to delete guest: %w", err)
	}
	return nil
}

// DeleteGuestsByCenter 级联删除某中心的全部人员
func (r *PostgresGuestsRepository) DeleteGuestsByCenter(ctx context.Context, centerID string) (int, error) {
	result, err := r.db.ExecContext(ctx, `DELETE FROM guests WHERE center_id = $1`, centerID)
	if err != nil {
		return 0, fmt.Errorf("failed to delete guests by center: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("failed to check delete result: %w", err)
	}
	return int(affected), nil
}
