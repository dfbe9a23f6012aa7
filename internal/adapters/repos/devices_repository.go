package repos

import (
	"context"
	"errors"
	"fmt"
	"time"

	sq "github.com/Masterminds/squirrel"
	"github.com/architeacher/device-inventory/internal/domain/model"
	"github.com/architeacher/device-inventory/pkg/logger"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

const (
	devicesTable = "devices"

	uniqueViolationCode = "23505"

	upsertSuffix    = "ON CONFLICT (id) DO UPDATE SET name = EXCLUDED.name, brand = EXCLUDED.brand, state = EXCLUDED.state"
	returningSuffix = "RETURNING id, name, brand, state, created_at"
)

var (
	psql = sq.StatementBuilder.PlaceholderFormat(sq.Dollar)

	deviceColumns = []string{"id", "name", "brand", "state", "created_at"}
)

type (
	// PoolOps is the subset of pgxpool.Pool the repository needs.
	PoolOps interface {
		Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
		Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
		Ping(ctx context.Context) error
	}

	// DevicesRepository persists devices in PostgreSQL.
	DevicesRepository struct {
		pool       PoolOps
		scanner    Scanner
		logger     logger.Logger
		translator *CriteriaTranslator
	}

	deviceRow struct {
		ID        string    `db:"id"`
		Name      string    `db:"name"`
		Brand     string    `db:"brand"`
		State     *string   `db:"state"`
		CreatedAt time.Time `db:"created_at"`
	}
)

func NewDevicesRepository(
	pool PoolOps,
	scanner Scanner,
	translator *CriteriaTranslator,
	log logger.Logger,
) *DevicesRepository {
	return &DevicesRepository{
		pool:       pool,
		scanner:    scanner,
		translator: translator,
		logger:     log.Component("devices_repository"),
	}
}

// Insert assigns a fresh ID and lets the database stamp created_at.
func (r *DevicesRepository) Insert(ctx context.Context, device *model.Device) (*model.Device, error) {
	id := model.NewDeviceID()

	builder := psql.Insert(devicesTable).
		Columns("id", "name", "brand", "state").
		Values(id.String(), device.Name, device.Brand, stateValue(device.State)).
		Suffix(returningSuffix)

	return r.writeOne(ctx, builder, "failed to insert device")
}

// Save writes every mutable column of device, inserting it when the ID is unknown.
func (r *DevicesRepository) Save(ctx context.Context, device *model.Device) (*model.Device, error) {
	builder := psql.Insert(devicesTable).
		Columns("id", "name", "brand", "state").
		Values(device.ID.String(), device.Name, device.Brand, stateValue(device.State)).
		Suffix(upsertSuffix + " " + returningSuffix)

	return r.writeOne(ctx, builder, "failed to save device")
}

func (r *DevicesRepository) FetchByID(ctx context.Context, id model.DeviceID) (*model.Device, error) {
	query, args, err := psql.Select(deviceColumns...).
		From(devicesTable).
		Where(sq.Eq{"id": id.String()}).
		Limit(1).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build select query: %w", err)
	}

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", model.ErrDatabaseQuery, err)
	}
	defer rows.Close()

	var row deviceRow
	if err := r.scanner.ScanOne(&row, rows); err != nil {
		if r.scanner.IsNotFound(err) {
			return nil, model.ErrDeviceNotFound
		}

		return nil, fmt.Errorf("device with ID %s: %w", id, err)
	}

	return convertRowToDevice(row)
}

func (r *DevicesRepository) FetchAll(ctx context.Context) ([]*model.Device, error) {
	return r.findByCriteria(ctx, model.AllDevices())
}

func (r *DevicesRepository) FetchByField(ctx context.Context, field string, value any) ([]*model.Device, error) {
	return r.findByCriteria(ctx, model.ByField(field, value))
}

func (r *DevicesRepository) DeleteByID(ctx context.Context, id model.DeviceID) error {
	query, args, err := psql.Delete(devicesTable).
		Where(sq.Eq{"id": id.String()}).
		ToSql()
	if err != nil {
		return fmt.Errorf("failed to build delete query: %w", err)
	}

	result, err := r.pool.Exec(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("%w: %v", model.ErrDatabaseQuery, err)
	}

	if result.RowsAffected() == 0 {
		return model.ErrDeviceNotFound
	}

	return nil
}

func (r *DevicesRepository) Ping(ctx context.Context) error {
	return r.pool.Ping(ctx)
}

func (r *DevicesRepository) writeOne(ctx context.Context, builder sq.InsertBuilder, errorContext string) (*model.Device, error) {
	query, args, err := builder.ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build insert query: %w", err)
	}

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, r.wrapWriteError(errorContext, err)
	}
	defer rows.Close()

	var row deviceRow
	if err := r.scanner.ScanOne(&row, rows); err != nil {
		return nil, r.wrapWriteError(errorContext, err)
	}

	return convertRowToDevice(row)
}

func (r *DevicesRepository) wrapWriteError(errorContext string, err error) error {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		r.logger.Debug().
			Str("code", pgErr.Code).
			Str("constraint", pgErr.ConstraintName).
			Msg(errorContext)

		if pgErr.Code == uniqueViolationCode {
			return model.ErrDuplicateDevice
		}
	}

	return fmt.Errorf("%w: %s: %v", model.ErrDatabaseQuery, errorContext, err)
}

func (r *DevicesRepository) findByCriteria(ctx context.Context, criteria model.Criteria) ([]*model.Device, error) {
	builder, err := r.translator.ApplyToSelect(psql.Select(deviceColumns...).From(devicesTable), criteria)
	if err != nil {
		return nil, err
	}

	query, args, err := builder.ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build select query: %w", err)
	}

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", model.ErrDatabaseQuery, err)
	}
	defer rows.Close()

	var deviceRows []deviceRow
	if err := r.scanner.ScanAll(&deviceRows, rows); err != nil {
		return nil, fmt.Errorf("%w: %v", model.ErrDatabaseQuery, err)
	}

	devices := make([]*model.Device, 0, len(deviceRows))

	for index := range deviceRows {
		device, err := convertRowToDevice(deviceRows[index])
		if err != nil {
			return nil, fmt.Errorf("%w: %v", model.ErrDatabaseQuery, err)
		}

		devices = append(devices, device)
	}

	return devices, nil
}

func convertRowToDevice(row deviceRow) (*model.Device, error) {
	id, err := model.ParseDeviceID(row.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to parse device ID: %w", err)
	}

	state := model.StateUnset
	if row.State != nil {
		state, err = model.ParseState(*row.State)
		if err != nil {
			return nil, fmt.Errorf("failed to parse device state: %w", err)
		}
	}

	return &model.Device{
		ID:        id,
		Name:      row.Name,
		Brand:     row.Brand,
		State:     state,
		CreatedAt: row.CreatedAt,
	}, nil
}

// stateValue maps an unset state to SQL NULL.
func stateValue(state model.State) any {
	if !state.IsSet() {
		return nil
	}

	return state.String()
}
