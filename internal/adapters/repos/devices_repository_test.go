package repos_test

import (
	"context"
	"errors"
	"regexp"
	"testing"
	"time"

	"github.com/architeacher/device-inventory/internal/adapters/repos"
	"github.com/architeacher/device-inventory/internal/domain/model"
	"github.com/architeacher/device-inventory/pkg/logger"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/pashagolub/pgxmock/v4"
	"github.com/stretchr/testify/require"
)

const (
	insertSQL = `INSERT INTO devices (id,name,brand,state) VALUES ($1,$2,$3,$4) RETURNING id, name, brand, state, created_at`
	saveSQL   = `INSERT INTO devices (id,name,brand,state) VALUES ($1,$2,$3,$4) ` +
		`ON CONFLICT (id) DO UPDATE SET name = EXCLUDED.name, brand = EXCLUDED.brand, state = EXCLUDED.state ` +
		`RETURNING id, name, brand, state, created_at`
	selectByIDSQL = `SELECT id, name, brand, state, created_at FROM devices WHERE id = $1 LIMIT 1`
	selectAllSQL  = `SELECT id, name, brand, state, created_at FROM devices ORDER BY created_at ASC, id ASC`
	selectBrand   = `SELECT id, name, brand, state, created_at FROM devices WHERE brand = $1 ORDER BY created_at ASC, id ASC`
	selectState   = `SELECT id, name, brand, state, created_at FROM devices WHERE state = $1 ORDER BY created_at ASC, id ASC`
	deleteSQL     = `DELETE FROM devices WHERE id = $1`
)

var (
	deviceCols = []string{"id", "name", "brand", "state", "created_at"}
	createdAt  = time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)
)

func strPtr(s string) *string {
	return &s
}

func runRepoTest(
	t *testing.T,
	setupMock func(pgxmock.PgxPoolIface),
	testFn func(*testing.T, *repos.DevicesRepository),
) {
	t.Helper()
	t.Parallel()

	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	setupMock(mock)

	repo := repos.NewDevicesRepository(mock, repos.NewPgxScanner(), repos.NewCriteriaTranslator(), logger.NewTestLogger())
	testFn(t, repo)

	require.NoError(t, mock.ExpectationsWereMet())
}

func TestDevicesRepository_Insert(t *testing.T) {
	t.Parallel()

	storedID := model.NewDeviceID()

	t.Run("returns the stored device with database timestamp", func(t *testing.T) {
		runRepoTest(t, func(mock pgxmock.PgxPoolIface) {
			mock.ExpectQuery(regexp.QuoteMeta(insertSQL)).
				WithArgs(pgxmock.AnyArg(), "Watch", "Garmin", "IN_USE").
				WillReturnRows(mock.NewRows(deviceCols).
					AddRow(storedID.String(), "Watch", "Garmin", strPtr("IN_USE"), createdAt))
		}, func(t *testing.T, repo *repos.DevicesRepository) {
			device, err := repo.Insert(context.Background(), &model.Device{
				Name:  "Watch",
				Brand: "Garmin",
				State: model.StateInUse,
			})

			require.NoError(t, err)
			require.Equal(t, storedID, device.ID)
			require.Equal(t, model.StateInUse, device.State)
			require.Equal(t, createdAt, device.CreatedAt)
		})
	})

	t.Run("unset state is written as null", func(t *testing.T) {
		runRepoTest(t, func(mock pgxmock.PgxPoolIface) {
			mock.ExpectQuery(regexp.QuoteMeta(insertSQL)).
				WithArgs(pgxmock.AnyArg(), "Phone", "Acme", nil).
				WillReturnRows(mock.NewRows(deviceCols).
					AddRow(storedID.String(), "Phone", "Acme", (*string)(nil), createdAt))
		}, func(t *testing.T, repo *repos.DevicesRepository) {
			device, err := repo.Insert(context.Background(), &model.Device{Name: "Phone", Brand: "Acme"})

			require.NoError(t, err)
			require.Equal(t, model.StateUnset, device.State)
		})
	})

	t.Run("unique violation maps to duplicate device", func(t *testing.T) {
		runRepoTest(t, func(mock pgxmock.PgxPoolIface) {
			mock.ExpectQuery(regexp.QuoteMeta(insertSQL)).
				WithArgs(pgxmock.AnyArg(), "Watch", "Garmin", nil).
				WillReturnError(&pgconn.PgError{Code: "23505", ConstraintName: "devices_pkey"})
		}, func(t *testing.T, repo *repos.DevicesRepository) {
			_, err := repo.Insert(context.Background(), &model.Device{Name: "Watch", Brand: "Garmin"})

			require.ErrorIs(t, err, model.ErrDuplicateDevice)
		})
	})

	t.Run("check violation surfaces as database error", func(t *testing.T) {
		runRepoTest(t, func(mock pgxmock.PgxPoolIface) {
			mock.ExpectQuery(regexp.QuoteMeta(insertSQL)).
				WithArgs(pgxmock.AnyArg(), "", "Garmin", nil).
				WillReturnError(&pgconn.PgError{Code: "23514", ConstraintName: "devices_name_check"})
		}, func(t *testing.T, repo *repos.DevicesRepository) {
			_, err := repo.Insert(context.Background(), &model.Device{Name: "", Brand: "Garmin"})

			require.ErrorIs(t, err, model.ErrDatabaseQuery)
		})
	})
}

func TestDevicesRepository_FetchByID(t *testing.T) {
	t.Parallel()

	id := model.NewDeviceID()

	t.Run("found", func(t *testing.T) {
		runRepoTest(t, func(mock pgxmock.PgxPoolIface) {
			mock.ExpectQuery(regexp.QuoteMeta(selectByIDSQL)).
				WithArgs(id.String()).
				WillReturnRows(mock.NewRows(deviceCols).
					AddRow(id.String(), "Watch", "Garmin", strPtr("AVAILABLE"), createdAt))
		}, func(t *testing.T, repo *repos.DevicesRepository) {
			device, err := repo.FetchByID(context.Background(), id)

			require.NoError(t, err)
			require.Equal(t, &model.Device{
				ID:        id,
				Name:      "Watch",
				Brand:     "Garmin",
				State:     model.StateAvailable,
				CreatedAt: createdAt,
			}, device)
		})
	})

	t.Run("not found", func(t *testing.T) {
		runRepoTest(t, func(mock pgxmock.PgxPoolIface) {
			mock.ExpectQuery(regexp.QuoteMeta(selectByIDSQL)).
				WithArgs(id.String()).
				WillReturnRows(mock.NewRows(deviceCols))
		}, func(t *testing.T, repo *repos.DevicesRepository) {
			_, err := repo.FetchByID(context.Background(), id)

			require.ErrorIs(t, err, model.ErrDeviceNotFound)
		})
	})

	t.Run("query failure", func(t *testing.T) {
		runRepoTest(t, func(mock pgxmock.PgxPoolIface) {
			mock.ExpectQuery(regexp.QuoteMeta(selectByIDSQL)).
				WithArgs(id.String()).
				WillReturnError(errors.New("connection refused"))
		}, func(t *testing.T, repo *repos.DevicesRepository) {
			_, err := repo.FetchByID(context.Background(), id)

			require.ErrorIs(t, err, model.ErrDatabaseQuery)
		})
	})
}

func TestDevicesRepository_Lists(t *testing.T) {
	t.Parallel()

	first := model.NewDeviceID()
	second := model.NewDeviceID()

	t.Run("fetch all ordered by creation", func(t *testing.T) {
		runRepoTest(t, func(mock pgxmock.PgxPoolIface) {
			mock.ExpectQuery(regexp.QuoteMeta(selectAllSQL)).
				WillReturnRows(mock.NewRows(deviceCols).
					AddRow(first.String(), "Watch", "Garmin", strPtr("IN_USE"), createdAt).
					AddRow(second.String(), "Phone", "Acme", (*string)(nil), createdAt.Add(time.Minute)))
		}, func(t *testing.T, repo *repos.DevicesRepository) {
			devices, err := repo.FetchAll(context.Background())

			require.NoError(t, err)
			require.Len(t, devices, 2)
			require.Equal(t, first, devices[0].ID)
			require.Equal(t, model.StateUnset, devices[1].State)
		})
	})

	t.Run("fetch all on empty table", func(t *testing.T) {
		runRepoTest(t, func(mock pgxmock.PgxPoolIface) {
			mock.ExpectQuery(regexp.QuoteMeta(selectAllSQL)).
				WillReturnRows(mock.NewRows(deviceCols))
		}, func(t *testing.T, repo *repos.DevicesRepository) {
			devices, err := repo.FetchAll(context.Background())

			require.NoError(t, err)
			require.NotNil(t, devices)
			require.Empty(t, devices)
		})
	})

	t.Run("fetch by brand", func(t *testing.T) {
		runRepoTest(t, func(mock pgxmock.PgxPoolIface) {
			mock.ExpectQuery(regexp.QuoteMeta(selectBrand)).
				WithArgs("Garmin").
				WillReturnRows(mock.NewRows(deviceCols).
					AddRow(first.String(), "Watch", "Garmin", strPtr("IN_USE"), createdAt))
		}, func(t *testing.T, repo *repos.DevicesRepository) {
			devices, err := repo.FetchByField(context.Background(), "brand", "Garmin")

			require.NoError(t, err)
			require.Len(t, devices, 1)
		})
	})

	t.Run("fetch by typed state", func(t *testing.T) {
		runRepoTest(t, func(mock pgxmock.PgxPoolIface) {
			mock.ExpectQuery(regexp.QuoteMeta(selectState)).
				WithArgs("INACTIVE").
				WillReturnRows(mock.NewRows(deviceCols))
		}, func(t *testing.T, repo *repos.DevicesRepository) {
			devices, err := repo.FetchByField(context.Background(), "state", model.StateInactive)

			require.NoError(t, err)
			require.Empty(t, devices)
		})
	})

	t.Run("unknown field never reaches the database", func(t *testing.T) {
		runRepoTest(t, func(pgxmock.PgxPoolIface) {}, func(t *testing.T, repo *repos.DevicesRepository) {
			_, err := repo.FetchByField(context.Background(), "color; DROP TABLE devices", "red")

			require.ErrorIs(t, err, model.ErrUnknownField)
		})
	})
}

func TestDevicesRepository_Save(t *testing.T) {
	device := &model.Device{
		ID:        model.NewDeviceID(),
		Name:      "Watch",
		Brand:     "Garmin",
		State:     model.StateInactive,
		CreatedAt: createdAt,
	}

	runRepoTest(t, func(mock pgxmock.PgxPoolIface) {
		mock.ExpectQuery(regexp.QuoteMeta(saveSQL)).
			WithArgs(device.ID.String(), "Watch", "Garmin", "INACTIVE").
			WillReturnRows(mock.NewRows(deviceCols).
				AddRow(device.ID.String(), "Watch", "Garmin", strPtr("INACTIVE"), createdAt))
	}, func(t *testing.T, repo *repos.DevicesRepository) {
		saved, err := repo.Save(context.Background(), device)

		require.NoError(t, err)
		require.Equal(t, device, saved)
	})
}

func TestDevicesRepository_DeleteByID(t *testing.T) {
	t.Parallel()

	id := model.NewDeviceID()

	t.Run("deleted", func(t *testing.T) {
		runRepoTest(t, func(mock pgxmock.PgxPoolIface) {
			mock.ExpectExec(regexp.QuoteMeta(deleteSQL)).
				WithArgs(id.String()).
				WillReturnResult(pgxmock.NewResult("DELETE", 1))
		}, func(t *testing.T, repo *repos.DevicesRepository) {
			require.NoError(t, repo.DeleteByID(context.Background(), id))
		})
	})

	t.Run("missing row", func(t *testing.T) {
		runRepoTest(t, func(mock pgxmock.PgxPoolIface) {
			mock.ExpectExec(regexp.QuoteMeta(deleteSQL)).
				WithArgs(id.String()).
				WillReturnResult(pgxmock.NewResult("DELETE", 0))
		}, func(t *testing.T, repo *repos.DevicesRepository) {
			require.ErrorIs(t, repo.DeleteByID(context.Background(), id), model.ErrDeviceNotFound)
		})
	})
}

func TestDevicesRepository_Ping(t *testing.T) {
	runRepoTest(t, func(mock pgxmock.PgxPoolIface) {
		mock.ExpectPing()
	}, func(t *testing.T, repo *repos.DevicesRepository) {
		require.NoError(t, repo.Ping(context.Background()))
	})
}
