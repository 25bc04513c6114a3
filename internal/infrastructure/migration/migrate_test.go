package migration

import (
	"errors"
	"testing"

	"github.com/golang-migrate/migrate/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type MockMigrator struct {
	mock.Mock
}

func (m *MockMigrator) Up() error {
	args := m.Called()
	return args.Error(0)
}

func (m *MockMigrator) Close() (error, error) {
	args := m.Called()
	return args.Error(0), args.Error(1)
}

func engineFor(m Migrator, gotSource *string) Engine {
	return func(source, db string) (Migrator, error) {
		if gotSource != nil {
			*gotSource = source
		}
		return m, nil
	}
}

func TestMigration_Up(t *testing.T) {
	tests := []struct {
		name     string
		upErr    error
		srcErr   error
		dbErr    error
		wantErr  bool
		contains string
	}{
		{name: "applied"},
		{name: "no change", upErr: migrate.ErrNoChange},
		{name: "up failure", upErr: errors.New("dirty database"), wantErr: true, contains: "dirty database"},
		{name: "close failure", dbErr: errors.New("conn lost"), wantErr: true, contains: "conn lost"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := new(MockMigrator)
			m.On("Up").Return(tt.upErr)
			m.On("Close").Return(tt.srcErr, tt.dbErr)

			var source string
			err := New("migrations", "postgres://localhost/jobtag", engineFor(m, &source)).Up()

			assert.Equal(t, "file://migrations", source)
			if tt.wantErr {
				require.Error(t, err)
				assert.Contains(t, err.Error(), tt.contains)
			} else {
				assert.NoError(t, err)
			}
			m.AssertExpectations(t)
		})
	}
}

func TestMigration_Up_EngineError(t *testing.T) {
	engine := func(source, db string) (Migrator, error) {
		return nil, errors.New("engine crash")
	}

	err := New("migrations", "", engine).Up()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "engine crash")
}
