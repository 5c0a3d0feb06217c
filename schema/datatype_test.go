package schema

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Sterbis/sqldatabase/dialect"
)

func TestDataTypeRender(t *testing.T) {
	t.Parallel()
	tests := []struct {
		name     string
		template *DataType
		dialect  string
		want     string
	}{
		{"integer sqlite", Integer, dialect.SQLite, "INTEGER"},
		{"integer sqlserver", Integer, dialect.SQLServer, "INTEGER"},
		{"boolean sqlite", Boolean, dialect.SQLite, "INTEGER"},
		{"boolean postgres", Boolean, dialect.Postgres, "BOOLEAN"},
		{"boolean sqlserver", Boolean, dialect.SQLServer, "BIT"},
		{"text mysql", Text, dialect.MySQL, "TEXT"},
		{"text sqlserver", Text, dialect.SQLServer, "NVARCHAR(255)"},
		{"date sqlite", Date, dialect.SQLite, "TEXT"},
		{"date postgres", Date, dialect.Postgres, "DATE"},
		{"time sqlite", Time, dialect.SQLite, "TEXT"},
		{"datetime sqlite", DateTime, dialect.SQLite, "TEXT"},
		{"datetime mysql", DateTime, dialect.MySQL, "DATETIME"},
		{"datetime postgres", DateTime, dialect.Postgres, "TIMESTAMP"},
		{"datetime sqlserver", DateTime, dialect.SQLServer, "DATETIME2"},
		{"float postgres", Float, dialect.Postgres, "FLOAT"},
		{"blob sqlite", Blob, dialect.SQLite, "BLOB"},
		{"blob postgres", Blob, dialect.Postgres, "BYTEA"},
		{"blob sqlserver", Blob, dialect.SQLServer, "VARBINARY(MAX)"},
		{"varchar sqlserver", Varchar(30), dialect.SQLServer, "VARCHAR(30)"},
		{"nvarchar sqlserver", NVarchar(10), dialect.SQLServer, "NVARCHAR(10)"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			text, err := tt.template.bind(tt.dialect).Render()
			require.NoError(t, err)
			assert.Equal(t, tt.want, text)
		})
	}
}

func TestDataTypeRenderUnbound(t *testing.T) {
	t.Parallel()
	_, err := Integer.Render()
	require.Error(t, err)
	assert.True(t, IsNotAttached(err))
}

func TestDataTypeBindCopies(t *testing.T) {
	t.Parallel()
	bound := Boolean.bind(dialect.SQLite)
	assert.True(t, bound.Bound())
	assert.Equal(t, dialect.SQLite, bound.Dialect())
	assert.False(t, Boolean.Bound(), "binding must not mutate the template")
}

func TestBooleanConverters(t *testing.T) {
	t.Parallel()
	raw, err := Boolean.ToRawConverter()(true)
	require.NoError(t, err)
	assert.Equal(t, int64(1), raw)

	raw, err = Boolean.ToRawConverter()(false)
	require.NoError(t, err)
	assert.Equal(t, int64(0), raw)

	value, err := Boolean.FromRawConverter()(int64(1))
	require.NoError(t, err)
	assert.Equal(t, true, value)

	value, err = Boolean.FromRawConverter()(int64(0))
	require.NoError(t, err)
	assert.Equal(t, false, value)

	_, err = Boolean.ToRawConverter()("yes")
	assert.Error(t, err)
}

func TestTemporalConverters(t *testing.T) {
	t.Parallel()
	tests := []struct {
		name     string
		dataType *DataType
		value    time.Time
		raw      string
	}{
		{"date", Date, time.Date(2000, 1, 2, 0, 0, 0, 0, time.UTC), "2000-01-02"},
		{"time", Time, time.Date(0, 1, 1, 10, 20, 30, 0, time.UTC), "10:20:30"},
		{"time micros", Time, time.Date(0, 1, 1, 10, 20, 30, 123456000, time.UTC), "10:20:30.123456"},
		{"datetime", DateTime, time.Date(2000, 1, 2, 10, 20, 30, 0, time.UTC), "2000-01-02T10:20:30"},
		{"datetime micros", DateTime, time.Date(2000, 1, 2, 10, 20, 30, 500000000, time.UTC), "2000-01-02T10:20:30.500000"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			raw, err := tt.dataType.ToRawConverter()(tt.value)
			require.NoError(t, err)
			assert.Equal(t, tt.raw, raw)

			back, err := tt.dataType.FromRawConverter()(raw)
			require.NoError(t, err)
			assert.True(t, tt.value.Equal(back.(time.Time)), "got %v, want %v", back, tt.value)
		})
	}
}

func TestTemporalFromRawInputs(t *testing.T) {
	t.Parallel()
	now := time.Date(2020, 5, 6, 7, 8, 9, 0, time.UTC)
	back, err := DateTime.FromRawConverter()(now)
	require.NoError(t, err)
	assert.Equal(t, now, back, "time.Time values pass through")

	back, err = DateTime.FromRawConverter()([]byte("2020-05-06 07:08:09"))
	require.NoError(t, err)
	assert.True(t, now.Equal(back.(time.Time)), "space-separated datetimes parse")

	_, err = Date.FromRawConverter()(int64(42))
	assert.Error(t, err)
}
