package prices

import (
	"context"
	"testing"
	"time"

	"github.com/aristath/indexboard/internal/database"
	"github.com/aristath/indexboard/internal/domain"
	testhelpers "github.com/aristath/indexboard/internal/testing"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var floor = time.Date(2000, 1, 1, 0, 0, 0, 0, time.UTC)

func openStore(t *testing.T, fx testhelpers.Fixture) *database.DB {
	t.Helper()

	db, err := database.New(database.Config{
		Path:    testhelpers.NewPriceStore(t, fx),
		Profile: database.ProfileReadOnly,
		Name:    "prices",
	})
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return db
}

func newTestRepository(t *testing.T, fx testhelpers.Fixture) *Repository {
	t.Helper()

	repo, err := NewRepository(openStore(t, fx).Conn(), DefaultTables(), zerolog.New(nil).Level(zerolog.Disabled))
	require.NoError(t, err)
	return repo
}

func TestRepository_IndexSeries(t *testing.T) {
	repo := newTestRepository(t, testhelpers.NewDAXFixture())

	bars, err := repo.IndexSeries(context.Background(), "^GDAXI", floor)
	require.NoError(t, err)

	require.Len(t, bars, 18)
	assert.Equal(t, time.Date(2020, 1, 2, 0, 0, 0, 0, time.UTC), bars[0].Date)
	assert.Equal(t, time.Date(2020, 6, 28, 0, 0, 0, 0, time.UTC), bars[17].Date)
	for _, b := range bars {
		assert.Equal(t, "^GDAXI", b.Ticker)
	}
	// 1.5*120 + 2.0*100 + 0.5*200
	assert.InDelta(t, 480.0, bars[0].Open, 1e-9)
}

func TestRepository_IndexSeriesUnknownTicker(t *testing.T) {
	repo := newTestRepository(t, testhelpers.NewDAXFixture())

	bars, err := repo.IndexSeries(context.Background(), "^STOXX50E", floor)
	require.NoError(t, err)
	assert.Empty(t, bars)
	assert.NotNil(t, bars)
}

func TestRepository_ConstituentSeries(t *testing.T) {
	repo := newTestRepository(t, testhelpers.NewDAXFixture())
	ctx := context.Background()

	bars, err := repo.ConstituentSeries(ctx, floor)
	require.NoError(t, err)
	assert.Len(t, bars, 18*4)
	assert.Equal(t, "ALV.DE", bars[0].Ticker, "ordered by date then ticker")

	all, err := repo.ConstituentSeries(ctx, time.Time{})
	require.NoError(t, err)
	assert.Len(t, all, 19*4)
	assert.Equal(t, time.Date(1999, 12, 15, 0, 0, 0, 0, time.UTC), all[0].Date)
}

func TestRepository_Metadata(t *testing.T) {
	fx := testhelpers.NewDAXFixture()
	fx.Metadata = append(fx.Metadata, domain.ConstituentMetadata{Ticker: "NONAME.DE", IndexPriceFactor: 1})
	repo := newTestRepository(t, fx)

	metadata, err := repo.Metadata(context.Background())
	require.NoError(t, err)

	require.Len(t, metadata, 4)
	assert.Equal(t, domain.ConstituentMetadata{Ticker: "SAP.DE", Name: "SAP", IndexPriceFactor: 1.5}, metadata[0])
	assert.Equal(t, "SIE.DE", metadata[1].Ticker)
	assert.Equal(t, "", metadata[3].Name)
}

func TestRepository_CheckSchema(t *testing.T) {
	t.Run("valid", func(t *testing.T) {
		repo := newTestRepository(t, testhelpers.NewDAXFixture())
		assert.NoError(t, repo.CheckSchema(context.Background()))
	})

	t.Run("missing columns", func(t *testing.T) {
		db := testhelpers.NewTestDB(t, "prices")
		_, err := db.Conn().Exec(testhelpers.PriceStoreSchema + `
			CREATE TABLE Broken_Index (Date TEXT, Ticker TEXT, Close REAL);
		`)
		require.NoError(t, err)

		tables := DefaultTables()
		tables.Index = "Broken_Index"
		repo, err := NewRepository(db.Conn(), tables, zerolog.Nop())
		require.NoError(t, err)

		err = repo.CheckSchema(context.Background())
		require.Error(t, err)
		assert.True(t, domain.IsDataError(err))
		assert.Contains(t, err.Error(), "Broken_Index")
		assert.Contains(t, err.Error(), "Open, High, Low, Volume")
	})

	t.Run("missing table", func(t *testing.T) {
		db := testhelpers.NewTestDB(t, "prices")
		repo, err := NewRepository(db.Conn(), DefaultTables(), zerolog.Nop())
		require.NoError(t, err)

		err = repo.CheckSchema(context.Background())
		require.Error(t, err)
		assert.True(t, domain.IsDataError(err))
	})
}

func TestRepository_InvalidRows(t *testing.T) {
	tests := []struct {
		name   string
		insert string
		column string
	}{
		{
			name:   "null close",
			insert: `INSERT INTO Equity_Prices_GER VALUES ('2020-07-01 00:00:00', 'SAP.DE', 1, 2, 0.5, NULL, 10)`,
			column: "Close",
		},
		{
			name:   "null ticker",
			insert: `INSERT INTO Equity_Prices_GER VALUES ('2020-07-01 00:00:00', NULL, 1, 2, 0.5, 1.5, 10)`,
			column: "Ticker",
		},
		{
			name:   "unparseable date",
			insert: `INSERT INTO Equity_Prices_GER VALUES ('2020-07-xx', 'SAP.DE', 1, 2, 0.5, 1.5, 10)`,
			column: "Date",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			db := testhelpers.NewTestDB(t, "prices")
			require.NoError(t, testhelpers.SeedPriceStore(db.Conn(), testhelpers.NewDAXFixture()))
			_, err := db.Conn().Exec(tt.insert)
			require.NoError(t, err)

			repo, err := NewRepository(db.Conn(), DefaultTables(), zerolog.Nop())
			require.NoError(t, err)

			_, err = repo.ConstituentSeries(context.Background(), time.Time{})
			require.Error(t, err)
			assert.True(t, domain.IsDataError(err))
			assert.Contains(t, err.Error(), tt.column)
		})
	}
}

func TestTables_Validate(t *testing.T) {
	assert.NoError(t, DefaultTables().Validate())

	for _, name := range []string{"", "Index GER", "Index_GER; DROP TABLE x", "1table"} {
		tables := DefaultTables()
		tables.Metadata = name
		err := tables.Validate()
		assert.Error(t, err, name)
		assert.True(t, domain.IsConfigError(err), name)
	}
}

func TestParseStoreDate(t *testing.T) {
	want := time.Date(2020, 3, 2, 0, 0, 0, 0, time.UTC)
	for _, s := range []string{"2020-03-02 00:00:00", "2020-03-02", "2020-03-02T17:30:00", "2020-03-02T09:00:00Z"} {
		got, err := parseStoreDate(s)
		require.NoError(t, err, s)
		assert.Equal(t, want, got, s)
	}

	_, err := parseStoreDate("02/03/2020")
	assert.Error(t, err)
}
