package ingestion

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/vendops/earnings/internal/domain"
	"github.com/vendops/earnings/internal/money"
	"github.com/vendops/earnings/internal/repository"
)

const salesCSV = `sale_id,machine_id,occurred_at,qty,unit_price,unit_cost,payment_method
S-1,M-1,2024-03-01T10:00:00Z,2,1.50,0.60,Card
S-2,M-2,2024-03-02 12:30:00,1,2.25,,cash
S-3,M-1,2024-03-03,1,abc,0.40,
`

func TestParseSalesCSV(t *testing.T) {
	t.Parallel()

	sales, err := ParseSalesCSV([]byte(salesCSV))
	require.NoError(t, err)
	require.Len(t, sales, 3)

	assert.Equal(t, "S-1", sales[0].ID)
	assert.Equal(t, "M-1", sales[0].MachineID)
	assert.Equal(t, int64(2), sales[0].Quantity)
	assert.Equal(t, money.Cents(150), sales[0].UnitPrice)
	assert.Equal(t, money.Cents(60), sales[0].UnitCost)
	assert.Equal(t, "card", sales[0].PaymentMethod)
	assert.Equal(t, time.Date(2024, 3, 1, 10, 0, 0, 0, time.UTC), sales[0].OccurredAt)

	assert.Equal(t, money.Cents(0), sales[1].UnitCost)
	assert.Equal(t, time.Date(2024, 3, 2, 12, 30, 0, 0, time.UTC), sales[1].OccurredAt)

	// unparseable price coerces to zero instead of failing the file
	assert.Equal(t, money.Cents(0), sales[2].UnitPrice)
	assert.Equal(t, "", sales[2].PaymentMethod)
}

func TestParseSalesCSVColumnOrder(t *testing.T) {
	t.Parallel()

	data := "qty,unit_price,machine_id,occurred_at\n3,0.99,M-9,2024-01-05\n"
	sales, err := ParseSalesCSV([]byte(data))
	require.NoError(t, err)
	require.Len(t, sales, 1)
	assert.Equal(t, "M-9", sales[0].MachineID)
	assert.Equal(t, money.Cents(297), sales[0].Gross())
	assert.Empty(t, sales[0].ID)
}

func TestParseSalesCSVMissingColumn(t *testing.T) {
	t.Parallel()

	_, err := ParseSalesCSV([]byte("machine_id,qty\nM-1,1\n"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), `"occurred_at"`)
	assert.Contains(t, err.Error(), `"unit_price"`)
}

func TestParseSalesJSON(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		data string
	}{
		{"array", `[{"id":"J-1","machine_id":"M-1","occurred_at":"2024-03-04T08:00:00Z","qty":"2","unit_price_cents":175,"unit_cost_cents":null,"payment_method":"CARD"}]`},
		{"wrapped", `{"records":[{"id":"J-1","machine_id":"M-1","occurred_at":"2024-03-04T08:00:00Z","qty":2,"unit_price_cents":"175","payment_method":"card"}]}`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			sales, err := ParseSalesJSON([]byte(tt.data))
			require.NoError(t, err)
			require.Len(t, sales, 1)
			assert.Equal(t, "J-1", sales[0].ID)
			assert.Equal(t, int64(2), sales[0].Quantity)
			assert.Equal(t, money.Cents(175), sales[0].UnitPrice)
			assert.Equal(t, money.Cents(0), sales[0].UnitCost)
			assert.Equal(t, "card", sales[0].PaymentMethod)
		})
	}
}

func TestParseSalesJSONInvalid(t *testing.T) {
	t.Parallel()

	_, err := ParseSalesJSON([]byte(`{"records": [`))
	assert.Error(t, err)
}

func newService(t *testing.T) (*Service, *repository.SaleRepo) {
	t.Helper()
	svc, sales, _ := newServiceWithDB(t)
	return svc, sales
}

func newServiceWithDB(t *testing.T) (*Service, *repository.SaleRepo, *sql.DB) {
	t.Helper()
	db, err := repository.InitDB(context.Background(), ":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	sales := repository.NewSaleRepo(db)
	return NewService(repository.NewImportRepo(db), sales, zap.NewNop()), sales, db
}

func TestImportIsIdempotentByContent(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	svc, sales := newService(t)

	res, err := svc.Import(ctx, []byte(salesCSV), domain.FormatCSV)
	require.NoError(t, err)
	assert.False(t, res.AlreadyImported)
	assert.NotEmpty(t, res.ImportID)
	assert.Equal(t, 3, res.RecordsParsed)
	assert.Equal(t, 3, res.RecordsIngested)

	res, err = svc.Import(ctx, []byte(salesCSV), domain.FormatCSV)
	require.NoError(t, err)
	assert.True(t, res.AlreadyImported)

	n, err := sales.Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, 3, n)
}

func TestImportSkipsKnownSaleIDs(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	svc, sales := newService(t)

	_, err := svc.Import(ctx, []byte(salesCSV), domain.FormatCSV)
	require.NoError(t, err)

	overlap := `[{"id":"S-1","machine_id":"M-1","occurred_at":"2024-03-01T10:00:00Z","qty":2,"unit_price_cents":150},
	{"machine_id":"M-3","occurred_at":"2024-03-05T10:00:00Z","qty":1,"unit_price_cents":300}]`
	res, err := svc.Import(ctx, []byte(overlap), domain.FormatJSON)
	require.NoError(t, err)
	assert.Equal(t, 2, res.RecordsParsed)
	assert.Equal(t, 1, res.RecordsIngested)
	assert.Equal(t, 1, res.DuplicatesSkipped)

	n, err := sales.Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, 4, n)
}

func TestImportUnsupportedFormat(t *testing.T) {
	t.Parallel()
	svc, _ := newService(t)

	_, err := svc.Import(context.Background(), []byte("x"), domain.ImportFormat("xlsx"))
	assert.ErrorIs(t, err, ErrUnsupportedFormat)
}

func TestImportMalformedFile(t *testing.T) {
	t.Parallel()
	svc, _ := newService(t)

	tests := []struct {
		name   string
		data   string
		format domain.ImportFormat
	}{
		{name: "csv missing columns", data: "machine_id,qty\nM-1,1\n", format: domain.FormatCSV},
		{name: "truncated json", data: `{"records": [`, format: domain.FormatJSON},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.Import(context.Background(), []byte(tt.data), tt.format)
			assert.ErrorIs(t, err, ErrMalformedFile)
		})
	}
}

func TestImportFailedWriteCanBeRetried(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	svc, sales, db := newServiceWithDB(t)

	_, err := db.ExecContext(ctx, "ALTER TABLE sales RENAME TO sales_off")
	require.NoError(t, err)
	_, err = svc.Import(ctx, []byte(salesCSV), domain.FormatCSV)
	require.Error(t, err)
	assert.NotErrorIs(t, err, ErrMalformedFile)

	_, err = db.ExecContext(ctx, "ALTER TABLE sales_off RENAME TO sales")
	require.NoError(t, err)

	res, err := svc.Import(ctx, []byte(salesCSV), domain.FormatCSV)
	require.NoError(t, err)
	assert.False(t, res.AlreadyImported)
	assert.Equal(t, 3, res.RecordsIngested)

	n, err := sales.Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, 3, n)
}
