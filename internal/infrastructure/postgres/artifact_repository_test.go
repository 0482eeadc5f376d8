package postgres_test

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/procurement-pipeline/internal/domain/entity"
	"github.com/jhoicas/procurement-pipeline/internal/infrastructure/postgres"
)

// fakeQuerier registra las sentencias ejecutadas; no soporta Query/QueryRow.
type fakeQuerier struct {
	execs    []string
	args     [][]any
	copied   int
	failExec string // falla la primera sentencia que contenga este texto
}

func (f *fakeQuerier) Exec(_ context.Context, sql string, args ...any) (pgconn.CommandTag, error) {
	if f.failExec != "" && strings.Contains(sql, f.failExec) {
		return pgconn.CommandTag{}, errors.New("exec failed")
	}
	f.execs = append(f.execs, strings.TrimSpace(sql))
	f.args = append(f.args, args)
	return pgconn.NewCommandTag("INSERT 0 1"), nil
}

func (f *fakeQuerier) Query(context.Context, string, ...any) (pgx.Rows, error) {
	return nil, errors.New("not implemented")
}

func (f *fakeQuerier) QueryRow(context.Context, string, ...any) pgx.Row { return nil }

func (f *fakeQuerier) CopyFrom(_ context.Context, _ pgx.Identifier, _ []string, src pgx.CopyFromSource) (int64, error) {
	for src.Next() {
		if _, err := src.Values(); err != nil {
			return 0, err
		}
		f.copied++
	}
	return int64(f.copied), src.Err()
}

// inTx simula la transacción: si fn falla, descarta lo registrado.
func inTx(q *fakeQuerier) postgres.TxFunc {
	return func(_ context.Context, fn func(postgres.Querier) error) error {
		before := len(q.execs)
		if err := fn(q); err != nil {
			q.execs = q.execs[:before]
			return err
		}
		return nil
	}
}

var date = time.Date(2024, 3, 15, 0, 0, 0, 0, time.UTC)

func TestSaveReplenishment_BorraYCopia(t *testing.T) {
	q := &fakeQuerier{}
	repo := postgres.NewArtifactRepository(q, inTx(q))

	loc, err := repo.SaveReplenishment(context.Background(), date, []entity.ReplenishmentRecord{
		{SKU: "SKU-1", CaseSize: 10, UnitPrice: decimal.NewFromInt(1)},
		{SKU: "SKU-2", CaseSize: 6, UnitPrice: decimal.NewFromInt(2)},
	})

	require.NoError(t, err)
	assert.Equal(t, "postgres://replenishment_records/2024-03-15", loc)
	require.Len(t, q.execs, 1)
	assert.Contains(t, q.execs[0], "DELETE FROM replenishment_records")
	assert.Equal(t, 2, q.copied)
}

func TestSaveSupplierOrders_DocumentoJSON(t *testing.T) {
	q := &fakeQuerier{}
	repo := postgres.NewArtifactRepository(q, inTx(q))
	order := entity.SupplierOrder{
		OrderID: "ORD-20240315-S1-001", SupplierID: "S1", SupplierName: "Acme",
		OrderDate: date, RequestedDeliveryDate: date.AddDate(0, 0, 2),
		Status: entity.OrderStatusPending, Priority: entity.PriorityNormal,
		Summary: entity.OrderSummary{TotalEstimatedValue: decimal.Zero},
	}

	_, err := repo.SaveSupplierOrders(context.Background(), date, []entity.SupplierOrder{order}, nil)

	require.NoError(t, err)
	require.Len(t, q.execs, 2)
	doc := q.args[1][7].(string)
	var parsed map[string]any
	require.NoError(t, json.Unmarshal([]byte(doc), &parsed))
	assert.Equal(t, "ORD-20240315-S1-001", parsed["order_id"])
	assert.Nil(t, q.args[1][8], "sin renderer la columna pdf queda NULL")
}

func TestSaveSupplierOrders_FalloRevierte(t *testing.T) {
	q := &fakeQuerier{failExec: "INSERT INTO supplier_orders"}
	repo := postgres.NewArtifactRepository(q, inTx(q))

	_, err := repo.SaveSupplierOrders(context.Background(), date, []entity.SupplierOrder{{OrderID: "X", OrderDate: date}},
		map[string][]byte{"X": []byte("%PDF")})

	require.Error(t, err)
	assert.Empty(t, q.execs, "la transacción no deja sentencias aplicadas")
}

func TestSaveSupplierOrders_PDFEnLaMismaTransaccion(t *testing.T) {
	q := &fakeQuerier{}
	repo := postgres.NewArtifactRepository(q, inTx(q))
	orders := []entity.SupplierOrder{
		{OrderID: "ORD-1", OrderDate: date, Summary: entity.OrderSummary{TotalEstimatedValue: decimal.Zero}},
		{OrderID: "ORD-2", OrderDate: date, Summary: entity.OrderSummary{TotalEstimatedValue: decimal.Zero}},
	}

	_, err := repo.SaveSupplierOrders(context.Background(), date, orders, map[string][]byte{"ORD-1": []byte("%PDF-1.4")})

	require.NoError(t, err)
	require.Len(t, q.execs, 3)
	assert.Equal(t, []byte("%PDF-1.4"), q.args[1][8])
	assert.Nil(t, q.args[2][8])
	for _, sql := range q.execs {
		assert.NotContains(t, sql, "UPDATE", "el PDF no se adjunta en una sentencia aparte")
	}
}
