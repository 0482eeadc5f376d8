package bootstrap_test

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	appprocurement "github.com/jhoicas/procurement-pipeline/internal/application/procurement"
	"github.com/jhoicas/procurement-pipeline/internal/bootstrap"
	"github.com/jhoicas/procurement-pipeline/internal/domain/entity"
	"github.com/jhoicas/procurement-pipeline/pkg/config"
	"github.com/jhoicas/procurement-pipeline/pkg/logger"
)

func write(t *testing.T, path, content string) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
}

// Corrida completa con backends de archivo: entradas crudas → artefactos en disco.
func TestBuild_CorridaConArchivos(t *testing.T) {
	chdir(t, t.TempDir())
	base := t.TempDir()
	in, out := filepath.Join(base, "raw"), filepath.Join(base, "out")
	write(t, filepath.Join(in, "orders", "pos_1_2024-03-15.json"), `[
  {"order_id":"O-1","pos_id":"POS-1","timestamp":"2024-03-15T09:00:00",
   "items":[{"sku":"SKU-1","quantity":120,"price":2.5},{"sku":"SKU-2","quantity":7,"price":1}]}
]`)
	write(t, filepath.Join(in, "stock", "wh_1_2024-03-15.csv"),
		"warehouse_id,date,sku,quantity_on_hand\nWH-1,2024-03-15,SKU-1,20\n")
	master := filepath.Join(base, "products.csv")
	write(t, master, "sku,product_name,category,case_size,minimum_order_qty,safety_stock_level,supplier_id,supplier_name\n"+
		"SKU-1,Leche,Lácteos,12,,10,SUP01,Acme Foods\n"+
		"SKU-2,Pan,Panadería,5,,,,\n")

	cfg, err := config.Load()
	require.NoError(t, err)
	cfg.Storage.InputDir, cfg.Storage.OutputDir, cfg.Storage.MasterCSV = in, out, master
	cfg.Pipeline.RenderPDF = false

	p, err := bootstrap.Build(context.Background(), cfg, logger.Nop())
	require.NoError(t, err)
	defer p.Close()

	run, err := p.UseCase.Run(context.Background(), appprocurement.RunRequest{Date: time.Date(2024, 3, 15, 0, 0, 0, 0, time.UTC)})

	require.NoError(t, err)
	assert.Equal(t, entity.RunSuccess, run.Status)
	for _, f := range []string{
		"replenishment_2024-03-15.csv",
		"supplier_orders/2024-03-15/Acme_Foods_2024-03-15.json",
		"exceptions/exception_report_2024-03-15.json",
		"exceptions/exception_summary_2024-03-15.txt",
		"runs/pipeline_run_2024-03-15.json",
		"runs/pipeline_run_2024-03-15.txt",
	} {
		_, err := os.Stat(filepath.Join(out, f))
		assert.NoError(t, err, f)
	}
}

func TestBuild_BackendInvalido(t *testing.T) {
	chdir(t, t.TempDir())
	cfg, err := config.Load()
	require.NoError(t, err)
	cfg.Storage.MasterBackend = "mongo"

	_, err = bootstrap.Build(context.Background(), cfg, logger.Nop())

	assert.Error(t, err)
}

// chdir changes the working directory for the duration of the test and
// restores it on cleanup (equivalent of testing.T.Chdir, added in Go 1.24).
func chdir(t *testing.T, dir string) {
	t.Helper()
	prev, err := os.Getwd()
	if err != nil {
		t.Fatal(err)
	}
	if err := os.Chdir(dir); err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() {
		if err := os.Chdir(prev); err != nil {
			t.Fatal(err)
		}
	})
}
