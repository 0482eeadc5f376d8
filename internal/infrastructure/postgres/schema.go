package postgres

import (
	"context"
	"fmt"
)

// artifactSchema tablas de salida del pipeline. Las tablas de datos maestros
// (products, replenishment_rules, suppliers) pertenecen al sistema de origen.
const artifactSchema = `
CREATE TABLE IF NOT EXISTS replenishment_records (
	processing_date    DATE           NOT NULL,
	sku                TEXT           NOT NULL,
	product_name       TEXT           NOT NULL DEFAULT '',
	category           TEXT           NOT NULL DEFAULT '',
	total_demand       BIGINT         NOT NULL,
	available_stock    BIGINT         NOT NULL,
	safety_stock_level BIGINT         NOT NULL,
	net_demand         BIGINT         NOT NULL,
	case_size          BIGINT         NOT NULL,
	cases_needed       BIGINT         NOT NULL,
	order_quantity     BIGINT         NOT NULL,
	minimum_order_qty  BIGINT         NOT NULL,
	supplier_id        TEXT,
	supplier_name      TEXT,
	unit_price         NUMERIC(18,4)  NOT NULL DEFAULT 0,
	PRIMARY KEY (processing_date, sku)
);

CREATE TABLE IF NOT EXISTS supplier_orders (
	order_id        TEXT          PRIMARY KEY,
	processing_date DATE          NOT NULL,
	supplier_id     TEXT          NOT NULL,
	supplier_name   TEXT          NOT NULL,
	priority        TEXT          NOT NULL,
	total_units     BIGINT        NOT NULL,
	total_value     NUMERIC(18,2) NOT NULL,
	document        JSONB         NOT NULL,
	pdf             BYTEA
);
CREATE INDEX IF NOT EXISTS idx_supplier_orders_date ON supplier_orders (processing_date);

CREATE TABLE IF NOT EXISTS exception_reports (
	processing_date DATE  PRIMARY KEY,
	document        JSONB NOT NULL,
	summary_text    TEXT  NOT NULL
);

CREATE TABLE IF NOT EXISTS pipeline_runs (
	processing_date DATE        PRIMARY KEY,
	run_id          UUID        NOT NULL,
	status          TEXT        NOT NULL,
	started_at      TIMESTAMPTZ NOT NULL,
	finished_at     TIMESTAMPTZ NOT NULL,
	summary         JSONB       NOT NULL
);
`

// EnsureSchema crea las tablas de artefactos si no existen.
func EnsureSchema(ctx context.Context, q Querier) error {
	if _, err := q.Exec(ctx, artifactSchema); err != nil {
		return fmt.Errorf("crear esquema de artefactos: %w", err)
	}
	return nil
}
