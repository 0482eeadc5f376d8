// Package bootstrap arma el orquestador del pipeline a partir de la configuración.
// Lo comparten la API HTTP y la CLI.
package bootstrap

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"

	appprocurement "github.com/jhoicas/procurement-pipeline/internal/application/procurement"
	"github.com/jhoicas/procurement-pipeline/internal/domain/repository"
	"github.com/jhoicas/procurement-pipeline/internal/infrastructure/filestore"
	infrapdf "github.com/jhoicas/procurement-pipeline/internal/infrastructure/pdf"
	"github.com/jhoicas/procurement-pipeline/internal/infrastructure/postgres"
	"github.com/jhoicas/procurement-pipeline/internal/infrastructure/redislock"
	"github.com/jhoicas/procurement-pipeline/pkg/config"
	"github.com/jhoicas/procurement-pipeline/pkg/logger"
)

// Pipeline orquestador listo para usar más el cierre de sus conexiones.
type Pipeline struct {
	UseCase *appprocurement.PipelineUseCase
	closers []func()
}

// Close libera las conexiones abiertas por Build (en orden inverso).
func (p *Pipeline) Close() {
	for i := len(p.closers) - 1; i >= 0; i-- {
		p.closers[i]()
	}
}

// Build conecta los adaptadores según cfg.Storage, cfg.Redis y cfg.Pipeline.
func Build(ctx context.Context, cfg *config.Config, log *logger.Logger) (*Pipeline, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	p := &Pipeline{}

	// PostgreSQL solo si algún backend lo necesita
	var pool *pgxpool.Pool
	if cfg.Storage.MasterBackend == config.BackendPostgres || cfg.Storage.ArtifactBackend == config.BackendPostgres {
		var err error
		pool, err = postgres.NewPool(ctx, cfg.DB)
		if err != nil {
			return nil, fmt.Errorf("conexión a PostgreSQL: %w", err)
		}
		p.closers = append(p.closers, pool.Close)
	}

	raw := filestore.NewRawInputRepository(cfg.Storage.InputDir)

	var master repository.MasterDataRepository
	switch cfg.Storage.MasterBackend {
	case config.BackendPostgres:
		master = postgres.NewMasterDataRepository(pool)
	default:
		master = filestore.NewMasterCSVRepository(cfg.Storage.MasterCSV)
	}

	var artifacts repository.ArtifactRepository
	switch cfg.Storage.ArtifactBackend {
	case config.BackendPostgres:
		if err := postgres.EnsureSchema(ctx, pool); err != nil {
			p.Close()
			return nil, fmt.Errorf("esquema de artefactos: %w", err)
		}
		artifacts = postgres.NewArtifactRepository(pool, postgres.NewTxRunner(pool).Run)
	default:
		artifacts = filestore.NewArtifactStore(cfg.Storage.OutputDir)
	}

	// Lock distribuido si hay Redis; si no, el orquestador usa uno en memoria
	var locker appprocurement.RunLocker
	if cfg.Redis.Enabled() {
		rdb, err := redislock.NewClient(ctx, cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB)
		if err != nil {
			p.Close()
			return nil, err
		}
		p.closers = append(p.closers, func() { _ = rdb.Close() })
		locker = redislock.NewLocker(rdb, cfg.Redis.KeyPrefix, cfg.Redis.LockTTL)
	}

	var renderer appprocurement.OrderRenderer
	if cfg.Pipeline.RenderPDF {
		renderer = infrapdf.NewMarotoOrderRenderer(cfg.Pipeline.Company)
	}

	log.Info().
		Str("master_backend", cfg.Storage.MasterBackend).
		Str("artifact_backend", cfg.Storage.ArtifactBackend).
		Bool("redis_lock", cfg.Redis.Enabled()).
		Bool("pdf", cfg.Pipeline.RenderPDF).
		Msg("pipeline configurado")

	p.UseCase = appprocurement.NewPipelineUseCase(raw, master, artifacts, locker, renderer,
		log.Component("pipeline"), appprocurement.Options{
			Config:           cfg.Pipeline.Procurement(),
			ParallelBranches: cfg.Pipeline.ParallelBranches,
		})
	return p, nil
}
