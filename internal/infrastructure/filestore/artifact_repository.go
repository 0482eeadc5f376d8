package filestore

import (
	"bytes"
	"context"
	"encoding/csv"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"time"

	"github.com/jhoicas/procurement-pipeline/internal/application/dto"
	"github.com/jhoicas/procurement-pipeline/internal/domain"
	"github.com/jhoicas/procurement-pipeline/internal/domain/entity"
	"github.com/jhoicas/procurement-pipeline/internal/domain/repository"
	"github.com/jhoicas/procurement-pipeline/pkg/textnorm"
)

var _ repository.ArtifactRepository = (*ArtifactStore)(nil)

// ArtifactStore escribe los artefactos de la corrida en un directorio local:
//
//	<out>/replenishment_<date>.csv
//	<out>/supplier_orders/<date>/<proveedor>_<date>.json (+ <order_id>.pdf)
//	<out>/exceptions/exception_report_<date>.json (+ exception_summary_<date>.txt)
//	<out>/runs/pipeline_run_<date>.json (+ .txt)
//
// Toda escritura pasa por un archivo temporal y un rename en el mismo directorio.
type ArtifactStore struct {
	outputDir string
}

// NewArtifactStore construye el almacén sobre outputDir.
func NewArtifactStore(outputDir string) *ArtifactStore {
	return &ArtifactStore{outputDir: outputDir}
}

// SaveReplenishment escribe el CSV de reposición.
func (s *ArtifactStore) SaveReplenishment(_ context.Context, date time.Time, records []entity.ReplenishmentRecord) (string, error) {
	var buf bytes.Buffer
	w := csv.NewWriter(&buf)
	if err := w.Write(dto.ReplenishmentCSVHeader); err != nil {
		return "", err
	}
	for _, rec := range records {
		if err := w.Write(dto.ReplenishmentCSVRow(rec)); err != nil {
			return "", err
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return "", fmt.Errorf("csv reposición: %w", err)
	}

	path := filepath.Join(s.outputDir, dto.ReplenishmentFileName(date))
	if err := writeAtomic(path, buf.Bytes()); err != nil {
		return "", err
	}
	return path, nil
}

// SaveSupplierOrders escribe un JSON por proveedor y el PDF de cada orden presente en
// documents. El directorio de la fecha se arma aparte y reemplaza al anterior de una vez,
// sin dejar órdenes ni documentos de una corrida previa.
func (s *ArtifactStore) SaveSupplierOrders(_ context.Context, date time.Time, orders []entity.SupplierOrder, documents map[string][]byte) (string, error) {
	day := date.Format(entity.DateLayout)
	parent := filepath.Join(s.outputDir, "supplier_orders")
	if err := os.MkdirAll(parent, 0o755); err != nil {
		return "", fmt.Errorf("crear %s: %w", parent, err)
	}
	staging, err := os.MkdirTemp(parent, ".staging-"+day+"-")
	if err != nil {
		return "", fmt.Errorf("directorio temporal: %w", err)
	}
	defer os.RemoveAll(staging)
	if err := os.Chmod(staging, 0o755); err != nil {
		return "", err
	}

	used := make(map[string]int, len(orders))
	for _, o := range orders {
		name := orderFileName(o, day, used)
		data, err := marshalDocument(dto.FromSupplierOrder(o))
		if err != nil {
			return "", fmt.Errorf("orden %s: %w", o.OrderID, err)
		}
		if err := os.WriteFile(filepath.Join(staging, name), data, 0o644); err != nil {
			return "", fmt.Errorf("orden %s: %w", o.OrderID, err)
		}
		if pdf, ok := documents[o.OrderID]; ok {
			if err := os.WriteFile(filepath.Join(staging, textnorm.FileName(o.OrderID)+".pdf"), pdf, 0o644); err != nil {
				return "", fmt.Errorf("documento %s: %w", o.OrderID, err)
			}
		}
	}

	final := filepath.Join(parent, day)
	if err := swapDir(staging, final); err != nil {
		return "", err
	}
	return final, nil
}

// SaveExceptionReport escribe el reporte JSON y su resumen en texto.
func (s *ArtifactStore) SaveExceptionReport(_ context.Context, date time.Time, report entity.ExceptionReport) (string, error) {
	day := date.Format(entity.DateLayout)
	doc := dto.FromExceptionReport(date, report)
	data, err := marshalDocument(doc)
	if err != nil {
		return "", fmt.Errorf("reporte de excepciones: %w", err)
	}

	dir := filepath.Join(s.outputDir, "exceptions")
	jsonPath := filepath.Join(dir, "exception_report_"+day+".json")
	textPath := filepath.Join(dir, "exception_summary_"+day+".txt")
	if err := writeAtomicAll(
		artifactFile{path: jsonPath, data: data},
		artifactFile{path: textPath, data: []byte(dto.ExceptionSummaryText(doc))},
	); err != nil {
		return "", err
	}
	return jsonPath, nil
}

// SaveRunSummary escribe el resumen de la corrida (JSON + texto).
func (s *ArtifactStore) SaveRunSummary(_ context.Context, run *entity.PipelineRun) (string, error) {
	doc := dto.FromPipelineRun(run)
	data, err := marshalDocument(doc)
	if err != nil {
		return "", fmt.Errorf("resumen de corrida: %w", err)
	}
	jsonPath := s.runPath(run.ProcessingDate, ".json")
	if err := writeAtomicAll(
		artifactFile{path: jsonPath, data: data},
		artifactFile{path: s.runPath(run.ProcessingDate, ".txt"), data: []byte(dto.RunSummaryText(doc))},
	); err != nil {
		return "", err
	}
	return jsonPath, nil
}

// LoadRunSummary lee el resumen JSON de la fecha.
func (s *ArtifactStore) LoadRunSummary(_ context.Context, date time.Time) (*entity.PipelineRun, error) {
	data, err := os.ReadFile(s.runPath(date, ".json"))
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}
	var doc dto.PipelineRunDTO
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("resumen de corrida %s: %w", date.Format(entity.DateLayout), err)
	}
	return doc.ToPipelineRun()
}

func (s *ArtifactStore) runPath(date time.Time, ext string) string {
	return filepath.Join(s.outputDir, "runs", "pipeline_run_"+date.Format(entity.DateLayout)+ext)
}

// ── Helpers de escritura ─────────────────────────────────────────────────────

// orderFileName <proveedor>_<fecha>.json; dos proveedores con el mismo nombre seguro
// se distinguen por el OrderID.
func orderFileName(o entity.SupplierOrder, day string, used map[string]int) string {
	base := textnorm.FileName(o.SupplierName)
	if o.SupplierName == "" {
		base = textnorm.FileName(o.SupplierID)
	}
	used[base]++
	if used[base] > 1 {
		base += "_" + textnorm.FileName(o.OrderID)
	}
	return base + "_" + day + ".json"
}

func marshalDocument(v any) ([]byte, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "  ")
	if err := enc.Encode(v); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// writeAtomic escribe data en path vía archivo temporal + rename.
func writeAtomic(path string, data []byte) error {
	return writeAtomicAll(artifactFile{path: path, data: data})
}

type artifactFile struct {
	path string
	data []byte
}

// writeAtomicAll escribe primero todos los temporales y recién entonces los publica, en el
// orden recibido. Si falla una escritura no se publica ninguno.
func writeAtomicAll(files ...artifactFile) error {
	temps := make([]string, 0, len(files))
	cleanup := func() {
		for _, tmp := range temps {
			_ = os.Remove(tmp)
		}
	}
	for _, f := range files {
		tmp, err := stageTemp(f.path, f.data)
		if err != nil {
			cleanup()
			return err
		}
		temps = append(temps, tmp)
	}
	for i, f := range files {
		if err := os.Rename(temps[i], f.path); err != nil {
			temps = temps[i:]
			cleanup()
			return fmt.Errorf("publicar %s: %w", f.path, err)
		}
	}
	return nil
}

// stageTemp deja data en un temporal junto a path y devuelve su nombre.
func stageTemp(path string, data []byte) (string, error) {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("crear %s: %w", dir, err)
	}
	tmp, err := os.CreateTemp(dir, "."+filepath.Base(path)+".tmp-*")
	if err != nil {
		return "", fmt.Errorf("temporal para %s: %w", path, err)
	}
	tmpName := tmp.Name()
	fail := func(err error) (string, error) {
		tmp.Close()
		_ = os.Remove(tmpName)
		return "", err
	}

	if _, err := tmp.Write(data); err != nil {
		return fail(fmt.Errorf("escribir %s: %w", path, err))
	}
	if err := tmp.Sync(); err != nil {
		return fail(fmt.Errorf("sync %s: %w", path, err))
	}
	if err := tmp.Chmod(0o644); err != nil {
		return fail(err)
	}
	if err := tmp.Close(); err != nil {
		_ = os.Remove(tmpName)
		return "", fmt.Errorf("cerrar %s: %w", path, err)
	}
	return tmpName, nil
}

// swapDir reemplaza final por staging. El directorio previo se aparta antes del rename
// y se elimina al final.
func swapDir(staging, final string) error {
	old := final + ".old"
	_ = os.RemoveAll(old)
	if _, err := os.Stat(final); err == nil {
		if err := os.Rename(final, old); err != nil {
			return fmt.Errorf("apartar %s: %w", final, err)
		}
	}
	if err := os.Rename(staging, final); err != nil {
		_ = os.Rename(old, final)
		return fmt.Errorf("publicar %s: %w", final, err)
	}
	_ = os.RemoveAll(old)
	return nil
}
