package flatfile

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"

	"vet-clinic-records/internal/domain/pets"

	"github.com/spf13/afero"
)

const (
	OpExportConsultations = "export consultations"
	OpImportConsultations = "import consultations"
)

type consultationRecord struct {
	PetName   string `json:"nombre_mascota"`
	Date      string `json:"fecha"`
	Reason    string `json:"motivo"`
	Diagnosis string `json:"diagnostico"`
}

// ExportConsultations aplana (mascota, consulta) en orden del store y luego
// en orden de inserción. Si ninguna mascota tiene consultas no toca el archivo.
func (c *Codec) ExportConsultations(ctx context.Context, repo pets.Repository) (rep Report) {
	rep = Report{Op: OpExportConsultations, Path: c.consultationsPath}
	defer c.recoverInto(&rep)

	items, err := repo.List(ctx)
	if err != nil {
		return c.fail(rep, "consultations export failed", err, nil)
	}

	records := make([]consultationRecord, 0)
	for _, p := range items {
		for _, cs := range p.Consultations {
			records = append(records, consultationRecord{
				PetName:   p.Name,
				Date:      cs.Date,
				Reason:    cs.Reason,
				Diagnosis: cs.Diagnosis,
			})
		}
	}
	if len(records) == 0 {
		return c.warn(rep, "no consultations to export")
	}

	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "    ")
	if err := enc.Encode(records); err != nil {
		return c.fail(rep, "consultations export failed", fmt.Errorf("encode json: %w", err), nil)
	}
	if err := afero.WriteFile(c.fs, c.consultationsPath, buf.Bytes(), 0o644); err != nil {
		return c.fail(rep, "consultations export failed", fmt.Errorf("write %s: %w", c.consultationsPath, err), nil)
	}

	rep.Status = StatusOK
	rep.Count = len(records)
	c.log.Info("consultations exported", map[string]any{"path": c.consultationsPath, "count": rep.Count})
	return rep
}

// ImportConsultations reengancha cada registro a la mascota con el mismo nombre.
// Un registro sin mascota se descarta sin warning (a diferencia de los
// duplicados del CSV); Report.Skipped igual lo cuenta.
func (c *Codec) ImportConsultations(ctx context.Context, repo pets.Repository) (rep Report) {
	rep = Report{Op: OpImportConsultations, Path: c.consultationsPath}
	defer c.recoverInto(&rep)

	exists, err := afero.Exists(c.fs, c.consultationsPath)
	if err != nil {
		return c.fail(rep, "consultations import failed", err, nil)
	}
	if !exists {
		return c.warn(rep, "consultations file not found")
	}

	data, err := afero.ReadFile(c.fs, c.consultationsPath)
	if err != nil {
		return c.fail(rep, "consultations import failed", fmt.Errorf("read %s: %w", c.consultationsPath, err), nil)
	}

	var records []consultationRecord
	if err := json.Unmarshal(data, &records); err != nil {
		return c.fail(rep, "consultations import failed", fmt.Errorf("decode json: %w", err), nil)
	}

	for _, rec := range records {
		p, err := repo.FindByName(ctx, rec.PetName)
		if err != nil {
			rep.Skipped++
			continue
		}
		// la fecha no se revalida al recargar
		p.AddConsultation(pets.NewConsultation(rec.Date, rec.Reason, rec.Diagnosis, p.Name))
		rep.Count++
	}

	rep.Status = StatusOK
	c.log.Info("consultations imported", map[string]any{"path": c.consultationsPath, "count": rep.Count})
	return rep
}
