package flatfile

import (
	"bytes"
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"vet-clinic-records/internal/domain/pets"

	"github.com/gocarina/gocsv"
	"github.com/spf13/afero"
)

const (
	OpExportPets = "export pets"
	OpImportPets = "import pets"
)

// petRow es una fila de la tabla; el orden de los campos define el header.
// Age va como string para distinguir fila incompleta de edad no numérica.
type petRow struct {
	Name         string `csv:"nombre_mascota"`
	Species      string `csv:"especie"`
	Breed        string `csv:"raza"`
	Age          string `csv:"edad"`
	OwnerName    string `csv:"nombre_dueno"`
	OwnerPhone   string `csv:"telefono"`
	OwnerAddress string `csv:"direccion"`
}

func (r petRow) fields() []string {
	return []string{r.Name, r.Species, r.Breed, r.Age, r.OwnerName, r.OwnerPhone, r.OwnerAddress}
}

// ExportPets escribe una fila por mascota en orden del store, precedida del header.
// Con el store vacío no toca el archivo.
func (c *Codec) ExportPets(ctx context.Context, repo pets.Repository) (rep Report) {
	rep = Report{Op: OpExportPets, Path: c.petsPath}
	defer c.recoverInto(&rep)

	items, err := repo.List(ctx)
	if err != nil {
		return c.fail(rep, "pets export failed", err, nil)
	}
	if len(items) == 0 {
		return c.warn(rep, "no pets to export")
	}

	rows := make([]petRow, 0, len(items))
	for _, p := range items {
		rows = append(rows, petRow{
			Name:         p.Name,
			Species:      p.Species,
			Breed:        p.Breed,
			Age:          strconv.Itoa(p.Age),
			OwnerName:    p.Owner.Name,
			OwnerPhone:   p.Owner.Phone,
			OwnerAddress: p.Owner.Address,
		})
	}

	var buf bytes.Buffer
	if err := gocsv.Marshal(rows, &buf); err != nil {
		return c.fail(rep, "pets export failed", fmt.Errorf("encode csv: %w", err), nil)
	}
	if err := afero.WriteFile(c.fs, c.petsPath, buf.Bytes(), 0o644); err != nil {
		return c.fail(rep, "pets export failed", fmt.Errorf("write %s: %w", c.petsPath, err), nil)
	}

	rep.Status = StatusOK
	rep.Count = len(rows)
	c.log.Info("pets exported", map[string]any{"path": c.petsPath, "count": rep.Count})
	return rep
}

// ImportPets agrega al store las filas del CSV, en orden de archivo.
//   - fila con algún campo vacío (o edad negativa): se omite con warning
//   - nombre ya existente en el store: se omite con warning (gana el primero)
//   - edad no numérica: aborta el resto del import; lo ya cargado queda
//
// No limpia el store antes de cargar.
func (c *Codec) ImportPets(ctx context.Context, repo pets.Repository) (rep Report) {
	rep = Report{Op: OpImportPets, Path: c.petsPath}
	defer c.recoverInto(&rep)

	exists, err := afero.Exists(c.fs, c.petsPath)
	if err != nil {
		return c.fail(rep, "pets import failed", err, nil)
	}
	if !exists {
		return c.warn(rep, "pets file not found")
	}

	data, err := afero.ReadFile(c.fs, c.petsPath)
	if err != nil {
		return c.fail(rep, "pets import failed", fmt.Errorf("read %s: %w", c.petsPath, err), nil)
	}
	if len(bytes.TrimSpace(data)) == 0 {
		return c.warn(rep, "pets file is empty")
	}

	// FieldsPerRecord = -1: una fila corta es una fila incompleta, no un archivo inválido.
	r := csv.NewReader(bytes.NewReader(data))
	r.FieldsPerRecord = -1

	var rows []petRow
	if err := gocsv.UnmarshalCSV(r, &rows); err != nil {
		return c.fail(rep, "pets import failed", fmt.Errorf("decode csv: %w", err), nil)
	}

	for i, row := range rows {
		line := i + 2 // header = línea 1

		if hasEmpty(row.fields()) {
			rep.Skipped++
			c.log.Warn("malformed row skipped", map[string]any{
				"path":   c.petsPath,
				"line":   line,
				"reason": "empty field",
				"row":    strings.Join(row.fields(), ","),
			})
			continue
		}

		if _, err := repo.FindByName(ctx, row.Name); err == nil {
			rep.Skipped++
			c.log.Warn("duplicate pet skipped", map[string]any{
				"path": c.petsPath,
				"line": line,
				"pet":  row.Name,
			})
			continue
		} else if !errors.Is(err, pets.ErrNotFound) {
			return c.fail(rep, "pets import failed", err, map[string]any{"line": line})
		}

		age, err := strconv.Atoi(strings.TrimSpace(row.Age))
		if err != nil {
			return c.fail(rep, "pets import failed",
				fmt.Errorf("line %d: invalid age %q: %w", line, row.Age, err),
				map[string]any{"line": line, "loaded": rep.Count})
		}
		if age < 0 {
			rep.Skipped++
			c.log.Warn("malformed row skipped", map[string]any{
				"path":   c.petsPath,
				"line":   line,
				"reason": "negative age",
				"pet":    row.Name,
			})
			continue
		}

		owner := pets.NewOwner(row.OwnerName, row.OwnerPhone, row.OwnerAddress)
		if err := repo.Add(ctx, pets.NewPet(row.Name, row.Species, row.Breed, age, owner)); err != nil {
			return c.fail(rep, "pets import failed", err, map[string]any{"line": line})
		}
		rep.Count++
	}

	rep.Status = StatusOK
	c.log.Info("pets imported", map[string]any{
		"path":    c.petsPath,
		"count":   rep.Count,
		"skipped": rep.Skipped,
	})
	return rep
}

func hasEmpty(values []string) bool {
	for _, v := range values {
		if strings.TrimSpace(v) == "" {
			return true
		}
	}
	return false
}
