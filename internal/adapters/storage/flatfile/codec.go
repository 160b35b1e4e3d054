// Package flatfile persiste el record store en dos archivos planos:
// una tabla CSV de mascotas/dueños y una lista JSON de consultas.
// El nombre de la mascota es la única clave de join entre ambos.
package flatfile

import (
	"fmt"
	"strings"

	"vet-clinic-records/internal/platform/logger"

	"github.com/spf13/afero"
)

const (
	DefaultPetsFile          = "mascotas_dueños.csv"
	DefaultConsultationsFile = "consultas.json"
)

type Status string

const (
	StatusOK      Status = "ok"
	StatusWarning Status = "warning" // no-op no fatal: store vacío, archivo inexistente
	StatusFailed  Status = "failed"  // error de I/O o de parseo, ya logueado
)

// Report describe el resultado de una operación de export/import.
// Las operaciones del codec nunca devuelven error: todo queda en el Report.
type Report struct {
	Op      string
	Path    string
	Status  Status
	Count   int // filas/registros escritos o cargados
	Skipped int
	Err     error
}

func (r Report) String() string {
	var b strings.Builder
	fmt.Fprintf(&b, "%s %s: %s", r.Op, r.Path, r.Status)
	if r.Count > 0 || r.Status == StatusOK {
		fmt.Fprintf(&b, " (%d records", r.Count)
		if r.Skipped > 0 {
			fmt.Fprintf(&b, ", %d skipped", r.Skipped)
		}
		b.WriteString(")")
	}
	if r.Err != nil {
		fmt.Fprintf(&b, ": %v", r.Err)
	}
	return b.String()
}

type Options struct {
	Fs                afero.Fs
	PetsPath          string
	ConsultationsPath string
	Logger            logger.Logger
}

type Codec struct {
	fs                afero.Fs
	petsPath          string
	consultationsPath string
	log               logger.Logger
}

func New(opts Options) *Codec {
	c := &Codec{
		fs:                opts.Fs,
		petsPath:          strings.TrimSpace(opts.PetsPath),
		consultationsPath: strings.TrimSpace(opts.ConsultationsPath),
		log:               opts.Logger,
	}
	if c.fs == nil {
		c.fs = afero.NewOsFs()
	}
	if c.petsPath == "" {
		c.petsPath = DefaultPetsFile
	}
	if c.consultationsPath == "" {
		c.consultationsPath = DefaultConsultationsFile
	}
	if c.log == nil {
		c.log = logger.Nop()
	}
	c.log = c.log.With(map[string]any{"component": "flatfile"})
	return c
}

func (c *Codec) PetsPath() string          { return c.petsPath }
func (c *Codec) ConsultationsPath() string { return c.consultationsPath }

func (c *Codec) warn(rep Report, msg string) Report {
	rep.Status = StatusWarning
	c.log.Warn(msg, map[string]any{"op": rep.Op, "path": rep.Path})
	return rep
}

func (c *Codec) fail(rep Report, msg string, err error, fields map[string]any) Report {
	rep.Status = StatusFailed
	rep.Err = err

	f := map[string]any{"op": rep.Op, "path": rep.Path, "error": err.Error()}
	for k, v := range fields {
		f[k] = v
	}
	c.log.Error(msg, f)
	return rep
}

// recoverInto convierte un panic en Report fallido: el codec no corta la sesión.
func (c *Codec) recoverInto(rep *Report) {
	v := recover()
	if v == nil {
		return
	}
	*rep = c.fail(*rep, rep.Op+" failed", fmt.Errorf("unexpected panic: %v", v), nil)
}
