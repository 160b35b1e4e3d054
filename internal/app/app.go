package app

import (
	"context"
	"errors"
	"fmt"

	"vet-clinic-records/internal/adapters/storage/flatfile"
	mem "vet-clinic-records/internal/adapters/storage/memory"
	"vet-clinic-records/internal/config"
	"vet-clinic-records/internal/domain/pets"
	"vet-clinic-records/internal/platform/logger"

	"github.com/spf13/afero"
)

// ErrUnexpected es lo que ve el operador cuando una operación falla de forma imprevista.
var ErrUnexpected = errors.New("unexpected error, see log for details")

type Options struct {
	Config config.Config
	Logger logger.Logger // puede ser nil (descarta logs)

	// Opcionales: por defecto disco real y store en memoria.
	Fs   afero.Fs
	Repo pets.Repository
}

// App es la fachada que usa el menú: registro, consultas y export/import.
// El store se crea una sola vez y se inyecta; no hay estado global.
type App struct {
	repo  pets.Repository
	pets  *pets.Service
	codec *flatfile.Codec
	log   logger.Logger
}

func New(opts Options) *App {
	log := opts.Logger
	if log == nil {
		log = logger.Nop()
	}

	repo := opts.Repo
	if repo == nil {
		repo = mem.NewPetRepo()
	}

	codec := flatfile.New(flatfile.Options{
		Fs:                opts.Fs,
		PetsPath:          opts.Config.PetsFile,
		ConsultationsPath: opts.Config.ConsultationsFile,
		Logger:            log,
	})

	return &App{
		repo:  repo,
		pets:  pets.NewService(repo, log),
		codec: codec,
		log:   log.With(map[string]any{"component": "app"}),
	}
}

func (a *App) RegisterPet(ctx context.Context, in pets.RegisterPetInput) (p *pets.Pet, err error) {
	defer a.recoverInto("register pet", &err)
	return a.pets.RegisterPet(ctx, in)
}

func (a *App) RegisterConsultation(ctx context.Context, petIndex int, in pets.RegisterConsultationInput) (c pets.Consultation, err error) {
	defer a.recoverInto("register consultation", &err)
	return a.pets.RegisterConsultation(ctx, petIndex, in)
}

func (a *App) ListPets(ctx context.Context) (out []string, err error) {
	defer a.recoverInto("list pets", &err)
	return a.pets.ListPets(ctx)
}

func (a *App) GetHistory(ctx context.Context, petIndex int) (out []string, err error) {
	defer a.recoverInto("consultation history", &err)
	return a.pets.GetHistory(ctx, petIndex)
}

func (a *App) HasPets(ctx context.Context) bool {
	return a.pets.PetCount(ctx) > 0
}

// ClearStore vacía el store. La confirmación del operador es responsabilidad del menú.
func (a *App) ClearStore(ctx context.Context) (err error) {
	defer a.recoverInto("clear store", &err)
	return a.pets.Clear(ctx)
}

// ExportAll escribe tabla y consultas. Nunca falla: cada archivo tiene su Report.
func (a *App) ExportAll(ctx context.Context) []flatfile.Report {
	return []flatfile.Report{
		a.codec.ExportPets(ctx, a.repo),
		a.codec.ExportConsultations(ctx, a.repo),
	}
}

// ImportAll carga primero las mascotas y luego reengancha las consultas por nombre.
// No limpia el store; ver ClearStore.
func (a *App) ImportAll(ctx context.Context) []flatfile.Report {
	return []flatfile.Report{
		a.codec.ImportPets(ctx, a.repo),
		a.codec.ImportConsultations(ctx, a.repo),
	}
}

// Load es el import de arranque.
func (a *App) Load(ctx context.Context) []flatfile.Report {
	a.log.Info("application started", map[string]any{
		"pets_file":          a.codec.PetsPath(),
		"consultations_file": a.codec.ConsultationsPath(),
	})
	return a.ImportAll(ctx)
}

// Shutdown persiste el store al cerrar la sesión.
func (a *App) Shutdown(ctx context.Context) []flatfile.Report {
	reports := a.ExportAll(ctx)
	a.log.Info("application closed", map[string]any{"pets": a.pets.PetCount(ctx)})
	return reports
}

// recoverInto cumple el contrato de "nunca tirar la sesión": un panic en una
// operación se loguea y se convierte en ErrUnexpected.
func (a *App) recoverInto(op string, err *error) {
	v := recover()
	if v == nil {
		return
	}
	a.log.Error("unexpected failure", map[string]any{
		"op":    op,
		"panic": fmt.Sprint(v),
	})
	*err = fmt.Errorf("%s: %w", op, ErrUnexpected)
}
