package pets

import (
	"context"
	"errors"
	"fmt"
	"time"

	"vet-clinic-records/internal/platform/logger"
)

var (
	ErrInvalidInput  = errors.New("invalid input")
	ErrNegativeAge   = fmt.Errorf("%w: negative age", ErrInvalidInput)
	ErrDuplicateName = fmt.Errorf("%w: pet name already registered", ErrInvalidInput)
	ErrInvalidDate   = fmt.Errorf("%w: date must be YYYY-MM-DD", ErrInvalidInput)
)

type Service struct {
	repo Repository
	log  logger.Logger
}

func NewService(repo Repository, log logger.Logger) *Service {
	if log == nil {
		log = logger.Nop()
	}
	return &Service{
		repo: repo,
		log:  log.With(map[string]any{"component": "pets"}),
	}
}

type RegisterPetInput struct {
	Name    string
	Species string
	Breed   string
	Age     int

	OwnerName    string
	OwnerPhone   string
	OwnerAddress string
}

// RegisterPet crea la mascota con su dueño y la agrega al final del store.
// Rechaza edades negativas y nombres ya registrados.
func (s *Service) RegisterPet(ctx context.Context, in RegisterPetInput) (*Pet, error) {
	if in.Age < 0 {
		s.log.Error("pet registration failed", map[string]any{
			"pet":   in.Name,
			"age":   in.Age,
			"error": ErrNegativeAge.Error(),
		})
		return nil, ErrNegativeAge
	}

	if _, err := s.repo.FindByName(ctx, in.Name); err == nil {
		s.log.Error("pet registration failed", map[string]any{
			"pet":   in.Name,
			"error": ErrDuplicateName.Error(),
		})
		return nil, ErrDuplicateName
	}

	owner := NewOwner(in.OwnerName, in.OwnerPhone, in.OwnerAddress)
	p := NewPet(in.Name, in.Species, in.Breed, in.Age, owner)

	if err := s.repo.Add(ctx, p); err != nil {
		s.log.Error("pet registration failed", map[string]any{"pet": in.Name, "error": err.Error()})
		return nil, err
	}

	s.log.Info("pet registered", map[string]any{"pet": p.Name, "owner": owner.Name})
	return p, nil
}

type RegisterConsultationInput struct {
	Date      string
	Reason    string
	Diagnosis string
}

// RegisterConsultation agrega una consulta a la mascota número petIndex (1-based).
func (s *Service) RegisterConsultation(ctx context.Context, petIndex int, in RegisterConsultationInput) (Consultation, error) {
	p, err := s.repo.FindByIndex(ctx, petIndex)
	if err != nil {
		s.log.Warn("consultation registration failed", map[string]any{
			"index": petIndex,
			"error": err.Error(),
		})
		return Consultation{}, err
	}

	if !ValidDate(in.Date) {
		s.log.Error("consultation registration failed", map[string]any{
			"pet":   p.Name,
			"date":  in.Date,
			"error": ErrInvalidDate.Error(),
		})
		return Consultation{}, ErrInvalidDate
	}

	c := p.AddConsultation(NewConsultation(in.Date, in.Reason, in.Diagnosis, p.Name))

	s.log.Info("consultation registered", map[string]any{"pet": p.Name, "date": c.Date})
	return c, nil
}

// ListPets devuelve el render de cada mascota en orden del store.
func (s *Service) ListPets(ctx context.Context) ([]string, error) {
	items, err := s.repo.List(ctx)
	if err != nil {
		return nil, err
	}

	if len(items) == 0 {
		s.log.Info("pet listing requested, no pets registered", nil)
		return []string{}, nil
	}

	out := make([]string, 0, len(items))
	for _, p := range items {
		out = append(out, p.String())
	}

	s.log.Info("pet listing requested", map[string]any{"count": len(out)})
	return out, nil
}

// GetHistory devuelve el render de las consultas de la mascota número petIndex (1-based).
func (s *Service) GetHistory(ctx context.Context, petIndex int) ([]string, error) {
	p, err := s.repo.FindByIndex(ctx, petIndex)
	if err != nil {
		s.log.Warn("consultation history failed", map[string]any{
			"index": petIndex,
			"error": err.Error(),
		})
		return nil, err
	}

	if len(p.Consultations) == 0 {
		s.log.Info("no consultations for pet", map[string]any{"pet": p.Name})
		return []string{}, nil
	}

	out := make([]string, 0, len(p.Consultations))
	for _, c := range p.Consultations {
		out = append(out, c.String())
	}

	s.log.Info("consultation history requested", map[string]any{"pet": p.Name, "count": len(out)})
	return out, nil
}

// Clear vacía el store (antes de un import confirmado).
func (s *Service) Clear(ctx context.Context) error {
	n := s.repo.Len(ctx)
	if err := s.repo.Clear(ctx); err != nil {
		s.log.Error("record store clear failed", map[string]any{"error": err.Error()})
		return err
	}
	s.log.Info("record store cleared", map[string]any{"released": n})
	return nil
}

func (s *Service) PetCount(ctx context.Context) int {
	return s.repo.Len(ctx)
}

func ValidDate(s string) bool {
	_, err := time.Parse(DateLayout, s)
	return err == nil
}
