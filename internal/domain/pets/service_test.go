package pets

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"testing"

	"vet-clinic-records/internal/platform/logger"
)

// -------------------------
// Test repo (in-memory)
// -------------------------

type testRepo struct {
	items []*Pet
}

func newTestRepo() *testRepo {
	return &testRepo{}
}

func (r *testRepo) Add(ctx context.Context, p *Pet) error {
	if p == nil {
		return errors.New("repo: pet required")
	}
	r.items = append(r.items, p)
	return nil
}

func (r *testRepo) FindByName(ctx context.Context, name string) (*Pet, error) {
	for _, p := range r.items {
		if p.Name == name {
			return p, nil
		}
	}
	return nil, ErrNotFound
}

func (r *testRepo) FindByIndex(ctx context.Context, i int) (*Pet, error) {
	if i < 1 || i > len(r.items) {
		return nil, ErrIndexOutOfRange
	}
	return r.items[i-1], nil
}

func (r *testRepo) List(ctx context.Context) ([]*Pet, error) {
	return append([]*Pet(nil), r.items...), nil
}

func (r *testRepo) Len(ctx context.Context) int      { return len(r.items) }
func (r *testRepo) IsEmpty(ctx context.Context) bool { return len(r.items) == 0 }
func (r *testRepo) Clear(ctx context.Context) error   { r.items = nil; return nil }

func newTestService(t *testing.T) (*Service, *testRepo, *bytes.Buffer) {
	t.Helper()
	var buf bytes.Buffer
	repo := newTestRepo()
	log := logger.New(logger.Options{Level: logger.Debug, Output: &buf, Session: "test"})
	return NewService(repo, log), repo, &buf
}

var rexInput = RegisterPetInput{
	Name:         "Rex",
	Species:      "Perro",
	Breed:        "Pastor Alemán",
	Age:          3,
	OwnerName:    "María González",
	OwnerPhone:   "555-9876",
	OwnerAddress: "Av. Siempreviva 742",
}

// -------------------------
// Tests
// -------------------------

func TestService_RegisterPet_Valid(t *testing.T) {
	svc, repo, logs := newTestService(t)

	p, err := svc.RegisterPet(context.Background(), rexInput)
	if err != nil {
		t.Fatalf("RegisterPet returned error: %v", err)
	}
	if len(repo.items) != 1 {
		t.Fatalf("expected 1 pet in store, got %d", len(repo.items))
	}
	if p.Name != "Rex" || p.Owner.Name != "María González" {
		t.Fatalf("unexpected pet: %+v", p)
	}
	if !strings.Contains(logs.String(), `msg="pet registered"`) || !strings.Contains(logs.String(), "pet=Rex") {
		t.Fatalf("expected registration log line, got %q", logs.String())
	}
}

func TestService_RegisterPet_NegativeAge(t *testing.T) {
	svc, repo, logs := newTestService(t)

	in := rexInput
	in.Age = -5
	_, err := svc.RegisterPet(context.Background(), in)
	if err == nil {
		t.Fatalf("expected error")
	}
	if !errors.Is(err, ErrNegativeAge) || !errors.Is(err, ErrInvalidInput) {
		t.Fatalf("expected ErrNegativeAge, got %v", err)
	}
	if !strings.Contains(err.Error(), "negative age") {
		t.Fatalf("expected error text to mention negative age, got %q", err.Error())
	}
	if len(repo.items) != 0 {
		t.Fatalf("expected empty store, got %d pets", len(repo.items))
	}
	if !strings.Contains(logs.String(), "level=error") || !strings.Contains(logs.String(), "negative age") {
		t.Fatalf("expected error log mentioning negative age, got %q", logs.String())
	}
}

func TestService_RegisterPet_ZeroAgeAllowed(t *testing.T) {
	svc, _, _ := newTestService(t)

	in := rexInput
	in.Age = 0
	if _, err := svc.RegisterPet(context.Background(), in); err != nil {
		t.Fatalf("age 0 should be accepted, got %v", err)
	}
}

func TestService_RegisterPet_DuplicateName(t *testing.T) {
	svc, repo, _ := newTestService(t)

	if _, err := svc.RegisterPet(context.Background(), rexInput); err != nil {
		t.Fatalf("RegisterPet #1 error: %v", err)
	}

	in := rexInput
	in.Species = "Gato"
	_, err := svc.RegisterPet(context.Background(), in)
	if !errors.Is(err, ErrDuplicateName) {
		t.Fatalf("expected ErrDuplicateName, got %v", err)
	}
	if len(repo.items) != 1 || repo.items[0].Species != "Perro" {
		t.Fatalf("expected original pet untouched, got %+v", repo.items)
	}
}

func TestService_RegisterConsultation_Valid(t *testing.T) {
	svc, repo, logs := newTestService(t)
	_ = repo.Add(context.Background(), NewPet("Luna", "Gato", "Siamés", 2, NewOwner("Ana", "555-1111", "Calle 1")))

	c, err := svc.RegisterConsultation(context.Background(), 1, RegisterConsultationInput{
		Date:      "2023-01-01",
		Reason:    "Control",
		Diagnosis: "Saludable",
	})
	if err != nil {
		t.Fatalf("RegisterConsultation error: %v", err)
	}
	if c.PetName != "Luna" {
		t.Fatalf("expected consultation bound to Luna, got %q", c.PetName)
	}
	if len(repo.items[0].Consultations) != 1 || repo.items[0].Consultations[0].Reason != "Control" {
		t.Fatalf("expected 1 consultation with reason Control, got %+v", repo.items[0].Consultations)
	}
	if !strings.Contains(logs.String(), "pet=Luna") || !strings.Contains(logs.String(), "date=2023-01-01") {
		t.Fatalf("expected consultation log line, got %q", logs.String())
	}
}

func TestService_RegisterConsultation_Errors(t *testing.T) {
	svc, repo, _ := newTestService(t)
	_ = repo.Add(context.Background(), NewPet("Luna", "Gato", "Siamés", 2, NewOwner("Ana", "555-1111", "Calle 1")))

	tests := []struct {
		name  string
		index int
		date  string
		want  error
	}{
		{name: "index zero", index: 0, date: "2023-01-01", want: ErrIndexOutOfRange},
		{name: "index past end", index: 2, date: "2023-01-01", want: ErrIndexOutOfRange},
		{name: "bad date", index: 1, date: "01/01/2023", want: ErrInvalidDate},
		{name: "impossible date", index: 1, date: "2023-02-30", want: ErrInvalidDate},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.RegisterConsultation(context.Background(), tt.index, RegisterConsultationInput{Date: tt.date})
			if !errors.Is(err, tt.want) {
				t.Fatalf("expected %v, got %v", tt.want, err)
			}
		})
	}

	if len(repo.items[0].Consultations) != 0 {
		t.Fatalf("expected no consultations after failures")
	}
}

func TestService_ListPets(t *testing.T) {
	svc, repo, logs := newTestService(t)

	got, err := svc.ListPets(context.Background())
	if err != nil || len(got) != 0 {
		t.Fatalf("expected empty listing, got %v (err=%v)", got, err)
	}
	if !strings.Contains(logs.String(), "no pets registered") {
		t.Fatalf("expected empty-listing log, got %q", logs.String())
	}

	_ = repo.Add(context.Background(), NewPet("Thor", "Perro", "Husky", 4, NewOwner("Carlos", "555-2222", "Calle 2")))

	got, err = svc.ListPets(context.Background())
	if err != nil {
		t.Fatalf("ListPets error: %v", err)
	}
	want := "Name: Thor, Species: Perro, Breed: Husky, Age: 4, Owner: Carlos, Phone: 555-2222, Address: Calle 2"
	if len(got) != 1 || got[0] != want {
		t.Fatalf("expected %q, got %v", want, got)
	}
}

func TestService_GetHistory(t *testing.T) {
	svc, repo, _ := newTestService(t)
	p := NewPet("Luna", "Gato", "Siamés", 2, NewOwner("Laura", "555-3333", "Calle 3"))
	_ = repo.Add(context.Background(), p)

	got, err := svc.GetHistory(context.Background(), 1)
	if err != nil || len(got) != 0 {
		t.Fatalf("expected empty history, got %v (err=%v)", got, err)
	}

	p.AddConsultation(NewConsultation("2023-01-01", "Vacunación", "Aplicada vacuna antirrábica", ""))
	p.AddConsultation(NewConsultation("2022-06-01", "Control", "Saludable", ""))

	got, err = svc.GetHistory(context.Background(), 1)
	if err != nil {
		t.Fatalf("GetHistory error: %v", err)
	}
	// orden de inserción, no por fecha
	if len(got) != 2 ||
		got[0] != "Date: 2023-01-01, Reason: Vacunación, Diagnosis: Aplicada vacuna antirrábica" ||
		got[1] != "Date: 2022-06-01, Reason: Control, Diagnosis: Saludable" {
		t.Fatalf("unexpected history: %v", got)
	}

	if _, err := svc.GetHistory(context.Background(), 5); !errors.Is(err, ErrIndexOutOfRange) {
		t.Fatalf("expected ErrIndexOutOfRange, got %v", err)
	}
}

func TestService_Clear(t *testing.T) {
	svc, repo, logs := newTestService(t)
	_, _ = svc.RegisterPet(context.Background(), rexInput)

	if err := svc.Clear(context.Background()); err != nil {
		t.Fatalf("Clear error: %v", err)
	}
	if svc.PetCount(context.Background()) != 0 || len(repo.items) != 0 {
		t.Fatalf("expected empty store after clear")
	}
	if !strings.Contains(logs.String(), "released=1") {
		t.Fatalf("expected clear log with released count, got %q", logs.String())
	}
}
