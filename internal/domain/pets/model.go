package pets

import "fmt"

// DateLayout es el formato de fecha de una consulta (YYYY-MM-DD).
const DateLayout = "2006-01-02"

// Owner representa al dueño de una mascota. Pertenece a exactamente una Pet.
type Owner struct {
	Name    string
	Phone   string
	Address string
}

func NewOwner(name, phone, address string) Owner {
	return Owner{
		Name:    name,
		Phone:   phone,
		Address: address,
	}
}

func (o Owner) String() string {
	return fmt.Sprintf("Owner: %s, Phone: %s, Address: %s", o.Name, o.Phone, o.Address)
}

// Pet representa una mascota registrada en la clínica.
// Name es la clave de búsqueda y de join entre archivos.
type Pet struct {
	Name    string
	Species string
	Breed   string
	Age     int

	Owner Owner

	// Orden de inserción (no se ordena por fecha).
	Consultations []Consultation
}

// NewPet no valida la edad; eso le corresponde al registro.
func NewPet(name, species, breed string, age int, owner Owner) *Pet {
	return &Pet{
		Name:    name,
		Species: species,
		Breed:   breed,
		Age:     age,
		Owner:   owner,
	}
}

// AddConsultation agrega la consulta al final del historial y la asocia a esta mascota.
func (p *Pet) AddConsultation(c Consultation) Consultation {
	c.PetName = p.Name
	p.Consultations = append(p.Consultations, c)
	return c
}

func (p *Pet) String() string {
	return fmt.Sprintf("Name: %s, Species: %s, Breed: %s, Age: %d, %s",
		p.Name, p.Species, p.Breed, p.Age, p.Owner)
}

// Consultation es una consulta veterinaria.
// PetName es una referencia no-owning a la mascota (solo para contexto).
type Consultation struct {
	Date      string
	Reason    string
	Diagnosis string

	PetName string
}

func NewConsultation(date, reason, diagnosis, petName string) Consultation {
	return Consultation{
		Date:      date,
		Reason:    reason,
		Diagnosis: diagnosis,
		PetName:   petName,
	}
}

func (c Consultation) String() string {
	return fmt.Sprintf("Date: %s, Reason: %s, Diagnosis: %s", c.Date, c.Reason, c.Diagnosis)
}
