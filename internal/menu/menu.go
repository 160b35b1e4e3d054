// Package menu es el loop interactivo de texto. Solo pide datos, confirma y
// enruta a la fachada (app.App); no tiene estado propio ni persistencia.
package menu

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"strconv"
	"strings"

	"vet-clinic-records/internal/adapters/storage/flatfile"
	"vet-clinic-records/internal/app"
	"vet-clinic-records/internal/domain/pets"
	"vet-clinic-records/internal/platform/logger"

	"github.com/charmbracelet/lipgloss"
)

const backKey = "0"

var (
	titleStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#10B981"))
	errorStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#FF8787"))
	warnStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("#F59E0B"))
)

type Menu struct {
	app *app.App
	in  *bufio.Scanner
	out io.Writer
	log logger.Logger

	eof bool
}

func New(a *app.App, in io.Reader, out io.Writer, log logger.Logger) *Menu {
	if log == nil {
		log = logger.Nop()
	}
	return &Menu{
		app: a,
		in:  bufio.NewScanner(in),
		out: out,
		log: log.With(map[string]any{"component": "menu"}),
	}
}

// Run muestra el menú hasta que el operador elige salir o se cierra la entrada.
func (m *Menu) Run(ctx context.Context) error {
	for {
		m.println()
		m.println(titleStyle.Render("--- Amigos Peludos Veterinary Clinic ---"))
		m.println("1. Register pet")
		m.println("2. Register consultation")
		m.println("3. List pets")
		m.println("4. Show consultation history for a pet")
		m.println("5. Export data (CSV/JSON)")
		m.println("6. Import data (CSV/JSON)")
		m.println("7. Exit")

		choice, ok := m.readLine("Select an option: ")
		if !ok {
			m.println("Goodbye!")
			return nil
		}

		switch strings.TrimSpace(choice) {
		case "1":
			m.registerPet(ctx)
		case "2":
			m.registerConsultation(ctx)
		case "3":
			m.listPets(ctx)
		case "4":
			m.showHistory(ctx)
		case "5":
			m.exportData(ctx)
		case "6":
			m.importData(ctx)
		case "7":
			m.println("Goodbye!")
			return nil
		default:
			m.println("Invalid option. Try again.")
		}

		if m.eof {
			return nil
		}
	}
}

func (m *Menu) registerPet(ctx context.Context) {
	m.println()
	m.println(titleStyle.Render("--- Register New Pet (0 to go back) ---"))

	var in pets.RegisterPetInput
	var ok bool

	if in.Name, ok = m.ask("Pet name: "); !ok {
		return
	}
	if in.Species, ok = m.ask("Species: "); !ok {
		return
	}
	if in.Breed, ok = m.ask("Breed: "); !ok {
		return
	}
	ageInput, ok := m.ask("Age: ")
	if !ok {
		return
	}
	age, err := strconv.Atoi(strings.TrimSpace(ageInput))
	if err != nil {
		m.fail("Error: age must be a whole number.")
		m.log.Error("pet registration failed", map[string]any{"age": ageInput, "error": "age is not a number"})
		return
	}
	in.Age = age

	m.println()
	m.println(titleStyle.Render("--- Owner Details (0 to go back) ---"))
	if in.OwnerName, ok = m.ask("Owner name: "); !ok {
		return
	}
	if in.OwnerPhone, ok = m.ask("Phone: "); !ok {
		return
	}
	if in.OwnerAddress, ok = m.ask("Address: "); !ok {
		return
	}

	if _, err := m.app.RegisterPet(ctx, in); err != nil {
		m.fail("Error: " + err.Error())
		return
	}
	m.println("Pet registered successfully!")
}

func (m *Menu) registerConsultation(ctx context.Context) {
	m.println()
	m.println(titleStyle.Render("--- Register Consultation (0 to go back) ---"))

	n, ok := m.printPets(ctx)
	if !ok {
		return
	}

	idx, ok := m.askPetNumber(n)
	if !ok {
		return
	}

	var in pets.RegisterConsultationInput
	for {
		date, ok := m.ask("Date (YYYY-MM-DD): ")
		if !ok {
			return
		}
		if pets.ValidDate(strings.TrimSpace(date)) {
			in.Date = strings.TrimSpace(date)
			break
		}
		m.fail("Invalid date format. Try again.")
	}
	if in.Reason, ok = m.ask("Reason for consultation: "); !ok {
		return
	}
	if in.Diagnosis, ok = m.ask("Diagnosis: "); !ok {
		return
	}

	if _, err := m.app.RegisterConsultation(ctx, idx, in); err != nil {
		m.fail("Error: " + err.Error())
		return
	}
	m.println("Consultation registered successfully!")
}

func (m *Menu) listPets(ctx context.Context) {
	m.println()
	m.println(titleStyle.Render("--- Pet List ---"))
	m.printPets(ctx)
}

func (m *Menu) showHistory(ctx context.Context) {
	m.println()
	m.println(titleStyle.Render("--- Consultation History (0 to go back) ---"))

	n, ok := m.printPets(ctx)
	if !ok {
		return
	}
	idx, ok := m.askPetNumber(n)
	if !ok {
		return
	}

	history, err := m.app.GetHistory(ctx, idx)
	if err != nil {
		m.fail("Error: " + err.Error())
		return
	}
	if len(history) == 0 {
		m.println("No consultations registered for this pet.")
		return
	}
	m.println(fmt.Sprintf("Consultation history for pet %d:", idx))
	for _, line := range history {
		m.println(line)
	}
}

func (m *Menu) exportData(ctx context.Context) {
	m.printReports(m.app.ExportAll(ctx))
	m.println("Export finished.")
}

func (m *Menu) importData(ctx context.Context) {
	if m.app.HasPets(ctx) {
		answer, ok := m.readLine("Are you sure you want to import data? This will overwrite the current data (Y/N): ")
		answer = strings.ToLower(strings.TrimSpace(answer))
		if !ok || (answer != "y" && answer != "s") {
			m.println("Import cancelled.")
			m.log.Info("import cancelled by operator", nil)
			return
		}
		// evita duplicados al recargar
		if err := m.app.ClearStore(ctx); err != nil {
			m.fail("Error: " + err.Error())
			return
		}
	}

	m.printReports(m.app.ImportAll(ctx))
	m.println("Import finished.")
}

// printPets lista las mascotas numeradas desde 1. ok=false si no hay ninguna.
func (m *Menu) printPets(ctx context.Context) (int, bool) {
	list, err := m.app.ListPets(ctx)
	if err != nil {
		m.fail("Error: " + err.Error())
		return 0, false
	}
	if len(list) == 0 {
		m.println("No pets registered.")
		return 0, false
	}
	for i, line := range list {
		m.println(fmt.Sprintf("%d. %s", i+1, line))
	}
	return len(list), true
}

func (m *Menu) askPetNumber(n int) (int, bool) {
	raw, ok := m.ask("Select the pet number: ")
	if !ok {
		return 0, false
	}
	idx, err := strconv.Atoi(strings.TrimSpace(raw))
	if err != nil {
		m.fail("Invalid input. Please enter a valid number.")
		m.log.Error("invalid pet number", map[string]any{"input": raw})
		return 0, false
	}
	if idx < 1 || idx > n {
		m.fail("Error: " + pets.ErrIndexOutOfRange.Error())
		m.log.Warn("pet number out of range", map[string]any{"index": idx, "pets": n})
		return 0, false
	}
	return idx, true
}

func (m *Menu) printReports(reports []flatfile.Report) {
	for _, r := range reports {
		switch r.Status {
		case flatfile.StatusFailed:
			m.println(errorStyle.Render("  " + r.String()))
		case flatfile.StatusWarning:
			m.println(warnStyle.Render("  " + r.String()))
		default:
			m.println("  " + r.String())
		}
	}
}

// ask lee un campo; ok=false si el operador escribió 0 (volver) o se cerró la entrada.
func (m *Menu) ask(label string) (string, bool) {
	v, ok := m.readLine(label)
	if !ok || strings.TrimSpace(v) == backKey {
		return "", false
	}
	return v, true
}

func (m *Menu) readLine(label string) (string, bool) {
	fmt.Fprint(m.out, label)
	if !m.in.Scan() {
		m.eof = true
		fmt.Fprintln(m.out)
		return "", false
	}
	return m.in.Text(), true
}

func (m *Menu) fail(msg string) {
	m.println(errorStyle.Render(msg))
}

func (m *Menu) println(a ...any) {
	fmt.Fprintln(m.out, a...)
}
