package console

import (
	"context"
	"errors"
	"fmt"
	"io"
	"math"
	"strconv"
	"strings"

	"github.com/the1323/cs166-project-the033-hbai013/internal/model"
	"github.com/the1323/cs166-project-the033-hbai013/internal/service/booking"
	"github.com/the1323/cs166-project-the033-hbai013/pkg/logger"
	"github.com/the1323/cs166-project-the033-hbai013/pkg/validator"
)

type DoctorService interface {
	CreateDoctor(ctx context.Context, req *model.CreateDoctorRequest) (*model.Doctor, error)
}

type PatientService interface {
	PatientLookup
	CreatePatient(ctx context.Context, req *model.CreatePatientRequest) (*model.Patient, error)
}

type AppointmentService interface {
	CreateAppointment(ctx context.Context, req *model.CreateAppointmentRequest) (*model.Appointment, error)
	ListForDoctor(ctx context.Context, req *model.ListDoctorAppointmentsRequest) ([]*model.Appointment, error)
	ListAvailableForDepartment(ctx context.Context, req *model.ListDepartmentAppointmentsRequest) ([]*model.DoctorAppointment, error)
}

type BookingService interface {
	Book(ctx context.Context, req *model.BookAppointmentRequest, source booking.PatientSource) (*booking.Result, error)
}

type ReportService interface {
	StatusCounts(ctx context.Context) ([]*model.StatusCount, error)
	PatientCounts(ctx context.Context, status string) ([]*model.PatientCount, error)
}

// Services are the operations the menu dispatches to.
type Services struct {
	Doctors      DoctorService
	Patients     PatientService
	Appointments AppointmentService
	Booking      BookingService
	Reports      ReportService
}

type Menu struct {
	prompter  *Prompter
	out       io.Writer
	svc       Services
	validator validator.Validator
	logger    *logger.Logger
}

func NewMenu(in io.Reader, out io.Writer, svc Services, v validator.Validator, log *logger.Logger) *Menu {
	if log == nil {
		log = logger.Nop()
	}
	return &Menu{
		prompter:  NewPrompter(in, out),
		out:       out,
		svc:       svc,
		validator: v,
		logger:    log,
	}
}

type menuItem struct {
	title string
	run   func(ctx context.Context) error
}

func (m *Menu) items() []menuItem {
	return []menuItem{
		{"Add Doctor", m.addDoctor},
		{"Add Patient", m.addPatient},
		{"Add Appointment", m.addAppointment},
		{"Make an Appointment", m.makeAppointment},
		{"List appointments of a given doctor", m.listDoctorAppointments},
		{"List all available appointments of a given department", m.listDepartmentAppointments},
		{"List total number of different types of appointments per doctor in descending order", m.statusCounts},
		{"Find total number of patients per doctor with a given status", m.patientCounts},
	}
}

// Run shows the menu until the user exits or input ends. A failing
// operation is reported and the menu is shown again.
func (m *Menu) Run(ctx context.Context) error {
	items := m.items()
	exit := len(items) + 1

	for {
		fmt.Fprintln(m.out, "MAIN MENU")
		fmt.Fprintln(m.out, "---------")
		for i, it := range items {
			fmt.Fprintf(m.out, "%d. %s\n", i+1, it.title)
		}
		fmt.Fprintf(m.out, "%d. < EXIT\n", exit)

		choice, err := m.prompter.ReadChoice(1, exit)
		if err != nil {
			if errors.Is(err, ErrInputClosed) {
				return nil
			}
			return err
		}
		if choice == exit {
			return nil
		}

		item := items[choice-1]
		if err := item.run(ctx); err != nil {
			if errors.Is(err, ErrInputClosed) {
				return nil
			}
			m.logger.Error(err, "menu operation failed", "operation", item.title)
			fmt.Fprintf(m.out, "Error: %s\n", err.Error())
		}
		if ctx.Err() != nil {
			return ctx.Err()
		}
	}
}

func (m *Menu) readID(prompt string) (int, error) {
	return m.prompter.ReadInt(prompt, 1, math.MaxInt32)
}

func (m *Menu) readDate(prompt string) (string, error) {
	return m.prompter.ReadString(prompt, field(m.validator, "date", "required,apptdate"))
}

func (m *Menu) addDoctor(ctx context.Context) error {
	name, err := m.prompter.ReadString("Enter Doctor Name: ", field(m.validator, "name", "required,personname"))
	if err != nil {
		return err
	}
	specialty, err := m.prompter.ReadString("Enter Specialty: ", field(m.validator, "specialty", "required,max=24"))
	if err != nil {
		return err
	}
	did, err := m.readID("Enter Department ID: ")
	if err != nil {
		return err
	}

	d, err := m.svc.Doctors.CreateDoctor(ctx, &model.CreateDoctorRequest{Name: name, Specialty: specialty, DepartmentID: did})
	if err != nil {
		return err
	}
	fmt.Fprintf(m.out, "New Doctor: ID: %d Name: %s Specialty: %s Department: %d\n", d.ID, d.Name, d.Specialty, d.DepartmentID)
	return nil
}

func (m *Menu) addPatient(ctx context.Context) error {
	req, err := readPatientRequest(m.prompter, m.validator, true)
	if err != nil {
		return err
	}
	p, err := m.svc.Patients.CreatePatient(ctx, req)
	if err != nil {
		return err
	}
	fmt.Fprintf(m.out, "New Patient: ID: %d Name: %s Gender: %s Age: %d\n", p.ID, p.Name, p.Gender, p.Age)
	return nil
}

func (m *Menu) addAppointment(ctx context.Context) error {
	date, err := m.readDate("Enter Date (YYYY-MM-DD): ")
	if err != nil {
		return err
	}
	slot, err := m.prompter.ReadString("Enter time slot (HH:MM-HH:MM): ", field(m.validator, "time_slot", "required,timeslot"))
	if err != nil {
		return err
	}
	doctorID, err := m.readID("Enter Doctor ID: ")
	if err != nil {
		return err
	}

	a, err := m.svc.Appointments.CreateAppointment(ctx, &model.CreateAppointmentRequest{Date: date, TimeSlot: slot, DoctorID: doctorID})
	if err != nil {
		return err
	}
	fmt.Fprintf(m.out, "New Appointment: ID: %d Date: %s Time slot: %s Status: %s\n", a.ID, a.DateString(), a.TimeSlot, a.Status)
	return nil
}

func (m *Menu) makeAppointment(ctx context.Context) error {
	doctorID, err := m.readID("Enter Doctor ID: ")
	if err != nil {
		return err
	}
	apptID, err := m.readID("Enter Appointment ID: ")
	if err != nil {
		return err
	}

	source := NewPatientSource(m.prompter, m.svc.Patients, m.validator)
	res, err := m.svc.Booking.Book(ctx, &model.BookAppointmentRequest{DoctorID: doctorID, AppointmentID: apptID}, source)
	if err != nil {
		return err
	}

	switch res.Outcome {
	case booking.OutcomeWaitlisted:
		fmt.Fprintf(m.out, "Appointment %d is taken; patient %d was added to the waitlist.\n", apptID, res.Patient.ID)
	default:
		fmt.Fprintf(m.out, "Appointment booked for patient %d.\n", res.Patient.ID)
	}
	PrintTable(m.out, []string{"appnt_id", "adate", "time_slot", "status"}, [][]string{appointmentRow(res.Appointment)})
	return nil
}

func (m *Menu) listDoctorAppointments(ctx context.Context) error {
	doctorID, err := m.readID("Enter Doctor ID: ")
	if err != nil {
		return err
	}
	start, err := m.readDate("Enter Start Date (YYYY-MM-DD): ")
	if err != nil {
		return err
	}
	end, err := m.readDate("Enter End Date (YYYY-MM-DD): ")
	if err != nil {
		return err
	}

	list, err := m.svc.Appointments.ListForDoctor(ctx, &model.ListDoctorAppointmentsRequest{DoctorID: doctorID, StartDate: start, EndDate: end})
	if err != nil {
		return err
	}
	rows := make([][]string, len(list))
	for i, a := range list {
		rows[i] = appointmentRow(a)
	}
	PrintTable(m.out, []string{"appnt_id", "adate", "time_slot", "status"}, rows)
	return nil
}

func (m *Menu) listDepartmentAppointments(ctx context.Context) error {
	dept, err := m.prompter.ReadString("Enter Department Name: ", field(m.validator, "department", "required,max=32"))
	if err != nil {
		return err
	}
	date, err := m.readDate("Enter Date (YYYY-MM-DD): ")
	if err != nil {
		return err
	}

	list, err := m.svc.Appointments.ListAvailableForDepartment(ctx, &model.ListDepartmentAppointmentsRequest{Department: dept, Date: date})
	if err != nil {
		return err
	}
	rows := make([][]string, len(list))
	for i, a := range list {
		rows[i] = append(appointmentRow(&a.Appointment), strconv.Itoa(a.DoctorID), a.DoctorName)
	}
	PrintTable(m.out, []string{"appnt_id", "adate", "time_slot", "status", "doctor_id", "doctor"}, rows)
	return nil
}

func (m *Menu) statusCounts(ctx context.Context) error {
	counts, err := m.svc.Reports.StatusCounts(ctx)
	if err != nil {
		return err
	}
	rows := make([][]string, len(counts))
	for i, c := range counts {
		rows[i] = []string{strconv.Itoa(c.DoctorID), c.DoctorName, string(c.Status), strconv.Itoa(c.Count)}
	}
	PrintTable(m.out, []string{"doctor_id", "doctor", "status", "count"}, rows)
	return nil
}

func (m *Menu) patientCounts(ctx context.Context) error {
	status, err := m.prompter.ReadString("Enter status (AV, AC, WL, PA): ", func(s string) error {
		return m.validator.ValidateField("status", strings.ToUpper(s), "required,apptstatus")
	})
	if err != nil {
		return err
	}

	counts, err := m.svc.Reports.PatientCounts(ctx, status)
	if err != nil {
		return err
	}
	rows := make([][]string, len(counts))
	for i, c := range counts {
		rows[i] = []string{strconv.Itoa(c.DoctorID), c.DoctorName, strconv.Itoa(c.Patients)}
	}
	PrintTable(m.out, []string{"doctor_id", "doctor", "patients"}, rows)
	return nil
}

func appointmentRow(a *model.Appointment) []string {
	return []string{strconv.Itoa(a.ID), a.DateString(), a.TimeSlot, string(a.Status)}
}
