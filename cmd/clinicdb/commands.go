package main

import (
	"context"
	"fmt"
	"os"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/the1323/cs166-project-the033-hbai013/internal/console"
	"github.com/the1323/cs166-project-the033-hbai013/internal/model"
	"github.com/the1323/cs166-project-the033-hbai013/internal/service/booking"
	apperrors "github.com/the1323/cs166-project-the033-hbai013/pkg/errors"
)

func doctorCmd(flags *rootFlags) *cobra.Command {
	cmd := &cobra.Command{Use: "doctor", Short: "Doctor commands"}

	var req model.CreateDoctorRequest
	add := &cobra.Command{
		Use:   "add",
		Short: "Add a doctor",
		RunE: withApp(flags, func(cmd *cobra.Command, a *app, args []string) error {
			d, err := newServices(a).doctors.CreateDoctor(cmd.Context(), &req)
			if err != nil {
				return err
			}
			printDoctor(d)
			return nil
		}),
	}
	add.Flags().StringVar(&req.Name, "name", "", "Doctor name")
	add.Flags().StringVar(&req.Specialty, "specialty", "", "Specialty")
	add.Flags().IntVar(&req.DepartmentID, "department", 0, "Department id")

	get := &cobra.Command{
		Use:   "get <id>",
		Short: "Show a doctor",
		Args:  cobra.ExactArgs(1),
		RunE: withApp(flags, func(cmd *cobra.Command, a *app, args []string) error {
			id, err := strconv.Atoi(args[0])
			if err != nil {
				return fmt.Errorf("invalid doctor id %q", args[0])
			}
			d, err := newServices(a).doctors.GetDoctor(cmd.Context(), id)
			if err != nil {
				return err
			}
			printDoctor(d)
			return nil
		}),
	}

	cmd.AddCommand(add, get)
	return cmd
}

func printDoctor(d *model.Doctor) {
	console.PrintTable(os.Stdout, []string{"doctor_id", "name", "specialty", "did"},
		[][]string{{strconv.Itoa(d.ID), d.Name, d.Specialty, strconv.Itoa(d.DepartmentID)}})
}

func patientCmd(flags *rootFlags) *cobra.Command {
	cmd := &cobra.Command{Use: "patient", Short: "Patient commands"}

	var req model.CreatePatientRequest
	add := &cobra.Command{
		Use:   "add",
		Short: "Add a patient",
		RunE: withApp(flags, func(cmd *cobra.Command, a *app, args []string) error {
			p, err := newServices(a).patients.CreatePatient(cmd.Context(), &req)
			if err != nil {
				return err
			}
			printPatient(p)
			return nil
		}),
	}
	addPatientFlags(add, &req)
	add.Flags().IntVar(&req.NumberOfAppointments, "appointments", 0, "Number of appointments")

	get := &cobra.Command{
		Use:   "get <id>",
		Short: "Show a patient",
		Args:  cobra.ExactArgs(1),
		RunE: withApp(flags, func(cmd *cobra.Command, a *app, args []string) error {
			id, err := strconv.Atoi(args[0])
			if err != nil {
				return fmt.Errorf("invalid patient id %q", args[0])
			}
			p, err := newServices(a).patients.GetPatient(cmd.Context(), id)
			if err != nil {
				return err
			}
			printPatient(p)
			return nil
		}),
	}

	cmd.AddCommand(add, get)
	return cmd
}

func addPatientFlags(cmd *cobra.Command, req *model.CreatePatientRequest) {
	cmd.Flags().StringVar(&req.Name, "name", "", "Patient name")
	cmd.Flags().StringVar(&req.Gender, "gender", "", "Gender (M/F)")
	cmd.Flags().IntVar(&req.Age, "age", 0, "Age")
	cmd.Flags().StringVar(&req.Address, "address", "", "Address")
}

func printPatient(p *model.Patient) {
	console.PrintTable(os.Stdout, []string{"patient_id", "name", "gtype", "age", "address", "number_of_appts"},
		[][]string{{strconv.Itoa(p.ID), p.Name, string(p.Gender), strconv.Itoa(p.Age), p.Address, strconv.Itoa(p.NumberOfAppointments)}})
}

func appointmentCmd(flags *rootFlags) *cobra.Command {
	cmd := &cobra.Command{Use: "appointment", Short: "Appointment commands"}
	cmd.AddCommand(
		appointmentAddCmd(flags),
		appointmentBookCmd(flags),
		appointmentListCmd(flags),
		appointmentAvailableCmd(flags),
	)
	return cmd
}

func appointmentAddCmd(flags *rootFlags) *cobra.Command {
	var req model.CreateAppointmentRequest
	cmd := &cobra.Command{
		Use:   "add",
		Short: "Add an available appointment for a doctor",
		RunE: withApp(flags, func(cmd *cobra.Command, a *app, args []string) error {
			appt, err := newServices(a).appointments.CreateAppointment(cmd.Context(), &req)
			if err != nil {
				return err
			}
			printAppointments([]*model.Appointment{appt})
			return nil
		}),
	}
	cmd.Flags().StringVar(&req.Date, "date", "", "Date (YYYY-MM-DD)")
	cmd.Flags().StringVar(&req.TimeSlot, "slot", "", "Time slot (HH:MM-HH:MM)")
	cmd.Flags().IntVar(&req.DoctorID, "doctor", 0, "Doctor id")
	return cmd
}

func appointmentBookCmd(flags *rootFlags) *cobra.Command {
	var (
		req       model.BookAppointmentRequest
		patientID int
		newReq    model.CreatePatientRequest
		choice    *booking.PatientChoice
	)
	cmd := &cobra.Command{
		Use:   "book",
		Short: "Book an appointment for an existing (--patient) or new patient",
		PreRunE: func(cmd *cobra.Command, args []string) error {
			var err error
			choice, err = patientChoiceFromFlags(cmd, patientID, &newReq)
			return err
		},
		RunE: withApp(flags, func(cmd *cobra.Command, a *app, args []string) error {
			source := booking.PatientSourceFunc(func(context.Context) (*booking.PatientChoice, error) {
				return choice, nil
			})

			res, err := newServices(a).booking.Book(cmd.Context(), &req, source)
			if err != nil {
				return err
			}
			fmt.Fprintf(os.Stdout, "Outcome: %s (patient %d)\n", res.Outcome, res.Patient.ID)
			printAppointments([]*model.Appointment{res.Appointment})
			return nil
		}),
	}
	cmd.Flags().IntVar(&req.DoctorID, "doctor", 0, "Doctor id")
	cmd.Flags().IntVar(&req.AppointmentID, "appointment", 0, "Appointment id")
	cmd.Flags().IntVar(&patientID, "patient", 0, "Existing patient id")
	addPatientFlags(cmd, &newReq)
	return cmd
}

// patientChoiceFromFlags picks the booking's patient from --patient or from
// the new patient flags. Exactly one of the two forms must be given.
func patientChoiceFromFlags(cmd *cobra.Command, patientID int, req *model.CreatePatientRequest) (*booking.PatientChoice, error) {
	f := cmd.Flags()
	existing := f.Changed("patient")
	newPatient := f.Changed("name") || f.Changed("gender") || f.Changed("age") || f.Changed("address")

	switch {
	case existing && newPatient:
		return nil, apperrors.BadRequest("pass either --patient or the new patient flags, not both", nil)
	case existing:
		return &booking.PatientChoice{ExistingID: patientID}, nil
	case !f.Changed("name") || !f.Changed("gender") || !f.Changed("age"):
		return nil, apperrors.BadRequest("pass --patient <id> for an existing patient, or --name, --gender and --age for a new one", nil)
	}
	return &booking.PatientChoice{New: req}, nil
}

func appointmentListCmd(flags *rootFlags) *cobra.Command {
	var req model.ListDoctorAppointmentsRequest
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List active and available appointments of a doctor in a date range",
		RunE: withApp(flags, func(cmd *cobra.Command, a *app, args []string) error {
			list, err := newServices(a).appointments.ListForDoctor(cmd.Context(), &req)
			if err != nil {
				return err
			}
			printAppointments(list)
			return nil
		}),
	}
	cmd.Flags().IntVar(&req.DoctorID, "doctor", 0, "Doctor id")
	cmd.Flags().StringVar(&req.StartDate, "from", "", "Start date (YYYY-MM-DD)")
	cmd.Flags().StringVar(&req.EndDate, "to", "", "End date (YYYY-MM-DD)")
	return cmd
}

func appointmentAvailableCmd(flags *rootFlags) *cobra.Command {
	var req model.ListDepartmentAppointmentsRequest
	cmd := &cobra.Command{
		Use:   "available",
		Short: "List available appointments of a department on a date",
		RunE: withApp(flags, func(cmd *cobra.Command, a *app, args []string) error {
			list, err := newServices(a).appointments.ListAvailableForDepartment(cmd.Context(), &req)
			if err != nil {
				return err
			}
			rows := make([][]string, len(list))
			for i, d := range list {
				rows[i] = []string{strconv.Itoa(d.ID), d.DateString(), d.TimeSlot, string(d.Status), strconv.Itoa(d.DoctorID), d.DoctorName}
			}
			console.PrintTable(os.Stdout, []string{"appnt_id", "adate", "time_slot", "status", "doctor_id", "doctor"}, rows)
			return nil
		}),
	}
	cmd.Flags().StringVar(&req.Department, "department", "", "Department name")
	cmd.Flags().StringVar(&req.Date, "date", "", "Date (YYYY-MM-DD)")
	return cmd
}

func printAppointments(list []*model.Appointment) {
	rows := make([][]string, len(list))
	for i, a := range list {
		rows[i] = []string{strconv.Itoa(a.ID), a.DateString(), a.TimeSlot, string(a.Status)}
	}
	console.PrintTable(os.Stdout, []string{"appnt_id", "adate", "time_slot", "status"}, rows)
}

func reportCmd(flags *rootFlags) *cobra.Command {
	cmd := &cobra.Command{Use: "report", Short: "Reports"}

	cmd.AddCommand(&cobra.Command{
		Use:   "status",
		Short: "Appointment counts per doctor and status",
		RunE: withApp(flags, func(cmd *cobra.Command, a *app, args []string) error {
			counts, err := newServices(a).reports.StatusCounts(cmd.Context())
			if err != nil {
				return err
			}
			rows := make([][]string, len(counts))
			for i, c := range counts {
				rows[i] = []string{strconv.Itoa(c.DoctorID), c.DoctorName, string(c.Status), strconv.Itoa(c.Count)}
			}
			console.PrintTable(os.Stdout, []string{"doctor_id", "doctor", "status", "count"}, rows)
			return nil
		}),
	})

	var status string
	patients := &cobra.Command{
		Use:   "patients",
		Short: "Distinct patients per doctor with a given appointment status",
		RunE: withApp(flags, func(cmd *cobra.Command, a *app, args []string) error {
			counts, err := newServices(a).reports.PatientCounts(cmd.Context(), status)
			if err != nil {
				return err
			}
			rows := make([][]string, len(counts))
			for i, c := range counts {
				rows[i] = []string{strconv.Itoa(c.DoctorID), c.DoctorName, strconv.Itoa(c.Patients)}
			}
			console.PrintTable(os.Stdout, []string{"doctor_id", "doctor", "patients"}, rows)
			return nil
		}),
	}
	patients.Flags().StringVar(&status, "status", "", "Appointment status (AV, AC, WL, PA)")
	cmd.AddCommand(patients)

	return cmd
}

func queryCmd(flags *rootFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "query <sql>",
		Short: "Run a read-only SQL query and print the result",
		Args:  cobra.ExactArgs(1),
		RunE: withApp(flags, func(cmd *cobra.Command, a *app, args []string) error {
			table, err := newServices(a).reports.Query(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			console.PrintTable(os.Stdout, table.Columns, table.Rows)
			return nil
		}),
	}
}
