package console

import (
	"context"
	"fmt"
	"math"
	"strings"

	"github.com/the1323/cs166-project-the033-hbai013/internal/model"
	"github.com/the1323/cs166-project-the033-hbai013/internal/service/booking"
	apperrors "github.com/the1323/cs166-project-the033-hbai013/pkg/errors"
	"github.com/the1323/cs166-project-the033-hbai013/pkg/validator"
)

// PatientLookup finds a patient by id.
type PatientLookup interface {
	GetPatient(ctx context.Context, id int) (*model.Patient, error)
}

// PatientSource asks at the console who a booking is for.
type PatientSource struct {
	prompter  *Prompter
	patients  PatientLookup
	validator validator.Validator
}

func NewPatientSource(p *Prompter, patients PatientLookup, v validator.Validator) *PatientSource {
	return &PatientSource{prompter: p, patients: patients, validator: v}
}

var _ booking.PatientSource = (*PatientSource)(nil)

// ChoosePatient returns a confirmed existing patient or a new patient
// record. Unknown ids and declined confirmations start over.
func (s *PatientSource) ChoosePatient(ctx context.Context) (*booking.PatientChoice, error) {
	out := s.prompter.out
	for {
		isExisting, err := s.prompter.Confirm("Is this an existing patient?")
		if err != nil {
			return nil, err
		}
		if !isExisting {
			req, err := readPatientRequest(s.prompter, s.validator, false)
			if err != nil {
				return nil, err
			}
			return &booking.PatientChoice{New: req}, nil
		}

		id, err := s.prompter.ReadInt("Enter Patient ID: ", 1, math.MaxInt32)
		if err != nil {
			return nil, err
		}
		p, err := s.patients.GetPatient(ctx, id)
		if err != nil {
			if apperrors.Is(err, apperrors.ErrNotFound) {
				fmt.Fprintf(out, "No patient with ID %d.\n", id)
				continue
			}
			return nil, err
		}

		fmt.Fprintf(out, "Patient %d: %s, %s, age %d, %d appointment(s)\n",
			p.ID, p.Name, p.Gender, p.Age, p.NumberOfAppointments)
		ok, err := s.prompter.Confirm("Book for this patient?")
		if err != nil {
			return nil, err
		}
		if ok {
			return &booking.PatientChoice{ExistingID: p.ID}, nil
		}
	}
}

// readPatientRequest collects a new patient record field by field. The
// appointment count is only asked for when withCount is set; a booked
// patient starts at zero and the booking adds one.
func readPatientRequest(p *Prompter, v validator.Validator, withCount bool) (*model.CreatePatientRequest, error) {
	name, err := p.ReadString("Enter Patient Name: ", field(v, "name", "required,personname"))
	if err != nil {
		return nil, err
	}
	gender, err := p.ReadString("Enter gender M/F: ", func(s string) error {
		return v.ValidateField("gender", strings.ToUpper(s), "required,gender")
	})
	if err != nil {
		return nil, err
	}
	age, err := p.ReadInt("Enter age: ", 0, 150)
	if err != nil {
		return nil, err
	}
	address, err := p.ReadString("Enter address: ", field(v, "address", "max=256"))
	if err != nil {
		return nil, err
	}

	req := &model.CreatePatientRequest{
		Name:    name,
		Gender:  strings.ToUpper(gender),
		Age:     age,
		Address: address,
	}
	if withCount {
		n, err := p.ReadInt("Enter number of appointments: ", 0, math.MaxInt32)
		if err != nil {
			return nil, err
		}
		req.NumberOfAppointments = n
	}
	return req, nil
}

func field(v validator.Validator, name, tag string) func(string) error {
	return func(s string) error {
		return v.ValidateField(name, s, tag)
	}
}
