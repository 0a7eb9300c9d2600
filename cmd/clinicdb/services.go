package main

import (
	"github.com/the1323/cs166-project-the033-hbai013/internal/console"
	"github.com/the1323/cs166-project-the033-hbai013/internal/service/appointment"
	"github.com/the1323/cs166-project-the033-hbai013/internal/service/booking"
	"github.com/the1323/cs166-project-the033-hbai013/internal/service/doctor"
	"github.com/the1323/cs166-project-the033-hbai013/internal/service/patient"
	"github.com/the1323/cs166-project-the033-hbai013/internal/service/report"
)

type services struct {
	doctors      *doctor.Service
	patients     *patient.Service
	appointments *appointment.Service
	booking      *booking.Service
	reports      *report.Service
}

func newServices(a *app) *services {
	repos := a.store.Repos()
	return &services{
		doctors:      doctor.NewService(a.store, a.validator),
		patients:     patient.NewService(a.store, a.validator),
		appointments: appointment.NewService(a.store, a.validator),
		booking:      booking.NewService(a.store, a.validator, a.metrics, a.log),
		reports:      report.NewService(repos.Reports, a.store, a.validator),
	}
}

func (s *services) console() console.Services {
	return console.Services{
		Doctors:      s.doctors,
		Patients:     s.patients,
		Appointments: s.appointments,
		Booking:      s.booking,
		Reports:      s.reports,
	}
}
