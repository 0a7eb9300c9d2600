package notification

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"time"

	"github.com/patrickmn/go-cache"

	"github.com/the1323/cs166-project-the033-hbai013/internal/email"
	"github.com/the1323/cs166-project-the033-hbai013/internal/model"
	"github.com/the1323/cs166-project-the033-hbai013/internal/repository"
	"github.com/the1323/cs166-project-the033-hbai013/pkg/logger"
	"github.com/the1323/cs166-project-the033-hbai013/pkg/messaging"
	"github.com/the1323/cs166-project-the033-hbai013/pkg/metrics"
)

type Config struct {
	FrontDeskEmail string
	// CacheTTL is how long doctor names are cached.
	CacheTTL time.Duration
}

// Service e-mails the front desk whenever a booking lands on the waitlist.
type Service struct {
	doctors  repository.DoctorRepository
	emailSvc email.Service
	cache    *cache.Cache
	to       string
	metrics  *metrics.Metrics
	logger   *logger.Logger
}

func NewService(doctors repository.DoctorRepository, emailSvc email.Service, cfg Config, m *metrics.Metrics, log *logger.Logger) *Service {
	ttl := cfg.CacheTTL
	if ttl <= 0 {
		ttl = 10 * time.Minute
	}
	if log == nil {
		log = logger.Nop()
	}
	return &Service{
		doctors:  doctors,
		emailSvc: emailSvc,
		cache:    cache.New(ttl, 2*ttl),
		to:       cfg.FrontDeskEmail,
		metrics:  m,
		logger:   log,
	}
}

// Handle is a messaging.Handler. Messages other than waitlist events are
// ignored.
func (s *Service) Handle(ctx context.Context, msg messaging.Message) error {
	if msg.Type != model.EventAppointmentWaitlisted {
		return nil
	}

	var ev model.BookingEvent
	if err := json.Unmarshal(msg.Payload, &ev); err != nil {
		s.count("invalid")
		return fmt.Errorf("failed to decode %s event %s: %w", msg.Type, msg.ID, err)
	}

	subject := fmt.Sprintf("Waitlisted: %s %s", ev.Date, ev.TimeSlot)
	body := fmt.Sprintf(
		"Patient %d was placed on the waitlist with %s on %s, %s.\n"+
			"Waitlist appointment: %d (original appointment %d).\n",
		ev.PatientID, s.doctorName(ctx, ev.DoctorID), ev.Date, ev.TimeSlot,
		ev.AppointmentID, ev.OriginalAppointmentID,
	)

	if err := s.emailSvc.SendCustom(ctx, s.to, subject, body); err != nil {
		s.count("failed")
		return fmt.Errorf("failed to send waitlist notification: %w", err)
	}

	s.count("sent")
	s.logger.Info("waitlist notification sent", "appnt_id", ev.AppointmentID, "to", s.to)
	return nil
}

// doctorName falls back to the id when the doctor cannot be loaded.
func (s *Service) doctorName(ctx context.Context, id int) string {
	key := strconv.Itoa(id)
	if name, found := s.cache.Get(key); found {
		return name.(string)
	}

	doc, err := s.doctors.Get(ctx, id)
	if err != nil {
		s.logger.Warn("doctor lookup failed", "doctor_id", id, "error", err.Error())
		return "doctor " + key
	}
	name := fmt.Sprintf("Dr. %s (%s)", doc.Name, doc.Specialty)
	s.cache.Set(key, name, cache.DefaultExpiration)
	return name
}

func (s *Service) count(status string) {
	if s.metrics != nil {
		s.metrics.NotificationsSent.WithLabelValues(status).Inc()
	}
}
