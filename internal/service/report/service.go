package report

import (
	"context"
	"strings"

	"github.com/the1323/cs166-project-the033-hbai013/internal/model"
	"github.com/the1323/cs166-project-the033-hbai013/internal/repository"
	"github.com/the1323/cs166-project-the033-hbai013/internal/repository/postgres"
	apperrors "github.com/the1323/cs166-project-the033-hbai013/pkg/errors"
	"github.com/the1323/cs166-project-the033-hbai013/pkg/validator"
)

// Querier runs ad-hoc statements in a read-only transaction.
type Querier interface {
	QueryReadOnly(ctx context.Context, query string) (*postgres.Table, error)
}

type Service struct {
	reports   repository.ReportRepository
	querier   Querier
	validator validator.Validator
}

func NewService(reports repository.ReportRepository, querier Querier, v validator.Validator) *Service {
	return &Service{reports: reports, querier: querier, validator: v}
}

// StatusCounts lists, per doctor, how many appointments have each status,
// largest counts first.
func (s *Service) StatusCounts(ctx context.Context) ([]*model.StatusCount, error) {
	return s.reports.StatusCountsPerDoctor(ctx)
}

// PatientCounts lists the number of patients per doctor whose appointments
// have the given status.
func (s *Service) PatientCounts(ctx context.Context, status string) ([]*model.PatientCount, error) {
	status = strings.ToUpper(strings.TrimSpace(status))
	if err := s.validator.ValidateField("status", status, "required,apptstatus"); err != nil {
		return nil, err
	}
	return s.reports.PatientCountsPerDoctor(ctx, model.AppointmentStatus(status))
}

// Query runs a single statement read-only and returns its rows for display.
// The prefix and semicolon checks only give an early message; the read-only
// transaction is what keeps writes out.
func (s *Service) Query(ctx context.Context, query string) (*postgres.Table, error) {
	query = strings.TrimRight(strings.TrimSpace(query), "; \t\n")
	if query == "" {
		return nil, apperrors.BadRequest("query is required", nil)
	}
	first := strings.ToLower(strings.Fields(query)[0])
	if first != "select" && first != "with" {
		return nil, apperrors.BadRequest("only SELECT queries are allowed", nil)
	}
	if strings.Contains(query, ";") {
		return nil, apperrors.BadRequest("only a single statement is allowed", nil)
	}
	return s.querier.QueryReadOnly(ctx, query)
}
