package postgres

import (
	"context"
	"fmt"
	"strconv"

	"github.com/the1323/cs166-project-the033-hbai013/internal/repository"
)

var sequenceColumns = map[repository.Table]string{
	repository.TableDoctor:      "doctor_id",
	repository.TablePatient:     "patient_id",
	repository.TableAppointment: "appnt_id",
}

// idSequence hands out 1 + the current max id of a table. Inside a
// transaction it first locks the table against concurrent writers so two
// sessions can never read the same max.
type idSequence struct {
	exec *Executor
	lock bool
}

func NewIDSequence(exec *Executor, lock bool) repository.IDSequence {
	return &idSequence{exec: exec, lock: lock}
}

func (s *idSequence) Next(ctx context.Context, table repository.Table) (int, error) {
	col, ok := sequenceColumns[table]
	if !ok {
		return 0, fmt.Errorf("no id sequence for table %q", table)
	}

	if s.lock {
		if _, err := s.exec.ExecuteUpdate(ctx, fmt.Sprintf("LOCK TABLE %s IN SHARE ROW EXCLUSIVE MODE", table)); err != nil {
			return 0, fmt.Errorf("failed to lock %s: %w", table, err)
		}
	}

	rows, err := s.exec.ExecuteQueryAndReturnResult(ctx, fmt.Sprintf("SELECT COALESCE(MAX(%s), 0) + 1 FROM %s", col, table))
	if err != nil {
		return 0, fmt.Errorf("failed to read max %s: %w", col, err)
	}
	if len(rows) == 0 || len(rows[0]) == 0 {
		return 0, fmt.Errorf("failed to read max %s: empty result", col)
	}

	id, err := strconv.Atoi(rows[0][0])
	if err != nil {
		return 0, fmt.Errorf("failed to parse next %s %q: %w", col, rows[0][0], err)
	}
	return id, nil
}
