package doctor

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/the1323/cs166-project-the033-hbai013/internal/model"
	"github.com/the1323/cs166-project-the033-hbai013/internal/repository/repotest"
	apperrors "github.com/the1323/cs166-project-the033-hbai013/pkg/errors"
	"github.com/the1323/cs166-project-the033-hbai013/pkg/validator"
)

func TestCreateDoctor(t *testing.T) {
	store := repotest.NewStore()
	store.Data().Doctors[9] = &model.Doctor{ID: 9, Name: "Existing", Specialty: "ENT", DepartmentID: 1}
	svc := NewService(store, validator.New())

	d, err := svc.CreateDoctor(context.Background(), &model.CreateDoctorRequest{
		Name: "Meredith Grey", Specialty: "Surgery", DepartmentID: 2,
	})
	require.NoError(t, err)
	assert.Equal(t, 10, d.ID)

	got, err := svc.GetDoctor(context.Background(), 10)
	require.NoError(t, err)
	assert.Equal(t, "Surgery", got.Specialty)
	assert.Equal(t, 2, got.DepartmentID)
}

func TestCreateDoctorValidation(t *testing.T) {
	svc := NewService(repotest.NewStore(), validator.New())

	_, err := svc.CreateDoctor(context.Background(), &model.CreateDoctorRequest{
		Name: "Meredith Grey", Specialty: "A specialty name that is far too long", DepartmentID: 2,
	})
	assert.True(t, apperrors.Is(err, apperrors.ErrBadRequest))

	_, err = svc.CreateDoctor(context.Background(), &model.CreateDoctorRequest{Name: "Grey", Specialty: "ENT"})
	assert.True(t, apperrors.Is(err, apperrors.ErrBadRequest))
}

func TestCreateDoctorStoreFailure(t *testing.T) {
	store := repotest.NewStore()
	store.Fail["doctors.create"] = errors.New("foreign key violation")
	svc := NewService(store, validator.New())

	_, err := svc.CreateDoctor(context.Background(), &model.CreateDoctorRequest{Name: "Grey", Specialty: "ENT", DepartmentID: 99})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "foreign key violation")
	assert.Empty(t, store.Data().Doctors)
	assert.Empty(t, store.Data().Audit)
}
