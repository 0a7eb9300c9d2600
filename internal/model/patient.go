package model

type Gender string

const (
	GenderMale   Gender = "M"
	GenderFemale Gender = "F"
)

type Patient struct {
	ID                   int    `db:"patient_id" json:"patient_id"`
	Name                 string `db:"name" json:"name"`
	Gender               Gender `db:"gtype" json:"gtype"`
	Age                  int    `db:"age" json:"age"`
	Address              string `db:"address" json:"address"`
	NumberOfAppointments int    `db:"number_of_appts" json:"number_of_appts"`
}

type CreatePatientRequest struct {
	Name                 string `json:"name" validate:"required,personname"`
	Gender               string `json:"gtype" validate:"required,gender"`
	Age                  int    `json:"age" validate:"gte=0,lte=150"`
	Address              string `json:"address" validate:"max=256"`
	NumberOfAppointments int    `json:"number_of_appts" validate:"gte=0"`
}

// ToPatient builds the row for an already validated request.
func (r *CreatePatientRequest) ToPatient(id int) *Patient {
	return &Patient{
		ID:                   id,
		Name:                 r.Name,
		Gender:               Gender(r.Gender),
		Age:                  r.Age,
		Address:              r.Address,
		NumberOfAppointments: r.NumberOfAppointments,
	}
}
