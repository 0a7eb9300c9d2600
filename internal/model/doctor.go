package model

type Doctor struct {
	ID           int    `db:"doctor_id" json:"doctor_id"`
	Name         string `db:"name" json:"name"`
	Specialty    string `db:"specialty" json:"specialty"`
	DepartmentID int    `db:"did" json:"did"`
}

type CreateDoctorRequest struct {
	Name         string `json:"name" validate:"required,personname"`
	Specialty    string `json:"specialty" validate:"required,max=24"`
	DepartmentID int    `json:"did" validate:"gt=0"`
}

type Department struct {
	ID         int    `db:"dept_id" json:"dept_id"`
	Name       string `db:"name" json:"name"`
	HospitalID int    `db:"hid" json:"hid"`
}
