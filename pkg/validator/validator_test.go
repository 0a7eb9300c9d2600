package validator

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "github.com/the1323/cs166-project-the033-hbai013/pkg/errors"
)

func TestIsDate(t *testing.T) {
	assert.True(t, IsDate("2018-10-20"))
	assert.True(t, IsDate("2024-02-29"))
	assert.False(t, IsDate("2023-02-29"))
	assert.False(t, IsDate("2018/10/20"))
	assert.False(t, IsDate("20-10-2018"))
	assert.False(t, IsDate(""))
}

func TestIsTimeSlot(t *testing.T) {
	cases := map[string]bool{
		"09:00-10:00": true,
		"00:00-23:59": true,
		"10:00-09:00": false,
		"10:00-10:00": false,
		"9:00-10:00":  false,
		"24:00-25:00": false,
		"09:60-10:00": false,
		"09:00 10:00": false,
	}
	for in, want := range cases {
		assert.Equal(t, want, IsTimeSlot(in), in)
	}
}

func TestIsStatusAndGender(t *testing.T) {
	for _, s := range []string{"AV", "AC", "WL", "PA"} {
		assert.True(t, IsStatus(s))
	}
	assert.False(t, IsStatus("av"))
	assert.False(t, IsStatus("XX"))

	assert.True(t, IsGender("M"))
	assert.True(t, IsGender("F"))
	assert.False(t, IsGender("m"))
	assert.False(t, IsGender("X"))
}

func TestIsName(t *testing.T) {
	assert.True(t, IsName("Gregory House"))
	assert.True(t, IsName("Anne-Marie O'Neil"))
	assert.True(t, IsName("José"))
	assert.False(t, IsName(""))
	assert.False(t, IsName(" leading"))
	assert.False(t, IsName("R2D2"))
	assert.False(t, IsName("x'; DROP TABLE patient;--"))
}

type request struct {
	Name   string `json:"name" validate:"required,personname"`
	Date   string `json:"adate" validate:"required,apptdate"`
	Slot   string `json:"time_slot" validate:"required,timeslot"`
	Age    int    `json:"age" validate:"gte=0,lte=150"`
	Gender string `json:"gtype" validate:"required,gender"`
}

func TestValidateStruct(t *testing.T) {
	v := New()

	ok := request{Name: "Ada", Date: "2020-01-01", Slot: "08:00-09:00", Age: 30, Gender: "F"}
	require.NoError(t, v.Validate(ok))

	bad := request{Name: "Ada", Date: "2020-13-01", Slot: "08:00-09:00", Age: 200, Gender: "Q"}
	err := v.Validate(bad)
	require.Error(t, err)
	assert.True(t, apperrors.Is(err, apperrors.ErrBadRequest))
	assert.Contains(t, err.Error(), "adate must be a date in YYYY-MM-DD form")
	assert.Contains(t, err.Error(), "age must be at most 150")
	assert.Contains(t, err.Error(), "gtype must be M or F")
}

func TestValidateField(t *testing.T) {
	v := New()

	assert.NoError(t, v.ValidateField("doctor id", 5, "gt=0"))

	err := v.ValidateField("doctor id", 0, "gt=0")
	require.Error(t, err)
	assert.Equal(t, "doctor id must be greater than 0", err.Error())

	err = v.ValidateField("status", "ZZ", "apptstatus")
	require.Error(t, err)
	assert.Equal(t, "status must be one of AV, AC, WL, PA", err.Error())
}

func TestParseDate(t *testing.T) {
	d, err := ParseDate(" 2018-10-20 ")
	require.NoError(t, err)
	assert.Equal(t, 2018, d.Year())

	_, err = ParseDate("yesterday")
	assert.True(t, apperrors.Is(err, apperrors.ErrBadRequest))
}
