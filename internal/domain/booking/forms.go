package booking

import (
	"errors"
	"fmt"
	"strings"
	"time"

	validation "github.com/go-ozzo/ozzo-validation"
	"github.com/go-ozzo/ozzo-validation/is"
)

const (
	minPasswordLength = 6
	maxSlotSegments   = 24 * 60
	clockLayout       = "15:04"
	dateLayout        = "2006-01-02"
)

// ErrEndBeforeStart is returned when a slot window does not move forward in time.
var ErrEndBeforeStart = errors.New("end time must be after start time")

// Registration is the self-service signup form. Only patients may sign up.
type Registration struct {
	FirstName       string `json:"firstName"`
	LastName        string `json:"lastName"`
	Email           string `json:"email"`
	Password        string `json:"password"`
	ConfirmPassword string `json:"confirmPassword,omitempty"`
	Role            string `json:"role"`
}

// Normalize trims inputs and pins the role to PATIENT when omitted.
func (r *Registration) Normalize() {
	r.FirstName = strings.TrimSpace(r.FirstName)
	r.LastName = strings.TrimSpace(r.LastName)
	r.Email = strings.TrimSpace(r.Email)
	if r.Role = strings.ToUpper(strings.TrimSpace(r.Role)); r.Role == "" {
		r.Role = "PATIENT"
	}
}

// Validate checks the form locally; the backend is never called for invalid input.
func (r Registration) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.FirstName, validation.Required),
		validation.Field(&r.LastName, validation.Required),
		validation.Field(&r.Email, validation.Required, is.Email),
		validation.Field(&r.Password, validation.Required, validation.Length(minPasswordLength, 0)),
		validation.Field(&r.ConfirmPassword,
			validation.Required,
			validation.By(func(v interface{}) error {
				if s, _ := v.(string); s != r.Password {
					return errors.New("passwords do not match")
				}
				return nil
			}),
		),
		validation.Field(&r.Role, validation.Required, validation.In("PATIENT").Error("only patients can sign up")),
	)
}

// PatientProfileUpdate is the body of PUT /api/patients/me.
type PatientProfileUpdate struct {
	DateOfBirth string `json:"dateOfBirth,omitempty"`
	BloodType   string `json:"bloodType,omitempty"`
	Allergies   string `json:"allergies,omitempty"`
	InsuranceID string `json:"insuranceId,omitempty"`
}

var bloodTypes = []interface{}{"A+", "A-", "B+", "B-", "AB+", "AB-", "O+", "O-"}

func (p PatientProfileUpdate) Validate() error {
	return validation.ValidateStruct(&p,
		validation.Field(&p.DateOfBirth, validation.Date(dateLayout)),
		validation.Field(&p.BloodType, validation.In(bloodTypes...)),
		validation.Field(&p.Allergies, validation.Length(0, 500)),
		validation.Field(&p.InsuranceID, validation.Length(0, 64)),
	)
}

// SlotPlan describes a working window a doctor wants split into equal slots.
type SlotPlan struct {
	Date            string `json:"date"`
	Start           string `json:"start"`
	End             string `json:"end"`
	DurationMinutes int    `json:"durationMinutes"`
	Location        string `json:"location,omitempty"`
}

// SlotWindow is one planned segment.
type SlotWindow struct {
	Start LocalDateTime `json:"start"`
	End   LocalDateTime `json:"end"`
}

func (p SlotPlan) Validate() error {
	return validation.ValidateStruct(&p,
		validation.Field(&p.Date, validation.Required, validation.Date(dateLayout)),
		validation.Field(&p.Start, validation.Required, validation.Date(clockLayout)),
		validation.Field(&p.End, validation.Required, validation.Date(clockLayout)),
		validation.Field(&p.DurationMinutes, validation.Required, validation.Min(1)),
	)
}

// Segments splits the window into back-to-back slots of DurationMinutes.
// A trailing remainder shorter than the duration is dropped.
func (p SlotPlan) Segments() ([]SlotWindow, error) {
	if err := p.Validate(); err != nil {
		return nil, err
	}
	start, err := time.Parse(dateLayout+" "+clockLayout, p.Date+" "+p.Start)
	if err != nil {
		return nil, fmt.Errorf("parse start: %w", err)
	}
	end, err := time.Parse(dateLayout+" "+clockLayout, p.Date+" "+p.End)
	if err != nil {
		return nil, fmt.Errorf("parse end: %w", err)
	}
	if !end.After(start) {
		return nil, ErrEndBeforeStart
	}

	step := time.Duration(p.DurationMinutes) * time.Minute
	var out []SlotWindow
	for t := start; t.Before(end) && len(out) < maxSlotSegments; t = t.Add(step) {
		next := t.Add(step)
		if next.After(end) {
			break
		}
		out = append(out, SlotWindow{Start: NewLocalDateTime(t), End: NewLocalDateTime(next)})
	}
	return out, nil
}
