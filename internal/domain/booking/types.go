// Package booking holds the data shapes exchanged with the booking backend
// and the form DTOs validated before any call is made.
package booking

import (
	"bytes"
	"encoding/json"
	"fmt"
	"time"
)

// LocalDateTimeLayout is the zone-less timestamp format the backend speaks.
const LocalDateTimeLayout = "2006-01-02T15:04:05"

var localDateTimeLayouts = []string{LocalDateTimeLayout, "2006-01-02T15:04", time.RFC3339}

// LocalDateTime is a wall-clock timestamp without a zone.
type LocalDateTime struct {
	time.Time
}

// NewLocalDateTime strips the location from t.
func NewLocalDateTime(t time.Time) LocalDateTime {
	return LocalDateTime{Time: time.Date(t.Year(), t.Month(), t.Day(), t.Hour(), t.Minute(), t.Second(), 0, time.UTC)}
}

func (t LocalDateTime) MarshalJSON() ([]byte, error) {
	if t.IsZero() {
		return []byte("null"), nil
	}
	return json.Marshal(t.Format(LocalDateTimeLayout))
}

func (t *LocalDateTime) UnmarshalJSON(b []byte) error {
	if bytes.Equal(b, []byte("null")) {
		*t = LocalDateTime{}
		return nil
	}
	var s string
	if err := json.Unmarshal(b, &s); err != nil {
		return fmt.Errorf("local date time: %w", err)
	}
	for _, layout := range localDateTimeLayouts {
		if parsed, err := time.Parse(layout, s); err == nil {
			*t = NewLocalDateTime(parsed)
			return nil
		}
	}
	return fmt.Errorf("local date time: unsupported format %q", s)
}

// AppointmentStatus is the backend-owned lifecycle of an appointment.
type AppointmentStatus string

const (
	StatusPending   AppointmentStatus = "PENDING"
	StatusApproved  AppointmentStatus = "APPROVED"
	StatusRejected  AppointmentStatus = "REJECTED"
	StatusCancelled AppointmentStatus = "CANCELLED"
)

// ParseStatus returns the canonical status for s, or false.
func ParseStatus(s string) (AppointmentStatus, bool) {
	switch st := AppointmentStatus(s); st {
	case StatusPending, StatusApproved, StatusRejected, StatusCancelled:
		return st, true
	default:
		return "", false
	}
}

// Cancellable reports whether a patient may still cancel the appointment.
func (s AppointmentStatus) Cancellable() bool {
	return s == StatusPending || s == StatusApproved
}

type Doctor struct {
	ID         int64  `json:"id"`
	FirstName  string `json:"firstName,omitempty"`
	LastName   string `json:"lastName,omitempty"`
	Email      string `json:"email,omitempty"`
	Speciality string `json:"speciality,omitempty"`
}

type Slot struct {
	ID        int64         `json:"id"`
	DoctorID  int64         `json:"doctorId,omitempty"`
	StartTime LocalDateTime `json:"startTime"`
	EndTime   LocalDateTime `json:"endTime"`
	Location  string        `json:"location,omitempty"`
	Booked    bool          `json:"booked"`
}

type Appointment struct {
	ID        int64             `json:"id"`
	PatientID int64             `json:"patientId,omitempty"`
	DoctorID  int64             `json:"doctorId,omitempty"`
	SlotID    int64             `json:"slotId,omitempty"`
	Slot      *Slot             `json:"slot,omitempty"`
	Status    AppointmentStatus `json:"status"`
	Notes     string            `json:"notes,omitempty"`
	CreatedAt LocalDateTime     `json:"createdAt"`
}

// NewSlot is the body of POST /api/appointmentSlots.
type NewSlot struct {
	DoctorID  int64         `json:"doctorId"`
	StartTime LocalDateTime `json:"startTime"`
	EndTime   LocalDateTime `json:"endTime"`
	Location  string        `json:"location,omitempty"`
}

// SlotUpdate is the body of PUT /api/appointmentSlots/{id}.
type SlotUpdate struct {
	StartTime LocalDateTime `json:"startTime"`
	EndTime   LocalDateTime `json:"endTime"`
	Location  string        `json:"location,omitempty"`
	Booked    bool          `json:"booked"`
}

// NewAppointment is the body of POST /api/appointments.
type NewAppointment struct {
	SlotID    int64  `json:"slotId"`
	PatientID int64  `json:"patientId"`
	DoctorID  int64  `json:"doctorId"`
	Notes     string `json:"notes,omitempty"`
}

// AppointmentFilter narrows an appointment listing. Zero values mean "any".
type AppointmentFilter struct {
	PatientID int64
	DoctorID  int64
	Status    AppointmentStatus
}
