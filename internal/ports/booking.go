package ports

import (
	"context"

	"github.com/medbook/medbook-ui/internal/domain/booking"
)

// BookingAPI is the slice of the backend REST API the client consumes.
// Every call takes the bearer token; an empty token sends an anonymous request.
type BookingAPI interface {
	SearchDoctors(ctx context.Context, token, speciality string) ([]booking.Doctor, error)
	GetDoctor(ctx context.Context, token string, id int64) (booking.Doctor, error)

	ListSlots(ctx context.Context, token string, doctorID int64, availableOnly bool) ([]booking.Slot, error)
	EarliestSlot(ctx context.Context, token string, doctorID int64) (*booking.Slot, error)
	CreateSlot(ctx context.Context, token string, in booking.NewSlot) (booking.Slot, error)
	UpdateSlot(ctx context.Context, token string, id int64, in booking.SlotUpdate) (booking.Slot, error)
	DeleteSlot(ctx context.Context, token string, id int64) error

	ListAppointments(ctx context.Context, token string, f booking.AppointmentFilter) ([]booking.Appointment, error)
	CreateAppointment(ctx context.Context, token string, in booking.NewAppointment) (booking.Appointment, error)
	UpdateAppointmentStatus(ctx context.Context, token string, id int64, status booking.AppointmentStatus) (booking.Appointment, error)
	DeleteAppointment(ctx context.Context, token string, id int64) error

	UpdatePatientProfile(ctx context.Context, token string, in booking.PatientProfileUpdate) (map[string]any, error)
}
