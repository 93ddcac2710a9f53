package backend

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strings"

	"github.com/medbook/medbook-ui/internal/domain/booking"
)

const (
	doctorsPath      = "/api/doctors"
	slotsPath        = "/api/appointmentSlots"
	appointmentsPath = "/api/appointments"
	patientMePath    = "/api/patients/me"
)

// SearchDoctors lists doctors by speciality. A blank query returns nothing without a call.
func (c *Client) SearchDoctors(ctx context.Context, token, speciality string) ([]booking.Doctor, error) {
	q := strings.TrimSpace(speciality)
	if q == "" {
		return []booking.Doctor{}, nil
	}
	var out []booking.Doctor
	err := c.do(ctx, request{
		method: http.MethodGet,
		path:   doctorsPath + "/speciality/" + url.PathEscape(q),
		token:  token,
		out:    &out,
	})
	if err != nil {
		return nil, err
	}
	return nonNil(out), nil
}

func (c *Client) GetDoctor(ctx context.Context, token string, id int64) (booking.Doctor, error) {
	var out booking.Doctor
	err := c.do(ctx, request{
		method: http.MethodGet,
		path:   fmt.Sprintf("%s/%d", doctorsPath, id),
		token:  token,
		out:    &out,
	})
	return out, err
}

// ListSlots returns a doctor's slots, optionally only the unbooked ones.
func (c *Client) ListSlots(ctx context.Context, token string, doctorID int64, availableOnly bool) ([]booking.Slot, error) {
	path := fmt.Sprintf("%s/by-doctor/%d", slotsPath, doctorID)
	if availableOnly {
		path += "/available"
	}
	var out []booking.Slot
	if err := c.do(ctx, request{method: http.MethodGet, path: path, token: token, out: &out}); err != nil {
		return nil, err
	}
	return nonNil(out), nil
}

// EarliestSlot returns the first available slot, or nil when the doctor has none.
func (c *Client) EarliestSlot(ctx context.Context, token string, doctorID int64) (*booking.Slot, error) {
	var out []booking.Slot
	err := c.do(ctx, request{
		method: http.MethodGet,
		path:   fmt.Sprintf("%s/by-doctor/%d/available/sorted", slotsPath, doctorID),
		token:  token,
		out:    &out,
	})
	if err != nil || len(out) == 0 {
		return nil, err
	}
	return &out[0], nil
}

func (c *Client) CreateSlot(ctx context.Context, token string, in booking.NewSlot) (booking.Slot, error) {
	var out booking.Slot
	err := c.do(ctx, request{method: http.MethodPost, path: slotsPath, token: token, body: in, out: &out})
	return out, err
}

func (c *Client) UpdateSlot(ctx context.Context, token string, id int64, in booking.SlotUpdate) (booking.Slot, error) {
	var out booking.Slot
	err := c.do(ctx, request{
		method: http.MethodPut,
		path:   fmt.Sprintf("%s/%d", slotsPath, id),
		token:  token,
		body:   in,
		out:    &out,
	})
	return out, err
}

func (c *Client) DeleteSlot(ctx context.Context, token string, id int64) error {
	return c.do(ctx, request{method: http.MethodDelete, path: fmt.Sprintf("%s/%d", slotsPath, id), token: token})
}

// ListAppointments picks the narrowest listing endpoint for f.
// The patient listing has no status variant, so status is applied locally there.
func (c *Client) ListAppointments(ctx context.Context, token string, f booking.AppointmentFilter) ([]booking.Appointment, error) {
	path, localStatus := appointmentListPath(f)
	var out []booking.Appointment
	if err := c.do(ctx, request{method: http.MethodGet, path: path, token: token, out: &out}); err != nil {
		return nil, err
	}
	if localStatus == "" {
		return nonNil(out), nil
	}
	filtered := make([]booking.Appointment, 0, len(out))
	for _, a := range out {
		if a.Status == localStatus {
			filtered = append(filtered, a)
		}
	}
	return filtered, nil
}

func appointmentListPath(f booking.AppointmentFilter) (string, booking.AppointmentStatus) {
	status := url.PathEscape(string(f.Status))
	switch {
	case f.PatientID != 0:
		return fmt.Sprintf("%s/by-patient/%d", appointmentsPath, f.PatientID), f.Status
	case f.DoctorID != 0 && f.Status != "":
		return fmt.Sprintf("%s/by-doctor/%d/status/%s", appointmentsPath, f.DoctorID, status), ""
	case f.DoctorID != 0:
		return fmt.Sprintf("%s/by-doctor/%d", appointmentsPath, f.DoctorID), ""
	case f.Status != "":
		return appointmentsPath + "/by-status/" + status, ""
	default:
		return appointmentsPath, ""
	}
}

func (c *Client) CreateAppointment(ctx context.Context, token string, in booking.NewAppointment) (booking.Appointment, error) {
	var out booking.Appointment
	err := c.do(ctx, request{method: http.MethodPost, path: appointmentsPath, token: token, body: in, out: &out})
	return out, err
}

// UpdateAppointmentStatus moves an appointment to status; the backend owns the transition rules.
func (c *Client) UpdateAppointmentStatus(ctx context.Context, token string, id int64, status booking.AppointmentStatus) (booking.Appointment, error) {
	var out booking.Appointment
	err := c.do(ctx, request{
		method: http.MethodPut,
		path:   fmt.Sprintf("%s/%d?status=%s", appointmentsPath, id, url.QueryEscape(string(status))),
		token:  token,
		out:    &out,
	})
	return out, err
}

func (c *Client) DeleteAppointment(ctx context.Context, token string, id int64) error {
	return c.do(ctx, request{method: http.MethodDelete, path: fmt.Sprintf("%s/%d", appointmentsPath, id), token: token})
}

// UpdatePatientProfile writes the patient's medical details and returns the updated profile.
func (c *Client) UpdatePatientProfile(ctx context.Context, token string, in booking.PatientProfileUpdate) (map[string]any, error) {
	var out map[string]any
	err := c.do(ctx, request{
		method:    http.MethodPut,
		path:      patientMePath,
		token:     token,
		body:      in,
		out:       &out,
		useNumber: true,
	})
	if err != nil {
		return nil, err
	}
	if out == nil {
		out = map[string]any{}
	}
	return out, nil
}

func nonNil[T any](s []T) []T {
	if s == nil {
		return []T{}
	}
	return s
}
