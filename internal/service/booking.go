package service

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"

	"golang.org/x/sync/errgroup"

	domainauth "github.com/medbook/medbook-ui/internal/domain/auth"
	"github.com/medbook/medbook-ui/internal/domain/booking"
	apperrors "github.com/medbook/medbook-ui/internal/errors"
	"github.com/medbook/medbook-ui/internal/ports"
)

// SessionProvider exposes the current session and lets callers report a rejected token.
// *AuthService implements it.
type SessionProvider interface {
	Session() domainauth.Session
	Invalidate(ctx context.Context, token string) bool
}

// BookingServiceOptions groups dependencies for BookingService.
type BookingServiceOptions struct {
	API      ports.BookingAPI
	Sessions SessionProvider
	Logger   *slog.Logger // optional
}

// BookingService issues booking calls on behalf of the signed-in principal.
// It holds no booking state; every call goes to the backend.
type BookingService struct {
	api      ports.BookingAPI
	sessions SessionProvider
	logger   *slog.Logger
}

// NewBookingService constructs a new BookingService.
func NewBookingService(opts BookingServiceOptions) *BookingService {
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return &BookingService{
		api:      opts.API,
		sessions: opts.Sessions,
		logger:   logger.With("component", "booking"),
	}
}

// DoctorDetail is a doctor with the slots still open for booking.
type DoctorDetail struct {
	Doctor   booking.Doctor `json:"doctor"`
	Slots    []booking.Slot `json:"slots"`
	Earliest *booking.Slot  `json:"earliest,omitempty"`
}

// BookingRequest is what a patient submits to book a slot.
type BookingRequest struct {
	SlotID   int64  `json:"slotId"`
	DoctorID int64  `json:"doctorId"`
	Notes    string `json:"notes,omitempty"`
}

// SlotFailure is a planned segment the backend refused.
type SlotFailure struct {
	Window booking.SlotWindow `json:"window"`
	Error  string             `json:"error"`
}

// SlotPlanResult reports the outcome of creating slots from a plan.
type SlotPlanResult struct {
	Created []booking.Slot `json:"created"`
	Failed  []SlotFailure  `json:"failed"`
}

// errNoProfile is returned when an operation needs the principal's id before it is known.
func errNoProfile() error {
	return &apperrors.AppError{Code: apperrors.ErrCodeUnavailable, Message: "profile is not loaded yet"}
}

// call runs fn with the current token and tears the session down when the backend
// rejects that token.
func (s *BookingService) call(ctx context.Context, fn func(token string) error) error {
	token := s.sessions.Session().Token
	err := fn(token)
	if err != nil && token != "" && apperrors.IsUnauthorized(err) {
		if s.sessions.Invalidate(ctx, token) {
			s.logger.InfoContext(ctx, "backend rejected credential, session cleared")
		}
	}
	return err
}

func (s *BookingService) principalID() (int64, error) {
	sess := s.sessions.Session()
	raw := sess.Profile.ID()
	if raw == "" {
		return 0, errNoProfile()
	}
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		return 0, apperrors.Wrapf(err, apperrors.ErrCodeInternal, "profile id %q", raw)
	}
	return id, nil
}

// SearchDoctors lists doctors by speciality. Anonymous callers are allowed.
func (s *BookingService) SearchDoctors(ctx context.Context, speciality string) ([]booking.Doctor, error) {
	var out []booking.Doctor
	err := s.call(ctx, func(token string) error {
		var err error
		out, err = s.api.SearchDoctors(ctx, token, speciality)
		return err
	})
	return out, err
}

// Doctor loads a doctor and their open slots in parallel.
func (s *BookingService) Doctor(ctx context.Context, id int64) (DoctorDetail, error) {
	var detail DoctorDetail
	err := s.call(ctx, func(token string) error {
		g, gctx := errgroup.WithContext(ctx)
		g.Go(func() error {
			d, err := s.api.GetDoctor(gctx, token, id)
			detail.Doctor = d
			return err
		})
		g.Go(func() error {
			slots, err := s.api.ListSlots(gctx, token, id, true)
			detail.Slots = slots
			return err
		})
		g.Go(func() error {
			earliest, err := s.api.EarliestSlot(gctx, token, id)
			detail.Earliest = earliest
			return err
		})
		return g.Wait()
	})
	if err != nil {
		return DoctorDetail{}, err
	}
	return detail, nil
}

// MyAppointments lists the signed-in patient's appointments, optionally by status.
func (s *BookingService) MyAppointments(ctx context.Context, status booking.AppointmentStatus) ([]booking.Appointment, error) {
	patientID, err := s.principalID()
	if err != nil {
		return nil, err
	}
	return s.listAppointments(ctx, booking.AppointmentFilter{PatientID: patientID, Status: status})
}

// Book books a slot for the signed-in patient.
func (s *BookingService) Book(ctx context.Context, req BookingRequest) (booking.Appointment, error) {
	if req.SlotID <= 0 || req.DoctorID <= 0 {
		return booking.Appointment{}, apperrors.Validation("slotId and doctorId are required")
	}
	patientID, err := s.principalID()
	if err != nil {
		return booking.Appointment{}, err
	}
	var out booking.Appointment
	err = s.call(ctx, func(token string) error {
		var err error
		out, err = s.api.CreateAppointment(ctx, token, booking.NewAppointment{
			SlotID:    req.SlotID,
			PatientID: patientID,
			DoctorID:  req.DoctorID,
			Notes:     req.Notes,
		})
		return err
	})
	return out, err
}

// CancelAppointment cancels one of the patient's appointments.
func (s *BookingService) CancelAppointment(ctx context.Context, id int64) error {
	return s.call(ctx, func(token string) error {
		return s.api.DeleteAppointment(ctx, token, id)
	})
}

// UpdateMyProfile validates and saves the patient's medical details.
func (s *BookingService) UpdateMyProfile(ctx context.Context, in booking.PatientProfileUpdate) (map[string]any, error) {
	if err := in.Validate(); err != nil {
		return nil, err
	}
	var out map[string]any
	err := s.call(ctx, func(token string) error {
		var err error
		out, err = s.api.UpdatePatientProfile(ctx, token, in)
		return err
	})
	return out, err
}

// MySlots lists the signed-in doctor's slots.
func (s *BookingService) MySlots(ctx context.Context) ([]booking.Slot, error) {
	doctorID, err := s.principalID()
	if err != nil {
		return nil, err
	}
	var out []booking.Slot
	err = s.call(ctx, func(token string) error {
		var err error
		out, err = s.api.ListSlots(ctx, token, doctorID, false)
		return err
	})
	return out, err
}

// CreateSlots splits plan into segments and creates one slot per segment.
// Segments the backend refuses are reported, not fatal; a rejected credential stops the run.
func (s *BookingService) CreateSlots(ctx context.Context, plan booking.SlotPlan) (SlotPlanResult, error) {
	windows, err := plan.Segments()
	if err != nil {
		return SlotPlanResult{}, err
	}
	doctorID, err := s.principalID()
	if err != nil {
		return SlotPlanResult{}, err
	}

	res := SlotPlanResult{Created: []booking.Slot{}, Failed: []SlotFailure{}}
	for _, w := range windows {
		var slot booking.Slot
		err := s.call(ctx, func(token string) error {
			var err error
			slot, err = s.api.CreateSlot(ctx, token, booking.NewSlot{
				DoctorID:  doctorID,
				StartTime: w.Start,
				EndTime:   w.End,
				Location:  plan.Location,
			})
			return err
		})
		switch {
		case err == nil:
			res.Created = append(res.Created, slot)
		case apperrors.IsUnauthorized(err), ctx.Err() != nil:
			return res, err
		default:
			res.Failed = append(res.Failed, SlotFailure{Window: w, Error: err.Error()})
		}
	}
	if len(res.Failed) > 0 {
		s.logger.WarnContext(ctx, "some planned slots were not created",
			"created", len(res.Created), "failed", len(res.Failed))
	}
	return res, nil
}

// UpdateSlot edits one of the doctor's slots. Booked slots are refused without a call.
func (s *BookingService) UpdateSlot(ctx context.Context, id int64, in booking.SlotUpdate) (booking.Slot, error) {
	if _, err := s.ownUnbookedSlot(ctx, id); err != nil {
		return booking.Slot{}, err
	}
	var out booking.Slot
	err := s.call(ctx, func(token string) error {
		var err error
		out, err = s.api.UpdateSlot(ctx, token, id, in)
		return err
	})
	return out, err
}

// DeleteSlot removes one of the doctor's slots. Booked slots are refused without a call.
func (s *BookingService) DeleteSlot(ctx context.Context, id int64) error {
	if _, err := s.ownUnbookedSlot(ctx, id); err != nil {
		return err
	}
	return s.call(ctx, func(token string) error {
		return s.api.DeleteSlot(ctx, token, id)
	})
}

func (s *BookingService) ownUnbookedSlot(ctx context.Context, id int64) (booking.Slot, error) {
	slots, err := s.MySlots(ctx)
	if err != nil {
		return booking.Slot{}, err
	}
	for _, slot := range slots {
		if slot.ID != id {
			continue
		}
		if slot.Booked {
			return booking.Slot{}, apperrors.FromStatus(http.StatusConflict, "booked slots cannot be changed")
		}
		return slot, nil
	}
	return booking.Slot{}, apperrors.NotFoundf("slot %d not found", id)
}

// DoctorAppointments lists the signed-in doctor's appointments, optionally by status.
func (s *BookingService) DoctorAppointments(ctx context.Context, status booking.AppointmentStatus) ([]booking.Appointment, error) {
	doctorID, err := s.principalID()
	if err != nil {
		return nil, err
	}
	return s.listAppointments(ctx, booking.AppointmentFilter{DoctorID: doctorID, Status: status})
}

// Approve marks a pending appointment approved.
func (s *BookingService) Approve(ctx context.Context, id int64) (booking.Appointment, error) {
	return s.setStatus(ctx, id, booking.StatusApproved)
}

// Reject marks a pending appointment rejected.
func (s *BookingService) Reject(ctx context.Context, id int64) (booking.Appointment, error) {
	return s.setStatus(ctx, id, booking.StatusRejected)
}

func (s *BookingService) setStatus(ctx context.Context, id int64, status booking.AppointmentStatus) (booking.Appointment, error) {
	var out booking.Appointment
	err := s.call(ctx, func(token string) error {
		var err error
		out, err = s.api.UpdateAppointmentStatus(ctx, token, id, status)
		if err != nil {
			return fmt.Errorf("set appointment %d %s: %w", id, status, err)
		}
		return nil
	})
	return out, err
}

// Appointments lists appointments for oversight.
func (s *BookingService) Appointments(ctx context.Context, f booking.AppointmentFilter) ([]booking.Appointment, error) {
	return s.listAppointments(ctx, f)
}

// DeleteAppointment removes any appointment.
func (s *BookingService) DeleteAppointment(ctx context.Context, id int64) error {
	return s.CancelAppointment(ctx, id)
}

func (s *BookingService) listAppointments(ctx context.Context, f booking.AppointmentFilter) ([]booking.Appointment, error) {
	var out []booking.Appointment
	err := s.call(ctx, func(token string) error {
		var err error
		out, err = s.api.ListAppointments(ctx, token, f)
		return err
	})
	return out, err
}
