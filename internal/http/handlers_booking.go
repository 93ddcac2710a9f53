package httpx

import (
	"context"
	"log/slog"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/medbook/medbook-ui/internal/domain/booking"
	apperrors "github.com/medbook/medbook-ui/internal/errors"
	"github.com/medbook/medbook-ui/internal/service"
)

// BookingController is the booking surface the role pages drive.
type BookingController interface {
	SearchDoctors(ctx context.Context, speciality string) ([]booking.Doctor, error)
	Doctor(ctx context.Context, id int64) (service.DoctorDetail, error)

	MyAppointments(ctx context.Context, status booking.AppointmentStatus) ([]booking.Appointment, error)
	Book(ctx context.Context, req service.BookingRequest) (booking.Appointment, error)
	CancelAppointment(ctx context.Context, id int64) error
	UpdateMyProfile(ctx context.Context, in booking.PatientProfileUpdate) (map[string]any, error)

	MySlots(ctx context.Context) ([]booking.Slot, error)
	CreateSlots(ctx context.Context, plan booking.SlotPlan) (service.SlotPlanResult, error)
	UpdateSlot(ctx context.Context, id int64, in booking.SlotUpdate) (booking.Slot, error)
	DeleteSlot(ctx context.Context, id int64) error
	DoctorAppointments(ctx context.Context, status booking.AppointmentStatus) ([]booking.Appointment, error)
	Approve(ctx context.Context, id int64) (booking.Appointment, error)
	Reject(ctx context.Context, id int64) (booking.Appointment, error)

	Appointments(ctx context.Context, f booking.AppointmentFilter) ([]booking.Appointment, error)
	DeleteAppointment(ctx context.Context, id int64) error
}

// BookingHandlers serves the doctor directory and the per-role pages.
type BookingHandlers struct {
	Svc    BookingController
	Logger *slog.Logger
}

func (h *BookingHandlers) logger() *slog.Logger {
	if h.Logger != nil {
		return h.Logger
	}
	return slog.Default()
}

// fail logs unexpected failures and writes the mapped response.
func (h *BookingHandlers) fail(w http.ResponseWriter, r *http.Request, op string, err error) {
	if !expectedFailure(err) {
		h.logger().WarnContext(r.Context(), op+" failed", "error", err)
	}
	writeServiceError(w, err)
}

// expectedFailure reports errors caused by the request or the caller's access.
func expectedFailure(err error) bool {
	return apperrors.IsNotFound(err) || apperrors.IsValidation(err) || apperrors.IsConflict(err) ||
		apperrors.IsUnauthorized(err) || apperrors.IsForbidden(err)
}

func pathID(w http.ResponseWriter, r *http.Request) (int64, bool) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil || id <= 0 {
		WriteError(w, ErrorParams{
			Code:    http.StatusBadRequest,
			ErrCode: string(apperrors.ErrCodeValidation),
			Err:     apperrors.ValidationField("id", "id must be a positive integer"),
		})
		return 0, false
	}
	return id, true
}

func queryStatus(w http.ResponseWriter, r *http.Request) (booking.AppointmentStatus, bool) {
	raw := strings.ToUpper(strings.TrimSpace(r.URL.Query().Get("status")))
	if raw == "" {
		return "", true
	}
	st, ok := booking.ParseStatus(raw)
	if !ok {
		WriteError(w, ErrorParams{
			Code:    http.StatusBadRequest,
			ErrCode: string(apperrors.ErrCodeValidation),
			Err:     apperrors.ValidationField("status", "unknown appointment status "+raw),
		})
		return "", false
	}
	return st, true
}

func nonNil[T any](in []T) []T {
	if in == nil {
		return []T{}
	}
	return in
}

// SearchDoctors handles GET /doctors?speciality=.
func (h *BookingHandlers) SearchDoctors(w http.ResponseWriter, r *http.Request) {
	doctors, err := h.Svc.SearchDoctors(r.Context(), r.URL.Query().Get("speciality"))
	if err != nil {
		h.fail(w, r, "search doctors", err)
		return
	}
	WriteJSON(w, http.StatusOK, map[string]any{"doctors": nonNil(doctors)})
}

// GetDoctor handles GET /doctors/{id}.
func (h *BookingHandlers) GetDoctor(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	detail, err := h.Svc.Doctor(r.Context(), id)
	if err != nil {
		h.fail(w, r, "get doctor", err)
		return
	}
	detail.Slots = nonNil(detail.Slots)
	WriteJSON(w, http.StatusOK, detail)
}

// PatientDashboard handles GET /patient.
func (h *BookingHandlers) PatientDashboard(w http.ResponseWriter, r *http.Request) {
	appts, err := h.Svc.MyAppointments(r.Context(), "")
	if err != nil {
		h.fail(w, r, "patient dashboard", err)
		return
	}
	h.dashboard(w, r, map[string]any{"appointments": nonNil(appts)})
}

// MyAppointments handles GET /me/appointments?status=.
func (h *BookingHandlers) MyAppointments(w http.ResponseWriter, r *http.Request) {
	st, ok := queryStatus(w, r)
	if !ok {
		return
	}
	appts, err := h.Svc.MyAppointments(r.Context(), st)
	if err != nil {
		h.fail(w, r, "list my appointments", err)
		return
	}
	WriteJSON(w, http.StatusOK, map[string]any{"appointments": nonNil(appts)})
}

// Book handles POST /me/appointments.
func (h *BookingHandlers) Book(w http.ResponseWriter, r *http.Request) {
	var req service.BookingRequest
	if !DecodeJSON(w, r, &req) {
		return
	}
	appt, err := h.Svc.Book(r.Context(), req)
	if err != nil {
		h.fail(w, r, "book appointment", err)
		return
	}
	WriteJSON(w, http.StatusCreated, appt)
}

// CancelAppointment handles DELETE /me/appointments/{id}.
func (h *BookingHandlers) CancelAppointment(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	if err := h.Svc.CancelAppointment(r.Context(), id); err != nil {
		h.fail(w, r, "cancel appointment", err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// MyProfile handles GET /me/profile from the resolved session profile.
func (h *BookingHandlers) MyProfile(w http.ResponseWriter, r *http.Request) {
	s, _ := GetSessionFromContext(r.Context())
	if s.Profile == nil {
		writeServiceError(w, &apperrors.AppError{Code: apperrors.ErrCodeUnavailable, Message: "profile is not loaded yet"})
		return
	}
	WriteJSON(w, http.StatusOK, s.Profile.Data)
}

// UpdateMyProfile handles PUT /me/profile.
func (h *BookingHandlers) UpdateMyProfile(w http.ResponseWriter, r *http.Request) {
	var in booking.PatientProfileUpdate
	if !DecodeJSON(w, r, &in) {
		return
	}
	out, err := h.Svc.UpdateMyProfile(r.Context(), in)
	if err != nil {
		h.fail(w, r, "update profile", err)
		return
	}
	WriteJSON(w, http.StatusOK, out)
}

// DoctorDashboard handles GET /doctor.
func (h *BookingHandlers) DoctorDashboard(w http.ResponseWriter, r *http.Request) {
	slots, err := h.Svc.MySlots(r.Context())
	if err != nil {
		h.fail(w, r, "doctor dashboard", err)
		return
	}
	pending, err := h.Svc.DoctorAppointments(r.Context(), booking.StatusPending)
	if err != nil {
		h.fail(w, r, "doctor dashboard", err)
		return
	}
	h.dashboard(w, r, map[string]any{"slots": nonNil(slots), "pending": nonNil(pending)})
}

// MySlots handles GET /doctor/slots.
func (h *BookingHandlers) MySlots(w http.ResponseWriter, r *http.Request) {
	slots, err := h.Svc.MySlots(r.Context())
	if err != nil {
		h.fail(w, r, "list slots", err)
		return
	}
	WriteJSON(w, http.StatusOK, map[string]any{"slots": nonNil(slots)})
}

// CreateSlots handles POST /doctor/slots with a slot plan.
func (h *BookingHandlers) CreateSlots(w http.ResponseWriter, r *http.Request) {
	var plan booking.SlotPlan
	if !DecodeJSON(w, r, &plan) {
		return
	}
	res, err := h.Svc.CreateSlots(r.Context(), plan)
	if err != nil {
		h.fail(w, r, "create slots", err)
		return
	}
	status := http.StatusCreated
	if len(res.Created) == 0 && len(res.Failed) > 0 {
		status = http.StatusBadGateway
	}
	WriteJSON(w, status, res)
}

// UpdateSlot handles PUT /doctor/slots/{id}.
func (h *BookingHandlers) UpdateSlot(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	var in booking.SlotUpdate
	if !DecodeJSON(w, r, &in) {
		return
	}
	slot, err := h.Svc.UpdateSlot(r.Context(), id, in)
	if err != nil {
		h.fail(w, r, "update slot", err)
		return
	}
	WriteJSON(w, http.StatusOK, slot)
}

// DeleteSlot handles DELETE /doctor/slots/{id}.
func (h *BookingHandlers) DeleteSlot(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	if err := h.Svc.DeleteSlot(r.Context(), id); err != nil {
		h.fail(w, r, "delete slot", err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// DoctorAppointments handles GET /doctor/appointments?status=.
func (h *BookingHandlers) DoctorAppointments(w http.ResponseWriter, r *http.Request) {
	st, ok := queryStatus(w, r)
	if !ok {
		return
	}
	appts, err := h.Svc.DoctorAppointments(r.Context(), st)
	if err != nil {
		h.fail(w, r, "list doctor appointments", err)
		return
	}
	WriteJSON(w, http.StatusOK, map[string]any{"appointments": nonNil(appts)})
}

// Approve handles POST /doctor/appointments/{id}/approve.
func (h *BookingHandlers) Approve(w http.ResponseWriter, r *http.Request) {
	h.decide(w, r, "approve appointment", h.Svc.Approve)
}

// Reject handles POST /doctor/appointments/{id}/reject.
func (h *BookingHandlers) Reject(w http.ResponseWriter, r *http.Request) {
	h.decide(w, r, "reject appointment", h.Svc.Reject)
}

func (h *BookingHandlers) decide(
	w http.ResponseWriter,
	r *http.Request,
	op string,
	fn func(context.Context, int64) (booking.Appointment, error),
) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	appt, err := fn(r.Context(), id)
	if err != nil {
		h.fail(w, r, op, err)
		return
	}
	WriteJSON(w, http.StatusOK, appt)
}

// AdminDashboard handles GET /admin.
func (h *BookingHandlers) AdminDashboard(w http.ResponseWriter, r *http.Request) {
	pending, err := h.Svc.Appointments(r.Context(), booking.AppointmentFilter{Status: booking.StatusPending})
	if err != nil {
		h.fail(w, r, "admin dashboard", err)
		return
	}
	h.dashboard(w, r, map[string]any{"pending": nonNil(pending)})
}

// Appointments handles GET /admin/appointments?status=&doctorId=.
func (h *BookingHandlers) Appointments(w http.ResponseWriter, r *http.Request) {
	st, ok := queryStatus(w, r)
	if !ok {
		return
	}
	f := booking.AppointmentFilter{Status: st}
	if raw := strings.TrimSpace(r.URL.Query().Get("doctorId")); raw != "" {
		id, err := strconv.ParseInt(raw, 10, 64)
		if err != nil || id <= 0 {
			WriteError(w, ErrorParams{
				Code:    http.StatusBadRequest,
				ErrCode: string(apperrors.ErrCodeValidation),
				Err:     apperrors.ValidationField("doctorId", "doctorId must be a positive integer"),
			})
			return
		}
		f.DoctorID = id
	}
	appts, err := h.Svc.Appointments(r.Context(), f)
	if err != nil {
		h.fail(w, r, "list appointments", err)
		return
	}
	WriteJSON(w, http.StatusOK, map[string]any{"appointments": nonNil(appts)})
}

// DeleteAppointment handles DELETE /admin/appointments/{id}.
func (h *BookingHandlers) DeleteAppointment(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	if err := h.Svc.DeleteAppointment(r.Context(), id); err != nil {
		h.fail(w, r, "delete appointment", err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// dashboard merges the signed-in user's summary into a page payload.
func (h *BookingHandlers) dashboard(w http.ResponseWriter, r *http.Request, body map[string]any) {
	s, _ := GetSessionFromContext(r.Context())
	body["session"] = sessionStatus(s)
	WriteJSON(w, http.StatusOK, body)
}
