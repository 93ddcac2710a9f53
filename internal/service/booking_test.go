package service

import (
	"context"
	"net/http"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	domainauth "github.com/medbook/medbook-ui/internal/domain/auth"
	"github.com/medbook/medbook-ui/internal/domain/booking"
	apperrors "github.com/medbook/medbook-ui/internal/errors"
	"github.com/medbook/medbook-ui/internal/mocks"
)

type fakeSessions struct {
	mu          sync.Mutex
	sess        domainauth.Session
	invalidated []string
}

func (f *fakeSessions) Session() domainauth.Session {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.sess
}

func (f *fakeSessions) Invalidate(_ context.Context, token string) bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.sess.Token != token {
		return false
	}
	f.invalidated = append(f.invalidated, token)
	f.sess = domainauth.Session{}
	return true
}

func signedIn(role domainauth.Role, id any) *fakeSessions {
	return &fakeSessions{sess: domainauth.Session{
		Token:   "tok",
		Role:    role,
		Profile: &domainauth.Profile{Data: map[string]any{"id": id}},
	}}
}

func newBookingService(t *testing.T, sessions SessionProvider) (*BookingService, *mocks.MockBookingAPI) {
	t.Helper()
	ctrl := gomock.NewController(t)
	api := mocks.NewMockBookingAPI(ctrl)
	return NewBookingService(BookingServiceOptions{API: api, Sessions: sessions}), api
}

func slotAt(id int64, hour int, booked bool) booking.Slot {
	start := time.Date(2026, 3, 2, hour, 0, 0, 0, time.UTC)
	return booking.Slot{
		ID:        id,
		StartTime: booking.NewLocalDateTime(start),
		EndTime:   booking.NewLocalDateTime(start.Add(30 * time.Minute)),
		Booked:    booked,
	}
}

func TestBookingService_SearchDoctorsAnonymous(t *testing.T) {
	svc, api := newBookingService(t, &fakeSessions{})
	api.EXPECT().SearchDoctors(gomock.Any(), "", "cardiology").Return([]booking.Doctor{{ID: 1}}, nil)

	got, err := svc.SearchDoctors(context.Background(), "cardiology")
	require.NoError(t, err)
	assert.Len(t, got, 1)
}

func TestBookingService_Doctor(t *testing.T) {
	svc, api := newBookingService(t, signedIn(domainauth.RolePatient, "5"))
	earliest := slotAt(3, 9, false)
	api.EXPECT().GetDoctor(gomock.Any(), "tok", int64(2)).Return(booking.Doctor{ID: 2, LastName: "Grey"}, nil)
	api.EXPECT().ListSlots(gomock.Any(), "tok", int64(2), true).Return([]booking.Slot{earliest, slotAt(4, 10, false)}, nil)
	api.EXPECT().EarliestSlot(gomock.Any(), "tok", int64(2)).Return(&earliest, nil)

	got, err := svc.Doctor(context.Background(), 2)
	require.NoError(t, err)
	assert.Equal(t, "Grey", got.Doctor.LastName)
	assert.Len(t, got.Slots, 2)
	assert.Equal(t, int64(3), got.Earliest.ID)
}

func TestBookingService_DoctorNotFound(t *testing.T) {
	svc, api := newBookingService(t, &fakeSessions{})
	api.EXPECT().GetDoctor(gomock.Any(), "", int64(9)).Return(booking.Doctor{}, apperrors.FromStatus(http.StatusNotFound, ""))
	api.EXPECT().ListSlots(gomock.Any(), "", int64(9), true).Return(nil, nil).AnyTimes()
	api.EXPECT().EarliestSlot(gomock.Any(), "", int64(9)).Return(nil, nil).AnyTimes()

	_, err := svc.Doctor(context.Background(), 9)
	assert.True(t, apperrors.IsNotFound(err))
}

func TestBookingService_BookUsesProfileID(t *testing.T) {
	svc, api := newBookingService(t, signedIn(domainauth.RolePatient, "5"))
	api.EXPECT().CreateAppointment(gomock.Any(), "tok", booking.NewAppointment{SlotID: 3, PatientID: 5, DoctorID: 2, Notes: "checkup"}).
		Return(booking.Appointment{ID: 10, Status: booking.StatusPending}, nil)

	got, err := svc.Book(context.Background(), BookingRequest{SlotID: 3, DoctorID: 2, Notes: "checkup"})
	require.NoError(t, err)
	assert.Equal(t, int64(10), got.ID)
}

func TestBookingService_BookValidation(t *testing.T) {
	svc, _ := newBookingService(t, signedIn(domainauth.RolePatient, "5"))

	_, err := svc.Book(context.Background(), BookingRequest{SlotID: 0, DoctorID: 2})
	assert.True(t, apperrors.IsValidation(err))
}

func TestBookingService_BookWithoutProfile(t *testing.T) {
	svc, _ := newBookingService(t, &fakeSessions{sess: domainauth.Session{Token: "tok", Role: domainauth.RolePatient}})

	_, err := svc.Book(context.Background(), BookingRequest{SlotID: 3, DoctorID: 2})
	assert.True(t, apperrors.IsUnavailable(err))
}

func TestBookingService_UnauthorizedInvalidatesSession(t *testing.T) {
	sessions := signedIn(domainauth.RolePatient, "5")
	svc, api := newBookingService(t, sessions)
	api.EXPECT().ListAppointments(gomock.Any(), "tok", booking.AppointmentFilter{PatientID: 5}).
		Return(nil, apperrors.FromStatus(http.StatusUnauthorized, ""))

	_, err := svc.MyAppointments(context.Background(), "")
	require.Error(t, err)
	assert.Equal(t, []string{"tok"}, sessions.invalidated)
	assert.False(t, sessions.Session().HasCredential())
}

func TestBookingService_ForbiddenKeepsSession(t *testing.T) {
	sessions := signedIn(domainauth.RoleAdmin, "1")
	svc, api := newBookingService(t, sessions)
	api.EXPECT().DeleteAppointment(gomock.Any(), "tok", int64(4)).Return(apperrors.FromStatus(http.StatusForbidden, ""))

	err := svc.DeleteAppointment(context.Background(), 4)
	assert.True(t, apperrors.IsForbidden(err))
	assert.Empty(t, sessions.invalidated)
}

func TestBookingService_CreateSlots(t *testing.T) {
	svc, api := newBookingService(t, signedIn(domainauth.RoleDoctor, "2"))
	plan := booking.SlotPlan{Date: "2026-03-02", Start: "09:00", End: "10:30", DurationMinutes: 30, Location: "Room 4"}

	gomock.InOrder(
		api.EXPECT().CreateSlot(gomock.Any(), "tok", gomock.Any()).Return(slotAt(1, 9, false), nil),
		api.EXPECT().CreateSlot(gomock.Any(), "tok", gomock.Any()).Return(booking.Slot{}, apperrors.FromStatus(http.StatusConflict, "overlaps")),
		api.EXPECT().CreateSlot(gomock.Any(), "tok", gomock.Any()).
			DoAndReturn(func(_ context.Context, _ string, in booking.NewSlot) (booking.Slot, error) {
				assert.Equal(t, int64(2), in.DoctorID)
				assert.Equal(t, "Room 4", in.Location)
				assert.Equal(t, 10, in.StartTime.Hour())
				return slotAt(3, 10, false), nil
			}),
	)

	res, err := svc.CreateSlots(context.Background(), plan)
	require.NoError(t, err)
	assert.Len(t, res.Created, 2)
	require.Len(t, res.Failed, 1)
	assert.Equal(t, "overlaps", res.Failed[0].Error)
	assert.Equal(t, 9, res.Failed[0].Window.Start.Hour())
	assert.Equal(t, 30, res.Failed[0].Window.Start.Minute())
}

func TestBookingService_CreateSlotsStopsOnUnauthorized(t *testing.T) {
	sessions := signedIn(domainauth.RoleDoctor, "2")
	svc, api := newBookingService(t, sessions)
	plan := booking.SlotPlan{Date: "2026-03-02", Start: "09:00", End: "11:00", DurationMinutes: 60}
	api.EXPECT().CreateSlot(gomock.Any(), "tok", gomock.Any()).Return(booking.Slot{}, apperrors.FromStatus(http.StatusUnauthorized, "")).Times(1)

	_, err := svc.CreateSlots(context.Background(), plan)
	assert.True(t, apperrors.IsUnauthorized(err))
	assert.Equal(t, []string{"tok"}, sessions.invalidated)
}

func TestBookingService_CreateSlotsRejectsBadPlan(t *testing.T) {
	svc, _ := newBookingService(t, signedIn(domainauth.RoleDoctor, "2"))

	_, err := svc.CreateSlots(context.Background(), booking.SlotPlan{Date: "2026-03-02", Start: "10:00", End: "09:00", DurationMinutes: 30})
	assert.ErrorIs(t, err, booking.ErrEndBeforeStart)
}

func TestBookingService_BookedSlotsAreLocked(t *testing.T) {
	svc, api := newBookingService(t, signedIn(domainauth.RoleDoctor, "2"))
	api.EXPECT().ListSlots(gomock.Any(), "tok", int64(2), false).
		Return([]booking.Slot{slotAt(1, 9, true), slotAt(2, 10, false)}, nil).Times(3)
	api.EXPECT().DeleteSlot(gomock.Any(), "tok", int64(2)).Return(nil)

	err := svc.DeleteSlot(context.Background(), 1)
	assert.True(t, apperrors.IsConflict(err))

	_, err = svc.UpdateSlot(context.Background(), 7, booking.SlotUpdate{})
	assert.True(t, apperrors.IsNotFound(err))

	require.NoError(t, svc.DeleteSlot(context.Background(), 2))
}

func TestBookingService_ApproveReject(t *testing.T) {
	svc, api := newBookingService(t, signedIn(domainauth.RoleDoctor, "2"))
	api.EXPECT().UpdateAppointmentStatus(gomock.Any(), "tok", int64(8), booking.StatusApproved).
		Return(booking.Appointment{ID: 8, Status: booking.StatusApproved}, nil)
	api.EXPECT().UpdateAppointmentStatus(gomock.Any(), "tok", int64(9), booking.StatusRejected).
		Return(booking.Appointment{}, apperrors.FromStatus(http.StatusBadRequest, "not pending"))

	got, err := svc.Approve(context.Background(), 8)
	require.NoError(t, err)
	assert.Equal(t, booking.StatusApproved, got.Status)

	_, err = svc.Reject(context.Background(), 9)
	assert.True(t, apperrors.IsValidation(err))
}

func TestBookingService_DoctorAppointments(t *testing.T) {
	svc, api := newBookingService(t, signedIn(domainauth.RoleDoctor, 2.0))
	api.EXPECT().ListAppointments(gomock.Any(), "tok", booking.AppointmentFilter{DoctorID: 2, Status: booking.StatusPending}).
		Return([]booking.Appointment{{ID: 1}}, nil)

	got, err := svc.DoctorAppointments(context.Background(), booking.StatusPending)
	require.NoError(t, err)
	assert.Len(t, got, 1)
}

func TestBookingService_UpdateMyProfileValidates(t *testing.T) {
	svc, api := newBookingService(t, signedIn(domainauth.RolePatient, "5"))

	_, err := svc.UpdateMyProfile(context.Background(), booking.PatientProfileUpdate{BloodType: "Z+"})
	require.Error(t, err)

	api.EXPECT().UpdatePatientProfile(gomock.Any(), "tok", booking.PatientProfileUpdate{BloodType: "O+"}).
		Return(map[string]any{"bloodType": "O+"}, nil)
	got, err := svc.UpdateMyProfile(context.Background(), booking.PatientProfileUpdate{BloodType: "O+"})
	require.NoError(t, err)
	assert.Equal(t, "O+", got["bloodType"])
}
