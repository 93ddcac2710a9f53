// Package mocks provides gomock implementations of the ports.
//
// To regenerate mocks after interface changes, run:
//
//	go generate ./internal/mocks
//
// Usage in tests:
//
//	ctrl := gomock.NewController(t)
//	profiles := mocks.NewMockProfileAPI(ctrl)
//	profiles.EXPECT().FetchProfile(gomock.Any(), "tok", "/api/patients/me").Return(profile, nil)
package mocks

// Generate mocks for the auth-side ports:
// AuthAPI (Login, Register), ProfileAPI (FetchProfile), CredentialStore (Load, Save, Clear)
//go:generate go run go.uber.org/mock/mockgen@v0.6.0 -package=mocks -destination=auth_mock.go github.com/medbook/medbook-ui/internal/ports AuthAPI,ProfileAPI,CredentialStore

// Generate mock for the BookingAPI port (doctors, slots, appointments, patient profile).
//go:generate go run go.uber.org/mock/mockgen@v0.6.0 -package=mocks -destination=booking_api_mock.go github.com/medbook/medbook-ui/internal/ports BookingAPI
