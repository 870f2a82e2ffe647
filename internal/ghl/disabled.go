package ghl

import "context"

// Disabled is the null API variant selected when GHL_API_KEY is unset. Every
// operation fails with ErrDisabled instead of issuing network I/O, so callers
// get an explicit error rather than a mock that silently succeeds.
type Disabled struct{}

var _ API = Disabled{}

func (Disabled) CreateContact(context.Context, Contact) (Contact, error) {
	return Contact{}, ErrDisabled
}

func (Disabled) UpdateContact(context.Context, string, Contact) (Contact, error) {
	return Contact{}, ErrDisabled
}

func (Disabled) GetContact(context.Context, string) (Contact, error) {
	return Contact{}, ErrDisabled
}

func (Disabled) SearchContacts(context.Context, string, string) ([]Contact, error) {
	return nil, ErrDisabled
}

func (Disabled) CreateOpportunity(context.Context, Opportunity) (Opportunity, error) {
	return Opportunity{}, ErrDisabled
}

func (Disabled) ListPipelines(context.Context, string) ([]Pipeline, error) {
	return nil, ErrDisabled
}

func (Disabled) CreateTask(context.Context, Task) (Task, error) {
	return Task{}, ErrDisabled
}

func (Disabled) SendSMS(context.Context, string, string) error {
	return ErrDisabled
}

func (Disabled) CreateAppointment(context.Context, Appointment) (Appointment, error) {
	return Appointment{}, ErrDisabled
}

func (Disabled) GetLocations(context.Context) ([]Location, error) {
	return nil, ErrDisabled
}

func (Disabled) CreateSubAccount(context.Context, SubAccountRequest) (Location, error) {
	return Location{}, ErrDisabled
}

func (Disabled) CreateAPIKey(context.Context, string, string) (APIKey, error) {
	return APIKey{}, ErrDisabled
}

func (Disabled) RegisterDomain(context.Context, string, string) error {
	return ErrDisabled
}
