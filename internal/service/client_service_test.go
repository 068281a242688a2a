package service_test

import (
	"context"
	"errors"
	"testing"

	"github.com/Dhoini/licensing-backend/internal/domain"
	"github.com/Dhoini/licensing-backend/internal/repository"
	"github.com/Dhoini/licensing-backend/internal/service"
	"github.com/Dhoini/licensing-backend/pkg/logger"
)

func newClientService(t *testing.T) (*repository.InMemoryClientRepository, service.ClientService) {
	t.Helper()

	log := logger.New(logger.ERROR)
	clients := repository.NewInMemoryClientRepository(log)

	return clients, service.NewClientService(clients, clients, log)
}

func validPerson() service.PersonInput {
	return service.PersonInput{
		FirstName:   "Jan",
		LastName:    "Kowalski",
		Pesel:       "44051401359",
		Email:       "jan@example.com",
		Address:     "ul. Dluga 1, Warszawa",
		PhoneNumber: "123456789",
	}
}

func validCompany() service.CompanyInput {
	return service.CompanyInput{
		CompanyName: "Softbud",
		KRS:         "0000123456",
		Email:       "biuro@softbud.pl",
		Address:     "ul. Krotka 2, Krakow",
		PhoneNumber: "987654321",
	}
}

func TestAddPerson(t *testing.T) {
	repo, svc := newClientService(t)

	client, err := svc.AddPerson(context.Background(), validPerson())
	if err != nil {
		t.Fatalf("AddPerson() error = %v", err)
	}
	if client.Kind != domain.ClientKindPerson {
		t.Errorf("kind = %s, want person", client.Kind)
	}
	if client.Person == nil || client.Person.Pesel != "44051401359" {
		t.Errorf("person details missing or wrong: %+v", client.Person)
	}

	stored, err := repo.GetByID(context.Background(), client.ID)
	if err != nil {
		t.Fatalf("GetByID() error = %v", err)
	}
	if stored.Email != "jan@example.com" {
		t.Errorf("stored email = %q", stored.Email)
	}
}

func TestAddPersonValidation(t *testing.T) {
	tests := []struct {
		name     string
		mutate   func(*service.PersonInput)
		wantKind error
		wantMsg  string
	}{
		{
			"short phone",
			func(p *service.PersonInput) { p.PhoneNumber = "12345678" },
			domain.ErrBadRequest, "Phone number must be 9 digits",
		},
		{
			"short pesel",
			func(p *service.PersonInput) { p.Pesel = "4405140135" },
			domain.ErrBadRequest, "Pesel must be 11 digits",
		},
		{
			"phone with letters",
			func(p *service.PersonInput) { p.PhoneNumber = "12345678a" },
			domain.ErrBadRequest, "Phone number or pesel contains invalid characters",
		},
		{
			"pesel with letters",
			func(p *service.PersonInput) { p.Pesel = "4405140135a" },
			domain.ErrBadRequest, "Phone number or pesel contains invalid characters",
		},
		{
			"bad control sum",
			func(p *service.PersonInput) { p.Pesel = "44051401358" },
			domain.ErrBadRequest, "Control sum is invalid",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, svc := newClientService(t)

			input := validPerson()
			tt.mutate(&input)

			_, err := svc.AddPerson(context.Background(), input)
			if !errors.Is(err, tt.wantKind) {
				t.Fatalf("AddPerson() error = %v, want %v", err, tt.wantKind)
			}
			if err.Error() != tt.wantMsg {
				t.Errorf("message = %q, want %q", err.Error(), tt.wantMsg)
			}
		})
	}
}

func TestAddPersonDuplicatePesel(t *testing.T) {
	_, svc := newClientService(t)

	if _, err := svc.AddPerson(context.Background(), validPerson()); err != nil {
		t.Fatalf("first AddPerson() error = %v", err)
	}

	input := validPerson()
	input.FirstName = "Adam"
	_, err := svc.AddPerson(context.Background(), input)
	if !errors.Is(err, domain.ErrConflict) {
		t.Fatalf("AddPerson() error = %v, want conflict", err)
	}
	if err.Error() != "Person already exists" {
		t.Errorf("unexpected message: %q", err.Error())
	}
}

func TestUpdatePerson(t *testing.T) {
	repo, svc := newClientService(t)

	client, err := svc.AddPerson(context.Background(), validPerson())
	if err != nil {
		t.Fatalf("AddPerson() error = %v", err)
	}

	update := validPerson()
	update.FirstName = "Adam"
	update.Address = "ul. Nowa 5, Gdansk"
	if err := svc.UpdatePerson(context.Background(), client.ID, update); err != nil {
		t.Fatalf("UpdatePerson() error = %v", err)
	}

	stored, err := repo.GetByID(context.Background(), client.ID)
	if err != nil {
		t.Fatalf("GetByID() error = %v", err)
	}
	if stored.Person.FirstName != "Adam" {
		t.Errorf("first name = %q, want Adam", stored.Person.FirstName)
	}
	if stored.Address != "ul. Nowa 5, Gdansk" {
		t.Errorf("address = %q", stored.Address)
	}
}

// brokenPersonWriteRepo fails the person-row write so the shared client
// row has already been mutated when the transaction aborts.
type brokenPersonWriteRepo struct {
	*repository.InMemoryClientRepository
}

func (r *brokenPersonWriteRepo) UpdatePersonFields(ctx context.Context, id int64, firstName, lastName string) error {
	return errors.New("write failed")
}

func TestUpdatePersonRollsBackFirstWrite(t *testing.T) {
	log := logger.New(logger.ERROR)
	inner := repository.NewInMemoryClientRepository(log)
	svc := service.NewClientService(&brokenPersonWriteRepo{inner}, inner, log)

	client, err := svc.AddPerson(context.Background(), validPerson())
	if err != nil {
		t.Fatalf("AddPerson() error = %v", err)
	}

	update := validPerson()
	update.Address = "ul. Nowa 5, Gdansk"
	update.Email = "adam@example.com"
	if err := svc.UpdatePerson(context.Background(), client.ID, update); err == nil {
		t.Fatal("UpdatePerson() expected error from failed person write")
	}

	// The client-row update committed first inside the transaction and
	// must be undone with it.
	stored, err := inner.GetByID(context.Background(), client.ID)
	if err != nil {
		t.Fatalf("GetByID() error = %v", err)
	}
	if stored.Address != validPerson().Address {
		t.Errorf("address = %q, want %q", stored.Address, validPerson().Address)
	}
	if stored.Email != validPerson().Email {
		t.Errorf("email = %q, want %q", stored.Email, validPerson().Email)
	}
}

func TestUpdatePersonNotFound(t *testing.T) {
	_, svc := newClientService(t)

	err := svc.UpdatePerson(context.Background(), 42, validPerson())
	if !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("UpdatePerson() error = %v, want not found", err)
	}
	if err.Error() != "Person not found" {
		t.Errorf("unexpected message: %q", err.Error())
	}
}

func TestUpdatePersonOnCompany(t *testing.T) {
	_, svc := newClientService(t)

	company, err := svc.AddCompany(context.Background(), validCompany())
	if err != nil {
		t.Fatalf("AddCompany() error = %v", err)
	}

	err = svc.UpdatePerson(context.Background(), company.ID, validPerson())
	if !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("UpdatePerson() on company error = %v, want not found", err)
	}
}

func TestDeletePerson(t *testing.T) {
	repo, svc := newClientService(t)

	client, err := svc.AddPerson(context.Background(), validPerson())
	if err != nil {
		t.Fatalf("AddPerson() error = %v", err)
	}

	if err := svc.DeletePerson(context.Background(), client.ID); err != nil {
		t.Fatalf("DeletePerson() error = %v", err)
	}

	// Soft-deleted clients are invisible to reads.
	if _, err := repo.GetByID(context.Background(), client.ID); !errors.Is(err, repository.ErrNotFound) {
		t.Errorf("GetByID() after delete error = %v, want not found", err)
	}

	if err := svc.DeletePerson(context.Background(), client.ID); !errors.Is(err, domain.ErrNotFound) {
		t.Errorf("second DeletePerson() error = %v, want not found", err)
	}
}

func TestAddCompany(t *testing.T) {
	_, svc := newClientService(t)

	client, err := svc.AddCompany(context.Background(), validCompany())
	if err != nil {
		t.Fatalf("AddCompany() error = %v", err)
	}
	if client.Kind != domain.ClientKindCompany {
		t.Errorf("kind = %s, want company", client.Kind)
	}
	if client.Company == nil || client.Company.KRS != "0000123456" {
		t.Errorf("company details missing or wrong: %+v", client.Company)
	}
}

func TestAddCompanyValidation(t *testing.T) {
	tests := []struct {
		name     string
		mutate   func(*service.CompanyInput)
		wantKind error
		wantMsg  string
	}{
		{
			"short phone",
			func(c *service.CompanyInput) { c.PhoneNumber = "1234" },
			domain.ErrBadRequest, "Phone number must be 9 digits",
		},
		{
			"short krs",
			func(c *service.CompanyInput) { c.KRS = "123456" },
			domain.ErrBadRequest, "Krs must be 10 digits",
		},
		{
			"krs with letters",
			func(c *service.CompanyInput) { c.KRS = "00001234ab" },
			domain.ErrBadRequest, "Phone number or krs contains invalid characters",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, svc := newClientService(t)

			input := validCompany()
			tt.mutate(&input)

			_, err := svc.AddCompany(context.Background(), input)
			if !errors.Is(err, tt.wantKind) {
				t.Fatalf("AddCompany() error = %v, want %v", err, tt.wantKind)
			}
			if err.Error() != tt.wantMsg {
				t.Errorf("message = %q, want %q", err.Error(), tt.wantMsg)
			}
		})
	}
}

func TestAddCompanyDuplicateKRS(t *testing.T) {
	_, svc := newClientService(t)

	if _, err := svc.AddCompany(context.Background(), validCompany()); err != nil {
		t.Fatalf("first AddCompany() error = %v", err)
	}

	_, err := svc.AddCompany(context.Background(), validCompany())
	if !errors.Is(err, domain.ErrConflict) {
		t.Fatalf("AddCompany() error = %v, want conflict", err)
	}
	if err.Error() != "Company already exists" {
		t.Errorf("unexpected message: %q", err.Error())
	}
}

func TestDeleteCompanyOnPerson(t *testing.T) {
	_, svc := newClientService(t)

	person, err := svc.AddPerson(context.Background(), validPerson())
	if err != nil {
		t.Fatalf("AddPerson() error = %v", err)
	}

	err = svc.DeleteCompany(context.Background(), person.ID)
	if !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("DeleteCompany() on person error = %v, want not found", err)
	}
	if err.Error() != "Company not found" {
		t.Errorf("unexpected message: %q", err.Error())
	}
}
