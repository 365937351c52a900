package postgres

import (
	"github.com/jmoiron/sqlx"

	"github.com/jefersonOS/barber-pro/internal/repository"
)

type organizationRepository struct {
	db *sqlx.DB
}

type serviceRepository struct {
	db *sqlx.DB
}

type professionalRepository struct {
	db *sqlx.DB
}

type unitRepository struct {
	db *sqlx.DB
}

type appointmentRepository struct {
	db *sqlx.DB
}

type paymentRepository struct {
	db *sqlx.DB
}

type userRepository struct {
	db *sqlx.DB
}

func NewOrganizationRepository(db *sqlx.DB) repository.OrganizationRepository {
	return &organizationRepository{db: db}
}

func NewServiceRepository(db *sqlx.DB) repository.ServiceRepository {
	return &serviceRepository{db: db}
}

func NewProfessionalRepository(db *sqlx.DB) repository.ProfessionalRepository {
	return &professionalRepository{db: db}
}

func NewUnitRepository(db *sqlx.DB) repository.UnitRepository {
	return &unitRepository{db: db}
}

func NewAppointmentRepository(db *sqlx.DB) repository.AppointmentRepository {
	return &appointmentRepository{db: db}
}

func NewPaymentRepository(db *sqlx.DB) repository.PaymentRepository {
	return &paymentRepository{db: db}
}

func NewUserRepository(db *sqlx.DB) repository.UserRepository {
	return &userRepository{db: db}
}
