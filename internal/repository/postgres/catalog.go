package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"github.com/jefersonOS/barber-pro/internal/model"
	apperrors "github.com/jefersonOS/barber-pro/pkg/errors"
)

// Tenant catalog repositories: services, professionals, units,
// organizations. Read paths only; catalog writes belong to the
// dashboard CRUD surface, which is out of this service's scope.

func (r *serviceRepository) Get(ctx context.Context, orgID, id uuid.UUID) (*model.Service, error) {
	query := `
		SELECT id, org_id, name, duration_min, price_cents, deposit_percent,
			   created_at, updated_at
		FROM services
		WHERE org_id = $1 AND id = $2
	`
	var svc model.Service
	err := r.db.GetContext(ctx, &svc, query, orgID, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, apperrors.NotFound("service", err)
		}
		return nil, fmt.Errorf("failed to get service: %w", err)
	}
	return &svc, nil
}

func (r *serviceRepository) List(ctx context.Context, orgID uuid.UUID) ([]*model.Service, error) {
	query := `
		SELECT id, org_id, name, duration_min, price_cents, deposit_percent,
			   created_at, updated_at
		FROM services
		WHERE org_id = $1
		ORDER BY name ASC
	`
	var services []*model.Service
	err := r.db.SelectContext(ctx, &services, query, orgID)
	if err != nil {
		return nil, fmt.Errorf("failed to list services: %w", err)
	}
	return services, nil
}

func (r *professionalRepository) Get(ctx context.Context, orgID, id uuid.UUID) (*model.Professional, error) {
	query := `
		SELECT id, org_id, name, user_id, phone, created_at, updated_at
		FROM professionals
		WHERE org_id = $1 AND id = $2
	`
	var pro model.Professional
	err := r.db.GetContext(ctx, &pro, query, orgID, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, apperrors.NotFound("professional", err)
		}
		return nil, fmt.Errorf("failed to get professional: %w", err)
	}
	return &pro, nil
}

func (r *professionalRepository) List(ctx context.Context, orgID uuid.UUID) ([]*model.Professional, error) {
	query := `
		SELECT id, org_id, name, user_id, phone, created_at, updated_at
		FROM professionals
		WHERE org_id = $1
		ORDER BY name ASC
	`
	var pros []*model.Professional
	err := r.db.SelectContext(ctx, &pros, query, orgID)
	if err != nil {
		return nil, fmt.Errorf("failed to list professionals: %w", err)
	}
	return pros, nil
}

func (r *unitRepository) Get(ctx context.Context, orgID, id uuid.UUID) (*model.Unit, error) {
	query := `
		SELECT id, org_id, name, address, created_at, updated_at
		FROM units
		WHERE org_id = $1 AND id = $2
	`
	var unit model.Unit
	err := r.db.GetContext(ctx, &unit, query, orgID, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, apperrors.NotFound("unit", err)
		}
		return nil, fmt.Errorf("failed to get unit: %w", err)
	}
	return &unit, nil
}

func (r *unitRepository) List(ctx context.Context, orgID uuid.UUID) ([]*model.Unit, error) {
	query := `
		SELECT id, org_id, name, address, created_at, updated_at
		FROM units
		WHERE org_id = $1
		ORDER BY name ASC
	`
	var units []*model.Unit
	err := r.db.SelectContext(ctx, &units, query, orgID)
	if err != nil {
		return nil, fmt.Errorf("failed to list units: %w", err)
	}
	return units, nil
}

func (r *organizationRepository) Get(ctx context.Context, id uuid.UUID) (*model.Organization, error) {
	query := `
		SELECT id, name, timezone, whatsapp_instance_id, alert_email, created_at, updated_at
		FROM organizations
		WHERE id = $1
	`
	var org model.Organization
	err := r.db.GetContext(ctx, &org, query, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, apperrors.NotFound("organization", err)
		}
		return nil, fmt.Errorf("failed to get organization: %w", err)
	}
	return &org, nil
}

func (r *organizationRepository) GetByWhatsAppInstance(ctx context.Context, instanceID string) (*model.Organization, error) {
	query := `
		SELECT id, name, timezone, whatsapp_instance_id, alert_email, created_at, updated_at
		FROM organizations
		WHERE whatsapp_instance_id = $1
	`
	var org model.Organization
	err := r.db.GetContext(ctx, &org, query, instanceID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, apperrors.NotFound("organization", err)
		}
		return nil, fmt.Errorf("failed to get organization: %w", err)
	}
	return &org, nil
}
