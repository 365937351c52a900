package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/jefersonOS/barber-pro/internal/model"
	apperrors "github.com/jefersonOS/barber-pro/pkg/errors"
)

func (r *paymentRepository) Create(ctx context.Context, payment *model.Payment) error {
	query := `
		INSERT INTO appointment_payments (
			id, org_id, appointment_id, provider, status,
			checkout_session_id, checkout_url, payment_intent_id,
			provider_event_id, amount_cents, currency, created_at, updated_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)
	`
	payment.ID = uuid.New()
	payment.CreatedAt = time.Now()
	payment.UpdatedAt = time.Now()

	_, err := r.db.ExecContext(ctx, query,
		payment.ID,
		payment.OrgID,
		payment.AppointmentID,
		payment.Provider,
		payment.Status,
		payment.CheckoutSessionID,
		payment.CheckoutURL,
		payment.PaymentIntentID,
		payment.ProviderEventID,
		payment.AmountCents,
		payment.Currency,
		payment.CreatedAt,
		payment.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to create payment: %w", err)
	}
	return nil
}

func (r *paymentRepository) ExistsByProviderEvent(ctx context.Context, providerEventID string) (bool, error) {
	query := `
		SELECT EXISTS (
			SELECT 1 FROM appointment_payments
			WHERE provider_event_id = $1
		)
	`
	var exists bool
	err := r.db.GetContext(ctx, &exists, query, providerEventID)
	if err != nil {
		return false, fmt.Errorf("failed to check provider event: %w", err)
	}
	return exists, nil
}

func (r *paymentRepository) LatestPending(ctx context.Context, orgID, appointmentID uuid.UUID) (*model.Payment, error) {
	query := `
		SELECT id, org_id, appointment_id, provider, status,
			   checkout_session_id, checkout_url, payment_intent_id,
			   provider_event_id, amount_cents, currency, created_at, updated_at
		FROM appointment_payments
		WHERE org_id = $1 AND appointment_id = $2 AND status = 'pending'
		ORDER BY created_at DESC
		LIMIT 1
	`
	var payment model.Payment
	err := r.db.GetContext(ctx, &payment, query, orgID, appointmentID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, apperrors.NotFound("payment", err)
		}
		return nil, fmt.Errorf("failed to get pending payment: %w", err)
	}
	return &payment, nil
}

func (r *paymentRepository) FindBySession(ctx context.Context, orgID, appointmentID uuid.UUID, sessionID string) (*model.Payment, error) {
	query := `
		SELECT id, org_id, appointment_id, provider, status,
			   checkout_session_id, checkout_url, payment_intent_id,
			   provider_event_id, amount_cents, currency, created_at, updated_at
		FROM appointment_payments
		WHERE org_id = $1 AND appointment_id = $2 AND checkout_session_id = $3
		ORDER BY created_at DESC
		LIMIT 1
	`
	var payment model.Payment
	err := r.db.GetContext(ctx, &payment, query, orgID, appointmentID, sessionID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, apperrors.NotFound("payment", err)
		}
		return nil, fmt.Errorf("failed to find payment: %w", err)
	}
	return &payment, nil
}

func (r *paymentRepository) MarkPaid(ctx context.Context, id uuid.UUID, providerEventID string, paymentIntentID *string) error {
	query := `
		UPDATE appointment_payments
		SET status = 'paid',
			provider_event_id = $1,
			payment_intent_id = $2,
			updated_at = NOW()
		WHERE id = $3
	`
	result, err := r.db.ExecContext(ctx, query, providerEventID, paymentIntentID, id)
	if err != nil {
		return fmt.Errorf("failed to mark payment paid: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rows == 0 {
		return apperrors.NotFound("payment", nil)
	}
	return nil
}
