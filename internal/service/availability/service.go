package availability

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/jefersonOS/barber-pro/internal/model"
	"github.com/jefersonOS/barber-pro/internal/repository"
)

// Business rules for the suggestion engine
const (
	SlotStep         = 30 * time.Minute
	BusinessOpenHour = 9
	BusinessCloseHr  = 19
	MaxSuggestions   = 3

	defaultTimezone = "America/Sao_Paulo"
)

type Service struct {
	appointments repository.AppointmentRepository
	services     repository.ServiceRepository
	orgs         repository.OrganizationRepository
	now          func() time.Time
}

func NewService(appointments repository.AppointmentRepository, services repository.ServiceRepository, orgs repository.OrganizationRepository) *Service {
	return &Service{
		appointments: appointments,
		services:     services,
		orgs:         orgs,
		now:          time.Now,
	}
}

// GetAvailableSlots enumerates candidate start times on a 30-minute
// grid beginning at req.From and returns the first MaxSuggestions
// candidates whose [start, start+duration) interval ends within the
// window, lies inside business hours and overlaps no blocking
// appointment. Pure with
// respect to stored data: calling it never mutates anything, and the
// same data yields the same suggestions.
func (s *Service) GetAvailableSlots(ctx context.Context, req *model.AvailabilityRequest) ([]model.Slot, error) {
	svc, err := s.services.Get(ctx, req.OrgID, req.ServiceID)
	if err != nil {
		return nil, err
	}
	duration := time.Duration(svc.DurationMin) * time.Minute
	if duration <= 0 {
		return nil, fmt.Errorf("service %s has non-positive duration", svc.ID)
	}

	loc, err := s.tenantLocation(ctx, req.OrgID)
	if err != nil {
		return nil, err
	}

	existing, err := s.appointments.GetBlocking(ctx, req.OrgID, req.ProfessionalID, req.From, req.To)
	if err != nil {
		return nil, err
	}
	now := s.now()
	blocking := existing[:0]
	for _, apt := range existing {
		// Hold expiry is logical: an expired-but-unswept hold never
		// reserves a slot.
		if apt.Blocking(now) {
			blocking = append(blocking, apt)
		}
	}

	// Candidates must end inside the window, so the last start is
	// req.To minus one duration.
	slots := make([]model.Slot, 0, MaxSuggestions)
	for start := req.From; !start.Add(duration).After(req.To); start = start.Add(SlotStep) {
		end := start.Add(duration)
		if !withinBusinessHours(start, end, loc) {
			continue
		}
		if overlapsAny(start, end, blocking) {
			continue
		}
		slots = append(slots, model.Slot{StartsAt: start, EndsAt: end})
		if len(slots) == MaxSuggestions {
			break
		}
	}
	return slots, nil
}

func (s *Service) tenantLocation(ctx context.Context, orgID uuid.UUID) (*time.Location, error) {
	org, err := s.orgs.Get(ctx, orgID)
	if err != nil {
		return nil, err
	}
	tz := org.Timezone
	if tz == "" {
		tz = defaultTimezone
	}
	loc, err := time.LoadLocation(tz)
	if err != nil {
		return nil, fmt.Errorf("invalid tenant timezone %q: %w", tz, err)
	}
	return loc, nil
}

// withinBusinessHours checks [start, end) against 09:00-19:00 in the
// tenant's civil time. end is half-open, so an interval ending exactly
// at close is allowed.
func withinBusinessHours(start, end time.Time, loc *time.Location) bool {
	ls, le := start.In(loc), end.In(loc)
	opensAt := time.Date(ls.Year(), ls.Month(), ls.Day(), BusinessOpenHour, 0, 0, 0, loc)
	closesAt := time.Date(ls.Year(), ls.Month(), ls.Day(), BusinessCloseHr, 0, 0, 0, loc)
	return !ls.Before(opensAt) && !le.After(closesAt)
}

// overlapsAny applies the half-open intersection test: [s1,e1) and
// [s2,e2) overlap iff s1 < e2 && e1 > s2. Touching endpoints do not
// overlap.
func overlapsAny(start, end time.Time, blocking []*model.Appointment) bool {
	for _, apt := range blocking {
		if start.Before(apt.EndsAt) && end.After(apt.StartsAt) {
			return true
		}
	}
	return false
}
