package inventory

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	identityapp "github.com/stocklane/backend/internal/application/identity"
	"github.com/stocklane/backend/internal/domain/inventory"
	"github.com/stocklane/backend/internal/domain/shared"
	"github.com/stocklane/backend/internal/infrastructure/logger"
)

// DefaultReservationTTL is how long a serial reservation holds before it is
// considered lapsed and eligible for reclaim
const DefaultReservationTTL = 24 * time.Hour

// SerialService reserves serial units against sales document lines.
// Reservation is the one partial-success operation in the system: each serial
// is validated independently and failures are reported per serial instead of
// aborting the batch.
type SerialService struct {
	resolver       identityapp.ContextResolver
	scope          TransactionScope
	publisher      shared.EventPublisher
	reservationTTL time.Duration
	now            func() time.Time
}

// NewSerialService creates a new SerialService
func NewSerialService(resolver identityapp.ContextResolver, scope TransactionScope) *SerialService {
	return &SerialService{
		resolver:       resolver,
		scope:          scope,
		reservationTTL: DefaultReservationTTL,
		now:            time.Now,
	}
}

// SetReservationTTL overrides the reservation hold duration
func (s *SerialService) SetReservationTTL(ttl time.Duration) {
	if ttl > 0 {
		s.reservationTTL = ttl
	}
}

// SetEventPublisher attaches the fire-and-forget notification sink
func (s *SerialService) SetEventPublisher(publisher shared.EventPublisher) {
	s.publisher = publisher
}

// SetClock overrides the time source, used by tests
func (s *SerialService) SetClock(now func() time.Time) {
	if now != nil {
		s.now = now
	}
}

// ReserveSerials attaches serial units to a sales document line. For each
// serial the unit must exist for the line's item, be available (or hold a
// lapsed reservation, which is reclaimed in place), and not already be linked
// to this line. Serials that fail validation are reported in the response;
// the ones that pass are committed regardless.
func (s *SerialService) ReserveSerials(ctx context.Context, tenantID, personID uuid.UUID, req ReserveSerialsRequest) (*ReserveSerialsResponse, error) {
	rc, err := s.resolver.Resolve(ctx, personID)
	if err != nil {
		return nil, err
	}
	if err := rc.Require(tenantID); err != nil {
		return nil, err
	}
	if !rc.Role.CanWrite() {
		return nil, shared.ErrForbidden
	}
	if len(req.SerialNumbers) == 0 {
		return nil, shared.NewDomainError(shared.CodeValidationFailure, "At least one serial number is required")
	}

	resp := &ReserveSerialsResponse{Errors: []SerialError{}}
	expiry := s.now().Add(s.reservationTTL)

	err = s.scope.Execute(ctx, func(repos TransactionalRepositories) error {
		line, err := repos.DocumentItems().FindByIDForTenant(ctx, tenantID, req.DocumentItemID)
		if err != nil {
			return err
		}
		item, err := repos.Items().FindByIDForTenant(ctx, tenantID, line.ItemID)
		if err != nil {
			return err
		}
		if !item.SerialTracked {
			return shared.NewDomainError(shared.CodeValidationFailure, "Item is not serial tracked")
		}

		for _, raw := range req.SerialNumbers {
			serialNumber := strings.TrimSpace(raw)
			if serialNumber == "" {
				resp.Errors = append(resp.Errors, SerialError{
					SerialNumber: raw,
					Code:         shared.CodeValidationFailure,
					Message:      "Serial number cannot be empty",
				})
				continue
			}

			unit, err := repos.SerialUnits().FindLive(ctx, tenantID, item.ID, serialNumber)
			if err != nil {
				if shared.IsCode(err, shared.CodeNotFound) {
					resp.Errors = append(resp.Errors, SerialError{
						SerialNumber: serialNumber,
						Code:         shared.CodeNotFound,
						Message:      "Serial unit not found for item",
					})
					continue
				}
				return err
			}

			if unit.IsReservationExpired(s.now()) {
				if err := s.reclaim(ctx, repos, tenantID, unit); err != nil {
					return err
				}
			}

			linked, err := repos.SerialLinks().ExistsForSerialUnit(ctx, tenantID, req.DocumentItemID, unit.ID)
			if err != nil {
				return err
			}
			if linked {
				resp.Errors = append(resp.Errors, SerialError{
					SerialNumber: serialNumber,
					Code:         shared.CodeSerialUnavailable,
					Message:      "Serial unit is already linked to this document item",
				})
				continue
			}

			if err := unit.Reserve(expiry); err != nil {
				resp.Errors = append(resp.Errors, serialErrorFrom(serialNumber, err))
				continue
			}
			if err := repos.SerialUnits().Save(ctx, unit); err != nil {
				return err
			}

			link, err := inventory.NewSerialLink(tenantID, req.DocumentItemID, unit.ID)
			if err != nil {
				return err
			}
			if err := repos.SerialLinks().Create(ctx, link); err != nil {
				return err
			}
			resp.ReservedCount++
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	if resp.ReservedCount > 0 && s.publisher != nil {
		event := inventory.NewSerialsReservedEvent(tenantID, req.DocumentItemID, resp.ReservedCount)
		if err := s.publisher.Publish(ctx, event); err != nil {
			logger.FromContext(ctx).Warn("event publish failed", zap.String("event_type", event.EventType()), zap.Error(err))
		}
	}
	return resp, nil
}

// reclaim releases a unit whose reservation window has lapsed. The reserved
// links holding it are flipped to expired so the original document line can
// no longer consume the unit.
func (s *SerialService) reclaim(ctx context.Context, repos TransactionalRepositories, tenantID uuid.UUID, unit *inventory.SerialUnit) error {
	links, err := repos.SerialLinks().FindReservedBySerialUnit(ctx, tenantID, unit.ID)
	if err != nil {
		return err
	}
	for i := range links {
		if err := links[i].MarkExpired(); err != nil {
			return err
		}
		if err := repos.SerialLinks().Save(ctx, &links[i]); err != nil {
			return err
		}
	}
	if err := unit.Release(); err != nil {
		return err
	}
	return nil
}

func serialErrorFrom(serialNumber string, err error) SerialError {
	var de *shared.DomainError
	if errors.As(err, &de) {
		return SerialError{SerialNumber: serialNumber, Code: de.Code, Message: de.Message}
	}
	return SerialError{SerialNumber: serialNumber, Code: shared.CodeSerialUnavailable, Message: err.Error()}
}
