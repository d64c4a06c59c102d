package reservation

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/terrabook/pitch-booking-backend/internal/terrain"
	"github.com/terrabook/pitch-booking-backend/internal/user"
)

// ConfirmationMailer sends the confirmation email for a reservation.
// Implementations must not retain the parameters after returning.
type ConfirmationMailer interface {
	SendReservationConfirmation(ctx context.Context, to, terrainName, date, start, confirmURL string) error
}

type CreateRequest struct {
	UserID    string
	TerrainID string
	Date      time.Time
	Start     string
}

type UpdateRequest struct {
	Start  *string
	Status *string
}

type Service interface {
	Create(ctx context.Context, req CreateRequest) (*Reservation, error)
	CreateByTerrainName(ctx context.Context, userID, terrainName string, date time.Time, start string) (*Reservation, error)
	GetByID(ctx context.Context, id string) (*Reservation, error)
	List(ctx context.Context, filter Filter) ([]*Reservation, int, error)
	ListForUser(ctx context.Context, userID string) ([]*Reservation, error)
	Update(ctx context.Context, id string, req UpdateRequest, actorID, actorRole string) (*Reservation, error)
	Cancel(ctx context.Context, id string, actorID, actorRole string) error

	// Conversational lookups keyed on the user's own reservations.
	FindAt(ctx context.Context, userID string, date time.Time, start string) (*Reservation, error)
	FindOnDate(ctx context.Context, userID string, date time.Time) (*Reservation, error)
	ModifyStart(ctx context.Context, userID string, date time.Time, oldStart, newStart string) (*Reservation, error)
	CancelAt(ctx context.Context, userID string, date time.Time, start string) error

	// Availability oracle.
	IsSlotFree(ctx context.Context, terrainName string, date time.Time, start string) (bool, error)
	FreeSlotsFor(ctx context.Context, terrainName string, date time.Time) ([]TimeSlot, error)
	AvailableTerrains(ctx context.Context, date time.Time, start string) ([]string, error)

	// Email confirmation round trip.
	SendConfirmation(ctx context.Context, id string) error
	ConfirmByToken(ctx context.Context, token string) (*Reservation, error)

	// Stats aggregates reservations by status for the dashboards.
	Stats(ctx context.Context) (*Stats, error)
}

type service struct {
	repo           Repository
	terrainService terrain.Service
	userService    user.Service
	mailer         ConfirmationMailer
	tokens         *ConfirmTokenManager
	confirmBase    string
	log            *zap.Logger
}

func NewService(
	repo Repository,
	terrainService terrain.Service,
	userService user.Service,
	mailer ConfirmationMailer,
	tokens *ConfirmTokenManager,
	confirmBase string,
	log *zap.Logger,
) Service {
	return &service{
		repo:           repo,
		terrainService: terrainService,
		userService:    userService,
		mailer:         mailer,
		tokens:         tokens,
		confirmBase:    confirmBase,
		log:            log,
	}
}

func (s *service) Create(ctx context.Context, req CreateRequest) (*Reservation, error) {
	t, err := s.terrainService.GetByID(ctx, req.TerrainID)
	if err != nil {
		if errors.Is(err, terrain.ErrNotFound) {
			return nil, ErrTerrainNotFound
		}
		return nil, err
	}
	return s.create(ctx, req.UserID, t, req.Date, req.Start)
}

func (s *service) CreateByTerrainName(ctx context.Context, userID, terrainName string, date time.Time, start string) (*Reservation, error) {
	t, err := s.terrainService.GetByName(ctx, terrainName)
	if err != nil {
		if errors.Is(err, terrain.ErrNotFound) {
			return nil, ErrTerrainNotFound
		}
		return nil, err
	}
	return s.create(ctx, userID, t, date, start)
}

func (s *service) create(ctx context.Context, userID string, t *terrain.Terrain, date time.Time, start string) (*Reservation, error) {
	end, err := SlotEnd(start)
	if err != nil {
		return nil, err
	}

	res := &Reservation{
		TerrainID:   t.ID,
		TerrainName: t.Name,
		UserID:      userID,
		Date:        date,
		Start:       start,
		End:         end,
		Status:      StatusPending,
		Amount:      t.PricePerSlot,
	}

	if err := s.repo.Create(ctx, res); err != nil {
		return nil, err
	}

	s.log.Info("reservation created",
		zap.String("reservation_id", res.ID),
		zap.String("terrain", t.Name),
		zap.String("date", date.Format("2006-01-02")),
		zap.String("start", start),
	)
	return res, nil
}

func (s *service) GetByID(ctx context.Context, id string) (*Reservation, error) {
	return s.repo.GetByID(ctx, id)
}

func (s *service) List(ctx context.Context, filter Filter) ([]*Reservation, int, error) {
	return s.repo.List(ctx, filter)
}

func (s *service) ListForUser(ctx context.Context, userID string) ([]*Reservation, error) {
	list, _, err := s.repo.List(ctx, Filter{UserID: userID, PageSize: 100})
	return list, err
}

func (s *service) Update(ctx context.Context, id string, req UpdateRequest, actorID, actorRole string) (*Reservation, error) {
	res, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	isOwner := res.UserID == actorID
	isStaff := actorRole == user.RoleAdmin || actorRole == user.RoleManager
	if !isOwner && !isStaff {
		return nil, ErrPermissionDenied
	}

	if req.Start != nil {
		newEnd, err := SlotEnd(*req.Start)
		if err != nil {
			return nil, err
		}

		conflict, err := s.repo.HasOverlap(ctx, res.TerrainID, res.Date, *req.Start, newEnd, res.ID)
		if err != nil {
			return nil, err
		}
		if conflict {
			return nil, ErrTimeConflict
		}

		if err := s.repo.UpdateTimes(ctx, id, *req.Start, newEnd); err != nil {
			return nil, err
		}
		res.Start = *req.Start
		res.End = newEnd
	}

	if req.Status != nil {
		st := Status(*req.Status)
		if !ValidStatus(st) {
			return nil, ErrInvalidStatus
		}
		// A plain user may only cancel their own reservation.
		if !isStaff && st != StatusCancelled {
			return nil, ErrPermissionDenied
		}
		if err := s.repo.UpdateStatus(ctx, id, st); err != nil {
			return nil, err
		}
		res.Status = st
	}

	return res, nil
}

func (s *service) Cancel(ctx context.Context, id string, actorID, actorRole string) error {
	res, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return err
	}

	isOwner := res.UserID == actorID
	isStaff := actorRole == user.RoleAdmin || actorRole == user.RoleManager
	if !isOwner && !isStaff {
		return ErrPermissionDenied
	}

	if res.Status == StatusCancelled {
		return ErrAlreadyCancelled
	}

	return s.repo.Cancel(ctx, id)
}

func (s *service) FindAt(ctx context.Context, userID string, date time.Time, start string) (*Reservation, error) {
	return s.repo.FindByUserDateStart(ctx, userID, date, start)
}

func (s *service) FindOnDate(ctx context.Context, userID string, date time.Time) (*Reservation, error) {
	return s.repo.FindSingleByUserDate(ctx, userID, date)
}

// ModifyStart moves the user's reservation found at (date, oldStart) to
// newStart on the same terrain and day, keeping the 90-minute length.
func (s *service) ModifyStart(ctx context.Context, userID string, date time.Time, oldStart, newStart string) (*Reservation, error) {
	res, err := s.repo.FindByUserDateStart(ctx, userID, date, oldStart)
	if err != nil {
		return nil, err
	}

	newEnd, err := SlotEnd(newStart)
	if err != nil {
		return nil, err
	}

	conflict, err := s.repo.HasOverlap(ctx, res.TerrainID, date, newStart, newEnd, res.ID)
	if err != nil {
		return nil, err
	}
	if conflict {
		return nil, ErrTimeConflict
	}

	if err := s.repo.UpdateTimes(ctx, res.ID, newStart, newEnd); err != nil {
		return nil, err
	}

	res.Start = newStart
	res.End = newEnd
	return res, nil
}

func (s *service) CancelAt(ctx context.Context, userID string, date time.Time, start string) error {
	res, err := s.repo.FindByUserDateStart(ctx, userID, date, start)
	if err != nil {
		return err
	}
	return s.repo.Cancel(ctx, res.ID)
}

func (s *service) IsSlotFree(ctx context.Context, terrainName string, date time.Time, start string) (bool, error) {
	t, err := s.terrainService.GetByName(ctx, terrainName)
	if err != nil {
		if errors.Is(err, terrain.ErrNotFound) {
			return false, ErrTerrainNotFound
		}
		return false, err
	}

	end, err := SlotEnd(start)
	if err != nil {
		return false, err
	}

	conflict, err := s.repo.HasOverlap(ctx, t.ID, date, start, end, "")
	if err != nil {
		return false, err
	}
	return !conflict, nil
}

func (s *service) FreeSlotsFor(ctx context.Context, terrainName string, date time.Time) ([]TimeSlot, error) {
	t, err := s.terrainService.GetByName(ctx, terrainName)
	if err != nil {
		if errors.Is(err, terrain.ErrNotFound) {
			return nil, ErrTerrainNotFound
		}
		return nil, err
	}

	existing, err := s.repo.ListByTerrainDate(ctx, t.ID, date)
	if err != nil {
		return nil, err
	}

	busy := make([]TimeSlot, 0, len(existing))
	for _, res := range existing {
		busy = append(busy, TimeSlot{Start: res.Start, End: res.End})
	}
	return FreeSlots(busy), nil
}

func (s *service) AvailableTerrains(ctx context.Context, date time.Time, start string) ([]string, error) {
	end, err := SlotEnd(start)
	if err != nil {
		return nil, err
	}
	return s.repo.AvailableTerrainNames(ctx, date, start, end)
}

// SendConfirmation emails the reservation owner a signed confirmation link.
func (s *service) SendConfirmation(ctx context.Context, id string) error {
	if s.mailer == nil || s.tokens == nil {
		return fmt.Errorf("email confirmation is not configured")
	}

	res, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return err
	}

	owner, err := s.userService.GetByID(ctx, res.UserID)
	if err != nil {
		return fmt.Errorf("failed to load reservation owner: %w", err)
	}

	token, err := s.tokens.Generate(res.ID)
	if err != nil {
		return fmt.Errorf("failed to generate confirmation token: %w", err)
	}

	confirmURL := s.confirmBase + "/v1/reservations/confirm?token=" + token

	if err := s.mailer.SendReservationConfirmation(
		ctx,
		owner.Email,
		res.TerrainName,
		res.Date.Format("2006-01-02"),
		res.Start,
		confirmURL,
	); err != nil {
		return fmt.Errorf("failed to send confirmation email: %w", err)
	}

	s.log.Info("confirmation email sent",
		zap.String("reservation_id", res.ID),
		zap.String("to", owner.Email),
	)
	return nil
}

// ConfirmByToken validates the emailed token and confirms the reservation.
func (s *service) ConfirmByToken(ctx context.Context, token string) (*Reservation, error) {
	if s.tokens == nil {
		return nil, fmt.Errorf("email confirmation is not configured")
	}

	id, err := s.tokens.Parse(token)
	if err != nil {
		return nil, ErrInvalidConfirmToken
	}

	res, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if res.Status == StatusCancelled {
		return nil, ErrAlreadyCancelled
	}

	if err := s.repo.UpdateStatus(ctx, res.ID, StatusConfirmed); err != nil {
		return nil, err
	}
	res.Status = StatusConfirmed
	return res, nil
}

func (s *service) Stats(ctx context.Context) (*Stats, error) {
	return s.repo.StatusCounts(ctx)
}
