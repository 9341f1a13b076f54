package calendar

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/rpggio/groupmeet/internal/domain/activity"
	"github.com/rpggio/groupmeet/internal/domain/aggregate"
	"github.com/rpggio/groupmeet/internal/domain/availability"
	"github.com/rpggio/groupmeet/internal/domain/grid"
	"github.com/rpggio/groupmeet/internal/repository"
)

// Config holds the grid and normalization settings shared by all calendars.
type Config struct {
	Grid   grid.Grid
	Policy availability.Policy
}

// Service reconciles in-memory calendars with the external store.
//
// Saves are read-modify-write without locking: two users saving at the same
// time each reload the document, replace only their own entry and write the
// whole document back, so the later write wins for everything else in it.
type Service struct {
	store    Store
	activity ActivityLogger
	metrics  Recorder
	cfg      Config
	logger   *slog.Logger
}

// NewService creates a new calendar service. activity and metrics may be nil.
func NewService(store Store, activityLog ActivityLogger, metrics Recorder, cfg Config, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	if metrics == nil {
		metrics = noopRecorder{}
	}
	return &Service{
		store:    store,
		activity: activityLog,
		metrics:  metrics,
		cfg:      cfg,
		logger:   logger,
	}
}

// Grid returns the grid every calendar of this service uses.
func (s *Service) Grid() grid.Grid {
	return s.cfg.Grid
}

// LoadOrInit loads the dataset for key, creating and persisting it on first
// use with userID as facilitator. A user without an entry gets an all-busy
// record in memory only. Anonymous viewers (empty userID) never get a record.
func (s *Service) LoadOrInit(ctx context.Context, key, userID string) (*Dataset, error) {
	if err := validateKey(key); err != nil {
		return nil, err
	}
	if IsReservedKey(userID) {
		return nil, ErrReservedUser
	}

	ds, err := s.load(ctx, key)
	if err != nil && !isUninitialized(err) {
		return nil, err
	}
	if err != nil {
		ds = newDataset(key, userID)
		if userID == "" {
			return ds, nil
		}
		ds.SetRecord(userID, availability.NewVector(s.cfg.Grid.SlotCount()))
		if err := s.write(ctx, key, ds); err != nil {
			s.logger.Warn("initial save failed; continuing in memory", "dataset", key, "user", userID, "error", err)
			s.logActivity(ctx, key, userID, activity.TypeSaveFailed, "initial save failed", err)
			return ds, nil
		}
		s.logger.Info("created calendar", "dataset", key, "facilitator", userID)
		s.logActivity(ctx, key, userID, activity.TypeDatasetCreated, "calendar created", nil)
		return ds, nil
	}

	if userID != "" && !ds.HasRecord(userID) {
		ds.SetRecord(userID, availability.NewVector(s.cfg.Grid.SlotCount()))
	}
	return ds, nil
}

// Save writes the user's vector, replacing only that user's entry in the
// currently stored dataset.
func (s *Service) Save(ctx context.Context, key, userID string, v availability.Vector) error {
	if err := validateKey(key); err != nil {
		return err
	}
	if userID == "" {
		return ErrUnauthenticated
	}
	if IsReservedKey(userID) {
		return ErrReservedUser
	}
	if len(v) != s.cfg.Grid.SlotCount() {
		return fmt.Errorf("%w: vector length %d, want %d", ErrOutOfRange, len(v), s.cfg.Grid.SlotCount())
	}

	ds, err := s.load(ctx, key)
	if err != nil && !isUninitialized(err) {
		s.logActivity(ctx, key, userID, activity.TypeSaveFailed, "reload before save failed", err)
		return err
	}
	if err != nil {
		ds = newDataset(key, userID)
	}

	ds.SetRecord(userID, v)
	if err := s.write(ctx, key, ds); err != nil {
		s.logActivity(ctx, key, userID, activity.TypeSaveFailed, "save failed", err)
		return err
	}

	s.logger.Debug("saved availability", "dataset", key, "user", userID, "free", len(v.FreeSlots()))
	s.logActivity(ctx, key, userID, activity.TypeAvailabilitySaved,
		fmt.Sprintf("%d free slots", len(v.FreeSlots())), nil)
	return nil
}

// Aggregate merges every participant of the calendar. A calendar that does
// not exist yet aggregates to zero users.
func (s *Service) Aggregate(ctx context.Context, key string) (aggregate.Result, error) {
	if err := validateKey(key); err != nil {
		return aggregate.Result{}, err
	}
	n := s.cfg.Grid.SlotCount()

	ds, err := s.load(ctx, key)
	if err != nil && !isUninitialized(err) {
		return aggregate.Result{}, err
	}
	if err != nil {
		return aggregate.Aggregate(nil, n, IsReservedKey), nil
	}
	return aggregate.Aggregate(ds.Records(n, s.cfg.Policy), n, IsReservedKey), nil
}

// Best ranks the calendar's slots by participant count.
func (s *Service) Best(ctx context.Context, key string, limit, minParticipants int) ([]aggregate.Ranked, error) {
	result, err := s.Aggregate(ctx, key)
	if err != nil {
		return nil, err
	}
	return result.Best(limit, minParticipants), nil
}

func (s *Service) load(ctx context.Context, key string) (*Dataset, error) {
	data, err := s.store.Load(ctx, key)
	if errors.Is(err, repository.ErrNotFound) {
		s.metrics.ObserveStorage("load", "not_found")
		return nil, errUninitialized
	}
	if err != nil {
		s.metrics.ObserveStorage("load", "error")
		return nil, fmt.Errorf("%w: loading %s: %w", ErrStorageUnavailable, key, err)
	}
	s.metrics.ObserveStorage("load", "ok")

	ds, err := decodeDataset(data)
	if err != nil {
		s.logger.Warn("stored calendar unusable; reinitializing", "dataset", key, "error", err)
		return nil, err
	}
	return ds, nil
}

func (s *Service) write(ctx context.Context, key string, ds *Dataset) error {
	data, err := json.Marshal(ds)
	if err != nil {
		return fmt.Errorf("encoding dataset: %w", err)
	}
	if err := s.store.Save(ctx, key, data); err != nil {
		s.metrics.ObserveStorage("save", "error")
		return fmt.Errorf("%w: saving %s: %w", ErrStorageUnavailable, key, err)
	}
	s.metrics.ObserveStorage("save", "ok")
	return nil
}

func (s *Service) logActivity(ctx context.Context, key, userID string, kind activity.ActivityType, summary string, cause error) {
	if s.activity == nil {
		return
	}
	entry := &activity.ActivityEntry{
		DatasetKey:   key,
		ActivityType: kind,
		Summary:      summary,
	}
	if userID != "" {
		entry.UserID = &userID
	}
	if cause != nil {
		details, _ := json.Marshal(map[string]string{"error": cause.Error()})
		entry.Details = string(details)
	}
	if err := s.activity.LogActivity(ctx, entry); err != nil {
		s.logger.Warn("activity log failed", "dataset", key, "type", kind, "error", err)
	}
}

func validateKey(key string) error {
	if strings.TrimSpace(key) == "" {
		return ErrInvalidInput
	}
	return nil
}

func isUninitialized(err error) bool {
	return errors.Is(err, errUninitialized)
}
