package service

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/trace"

	"sucursalpos/internal/domain"
	"sucursalpos/internal/sale"
	"sucursalpos/internal/store"
)

const (
	// ConsistencyIndependent records the sale and then decrements stock line by
	// line with no live stock check.
	ConsistencyIndependent = "independent"
	// ConsistencyAtomic records the sale and all decrements together and
	// rejects lines that exceed live stock.
	ConsistencyAtomic = "atomic"
)

const dateLayout = "2006-01-02"

var (
	ErrForbidden          = errors.New("admin role required")
	ErrNoBranch           = errors.New("session has no branch assigned")
	ErrSummaryUnavailable = errors.New("daily summary unavailable")
)

type Options struct {
	Location    *time.Location
	Consistency string
	Now         func() time.Time
}

type Service struct {
	repo        store.Repository
	registers   *sale.Registers
	loc         *time.Location
	consistency string
	now         func() time.Time
	tracer      trace.Tracer
}

func New(repo store.Repository, opts Options) *Service {
	if opts.Location == nil {
		opts.Location = time.Local
	}
	if opts.Consistency == "" {
		opts.Consistency = ConsistencyIndependent
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}

	return &Service{
		repo:        repo,
		registers:   sale.NewRegisters(),
		loc:         opts.Location,
		consistency: opts.Consistency,
		now:         opts.Now,
		tracer:      otel.Tracer("sucursalpos/service"),
	}
}

func ValidConsistency(mode string) bool {
	return mode == ConsistencyIndependent || mode == ConsistencyAtomic
}

func (s *Service) Consistency() string {
	return s.consistency
}

func requireAdmin(sess domain.Session) error {
	if !sess.IsAdmin() {
		return ErrForbidden
	}
	return nil
}

func requireBranch(sess domain.Session) error {
	if strings.TrimSpace(sess.BranchID) == "" {
		return ErrNoBranch
	}
	return nil
}

// startOfDay returns local midnight for t in the service time zone.
func (s *Service) startOfDay(t time.Time) time.Time {
	local := t.In(s.loc)
	return time.Date(local.Year(), local.Month(), local.Day(), 0, 0, 0, 0, s.loc)
}

// dateRange resolves inclusive from/to dates to [from 00:00:00, to 23:59:59]
// local wall-clock time, so changeover days keep their full length. Empty
// dates default to today.
func (s *Service) dateRange(from, to string) (time.Time, time.Time, error) {
	today := s.startOfDay(s.now())
	start, err := s.parseDay(from, today)
	if err != nil {
		return time.Time{}, time.Time{}, err
	}
	end, err := s.parseDay(to, today)
	if err != nil {
		return time.Time{}, time.Time{}, err
	}
	if end.Before(start) {
		return time.Time{}, time.Time{}, fmt.Errorf("%w: from %s is after to %s", store.ErrInvalidRecord, start.Format(dateLayout), end.Format(dateLayout))
	}
	end = time.Date(end.Year(), end.Month(), end.Day(), 23, 59, 59, 0, s.loc)
	return start, end, nil
}

func (s *Service) parseDay(value string, fallback time.Time) (time.Time, error) {
	value = strings.TrimSpace(value)
	if value == "" {
		return fallback, nil
	}
	day, err := time.ParseInLocation(dateLayout, value, s.loc)
	if err != nil {
		return time.Time{}, fmt.Errorf("%w: bad date %q", store.ErrInvalidRecord, value)
	}
	return day, nil
}

func cleanList(values []string, upper bool) []string {
	out := make([]string, 0, len(values))
	for _, v := range values {
		v = strings.TrimSpace(v)
		if v == "" {
			continue
		}
		if upper {
			v = strings.ToUpper(v)
		}
		out = append(out, v)
	}
	return out
}
