package service

import (
	"context"
	"errors"
	"fmt"
	"math/rand"
	reservationserrors "reservo/internal/reservations/errors"
	"reservo/internal/reservations/repository"
	"reservo/pkg/clock"
	"reservo/pkg/config"
	apperrors "reservo/pkg/errors"
	"sync"
	"time"
)

const codeAlphabet = "ABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"

const codeLength = 8

// SeriesCodeLookup answers whether a reservation code is already taken
// by a recurring series. Codes live in one namespace shared between
// single reservations and series.
type SeriesCodeLookup interface {
	CodeExists(ctx context.Context, code string) (bool, error)
}

// IdentifierGenerator mints human-facing reservation numbers and share
// codes. Generation is probabilistic with a bounded retry budget; the
// unique indexes on both collections are the final arbiter.
type IdentifierGenerator struct {
	repo         repository.ReservationRepository
	seriesLookup SeriesCodeLookup
	cfg          *config.Config
	clock        clock.Clock

	mu  sync.Mutex
	rng *rand.Rand
}

func NewIdentifierGenerator(
	repo repository.ReservationRepository,
	seriesLookup SeriesCodeLookup,
	cfg *config.Config,
	clk clock.Clock,
) *IdentifierGenerator {
	return &IdentifierGenerator{
		repo:         repo,
		seriesLookup: seriesLookup,
		cfg:          cfg,
		clock:        clk,
		rng:          rand.New(rand.NewSource(time.Now().UnixNano())),
	}
}

func (g *IdentifierGenerator) randInt(n int) int {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.rng.Intn(n)
}

// NextReservationNumber returns an unused RN-YYYYMMDD-NNNN number for
// the reservation's start date. After the retry budget is spent it
// falls back to a microsecond-stamped form; if even that collides the
// caller gets IDENTIFIER_EXHAUSTED.
func (g *IdentifierGenerator) NextReservationNumber(ctx context.Context, startTime time.Time) (string, error) {
	datePart := startTime.UTC().Format("20060102")

	for attempt := 0; attempt < g.cfg.IdentifierMaxAttempts; attempt++ {
		candidate := fmt.Sprintf("RN-%s-%04d", datePart, g.randInt(10000))
		taken, err := g.numberTaken(ctx, candidate)
		if err != nil {
			return "", err
		}
		if !taken {
			return candidate, nil
		}
	}

	fallback := fmt.Sprintf("RN-%s-%d-%04d", datePart, g.clock.Now().UnixMicro(), g.randInt(10000))
	taken, err := g.numberTaken(ctx, fallback)
	if err != nil {
		return "", err
	}
	if taken {
		return "", apperrors.IdentifierExhausted(
			fmt.Sprintf("Could not allocate a reservation number for %s after %d attempts", datePart, g.cfg.IdentifierMaxAttempts),
			nil,
		)
	}
	return fallback, nil
}

// NewSeriesBase mints the per-series discriminator woven into every
// child number, so children of one series sort together within a date.
func (g *IdentifierGenerator) NewSeriesBase() string {
	return fmt.Sprintf("%04d", g.randInt(10000))
}

// NextChildNumber derives the number for the index-th occurrence of a
// series: the occurrence date, the series discriminator, then the
// running index. A collision with another series falls back to a plain
// number for that date.
func (g *IdentifierGenerator) NextChildNumber(ctx context.Context, date time.Time, base string, index int) (string, error) {
	candidate := fmt.Sprintf("RN-%s-%s-%d", date.UTC().Format("20060102"), base, index)
	taken, err := g.numberTaken(ctx, candidate)
	if err != nil {
		return "", err
	}
	if !taken {
		return candidate, nil
	}
	return g.NextReservationNumber(ctx, date)
}

// NextReservationCode returns an unused 8-character share code. The
// probe checks both reservations and series so a code can never be
// ambiguous at lookup time.
func (g *IdentifierGenerator) NextReservationCode(ctx context.Context) (string, error) {
	for attempt := 0; attempt < g.cfg.IdentifierMaxAttempts; attempt++ {
		candidate := g.randomCode()
		taken, err := g.codeTaken(ctx, candidate)
		if err != nil {
			return "", err
		}
		if !taken {
			return candidate, nil
		}
	}

	return "", apperrors.IdentifierExhausted(
		fmt.Sprintf("Could not allocate a reservation code after %d attempts", g.cfg.IdentifierMaxAttempts),
		nil,
	)
}

func (g *IdentifierGenerator) randomCode() string {
	buf := make([]byte, codeLength)
	for i := range buf {
		buf[i] = codeAlphabet[g.randInt(len(codeAlphabet))]
	}
	return string(buf)
}

func (g *IdentifierGenerator) numberTaken(ctx context.Context, number string) (bool, error) {
	_, err := g.repo.FindByNumber(ctx, number)
	if err == nil {
		return true, nil
	}
	if errors.Is(err, reservationserrors.ErrNotFound) {
		return false, nil
	}
	return false, apperrors.Internal("Failed to probe reservation number", err)
}

func (g *IdentifierGenerator) codeTaken(ctx context.Context, code string) (bool, error) {
	_, err := g.repo.FindByCode(ctx, code)
	if err == nil {
		return true, nil
	}
	if !errors.Is(err, reservationserrors.ErrNotFound) {
		return false, apperrors.Internal("Failed to probe reservation code", err)
	}

	if g.seriesLookup == nil {
		return false, nil
	}
	exists, err := g.seriesLookup.CodeExists(ctx, code)
	if err != nil {
		return false, apperrors.Internal("Failed to probe series code", err)
	}
	return exists, nil
}
