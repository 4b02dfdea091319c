package app

import (
	"context"
	"errors"
	"sort"
	"time"

	"github.com/google/uuid"

	"github.com/fitcore/membership-service/internal/domain"
	"github.com/fitcore/membership-service/internal/store"
)

// fakeRepository is an in-memory store.Repository. WithinTx snapshots the
// state before running fn and restores it on error, mirroring a rollback.
type fakeRepository struct {
	members []domain.Member
	plans   []domain.Plan
	subs    []domain.Subscription
	entries []domain.FinancialEntry

	nextPlanID  int64
	nextSubID   int64
	nextEntryID int64

	failEntryInsert error
}

func newFakeRepository() *fakeRepository {
	return &fakeRepository{nextPlanID: 1, nextSubID: 1, nextEntryID: 1}
}

func (r *fakeRepository) addPlan(name string, durationDays int, priceCents int64) *domain.Plan {
	p := domain.Plan{ID: r.nextPlanID, Name: name, DurationDays: durationDays, PriceCents: priceCents, Active: true}
	r.nextPlanID++
	r.plans = append(r.plans, p)
	return &r.plans[len(r.plans)-1]
}

func (r *fakeRepository) addMember(first, last string) *domain.Member {
	m := domain.Member{ID: uuid.New(), FirstName: first, LastName: last}
	r.members = append(r.members, m)
	return &r.members[len(r.members)-1]
}

func (r *fakeRepository) CreateMember(_ context.Context, m *domain.Member) error {
	m.CreatedAt = time.Now()
	m.UpdatedAt = m.CreatedAt
	r.members = append(r.members, *m)
	return nil
}

func (r *fakeRepository) UpdateMember(_ context.Context, m *domain.Member) error {
	for i := range r.members {
		if r.members[i].ID == m.ID {
			r.members[i] = *m
			return nil
		}
	}
	return store.ErrMemberNotFound
}

func (r *fakeRepository) FindMemberByID(_ context.Context, id uuid.UUID) (*domain.Member, error) {
	for i := range r.members {
		if r.members[i].ID == id {
			m := r.members[i]
			return &m, nil
		}
	}
	return nil, store.ErrMemberNotFound
}

func (r *fakeRepository) ListMembers(_ context.Context) ([]domain.Member, error) {
	return append([]domain.Member(nil), r.members...), nil
}

func (r *fakeRepository) CreatePlan(_ context.Context, p *domain.Plan) error {
	p.ID = r.nextPlanID
	r.nextPlanID++
	r.plans = append(r.plans, *p)
	return nil
}

func (r *fakeRepository) UpdatePlan(_ context.Context, p *domain.Plan) error {
	for i := range r.plans {
		if r.plans[i].ID == p.ID {
			p.Active = r.plans[i].Active
			r.plans[i] = *p
			return nil
		}
	}
	return store.ErrPlanNotFound
}

func (r *fakeRepository) SetPlanActive(_ context.Context, id int64, active bool) error {
	for i := range r.plans {
		if r.plans[i].ID == id {
			r.plans[i].Active = active
			return nil
		}
	}
	return store.ErrPlanNotFound
}

func (r *fakeRepository) FindPlanByID(_ context.Context, id int64) (*domain.Plan, error) {
	for i := range r.plans {
		if r.plans[i].ID == id {
			p := r.plans[i]
			return &p, nil
		}
	}
	return nil, store.ErrPlanNotFound
}

func (r *fakeRepository) ListPlans(_ context.Context, onlyActive bool) ([]domain.Plan, error) {
	var plans []domain.Plan
	for _, p := range r.plans {
		if onlyActive && !p.Active {
			continue
		}
		plans = append(plans, p)
	}
	return plans, nil
}

func (r *fakeRepository) InsertSubscription(_ context.Context, s *domain.Subscription) error {
	s.ID = r.nextSubID
	r.nextSubID++
	s.CreatedAt = time.Now()
	r.subs = append(r.subs, *s)
	return nil
}

func (r *fakeRepository) FindSubscriptionByID(_ context.Context, id int64) (*domain.Subscription, error) {
	for i := range r.subs {
		if r.subs[i].ID == id {
			s := r.subs[i]
			return &s, nil
		}
	}
	return nil, store.ErrSubscriptionNotFound
}

func (r *fakeRepository) ListSubscriptions(_ context.Context) ([]domain.Subscription, error) {
	subs := append([]domain.Subscription(nil), r.subs...)
	sort.Slice(subs, func(i, j int) bool {
		if !subs[i].EndDate().Equal(subs[j].EndDate()) {
			return subs[i].EndDate().Before(subs[j].EndDate())
		}
		return subs[i].ID < subs[j].ID
	})
	return subs, nil
}

func (r *fakeRepository) ListSubscriptionsByMember(_ context.Context, memberID uuid.UUID) ([]domain.Subscription, error) {
	var subs []domain.Subscription
	for _, s := range r.subs {
		if s.MemberID == memberID {
			subs = append(subs, s)
		}
	}
	sort.Slice(subs, func(i, j int) bool { return subs[i].ID > subs[j].ID })
	return subs, nil
}

func (r *fakeRepository) FindCurrentSubscription(_ context.Context, memberID uuid.UUID) (*domain.Subscription, error) {
	var current *domain.Subscription
	for i := range r.subs {
		if r.subs[i].MemberID != memberID {
			continue
		}
		if current == nil || r.subs[i].ID > current.ID {
			current = &r.subs[i]
		}
	}
	if current == nil {
		return nil, nil
	}
	s := *current
	return &s, nil
}

func (r *fakeRepository) ListCurrentSubscriptions(_ context.Context) ([]domain.Subscription, error) {
	latest := make(map[uuid.UUID]domain.Subscription)
	for _, s := range r.subs {
		if cur, ok := latest[s.MemberID]; !ok || s.ID > cur.ID {
			latest[s.MemberID] = s
		}
	}
	var subs []domain.Subscription
	for _, s := range latest {
		subs = append(subs, s)
	}
	sort.Slice(subs, func(i, j int) bool { return subs[i].ID < subs[j].ID })
	return subs, nil
}

func (r *fakeRepository) InsertFinancialEntry(_ context.Context, e *domain.FinancialEntry) error {
	if r.failEntryInsert != nil {
		return r.failEntryInsert
	}
	e.ID = r.nextEntryID
	r.nextEntryID++
	e.CreatedAt = time.Now()
	r.entries = append(r.entries, *e)
	return nil
}

func (r *fakeRepository) ListEntriesByDateRange(_ context.Context, start, end time.Time) ([]domain.FinancialEntry, error) {
	var entries []domain.FinancialEntry
	for _, e := range r.entries {
		if e.EntryDate.Before(domain.DateOnly(start)) || e.EntryDate.After(domain.DateOnly(end)) {
			continue
		}
		entries = append(entries, e)
	}
	sort.Slice(entries, func(i, j int) bool { return entries[i].EntryDate.After(entries[j].EntryDate) })
	return entries, nil
}

func (r *fakeRepository) ListLatestEntries(_ context.Context, limit int) ([]domain.FinancialEntry, error) {
	entries := append([]domain.FinancialEntry(nil), r.entries...)
	sort.Slice(entries, func(i, j int) bool { return entries[i].ID > entries[j].ID })
	if len(entries) > limit {
		entries = entries[:limit]
	}
	return entries, nil
}

func (r *fakeRepository) Summary(_ context.Context, start, end *time.Time) (domain.FinancialSummary, error) {
	var s domain.FinancialSummary
	for _, e := range r.entries {
		if start != nil && e.EntryDate.Before(domain.DateOnly(*start)) {
			continue
		}
		if end != nil && e.EntryDate.After(domain.DateOnly(*end)) {
			continue
		}
		switch e.Classification {
		case domain.ClassIncome:
			s.TotalIncomeCents += e.AmountCents
		case domain.ClassExpense:
			s.TotalExpenseCents += e.AmountCents
		}
		s.TransactionCount++
	}
	return s, nil
}

func (r *fakeRepository) MonthlyBreakdown(_ context.Context, from, to time.Time) ([]domain.MonthlyBreakdown, error) {
	type key struct{ year, month int }
	byMonth := make(map[key]*domain.MonthlyBreakdown)
	for _, e := range r.entries {
		if e.EntryDate.Before(domain.DateOnly(from)) || e.EntryDate.After(domain.DateOnly(to)) {
			continue
		}
		k := key{e.EntryDate.Year(), int(e.EntryDate.Month())}
		b, ok := byMonth[k]
		if !ok {
			b = &domain.MonthlyBreakdown{Year: k.year, Month: k.month}
			byMonth[k] = b
		}
		if e.Classification == domain.ClassExpense {
			b.ExpenseCents += e.AmountCents
		} else {
			b.IncomeCents += e.AmountCents
		}
	}
	var breakdown []domain.MonthlyBreakdown
	for _, b := range byMonth {
		breakdown = append(breakdown, *b)
	}
	sort.Slice(breakdown, func(i, j int) bool {
		if breakdown[i].Year != breakdown[j].Year {
			return breakdown[i].Year < breakdown[j].Year
		}
		return breakdown[i].Month < breakdown[j].Month
	})
	return breakdown, nil
}

// WithinTx snapshots state before fn and restores it when fn fails, so tests
// observe rollback behavior.
func (r *fakeRepository) WithinTx(_ context.Context, fn func(store.Repository) error) error {
	members := append([]domain.Member(nil), r.members...)
	plans := append([]domain.Plan(nil), r.plans...)
	subs := append([]domain.Subscription(nil), r.subs...)
	entries := append([]domain.FinancialEntry(nil), r.entries...)
	nextPlanID, nextSubID, nextEntryID := r.nextPlanID, r.nextSubID, r.nextEntryID

	if err := fn(r); err != nil {
		r.members, r.plans, r.subs, r.entries = members, plans, subs, entries
		r.nextPlanID, r.nextSubID, r.nextEntryID = nextPlanID, nextSubID, nextEntryID
		return err
	}
	return nil
}

var errRepoClosed = errors.New("repository closed")
