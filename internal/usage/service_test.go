package usage

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/priceworks/discount-engine/pkg/db/models"
	"github.com/priceworks/discount-engine/pkg/logger"
)

type stubIdempotencyStore struct {
	data      map[string]string
	setNXErr  error
	delCalls  int
	setCalls  int
}

func newStubIdempotencyStore() *stubIdempotencyStore {
	return &stubIdempotencyStore{data: make(map[string]string)}
}

func (s *stubIdempotencyStore) Get(_ context.Context, key string) (string, error) {
	return s.data[key], nil
}

func (s *stubIdempotencyStore) SetNX(_ context.Context, key string, value any, _ time.Duration) (bool, error) {
	s.setCalls++
	if s.setNXErr != nil {
		return false, s.setNXErr
	}
	if _, exists := s.data[key]; exists {
		return false, nil
	}
	s.data[key] = fmt.Sprint(value)
	return true, nil
}

func (s *stubIdempotencyStore) IdempotencyKey(scope, id string) string {
	return strings.Join([]string{"de", "idempotency", scope, id}, ":")
}

func (s *stubIdempotencyStore) Del(_ context.Context, keys ...string) error {
	s.delCalls++
	for _, key := range keys {
		delete(s.data, key)
	}
	return nil
}

type stubRuleStore struct {
	increments map[uuid.UUID]int
	audits     []models.RuleUsage
	recordErr  error
	failNext   int
}

func newStubRuleStore() *stubRuleStore {
	return &stubRuleStore{increments: make(map[uuid.UUID]int)}
}

// RecordUsage mirrors the repository contract: the increment and the audit
// row land together or not at all.
func (s *stubRuleStore) RecordUsage(_ context.Context, usage *models.RuleUsage) error {
	if s.recordErr != nil {
		return s.recordErr
	}
	if s.failNext > 0 {
		s.failNext--
		return errors.New("usage audit insert failed")
	}
	s.increments[usage.RuleID]++
	s.audits = append(s.audits, *usage)
	return nil
}

func newUsageService(t *testing.T, store RuleStore, idem *stubIdempotencyStore) Service {
	t.Helper()

	guard, err := NewGuard(idem, time.Hour)
	if err != nil {
		t.Fatalf("building guard: %v", err)
	}
	logg := logger.New(logger.Options{ServiceName: "usage-test"})
	svc, err := NewService(store, guard, logg)
	if err != nil {
		t.Fatalf("building service: %v", err)
	}
	return svc
}

func TestRecordOrderCompletionIncrementsOncePerRule(t *testing.T) {
	store := newStubRuleStore()
	svc := newUsageService(t, store, newStubIdempotencyStore())

	orderID := uuid.New()
	ruleA := uuid.New()
	ruleB := uuid.New()
	applied := []AppliedDiscount{
		{RuleID: ruleA, Amount: decimal.NewFromInt(30)},
		{RuleID: ruleB, Amount: decimal.NewFromInt(50)},
	}

	svc.RecordOrderCompletion(context.Background(), orderID, applied)

	// a re-delivered completion signal must not double count
	svc.RecordOrderCompletion(context.Background(), orderID, applied)

	if store.increments[ruleA] != 1 || store.increments[ruleB] != 1 {
		t.Fatalf("expected one increment per rule, got %v", store.increments)
	}
	if len(store.audits) != 2 {
		t.Fatalf("expected two audit rows, got %d", len(store.audits))
	}
}

func TestRecordOrderCompletionDifferentOrdersCountSeparately(t *testing.T) {
	store := newStubRuleStore()
	svc := newUsageService(t, store, newStubIdempotencyStore())

	ruleID := uuid.New()
	applied := []AppliedDiscount{{RuleID: ruleID, Amount: decimal.NewFromInt(10)}}

	svc.RecordOrderCompletion(context.Background(), uuid.New(), applied)
	svc.RecordOrderCompletion(context.Background(), uuid.New(), applied)

	if store.increments[ruleID] != 2 {
		t.Fatalf("expected two increments across two orders, got %d", store.increments[ruleID])
	}
}

func TestRecordOrderCompletionGuardOutageStillRecords(t *testing.T) {
	store := newStubRuleStore()
	idem := newStubIdempotencyStore()
	idem.setNXErr = errors.New("redis down")
	svc := newUsageService(t, store, idem)

	ruleID := uuid.New()
	svc.RecordOrderCompletion(context.Background(), uuid.New(), []AppliedDiscount{
		{RuleID: ruleID, Amount: decimal.NewFromInt(10)},
	})

	if store.increments[ruleID] != 1 {
		t.Fatalf("guard outage must not lose the increment, got %d", store.increments[ruleID])
	}
}

func TestRecordOrderCompletionReleasesGuardOnStoreFailure(t *testing.T) {
	store := newStubRuleStore()
	store.recordErr = errors.New("db down")
	idem := newStubIdempotencyStore()
	svc := newUsageService(t, store, idem)

	orderID := uuid.New()
	ruleID := uuid.New()
	svc.RecordOrderCompletion(context.Background(), orderID, []AppliedDiscount{
		{RuleID: ruleID, Amount: decimal.NewFromInt(10)},
	})

	if idem.delCalls != 1 {
		t.Fatalf("expected the guard mark to be released after failure, got %d deletes", idem.delCalls)
	}

	// once the store recovers the same signal records normally
	store.recordErr = nil
	svc.RecordOrderCompletion(context.Background(), orderID, []AppliedDiscount{
		{RuleID: ruleID, Amount: decimal.NewFromInt(10)},
	})
	if store.increments[ruleID] != 1 {
		t.Fatalf("expected recovery to record once, got %d", store.increments[ruleID])
	}
	if len(store.audits) != 1 {
		t.Fatalf("expected a single audit row after recovery, got %d", len(store.audits))
	}
}

func TestRecordOrderCompletionAuditFailureThenRedeliveryCountsOnce(t *testing.T) {
	store := newStubRuleStore()
	store.failNext = 1
	idem := newStubIdempotencyStore()
	svc := newUsageService(t, store, idem)

	orderID := uuid.New()
	ruleID := uuid.New()
	applied := []AppliedDiscount{{RuleID: ruleID, Amount: decimal.NewFromInt(25)}}

	// first signal fails mid-write; the transaction leaves nothing behind
	// and the guard mark is released
	svc.RecordOrderCompletion(context.Background(), orderID, applied)
	if store.increments[ruleID] != 0 {
		t.Fatalf("failed recording must not leave an increment, got %d", store.increments[ruleID])
	}
	if idem.delCalls != 1 {
		t.Fatalf("expected the guard mark to be released, got %d deletes", idem.delCalls)
	}

	// the re-delivered signal records exactly once
	svc.RecordOrderCompletion(context.Background(), orderID, applied)
	svc.RecordOrderCompletion(context.Background(), orderID, applied)

	if store.increments[ruleID] != 1 {
		t.Fatalf("expected one increment for the order, got %d", store.increments[ruleID])
	}
	if len(store.audits) != 1 {
		t.Fatalf("expected one audit row, got %d", len(store.audits))
	}
}

func TestGuardRejectsNilIdentifiers(t *testing.T) {
	guard, err := NewGuard(newStubIdempotencyStore(), time.Hour)
	if err != nil {
		t.Fatalf("building guard: %v", err)
	}

	if _, err := guard.CheckAndMark(context.Background(), uuid.Nil, uuid.New()); err == nil {
		t.Fatal("expected error for nil order id")
	}
	if _, err := guard.CheckAndMark(context.Background(), uuid.New(), uuid.Nil); err == nil {
		t.Fatal("expected error for nil rule id")
	}
}
