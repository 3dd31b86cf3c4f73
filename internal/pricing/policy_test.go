package pricing

import (
	"testing"

	"github.com/shopspring/decimal"

	"github.com/priceworks/discount-engine/internal/rules"
	"github.com/priceworks/discount-engine/pkg/enums"
)

func candidate(title string, amount int64) Candidate {
	return Candidate{
		Rule:   rules.Rule{Title: title},
		Amount: decimal.NewFromInt(amount),
	}
}

func TestReduceBiggestDiscount(t *testing.T) {
	t.Parallel()

	got := Reduce(enums.ApplyMethodBiggestDiscount, []Candidate{
		candidate("thirty", 30),
		candidate("fifty", 50),
	})
	if len(got) != 1 || got[0].Rule.Title != "fifty" {
		t.Fatalf("expected single winner fifty, got %+v", got)
	}
}

func TestReduceLowestDiscount(t *testing.T) {
	t.Parallel()

	got := Reduce(enums.ApplyMethodLowestDiscount, []Candidate{
		candidate("thirty", 30),
		candidate("fifty", 50),
		candidate("ten", 10),
	})
	if len(got) != 1 || got[0].Rule.Title != "ten" {
		t.Fatalf("expected single winner ten, got %+v", got)
	}
}

func TestReduceFirst(t *testing.T) {
	t.Parallel()

	got := Reduce(enums.ApplyMethodFirst, []Candidate{
		candidate("priority-one", 5),
		candidate("priority-two", 500),
	})
	if len(got) != 1 || got[0].Rule.Title != "priority-one" {
		t.Fatalf("expected the first candidate in priority order, got %+v", got)
	}
}

func TestReduceAllKeepsOrder(t *testing.T) {
	t.Parallel()

	got := Reduce(enums.ApplyMethodAll, []Candidate{
		candidate("thirty", 30),
		candidate("fifty", 50),
	})
	if len(got) != 2 {
		t.Fatalf("expected both candidates, got %d", len(got))
	}
	if got[0].Rule.Title != "thirty" || got[1].Rule.Title != "fifty" {
		t.Fatalf("expected priority order preserved, got %+v", got)
	}
}

func TestReduceTiesKeepFirstEncountered(t *testing.T) {
	t.Parallel()

	tied := []Candidate{
		candidate("earlier", 50),
		candidate("later", 50),
	}

	biggest := Reduce(enums.ApplyMethodBiggestDiscount, tied)
	if biggest[0].Rule.Title != "earlier" {
		t.Fatalf("biggest tie must keep the first candidate, got %s", biggest[0].Rule.Title)
	}

	lowest := Reduce(enums.ApplyMethodLowestDiscount, tied)
	if lowest[0].Rule.Title != "earlier" {
		t.Fatalf("lowest tie must keep the first candidate, got %s", lowest[0].Rule.Title)
	}
}

func TestReduceUnknownMethodFallsBackToBiggest(t *testing.T) {
	t.Parallel()

	got := Reduce(enums.ApplyMethod("unknown"), []Candidate{
		candidate("thirty", 30),
		candidate("fifty", 50),
	})
	if len(got) != 1 || got[0].Rule.Title != "fifty" {
		t.Fatalf("expected biggest fallback, got %+v", got)
	}
}

func TestReduceEmptyInput(t *testing.T) {
	t.Parallel()

	if got := Reduce(enums.ApplyMethodBiggestDiscount, nil); got != nil {
		t.Fatalf("expected nil for no candidates, got %+v", got)
	}
}
