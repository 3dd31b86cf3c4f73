package controllers

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	rulesvc "github.com/priceworks/discount-engine/internal/rules"
	"github.com/priceworks/discount-engine/pkg/enums"
	pkgerrors "github.com/priceworks/discount-engine/pkg/errors"
	"github.com/priceworks/discount-engine/pkg/pagination"
)

type stubRuleService struct {
	rule            *rulesvc.Rule
	list            *rulesvc.RuleListResult
	usage           []rulesvc.RuleUsage
	err             error
	lastCreateInput rulesvc.CreateRuleInput
	lastUpdateID    uuid.UUID
	deletedID       uuid.UUID
}

func (s *stubRuleService) ListRules(ctx context.Context, params pagination.Params) (*rulesvc.RuleListResult, error) {
	return s.list, s.err
}

func (s *stubRuleService) GetRule(ctx context.Context, id uuid.UUID) (*rulesvc.Rule, error) {
	return s.rule, s.err
}

func (s *stubRuleService) CreateRule(ctx context.Context, input rulesvc.CreateRuleInput) (*rulesvc.Rule, error) {
	s.lastCreateInput = input
	return s.rule, s.err
}

func (s *stubRuleService) UpdateRule(ctx context.Context, id uuid.UUID, input rulesvc.UpdateRuleInput) (*rulesvc.Rule, error) {
	s.lastUpdateID = id
	return s.rule, s.err
}

func (s *stubRuleService) DeleteRule(ctx context.Context, id uuid.UUID) error {
	s.deletedID = id
	return s.err
}

func (s *stubRuleService) ActiveRules(ctx context.Context) ([]rulesvc.Rule, error) {
	return nil, s.err
}

func (s *stubRuleService) ListRuleUsage(ctx context.Context, id uuid.UUID) ([]rulesvc.RuleUsage, error) {
	return s.usage, s.err
}

func sampleRule() *rulesvc.Rule {
	return &rulesvc.Rule{
		ID:            uuid.New(),
		Title:         "summer sale",
		DiscountType:  enums.DiscountTypePercentage,
		DiscountValue: decimal.NewFromInt(10),
		Priority:      10,
		Status:        enums.RuleStatusActive,
		CreatedAt:     time.Now().UTC(),
		UpdatedAt:     time.Now().UTC(),
	}
}

func withRuleID(r *http.Request, id string) *http.Request {
	rctx := chi.NewRouteContext()
	rctx.URLParams.Add("ruleId", id)
	return r.WithContext(context.WithValue(r.Context(), chi.RouteCtxKey, rctx))
}

func TestCreateRuleSuccess(t *testing.T) {
	svc := &stubRuleService{rule: sampleRule()}
	handler := CreateRule(svc, nil)

	body := `{"title":"summer sale","discount_type":"percentage","discount_value":10}`
	req := httptest.NewRequest(http.MethodPost, "/api/v1/rules", strings.NewReader(body))

	resp := httptest.NewRecorder()
	handler.ServeHTTP(resp, req)

	if resp.Code != http.StatusCreated {
		t.Fatalf("expected 201 got %d: %s", resp.Code, resp.Body.String())
	}
	if svc.lastCreateInput.Title != "summer sale" {
		t.Fatalf("unexpected title: %q", svc.lastCreateInput.Title)
	}
	if svc.lastCreateInput.DiscountType != enums.DiscountTypePercentage {
		t.Fatalf("unexpected discount type: %s", svc.lastCreateInput.DiscountType)
	}

	var envelope struct {
		Data ruleResponse `json:"data"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&envelope); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if envelope.Data.Title != "summer sale" {
		t.Fatalf("unexpected response title: %q", envelope.Data.Title)
	}
}

func TestCreateRuleRejectsUnknownType(t *testing.T) {
	handler := CreateRule(&stubRuleService{}, nil)

	body := `{"title":"x","discount_type":"bogo","discount_value":1}`
	req := httptest.NewRequest(http.MethodPost, "/api/v1/rules", strings.NewReader(body))

	resp := httptest.NewRecorder()
	handler.ServeHTTP(resp, req)

	if resp.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 got %d", resp.Code)
	}
}

func TestCreateRuleRejectsMissingTitle(t *testing.T) {
	handler := CreateRule(&stubRuleService{}, nil)

	body := `{"discount_type":"percentage","discount_value":10}`
	req := httptest.NewRequest(http.MethodPost, "/api/v1/rules", strings.NewReader(body))

	resp := httptest.NewRecorder()
	handler.ServeHTTP(resp, req)

	if resp.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 got %d", resp.Code)
	}
}

func TestGetRuleInvalidID(t *testing.T) {
	handler := GetRule(&stubRuleService{}, nil)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/rules/nope", nil)
	req = withRuleID(req, "nope")

	resp := httptest.NewRecorder()
	handler.ServeHTTP(resp, req)

	if resp.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 got %d", resp.Code)
	}
}

func TestGetRuleNotFound(t *testing.T) {
	handler := GetRule(&stubRuleService{err: pkgerrors.New(pkgerrors.CodeNotFound, "rule not found")}, nil)

	id := uuid.NewString()
	req := httptest.NewRequest(http.MethodGet, "/api/v1/rules/"+id, nil)
	req = withRuleID(req, id)

	resp := httptest.NewRecorder()
	handler.ServeHTTP(resp, req)

	if resp.Code != http.StatusNotFound {
		t.Fatalf("expected 404 got %d", resp.Code)
	}
}

func TestDeleteRuleSuccess(t *testing.T) {
	svc := &stubRuleService{}
	handler := DeleteRule(svc, nil)

	id := uuid.New()
	req := httptest.NewRequest(http.MethodDelete, "/api/v1/rules/"+id.String(), nil)
	req = withRuleID(req, id.String())

	resp := httptest.NewRecorder()
	handler.ServeHTTP(resp, req)

	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d", resp.Code)
	}
	if svc.deletedID != id {
		t.Fatalf("expected delete of %s got %s", id, svc.deletedID)
	}
}

func TestListRulesPassesCursor(t *testing.T) {
	svc := &stubRuleService{list: &rulesvc.RuleListResult{
		Rules:      []rulesvc.Rule{*sampleRule()},
		NextCursor: "next",
	}}
	handler := ListRules(svc, nil)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/rules?limit=5&cursor=abc", nil)

	resp := httptest.NewRecorder()
	handler.ServeHTTP(resp, req)

	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d", resp.Code)
	}

	var envelope struct {
		Data ruleListResponse `json:"data"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&envelope); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if len(envelope.Data.Rules) != 1 {
		t.Fatalf("expected 1 rule got %d", len(envelope.Data.Rules))
	}
	if envelope.Data.NextCursor != "next" {
		t.Fatalf("unexpected cursor: %q", envelope.Data.NextCursor)
	}
}

func TestListRuleUsageReturnsEntries(t *testing.T) {
	ruleID := uuid.New()
	svc := &stubRuleService{usage: []rulesvc.RuleUsage{
		{ID: uuid.New(), RuleID: ruleID, OrderID: uuid.New(), DiscountAmount: decimal.NewFromInt(30), CreatedAt: time.Now().UTC()},
		{ID: uuid.New(), RuleID: ruleID, OrderID: uuid.New(), DiscountAmount: decimal.NewFromInt(5), CreatedAt: time.Now().UTC()},
	}}
	handler := ListRuleUsage(svc, nil)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/rules/"+ruleID.String()+"/usage", nil)
	req = withRuleID(req, ruleID.String())

	resp := httptest.NewRecorder()
	handler.ServeHTTP(resp, req)

	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d: %s", resp.Code, resp.Body.String())
	}

	var envelope struct {
		Data ruleUsageListResponse `json:"data"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&envelope); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if envelope.Data.RuleID != ruleID {
		t.Fatalf("unexpected rule id: %s", envelope.Data.RuleID)
	}
	if len(envelope.Data.Entries) != 2 {
		t.Fatalf("expected 2 entries got %d", len(envelope.Data.Entries))
	}
	if !envelope.Data.Entries[0].DiscountAmount.Equal(decimal.NewFromInt(30)) {
		t.Fatalf("unexpected first amount: %s", envelope.Data.Entries[0].DiscountAmount)
	}
}

func TestListRuleUsageInvalidID(t *testing.T) {
	handler := ListRuleUsage(&stubRuleService{}, nil)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/rules/nope/usage", nil)
	req = withRuleID(req, "nope")

	resp := httptest.NewRecorder()
	handler.ServeHTTP(resp, req)

	if resp.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 got %d", resp.Code)
	}
}

func TestListRulesRejectsBadLimit(t *testing.T) {
	handler := ListRules(&stubRuleService{}, nil)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/rules?limit=abc", nil)

	resp := httptest.NewRecorder()
	handler.ServeHTTP(resp, req)

	if resp.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 got %d", resp.Code)
	}
}
