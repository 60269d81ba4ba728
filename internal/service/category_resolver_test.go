package service

import (
	"context"
	"errors"
	"testing"

	"github.com/spec-kit/incident-service/internal/domain"
	apperrors "github.com/spec-kit/incident-service/pkg/util"
)

func TestResolveWalksHierarchy(t *testing.T) {
	f := newEngineFixture()
	resolver := NewCategoryResolver(f.categories, f.teams)

	path, err := resolver.Resolve(context.Background(), fixtureItemName)
	if err != nil {
		t.Fatalf("resolve: %v", err)
	}
	if path.ItemName != fixtureItemName || path.SubCategory != fixtureSubName {
		t.Fatalf("unexpected path: %+v", path)
	}
	if path.TeamID != fixtureTeamID || path.TeamName != fixtureTeamName {
		t.Fatalf("unexpected team: %+v", path)
	}
}

func TestResolveUnknownCategory(t *testing.T) {
	f := newEngineFixture()
	resolver := NewCategoryResolver(f.categories, f.teams)

	_, err := resolver.Resolve(context.Background(), "VPN Tunnel")
	assertValidation(t, err, "category not found")
	if !isTerminalValidation(err) {
		t.Fatalf("expected terminal validation error")
	}
}

func TestResolveBrokenSubCategoryLink(t *testing.T) {
	f := newEngineFixture()
	f.categories.items["item-orphan"] = &domain.CategoryItem{ID: "item-orphan", SubCategoryID: "missing", Name: "Orphan"}
	resolver := NewCategoryResolver(f.categories, f.teams)

	_, err := resolver.Resolve(context.Background(), "Orphan")
	assertValidation(t, err, "sub-category not found")
}

func TestResolveBrokenTeamLink(t *testing.T) {
	f := newEngineFixture()
	f.categories.subs["sub-orphan"] = &domain.SubCategory{ID: "sub-orphan", MainCategoryID: "missing", Name: "Orphan Sub"}
	f.categories.items["item-orphan"] = &domain.CategoryItem{ID: "item-orphan", SubCategoryID: "sub-orphan", Name: "Orphan"}
	resolver := NewCategoryResolver(f.categories, f.teams)

	_, err := resolver.Resolve(context.Background(), "Orphan")
	assertValidation(t, err, "team not found for category")
}

func TestResolveTeamRowOverridesDisplayName(t *testing.T) {
	f := newEngineFixture()
	f.teams.teams[fixtureTeamID].Name = "Infrastructure"
	resolver := NewCategoryResolver(f.categories, f.teams)

	path, err := resolver.Resolve(context.Background(), fixtureItemName)
	if err != nil {
		t.Fatalf("resolve: %v", err)
	}
	if path.TeamName != "Infrastructure" {
		t.Fatalf("team row should drive the display name, got %q", path.TeamName)
	}
}

func TestResolveCaseSensitiveLabels(t *testing.T) {
	f := newEngineFixture()
	resolver := NewCategoryResolver(f.categories, f.teams)

	if _, err := resolver.Resolve(context.Background(), "network connection"); err == nil {
		t.Fatalf("labels are case-sensitive; lowercase lookup should fail")
	}
}

func assertValidation(t *testing.T, err error, message string) {
	t.Helper()
	if err == nil {
		t.Fatalf("expected validation error %q, got nil", message)
	}
	var domainErr *apperrors.DomainError
	if !errors.As(err, &domainErr) {
		t.Fatalf("expected DomainError, got %T: %v", err, err)
	}
	if domainErr.Code != "VALIDATION_FAILED" {
		t.Fatalf("expected VALIDATION_FAILED, got %s", domainErr.Code)
	}
	if domainErr.Message != message {
		t.Fatalf("expected message %q, got %q", message, domainErr.Message)
	}
}
