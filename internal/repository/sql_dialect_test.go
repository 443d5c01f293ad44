package repository

import (
	"strings"
	"testing"
)

func TestBuildLikeConditionSQLite(t *testing.T) {
	condition, argCount := buildLikeConditionByDialect("sqlite", []string{"slug", "title", "description"})
	if argCount != 3 {
		t.Fatalf("arg count want 3 got %d", argCount)
	}
	if !strings.Contains(condition, "slug LIKE ?") {
		t.Fatalf("condition should contain slug LIKE, got %s", condition)
	}
	if strings.Contains(condition, "ILIKE") {
		t.Fatalf("sqlite condition should not use ILIKE, got %s", condition)
	}
}

func TestBuildLikeConditionPostgres(t *testing.T) {
	condition, argCount := buildLikeConditionByDialect("postgres", []string{"slug", "title"})
	if argCount != 2 {
		t.Fatalf("arg count want 2 got %d", argCount)
	}
	if !strings.Contains(condition, "slug ILIKE ?") {
		t.Fatalf("postgres condition should use ILIKE, got %s", condition)
	}
}

func TestBuildLikeConditionSkipsEmptyColumns(t *testing.T) {
	condition, argCount := buildLikeConditionByDialect("sqlite", []string{"slug", "  ", ""})
	if argCount != 1 {
		t.Fatalf("arg count want 1 got %d", argCount)
	}
	if condition != "slug LIKE ?" {
		t.Fatalf("condition want 'slug LIKE ?' got %s", condition)
	}
}

func TestRepeatLikeArgs(t *testing.T) {
	args := repeatLikeArgs("%test%", 3)
	if len(args) != 3 {
		t.Fatalf("args len want 3 got %d", len(args))
	}
	for idx, arg := range args {
		if arg != "%test%" {
			t.Fatalf("args[%d] want %%test%% got %v", idx, arg)
		}
	}
}
