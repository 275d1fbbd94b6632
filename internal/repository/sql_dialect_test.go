package repository

import "testing"

func TestBuildKeywordLikeConditionByDialect(t *testing.T) {
	got, count := buildKeywordLikeConditionByDialect("sqlite", "email", " ", "name")
	if got != "(email LIKE ? OR name LIKE ?)" || count != 2 {
		t.Fatalf("unexpected sqlite condition: %s (%d)", got, count)
	}
	got, count = buildKeywordLikeConditionByDialect("postgres", "email")
	if got != "(email ILIKE ?)" || count != 1 {
		t.Fatalf("unexpected postgres condition: %s (%d)", got, count)
	}
	if got, count = buildKeywordLikeConditionByDialect("sqlite"); got != "" || count != 0 {
		t.Fatalf("empty columns should yield empty condition")
	}
}

func TestJSONArrayElementLike(t *testing.T) {
	if got := jsonArrayElementLike("trial_user"); got != `%"trial_user"%` {
		t.Fatalf("unexpected like arg: %s", got)
	}
}

func TestRepeatLikeArgs(t *testing.T) {
	args := repeatLikeArgs("%a%", 3)
	if len(args) != 3 || args[2] != "%a%" {
		t.Fatalf("unexpected args: %v", args)
	}
}
