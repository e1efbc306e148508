package goalgraph

import (
	"strings"
	"testing"
)

func TestValidate_TravelGraphPasses(t *testing.T) {
	if err := travelGraph().Validate(); err != nil {
		t.Fatalf("travel graph validation failed: %v", err)
	}
}

func TestValidate_DetectsCycle(t *testing.T) {
	g := New()
	g.AddGoal("root", nil, Unbounded())
	g.AddGoal("a", []string{"b"}, Unbounded())
	g.AddGoal("b", []string{"a"}, Unbounded())

	err := g.Validate()
	if err == nil {
		t.Fatal("expected error for cycle, got nil")
	}
	if !strings.Contains(err.Error(), "cycle") {
		t.Errorf("error should mention cycle, got: %v", err)
	}
}

func TestValidate_DetectsDanglingPrereq(t *testing.T) {
	g := New()
	g.AddGoal("a", nil, Unbounded())
	g.AddGoal("b", []string{"nonexistent"}, Unbounded())

	err := g.Validate()
	if err == nil {
		t.Fatal("expected error for dangling prerequisite, got nil")
	}
	if !strings.Contains(err.Error(), "nonexistent") {
		t.Errorf("error should mention the missing name, got: %v", err)
	}
}

func TestValidate_DetectsSelfDependency(t *testing.T) {
	g := New()
	g.AddGoal("root", nil, Unbounded())
	g.AddGoal("loop", []string{"loop"}, Unbounded())

	err := g.Validate()
	if err == nil {
		t.Fatal("expected error for self dependency, got nil")
	}
	if !strings.Contains(err.Error(), "itself") {
		t.Errorf("error should mention self dependency, got: %v", err)
	}
}

func TestValidate_RequiresRoot(t *testing.T) {
	g := New()
	g.AddGoal("a", []string{"b"}, Unbounded())
	g.AddGoal("b", []string{"a"}, Unbounded())

	err := g.Validate()
	if err == nil {
		t.Fatal("expected error, got nil")
	}
	if !strings.Contains(err.Error(), "root") {
		t.Errorf("error should mention root, got: %v", err)
	}
}

func TestValidate_Empty(t *testing.T) {
	if err := New().Validate(); err == nil {
		t.Fatal("expected error for empty graph")
	}
}

func TestValidate_InvertedWindowAllowed(t *testing.T) {
	g := New()
	g.AddGoal("a", nil, NewWindow(6, 2))
	if err := g.Validate(); err != nil {
		t.Fatalf("inverted window should not fail validation: %v", err)
	}
}
