package catalog_test

import (
	"context"
	"os"
	"path/filepath"
	"testing"
)

func writeSeed(t *testing.T, dir, name, content string) {
	t.Helper()
	if err := os.WriteFile(filepath.Join(dir, name), []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
}

func TestSeed(t *testing.T) {
	dir := t.TempDir()
	writeSeed(t, dir, "go-basics.yaml", `
title: Go Basics
description: Introduction to Go
duration: 4 weeks
topics:
  - id: t1
    name: Variables
  - id: t2
    name: Functions
quiz:
  - id: q1
    question: What is a slice?
  - id: final
    question: Everything so far
`)
	writeSeed(t, dir, "notes.yaml", "just: a stray file\n")
	writeSeed(t, dir, "broken.yaml", "title: [unclosed\n")

	c := newCatalog()
	if err := c.Seed(context.Background(), dir); err != nil {
		t.Fatalf("Seed() error = %v", err)
	}

	courses, err := c.List(context.Background())
	if err != nil {
		t.Fatalf("List() error = %v", err)
	}
	if len(courses) != 1 {
		t.Fatalf("List() returned %d courses after seed, want 1", len(courses))
	}

	course := courses[0]
	if course.Title != "Go Basics" {
		t.Errorf("Title = %q, want Go Basics", course.Title)
	}
	if len(course.Topics) != 2 || course.Topics[0]["id"] != "t1" {
		t.Errorf("Topics = %v, want two topics starting with t1", course.Topics)
	}
	if len(course.Quiz) != 2 || course.Quiz[1]["id"] != "final" {
		t.Errorf("Quiz = %v, want two questions ending with final", course.Quiz)
	}
}

func TestSeed_Idempotent(t *testing.T) {
	dir := t.TempDir()
	writeSeed(t, dir, "course.yaml", `
title: Repeatable
description: d
duration: 1 week
`)

	c := newCatalog()
	for i := 0; i < 2; i++ {
		if err := c.Seed(context.Background(), dir); err != nil {
			t.Fatalf("Seed() run %d error = %v", i+1, err)
		}
	}

	courses, _ := c.List(context.Background())
	if len(courses) != 1 {
		t.Errorf("List() returned %d courses after double seed, want 1", len(courses))
	}
}
