package announce_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/bittubunny/BLMS/internal/announce"
	"github.com/bittubunny/BLMS/internal/apperr"
)

func TestCreate(t *testing.T) {
	svc := announce.NewService(announce.NewMemoryStore(), nil)

	a, err := svc.Create(context.Background(), "Maintenance", "Down at 2am", "")
	if err != nil {
		t.Fatalf("Create() error = %v", err)
	}
	if a.ID == "" {
		t.Error("Create() returned empty ID")
	}
	if a.Type != announce.DefaultType {
		t.Errorf("Type = %q, want %q", a.Type, announce.DefaultType)
	}
}

func TestCreate_MissingFields(t *testing.T) {
	svc := announce.NewService(announce.NewMemoryStore(), nil)

	tests := []struct {
		name           string
		title, message string
	}{
		{"no title", "", "msg"},
		{"no message", "title", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.Create(context.Background(), tt.title, tt.message, "")
			if !errors.Is(err, apperr.ErrValidation) {
				t.Errorf("Create() error = %v, want ErrValidation", err)
			}
		})
	}
}

func TestList_NewestFirst(t *testing.T) {
	svc := announce.NewService(announce.NewMemoryStore(), nil)

	for _, title := range []string{"first", "second", "third"} {
		if _, err := svc.Create(context.Background(), title, "msg", "info"); err != nil {
			t.Fatalf("Create(%s) error = %v", title, err)
		}
	}

	list, err := svc.List(context.Background())
	if err != nil {
		t.Fatalf("List() error = %v", err)
	}
	if len(list) != 3 {
		t.Fatalf("List() count = %d, want 3", len(list))
	}
	if list[0].Title != "third" || list[2].Title != "first" {
		t.Errorf("List() order = [%s %s %s], want newest first",
			list[0].Title, list[1].Title, list[2].Title)
	}
}

func TestFeed_PublishOnCreate(t *testing.T) {
	feed := announce.NewFeed()
	svc := announce.NewService(announce.NewMemoryStore(), feed)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	received := make(chan []byte, 1)
	go feed.Stream(ctx, func(data []byte) {
		received <- data
		cancel()
	})

	// Stream subscribes inside the goroutine; wait for it to register.
	for feed.SubscriberCount() == 0 {
		time.Sleep(time.Millisecond)
	}

	if _, err := svc.Create(context.Background(), "Live", "now", ""); err != nil {
		t.Fatalf("Create() error = %v", err)
	}

	data := <-received
	if len(data) == 0 {
		t.Fatal("feed delivered empty payload")
	}
}
