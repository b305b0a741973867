package notify_test

import (
	"context"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"

	"github.com/savetree-1/docflow/pkg/lifecycle"
	"github.com/savetree-1/docflow/pkg/notify"
)

var discard = slog.New(slog.NewTextHandler(io.Discard, nil))

func setupNotifier(t *testing.T) (notify.System, *miniredis.Miniredis) {
	t.Helper()
	s := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: s.Addr()})
	t.Cleanup(func() { client.Close() })
	return notify.NewWithClient(client, "docflow-test", discard), s
}

func TestPublishSubscribe(t *testing.T) {
	n, _ := setupNotifier(t)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	got := make(chan string, 1)
	if err := n.Subscribe(ctx, "rules", func(payload string) { got <- payload }); err != nil {
		t.Fatalf("subscribe: %v", err)
	}

	if err := n.Publish(ctx, "rules", "reload"); err != nil {
		t.Fatalf("publish: %v", err)
	}

	select {
	case payload := <-got:
		if payload != "reload" {
			t.Errorf("payload = %q", payload)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("notice not delivered")
	}
}

func TestChannelPrefix(t *testing.T) {
	n, s := setupNotifier(t)
	ctx := context.Background()

	sub := s.NewSubscriber()
	defer sub.Close()
	sub.Subscribe("docflow-test:rules")

	if err := n.Publish(ctx, "rules", "again"); err != nil {
		t.Fatalf("publish: %v", err)
	}

	select {
	case msg := <-sub.Messages():
		if msg.Channel != "docflow-test:rules" || msg.Message != "again" {
			t.Errorf("message = %+v", msg)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("prefixed channel received nothing")
	}
}

func TestPublishAfterServerClosed(t *testing.T) {
	n, s := setupNotifier(t)
	s.Close()

	if err := n.Publish(context.Background(), "rules", "reload"); err == nil {
		t.Error("expected publish error once redis is gone")
	}
}

func TestDisabled(t *testing.T) {
	n, err := notify.New(&notify.Config{}, discard)
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	lc := lifecycle.New()
	if err := n.Start(lc); err != nil {
		t.Errorf("Start: %v", err)
	}
	if err := n.Publish(context.Background(), "rules", "x"); err != nil {
		t.Errorf("Publish: %v", err)
	}
	if err := n.Subscribe(context.Background(), "rules", func(string) { t.Error("delivered while disabled") }); err != nil {
		t.Errorf("Subscribe: %v", err)
	}
}

func TestNewFromURL(t *testing.T) {
	s := miniredis.RunT(t)

	cfg := &notify.Config{URL: "redis://" + s.Addr()}
	if err := cfg.Finalize(nil); err != nil {
		t.Fatalf("finalize: %v", err)
	}
	if cfg.Prefix != "docflow" {
		t.Errorf("prefix default = %q", cfg.Prefix)
	}

	n, err := notify.New(cfg, discard)
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	lc := lifecycle.New()
	if err := n.Start(lc); err != nil {
		t.Fatalf("Start: %v", err)
	}
	lc.WaitForStartup()
	if err := lc.Shutdown(time.Second); err != nil {
		t.Errorf("shutdown: %v", err)
	}
}

func TestConfigValidation(t *testing.T) {
	cfg := &notify.Config{URL: "http://localhost:6379"}
	if err := cfg.Finalize(nil); err == nil {
		t.Error("expected scheme error")
	}

	t.Setenv("TEST_REDIS_URL", "rediss://cache:6380")
	cfg = &notify.Config{}
	if err := cfg.Finalize(&notify.Env{URL: "TEST_REDIS_URL"}); err != nil {
		t.Fatalf("finalize: %v", err)
	}
	if !cfg.Enabled() {
		t.Error("env url not applied")
	}
}
