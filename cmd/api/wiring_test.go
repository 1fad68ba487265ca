package main

import (
	"context"
	"testing"

	"go.uber.org/zap"

	"github.com/hamed0406/uptimeboard/internal/config"
	"github.com/hamed0406/uptimeboard/internal/notify"
	"github.com/hamed0406/uptimeboard/internal/repo"
)

func TestOpenStore_FileAndMemory(t *testing.T) {
	for _, backend := range []string{config.BackendMemory, config.BackendFile} {
		cfg := config.Config{StorageBackend: backend, DataDir: t.TempDir(), InstanceID: "test"}
		kv, closeFn, err := openStore(context.Background(), cfg, zap.NewNop())
		if err != nil {
			t.Fatalf("%s: %v", backend, err)
		}
		if err := kv.Put(context.Background(), repo.HistoryKey, []byte(`{}`)); err != nil {
			t.Fatalf("%s put: %v", backend, err)
		}
		if _, ok, err := kv.Get(context.Background(), repo.HistoryKey); err != nil || !ok {
			t.Fatalf("%s get: ok=%v err=%v", backend, ok, err)
		}
		if err := closeFn(); err != nil {
			t.Fatalf("%s close: %v", backend, err)
		}
	}
}

func TestOpenStore_UnknownBackend(t *testing.T) {
	_, _, err := openStore(context.Background(), config.Config{StorageBackend: "etcd"}, zap.NewNop())
	if err == nil {
		t.Fatal("unknown backend should fail")
	}
}

func TestOpenNotifier_DiscardWithoutChannels(t *testing.T) {
	n, closeFn, err := openNotifier(config.Config{}, zap.NewNop())
	if err != nil {
		t.Fatal(err)
	}
	if _, ok := n.(notify.Discard); !ok {
		t.Fatalf("want Discard, got %T", n)
	}
	if err := closeFn(); err != nil {
		t.Fatal(err)
	}
}

func TestOpenNotifier_Slack(t *testing.T) {
	n, _, err := openNotifier(config.Config{SlackWebhookURL: "https://hooks.example.com/x"}, zap.NewNop())
	if err != nil {
		t.Fatal(err)
	}
	m, ok := n.(notify.Multi)
	if !ok || len(m) != 1 {
		t.Fatalf("want one channel, got %#v", n)
	}
}
