package authservice

import (
	"context"
	"sync"
	"testing"

	"github.com/MrEthical07/authservice/notify"
	"github.com/MrEthical07/authservice/secret"
)

type inbox struct {
	mu       sync.Mutex
	messages map[string][]string
}

func newInbox() *inbox {
	return &inbox{messages: make(map[string][]string)}
}

func (i *inbox) notifier() notify.Notifier {
	return notify.Func(func(_ context.Context, recipient secret.String, _ string, body string) error {
		i.mu.Lock()
		defer i.mu.Unlock()
		i.messages[recipient.Reveal()] = append(i.messages[recipient.Reveal()], body)
		return nil
	})
}

func (i *inbox) last(t *testing.T, email string) string {
	t.Helper()
	i.mu.Lock()
	defer i.mu.Unlock()
	msgs := i.messages[email]
	if len(msgs) == 0 {
		t.Fatalf("no message delivered to %s", email)
	}
	return msgs[len(msgs)-1]
}

func testConfig() Config {
	cfg := DefaultConfig()
	cfg.JWT.PrivateKey = []byte("test-secret-0123456789abcdef")
	cfg.Password.Memory = 8 * 1024
	cfg.Password.Time = 1
	cfg.Password.Workers = 2
	return cfg
}

func newTestEngine(t testing.TB, configure ...func(*Builder)) (*Engine, *inbox) {
	t.Helper()

	box := newInbox()
	b := New().WithConfig(testConfig()).WithNotifier(box.notifier())
	for _, fn := range configure {
		fn(b)
	}

	engine, err := b.Build()
	if err != nil {
		t.Fatalf("Build error: %v", err)
	}
	t.Cleanup(engine.Close)
	return engine, box
}

func wrongCode(code string) string {
	if code == "000000" {
		return "111111"
	}
	return "000000"
}
