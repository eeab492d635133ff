package auth

import (
	"context"
	"errors"
	"regexp"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/roadsphere/roadsphere/internal/identity"
	"github.com/roadsphere/roadsphere/internal/logging"
	"github.com/roadsphere/roadsphere/internal/metrics"
	"github.com/roadsphere/roadsphere/internal/notification"
	"github.com/roadsphere/roadsphere/internal/otp"
)

type clock struct {
	mu sync.Mutex
	t  time.Time
}

func (c *clock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.t
}

func (c *clock) Advance(d time.Duration) {
	c.mu.Lock()
	c.t = c.t.Add(d)
	c.mu.Unlock()
}

// outbox records delivered messages and can be told to fail.
type outbox struct {
	mu   sync.Mutex
	sent []notification.Message
	fail bool
}

func (o *outbox) Send(_ context.Context, m notification.Message) error {
	o.mu.Lock()
	defer o.mu.Unlock()
	if o.fail {
		return errors.New("smtp down")
	}
	o.sent = append(o.sent, m)
	return nil
}

var codePattern = regexp.MustCompile(`<b>(\d{6})</b>`)

// lastCode extracts the code from the most recent message to email.
func (o *outbox) lastCode(t *testing.T, email string) string {
	t.Helper()
	o.mu.Lock()
	defer o.mu.Unlock()
	for i := len(o.sent) - 1; i >= 0; i-- {
		if o.sent[i].Destination == email {
			m := codePattern.FindStringSubmatch(o.sent[i].Body)
			require.Len(t, m, 2)
			return m[1]
		}
	}
	t.Fatalf("no message sent to %s", email)
	return ""
}

type fixture struct {
	svc    *Service
	guard  *Guard
	users  identity.Repository
	tokens *TokenIssuer
	out    *outbox
	clock  *clock
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	clk := &clock{t: time.Date(2026, 5, 4, 10, 0, 0, 0, time.UTC)}
	users := identity.NewMemoryRepository()
	tokens := NewTokenIssuer("test-secret", clk.Now)
	out := &outbox{}
	svc := NewService(Options{
		Users:      users,
		OTPs:       otp.NewEngine(otp.NewMemoryRepository(), otp.WithClock(clk.Now)),
		Hasher:     NewPasswordHasher(4),
		Tokens:     tokens,
		Notifier:   out,
		Logger:     logging.Discard(),
		Metrics:    metrics.New("test"),
		SessionTTL: time.Hour,
		ResetTTL:   15 * time.Minute,
	})
	return &fixture{
		svc:    svc,
		guard:  NewGuard(tokens, users, clk.Now, logging.Discard()),
		users:  users,
		tokens: tokens,
		out:    out,
		clock:  clk,
	}
}

func (f *fixture) register(t *testing.T, email, password string) identity.Profile {
	t.Helper()
	p, err := f.svc.Register(context.Background(), RegisterInput{Email: email, FirstName: "a", LastName: "b", Password: password})
	require.NoError(t, err)
	return p
}
