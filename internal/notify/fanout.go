package notify

import (
	"context"
	"log/slog"
	"sync"
	"time"
)

// DefaultTimeout bounds each remote delivery.
const DefaultTimeout = 10 * time.Second

// Fanout delivers each event to every channel. Local channels run inline;
// remote channels run in their own goroutine under a timeout. Errors are
// logged and never returned, so a failing channel cannot affect the caller.
type Fanout struct {
	local   []Notifier
	remote  map[string]Notifier
	timeout time.Duration
	log     *slog.Logger
	wg      sync.WaitGroup
}

// FanoutOpts configures a Fanout.
type FanoutOpts struct {
	Local   []Notifier
	Remote  map[string]Notifier // keyed by channel name for logging
	Timeout time.Duration
	Logger  *slog.Logger
}

// NewFanout returns a Fanout for the given channels.
func NewFanout(opts FanoutOpts) *Fanout {
	timeout := opts.Timeout
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	log := opts.Logger
	if log == nil {
		log = slog.Default()
	}
	return &Fanout{
		local:   opts.Local,
		remote:  opts.Remote,
		timeout: timeout,
		log:     log,
	}
}

// Notify dispatches evt. It always returns nil.
func (f *Fanout) Notify(ctx context.Context, evt Event) error {
	for _, n := range f.local {
		if err := n.Notify(ctx, evt); err != nil {
			f.log.Error("notification failed", "channel", "inbox", "kind", evt.Kind, "pirep", evt.PirepID, "err", err)
		}
	}

	for name, n := range f.remote {
		f.wg.Add(1)
		go func(name string, n Notifier) {
			defer f.wg.Done()
			// Delivery outlives the caller's context.
			sendCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), f.timeout)
			defer cancel()
			if err := n.Notify(sendCtx, evt); err != nil {
				f.log.Error("notification failed", "channel", name, "kind", evt.Kind, "pirep", evt.PirepID, "err", err)
				return
			}
			f.log.Debug("notification sent", "channel", name, "kind", evt.Kind, "pirep", evt.PirepID)
		}(name, n)
	}
	return nil
}

// Wait blocks until every in-flight remote delivery has finished.
func (f *Fanout) Wait() {
	f.wg.Wait()
}
