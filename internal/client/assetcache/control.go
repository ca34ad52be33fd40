package assetcache

import "context"

// Control is a message to a running Worker, mirroring the registration
// channel of the old in-browser build: SkipWaiting activates immediately,
// Precache adds extra URLs to the shell store eagerly.
type Control struct {
	SkipWaiting bool
	Precache    []string
}

// Run installs the shell, then consumes control messages until ctx is done.
// Without a SkipWaiting message the worker activates right after install;
// the flag exists so a coordinator can stage several workers and flip them
// over together.
func (w *Worker) Run(ctx context.Context, controls <-chan Control, waitForSignal bool) error {
	if _, err := w.Install(ctx); err != nil {
		return err
	}
	if !waitForSignal {
		if err := w.Activate(ctx); err != nil {
			return err
		}
	}

	for {
		select {
		case msg, ok := <-controls:
			if !ok {
				return nil
			}
			if err := w.handle(ctx, msg); err != nil {
				w.log.Warn(ctx, "control message failed", "error", err)
			}
		case <-ctx.Done():
			return ctx.Err()
		}
	}
}

func (w *Worker) handle(ctx context.Context, msg Control) error {
	if msg.SkipWaiting && !w.Ready() {
		if err := w.Activate(ctx); err != nil {
			return err
		}
	}

	for _, u := range msg.Precache {
		if err := w.fetchInto(ctx, w.static, u); err != nil {
			w.log.Warn(ctx, "precache failed", "url", u, "error", err)
		}
	}
	return nil
}
