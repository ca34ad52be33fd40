package cli

import (
	"context"
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/dmitrijs2005/liftfield/internal/client/models"
	"github.com/dmitrijs2005/liftfield/internal/client/services"
)

// Tasks prints the work-order list, marking it when it was served from the
// local cache instead of the remote collection.
func (a *App) Tasks(ctx context.Context) error {
	tasks, src, err := a.tasks.List(ctx)
	if err != nil {
		printlnFn("Cannot list tasks:", err.Error())
		return err
	}

	if src == services.SourceCache {
		printlnFn("(showing locally cached data)")
	}
	if len(tasks) == 0 {
		printlnFn("No tasks")
		return nil
	}

	w := tabwriter.NewWriter(os.Stdout, 2, 4, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tTITLE\tLIFT\tSTATUS\tDEADLINE")
	for _, t := range tasks {
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\n", t.ID, t.Title, t.LiftModel, models.StatusText(t.Status), t.Deadline)
	}
	return w.Flush()
}

// Accept takes a new task into work.
func (a *App) Accept(ctx context.Context, id string) error {
	return a.applyAction(ctx, id, models.ActionAccept)
}

// Reject declines a task. An empty reason prompts for one; the reason is
// shown and logged but never stored.
func (a *App) Reject(ctx context.Context, id, reason string) error {
	if reason == "" {
		var err error
		reason, err = getSimpleText(a.reader, "Reject reason", os.Stdout)
		if err != nil {
			return err
		}
	}

	task, err := a.tasks.Reject(ctx, id, reason)
	if err != nil {
		printlnFn("Cannot reject task:", err.Error())
		return err
	}
	printlnFn(fmt.Sprintf("Task %s is now %q (reason: %s)", task.ID, models.StatusText(task.Status), reason))
	return nil
}

// Complete finishes a task in progress.
func (a *App) Complete(ctx context.Context, id string) error {
	return a.applyAction(ctx, id, models.ActionComplete)
}

// Reset returns a task to the new state.
func (a *App) Reset(ctx context.Context, id string) error {
	return a.applyAction(ctx, id, models.ActionReset)
}

func (a *App) applyAction(ctx context.Context, id string, action models.Action) error {
	task, err := a.tasks.UpdateStatus(ctx, id, action)
	if err != nil {
		printlnFn("Cannot update task:", err.Error())
		return err
	}
	printlnFn(fmt.Sprintf("Task %s is now %q", task.ID, models.StatusText(task.Status)))
	return nil
}
