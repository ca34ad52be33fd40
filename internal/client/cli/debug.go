package cli

import (
	"context"
	"fmt"
	"os"

	"github.com/dmitrijs2005/liftfield/internal/client/models"
	"github.com/dmitrijs2005/liftfield/internal/common"
	"github.com/google/uuid"
)

// Sync forces a reachability probe and, when online, refreshes both
// collections from the remote database.
func (a *App) Sync(ctx context.Context) error {
	if !a.net.Probe(ctx) {
		printlnFn("Still offline, showing cached data")
		return nil
	}
	a.refreshLists(ctx)
	printlnFn("Synchronized")
	return nil
}

// Status prints the debug snapshot: session state, connectivity, component
// readiness and cache counts.
func (a *App) Status(ctx context.Context) error {
	id, state := a.sess.Current()
	snap := a.net.Snapshot()

	email := "-"
	if id != nil {
		email = id.Email
	}

	docs, _, derr := a.docs.List(ctx)
	docCount := "-"
	if derr == nil {
		docCount = fmt.Sprintf("%d", len(docs))
	}

	printlnFn("Session state:  ", state.String())
	printlnFn("Identity:       ", email)
	printlnFn("Mode:           ", string(a.Mode()))
	printlnFn("Offline flag:   ", fmt.Sprintf("%v (checked %s)", snap.Offline, snap.CheckedAt.Format("15:04:05")))
	printlnFn("Gateway ready:  ", fmt.Sprintf("%v", a.gw != nil))
	printlnFn("Worker ready:   ", fmt.Sprintf("%v", a.worker != nil && a.worker.Ready()))
	printlnFn("Documents:      ", docCount)
	return nil
}

// ClearData wipes the whole local store (session, snapshots, user library)
// and signs out. Irreversible.
func (a *App) ClearData(ctx context.Context) error {
	answer, err := getSimpleText(a.reader, "Wipe ALL local data and sign out? (y/N)", os.Stdout)
	if err != nil {
		return err
	}
	if answer != "y" && answer != "Y" {
		printlnFn("Cancelled")
		return nil
	}

	if err := a.kv.Clear(ctx); err != nil {
		printlnFn("Wipe failed:", err.Error())
		return err
	}
	return a.Logout(ctx)
}

// SeedTask creates a sample work order for the current user through the
// gateway. Intended for demos and manual testing.
func (a *App) SeedTask(ctx context.Context) error {
	if a.gw == nil {
		return common.ErrGatewayUnavailable
	}
	id, _ := a.sess.Current()
	if id == nil {
		return common.ErrNotLoggedIn
	}

	task := models.Task{
		ID:          uuid.NewString(),
		Title:       "Monthly inspection",
		Description: "Check door drive, ropes and safety circuit",
		Address:     "12 Main St, entrance 2",
		LiftModel:   "KONE MonoSpace 500",
		Priority:    "normal",
		Status:      models.StatusNew,
		OwnerID:     id.SubjectID,
	}

	created, err := a.gw.CreateTask(ctx, task)
	if err != nil {
		printlnFn("Cannot seed task:", err.Error())
		return err
	}
	printlnFn("Created task", created.ID)
	return a.Tasks(ctx)
}
