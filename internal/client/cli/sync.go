package cli

import (
	"context"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/dmitrijs2005/tripsync/internal/client/syncer"
)

// Sync runs a full bidirectional sync for the logged-in user.
func (a *App) Sync(ctx context.Context) error {
	if err := a.orch.PerformFullSync(ctx, a.auth.UserID()); err != nil {
		fmt.Fprintf(a.out, "Sync failed: %v\n", err)
		return err
	}
	fmt.Fprintln(a.out, "Sync complete.")
	return nil
}

// Upload pushes local data to the cloud without touching the local copy.
func (a *App) Upload(ctx context.Context) error {
	if err := a.orch.UploadToCloud(ctx, a.auth.UserID()); err != nil {
		fmt.Fprintf(a.out, "Upload failed: %v\n", err)
		return err
	}
	fmt.Fprintln(a.out, "Upload complete.")
	return nil
}

// Download merges the cloud copy into local data without uploading.
func (a *App) Download(ctx context.Context) error {
	if err := a.orch.DownloadFromCloud(ctx, a.auth.UserID()); err != nil {
		fmt.Fprintf(a.out, "Download failed: %v\n", err)
		return err
	}
	fmt.Fprintln(a.out, "Download complete.")
	return nil
}

// AutoSync toggles periodic background sync. arg must be "on" or "off".
func (a *App) AutoSync(ctx context.Context, arg string) error {
	switch arg {
	case "on":
		a.orch.StartPeriodicSync(a.auth.UserID())
		fmt.Fprintln(a.out, "Periodic sync enabled.")
	case "off":
		a.orch.StopPeriodicSync()
		fmt.Fprintln(a.out, "Periodic sync disabled.")
	default:
		fmt.Fprintln(a.out, "Usage: autosync on|off")
	}
	return nil
}

// Status prints the current sync state, connectivity and periodic sync flag.
func (a *App) Status(ctx context.Context) error {
	st := a.orch.State()
	fmt.Fprintf(a.out, "Status:   %s\n", st.Status)
	if !st.LastSync.IsZero() {
		fmt.Fprintf(a.out, "Last sync: %s\n", st.LastSync.Format(time.RFC3339))
	}
	if st.LastError != "" {
		fmt.Fprintf(a.out, "Last error: %s\n", st.LastError)
	}
	fmt.Fprintf(a.out, "Online:   %v\n", a.orch.Online())
	fmt.Fprintf(a.out, "Autosync: %v\n", a.orch.IsPeriodicSyncActive())
	return nil
}

// DeleteAll removes the user's data from the cloud and wipes the local store.
// The user must confirm by typing "yes".
func (a *App) DeleteAll(ctx context.Context) error {
	answer, err := getSimpleText(a.reader, "Delete ALL local and cloud data? Type 'yes' to confirm", os.Stdout)
	if err != nil {
		return err
	}
	if strings.ToLower(answer) != "yes" {
		fmt.Fprintln(a.out, "Aborted.")
		return nil
	}

	if err := a.orch.DeleteAllData(ctx, a.auth.UserID()); err != nil {
		fmt.Fprintf(a.out, "Delete failed: %v\n", err)
		return err
	}
	fmt.Fprintln(a.out, "All data deleted.")
	return nil
}

// statusLine renders the short prompt suffix shown in the REPL.
func (a *App) statusLine() string {
	if !a.isLoggedIn() {
		return "not logged in"
	}
	mode := "offline"
	if a.orch.Online() {
		mode = "online"
	}
	st := a.orch.State()
	if st.Status == syncer.StatusSyncing {
		mode += ", syncing"
	}
	return mode
}
