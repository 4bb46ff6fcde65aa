package cli

import (
	"context"
	"fmt"
	"os"
)

// getSimpleText and getPassword are indirections used to facilitate testing.
// They point to interactive input helpers and can be swapped in tests.
var getSimpleText = GetSimpleText
var getPassword = GetPassword

// Register prompts the user for a username and password and attempts to
// create a new account. On success the user is logged in and an initial
// sync is performed so the fresh account is seeded with local data.
func (a *App) Register(ctx context.Context) error {
	userName, err := getSimpleText(a.reader, "Enter username", os.Stdout)
	if err != nil {
		return err
	}

	password, err := getPassword(os.Stdout)
	if err != nil {
		return err
	}

	if err := a.auth.Register(ctx, userName, password); err != nil {
		fmt.Fprintf(a.out, "Registration failed: %v\n", err)
		return err
	}

	fmt.Fprintln(a.out, "Success!")
	return a.afterLogin(ctx)
}

// Login prompts for credentials and authenticates against the server.
// A successful login kicks off an initial sync and enables periodic sync.
func (a *App) Login(ctx context.Context) error {
	userName, err := getSimpleText(a.reader, "Enter username", os.Stdout)
	if err != nil {
		return err
	}

	password, err := getPassword(os.Stdout)
	if err != nil {
		return err
	}

	if err := a.auth.Login(ctx, userName, password); err != nil {
		fmt.Fprintf(a.out, "Login failed: %v\n", err)
		return err
	}

	fmt.Fprintln(a.out, "Logged in.")
	return a.afterLogin(ctx)
}

// afterLogin performs the initial reconciliation against the cloud copy and
// starts periodic sync for the authenticated user.
func (a *App) afterLogin(ctx context.Context) error {
	userID := a.auth.UserID()

	if err := a.orch.PerformInitialSync(ctx, userID); err != nil {
		fmt.Fprintf(a.out, "Initial sync failed: %v\n", err)
	}

	a.orch.StartPeriodicSync(userID)
	return nil
}

// Logout stops periodic sync and drops the in-memory session token.
// Local data stays on the device.
func (a *App) Logout(ctx context.Context) error {
	a.orch.StopPeriodicSync()
	a.auth.Logout()
	fmt.Fprintln(a.out, "Logged out.")
	return nil
}
