package syncer

import (
	"context"
	"fmt"

	"github.com/dmitrijs2005/tripsync/internal/client/models"
	"github.com/dmitrijs2005/tripsync/internal/client/reconcile"
)

// domainPlan bundles the per-domain operations the orchestrator walks. The
// generic plumbing lives in planFor; the five plans differ only in their
// store accessors, fold and merge functions.
type domainPlan struct {
	domain   models.Domain
	cycle    func(ctx context.Context, userID, deviceID string, localMeta *models.Metadata) (int, error)
	upload   func(ctx context.Context, userID, deviceID string) error
	download func(ctx context.Context, userID, deviceID string, localMeta *models.Metadata) (int, error)
}

func planFor[T any](
	o *Orchestrator,
	domain models.Domain,
	get func(ctx context.Context) *T,
	set func(ctx context.Context, data *T),
	fold func(records []models.DeviceRecord[*T]) (*T, *models.Metadata),
	merge func(local, remote *T, localMeta, remoteMeta *models.Metadata, strategy models.Strategy) models.ReconciliationResult[*T],
	strategy models.Strategy,
) domainPlan {
	// reconcileAndStore runs download→fold→reconcile→store and returns the
	// merged value plus the typed records the backend already holds.
	// localMeta is the caller's pre-cycle snapshot: the store write below
	// re-stamps the shared metadata record, so reading it back here would
	// make later domains in the same cycle compare against their own writes.
	reconcileAndStore := func(ctx context.Context, userID, deviceID string, localMeta *models.Metadata) (*T, []models.DeviceRecord[*T], *T, int, error) {
		env := o.gw.Get(ctx, userID, deviceID, domain)
		if env == nil {
			return nil, nil, nil, 0, fmt.Errorf("%s: download failed", domain)
		}
		records, err := reconcile.DecodeRecords[T](env)
		if err != nil {
			return nil, nil, nil, 0, fmt.Errorf("%s: %w", domain, err)
		}

		remote, remoteMeta := fold(records)
		local := get(ctx)

		res := merge(local, remote, localMeta, remoteMeta, strategy)
		for _, c := range res.Conflicts {
			o.log.Info(ctx, "conflict resolved", "dataType", c.DataType, "strategy", c.Strategy)
		}
		// Don't materialize empty defaults for a domain neither side has.
		if res.MergedData != nil && (local != nil || len(records) > 0) {
			set(ctx, res.MergedData)
			o.store.TouchAt(ctx, res.Metadata.LastModified)
		}
		return res.MergedData, records, local, len(res.Conflicts), nil
	}

	return domainPlan{
		domain: domain,

		cycle: func(ctx context.Context, userID, deviceID string, localMeta *models.Metadata) (int, error) {
			merged, records, local, conflicts, err := reconcileAndStore(ctx, userID, deviceID, localMeta)
			if err != nil {
				return 0, err
			}

			// Nothing anywhere: don't seed the backend with empty defaults.
			if local == nil && len(records) == 0 {
				return conflicts, nil
			}

			// Skip the upload when our own remote record already matches the
			// merged value (stable checksum ⇒ no-op sync).
			for _, rec := range records {
				if rec.DeviceID == deviceID && reconcile.Equal(rec.Data, merged) {
					return conflicts, nil
				}
			}

			if !o.gw.Save(ctx, userID, deviceID, domain, merged) {
				return 0, fmt.Errorf("%s: upload failed", domain)
			}
			return conflicts, nil
		},

		upload: func(ctx context.Context, userID, deviceID string) error {
			local := get(ctx)
			if local == nil {
				return nil
			}
			if !o.gw.Save(ctx, userID, deviceID, domain, local) {
				return fmt.Errorf("%s: upload failed", domain)
			}
			return nil
		},

		download: func(ctx context.Context, userID, deviceID string, localMeta *models.Metadata) (int, error) {
			_, _, _, conflicts, err := reconcileAndStore(ctx, userID, deviceID, localMeta)
			return conflicts, err
		},
	}
}

// plans returns the five domain plans in the fixed sync order.
func (o *Orchestrator) plans() []domainPlan {
	return []domainPlan{
		planFor(o, models.DomainMain,
			o.store.GetMainData, o.store.SetMainData,
			reconcile.FoldMainData, reconcile.ReconcileMainData, models.StrategyMergeSmart),
		planFor(o, models.DomainPreferences,
			o.store.GetPreferences, o.store.SetPreferences,
			reconcile.FoldPreferences, reconcile.ReconcilePreferences, models.StrategyLatestWins),
		planFor(o, models.DomainItinerary,
			o.store.GetItinerary, o.store.SetItinerary,
			reconcile.FoldItinerary, reconcile.ReconcileItinerary, models.StrategyMergeByID),
		planFor(o, models.DomainSearch,
			o.store.GetSearchData, o.store.SetSearchData,
			reconcile.FoldSearchData, reconcile.ReconcileSearchData, models.StrategyMergeUnion),
		planFor(o, models.DomainTimezoneCache,
			o.store.GetTimezoneCache, o.store.SetTimezoneCache,
			reconcile.FoldTimezoneCache, reconcile.ReconcileTimezoneCache, models.StrategyMergeUnion),
	}
}

// PerformFullSync runs the full five-domain cycle. It fails fast: the first
// domain whose cycle fails aborts the remaining domains.
func (o *Orchestrator) PerformFullSync(ctx context.Context, userID string) error {
	return o.enqueue(ctx, "full-sync", func(ctx context.Context) error {
		return o.fullSync(ctx, userID)
	})
}

func (o *Orchestrator) fullSync(ctx context.Context, userID string) error {
	o.setStatus(StatusSyncing, "")
	deviceID := o.store.DeviceID(ctx)
	// One metadata snapshot for the whole cycle: every domain compares
	// against the replica's state as of sync start.
	localMeta := o.store.GetMetadata(ctx)

	conflicts := 0
	for _, plan := range o.plans() {
		n, err := plan.cycle(ctx, userID, deviceID, localMeta)
		if err != nil {
			o.log.Error(ctx, "sync failed", "domain", plan.domain, "error", err)
			o.setStatus(StatusError, err.Error())
			return err
		}
		conflicts += n
	}

	o.setStatus(StatusSuccess, "")
	st := o.State()
	o.publish(Event{Type: EventSyncCompleted, State: st, Conflicts: conflicts, At: st.LastSync})
	o.log.Info(ctx, "full sync finished", "conflicts", conflicts)
	return nil
}

// UploadToCloud pushes every locally present domain to the backend without
// downloading first ("force upload"). Domain failures are isolated: each
// domain is attempted, and the first error is reported after the loop.
func (o *Orchestrator) UploadToCloud(ctx context.Context, userID string) error {
	return o.enqueue(ctx, "upload", func(ctx context.Context) error {
		o.setStatus(StatusSyncing, "")
		deviceID := o.store.DeviceID(ctx)

		var firstErr error
		for _, plan := range o.plans() {
			if err := plan.upload(ctx, userID, deviceID); err != nil {
				o.log.Error(ctx, "upload failed", "domain", plan.domain, "error", err)
				if firstErr == nil {
					firstErr = err
				}
			}
		}
		if firstErr != nil {
			o.setStatus(StatusError, firstErr.Error())
			return firstErr
		}
		o.setStatus(StatusSuccess, "")
		return nil
	})
}

// DownloadFromCloud pulls and reconciles every domain into the local store
// without uploading ("force download").
func (o *Orchestrator) DownloadFromCloud(ctx context.Context, userID string) error {
	return o.enqueue(ctx, "download", func(ctx context.Context) error {
		o.setStatus(StatusSyncing, "")
		deviceID := o.store.DeviceID(ctx)
		localMeta := o.store.GetMetadata(ctx)

		var firstErr error
		for _, plan := range o.plans() {
			if _, err := plan.download(ctx, userID, deviceID, localMeta); err != nil {
				o.log.Error(ctx, "download failed", "domain", plan.domain, "error", err)
				if firstErr == nil {
					firstErr = err
				}
			}
		}
		if firstErr != nil {
			o.setStatus(StatusError, firstErr.Error())
			return firstErr
		}
		o.setStatus(StatusSuccess, "")
		return nil
	})
}

// PerformInitialSync runs once per (user, device) pair on first login. A
// returning user's cloud history is never blindly overwritten: when any
// remote data exists the full reconcile path runs; only a truly empty
// account gets seeded with this device's local data.
func (o *Orchestrator) PerformInitialSync(ctx context.Context, userID string) error {
	return o.enqueue(ctx, "initial-sync", func(ctx context.Context) error {
		all := o.gw.GetAll(ctx, userID)
		if all == nil {
			err := fmt.Errorf("initial sync: remote probe failed")
			o.setStatus(StatusError, err.Error())
			return err
		}

		hasRemote := false
		for _, env := range all {
			if !env.Empty() {
				hasRemote = true
				break
			}
		}

		if hasRemote {
			return o.fullSync(ctx, userID)
		}

		o.setStatus(StatusSyncing, "")
		deviceID := o.store.DeviceID(ctx)
		for _, plan := range o.plans() {
			if err := plan.upload(ctx, userID, deviceID); err != nil {
				o.setStatus(StatusError, err.Error())
				return err
			}
		}
		o.setStatus(StatusSuccess, "")
		o.log.Info(ctx, "initial sync seeded remote from local data")
		return nil
	})
}

// DeleteAllData wipes the user's data remotely and locally. The remote wipe
// runs first; when it fails the local copy is left untouched so the data
// can still be recovered.
func (o *Orchestrator) DeleteAllData(ctx context.Context, userID string) error {
	return o.enqueue(ctx, "delete-all", func(ctx context.Context) error {
		if !o.gw.DeleteAll(ctx, userID) {
			return fmt.Errorf("delete-all: remote delete failed")
		}
		if err := o.store.Clear(ctx); err != nil {
			return fmt.Errorf("delete-all: local clear failed: %w", err)
		}
		o.log.Info(ctx, "all user data deleted", "userID", userID)
		return nil
	})
}
