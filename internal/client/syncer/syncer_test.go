package syncer

import (
	"context"
	"encoding/json"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/dmitrijs2005/tripsync/internal/client/models"
	"github.com/dmitrijs2005/tripsync/internal/client/store"
	"github.com/dmitrijs2005/tripsync/internal/logging"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	_ "modernc.org/sqlite"
)

// fakeGateway is an in-memory sync backend keyed by (device, domain).
type fakeGateway struct {
	mu           sync.Mutex
	records      map[models.Domain][]models.RawDeviceRecord
	saves        int
	saveAttempts int
	gets         int
	available    bool
	failGet      bool
	failSave     bool
	failWipe     bool
	clock        int64
}

func newFakeGateway() *fakeGateway {
	return &fakeGateway{
		records:   make(map[models.Domain][]models.RawDeviceRecord),
		available: true,
		clock:     1000,
	}
}

func (f *fakeGateway) Save(ctx context.Context, userID, deviceID string, domain models.Domain, payload any) bool {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.saveAttempts++
	if f.failSave {
		return false
	}
	data, err := json.Marshal(payload)
	if err != nil {
		return false
	}
	f.clock++
	f.saves++

	recs := f.records[domain]
	for i, rec := range recs {
		if rec.DeviceID == deviceID {
			recs[i] = models.RawDeviceRecord{DeviceID: deviceID, Data: data, LastUpdated: f.clock, Version: models.SchemaVersion}
			return true
		}
	}
	f.records[domain] = append(recs, models.RawDeviceRecord{DeviceID: deviceID, Data: data, LastUpdated: f.clock, Version: models.SchemaVersion})
	return true
}

func (f *fakeGateway) Get(ctx context.Context, userID, deviceID string, domain models.Domain) *models.Envelope {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.gets++
	if f.failGet {
		return nil
	}
	return &models.Envelope{Devices: f.records[domain]}
}

func (f *fakeGateway) Delete(ctx context.Context, userID, deviceID string, domain models.Domain) bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	recs := f.records[domain]
	for i, rec := range recs {
		if rec.DeviceID == deviceID {
			f.records[domain] = append(recs[:i], recs[i+1:]...)
			break
		}
	}
	return true
}

func (f *fakeGateway) GetAll(ctx context.Context, userID string) map[models.Domain]*models.Envelope {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.failGet {
		return nil
	}
	all := make(map[models.Domain]*models.Envelope)
	for _, d := range models.AllDomains() {
		all[d] = &models.Envelope{Devices: f.records[d]}
	}
	return all
}

func (f *fakeGateway) DeleteAll(ctx context.Context, userID string) bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.failWipe {
		return false
	}
	f.records = make(map[models.Domain][]models.RawDeviceRecord)
	return true
}

func (f *fakeGateway) IsAvailable(ctx context.Context) bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.available
}

func (f *fakeGateway) put(t *testing.T, domain models.Domain, deviceID string, lastUpdated int64, payload any) {
	t.Helper()
	data, err := json.Marshal(payload)
	require.NoError(t, err)
	f.mu.Lock()
	defer f.mu.Unlock()
	f.records[domain] = append(f.records[domain], models.RawDeviceRecord{
		DeviceID: deviceID, Data: data, LastUpdated: lastUpdated, Version: models.SchemaVersion,
	})
}

func setup(t *testing.T) (*store.LocalStore, *fakeGateway, *Orchestrator) {
	return setupOpts(t, Options{StatusRevertDelay: 10 * time.Millisecond})
}

func setupOpts(t *testing.T, opts Options) (*store.LocalStore, *fakeGateway, *Orchestrator) {
	t.Helper()

	db, err := store.Open(context.Background(), filepath.Join(t.TempDir(), "test.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	ls := store.NewLocalStore(store.NewSQLiteKV(db), logging.NewDiscardLogger())
	gw := newFakeGateway()

	o := New(ls, gw, logging.NewDiscardLogger(), opts)

	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)
	o.Start(ctx)

	return ls, gw, o
}

func TestInitialSync_NewUserSeedsRemote(t *testing.T) {
	ctx := context.Background()
	ls, gw, o := setup(t)

	ls.SetPreferences(ctx, &models.Preferences{ActiveTab: "currency"})

	require.NoError(t, o.PerformInitialSync(ctx, "u1"))

	// Only the locally present domain was uploaded.
	require.Len(t, gw.records[models.DomainPreferences], 1)
	assert.Empty(t, gw.records[models.DomainItinerary])

	var uploaded models.Preferences
	require.NoError(t, json.Unmarshal(gw.records[models.DomainPreferences][0].Data, &uploaded))
	assert.Equal(t, "currency", uploaded.ActiveTab)
}

func TestInitialSync_ReturningUserReconciles(t *testing.T) {
	ctx := context.Background()
	ls, gw, o := setup(t)

	// Another device already synced newer preferences.
	gw.put(t, models.DomainPreferences, "other-device", 5000, models.Preferences{ActiveTab: "timezone"})

	ls.SetPreferences(ctx, &models.Preferences{ActiveTab: "currency"})
	// Make the remote record strictly newer than the local write.
	ls.SetMetadata(ctx, &models.Metadata{LastModified: 100, DeviceID: ls.DeviceID(ctx), Version: models.SchemaVersion})

	require.NoError(t, o.PerformInitialSync(ctx, "u1"))

	got := ls.GetPreferences(ctx)
	require.NotNil(t, got)
	assert.Equal(t, "timezone", got.ActiveTab)
}

func TestInitialSync_RemoteProbeFailure(t *testing.T) {
	ctx := context.Background()
	_, gw, o := setup(t)

	gw.failGet = true
	err := o.PerformInitialSync(ctx, "u1")
	require.Error(t, err)
	assert.Equal(t, StatusError, o.State().Status)
}

func TestFullSync_SkipsUploadWhenNothingChanged(t *testing.T) {
	ctx := context.Background()
	ls, gw, o := setup(t)

	ls.SetPreferences(ctx, &models.Preferences{ActiveTab: "currency"})
	require.NoError(t, o.PerformFullSync(ctx, "u1"))

	uploads := gw.saves
	require.Positive(t, uploads)

	// Second sync with no changes anywhere is a no-op.
	require.NoError(t, o.PerformFullSync(ctx, "u1"))
	assert.Equal(t, uploads, gw.saves)
}

func TestFullSync_RemoteNewerWinsAcrossDomains(t *testing.T) {
	ctx := context.Background()
	ls, gw, o := setup(t)

	// Two local domains, so preferences reconcile after main data has
	// already been stored in the same cycle. Re-reading metadata mid-cycle
	// would see main's fresh write and wrongly treat local as newest.
	ls.SetMainData(ctx, &models.MainData{PinnedCurrencies: []string{"EUR"}})
	ls.SetPreferences(ctx, &models.Preferences{ActiveTab: "currency"})
	gw.put(t, models.DomainPreferences, "other-device", 5000, models.Preferences{ActiveTab: "timezone"})
	ls.SetMetadata(ctx, &models.Metadata{LastModified: 100, DeviceID: ls.DeviceID(ctx), Version: models.SchemaVersion})

	require.NoError(t, o.PerformFullSync(ctx, "u1"))

	got := ls.GetPreferences(ctx)
	require.NotNil(t, got)
	assert.Equal(t, "timezone", got.ActiveTab)
}

func TestFullSync_MergedDataKeepsOriginTime(t *testing.T) {
	ctx := context.Background()
	ls, gw, o := setup(t)

	gw.put(t, models.DomainPreferences, "other-device", 5000, models.Preferences{ActiveTab: "timezone"})

	require.NoError(t, o.PerformFullSync(ctx, "u1"))

	// Ingesting remote data must not advance lastModified to the wall
	// clock: this replica only copied a record stamped at 5000.
	meta := ls.GetMetadata(ctx)
	require.NotNil(t, meta)
	assert.Equal(t, int64(5000), meta.LastModified)
}

func TestFullSync_UploadFailureAborts(t *testing.T) {
	ctx := context.Background()
	ls, gw, o := setup(t)

	ls.SetMainData(ctx, &models.MainData{PinnedCurrencies: []string{"EUR"}})
	ls.SetPreferences(ctx, &models.Preferences{ActiveTab: "currency"})
	gw.failSave = true

	err := o.PerformFullSync(ctx, "u1")
	require.Error(t, err)
	assert.Equal(t, StatusError, o.State().Status)

	// The first failing upload aborts the remaining domains.
	gw.mu.Lock()
	defer gw.mu.Unlock()
	assert.Equal(t, 1, gw.saveAttempts)
}

func TestFullSync_DownloadFailureAborts(t *testing.T) {
	ctx := context.Background()
	ls, gw, o := setup(t)

	ls.SetPreferences(ctx, &models.Preferences{ActiveTab: "currency"})
	gw.failGet = true

	err := o.PerformFullSync(ctx, "u1")
	require.Error(t, err)
	assert.Equal(t, StatusError, o.State().Status)
	assert.NotEmpty(t, o.State().LastError)
	assert.Zero(t, gw.saves)
}

func TestFullSync_PublishesCompletionEvent(t *testing.T) {
	ctx := context.Background()
	ls, _, o := setup(t)

	id, events := o.Subscribe()
	defer o.Unsubscribe(id)

	ls.SetPreferences(ctx, &models.Preferences{ActiveTab: "currency"})
	require.NoError(t, o.PerformFullSync(ctx, "u1"))

	deadline := time.After(time.Second)
	for {
		select {
		case ev := <-events:
			if ev.Type == EventSyncCompleted {
				assert.Equal(t, StatusSuccess, ev.State.Status)
				return
			}
		case <-deadline:
			t.Fatal("no sync-completed event")
		}
	}
}

func TestStatus_RevertsToIdle(t *testing.T) {
	ctx := context.Background()
	ls, _, o := setup(t)

	ls.SetPreferences(ctx, &models.Preferences{ActiveTab: "currency"})
	require.NoError(t, o.PerformFullSync(ctx, "u1"))
	require.Equal(t, StatusSuccess, o.State().Status)

	assert.Eventually(t, func() bool {
		return o.State().Status == StatusIdle
	}, time.Second, 10*time.Millisecond)

	// LastSync survives the revert.
	assert.False(t, o.State().LastSync.IsZero())
}

func TestPeriodicSync_StartStop(t *testing.T) {
	_, _, o := setup(t)

	assert.False(t, o.IsPeriodicSyncActive())

	o.StartPeriodicSync("u1")
	assert.True(t, o.IsPeriodicSyncActive())

	// Starting again is a no-op.
	o.StartPeriodicSync("u1")
	assert.True(t, o.IsPeriodicSyncActive())

	o.StopPeriodicSync()
	assert.False(t, o.IsPeriodicSyncActive())

	// Stopping when stopped is safe.
	o.StopPeriodicSync()
}

func TestPeriodicSync_OfflineTicksDoNothing(t *testing.T) {
	ctx := context.Background()
	ls, gw, o := setupOpts(t, Options{
		PeriodicInterval:  10 * time.Millisecond,
		StatusRevertDelay: 10 * time.Millisecond,
	})

	ls.SetPreferences(ctx, &models.Preferences{ActiveTab: "currency"})

	o.setOnline(ctx, false)
	o.StartPeriodicSync("u1")
	defer o.StopPeriodicSync()

	time.Sleep(60 * time.Millisecond)

	// Ticks fired but the offline guard kept each one from touching the
	// backend; the timer itself stays active.
	assert.True(t, o.IsPeriodicSyncActive())
	gw.mu.Lock()
	gets, saves := gw.gets, gw.saveAttempts
	gw.mu.Unlock()
	assert.Zero(t, gets)
	assert.Zero(t, saves)

	// Connectivity returns: the next tick syncs.
	o.setOnline(ctx, true)
	assert.Eventually(t, func() bool {
		gw.mu.Lock()
		defer gw.mu.Unlock()
		return gw.saves > 0
	}, time.Second, 10*time.Millisecond)
}

func TestPeriodicSync_UnavailableBackendSkipsTicks(t *testing.T) {
	ctx := context.Background()
	ls, gw, o := setupOpts(t, Options{
		PeriodicInterval:  10 * time.Millisecond,
		StatusRevertDelay: 10 * time.Millisecond,
	})

	ls.SetPreferences(ctx, &models.Preferences{ActiveTab: "currency"})

	gw.mu.Lock()
	gw.available = false
	gw.mu.Unlock()

	o.StartPeriodicSync("u1")
	defer o.StopPeriodicSync()

	time.Sleep(60 * time.Millisecond)

	assert.True(t, o.IsPeriodicSyncActive())
	gw.mu.Lock()
	defer gw.mu.Unlock()
	assert.Zero(t, gw.gets)
	assert.Zero(t, gw.saveAttempts)
}

func TestDeleteAllData(t *testing.T) {
	ctx := context.Background()
	ls, gw, o := setup(t)

	ls.SetPreferences(ctx, &models.Preferences{ActiveTab: "currency"})
	require.NoError(t, o.PerformFullSync(ctx, "u1"))
	require.NotEmpty(t, gw.records[models.DomainPreferences])

	require.NoError(t, o.DeleteAllData(ctx, "u1"))
	assert.Empty(t, gw.records[models.DomainPreferences])
	assert.Nil(t, ls.GetPreferences(ctx))
}

func TestDeleteAllData_RemoteFailureKeepsLocal(t *testing.T) {
	ctx := context.Background()
	ls, gw, o := setup(t)

	ls.SetPreferences(ctx, &models.Preferences{ActiveTab: "currency"})
	gw.failWipe = true

	require.Error(t, o.DeleteAllData(ctx, "u1"))
	assert.NotNil(t, ls.GetPreferences(ctx))
}

func TestUploadToCloud_PushesLocalOnly(t *testing.T) {
	ctx := context.Background()
	ls, gw, o := setup(t)

	// Remote already has other-device data that upload must not pull in.
	gw.put(t, models.DomainPreferences, "other-device", 5000, models.Preferences{ActiveTab: "timezone"})
	ls.SetPreferences(ctx, &models.Preferences{ActiveTab: "currency"})

	require.NoError(t, o.UploadToCloud(ctx, "u1"))
	assert.Equal(t, "currency", ls.GetPreferences(ctx).ActiveTab)
	require.Len(t, gw.records[models.DomainPreferences], 2)
}

func TestDownloadFromCloud_NeverUploads(t *testing.T) {
	ctx := context.Background()
	ls, gw, o := setup(t)

	gw.put(t, models.DomainSearch, "other-device", 5000, models.SearchData{SearchHistory: []string{"tallinn"}})

	require.NoError(t, o.DownloadFromCloud(ctx, "u1"))

	got := ls.GetSearchData(ctx)
	require.NotNil(t, got)
	assert.Equal(t, []string{"tallinn"}, got.SearchHistory)
	assert.Zero(t, gw.saves)
}

func TestOnlineFlag(t *testing.T) {
	_, _, o := setup(t)

	assert.True(t, o.Online())

	ctx := context.Background()
	o.setOnline(ctx, false)
	assert.False(t, o.Online())
	o.setOnline(ctx, true)
	assert.True(t, o.Online())
}
