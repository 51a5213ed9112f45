// internal/service/fakes_test.go

package service

import (
	"context"
	"database/sql"
	"sort"
	"sync"
	"time"

	"github.com/dhananjayaaps/wifi-monitor/internal/models"
	"github.com/dhananjayaaps/wifi-monitor/internal/repository"
)

// In-memory repositories mirroring the SQL semantics, so the services can
// be exercised without a database.

type fakeDeviceRepo struct {
	mu      sync.Mutex
	nextID  int64
	devices map[int64]*models.Device
	byMAC   map[string]int64
}

func newFakeDeviceRepo() *fakeDeviceRepo {
	return &fakeDeviceRepo{
		devices: make(map[int64]*models.Device),
		byMAC:   make(map[string]int64),
	}
}

func (r *fakeDeviceRepo) UpsertBatch(_ context.Context, ownerID int64, snapshots []models.DeviceSnapshot, seenAt time.Time) ([]string, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	macs := make([]string, 0, len(snapshots))
	for _, snap := range snapshots {
		if id, ok := r.byMAC[snap.MACAddress]; ok {
			d := r.devices[id]
			if snap.IPAddress != nil {
				d.IPAddress = snap.IPAddress
			}
			if snap.Hostname != nil {
				d.Hostname = snap.Hostname
			}
			if snap.Manufacturer != nil {
				d.Manufacturer = snap.Manufacturer
			}
			if snap.DeviceType != nil {
				d.DeviceType = snap.DeviceType
			}
			d.LastSeen = seenAt
			d.IsActive = true
			d.UpdatedAt = seenAt
		} else {
			r.nextID++
			d := &models.Device{
				ID:           r.nextID,
				OwnerID:      ownerID,
				MACAddress:   snap.MACAddress,
				IPAddress:    snap.IPAddress,
				Hostname:     snap.Hostname,
				Manufacturer: snap.Manufacturer,
				DeviceType:   snap.DeviceType,
				FirstSeen:    seenAt,
				LastSeen:     seenAt,
				IsActive:     true,
				CreatedAt:    seenAt,
				UpdatedAt:    seenAt,
			}
			r.devices[d.ID] = d
			r.byMAC[d.MACAddress] = d.ID
		}
		macs = append(macs, snap.MACAddress)
	}
	return macs, nil
}

func (r *fakeDeviceRepo) GetByMAC(_ context.Context, mac string) (*models.Device, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	id, ok := r.byMAC[mac]
	if !ok {
		return nil, nil
	}
	d := *r.devices[id]
	return &d, nil
}

func (r *fakeDeviceRepo) GetByID(_ context.Context, id int64) (*models.Device, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	d, ok := r.devices[id]
	if !ok {
		return nil, sql.ErrNoRows
	}
	copied := *d
	return &copied, nil
}

func (r *fakeDeviceRepo) ListByOwner(_ context.Context, ownerID int64) ([]models.Device, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := []models.Device{}
	for _, d := range r.devices {
		if d.OwnerID == ownerID {
			out = append(out, *d)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (r *fakeDeviceRepo) Update(_ context.Context, id int64, updates *models.UpdateDeviceRequest) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	d, ok := r.devices[id]
	if !ok {
		return sql.ErrNoRows
	}
	if updates.IPAddress != nil {
		d.IPAddress = updates.IPAddress
	}
	if updates.Hostname != nil {
		d.Hostname = updates.Hostname
	}
	if updates.Manufacturer != nil {
		d.Manufacturer = updates.Manufacturer
	}
	if updates.DeviceType != nil {
		d.DeviceType = updates.DeviceType
	}
	if updates.DataCap != nil {
		d.DataCap = updates.DataCap
	}
	if updates.IsActive != nil {
		d.IsActive = *updates.IsActive
	}
	return nil
}

func (r *fakeDeviceRepo) Delete(_ context.Context, id int64) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	d, ok := r.devices[id]
	if !ok {
		return sql.ErrNoRows
	}
	delete(r.byMAC, d.MACAddress)
	delete(r.devices, id)
	return nil
}

type fakeStatRepo struct {
	mu     sync.Mutex
	nextID int64
	stats  []models.DeviceStat
}

func newFakeStatRepo() *fakeStatRepo {
	return &fakeStatRepo{}
}

func (r *fakeStatRepo) InsertBatch(_ context.Context, stats []models.DeviceStat) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, s := range stats {
		r.nextID++
		s.ID = r.nextID
		r.stats = append(r.stats, s)
	}
	return nil
}

func (r *fakeStatRepo) Aggregate(_ context.Context, deviceID int64, start, end *time.Time) (*models.UsageSummary, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	summary := &models.UsageSummary{DeviceID: deviceID}
	for _, s := range r.stats {
		if s.DeviceID != deviceID {
			continue
		}
		if start != nil && s.Timestamp.Before(*start) {
			continue
		}
		if end != nil && s.Timestamp.After(*end) {
			continue
		}
		summary.BytesUploaded += s.BytesUploaded
		summary.BytesDownloaded += s.BytesDownloaded
	}
	summary.TotalBytes = summary.BytesUploaded + summary.BytesDownloaded
	return summary, nil
}

func (r *fakeStatRepo) GetLatest(_ context.Context, deviceID int64, limit int) ([]models.DeviceStat, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := []models.DeviceStat{}
	for i := len(r.stats) - 1; i >= 0 && len(out) < limit; i-- {
		if r.stats[i].DeviceID == deviceID {
			out = append(out, r.stats[i])
		}
	}
	return out, nil
}

type fakeAlertRepo struct {
	mu      sync.Mutex
	nextID  int64
	alerts  map[int64]*models.Alert
	history []models.AlertHistory
}

func newFakeAlertRepo() *fakeAlertRepo {
	return &fakeAlertRepo{alerts: make(map[int64]*models.Alert)}
}

func (r *fakeAlertRepo) Create(_ context.Context, alert *models.Alert) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.nextID++
	alert.ID = r.nextID
	copied := *alert
	r.alerts[alert.ID] = &copied
	return nil
}

func (r *fakeAlertRepo) GetByID(_ context.Context, id int64) (*models.Alert, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	a, ok := r.alerts[id]
	if !ok {
		return nil, sql.ErrNoRows
	}
	copied := *a
	return &copied, nil
}

func (r *fakeAlertRepo) ListByUser(_ context.Context, userID int64) ([]models.Alert, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := []models.Alert{}
	for _, a := range r.alerts {
		if a.UserID == userID {
			out = append(out, *a)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (r *fakeAlertRepo) ListEnabledForDevice(_ context.Context, userID, deviceID int64) ([]models.Alert, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := []models.Alert{}
	for _, a := range r.alerts {
		if a.UserID != userID || !a.IsEnabled {
			continue
		}
		if a.DeviceID == nil || *a.DeviceID == deviceID {
			out = append(out, *a)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (r *fakeAlertRepo) Update(_ context.Context, id int64, updates *models.UpdateAlertRequest) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	a, ok := r.alerts[id]
	if !ok {
		return sql.ErrNoRows
	}
	if updates.ThresholdValue != nil {
		a.ThresholdValue = *updates.ThresholdValue
	}
	if updates.IsEnabled != nil {
		a.IsEnabled = *updates.IsEnabled
	}
	return nil
}

func (r *fakeAlertRepo) Delete(_ context.Context, id int64) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.alerts[id]; !ok {
		return sql.ErrNoRows
	}
	delete(r.alerts, id)
	return nil
}

// UpsertDataCapRule keeps the one-rule-per-(user, device) invariant the
// partial unique index enforces in SQL.
func (r *fakeAlertRepo) UpsertDataCapRule(_ context.Context, userID, deviceID, threshold int64) (*models.Alert, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, a := range r.alerts {
		if a.AlertType == models.AlertTypeDataCap && a.UserID == userID &&
			a.DeviceID != nil && *a.DeviceID == deviceID {
			a.ThresholdValue = threshold
			copied := *a
			return &copied, nil
		}
	}
	r.nextID++
	a := &models.Alert{
		ID:             r.nextID,
		UserID:         userID,
		DeviceID:       &deviceID,
		AlertType:      models.AlertTypeDataCap,
		ThresholdValue: threshold,
		IsEnabled:      true,
	}
	r.alerts[a.ID] = a
	copied := *a
	return &copied, nil
}

func (r *fakeAlertRepo) AppendTrigger(_ context.Context, trigger *models.AlertHistory) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.nextID++
	trigger.ID = r.nextID
	r.history = append(r.history, *trigger)
	return nil
}

func (r *fakeAlertRepo) ListHistoryByUser(_ context.Context, userID int64, limit, offset int) ([]models.AlertHistory, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := []models.AlertHistory{}
	for _, h := range r.history {
		a, ok := r.alerts[h.AlertID]
		if ok && a.UserID == userID {
			out = append(out, h)
		}
	}
	if offset > len(out) {
		offset = len(out)
	}
	out = out[offset:]
	if len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (r *fakeAlertRepo) ListHistoryByAlert(_ context.Context, alertID int64, limit int) ([]models.AlertHistory, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := []models.AlertHistory{}
	for _, h := range r.history {
		if h.AlertID == alertID && len(out) < limit {
			out = append(out, h)
		}
	}
	return out, nil
}

func (r *fakeAlertRepo) ResolveTrigger(_ context.Context, id int64, at time.Time) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for i := range r.history {
		if r.history[i].ID == id {
			r.history[i].ResolvedAt = &at
			return nil
		}
	}
	return sql.ErrNoRows
}

func (r *fakeAlertRepo) allHistory() []models.AlertHistory {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]models.AlertHistory, len(r.history))
	copy(out, r.history)
	return out
}

type fakeUserRepo struct {
	mu            sync.Mutex
	nextID        int64
	users         map[int64]*models.User
	agents        map[string]*models.Agent
	notifications []models.Notification
}

func newFakeUserRepo() *fakeUserRepo {
	return &fakeUserRepo{
		users:  make(map[int64]*models.User),
		agents: make(map[string]*models.Agent),
	}
}

func (r *fakeUserRepo) CreateUser(_ context.Context, user *models.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, u := range r.users {
		if u.Email == user.Email {
			return repository.ErrDuplicateEmail
		}
	}
	r.nextID++
	user.ID = r.nextID
	copied := *user
	r.users[user.ID] = &copied
	return nil
}

func (r *fakeUserRepo) GetUserByEmail(_ context.Context, email string) (*models.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, u := range r.users {
		if u.Email == email {
			copied := *u
			return &copied, nil
		}
	}
	return nil, sql.ErrNoRows
}

func (r *fakeUserRepo) GetUserByID(_ context.Context, id int64) (*models.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	u, ok := r.users[id]
	if !ok {
		return nil, sql.ErrNoRows
	}
	copied := *u
	return &copied, nil
}

func (r *fakeUserRepo) CreateAgent(_ context.Context, agent *models.Agent) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.nextID++
	agent.ID = r.nextID
	agent.IsActive = true
	copied := *agent
	r.agents[agent.APIKey] = &copied
	return nil
}

func (r *fakeUserRepo) GetAgentByAPIKey(_ context.Context, apiKey string) (*models.Agent, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	a, ok := r.agents[apiKey]
	if !ok {
		return nil, sql.ErrNoRows
	}
	copied := *a
	return &copied, nil
}

func (r *fakeUserRepo) UpdateAgentLastSync(_ context.Context, agentID int64, at time.Time) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, a := range r.agents {
		if a.ID == agentID {
			a.LastSync = &at
			return nil
		}
	}
	return sql.ErrNoRows
}

func (r *fakeUserRepo) CreateNotification(_ context.Context, n *models.Notification) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.nextID++
	n.ID = r.nextID
	r.notifications = append(r.notifications, *n)
	return nil
}

func (r *fakeUserRepo) ListNotificationsByUser(_ context.Context, userID int64, limit int) ([]models.Notification, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := []models.Notification{}
	for i := len(r.notifications) - 1; i >= 0 && len(out) < limit; i-- {
		if r.notifications[i].UserID == userID {
			out = append(out, r.notifications[i])
		}
	}
	return out, nil
}

// fakeBroadcaster records fired triggers instead of pushing to sockets.
type fakeBroadcaster struct {
	mu       sync.Mutex
	triggers []models.AlertTrigger
}

func (b *fakeBroadcaster) BroadcastAlert(_ int64, trigger *models.AlertTrigger) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.triggers = append(b.triggers, *trigger)
}

func (b *fakeBroadcaster) fired() []models.AlertTrigger {
	b.mu.Lock()
	defer b.mu.Unlock()
	out := make([]models.AlertTrigger, len(b.triggers))
	copy(out, b.triggers)
	return out
}
