// internal/models/models.go

package models

import (
	"context"
	"time"
)

type User struct {
	ID           int64     `json:"id" db:"id"`
	Email        string    `json:"email" db:"email"`
	PasswordHash string    `json:"-" db:"password_hash"`
	CreatedAt    time.Time `json:"created_at" db:"created_at"`
	UpdatedAt    time.Time `json:"updated_at" db:"updated_at"`
}

// Agent is a monitoring process identity. The api key is returned exactly
// once, by the registration response; it is never serialized afterwards.
type Agent struct {
	ID        int64      `json:"id" db:"id"`
	Name      string     `json:"name" db:"name"`
	APIKey    string     `json:"-" db:"api_key"`
	OwnerID   int64      `json:"owner_id" db:"owner_id"`
	IsActive  bool       `json:"is_active" db:"is_active"`
	LastSync  *time.Time `json:"last_sync" db:"last_sync"`
	CreatedAt time.Time  `json:"created_at" db:"created_at"`
}

type Device struct {
	ID           int64     `json:"id" db:"id"`
	OwnerID      int64     `json:"owner_id" db:"owner_id"`
	MACAddress   string    `json:"mac_address" db:"mac_address"`
	IPAddress    *string   `json:"ip_address" db:"ip_address"`
	Hostname     *string   `json:"hostname" db:"hostname"`
	Manufacturer *string   `json:"manufacturer" db:"manufacturer"`
	DeviceType   *string   `json:"device_type" db:"device_type"`
	FirstSeen    time.Time `json:"first_seen" db:"first_seen"`
	LastSeen     time.Time `json:"last_seen" db:"last_seen"`
	IsActive     bool      `json:"is_active" db:"is_active"`
	DataCap      *int64    `json:"data_cap" db:"data_cap"`
	CreatedAt    time.Time `json:"created_at" db:"created_at"`
	UpdatedAt    time.Time `json:"updated_at" db:"updated_at"`
}

// DeviceStat is an append-only usage sample. Samples are the sole source of
// truth for usage; there are no in-place counters anywhere.
type DeviceStat struct {
	ID              int64     `json:"id" db:"id"`
	DeviceID        int64     `json:"device_id" db:"device_id"`
	Timestamp       time.Time `json:"timestamp" db:"timestamp"`
	BytesUploaded   int64     `json:"bytes_uploaded" db:"bytes_uploaded"`
	BytesDownloaded int64     `json:"bytes_downloaded" db:"bytes_downloaded"`
}

type Notification struct {
	ID               int64     `json:"id" db:"id"`
	UserID           int64     `json:"user_id" db:"user_id"`
	Message          string    `json:"message" db:"message"`
	NotificationType string    `json:"notification_type" db:"notification_type"`
	IsRead           bool      `json:"is_read" db:"is_read"`
	CreatedAt        time.Time `json:"created_at" db:"created_at"`
}

// DeviceSnapshot is one discovered device as reported by an agent scan.
// Transient; it is merged into a Device row, never stored directly.
type DeviceSnapshot struct {
	MACAddress   string  `json:"mac_address"`
	IPAddress    *string `json:"ip_address"`
	Hostname     *string `json:"hostname"`
	Manufacturer *string `json:"manufacturer"`
	DeviceType   *string `json:"device_type"`
}

// StatSample is one usage measurement as reported by an agent. The
// collector stamps the timestamp at ingestion.
type StatSample struct {
	MACAddress      string `json:"mac_address"`
	BytesUploaded   int64  `json:"bytes_uploaded"`
	BytesDownloaded int64  `json:"bytes_downloaded"`
}

type SyncDevicesRequest struct {
	Devices []DeviceSnapshot `json:"devices"`
}

type SyncResult struct {
	SyncedCount int      `json:"synced_count"`
	SyncedMACs  []string `json:"synced_macs"`
}

type IngestStatsRequest struct {
	Stats []StatSample `json:"stats"`
}

type IngestResult struct {
	IngestedCount int      `json:"ingested_count"`
	IngestedMACs  []string `json:"ingested_macs"`
}

type UsageSummary struct {
	DeviceID        int64 `json:"device_id"`
	BytesUploaded   int64 `json:"bytes_uploaded"`
	BytesDownloaded int64 `json:"bytes_downloaded"`
	TotalBytes      int64 `json:"total_bytes"`
}

type UpdateDeviceRequest struct {
	IPAddress    *string `json:"ip_address"`
	Hostname     *string `json:"hostname"`
	Manufacturer *string `json:"manufacturer"`
	DeviceType   *string `json:"device_type"`
	DataCap      *int64  `json:"data_cap"`
	IsActive     *bool   `json:"is_active"`
}

type RegisterRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type RegisterAgentRequest struct {
	Name string `json:"name"`
}

type HealthResponse struct {
	Status    string    `json:"status"`
	Timestamp time.Time `json:"timestamp"`
	Services  struct {
		Database bool `json:"database"`
		MQTT     bool `json:"mqtt"`
	} `json:"services"`
}

type DeviceRepository interface {
	// UpsertBatch reconciles a batch of snapshots in a single transaction.
	// Unseen macs are created with first_seen = last_seen = seenAt; known
	// macs keep first_seen, merge non-null snapshot fields over existing
	// values, bump last_seen and are forced active. Returns the macs
	// written, in input order.
	UpsertBatch(ctx context.Context, ownerID int64, snapshots []DeviceSnapshot, seenAt time.Time) ([]string, error)
	GetByMAC(ctx context.Context, mac string) (*Device, error)
	GetByID(ctx context.Context, id int64) (*Device, error)
	ListByOwner(ctx context.Context, ownerID int64) ([]Device, error)
	Update(ctx context.Context, id int64, updates *UpdateDeviceRequest) error
	Delete(ctx context.Context, id int64) error
}

type StatRepository interface {
	InsertBatch(ctx context.Context, stats []DeviceStat) error
	// Aggregate sums uploaded/downloaded bytes for a device over an
	// optional inclusive window. No samples means all zeros, not an error.
	Aggregate(ctx context.Context, deviceID int64, start, end *time.Time) (*UsageSummary, error)
	GetLatest(ctx context.Context, deviceID int64, limit int) ([]DeviceStat, error)
}

type AlertRepository interface {
	Create(ctx context.Context, alert *Alert) error
	GetByID(ctx context.Context, id int64) (*Alert, error)
	ListByUser(ctx context.Context, userID int64) ([]Alert, error)
	// ListEnabledForDevice returns the user's enabled rules that apply to
	// the device: device_id NULL (all devices) or equal to deviceID.
	ListEnabledForDevice(ctx context.Context, userID, deviceID int64) ([]Alert, error)
	Update(ctx context.Context, id int64, updates *UpdateAlertRequest) error
	Delete(ctx context.Context, id int64) error
	// UpsertDataCapRule finds or creates the unique data_cap rule for
	// (userID, deviceID), keeping threshold_value in step with the cap.
	// Safe under concurrent evaluation of the same device.
	UpsertDataCapRule(ctx context.Context, userID, deviceID, threshold int64) (*Alert, error)
	AppendTrigger(ctx context.Context, trigger *AlertHistory) error
	ListHistoryByUser(ctx context.Context, userID int64, limit, offset int) ([]AlertHistory, error)
	ListHistoryByAlert(ctx context.Context, alertID int64, limit int) ([]AlertHistory, error)
	ResolveTrigger(ctx context.Context, id int64, at time.Time) error
}

type UserRepository interface {
	CreateUser(ctx context.Context, user *User) error
	GetUserByEmail(ctx context.Context, email string) (*User, error)
	GetUserByID(ctx context.Context, id int64) (*User, error)
	CreateAgent(ctx context.Context, agent *Agent) error
	GetAgentByAPIKey(ctx context.Context, apiKey string) (*Agent, error)
	UpdateAgentLastSync(ctx context.Context, agentID int64, at time.Time) error
	CreateNotification(ctx context.Context, n *Notification) error
	ListNotificationsByUser(ctx context.Context, userID int64, limit int) ([]Notification, error)
}
