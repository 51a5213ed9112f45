// internal/repository/user_repository.go

package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/lib/pq"

	"github.com/dhananjayaaps/wifi-monitor/internal/models"
)

// ErrDuplicateEmail maps the users email unique violation.
var ErrDuplicateEmail = errors.New("email already registered")

type UserRepository struct {
	db *sql.DB
}

func NewUserRepository(db *sql.DB) *UserRepository {
	return &UserRepository{db: db}
}

func (r *UserRepository) CreateUser(ctx context.Context, user *models.User) error {
	query := `
		INSERT INTO users (email, password_hash)
		VALUES ($1, $2)
		RETURNING id, created_at, updated_at`
	err := r.db.QueryRowContext(ctx, query, user.Email, user.PasswordHash).
		Scan(&user.ID, &user.CreatedAt, &user.UpdatedAt)
	if err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && pqErr.Code == "23505" {
			return ErrDuplicateEmail
		}
		return fmt.Errorf("create user: %w", err)
	}
	return nil
}

func (r *UserRepository) GetUserByEmail(ctx context.Context, email string) (*models.User, error) {
	query := `SELECT id, email, password_hash, created_at, updated_at FROM users WHERE email = $1`
	return r.scanUser(r.db.QueryRowContext(ctx, query, email))
}

func (r *UserRepository) GetUserByID(ctx context.Context, id int64) (*models.User, error) {
	query := `SELECT id, email, password_hash, created_at, updated_at FROM users WHERE id = $1`
	return r.scanUser(r.db.QueryRowContext(ctx, query, id))
}

func (r *UserRepository) CreateAgent(ctx context.Context, agent *models.Agent) error {
	query := `
		INSERT INTO agents (name, api_key, owner_id, is_active)
		VALUES ($1, $2, $3, TRUE)
		RETURNING id, is_active, created_at`
	err := r.db.QueryRowContext(ctx, query, agent.Name, agent.APIKey, agent.OwnerID).
		Scan(&agent.ID, &agent.IsActive, &agent.CreatedAt)
	if err != nil {
		return fmt.Errorf("create agent: %w", err)
	}
	return nil
}

func (r *UserRepository) GetAgentByAPIKey(ctx context.Context, apiKey string) (*models.Agent, error) {
	query := `
		SELECT id, name, api_key, owner_id, is_active, last_sync, created_at
		FROM agents WHERE api_key = $1 AND is_active = TRUE`
	var a models.Agent
	err := r.db.QueryRowContext(ctx, query, apiKey).
		Scan(&a.ID, &a.Name, &a.APIKey, &a.OwnerID, &a.IsActive, &a.LastSync, &a.CreatedAt)
	if err != nil {
		return nil, err
	}
	return &a, nil
}

func (r *UserRepository) UpdateAgentLastSync(ctx context.Context, agentID int64, at time.Time) error {
	_, err := r.db.ExecContext(ctx, `UPDATE agents SET last_sync = $2 WHERE id = $1`, agentID, at)
	if err != nil {
		return fmt.Errorf("update agent last sync: %w", err)
	}
	return nil
}

func (r *UserRepository) CreateNotification(ctx context.Context, n *models.Notification) error {
	query := `
		INSERT INTO notifications (user_id, message, notification_type)
		VALUES ($1, $2, $3)
		RETURNING id, is_read, created_at`
	err := r.db.QueryRowContext(ctx, query, n.UserID, n.Message, n.NotificationType).
		Scan(&n.ID, &n.IsRead, &n.CreatedAt)
	if err != nil {
		return fmt.Errorf("create notification: %w", err)
	}
	return nil
}

func (r *UserRepository) ListNotificationsByUser(ctx context.Context, userID int64, limit int) ([]models.Notification, error) {
	query := `
		SELECT id, user_id, message, notification_type, is_read, created_at
		FROM notifications WHERE user_id = $1
		ORDER BY created_at DESC LIMIT $2`
	rows, err := r.db.QueryContext(ctx, query, userID, limit)
	if err != nil {
		return nil, fmt.Errorf("list notifications: %w", err)
	}
	defer rows.Close()

	notifications := []models.Notification{}
	for rows.Next() {
		var n models.Notification
		if err := rows.Scan(&n.ID, &n.UserID, &n.Message, &n.NotificationType, &n.IsRead, &n.CreatedAt); err != nil {
			return nil, err
		}
		notifications = append(notifications, n)
	}
	return notifications, rows.Err()
}

func (r *UserRepository) scanUser(row *sql.Row) (*models.User, error) {
	var u models.User
	err := row.Scan(&u.ID, &u.Email, &u.PasswordHash, &u.CreatedAt, &u.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return &u, nil
}
