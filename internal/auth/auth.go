// Package auth implements a display-name login backed by scs sessions.
package auth

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"slices"
	"strings"
	"unicode/utf8"

	"github.com/alexedwards/scs/v2"
	"github.com/google/uuid"
	"github.com/myrjola/coachplan/internal/errors"
	"github.com/myrjola/coachplan/internal/sqlite"
)

const (
	userIDSessionKey = "user_id"
	maxDisplayName   = 64
)

var (
	// ErrUnknownUser is returned when the session carries no user or the user no longer exists.
	ErrUnknownUser = errors.NewSentinel("unknown user")
	// ErrInvalidDisplayName is returned when the display name is empty or too long.
	ErrInvalidDisplayName = errors.NewSentinel("invalid display name")
)

// User is the authenticated user.
type User struct {
	ID          string `json:"id"`
	DisplayName string `json:"display_name"`
	IsAdmin     bool   `json:"is_admin"`
}

type Handler struct {
	logger         *slog.Logger
	sessionManager *scs.SessionManager
	database       *sqlite.Database
	admins         []string
}

// New creates a Handler. admins lists user ids or display names granted admin access.
func New(logger *slog.Logger, sessionManager *scs.SessionManager, db *sqlite.Database, admins []string) *Handler {
	return &Handler{
		logger:         logger,
		sessionManager: sessionManager,
		database:       db,
		admins:         admins,
	}
}

// ParseAdmins splits a comma separated admin list.
func ParseAdmins(s string) []string {
	var admins []string
	for _, a := range strings.Split(s, ",") {
		if a = strings.TrimSpace(a); a != "" {
			admins = append(admins, a)
		}
	}
	return admins
}

// Login upserts the user by display name and stores its id in a renewed session.
func (h *Handler) Login(ctx context.Context, displayName string) (User, error) {
	displayName = strings.TrimSpace(displayName)
	if displayName == "" || utf8.RuneCountInString(displayName) > maxDisplayName {
		return User{}, ErrInvalidDisplayName
	}

	user, err := h.upsertUser(ctx, displayName)
	if err != nil {
		return User{}, err
	}

	if err = h.sessionManager.RenewToken(ctx); err != nil {
		return User{}, fmt.Errorf("renew session token: %w", err)
	}
	h.sessionManager.Put(ctx, userIDSessionKey, user.ID)
	return user, nil
}

// Logout destroys the session.
func (h *Handler) Logout(ctx context.Context) error {
	if err := h.sessionManager.Destroy(ctx); err != nil {
		return fmt.Errorf("destroy session: %w", err)
	}
	return nil
}

// CurrentUser returns the user stored in the session.
func (h *Handler) CurrentUser(ctx context.Context) (User, error) {
	id := h.sessionManager.GetString(ctx, userIDSessionKey)
	if id == "" {
		return User{}, ErrUnknownUser
	}
	return h.getUser(ctx, id)
}

func (h *Handler) isAdmin(id, displayName string) bool {
	return slices.Contains(h.admins, id) || slices.Contains(h.admins, displayName)
}

func (h *Handler) upsertUser(ctx context.Context, displayName string) (User, error) {
	var user User
	stmt := `INSERT INTO users (id, display_name)
VALUES (?, ?)
ON CONFLICT (display_name) DO UPDATE SET display_name = excluded.display_name
RETURNING id, display_name`
	if err := h.database.ReadWrite.QueryRowContext(ctx, stmt, uuid.NewString(), displayName).
		Scan(&user.ID, &user.DisplayName); err != nil {
		return User{}, fmt.Errorf("db upsert user %s: %w", displayName, err)
	}

	user.IsAdmin = h.isAdmin(user.ID, user.DisplayName)
	if _, err := h.database.ReadWrite.ExecContext(ctx,
		`UPDATE users SET is_admin = ? WHERE id = ?`, user.IsAdmin, user.ID); err != nil {
		return User{}, fmt.Errorf("db update admin flag: %w", err)
	}
	return user, nil
}

func (h *Handler) getUser(ctx context.Context, id string) (User, error) {
	var user User
	err := h.database.ReadOnly.QueryRowContext(ctx,
		`SELECT id, display_name, is_admin FROM users WHERE id = ?`, id).
		Scan(&user.ID, &user.DisplayName, &user.IsAdmin)
	if errors.Is(err, sql.ErrNoRows) {
		return User{}, ErrUnknownUser
	}
	if err != nil {
		return User{}, fmt.Errorf("read user: %w", err)
	}
	return user, nil
}
