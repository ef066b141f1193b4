package storage

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"drivedesk/internal/domain"
	"drivedesk/internal/models"

	"github.com/google/uuid"
)

var (
	ErrBranchTaken        = errors.New("manager already exists for this branch")
	ErrEmailTaken         = errors.New("email already registered")
	ErrUnknownBranch      = errors.New("unknown branch")
	ErrInvalidCredentials = errors.New("invalid email or password")
)

// ManagerDirectory keeps the manager collection and the login session, each
// under its own key. The session is a snapshot, read and cleared
// independently of the manager list.
type ManagerDirectory struct {
	kv         domain.KV
	key        string
	sessionKey string
}

func NewManagerDirectory(kv domain.KV, keys Keys) *ManagerDirectory {
	keys = keys.withDefaults()
	return &ManagerDirectory{kv: kv, key: keys.Managers, sessionKey: keys.Session}
}

// List returns the registered managers in insertion order.
func (d *ManagerDirectory) List(ctx context.Context) ([]models.Manager, error) {
	if d.kv == nil {
		return nil, nil
	}
	raw, ok, err := d.kv.Get(ctx, d.key)
	if err != nil || !ok {
		return nil, err
	}
	var managers []models.Manager
	if err := json.Unmarshal([]byte(raw), &managers); err != nil {
		return nil, fmt.Errorf("failed to decode managers: %w", err)
	}
	return managers, nil
}

// Register enforces one manager per branch and one account per email. The
// branch check runs first and short-circuits; neither failure writes
// anything. The password is stored as submitted (see package note on the
// compatibility trade-off).
func (d *ManagerDirectory) Register(ctx context.Context, input models.ManagerInput) (*models.Manager, error) {
	if d.kv == nil {
		return nil, ErrStorageUnavailable
	}
	if !models.IsValidBranch(input.Branch) {
		return nil, fmt.Errorf("%w: %s", ErrUnknownBranch, input.Branch)
	}

	managers, err := d.List(ctx)
	if err != nil {
		return nil, err
	}

	for _, m := range managers {
		if m.Branch == input.Branch {
			return nil, ErrBranchTaken
		}
	}
	for _, m := range managers {
		if m.Email == input.Email {
			return nil, ErrEmailTaken
		}
	}

	manager := models.Manager{
		ID:        uuid.NewString(),
		Name:      input.Name,
		Email:     input.Email,
		Branch:    input.Branch,
		Password:  input.Password,
		CreatedAt: time.Now().UTC(),
	}

	managers = append(managers, manager)
	if err := d.save(ctx, managers); err != nil {
		return nil, err
	}

	return &manager, nil
}

// Authenticate scans for an exact, case-sensitive email and password match.
// The failure error does not reveal whether the email is registered. On
// success the session snapshot is persisted, replacing any prior session.
func (d *ManagerDirectory) Authenticate(ctx context.Context, email, password string) (*models.ManagerSession, error) {
	managers, err := d.List(ctx)
	if err != nil {
		return nil, err
	}

	for _, m := range managers {
		if m.Email == email && m.Password == password {
			session := models.ManagerSession{
				ManagerID: m.ID,
				Name:      m.Name,
				Branch:    m.Branch,
				Email:     m.Email,
			}
			if err := d.saveSession(ctx, session); err != nil {
				return nil, err
			}
			return &session, nil
		}
	}

	return nil, ErrInvalidCredentials
}

// CurrentSession returns the stored session, or nil when nobody is logged in
// or the backend is unreachable. Absence is never an error.
func (d *ManagerDirectory) CurrentSession(ctx context.Context) (*models.ManagerSession, error) {
	if d.kv == nil {
		return nil, nil
	}
	raw, ok, err := d.kv.Get(ctx, d.sessionKey)
	if err != nil || !ok {
		return nil, nil
	}
	var session models.ManagerSession
	if err := json.Unmarshal([]byte(raw), &session); err != nil {
		return nil, fmt.Errorf("failed to decode session: %w", err)
	}
	return &session, nil
}

// EndSession removes the session. Safe to call when none exists.
func (d *ManagerDirectory) EndSession(ctx context.Context) error {
	if d.kv == nil {
		return nil
	}
	if err := d.kv.Delete(ctx, d.sessionKey); err != nil {
		return fmt.Errorf("failed to clear session: %w", err)
	}
	return nil
}

// AvailableBranches returns the fixed branch set minus branches that already
// have a manager, recomputed from the directory on every call.
func (d *ManagerDirectory) AvailableBranches(ctx context.Context) ([]string, error) {
	managers, err := d.List(ctx)
	if err != nil {
		return nil, err
	}

	occupied := make(map[string]bool, len(managers))
	for _, m := range managers {
		occupied[m.Branch] = true
	}

	available := make([]string, 0, len(models.Branches))
	for _, branch := range models.Branches {
		if !occupied[branch] {
			available = append(available, branch)
		}
	}
	return available, nil
}

func (d *ManagerDirectory) save(ctx context.Context, managers []models.Manager) error {
	data, err := json.Marshal(managers)
	if err != nil {
		return fmt.Errorf("failed to encode managers: %w", err)
	}
	if err := d.kv.Set(ctx, d.key, string(data)); err != nil {
		return fmt.Errorf("failed to persist managers: %w", err)
	}
	return nil
}

func (d *ManagerDirectory) saveSession(ctx context.Context, session models.ManagerSession) error {
	data, err := json.Marshal(session)
	if err != nil {
		return fmt.Errorf("failed to encode session: %w", err)
	}
	if err := d.kv.Set(ctx, d.sessionKey, string(data)); err != nil {
		return fmt.Errorf("failed to persist session: %w", err)
	}
	return nil
}
