package users

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"edunova-platform/internal/auth"
	"edunova-platform/internal/cache"
	"edunova-platform/internal/session"

	"golang.org/x/crypto/bcrypt"
)

const bcryptCost = 10

// Cache keys. Every write under the "users" resource invalidates the whole
// prefix before the write is acked; list keys cannot be enumerated cheaply.
const (
	cachePrefixUsers      = "users:"
	cachePrefixPrivileges = "privileges:"
)

// Service owns subject lifecycle: registration, login/logout, identity
// resolution for the request pipeline, and admin account management.
//
// Consistency contract: reads go through the cache, writes invalidate before
// success is reported. An invalidation failure surfaces as a
// cache.ErrInvalidation and the operation must not be treated as succeeded.
type Service struct {
	repo     Repo
	cache    *cache.Cache
	sessions *session.Store
	tokens   *auth.Manager
	clock    func() time.Time
}

func NewService(repo Repo, c *cache.Cache, sessions *session.Store, tokens *auth.Manager) *Service {
	return &Service{repo: repo, cache: c, sessions: sessions, tokens: tokens, clock: time.Now}
}

type RegisterRequest struct {
	Username    string `json:"username"`
	Email       string `json:"email"`
	Password    string `json:"password"`
	PrivilegeID int64  `json:"privilege_id"`
}

func (s *Service) Register(ctx context.Context, req RegisterRequest) (Subject, error) {
	if req.Username == "" || req.Email == "" || req.PrivilegeID == 0 {
		return Subject{}, ErrInvalidArgument
	}
	if len(req.Password) < 8 || len(req.Password) > 128 {
		return Subject{}, ErrInvalidArgument
	}

	if _, err := s.repo.FindByEmail(ctx, req.Email); err == nil {
		return Subject{}, ErrEmailTaken
	} else if !errors.Is(err, ErrNotFound) {
		return Subject{}, err
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcryptCost)
	if err != nil {
		return Subject{}, err
	}

	u, err := s.repo.Insert(ctx, User{
		Username:     req.Username,
		Email:        req.Email,
		PasswordHash: string(hash),
		PrivilegeID:  req.PrivilegeID,
	})
	if err != nil {
		return Subject{}, err
	}

	if err := s.invalidateUsers(ctx); err != nil {
		return Subject{}, err
	}
	return u.Subject(), nil
}

// Login authenticates by email+password, issues a bearer token and records
// it as the subject's only active session. A registry failure fails the
// login: a token we cannot revoke later must not be handed out.
func (s *Service) Login(ctx context.Context, email, password string) (string, Subject, error) {
	if email == "" || password == "" {
		return "", Subject{}, ErrInvalidArgument
	}

	u, err := s.repo.FindByEmail(ctx, email)
	if err != nil {
		return "", Subject{}, err
	}

	if err := bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(password)); err != nil {
		return "", Subject{}, ErrInvalidCredentials
	}

	now := s.clock().UTC()
	token, err := s.tokens.Issue(now, u.ID, u.Role, 0)
	if err != nil {
		return "", Subject{}, err
	}

	if err := s.sessions.Activate(ctx, u.ID, token, s.tokens.AccessTTL()); err != nil {
		return "", Subject{}, err
	}
	return token, u.Subject(), nil
}

// Logout revokes the subject's current session. The token stays
// cryptographically valid until expiry but fails the registry check.
func (s *Service) Logout(ctx context.Context, userID int64) error {
	return s.sessions.Deactivate(ctx, userID)
}

// Subject resolves a subject id to its identity view, read-through cached.
// This is the pipeline's user-materialization step, so the staleness bound
// of role data is the cache TTL.
func (s *Service) Subject(ctx context.Context, id int64) (Subject, error) {
	key := cache.Key("users", "id", strconv.FormatInt(id, 10))

	var sub Subject
	if s.cache.Get(ctx, key, &sub) {
		return sub, nil
	}

	u, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return Subject{}, err
	}
	sub = u.Subject()
	s.cache.Set(ctx, key, sub, s.cache.DefaultTTL())
	return sub, nil
}

// ResolveRole adapts Subject for the auth middleware.
func (s *Service) ResolveRole(ctx context.Context, userID int64) (string, bool, error) {
	sub, err := s.Subject(ctx, userID)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return "", false, nil
		}
		return "", false, err
	}
	return sub.Role, true, nil
}

func (s *Service) List(ctx context.Context) ([]Subject, error) {
	key := cache.Key("users", "all")

	var subs []Subject
	if s.cache.Get(ctx, key, &subs) {
		return subs, nil
	}

	us, err := s.repo.List(ctx)
	if err != nil {
		return nil, err
	}
	subs = make([]Subject, 0, len(us))
	for _, u := range us {
		subs = append(subs, u.Subject())
	}
	s.cache.Set(ctx, key, subs, s.cache.DefaultTTL())
	return subs, nil
}

// AssignPrivilege reassigns the subject's role. The session is deactivated
// so the next request re-authenticates under the new role, and cached
// identity views are invalidated before success is reported.
func (s *Service) AssignPrivilege(ctx context.Context, userID, privilegeID int64) error {
	if userID == 0 || privilegeID == 0 {
		return ErrInvalidArgument
	}

	if err := s.repo.UpdatePrivilege(ctx, userID, privilegeID); err != nil {
		return err
	}

	if err := s.invalidateUsers(ctx); err != nil {
		return err
	}
	return s.sessions.Deactivate(ctx, userID)
}

// Delete removes the subject, revokes their session and invalidates cached
// views before success is reported.
func (s *Service) Delete(ctx context.Context, userID int64) error {
	if err := s.repo.Delete(ctx, userID); err != nil {
		return err
	}
	if err := s.invalidateUsers(ctx); err != nil {
		return err
	}
	return s.sessions.Deactivate(ctx, userID)
}

func (s *Service) Privileges(ctx context.Context) ([]Privilege, error) {
	key := cache.Key("privileges", "all")

	var ps []Privilege
	if s.cache.Get(ctx, key, &ps) {
		return ps, nil
	}

	ps, err := s.repo.Privileges(ctx)
	if err != nil {
		return nil, err
	}
	s.cache.Set(ctx, key, ps, s.cache.DefaultTTL())
	return ps, nil
}

// invalidateUsers is tied to an already-committed write, so it runs on a
// fresh context: a client disconnect must not abort a half-done
// invalidation.
func (s *Service) invalidateUsers(_ context.Context) error {
	ctx := context.Background()
	if err := s.cache.DeleteByPrefix(ctx, cachePrefixUsers); err != nil {
		return fmt.Errorf("users write not acknowledged: %w", err)
	}
	return nil
}
