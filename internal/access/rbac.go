package access

import (
	_ "embed"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"sync"

	"gopkg.in/yaml.v3"

	"roombook/internal/model"
)

// Resources and actions gated on the client.
const (
	ResourceRooms    = "rooms"
	ResourceBookings = "bookings"
	ResourceAccount  = "account"

	ActionRead    = "read"
	ActionManage  = "manage"
	ActionListOwn = "list-own"
	ActionListAll = "list-all"
	ActionCreate  = "create"
	ActionCancel  = "cancel"
	ActionUpdate  = "update"
)

// MsgNotAuthorized is shown when a user opens a screen their role does not allow.
const MsgNotAuthorized = "You are not authorized to view this page."

var (
	ErrForbidden     = errors.New(MsgNotAuthorized)
	ErrNoPolicy      = errors.New("access policy not loaded")
	ErrAnonymousUser = errors.New("not signed in")
)

//go:embed policy.yaml
var defaultPolicy []byte

type Permission struct {
	Resource string   `yaml:"resource"`
	Actions  []string `yaml:"actions"`
}

type Role struct {
	Description string       `yaml:"description"`
	Permissions []Permission `yaml:"permissions"`
}

type Policy struct {
	DefaultRole string              `yaml:"default_role"`
	Roles       map[string]Role     `yaml:"roles"`
	Inheritance map[string][]string `yaml:"inheritance"`
}

type RBAC struct {
	policy *Policy
	logger *slog.Logger

	mu          sync.RWMutex
	policyCache map[string]map[string]bool // role -> "resource:action" -> allowed
}

func ParsePolicy(data []byte) (*Policy, error) {
	var policy Policy
	if err := yaml.Unmarshal(data, &policy); err != nil {
		return nil, fmt.Errorf("failed to parse policy: %w", err)
	}
	if len(policy.Roles) == 0 {
		return nil, fmt.Errorf("failed to parse policy: no roles defined")
	}
	return &policy, nil
}

// LoadPolicy reads the policy at path, or the built-in policy when path is empty.
func LoadPolicy(path string) (*Policy, error) {
	if path == "" {
		return ParsePolicy(defaultPolicy)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read policy file: %w", err)
	}
	return ParsePolicy(data)
}

func New(policy *Policy, logger *slog.Logger) *RBAC {
	if logger == nil {
		logger = slog.Default()
	}
	logger = logger.With("component", "rbac")
	if policy != nil {
		logger.Debug("RBAC policy loaded", "roles", len(policy.Roles))
	}
	return &RBAC{
		policy:      policy,
		logger:      logger,
		policyCache: make(map[string]map[string]bool),
	}
}

// roles returns the role of u together with every role it inherits.
func (r *RBAC) roles(u *model.User) []string {
	role := ""
	if u != nil {
		role = u.Role
	}
	if role == "" {
		role = r.policy.DefaultRole
	}
	if role == "" {
		return nil
	}

	all := map[string]bool{role: true}
	r.addInheritedRoles(role, all)

	out := make([]string, 0, len(all))
	for name := range all {
		out = append(out, name)
	}
	return out
}

func (r *RBAC) addInheritedRoles(role string, roles map[string]bool) {
	for _, inherited := range r.policy.Inheritance[role] {
		if !roles[inherited] {
			roles[inherited] = true
			r.addInheritedRoles(inherited, roles)
		}
	}
}

// Can reports whether u may perform action on resource.
func (r *RBAC) Can(u *model.User, resource, action string) bool {
	if r.policy == nil {
		r.logger.Warn("RBAC policy not loaded")
		return false
	}

	role := r.policy.DefaultRole
	if u != nil && u.Role != "" {
		role = u.Role
	}
	cacheKey := resource + ":" + action

	r.mu.RLock()
	if cache, ok := r.policyCache[role]; ok {
		if allowed, found := cache[cacheKey]; found {
			r.mu.RUnlock()
			return allowed
		}
	}
	r.mu.RUnlock()

	allowed := false
	for _, roleName := range r.roles(u) {
		if r.roleAllows(roleName, resource, action) {
			allowed = true
			break
		}
	}

	r.mu.Lock()
	if r.policyCache[role] == nil {
		r.policyCache[role] = make(map[string]bool)
	}
	r.policyCache[role][cacheKey] = allowed
	r.mu.Unlock()

	return allowed
}

func (r *RBAC) roleAllows(roleName, resource, action string) bool {
	role, ok := r.policy.Roles[roleName]
	if !ok {
		return false
	}
	for _, perm := range role.Permissions {
		if perm.Resource != "*" && perm.Resource != resource {
			continue
		}
		for _, act := range perm.Actions {
			if act == "*" || act == action {
				return true
			}
		}
	}
	return false
}

// Require returns ErrForbidden unless u may perform action on resource.
func (r *RBAC) Require(u *model.User, resource, action string) error {
	if u == nil {
		return ErrAnonymousUser
	}
	if r.policy == nil {
		return ErrNoPolicy
	}
	if !r.Can(u, resource, action) {
		r.logger.Warn("Permission denied", "email", u.Email, "role", u.Role, "resource", resource, "action", action)
		return ErrForbidden
	}
	return nil
}
