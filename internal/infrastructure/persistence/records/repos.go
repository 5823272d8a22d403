package records

import (
	"context"
	"encoding/binary"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"math/bits"

	"github.com/alem-hub/studyhub/internal/domain/group"
	"github.com/alem-hub/studyhub/internal/domain/resource"
	"github.com/alem-hub/studyhub/internal/domain/shared"
	"github.com/alem-hub/studyhub/internal/domain/user"
	"github.com/alem-hub/studyhub/internal/infrastructure/persistence/kv"
)

// ══════════════════════════════════════════════════════════════════════════════
// CODEC HELPERS
// ══════════════════════════════════════════════════════════════════════════════

func key(prefix, id string) []byte {
	return []byte(prefix + id)
}

// getJSON loads one record; notFound is returned for absent keys.
func getJSON[T any](ctx context.Context, txn kv.Txn, k []byte, notFound error) (*T, error) {
	raw, err := txn.Get(ctx, k)
	if err != nil {
		if errors.Is(err, kv.ErrKeyNotFound) {
			return nil, notFound
		}
		return nil, err
	}
	var v T
	if err := json.Unmarshal(raw, &v); err != nil {
		return nil, fmt.Errorf("records: decode %s: %w", k, err)
	}
	return &v, nil
}

func putJSON(ctx context.Context, txn kv.Txn, k []byte, v any) error {
	raw, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("records: encode %s: %w", k, err)
	}
	return txn.Set(ctx, k, raw)
}

func scanJSON[T any](ctx context.Context, txn kv.Txn, prefix string) ([]*T, error) {
	out := make([]*T, 0)
	err := txn.Scan(ctx, []byte(prefix), func(k, raw []byte) error {
		var v T
		if err := json.Unmarshal(raw, &v); err != nil {
			return fmt.Errorf("records: decode %s: %w", k, err)
		}
		out = append(out, &v)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

func count(ctx context.Context, txn kv.Txn, prefix string) (int, error) {
	n := 0
	err := txn.Scan(ctx, []byte(prefix), func(_, _ []byte) error {
		n++
		return nil
	})
	return n, err
}

func exists(ctx context.Context, txn kv.Txn, k []byte) (bool, error) {
	_, err := txn.Get(ctx, k)
	if err == nil {
		return true, nil
	}
	if errors.Is(err, kv.ErrKeyNotFound) {
		return false, nil
	}
	return false, err
}

// ══════════════════════════════════════════════════════════════════════════════
// USERS
// ══════════════════════════════════════════════════════════════════════════════

type userRepo struct{ txn kv.Txn }

func (r *userRepo) Get(ctx context.Context, id shared.Identity) (*user.Profile, error) {
	p, err := getJSON[user.Profile](ctx, r.txn, key(PrefixUser, id.String()), shared.ErrUserNotFound)
	if err != nil {
		return nil, err
	}
	if p.Subjects == nil {
		p.Subjects = shared.StringSet{}
	}
	if p.Achievements == nil {
		p.Achievements = []string{}
	}
	return p, nil
}

func (r *userRepo) Exists(ctx context.Context, id shared.Identity) (bool, error) {
	return exists(ctx, r.txn, key(PrefixUser, id.String()))
}

func (r *userRepo) Save(ctx context.Context, p *user.Profile) error {
	return putJSON(ctx, r.txn, key(PrefixUser, p.ID.String()), p)
}

func (r *userRepo) List(ctx context.Context) ([]*user.Profile, error) {
	return scanJSON[user.Profile](ctx, r.txn, PrefixUser)
}

func (r *userRepo) Count(ctx context.Context) (int, error) {
	return count(ctx, r.txn, PrefixUser)
}

// ══════════════════════════════════════════════════════════════════════════════
// GROUPS & SESSIONS
// ══════════════════════════════════════════════════════════════════════════════

type groupRepo struct{ txn kv.Txn }

func (r *groupRepo) Get(ctx context.Context, id string) (*group.StudyGroup, error) {
	return getJSON[group.StudyGroup](ctx, r.txn, key(PrefixGroup, id), shared.ErrGroupNotFound)
}

func (r *groupRepo) Save(ctx context.Context, g *group.StudyGroup) error {
	return putJSON(ctx, r.txn, key(PrefixGroup, g.ID), g)
}

func (r *groupRepo) List(ctx context.Context) ([]*group.StudyGroup, error) {
	return scanJSON[group.StudyGroup](ctx, r.txn, PrefixGroup)
}

func (r *groupRepo) Count(ctx context.Context) (int, error) {
	return count(ctx, r.txn, PrefixGroup)
}

type sessionRepo struct{ txn kv.Txn }

func (r *sessionRepo) Get(ctx context.Context, id string) (*group.Session, error) {
	return getJSON[group.Session](ctx, r.txn, key(PrefixSession, id), shared.ErrSessionNotFound)
}

func (r *sessionRepo) Save(ctx context.Context, s *group.Session) error {
	return putJSON(ctx, r.txn, key(PrefixSession, s.ID), s)
}

func (r *sessionRepo) List(ctx context.Context) ([]*group.Session, error) {
	return scanJSON[group.Session](ctx, r.txn, PrefixSession)
}

func (r *sessionRepo) Count(ctx context.Context) (int, error) {
	return count(ctx, r.txn, PrefixSession)
}

// ══════════════════════════════════════════════════════════════════════════════
// RESOURCES
// ══════════════════════════════════════════════════════════════════════════════

type resourceRepo struct{ txn kv.Txn }

func (r *resourceRepo) Get(ctx context.Context, id string) (*resource.Resource, error) {
	return getJSON[resource.Resource](ctx, r.txn, key(PrefixResource, id), shared.ErrResourceNotFound)
}

func (r *resourceRepo) Save(ctx context.Context, res *resource.Resource) error {
	return putJSON(ctx, r.txn, key(PrefixResource, res.ID), res)
}

func (r *resourceRepo) List(ctx context.Context) ([]*resource.Resource, error) {
	return scanJSON[resource.Resource](ctx, r.txn, PrefixResource)
}

func (r *resourceRepo) Count(ctx context.Context) (int, error) {
	return count(ctx, r.txn, PrefixResource)
}

// ══════════════════════════════════════════════════════════════════════════════
// BALANCES
// ══════════════════════════════════════════════════════════════════════════════

type balanceRepo struct{ txn kv.Txn }

func (r *balanceRepo) Balance(ctx context.Context, id shared.Identity) (uint64, error) {
	raw, err := r.txn.Get(ctx, key(PrefixBalance, id.String()))
	if err != nil {
		if errors.Is(err, kv.ErrKeyNotFound) {
			return 0, nil
		}
		return 0, err
	}
	return decodeBalance(raw)
}

func (r *balanceRepo) SetBalance(ctx context.Context, id shared.Identity, amount uint64) error {
	var buf [8]byte
	binary.BigEndian.PutUint64(buf[:], amount)
	return r.txn.Set(ctx, key(PrefixBalance, id.String()), buf[:])
}

// Total saturates at math.MaxUint64; each balance is bounded but their sum
// is not.
func (r *balanceRepo) Total(ctx context.Context) (uint64, error) {
	var total uint64
	err := r.txn.Scan(ctx, []byte(PrefixBalance), func(k, raw []byte) error {
		b, err := decodeBalance(raw)
		if err != nil {
			return fmt.Errorf("records: %s: %w", k, err)
		}
		sum, carry := bits.Add64(total, b, 0)
		if carry != 0 {
			sum = math.MaxUint64
		}
		total = sum
		return nil
	})
	return total, err
}

func decodeBalance(raw []byte) (uint64, error) {
	if len(raw) != 8 {
		return 0, fmt.Errorf("records: malformed balance of %d bytes", len(raw))
	}
	return binary.BigEndian.Uint64(raw), nil
}
