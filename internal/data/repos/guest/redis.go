package guest

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	goredis "github.com/redis/go-redis/v9"

	"github.com/yungbote/roadmap-backend/internal/domain/roadmap"
	"github.com/yungbote/roadmap-backend/internal/platform/logger"
)

// Key layout, per guest:
//
//	<prefix>:guest:<gid>:history        LIST of roadmap ids, newest first
//	<prefix>:guest:<gid>:roadmap:<rid>  STRING, JSON snapshot without statuses
//	<prefix>:guest:<gid>:status:<rid>   HASH node id -> status
type redisStore struct {
	rdb    goredis.UniversalClient
	prefix string
	ttl    time.Duration
	log    *logger.Logger
}

type storedSnapshot struct {
	Roadmap roadmap.Node `json:"roadmap"`
	Query   string       `json:"query"`
	SavedAt time.Time    `json:"savedAt"`
}

// NewRedisStore keeps guest data in Redis. A positive ttl is refreshed on
// every write, so an idle guest's data eventually expires.
func NewRedisStore(rdb goredis.UniversalClient, prefix string, ttl time.Duration, baseLog *logger.Logger) RoadmapStore {
	return &redisStore{
		rdb:    rdb,
		prefix: prefix,
		ttl:    ttl,
		log:    baseLog.With("repo", "GuestRedisStore"),
	}
}

func (s *redisStore) historyKey(gid string) string {
	return fmt.Sprintf("%s:guest:%s:history", s.prefix, gid)
}

func (s *redisStore) roadmapKey(gid, rid string) string {
	return fmt.Sprintf("%s:guest:%s:roadmap:%s", s.prefix, gid, rid)
}

func (s *redisStore) statusKey(gid, rid string) string {
	return fmt.Sprintf("%s:guest:%s:status:%s", s.prefix, gid, rid)
}

func (s *redisStore) expire(ctx context.Context, pipe goredis.Pipeliner, keys ...string) {
	if s.ttl <= 0 {
		return
	}
	for _, k := range keys {
		pipe.Expire(ctx, k, s.ttl)
	}
}

func (s *redisStore) Save(ctx context.Context, guestID string, snap roadmap.LocalSnapshot) error {
	rid := snap.Roadmap.ID
	if rid == "" {
		return fmt.Errorf("guest save: roadmap has no id")
	}
	body, err := json.Marshal(storedSnapshot{Roadmap: snap.Roadmap, Query: snap.Query, SavedAt: snap.SavedAt})
	if err != nil {
		return fmt.Errorf("guest save: marshal: %w", err)
	}

	hk := s.historyKey(guestID)
	var overflow *goredis.StringSliceCmd
	_, err = s.rdb.TxPipelined(ctx, func(pipe goredis.Pipeliner) error {
		pipe.Set(ctx, s.roadmapKey(guestID, rid), body, s.ttl)
		pipe.Del(ctx, s.statusKey(guestID, rid))
		if len(snap.NodeStatuses) > 0 {
			fields := make(map[string]interface{}, len(snap.NodeStatuses))
			for k, v := range snap.NodeStatuses {
				fields[k] = string(v)
			}
			pipe.HSet(ctx, s.statusKey(guestID, rid), fields)
		}
		pipe.LRem(ctx, hk, 0, rid)
		pipe.LPush(ctx, hk, rid)
		overflow = pipe.LRange(ctx, hk, int64(roadmap.GuestHistoryLimit), -1)
		pipe.LTrim(ctx, hk, 0, int64(roadmap.GuestHistoryLimit-1))
		s.expire(ctx, pipe, hk, s.statusKey(guestID, rid))
		return nil
	})
	if err != nil {
		return fmt.Errorf("guest save: %w", err)
	}

	if dropped := overflow.Val(); len(dropped) > 0 {
		keys := make([]string, 0, 2*len(dropped))
		for _, d := range dropped {
			keys = append(keys, s.roadmapKey(guestID, d), s.statusKey(guestID, d))
		}
		if err := s.rdb.Del(ctx, keys...).Err(); err != nil {
			s.log.Warn("guest history trim cleanup failed", "guest_id", guestID, "error", err)
		}
	}
	return nil
}

func (s *redisStore) Get(ctx context.Context, guestID, roadmapID string) (*roadmap.LocalSnapshot, error) {
	var (
		raw      *goredis.StringCmd
		statuses *goredis.MapStringStringCmd
	)
	_, err := s.rdb.Pipelined(ctx, func(pipe goredis.Pipeliner) error {
		raw = pipe.Get(ctx, s.roadmapKey(guestID, roadmapID))
		statuses = pipe.HGetAll(ctx, s.statusKey(guestID, roadmapID))
		return nil
	})
	if err != nil && !errors.Is(err, goredis.Nil) {
		return nil, fmt.Errorf("guest get: %w", err)
	}
	body, err := raw.Bytes()
	if errors.Is(err, goredis.Nil) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("guest get: %w", err)
	}
	snap, err := decodeSnapshot(body)
	if err != nil {
		return nil, err
	}
	snap.NodeStatuses = toStatuses(statuses.Val())
	return snap, nil
}

func (s *redisStore) History(ctx context.Context, guestID string) ([]roadmap.HistoryEntry, error) {
	snaps, err := s.load(ctx, guestID, false)
	if err != nil {
		return nil, err
	}
	out := make([]roadmap.HistoryEntry, 0, len(snaps))
	for _, snap := range snaps {
		out = append(out, snap.Entry())
	}
	return out, nil
}

func (s *redisStore) List(ctx context.Context, guestID string) ([]roadmap.LocalSnapshot, error) {
	return s.load(ctx, guestID, true)
}

// load walks the history list in order. Ids whose snapshot has expired are
// skipped.
func (s *redisStore) load(ctx context.Context, guestID string, withStatuses bool) ([]roadmap.LocalSnapshot, error) {
	ids, err := s.rdb.LRange(ctx, s.historyKey(guestID), 0, -1).Result()
	if err != nil && !errors.Is(err, goredis.Nil) {
		return nil, fmt.Errorf("guest history: %w", err)
	}
	if len(ids) == 0 {
		return []roadmap.LocalSnapshot{}, nil
	}

	raws := make([]*goredis.StringCmd, len(ids))
	stats := make([]*goredis.MapStringStringCmd, len(ids))
	_, err = s.rdb.Pipelined(ctx, func(pipe goredis.Pipeliner) error {
		for i, id := range ids {
			raws[i] = pipe.Get(ctx, s.roadmapKey(guestID, id))
			if withStatuses {
				stats[i] = pipe.HGetAll(ctx, s.statusKey(guestID, id))
			}
		}
		return nil
	})
	if err != nil && !errors.Is(err, goredis.Nil) {
		return nil, fmt.Errorf("guest history: %w", err)
	}

	out := make([]roadmap.LocalSnapshot, 0, len(ids))
	for i := range ids {
		body, err := raws[i].Bytes()
		if err != nil {
			continue
		}
		snap, err := decodeSnapshot(body)
		if err != nil {
			s.log.Warn("skipping undecodable guest snapshot", "guest_id", guestID, "roadmap_id", ids[i], "error", err)
			continue
		}
		if withStatuses {
			snap.NodeStatuses = toStatuses(stats[i].Val())
		} else {
			snap.NodeStatuses = map[string]roadmap.NodeStatus{}
		}
		out = append(out, *snap)
	}
	return out, nil
}

func (s *redisStore) SetNodeStatus(ctx context.Context, guestID, roadmapID, nodeID string, status roadmap.NodeStatus) error {
	n, err := s.rdb.Exists(ctx, s.roadmapKey(guestID, roadmapID)).Result()
	if err != nil {
		return fmt.Errorf("guest status: %w", err)
	}
	if n == 0 {
		return ErrNotFound
	}
	_, err = s.rdb.TxPipelined(ctx, func(pipe goredis.Pipeliner) error {
		pipe.HSet(ctx, s.statusKey(guestID, roadmapID), nodeID, string(status))
		s.expire(ctx, pipe, s.statusKey(guestID, roadmapID), s.roadmapKey(guestID, roadmapID), s.historyKey(guestID))
		return nil
	})
	if err != nil {
		return fmt.Errorf("guest status: %w", err)
	}
	return nil
}

func (s *redisStore) Delete(ctx context.Context, guestID string, roadmapIDs ...string) error {
	if len(roadmapIDs) == 0 {
		return nil
	}
	_, err := s.rdb.TxPipelined(ctx, func(pipe goredis.Pipeliner) error {
		for _, id := range roadmapIDs {
			pipe.Del(ctx, s.roadmapKey(guestID, id), s.statusKey(guestID, id))
			pipe.LRem(ctx, s.historyKey(guestID), 0, id)
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("guest delete: %w", err)
	}
	return nil
}

func decodeSnapshot(body []byte) (*roadmap.LocalSnapshot, error) {
	var st storedSnapshot
	if err := json.Unmarshal(body, &st); err != nil {
		return nil, fmt.Errorf("decode guest snapshot: %w", err)
	}
	return &roadmap.LocalSnapshot{Roadmap: st.Roadmap, Query: st.Query, SavedAt: st.SavedAt}, nil
}

func toStatuses(raw map[string]string) map[string]roadmap.NodeStatus {
	out := make(map[string]roadmap.NodeStatus, len(raw))
	for k, v := range raw {
		if st := roadmap.NodeStatus(v); st.Valid() {
			out[k] = st
		}
	}
	return out
}
