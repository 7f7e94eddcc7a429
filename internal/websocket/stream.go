package websocket

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"sync"

	ws "github.com/coder/websocket"

	"github.com/ivyjanebarrios09-cloud/kitamo/internal/aggregate"
	"github.com/ivyjanebarrios09-cloud/kitamo/internal/auth"
	"github.com/ivyjanebarrios09-cloud/kitamo/internal/errs"
	"github.com/ivyjanebarrios09-cloud/kitamo/internal/live"
	"github.com/ivyjanebarrios09-cloud/kitamo/internal/model"
)

// RoomSource resolves the rooms feeding a user's dashboard: owned rooms for
// a chairperson, joined rooms for a student.
type RoomSource interface {
	DashboardRooms(ctx context.Context, userID, role string) ([]model.Room, error)
}

// DashboardStreamer pushes a freshly aggregated dashboard to a WebSocket
// client on connect and again on every invalidation of the rooms feeding it.
type DashboardStreamer struct {
	bus      *live.Bus
	reader   aggregate.Reader
	rooms    RoomSource
	reporter errs.Reporter
	logger   *slog.Logger
}

func NewDashboardStreamer(bus *live.Bus, reader aggregate.Reader, rooms RoomSource, reporter errs.Reporter, logger *slog.Logger) *DashboardStreamer {
	return &DashboardStreamer{
		bus:      bus,
		reader:   reader,
		rooms:    rooms,
		reporter: reporter,
		logger:   logger,
	}
}

func (s *DashboardStreamer) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	user, ok := auth.FromContext(r.Context())
	if !ok {
		http.Error(w, "unauthorized", http.StatusUnauthorized)
		return
	}

	rooms, err := s.rooms.DashboardRooms(r.Context(), user.UserID, user.Role)
	if err != nil {
		s.logger.Error("resolve dashboard rooms", "user_id", user.UserID, "error", err)
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}

	reader := s.reader
	if user.Role != model.RoleChairperson {
		if scoper, ok := reader.(aggregate.UserScoper); ok {
			reader = scoper.ForUser(user.UserID)
		}
	}

	conn, err := ws.Accept(w, r, nil)
	if err != nil {
		s.logger.Error("websocket accept", "error", err)
		return
	}
	defer conn.Close(ws.StatusNormalClosure, "")

	ctx, cancel := context.WithCancel(r.Context())
	defer cancel()

	// The connection carries no client-to-server data; the read loop only
	// detects disconnect.
	go func() {
		defer cancel()
		for {
			if _, _, err := conn.Read(ctx); err != nil {
				return
			}
		}
	}()

	feed := newDashboardFeed(s.bus, reader, s.rooms, s.reporter, user.UserID, user.Role)
	feed.start(ctx, rooms)

	for {
		select {
		case <-ctx.Done():
			return
		case snap := <-feed.snapshots:
			if snap.Err != nil {
				s.logger.Error("dashboard refresh", "user_id", user.UserID, "error", snap.Err)
				continue
			}
			if snap.Record == nil {
				continue
			}
			data, err := json.Marshal(snap.Record)
			if err != nil {
				s.logger.Error("marshal dashboard", "error", err)
				continue
			}
			if err := conn.Write(ctx, ws.MessageText, data); err != nil {
				return
			}
		}
	}
}

// dashboardFeed owns one connection's watchers. All watchers share a single
// runner, so a stale refresh can never clobber a newer one, and the topic set
// grows as the resolved room list picks up rooms of owners not seen before.
type dashboardFeed struct {
	bus      *live.Bus
	rooms    RoomSource
	reporter errs.Reporter
	userID   string
	role     string

	runner    *aggregate.Runner
	snapshots chan live.DocSnapshot[aggregate.Dashboard]

	mu     sync.Mutex
	active map[string]struct{}
}

func newDashboardFeed(bus *live.Bus, reader aggregate.Reader, rooms RoomSource, reporter errs.Reporter, userID, role string) *dashboardFeed {
	return &dashboardFeed{
		bus:       bus,
		rooms:     rooms,
		reporter:  reporter,
		userID:    userID,
		role:      role,
		runner:    aggregate.NewRunner(reader),
		snapshots: make(chan live.DocSnapshot[aggregate.Dashboard], 1),
		active:    make(map[string]struct{}),
	}
}

// start subscribes the connect-time topic set. Watchers live until ctx ends.
func (f *dashboardFeed) start(ctx context.Context, rooms []model.Room) {
	f.ensure(ctx, dashboardTopics(f.userID, rooms))
}

func (f *dashboardFeed) fetch(ctx context.Context) (*aggregate.Dashboard, error) {
	current, err := f.rooms.DashboardRooms(ctx, f.userID, f.role)
	if err != nil {
		return nil, err
	}
	// The room list may have changed since connect. Joining a room of an
	// owner we never watched must add that owner's topic, or the room goes
	// silent until reconnect.
	f.ensure(ctx, dashboardTopics(f.userID, current))

	f.runner.Refresh(ctx, current)
	snap, err := f.runner.Snapshot()
	if err != nil {
		return nil, err
	}
	d := aggregate.BuildDashboard(snap, aggregate.PaidRuleAnyPayment)
	return &d, nil
}

// ensure starts a watcher for each topic not already watched.
func (f *dashboardFeed) ensure(ctx context.Context, topics []string) {
	for _, topic := range topics {
		f.mu.Lock()
		_, seen := f.active[topic]
		if !seen {
			f.active[topic] = struct{}{}
		}
		f.mu.Unlock()
		if seen {
			continue
		}
		watch := live.WatchDoc(ctx, f.bus, f.reporter, topic, f.fetch)
		go func() {
			for snap := range watch {
				select {
				case f.snapshots <- snap:
				case <-ctx.Done():
					return
				}
			}
		}()
	}
}

// dashboardTopics lists the invalidation topics for a user's dashboard.
// Mutations publish the room owner's rooms topic, so subscribing per
// distinct owner covers every room in the set.
func dashboardTopics(userID string, rooms []model.Room) []string {
	seen := map[string]struct{}{userID: {}}
	topics := []string{live.OwnerRoomsTopic(userID)}
	for _, room := range rooms {
		if _, ok := seen[room.OwnerID]; ok {
			continue
		}
		seen[room.OwnerID] = struct{}{}
		topics = append(topics, live.OwnerRoomsTopic(room.OwnerID))
	}
	return topics
}
