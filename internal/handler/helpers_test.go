package handler

import (
	"testing"
	"time"

	"github.com/ivyjanebarrios09-cloud/kitamo/internal/live"
	"github.com/ivyjanebarrios09-cloud/kitamo/internal/model"
)

// A membership change must invalidate the member's own dashboard, not just
// the room owner's: a student streaming their dashboard has to see a room
// they just joined without reconnecting.
func TestMemberChangedPublishesMemberTopic(t *testing.T) {
	bus := live.NewBus()
	room := &model.Room{ID: "r-1", OwnerID: "chair-1", Name: "BSIT 3A"}
	member := &model.RoomMember{ID: "m-1", RoomID: "r-1", UserID: "stu-1"}

	topics := map[string]string{
		"member dashboard": live.OwnerRoomsTopic("stu-1"),
		"owner dashboard":  live.OwnerRoomsTopic("chair-1"),
		"room members":     live.RoomTopic("r-1", "members"),
	}
	signals := make(map[string]<-chan struct{}, len(topics))
	for name, topic := range topics {
		ch, cancel := bus.Subscribe(topic)
		defer cancel()
		signals[name] = ch
	}

	NewNotifier(bus, nil).MemberChanged(room, "joined", member)

	for name, ch := range signals {
		select {
		case <-ch:
		case <-time.After(time.Second):
			t.Errorf("%s topic was not published", name)
		}
	}
}

func TestRecordChangedPublishesRoomAndOwnerTopics(t *testing.T) {
	bus := live.NewBus()
	room := &model.Room{ID: "r-1", OwnerID: "chair-1", Name: "BSIT 3A"}

	paymentsCh, cancelPayments := bus.Subscribe(live.RoomTopic("r-1", "payments"))
	defer cancelPayments()
	ownerCh, cancelOwner := bus.Subscribe(live.OwnerRoomsTopic("chair-1"))
	defer cancelOwner()

	NewNotifier(bus, nil).RecordChanged(room, "payment", "created", "p-1")

	for name, ch := range map[string]<-chan struct{}{
		"payments collection": paymentsCh,
		"owner dashboard":     ownerCh,
	} {
		select {
		case <-ch:
		case <-time.After(time.Second):
			t.Errorf("%s topic was not published", name)
		}
	}
}
