package listeners_test

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/shashiranjanraj/laundry/app/jobs"
	"github.com/shashiranjanraj/laundry/app/listeners"
	"github.com/shashiranjanraj/laundry/app/models"
	"github.com/shashiranjanraj/laundry/pkg/event"
	"github.com/shashiranjanraj/laundry/pkg/queue"
)

type hubSpy struct{ frames []interface{} }

func (h *hubSpy) BroadcastJSON(v interface{}) error {
	h.frames = append(h.frames, v)
	return nil
}

func TestPricingUpdatedBroadcastsAndAudits(t *testing.T) {
	t.Cleanup(event.Flush)

	hub := &hubSpy{}
	var queued []queue.Job
	listeners.Register(hub, func(_ context.Context, j queue.Job) error {
		queued = append(queued, j)
		return nil
	})

	event.Fire(context.Background(), models.EventPricingUpdated, models.PricingUpdated{ServiceType: models.WalkIn, From: 100, To: 150})

	require.Len(t, hub.frames, 1)
	assert.Equal(t, listeners.PriceFrame{Type: "pricing.updated", ServiceType: "WalkIn", DefaultCost: 150}, hub.frames[0])

	require.Len(t, queued, 1)
	audit := queued[0].(*jobs.Audit)
	assert.Equal(t, models.EventPricingUpdated, audit.Event)

	var p models.PricingUpdated
	require.NoError(t, json.Unmarshal(audit.Payload, &p))
	assert.Equal(t, 150.0, p.To)
}

func TestEveryEventIsAudited(t *testing.T) {
	t.Cleanup(event.Flush)

	var names []string
	listeners.Register(nil, func(_ context.Context, j queue.Job) error {
		names = append(names, j.(*jobs.Audit).Event)
		return nil
	})

	ctx := context.Background()
	event.Fire(ctx, models.EventRoleChanged, models.RoleChanged{To: models.RoleAdmin})
	event.Fire(ctx, models.EventPricingUpdated, models.PricingUpdated{ServiceType: models.DropOff})
	event.Fire(ctx, models.EventGcashUpdated, models.GcashUpdated{EntryID: "x"})

	assert.Equal(t, []string{models.EventRoleChanged, models.EventPricingUpdated, models.EventGcashUpdated}, names)
}

func TestAuditJobRoundTripsThroughQueue(t *testing.T) {
	d := queue.NewMemoryDriver(4)
	m := queue.NewManager(d)
	jobs.Register(m)

	job, err := jobs.NewAudit(models.EventGcashUpdated, models.GcashUpdated{EntryID: "e1"})
	require.NoError(t, err)
	require.NoError(t, m.Dispatch(context.Background(), job))

	raw, err := d.Pop(context.Background())
	require.NoError(t, err)
	require.NoError(t, m.Process(context.Background(), raw))
	assert.Empty(t, m.FailedJobs())
}

type failingHub struct{}

func (failingHub) BroadcastJSON(interface{}) error { return assert.AnError }

func TestFanoutReachesEveryBroadcaster(t *testing.T) {
	a, b := &hubSpy{}, &hubSpy{}
	err := listeners.Fanout{a, failingHub{}, nil, b}.BroadcastJSON("frame")

	assert.ErrorIs(t, err, assert.AnError)
	assert.Equal(t, []interface{}{"frame"}, a.frames)
	assert.Equal(t, []interface{}{"frame"}, b.frames)
}
