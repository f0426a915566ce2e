package dashboard_test

import (
	"context"
	"net/http"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/shashiranjanraj/laundry/app/models"
	"github.com/shashiranjanraj/laundry/internal/dashboard"
	"github.com/shashiranjanraj/laundry/pkg/testkit"
)

func priced(st string, cost float64) models.ServicePricing {
	return models.ServicePricing{ServiceType: st, DefaultCost: cost}
}

func TestPricingBoard_DisplayBeforeFetch(t *testing.T) {
	b := dashboard.NewPricingBoard(dashboard.NewClient(base, ""), time.Second)
	assert.Equal(t, "Loading...", b.Display(models.WalkIn))
}

func TestPricingBoard_RefreshIsolatesFailures(t *testing.T) {
	mt := testkit.NewMockTransport().
		JSON("GET", "/api/service/walk", 200, priced(models.WalkIn, 150)).
		JSON("GET", "/api/service/drop", 200, priced(models.DropOff, 99.5)).
		JSON("GET", "/api/service/wash", 500, map[string]interface{}{"status": 500}).
		Fail("GET", "/api/service/special")
	mt.Install(t)

	b := dashboard.NewPricingBoard(dashboard.NewClient(base, ""), time.Second)
	err := b.Refresh(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), models.WashAndDry)
	assert.Contains(t, err.Error(), models.SpecialItem)

	assert.Equal(t, "₱ 150", b.Display(models.WalkIn))
	assert.Equal(t, "₱ 99.5", b.Display(models.DropOff))
	assert.Equal(t, "Loading...", b.Display(models.WashAndDry))
	assert.Equal(t, "Loading...", b.Display(models.SpecialItem))
	assert.Error(t, b.Err(models.WashAndDry))
	assert.NoError(t, b.Err(models.WalkIn))
	testkit.AssertNoUnusedMocks(t, mt)
}

func TestPricingBoard_KeepsLastGoodValue(t *testing.T) {
	var fail atomic.Bool
	mt := testkit.NewMockTransport().
		On("GET", "/api/service/walk", func(*http.Request, []byte) (int, interface{}) {
			if fail.Load() {
				return 503, nil
			}
			return 200, priced(models.WalkIn, 120)
		}).
		JSON("GET", "/api/service/drop", 200, priced(models.DropOff, 1)).
		JSON("GET", "/api/service/wash", 200, priced(models.WashAndDry, 2)).
		JSON("GET", "/api/service/special", 200, priced(models.SpecialItem, 3))
	mt.Install(t)

	b := dashboard.NewPricingBoard(dashboard.NewClient(base, ""), time.Second)
	require.NoError(t, b.Refresh(context.Background()))

	fail.Store(true)
	require.Error(t, b.Refresh(context.Background()))
	assert.Equal(t, "₱ 120", b.Display(models.WalkIn))
	assert.Equal(t, []string{
		"WalkIn: ₱ 120", "DropOff: ₱ 1", "WashAndDry: ₱ 2", "SpecialItem: ₱ 3",
	}, b.Snapshot())
}

func TestPricingBoard_RunPollsUntilCancelled(t *testing.T) {
	mt := testkit.NewMockTransport()
	for _, st := range models.ServiceTypes {
		slug, _ := models.SlugFor(st)
		mt.JSON("GET", "/api/service/"+slug, 200, priced(st, 10))
	}
	mt.Install(t)

	b := dashboard.NewPricingBoard(dashboard.NewClient(base, ""), 20*time.Millisecond)
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		b.Run(ctx)
		close(done)
	}()

	assert.Eventually(t, func() bool {
		return mt.Count("GET", "/api/service/special") >= 3
	}, 2*time.Second, 10*time.Millisecond)
	cancel()

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("Run did not return after cancel")
	}
	assert.Equal(t, "₱ 10", b.Display(models.SpecialItem))

	n := len(mt.Calls())
	time.Sleep(60 * time.Millisecond)
	assert.Equal(t, n, len(mt.Calls()), "no fetches after stop")
}

func TestPricingForm_Submit(t *testing.T) {
	mt := testkit.NewMockTransport().
		JSON("PUT", "/api/service/update", 200, priced(models.WalkIn, 175))
	mt.Install(t)

	f := dashboard.NewPricingForm(dashboard.NewClient(base, ""))
	f.SetServiceType(models.WalkIn)
	f.SetNewCost("175")

	notice, err := f.Submit(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "Service updated successfully!", notice)
	assert.JSONEq(t, `{"serviceType":"WalkIn","newCost":"175"}`, string(mt.Calls()[0].Body))

	st, cost := f.Values()
	assert.Empty(t, st)
	assert.Empty(t, cost)
	assert.Equal(t, 1, len(mt.Calls()), "no refetch after update")
}

func TestPricingForm_ServerRejects(t *testing.T) {
	testkit.NewMockTransport().JSON("PUT", "/api/service/update", 422,
		map[string]interface{}{"status": 422, "errors": map[string]string{"newCost": "bad"}}).Install(t)

	f := dashboard.NewPricingForm(dashboard.NewClient(base, ""))
	f.SetServiceType(models.WalkIn)
	f.SetNewCost("abc")
	_, err := f.Submit(context.Background())
	require.Error(t, err)

	_, cost := f.Values()
	assert.Equal(t, "abc", cost)
}

func TestPricingBoard_HungCategoryDoesNotStallOthers(t *testing.T) {
	mt := testkit.NewMockTransport().
		On("GET", "/api/service/walk", func(req *http.Request, _ []byte) (int, interface{}) {
			<-req.Context().Done()
			return 504, nil
		}).
		JSON("GET", "/api/service/drop", 200, priced(models.DropOff, 180)).
		JSON("GET", "/api/service/wash", 200, priced(models.WashAndDry, 200)).
		JSON("GET", "/api/service/special", 200, priced(models.SpecialItem, 300))
	mt.Install(t)

	b := dashboard.NewPricingBoard(dashboard.NewClient(base, ""), 20*time.Millisecond)
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		b.Run(ctx)
		close(done)
	}()
	defer func() {
		cancel()
		<-done
	}()

	// long enough for the walk-in backlog to exceed one pool's worth of workers
	time.Sleep(300 * time.Millisecond)
	seen := mt.Count("GET", "/api/service/drop")
	assert.Eventually(t, func() bool {
		return mt.Count("GET", "/api/service/drop") >= seen+10
	}, 2*time.Second, 10*time.Millisecond, "drop-off stopped polling while walk-in hung")

	assert.Equal(t, "Loading...", b.Display(models.WalkIn))
	assert.Equal(t, "₱ 180", b.Display(models.DropOff))
	assert.Equal(t, "₱ 300", b.Display(models.SpecialItem))
}
