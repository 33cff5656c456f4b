package booking

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRegistryCreateGetDelete(t *testing.T) {
	r := NewRegistry(newTestProvider(), nil)
	w := r.Create()

	got, err := r.Get(w.ID())
	require.NoError(t, err)
	assert.Same(t, w, got)
	assert.Equal(t, 1, r.Len())

	r.Delete(w.ID())
	_, err = r.Get(w.ID())
	assert.ErrorIs(t, err, ErrWizardNotFound)
	r.Delete("missing")
}

func TestRegistrySweepDropsIdleWizards(t *testing.T) {
	now := fixedNow
	r := NewRegistry(newTestProvider(), nil)
	r.now = func() time.Time { return now }

	stale := r.Create()
	now = now.Add(45 * time.Minute)
	fresh := r.Create()
	require.NoError(t, fresh.SelectDate(context.Background(), tomorrow))

	now = now.Add(30 * time.Minute)
	removed := r.Sweep(time.Hour)
	assert.Equal(t, 1, removed)

	_, err := r.Get(stale.ID())
	assert.ErrorIs(t, err, ErrWizardNotFound)
	_, err = r.Get(fresh.ID())
	assert.NoError(t, err)
	assert.Zero(t, r.Sweep(0))
}

func TestRegistrySweepDoesNotBlockOnSubmittingWizard(t *testing.T) {
	now := fixedNow
	r := NewRegistry(newTestProvider(), nil)
	r.now = func() time.Time { return now }

	w := r.Create()
	require.NoError(t, w.SelectDate(context.Background(), tomorrow))
	require.NoError(t, w.SelectSlot("1"))
	idle := r.Create()

	now = now.Add(2 * time.Hour)
	sub := newBlockingSubmitter()
	result := submitAsync(w, sub)
	<-sub.entered

	swept := make(chan int, 1)
	go func() { swept <- r.Sweep(time.Hour) }()
	returnsWithin(t, "Get", func() {
		_, err := r.Get(w.ID())
		assert.NoError(t, err)
	})
	returnsWithin(t, "Create", func() { r.Create() })

	select {
	case n := <-swept:
		assert.Equal(t, 1, n, "only the idle wizard is dropped")
	case <-time.After(time.Second):
		t.Fatal("Sweep blocked")
	}
	_, err := r.Get(idle.ID())
	assert.ErrorIs(t, err, ErrWizardNotFound)

	sub.release <- nil
	require.NoError(t, (<-result).err)
	_, err = r.Get(w.ID())
	assert.NoError(t, err)
}
