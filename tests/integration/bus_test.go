//go:build integration
// +build integration

package integration

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/danielricci/mead-framework/internal/domain/model"
	"github.com/danielricci/mead-framework/internal/domain/registry"
	"github.com/danielricci/mead-framework/internal/domain/signal"
	"github.com/danielricci/mead-framework/tests/helpers/testutil"
)

const (
	kindDocument registry.Kind = "demo.document"
	kindView     registry.Kind = "demo.view"
)

// document is a model participating in the bus.
type document struct {
	*model.Base
	title string
}

func newDocument() *document {
	d := &document{Base: model.New(kindDocument)}
	d.Bind(d)
	return d
}

func (d *document) Pipe(dst any) {
	if view, ok := dst.(*docView); ok {
		view.title = d.title
	}
}

// docView renders a document and counts refreshes.
type docView struct {
	*model.Base
	title    string
	respawns int
}

func newDocView() *docView {
	v := &docView{Base: model.New(kindView)}
	v.Bind(v)
	v.Handle(signal.OpModelRefresh, func(signal.Event) {
		v.respawns++
	})
	return v
}

// TestModelViewLifecycle walks the full core flow: acquire a shared
// model from a hub, self-service subscribe a view, refresh, pipe data,
// unsubscribe.
func TestModelViewLifecycle(t *testing.T) {
	eng := testutil.NewEngine(t)
	hub := eng.Hub("models")

	hub.Define(kindDocument, func(args ...any) (signal.Listener, error) {
		doc := newDocument()
		if len(args) > 0 {
			doc.title, _ = args[0].(string)
		}
		return doc, nil
	})

	// Shared acquire twice yields the same instance.
	first, err := hub.Acquire(kindDocument, true, "report")
	require.NoError(t, err)
	second, err := hub.Acquire(kindDocument, true)
	require.NoError(t, err)
	assert.Equal(t, first.ID(), second.ID())

	doc := first.(*document)
	view := newDocView()

	// The view subscribes itself through the register signal.
	doc.Invoke(signal.Event{Source: view, Op: signal.OpRegister})
	require.True(t, doc.Listening(view))

	// Refresh reaches the view exactly once, with the document as source.
	delivered := doc.Refresh()
	assert.Equal(t, 1, delivered)
	assert.Equal(t, 1, view.respawns)

	// Pipe the document's data into the view.
	view.Invoke(signal.Event{Source: doc, Op: signal.OpPipeData})
	assert.Equal(t, "report", view.title)

	// Unsubscribe stops further refreshes.
	doc.Invoke(signal.Event{Source: view, Op: signal.OpUnregister})
	assert.Equal(t, 0, doc.Refresh())
	assert.Equal(t, 1, view.respawns)
}

// TestMulticastAcrossHub verifies hub-level fan-out excludes the source.
func TestMulticastAcrossHub(t *testing.T) {
	eng := testutil.NewEngine(t)
	hub := eng.Hub("views")

	source := testutil.NewRecorder("source", kindView)
	peerA := testutil.NewRecorder("peer-a", kindView)
	peerB := testutil.NewRecorder("peer-b", kindView)
	hub.Add(source, false)
	hub.Add(peerA, false)
	hub.Add(peerB, false)

	delivered := hub.Multicast(kindView, signal.Event{Source: source, Op: signal.OpModelRefresh})

	assert.Equal(t, 2, delivered)
	assert.Equal(t, 0, source.Count())
	assert.Equal(t, 1, peerA.Count())
	assert.Equal(t, 1, peerB.Count())
}

// TestAsyncPostDelivery verifies the dispatcher path end to end.
func TestAsyncPostDelivery(t *testing.T) {
	eng := testutil.NewEngine(t)
	hub := eng.Hub("views")

	peerA := testutil.NewRecorder("peer-a", kindView)
	peerB := testutil.NewRecorder("peer-b", kindView)
	hub.Add(peerA, false)
	hub.Add(peerB, false)

	msgID, targets, err := eng.Post("views", kindView, signal.OpPipeData, "chunk")
	require.NoError(t, err)
	assert.NotEmpty(t, msgID)
	assert.Equal(t, 2, targets)

	require.Eventually(t, func() bool {
		return peerA.Count() == 1 && peerB.Count() == 1
	}, 2*time.Second, 5*time.Millisecond)

	assert.Equal(t, signal.Op("pipe-data"), peerA.Events()[0].Op)
	assert.Equal(t, "chunk", peerA.Events()[0].Payload)
}

// TestResetTearsDownSession verifies global reset and liveness.
func TestResetTearsDownSession(t *testing.T) {
	eng := testutil.NewEngine(t)

	eng.Hub("models").Add(testutil.NewRecorder("doc", kindDocument), false)
	require.True(t, eng.Running())

	dropped := eng.Reset()

	assert.Contains(t, dropped, "models")
	assert.False(t, eng.Running())

	// A hub requested after reset is a fresh, empty registry.
	assert.Equal(t, 0, eng.Hub("models").Count())
}
