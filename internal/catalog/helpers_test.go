package catalog

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/url"
	"strconv"
	"sync"

	"github.com/stretchr/testify/mock"

	domain "github.com/donaldgifford/storefront/pkg/types"
)

func quietLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func rawItem(id, name string, price float64) json.RawMessage {
	return json.RawMessage(fmt.Sprintf(`{"_id":%q,"name":%q,"price":%v}`, id, name, price))
}

func testSource() Source[domain.Item] {
	return ItemSource(domain.Vertical{
		Name:     "materials",
		Endpoint: "/products/all",
		Envelope: domain.EnvelopeProducts,
		Params:   map[string]string{"productType": "materiau", "status": "active"},
	})
}

// recordingLister answers synchronously and records every request.
type recordingLister struct {
	mu    sync.Mutex
	calls []url.Values
	fn    func(params url.Values) (*domain.RawPage, error)
}

func newRecordingLister(pages int) *recordingLister {
	return &recordingLister{fn: func(params url.Values) (*domain.RawPage, error) {
		p, _ := strconv.Atoi(params.Get("page"))
		return &domain.RawPage{
			Items: []json.RawMessage{
				rawItem("p"+strconv.Itoa(p), "Item page "+strconv.Itoa(p), float64(p)),
			},
			Pagination: domain.Pagination{Page: p, Limit: 12, Total: pages * 12, Pages: pages},
		}, nil
	}}
}

func (r *recordingLister) List(
	_ context.Context,
	_ string,
	_ domain.Envelope,
	params url.Values,
) (*domain.RawPage, error) {
	r.mu.Lock()
	r.calls = append(r.calls, params)
	fn := r.fn
	r.mu.Unlock()
	return fn(params)
}

func (r *recordingLister) setFn(fn func(url.Values) (*domain.RawPage, error)) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.fn = fn
}

func (r *recordingLister) count() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.calls)
}

func (r *recordingLister) last() url.Values {
	r.mu.Lock()
	defer r.mu.Unlock()
	if len(r.calls) == 0 {
		return nil
	}
	return r.calls[len(r.calls)-1]
}

type listReply struct {
	page *domain.RawPage
	err  error
}

type pendingCall struct {
	params url.Values
	reply  chan listReply
}

// gatedLister blocks every request until the test replies to it. It ignores
// cancellation so late responses really arrive late.
type gatedLister struct {
	calls chan pendingCall
}

func newGatedLister() *gatedLister {
	return &gatedLister{calls: make(chan pendingCall, 16)}
}

func (g *gatedLister) List(
	_ context.Context,
	_ string,
	_ domain.Envelope,
	params url.Values,
) (*domain.RawPage, error) {
	pc := pendingCall{params: params, reply: make(chan listReply, 1)}
	g.calls <- pc
	r := <-pc.reply
	return r.page, r.err
}

func onePage(items ...json.RawMessage) *domain.RawPage {
	return &domain.RawPage{
		Items:      items,
		Pagination: domain.Pagination{Page: 1, Limit: 12, Total: len(items), Pages: 1},
	}
}

// mockLister is a testify mock for one-shot fetch tests.
type mockLister struct {
	mock.Mock
}

func (m *mockLister) List(
	ctx context.Context,
	path string,
	envelope domain.Envelope,
	params url.Values,
) (*domain.RawPage, error) {
	args := m.Called(ctx, path, envelope, params)
	page, _ := args.Get(0).(*domain.RawPage)
	return page, args.Error(1)
}
