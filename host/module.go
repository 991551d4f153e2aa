package host

import (
	"context"
	"sync"

	"github.com/tetratelabs/wazero"
	"github.com/tetratelabs/wazero/api"
	"go.uber.org/zap"

	"github.com/wippyai/tinyptr/errors"
	"github.com/wippyai/tinyptr/table"
)

// Options configures the host module.
type Options struct {
	ModuleName      string
	InitialCapacity int
}

// DefaultOptions returns default host module configuration.
func DefaultOptions() Options {
	return Options{
		ModuleName:      "tinyptr",
		InitialCapacity: 64,
	}
}

// Module owns a table of i64 values shared by every guest that imports it.
// Thread-safe.
type Module struct {
	table   *table.Table[uint64]
	options Options
	mu      sync.Mutex
}

// New creates a host module. Zero fields in opts fall back to DefaultOptions.
func New(opts Options) *Module {
	def := DefaultOptions()
	if opts.ModuleName == "" {
		opts.ModuleName = def.ModuleName
	}
	if opts.InitialCapacity == 0 {
		opts.InitialCapacity = def.InitialCapacity
	}
	return &Module{
		table:   table.New[uint64](opts.InitialCapacity),
		options: opts,
	}
}

// Name returns the import module name guests use.
func (m *Module) Name() string {
	return m.options.ModuleName
}

// Options returns the configuration.
func (m *Module) Options() Options {
	return m.options
}

type funcDef struct {
	name    string
	handler api.GoModuleFunc
	params  []api.ValueType
	results []api.ValueType
}

func (m *Module) funcs() []funcDef {
	i32 := api.ValueTypeI32
	i64 := api.ValueTypeI64
	return []funcDef{
		{name: "allocate", handler: m.hostAllocate, params: []api.ValueType{i64}, results: []api.ValueType{i64}},
		{name: "get", handler: m.hostGet, params: []api.ValueType{i64}, results: []api.ValueType{i64, i32}},
		{name: "set", handler: m.hostSet, params: []api.ValueType{i64, i64}, results: []api.ValueType{i32}},
		{name: "free", handler: m.hostFree, params: []api.ValueType{i64}, results: []api.ValueType{i64, i32}},
		{name: "capacity", handler: m.hostCapacity, results: []api.ValueType{i64}},
		{name: "allocated", handler: m.hostAllocated, results: []api.ValueType{i64}},
	}
}

// Instantiate registers the host module in rt. Guests importing Name() must
// be instantiated afterwards.
func (m *Module) Instantiate(ctx context.Context, rt wazero.Runtime) (api.Module, error) {
	builder := rt.NewHostModuleBuilder(m.options.ModuleName)

	for _, f := range m.funcs() {
		builder.NewFunctionBuilder().
			WithGoModuleFunction(f.handler, f.params, f.results).
			Export(f.name)
	}

	mod, err := builder.Instantiate(ctx)
	if err != nil {
		return nil, errors.Instantiation(m.options.ModuleName, err)
	}

	Logger().Debug("host module instantiated",
		zap.String("module", m.options.ModuleName),
		zap.Int("capacity", m.Capacity()))
	return mod, nil
}

// Allocate stores v and returns its handle.
func (m *Module) Allocate(v uint64) table.Handle {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.table.Allocate(v)
}

// Get returns the value h refers to.
func (m *Module) Get(h table.Handle) (uint64, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.table.Get(h)
}

// Set replaces the value h refers to and reports whether h was valid.
func (m *Module) Set(h table.Handle, v uint64) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.table.Update(h, func(p *uint64) { *p = v })
}

// Free removes and returns the value h refers to.
func (m *Module) Free(h table.Handle) (uint64, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.table.Free(h)
}

// Capacity returns the table capacity.
func (m *Module) Capacity() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.table.Capacity()
}

// Stats returns a snapshot of the table counters.
func (m *Module) Stats() table.Stats {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.table.Stats()
}

func boolResult(ok bool) uint64 {
	if ok {
		return api.EncodeU32(1)
	}
	return api.EncodeU32(0)
}

func (m *Module) rejected(fn string, h table.Handle) {
	Logger().Debug("stale handle rejected",
		zap.String("module", m.options.ModuleName),
		zap.String("func", fn),
		zap.Stringer("handle", h))
}

func (m *Module) hostAllocate(_ context.Context, _ api.Module, stack []uint64) {
	stack[0] = m.Allocate(stack[0]).Bits()
}

func (m *Module) hostGet(_ context.Context, _ api.Module, stack []uint64) {
	h := table.FromBits(stack[0])
	v, ok := m.Get(h)
	if !ok {
		m.rejected("get", h)
	}
	stack[0] = v
	stack[1] = boolResult(ok)
}

func (m *Module) hostSet(_ context.Context, _ api.Module, stack []uint64) {
	h := table.FromBits(stack[0])
	ok := m.Set(h, stack[1])
	if !ok {
		m.rejected("set", h)
	}
	stack[0] = boolResult(ok)
}

func (m *Module) hostFree(_ context.Context, _ api.Module, stack []uint64) {
	h := table.FromBits(stack[0])
	v, ok := m.Free(h)
	if !ok {
		m.rejected("free", h)
	}
	stack[0] = v
	stack[1] = boolResult(ok)
}

func (m *Module) hostCapacity(_ context.Context, _ api.Module, stack []uint64) {
	stack[0] = api.EncodeI64(int64(m.Capacity()))
}

func (m *Module) hostAllocated(_ context.Context, _ api.Module, stack []uint64) {
	stack[0] = api.EncodeI64(int64(m.Stats().Allocated))
}
