package xmlrpc

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/Query-farm/vgi-xmlrpc/wire"
)

func TestRegistry_ReservedAlwaysKnown(t *testing.T) {
	reg := NewRegistry()
	for _, name := range reservedMethods {
		assert.True(t, reg.IsKnown(name), name)
	}
	assert.False(t, reg.IsKnown("add"))
	assert.Empty(t, reg.Methods())
}

func TestRegistry_RegisterIdempotent(t *testing.T) {
	reg := NewRegistry()
	reg.Register("add")
	reg.Register("add")
	assert.Equal(t, []string{"add"}, reg.Methods())
	assert.True(t, reg.IsKnown("add"))
	assert.Equal(t, [][]wire.ValueType{}, reg.Signatures("add"))
}

func TestRegistry_AddSignatureAppends(t *testing.T) {
	reg := NewRegistry()
	reg.AddSignature("add", []wire.ValueType{wire.TypeInt, wire.TypeInt})
	reg.AddSignature("add", []wire.ValueType{wire.TypeDouble, wire.TypeDouble})
	reg.AddSignature("add", []wire.ValueType{wire.TypeInt, wire.TypeInt})

	assert.True(t, reg.IsKnown("add"))
	assert.Equal(t, [][]wire.ValueType{
		{wire.TypeInt, wire.TypeInt},
		{wire.TypeDouble, wire.TypeDouble},
		{wire.TypeInt, wire.TypeInt},
	}, reg.Signatures("add"))
}

func TestRegistry_SignaturesAreCopies(t *testing.T) {
	reg := NewRegistry()
	types := []wire.ValueType{wire.TypeString}
	reg.AddSignature("echo", types)
	types[0] = wire.TypeInt

	sigs := reg.Signatures("echo")
	sigs[0][0] = wire.TypeBool
	assert.Equal(t, [][]wire.ValueType{{wire.TypeString}}, reg.Signatures("echo"))
}

func TestRegistry_Help(t *testing.T) {
	reg := NewRegistry()
	_, ok := reg.Help("add")
	assert.False(t, ok)

	reg.AddHelp("add", "first")
	reg.AddHelp("add", "second")
	help, ok := reg.Help("add")
	assert.True(t, ok)
	assert.Equal(t, "second", help)
	assert.True(t, reg.IsKnown("add"))

	reg.AddHelp("empty", "")
	help, ok = reg.Help("empty")
	assert.True(t, ok)
	assert.Equal(t, "", help)
}

func TestRegistry_EnsureSignature(t *testing.T) {
	reg := NewRegistry()
	reg.ensureSignature(MethodHelp, []wire.ValueType{wire.TypeString})
	reg.ensureSignature(MethodHelp, []wire.ValueType{wire.TypeString})
	assert.Len(t, reg.Signatures(MethodHelp), 1)
}

func TestRegistry_MethodsSorted(t *testing.T) {
	reg := NewRegistry()
	for _, n := range []string{"zeta", "alpha", "mid", "alpha"} {
		reg.Register(n)
	}
	assert.Equal(t, []string{"alpha", "mid", "zeta"}, reg.Methods())
}

func TestRegistry_ConcurrentUse(t *testing.T) {
	reg := NewRegistry()
	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(2)
		go func() {
			defer wg.Done()
			for j := 0; j < 100; j++ {
				reg.AddSignature("m", []wire.ValueType{wire.TypeInt})
			}
		}()
		go func() {
			defer wg.Done()
			for j := 0; j < 100; j++ {
				_ = reg.Signatures("m")
				_ = reg.Methods()
				_ = reg.IsKnown("m")
			}
		}()
	}
	wg.Wait()
	assert.Len(t, reg.Signatures("m"), 800)
}
