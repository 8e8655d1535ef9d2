package lacc

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestType_Constructors(t *testing.T) {
	assert.Equal(t, 4, Integer(4).Size)
	assert.Equal(t, Type_Integer, Integer(4).Kind)
	assert.Equal(t, 0, Void().Size)
	assert.False(t, Void().IsComplete())

	p := Pointer(Integer(1), 8)
	assert.Equal(t, 8, p.Size)
	assert.Equal(t, Type_Pointer, p.Kind)
	assert.Equal(t, 1, p.Next.Size)

	a, err := Array(Integer(4), 3)
	require.NoError(t, err)
	assert.Equal(t, 12, a.Size)
	assert.True(t, a.IsComplete())

	incomplete, err := Array(Integer(4), 0)
	require.NoError(t, err)
	assert.False(t, incomplete.IsComplete())
}

func TestType_ArrayIncompleteElement(t *testing.T) {
	_, err := Array(Object(), 3)
	assert.Error(t, err)
}

func TestType_Complete(t *testing.T) {
	incomplete, err := Array(Integer(4), 0)
	require.NoError(t, err)
	source, err := Array(Integer(4), 5)
	require.NoError(t, err)

	require.NoError(t, incomplete.Complete(source))
	assert.Equal(t, 20, incomplete.Size)

	// A complete array cannot be completed again.
	assert.Error(t, incomplete.Complete(source))
}

func TestType_StructLayout(t *testing.T) {
	tests := []struct {
		name    string
		members []*Type
		offsets []int
		size    int
	}{
		{
			name:    "char then int",
			members: []*Type{Integer(1), Integer(4)},
			offsets: []int{0, 4},
			size:    8,
		},
		{
			name:    "int then char",
			members: []*Type{Integer(4), Integer(1)},
			offsets: []int{0, 4},
			size:    8,
		},
		{
			name:    "chars only",
			members: []*Type{Integer(1), Integer(1), Integer(1)},
			offsets: []int{0, 1, 2},
			size:    3,
		},
		{
			name:    "char pointer long",
			members: []*Type{Integer(1), Pointer(Integer(4), 8), Integer(8)},
			offsets: []int{0, 8, 16},
			size:    24,
		},
		{
			name:    "short int short",
			members: []*Type{Integer(2), Integer(4), Integer(2)},
			offsets: []int{0, 4, 8},
			size:    12,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			obj := Object()
			for i, m := range tt.members {
				obj.AddMember(string(rune('a'+i)), m)
			}
			obj.AlignStructMembers()
			for i := range tt.members {
				assert.Equal(t, tt.offsets[i], obj.Members[i].Offset, "offset of member %d", i)
			}
			assert.Equal(t, tt.size, obj.Size)
		})
	}
}

func TestType_UnionLayout(t *testing.T) {
	u := Object()
	u.IsUnion = true
	u.AddMember("c", Integer(1))
	u.AddMember("n", Integer(4))
	u.AlignStructMembers()
	assert.Equal(t, 0, u.Members[0].Offset)
	assert.Equal(t, 0, u.Members[1].Offset)
	assert.Equal(t, 4, u.Size)
}

func TestType_Alignment(t *testing.T) {
	assert.Equal(t, 1, Integer(1).Alignment())
	assert.Equal(t, 4, Integer(4).Alignment())
	assert.Equal(t, 8, Pointer(Integer(1), 8).Alignment())

	a, err := Array(Integer(4), 2)
	require.NoError(t, err)
	assert.Equal(t, 4, a.Alignment())

	obj := Object()
	obj.AddMember("a", Integer(1))
	obj.AddMember("b", Integer(4))
	obj.AlignStructMembers()
	assert.Equal(t, 4, obj.Alignment())
}

func TestType_Equal(t *testing.T) {
	tests := []struct {
		name  string
		a     *Type
		b     *Type
		equal bool
	}{
		{name: "same integers", a: Integer(4), b: Integer(4), equal: true},
		{name: "different sizes", a: Integer(4), b: Integer(8), equal: false},
		{name: "signedness differs", a: Integer(4), b: func() *Type { u := Integer(4); u.IsUnsigned = true; return u }(), equal: false},
		{name: "qualifier differs", a: Integer(4), b: func() *Type { c := Integer(4); c.IsConst = true; return c }(), equal: false},
		{name: "pointers to same", a: Pointer(Integer(4), 8), b: Pointer(Integer(4), 8), equal: true},
		{name: "pointers to different", a: Pointer(Integer(4), 8), b: Pointer(Integer(1), 8), equal: false},
		{name: "integer vs real", a: Integer(4), b: Real(4), equal: false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.equal, tt.a.Equal(tt.b))
			assert.Equal(t, tt.equal, tt.b.Equal(tt.a))
		})
	}
}

func TestType_EqualFunction(t *testing.T) {
	f1 := Function(Integer(4))
	f1.AddMember("a", Integer(4))
	f2 := Function(Integer(4))
	f2.AddMember("a", Integer(4))
	assert.True(t, f1.Equal(f2))

	f2.IsVararg = true
	assert.False(t, f1.Equal(f2))
}

func TestType_String(t *testing.T) {
	assert.Equal(t, "int", Integer(4).String())
	assert.Equal(t, "char", Integer(1).String())
	assert.Equal(t, "* int", Pointer(Integer(4), 8).String())
	a, err := Array(Integer(4), 3)
	require.NoError(t, err)
	assert.Equal(t, "[3] int", a.String())
}
