package rtti

import (
	"bytes"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lk2023060901/objectstream-go/internal/objectstream/stream"
	"github.com/lk2023060901/objectstream-go/pkg/util/merr"
)

// recordingWriter 记录回调参数，原生值直接落到文本流上。
type recordingWriter struct {
	out         stream.OutStream
	classCalls  []string
	pointeeSeen []any
}

func (w *recordingWriter) WriteClassData(t *Type, instance any) {
	w.classCalls = append(w.classCalls, t.Name())
}

func (w *recordingWriter) WritePointerData(t *Type, pointee any) {
	w.pointeeSeen = append(w.pointeeSeen, pointee)
}

func (w *recordingWriter) Stream() stream.OutStream { return w.out }

func selfGetter(instance any) any { return instance }

func TestNewTypeValidation(t *testing.T) {
	vec := MustNewType("Vec3",
		Primitive("x", PrimitiveFloat32, selfGetter),
		Primitive("y", PrimitiveFloat32, selfGetter),
		Primitive("z", PrimitiveFloat32, selfGetter),
	)
	assert.Equal(t, "Vec3", vec.Name())
	assert.Len(t, vec.Attributes(), 3)

	_, err := NewType("")
	assert.True(t, errors.Is(err, merr.ErrTypeIllegalSchema))

	_, err = NewType("Dup",
		Primitive("a", PrimitiveInt32, selfGetter),
		Primitive("a", PrimitiveInt32, selfGetter),
	)
	assert.True(t, errors.Is(err, merr.ErrTypeIllegalSchema))

	_, err = NewType("NoGetter", Primitive("a", PrimitiveInt32, nil))
	assert.True(t, errors.Is(err, merr.ErrTypeIllegalSchema))

	_, err = NewType("NoMember", ComposedValue("v", nil, selfGetter))
	assert.True(t, errors.Is(err, merr.ErrTypeIllegalSchema))

	_, err = NewType("BadKind", Attribute{name: "a", kind: Kind(42), get: selfGetter})
	assert.True(t, errors.Is(err, merr.ErrAttributeKindInvalid))

	_, err = NewType("BadPrim", Primitive("a", PrimitiveKind(42), selfGetter))
	assert.True(t, errors.Is(err, merr.ErrAttributeKindInvalid))
}

func TestAttributeWriteDataType(t *testing.T) {
	vec := MustNewType("Vec3", Primitive("x", PrimitiveFloat32, selfGetter))

	cases := []struct {
		attr     Attribute
		expected string
	}{
		{Primitive("mass", PrimitiveFloat32, selfGetter), "float32"},
		{Primitive("label", PrimitiveString, selfGetter), "string"},
		{ComposedValue("position", vec, selfGetter), "instance Vec3"},
		{Pointer("next", vec, selfGetter), "pointer Vec3"},
	}
	for _, tc := range cases {
		var buf bytes.Buffer
		tc.attr.WriteDataType(stream.NewTextOut(&buf))
		assert.Equal(t, tc.expected, buf.String())
	}
}

func TestAttributeWriteData(t *testing.T) {
	vec := MustNewType("Vec3", Primitive("x", PrimitiveFloat32, selfGetter))

	var buf bytes.Buffer
	w := &recordingWriter{out: stream.NewTextOut(&buf)}

	instance := map[string]any{"mass": float32(2.5), "pos": "posval", "next": "nextval"}
	getter := func(key string) Getter {
		return func(inst any) any { return inst.(map[string]any)[key] }
	}

	Primitive("mass", PrimitiveFloat32, getter("mass")).WriteData(w, instance)
	assert.Equal(t, "2.5", buf.String())

	ComposedValue("pos", vec, getter("pos")).WriteData(w, instance)
	assert.Equal(t, []string{"Vec3"}, w.classCalls)

	Pointer("next", vec, getter("next")).WriteData(w, instance)
	assert.Equal(t, []any{"nextval"}, w.pointeeSeen)
}

func TestRegistry(t *testing.T) {
	reg := NewRegistry()
	vec := MustNewType("Vec3", Primitive("x", PrimitiveFloat32, selfGetter))

	assert.Same(t, vec, reg.Register(vec))

	// 同名重复注册返回已存在的版本
	other := MustNewType("Vec3")
	assert.Same(t, vec, reg.Register(other))

	got, err := reg.Lookup("Vec3")
	require.NoError(t, err)
	assert.Same(t, vec, got)

	_, err = reg.Lookup("Missing")
	assert.True(t, errors.Is(err, merr.ErrTypeNotRegistered))

	assert.ElementsMatch(t, []string{"Vec3"}, reg.Names())
}

func TestDeclareDefineCycle(t *testing.T) {
	// 互相引用的两个类：先前置声明，再分别定义
	node := Declare("Node")
	edge := Declare("Edge")

	require.NoError(t, node.Define(Pointer("firstEdge", edge, selfGetter)))
	require.NoError(t, edge.Define(Pointer("target", node, selfGetter)))

	assert.Same(t, edge, node.Attributes()[0].MemberType())
	assert.Same(t, node, edge.Attributes()[0].MemberType())

	// 重复定义被拒绝
	err := node.Define()
	assert.True(t, errors.Is(err, merr.ErrTypeIllegalSchema))

	assert.Panics(t, func() { Declare("") })
}
