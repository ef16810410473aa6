package writer

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lk2023060901/objectstream-go/internal/objectstream/rtti"
	"github.com/lk2023060901/objectstream-go/internal/objectstream/stream"
	"github.com/lk2023060901/objectstream-go/pkg/util/merr"
)

type node struct {
	label string
	left  *node
	right *node
}

// nodeType 描述 node：一个字符串属性加两个可空引用。
func nodeType() *rtti.Type {
	t := rtti.Declare("Node")
	ptrGetter := func(get func(*node) *node) rtti.Getter {
		return func(instance any) any {
			if next := get(instance.(*node)); next != nil {
				return next
			}
			return nil
		}
	}
	return t.MustDefine(
		rtti.Primitive("label", rtti.PrimitiveString, func(instance any) any {
			return instance.(*node).label
		}),
		rtti.Pointer("left", t, ptrGetter(func(n *node) *node { return n.left })),
		rtti.Pointer("right", t, ptrGetter(func(n *node) *node { return n.right })),
	)
}

func writeText(t *testing.T, root *node) (string, error) {
	var buf bytes.Buffer
	err := New(stream.NewTextOut(&buf)).Write(context.Background(), root, nodeType())
	return buf.String(), err
}

func TestWriteSingleObject(t *testing.T) {
	out, err := writeText(t, &node{label: "only"})
	require.NoError(t, err)

	expected := strings.Join([]string{
		"declare Node 3",
		"\tlabel string",
		"\tleft pointer Node",
		"\tright pointer Node",
		"",
		"object Node 1",
		"\t\"only\"",
		"\t0",
		"\t0",
	}, "\n")
	assert.Equal(t, expected, out)
}

func TestWriteCycleWithSharedReference(t *testing.T) {
	// R 经 left、right 两次引用 A，A 又指回 R
	r := &node{label: "R"}
	a := &node{label: "A", left: r}
	r.left = a
	r.right = a

	out, err := writeText(t, r)
	require.NoError(t, err)

	expected := strings.Join([]string{
		"declare Node 3",
		"\tlabel string",
		"\tleft pointer Node",
		"\tright pointer Node",
		"",
		"object Node 1",
		"\t\"R\"",
		"\t2",
		"\t2",
		"",
		"object Node 2",
		"\t\"A\"",
		"\t1",
		"\t0",
	}, "\n")
	assert.Equal(t, expected, out)

	// 每个实例恰好一个对象体记录
	assert.Equal(t, 2, strings.Count(out, "object Node"))
	assert.Equal(t, 1, strings.Count(out, "declare Node"))
}

func TestWriteBreadthFirstOrder(t *testing.T) {
	// 深度优先会先写 b 的子树，广度优先按首次引用顺序写 b、c、d
	d := &node{label: "d"}
	b := &node{label: "b", left: d}
	c := &node{label: "c"}
	root := &node{label: "a", left: b, right: c}

	out, err := writeText(t, root)
	require.NoError(t, err)

	order := []string{`"a"`, `"b"`, `"c"`, `"d"`}
	last := -1
	for _, label := range order {
		idx := strings.Index(out, label)
		require.Greater(t, idx, last, "label %s out of order", label)
		last = idx
	}
}

func TestWriteZeroAttributeClass(t *testing.T) {
	empty := rtti.MustNewType("Empty")
	var buf bytes.Buffer
	err := New(stream.NewTextOut(&buf)).Write(context.Background(), &node{}, empty)
	require.NoError(t, err)

	expected := strings.Join([]string{
		"declare Empty 0",
		"",
		"object Empty 1",
	}, "\n")
	assert.Equal(t, expected, buf.String())
}

func TestWriteMemberClassDeclaredBeforeUse(t *testing.T) {
	// Vec 只作为内嵌成员出现，仍须在 Holder 声明之后立即声明，
	// 且先于对象数据
	type vec struct{ x float32 }
	type holder struct{ pos vec }

	vecType := rtti.MustNewType("Vec",
		rtti.Primitive("x", rtti.PrimitiveFloat32, func(instance any) any {
			return instance.(*vec).x
		}),
	)
	holderType := rtti.MustNewType("Holder",
		rtti.ComposedValue("pos", vecType, func(instance any) any {
			return &instance.(*holder).pos
		}),
	)

	var buf bytes.Buffer
	err := New(stream.NewTextOut(&buf)).Write(context.Background(),
		&holder{pos: vec{x: 1.5}}, holderType)
	require.NoError(t, err)

	expected := strings.Join([]string{
		"declare Holder 1",
		"\tpos instance Vec",
		"",
		"declare Vec 1",
		"\tx float32",
		"",
		"object Holder 1",
		"\t\t1.5",
	}, "\n")
	assert.Equal(t, expected, buf.String())
}

// faultingStream 在写入第 n 个编号后强制进入故障态。
type faultingStream struct {
	stream.OutStream
	remaining int
	err       error
}

func (s *faultingStream) WriteIdentifier(id stream.Identifier) {
	if s.err != nil {
		return
	}
	s.OutStream.WriteIdentifier(id)
	s.remaining--
	if s.remaining == 0 {
		s.err = errors.New("stream broken")
	}
}

func (s *faultingStream) Fault() error {
	if s.err != nil {
		return s.err
	}
	return s.OutStream.Fault()
}

func TestWriteFaultAbandonsQueuedObjects(t *testing.T) {
	b := &node{label: "b"}
	c := &node{label: "c"}
	root := &node{label: "a", left: b, right: c}

	var buf bytes.Buffer
	// 第 2 个编号 = 根对象头之后的首个引用，随即故障
	out := &faultingStream{OutStream: stream.NewTextOut(&buf), remaining: 2}
	err := New(out).Write(context.Background(), root, nodeType())

	require.Error(t, err)
	assert.True(t, errors.Is(err, merr.ErrStreamFault))

	// 根对象头已写出，已入队的 b、c 被放弃
	assert.Contains(t, buf.String(), "object Node 1")
	assert.NotContains(t, buf.String(), "object Node 2")
	assert.NotContains(t, buf.String(), "object Node 3")
}

func TestWriteContextCanceled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	r := &node{label: "R"}
	r.left = &node{label: "A"}

	var buf bytes.Buffer
	err := New(stream.NewTextOut(&buf)).Write(ctx, r, nodeType())
	assert.True(t, errors.Is(err, context.Canceled))
}

func TestWriteNilArguments(t *testing.T) {
	var buf bytes.Buffer
	err := New(stream.NewTextOut(&buf)).Write(context.Background(), nil, nodeType())
	assert.True(t, errors.Is(err, merr.ErrParameterMissing))

	err = New(stream.NewTextOut(&buf)).Write(context.Background(), &node{}, nil)
	assert.True(t, errors.Is(err, merr.ErrParameterMissing))
}

func TestWriteObjectUnregisteredPanics(t *testing.T) {
	w := New(stream.NewTextOut(&bytes.Buffer{}))
	assert.Panics(t, func() { w.writeObject(&node{}) })
}

func TestWriteClassDataNilInstancePanics(t *testing.T) {
	w := New(stream.NewTextOut(&bytes.Buffer{}))
	assert.Panics(t, func() { w.WriteClassData(nodeType(), nil) })
}

func TestWriteBinaryRoundsOut(t *testing.T) {
	// 二进制后端走完整会话且无故障，输出非空
	r := &node{label: "R"}
	r.left = r // 自引用

	var buf bytes.Buffer
	err := New(stream.NewBinaryOut(&buf)).Write(context.Background(), r, nodeType())
	require.NoError(t, err)
	assert.NotZero(t, buf.Len())
}
