// Package rtti 提供序列化所需的类描述：类名、有序属性表，以及属性的
// 封闭三分类（原生值 / 内嵌复合值 / 对象引用）。分类在描述符构建时
// 一次定死，写出阶段按分类分派，不做运行期类型探测。
package rtti

import (
	"fmt"

	"github.com/lk2023060901/objectstream-go/internal/objectstream/stream"
	"github.com/lk2023060901/objectstream-go/pkg/util/merr"
)

// Kind 是属性的封闭分类。
type Kind uint8

const (
	// KindPrimitive 原生值，由原生类型注册表编解码。
	KindPrimitive Kind = iota
	// KindComposedValue 内嵌复合值，按成员类的属性表就地展开。
	KindComposedValue
	// KindPointer 对象引用，只写编号，对象体延后写出。
	KindPointer
)

// GraphWriter 是属性写出时回调的图写出器能力。指针属性经由它
// 解析引用编号，复合值属性经由它展开成员数据。
type GraphWriter interface {
	// WriteClassData 按声明顺序写出 instance 在类 t 下的全部属性值。
	WriteClassData(t *Type, instance any)
	// WritePointerData 写出一个指向 pointee 的引用编号，空引用写 0。
	WritePointerData(t *Type, pointee any)
	// Stream 返回会话独占的编码后端。
	Stream() stream.OutStream
}

// Getter 从宿主实例中取出属性值。
type Getter func(instance any) any

// Attribute 描述一个属性。零值不可用，只能经由 Primitive、
// ComposedValue、Pointer 三个构造函数得到。
type Attribute struct {
	name       string
	kind       Kind
	primitive  PrimitiveKind
	memberType *Type
	get        Getter
}

// Primitive 构造一个原生值属性。
func Primitive(name string, kind PrimitiveKind, get Getter) Attribute {
	return Attribute{name: name, kind: KindPrimitive, primitive: kind, get: get}
}

// ComposedValue 构造一个内嵌复合值属性，member 为成员类。
func ComposedValue(name string, member *Type, get Getter) Attribute {
	return Attribute{name: name, kind: KindComposedValue, memberType: member, get: get}
}

// Pointer 构造一个对象引用属性，target 为引用目标类。取值回调表示
// 空引用时必须返回无类型 nil，而不是带类型的 nil 指针。
func Pointer(name string, target *Type, get Getter) Attribute {
	return Attribute{name: name, kind: KindPointer, memberType: target, get: get}
}

// Name 返回属性名。
func (a Attribute) Name() string { return a.name }

// Kind 返回属性分类。
func (a Attribute) Kind() Kind { return a.kind }

// MemberType 返回需要独立声明的成员类，原生值属性返回 nil。
func (a Attribute) MemberType() *Type { return a.memberType }

// WriteDataType 写出属性的类型标签。引用与复合值属性附带成员类名。
func (a Attribute) WriteDataType(s stream.OutStream) {
	switch a.kind {
	case KindPrimitive:
		s.WriteDataType(codecOf(a.primitive).tag)
	case KindComposedValue:
		s.WriteDataType(stream.DataTypeInstance)
		s.WriteName(a.memberType.Name())
	case KindPointer:
		s.WriteDataType(stream.DataTypePointer)
		s.WriteName(a.memberType.Name())
	default:
		panic(fmt.Sprintf("rtti: invalid attribute kind %d", a.kind))
	}
}

// WriteData 从 instance 取值并写出。指针与复合值属性回调 w。
func (a Attribute) WriteData(w GraphWriter, instance any) {
	value := a.get(instance)
	switch a.kind {
	case KindPrimitive:
		s := w.Stream()
		s.HintNextItem()
		codecOf(a.primitive).writeValue(s, value)
	case KindComposedValue:
		w.WriteClassData(a.memberType, value)
	case KindPointer:
		w.WritePointerData(a.memberType, value)
	default:
		panic(fmt.Sprintf("rtti: invalid attribute kind %d", a.kind))
	}
}

// Type 是一个类的描述符：类名加有序属性表。经 Declare 前置声明、
// Define 定义属性后即为只读。前置声明允许类间互相引用。
type Type struct {
	name       string
	attributes []Attribute
	defined    bool
}

// Declare 前置声明一个类，属性表由随后的 Define 给出。类名为空时
// panic，属于编程错误。
func Declare(name string) *Type {
	if name == "" {
		panic("rtti: class name is empty")
	}
	return &Type{name: name}
}

// Define 定义属性表并校验：属性名非空且互不重复、成员类与取值回调
// 齐全。每个类只能定义一次。
func (t *Type) Define(attrs ...Attribute) error {
	if t.defined {
		return merr.WrapErrTypeIllegalSchema(t.name, "class already defined")
	}
	if err := validateAttributes(t.name, attrs); err != nil {
		return err
	}
	t.attributes = attrs
	t.defined = true
	return nil
}

// MustDefine 同 Define，校验失败时 panic，供包级描述符初始化使用。
func (t *Type) MustDefine(attrs ...Attribute) *Type {
	if err := t.Define(attrs...); err != nil {
		panic(err)
	}
	return t
}

// NewType 一步完成声明与定义，适用于无互相引用的类。
func NewType(name string, attrs ...Attribute) (*Type, error) {
	if name == "" {
		return nil, merr.WrapErrTypeIllegalSchema(name, "class name is empty")
	}
	t := Declare(name)
	if err := t.Define(attrs...); err != nil {
		return nil, err
	}
	return t, nil
}

func validateAttributes(name string, attrs []Attribute) error {
	seen := make(map[string]struct{}, len(attrs))
	for _, attr := range attrs {
		if attr.name == "" {
			return merr.WrapErrTypeIllegalSchema(name, "attribute name is empty")
		}
		if _, ok := seen[attr.name]; ok {
			return merr.WrapErrTypeIllegalSchema(name,
				fmt.Sprintf("duplicate attribute %q", attr.name))
		}
		seen[attr.name] = struct{}{}
		if attr.get == nil {
			return merr.WrapErrTypeIllegalSchema(name,
				fmt.Sprintf("attribute %q has no getter", attr.name))
		}
		switch attr.kind {
		case KindPrimitive:
			if _, ok := primitiveCodecs[attr.primitive]; !ok {
				return merr.WrapErrAttributeKindInvalid(name, attr.name,
					"unknown primitive kind")
			}
		case KindComposedValue, KindPointer:
			if attr.memberType == nil {
				return merr.WrapErrTypeIllegalSchema(name,
					fmt.Sprintf("attribute %q has no member class", attr.name))
			}
		default:
			return merr.WrapErrAttributeKindInvalid(name, attr.name,
				fmt.Sprintf("kind %d", attr.kind))
		}
	}
	return nil
}

// MustNewType 同 NewType，校验失败时 panic，供包级描述符初始化使用。
func MustNewType(name string, attrs ...Attribute) *Type {
	t, err := NewType(name, attrs...)
	if err != nil {
		panic(err)
	}
	return t
}

// Name 返回类名。
func (t *Type) Name() string { return t.name }

// Attributes 返回有序属性表，调用方不得修改。
func (t *Type) Attributes() []Attribute { return t.attributes }
