// Package writer 实现对象图的写出编排：编号分配、类声明的两阶段协议、
// 以及基于显式 FIFO 工作队列的广度优先对象体写出。任意含环、共享引用
// 的图都以有界的迭代工作量完成，每个对象体恰好写出一次。
package writer

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/lk2023060901/objectstream-go/internal/objectstream/rtti"
	"github.com/lk2023060901/objectstream-go/internal/objectstream/stream"
	"github.com/lk2023060901/objectstream-go/pkg/buffer/queue"
	"github.com/lk2023060901/objectstream-go/pkg/log"
	"github.com/lk2023060901/objectstream-go/pkg/metrics"
	"github.com/lk2023060901/objectstream-go/pkg/util/merr"
	"github.com/lk2023060901/objectstream-go/pkg/util/typeutil"
)

const (
	initialQueueCapacity = 16

	// formatUnknown 用于无法识别物理格式的编码后端的指标标签。
	formatUnknown = "unknown"
)

// objectInfo 记录一个已登记实例的编号与类描述符。
type objectInfo struct {
	id  stream.Identifier
	typ *rtti.Type
}

// Writer 是一次序列化会话的编排器。单线程使用，一个 Writer 独占
// 一个编码后端；会话间不得共享。零值不可用，经由 New 构造。
type Writer struct {
	out    stream.OutStream
	format string

	// nextID 单调递增，0 保留给空引用。
	nextID stream.Identifier
	// identifiers 以实例标识为键。实例仅作相等性比较与回传，
	// 核心从不解引用，因此键必须是可比较的句柄（通常为指针）。
	identifiers map[any]objectInfo

	// declared 防止同一类重复进入待声明队列。
	declared typeutil.Set[*rtti.Type]
	// classQueue 待声明类，声明一个类可能追加新的待声明类。
	classQueue *queue.Queue[*rtti.Type]
	// worklist 待写出对象体，严格按首次引用顺序出队。
	worklist *queue.Queue[any]
}

var _ rtti.GraphWriter = (*Writer)(nil)

// New 基于编码后端 out 创建会话。
func New(out stream.OutStream) *Writer {
	format := formatUnknown
	if f, ok := out.(interface{ Format() stream.Format }); ok {
		format = string(f.Format())
	}
	return &Writer{
		out:         out,
		format:      format,
		nextID:      stream.NullIdentifier + 1,
		identifiers: make(map[any]objectInfo),
		declared:    typeutil.NewSet[*rtti.Type](),
		classQueue:  queue.New[*rtti.Type](initialQueueCapacity),
		worklist:    queue.New[any](initialQueueCapacity),
	}
}

// Write 写出 root 及由其可达的全部对象，rootType 为 root 的类描述符。
// 后端无故障结束会话时返回 nil；故障出现后立即停止出队，已入队但
// 未写出的对象被放弃，已写出的前缀保持原样。
func (w *Writer) Write(ctx context.Context, root any, rootType *rtti.Type) error {
	if root == nil || rootType == nil {
		return merr.WrapErrParameterMissing("root instance and class descriptor")
	}

	w.identifiers[root] = objectInfo{id: w.allocIdentifier(), typ: rootType}
	w.writeObject(root)

	for !w.worklist.IsEmpty() && w.out.Fault() == nil {
		if err := ctx.Err(); err != nil {
			log.Ctx(ctx).Warn("serialization session canceled",
				zap.String("class", rootType.Name()),
				zap.Int("abandoned", w.worklist.Len()))
			metrics.SessionTotal.WithLabelValues(w.format, metrics.StatusFault).Inc()
			return err
		}
		linked, _ := w.worklist.Pop()
		w.writeObject(linked)
	}

	if err := w.out.Fault(); err != nil {
		log.Ctx(ctx).Warn("serialization session failed",
			zap.String("class", rootType.Name()),
			zap.Int("abandoned", w.worklist.Len()),
			zap.Error(err))
		metrics.StreamFaultTotal.WithLabelValues(w.format).Inc()
		metrics.SessionTotal.WithLabelValues(w.format, metrics.StatusFault).Inc()
		return merr.WrapErrStreamFault(err, rootType.Name())
	}

	log.Ctx(ctx).Debug("serialization session finished",
		zap.String("class", rootType.Name()),
		zap.Int("objects", len(w.identifiers)))
	metrics.SessionTotal.WithLabelValues(w.format, metrics.StatusSuccess).Inc()
	return nil
}

// writeObject 写出一个已登记实例的对象体。调用前实例必须已分配编号，
// 违反此前置条件是编程错误，直接 panic。
func (w *Writer) writeObject(instance any) {
	info, ok := w.identifiers[instance]
	if !ok {
		panic(fmt.Sprintf("writer: instance of unregistered identity %T", instance))
	}

	// 先保证本类及其属性传递可达的全部成员类已声明。
	// 声明一个类可能再入队新的类，此处持续排空。
	w.queueClass(info.typ)
	for w.out.Fault() == nil {
		pending, ok := w.classQueue.Pop()
		if !ok {
			break
		}
		w.declareClass(pending)
	}

	w.out.HintNextItem()
	w.out.HintNextItem()

	w.out.WriteDataType(stream.DataTypeObject)
	w.out.WriteName(info.typ.Name())
	w.out.WriteIdentifier(info.id)
	metrics.ObjectRecordTotal.Inc()

	w.WriteClassData(info.typ, instance)
}

// queueClass 将类加入待声明队列，已声明或已入队时为空操作。
func (w *Writer) queueClass(t *rtti.Type) {
	if w.declared.Contain(t) {
		return
	}
	w.declared.Insert(t)
	w.classQueue.Push(t)
}

// declareClass 写出一条类声明记录。遇到带成员类的属性时先将成员类
// 入队，保证其声明先于本属性类型标签的首次使用。
func (w *Writer) declareClass(t *rtti.Type) {
	w.out.HintNextItem()
	w.out.HintNextItem()

	attrs := t.Attributes()
	w.out.WriteDataType(stream.DataTypeDeclare)
	w.out.WriteName(t.Name())
	w.out.WriteCount(uint32(len(attrs)))
	metrics.DeclareRecordTotal.Inc()

	w.out.HintIndentUp()
	for _, attr := range attrs {
		if member := attr.MemberType(); member != nil {
			w.queueClass(member)
		}

		w.out.HintNextItem()
		w.out.WriteName(attr.Name())
		attr.WriteDataType(w.out)
	}
	w.out.HintIndentDown()
}

// WriteClassData 按声明顺序写出 instance 在类 t 下的全部属性值。
func (w *Writer) WriteClassData(t *rtti.Type, instance any) {
	if instance == nil {
		panic(fmt.Sprintf("writer: nil instance for class %s", t.Name()))
	}
	w.out.HintIndentUp()
	for _, attr := range t.Attributes() {
		attr.WriteData(w, instance)
	}
	w.out.HintIndentDown()
}

// WritePointerData 写出一个引用编号。空引用写 0；已见过的实例复用
// 既有编号；新实例分配编号、登记并入队，对象体延后从工作队列写出。
// 无论哪种情况，此处只写编号。
func (w *Writer) WritePointerData(t *rtti.Type, pointee any) {
	var id stream.Identifier
	if pointee != nil {
		if info, ok := w.identifiers[pointee]; ok {
			id = info.id
		} else {
			id = w.allocIdentifier()
			w.identifiers[pointee] = objectInfo{id: id, typ: t}
			w.worklist.Push(pointee)
		}
	} else {
		id = stream.NullIdentifier
	}

	w.out.HintNextItem()
	w.out.WriteIdentifier(id)
}

// Stream 返回会话独占的编码后端。
func (w *Writer) Stream() stream.OutStream { return w.out }

func (w *Writer) allocIdentifier() stream.Identifier {
	id := w.nextID
	w.nextID++
	return id
}
