package snapshot

import (
	"context"

	"go.uber.org/zap"

	"github.com/lk2023060901/objectstream-go/internal/objectstream/rtti"
	"github.com/lk2023060901/objectstream-go/pkg/log"
	"github.com/lk2023060901/objectstream-go/pkg/util/conc"
	"github.com/lk2023060901/objectstream-go/pkg/util/merr"
	"github.com/lk2023060901/objectstream-go/pkg/util/retry"
)

// Item 是一次批量保存中的单个快照任务。
type Item struct {
	Name string
	Root any
	Type *rtti.Type
}

// BatchWriter 在工作池上并发保存多份快照。每个任务独享一次序列化
// 会话，会话之间不共享任何状态，锁竞争失败的任务按重试策略重提。
type BatchWriter struct {
	store    *Store
	pool     *conc.Pool[struct{}]
	attempts uint
}

// NewBatchWriter 创建批量写入器，workers 为并发上限。
func NewBatchWriter(store *Store, workers int) *BatchWriter {
	return &BatchWriter{
		store:    store,
		pool:     conc.NewPool[struct{}](workers, conc.WithPreAlloc(true)),
		attempts: 3,
	}
}

// SaveAll 提交全部任务并等待完成，返回各失败任务错误的聚合。
func (b *BatchWriter) SaveAll(ctx context.Context, items []Item) error {
	futures := make([]conc.Future[struct{}], 0, len(items))
	for i := range items {
		item := items[i]
		futures = append(futures, b.pool.Submit(func() (struct{}, error) {
			err := retry.Do(ctx, func() error {
				return b.store.Save(ctx, item.Name, item.Root, item.Type)
			}, retry.Attempts(b.attempts), retry.RetryErr(merr.IsRetryableErr))
			if err != nil {
				log.Ctx(ctx).Warn("snapshot task failed",
					zap.String("name", item.Name), zap.Error(err))
			}
			return struct{}{}, err
		}))
	}

	var errs []error
	for _, future := range futures {
		errs = append(errs, future.Err())
	}
	return merr.Combine(errs...)
}

// Release 归还工作池。
func (b *BatchWriter) Release() {
	b.pool.Release()
}
