// Package snapshot 提供对象图快照的原子落盘：一次会话的输出先写入
// 同目录临时文件，成功后经 fsync 加 rename 对外可见，失败时不留
// 半成品。数据文件旁有 JSON 清单记录格式与版本。
package snapshot

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/cenkalti/backoff/v4"
	"go.uber.org/atomic"
	"go.uber.org/zap"

	"github.com/lk2023060901/objectstream-go/internal/objectstream/rtti"
	"github.com/lk2023060901/objectstream-go/internal/objectstream/stream"
	"github.com/lk2023060901/objectstream-go/internal/objectstream/writer"
	"github.com/lk2023060901/objectstream-go/pkg/log"
	"github.com/lk2023060901/objectstream-go/pkg/metrics"
	"github.com/lk2023060901/objectstream-go/pkg/util/merr"
)

const (
	dataSuffix     = ".snap"
	manifestSuffix = ".json"
	lockSuffix     = ".lock"

	lockRetryInitialInterval = 20 * time.Millisecond
	lockRetryMaxElapsed      = 2 * time.Second
)

// Store 管理一个目录下的快照。同名快照的并发保存由锁文件串行化，
// 不同名快照可并发保存。
type Store struct {
	dir        string
	format     stream.Format
	compressor Compressor
	overwrite  bool
	closed     *atomic.Bool
}

// Option 调整 Store 行为。
type Option func(*Store)

// WithFormat 指定编码格式，默认二进制。
func WithFormat(format stream.Format) Option {
	return func(s *Store) { s.format = format }
}

// WithCompressor 指定压缩器，默认不压缩。
func WithCompressor(c Compressor) Option {
	return func(s *Store) { s.compressor = c }
}

// WithOverwrite 允许覆盖同名快照，默认存在即报错。
func WithOverwrite() Option {
	return func(s *Store) { s.overwrite = true }
}

// NewStore 打开（必要时创建）快照目录。
func NewStore(dir string, opts ...Option) (*Store, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, merr.WrapErrIoFailed(dir, err)
	}
	s := &Store{
		dir:        dir,
		format:     stream.FormatBinary,
		compressor: NopCompressor(),
		closed:     atomic.NewBool(false),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s, nil
}

// Save 序列化 root 可达的对象图并原子落盘为名为 name 的快照。
// 会话任一环节失败时临时文件被清除，既有同名快照保持不变。
func (s *Store) Save(ctx context.Context, name string, root any, rootType *rtti.Type) error {
	start := time.Now()
	err := s.save(ctx, name, root, rootType)

	status := metrics.StatusSuccess
	if err != nil {
		status = metrics.StatusFault
	}
	metrics.SnapshotSaveTotal.WithLabelValues(status).Inc()
	metrics.SnapshotSaveDuration.Observe(float64(time.Since(start).Milliseconds()))
	return err
}

func (s *Store) save(ctx context.Context, name string, root any, rootType *rtti.Type) error {
	if s.closed.Load() {
		return merr.ErrSnapshotStoreClosed
	}
	if err := validateName(name); err != nil {
		return err
	}

	dataPath := filepath.Join(s.dir, name+dataSuffix)
	if !s.overwrite {
		if _, err := os.Stat(dataPath); err == nil {
			return merr.WrapErrSnapshotExists(name)
		}
	}

	unlock, err := s.acquireLock(ctx, name)
	if err != nil {
		return err
	}
	defer unlock()

	tmp, err := os.CreateTemp(s.dir, name+".tmp-*")
	if err != nil {
		return merr.WrapErrIoFailed(s.dir, err)
	}
	tmpPath := tmp.Name()
	defer func() {
		tmp.Close()
		os.Remove(tmpPath)
	}()

	compressed, err := s.compressor.WrapWriter(tmp)
	if err != nil {
		return err
	}
	out, err := stream.NewOutStream(s.format, compressed)
	if err != nil {
		return err
	}

	if err := writer.New(out).Write(ctx, root, rootType); err != nil {
		compressed.Close()
		return err
	}
	if err := compressed.Close(); err != nil {
		return merr.WrapErrIoFailedReason(err.Error(), "flush compressor")
	}
	if err := tmp.Sync(); err != nil {
		return merr.WrapErrIoFailed(tmpPath, err)
	}
	info, err := tmp.Stat()
	if err != nil {
		return merr.WrapErrIoFailed(tmpPath, err)
	}
	if err := tmp.Close(); err != nil {
		return merr.WrapErrIoFailed(tmpPath, err)
	}

	if err := os.Rename(tmpPath, dataPath); err != nil {
		return merr.WrapErrIoFailed(dataPath, err)
	}
	metrics.SessionOutputBytes.WithLabelValues(string(s.format)).Observe(float64(info.Size()))

	manifestPath := filepath.Join(s.dir, name+manifestSuffix)
	if err := saveManifest(manifestPath,
		newManifest(name, s.format, s.compressor.Name(), info.Size())); err != nil {
		return err
	}

	log.Ctx(ctx).Info("snapshot saved",
		zap.String("name", name),
		zap.String("format", string(s.format)),
		zap.Int64("bytes", info.Size()))
	return nil
}

// Manifest 返回名为 name 的快照清单。
func (s *Store) Manifest(name string) (*Manifest, error) {
	if s.closed.Load() {
		return nil, merr.ErrSnapshotStoreClosed
	}
	if err := validateName(name); err != nil {
		return nil, err
	}
	m, err := loadManifest(filepath.Join(s.dir, name+manifestSuffix))
	if os.IsNotExist(err) {
		return nil, merr.WrapErrSnapshotNotFound(name)
	}
	return m, err
}

// List 返回目录下全部快照名。
func (s *Store) List() ([]string, error) {
	if s.closed.Load() {
		return nil, merr.ErrSnapshotStoreClosed
	}
	entries, err := os.ReadDir(s.dir)
	if err != nil {
		return nil, merr.WrapErrIoFailed(s.dir, err)
	}
	var names []string
	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), dataSuffix) {
			continue
		}
		names = append(names, strings.TrimSuffix(entry.Name(), dataSuffix))
	}
	return names, nil
}

// Remove 删除快照的数据文件与清单。快照不存在时报错。
func (s *Store) Remove(name string) error {
	if s.closed.Load() {
		return merr.ErrSnapshotStoreClosed
	}
	if err := validateName(name); err != nil {
		return err
	}
	dataPath := filepath.Join(s.dir, name+dataSuffix)
	if err := os.Remove(dataPath); err != nil {
		if os.IsNotExist(err) {
			return merr.WrapErrSnapshotNotFound(name)
		}
		return merr.WrapErrIoFailed(dataPath, err)
	}
	// 清单缺失不视为错误
	os.Remove(filepath.Join(s.dir, name+manifestSuffix))
	return nil
}

// Close 关闭 Store，之后所有操作报 ErrSnapshotStoreClosed。
func (s *Store) Close() {
	s.closed.Store(true)
}

// acquireLock 以 O_EXCL 创建锁文件，被占用时按指数退避重试，
// 超时后报可重试的 ErrSnapshotLockHeld。
func (s *Store) acquireLock(ctx context.Context, name string) (func(), error) {
	lockPath := filepath.Join(s.dir, name+lockSuffix)

	policy := backoff.NewExponentialBackOff()
	policy.InitialInterval = lockRetryInitialInterval
	policy.MaxElapsedTime = lockRetryMaxElapsed

	err := backoff.Retry(func() error {
		f, err := os.OpenFile(lockPath, os.O_CREATE|os.O_EXCL|os.O_WRONLY, 0o644)
		if err != nil {
			if os.IsExist(err) {
				return merr.WrapErrSnapshotLockHeld(lockPath)
			}
			return backoff.Permanent(merr.WrapErrIoFailed(lockPath, err))
		}
		return f.Close()
	}, backoff.WithContext(policy, ctx))
	if err != nil {
		return nil, err
	}
	return func() { os.Remove(lockPath) }, nil
}

func validateName(name string) error {
	if name == "" {
		return merr.WrapErrParameterMissing("snapshot name")
	}
	if strings.ContainsAny(name, `/\`) || name != filepath.Base(name) {
		return merr.WrapErrParameterInvalidMsg(
			fmt.Sprintf("snapshot name %q must not contain path separators", name))
	}
	return nil
}
