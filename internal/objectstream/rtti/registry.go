package rtti

import (
	"sync"

	"github.com/lk2023060901/objectstream-go/pkg/util/merr"
)

// Registry 按类名索引描述符，供需要以名字反查类的调用方使用。
// 并发安全。
type Registry struct {
	mu    sync.RWMutex
	types map[string]*Type
}

// NewRegistry 创建空注册表。
func NewRegistry() *Registry {
	return &Registry{types: make(map[string]*Type)}
}

// Register 注册描述符，同名重复注册被忽略并返回已存在的版本。
func (r *Registry) Register(t *Type) *Type {
	r.mu.Lock()
	defer r.mu.Unlock()
	if existing, ok := r.types[t.Name()]; ok {
		return existing
	}
	r.types[t.Name()] = t
	return t
}

// Lookup 按名字取描述符。
func (r *Registry) Lookup(name string) (*Type, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	t, ok := r.types[name]
	if !ok {
		return nil, merr.WrapErrTypeNotRegistered(name)
	}
	return t, nil
}

// Names 返回已注册的类名。
func (r *Registry) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	names := make([]string, 0, len(r.types))
	for name := range r.types {
		names = append(names, name)
	}
	return names
}
