package snapshot

import (
	"os"
	"time"

	"github.com/blang/semver/v4"

	"github.com/lk2023060901/objectstream-go/internal/json"
	"github.com/lk2023060901/objectstream-go/internal/objectstream/stream"
	"github.com/lk2023060901/objectstream-go/pkg/util/merr"
)

// FormatVersion 是当前清单格式版本。主版本号变化意味着不兼容的
// 清单布局调整。
var FormatVersion = semver.MustParse("1.0.0")

// Manifest 描述一份快照：数据文件旁的 JSON 元信息。
type Manifest struct {
	Name       string        `json:"name"`
	Version    string        `json:"version"`
	Format     stream.Format `json:"format"`
	Compressor string        `json:"compressor"`
	SizeBytes  int64         `json:"size_bytes"`
	CreatedAt  time.Time     `json:"created_at"`
}

// newManifest 生成携带当前格式版本的清单。
func newManifest(name string, format stream.Format, compressor string, size int64) *Manifest {
	return &Manifest{
		Name:       name,
		Version:    FormatVersion.String(),
		Format:     format,
		Compressor: compressor,
		SizeBytes:  size,
		CreatedAt:  time.Now().UTC(),
	}
}

// saveManifest 序列化清单到 path。
func saveManifest(path string, m *Manifest) error {
	data, err := json.MarshalIndent(m, "", "  ")
	if err != nil {
		return merr.WrapErrSnapshotManifest(path, err, "marshal manifest")
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return merr.WrapErrIoFailed(path, err)
	}
	return nil
}

// loadManifest 读取并校验清单。主版本号高于当前支持版本时拒绝。
func loadManifest(path string) (*Manifest, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, err
		}
		return nil, merr.WrapErrIoFailed(path, err)
	}
	var m Manifest
	if err := json.Unmarshal(data, &m); err != nil {
		return nil, merr.WrapErrSnapshotManifest(path, err, "unmarshal manifest")
	}
	version, err := semver.Parse(m.Version)
	if err != nil {
		return nil, merr.WrapErrSnapshotManifest(path, err, "parse version")
	}
	if version.Major > FormatVersion.Major {
		return nil, merr.WrapErrSnapshotManifest(path, nil,
			"manifest version "+m.Version+" not supported")
	}
	return &m, nil
}
