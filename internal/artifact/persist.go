package artifact

import (
	"context"
	"encoding/json"
	stderrors "errors"
	"os"
	"path/filepath"
	"sync"

	apperr "github.com/wfunc/bugg-bot/internal/errors"
	"github.com/wfunc/bugg-bot/internal/models"
	"gorm.io/gorm"
)

// Snapshot 持久化单元，Version 单调递增
type Snapshot struct {
	Entity
	Version uint64 `json:"version"`
}

// Persister 快照存储；Load 在没有快照时返回 nil, nil
type Persister interface {
	Load(ctx context.Context) (*Snapshot, error)
	Save(ctx context.Context, snap *Snapshot) error
}

// FilePersister JSON 文件存储，写临时文件后原子替换
type FilePersister struct {
	path string
}

// NewFilePersister 创建文件存储
func NewFilePersister(path string) *FilePersister {
	return &FilePersister{path: path}
}

// Load 读取快照
func (p *FilePersister) Load(ctx context.Context) (*Snapshot, error) {
	data, err := os.ReadFile(p.path)
	if err != nil {
		if stderrors.Is(err, os.ErrNotExist) {
			return nil, nil
		}
		return nil, apperr.Wrapf(err, apperr.ErrArtifactLoad, "读取 %s", p.path)
	}
	var snap Snapshot
	if err := json.Unmarshal(data, &snap); err != nil {
		return nil, apperr.Wrapf(err, apperr.ErrArtifactCorrupt, "解析 %s", p.path)
	}
	return &snap, nil
}

// Save 写入快照
func (p *FilePersister) Save(ctx context.Context, snap *Snapshot) error {
	out := Snapshot{Entity: snap.Entity.utc(), Version: snap.Version}
	data, err := json.MarshalIndent(out, "", "  ")
	if err != nil {
		return apperr.Wrap(err, apperr.ErrArtifactPersist, "序列化快照")
	}

	dir := filepath.Dir(p.path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return apperr.Wrapf(err, apperr.ErrArtifactPersist, "创建目录 %s", dir)
	}
	tmp, err := os.CreateTemp(dir, filepath.Base(p.path)+".*.tmp")
	if err != nil {
		return apperr.Wrap(err, apperr.ErrArtifactPersist, "创建临时文件")
	}
	tmpName := tmp.Name()
	defer os.Remove(tmpName)

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return apperr.Wrap(err, apperr.ErrArtifactPersist, "写入临时文件")
	}
	if err := tmp.Sync(); err != nil {
		tmp.Close()
		return apperr.Wrap(err, apperr.ErrArtifactPersist, "同步临时文件")
	}
	if err := tmp.Close(); err != nil {
		return apperr.Wrap(err, apperr.ErrArtifactPersist, "关闭临时文件")
	}
	if err := os.Rename(tmpName, p.path); err != nil {
		return apperr.Wrapf(err, apperr.ErrArtifactPersist, "替换 %s", p.path)
	}
	return nil
}

// DBPersister 数据库存储，按名称 upsert 一行
type DBPersister struct {
	db   *gorm.DB
	name string
}

// NewDBPersister 创建数据库存储
func NewDBPersister(db *gorm.DB, name string) *DBPersister {
	return &DBPersister{db: db, name: name}
}

// Load 读取快照
func (p *DBPersister) Load(ctx context.Context) (*Snapshot, error) {
	var row models.ArtifactSnapshot
	err := p.db.WithContext(ctx).Where("name = ?", p.name).First(&row).Error
	if err != nil {
		if stderrors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, apperr.Wrap(err, apperr.ErrArtifactLoad, "查询神器快照")
	}
	snap := &Snapshot{
		Entity: Entity{
			Name:         row.Name,
			Stats:        Stats{Chaos: row.Chaos, Greed: row.Greed, Shadow: row.Shadow},
			CreatedAt:    row.BornAt,
			LastModified: row.LastModified,
			LastDisturb:  row.LastDisturb,
		},
		Version: row.Version,
	}
	snap.Entity = snap.Entity.utc()
	return snap, nil
}

// Save 写入快照
func (p *DBPersister) Save(ctx context.Context, snap *Snapshot) error {
	e := snap.Entity.utc()
	row := models.ArtifactSnapshot{Name: p.name}
	err := p.db.WithContext(ctx).
		Where("name = ?", p.name).
		// 用 map 赋值，属性归零时也会写入
		Assign(map[string]interface{}{
			"chaos":         e.Stats.Chaos,
			"greed":         e.Stats.Greed,
			"shadow":        e.Stats.Shadow,
			"born_at":       e.CreatedAt,
			"last_modified": e.LastModified,
			"last_disturb":  e.LastDisturb,
			"version":       snap.Version,
		}).
		FirstOrCreate(&row).Error
	if err != nil {
		return apperr.Wrap(err, apperr.ErrArtifactPersist, "保存神器快照")
	}
	return nil
}

// MemoryPersister 内存存储（用于测试）
type MemoryPersister struct {
	mu    sync.Mutex
	snap  *Snapshot
	saves int
	err   error
}

// NewMemoryPersister 创建内存存储
func NewMemoryPersister() *MemoryPersister {
	return &MemoryPersister{}
}

// Load 读取快照
func (p *MemoryPersister) Load(ctx context.Context) (*Snapshot, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.snap == nil {
		return nil, nil
	}
	cp := Snapshot{Entity: p.snap.Entity.clone(), Version: p.snap.Version}
	return &cp, nil
}

// Save 写入快照
func (p *MemoryPersister) Save(ctx context.Context, snap *Snapshot) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.err != nil {
		return p.err
	}
	p.saves++
	p.snap = &Snapshot{Entity: snap.Entity.clone(), Version: snap.Version}
	return nil
}

// FailWith 之后的 Save 都返回 err，传 nil 恢复
func (p *MemoryPersister) FailWith(err error) {
	p.mu.Lock()
	p.err = err
	p.mu.Unlock()
}

// Saves 成功保存次数
func (p *MemoryPersister) Saves() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.saves
}
