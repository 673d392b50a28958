package core

import "context"

// Store 是 KV 存储的领域接口。
//
// 设计原则：
//   - 定义在领域层（core），由基础设施层（store）实现
//   - 领域层不依赖基础设施层
//
// 实现：
//   - store.MemoryStore：测试/开发
//   - store.FileStore：每个 key 一个 JSON 文件
//   - store.RedisStore：生产环境
type Store interface {
	// Name 返回存储后端名称（用于日志/监控）
	Name() string

	// Get 读取单个 key 的值，不存在时返回 ErrStoreNotFound
	Get(ctx context.Context, key string) ([]byte, error)

	// Set 写入单个 key-value
	Set(ctx context.Context, key string, value []byte) error

	// Delete 删除单个 key
	Delete(ctx context.Context, key string) error

	// Keys 列出全部 key（用于运维/迁移，非热路径）
	Keys(ctx context.Context) ([]string, error)

	// Close 关闭连接/释放资源
	Close() error
}

// ProfileStore 是用户画像的持久化边界。
type ProfileStore interface {
	// Load 按用户 ID 加载画像；不存在时返回新建的零值画像而不是错误
	Load(ctx context.Context, userID string) (*UserProfile, error)

	// Save 持久化画像，失败时返回 ErrStoreIO
	Save(ctx context.Context, profile *UserProfile) error
}

// ErrStoreNotFound 表示 key 不存在
var ErrStoreNotFound = NewDomainError(ModuleStore, ErrorCodeNotFound, "store: key not found")

// IsStoreNotFound 检查错误是否为 key 不存在
func IsStoreNotFound(err error) bool {
	if domainErr := GetDomainError(err); domainErr != nil && domainErr.Module == ModuleStore {
		return domainErr.Code == ErrorCodeNotFound
	}
	return false
}
