// Package store 提供 core.Store 的 KV 实现（memory / file / redis），
// 以及建立在任意 KV 之上的用户画像存储 ProfileStore。
//
// 示例：
//
//	var kv core.Store = store.NewFileStore("users")
//	profiles := store.NewProfileStore(kv)
//	p, err := profiles.Load(ctx, "Tony")
package store
