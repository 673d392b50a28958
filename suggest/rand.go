package suggest

import (
	"math/rand"
	"sync"
	"time"

	"github.com/rushteam/recipekit/core"
)

// lockedRand 让一个 *rand.Rand 可被多个会话并发使用。
type lockedRand struct {
	mu sync.Mutex
	r  *rand.Rand
}

var _ core.RandSource = (*lockedRand)(nil)

// NewRand 返回并发安全的随机源；seed 为 0 时以当前时间播种。
func NewRand(seed int64) core.RandSource {
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	return &lockedRand{r: rand.New(rand.NewSource(seed))}
}

func (l *lockedRand) Float64() float64 {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.r.Float64()
}
