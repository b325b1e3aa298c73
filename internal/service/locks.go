package service

import "sync"

// LearnerLocks 以学习者为并发控制单元：同一学习者的全部变更操作
// （completeRound、rotate、updateDifficulty）串行执行，不同学习者互不阻塞
type LearnerLocks struct {
	mu    sync.Mutex
	locks map[uint]*sync.Mutex
}

func NewLearnerLocks() *LearnerLocks {
	return &LearnerLocks{locks: make(map[uint]*sync.Mutex)}
}

// Lock 锁住指定学习者并返回解锁函数
func (l *LearnerLocks) Lock(learnerID uint) func() {
	l.mu.Lock()
	m, ok := l.locks[learnerID]
	if !ok {
		m = &sync.Mutex{}
		l.locks[learnerID] = m
	}
	l.mu.Unlock()

	m.Lock()
	return m.Unlock
}
