package docstore

import (
	"math/rand/v2"
	"sync"
	"time"
)

const pushChars = "-0123456789ABCDEFGHIJKLMNOPQRSTUVWXYZ_abcdefghijklmnopqrstuvwxyz"

// pushIDs generates 20 character keys that sort by creation time, the same
// shape the Realtime Database uses: 8 characters of milliseconds followed by
// 12 random characters, incremented when two keys share a millisecond.
type pushIDs struct {
	mu       sync.Mutex
	lastTime int64
	lastRand [12]int
	now      func() time.Time
}

func newPushIDs() *pushIDs {
	return &pushIDs{now: time.Now}
}

func (p *pushIDs) next() string {
	p.mu.Lock()
	defer p.mu.Unlock()

	ms := p.now().UnixMilli()
	if ms == p.lastTime {
		i := len(p.lastRand) - 1
		for ; i >= 0 && p.lastRand[i] == len(pushChars)-1; i-- {
			p.lastRand[i] = 0
		}
		if i >= 0 {
			p.lastRand[i]++
		}
	} else {
		for i := range p.lastRand {
			p.lastRand[i] = rand.IntN(len(pushChars))
		}
		p.lastTime = ms
	}

	var id [20]byte
	for i := 7; i >= 0; i-- {
		id[i] = pushChars[ms%int64(len(pushChars))]
		ms /= int64(len(pushChars))
	}
	for i, r := range p.lastRand {
		id[8+i] = pushChars[r]
	}
	return string(id[:])
}
