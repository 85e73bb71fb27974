package feed

import (
	"sync"

	"github.com/UkralStul/blog-service/internal/domain"

	"github.com/google/uuid"
)

// subscriberBuffer - сколько комментариев ждут в канале медленного клиента.
const subscriberBuffer = 8

// Observer хранит каналы подписчиков на новые комментарии.
type Observer struct {
	mu sync.RWMutex
	//          map[postID] map[subscriberID] channel
	subs map[uint]map[string]chan *domain.CommentView
}

// NewObserver - конструктор наблюдателя.
func NewObserver() *Observer {
	return &Observer{
		subs: make(map[uint]map[string]chan *domain.CommentView),
	}
}

// Subscribe подписывает на комментарии поста. Вызов cancel закрывает канал;
// повторный вызов безопасен.
func (o *Observer) Subscribe(postID uint) (<-chan *domain.CommentView, func()) {
	ch := make(chan *domain.CommentView, subscriberBuffer)
	subID := uuid.NewString()

	o.mu.Lock()
	if o.subs[postID] == nil {
		o.subs[postID] = make(map[string]chan *domain.CommentView)
	}
	o.subs[postID][subID] = ch
	o.mu.Unlock()

	var once sync.Once
	cancel := func() {
		once.Do(func() {
			o.mu.Lock()
			defer o.mu.Unlock()
			if postSubs, ok := o.subs[postID]; ok {
				delete(postSubs, subID)
				if len(postSubs) == 0 {
					delete(o.subs, postID)
				}
			}
			close(ch)
		})
	}
	return ch, cancel
}

// Publish рассылает комментарий подписчикам поста и никогда не блокируется.
func (o *Observer) Publish(c *domain.CommentView) {
	o.mu.RLock()
	defer o.mu.RUnlock()

	for _, ch := range o.subs[c.PostID] {
		select {
		case ch <- c:
		default:
			// Клиент не успевает читать, пропускаем
		}
	}
}

// Subscribers возвращает число подписчиков поста.
func (o *Observer) Subscribers(postID uint) int {
	o.mu.RLock()
	defer o.mu.RUnlock()
	return len(o.subs[postID])
}
