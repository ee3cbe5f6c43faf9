package connectionhub

import (
	pushdatastore "bpm-backend/lib/ws/push-store"
	wsmodels "bpm-backend/models/ws"
	"sync"

	"github.com/gofiber/contrib/websocket"
	log "github.com/sirupsen/logrus"
)

type Provider interface {
	AddClient(userID string, conn *websocket.Conn)
	DeleteClient(userID string)
	SendMessage(msg wsmodels.ServerMessage)
	SendClose(userID string)
	IsConnected(userID string) bool
}

var Instance Provider

func Init(store pushdatastore.Provider) {
	Instance = &impl{
		clients: map[string]clientSession{},
		store:   store,
	}
}

type impl struct {
	mu      sync.RWMutex
	clients map[string]clientSession //map[userID]
	store   pushdatastore.Provider
}

func (i *impl) DeleteClient(userID string) {
	i.mu.Lock()
	defer i.mu.Unlock()
	sess, ok := i.clients[userID]
	if !ok {
		return
	}
	delete(i.clients, userID)
	sess.stop()
}

func (i *impl) AddClient(userID string, conn *websocket.Conn) {
	i.mu.Lock()
	oldSess, ok := i.clients[userID]
	if ok {
		oldSess.stop()
	}
	i.clients[userID] = newSession(conn)
	i.mu.Unlock()
	go i.sendDelayedMessages(userID)
}

func (i *impl) SendMessage(msg wsmodels.ServerMessage) {
	i.mu.RLock()
	defer i.mu.RUnlock()
	sess, ok := i.clients[msg.ToUserID]
	if !ok {
		return
	}
	select {
	case sess.sendCh <- msg:
	default:
		log.WithField("user_id", msg.ToUserID).Warn("очередь сообщений переполнена, сообщение пропущено")
	}
}

func (i *impl) SendClose(userID string) {
	i.mu.RLock()
	defer i.mu.RUnlock()
	sess, ok := i.clients[userID]
	if ok {
		sess.stop()
	}
}

func (i *impl) IsConnected(userID string) bool {
	i.mu.RLock()
	defer i.mu.RUnlock()
	sess, ok := i.clients[userID]
	if !ok || sess.conn == nil || sess.conn.Conn == nil {
		return false
	}
	return true
}

func (i *impl) sendDelayedMessages(userID string) {
	logger := log.WithField("user_id", userID)
	list, err := i.store.List(userID)
	if err != nil {
		logger.WithError(err).Error("ошибка получения списка не отправленных событий")
		return
	}
	sendedIDs := []string{}
	for _, item := range list {
		if !i.IsConnected(userID) {
			break
		}
		msg := wsmodels.ServerMessage{
			ToUserID: userID,
			Time:     item.CreatedAt.Format("02.01.2006 15:04:05"),
			Code:     string(item.Code),
			Title:    item.Title,
			Msg:      item.Msg,
		}
		i.SendMessage(msg)
		sendedIDs = append(sendedIDs, item.ID)
	}
	if len(sendedIDs) > 0 {
		err = i.store.Delete(sendedIDs)
		if err != nil {
			logger.WithError(err).Error("ошибка удаления отправленных событий")
			return
		}
	}
}
