package handlers

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/andresuchdata/reorder-dashboard/internal/dashboard"
	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"github.com/rs/zerolog/log"
)

const (
	writeWait  = 10 * time.Second
	pongWait   = 60 * time.Second
	pingPeriod = 30 * time.Second
	sendBuffer = 16
)

// StateStream pushes the current State to websocket clients on connect and
// again after every dashboard transition. Slow clients drop intermediate
// states but always receive the latest one.
type StateStream struct {
	dashboard *dashboard.Controller
	upgrader  websocket.Upgrader
}

func NewStateStream(d *dashboard.Controller, checkOrigin func(r *http.Request) bool) *StateStream {
	return &StateStream{
		dashboard: d,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin:     checkOrigin,
		},
	}
}

func (s *StateStream) Serve(c *gin.Context) {
	conn, err := s.upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		log.Warn().Err(err).Msg("failed to upgrade websocket connection")
		return
	}

	send := make(chan dashboard.State, sendBuffer)
	unsubscribe := s.dashboard.Watch(func(state dashboard.State) {
		offer(send, state)
	})

	done := make(chan struct{})
	go s.writePump(conn, send, done)
	s.readPump(conn)

	unsubscribe()
	close(done)
}

// offer queues state without blocking. When the client is behind, the
// oldest queued state is dropped so the newest one always gets through.
func offer(send chan dashboard.State, state dashboard.State) {
	for {
		select {
		case send <- state:
			return
		default:
		}
		select {
		case <-send:
			log.Debug().Msg("websocket client is behind, dropping state")
		default:
		}
	}
}

// readPump only watches for close frames and pongs.
func (s *StateStream) readPump(conn *websocket.Conn) {
	conn.SetReadLimit(4096)
	_ = conn.SetReadDeadline(time.Now().Add(pongWait))
	conn.SetPongHandler(func(string) error {
		return conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				log.Debug().Err(err).Msg("websocket closed")
			}
			return
		}
	}
}

func (s *StateStream) writePump(conn *websocket.Conn, send <-chan dashboard.State, done <-chan struct{}) {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		conn.Close()
	}()

	for {
		select {
		case state := <-send:
			data, err := json.Marshal(state)
			if err != nil {
				log.Error().Err(err).Msg("failed to encode dashboard state")
				continue
			}
			_ = conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := conn.WriteMessage(websocket.TextMessage, data); err != nil {
				return
			}
		case <-ticker.C:
			_ = conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		case <-done:
			_ = conn.SetWriteDeadline(time.Now().Add(writeWait))
			_ = conn.WriteMessage(websocket.CloseMessage, []byte{})
			return
		}
	}
}
