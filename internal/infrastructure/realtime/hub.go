// Package realtime difunde las actividades confirmadas a los clientes conectados
// por websocket (/ws/activities).
package realtime

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	"github.com/gofiber/contrib/websocket"

	"github.com/jhoicas/Supermercado-api/internal/application/activity"
	"github.com/jhoicas/Supermercado-api/internal/application/checkout"
	"github.com/jhoicas/Supermercado-api/internal/application/dto"
	"github.com/jhoicas/Supermercado-api/internal/domain/entity"
	"github.com/jhoicas/Supermercado-api/pkg/logger"
)

var _ checkout.ActivityPublisher = (*Hub)(nil)

const (
	// writeWait plazo para escribir un mensaje; un cliente que no lee se desconecta.
	writeWait = 5 * time.Second
	// sendBuffer lotes pendientes por cliente antes de darlo por lento.
	sendBuffer = 16
)

// Client destino de los mensajes. *websocket.Conn lo implementa.
type Client interface {
	WriteMessage(messageType int, data []byte) error
	SetWriteDeadline(t time.Time) error
	Close() error
}

// Event mensaje enviado a los clientes.
type Event struct {
	Type       string                 `json:"type"` // siempre "activities"
	Activities []dto.ActivityResponse `json:"activities"`
}

// peer cola de salida de un cliente, vaciada por su propia goroutine.
type peer struct {
	send chan []byte
}

// Hub registro de clientes y cola de difusión. Publish nunca bloquea la caja:
// si la cola está llena el lote se descarta y se registra un warning. Cada cliente
// escribe desde su goroutine, así uno lento no frena al resto.
type Hub struct {
	register   chan Client
	unregister chan Client
	broadcast  chan []byte
	done       chan struct{}
	log        *logger.Logger

	mu      sync.Mutex
	clients map[Client]*peer
}

// NewHub crea el hub. Llamar Run en una goroutine.
func NewHub(log *logger.Logger) *Hub {
	return &Hub{
		register:   make(chan Client),
		unregister: make(chan Client),
		broadcast:  make(chan []byte, 64),
		done:       make(chan struct{}),
		log:        log,
		clients:    make(map[Client]*peer),
	}
}

// Run atiende registros y difusiones hasta que ctx termina; al salir cierra los clientes.
func (h *Hub) Run(ctx context.Context) {
	defer close(h.done)
	for {
		select {
		case <-ctx.Done():
			h.mu.Lock()
			for c := range h.clients {
				h.removeLocked(c)
			}
			h.mu.Unlock()
			return

		case c := <-h.register:
			p := &peer{send: make(chan []byte, sendBuffer)}
			h.mu.Lock()
			h.clients[c] = p
			n := len(h.clients)
			h.mu.Unlock()
			go h.writeLoop(c, p)
			h.log.Debug().Int("clients", n).Msg("ws: cliente conectado")

		case c := <-h.unregister:
			h.mu.Lock()
			h.removeLocked(c)
			h.mu.Unlock()

		case msg := <-h.broadcast:
			h.mu.Lock()
			for c, p := range h.clients {
				select {
				case p.send <- msg:
				default:
					h.log.Warn().Msg("ws: cliente lento, desconectado")
					h.removeLocked(c)
				}
			}
			h.mu.Unlock()
		}
	}
}

// removeLocked requiere h.mu.
func (h *Hub) removeLocked(c Client) {
	p, ok := h.clients[c]
	if !ok {
		return
	}
	delete(h.clients, c)
	close(p.send)
	_ = c.Close()
}

// writeLoop escribe con plazo; ante un error cierra y pide la baja al hub.
func (h *Hub) writeLoop(c Client, p *peer) {
	for msg := range p.send {
		_ = c.SetWriteDeadline(time.Now().Add(writeWait))
		if err := c.WriteMessage(websocket.TextMessage, msg); err != nil {
			h.log.Debug().Err(err).Msg("ws: cliente desconectado al escribir")
			_ = c.Close()
			h.Unregister(c)
			return
		}
	}
}

// Register agrega un cliente. Si el hub ya se detuvo, cierra el cliente.
func (h *Hub) Register(c Client) {
	select {
	case h.register <- c:
	case <-h.done:
		_ = c.Close()
	}
}

// Unregister quita y cierra un cliente.
func (h *Hub) Unregister(c Client) {
	select {
	case h.unregister <- c:
	case <-h.done:
	}
}

// Clients número de clientes conectados.
func (h *Hub) Clients() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.clients)
}

// Publish implementa checkout.ActivityPublisher (y los de inventario y catálogo).
func (h *Hub) Publish(activities []*entity.Activity) {
	if len(activities) == 0 {
		return
	}
	ev := Event{Type: "activities", Activities: make([]dto.ActivityResponse, 0, len(activities))}
	for _, a := range activities {
		ev.Activities = append(ev.Activities, activity.ToActivityResponse(a))
	}
	msg, err := json.Marshal(ev)
	if err != nil {
		h.log.Error().Err(err).Msg("ws: serializar actividades")
		return
	}
	select {
	case h.broadcast <- msg:
	default:
		h.log.Warn().Int("activities", len(activities)).Msg("ws: cola llena, lote descartado")
	}
}

// Handler handler de Fiber para la ruta websocket. Los mensajes entrantes se ignoran;
// leer mantiene viva la conexión y detecta el cierre.
func (h *Hub) Handler() func(*websocket.Conn) {
	return func(c *websocket.Conn) {
		h.Register(c)
		defer h.Unregister(c)
		for {
			if _, _, err := c.ReadMessage(); err != nil {
				return
			}
		}
	}
}
