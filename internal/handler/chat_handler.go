package handler

import (
	"context"
	"time"

	"sales-assistant-be/internal/assistant"
	"sales-assistant-be/internal/pkg/logger"
	"sales-assistant-be/internal/repository/memory"
	"sales-assistant-be/internal/service"
	internalWS "sales-assistant-be/internal/websocket"
	"sales-assistant-be/pkg/agent"
	"sales-assistant-be/pkg/events"
	"sales-assistant-be/pkg/llm"
	pktNats "sales-assistant-be/pkg/nats"
	"sales-assistant-be/pkg/retrieval"
	"sales-assistant-be/pkg/transcript"
	"sales-assistant-be/pkg/websearch"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/websocket/v2"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// ChatHandler upgrades websocket requests and runs one relay per session.
type ChatHandler struct {
	llmProvider llm.LLMProvider
	model       string
	retriever   *retrieval.Retriever
	search      *websearch.Client
	leadService service.ILeadService
	sessions    *memory.SessionRepository
	relay       *internalWS.Relay
	publisher   *pktNats.Publisher
	tokenSecret string
	logger      logger.ILogger
}

func NewChatHandler(
	llmProvider llm.LLMProvider,
	model string,
	retriever *retrieval.Retriever,
	search *websearch.Client,
	leadService service.ILeadService,
	sessions *memory.SessionRepository,
	recorder transcript.Recorder,
	publisher *pktNats.Publisher,
	tokenSecret string,
	log logger.ILogger,
) *ChatHandler {
	return &ChatHandler{
		llmProvider: llmProvider,
		model:       model,
		retriever:   retriever,
		search:      search,
		leadService: leadService,
		sessions:    sessions,
		relay:       internalWS.NewRelay(log, recorder),
		publisher:   publisher,
		tokenSecret: tokenSecret,
		logger:      log,
	}
}

// ServeWs handles websocket requests at /ws/:session_id.
func (h *ChatHandler) ServeWs(c *fiber.Ctx) error {
	sessionID := c.Params("session_id")
	if sessionID == "" {
		sessionID = uuid.NewString()
	}

	if err := h.authorize(c); err != nil {
		return err
	}

	if !websocket.IsWebSocketUpgrade(c) {
		return fiber.ErrUpgradeRequired
	}

	return websocket.New(func(conn *websocket.Conn) {
		h.serveSession(sessionID, conn)
	})(c)
}

// authorize checks the optional handshake token. When no secret is
// configured, sessions are anonymous.
func (h *ChatHandler) authorize(c *fiber.Ctx) error {
	if h.tokenSecret == "" {
		return nil
	}

	tokenStr := c.Query("token")
	if tokenStr == "" {
		authHeader := c.Get("Authorization")
		if len(authHeader) > 7 && authHeader[:7] == "Bearer " {
			tokenStr = authHeader[7:]
		}
	}
	if tokenStr == "" {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "Missing token (Query 'token' or Header 'Authorization')"})
	}

	token, err := jwt.Parse(tokenStr, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fiber.ErrUnauthorized
		}
		return []byte(h.tokenSecret), nil
	})
	if err != nil || !token.Valid {
		h.logger.Warn("ChatHandler", "Invalid token in WS handshake", map[string]interface{}{"error": err})
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "Invalid token"})
	}
	return nil
}

func (h *ChatHandler) serveSession(sessionID string, conn *websocket.Conn) {
	h.logger.Info("ChatHandler", "Starting chat session", map[string]interface{}{"session_id": sessionID})

	h.sessions.Save(&memory.SessionRecord{ID: sessionID, ConnectedAt: time.Now()})
	h.publishEvent(events.NewSessionStarted(sessionID))

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	cfg := assistant.New(sessionID, assistant.Deps{
		Retriever: h.retriever,
		Search:    h.search,
		Leads:     h.leadService,
		Model:     h.model,
	})
	runner := agent.NewRunner(h.llmProvider, cfg, h.logger)
	session := runner.RunLive(ctx, sessionID)

	err := h.relay.Run(ctx, sessionID, conn, session)

	session.Close()
	h.sessions.Delete(sessionID)

	reason := "disconnect"
	if err != nil {
		reason = err.Error()
		h.logger.Error("ChatHandler", "Chat session ended with error", map[string]interface{}{
			"session_id": sessionID,
			"error":      err.Error(),
		})
	}
	h.publishEvent(events.NewSessionEnded(sessionID, reason))

	h.logger.Info("ChatHandler", "Chat session ended", map[string]interface{}{"session_id": sessionID})
}

func (h *ChatHandler) publishEvent(evt events.Event) {
	if h.publisher == nil {
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := h.publisher.Publish(ctx, evt); err != nil {
		h.logger.Warn("ChatHandler", "Failed to publish session event", map[string]interface{}{
			"event": evt.EventType(),
			"error": err.Error(),
		})
	}
}
