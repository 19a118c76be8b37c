package app

import (
	"encoding/json"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/aibianji/sticky-notes-app/global"
	"github.com/aibianji/sticky-notes-app/pkg/code"
	"golang.org/x/sync/singleflight"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	"github.com/lxzan/gws"
	"go.uber.org/zap"
)

type LogType string

const (
	WebSocketServerPingInterval         = 25
	WebSocketServerPingWait             = 40
	LogInfo                     LogType = "info"
	LogError                    LogType = "error"
	LogWarn                     LogType = "warn"
)

func log(t LogType, msg string, fields ...zap.Field) {
	if global.Logger == nil {
		return
	}
	if t == "error" {
		global.Logger.Error(msg, fields...)
	} else if t == "warn" {
		global.Logger.Warn(msg, fields...)
	} else if t == "info" {
		global.Logger.Info(msg, fields...)
	}
}

// WebSocketMessage is one frame of the "action|payload" protocol
// WebSocketMessage 为 "action|payload" 协议的单帧
type WebSocketMessage struct {
	Type string `json:"type"` // 操作类型，例如 "NoteEdit", "NoteFlush", "SearchNotes"
	Data []byte `json:"data"` // 载荷数据
}

type WebsocketServerConfig struct {
	GWSOption    gws.ServerOption
	PingInterval time.Duration
	PingWait     time.Duration
}

type ResResult struct {
	Code   int         `json:"code"`
	Status bool        `json:"status"`
	Msg    string      `json:"msg"`
	Data   interface{} `json:"data,omitempty"`
}

type ResDetailsResult struct {
	Code    int         `json:"code"`
	Status  bool        `json:"status"`
	Msg     string      `json:"msg"`
	Data    interface{} `json:"data,omitempty"`
	Details string      `json:"details,omitempty"`
}

// WebsocketClient stores one WebSocket connection and its related state
// WebsocketClient 存储每个 WebSocket 连接及其相关状态
type WebsocketClient struct {
	conn   *gws.Conn
	done   chan struct{}
	server *WebsocketServer
	Ctx    *gin.Context
	SF     *singleflight.Group // 用于合并并发的重复请求
}

// BindAndValid unmarshals payload and validates it with the global validator
// BindAndValid 反序列化载荷并使用全局验证器进行校验
func (c *WebsocketClient) BindAndValid(data []byte, obj any) (bool, ValidErrors) {
	var errs ValidErrors

	if err := json.Unmarshal(data, obj); err != nil {
		errs = append(errs, &ValidError{
			Key:     "body",
			Message: "Invalid message format",
		})
		return false, errs
	}

	if err := global.Validator.Struct(obj); err != nil {
		if validationErrors, ok := err.(validator.ValidationErrors); ok {
			for _, validationErr := range validationErrors {
				errs = append(errs, &ValidError{
					Key:     validationErr.Field(),
					Message: validationErr.Error(),
				})
			}
		}
		return false, errs
	}
	return true, nil
}

// PingLoop sends a ping frame periodically
// PingLoop 定期发送 Ping 消息
func (c *WebsocketClient) PingLoop(pingInterval time.Duration) {
	ticker := time.NewTicker(pingInterval * time.Second)
	defer ticker.Stop()
	for {
		select {
		case <-c.done:
			log(LogInfo, "WebsocketServer Client Close Ping")
			return
		case <-ticker.C:
			if c.conn == nil {
				return
			}
			if err := c.conn.WritePing(nil); err != nil {
				log(LogError, "WebsocketServer Client Ping err", zap.Error(err))
				return
			}
		}
	}
}

// ToResponse 将结果转换为 JSON 格式并发送给客户端
func (c *WebsocketClient) ToResponse(codeObj *code.Code, action ...string) {
	var actionType string
	if len(action) > 0 {
		actionType = action[0]
	}
	if codeObj.HaveDetails() {
		details := strings.Join(codeObj.Details(), ",")
		c.send(actionType, ResDetailsResult{
			Code:    codeObj.Code(),
			Status:  codeObj.Status(),
			Msg:     codeObj.Lang.GetMessage(),
			Data:    codeObj.Data(),
			Details: details,
		}, false, false)
	} else {
		c.send(actionType, ResResult{
			Code:   codeObj.Code(),
			Status: codeObj.Status(),
			Msg:    codeObj.Lang.GetMessage(),
			Data:   codeObj.Data(),
		}, false, false)
	}
}

// BroadcastResponse 将结果转换为 JSON 格式并广播给所有客户端
// isExcludeSelf 为 true 时不向自己发送
func (c *WebsocketClient) BroadcastResponse(codeObj *code.Code, isExcludeSelf bool, action ...string) {
	var actionType string
	if len(action) > 0 {
		actionType = action[0]
	}
	c.send(actionType, ResResult{
		Code:   codeObj.Code(),
		Status: codeObj.Status(),
		Msg:    codeObj.Lang.GetMessage(),
		Data:   codeObj.Data(),
	}, true, isExcludeSelf)
}

func (c *WebsocketClient) send(actionType string, content any, isBroadcast bool, isExcludeSelf bool) {
	responseBytes, _ := json.Marshal(content)
	if actionType != "" {
		responseBytes = []byte(fmt.Sprintf(`%s|%s`, actionType, string(responseBytes)))
	}
	if isBroadcast {
		c.server.broadcast(responseBytes, c.conn, isExcludeSelf)
	} else {
		c.message(responseBytes)
	}
}

func (c *WebsocketClient) message(payload []byte) {
	c.conn.WriteMessage(gws.OpcodeText, payload)
}

// ------------------------------------> WebsocketServer

type ConnStorage = map[*gws.Conn]*WebsocketClient

// WebsocketServer dispatches "action|payload" frames to registered handlers
// and fans server pushes out to every connected shell
// WebsocketServer 将 "action|payload" 帧分发给注册的处理器，
// 并将服务端推送广播给所有已连接的外壳进程
type WebsocketServer struct {
	handlers map[string]func(*WebsocketClient, *WebSocketMessage)
	clients  ConnStorage
	mu       sync.Mutex
	up       *gws.Upgrader
	config   *WebsocketServerConfig
}

func NewWebsocketServer(c WebsocketServerConfig) *WebsocketServer {
	if c.PingInterval == 0 {
		c.PingInterval = WebSocketServerPingInterval
	}
	if c.PingWait == 0 {
		c.PingWait = WebSocketServerPingWait
	}
	wss := WebsocketServer{
		handlers: make(map[string]func(*WebsocketClient, *WebSocketMessage)),
		clients:  make(ConnStorage),
		config:   &c,
	}
	wss.up = gws.NewUpgrader(&wss, &c.GWSOption)
	return &wss
}

func (w *WebsocketServer) Run() gin.HandlerFunc {
	return func(c *gin.Context) {
		socket, err := w.up.Upgrade(c.Writer, c.Request)
		if err != nil {
			log(LogError, "WebsocketServer Start err", zap.Error(err))
			return
		}
		client := &WebsocketClient{conn: socket, done: make(chan struct{}), server: w, Ctx: c, SF: new(singleflight.Group)}
		w.AddClient(client)
		log(LogInfo, "WebsocketServer Start", zap.String("type", "ReadLoop"))
		go client.PingLoop(w.config.PingInterval)
		go socket.ReadLoop()
	}
}

// Use registers a handler for an action type
// Use 为某个操作类型注册处理器
func (w *WebsocketServer) Use(action string, handler func(*WebsocketClient, *WebSocketMessage)) {
	w.handlers[action] = handler
}

// Push broadcasts a server-initiated event to every connected client
// Push 向所有已连接客户端广播服务端事件
func (w *WebsocketServer) Push(action string, data any) {
	payload, err := json.Marshal(ResResult{
		Code:   code.Success.Code(),
		Status: true,
		Msg:    code.Success.Msg(),
		Data:   data,
	})
	if err != nil {
		log(LogError, "WebsocketServer Push marshal err", zap.Error(err))
		return
	}
	if action != "" {
		payload = []byte(fmt.Sprintf(`%s|%s`, action, string(payload)))
	}
	w.broadcast(payload, nil, false)
}

func (w *WebsocketServer) broadcast(payload []byte, self *gws.Conn, isExcludeSelf bool) {
	b := gws.NewBroadcaster(gws.OpcodeText, payload)
	defer b.Close()

	w.mu.Lock()
	conns := make([]*gws.Conn, 0, len(w.clients))
	for conn := range w.clients {
		if isExcludeSelf && conn == self {
			continue
		}
		conns = append(conns, conn)
	}
	w.mu.Unlock()

	for _, conn := range conns {
		_ = b.Broadcast(conn)
	}
}

func (w *WebsocketServer) GetClient(conn *gws.Conn) *WebsocketClient {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.clients[conn]
}

func (w *WebsocketServer) AddClient(c *WebsocketClient) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.clients[c.conn] = c
}

func (w *WebsocketServer) RemoveClient(conn *gws.Conn) {
	w.mu.Lock()
	defer w.mu.Unlock()
	delete(w.clients, conn)
}

// ClientCount returns the number of live connections
// ClientCount 返回存活连接数
func (w *WebsocketServer) ClientCount() int {
	w.mu.Lock()
	defer w.mu.Unlock()
	return len(w.clients)
}

func (w *WebsocketServer) OnOpen(conn *gws.Conn) {
	log(LogInfo, "WebsocketServer Client Connect", zap.Int("Count", w.ClientCount()))
	_ = conn.SetDeadline(time.Now().Add(w.config.PingWait * time.Second))
}

func (w *WebsocketServer) OnClose(conn *gws.Conn, err error) {
	c := w.GetClient(conn)
	w.RemoveClient(conn)
	if c != nil {
		close(c.done)
	}
	log(LogInfo, "WebsocketServer Client Leave", zap.Int("Count", w.ClientCount()))
}

func (w *WebsocketServer) OnPing(socket *gws.Conn, payload []byte) {
	_ = socket.SetDeadline(time.Now().Add(w.config.PingWait * time.Second))
	_ = socket.WritePong(nil)
}

func (w *WebsocketServer) OnPong(socket *gws.Conn, payload []byte) {
	_ = socket.SetDeadline(time.Now().Add(w.config.PingWait * time.Second))
}

func (w *WebsocketServer) OnMessage(conn *gws.Conn, message *gws.Message) {
	defer message.Close()
	if message.Opcode != gws.OpcodeText {
		return
	}
	if message.Data.String() == "close" {
		conn.WriteClose(1000, []byte("ClientClose"))
		return
	}

	c := w.GetClient(conn)
	if c == nil {
		return
	}

	messageStr := message.Data.String()
	// 使用 strings.Index 找到分隔符的位置
	index := strings.Index(messageStr, "|")

	var msg WebSocketMessage
	if index != -1 {
		msg.Type = messageStr[:index]           // 提取分隔符之前的部分
		msg.Data = []byte(messageStr[index+1:]) // 提取分隔符之后的部分
	} else {
		log(LogError, "WebsocketServer OnMessage", zap.String("type", "Illegal message type"))
		return
	}

	handler, exists := w.handlers[msg.Type]
	if exists {
		log(LogInfo, "WebsocketServer OnMessage", zap.String("Type", msg.Type))
		handler(c, &msg)
	} else {
		log(LogError, "WebsocketServer OnMessage", zap.String("msg", "Unknown message type"))
	}
}
