package litex

import (
	"context"
	"encoding/json"

	"github.com/gorilla/websocket"
	clog "github.com/vilterp/litex/pkg/log"
)

// connection serves one websocket. It owns one session; frames are handled in
// the order they arrive.
type connection struct {
	clientConn  *websocket.Conn
	engine      *Engine
	session     *Session
	nextFrameID int
	messages    chan *ChannelMessage
	written     chan struct{}
}

func newConnection(wsConn *websocket.Conn, engine *Engine) *connection {
	conn := &connection{
		clientConn: wsConn,
		engine:     engine,
		session:    engine.StartSession(),
		messages:   make(chan *ChannelMessage),
		written:    make(chan struct{}),
	}
	go conn.writeMessagesToSocket()
	return conn
}

func (conn *connection) Ctx() context.Context {
	return conn.session.Ctx()
}

func (conn *connection) writeMessagesToSocket() {
	defer close(conn.written)
	for msg := range conn.messages {
		writer, err := conn.clientConn.NextWriter(websocket.TextMessage)
		if err != nil {
			clog.Println(conn, "error writing to socket:", err)
			continue
		}
		if err := json.NewEncoder(writer).Encode(msg); err != nil {
			clog.Println(conn, "error writing msg to conn: encoding: ", err)
		}
		if err := writer.Close(); err != nil {
			clog.Println(conn, "error writing msg to conn: closing writer: ", err)
		}
	}
}

func (conn *connection) handleFrames() {
	clog.Println(conn, "initiated from", conn.clientConn.RemoteAddr())
	defer conn.close()
	for {
		_, message, readErr := conn.clientConn.ReadMessage()
		if readErr != nil {
			clog.Println(conn, "terminated:", readErr)
			return
		}
		frame := newChannel(string(message), conn.nextFrameID, conn)
		conn.nextFrameID++
		frame.handleFrame()
	}
}

func (conn *connection) close() {
	close(conn.messages)
	<-conn.written
	conn.engine.EndSession(conn.session)
	if err := conn.clientConn.Close(); err != nil {
		clog.Println(conn, "error closing socket:", err)
	}
}
