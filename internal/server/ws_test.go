package server

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"

	"missiledefence/pkg/protocol"
)

func dialWS(t *testing.T, srv *GameServer, query string) *websocket.Conn {
	t.Helper()
	ts := httptest.NewServer(srv.wsHandler())
	t.Cleanup(ts.Close)

	url := "ws" + strings.TrimPrefix(ts.URL, "http") + "/ws" + query
	conn, resp, err := websocket.DefaultDialer.Dial(url, nil)
	if err != nil {
		status := 0
		if resp != nil {
			status = resp.StatusCode
		}
		t.Fatalf("dial %s: %v (status %d)", url, err, status)
	}
	t.Cleanup(func() { conn.Close() })
	return conn
}

func readWS(t *testing.T, conn *websocket.Conn, codec protocol.Codec, want protocol.MessageType, msg protocol.Message) {
	t.Helper()
	_ = conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	for {
		_, data, err := conn.ReadMessage()
		if err != nil {
			t.Fatalf("waiting for %s: %v", want, err)
		}
		pkt, err := codec.Decode(data)
		if err != nil {
			t.Fatalf("decode: %v", err)
		}
		if pkt.Type != want {
			continue
		}
		if err := codec.Parse(pkt, want, msg); err != nil {
			t.Fatalf("parse %s: %v", want, err)
		}
		return
	}
}

func TestWebSocketMsgpackSession(t *testing.T) {
	srv := newTestServer(t, testConfig())
	conn := dialWS(t, srv, "?codec=msgpack")
	codec := protocol.MsgpackCodec{}

	hello, err := codec.Encode(protocol.MessageTypeHello, &protocol.Hello{Name: "viewer"})
	if err != nil {
		t.Fatalf("encode hello: %v", err)
	}
	if err := conn.WriteMessage(websocket.BinaryMessage, hello); err != nil {
		t.Fatalf("write: %v", err)
	}

	var w protocol.Welcome
	readWS(t, conn, codec, protocol.MessageTypeWelcome, &w)
	if w.SessionID == "" || w.Token == "" {
		t.Fatalf("bad welcome %+v", w)
	}

	var snap protocol.Snapshot
	readWS(t, conn, codec, protocol.MessageTypeSnapshot, &snap)
	if len(snap.Terrain) == 0 || snap.Width != w.Width {
		t.Fatalf("first websocket snapshot should be a keyframe: %d bytes, width %d", len(snap.Terrain), snap.Width)
	}
}

func TestWebSocketDefaultsToProtobuf(t *testing.T) {
	srv := newTestServer(t, testConfig())
	conn := dialWS(t, srv, "")

	if err := conn.WriteMessage(websocket.BinaryMessage, protocol.MarshalPacket(protocol.NewPingPacket(5))); err != nil {
		t.Fatalf("write: %v", err)
	}
	var pong protocol.Pong
	readWS(t, conn, protocol.ProtoCodec{}, protocol.MessageTypePong, &pong)
	if pong.ClientTime != 5 {
		t.Fatalf("pong: %+v", pong)
	}
}

func TestWebSocketUnknownCodec(t *testing.T) {
	srv := newTestServer(t, testConfig())
	ts := httptest.NewServer(srv.wsHandler())
	defer ts.Close()

	url := "ws" + strings.TrimPrefix(ts.URL, "http") + "/ws?codec=xml"
	_, resp, err := websocket.DefaultDialer.Dial(url, nil)
	if err == nil {
		t.Fatalf("unknown codec should be refused")
	}
	if resp == nil || resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("want 400, got %v", resp)
	}
}

func TestHealthz(t *testing.T) {
	srv := newTestServer(t, testConfig())
	ts := httptest.NewServer(srv.wsHandler())
	defer ts.Close()

	resp, err := http.Get(ts.URL + "/healthz")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status %d", resp.StatusCode)
	}
}
