package server

import (
	"fmt"
	"net"
	"time"

	kcp "github.com/xtaci/kcp-go/v5"

	"missiledefence/pkg/protocol"
)

const (
	readTimeout  = heartbeatTimeout // 读取超时，客户端至少会回应心跳
	writeTimeout = 1 * time.Second  // 写入超时
)

type ServerListener interface {
	Accept() (net.Conn, error)
	Close() error
	Addr() net.Addr
}

func newListener(proto, addr string) (ServerListener, error) {
	switch proto {
	case "tcp":
		listener, err := net.Listen("tcp", addr)
		if err != nil {
			return nil, err
		}
		return &tcpListener{listener: listener}, nil
	case "kcp":
		listener, err := kcp.ListenWithOptions(addr, nil, 0, 0)
		if err != nil {
			return nil, err
		}
		return &kcpListener{listener: listener}, nil
	default:
		return nil, fmt.Errorf("不支持的协议: %s", proto)
	}
}

type tcpListener struct {
	listener net.Listener
}

func (l *tcpListener) Accept() (net.Conn, error) {
	conn, err := l.listener.Accept()
	if err != nil {
		return nil, err
	}
	// 开启 TCP_NODELAY，禁用 Nagle 算法以减少延迟
	if tcpConn, ok := conn.(*net.TCPConn); ok {
		tcpConn.SetNoDelay(true)
	}
	return conn, nil
}

func (l *tcpListener) Close() error {
	return l.listener.Close()
}

func (l *tcpListener) Addr() net.Addr {
	return l.listener.Addr()
}

type kcpListener struct {
	listener *kcp.Listener
}

func (l *kcpListener) Accept() (net.Conn, error) {
	session, err := l.listener.AcceptKCP()
	if err != nil {
		return nil, err
	}
	session.SetStreamMode(true)
	session.SetNoDelay(1, 10, 2, 1)
	return session, nil
}

func (l *kcpListener) Close() error {
	return l.listener.Close()
}

func (l *kcpListener) Addr() net.Addr {
	return l.listener.Addr()
}

// Transport 按帧收发的连接，屏蔽流式连接和 WebSocket 的差异。
// ReadFrame 和 WriteFrame 各自只允许一个 goroutine 调用。
type Transport interface {
	ReadFrame() ([]byte, error)
	WriteFrame(data []byte) error
	Close() error
	RemoteAddr() net.Addr
}

// streamTransport 在 TCP/KCP 字节流上使用长度前缀分帧
type streamTransport struct {
	conn net.Conn
}

func newStreamTransport(conn net.Conn) *streamTransport {
	return &streamTransport{conn: conn}
}

func (t *streamTransport) ReadFrame() ([]byte, error) {
	_ = t.conn.SetReadDeadline(time.Now().Add(readTimeout))
	return protocol.ReadFrame(t.conn, protocol.MaxInboundFrame)
}

func (t *streamTransport) WriteFrame(data []byte) error {
	_ = t.conn.SetWriteDeadline(time.Now().Add(writeTimeout))
	return protocol.WriteFrame(t.conn, data)
}

func (t *streamTransport) Close() error {
	return t.conn.Close()
}

func (t *streamTransport) RemoteAddr() net.Addr {
	return t.conn.RemoteAddr()
}
