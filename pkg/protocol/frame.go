package protocol

import (
	"encoding/binary"
	"errors"
	"fmt"
	"io"
)

const (
	// MaxInboundFrame 客户端上行帧上限
	MaxInboundFrame = 4096
	// MaxOutboundFrame 服务器下行帧上限，完整地形关键帧需要较大空间
	MaxOutboundFrame = 1 << 18

	frameHeaderSize = 4
)

// ErrFrameTooLarge 帧长度超过上限
var ErrFrameTooLarge = errors.New("protocol: frame too large")

// WriteFrame 写入 4 字节大端长度前缀和数据体，一次 Write 完成
func WriteFrame(w io.Writer, data []byte) error {
	buf := make([]byte, frameHeaderSize+len(data))
	binary.BigEndian.PutUint32(buf, uint32(len(data)))
	copy(buf[frameHeaderSize:], data)
	if _, err := w.Write(buf); err != nil {
		return fmt.Errorf("write frame: %w", err)
	}
	return nil
}

// ReadFrame 读取一个长度前缀帧。长度为 0 的帧返回空切片。
func ReadFrame(r io.Reader, limit int) ([]byte, error) {
	var header [frameHeaderSize]byte
	if _, err := io.ReadFull(r, header[:]); err != nil {
		return nil, err
	}
	length := binary.BigEndian.Uint32(header[:])
	if int64(length) > int64(limit) {
		return nil, fmt.Errorf("%w: %d bytes", ErrFrameTooLarge, length)
	}
	if length == 0 {
		return []byte{}, nil
	}
	data := make([]byte, length)
	if _, err := io.ReadFull(r, data); err != nil {
		return nil, err
	}
	return data, nil
}
