package protocol

import (
	"fmt"
	"math"

	"google.golang.org/protobuf/encoding/protowire"
)

// 手写的 protobuf 编码原语。默认值（0、false、空串）不写出，与 proto3 行为一致。

func appendVarint(b []byte, num protowire.Number, v uint64) []byte {
	if v == 0 {
		return b
	}
	b = protowire.AppendTag(b, num, protowire.VarintType)
	return protowire.AppendVarint(b, v)
}

func appendInt64(b []byte, num protowire.Number, v int64) []byte {
	return appendVarint(b, num, uint64(v))
}

func appendInt32(b []byte, num protowire.Number, v int32) []byte {
	return appendVarint(b, num, uint64(int64(v)))
}

func appendBool(b []byte, num protowire.Number, v bool) []byte {
	if !v {
		return b
	}
	return appendVarint(b, num, 1)
}

func appendDouble(b []byte, num protowire.Number, v float64) []byte {
	if v == 0 {
		return b
	}
	b = protowire.AppendTag(b, num, protowire.Fixed64Type)
	return protowire.AppendFixed64(b, math.Float64bits(v))
}

func appendBytes(b []byte, num protowire.Number, v []byte) []byte {
	if len(v) == 0 {
		return b
	}
	b = protowire.AppendTag(b, num, protowire.BytesType)
	return protowire.AppendBytes(b, v)
}

func appendString(b []byte, num protowire.Number, v string) []byte {
	if v == "" {
		return b
	}
	b = protowire.AppendTag(b, num, protowire.BytesType)
	return protowire.AppendString(b, v)
}

// appendMessage 写出嵌套消息，即使为空也写出（repeated 字段需要保留元素个数）
func appendMessage(b []byte, num protowire.Number, msg []byte) []byte {
	b = protowire.AppendTag(b, num, protowire.BytesType)
	return protowire.AppendBytes(b, msg)
}

// field 解码出的一个字段
type field struct {
	num   protowire.Number
	typ   protowire.Type
	u64   uint64 // varint / fixed64 / fixed32
	bytes []byte // length-delimited
}

func (f field) boolean() bool   { return f.u64 != 0 }
func (f field) int64() int64    { return int64(f.u64) }
func (f field) int32() int32    { return int32(int64(f.u64)) }
func (f field) uint32() uint32  { return uint32(f.u64) }
func (f field) double() float64 { return math.Float64frombits(f.u64) }
func (f field) str() string     { return string(f.bytes) }
func (f field) clone() []byte   { return append([]byte(nil), f.bytes...) }

// rangeFields 依次解码每个字段并交给 fn。
// 组类型等不认识的线格式被跳过，未知字段号由 fn 自行忽略。
func rangeFields(b []byte, fn func(f field) error) error {
	for len(b) > 0 {
		num, typ, n := protowire.ConsumeTag(b)
		if n < 0 {
			return fmt.Errorf("protocol: bad tag: %w", protowire.ParseError(n))
		}
		b = b[n:]

		f := field{num: num, typ: typ}
		switch typ {
		case protowire.VarintType:
			f.u64, n = protowire.ConsumeVarint(b)
		case protowire.Fixed64Type:
			f.u64, n = protowire.ConsumeFixed64(b)
		case protowire.Fixed32Type:
			var v uint32
			v, n = protowire.ConsumeFixed32(b)
			f.u64 = uint64(v)
		case protowire.BytesType:
			f.bytes, n = protowire.ConsumeBytes(b)
		default:
			n = protowire.ConsumeFieldValue(num, typ, b)
			if n < 0 {
				return fmt.Errorf("protocol: field %d: %w", num, protowire.ParseError(n))
			}
			b = b[n:]
			continue
		}
		if n < 0 {
			return fmt.Errorf("protocol: field %d: %w", num, protowire.ParseError(n))
		}
		b = b[n:]

		if err := fn(f); err != nil {
			return err
		}
	}
	return nil
}

// PackBits 把占据网格按位打包（每字节 8 格，低位在前）
func PackBits(cells []bool) []byte {
	out := make([]byte, (len(cells)+7)/8)
	for i, c := range cells {
		if c {
			out[i/8] |= 1 << (i % 8)
		}
	}
	return out
}

// UnpackBits 解包 n 个格子，数据不足时返回错误
func UnpackBits(data []byte, n int) ([]bool, error) {
	if n < 0 || len(data) < (n+7)/8 {
		return nil, fmt.Errorf("protocol: terrain bitmap has %d bytes, need %d cells", len(data), n)
	}
	out := make([]bool, n)
	for i := range out {
		out[i] = data[i/8]&(1<<(i%8)) != 0
	}
	return out, nil
}
