package protocol

import (
	"errors"
	"testing"

	"google.golang.org/protobuf/encoding/protowire"

	"missiledefence/pkg/core"
)

func sampleSnapshot(t *testing.T) *core.Snapshot {
	t.Helper()
	cfg := core.DefaultConfig()
	cfg.Width, cfg.Height = 64, 48
	cfg.Seed = 3
	g := core.NewGame(cfg, nil, nil)
	g.AddProjectile(core.NewMissile(core.Vec2{X: 10, Y: 5}, core.Vec2{X: 1, Y: 2}, 3))
	collapse := core.NewSupportCollapse(core.Vec2{X: 20, Y: 40}, 8)
	g.AddProjectile(collapse)
	g.Tick()
	return g.Snapshot(true)
}

func TestSnapshotRoundTripProto(t *testing.T) {
	snap := sampleSnapshot(t)
	data, err := ProtoCodec{}.Encode(MessageTypeSnapshot, CoreSnapshotToProto(snap, 7))
	if err != nil {
		t.Fatalf("encode: %v", err)
	}

	pkt, err := ProtoCodec{}.Decode(data)
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	wire, err := ParseSnapshot(pkt)
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if wire.LastInputSeq != 7 {
		t.Fatalf("input seq: got %d", wire.LastInputSeq)
	}

	got, err := ProtoSnapshotToCore(wire)
	if err != nil {
		t.Fatalf("convert: %v", err)
	}
	if got.Tick != snap.Tick || got.Score != snap.Score || got.Width != snap.Width || got.Height != snap.Height {
		t.Fatalf("header mismatch: %+v vs %+v", got, snap)
	}
	if len(got.Projectiles) != len(snap.Projectiles) {
		t.Fatalf("projectiles: got %d, want %d", len(got.Projectiles), len(snap.Projectiles))
	}
	for i, p := range snap.Projectiles {
		q := got.Projectiles[i]
		if q.ID != p.ID || q.Kind != p.Kind || q.Pos != p.Pos || q.Exploding != p.Exploding || len(q.Trail) != len(p.Trail) {
			t.Fatalf("projectile %d: got %+v, want %+v", i, q, p)
		}
	}
	if got.Shield != snap.Shield || got.Cannon != snap.Cannon {
		t.Fatalf("shield/cannon mismatch")
	}
	if len(got.Terrain) != len(snap.Terrain) {
		t.Fatalf("terrain cells: got %d, want %d", len(got.Terrain), len(snap.Terrain))
	}
	for i := range snap.Terrain {
		if got.Terrain[i] != snap.Terrain[i] {
			t.Fatalf("terrain differs at cell %d", i)
		}
	}
}

func TestSnapshotRoundTripMsgpack(t *testing.T) {
	snap := sampleSnapshot(t)
	codec, err := CodecByName("msgpack")
	if err != nil {
		t.Fatalf("codec: %v", err)
	}

	data, err := codec.Encode(MessageTypeSnapshot, CoreSnapshotToProto(snap, 1))
	if err != nil {
		t.Fatalf("encode: %v", err)
	}
	pkt, err := codec.Decode(data)
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	var wire Snapshot
	if err := codec.Parse(pkt, MessageTypeSnapshot, &wire); err != nil {
		t.Fatalf("parse: %v", err)
	}
	if wire.Tick != snap.Tick || len(wire.Projectiles) != len(snap.Projectiles) || wire.Cannon.Length != snap.Cannon.Length {
		t.Fatalf("msgpack snapshot mismatch: %+v", wire)
	}
}

func TestUnknownFieldsAreSkipped(t *testing.T) {
	in := &Input{Seq: 9, AimX: 1.5, Fire: true}
	payload := in.Marshal()
	payload = protowire.AppendTag(payload, 99, protowire.BytesType)
	payload = protowire.AppendBytes(payload, []byte("future"))
	payload = protowire.AppendTag(payload, 100, protowire.Fixed32Type)
	payload = protowire.AppendFixed32(payload, 42)

	var out Input
	if err := out.Unmarshal(payload); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if out != *in {
		t.Fatalf("got %+v, want %+v", out, *in)
	}
}

func TestTruncatedPacketFails(t *testing.T) {
	data := MarshalPacket(NewHelloPacket("pilot", "token"))
	if _, err := UnmarshalPacket(data[:len(data)-2]); err == nil {
		t.Fatalf("truncated packet should fail to decode")
	}
	if _, err := UnmarshalPacket(nil); !errors.Is(err, ErrUnexpectedType) {
		t.Fatalf("empty packet should be rejected as unspecified, got %v", err)
	}
}

func TestParseRejectsWrongType(t *testing.T) {
	pkt := NewPingPacket(123)
	if _, err := ParseInput(pkt); !errors.Is(err, ErrUnexpectedType) {
		t.Fatalf("want ErrUnexpectedType, got %v", err)
	}
	ping, err := ParsePing(pkt)
	if err != nil || ping.ClientTime != 123 {
		t.Fatalf("ping: %+v %v", ping, err)
	}
}

func TestInputConversion(t *testing.T) {
	in := core.Input{Aim: core.Vec2{X: 3, Y: -4}, FireHeld: true, BoostShield: true}
	wire := CoreInputToProto(in, 5)

	var decoded Input
	if err := decoded.Unmarshal(wire.Marshal()); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if got := ProtoInputToCore(&decoded); got != in {
		t.Fatalf("got %+v, want %+v", got, in)
	}
	if decoded.Seq != 5 {
		t.Fatalf("seq: got %d", decoded.Seq)
	}
}

func TestKindConversion(t *testing.T) {
	for _, k := range []core.Kind{core.KindMissile, core.KindCannonShot, core.KindSupportCollapse} {
		if got := ProtoKindToCore(CoreKindToProto(k)); got != k {
			t.Errorf("kind %v came back as %v", k, got)
		}
	}
	if got := ProtoKindToCore(ProjectileKindUnspecified); got != core.KindMissile {
		t.Errorf("unspecified kind should default to missile, got %v", got)
	}
}

func TestPackBits(t *testing.T) {
	cells := []bool{true, false, false, true, false, false, false, false, true, true}
	packed := PackBits(cells)
	if len(packed) != 2 || packed[0] != 0x09 || packed[1] != 0x03 {
		t.Fatalf("unexpected packing %x", packed)
	}

	got, err := UnpackBits(packed, len(cells))
	if err != nil {
		t.Fatalf("unpack: %v", err)
	}
	for i := range cells {
		if got[i] != cells[i] {
			t.Fatalf("cell %d differs", i)
		}
	}

	if _, err := UnpackBits(packed, 17); err == nil {
		t.Fatalf("unpacking more cells than encoded should fail")
	}
}

func TestNegativeCellChangeSurvives(t *testing.T) {
	c := CellChange{X: -3, Y: 7, Occupied: true}
	var out CellChange
	if err := out.Unmarshal(c.Marshal()); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if out != c {
		t.Fatalf("got %+v, want %+v", out, c)
	}
}

func TestCodecByName(t *testing.T) {
	if c, err := CodecByName(""); err != nil || c.Name() != "protobuf" {
		t.Fatalf("default codec: %v %v", c, err)
	}
	if _, err := CodecByName("xml"); err == nil {
		t.Fatalf("unknown codec should fail")
	}
}
