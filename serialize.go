package triedict

import (
	"bytes"
	"encoding/binary"
	"hash"
	"io"

	"github.com/pkg/errors"
	"golang.org/x/crypto/blake2b"
)

// magic identifies the wire format; version allows the record width to grow
// in a future, backward-incompatible way without colliding with readers
// that only understand the current layout.
var magic = [4]byte{'T', 'R', 'I', 'D'}

const formatVersion uint16 = 1

const (
	flagLinksCurrent byte = 1 << 0
	flagChecksum     byte = 1 << 1
)

const checksumSize = 32

// SerializeOption configures a single Serialize call.
type SerializeOption func(*serializeConfig)

type serializeConfig struct {
	checksum     bool
	requireFresh bool
}

// WithSerializeChecksum overrides the Dict's default checksum setting
// (see WithChecksum) for this call only.
func WithSerializeChecksum(enabled bool) SerializeOption {
	return func(c *serializeConfig) {
		c.checksum = enabled
	}
}

// RequireCurrentLinks makes Serialize fail with ErrStaleLinks instead of
// silently writing a dictionary whose suffix links are marked stale. Most
// callers don't need this -- Match rebuilds lazily -- but it's useful on a
// path that wants serialization to never pay a rebuild it didn't ask for.
func RequireCurrentLinks() SerializeOption {
	return func(c *serializeConfig) {
		c.requireFresh = true
	}
}

// Serialize writes the dictionary's node array and header to w per the wire
// format: 4-byte magic, u16 version, 1 flag byte, u32 node count, then N
// records of five big-endian u32 fields each (symbol, value, child, sibling,
// suffix). If a checksum is requested (by default via WithChecksum at
// construction, or per-call via WithSerializeChecksum), a 32-byte BLAKE2b
// digest of everything written so far is appended as a trailer, and a flag
// bit tells Deserialize to read and verify it.
func (d *Dict) Serialize(w io.Writer, opts ...SerializeOption) error {
	cfg := serializeConfig{checksum: d.wantChecksum}
	for _, opt := range opts {
		opt(&cfg)
	}

	if cfg.requireFresh && d.linksStale {
		return errors.WithStack(ErrStaleLinks)
	}

	var flags byte
	if !d.linksStale {
		flags |= flagLinksCurrent
	}
	if cfg.checksum {
		flags |= flagChecksum
	}

	cw := &checksumWriter{w: w}
	if cfg.checksum {
		h, err := blake2b.New256(nil)
		if err != nil {
			return errors.Wrap(err, "initializing checksum")
		}
		cw.h = h
	}

	if err := binary.Write(cw, binary.BigEndian, magic); err != nil {
		return errors.Wrap(err, "writing magic")
	}
	if err := binary.Write(cw, binary.BigEndian, formatVersion); err != nil {
		return errors.Wrap(err, "writing version")
	}
	if _, err := cw.Write([]byte{flags}); err != nil {
		return errors.Wrap(err, "writing flags")
	}
	n := d.store.len()
	if err := binary.Write(cw, binary.BigEndian, uint32(n)); err != nil {
		return errors.Wrap(err, "writing node count")
	}
	for i := 0; i < n; i++ {
		rec := d.store.get(NodeIndex(i))
		fields := [5]uint32{rec.symbol, rec.value, rec.child, rec.sibling, rec.suffix}
		if err := binary.Write(cw, binary.BigEndian, fields); err != nil {
			return errors.Wrapf(err, "writing node %d", i)
		}
	}

	if cfg.checksum {
		sum := cw.h.Sum(nil)
		if _, err := w.Write(sum); err != nil {
			return errors.Wrap(err, "writing checksum trailer")
		}
	}
	return nil
}

// checksumWriter tees every write both to the destination and into a
// running hash, so Serialize can compute the trailer without buffering the
// whole output.
type checksumWriter struct {
	w io.Writer
	h hash.Hash
}

func (c *checksumWriter) Write(p []byte) (int, error) {
	if c.h != nil {
		_, _ = c.h.Write(p)
	}
	return c.w.Write(p)
}

// Deserialize reads a dictionary previously written by Serialize. Any
// inconsistency -- short read, bad magic, unsupported version, an N that
// would overflow, or a child/sibling/suffix index pointing outside the node
// array -- is reported as ErrCorruptSerializedData. If the checksum flag is
// set, the trailer is verified before any record is trusted.
func Deserialize(r io.Reader) (*Dict, error) {
	var gotMagic [4]byte
	if err := binary.Read(r, binary.BigEndian, &gotMagic); err != nil {
		return nil, errors.Wrap(ErrCorruptSerializedData, "reading magic: "+err.Error())
	}
	if gotMagic != magic {
		return nil, errors.Wrap(ErrCorruptSerializedData, "bad magic")
	}

	var version uint16
	if err := binary.Read(r, binary.BigEndian, &version); err != nil {
		return nil, errors.Wrap(ErrCorruptSerializedData, "reading version: "+err.Error())
	}
	if version != formatVersion {
		return nil, errors.Wrapf(ErrCorruptSerializedData, "unsupported version %d", version)
	}

	flagBuf := make([]byte, 1)
	if _, err := io.ReadFull(r, flagBuf); err != nil {
		return nil, errors.Wrap(ErrCorruptSerializedData, "reading flags: "+err.Error())
	}
	flags := flagBuf[0]

	var n uint32
	if err := binary.Read(r, binary.BigEndian, &n); err != nil {
		return nil, errors.Wrap(ErrCorruptSerializedData, "reading node count: "+err.Error())
	}
	if n == 0 || n >= maxNodeIndex {
		return nil, errors.Wrapf(ErrCorruptSerializedData, "node count %d out of range", n)
	}

	nodes := make([]node, n)
	for i := uint32(0); i < n; i++ {
		var fields [5]uint32
		if err := binary.Read(r, binary.BigEndian, &fields); err != nil {
			return nil, errors.Wrapf(ErrCorruptSerializedData, "reading node %d: %s", i, err.Error())
		}
		rec := node{symbol: fields[0], value: fields[1], child: fields[2], sibling: fields[3], suffix: fields[4]}
		if rec.child >= n || rec.sibling >= n || rec.suffix >= n {
			return nil, errors.Wrapf(ErrCorruptSerializedData, "node %d has out-of-range link", i)
		}
		nodes[i] = rec
	}

	if flags&flagChecksum != 0 {
		// Re-derive the digest over magic+version+flags+count+records.
		full, herr := blake2b.New256(nil)
		if herr != nil {
			return nil, errors.Wrap(herr, "initializing checksum")
		}
		headerBuf := headerBytes(magic, version, flags, n)
		_, _ = full.Write(headerBuf)
		for i := range nodes {
			fb := recordBytes(nodes[i])
			_, _ = full.Write(fb)
		}
		want := make([]byte, checksumSize)
		if _, err := io.ReadFull(r, want); err != nil {
			return nil, errors.Wrap(ErrCorruptSerializedData, "reading checksum trailer: "+err.Error())
		}
		got := full.Sum(nil)
		if !bytes.Equal(got, want) {
			return nil, errors.Wrap(ErrCorruptSerializedData, "checksum mismatch")
		}
	}

	s := &store{nodes: nodes}
	s.rebuildTerminalBits()

	d := &Dict{
		store:    s,
		topo:     newTopology(s),
		patterns: rebuildPatterns(s),
	}
	if flags&flagLinksCurrent != 0 {
		d.linksStale = false
	} else {
		d.linksStale = true
		for i := range d.store.nodes {
			d.store.nodes[i].suffix = 0
		}
	}
	return d, nil
}

func headerBytes(m [4]byte, version uint16, flags byte, n uint32) []byte {
	buf := make([]byte, 0, 4+2+1+4)
	buf = append(buf, m[:]...)
	buf = binary.BigEndian.AppendUint16(buf, version)
	buf = append(buf, flags)
	buf = binary.BigEndian.AppendUint32(buf, n)
	return buf
}

func recordBytes(n node) []byte {
	buf := make([]byte, 20)
	binary.BigEndian.PutUint32(buf[0:4], n.symbol)
	binary.BigEndian.PutUint32(buf[4:8], n.value)
	binary.BigEndian.PutUint32(buf[8:12], n.child)
	binary.BigEndian.PutUint32(buf[12:16], n.sibling)
	binary.BigEndian.PutUint32(buf[16:20], n.suffix)
	return buf
}

