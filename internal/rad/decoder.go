package rad

import (
	"bytes"
	"encoding/binary"
	"encoding/json"
	"io"

	"github.com/klauspost/compress/flate"
	"github.com/pkg/errors"

	"github.com/radsplat/build-lod/internal/errs"
	"github.com/radsplat/build-lod/internal/quant"
	"github.com/radsplat/build-lod/internal/splat"
)

type decoderState int

const (
	stateStart decoderState = iota
	stateTopMetaLen
	stateTopMeta
	stateChunkMagic
	stateChunkMetaLen
	stateChunkMeta
	statePayloadBytes
	stateProperty
	stateDone
	stateFailed
)

// Decoder implements the streaming push/finish contract of spec §5/§4.G:
// push arbitrary byte slices as they arrive, and the decoder advances as
// far as its buffered bytes allow, suspending between calls without
// losing partial progress.
type Decoder struct {
	buf   []byte
	state decoderState
	err   error

	singleChunk  bool
	sawMagicOnce bool

	meta  *Meta
	arr   splat.Writer
	maxSH int

	pendingLen  int
	chunkCursor uint64

	chunkIdx  int
	curMeta   *ChunkMeta
	propIdx   int
	childCnt  []float32
	childStrt []float32
}

// NewDecoder returns a fresh streaming decoder. The destination array is
// constructed internally once the meta (or, for a standalone single-
// chunk stream, the first chunk's properties) reveals maxSh and count.
func NewDecoder() *Decoder {
	return &Decoder{state: stateStart}
}

// Push feeds additional bytes from the wire. It advances the state
// machine as far as the buffered data permits and returns any decode
// error encountered (which is sticky: subsequent calls keep returning it).
func (d *Decoder) Push(b []byte) error {
	if d.err != nil {
		return d.err
	}
	d.buf = append(d.buf, b...)
	for {
		progressed, err := d.step()
		if err != nil {
			d.state = stateFailed
			d.err = err
			return err
		}
		if !progressed {
			return nil
		}
	}
}

// Finish reports whether the stream was fully consumed and returns the
// populated array.
func (d *Decoder) Finish() (splat.Writer, error) {
	if d.err != nil {
		return nil, d.err
	}
	if d.state != stateDone {
		return nil, errs.New(errs.Decode, errors.New("RAD stream ended before all declared chunks were consumed"))
	}
	return d.arr, nil
}

func (d *Decoder) take(n int) ([]byte, bool) {
	if len(d.buf) < n {
		return nil, false
	}
	out := d.buf[:n]
	d.buf = d.buf[n:]
	return out, true
}

// step attempts one unit of progress; it returns progressed=false when
// the buffer doesn't yet hold enough bytes for the current step.
func (d *Decoder) step() (bool, error) {
	switch d.state {
	case stateStart:
		magic, ok := peek(d.buf, 4)
		if !ok {
			return false, nil
		}
		switch string(magic) {
		case fileMagic:
			d.buf = d.buf[4:]
			d.state = stateTopMetaLen
		case chunkMagic:
			d.singleChunk = true
			d.state = stateChunkMetaLen // magic re-consumed by caller below
		default:
			return false, errs.New(errs.Decode, errors.Errorf("bad RAD magic %q", magic))
		}
		return true, nil

	case stateTopMetaLen:
		b, ok := d.take(4)
		if !ok {
			return false, nil
		}
		d.pendingLen = int(binary.LittleEndian.Uint32(b))
		d.state = stateTopMeta
		return true, nil

	case stateTopMeta:
		n := align8(d.pendingLen)
		b, ok := d.take(n)
		if !ok {
			return false, nil
		}
		var m Meta
		if err := json.Unmarshal(b[:d.pendingLen], &m); err != nil {
			return false, errs.Wrap(errs.Decode, err, "parse top-level meta_json")
		}
		d.meta = &m
		d.maxSH = m.MaxSh
		d.arr = splat.NewFull(m.MaxSh, m.Count)
		for i := 0; i < m.Count; i++ {
			d.arr.AppendMerged(splat.Core{}, nil)
		}
		if m.Count == 0 {
			d.state = stateDone
			return true, nil
		}
		d.chunkIdx = 0
		d.state = stateChunkMagic
		return true, nil

	case stateChunkMagic:
		b, ok := d.take(4)
		if !ok {
			return false, nil
		}
		if string(b) != chunkMagic {
			return false, errs.New(errs.Decode, errors.Errorf("bad chunk magic %q", b))
		}
		d.state = stateChunkMetaLen
		return true, nil

	case stateChunkMetaLen:
		if d.singleChunk && !d.sawMagicOnce {
			// the leading RADC magic was only peeked, not consumed, above.
			if _, ok := d.take(4); !ok {
				return false, nil
			}
			d.sawMagicOnce = true
		}
		b, ok := d.take(4)
		if !ok {
			return false, nil
		}
		d.pendingLen = int(binary.LittleEndian.Uint32(b))
		d.state = stateChunkMeta
		return true, nil

	case stateChunkMeta:
		n := align8(d.pendingLen)
		b, ok := d.take(n)
		if !ok {
			return false, nil
		}
		var cm ChunkMeta
		if err := json.Unmarshal(b[:d.pendingLen], &cm); err != nil {
			return false, errs.Wrap(errs.Decode, err, "parse chunk_meta_json")
		}
		if d.meta == nil {
			// standalone RADC stream (spec §4.G.3): no enclosing RAD0
			// header, so maxSh is inferred from which SH properties the
			// lone chunk actually declares.
			d.maxSH = inferMaxSH(cm.Properties)
			d.arr = splat.NewFull(d.maxSH, cm.Count)
			for i := 0; i < cm.Count; i++ {
				d.arr.AppendMerged(splat.Core{}, nil)
			}
		}
		d.curMeta = &cm
		d.propIdx = 0
		d.chunkCursor = 0
		d.childCnt = nil
		d.childStrt = nil
		d.state = statePayloadBytes
		return true, nil

	case statePayloadBytes:
		if _, ok := d.take(8); !ok {
			return false, nil
		}
		d.state = stateProperty
		return true, nil

	case stateProperty:
		cm := d.curMeta
		if d.propIdx >= len(cm.Properties) {
			if d.childCnt != nil || d.childStrt != nil {
				applyChildren(d.arr, cm.Base, cm.Count, d.childCnt, d.childStrt)
			}
			d.chunkIdx++
			if d.singleChunk || (d.meta != nil && d.chunkIdx >= len(d.meta.Chunks)) {
				d.state = stateDone
			} else {
				d.state = stateChunkMagic
			}
			return true, nil
		}
		pm := cm.Properties[d.propIdx]
		if pm.Offset != d.chunkCursor {
			return false, errs.New(errs.Decode, errors.Errorf("property %q offset %d disagrees with running cursor %d", pm.Property, pm.Offset, d.chunkCursor))
		}
		n := align8(int(pm.Bytes))
		b, ok := d.take(n)
		if !ok {
			return false, nil
		}
		raw := b[:pm.Bytes]
		if pm.Compression == "gz" {
			decompressed, err := inflate(raw)
			if err != nil {
				return false, errs.Wrap(errs.Decode, err, "inflate property "+pm.Property)
			}
			raw = decompressed
		}
		q, ok2 := quant.Registry[pm.Encoding]
		if !ok2 {
			return false, errs.New(errs.Decode, errors.Errorf("unknown quantizer %q", pm.Encoding))
		}
		params := quant.Params{}
		if pm.Min != nil {
			params.Min = *pm.Min
		}
		if pm.Max != nil {
			params.Max = *pm.Max
		}
		if pm.Encoding == "ln_0r8" {
			params.ZeroCutoff = lnZeroCutoff
		}
		dims := propertyDims(pm.Property, d.maxSH)
		values := q.Decode(raw, dims, cm.Count, params)
		switch pm.Property {
		case PropChildCount:
			d.childCnt = values
		case PropChildStart:
			d.childStrt = values
		default:
			applyProperty(d.arr, pm.Property, cm.Base, cm.Count, values)
		}
		d.chunkCursor += uint64(n)
		d.propIdx++
		return true, nil

	case stateDone:
		return false, nil
	}
	return false, errors.Errorf("unreachable decoder state %d", d.state)
}

func peek(buf []byte, n int) ([]byte, bool) {
	if len(buf) < n {
		return nil, false
	}
	return buf[:n], true
}

func inferMaxSH(props []PropertyMeta) int {
	maxSH := 0
	for _, p := range props {
		switch p.Property {
		case PropSH3:
			if 3 > maxSH {
				maxSH = 3
			}
		case PropSH2:
			if 2 > maxSH {
				maxSH = 2
			}
		case PropSH1:
			if 1 > maxSH {
				maxSH = 1
			}
		}
	}
	return maxSH
}

func applyChildren(w splat.Writer, base, count int, childCnt, childStart []float32) {
	for i := 0; i < count; i++ {
		idx := base + i
		var cnt, start int
		if i < len(childCnt) {
			cnt = int(childCnt[i])
		}
		if i < len(childStart) {
			start = int(childStart[i])
		}
		if cnt == 0 {
			continue
		}
		children := make([]uint32, cnt)
		for k := 0; k < cnt; k++ {
			children[k] = uint32(start + k)
		}
		w.SetChildren(idx, children)
	}
}

func inflate(data []byte) ([]byte, error) {
	r := flate.NewReader(bytes.NewReader(data))
	defer r.Close()
	out, err := io.ReadAll(r)
	if err != nil {
		return nil, err
	}
	return out, nil
}
