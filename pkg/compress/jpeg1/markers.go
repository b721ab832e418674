package jpeg1

import (
	"github.com/rad-medica/jpegexp-go/pkg/compress/errs"
	"github.com/rad-medica/jpegexp-go/pkg/compress/frame"
	"github.com/rad-medica/jpegexp-go/pkg/compress/stream"
)

// writeDQT emits one quantization table (ISO B.2.4.1), Pq=0 (8-bit
// precision), in zig-zag coefficient order.
func writeDQT(sw *stream.Writer, id int, table *[64]int) error {
	zz := zigzagScan(table)
	buf := make([]byte, 1+64)
	buf[0] = byte(id & 0x0F)
	for i, v := range zz {
		buf[1+i] = byte(v)
	}
	return sw.WriteSegment(stream.DQT, buf)
}

// writeDHT emits one Huffman table (ISO B.2.4.2): class (0=DC,1=AC), id,
// BITS, HUFFVAL.
func writeDHT(sw *stream.Writer, class, id int, t *Table) error {
	buf := make([]byte, 1+16+len(t.values))
	buf[0] = byte(class&0x0F)<<4 | byte(id&0x0F)
	for i := 0; i < 16; i++ {
		buf[1+i] = byte(t.bits[i+1])
	}
	copy(buf[17:], t.values)
	return sw.WriteSegment(stream.DHT, buf)
}

// writeSOF emits a frame header (ISO B.2.2) with 1x1 sampling factors for
// every component (no chroma subsampling).
func writeSOF(sw *stream.Writer, marker int, info frame.Info, quantIDs []int) error {
	buf := make([]byte, 1+2+2+1+3*info.ComponentCount)
	buf[0] = byte(info.BitsPerSample) // EncodeRaw already enforces 8-bit for DCT modes; lossless carries its true precision here
	buf[1] = byte(info.Height >> 8)
	buf[2] = byte(info.Height)
	buf[3] = byte(info.Width >> 8)
	buf[4] = byte(info.Width)
	buf[5] = byte(info.ComponentCount)
	for i := 0; i < info.ComponentCount; i++ {
		off := 6 + i*3
		buf[off] = byte(i + 1)
		buf[off+1] = 0x11
		buf[off+2] = byte(quantIDs[i])
	}
	return sw.WriteSegment(marker, buf)
}

// writeSOS emits a single-component scan header (ISO B.2.3). Ss/Se/Ah/Al
// carry spectral-selection/successive-approximation parameters for
// progressive scans, or the lossless predictor selector (Ss) for Process
// 14 scans.
func writeSOS(sw *stream.Writer, compIndex, td, ta, ss, se, ah, al int) error {
	buf := make([]byte, 1+2+3)
	buf[0] = 1
	buf[1] = byte(compIndex + 1)
	buf[2] = byte(td&0x0F)<<4 | byte(ta&0x0F)
	buf[3] = byte(ss)
	buf[4] = byte(se)
	buf[5] = byte(ah&0x0F)<<4 | byte(al&0x0F)
	return sw.WriteSegment(stream.SOS, buf)
}

func parseDQT(p []byte, quantTables map[int]*[64]int) error {
	for len(p) >= 65 {
		id := int(p[0] & 0x0F)
		var zz [64]int
		for i := 0; i < 64; i++ {
			zz[i] = int(p[1+i])
		}
		natural := zigzagUnscan(&zz)
		quantTables[id] = &natural
		p = p[65:]
	}
	return nil
}

func parseDHT(p []byte, dcTables, acTables map[int]*Table) error {
	for len(p) >= 17 {
		class := int(p[0] >> 4)
		id := int(p[0] & 0x0F)
		var bits [16]int
		total := 0
		for i := 0; i < 16; i++ {
			bits[i] = int(p[1+i])
			total += bits[i]
		}
		if len(p) < 17+total {
			return errs.New(errs.InvalidMarkerSegmentSize, "dht segment truncated")
		}
		values := append([]byte{}, p[17:17+total]...)
		t := BuildTable(bits, values)
		if class == 0 {
			dcTables[id] = t
		} else {
			acTables[id] = t
		}
		p = p[17+total:]
	}
	return nil
}

func parseSOF(p []byte) (frame.Info, []int, error) {
	if len(p) < 6 {
		return frame.Info{}, nil, errs.New(errs.InvalidMarkerSegmentSize, "sof segment too short")
	}
	info := frame.Info{
		BitsPerSample:  int(p[0]),
		Height:         int(p[1])<<8 | int(p[2]),
		Width:          int(p[3])<<8 | int(p[4]),
		ComponentCount: int(p[5]),
	}
	if len(p) < 6+3*info.ComponentCount {
		return frame.Info{}, nil, errs.New(errs.InvalidMarkerSegmentSize, "sof segment too short for component list")
	}
	quantIDs := make([]int, info.ComponentCount)
	for i := 0; i < info.ComponentCount; i++ {
		off := 6 + i*3
		quantIDs[i] = int(p[off+2])
	}
	return info, quantIDs, nil
}

type sosComponent struct {
	Index int
	Td    int
	Ta    int
}

func parseSOS(p []byte) (comps []sosComponent, ss, se, ah, al int, err error) {
	if len(p) < 1 {
		return nil, 0, 0, 0, 0, errs.New(errs.InvalidMarkerSegmentSize, "sos segment too short")
	}
	ns := int(p[0])
	if len(p) < 1+2*ns+3 {
		return nil, 0, 0, 0, 0, errs.New(errs.InvalidMarkerSegmentSize, "sos segment too short for component list")
	}
	comps = make([]sosComponent, ns)
	for i := 0; i < ns; i++ {
		off := 1 + 2*i
		comps[i] = sosComponent{
			Index: int(p[off]) - 1,
			Td:    int(p[off+1] >> 4),
			Ta:    int(p[off+1] & 0x0F),
		}
	}
	tail := 1 + 2*ns
	ss = int(p[tail])
	se = int(p[tail+1])
	ah = int(p[tail+2] >> 4)
	al = int(p[tail+2] & 0x0F)
	return comps, ss, se, ah, al, nil
}
