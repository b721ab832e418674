package jpeg1

import (
	"github.com/rad-medica/jpegexp-go/pkg/compress/bitio"
)

// ProgressiveBlock holds one component block's coefficients in zig-zag
// order across the several scans a progressive JPEG accumulates; encode
// and decode both mutate these in place as successive scans refine them.
type ProgressiveBlock struct {
	Coeffs [64]int // zig-zag order, accumulated across scans
}

// EncodeDCFirst writes the initial DC scan (Ah=0): each block's DC
// coefficient right-shifted by Al, DPCM-coded like a baseline DC scan.
func EncodeDCFirst(w *bitio.StuffedWriter, dcTable *Table, blocks []*ProgressiveBlock, al int) error {
	prev := 0
	for _, b := range blocks {
		v := b.Coeffs[0] >> uint(al)
		diff := v - prev
		prev = v
		category := magnitudeCategory(diff)
		if err := encodeHuffmanSymbol(w, dcTable, byte(category)); err != nil {
			return err
		}
		if category > 0 {
			if err := w.WriteBits(additionalBits(diff, category), category); err != nil {
				return err
			}
		}
	}
	return nil
}

// DecodeDCFirst is the inverse of EncodeDCFirst; block.Coeffs[0] is set to
// the decoded value shifted back left by Al, leaving the low Al bits zero
// for later refinement scans to fill in.
func DecodeDCFirst(r *bitio.StuffedReader, dcTable *Table, blocks []*ProgressiveBlock, al int) error {
	prev := 0
	for _, b := range blocks {
		category, err := decodeHuffmanSymbol(r, dcTable)
		if err != nil {
			return err
		}
		diff := 0
		if category > 0 {
			bits, err := r.ReadBits(int(category))
			if err != nil {
				return err
			}
			diff = extendReceive(bits, int(category))
		}
		prev += diff
		b.Coeffs[0] = prev << uint(al)
	}
	return nil
}

// EncodeDCRefine writes one correction bit per block: bit Al of the DC
// coefficient.
func EncodeDCRefine(w *bitio.StuffedWriter, blocks []*ProgressiveBlock, al int) error {
	for _, b := range blocks {
		bit := (b.Coeffs[0] >> uint(al)) & 1
		if err := w.WriteBit(bit); err != nil {
			return err
		}
	}
	return nil
}

// DecodeDCRefine is the inverse of EncodeDCRefine.
func DecodeDCRefine(r *bitio.StuffedReader, blocks []*ProgressiveBlock, al int) error {
	for _, b := range blocks {
		bit, err := r.ReadBit()
		if err != nil {
			return err
		}
		if bit == 1 {
			b.Coeffs[0] |= 1 << uint(al)
		}
	}
	return nil
}

func eobRunCategory(run int) int {
	cat := 0
	for (1 << uint(cat+1)) <= run {
		cat++
	}
	return cat
}

// EncodeACFirst writes the initial AC scan for spectral band [ss, se] at
// shift al, across all blocks of one component, using the EOB-run escape
// of ISO G.1.2.2.
func EncodeACFirst(w *bitio.StuffedWriter, acTable *Table, blocks []*ProgressiveBlock, ss, se, al int) error {
	eobrun := 0
	flush := func() error {
		if eobrun == 0 {
			return nil
		}
		cat := eobRunCategory(eobrun)
		if err := encodeHuffmanSymbol(w, acTable, byte(cat<<4)); err != nil {
			return err
		}
		if cat > 0 {
			if err := w.WriteBits(uint32(eobrun-(1<<uint(cat))), cat); err != nil {
				return err
			}
		}
		eobrun = 0
		return nil
	}

	for _, b := range blocks {
		if _, _, ok := acTable.CodeFor(byte(eobRunCategory(eobrun+1) << 4)); eobrun > 0 && !ok {
			if err := flush(); err != nil {
				return err
			}
		}
		run := 0
		anyNonZero := false
		for k := ss; k <= se; k++ {
			raw := b.Coeffs[k]
			sign := 1
			if raw < 0 {
				sign, raw = -1, -raw
			}
			v := sign * (raw >> uint(al))
			if v == 0 {
				run++
				continue
			}
			anyNonZero = true
			if err := flush(); err != nil {
				return err
			}
			for run > 15 {
				if err := encodeHuffmanSymbol(w, acTable, 0xF0); err != nil {
					return err
				}
				run -= 16
			}
			category := magnitudeCategory(v)
			sym := byte(run<<4 | category)
			if err := encodeHuffmanSymbol(w, acTable, sym); err != nil {
				return err
			}
			if err := w.WriteBits(additionalBits(v, category), category); err != nil {
				return err
			}
			run = 0
		}
		if !anyNonZero {
			eobrun++
			if eobrun == 0x7FFF {
				if err := flush(); err != nil {
					return err
				}
			}
		} else if run > 0 {
			// trailing zeros after the last nonzero in this block begin a
			// new potential EOB run starting at the next block.
			eobrun++
		}
	}
	return flush()
}

// DecodeACFirst is the inverse of EncodeACFirst.
func DecodeACFirst(r *bitio.StuffedReader, acTable *Table, blocks []*ProgressiveBlock, ss, se, al int) error {
	eobrun := 0
	for _, b := range blocks {
		if eobrun > 0 {
			eobrun--
			continue
		}
		k := ss
		for k <= se {
			sym, err := decodeHuffmanSymbol(r, acTable)
			if err != nil {
				return err
			}
			run := int(sym >> 4)
			size := int(sym & 0x0F)
			if size == 0 {
				if run != 15 {
					eobrun = (1 << uint(run))
					if run > 0 {
						extra, err := r.ReadBits(run)
						if err != nil {
							return err
						}
						eobrun += int(extra)
					}
					eobrun-- // this block itself accounts for one
					break
				}
				k += 16
				continue
			}
			k += run
			if k > se {
				break
			}
			bits, err := r.ReadBits(size)
			if err != nil {
				return err
			}
			v := extendReceive(bits, size)
			b.Coeffs[k] = v << uint(al)
			k++
		}
	}
	return nil
}

// EncodeACRefine writes a refinement AC scan (Ah=Al+1 semantics: the
// caller passes this scan's own al, one less than the prior scan's). Every coefficient that
// was already significant — whether encountered while skipping a
// newly-zero run or after an EOB run has started — receives exactly one
// correction bit, per spec.md §9 Open Question 4 (grounded on
// original_source/src/jpeg1/decoder.rs::decode_ac_progressive's ah>0
// branch, which the teacher's code never modeled since it had no
// progressive support at all).
func EncodeACRefine(w *bitio.StuffedWriter, acTable *Table, blocks []*ProgressiveBlock, ss, se, al int) error {
	eobrun := 0
	var corrections []int

	flush := func() error {
		if eobrun == 0 {
			return nil
		}
		cat := eobRunCategory(eobrun)
		if err := encodeHuffmanSymbol(w, acTable, byte(cat<<4)); err != nil {
			return err
		}
		if cat > 0 {
			if err := w.WriteBits(uint32(eobrun-(1<<uint(cat))), cat); err != nil {
				return err
			}
		}
		for _, c := range corrections {
			if err := w.WriteBit(c); err != nil {
				return err
			}
		}
		eobrun = 0
		corrections = corrections[:0]
		return nil
	}

	for _, b := range blocks {
		if _, _, ok := acTable.CodeFor(byte(eobRunCategory(eobrun+1) << 4)); eobrun > 0 && !ok {
			if err := flush(); err != nil {
				return err
			}
		}
		k := ss
		if eobrun > 0 {
			for ; k <= se; k++ {
				if absInt(b.Coeffs[k])>>uint(al+1) != 0 {
					corrections = append(corrections, refinementBit(b.Coeffs[k], al))
				}
			}
			eobrun++
			continue
		}

		var blockCorrections []int
		run := 0
		for k <= se {
			mag := absInt(b.Coeffs[k])
			if mag>>uint(al+1) != 0 {
				// already significant at a coarser bit plane: one correction bit
				blockCorrections = append(blockCorrections, refinementBit(b.Coeffs[k], al))
				k++
				continue
			}
			if mag>>uint(al) != 1 {
				// not yet significant even at this bit plane
				run++
				k++
				continue
			}
			for run > 15 {
				if err := encodeHuffmanSymbol(w, acTable, 0xF0); err != nil {
					return err
				}
				for _, c := range blockCorrections {
					if err := w.WriteBit(c); err != nil {
						return err
					}
				}
				blockCorrections = blockCorrections[:0]
				run -= 16
			}
			sym := byte(run<<4 | 1)
			if err := encodeHuffmanSymbol(w, acTable, sym); err != nil {
				return err
			}
			signBit := 0
			if b.Coeffs[k] > 0 {
				signBit = 1
			}
			if err := w.WriteBit(signBit); err != nil {
				return err
			}
			for _, c := range blockCorrections {
				if err := w.WriteBit(c); err != nil {
					return err
				}
			}
			blockCorrections = blockCorrections[:0]
			run = 0
			k++
		}
		if run > 0 || len(blockCorrections) > 0 {
			eobrun++
			corrections = append(corrections, blockCorrections...)
		}
	}
	return flush()
}

func absInt(x int) int {
	if x < 0 {
		return -x
	}
	return x
}

func refinementBit(coeff, al int) int {
	mag := coeff
	if mag < 0 {
		mag = -mag
	}
	return (mag >> uint(al)) & 1
}

// DecodeACRefine is the inverse of EncodeACRefine.
func DecodeACRefine(r *bitio.StuffedReader, acTable *Table, blocks []*ProgressiveBlock, ss, se, al int) error {
	eobrun := 0
	p1 := 1 << uint(al)

	applyCorrection := func(b *ProgressiveBlock, k int) error {
		bit, err := r.ReadBit()
		if err != nil {
			return err
		}
		if bit == 1 {
			if b.Coeffs[k] > 0 {
				b.Coeffs[k] += p1
			} else {
				b.Coeffs[k] -= p1
			}
		}
		return nil
	}

	for _, b := range blocks {
		k := ss
		if eobrun == 0 {
			for k <= se {
				sym, err := decodeHuffmanSymbol(r, acTable)
				if err != nil {
					return err
				}
				run := int(sym >> 4)
				size := int(sym & 0x0F)
				newVal := 0
				haveNew := false

				if size == 0 {
					if run != 15 {
						eobrun = 1 << uint(run)
						if run > 0 {
							extra, err := r.ReadBits(run)
							if err != nil {
								return err
							}
							eobrun += int(extra)
						}
						// fall through: still apply corrections for the
						// remainder of this block before consuming eobrun.
						for ; k <= se; k++ {
							if b.Coeffs[k] != 0 {
								if err := applyCorrection(b, k); err != nil {
									return err
								}
							}
						}
						eobrun--
						break
					}
					run = 16
				} else {
					bit, err := r.ReadBit()
					if err != nil {
						return err
					}
					if bit == 1 {
						newVal = p1
					} else {
						newVal = -p1
					}
					haveNew = true
				}

				for k <= se {
					if b.Coeffs[k] != 0 {
						if err := applyCorrection(b, k); err != nil {
							return err
						}
						k++
						continue
					}
					if run == 0 {
						break
					}
					run--
					k++
				}
				if haveNew && k <= se {
					b.Coeffs[k] = newVal
					k++
				}
			}
		} else {
			for ; k <= se; k++ {
				if b.Coeffs[k] != 0 {
					if err := applyCorrection(b, k); err != nil {
						return err
					}
				}
			}
			eobrun--
		}
	}
	return nil
}
