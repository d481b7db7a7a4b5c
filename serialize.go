package main

import (
	"encoding/binary"
	"fmt"
)

// Board wire format: the two 384-bit occupancy vectors, little-endian
// within each 64-bit word, followed by one capture-count byte per
// colour. 98 bytes total.

const serializedBoardLen = 6*8*2 + 2

func SerializeBoard(b *Board) []byte {
	out := make([]byte, serializedBoardLen)
	off := 0
	for _, w := range b.black {
		binary.LittleEndian.PutUint64(out[off:], w)
		off += 8
	}
	for _, w := range b.white {
		binary.LittleEndian.PutUint64(out[off:], w)
		off += 8
	}
	out[off] = byte(b.blackCaptures)
	out[off+1] = byte(b.whiteCaptures)
	return out
}

func DeserializeBoard(data []byte) (*Board, error) {
	if len(data) != serializedBoardLen {
		return nil, fmt.Errorf("board blob must be %d bytes, got %d", serializedBoardLen, len(data))
	}
	b := NewBoard()
	off := 0
	for i := range b.black {
		b.black[i] = binary.LittleEndian.Uint64(data[off:])
		off += 8
	}
	for i := range b.white {
		b.white[i] = binary.LittleEndian.Uint64(data[off:])
		off += 8
	}
	b.blackCaptures = int(data[off])
	b.whiteCaptures = int(data[off+1])
	if err := validateBoard(b); err != nil {
		return nil, err
	}
	return b, nil
}

func validateBoard(b *Board) error {
	// Bits beyond cell 360 must be zero.
	const lastWordMask = ^uint64(0) >> (6*64 - TotalCells)
	if b.black[5]&^lastWordMask != 0 || b.white[5]&^lastWordMask != 0 {
		return fmt.Errorf("occupancy bits set beyond cell %d", TotalCells-1)
	}
	for i := range b.black {
		if b.black[i]&b.white[i] != 0 {
			return fmt.Errorf("black and white occupy the same cell in word %d", i)
		}
	}
	if b.blackCaptures > 5 || b.whiteCaptures > 5 {
		return fmt.Errorf("capture counters out of range: black=%d white=%d", b.blackCaptures, b.whiteCaptures)
	}
	return nil
}

// cellGrid flattens the board to the 0/1/2 cell encoding used by the
// HTTP layer: 0 empty, 1 Black, 2 White.
func cellGrid(b *Board) []uint8 {
	grid := make([]uint8, TotalCells)
	b.black.ForEach(func(p Pos) { grid[p.Index()] = uint8(CellBlack) })
	b.white.ForEach(func(p Pos) { grid[p.Index()] = uint8(CellWhite) })
	return grid
}

// boardFromCells rebuilds a Board from the 0/1/2 cell encoding.
func boardFromCells(cells []uint8, blackCaptures, whiteCaptures int) (*Board, error) {
	if len(cells) != TotalCells {
		return nil, fmt.Errorf("cells must have %d entries, got %d", TotalCells, len(cells))
	}
	if blackCaptures < 0 || blackCaptures > 5 || whiteCaptures < 0 || whiteCaptures > 5 {
		return nil, fmt.Errorf("capture counters out of range: black=%d white=%d", blackCaptures, whiteCaptures)
	}
	b := NewBoard()
	for i, v := range cells {
		switch Cell(v) {
		case CellEmpty:
		case CellBlack:
			b.black.Set(PosFromIndex(i))
		case CellWhite:
			b.white.Set(PosFromIndex(i))
		default:
			return nil, fmt.Errorf("invalid cell value %d at index %d", v, i)
		}
	}
	b.blackCaptures = blackCaptures
	b.whiteCaptures = whiteCaptures
	return b, nil
}
