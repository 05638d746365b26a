// Package unidata looks up Unicode blocks from the embedded Blocks.txt
// data file of the Unicode Character Database.
package unidata

import (
	"bufio"
	"bytes"
	_ "embed"
	"fmt"
	"sort"
	"strconv"
	"strings"
	"sync"
)

//go:embed Blocks.txt
var blocksTxt []byte

// Block is a contiguous, named range of code points.
type Block struct {
	Start rune
	End   rune
	Name  string
}

// Contains reports whether r lies inside the block.
func (b Block) Contains(r rune) bool {
	return r >= b.Start && r <= b.End
}

// String formats the block as "XXXX-YYYY Name", the directory name used
// for standardized glyph trees.
func (b Block) String() string {
	return fmt.Sprintf("%04X-%04X %s", b.Start, b.End, b.Name)
}

var loadBlocks = sync.OnceValues(func() ([]Block, error) {
	return parseBlocks(blocksTxt)
})

// Blocks returns all blocks in ascending order.
func Blocks() []Block {
	blocks, err := loadBlocks()
	if err != nil {
		// The data file is compiled in; a parse failure is a build defect.
		panic(err)
	}
	return blocks
}

// BlockOf returns the block containing r. The second result is false for
// code points with the No_Block property.
func BlockOf(r rune) (Block, bool) {
	blocks := Blocks()
	i := sort.Search(len(blocks), func(i int) bool { return blocks[i].End >= r })
	if i < len(blocks) && blocks[i].Contains(r) {
		return blocks[i], true
	}
	return Block{}, false
}

// parseBlocks reads lines of the form "0000..007F; Basic Latin".
func parseBlocks(data []byte) ([]Block, error) {
	var blocks []Block
	sc := bufio.NewScanner(bytes.NewReader(data))
	lineNo := 0
	for sc.Scan() {
		lineNo++
		line := sc.Text()
		if i := strings.IndexByte(line, '#'); i >= 0 {
			line = line[:i]
		}
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}

		rng, name, ok := strings.Cut(line, ";")
		if !ok {
			return nil, fmt.Errorf("Blocks.txt:%d: missing ';'", lineNo)
		}
		lo, hi, ok := strings.Cut(strings.TrimSpace(rng), "..")
		if !ok {
			return nil, fmt.Errorf("Blocks.txt:%d: missing '..'", lineNo)
		}
		start, err := strconv.ParseUint(lo, 16, 32)
		if err != nil {
			return nil, fmt.Errorf("Blocks.txt:%d: %w", lineNo, err)
		}
		end, err := strconv.ParseUint(hi, 16, 32)
		if err != nil {
			return nil, fmt.Errorf("Blocks.txt:%d: %w", lineNo, err)
		}
		blocks = append(blocks, Block{Start: rune(start), End: rune(end), Name: strings.TrimSpace(name)})
	}
	if err := sc.Err(); err != nil {
		return nil, err
	}

	sort.Slice(blocks, func(i, j int) bool { return blocks[i].Start < blocks[j].Start })
	return blocks, nil
}
