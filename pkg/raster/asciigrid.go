package raster

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
)

// ReadASCIIGrid parses an ESRI ASCII grid (.asc) into a MemDEM. The
// header accepts either xllcorner/yllcorner or xllcenter/yllcenter;
// data rows run top to bottom as the format specifies.
func ReadASCIIGrid(r io.Reader) (*MemDEM, error) {
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 1024*1024), 16*1024*1024)

	header := map[string]float64{}
	nodata := -9999.0
	var tokens []string

	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		fields := strings.Fields(line)
		key := strings.ToLower(fields[0])
		isHeader := len(fields) == 2 && (key == "ncols" || key == "nrows" ||
			key == "xllcorner" || key == "yllcorner" ||
			key == "xllcenter" || key == "yllcenter" ||
			key == "cellsize" || key == "nodata_value")
		if isHeader {
			v, err := strconv.ParseFloat(fields[1], 64)
			if err != nil {
				return nil, fmt.Errorf("ascii grid: bad header %q: %w", line, err)
			}
			if key == "nodata_value" {
				nodata = v
			} else {
				header[key] = v
			}
			continue
		}
		tokens = append(tokens, fields...)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("ascii grid: read: %w", err)
	}

	cols := int(header["ncols"])
	rows := int(header["nrows"])
	cellSize := header["cellsize"]
	if cols <= 0 || rows <= 0 || cellSize <= 0 {
		return nil, fmt.Errorf("ascii grid: missing or invalid ncols/nrows/cellsize header")
	}
	if len(tokens) != cols*rows {
		return nil, fmt.Errorf("ascii grid: expected %d values, found %d", cols*rows, len(tokens))
	}

	originX, okX := header["xllcorner"]
	originY, okY := header["yllcorner"]
	if !okX {
		if cx, ok := header["xllcenter"]; ok {
			originX = cx - cellSize/2
		}
	}
	if !okY {
		if cy, ok := header["yllcenter"]; ok {
			originY = cy - cellSize/2
		}
	}

	dem := NewMemDEM(originX, originY, cellSize, cols, rows)
	for i, tok := range tokens {
		v, err := strconv.ParseFloat(tok, 64)
		if err != nil {
			return nil, fmt.Errorf("ascii grid: bad value %q at index %d: %w", tok, i, err)
		}
		// Data rows run north to south; MemDEM rows run south to north.
		col := i % cols
		row := rows - 1 - i/cols
		if v != nodata {
			dem.Set(col, row, v)
		}
	}
	return dem, nil
}

// LoadASCIIGrid reads an ESRI ASCII grid from a file path.
func LoadASCIIGrid(path string) (*MemDEM, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("ascii grid: open: %w", err)
	}
	defer f.Close()
	return ReadASCIIGrid(f)
}
