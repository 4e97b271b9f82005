package volume

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
)

// ReadColumn reads a whitespace-separated numeric file (FD or DVARS series,
// one value per row). Blank lines and '#' comments are skipped.
func ReadColumn(r io.Reader) ([]float64, error) {
	var values []float64
	scanner := bufio.NewScanner(r)
	line := 0
	for scanner.Scan() {
		line++
		text := strings.TrimSpace(scanner.Text())
		if text == "" || strings.HasPrefix(text, "#") {
			continue
		}
		for _, field := range strings.Fields(text) {
			v, err := strconv.ParseFloat(field, 64)
			if err != nil {
				return nil, fmt.Errorf("line %d: %q is not a number", line, field)
			}
			values = append(values, v)
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}
	return values, nil
}

// ReadColumnFile reads a numeric column from a file path.
func ReadColumnFile(path string) ([]float64, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	values, err := ReadColumn(f)
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", path, err)
	}
	return values, nil
}

// WriteCensorColumn writes a censor vector, one 0/1 integer per line.
func WriteCensorColumn(w io.Writer, censor []int) error {
	bw := bufio.NewWriter(w)
	for _, v := range censor {
		if _, err := fmt.Fprintf(bw, "%d\n", v); err != nil {
			return err
		}
	}
	return bw.Flush()
}

// WriteMatrix writes a regressor matrix, one row per timepoint, columns
// separated by a single space.
func WriteMatrix(w io.Writer, rows [][]float64) error {
	bw := bufio.NewWriter(w)
	for _, row := range rows {
		for j, v := range row {
			if j > 0 {
				if err := bw.WriteByte(' '); err != nil {
					return err
				}
			}
			if _, err := fmt.Fprintf(bw, "%.18f", v); err != nil {
				return err
			}
		}
		if err := bw.WriteByte('\n'); err != nil {
			return err
		}
	}
	return bw.Flush()
}

// ReadMatrix reads a row-per-line numeric matrix (motion parameters, one row
// per timepoint). Every row must have the same number of columns.
func ReadMatrix(r io.Reader) ([][]float64, error) {
	var rows [][]float64
	scanner := bufio.NewScanner(r)
	line := 0
	for scanner.Scan() {
		line++
		text := strings.TrimSpace(scanner.Text())
		if text == "" || strings.HasPrefix(text, "#") {
			continue
		}
		fields := strings.Fields(text)
		row := make([]float64, len(fields))
		for j, field := range fields {
			v, err := strconv.ParseFloat(field, 64)
			if err != nil {
				return nil, fmt.Errorf("line %d: %q is not a number", line, field)
			}
			row[j] = v
		}
		if len(rows) > 0 && len(row) != len(rows[0]) {
			return nil, fmt.Errorf("line %d: %d columns, expected %d", line, len(row), len(rows[0]))
		}
		rows = append(rows, row)
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}
	return rows, nil
}

// ReadMatrixFile reads a row-per-line numeric matrix from a file path.
func ReadMatrixFile(path string) ([][]float64, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	rows, err := ReadMatrix(f)
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", path, err)
	}
	return rows, nil
}

// ReadAffineFile reads a 4x4 transform matrix stored as 16 whitespace-
// separated values.
func ReadAffineFile(path string) (Affine, error) {
	var a Affine
	values, err := ReadColumnFile(path)
	if err != nil {
		return a, err
	}
	if len(values) != 16 {
		return a, fmt.Errorf("reading %s: need 16 matrix values, found %d", path, len(values))
	}
	for i, v := range values {
		a[i/4][i%4] = v
	}
	return a, nil
}

// The plain-text array format below is a fixture/debug format, not an imaging
// format: a header line ("volume X Y Z" or "series X Y Z T"), four affine
// rows, then voxel values in storage order.

// WriteVolumeText serializes a volume to the plain-text format.
func WriteVolumeText(w io.Writer, v *Volume) error {
	bw := bufio.NewWriter(w)
	if _, err := fmt.Fprintf(bw, "volume %d %d %d\n", v.Dims[0], v.Dims[1], v.Dims[2]); err != nil {
		return err
	}
	if err := writeAffine(bw, v.Affine); err != nil {
		return err
	}
	if err := writeValues(bw, v.Data); err != nil {
		return err
	}
	return bw.Flush()
}

// ReadVolumeText parses a volume from the plain-text format.
func ReadVolumeText(r io.Reader) (*Volume, error) {
	fields, err := readFields(r)
	if err != nil {
		return nil, err
	}
	dims, rest, err := readHeader(fields, "volume", 3)
	if err != nil {
		return nil, err
	}
	affine, rest, err := readAffine(rest)
	if err != nil {
		return nil, err
	}
	v := NewVolume([3]int{dims[0], dims[1], dims[2]}, affine)
	if err := fillValues(v.Data, rest); err != nil {
		return nil, err
	}
	return v, nil
}

// WriteSeriesText serializes a series to the plain-text format.
func WriteSeriesText(w io.Writer, s *Series) error {
	bw := bufio.NewWriter(w)
	if _, err := fmt.Fprintf(bw, "series %d %d %d %d\n", s.Dims[0], s.Dims[1], s.Dims[2], s.Timepoints); err != nil {
		return err
	}
	if err := writeAffine(bw, s.Affine); err != nil {
		return err
	}
	if err := writeValues(bw, s.Data); err != nil {
		return err
	}
	return bw.Flush()
}

// ReadSeriesText parses a series from the plain-text format.
func ReadSeriesText(r io.Reader) (*Series, error) {
	fields, err := readFields(r)
	if err != nil {
		return nil, err
	}
	dims, rest, err := readHeader(fields, "series", 4)
	if err != nil {
		return nil, err
	}
	affine, rest, err := readAffine(rest)
	if err != nil {
		return nil, err
	}
	s := NewSeries([3]int{dims[0], dims[1], dims[2]}, dims[3], affine)
	if err := fillValues(s.Data, rest); err != nil {
		return nil, err
	}
	return s, nil
}

// ReadVolumeFile parses a plain-text volume from a file path.
func ReadVolumeFile(path string) (*Volume, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	v, err := ReadVolumeText(f)
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", path, err)
	}
	return v, nil
}

// ReadSeriesFile parses a plain-text series from a file path.
func ReadSeriesFile(path string) (*Series, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	s, err := ReadSeriesText(f)
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", path, err)
	}
	return s, nil
}

func writeAffine(w io.Writer, a Affine) error {
	for i := 0; i < 4; i++ {
		if _, err := fmt.Fprintf(w, "%g %g %g %g\n", a[i][0], a[i][1], a[i][2], a[i][3]); err != nil {
			return err
		}
	}
	return nil
}

func writeValues(w io.Writer, values []float64) error {
	for i, v := range values {
		sep := byte(' ')
		if i%8 == 7 || i == len(values)-1 {
			sep = '\n'
		}
		if _, err := fmt.Fprintf(w, "%g%c", v, sep); err != nil {
			return err
		}
	}
	return nil
}

func readFields(r io.Reader) ([]string, error) {
	var fields []string
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), 16*1024*1024)
	for scanner.Scan() {
		text := strings.TrimSpace(scanner.Text())
		if text == "" || strings.HasPrefix(text, "#") {
			continue
		}
		fields = append(fields, strings.Fields(text)...)
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}
	return fields, nil
}

func readHeader(fields []string, kind string, ndims int) ([4]int, []string, error) {
	var dims [4]int
	if len(fields) < 1+ndims {
		return dims, nil, fmt.Errorf("truncated %s header", kind)
	}
	if fields[0] != kind {
		return dims, nil, fmt.Errorf("expected %q header, found %q", kind, fields[0])
	}
	for i := 0; i < ndims; i++ {
		d, err := strconv.Atoi(fields[1+i])
		if err != nil || d <= 0 {
			return dims, nil, fmt.Errorf("invalid %s dimension %q", kind, fields[1+i])
		}
		dims[i] = d
	}
	if ndims == 3 {
		dims[3] = 1
	}
	return dims, fields[1+ndims:], nil
}

func readAffine(fields []string) (Affine, []string, error) {
	var a Affine
	if len(fields) < 16 {
		return a, nil, fmt.Errorf("truncated affine: need 16 values, found %d", len(fields))
	}
	for i := 0; i < 16; i++ {
		v, err := strconv.ParseFloat(fields[i], 64)
		if err != nil {
			return a, nil, fmt.Errorf("invalid affine value %q", fields[i])
		}
		a[i/4][i%4] = v
	}
	return a, fields[16:], nil
}

func fillValues(dst []float64, fields []string) error {
	if len(fields) != len(dst) {
		return fmt.Errorf("expected %d voxel values, found %d", len(dst), len(fields))
	}
	for i, field := range fields {
		v, err := strconv.ParseFloat(field, 64)
		if err != nil {
			return fmt.Errorf("invalid voxel value %q", field)
		}
		dst[i] = v
	}
	return nil
}
