/*
 * feat.go, part of godesc.
 *
 * This program is free software; you can redistribute it and/or modify
 * it under the terms of the GNU Lesser General Public License as
 * published by the Free Software Foundation; either version 2.1 of the
 * License, or (at your option) any later version.
 *
 * This program is distributed in the hope that it will be useful,
 * but WITHOUT ANY WARRANTY; without even the implied warranty of
 * MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
 * GNU General Public License for more details.
 *
 * You should have received a copy of the GNU Lesser General
 * Public License along with this program.  If not, see
 * <http://www.gnu.org/licenses/>.
 *
 */

//Package feat persists sequences of feature matrices to compressed text
//files. The codec is chosen from the file suffix: .zst uses zstd, .gz uses
//gzip, and anything else plain flate. Values are stored in fixed-point
//decimal, which compresses far better than binary floats; the precision is
//set per file through the header.
package feat

import (
	"bufio"
	"compress/flate"
	"compress/gzip"
	"fmt"
	"io"
	"log"
	"math"
	"os"
	"strconv"
	"strings"

	"github.com/klauspost/compress/zstd"
	"gonum.org/v1/gonum/mat"
)

const defaultPrec = 6

//Writer writes feature matrices, one frame at a time, to a compressed file.
type Writer struct {
	f         *os.File
	h         io.WriteCloser
	nrows     int
	ncols     int
	filename  string
	writeable bool
	prec      int
}

//NewWriter creates a file and returns a Writer for frames of nrows x ncols
//feature matrices. The header map, if non-nil, is written as key=value lines
//before the dimension mark; the "prec" key sets the fixed-point precision
//(default 6). compressionLevel applies to the flate and gzip codecs.
func NewWriter(name string, nrows, ncols int, header map[string]string, compressionLevel ...int) (*Writer, error) {
	level := 9
	if len(compressionLevel) > 0 {
		level = compressionLevel[0]
	}
	if nrows <= 0 || ncols <= 0 {
		return nil, Error{fmt.Sprintf("invalid frame dimensions %dx%d", nrows, ncols), name, []string{"NewWriter"}, true}
	}
	W := new(Writer)
	var err error
	W.f, err = os.Create(name)
	if err != nil {
		return nil, err
	}
	W.h, err = newCompressor(W.f, name, level)
	if err != nil {
		return nil, Error{"Can't set up compression: " + err.Error(), name, []string{"NewWriter"}, true}
	}
	W.nrows = nrows
	W.ncols = ncols
	W.filename = name
	W.writeable = true
	W.prec = defaultPrec
	if header != nil {
		if p, ok := header["prec"]; ok {
			prec, err := strconv.Atoi(p)
			if err == nil && prec > 0 {
				W.prec = prec
			} else {
				log.Printf("Invalid precision for feature file %s. Will use the default", W.filename)
			}
		}
		for k, v := range header {
			W.h.Write([]byte(fmt.Sprintf("%s=%v\n", k, v)))
		}
	}
	W.h.Write([]byte(fmt.Sprintf("** %d %d\n", W.nrows, W.ncols)))
	return W, nil
}

//WNext writes the next frame. The matrix must have the dimensions given to
//NewWriter.
func (W *Writer) WNext(features *mat.Dense) error {
	if !W.writeable {
		return Error{FileUnIniWrite, W.filename, []string{"WNext"}, true}
	}
	if features == nil {
		return Error{NilFeatures, W.filename, []string{"WNext"}, true}
	}
	r, c := features.Dims()
	if r != W.nrows || c != W.ncols {
		return Error{fmt.Sprintf("%dx%d matrix given, but %dx%d expected", r, c, W.nrows, W.ncols), W.filename, []string{"WNext"}, true}
	}
	var b strings.Builder
	for i := 0; i < r; i++ {
		b.Reset()
		rowEncode(&b, features.RawRowView(i), W.prec)
		W.h.Write([]byte(b.String()))
	}
	W.h.Write([]byte("*\n"))
	return nil
}

//Rows returns the number of rows per frame.
func (W *Writer) Rows() int { return W.nrows }

//Cols returns the number of features per row.
func (W *Writer) Cols() int { return W.ncols }

//Close flushes and closes the file. The Writer cannot be used afterwards.
func (W *Writer) Close() {
	if W == nil || !W.writeable {
		return
	}
	W.h.Close()
	W.f.Close()
	W.writeable = false
}

//Reader reads frames written by Writer.
type Reader struct {
	f        *os.File
	dec      io.ReadCloser
	h        *bufio.Reader
	nrows    int
	ncols    int
	filename string
	prec     int
	readable bool
}

//zstd.Decoder.Close returns nothing, so it does not satisfy io.ReadCloser
//on its own.
type zstdql struct {
	closeql func()
	*zstd.Decoder
}

func (z zstdql) Close() error {
	z.closeql()
	return nil
}

//NewReader opens a feature file and returns a Reader, the header metadata
//(or nil if the file has none) and error or nil.
func NewReader(name string) (*Reader, map[string]string, error) {
	R := new(Reader)
	R.nrows = -1
	R.filename = name
	R.prec = defaultPrec
	var err error
	R.f, err = os.Open(name)
	if err != nil {
		return nil, nil, err
	}
	R.dec, err = newDecompressor(bufio.NewReader(R.f), name)
	if err != nil {
		return nil, nil, Error{"Can't set up decompression: " + err.Error(), name, []string{"NewReader"}, true}
	}
	R.h = bufio.NewReader(R.dec)
	var m map[string]string
	for {
		str, err := R.h.ReadString('\n')
		if err != nil {
			return nil, nil, Error{"Can't read header: " + err.Error(), name, []string{"NewReader"}, true}
		}
		str = strings.TrimSuffix(str, "\n")
		if strings.HasPrefix(str, "**") {
			fields := strings.Fields(str)
			if len(fields) < 3 {
				return nil, nil, Error{fmt.Sprintf("Can't read frame dimensions from '%s'", str), name, []string{"NewReader"}, true}
			}
			R.nrows, err = strconv.Atoi(fields[1])
			if err != nil {
				return nil, nil, Error{"Can't read frame rows: " + err.Error(), name, []string{"NewReader"}, true}
			}
			R.ncols, err = strconv.Atoi(fields[2])
			if err != nil {
				return nil, nil, Error{"Can't read frame columns: " + err.Error(), name, []string{"NewReader"}, true}
			}
			break
		}
		kv := strings.SplitN(str, "=", 2)
		if len(kv) != 2 {
			return nil, nil, Error{"Malformed header line: " + str, name, []string{"NewReader"}, true}
		}
		if m == nil {
			m = make(map[string]string)
		}
		m[kv[0]] = kv[1]
	}
	if p, ok := m["prec"]; ok {
		prec, err := strconv.Atoi(p)
		if err == nil && prec > 0 {
			R.prec = prec
		} else {
			log.Printf("Invalid precision for feature file %s. Will assume the default", R.filename)
		}
	}
	R.readable = true
	return R, m, nil
}

//Readable returns true if it is possible to call Next on the Reader.
func (R *Reader) Readable() bool { return R.readable }

//Rows returns the number of rows per frame.
func (R *Reader) Rows() int { return R.nrows }

//Cols returns the number of features per row.
func (R *Reader) Cols() int { return R.ncols }

//Next puts the next frame in the given matrix, which must match the frame
//dimensions, or be nil, in which case the frame is read and checked but
//discarded. When the file ends, Next closes the Reader and returns a
//lastFrameError, recognizable with LastFrame; that is a normal termination,
//not a failure.
func (R *Reader) Next(out *mat.Dense) error {
	if !R.readable {
		return Error{FileUnIniRead, R.filename, []string{"Next"}, true}
	}
	if out != nil {
		r, c := out.Dims()
		if r != R.nrows || c != R.ncols {
			return Error{fmt.Sprintf("%dx%d matrix given, but frames are %dx%d", r, c, R.nrows, R.ncols), R.filename, []string{"Next"}, true}
		}
	}
	row := make([]float64, R.ncols)
	for i := 0; i < R.nrows; i++ {
		b, err := R.h.ReadBytes('\n')
		if err != nil {
			if err == io.EOF && i == 0 {
				R.Close()
				return newLastFrameError(R.filename, "Next")
			}
			return Error{err.Error(), R.filename, []string{"Next"}, true}
		}
		if err := rowDecode(string(b[:len(b)-1]), row, R.prec); err != nil {
			return Error{err.Error(), R.filename, []string{"Next"}, true}
		}
		if out == nil {
			continue
		}
		out.SetRow(i, row)
	}
	s, err := R.h.ReadString('\n')
	if err != nil {
		return Error{"Can't read the frame termination mark: " + err.Error(), R.filename, []string{"Next"}, true}
	}
	if s[0] != '*' {
		return Error{"Wrong number of rows in frame", R.filename, []string{"Next"}, true}
	}
	return nil
}

//Close closes the Reader and marks it unreadable.
func (R *Reader) Close() {
	if !R.readable {
		return
	}
	R.dec.Close()
	R.f.Close()
	R.readable = false
}

func newCompressor(w io.Writer, name string, level int) (io.WriteCloser, error) {
	switch {
	case strings.HasSuffix(name, ".zst"):
		return zstd.NewWriter(w, zstd.WithEncoderLevel(zstd.SpeedBestCompression))
	case strings.HasSuffix(name, ".gz"):
		return gzip.NewWriterLevel(w, level)
	default:
		return flate.NewWriter(w, level)
	}
}

func newDecompressor(r io.Reader, name string) (io.ReadCloser, error) {
	switch {
	case strings.HasSuffix(name, ".zst"):
		d, err := zstd.NewReader(r)
		if err != nil {
			return nil, err
		}
		return zstdql{d.Close, d}, nil
	case strings.HasSuffix(name, ".gz"):
		return gzip.NewReader(r)
	default:
		return flate.NewReader(r), nil
	}
}

func rowEncode(b *strings.Builder, row []float64, prec int) {
	p := math.Pow(10.0, float64(prec))
	for i, v := range row {
		if i > 0 {
			b.WriteByte(' ')
		}
		b.WriteString(strconv.Itoa(int(math.RoundToEven(v * p))))
	}
	b.WriteByte('\n')
}

func rowDecode(str string, row []float64, prec int) error {
	p := math.Pow(10.0, float64(prec))
	s := strings.Fields(str)
	if len(s) != len(row) {
		return fmt.Errorf("Ill formatted feature row: %d fields, want %d: %s", len(s), len(row), str)
	}
	for i, v := range s {
		f, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("Can't parse feature %d (%s): %s", i, v, err.Error())
		}
		row[i] = float64(f) / p
	}
	return nil
}

//Error is the concrete error type of the feat package. It fulfills
//desc.Error.
type Error struct {
	message  string
	filename string
	deco     []string
	critical bool
}

func (err Error) Error() string {
	return fmt.Sprintf("feature file %s error: %s", err.filename, err.message)
}

//Decorate adds new information to the error.
func (err Error) Decorate(deco string) []string {
	if deco != "" {
		err.deco = append(err.deco, deco)
	}
	return err.deco
}

//FileName returns the file associated to the error.
func (err Error) FileName() string { return err.filename }

//Critical returns true if the error is critical, false otherwise.
func (err Error) Critical() bool { return err.critical }

const (
	FileUnIniRead  = "Feature file uninitialized to read"
	FileUnIniWrite = "Feature file uninitialized to write"
	NilFeatures    = "Given nil features"
)

//lastFrameError signals a normal end of file.
type lastFrameError struct {
	deco     []string
	fileName string
}

func (E lastFrameError) NormalLastFrameTermination() {}

func (E lastFrameError) FileName() string { return E.fileName }

func (E lastFrameError) Error() string { return "EOF" }

func (E lastFrameError) Critical() bool { return false }

func (E lastFrameError) Decorate(deco string) []string {
	if deco != "" {
		E.deco = append(E.deco, deco)
	}
	return E.deco
}

func newLastFrameError(filename string, caller string) *lastFrameError {
	e := new(lastFrameError)
	e.fileName = filename
	e.deco = []string{caller}
	return e
}

//LastFrame returns true if the error marks a normal end of file rather than
//a failure.
func LastFrame(err error) bool {
	_, ok := err.(interface{ NormalLastFrameTermination() })
	return ok
}
