package scene

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strconv"

	"github.com/go-gl/mathgl/mgl32"
)

// ProgramState is the viewer state persisted between runs.
type ProgramState struct {
	ClearColor     mgl32.Vec3
	DebugUI        bool
	CameraPosition mgl32.Vec3
	CameraFront    mgl32.Vec3
}

func DefaultProgramState() ProgramState {
	return ProgramState{
		ClearColor:     mgl32.Vec3{0.1, 0.1, 0.1},
		CameraPosition: mgl32.Vec3{0, 0, 3},
		CameraFront:    mgl32.Vec3{0, 0, -1},
	}
}

// WriteTo writes the state as newline-separated values: clear color (r, g,
// b), debug UI flag (0 or 1), camera position (x, y, z), camera front
// (x, y, z).
func (s *ProgramState) WriteTo(w io.Writer) (int64, error) {
	bw := bufio.NewWriter(w)
	var n int64
	put := func(v string) {
		k, _ := bw.WriteString(v + "\n")
		n += int64(k)
	}
	putVec := func(v mgl32.Vec3) {
		for _, f := range v {
			put(strconv.FormatFloat(float64(f), 'g', -1, 32))
		}
	}
	putVec(s.ClearColor)
	if s.DebugUI {
		put("1")
	} else {
		put("0")
	}
	putVec(s.CameraPosition)
	putVec(s.CameraFront)
	return n, bw.Flush()
}

// ReadFrom parses values written by WriteTo, separated by any whitespace.
// Parsing stops at the first missing or malformed value; every field from
// that point on keeps its current value and the error reports where it
// stopped.
func (s *ProgramState) ReadFrom(r io.Reader) (int64, error) {
	cr := &countingReader{r: r}
	sc := bufio.NewScanner(cr)
	sc.Split(bufio.ScanWords)

	fields := []*float32{
		&s.ClearColor[0], &s.ClearColor[1], &s.ClearColor[2],
		nil,
		&s.CameraPosition[0], &s.CameraPosition[1], &s.CameraPosition[2],
		&s.CameraFront[0], &s.CameraFront[1], &s.CameraFront[2],
	}
	for i, dst := range fields {
		if !sc.Scan() {
			if err := sc.Err(); err != nil {
				return cr.n, err
			}
			return cr.n, fmt.Errorf("program state truncated after %d values", i)
		}
		tok := sc.Text()
		if dst == nil {
			switch tok {
			case "0", "false":
				s.DebugUI = false
			case "1", "true":
				s.DebugUI = true
			default:
				return cr.n, fmt.Errorf("program state value %d: bad flag %q", i, tok)
			}
			continue
		}
		f, err := strconv.ParseFloat(tok, 32)
		if err != nil {
			return cr.n, fmt.Errorf("program state value %d: %w", i, err)
		}
		*dst = float32(f)
	}
	return cr.n, nil
}

// Save writes the state to path, creating parent directories.
func (s *ProgramState) Save(path string) error {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("save program state: %w", err)
		}
	}
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("save program state: %w", err)
	}
	if _, err := s.WriteTo(f); err != nil {
		f.Close()
		return fmt.Errorf("save program state: %w", err)
	}
	return f.Close()
}

// Load reads path into s. A missing file leaves s untouched and is not an
// error.
func (s *ProgramState) Load(path string) error {
	f, err := os.Open(path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("load program state: %w", err)
	}
	defer f.Close()
	if _, err := s.ReadFrom(f); err != nil {
		return fmt.Errorf("load program state %q: %w", path, err)
	}
	return nil
}

type countingReader struct {
	r io.Reader
	n int64
}

func (c *countingReader) Read(p []byte) (int, error) {
	n, err := c.r.Read(p)
	c.n += int64(n)
	return n, err
}
